package badger

import (
	"errors"
	"fmt"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v3"

	"github.com/polymesh/engine/pkg/interfaces/infrastructure/storage"
)

var _ storage.BadgerTransaction = (*Transaction)(nil)

// ErrTransactionClosed 事务已提交或丢弃
var ErrTransactionClosed = errors.New("事务已关闭")

// TransactionState 事务状态
type TransactionState int32

const (
	// TxActive 活动
	TxActive TransactionState = iota
	// TxCommitted 已提交
	TxCommitted
	// TxDiscarded 已丢弃
	TxDiscarded
)

// Transaction 实现BadgerTransaction接口
type Transaction struct {
	txn        *badgerdb.Txn
	state      int32
	operations int // 写操作次数，为 0 时提交等价于丢弃
}

func newTransaction(txn *badgerdb.Txn) *Transaction {
	return &Transaction{txn: txn, state: int32(TxActive)}
}

// Get 读取键值，键不存在时返回 (nil, nil)
func (t *Transaction) Get(key []byte) ([]byte, error) {
	if t.getState() != TxActive {
		return nil, ErrTransactionClosed
	}
	item, err := t.txn.Get(key)
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("复制键值失败: %w", err)
	}
	return val, nil
}

// Set 写入键值
func (t *Transaction) Set(key, value []byte) error {
	if t.getState() != TxActive {
		return ErrTransactionClosed
	}
	if err := t.txn.Set(key, value); err != nil {
		return fmt.Errorf("写入键值失败: %w", err)
	}
	t.operations++
	return nil
}

// Delete 删除键
func (t *Transaction) Delete(key []byte) error {
	if t.getState() != TxActive {
		return ErrTransactionClosed
	}
	if err := t.txn.Delete(key); err != nil {
		return fmt.Errorf("删除键失败: %w", err)
	}
	t.operations++
	return nil
}

// Exists 键是否存在
func (t *Transaction) Exists(key []byte) (bool, error) {
	if t.getState() != TxActive {
		return false, ErrTransactionClosed
	}
	_, err := t.txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Iterate 按键升序遍历前缀，能看到本事务内尚未提交的写入
func (t *Transaction) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	if t.getState() != TxActive {
		return ErrTransactionClosed
	}
	return iteratePrefix(t.txn, prefix, fn)
}

// Commit 提交事务
func (t *Transaction) Commit() error {
	if !atomic.CompareAndSwapInt32(&t.state, int32(TxActive), int32(TxCommitted)) {
		if t.getState() == TxCommitted {
			return fmt.Errorf("事务已提交")
		}
		return fmt.Errorf("事务已丢弃，无法提交")
	}
	if t.operations == 0 {
		t.txn.Discard()
		return nil
	}
	if err := t.txn.Commit(); err != nil {
		return fmt.Errorf("事务提交失败: %w", err)
	}
	return nil
}

// Discard 丢弃事务，对非活动事务无效
func (t *Transaction) Discard() {
	if atomic.CompareAndSwapInt32(&t.state, int32(TxActive), int32(TxDiscarded)) {
		t.txn.Discard()
	}
}

func (t *Transaction) getState() TransactionState {
	return TransactionState(atomic.LoadInt32(&t.state))
}

// IsActive 是否活动
func (t *Transaction) IsActive() bool { return t.getState() == TxActive }

// IsCommitted 是否已提交
func (t *Transaction) IsCommitted() bool { return t.getState() == TxCommitted }

// IsDiscarded 是否已丢弃
func (t *Transaction) IsDiscarded() bool { return t.getState() == TxDiscarded }
