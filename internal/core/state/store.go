// Package state 运行时状态存储
//
// 所有领域模块都通过 Store 读写状态。一次调用的根 Store 是 Badger 写事务，
// 其上叠加若干 Layer 作为保存点：Layer 缓冲写入，Commit 时推送给父层，
// 丢弃 Layer 即回滚。
package state

import (
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/storage"
)

// Store 键值状态读写接口
type Store interface {
	// Get 键不存在时返回 (nil, nil)
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Set(key, value []byte) error
	Delete(key []byte) error

	// Iterate 按键升序遍历前缀下的条目，fn 返回错误时停止并透传
	Iterate(prefix []byte, fn func(key, value []byte) error) error
}

// txStore 把 Badger 事务适配为 Store
type txStore struct {
	tx storage.BadgerTransaction
}

// FromTransaction 以 Badger 事务作为根 Store
func FromTransaction(tx storage.BadgerTransaction) Store {
	return &txStore{tx: tx}
}

func (s *txStore) Get(key []byte) ([]byte, error) { return s.tx.Get(key) }
func (s *txStore) Has(key []byte) (bool, error)   { return s.tx.Exists(key) }
func (s *txStore) Set(key, value []byte) error    { return s.tx.Set(key, value) }
func (s *txStore) Delete(key []byte) error        { return s.tx.Delete(key) }

func (s *txStore) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	return s.tx.Iterate(prefix, fn)
}
