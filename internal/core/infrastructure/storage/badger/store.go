// Package badger 提供基于BadgerDB的存储实现
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"

	badgerconfig "github.com/polymesh/engine/internal/config/storage/badger"
	corelog "github.com/polymesh/engine/internal/core/infrastructure/log"
	log "github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	interfaces "github.com/polymesh/engine/pkg/interfaces/infrastructure/storage"
)

// ErrStoreClosing 存储正在关闭
var ErrStoreClosing = errors.New("badger store is closing")

var _ interfaces.BadgerStore = (*Store)(nil)

// Store 实现BadgerStore接口
type Store struct {
	db         *badgerdb.DB
	config     *badgerconfig.Config
	logger     log.Logger
	cancelFunc context.CancelFunc

	// Close 期间拒绝新的写入并等待进行中的写事务
	closing int32
	writeWg sync.WaitGroup
}

// New 打开 BadgerDB，配置为内存模式时不落盘
func New(config *badgerconfig.Config, logger log.Logger) (*Store, error) {
	if logger == nil {
		logger = corelog.NewNop()
	}
	if config == nil {
		config = badgerconfig.New(nil)
	}

	var opts badgerdb.Options
	if config.IsInMemory() {
		logger.Info("初始化内存BadgerDB存储")
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		dataDir := config.GetPath()
		logger.Infof("初始化BadgerDB存储，数据目录: %s", dataDir)
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return nil, fmt.Errorf("无法创建BadgerDB数据目录: %w", err)
		}
		opts = badgerdb.DefaultOptions(dataDir)
		opts.SyncWrites = config.IsSyncWritesEnabled()
		opts.ValueLogFileSize = 64 << 20
	}
	if size := config.GetMemTableSize(); size > 0 {
		opts.MemTableSize = size
	}
	opts.BlockCacheSize = 32 << 20
	opts.IndexCacheSize = 16 << 20
	opts.NumMemtables = 2
	opts.NumCompactors = 2
	opts.Logger = &badgerLogger{logger: logger}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开BadgerDB失败: %w", err)
	}

	store := &Store{db: db, config: config, logger: logger}
	if !config.IsInMemory() && config.IsAutoCompactionEnabled() {
		ctx, cancel := context.WithCancel(context.Background())
		store.cancelFunc = cancel
		store.StartMaintenanceRoutines(ctx)
	}
	return store, nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closing, 0, 1) {
		return nil
	}
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	if s.db == nil {
		return nil
	}

	waitCh := make(chan struct{})
	go func() {
		s.writeWg.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
	case <-time.After(30 * time.Second):
		s.logger.Warn("等待写事务超时，继续关闭BadgerDB")
	}

	if err := s.db.Close(); err != nil {
		if strings.Contains(err.Error(), "LOCK: no such file or directory") {
			s.logger.Warn("BadgerDB LOCK文件已不存在")
			return nil
		}
		return fmt.Errorf("关闭BadgerDB失败: %w", err)
	}
	s.logger.Info("BadgerDB存储已关闭")
	return nil
}

func (s *Store) beginWrite() (func(), error) {
	if atomic.LoadInt32(&s.closing) == 1 {
		return nil, ErrStoreClosing
	}
	s.writeWg.Add(1)
	if atomic.LoadInt32(&s.closing) == 1 {
		s.writeWg.Done()
		return nil, ErrStoreClosing
	}
	return s.writeWg.Done, nil
}

// Get 读取键值，键不存在时返回 (nil, nil)
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("badger读取失败: %w", err)
	}
	return value, nil
}

// Set 写入键值
func (s *Store) Set(ctx context.Context, key, value []byte) error {
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete 删除键
func (s *Store) Delete(ctx context.Context, key []byte) error {
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key)
	})
}

// Exists 键是否存在
func (s *Store) Exists(ctx context.Context, key []byte) (bool, error) {
	var exists bool
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}

// PrefixScan 扫描前缀下的全部键值
func (s *Store) PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error) {
	result := make(map[string][]byte)
	err := s.db.View(func(txn *badgerdb.Txn) error {
		return iteratePrefix(txn, prefix, func(key, value []byte) error {
			result[string(key)] = value
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("badger前缀扫描失败: %w", err)
	}
	return result, nil
}

// RunInTransaction 在读写事务中执行 fn
//
// fn 返回错误时事务丢弃，错误以 %w 包装返回。
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx interfaces.BadgerTransaction) error) error {
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := newTransaction(s.db.NewTransaction(true))
	defer tx.Discard()

	if err := fn(tx); err != nil {
		tx.Discard()
		return fmt.Errorf("事务执行失败: %w", err)
	}

	if tx.IsActive() {
		if err := tx.Commit(); err != nil {
			return err
		}
	} else if tx.IsDiscarded() {
		return fmt.Errorf("事务已被丢弃")
	}
	return nil
}

// View 在只读快照中执行 fn
func (s *Store) View(ctx context.Context, fn func(tx interfaces.BadgerTransaction) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := newTransaction(s.db.NewTransaction(false))
	defer tx.Discard()
	return fn(tx)
}

// iteratePrefix 按键升序遍历前缀，键和值均为副本
func iteratePrefix(txn *badgerdb.Txn, prefix []byte, fn func(key, value []byte) error) error {
	opts := badgerdb.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return nil
}

// badgerLogger 把 Badger 内部日志转到 log.Logger
type badgerLogger struct {
	logger log.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf("[BadgerDB] "+format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf("[BadgerDB] "+format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+format, args...)
}
