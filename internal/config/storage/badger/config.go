// Package badger BadgerDB 存储配置
package badger

import (
	"path/filepath"

	"github.com/polymesh/engine/pkg/types"
)

// BadgerOptions BadgerDB 存储配置选项
type BadgerOptions struct {
	Path         string `json:"path" yaml:"path"`               // 数据库存储路径
	InMemory     bool   `json:"in_memory" yaml:"in_memory"`     // 纯内存模式（测试、演示）
	SyncWrites   bool   `json:"sync_writes" yaml:"sync_writes"` // 是否同步写入
	MemTableSize int64  `json:"mem_table_size" yaml:"mem_table_size"`

	EnableAutoCompaction bool `json:"enable_auto_compaction" yaml:"enable_auto_compaction"`
}

// Config BadgerDB 配置实现
type Config struct {
	options *BadgerOptions
}

// New 创建配置，userConfig 为 *types.UserStorageConfig 或 nil
func New(userConfig interface{}) *Config {
	options := createDefaultBadgerOptions()
	if userConfig != nil {
		applyUserConfig(options, userConfig)
	}
	return &Config{options: options}
}

// NewFromOptions 包装已有选项
func NewFromOptions(options *BadgerOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

// NewInMemory 纯内存配置
func NewInMemory() *Config {
	options := createDefaultBadgerOptions()
	options.InMemory = true
	options.Path = ""
	return &Config{options: options}
}

func createDefaultBadgerOptions() *BadgerOptions {
	return &BadgerOptions{
		Path:                 defaultPath,
		SyncWrites:           defaultSyncWrites,
		MemTableSize:         defaultMemTableSize,
		EnableAutoCompaction: defaultEnableAutoCompaction,
	}
}

// applyUserConfig 数据目录遵循 {path}/badger 约定
func applyUserConfig(options *BadgerOptions, userConfig interface{}) {
	storageConfig, ok := userConfig.(*types.UserStorageConfig)
	if !ok || storageConfig == nil {
		return
	}
	if storageConfig.Path != nil {
		options.Path = filepath.Join(*storageConfig.Path, "badger")
	}
	if storageConfig.InMemory != nil {
		options.InMemory = *storageConfig.InMemory
	}
	if storageConfig.SyncWrites != nil {
		options.SyncWrites = *storageConfig.SyncWrites
	}
}

// GetOptions 完整选项
func (c *Config) GetOptions() *BadgerOptions { return c.options }

// GetPath 数据库路径
func (c *Config) GetPath() string { return c.options.Path }

// IsInMemory 是否纯内存
func (c *Config) IsInMemory() bool { return c.options.InMemory }

// IsSyncWritesEnabled 是否同步写入
func (c *Config) IsSyncWritesEnabled() bool { return c.options.SyncWrites }

// GetMemTableSize 内存表大小
func (c *Config) GetMemTableSize() int64 { return c.options.MemTableSize }

// IsAutoCompactionEnabled 是否自动压缩
func (c *Config) IsAutoCompactionEnabled() bool { return c.options.EnableAutoCompaction }
