// Package chain 出块与运行时配置
package chain

import (
	"time"

	"github.com/polymesh/engine/pkg/types"
)

// ChainOptions 出块配置选项
type ChainOptions struct {
	BlockIntervalMs uint64 `json:"block_interval_ms" yaml:"block_interval_ms"` // 出块间隔，同时是区块时间戳步长
	ProducerEnabled bool   `json:"producer_enabled" yaml:"producer_enabled"`   // 是否启动定时出块
	GenesisMoment   uint64 `json:"genesis_moment" yaml:"genesis_moment"`       // 创世区块时间戳(ms)
}

// Config 出块配置实现
type Config struct {
	options *ChainOptions
}

// New 创建配置，userConfig 为 *types.UserChainConfig 或 nil
func New(userConfig interface{}) *Config {
	options := &ChainOptions{
		BlockIntervalMs: defaultBlockIntervalMs,
		ProducerEnabled: defaultProducerEnabled,
		GenesisMoment:   defaultGenesisMoment,
	}
	if u, ok := userConfig.(*types.UserChainConfig); ok && u != nil {
		if u.BlockIntervalMs != nil && *u.BlockIntervalMs > 0 {
			options.BlockIntervalMs = *u.BlockIntervalMs
		}
		if u.ProducerEnabled != nil {
			options.ProducerEnabled = *u.ProducerEnabled
		}
		if u.GenesisMoment != nil {
			options.GenesisMoment = *u.GenesisMoment
		}
	}
	return &Config{options: options}
}

// GetOptions 完整选项
func (c *Config) GetOptions() *ChainOptions { return c.options }

// BlockInterval 出块间隔
func (c *Config) BlockInterval() time.Duration {
	return time.Duration(c.options.BlockIntervalMs) * time.Millisecond
}
