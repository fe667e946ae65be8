// Package sto 募资模块配置
package sto

import "github.com/polymesh/engine/pkg/types"

// StoOptions 募资配置选项
type StoOptions struct {
	MaxTiers int `json:"max_tiers" yaml:"max_tiers"`
}

// Config 募资配置实现
type Config struct {
	options *StoOptions
}

// New 创建配置，userConfig 为 *types.UserStoConfig 或 nil
func New(userConfig interface{}) *Config {
	options := &StoOptions{MaxTiers: defaultMaxTiers}
	if u, ok := userConfig.(*types.UserStoConfig); ok && u != nil && u.MaxTiers != nil && *u.MaxTiers > 0 {
		options.MaxTiers = *u.MaxTiers
	}
	return &Config{options: options}
}

// GetOptions 完整选项
func (c *Config) GetOptions() *StoOptions { return c.options }
