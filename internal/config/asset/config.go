// Package asset 资产模块配置
package asset

import "github.com/polymesh/engine/pkg/types"

// AssetOptions 资产配置选项
type AssetOptions struct {
	// MaxTickerLength Ticker 最大长度（不超过 12）
	MaxTickerLength int `json:"max_ticker_length" yaml:"max_ticker_length"`
	// RegistrationLengthMs 未关联资产的 Ticker 注册有效期，0 表示永不过期
	RegistrationLengthMs uint64 `json:"registration_length_ms" yaml:"registration_length_ms"`
}

// Config 资产配置实现
type Config struct {
	options *AssetOptions
}

// New 创建配置，userConfig 为 *types.UserAssetConfig 或 nil
func New(userConfig interface{}) *Config {
	options := &AssetOptions{
		MaxTickerLength:      defaultMaxTickerLength,
		RegistrationLengthMs: defaultRegistrationLengthMs,
	}
	if u, ok := userConfig.(*types.UserAssetConfig); ok && u != nil {
		if u.MaxTickerLength != nil && *u.MaxTickerLength > 0 && *u.MaxTickerLength <= types.TickerLen {
			options.MaxTickerLength = *u.MaxTickerLength
		}
		if u.RegistrationLengthMs != nil {
			options.RegistrationLengthMs = *u.RegistrationLengthMs
		}
	}
	return &Config{options: options}
}

// GetOptions 完整选项
func (c *Config) GetOptions() *AssetOptions { return c.options }
