// Package api HTTP 查询接口配置
package api

import "github.com/polymesh/engine/pkg/types"

// APIOptions API 配置选项
type APIOptions struct {
	Enabled       bool   `json:"enabled" yaml:"enabled"`
	ListenAddr    string `json:"listen_addr" yaml:"listen_addr"`
	EnableMetrics bool   `json:"enable_metrics" yaml:"enable_metrics"`
}

// Config API 配置实现
type Config struct {
	options *APIOptions
}

// New 创建配置，userConfig 为 *types.UserAPIConfig 或 nil
func New(userConfig interface{}) *Config {
	options := &APIOptions{
		Enabled:       defaultEnabled,
		ListenAddr:    defaultListenAddr,
		EnableMetrics: defaultEnableMetrics,
	}
	if u, ok := userConfig.(*types.UserAPIConfig); ok && u != nil {
		if u.Enabled != nil {
			options.Enabled = *u.Enabled
		}
		if u.ListenAddr != nil {
			options.ListenAddr = *u.ListenAddr
		}
		if u.Metrics != nil {
			options.EnableMetrics = *u.Metrics
		}
	}
	return &Config{options: options}
}

// GetOptions 完整选项
func (c *Config) GetOptions() *APIOptions { return c.options }
