// Package settlement 结算模块配置
package settlement

import "github.com/polymesh/engine/pkg/types"

// SettlementOptions 结算配置选项
type SettlementOptions struct {
	MaxLegsPerInstruction int `json:"max_legs_per_instruction" yaml:"max_legs_per_instruction"`
	MaxVenueSigners       int `json:"max_venue_signers" yaml:"max_venue_signers"`
}

// Config 结算配置实现
type Config struct {
	options *SettlementOptions
}

// New 创建配置，userConfig 为 *types.UserSettlementConfig 或 nil
func New(userConfig interface{}) *Config {
	options := &SettlementOptions{
		MaxLegsPerInstruction: defaultMaxLegsPerInstruction,
		MaxVenueSigners:       defaultMaxVenueSigners,
	}
	if u, ok := userConfig.(*types.UserSettlementConfig); ok && u != nil {
		if u.MaxLegsPerInstruction != nil {
			options.MaxLegsPerInstruction = *u.MaxLegsPerInstruction
		}
		if u.MaxVenueSigners != nil {
			options.MaxVenueSigners = *u.MaxVenueSigners
		}
	}
	return &Config{options: options}
}

// GetOptions 完整选项
func (c *Config) GetOptions() *SettlementOptions { return c.options }
