// Package statistics 统计引擎配置
package statistics

import "github.com/polymesh/engine/pkg/types"

// StatisticsOptions 统计配置选项
type StatisticsOptions struct {
	MaxStatsPerAsset              int `json:"max_stats_per_asset" yaml:"max_stats_per_asset"`
	MaxTransferConditionsPerAsset int `json:"max_transfer_conditions_per_asset" yaml:"max_transfer_conditions_per_asset"`
}

// Config 统计配置实现
type Config struct {
	options *StatisticsOptions
}

// New 创建配置，userConfig 为 *types.UserStatisticsConfig 或 nil
func New(userConfig interface{}) *Config {
	options := &StatisticsOptions{
		MaxStatsPerAsset:              defaultMaxStatsPerAsset,
		MaxTransferConditionsPerAsset: defaultMaxTransferConditionsPerAsset,
	}
	if u, ok := userConfig.(*types.UserStatisticsConfig); ok && u != nil {
		if u.MaxStatsPerAsset != nil {
			options.MaxStatsPerAsset = *u.MaxStatsPerAsset
		}
		if u.MaxTransferConditionsPerAsset != nil {
			options.MaxTransferConditionsPerAsset = *u.MaxTransferConditionsPerAsset
		}
	}
	return &Config{options: options}
}

// GetOptions 完整选项
func (c *Config) GetOptions() *StatisticsOptions { return c.options }
