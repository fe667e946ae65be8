package config

import (
	"errors"
	"fmt"

	"github.com/polymesh/engine/pkg/types"
)

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置验证失败 [%s]: %s", e.Field, e.Message)
}

// Validate 校验用户配置中显式给出的字段
func Validate(cfg *types.AppConfig) error {
	if cfg == nil {
		return nil
	}
	var errs []error

	if cfg.Log != nil && cfg.Log.Level != nil {
		switch types.LogLevel(*cfg.Log.Level) {
		case types.DebugLevel, types.InfoLevel, types.WarnLevel, types.ErrorLevel, types.FatalLevel:
		default:
			errs = append(errs, &ValidationError{Field: "log.level", Message: "未知的日志级别 " + *cfg.Log.Level})
		}
	}
	if cfg.Chain != nil && cfg.Chain.BlockIntervalMs != nil && *cfg.Chain.BlockIntervalMs == 0 {
		errs = append(errs, &ValidationError{Field: "chain.block_interval_ms", Message: "出块间隔必须大于 0"})
	}
	if cfg.Asset != nil && cfg.Asset.MaxTickerLength != nil {
		if n := *cfg.Asset.MaxTickerLength; n <= 0 || n > types.TickerLen {
			errs = append(errs, &ValidationError{Field: "asset.max_ticker_length", Message: fmt.Sprintf("必须在 1..%d 之间", types.TickerLen)})
		}
	}
	if cfg.Settlement != nil && cfg.Settlement.MaxLegsPerInstruction != nil && *cfg.Settlement.MaxLegsPerInstruction <= 0 {
		errs = append(errs, &ValidationError{Field: "settlement.max_legs_per_instruction", Message: "必须大于 0"})
	}
	if cfg.Statistics != nil && cfg.Statistics.MaxStatsPerAsset != nil && *cfg.Statistics.MaxStatsPerAsset < 0 {
		errs = append(errs, &ValidationError{Field: "statistics.max_stats_per_asset", Message: "不能为负数"})
	}
	return errors.Join(errs...)
}
