// Package config 配置提供者接口
package config

import (
	apiconfig "github.com/polymesh/engine/internal/config/api"
	assetconfig "github.com/polymesh/engine/internal/config/asset"
	chainconfig "github.com/polymesh/engine/internal/config/chain"
	complianceconfig "github.com/polymesh/engine/internal/config/compliance"
	logconfig "github.com/polymesh/engine/internal/config/log"
	settlementconfig "github.com/polymesh/engine/internal/config/settlement"
	statisticsconfig "github.com/polymesh/engine/internal/config/statistics"
	stoconfig "github.com/polymesh/engine/internal/config/sto"
	badgerconfig "github.com/polymesh/engine/internal/config/storage/badger"
	"github.com/polymesh/engine/pkg/types"
)

// Provider 配置提供者接口
//
// 每个 Get 方法返回已合并默认值的完整选项，调用方无需再处理 nil。
type Provider interface {
	// === 基础设施 ===

	// GetLog 日志配置
	GetLog() *logconfig.LogOptions

	// GetBadger BadgerDB 存储配置
	GetBadger() *badgerconfig.BadgerOptions

	// GetChain 出块配置
	GetChain() *chainconfig.ChainOptions

	// GetAPI HTTP 接口配置
	GetAPI() *apiconfig.APIOptions

	// === 业务模块 ===

	GetAsset() *assetconfig.AssetOptions
	GetCompliance() *complianceconfig.ComplianceOptions
	GetStatistics() *statisticsconfig.StatisticsOptions
	GetSettlement() *settlementconfig.SettlementOptions
	GetSto() *stoconfig.StoOptions

	// GetAppConfig 原始用户配置
	GetAppConfig() *types.AppConfig
}

// AppOptions 应用配置来源
type AppOptions interface {
	GetAppConfig() *types.AppConfig
}
