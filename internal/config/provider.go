// Package config 提供应用配置管理功能
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/polymesh/engine/internal/config/api"
	"github.com/polymesh/engine/internal/config/asset"
	"github.com/polymesh/engine/internal/config/chain"
	"github.com/polymesh/engine/internal/config/compliance"
	"github.com/polymesh/engine/internal/config/log"
	"github.com/polymesh/engine/internal/config/settlement"
	"github.com/polymesh/engine/internal/config/statistics"
	"github.com/polymesh/engine/internal/config/sto"
	"github.com/polymesh/engine/internal/config/storage/badger"
	"github.com/polymesh/engine/pkg/interfaces/config"
	"github.com/polymesh/engine/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者，appConfig 为 nil 时全部使用默认值
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{appConfig: appConfig}
}

// LoadAppConfig 读取配置文件
//
// 扩展名为 .yaml / .yml 时按 YAML 解析，其余按 JSON 解析。
func LoadAppConfig(path string) (*types.AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseAppConfig(raw, FormatYAML)
	default:
		return ParseAppConfig(raw, FormatJSON)
	}
}

// 配置格式
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseAppConfig 解析并校验配置内容
func ParseAppConfig(raw []byte, format string) (*types.AppConfig, error) {
	var cfg types.AppConfig
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("解析 YAML 配置失败: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("解析 JSON 配置失败: %w", err)
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetAppConfig 原始用户配置
func (p *Provider) GetAppConfig() *types.AppConfig {
	return p.appConfig
}

// GetLog 日志配置
func (p *Provider) GetLog() *log.LogOptions {
	options := log.New(p.appConfig.Log).GetOptions()
	// 未指定日志文件但配置了数据目录时，日志写入 {data_dir}/logs
	if options.FilePath == "" && p.appConfig.DataDir != nil && !options.ToConsole {
		options.FilePath = filepath.Join(*p.appConfig.DataDir, "logs", "engine.log")
	}
	return options
}

// GetBadger 存储配置
func (p *Provider) GetBadger() *badger.BadgerOptions {
	storage := p.appConfig.Storage
	if storage == nil && p.appConfig.DataDir != nil {
		storage = &types.UserStorageConfig{Path: p.appConfig.DataDir}
	}
	return badger.New(storage).GetOptions()
}

// GetChain 出块配置
func (p *Provider) GetChain() *chain.ChainOptions {
	return chain.New(p.appConfig.Chain).GetOptions()
}

// GetAPI HTTP 接口配置
func (p *Provider) GetAPI() *api.APIOptions {
	return api.New(p.appConfig.API).GetOptions()
}

// GetAsset 资产配置
func (p *Provider) GetAsset() *asset.AssetOptions {
	return asset.New(p.appConfig.Asset).GetOptions()
}

// GetCompliance 合规配置
func (p *Provider) GetCompliance() *compliance.ComplianceOptions {
	return compliance.New(p.appConfig.Compliance).GetOptions()
}

// GetStatistics 统计配置
func (p *Provider) GetStatistics() *statistics.StatisticsOptions {
	return statistics.New(p.appConfig.Statistics).GetOptions()
}

// GetSettlement 结算配置
func (p *Provider) GetSettlement() *settlement.SettlementOptions {
	return settlement.New(p.appConfig.Settlement).GetOptions()
}

// GetSto 募资配置
func (p *Provider) GetSto() *sto.StoOptions {
	return sto.New(p.appConfig.Sto).GetOptions()
}
