package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polymesh/engine/pkg/types"
)

// TestNewProvider_NilConfig_UsesDefaults 测试未提供配置时全部使用默认值
func TestNewProvider_NilConfig_UsesDefaults(t *testing.T) {
	provider := NewProvider(nil)

	assert.Equal(t, "info", provider.GetLog().Level)
	assert.Equal(t, uint64(6000), provider.GetChain().BlockIntervalMs)
	assert.Equal(t, types.TickerLen, provider.GetAsset().MaxTickerLength)
	assert.Equal(t, 10, provider.GetStatistics().MaxStatsPerAsset)
	assert.Equal(t, 10, provider.GetSettlement().MaxLegsPerInstruction)
	assert.Equal(t, "./data/badger", provider.GetBadger().Path)
}

// TestNewProvider_UserOverrides 测试用户配置覆盖默认值
func TestNewProvider_UserOverrides(t *testing.T) {
	cfg := &types.AppConfig{
		DataDir: types.StringPtr("/tmp/pm"),
		Chain:   &types.UserChainConfig{BlockIntervalMs: types.Uint64Ptr(1000)},
		Statistics: &types.UserStatisticsConfig{
			MaxStatsPerAsset: types.IntPtr(3),
		},
		Asset: &types.UserAssetConfig{MaxTickerLength: types.IntPtr(8)},
	}
	provider := NewProvider(cfg)

	assert.Equal(t, uint64(1000), provider.GetChain().BlockIntervalMs)
	assert.Equal(t, 3, provider.GetStatistics().MaxStatsPerAsset)
	assert.Equal(t, 8, provider.GetAsset().MaxTickerLength)
	assert.Equal(t, filepath.Join("/tmp/pm", "badger"), provider.GetBadger().Path)
}

// TestLoadAppConfig_YAMLAndJSON 测试两种文件格式都能加载
func TestLoadAppConfig_YAMLAndJSON(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("chain:\n  block_interval_ms: 2000\nsto:\n  max_tiers: 4\n"), 0o600))
	jsonPath := filepath.Join(dir, "engine.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"settlement":{"max_legs_per_instruction":3}}`), 0o600))

	yamlCfg, err := LoadAppConfig(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), NewProvider(yamlCfg).GetChain().BlockIntervalMs)
	assert.Equal(t, 4, NewProvider(yamlCfg).GetSto().MaxTiers)

	jsonCfg, err := LoadAppConfig(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 3, NewProvider(jsonCfg).GetSettlement().MaxLegsPerInstruction)
}

// TestValidate_RejectsInvalidFields 测试非法字段被拒绝
func TestValidate_RejectsInvalidFields(t *testing.T) {
	cfg := &types.AppConfig{
		Log:   &types.UserLogConfig{Level: types.StringPtr("verbose")},
		Chain: &types.UserChainConfig{BlockIntervalMs: types.Uint64Ptr(0)},
		Asset: &types.UserAssetConfig{MaxTickerLength: types.IntPtr(20)},
	}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "chain.block_interval_ms")
	assert.Contains(t, err.Error(), "asset.max_ticker_length")
}
