package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polymesh/engine/pkg/types"
)

// TestOptions_OneShotOverridesConfig 一次性命令关闭 API 与出块循环
func TestOptions_OneShotOverridesConfig(t *testing.T) {
	// Arrange
	enabled := true
	o := newOptions(
		WithAppConfig(&types.AppConfig{
			Chain: &types.UserChainConfig{ProducerEnabled: &enabled},
			API:   &types.UserAPIConfig{Enabled: &enabled},
		}),
		WithoutAPI(),
		WithoutProducer(),
	)

	// Act
	err := o.resolve()

	// Assert
	require.NoError(t, err)
	assert.False(t, o.enableAPI)
	assert.False(t, *o.appConfig.Chain.ProducerEnabled)
	assert.False(t, *o.appConfig.API.Enabled)
}

// TestOptions_EmbeddedConfig 嵌入配置按 YAML 解析
func TestOptions_EmbeddedConfig(t *testing.T) {
	// Arrange
	o := newOptions(WithEmbeddedConfig([]byte("chain:\n  block_interval_ms: 2000\n")))

	// Act
	err := o.resolve()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), *o.appConfig.Chain.BlockIntervalMs)
	assert.True(t, o.enableAPI)
}

// TestOptions_InvalidEmbeddedConfig 校验失败时返回错误
func TestOptions_InvalidEmbeddedConfig(t *testing.T) {
	// Arrange
	o := newOptions(WithEmbeddedConfig([]byte("chain:\n  block_interval_ms: 0\n")))

	// Act
	err := o.resolve()

	// Assert
	assert.Error(t, err)
}

// TestOptions_DefaultsWhenNoSource 无配置来源时使用空配置
func TestOptions_DefaultsWhenNoSource(t *testing.T) {
	// Arrange
	o := newOptions()

	// Act
	err := o.resolve()

	// Assert
	require.NoError(t, err)
	require.NotNil(t, o.appConfig)
	assert.Nil(t, o.appConfig.Chain)
}
