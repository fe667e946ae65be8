package app

import (
	"github.com/polymesh/engine/internal/config"
	configIface "github.com/polymesh/engine/pkg/interfaces/config"
	"github.com/polymesh/engine/pkg/types"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项，实现 config.AppOptions
type options struct {
	// 配置文件路径，为空时使用默认配置
	configFilePath string

	// 嵌入的 YAML 配置（优先级高于 configFilePath）
	embeddedConfig []byte

	// 用户配置（优先级最高）
	appConfig *types.AppConfig

	// API 支持开关（默认启用）
	enableAPI bool

	// 出块循环开关，nil 时以配置为准
	producer *bool
}

var _ configIface.AppOptions = (*options)(nil)

// WithConfigFile 设置配置文件路径（JSON 或 YAML）
func WithConfigFile(configPath string) Option {
	return func(o *options) {
		o.configFilePath = configPath
	}
}

// WithEmbeddedConfig 使用编译时嵌入的 YAML 配置
func WithEmbeddedConfig(raw []byte) Option {
	return func(o *options) {
		o.embeddedConfig = raw
	}
}

// WithAppConfig 直接使用内存中的配置
func WithAppConfig(cfg *types.AppConfig) Option {
	return func(o *options) {
		o.appConfig = cfg
	}
}

// WithoutAPI 禁用 HTTP 接口
func WithoutAPI() Option {
	return func(o *options) {
		o.enableAPI = false
	}
}

// WithoutProducer 禁用出块循环，用于一次性命令
func WithoutProducer() Option {
	return func(o *options) {
		disabled := false
		o.producer = &disabled
	}
}

func newOptions(opts ...Option) *options {
	o := &options{enableAPI: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetAppConfig 返回应用程序配置
func (o *options) GetAppConfig() *types.AppConfig {
	return o.appConfig
}

// resolve 读取配置来源并叠加命令行覆盖项
func (o *options) resolve() error {
	switch {
	case o.appConfig != nil:
	case len(o.embeddedConfig) > 0:
		cfg, err := config.ParseAppConfig(o.embeddedConfig, config.FormatYAML)
		if err != nil {
			return err
		}
		o.appConfig = cfg
	case o.configFilePath != "":
		cfg, err := config.LoadAppConfig(o.configFilePath)
		if err != nil {
			return err
		}
		o.appConfig = cfg
	}
	if o.appConfig == nil {
		o.appConfig = &types.AppConfig{}
	}
	if o.producer != nil {
		if o.appConfig.Chain == nil {
			o.appConfig.Chain = &types.UserChainConfig{}
		}
		enabled := *o.producer
		o.appConfig.Chain.ProducerEnabled = &enabled
	}
	if !o.enableAPI {
		if o.appConfig.API == nil {
			o.appConfig.API = &types.UserAPIConfig{}
		}
		disabled := false
		o.appConfig.API.Enabled = &disabled
	}
	return nil
}
