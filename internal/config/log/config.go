// Package log 日志模块配置
package log

import (
	"path/filepath"

	"github.com/polymesh/engine/pkg/types"
	"go.uber.org/zap/zapcore"
)

// LogOptions 日志配置选项
type LogOptions struct {
	// === 基础配置 ===
	Level     string `json:"level" yaml:"level"`           // 日志级别 (debug, info, warn, error, fatal)
	ToConsole bool   `json:"to_console" yaml:"to_console"` // 是否输出到控制台
	FilePath  string `json:"file_path" yaml:"file_path"`   // 日志文件路径，空表示不写文件

	// === 轮转配置 ===
	MaxSize    int  `json:"max_size" yaml:"max_size"`       // 单个日志文件最大大小(MB)
	MaxBackups int  `json:"max_backups" yaml:"max_backups"` // 最大备份文件数
	MaxAge     int  `json:"max_age" yaml:"max_age"`         // 日志文件最大保留天数
	Compress   bool `json:"compress" yaml:"compress"`       // 是否压缩历史日志

	// === 调试配置 ===
	EnableCaller     bool `json:"enable_caller" yaml:"enable_caller"`
	EnableStacktrace bool `json:"enable_stacktrace" yaml:"enable_stacktrace"`

	// === 多文件配置 ===
	EnableMultiFile bool   `json:"enable_multi_file" yaml:"enable_multi_file"` // system / business 分文件
	SystemLogFile   string `json:"system_log_file" yaml:"system_log_file"`
	BusinessLogFile string `json:"business_log_file" yaml:"business_log_file"`

	LevelMap map[string]zapcore.Level `json:"-" yaml:"-"`
}

// Config 日志配置实现
type Config struct {
	options *LogOptions
}

// New 创建日志配置，userConfig 为 *types.UserLogConfig 或 nil
func New(userConfig interface{}) *Config {
	options := createDefaultLogOptions()
	if userConfig != nil {
		applyUserLogConfig(options, userConfig)
	}
	return &Config{options: options}
}

// NewFromOptions 直接包装已有选项
func NewFromOptions(options *LogOptions) *Config {
	if options == nil {
		return New(nil)
	}
	if options.LevelMap == nil {
		options.LevelMap = defaultLevelMap
	}
	return &Config{options: options}
}

func createDefaultLogOptions() *LogOptions {
	return &LogOptions{
		Level:            defaultLogLevel,
		ToConsole:        defaultToConsole,
		FilePath:         "",
		MaxSize:          defaultMaxSize,
		MaxBackups:       defaultMaxBackups,
		MaxAge:           defaultMaxAge,
		Compress:         defaultCompress,
		EnableCaller:     defaultEnableCaller,
		EnableStacktrace: defaultEnableStacktrace,
		EnableMultiFile:  defaultEnableMultiFile,
		SystemLogFile:    defaultSystemLogFile,
		BusinessLogFile:  defaultBusinessLogFile,
		LevelMap:         defaultLevelMap,
	}
}

func applyUserLogConfig(options *LogOptions, userConfig interface{}) {
	logConfig, ok := userConfig.(*types.UserLogConfig)
	if !ok || logConfig == nil {
		return
	}
	if logConfig.Level != nil {
		options.Level = *logConfig.Level
	}
	if logConfig.FilePath != nil {
		options.FilePath = *logConfig.FilePath
		// 指定文件路径时默认不输出到控制台
		options.ToConsole = false
	}
	if logConfig.ToConsole != nil {
		options.ToConsole = *logConfig.ToConsole
	}
	if logConfig.MultiFile != nil {
		options.EnableMultiFile = *logConfig.MultiFile
	}
}

// GetOptions 完整选项
func (c *Config) GetOptions() *LogOptions {
	return c.options
}

// GetZapLevel zap 日志级别，未知级别回退为 info
func (c *Config) GetZapLevel() zapcore.Level {
	if level, ok := c.options.LevelMap[c.options.Level]; ok {
		return level
	}
	return zapcore.InfoLevel
}

// IsConsoleEnabled 是否输出到控制台
func (c *Config) IsConsoleEnabled() bool { return c.options.ToConsole }

// GetFilePath 日志文件路径
func (c *Config) GetFilePath() string { return c.options.FilePath }

// GetMaxSize 单文件大小上限(MB)
func (c *Config) GetMaxSize() int { return c.options.MaxSize }

// GetMaxBackups 备份数量
func (c *Config) GetMaxBackups() int { return c.options.MaxBackups }

// GetMaxAge 保留天数
func (c *Config) GetMaxAge() int { return c.options.MaxAge }

// IsCompressionEnabled 是否压缩
func (c *Config) IsCompressionEnabled() bool { return c.options.Compress }

// IsCallerEnabled 是否记录调用位置
func (c *Config) IsCallerEnabled() bool { return c.options.EnableCaller }

// IsStacktraceEnabled 是否记录堆栈
func (c *Config) IsStacktraceEnabled() bool { return c.options.EnableStacktrace }

// IsMultiFileEnabled 是否分文件
func (c *Config) IsMultiFileEnabled() bool { return c.options.EnableMultiFile }

// SystemLogPath 系统日志文件路径
func (c *Config) SystemLogPath() string {
	return filepath.Join(filepath.Dir(c.options.FilePath), c.options.SystemLogFile)
}

// BusinessLogPath 业务日志文件路径
func (c *Config) BusinessLogPath() string {
	return filepath.Join(filepath.Dir(c.options.FilePath), c.options.BusinessLogFile)
}

// CreateFileEncoder 文件编码器（JSON）
func (c *Config) CreateFileEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
	})
}

// CreateConsoleEncoder 控制台编码器
func (c *Config) CreateConsoleEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
	})
}
