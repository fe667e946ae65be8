// Package log 基于 zap 的日志实现
//
// 支持控制台与文件输出、lumberjack 日志轮转，以及按 module 字段把日志
// 分流到系统日志与业务日志两个文件。
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	logconfig "github.com/polymesh/engine/internal/config/log"
	logInterface "github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
)

var (
	globalLogger logInterface.Logger
	mu           sync.RWMutex
)

// Logger zap 日志记录器，实现 log.Logger 接口
type Logger struct {
	zapLogger *zap.Logger
	sugar     *zap.SugaredLogger
}

func init() {
	ResetDefault()
}

// ResetDefault 用默认配置重置全局记录器
func ResetDefault() {
	logger, err := New(logconfig.New(nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化默认日志器失败: %v\n", err)
		return
	}
	SetLogger(logger)
}

// NewNop 丢弃所有输出的记录器
func NewNop() logInterface.Logger {
	z := zap.NewNop()
	return &Logger{zapLogger: z, sugar: z.Sugar()}
}

// FromZap 包装已有的 zap 记录器（测试中配合 zaptest/observer 使用）
func FromZap(z *zap.Logger) logInterface.Logger {
	return &Logger{zapLogger: z, sugar: z.Sugar()}
}

// systemModules 基础设施模块，写入系统日志
var systemModules = map[string]bool{
	"storage": true,
	"runtime": true,
	"event":   true,
	"api":     true,
	"app":     true,
	"metrics": true,
}

// businessModules 业务模块，写入业务日志
var businessModules = map[string]bool{
	"identity":   true,
	"agents":     true,
	"portfolio":  true,
	"asset":      true,
	"statistics": true,
	"compliance": true,
	"settlement": true,
	"sto":        true,
}

// moduleRoutingCore 按 module 字段路由的 Core
type moduleRoutingCore struct {
	systemCore   zapcore.Core
	businessCore zapcore.Core
	// module 已通过 With 固定时在派生阶段记录下来
	module string
}

func (c *moduleRoutingCore) Enabled(level zapcore.Level) bool {
	return c.systemCore.Enabled(level) || c.businessCore.Enabled(level)
}

func (c *moduleRoutingCore) With(fields []zapcore.Field) zapcore.Core {
	module := c.module
	if m := moduleOf(fields); m != "" {
		module = m
	}
	return &moduleRoutingCore{
		systemCore:   c.systemCore.With(fields),
		businessCore: c.businessCore.With(fields),
		module:       module,
	}
}

func (c *moduleRoutingCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *moduleRoutingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	module := c.module
	if m := moduleOf(fields); m != "" {
		module = m
	}

	switch {
	case systemModules[module]:
		return c.systemCore.Write(entry, fields)
	case businessModules[module]:
		return c.businessCore.Write(entry, fields)
	default:
		// 未知模块两边都写
		sysErr := c.systemCore.Write(entry, fields)
		bizErr := c.businessCore.Write(entry, fields)
		if sysErr != nil || bizErr != nil {
			return fmt.Errorf("写入日志失败: system=%v business=%v", sysErr, bizErr)
		}
		return nil
	}
}

func (c *moduleRoutingCore) Sync() error {
	sysErr := c.systemCore.Sync()
	bizErr := c.businessCore.Sync()
	if sysErr != nil || bizErr != nil {
		return fmt.Errorf("同步日志文件失败: system=%v business=%v", sysErr, bizErr)
	}
	return nil
}

// moduleOf 提取 module 字段
func moduleOf(fields []zapcore.Field) string {
	for _, field := range fields {
		if field.Key != "module" {
			continue
		}
		switch field.Type {
		case zapcore.StringType:
			return field.String
		case zapcore.StringerType:
			if s, ok := field.Interface.(fmt.Stringer); ok && s != nil {
				return s.String()
			}
		default:
			if str, ok := field.Interface.(string); ok {
				return str
			}
		}
	}
	return ""
}

// createFileWriter 带轮转的文件写入器，目录创建失败时回退到 stderr
func createFileWriter(logPath string, config *logconfig.Config) zapcore.WriteSyncer {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		fmt.Fprintf(os.Stderr, "创建日志目录失败 %s: %v\n", filepath.Dir(logPath), err)
		return zapcore.AddSync(os.Stderr)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    config.GetMaxSize(),
		MaxBackups: config.GetMaxBackups(),
		MaxAge:     config.GetMaxAge(),
		Compress:   config.IsCompressionEnabled(),
	})
}

// New 根据配置创建日志记录器
func New(config *logconfig.Config) (logInterface.Logger, error) {
	level := zap.NewAtomicLevelAt(config.GetZapLevel())

	var cores []zapcore.Core
	if config.IsConsoleEnabled() {
		cores = append(cores, zapcore.NewCore(config.CreateConsoleEncoder(), zapcore.AddSync(os.Stdout), level))
	}

	if path := config.GetFilePath(); path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("获取日志文件绝对路径失败: %w", err)
		}
		fileEncoder := config.CreateFileEncoder()

		if config.IsMultiFileEnabled() {
			systemCore := zapcore.NewCore(fileEncoder, createFileWriter(config.SystemLogPath(), config), level)
			businessCore := zapcore.NewCore(fileEncoder, createFileWriter(config.BusinessLogPath(), config), level)
			cores = append(cores, &moduleRoutingCore{systemCore: systemCore, businessCore: businessCore})
		} else {
			cores = append(cores, zapcore.NewCore(fileEncoder, createFileWriter(absPath, config), level))
		}
	}

	var zapOptions []zap.Option
	if config.IsCallerEnabled() {
		// 跳过本文件的封装层
		zapOptions = append(zapOptions, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	if config.IsStacktraceEnabled() {
		zapOptions = append(zapOptions, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	zapLogger := zap.New(zapcore.NewTee(cores...), zapOptions...)
	return &Logger{zapLogger: zapLogger, sugar: zapLogger.Sugar()}, nil
}

// SetLogger 设置全局记录器
func SetLogger(logger logInterface.Logger) {
	if logger == nil {
		return
	}
	mu.Lock()
	globalLogger = logger
	mu.Unlock()
}

// GetLogger 全局记录器
func GetLogger() logInterface.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// With 基于全局记录器派生
func With(args ...interface{}) logInterface.Logger {
	return GetLogger().With(args...)
}

// toZapFields 键值对转 zap 字段，奇数个参数时丢弃最后一个
func toZapFields(args ...interface{}) []zap.Field {
	if len(args)%2 != 0 {
		args = args[:len(args)-1]
	}
	fields := make([]zap.Field, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		fields = append(fields, zap.Any(key, args[i+1]))
	}
	return fields
}

func (l *Logger) Debug(msg string)                          { l.sugar.Debug(msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(msg string)                           { l.sugar.Info(msg) }
func (l *Logger) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(msg string)                           { l.sugar.Warn(msg) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(msg string)                          { l.sugar.Error(msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }
func (l *Logger) Fatal(msg string)                          { l.sugar.Fatal(msg) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }

// With 返回带额外字段的 Logger
func (l *Logger) With(args ...interface{}) logInterface.Logger {
	z := l.zapLogger.With(toZapFields(args...)...)
	return &Logger{zapLogger: z, sugar: z.Sugar()}
}

// Sync 刷新缓冲区
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

// GetZapLogger 底层 zap 记录器
func (l *Logger) GetZapLogger() *zap.Logger {
	return l.zapLogger
}
