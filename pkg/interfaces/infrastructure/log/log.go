package log

import "go.uber.org/zap"

// Logger 日志记录器接口
//
// 各模块通过 With("module", "<name>") 派生带模块标识的记录器，
// 多文件模式下据此把日志路由到 system / business 文件。
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	Fatal(msg string)
	Fatalf(format string, args ...interface{})

	// With 返回带有额外键值对字段的 Logger
	With(args ...interface{}) Logger

	// Sync 刷新缓冲区
	Sync() error

	// GetZapLogger 底层 zap 记录器
	GetZapLogger() *zap.Logger
}
