package log

import "go.uber.org/zap/zapcore"

// 日志配置默认值
const (
	// defaultLogLevel 默认 info
	defaultLogLevel = "info"

	// defaultToConsole 默认输出到控制台
	defaultToConsole = true

	// === 轮转 ===
	defaultMaxSize    = 100 // MB
	defaultMaxBackups = 10
	defaultMaxAge     = 30 // 天
	defaultCompress   = true

	// === 调试 ===
	defaultEnableCaller     = true
	defaultEnableStacktrace = true

	// === 多文件 ===
	defaultEnableMultiFile = false
	defaultSystemLogFile   = "engine-system.log"
	defaultBusinessLogFile = "engine-business.log"
)

var defaultLevelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"panic": zapcore.PanicLevel,
	"fatal": zapcore.FatalLevel,
}
