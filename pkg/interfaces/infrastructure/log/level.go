// Package log 日志接口定义
package log

import "github.com/polymesh/engine/pkg/types"

// LogLevel 日志级别
type LogLevel = types.LogLevel

const (
	DebugLevel = types.DebugLevel
	InfoLevel  = types.InfoLevel
	WarnLevel  = types.WarnLevel
	ErrorLevel = types.ErrorLevel
	FatalLevel = types.FatalLevel
)
