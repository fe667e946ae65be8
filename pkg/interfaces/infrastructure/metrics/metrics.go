// Package metrics 运行时指标接口
package metrics

import "time"

// Recorder 运行时指标记录器
//
// 实现在 internal/core/infrastructure/metrics，运行时和 HTTP 层通过此接口上报。
type Recorder interface {
	// ObserveDispatch 记录一次调用的结果与耗时，result 为 ok / failed / error
	ObserveDispatch(call string, result string, d time.Duration)

	// SetBlockHeight 当前区块高度
	SetBlockHeight(height uint64)

	// IncEvent 已提交事件计数
	IncEvent(module, name string)

	// ObserveComplianceCheck 合规检查结果计数
	ObserveComplianceCheck(passed bool)

	// ObserveHTTP 记录一次 HTTP 请求
	ObserveHTTP(method, path string, status int, d time.Duration)
}
