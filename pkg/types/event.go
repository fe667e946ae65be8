package types

import "time"

// EventType 事件主题，格式为 "模块:事件名"
type EventType string

// NewEventType 构造事件主题
func NewEventType(module, name string) EventType {
	return EventType(module + ":" + name)
}

// Event 运行时产生的领域事件
//
// 事件在调用内缓冲，只有调用成功提交后才会发布到事件总线；
// 回滚的保存点内产生的事件会被一并丢弃。
type Event struct {
	ID        string      `json:"id"`
	Module    string      `json:"module"`
	Name      string      `json:"name"`
	Block     BlockNumber `json:"block"`
	Moment    Moment      `json:"moment"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Type 事件主题
func (e *Event) Type() EventType {
	return NewEventType(e.Module, e.Name)
}
