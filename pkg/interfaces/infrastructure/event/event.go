// Package event 定义事件总线接口
package event

import (
	"github.com/polymesh/engine/pkg/types"
)

// EventType 事件主题
type EventType = types.EventType

// Handler 事件处理函数
type Handler func(e types.Event)

// AllEvents 订阅全部事件时使用的主题
const AllEvents EventType = "*"

// EventBus 事件总线
//
// Publish 同步调用同步订阅者，异步订阅者在各自 goroutine 中执行，
// WaitAsync 等待它们完成。
type EventBus interface {
	Publish(e types.Event)

	Subscribe(eventType EventType, handler Handler) error
	SubscribeAsync(eventType EventType, handler Handler) error
	Unsubscribe(eventType EventType, handler Handler) error
	HasCallback(eventType EventType) bool
	WaitAsync()

	// Recent 最近发布的事件，按发布顺序，最多 limit 条
	Recent(limit int) []types.Event
}
