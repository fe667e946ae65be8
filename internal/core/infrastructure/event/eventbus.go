// Package event 基于 asaskevich/EventBus 的事件总线实现
package event

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"

	"github.com/polymesh/engine/pkg/interfaces/infrastructure/event"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/types"
)

// DefaultHistorySize 默认保留的最近事件条数
const DefaultHistorySize = 1024

var _ event.EventBus = (*EventBus)(nil)

// EventBus 事件总线
//
// 每个事件按自身主题发布一次，再按 event.AllEvents 发布一次，
// 订阅 AllEvents 的处理函数可以收到全部事件。
type EventBus struct {
	bus    evbus.Bus
	logger log.Logger

	historyMu sync.RWMutex
	history   []types.Event
	next      int
	full      bool
}

// New 创建事件总线，historySize <= 0 时使用默认值
func New(logger log.Logger, historySize int) *EventBus {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &EventBus{
		bus:     evbus.New(),
		logger:  logger,
		history: make([]types.Event, historySize),
	}
}

// Publish 发布事件
func (eb *EventBus) Publish(e types.Event) {
	eb.record(e)
	if eb.logger != nil {
		eb.logger.Debugf("发布事件 type=%s id=%s block=%d", e.Type(), e.ID, e.Block)
	}
	eb.bus.Publish(string(e.Type()), e)
	eb.bus.Publish(string(event.AllEvents), e)
}

// Subscribe 同步订阅
func (eb *EventBus) Subscribe(eventType event.EventType, handler event.Handler) error {
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 异步订阅，同一处理函数的调用按发布顺序串行
func (eb *EventBus) SubscribeAsync(eventType event.EventType, handler event.Handler) error {
	return eb.bus.SubscribeAsync(string(eventType), handler, true)
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType event.EventType, handler event.Handler) error {
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// HasCallback 主题上是否有订阅者
func (eb *EventBus) HasCallback(eventType event.EventType) bool {
	return eb.bus.HasCallback(string(eventType))
}

// WaitAsync 等待异步处理完成
func (eb *EventBus) WaitAsync() {
	eb.bus.WaitAsync()
}

// Recent 最近的事件，旧的在前
func (eb *EventBus) Recent(limit int) []types.Event {
	eb.historyMu.RLock()
	defer eb.historyMu.RUnlock()

	size := eb.next
	start := 0
	if eb.full {
		size = len(eb.history)
		start = eb.next
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]types.Event, 0, limit)
	for i := size - limit; i < size; i++ {
		out = append(out, eb.history[(start+i)%len(eb.history)])
	}
	return out
}

func (eb *EventBus) record(e types.Event) {
	eb.historyMu.Lock()
	eb.history[eb.next] = e
	eb.next++
	if eb.next == len(eb.history) {
		eb.next = 0
		eb.full = true
	}
	eb.historyMu.Unlock()
}
