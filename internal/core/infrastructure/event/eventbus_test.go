package event

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventInterface "github.com/polymesh/engine/pkg/interfaces/infrastructure/event"
	"github.com/polymesh/engine/pkg/types"
)

func newTestEvent(module, name, id string) types.Event {
	return types.Event{ID: id, Module: module, Name: name}
}

// TestEventBus_Publish_DeliversToTopicAndWildcard 测试事件同时投递给主题订阅者和全量订阅者
func TestEventBus_Publish_DeliversToTopicAndWildcard(t *testing.T) {
	bus := New(nil, 8)

	var topicHits, allHits int32
	require.NoError(t, bus.Subscribe(types.NewEventType("asset", "Issued"), func(e types.Event) {
		atomic.AddInt32(&topicHits, 1)
	}))
	require.NoError(t, bus.Subscribe(eventInterface.AllEvents, func(e types.Event) {
		atomic.AddInt32(&allHits, 1)
	}))

	bus.Publish(newTestEvent("asset", "Issued", "1"))
	bus.Publish(newTestEvent("asset", "Redeemed", "2"))

	assert.Equal(t, int32(1), atomic.LoadInt32(&topicHits))
	assert.Equal(t, int32(2), atomic.LoadInt32(&allHits))
	assert.True(t, bus.HasCallback(types.NewEventType("asset", "Issued")))
	assert.False(t, bus.HasCallback(types.NewEventType("sto", "Invested")))
}

// TestEventBus_SubscribeAsync_WaitAsync 测试异步订阅在 WaitAsync 后完成
func TestEventBus_SubscribeAsync_WaitAsync(t *testing.T) {
	bus := New(nil, 8)
	var hits int32
	require.NoError(t, bus.SubscribeAsync(eventInterface.AllEvents, func(e types.Event) {
		atomic.AddInt32(&hits, 1)
	}))

	for i := 0; i < 5; i++ {
		bus.Publish(newTestEvent("portfolio", "Moved", ""))
	}
	bus.WaitAsync()
	assert.Equal(t, int32(5), atomic.LoadInt32(&hits))
}

// TestEventBus_Recent_RingBuffer 测试历史记录按环形缓冲保留最近事件
func TestEventBus_Recent_RingBuffer(t *testing.T) {
	bus := New(nil, 3)
	assert.Empty(t, bus.Recent(10))

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		bus.Publish(newTestEvent("m", "n", id))
	}

	recent := bus.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "e", recent[2].ID)

	last := bus.Recent(2)
	require.Len(t, last, 2)
	assert.Equal(t, "d", last[0].ID)
}
