package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	badgerconfig "github.com/polymesh/engine/internal/config/storage/badger"
	eventbus "github.com/polymesh/engine/internal/core/infrastructure/event"
	"github.com/polymesh/engine/internal/core/infrastructure/storage/badger"
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/storage"
	"github.com/polymesh/engine/pkg/types"
)

// TestBlockIntervalMs 测试运行时的出块间隔
const TestBlockIntervalMs = 6000

// NewTestLogger 测试用 Logger
func NewTestLogger() log.Logger {
	return &MockLogger{}
}

// NewTestBadgerStore 内存模式的 BadgerStore，测试结束时关闭
func NewTestBadgerStore(t testing.TB) storage.BadgerStore {
	t.Helper()
	store, err := badger.New(badgerconfig.NewInMemory(), NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// Harness 运行时测试环境
type Harness struct {
	T       testing.TB
	Runtime *runtime.Runtime
	Bus     *eventbus.EventBus
}

// NewHarness 基于内存存储的运行时
func NewHarness(t testing.TB) *Harness {
	t.Helper()
	bus := eventbus.New(nil, 4096)
	rt := runtime.New(NewTestBadgerStore(t), runtime.Options{BlockIntervalMs: TestBlockIntervalMs}, bus, nil, NewTestLogger())
	return &Harness{T: t, Runtime: rt, Bus: bus}
}

// Dispatch 以 origin 执行调用
func (h *Harness) Dispatch(origin types.AccountId, fn func(c *runtime.Context) error) error {
	return h.Runtime.Dispatch(context.Background(), "test", origin, fn)
}

// MustDispatch 执行调用并断言成功
func (h *Harness) MustDispatch(origin types.AccountId, fn func(c *runtime.Context) error) {
	h.T.Helper()
	require.NoError(h.T, h.Dispatch(origin, fn))
}

// View 只读查询
func (h *Harness) View(fn func(c *runtime.Context) error) {
	h.T.Helper()
	require.NoError(h.T, h.Runtime.View(context.Background(), fn))
}

// AdvanceBlocks 连续出 n 个块
func (h *Harness) AdvanceBlocks(n int) types.BlockNumber {
	h.T.Helper()
	var block types.BlockNumber
	for i := 0; i < n; i++ {
		var err error
		block, err = h.Runtime.AdvanceBlock(context.Background())
		require.NoError(h.T, err)
	}
	return block
}

// EventNames 已发布事件的 "模块:事件名" 列表
func (h *Harness) EventNames() []string {
	var names []string
	for _, e := range h.Bus.Recent(0) {
		names = append(names, string(e.Type()))
	}
	return names
}

// EventsOf 指定类型的已发布事件
func (h *Harness) EventsOf(module, name string) []types.Event {
	var out []types.Event
	for _, e := range h.Bus.Recent(0) {
		if e.Module == module && e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// Account 由种子生成的确定性账户
func Account(seed string) types.AccountId {
	return types.AccountIdFromSeed(seed)
}
