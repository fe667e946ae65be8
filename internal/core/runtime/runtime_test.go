package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	badgerconfig "github.com/polymesh/engine/internal/config/storage/badger"
	eventbus "github.com/polymesh/engine/internal/core/infrastructure/event"
	"github.com/polymesh/engine/internal/core/infrastructure/storage/badger"
	"github.com/polymesh/engine/internal/core/state"
	"github.com/polymesh/engine/pkg/types"
)

var counterKey = state.Key(state.Prefix("test", "counter"))

func newTestRuntime(t *testing.T) (*Runtime, *eventbus.EventBus) {
	t.Helper()
	store, err := badger.New(badgerconfig.NewInMemory(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	bus := eventbus.New(nil, 64)
	return New(store, Options{BlockIntervalMs: 6000, GenesisMoment: 1_000}, bus, nil, nil), bus
}

func incCounter(c *Context) error {
	n, err := state.LoadOr(c.Store(), counterKey, uint64(0))
	if err != nil {
		return err
	}
	return state.Save(c.Store(), counterKey, n+1)
}

func readCounter(t *testing.T, rt *Runtime) uint64 {
	t.Helper()
	var n uint64
	require.NoError(t, rt.View(context.Background(), func(c *Context) error {
		var err error
		n, err = state.LoadOr(c.Store(), counterKey, uint64(0))
		return err
	}))
	return n
}

// TestDispatch_Success_CommitsAndPublishes 测试成功调用提交状态并发布事件
func TestDispatch_Success_CommitsAndPublishes(t *testing.T) {
	rt, bus := newTestRuntime(t)
	caller := types.AccountIdFromSeed("alice")

	err := rt.Dispatch(context.Background(), "test.inc", caller, func(c *Context) error {
		assert.Equal(t, caller, c.Caller())
		c.Deposit("test", "Incremented", 1)
		return incCounter(c)
	})

	require.NoError(t, err)
	assert.Equal(t, uint64(1), readCounter(t, rt))
	recent := bus.Recent(0)
	require.Len(t, recent, 1)
	assert.Equal(t, types.NewEventType("test", "Incremented"), recent[0].Type())
	assert.NotEmpty(t, recent[0].ID)
}

// TestDispatch_Error_RollsBackEverything 测试失败调用不留下任何写入和事件
func TestDispatch_Error_RollsBackEverything(t *testing.T) {
	rt, bus := newTestRuntime(t)
	boom := types.NewKindError(types.KindValidation, "boom")

	err := rt.Dispatch(context.Background(), "test.fail", types.AccountId{}, func(c *Context) error {
		require.NoError(t, incCounter(c))
		c.Deposit("test", "Incremented", 1)
		return boom
	})

	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, boom, err, "调用错误原样返回")
	assert.Equal(t, uint64(0), readCounter(t, rt))
	assert.Empty(t, bus.Recent(0))
}

// TestWithTransaction_InnerFailure_DropsWritesAndEvents 测试嵌套保存点失败只回滚自身
func TestWithTransaction_InnerFailure_DropsWritesAndEvents(t *testing.T) {
	rt, bus := newTestRuntime(t)

	err := rt.Dispatch(context.Background(), "test.nested", types.AccountId{}, func(c *Context) error {
		c.Deposit("test", "Outer", nil)
		require.NoError(t, incCounter(c))

		innerErr := c.WithTransaction(func() error {
			c.Deposit("test", "Inner", nil)
			if err := incCounter(c); err != nil {
				return err
			}
			return errors.New("inner failed")
		})
		assert.Error(t, innerErr)

		require.NoError(t, c.WithTransaction(func() error {
			c.Deposit("test", "Kept", nil)
			return incCounter(c)
		}))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, uint64(2), readCounter(t, rt))
	var names []string
	for _, e := range bus.Recent(0) {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Outer", "Kept"}, names)
}

type recordingHook struct {
	blocks []types.BlockNumber
	fail   bool
}

func (h *recordingHook) Name() string { return "recording" }

func (h *recordingHook) OnInitialize(c *Context, block types.BlockNumber) error {
	h.blocks = append(h.blocks, block)
	if err := incCounter(c); err != nil {
		return err
	}
	if h.fail {
		return errors.New("hook failed")
	}
	return nil
}

// TestAdvanceBlock_AdvancesClockAndRunsHooks 测试出块推进区块号与时间并执行钩子
func TestAdvanceBlock_AdvancesClockAndRunsHooks(t *testing.T) {
	rt, _ := newTestRuntime(t)
	ok := &recordingHook{}
	failing := &recordingHook{fail: true}
	rt.RegisterHook(ok)
	rt.RegisterHook(failing)

	block, err := rt.AdvanceBlock(context.Background())
	require.NoError(t, err)
	_, err = rt.AdvanceBlock(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.BlockNumber(1), block)
	head, now, err := rt.Head(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.BlockNumber(2), head)
	assert.Equal(t, types.Moment(1_000+2*6000), now)
	assert.Equal(t, []types.BlockNumber{1, 2}, ok.blocks)
	assert.Equal(t, []types.BlockNumber{1, 2}, failing.blocks)
	// 失败钩子的写入被回滚
	assert.Equal(t, uint64(2), readCounter(t, rt))
}

// TestView_DiscardsWrites 测试只读查询的写入不会持久化
func TestView_DiscardsWrites(t *testing.T) {
	rt, bus := newTestRuntime(t)
	require.NoError(t, rt.View(context.Background(), func(c *Context) error {
		assert.True(t, c.ReadOnly())
		c.Deposit("test", "Ignored", nil)
		return incCounter(c)
	}))
	assert.Equal(t, uint64(0), readCounter(t, rt))
	assert.Empty(t, bus.Recent(0))
}

// TestProducer_StartStop 测试定时出块器的启动与停止
func TestProducer_StartStop(t *testing.T) {
	rt, _ := newTestRuntime(t)
	producer := NewProducer(rt, time.Second, nil)

	require.NoError(t, producer.Start())
	assert.Error(t, producer.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, producer.Stop(ctx))
	require.NoError(t, producer.Stop(ctx))
}
