// Package runtime 调用执行环境
//
// Runtime 是状态的唯一写入者：所有调用串行执行，每次调用对应一个 Badger 写事务。
// 调用返回错误时不持久化任何写入、不发布任何事件；成功时先提交事务，
// 再按产生顺序把事件发布到事件总线。
package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/polymesh/engine/internal/core/state"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/event"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/metrics"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/storage"
	"github.com/polymesh/engine/pkg/types"
)

var (
	blockKey = state.Key(state.Prefix("system", "block"))
	nowKey   = state.Key(state.Prefix("system", "now"))
)

// BlockHook 区块初始化钩子
type BlockHook interface {
	Name() string
	OnInitialize(c *Context, block types.BlockNumber) error
}

// Options 运行时参数
type Options struct {
	BlockIntervalMs uint64
	GenesisMoment   types.Moment
}

// Runtime 调用执行器
type Runtime struct {
	mu sync.Mutex

	store    storage.BadgerStore
	bus      event.EventBus
	recorder metrics.Recorder
	logger   log.Logger
	options  Options

	hooksMu sync.RWMutex
	hooks   []BlockHook
}

// New 创建运行时，bus / recorder / logger 可为 nil
func New(store storage.BadgerStore, options Options, bus event.EventBus, recorder metrics.Recorder, logger log.Logger) *Runtime {
	return &Runtime{
		store:    store,
		bus:      bus,
		recorder: recorder,
		logger:   logger,
		options:  options,
	}
}

// RegisterHook 注册区块钩子，按注册顺序执行
func (r *Runtime) RegisterHook(hook BlockHook) {
	r.hooksMu.Lock()
	r.hooks = append(r.hooks, hook)
	r.hooksMu.Unlock()
}

// Dispatch 以 origin 身份执行一次调用
//
// fn 返回的错误原样返回；存储层错误以 %w 包装。
func (r *Runtime) Dispatch(ctx context.Context, call string, origin types.AccountId, fn func(c *Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dispatchLocked(ctx, call, origin, fn)
}

func (r *Runtime) dispatchLocked(ctx context.Context, call string, origin types.AccountId, fn func(c *Context) error) error {
	start := time.Now()
	var (
		callErr error
		events  []types.Event
	)

	err := r.store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		layer := state.NewLayer(state.FromTransaction(tx))
		block, now, err := r.readClock(layer)
		if err != nil {
			return err
		}
		c := newContext(ctx, origin, block, now, layer)
		if callErr = fn(c); callErr != nil {
			return callErr
		}
		events = c.events
		return layer.Commit()
	})

	switch {
	case callErr != nil:
		r.observe(call, "failed", start)
		if r.logger != nil {
			r.logger.Debugf("调用失败 call=%s origin=%s err=%v", call, origin, callErr)
		}
		return callErr
	case err != nil:
		r.observe(call, "error", start)
		return fmt.Errorf("调用 %s 持久化失败: %w", call, err)
	}

	r.observe(call, "ok", start)
	r.publish(events)
	return nil
}

// View 只读查询，写入与事件都会被丢弃
func (r *Runtime) View(ctx context.Context, fn func(c *Context) error) error {
	return r.store.View(ctx, func(tx storage.BadgerTransaction) error {
		layer := state.NewLayer(state.FromTransaction(tx))
		block, now, err := r.readClock(layer)
		if err != nil {
			return err
		}
		c := newContext(ctx, types.AccountId{}, block, now, layer)
		c.readOnly = true
		return fn(c)
	})
}

// AdvanceBlock 出一个新区块并依次执行区块钩子
//
// 区块号与时间戳的推进单独提交；每个钩子在各自的调用中执行，
// 钩子失败只回滚它自己的写入。
func (r *Runtime) AdvanceBlock(ctx context.Context) (types.BlockNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var block types.BlockNumber
	err := r.dispatchLocked(ctx, "system.advance_block", types.AccountId{}, func(c *Context) error {
		block = c.block + 1
		now := c.now + types.Moment(r.options.BlockIntervalMs)
		if err := state.Save(c.Store(), blockKey, block); err != nil {
			return err
		}
		return state.Save(c.Store(), nowKey, now)
	})
	if err != nil {
		return 0, err
	}
	if r.recorder != nil {
		r.recorder.SetBlockHeight(uint64(block))
	}

	r.hooksMu.RLock()
	hooks := append([]BlockHook(nil), r.hooks...)
	r.hooksMu.RUnlock()

	for _, hook := range hooks {
		h := hook
		err := r.dispatchLocked(ctx, "hook."+h.Name(), types.AccountId{}, func(c *Context) error {
			return h.OnInitialize(c, block)
		})
		if err != nil && r.logger != nil {
			r.logger.Errorf("区块钩子执行失败 hook=%s block=%d err=%v", h.Name(), block, err)
		}
	}
	return block, nil
}

// Head 当前区块号与时间戳
func (r *Runtime) Head(ctx context.Context) (types.BlockNumber, types.Moment, error) {
	var (
		block types.BlockNumber
		now   types.Moment
	)
	err := r.View(ctx, func(c *Context) error {
		block, now = c.block, c.now
		return nil
	})
	return block, now, err
}

func (r *Runtime) readClock(s state.Store) (types.BlockNumber, types.Moment, error) {
	block, err := state.LoadOr(s, blockKey, types.BlockNumber(0))
	if err != nil {
		return 0, 0, err
	}
	now, err := state.LoadOr(s, nowKey, r.options.GenesisMoment)
	if err != nil {
		return 0, 0, err
	}
	return block, now, nil
}

func (r *Runtime) observe(call, result string, start time.Time) {
	if r.recorder != nil {
		r.recorder.ObserveDispatch(call, result, time.Since(start))
	}
}

func (r *Runtime) publish(events []types.Event) {
	for _, e := range events {
		if r.recorder != nil {
			r.recorder.IncEvent(e.Module, e.Name)
		}
		if r.bus != nil {
			r.bus.Publish(e)
		}
	}
}
