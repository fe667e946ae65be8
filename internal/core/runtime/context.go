package runtime

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polymesh/engine/internal/core/state"
	"github.com/polymesh/engine/pkg/types"
)

// Context 一次调用的执行上下文
//
// Store 返回当前所在保存点；WithTransaction 在其上开启嵌套保存点，
// 回滚时其间产生的写入与事件一并丢弃。
type Context struct {
	ctx      context.Context
	caller   types.AccountId
	block    types.BlockNumber
	now      types.Moment
	store    *state.Layer
	events   []types.Event
	readOnly bool
}

func newContext(ctx context.Context, caller types.AccountId, block types.BlockNumber, now types.Moment, store *state.Layer) *Context {
	return &Context{ctx: ctx, caller: caller, block: block, now: now, store: store}
}

// NewDetachedContext 基于独立内存状态的上下文，供纯逻辑测试使用
func NewDetachedContext(caller types.AccountId, block types.BlockNumber, now types.Moment) *Context {
	return newContext(context.Background(), caller, block, now, state.NewMemory())
}

// Context 底层 context.Context
func (c *Context) Context() context.Context { return c.ctx }

// Caller 调用账户
func (c *Context) Caller() types.AccountId { return c.caller }

// Block 当前区块号
func (c *Context) Block() types.BlockNumber { return c.block }

// Now 当前区块时间戳(ms)
func (c *Context) Now() types.Moment { return c.now }

// Store 当前保存点
func (c *Context) Store() state.Store { return c.store }

// ReadOnly 是否为只读查询上下文
func (c *Context) ReadOnly() bool { return c.readOnly }

// Deposit 记录事件，调用提交后才会发布
func (c *Context) Deposit(module, name string, data interface{}) {
	if c.readOnly {
		return
	}
	c.events = append(c.events, types.Event{
		ID:        uuid.NewString(),
		Module:    module,
		Name:      name,
		Block:     c.block,
		Moment:    c.now,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// Events 已记录的事件
func (c *Context) Events() []types.Event {
	return c.events
}

// WithTransaction 在嵌套保存点中执行 fn，fn 出错时回滚其写入与事件
func (c *Context) WithTransaction(fn func() error) error {
	parent := c.store
	mark := len(c.events)
	layer := state.NewLayer(parent)

	c.store = layer
	err := fn()
	c.store = parent

	if err != nil {
		c.events = c.events[:mark]
		return err
	}
	return layer.Commit()
}
