package runtime

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/polymesh/engine/pkg/interfaces/config"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/event"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/metrics"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/storage"
	"github.com/polymesh/engine/pkg/types"
)

// ModuleInput 运行时模块依赖
type ModuleInput struct {
	fx.In

	Provider config.Provider
	Store    storage.BadgerStore
	EventBus event.EventBus   `optional:"true"`
	Recorder metrics.Recorder `optional:"true"`
	Logger   log.Logger       `optional:"true"`
	Hooks    []BlockHook      `group:"block_hooks"`
}

// ModuleOutput 运行时模块输出
type ModuleOutput struct {
	fx.Out

	Runtime  *Runtime
	Producer *Producer
}

// Module 返回运行时模块
func Module() fx.Option {
	return fx.Module("runtime",
		fx.Provide(ProvideServices),
		fx.Invoke(func(lc fx.Lifecycle, provider config.Provider, producer *Producer) {
			if !provider.GetChain().ProducerEnabled {
				return
			}
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error { return producer.Start() },
				OnStop:  producer.Stop,
			})
		}),
	)
}

// ProvideServices 创建运行时并注册区块钩子
func ProvideServices(input ModuleInput) ModuleOutput {
	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "runtime")
	}
	chain := input.Provider.GetChain()
	rt := New(input.Store, Options{
		BlockIntervalMs: chain.BlockIntervalMs,
		GenesisMoment:   types.Moment(chain.GenesisMoment),
	}, input.EventBus, input.Recorder, logger)
	for _, hook := range input.Hooks {
		if hook != nil {
			rt.RegisterHook(hook)
		}
	}
	interval := time.Duration(chain.BlockIntervalMs) * time.Millisecond
	return ModuleOutput{Runtime: rt, Producer: NewProducer(rt, interval, logger)}
}
