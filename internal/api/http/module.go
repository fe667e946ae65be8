package http

import (
	"context"

	"go.uber.org/fx"

	coremetrics "github.com/polymesh/engine/internal/core/infrastructure/metrics"
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/interfaces/compliance"
	"github.com/polymesh/engine/pkg/interfaces/config"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/metrics"
	"github.com/polymesh/engine/pkg/interfaces/settlement"
	"github.com/polymesh/engine/pkg/interfaces/statistics"
	"github.com/polymesh/engine/pkg/interfaces/sto"
)

// ModuleInput HTTP 模块依赖
type ModuleInput struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Provider   config.Provider
	Runtime    *runtime.Runtime
	Compliance compliance.Service
	Statistics statistics.Service
	Settlement settlement.Service
	Sto        sto.Service
	Metrics    *coremetrics.Metrics `optional:"true"`
	Recorder   metrics.Recorder     `optional:"true"`
	Logger     log.Logger           `optional:"true"`
}

// Module 返回 HTTP 查询模块
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(ProvideServer),
	)
}

// ProvideServer 构建路由并把服务挂到生命周期
func ProvideServer(input ModuleInput) *Server {
	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "http")
	}
	options := input.Provider.GetAPI()

	deps := Dependencies{
		State:      input.Runtime,
		Compliance: input.Compliance,
		Statistics: input.Statistics,
		Settlement: input.Settlement,
		Sto:        input.Sto,
		Recorder:   input.Recorder,
	}
	if options.EnableMetrics && input.Metrics != nil {
		deps.MetricsHandler = input.Metrics.Handler()
	}

	server := NewServer(NewRouter(deps, logger), options, logger)
	input.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error { return server.Start() },
		OnStop:  server.Stop,
	})
	return server
}
