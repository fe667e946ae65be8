package metrics

import (
	"go.uber.org/fx"

	metricsiface "github.com/polymesh/engine/pkg/interfaces/infrastructure/metrics"
)

// ModuleOutput 指标模块输出
type ModuleOutput struct {
	fx.Out

	Metrics  *Metrics
	Recorder metricsiface.Recorder
}

// Module 返回指标模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(func() ModuleOutput {
			m := New()
			return ModuleOutput{Metrics: m, Recorder: m}
		}),
	)
}
