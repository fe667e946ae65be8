package compliance

import (
	"go.uber.org/fx"

	"github.com/polymesh/engine/pkg/interfaces/agents"
	complianceIface "github.com/polymesh/engine/pkg/interfaces/compliance"
	"github.com/polymesh/engine/pkg/interfaces/config"
	"github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/metrics"
)

// ModuleInput 合规模块依赖
type ModuleInput struct {
	fx.In

	Provider config.Provider
	Identity identity.Service
	Agents   agents.Service
	Recorder metrics.Recorder `optional:"true"`
	Logger   log.Logger       `optional:"true"`
}

// ModuleOutput 合规模块输出
type ModuleOutput struct {
	fx.Out

	Service    *Service
	Compliance complianceIface.Service
}

// Module 返回合规模块
func Module() fx.Option {
	return fx.Module(moduleName,
		fx.Provide(func(input ModuleInput) ModuleOutput {
			var logger log.Logger
			if input.Logger != nil {
				logger = input.Logger.With("module", moduleName)
			}
			svc := NewService(input.Identity, input.Agents, input.Provider.GetCompliance(), input.Recorder, logger)
			return ModuleOutput{Service: svc, Compliance: svc}
		}),
	)
}
