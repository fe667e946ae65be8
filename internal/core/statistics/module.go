package statistics

import (
	"go.uber.org/fx"

	"github.com/polymesh/engine/pkg/interfaces/agents"
	"github.com/polymesh/engine/pkg/interfaces/config"
	"github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	statsIface "github.com/polymesh/engine/pkg/interfaces/statistics"
)

// ModuleInput 统计模块依赖
type ModuleInput struct {
	fx.In

	Provider config.Provider
	Identity identity.Service
	Agents   agents.Service
	Logger   log.Logger `optional:"true"`
}

// ModuleOutput 统计模块输出
type ModuleOutput struct {
	fx.Out

	Service    *Service
	Statistics statsIface.Service
}

// Module 返回统计模块
func Module() fx.Option {
	return fx.Module(moduleName,
		fx.Provide(func(input ModuleInput) ModuleOutput {
			var logger log.Logger
			if input.Logger != nil {
				logger = input.Logger.With("module", moduleName)
			}
			svc := NewService(input.Identity, input.Agents, input.Provider.GetStatistics(), logger)
			return ModuleOutput{Service: svc, Statistics: svc}
		}),
	)
}
