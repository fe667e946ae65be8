package agents

import (
	"go.uber.org/fx"

	agentsIface "github.com/polymesh/engine/pkg/interfaces/agents"
	"github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
)

// ModuleInput 代理模块依赖
type ModuleInput struct {
	fx.In

	Identity identity.Service
	Logger   log.Logger `optional:"true"`
}

// ModuleOutput 代理模块输出
type ModuleOutput struct {
	fx.Out

	Service *Service
	Agents  agentsIface.Service
}

// Module 返回代理模块
func Module() fx.Option {
	return fx.Module(moduleName,
		fx.Provide(func(input ModuleInput) ModuleOutput {
			var logger log.Logger
			if input.Logger != nil {
				logger = input.Logger.With("module", moduleName)
			}
			svc := NewService(input.Identity, logger)
			return ModuleOutput{Service: svc, Agents: svc}
		}),
	)
}
