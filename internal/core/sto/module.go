package sto

import (
	"go.uber.org/fx"

	"github.com/polymesh/engine/pkg/interfaces/agents"
	"github.com/polymesh/engine/pkg/interfaces/config"
	"github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/interfaces/portfolio"
	"github.com/polymesh/engine/pkg/interfaces/settlement"
	stoIface "github.com/polymesh/engine/pkg/interfaces/sto"
)

// ModuleInput 募资模块依赖
type ModuleInput struct {
	fx.In

	Provider   config.Provider
	Identity   identity.Service
	Agents     agents.Service
	Portfolio  portfolio.Service
	Settlement settlement.Service
	Logger     log.Logger `optional:"true"`
}

// ModuleOutput 募资模块输出
type ModuleOutput struct {
	fx.Out

	Service *Service
	Sto     stoIface.Service
}

// Module 返回募资模块
func Module() fx.Option {
	return fx.Module(moduleName,
		fx.Provide(func(input ModuleInput) ModuleOutput {
			var logger log.Logger
			if input.Logger != nil {
				logger = input.Logger.With("module", moduleName)
			}
			svc := NewService(input.Identity, input.Agents, input.Portfolio, input.Settlement, input.Provider.GetSto(), logger)
			return ModuleOutput{Service: svc, Sto: svc}
		}),
	)
}
