package settlement

import (
	"go.uber.org/fx"

	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/interfaces/agents"
	"github.com/polymesh/engine/pkg/interfaces/asset"
	"github.com/polymesh/engine/pkg/interfaces/compliance"
	"github.com/polymesh/engine/pkg/interfaces/config"
	"github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/interfaces/portfolio"
	settlementIface "github.com/polymesh/engine/pkg/interfaces/settlement"
	"github.com/polymesh/engine/pkg/interfaces/statistics"
)

// ModuleInput 结算模块依赖
type ModuleInput struct {
	fx.In

	Provider   config.Provider
	Identity   identity.Service
	Agents     agents.Service
	Portfolio  portfolio.Service
	Assets     asset.Service
	Compliance compliance.Service
	Statistics statistics.Service
	Logger     log.Logger `optional:"true"`
}

// ModuleOutput 结算模块输出，同时作为区块钩子注册到运行时
type ModuleOutput struct {
	fx.Out

	Service    *Service
	Settlement settlementIface.Service
	Hook       runtime.BlockHook `group:"block_hooks"`
}

// Module 返回结算模块
func Module() fx.Option {
	return fx.Module(moduleName,
		fx.Provide(func(input ModuleInput) ModuleOutput {
			var logger log.Logger
			if input.Logger != nil {
				logger = input.Logger.With("module", moduleName)
			}
			svc := NewService(Dependencies{
				Identity:   input.Identity,
				Agents:     input.Agents,
				Portfolio:  input.Portfolio,
				Assets:     input.Assets,
				Compliance: input.Compliance,
				Statistics: input.Statistics,
			}, input.Provider.GetSettlement(), logger)
			return ModuleOutput{Service: svc, Settlement: svc, Hook: svc}
		}),
	)
}
