package asset

import (
	"go.uber.org/fx"

	"github.com/polymesh/engine/pkg/interfaces/agents"
	assetIface "github.com/polymesh/engine/pkg/interfaces/asset"
	"github.com/polymesh/engine/pkg/interfaces/config"
	"github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/interfaces/portfolio"
	"github.com/polymesh/engine/pkg/interfaces/statistics"
)

// ModuleInput 资产模块依赖
type ModuleInput struct {
	fx.In

	Provider   config.Provider
	Identity   identity.Service
	Agents     agents.Service
	Portfolio  portfolio.Service
	Statistics statistics.Service
	Logger     log.Logger `optional:"true"`
}

// ModuleOutput 资产模块输出
type ModuleOutput struct {
	fx.Out

	Service *Service
	Asset   assetIface.Service
}

// Module 返回资产模块
func Module() fx.Option {
	return fx.Module(moduleName,
		fx.Provide(func(input ModuleInput) ModuleOutput {
			var logger log.Logger
			if input.Logger != nil {
				logger = input.Logger.With("module", moduleName)
			}
			svc := NewService(input.Identity, input.Agents, input.Portfolio, input.Statistics, input.Provider.GetAsset(), logger)
			return ModuleOutput{Service: svc, Asset: svc}
		}),
	)
}
