package portfolio

import (
	"go.uber.org/fx"

	"github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	portfolioIface "github.com/polymesh/engine/pkg/interfaces/portfolio"
)

// ModuleInput 组合模块依赖
type ModuleInput struct {
	fx.In

	Identity identity.Service
	Logger   log.Logger `optional:"true"`
}

// ModuleOutput 组合模块输出
type ModuleOutput struct {
	fx.Out

	Service   *Service
	Portfolio portfolioIface.Service
}

// Module 返回组合模块
func Module() fx.Option {
	return fx.Module(moduleName,
		fx.Provide(func(input ModuleInput) ModuleOutput {
			var logger log.Logger
			if input.Logger != nil {
				logger = input.Logger.With("module", moduleName)
			}
			svc := NewService(input.Identity, logger)
			return ModuleOutput{Service: svc, Portfolio: svc}
		}),
	)
}
