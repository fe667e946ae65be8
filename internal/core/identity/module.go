package identity

import (
	"go.uber.org/fx"

	identityIface "github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
)

// ModuleInput 身份模块依赖
type ModuleInput struct {
	fx.In

	Logger log.Logger `optional:"true"`
}

// ModuleOutput 身份模块输出
type ModuleOutput struct {
	fx.Out

	Service  *Service
	Identity identityIface.Service
}

// Module 返回身份模块
func Module() fx.Option {
	return fx.Module(moduleName,
		fx.Provide(func(input ModuleInput) ModuleOutput {
			svc := NewService(moduleLogger(input.Logger))
			return ModuleOutput{Service: svc, Identity: svc}
		}),
	)
}

func moduleLogger(logger log.Logger) log.Logger {
	if logger == nil {
		return nil
	}
	return logger.With("module", moduleName)
}
