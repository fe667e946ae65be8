// Package storage 提供存储管理功能
package storage

import (
	"context"

	"go.uber.org/fx"

	badgerconfig "github.com/polymesh/engine/internal/config/storage/badger"
	"github.com/polymesh/engine/internal/core/infrastructure/storage/badger"
	"github.com/polymesh/engine/pkg/interfaces/config"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/polymesh/engine/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider config.Provider
	Logger   log.Logger `optional:"true"`
}

// ModuleOutput 存储模块的输出
type ModuleOutput struct {
	fx.Out

	BadgerStore storageInterface.BadgerStore
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),
		fx.Invoke(func(lc fx.Lifecycle, store storageInterface.BadgerStore, logger log.Logger) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					logger.Info("正在关闭存储服务...")
					return store.Close()
				},
			})
		}),
	)
}

// ProvideServices 根据配置打开 BadgerDB
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	var logger log.Logger
	if params.Logger != nil {
		logger = params.Logger.With("module", "storage")
	}
	store, err := badger.New(badgerconfig.NewFromOptions(params.Provider.GetBadger()), logger)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{BadgerStore: store}, nil
}
