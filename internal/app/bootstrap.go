package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/polymesh/engine/internal/api"
	config "github.com/polymesh/engine/internal/config"
	"github.com/polymesh/engine/internal/core/agents"
	"github.com/polymesh/engine/internal/core/asset"
	"github.com/polymesh/engine/internal/core/compliance"
	"github.com/polymesh/engine/internal/core/identity"
	"github.com/polymesh/engine/internal/core/infrastructure/event"
	log "github.com/polymesh/engine/internal/core/infrastructure/log"
	"github.com/polymesh/engine/internal/core/infrastructure/metrics"
	"github.com/polymesh/engine/internal/core/infrastructure/storage"
	"github.com/polymesh/engine/internal/core/portfolio"
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/core/settlement"
	"github.com/polymesh/engine/internal/core/statistics"
	"github.com/polymesh/engine/internal/core/sto"
	configIface "github.com/polymesh/engine/pkg/interfaces/config"
)

// Framework layers
const (
	// 基础设施层
	LayerInfrastructure = "infrastructure"
	// 状态与运行时层
	LayerState = "state"
	// 业务逻辑层
	LayerBusiness = "business"
	// 应用层
	LayerApplication = "application"
)

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts   *options
	fxApp  *fx.App
	engine *Engine
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{opts: opts, engine: &Engine{}}
}

// SetupInfrastructureLayer 配置、日志、指标
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(func() configIface.AppOptions { return b.opts }),
		config.Module(),
		log.Module(),
		metrics.Module(),
	}
}

// SetupStateLayer 事件、存储、运行时
func (b *Bootstrap) SetupStateLayer() []fx.Option {
	return []fx.Option{
		event.Module(),
		storage.Module(),
		runtime.Module(),
	}
}

// SetupBusinessLayer 业务模块，按依赖顺序加载
//
// 身份 -> 代理 -> 组合 -> 统计 -> 资产 -> 合规 -> 结算 -> 募资
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		identity.Module(),
		agents.Module(),
		portfolio.Module(),
		statistics.Module(),
		asset.Module(),
		compliance.Module(),
		settlement.Module(),
		sto.Module(),
	}
}

// SetupApplicationLayer 对外接口与服务句柄
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	modules := []fx.Option{
		fx.Invoke(func(p engineParams) { *b.engine = p.engine() }),
	}
	if b.opts.enableAPI {
		modules = append(modules, api.Module())
	}
	return modules
}

// SetupModules 按层组装全部模块
func (b *Bootstrap) SetupModules() []fx.Option {
	var all []fx.Option
	all = append(all, b.SetupInfrastructureLayer()...)
	all = append(all, b.SetupStateLayer()...)
	all = append(all, b.SetupBusinessLayer()...)
	all = append(all, b.SetupApplicationLayer()...)
	return all
}

// CreateFxApp 创建 fx 应用，依赖图错误在此返回
func (b *Bootstrap) CreateFxApp() error {
	if err := b.opts.resolve(); err != nil {
		return err
	}
	b.fxApp = fx.New(
		fx.Options(b.SetupModules()...),
		fx.NopLogger,
	)
	if err := b.fxApp.Err(); err != nil {
		return fmt.Errorf("装配依赖失败: %w", err)
	}
	return nil
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}

// BootstrapApp 执行完整的引导过程并返回应用实例
func BootstrapApp(opts ...Option) (App, error) {
	bootstrap := NewBootstrap(newOptions(opts...))
	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, fmt.Errorf("创建应用失败: %w", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := bootstrap.StartApp(startupCtx); err != nil {
		return nil, err
	}
	return &internalApp{bootstrap: bootstrap}, nil
}

// WaitForSignal 阻塞直到收到 SIGINT / SIGTERM
func WaitForSignal() os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	return <-signals
}
