// Package app 组装节点：按层加载各模块并管理生命周期
package app

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/interfaces/agents"
	"github.com/polymesh/engine/pkg/interfaces/asset"
	"github.com/polymesh/engine/pkg/interfaces/compliance"
	"github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/interfaces/portfolio"
	"github.com/polymesh/engine/pkg/interfaces/settlement"
	"github.com/polymesh/engine/pkg/interfaces/statistics"
	"github.com/polymesh/engine/pkg/interfaces/sto"
)

// Engine 已装配的运行时与业务服务
type Engine struct {
	Runtime    *runtime.Runtime
	Identity   identity.Service
	Agents     agents.Service
	Portfolio  portfolio.Service
	Assets     asset.Service
	Compliance compliance.Service
	Statistics statistics.Service
	Settlement settlement.Service
	Sto        sto.Service
	Logger     log.Logger
}

type engineParams struct {
	fx.In

	Runtime    *runtime.Runtime
	Identity   identity.Service
	Agents     agents.Service
	Portfolio  portfolio.Service
	Assets     asset.Service
	Compliance compliance.Service
	Statistics statistics.Service
	Settlement settlement.Service
	Sto        sto.Service
	Logger     log.Logger
}

func (p engineParams) engine() Engine {
	return Engine{
		Runtime:    p.Runtime,
		Identity:   p.Identity,
		Agents:     p.Agents,
		Portfolio:  p.Portfolio,
		Assets:     p.Assets,
		Compliance: p.Compliance,
		Statistics: p.Statistics,
		Settlement: p.Settlement,
		Sto:        p.Sto,
		Logger:     p.Logger,
	}
}

// App 运行中的节点
type App interface {
	// Engine 运行时与业务服务
	Engine() *Engine

	// Stop 停止应用，关闭存储
	Stop() error

	// Wait 阻塞直到收到退出信号，然后停止应用
	Wait() error
}

type internalApp struct {
	bootstrap *Bootstrap
}

func (a *internalApp) Engine() *Engine {
	return a.bootstrap.engine
}

func (a *internalApp) Stop() error {
	// 留足时间让存储完成同步
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

func (a *internalApp) Wait() error {
	sig := WaitForSignal()
	a.bootstrap.engine.Logger.Infof("收到信号 %v，正在退出", sig)
	return a.Stop()
}

// Start 启动节点
func Start(opts ...Option) (App, error) {
	return BootstrapApp(opts...)
}
