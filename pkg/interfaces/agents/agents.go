// Package agents 资产外部代理接口
package agents

import (
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/types"
)

// Service 外部代理服务
type Service interface {
	// AddInitialAgent 资产创建时登记第一个代理，不做权限检查
	AddInitialAgent(c *runtime.Context, asset types.Ticker, did types.IdentityId) error
	AddAgent(c *runtime.Context, asset types.Ticker, did types.IdentityId) error
	RemoveAgent(c *runtime.Context, asset types.Ticker, did types.IdentityId) error
	IsAgent(c *runtime.Context, asset types.Ticker, did types.IdentityId) bool
	// EnsureAgent 调用身份必须是资产的代理
	EnsureAgent(c *runtime.Context, asset types.Ticker) (types.IdentityId, error)
	Agents(c *runtime.Context, asset types.Ticker) ([]types.IdentityId, error)
}
