// Package asset 资产接口
package asset

import (
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/types"
)

// Service 资产服务
type Service interface {
	RegisterTicker(c *runtime.Context, ticker types.Ticker) error
	CreateAsset(c *runtime.Context, ticker types.Ticker, name string, divisible bool) error
	Issue(c *runtime.Context, ticker types.Ticker, amount types.Balance, portfolio types.PortfolioId) error
	Redeem(c *runtime.Context, ticker types.Ticker, amount types.Balance, portfolio types.PortfolioId) error
	Freeze(c *runtime.Context, ticker types.Ticker) error
	Unfreeze(c *runtime.Context, ticker types.Ticker) error

	Asset(c *runtime.Context, ticker types.Ticker) (types.AssetDetails, error)
	IsFrozen(c *runtime.Context, ticker types.Ticker) bool
	BalanceOf(c *runtime.Context, ticker types.Ticker, did types.IdentityId) (types.Balance, error)
	TotalSupply(c *runtime.Context, ticker types.Ticker) (types.Balance, error)

	// SettlementTransfer 仅供结算使用：移动可用余额，同步按身份余额并更新统计
	SettlementTransfer(c *runtime.Context, from, to types.PortfolioId, ticker types.Ticker, amount types.Balance) error
}
