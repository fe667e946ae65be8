// Package portfolio 投资组合账本接口
package portfolio

import (
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/types"
)

// Service 投资组合账本
//
// 不变式：每个 (组合, 资产) 上 balance >= locked，可用余额 = balance - locked。
// 账本层不做合规检查，也不维护资产层的按身份余额。
type Service interface {
	CreatePortfolio(c *runtime.Context, name string) (types.PortfolioNumber, error)
	DeletePortfolio(c *runtime.Context, number types.PortfolioNumber) error
	RenamePortfolio(c *runtime.Context, number types.PortfolioNumber, name string) error

	SetCustodian(c *runtime.Context, portfolio types.PortfolioId, custodian types.IdentityId) error
	QuitCustody(c *runtime.Context, portfolio types.PortfolioId) error
	Custodian(c *runtime.Context, portfolio types.PortfolioId) types.IdentityId
	EnsureCustody(c *runtime.Context, portfolio types.PortfolioId, did types.IdentityId) error
	EnsurePortfolioValidity(c *runtime.Context, portfolio types.PortfolioId) error

	Balance(c *runtime.Context, portfolio types.PortfolioId, asset types.Ticker) (types.Balance, error)
	Locked(c *runtime.Context, portfolio types.PortfolioId, asset types.Ticker) (types.Balance, error)
	FreeBalance(c *runtime.Context, portfolio types.PortfolioId, asset types.Ticker) (types.Balance, error)
	EnsureSufficientBalance(c *runtime.Context, portfolio types.PortfolioId, asset types.Ticker, amount types.Balance) error

	Lock(c *runtime.Context, portfolio types.PortfolioId, asset types.Ticker, amount types.Balance) error
	Unlock(c *runtime.Context, portfolio types.PortfolioId, asset types.Ticker, amount types.Balance) error

	// Transfer 在可用余额上划转，不检查调用者权限
	Transfer(c *runtime.Context, from, to types.PortfolioId, asset types.Ticker, amount types.Balance) error
	Credit(c *runtime.Context, portfolio types.PortfolioId, asset types.Ticker, amount types.Balance) error
	Debit(c *runtime.Context, portfolio types.PortfolioId, asset types.Ticker, amount types.Balance) error

	MovePortfolioFunds(c *runtime.Context, from, to types.PortfolioId, items []types.MovePortfolioItem) error
}
