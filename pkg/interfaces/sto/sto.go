// Package sto 分档定价募资接口
package sto

import (
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/types"
)

// FundraiserRequest 创建募资的参数
type FundraiserRequest struct {
	Name              string
	OfferingPortfolio types.PortfolioId
	OfferingAsset     types.Ticker
	RaisingPortfolio  types.PortfolioId
	RaisingAsset      types.Ticker
	Tiers             []types.PriceTier
	Venue             types.VenueId
	Start             *types.Moment
	End               *types.Moment
	MinimumInvestment types.Balance
}

// InvestRequest 认购参数，MaxPrice 和 MinTier 可选
type InvestRequest struct {
	InvestorOffering types.PortfolioId
	InvestorRaising  types.PortfolioId
	OfferingAsset    types.Ticker
	Fundraiser       types.FundraiserId
	PurchaseAmount   types.Balance
	MaxPrice         *types.Balance
	MinTier          *int
}

// InvestResult 实际成交
type InvestResult struct {
	Instruction types.InstructionId `json:"instruction"`
	Filled      types.Balance       `json:"filled"`
	Raised      types.Balance       `json:"raised"`
}

// Service 募资服务
//
// 认购通过结算模块的两腿指令完成，发行方一侧由募资创建者预先授权。
type Service interface {
	CreateFundraiser(c *runtime.Context, req FundraiserRequest) (types.FundraiserId, error)
	Invest(c *runtime.Context, req InvestRequest) (InvestResult, error)
	FreezeFundraiser(c *runtime.Context, asset types.Ticker, id types.FundraiserId) error
	UnfreezeFundraiser(c *runtime.Context, asset types.Ticker, id types.FundraiserId) error
	ModifyFundraiserWindow(c *runtime.Context, asset types.Ticker, id types.FundraiserId, start types.Moment, end *types.Moment) error
	Stop(c *runtime.Context, asset types.Ticker, id types.FundraiserId) error

	Fundraiser(c *runtime.Context, asset types.Ticker, id types.FundraiserId) (types.Fundraiser, error)
	Fundraisers(c *runtime.Context, asset types.Ticker) ([]types.Fundraiser, error)
}
