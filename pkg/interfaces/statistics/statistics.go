// Package statistics 资产统计与转账限制接口
package statistics

import (
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/types"
)

// BalanceChange 一次已完成的余额变动
//
// Sender 为 nil 表示发行，Receiver 为 nil 表示赎回；余额均为变动后的值。
type BalanceChange struct {
	Sender               *types.IdentityId
	Receiver             *types.IdentityId
	SenderBalanceAfter   *types.Balance
	ReceiverBalanceAfter *types.Balance
	Amount               types.Balance
}

// TransferCheck 转账前的限制检查输入，余额均为转账前的值
type TransferCheck struct {
	Sender                types.IdentityId
	Receiver              types.IdentityId
	SenderBalanceBefore   types.Balance
	ReceiverBalanceBefore types.Balance
	Amount                types.Balance
	TotalSupply           types.Balance
}

// Service 统计引擎
type Service interface {
	SetActiveAssetStats(c *runtime.Context, asset types.Ticker, stats []types.StatType) error
	BatchUpdateAssetStats(c *runtime.Context, asset types.Ticker, stat types.StatType, updates []types.StatUpdate) error
	SetAssetTransferCompliance(c *runtime.Context, asset types.Ticker, conditions []types.TransferCondition) error
	PauseTransferConditions(c *runtime.Context, asset types.Ticker) error
	ResumeTransferConditions(c *runtime.Context, asset types.Ticker) error
	SetEntitiesExempt(c *runtime.Context, isExempt bool, key types.TransferConditionExemptKey, dids []types.IdentityId) error

	// UpdateAssetStats 每笔已提交的余额变动调用一次，必须在余额修改之后
	UpdateAssetStats(c *runtime.Context, asset types.Ticker, change BalanceChange) error

	VerifyTransferRestrictions(c *runtime.Context, asset types.Ticker, check TransferCheck) (bool, error)
	VerifyTransferRestrictionsReport(c *runtime.Context, asset types.Ticker, check TransferCheck) ([]types.TransferConditionResult, error)

	ActiveAssetStats(c *runtime.Context, asset types.Ticker) ([]types.StatType, error)
	AssetStats(c *runtime.Context, key1 types.Stat1stKey, key2 types.Stat2ndKey) (types.Balance, error)
	InvestorCount(c *runtime.Context, asset types.Ticker) (uint64, error)
	AssetTransferCompliance(c *runtime.Context, asset types.Ticker) (types.AssetTransferCompliance, error)
	IsExempt(c *runtime.Context, key types.TransferConditionExemptKey, did types.IdentityId) bool
}
