// Package transfermanager 旧版转账管理器
//
// 每个管理器对一笔转账给出 Valid / Invalid / ForceValid 判定。
// 多个管理器组合时任一 ForceValid 即放行，否则任一 Invalid 即拒绝。
package transfermanager

import (
	"slices"

	"github.com/polymesh/engine/pkg/types"
)

// Transfer 待判定的转账，From / To 为 nil 分别表示发行与赎回
type Transfer struct {
	From        *types.IdentityId
	To          *types.IdentityId
	Value       types.Balance
	BalanceFrom types.Balance
	BalanceTo   types.Balance
	TotalSupply types.Balance
	HolderCount uint64
}

// Manager 转账管理器
type Manager interface {
	VerifyTransfer(t Transfer) types.RestrictionResult
}

// CountTransferManager 限制持有人数
type CountTransferManager struct {
	MaxHolders uint64 `json:"max_holders"`
}

// VerifyTransfer 会产生新持有人且已达上限时拒绝
func (m CountTransferManager) VerifyTransfer(t Transfer) types.RestrictionResult {
	if t.To == nil || !t.BalanceTo.IsZero() || t.Value.IsZero() {
		return types.RestrictionValid
	}
	// 发送方不保留余额时持有人数不会增加
	if t.From != nil && !t.BalanceFrom.Gt(t.Value) {
		return types.RestrictionValid
	}
	if t.HolderCount >= m.MaxHolders {
		return types.RestrictionInvalid
	}
	return types.RestrictionValid
}

// PercentageTransferManager 限制单个持有人的持仓比例
type PercentageTransferManager struct {
	MaxPercentage        types.Permill      `json:"max_percentage"`
	Exempted             []types.IdentityId `json:"exempted,omitempty"`
	AllowPrimaryIssuance bool               `json:"allow_primary_issuance"`
}

// VerifyTransfer 豁免接收方强制放行，接收后持仓比例超过上限时拒绝
func (m PercentageTransferManager) VerifyTransfer(t Transfer) types.RestrictionResult {
	if t.To == nil {
		return types.RestrictionValid
	}
	if slices.Contains(m.Exempted, *t.To) {
		return types.RestrictionForceValid
	}
	if t.From == nil && m.AllowPrimaryIssuance {
		return types.RestrictionValid
	}
	if t.TotalSupply.IsZero() {
		return types.RestrictionValid
	}
	after, err := t.BalanceTo.CheckedAdd(t.Value)
	if err != nil {
		return types.RestrictionInvalid
	}
	if after.CmpRatio(t.TotalSupply, m.MaxPercentage) > 0 {
		return types.RestrictionInvalid
	}
	return types.RestrictionValid
}

// Evaluate 组合判定
func Evaluate(managers []Manager, t Transfer) types.RestrictionResult {
	result := types.RestrictionValid
	for _, m := range managers {
		switch m.VerifyTransfer(t) {
		case types.RestrictionForceValid:
			return types.RestrictionForceValid
		case types.RestrictionInvalid:
			result = types.RestrictionInvalid
		}
	}
	return result
}
