package transfermanager

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polymesh/engine/pkg/types"
)

func id(b byte) *types.IdentityId {
	var d types.IdentityId
	d[0] = b
	return &d
}

func transfer(value, from, to, supply uint64, holders uint64) Transfer {
	return Transfer{
		From:        id(1),
		To:          id(2),
		Value:       types.NewBalance(value),
		BalanceFrom: types.NewBalance(from),
		BalanceTo:   types.NewBalance(to),
		TotalSupply: types.NewBalance(supply),
		HolderCount: holders,
	}
}

// TestCountTransferManager_NewHolderAtLimit 测试持有人数达到上限后拒绝新持有人
func TestCountTransferManager_NewHolderAtLimit(t *testing.T) {
	m := CountTransferManager{MaxHolders: 2}

	cases := []struct {
		name string
		tr   Transfer
		want types.RestrictionResult
	}{
		{"新持有人且已达上限", transfer(10, 100, 0, 100, 2), types.RestrictionInvalid},
		{"新持有人未达上限", transfer(10, 100, 0, 100, 1), types.RestrictionValid},
		{"接收方已持有", transfer(10, 100, 5, 100, 2), types.RestrictionValid},
		{"发送方全部转出", transfer(100, 100, 0, 100, 2), types.RestrictionValid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.VerifyTransfer(tc.tr))
		})
	}

	issuance := transfer(10, 0, 0, 100, 2)
	issuance.From = nil
	assert.Equal(t, types.RestrictionInvalid, m.VerifyTransfer(issuance))

	// 已有 5 个持有人，接收方余额为零
	limits := []struct {
		name       string
		maxHolders uint64
		from       uint64
		want       types.RestrictionResult
	}{
		{"上限5且发送方余额大于转账额", 5, 200, types.RestrictionInvalid},
		{"上限5且发送方余额小于转账额", 5, 50, types.RestrictionValid},
		{"上限10", 10, 200, types.RestrictionValid},
	}
	for _, tc := range limits {
		t.Run(tc.name, func(t *testing.T) {
			got := CountTransferManager{MaxHolders: tc.maxHolders}.VerifyTransfer(transfer(100, tc.from, 0, 1_000, 5))
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestPercentageTransferManager_LimitAndExemption 测试持仓比例上限与豁免
func TestPercentageTransferManager_LimitAndExemption(t *testing.T) {
	m := PercentageTransferManager{MaxPercentage: types.PermillFromPercent(10)}

	assert.Equal(t, types.RestrictionValid, m.VerifyTransfer(transfer(10, 100, 0, 100, 1)), "恰好 10% 允许")
	assert.Equal(t, types.RestrictionInvalid, m.VerifyTransfer(transfer(6, 100, 5, 100, 1)))

	m.Exempted = []types.IdentityId{*id(2)}
	assert.Equal(t, types.RestrictionForceValid, m.VerifyTransfer(transfer(60, 100, 0, 100, 1)))

	issuance := transfer(60, 0, 0, 100, 0)
	issuance.From, issuance.To = nil, id(3)
	assert.Equal(t, types.RestrictionInvalid, m.VerifyTransfer(issuance))
	m.AllowPrimaryIssuance = true
	assert.Equal(t, types.RestrictionValid, m.VerifyTransfer(issuance))
}

// TestEvaluate_ForceValidWins 测试组合判定中 ForceValid 优先于 Invalid
func TestEvaluate_ForceValidWins(t *testing.T) {
	tr := transfer(50, 100, 0, 100, 5)
	count := CountTransferManager{MaxHolders: 5}
	percent := PercentageTransferManager{MaxPercentage: types.PermillFromPercent(10)}

	assert.Equal(t, types.RestrictionInvalid, Evaluate([]Manager{count, percent}, tr))

	percent.Exempted = []types.IdentityId{*tr.To}
	assert.Equal(t, types.RestrictionForceValid, Evaluate([]Manager{count, percent}, tr))
	assert.Equal(t, types.RestrictionValid, Evaluate(nil, tr))
}
