package statistics

import (
	"github.com/polymesh/engine/internal/core/runtime"
	statsIface "github.com/polymesh/engine/pkg/interfaces/statistics"
	"github.com/polymesh/engine/pkg/types"
)

// VerifyTransferRestrictions 转账是否满足资产的全部转账条件
//
// 条件暂停或双方为同一身份时直接通过。
func (s *Service) VerifyTransferRestrictions(c *runtime.Context, asset types.Ticker, check statsIface.TransferCheck) (bool, error) {
	tc, err := s.AssetTransferCompliance(c, asset)
	if err != nil {
		return false, err
	}
	if tc.Paused || check.Sender == check.Receiver {
		return true, nil
	}
	for _, cond := range tc.Conditions {
		ok, err := s.verifyCondition(c, asset, cond, check)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// VerifyTransferRestrictionsReport 逐条评估转账条件，不短路
func (s *Service) VerifyTransferRestrictionsReport(c *runtime.Context, asset types.Ticker, check statsIface.TransferCheck) ([]types.TransferConditionResult, error) {
	tc, err := s.AssetTransferCompliance(c, asset)
	if err != nil {
		return nil, err
	}
	out := make([]types.TransferConditionResult, 0, len(tc.Conditions))
	for _, cond := range tc.Conditions {
		ok := true
		if !tc.Paused && check.Sender != check.Receiver {
			if ok, err = s.verifyCondition(c, asset, cond, check); err != nil {
				return nil, err
			}
		}
		out = append(out, types.TransferConditionResult{Condition: cond, Result: ok})
	}
	return out, nil
}

func (s *Service) verifyCondition(c *runtime.Context, asset types.Ticker, cond types.TransferCondition, check statsIface.TransferCheck) (bool, error) {
	exempt := func(did types.IdentityId) bool {
		return s.IsExempt(c, cond.ExemptKey(asset), did)
	}

	switch cond.Kind {
	case types.TransferMaxInvestorCount:
		count, err := s.InvestorCount(c, asset)
		if err != nil {
			return false, err
		}
		// 发送方全部转出时持有人数不变
		grows := check.ReceiverBalanceBefore.IsZero() && check.SenderBalanceBefore.Gt(check.Amount)
		if count >= cond.MaxCount && grows {
			return exempt(check.Receiver), nil
		}
		return true, nil

	case types.TransferMaxInvestorOwnership:
		after, err := check.ReceiverBalanceBefore.CheckedAdd(check.Amount)
		if err != nil {
			return false, err
		}
		if after.CmpRatio(check.TotalSupply, cond.MaxPercent) > 0 {
			return exempt(check.Receiver), nil
		}
		return true, nil

	case types.TransferClaimCount:
		key1 := types.Stat1stKey{Asset: asset, StatType: cond.StatType()}
		current, err := s.AssetStats(c, key1, types.ClaimKey(cond.Claim))
		if err != nil {
			return false, err
		}
		post := current.Uint64()
		if check.ReceiverBalanceBefore.IsZero() && s.inBucket(c, asset, cond, check.Receiver) {
			post++
		}
		if check.SenderBalanceBefore.Eq(check.Amount) && s.inBucket(c, asset, cond, check.Sender) && post > 0 {
			post--
		}
		if post < cond.MinCount {
			return exempt(check.Sender), nil
		}
		if cond.HasMax && post > cond.MaxCount {
			return exempt(check.Receiver), nil
		}
		return true, nil

	case types.TransferClaimOwnership:
		key1 := types.Stat1stKey{Asset: asset, StatType: cond.StatType()}
		post, err := s.AssetStats(c, key1, types.ClaimKey(cond.Claim))
		if err != nil {
			return false, err
		}
		receiverIn := s.inBucket(c, asset, cond, check.Receiver)
		senderIn := s.inBucket(c, asset, cond, check.Sender)
		if receiverIn && !senderIn {
			if post, err = post.CheckedAdd(check.Amount); err != nil {
				return false, err
			}
		}
		if senderIn && !receiverIn {
			post = post.SaturatingSub(check.Amount)
		}
		if post.CmpRatio(check.TotalSupply, cond.MinPercent) < 0 {
			return exempt(check.Sender), nil
		}
		if post.CmpRatio(check.TotalSupply, cond.MaxPercent) > 0 {
			return exempt(check.Receiver), nil
		}
		return true, nil
	}
	return false, nil
}

func (s *Service) inBucket(c *runtime.Context, asset types.Ticker, cond types.TransferCondition, did types.IdentityId) bool {
	return s.statClaimOf(c, asset, did, cond.Claim.Type, cond.Issuer) == cond.Claim
}
