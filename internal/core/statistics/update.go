package statistics

import (
	"github.com/polymesh/engine/internal/core/runtime"
	statsIface "github.com/polymesh/engine/pkg/interfaces/statistics"
	"github.com/polymesh/engine/pkg/types"
)

var one = types.NewBalance(1)

// receiverJoined 接收方余额由零变为正
func receiverJoined(change statsIface.BalanceChange) bool {
	return change.Receiver != nil && change.ReceiverBalanceAfter != nil && change.ReceiverBalanceAfter.Eq(change.Amount)
}

// senderLeft 发送方余额由正变为零
func senderLeft(change statsIface.BalanceChange) bool {
	return change.Sender != nil && change.SenderBalanceAfter != nil && change.SenderBalanceAfter.IsZero()
}

// UpdateAssetStats 按已启用的统计维度更新计数
//
//   - Count：接收方 0→正 加一，发送方 正→0 减一（饱和）
//   - Balance 不分桶：只在发行/赎回时变化
//   - Balance 分桶：按双方声明取值分别扣减与增加
func (s *Service) UpdateAssetStats(c *runtime.Context, asset types.Ticker, change statsIface.BalanceChange) error {
	if change.Amount.IsZero() {
		return nil
	}
	active, err := s.ActiveAssetStats(c, asset)
	if err != nil {
		return err
	}
	for _, st := range active {
		key1 := types.Stat1stKey{Asset: asset, StatType: st}
		switch {
		case st.Op == types.StatOpCount && !st.HasClaim():
			err = s.updateCount(c, key1, change, func(types.IdentityId) types.Stat2ndKey {
				return types.NoClaimStat()
			})
		case st.Op == types.StatOpCount:
			err = s.updateCount(c, key1, change, func(did types.IdentityId) types.Stat2ndKey {
				return types.ClaimKey(s.statClaimOf(c, asset, did, st.ClaimType, st.Issuer))
			})
		case !st.HasClaim():
			err = s.updateSupply(c, key1, change)
		default:
			err = s.updateClaimBalance(c, asset, key1, change)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) adjust(c *runtime.Context, key1 types.Stat1stKey, key2 types.Stat2ndKey, delta types.Balance, add bool) error {
	current, err := s.AssetStats(c, key1, key2)
	if err != nil {
		return err
	}
	next := current.SaturatingSub(delta)
	if add {
		if next, err = current.CheckedAdd(delta); err != nil {
			return err
		}
	}
	return s.setStat(c, key1, key2, next)
}

func (s *Service) updateCount(c *runtime.Context, key1 types.Stat1stKey, change statsIface.BalanceChange, bucket func(types.IdentityId) types.Stat2ndKey) error {
	if receiverJoined(change) {
		if err := s.adjust(c, key1, bucket(*change.Receiver), one, true); err != nil {
			return err
		}
	}
	if senderLeft(change) {
		if err := s.adjust(c, key1, bucket(*change.Sender), one, false); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) updateSupply(c *runtime.Context, key1 types.Stat1stKey, change statsIface.BalanceChange) error {
	switch {
	case change.Sender == nil && change.Receiver != nil:
		return s.adjust(c, key1, types.NoClaimStat(), change.Amount, true)
	case change.Receiver == nil && change.Sender != nil:
		return s.adjust(c, key1, types.NoClaimStat(), change.Amount, false)
	}
	return nil
}

func (s *Service) updateClaimBalance(c *runtime.Context, asset types.Ticker, key1 types.Stat1stKey, change statsIface.BalanceChange) error {
	st := key1.StatType
	if change.Sender != nil {
		from := types.ClaimKey(s.statClaimOf(c, asset, *change.Sender, st.ClaimType, st.Issuer))
		if err := s.adjust(c, key1, from, change.Amount, false); err != nil {
			return err
		}
	}
	if change.Receiver != nil {
		to := types.ClaimKey(s.statClaimOf(c, asset, *change.Receiver, st.ClaimType, st.Issuer))
		if err := s.adjust(c, key1, to, change.Amount, true); err != nil {
			return err
		}
	}
	return nil
}
