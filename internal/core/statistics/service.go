// Package statistics 资产统计与基于统计的转账限制
//
// 资产代理启用统计维度后，每笔已提交的余额变动都会更新对应计数；
// 转账条件在结算前基于这些计数判断转账是否会越过限制。
package statistics

import (
	"fmt"
	"slices"

	statsconfig "github.com/polymesh/engine/internal/config/statistics"
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/core/state"
	"github.com/polymesh/engine/pkg/interfaces/agents"
	"github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	statsIface "github.com/polymesh/engine/pkg/interfaces/statistics"
	"github.com/polymesh/engine/pkg/types"
)

const moduleName = "statistics"

var (
	activeStatsPrefix    = state.Prefix(moduleName, "active_asset_stats")
	assetStatsPrefix     = state.Prefix(moduleName, "asset_stats")
	transferCondsPrefix  = state.Prefix(moduleName, "asset_transfer_compliances")
	exemptEntitiesPrefix = state.Prefix(moduleName, "transfer_condition_exempt_entities")
)

var _ statsIface.Service = (*Service)(nil)

// 事件
type (
	StatTypesSet struct {
		Asset types.Ticker     `json:"asset"`
		Stats []types.StatType `json:"stats"`
	}
	AssetStatsUpdated struct {
		Asset   types.Ticker       `json:"asset"`
		Stat    types.StatType     `json:"stat"`
		Updates []types.StatUpdate `json:"updates"`
	}
	TransferConditionsSet struct {
		Asset      types.Ticker              `json:"asset"`
		Conditions []types.TransferCondition `json:"conditions"`
	}
	TransferConditionsPaused struct {
		Asset types.Ticker `json:"asset"`
	}
	TransferConditionsResumed struct {
		Asset types.Ticker `json:"asset"`
	}
	TransferConditionExemptionsChanged struct {
		Key      types.TransferConditionExemptKey `json:"key"`
		IsExempt bool                             `json:"is_exempt"`
		Entities []types.IdentityId               `json:"entities"`
	}
)

// Service 统计引擎实现
type Service struct {
	identity identity.Service
	agents   agents.Service
	options  *statsconfig.StatisticsOptions
	logger   log.Logger
}

// NewService 创建统计引擎，options 为 nil 时使用默认配置
func NewService(ids identity.Service, agentSvc agents.Service, options *statsconfig.StatisticsOptions, logger log.Logger) *Service {
	if options == nil {
		options = statsconfig.New(nil).GetOptions()
	}
	return &Service{identity: ids, agents: agentSvc, options: options, logger: logger}
}

func normalizeStat(st types.StatType) types.StatType {
	if !st.HasClaim() {
		st.Issuer = types.NoIdentity
	}
	return st
}

// ActiveAssetStats 资产已启用的统计维度
func (s *Service) ActiveAssetStats(c *runtime.Context, asset types.Ticker) ([]types.StatType, error) {
	return state.LoadOr(c.Store(), state.KeyOf(activeStatsPrefix, asset), []types.StatType(nil))
}

// SetActiveAssetStats 替换资产启用的统计维度
//
// 停用的维度不清理已有计数；仍被转账条件使用的维度不能停用。
func (s *Service) SetActiveAssetStats(c *runtime.Context, asset types.Ticker, stats []types.StatType) error {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return err
	}

	var next []types.StatType
	for _, st := range stats {
		st = normalizeStat(st)
		if st.HasClaim() && !types.IsStatClaimType(st.ClaimType) {
			return fmt.Errorf("%w: %s", ErrUnsupportedStatClaim, st.ClaimType)
		}
		if !slices.Contains(next, st) {
			next = append(next, st)
		}
	}
	if len(next) > s.options.MaxStatsPerAsset {
		return fmt.Errorf("%w: %d > %d", ErrStatTypeLimitReached, len(next), s.options.MaxStatsPerAsset)
	}

	compliance, err := s.AssetTransferCompliance(c, asset)
	if err != nil {
		return err
	}
	for _, cond := range compliance.Conditions {
		if !slices.Contains(next, cond.StatType()) {
			return fmt.Errorf("%w: %s 仍被 %s 使用", ErrStatTypeMissing, cond.StatType(), cond)
		}
	}

	key := state.KeyOf(activeStatsPrefix, asset)
	if len(next) == 0 {
		if err := state.Remove(c.Store(), key); err != nil {
			return err
		}
	} else if err := state.Save(c.Store(), key, next); err != nil {
		return err
	}
	c.Deposit(moduleName, "StatTypesSet", StatTypesSet{Asset: asset, Stats: next})
	return nil
}

func (s *Service) ensureActive(c *runtime.Context, asset types.Ticker, st types.StatType) error {
	active, err := s.ActiveAssetStats(c, asset)
	if err != nil {
		return err
	}
	if !slices.Contains(active, normalizeStat(st)) {
		return fmt.Errorf("%w: %s", ErrStatTypeMissing, st)
	}
	return nil
}

func statKey(key1 types.Stat1stKey, key2 types.Stat2ndKey) []byte {
	return state.KeyOf(assetStatsPrefix, key1, key2)
}

// AssetStats 读取统计值，不存在时为零
func (s *Service) AssetStats(c *runtime.Context, key1 types.Stat1stKey, key2 types.Stat2ndKey) (types.Balance, error) {
	return state.LoadOr(c.Store(), statKey(key1, key2), types.ZeroBalance)
}

func (s *Service) setStat(c *runtime.Context, key1 types.Stat1stKey, key2 types.Stat2ndKey, value types.Balance) error {
	if value.IsZero() {
		return state.Remove(c.Store(), statKey(key1, key2))
	}
	return state.Save(c.Store(), statKey(key1, key2), value)
}

// InvestorCount 不分桶的持有人数量
func (s *Service) InvestorCount(c *runtime.Context, asset types.Ticker) (uint64, error) {
	count, err := s.AssetStats(c, types.Stat1stKey{Asset: asset, StatType: types.CountStat()}, types.NoClaimStat())
	if err != nil {
		return 0, err
	}
	return count.Uint64(), nil
}

// BatchUpdateAssetStats 代理直接设置统计值，Value 为 nil 删除该条目
func (s *Service) BatchUpdateAssetStats(c *runtime.Context, asset types.Ticker, stat types.StatType, updates []types.StatUpdate) error {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return err
	}
	if err := s.ensureActive(c, asset, stat); err != nil {
		return err
	}
	key1 := types.Stat1stKey{Asset: asset, StatType: normalizeStat(stat)}
	for _, u := range updates {
		if u.Value == nil {
			if err := state.Remove(c.Store(), statKey(key1, u.Key2)); err != nil {
				return err
			}
			continue
		}
		if err := s.setStat(c, key1, u.Key2, *u.Value); err != nil {
			return err
		}
	}
	c.Deposit(moduleName, "AssetStatsUpdated", AssetStatsUpdated{Asset: asset, Stat: key1.StatType, Updates: updates})
	return nil
}

// AssetTransferCompliance 资产的转账条件
func (s *Service) AssetTransferCompliance(c *runtime.Context, asset types.Ticker) (types.AssetTransferCompliance, error) {
	return state.LoadOr(c.Store(), state.KeyOf(transferCondsPrefix, asset), types.AssetTransferCompliance{})
}

func (s *Service) saveTransferCompliance(c *runtime.Context, asset types.Ticker, tc types.AssetTransferCompliance) error {
	return state.Save(c.Store(), state.KeyOf(transferCondsPrefix, asset), tc)
}

func validateCondition(cond types.TransferCondition) error {
	switch cond.Kind {
	case types.TransferMaxInvestorCount:
		return nil
	case types.TransferMaxInvestorOwnership:
		if cond.MaxPercent > types.PermillOne {
			return fmt.Errorf("%w: %s", ErrInvalidTransferCondition, cond)
		}
		return nil
	case types.TransferClaimCount:
		if !types.IsStatClaimType(cond.Claim.Type) {
			return fmt.Errorf("%w: %s", ErrUnsupportedStatClaim, cond.Claim.Type)
		}
		if cond.HasMax && cond.MaxCount < cond.MinCount {
			return fmt.Errorf("%w: %s", ErrInvalidTransferCondition, cond)
		}
		return nil
	case types.TransferClaimOwnership:
		if !types.IsStatClaimType(cond.Claim.Type) {
			return fmt.Errorf("%w: %s", ErrUnsupportedStatClaim, cond.Claim.Type)
		}
		if cond.MaxPercent < cond.MinPercent || cond.MaxPercent > types.PermillOne {
			return fmt.Errorf("%w: %s", ErrInvalidTransferCondition, cond)
		}
		return nil
	default:
		return fmt.Errorf("%w: 未知类别 %d", ErrInvalidTransferCondition, cond.Kind)
	}
}

// SetAssetTransferCompliance 替换资产的转账条件，所需统计维度必须已启用
func (s *Service) SetAssetTransferCompliance(c *runtime.Context, asset types.Ticker, conditions []types.TransferCondition) error {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return err
	}

	var next []types.TransferCondition
	for _, cond := range conditions {
		if err := validateCondition(cond); err != nil {
			return err
		}
		if !slices.Contains(next, cond) {
			next = append(next, cond)
		}
	}
	if len(next) > s.options.MaxTransferConditionsPerAsset {
		return fmt.Errorf("%w: %d > %d", ErrTransferConditionLimitReached, len(next), s.options.MaxTransferConditionsPerAsset)
	}
	for _, cond := range next {
		if err := s.ensureActive(c, asset, cond.StatType()); err != nil {
			return err
		}
	}

	tc, err := s.AssetTransferCompliance(c, asset)
	if err != nil {
		return err
	}
	tc.Conditions = next
	if err := s.saveTransferCompliance(c, asset, tc); err != nil {
		return err
	}
	c.Deposit(moduleName, "TransferConditionsSet", TransferConditionsSet{Asset: asset, Conditions: next})
	return nil
}

func (s *Service) setPaused(c *runtime.Context, asset types.Ticker, paused bool) error {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return err
	}
	tc, err := s.AssetTransferCompliance(c, asset)
	if err != nil {
		return err
	}
	tc.Paused = paused
	return s.saveTransferCompliance(c, asset, tc)
}

// PauseTransferConditions 暂停转账条件，暂停期间所有转账限制视为通过
func (s *Service) PauseTransferConditions(c *runtime.Context, asset types.Ticker) error {
	if err := s.setPaused(c, asset, true); err != nil {
		return err
	}
	c.Deposit(moduleName, "TransferConditionsPaused", TransferConditionsPaused{Asset: asset})
	return nil
}

// ResumeTransferConditions 恢复转账条件
func (s *Service) ResumeTransferConditions(c *runtime.Context, asset types.Ticker) error {
	if err := s.setPaused(c, asset, false); err != nil {
		return err
	}
	c.Deposit(moduleName, "TransferConditionsResumed", TransferConditionsResumed{Asset: asset})
	return nil
}

func exemptKey(key types.TransferConditionExemptKey, did types.IdentityId) []byte {
	return state.KeyOf(exemptEntitiesPrefix, key, did)
}

// SetEntitiesExempt 设置或取消豁免，豁免严格按 (资产, 聚合方式, 声明类别) 生效
func (s *Service) SetEntitiesExempt(c *runtime.Context, isExempt bool, key types.TransferConditionExemptKey, dids []types.IdentityId) error {
	if _, err := s.agents.EnsureAgent(c, key.Asset); err != nil {
		return err
	}
	for _, did := range dids {
		var err error
		if isExempt {
			err = state.Save(c.Store(), exemptKey(key, did), true)
		} else {
			err = state.Remove(c.Store(), exemptKey(key, did))
		}
		if err != nil {
			return err
		}
	}
	c.Deposit(moduleName, "TransferConditionExemptionsChanged", TransferConditionExemptionsChanged{
		Key:      key,
		IsExempt: isExempt,
		Entities: dids,
	})
	return nil
}

// IsExempt 身份是否被豁免，读取失败视为未豁免
func (s *Service) IsExempt(c *runtime.Context, key types.TransferConditionExemptKey, did types.IdentityId) bool {
	ok, err := c.Store().Has(exemptKey(key, did))
	if err != nil {
		s.warn("读取豁免失败", err)
		return false
	}
	return ok
}

// statClaimOf 身份在某统计分桶下的声明取值，按资产作用域读取 issuer 签发的声明
func (s *Service) statClaimOf(c *runtime.Context, asset types.Ticker, did types.IdentityId, claimType types.ClaimType, issuer types.IdentityId) types.StatClaim {
	record, ok := s.identity.FetchClaim(c, did, claimType, issuer, types.TickerScope(asset))
	switch claimType {
	case types.ClaimTypeJurisdiction:
		if !ok {
			return types.JurisdictionStatClaim("")
		}
		return types.JurisdictionStatClaim(record.Claim.Country)
	case types.ClaimTypeAccredited:
		return types.AccreditedStatClaim(ok)
	default:
		return types.AffiliateStatClaim(ok)
	}
}

func (s *Service) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warnf("%s: %v", msg, err)
	}
}
