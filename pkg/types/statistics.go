package types

import "fmt"

// StatOpType 统计项的聚合方式
type StatOpType uint8

const (
	// StatOpCount 持有人计数
	StatOpCount StatOpType = iota
	// StatOpBalance 余额汇总
	StatOpBalance
)

// String 名称
func (o StatOpType) String() string {
	if o == StatOpBalance {
		return "Balance"
	}
	return "Count"
}

// StatType 一个被追踪的统计维度
//
// ClaimType 为 0 表示不按声明分桶；否则按 Issuer 签发的该类声明取值分桶。
type StatType struct {
	Op        StatOpType `json:"op"`
	ClaimType ClaimType  `json:"claim_type,omitempty"`
	Issuer    IdentityId `json:"issuer,omitempty"`
}

// CountStat 不分桶的持有人计数
func CountStat() StatType { return StatType{Op: StatOpCount} }

// BalanceStat 不分桶的余额汇总
func BalanceStat() StatType { return StatType{Op: StatOpBalance} }

// ClaimStat 按声明分桶的统计
func ClaimStat(op StatOpType, claimType ClaimType, issuer IdentityId) StatType {
	return StatType{Op: op, ClaimType: claimType, Issuer: issuer}
}

// HasClaim 是否按声明分桶
func (s StatType) HasClaim() bool {
	return s.ClaimType != 0
}

// KeyBytes 存储键编码
func (s StatType) KeyBytes() []byte {
	out := []byte{byte(s.Op), byte(s.ClaimType)}
	if s.HasClaim() {
		out = append(out, s.Issuer[:]...)
	}
	return out
}

// String 可读格式
func (s StatType) String() string {
	if !s.HasClaim() {
		return s.Op.String()
	}
	return fmt.Sprintf("%s(%s@%s)", s.Op, s.ClaimType, s.Issuer.Short())
}

// StatClaim 统计分桶使用的声明取值
//
//   - Accredited / Affiliate 使用 Flag（是否持有该声明）
//   - Jurisdiction 使用 Country（空字符串表示没有管辖区声明）
type StatClaim struct {
	Type    ClaimType   `json:"type"`
	Flag    bool        `json:"flag,omitempty"`
	Country CountryCode `json:"country,omitempty"`
}

// AccreditedStatClaim 合格投资者分桶
func AccreditedStatClaim(flag bool) StatClaim {
	return StatClaim{Type: ClaimTypeAccredited, Flag: flag}
}

// AffiliateStatClaim 关联方分桶
func AffiliateStatClaim(flag bool) StatClaim {
	return StatClaim{Type: ClaimTypeAffiliate, Flag: flag}
}

// JurisdictionStatClaim 管辖区分桶
func JurisdictionStatClaim(country CountryCode) StatClaim {
	return StatClaim{Type: ClaimTypeJurisdiction, Country: country}
}

// IsStatClaimType 该声明类别是否支持统计分桶
func IsStatClaimType(t ClaimType) bool {
	return t == ClaimTypeAccredited || t == ClaimTypeAffiliate || t == ClaimTypeJurisdiction
}

// KeyBytes 存储键编码
func (c StatClaim) KeyBytes() []byte {
	out := []byte{byte(c.Type)}
	switch c.Type {
	case ClaimTypeJurisdiction:
		out = append(out, c.Country...)
	default:
		if c.Flag {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

// Stat1stKey 统计一级键
type Stat1stKey struct {
	Asset    Ticker   `json:"asset"`
	StatType StatType `json:"stat_type"`
}

// KeyBytes 存储键编码
func (k Stat1stKey) KeyBytes() []byte {
	return append(k.Asset[:len(k.Asset):len(k.Asset)], k.StatType.KeyBytes()...)
}

// Stat2ndKey 统计二级键：不分桶或某个声明取值
type Stat2ndKey struct {
	HasClaim bool      `json:"has_claim"`
	Claim    StatClaim `json:"claim,omitempty"`
}

// NoClaimStat 不分桶
func NoClaimStat() Stat2ndKey { return Stat2ndKey{} }

// ClaimKey 声明分桶
func ClaimKey(c StatClaim) Stat2ndKey { return Stat2ndKey{HasClaim: true, Claim: c} }

// KeyBytes 存储键编码
func (k Stat2ndKey) KeyBytes() []byte {
	if !k.HasClaim {
		return []byte{0}
	}
	return append([]byte{1}, k.Claim.KeyBytes()...)
}

// StatUpdate 批量设置统计值，Value 为 nil 时删除该条目
type StatUpdate struct {
	Key2  Stat2ndKey `json:"key2"`
	Value *Balance   `json:"value,omitempty"`
}

// TransferConditionKind 转账条件类别
type TransferConditionKind uint8

const (
	TransferMaxInvestorCount TransferConditionKind = iota + 1
	TransferMaxInvestorOwnership
	TransferClaimCount
	TransferClaimOwnership
)

// String 名称
func (k TransferConditionKind) String() string {
	switch k {
	case TransferMaxInvestorCount:
		return "MaxInvestorCount"
	case TransferMaxInvestorOwnership:
		return "MaxInvestorOwnership"
	case TransferClaimCount:
		return "ClaimCount"
	case TransferClaimOwnership:
		return "ClaimOwnership"
	default:
		return "Unknown"
	}
}

// TransferCondition 基于统计值的转账限制
//
//   - MaxInvestorCount 使用 MaxCount
//   - MaxInvestorOwnership 使用 MaxPercent
//   - ClaimCount 使用 Claim/Issuer/MinCount/MaxCount（HasMax 为 false 时上限为无穷）
//   - ClaimOwnership 使用 Claim/Issuer/MinPercent/MaxPercent
type TransferCondition struct {
	Kind       TransferConditionKind `json:"kind"`
	Claim      StatClaim             `json:"claim,omitempty"`
	Issuer     IdentityId            `json:"issuer,omitempty"`
	MinCount   uint64                `json:"min_count,omitempty"`
	MaxCount   uint64                `json:"max_count,omitempty"`
	HasMax     bool                  `json:"has_max,omitempty"`
	MinPercent Permill               `json:"min_percent,omitempty"`
	MaxPercent Permill               `json:"max_percent,omitempty"`
}

// MaxInvestorCount 持有人数量上限
func MaxInvestorCount(n uint64) TransferCondition {
	return TransferCondition{Kind: TransferMaxInvestorCount, MaxCount: n, HasMax: true}
}

// MaxInvestorOwnership 单一持有人持股比例上限
func MaxInvestorOwnership(p Permill) TransferCondition {
	return TransferCondition{Kind: TransferMaxInvestorOwnership, MaxPercent: p}
}

// ClaimCount 某声明分桶的持有人数量区间；max 为 nil 表示无上限
func ClaimCount(claim StatClaim, issuer IdentityId, min uint64, max *uint64) TransferCondition {
	tc := TransferCondition{Kind: TransferClaimCount, Claim: claim, Issuer: issuer, MinCount: min}
	if max != nil {
		tc.MaxCount, tc.HasMax = *max, true
	}
	return tc
}

// ClaimOwnership 某声明分桶的持股比例区间
func ClaimOwnership(claim StatClaim, issuer IdentityId, min, max Permill) TransferCondition {
	return TransferCondition{Kind: TransferClaimOwnership, Claim: claim, Issuer: issuer, MinPercent: min, MaxPercent: max}
}

// StatType 该条件依赖的统计维度
func (tc TransferCondition) StatType() StatType {
	switch tc.Kind {
	case TransferMaxInvestorCount:
		return CountStat()
	case TransferMaxInvestorOwnership:
		return BalanceStat()
	case TransferClaimCount:
		return ClaimStat(StatOpCount, tc.Claim.Type, tc.Issuer)
	default:
		return ClaimStat(StatOpBalance, tc.Claim.Type, tc.Issuer)
	}
}

// ExemptKey 该条件对应的豁免键
func (tc TransferCondition) ExemptKey(asset Ticker) TransferConditionExemptKey {
	st := tc.StatType()
	return TransferConditionExemptKey{Asset: asset, Op: st.Op, ClaimType: st.ClaimType}
}

// String 可读格式
func (tc TransferCondition) String() string {
	switch tc.Kind {
	case TransferMaxInvestorCount:
		return fmt.Sprintf("MaxInvestorCount(%d)", tc.MaxCount)
	case TransferMaxInvestorOwnership:
		return fmt.Sprintf("MaxInvestorOwnership(%s)", tc.MaxPercent)
	case TransferClaimCount:
		if tc.HasMax {
			return fmt.Sprintf("ClaimCount(%s,%d..%d)", tc.Claim.Type, tc.MinCount, tc.MaxCount)
		}
		return fmt.Sprintf("ClaimCount(%s,%d..)", tc.Claim.Type, tc.MinCount)
	default:
		return fmt.Sprintf("ClaimOwnership(%s,%s..%s)", tc.Claim.Type, tc.MinPercent, tc.MaxPercent)
	}
}

// TransferConditionExemptKey 豁免键：(资产, 聚合方式, 声明类别)
type TransferConditionExemptKey struct {
	Asset     Ticker     `json:"asset"`
	Op        StatOpType `json:"op"`
	ClaimType ClaimType  `json:"claim_type,omitempty"`
}

// KeyBytes 存储键编码
func (k TransferConditionExemptKey) KeyBytes() []byte {
	return append(k.Asset[:len(k.Asset):len(k.Asset)], byte(k.Op), byte(k.ClaimType))
}

// TransferConditionResult 单个转账条件的评估结果
type TransferConditionResult struct {
	Condition TransferCondition `json:"condition"`
	Result    bool              `json:"result"`
}

// AssetTransferCompliance 资产的转账条件配置
type AssetTransferCompliance struct {
	Paused     bool                `json:"paused"`
	Conditions []TransferCondition `json:"conditions"`
}
