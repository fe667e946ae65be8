package types

import (
	"iter"
	"math"
	"slices"
)

// ConditionKind 条件类别（闭合集合）
type ConditionKind uint8

const (
	ConditionIsPresent ConditionKind = iota + 1
	ConditionIsAbsent
	ConditionIsAnyOf
	ConditionIsNoneOf
	ConditionIsIdentity
)

// String 名称
func (k ConditionKind) String() string {
	switch k {
	case ConditionIsPresent:
		return "IsPresent"
	case ConditionIsAbsent:
		return "IsAbsent"
	case ConditionIsAnyOf:
		return "IsAnyOf"
	case ConditionIsNoneOf:
		return "IsNoneOf"
	case ConditionIsIdentity:
		return "IsIdentity"
	default:
		return "Unknown"
	}
}

// TargetIdentity IsIdentity 条件的目标
type TargetIdentity struct {
	// ExternalAgent 为 true 时目标是资产当前的外部代理（评估时动态解析）
	ExternalAgent bool       `json:"external_agent,omitempty"`
	Identity      IdentityId `json:"identity,omitempty"`
}

// ExternalAgentTarget 外部代理目标
func ExternalAgentTarget() TargetIdentity {
	return TargetIdentity{ExternalAgent: true}
}

// SpecificTarget 指定身份目标
func SpecificTarget(id IdentityId) TargetIdentity {
	return TargetIdentity{Identity: id}
}

// ConditionType 条件内容
//
//   - IsPresent / IsAbsent 使用 Claim
//   - IsAnyOf / IsNoneOf 使用 Claims
//   - IsIdentity 使用 Target
type ConditionType struct {
	Kind   ConditionKind   `json:"kind"`
	Claim  *Claim          `json:"claim,omitempty"`
	Claims []Claim         `json:"claims,omitempty"`
	Target *TargetIdentity `json:"target,omitempty"`
}

// IsPresent 声明必须存在
func IsPresent(c Claim) ConditionType {
	return ConditionType{Kind: ConditionIsPresent, Claim: &c}
}

// IsAbsent 声明必须不存在
func IsAbsent(c Claim) ConditionType {
	return ConditionType{Kind: ConditionIsAbsent, Claim: &c}
}

// IsAnyOf 至少存在其一
func IsAnyOf(cs ...Claim) ConditionType {
	return ConditionType{Kind: ConditionIsAnyOf, Claims: cs}
}

// IsNoneOf 全部不存在
func IsNoneOf(cs ...Claim) ConditionType {
	return ConditionType{Kind: ConditionIsNoneOf, Claims: cs}
}

// IsIdentity 身份匹配
func IsIdentity(t TargetIdentity) ConditionType {
	return ConditionType{Kind: ConditionIsIdentity, Target: &t}
}

// claimCount 条件内嵌的声明数量
func (ct ConditionType) claimCount() int {
	switch ct.Kind {
	case ConditionIsPresent, ConditionIsAbsent:
		if ct.Claim != nil {
			return 1
		}
		return 0
	case ConditionIsAnyOf, ConditionIsNoneOf:
		return len(ct.Claims)
	default:
		return 0
	}
}

// TrustedFor 发行方可信范围
type TrustedFor struct {
	// Any 为 true 时对所有声明类别可信，否则仅对 Specific 中的类别可信
	Any      bool        `json:"any"`
	Specific []ClaimType `json:"specific,omitempty"`
}

// TrustedIssuer 可信声明发行方
type TrustedIssuer struct {
	Issuer     IdentityId `json:"issuer"`
	TrustedFor TrustedFor `json:"trusted_for"`
}

// TrustedForAny 对全部类别可信的发行方
func TrustedForAny(issuer IdentityId) TrustedIssuer {
	return TrustedIssuer{Issuer: issuer, TrustedFor: TrustedFor{Any: true}}
}

// TrustedForSpecific 仅对指定类别可信的发行方
func TrustedForSpecific(issuer IdentityId, types ...ClaimType) TrustedIssuer {
	return TrustedIssuer{Issuer: issuer, TrustedFor: TrustedFor{Specific: types}}
}

// IsTrustedFor 是否对该类别可信
func (ti TrustedIssuer) IsTrustedFor(t ClaimType) bool {
	return ti.TrustedFor.Any || slices.Contains(ti.TrustedFor.Specific, t)
}

// Condition 合规条件
type Condition struct {
	ConditionType ConditionType   `json:"condition_type"`
	Issuers       []TrustedIssuer `json:"issuers,omitempty"`
}

// NewCondition 构造条件
func NewCondition(ct ConditionType, issuers ...TrustedIssuer) Condition {
	return Condition{ConditionType: ct, Issuers: issuers}
}

// Claims 惰性枚举条件内嵌的声明（IsIdentity 为空序列）
func (c Condition) Claims() iter.Seq[Claim] {
	return func(yield func(Claim) bool) {
		switch c.ConditionType.Kind {
		case ConditionIsPresent, ConditionIsAbsent:
			if c.ConditionType.Claim != nil {
				yield(*c.ConditionType.Claim)
			}
		case ConditionIsAnyOf, ConditionIsNoneOf:
			for _, cl := range c.ConditionType.Claims {
				if !yield(cl) {
					return
				}
			}
		}
	}
}

// Complexity 复杂度 = 声明数 × max(1, 发行方数量或默认发行方数量)，饱和到 uint32 上限
func (c Condition) Complexity(defaultIssuerCount int) uint32 {
	issuers := len(c.Issuers)
	if issuers == 0 {
		issuers = defaultIssuerCount
	}
	return saturatingMulU32(c.ConditionType.claimCount(), max(1, issuers))
}

// Equal 结构相等（用于重复需求检测）
func (c Condition) Equal(o Condition) bool {
	a, b := c.ConditionType, o.ConditionType
	if a.Kind != b.Kind || len(c.Issuers) != len(o.Issuers) {
		return false
	}
	if (a.Claim == nil) != (b.Claim == nil) || (a.Claim != nil && *a.Claim != *b.Claim) {
		return false
	}
	if (a.Target == nil) != (b.Target == nil) || (a.Target != nil && *a.Target != *b.Target) {
		return false
	}
	if !slices.Equal(a.Claims, b.Claims) {
		return false
	}
	for i := range c.Issuers {
		x, y := c.Issuers[i], o.Issuers[i]
		if x.Issuer != y.Issuer || x.TrustedFor.Any != y.TrustedFor.Any || !slices.Equal(x.TrustedFor.Specific, y.TrustedFor.Specific) {
			return false
		}
	}
	return true
}

func saturatingMulU32(a, b int) uint32 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if uint64(a) > math.MaxUint32/uint64(b) {
		return math.MaxUint32
	}
	return uint32(a * b)
}

// SaturatingAddU32 饱和加法
func SaturatingAddU32(a, b uint32) uint32 {
	if a > math.MaxUint32-b {
		return math.MaxUint32
	}
	return a + b
}
