package types

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// ClaimType 声明类别
type ClaimType uint8

const (
	ClaimTypeAccredited ClaimType = iota + 1
	ClaimTypeAffiliate
	ClaimTypeBuyLockup
	ClaimTypeSellLockup
	ClaimTypeCustomerDueDiligence
	ClaimTypeKnowYourCustomer
	ClaimTypeJurisdiction
	ClaimTypeExempted
	ClaimTypeBlocked
	ClaimTypeCustom
)

var claimTypeNames = map[ClaimType]string{
	ClaimTypeAccredited:           "Accredited",
	ClaimTypeAffiliate:            "Affiliate",
	ClaimTypeBuyLockup:            "BuyLockup",
	ClaimTypeSellLockup:           "SellLockup",
	ClaimTypeCustomerDueDiligence: "CustomerDueDiligence",
	ClaimTypeKnowYourCustomer:     "KnowYourCustomer",
	ClaimTypeJurisdiction:         "Jurisdiction",
	ClaimTypeExempted:             "Exempted",
	ClaimTypeBlocked:              "Blocked",
	ClaimTypeCustom:               "Custom",
}

// String 名称
func (t ClaimType) String() string {
	if name, ok := claimTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ClaimType(%d)", uint8(t))
}

// ParseClaimType 按名称解析（大小写不敏感）
func ParseClaimType(s string) (ClaimType, error) {
	for t, name := range claimTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("未知的声明类别: %s", s)
}

// MarshalText 文本编码
func (t ClaimType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText 文本解码
func (t *ClaimType) UnmarshalText(text []byte) error {
	parsed, err := ParseClaimType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ScopeKind 声明作用域类别
type ScopeKind uint8

const (
	// ScopeNone 无作用域（仅 CDD 声明）
	ScopeNone ScopeKind = iota
	ScopeIdentity
	ScopeTicker
	ScopeCustom
)

// Scope 声明作用域
type Scope struct {
	Kind     ScopeKind  `json:"kind"`
	Identity IdentityId `json:"identity,omitempty"`
	Ticker   Ticker     `json:"ticker,omitempty"`
	Custom   string     `json:"custom,omitempty"`
}

// TickerScope Ticker 作用域
func TickerScope(t Ticker) Scope {
	return Scope{Kind: ScopeTicker, Ticker: t}
}

// IdentityScope 身份作用域
func IdentityScope(id IdentityId) Scope {
	return Scope{Kind: ScopeIdentity, Identity: id}
}

// CustomScope 自定义作用域
func CustomScope(s string) Scope {
	return Scope{Kind: ScopeCustom, Custom: s}
}

// KeyBytes 存储键编码
func (s Scope) KeyBytes() []byte {
	switch s.Kind {
	case ScopeIdentity:
		return append([]byte{byte(s.Kind)}, s.Identity[:]...)
	case ScopeTicker:
		return append([]byte{byte(s.Kind)}, s.Ticker[:]...)
	case ScopeCustom:
		return append([]byte{byte(s.Kind)}, s.Custom...)
	default:
		return []byte{byte(ScopeNone)}
	}
}

// CountryCode ISO 3166-1 alpha-2 国家代码
type CountryCode string

// CddId CDD 声明携带的不透明标识
type CddId [32]byte

// Claim 身份声明
//
// 闭合标签联合：Type 决定哪些载荷字段有效。
//   - Jurisdiction 使用 Country
//   - CustomerDueDiligence 使用 Cdd，且没有作用域
//   - Custom 使用 CustomId
type Claim struct {
	Type     ClaimType   `json:"type"`
	Scope    Scope       `json:"scope"`
	Country  CountryCode `json:"country,omitempty"`
	Cdd      CddId       `json:"cdd,omitempty"`
	CustomId uint32      `json:"custom_id,omitempty"`
}

// AccreditedClaim 合格投资者
func AccreditedClaim(scope Scope) Claim { return Claim{Type: ClaimTypeAccredited, Scope: scope} }

// AffiliateClaim 关联方
func AffiliateClaim(scope Scope) Claim { return Claim{Type: ClaimTypeAffiliate, Scope: scope} }

// BuyLockupClaim 买入锁定
func BuyLockupClaim(scope Scope) Claim { return Claim{Type: ClaimTypeBuyLockup, Scope: scope} }

// SellLockupClaim 卖出锁定
func SellLockupClaim(scope Scope) Claim { return Claim{Type: ClaimTypeSellLockup, Scope: scope} }

// KycClaim KYC
func KycClaim(scope Scope) Claim { return Claim{Type: ClaimTypeKnowYourCustomer, Scope: scope} }

// ExemptedClaim 豁免
func ExemptedClaim(scope Scope) Claim { return Claim{Type: ClaimTypeExempted, Scope: scope} }

// BlockedClaim 黑名单
func BlockedClaim(scope Scope) Claim { return Claim{Type: ClaimTypeBlocked, Scope: scope} }

// CddClaim 客户尽职调查
func CddClaim(id CddId) Claim { return Claim{Type: ClaimTypeCustomerDueDiligence, Cdd: id} }

// JurisdictionClaim 司法管辖区
func JurisdictionClaim(country CountryCode, scope Scope) Claim {
	return Claim{Type: ClaimTypeJurisdiction, Country: country, Scope: scope}
}

// CustomClaim 自定义声明
func CustomClaim(id uint32, scope Scope) Claim {
	return Claim{Type: ClaimTypeCustom, CustomId: id, Scope: scope}
}

// ClaimType 派生的声明类别
func (c Claim) ClaimType() ClaimType {
	return c.Type
}

// Matches 判断持有的声明是否满足要求的声明
//
// CDD 声明只比较类别；其余声明比较类别、作用域与载荷。
func (c Claim) Matches(held Claim) bool {
	if c.Type != held.Type {
		return false
	}
	switch c.Type {
	case ClaimTypeCustomerDueDiligence:
		return true
	case ClaimTypeJurisdiction:
		return c.Scope == held.Scope && c.Country == held.Country
	case ClaimTypeCustom:
		return c.Scope == held.Scope && c.CustomId == held.CustomId
	default:
		return c.Scope == held.Scope
	}
}

// KeyBytes 存储键编码（类别 + 作用域），同一发行方同一作用域同类别的声明互相覆盖
func (c Claim) KeyBytes() []byte {
	out := []byte{byte(c.Type)}
	if c.Type == ClaimTypeCustom {
		out = binary.BigEndian.AppendUint32(out, c.CustomId)
	}
	return append(out, c.Scope.KeyBytes()...)
}

// IdentityClaim 已签发的声明记录
type IdentityClaim struct {
	Issuer       IdentityId `json:"issuer"`
	IssuanceDate Moment     `json:"issuance_date"`
	LastUpdate   Moment     `json:"last_update_date"`
	Expiry       *Moment    `json:"expiry,omitempty"`
	Claim        Claim      `json:"claim"`
}

// IsExpired 在给定时间是否已过期
func (ic IdentityClaim) IsExpired(now Moment) bool {
	return ic.Expiry != nil && *ic.Expiry <= now
}
