package types

import (
	"encoding/binary"
	"fmt"
)

// PortfolioNumber 用户投资组合编号（每个 DID 内单调递增，从 1 开始）
type PortfolioNumber uint64

// PortfolioKind 投资组合类别
type PortfolioKind struct {
	// User 为 false 时表示默认组合，Number 必须为 0
	User   bool            `json:"user"`
	Number PortfolioNumber `json:"number,omitempty"`
}

// DefaultPortfolioKind 默认组合
var DefaultPortfolioKind = PortfolioKind{}

// UserPortfolioKind 用户组合
func UserPortfolioKind(n PortfolioNumber) PortfolioKind {
	return PortfolioKind{User: true, Number: n}
}

// PortfolioId 投资组合标识
type PortfolioId struct {
	Did  IdentityId    `json:"did"`
	Kind PortfolioKind `json:"kind"`
}

// DefaultPortfolio 某 DID 的默认组合
func DefaultPortfolio(did IdentityId) PortfolioId {
	return PortfolioId{Did: did, Kind: DefaultPortfolioKind}
}

// UserPortfolio 某 DID 的用户组合
func UserPortfolio(did IdentityId, n PortfolioNumber) PortfolioId {
	return PortfolioId{Did: did, Kind: UserPortfolioKind(n)}
}

// IsDefault 是否默认组合
func (p PortfolioId) IsDefault() bool {
	return !p.Kind.User
}

// KeyBytes 存储键编码：did(32) || tag(1) || number(8)
func (p PortfolioId) KeyBytes() []byte {
	out := make([]byte, 0, 41)
	out = append(out, p.Did[:]...)
	if p.Kind.User {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	return binary.BigEndian.AppendUint64(out, uint64(p.Kind.Number))
}

// String 可读格式
func (p PortfolioId) String() string {
	if p.Kind.User {
		return fmt.Sprintf("%s/%d", p.Did.Short(), p.Kind.Number)
	}
	return p.Did.Short() + "/default"
}

// PortfolioRecord 用户组合记录
type PortfolioRecord struct {
	Id   PortfolioId `json:"id"`
	Name string      `json:"name"`
}

// MovePortfolioItem 组合间划转的一项资产
type MovePortfolioItem struct {
	Asset  Ticker  `json:"asset"`
	Amount Balance `json:"amount"`
	Memo   string  `json:"memo,omitempty"`
}

// PortfolioHolding 组合持仓
type PortfolioHolding struct {
	Asset   Ticker  `json:"asset"`
	Balance Balance `json:"balance"`
	Locked  Balance `json:"locked"`
}
