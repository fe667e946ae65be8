// Package types 定义引擎各模块共享的领域数据类型
//
// 📋 **类型分层**
// - 标识类：IdentityId / AccountId / Ticker / PortfolioId
// - 数值类：Balance（128 位受检算术）/ Permill
// - 规则类：Claim / Condition / SubsetRestriction / TransferCondition
// - 业务实体：Venue / Instruction / Leg / Fundraiser
//
// 所有类型都是纯值类型，不持有存储引用，可以安全地复制与序列化。
package types

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// IdentityId 链上身份标识（DID），32 字节不透明值
type IdentityId [32]byte

// NoIdentity 零值 DID，作为“无身份”的哨兵值
var NoIdentity IdentityId

// IdentityIdFromBytes 从字节切片构造 DID
func IdentityIdFromBytes(b []byte) (IdentityId, error) {
	var id IdentityId
	if len(b) != len(id) {
		return id, fmt.Errorf("DID 长度错误: 期望 %d 字节, 实际 %d 字节", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

// ParseIdentityId 解析 0x 前缀的十六进制 DID
func ParseIdentityId(s string) (IdentityId, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return IdentityId{}, fmt.Errorf("DID 十六进制解析失败: %w", err)
	}
	return IdentityIdFromBytes(raw)
}

// IsZero 是否为哨兵值
func (id IdentityId) IsZero() bool {
	return id == NoIdentity
}

// Bytes 返回字节副本
func (id IdentityId) Bytes() []byte {
	out := make([]byte, len(id))
	copy(out, id[:])
	return out
}

// KeyBytes 存储键编码
func (id IdentityId) KeyBytes() []byte { return id.Bytes() }

// String 十六进制表示
func (id IdentityId) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// Short 日志用的短格式
func (id IdentityId) Short() string {
	return hex.EncodeToString(id[:4])
}

// MarshalText JSON/YAML 文本编码
func (id IdentityId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText JSON/YAML 文本解码
func (id *IdentityId) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentityId(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// AccountId 签名账户（公钥），32 字节
type AccountId [32]byte

// ParseAccountId 解析 base58 编码的账户
func ParseAccountId(s string) (AccountId, error) {
	var acc AccountId
	raw, err := base58.Decode(s)
	if err != nil {
		return acc, fmt.Errorf("账户 base58 解析失败: %w", err)
	}
	if len(raw) != len(acc) {
		return acc, fmt.Errorf("账户长度错误: 期望 %d 字节, 实际 %d 字节", len(acc), len(raw))
	}
	copy(acc[:], raw)
	return acc, nil
}

// AccountIdFromSeed 由任意种子字符串生成确定性账户（测试与创世配置使用）
func AccountIdFromSeed(seed string) AccountId {
	return AccountId(blake2b.Sum256([]byte(seed)))
}

// KeyBytes 存储键编码
func (a AccountId) KeyBytes() []byte { return append([]byte(nil), a[:]...) }

// String base58 表示
func (a AccountId) String() string {
	return base58.Encode(a[:])
}

// MarshalText 文本编码
func (a AccountId) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText 文本解码
func (a *AccountId) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountId(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Moment 时间戳（毫秒）
type Moment uint64

// BlockNumber 区块高度
type BlockNumber uint64

// DidRecord 身份记录
type DidRecord struct {
	Did        IdentityId `json:"did"`
	PrimaryKey AccountId  `json:"primary_key"`
	CreatedAt  Moment     `json:"created_at"`
}
