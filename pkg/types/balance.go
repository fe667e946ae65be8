package types

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
)

// balanceBits 余额位宽上限（u128）
const balanceBits = 128

var (
	// ErrBalanceOverflow 余额加法/乘法溢出
	ErrBalanceOverflow = NewKindError(KindArithmetic, "余额溢出")
	// ErrBalanceUnderflow 余额减法下溢
	ErrBalanceUnderflow = NewKindError(KindArithmetic, "余额下溢")
)

// Balance 128 位无符号金额
//
// 内部使用 uint256 计算，任何超过 128 位的结果都视为溢出；
// 所有运算返回新值，不修改接收者。
type Balance struct {
	v uint256.Int
}

// ZeroBalance 零值
var ZeroBalance = Balance{}

// NewBalance 从 uint64 构造
func NewBalance(n uint64) Balance {
	var b Balance
	b.v.SetUint64(n)
	return b
}

// ParseBalance 解析十进制字符串
func ParseBalance(s string) (Balance, error) {
	var b Balance
	if err := b.v.SetFromDecimal(s); err != nil {
		return Balance{}, fmt.Errorf("金额解析失败: %w", err)
	}
	if b.v.BitLen() > balanceBits {
		return Balance{}, ErrBalanceOverflow
	}
	return b, nil
}

// MaxBalance u128 最大值
func MaxBalance() Balance {
	var b Balance
	b.v.SetAllOne()
	b.v.Rsh(&b.v, 256-balanceBits)
	return b
}

// IsZero 是否为零
func (b Balance) IsZero() bool {
	return b.v.IsZero()
}

// Cmp 比较：-1 / 0 / 1
func (b Balance) Cmp(o Balance) int {
	return b.v.Cmp(&o.v)
}

// Lt 小于
func (b Balance) Lt(o Balance) bool { return b.v.Lt(&o.v) }

// Gt 大于
func (b Balance) Gt(o Balance) bool { return b.v.Gt(&o.v) }

// Eq 等于
func (b Balance) Eq(o Balance) bool { return b.v.Eq(&o.v) }

// CheckedAdd 受检加法
func (b Balance) CheckedAdd(o Balance) (Balance, error) {
	var out Balance
	if _, overflow := out.v.AddOverflow(&b.v, &o.v); overflow || out.v.BitLen() > balanceBits {
		return Balance{}, ErrBalanceOverflow
	}
	return out, nil
}

// CheckedSub 受检减法
func (b Balance) CheckedSub(o Balance) (Balance, error) {
	if b.v.Lt(&o.v) {
		return Balance{}, ErrBalanceUnderflow
	}
	var out Balance
	out.v.Sub(&b.v, &o.v)
	return out, nil
}

// CheckedMul 受检乘法
func (b Balance) CheckedMul(o Balance) (Balance, error) {
	var out Balance
	if _, overflow := out.v.MulOverflow(&b.v, &o.v); overflow || out.v.BitLen() > balanceBits {
		return Balance{}, ErrBalanceOverflow
	}
	return out, nil
}

// SaturatingSub 饱和减法，下溢时为零
func (b Balance) SaturatingSub(o Balance) Balance {
	out, err := b.CheckedSub(o)
	if err != nil {
		return Balance{}
	}
	return out
}

// Min 取较小值
func (b Balance) Min(o Balance) Balance {
	if b.Lt(o) {
		return b
	}
	return o
}

// IsMultipleOf 是否为 unit 的整数倍
func (b Balance) IsMultipleOf(unit Balance) bool {
	if unit.IsZero() {
		return true
	}
	var rem uint256.Int
	rem.Mod(&b.v, &unit.v)
	return rem.IsZero()
}

// Ratio 以百万分比表示 b / total，向下取整；total 为零时返回 0
func (b Balance) Ratio(total Balance) Permill {
	if total.IsZero() {
		return 0
	}
	var num, scaled uint256.Int
	num.Mul(&b.v, uint256.NewInt(PermillOne))
	scaled.Div(&num, &total.v)
	if !scaled.IsUint64() || scaled.Uint64() > PermillOne {
		return Permill(PermillOne)
	}
	return Permill(scaled.Uint64())
}

// CmpRatio 比较 b/total 与 p：-1 / 0 / 1；total 为零时比例视为 0
//
// u128 乘以 10^6 不会超出 256 位，交叉相乘无需除法。
func (b Balance) CmpRatio(total Balance, p Permill) int {
	if total.IsZero() {
		if p == 0 {
			return 0
		}
		return -1
	}
	var lhs, rhs uint256.Int
	lhs.Mul(&b.v, uint256.NewInt(PermillOne))
	rhs.Mul(&total.v, uint256.NewInt(uint64(p)))
	return lhs.Cmp(&rhs)
}

// Uint64 截断为 uint64（仅用于计数类场景）
func (b Balance) Uint64() uint64 {
	return b.v.Uint64()
}

// IsUint64 是否可以无损转为 uint64
func (b Balance) IsUint64() bool {
	return b.v.IsUint64()
}


// String 十进制表示
func (b Balance) String() string {
	return b.v.Dec()
}

// MarshalBinary 16 字节大端编码（存储编解码使用）
func (b Balance) MarshalBinary() ([]byte, error) {
	out := make([]byte, 16)
	binary.BigEndian.PutUint64(out[:8], b.v[1])
	binary.BigEndian.PutUint64(out[8:], b.v[0])
	return out, nil
}

// UnmarshalBinary 16 字节大端解码
func (b *Balance) UnmarshalBinary(data []byte) error {
	if len(data) != 16 {
		return fmt.Errorf("金额编码长度错误: %d", len(data))
	}
	b.v = uint256.Int{binary.BigEndian.Uint64(data[8:]), binary.BigEndian.Uint64(data[:8]), 0, 0}
	return nil
}

// MarshalText 十进制文本
func (b Balance) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText 十进制文本解析
func (b *Balance) UnmarshalText(text []byte) error {
	parsed, err := ParseBalance(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
