package types

import "fmt"

// PermillOne 百万分比的满值（100%）
const PermillOne = 1_000_000

// Permill 百万分比，取值 [0, 1_000_000]
type Permill uint32

// NewPermill 构造百万分比，超出上限时截断为 100%
func NewPermill(parts uint32) Permill {
	if parts > PermillOne {
		return PermillOne
	}
	return Permill(parts)
}

// PermillFromPercent 由整数百分比构造
func PermillFromPercent(percent uint32) Permill {
	return NewPermill(percent * 10_000)
}

// String 百分比格式
func (p Permill) String() string {
	return fmt.Sprintf("%d.%04d%%", uint32(p)/10_000, uint32(p)%10_000)
}
