package types

import (
	"bytes"
	"fmt"
	"strings"
)

// TickerLen Ticker 的固定字节长度
const TickerLen = 12

var (
	// ErrEmptyTicker 空 Ticker
	ErrEmptyTicker = NewKindError(KindValidation, "Ticker 不能为空")
	// ErrTickerTooLong Ticker 超长
	ErrTickerTooLong = NewKindError(KindValidation, "Ticker 长度超出限制")
	// ErrInvalidTickerCharacter Ticker 含非法字符
	ErrInvalidTickerCharacter = NewKindError(KindValidation, "Ticker 含有非法字符")
)

// Ticker 资产代码，定长 12 字节，右侧零填充，大写归一化
type Ticker [TickerLen]byte

// NewTicker 从字符串构造 Ticker
//
// 输入先转为大写，允许的字符为 A-Z 0-9 _ - . /
func NewTicker(s string) (Ticker, error) {
	var t Ticker
	if s == "" {
		return t, ErrEmptyTicker
	}
	if len(s) > TickerLen {
		return t, ErrTickerTooLong
	}
	upper := strings.ToUpper(s)
	for i := 0; i < len(upper); i++ {
		if !isTickerChar(upper[i]) {
			return t, ErrInvalidTickerCharacter
		}
	}
	copy(t[:], upper)
	return t, nil
}

// MustTicker 构造 Ticker，失败时 panic（仅用于常量与测试）
func MustTicker(s string) Ticker {
	t, err := NewTicker(s)
	if err != nil {
		panic(err)
	}
	return t
}

func isTickerChar(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-' || c == '.' || c == '/':
		return true
	}
	return false
}

// Len 有效字节长度
func (t Ticker) Len() int {
	return len(bytes.TrimRight(t[:], "\x00"))
}

// IsZero 是否为空
func (t Ticker) IsZero() bool {
	return t == Ticker{}
}

// KeyBytes 存储键编码，固定 12 字节
func (t Ticker) KeyBytes() []byte { return append([]byte(nil), t[:]...) }

// String 去除填充后的字符串
func (t Ticker) String() string {
	return string(bytes.TrimRight(t[:], "\x00"))
}

// MarshalText 文本编码
func (t Ticker) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText 文本解码
func (t *Ticker) UnmarshalText(text []byte) error {
	parsed, err := NewTicker(string(text))
	if err != nil {
		return fmt.Errorf("%w: %q", err, string(text))
	}
	*t = parsed
	return nil
}
