package state

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// 确定性编码：同一值总是得到相同字节
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("初始化 CBOR 编码器失败: %v", err))
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("初始化 CBOR 解码器失败: %v", err))
	}
}

// ErrCorruptValue 存储中的值无法解码
var ErrCorruptValue = errors.New("状态值解码失败")

// Encode 确定性 CBOR 编码
func Encode(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

// Decode CBOR 解码
func Decode(data []byte, v interface{}) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptValue, err)
	}
	return nil
}

// Load 读取并解码，键不存在时 ok 为 false
func Load[T any](s Store, key []byte) (value T, ok bool, err error) {
	raw, err := s.Get(key)
	if err != nil || raw == nil {
		return value, false, err
	}
	if err := Decode(raw, &value); err != nil {
		return value, false, err
	}
	return value, true, nil
}

// LoadOr 读取并解码，键不存在时返回 fallback
func LoadOr[T any](s Store, key []byte, fallback T) (T, error) {
	value, ok, err := Load[T](s, key)
	if err != nil || !ok {
		return fallback, err
	}
	return value, nil
}

// Save 编码并写入
func Save[T any](s Store, key []byte, value T) error {
	raw, err := Encode(value)
	if err != nil {
		return fmt.Errorf("状态值编码失败: %w", err)
	}
	return s.Set(key, raw)
}

// Remove 删除键
func Remove(s Store, key []byte) error {
	return s.Delete(key)
}

// Each 遍历前缀下的值
func Each[T any](s Store, prefix []byte, fn func(key []byte, value T) error) error {
	return s.Iterate(prefix, func(key, raw []byte) error {
		var value T
		if err := Decode(raw, &value); err != nil {
			return err
		}
		return fn(key, value)
	})
}

// Collect 前缀下的全部值
func Collect[T any](s Store, prefix []byte) ([]T, error) {
	var out []T
	err := Each(s, prefix, func(_ []byte, value T) error {
		out = append(out, value)
		return nil
	})
	return out, err
}

// Count 前缀下的条目数
func Count(s Store, prefix []byte) (int, error) {
	n := 0
	err := s.Iterate(prefix, func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}
