package state

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// KeyPart 可作为存储键组成部分的值
type KeyPart interface {
	KeyBytes() []byte
}

// Prefix 存储项前缀 "module/item/"
func Prefix(module, item string) []byte {
	return []byte(module + "/" + item + "/")
}

// Blake2_128Concat blake2b-128(part) 后接 part 原文
func Blake2_128Concat(part []byte) []byte {
	h, _ := blake2b.New(16, nil)
	h.Write(part)
	return append(h.Sum(nil), part...)
}

// Key 在前缀后依次拼接各部分的 Blake2_128Concat
//
// 以前若干部分构造的键也是完整键的前缀，可用于按第一维遍历。
func Key(prefix []byte, parts ...[]byte) []byte {
	size := len(prefix)
	for _, p := range parts {
		size += 16 + len(p)
	}
	key := make([]byte, 0, size)
	key = append(key, prefix...)
	for _, p := range parts {
		key = append(key, Blake2_128Concat(p)...)
	}
	return key
}

// KeyOf 同 Key，参数为 KeyPart
func KeyOf(prefix []byte, parts ...KeyPart) []byte {
	raw := make([][]byte, len(parts))
	for i, p := range parts {
		raw[i] = p.KeyBytes()
	}
	return Key(prefix, raw...)
}

// U64 大端编码的 uint64 键部分
func U64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

// U32 大端编码的 uint32 键部分
func U32(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}
