package state

import (
	"bytes"
	"sort"
	"strings"
)

type write struct {
	value   []byte
	deleted bool
}

// Layer 写缓冲保存点
//
// 读取先查本层缓冲再查父层；Commit 把缓冲按键序写入父层并清空。
// parent 为 nil 时等价于空的父层，可作为纯内存 Store 使用。
type Layer struct {
	parent Store
	writes map[string]write
}

var _ Store = (*Layer)(nil)

// NewLayer 在 parent 之上创建保存点
func NewLayer(parent Store) *Layer {
	return &Layer{parent: parent, writes: make(map[string]write)}
}

// NewMemory 独立的内存 Store
func NewMemory() *Layer {
	return NewLayer(nil)
}

// Get 读取键值
func (l *Layer) Get(key []byte) ([]byte, error) {
	if w, ok := l.writes[string(key)]; ok {
		if w.deleted {
			return nil, nil
		}
		return bytes.Clone(w.value), nil
	}
	if l.parent == nil {
		return nil, nil
	}
	return l.parent.Get(key)
}

// Has 键是否存在
func (l *Layer) Has(key []byte) (bool, error) {
	if w, ok := l.writes[string(key)]; ok {
		return !w.deleted, nil
	}
	if l.parent == nil {
		return false, nil
	}
	return l.parent.Has(key)
}

// Set 缓冲写入
func (l *Layer) Set(key, value []byte) error {
	l.writes[string(key)] = write{value: bytes.Clone(value)}
	return nil
}

// Delete 缓冲删除
func (l *Layer) Delete(key []byte) error {
	l.writes[string(key)] = write{deleted: true}
	return nil
}

// Iterate 合并父层与本层缓冲后按键序遍历
//
// 遍历前先物化结果，fn 内对本层的写入不影响本次遍历。
func (l *Layer) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	merged := make(map[string][]byte)
	if l.parent != nil {
		err := l.parent.Iterate(prefix, func(key, value []byte) error {
			merged[string(key)] = value
			return nil
		})
		if err != nil {
			return err
		}
	}
	p := string(prefix)
	for k, w := range l.writes {
		if !strings.HasPrefix(k, p) {
			continue
		}
		if w.deleted {
			delete(merged, k)
		} else {
			merged[k] = w.value
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn([]byte(k), bytes.Clone(merged[k])); err != nil {
			return err
		}
	}
	return nil
}

// Commit 把缓冲写入父层
func (l *Layer) Commit() error {
	if l.parent == nil {
		return nil
	}
	keys := make([]string, 0, len(l.writes))
	for k := range l.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w := l.writes[k]
		var err error
		if w.deleted {
			err = l.parent.Delete([]byte(k))
		} else {
			err = l.parent.Set([]byte(k), w.value)
		}
		if err != nil {
			return err
		}
	}
	l.writes = make(map[string]write)
	return nil
}

// Discard 丢弃缓冲
func (l *Layer) Discard() {
	l.writes = make(map[string]write)
}

// Dirty 缓冲中的键数量
func (l *Layer) Dirty() int {
	return len(l.writes)
}
