// Package storage 定义存储层接口
package storage

import (
	"context"
)

// BadgerStore 键值存储接口
//
// Get 在键不存在时返回 (nil, nil)。RunInTransaction 中 fn 返回错误时整个事务丢弃，
// 否则提交；View 提供只读快照。
type BadgerStore interface {
	Close() error

	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error
	Exists(ctx context.Context, key []byte) (bool, error)

	// PrefixScan 返回前缀下的全部键值
	PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error)

	RunInTransaction(ctx context.Context, fn func(tx BadgerTransaction) error) error
	View(ctx context.Context, fn func(tx BadgerTransaction) error) error
}

// BadgerTransaction 事务内的读写操作
type BadgerTransaction interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Exists(key []byte) (bool, error)

	// Iterate 按键升序遍历前缀下的条目，fn 返回错误时停止并透传
	Iterate(prefix []byte, fn func(key, value []byte) error) error
}
