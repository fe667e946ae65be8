package agents

import "github.com/polymesh/engine/pkg/types"

var (
	// ErrUnauthorizedAgent 调用身份不是资产代理
	ErrUnauthorizedAgent = types.NewKindError(types.KindAuthorization, "调用身份不是资产代理")
	// ErrNotAnAgent 目标身份不是资产代理
	ErrNotAnAgent = types.NewKindError(types.KindNotFound, "目标身份不是资产代理")
	// ErrAlreadyAnAgent 目标身份已是资产代理
	ErrAlreadyAnAgent = types.NewKindError(types.KindState, "目标身份已是资产代理")
	// ErrRemovingLastFullAgent 不能移除最后一个代理
	ErrRemovingLastFullAgent = types.NewKindError(types.KindState, "不能移除最后一个代理")
	// ErrIdentityNotFound 目标身份不存在
	ErrIdentityNotFound = types.NewKindError(types.KindNotFound, "目标身份不存在")
)
