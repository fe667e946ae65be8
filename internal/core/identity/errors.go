package identity

import "github.com/polymesh/engine/pkg/types"

var (
	// ErrMissingIdentity 调用账户没有关联身份
	ErrMissingIdentity = types.NewKindError(types.KindAuthorization, "调用账户没有关联身份")
	// ErrAlreadyLinked 账户已关联身份
	ErrAlreadyLinked = types.NewKindError(types.KindState, "账户已关联身份")
	// ErrIdentityNotFound 目标身份不存在
	ErrIdentityNotFound = types.NewKindError(types.KindNotFound, "身份不存在")
	// ErrClaimNotFound 声明不存在
	ErrClaimNotFound = types.NewKindError(types.KindNotFound, "声明不存在")
	// ErrInvalidClaim 声明内容不合法
	ErrInvalidClaim = types.NewKindError(types.KindValidation, "声明内容不合法")
)
