package types

import "errors"

// ErrorKind 错误分类
//
// 业务模块的哨兵错误都带有分类，调用方（API 层、CLI）据此决定展示方式与状态码。
type ErrorKind int

const (
	// KindUnknown 未分类（存储/编解码等基础设施错误）
	KindUnknown ErrorKind = iota
	// KindNotFound 目标不存在
	KindNotFound
	// KindAuthorization 调用者无权限
	KindAuthorization
	// KindResource 资源不足或达到上限
	KindResource
	// KindValidation 参数校验失败
	KindValidation
	// KindState 状态机不允许该操作
	KindState
	// KindArithmetic 算术溢出
	KindArithmetic
)

// String 分类名称
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindResource:
		return "resource"
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindArithmetic:
		return "arithmetic"
	default:
		return "unknown"
	}
}

// KindError 带分类的哨兵错误
type KindError struct {
	kind ErrorKind
	msg  string
}

// NewKindError 创建带分类的哨兵错误
func NewKindError(kind ErrorKind, msg string) *KindError {
	return &KindError{kind: kind, msg: msg}
}

// Error 实现 error 接口
func (e *KindError) Error() string {
	return e.msg
}

// Kind 返回分类
func (e *KindError) Kind() ErrorKind {
	return e.kind
}

// KindOf 沿包装链查找第一个带分类的错误
func KindOf(err error) ErrorKind {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindUnknown
}

// IsDomainError 是否为业务错误（非基础设施错误）
func IsDomainError(err error) bool {
	return KindOf(err) != KindUnknown
}
