package types

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	coretypes "github.com/polymesh/engine/pkg/types"
)

// ProblemDetails 错误响应（基于 RFC7807）
type ProblemDetails struct {
	// RFC7807 标准字段
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// 扩展字段
	Code        string                 `json:"code"`
	Kind        string                 `json:"kind"`
	UserMessage string                 `json:"userMessage"`
	Details     map[string]interface{} `json:"details,omitempty"`
	TraceID     string                 `json:"traceId"`
	Timestamp   string                 `json:"timestamp"`
}

// Error 实现 error 接口
func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.UserMessage
}

// NewProblemDetails 创建新的 Problem Details
func NewProblemDetails(code, kind, userMessage, detail string, status int, details map[string]interface{}) *ProblemDetails {
	if details == nil {
		details = make(map[string]interface{})
	}
	return &ProblemDetails{
		Title:       http.StatusText(status),
		Code:        code,
		Kind:        kind,
		UserMessage: userMessage,
		Detail:      detail,
		Status:      status,
		Details:     details,
		TraceID:     uuid.New().String(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

// IsProblemDetails 检查错误是否为 Problem Details
func IsProblemDetails(err error) (*ProblemDetails, bool) {
	var pd *ProblemDetails
	if errors.As(err, &pd) {
		return pd, true
	}
	return nil, false
}

// 错误码
const (
	CodeNotFound      = "NOT_FOUND"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeResource      = "RESOURCE_LIMIT"
	CodeInvalidInput  = "INVALID_ARGUMENT"
	CodeInvalidState  = "INVALID_STATE"
	CodeInternalError = "INTERNAL"
)

// FromError 按错误分类映射为 Problem Details
func FromError(err error) *ProblemDetails {
	if pd, ok := IsProblemDetails(err); ok {
		return pd
	}
	kind := coretypes.KindOf(err)
	var (
		code   string
		status int
		msg    string
	)
	switch kind {
	case coretypes.KindNotFound:
		code, status, msg = CodeNotFound, http.StatusNotFound, "资源不存在"
	case coretypes.KindAuthorization:
		code, status, msg = CodeUnauthorized, http.StatusForbidden, "无权执行该操作"
	case coretypes.KindResource:
		code, status, msg = CodeResource, http.StatusUnprocessableEntity, "超出资源限制"
	case coretypes.KindValidation, coretypes.KindArithmetic:
		code, status, msg = CodeInvalidInput, http.StatusBadRequest, "请求参数无效"
	case coretypes.KindState:
		code, status, msg = CodeInvalidState, http.StatusConflict, "当前状态不允许该操作"
	default:
		code, status, msg = CodeInternalError, http.StatusInternalServerError, "服务器内部错误，请稍后重试"
	}
	return NewProblemDetails(code, kind.String(), msg, err.Error(), status, nil)
}

// BadRequest 请求参数错误
func BadRequest(detail string) *ProblemDetails {
	return NewProblemDetails(CodeInvalidInput, coretypes.KindValidation.String(), "请求参数无效", detail, http.StatusBadRequest, nil)
}
