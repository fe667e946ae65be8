// Package types HTTP 响应结构
package types

import "time"

// SuccessResponse 统一成功响应格式
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	Block     uint64      `json:"block"`
	RequestID string      `json:"requestId,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewSuccessResponse 创建成功响应，block 为查询所基于的区块号
func NewSuccessResponse(data interface{}, block uint64) *SuccessResponse {
	return &SuccessResponse{
		Data:      data,
		Block:     block,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// WithRequestID 添加请求ID
func (r *SuccessResponse) WithRequestID(requestID string) *SuccessResponse {
	r.RequestID = requestID
	return r
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status string `json:"status"`
	Block  uint64 `json:"block"`
	Moment uint64 `json:"moment"`
	Uptime string `json:"uptime"`
}
