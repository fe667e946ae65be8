package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	httptypes "github.com/polymesh/engine/internal/api/http/types"
)

// HealthHandler 健康检查
type HealthHandler struct {
	state     StateReader
	startTime time.Time
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(state StateReader) *HealthHandler {
	return &HealthHandler{state: state, startTime: time.Now()}
}

// Health GET /health，读不到链头时返回 503
func (h *HealthHandler) Health(g *gin.Context) {
	block, now, err := h.state.Head(g.Request.Context())
	resp := httptypes.HealthResponse{
		Status: "ok",
		Block:  uint64(block),
		Moment: uint64(now),
		Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
	}
	if err != nil {
		resp.Status = "unavailable"
		g.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	g.JSON(http.StatusOK, resp)
}
