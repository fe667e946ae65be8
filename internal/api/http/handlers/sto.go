package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/interfaces/sto"
	"github.com/polymesh/engine/pkg/types"
)

// StoHandlers 募资查询
type StoHandlers struct {
	state StateReader
	sto   sto.Service
}

// NewStoHandlers 创建募资查询处理器
func NewStoHandlers(state StateReader, svc sto.Service) *StoHandlers {
	return &StoHandlers{state: state, sto: svc}
}

// RegisterRoutes 注册路由
func (h *StoHandlers) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/sto/:asset/fundraisers")
	group.GET("", h.Fundraisers)
	group.GET("/:id", h.Fundraiser)
}

// Fundraisers GET /sto/:asset/fundraisers
func (h *StoHandlers) Fundraisers(g *gin.Context) {
	asset, ok := tickerParam(g)
	if !ok {
		return
	}
	view(g, h.state, func(c *runtime.Context) (interface{}, error) {
		return h.sto.Fundraisers(c, asset)
	})
}

// Fundraiser GET /sto/:asset/fundraisers/:id
func (h *StoHandlers) Fundraiser(g *gin.Context) {
	asset, ok := tickerParam(g)
	if !ok {
		return
	}
	raw, ok := idParam(g)
	if !ok {
		return
	}
	view(g, h.state, func(c *runtime.Context) (interface{}, error) {
		return h.sto.Fundraiser(c, asset, types.FundraiserId(raw))
	})
}
