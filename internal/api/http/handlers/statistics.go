package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/interfaces/statistics"
	"github.com/polymesh/engine/pkg/types"
)

// StatisticsHandlers 统计查询
type StatisticsHandlers struct {
	state      StateReader
	statistics statistics.Service
}

// NewStatisticsHandlers 创建统计查询处理器
func NewStatisticsHandlers(state StateReader, svc statistics.Service) *StatisticsHandlers {
	return &StatisticsHandlers{state: state, statistics: svc}
}

// RegisterRoutes 注册路由
func (h *StatisticsHandlers) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/statistics/:asset")
	group.GET("/investor-count", h.InvestorCount)
	group.GET("/transfer-conditions", h.TransferConditions)
}

// InvestorCountResponse 持有人数
type InvestorCountResponse struct {
	Asset         types.Ticker `json:"asset"`
	InvestorCount uint64       `json:"investor_count"`
}

// TransferConditionsResponse 启用的统计维度与转账条件
type TransferConditionsResponse struct {
	Stats      []types.StatType              `json:"stats"`
	Conditions types.AssetTransferCompliance `json:"conditions"`
}

// InvestorCount GET /statistics/:asset/investor-count
func (h *StatisticsHandlers) InvestorCount(g *gin.Context) {
	asset, ok := tickerParam(g)
	if !ok {
		return
	}
	view(g, h.state, func(c *runtime.Context) (interface{}, error) {
		n, err := h.statistics.InvestorCount(c, asset)
		if err != nil {
			return nil, err
		}
		return InvestorCountResponse{Asset: asset, InvestorCount: n}, nil
	})
}

// TransferConditions GET /statistics/:asset/transfer-conditions
func (h *StatisticsHandlers) TransferConditions(g *gin.Context) {
	asset, ok := tickerParam(g)
	if !ok {
		return
	}
	view(g, h.state, func(c *runtime.Context) (interface{}, error) {
		stats, err := h.statistics.ActiveAssetStats(c, asset)
		if err != nil {
			return nil, err
		}
		conditions, err := h.statistics.AssetTransferCompliance(c, asset)
		if err != nil {
			return nil, err
		}
		return TransferConditionsResponse{Stats: stats, Conditions: conditions}, nil
	})
}
