package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/interfaces/settlement"
	"github.com/polymesh/engine/pkg/types"
)

// SettlementHandlers 结算查询
type SettlementHandlers struct {
	state      StateReader
	settlement settlement.Service
}

// NewSettlementHandlers 创建结算查询处理器
func NewSettlementHandlers(state StateReader, svc settlement.Service) *SettlementHandlers {
	return &SettlementHandlers{state: state, settlement: svc}
}

// RegisterRoutes 注册路由
func (h *SettlementHandlers) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/settlement")
	group.GET("/instructions/:id", h.Instruction)
	group.GET("/venues/:id", h.Venue)
}

// Affirmation 单个参与组合的确认状态
type Affirmation struct {
	Portfolio types.PortfolioId `json:"portfolio"`
	Status    string            `json:"status"`
}

// InstructionResponse 指令详情
type InstructionResponse struct {
	Instruction  types.Instruction `json:"instruction"`
	Legs         []types.Leg       `json:"legs"`
	Affirmations []Affirmation     `json:"affirmations"`
}

func idParam(g *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(g.Param("id"), 10, 64)
	if err != nil {
		badRequest(g, "id: "+err.Error())
		return 0, false
	}
	return id, true
}

// Instruction GET /settlement/instructions/:id
func (h *SettlementHandlers) Instruction(g *gin.Context) {
	raw, ok := idParam(g)
	if !ok {
		return
	}
	id := types.InstructionId(raw)
	view(g, h.state, func(c *runtime.Context) (interface{}, error) {
		inst, err := h.settlement.Instruction(c, id)
		if err != nil {
			return nil, err
		}
		legs, err := h.settlement.Legs(c, id)
		if err != nil {
			return nil, err
		}
		resp := InstructionResponse{Instruction: inst, Legs: legs}
		seen := make(map[types.PortfolioId]bool)
		for _, leg := range legs {
			for _, p := range []types.PortfolioId{leg.From, leg.To} {
				if seen[p] {
					continue
				}
				seen[p] = true
				resp.Affirmations = append(resp.Affirmations, Affirmation{
					Portfolio: p,
					Status:    h.settlement.AffirmStatus(c, id, p).String(),
				})
			}
		}
		return resp, nil
	})
}

// Venue GET /settlement/venues/:id
func (h *SettlementHandlers) Venue(g *gin.Context) {
	raw, ok := idParam(g)
	if !ok {
		return
	}
	view(g, h.state, func(c *runtime.Context) (interface{}, error) {
		return h.settlement.Venue(c, types.VenueId(raw))
	})
}
