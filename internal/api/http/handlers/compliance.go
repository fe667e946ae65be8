package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/interfaces/compliance"
	"github.com/polymesh/engine/pkg/types"
)

// ComplianceHandlers 合规查询
type ComplianceHandlers struct {
	state      StateReader
	compliance compliance.Service
}

// NewComplianceHandlers 创建合规查询处理器
func NewComplianceHandlers(state StateReader, svc compliance.Service) *ComplianceHandlers {
	return &ComplianceHandlers{state: state, compliance: svc}
}

// RegisterRoutes 注册路由
func (h *ComplianceHandlers) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/compliance/:asset")
	group.GET("", h.Requirements)
	group.GET("/verify", h.Verify)
	group.GET("/report", h.Report)
}

// VerifyResponse 合规判定
type VerifyResponse struct {
	Asset    types.Ticker      `json:"asset"`
	Sender   *types.IdentityId `json:"sender,omitempty"`
	Receiver *types.IdentityId `json:"receiver,omitempty"`
	Result   bool              `json:"result"`
}

// ReportResponse 合规报告与未通过条件
type ReportResponse struct {
	types.AssetComplianceResult
	Failed []string `json:"failed,omitempty"`
}

// RequirementsResponse 资产的合规配置
type RequirementsResponse struct {
	Compliance     types.AssetCompliance `json:"compliance"`
	TrustedIssuers []types.TrustedIssuer `json:"trusted_issuers"`
}

func (h *ComplianceHandlers) parties(g *gin.Context) (types.Ticker, *types.IdentityId, *types.IdentityId, bool) {
	asset, ok := tickerParam(g)
	if !ok {
		return asset, nil, nil, false
	}
	sender, ok := identityQuery(g, "sender")
	if !ok {
		return asset, nil, nil, false
	}
	receiver, ok := identityQuery(g, "receiver")
	return asset, sender, receiver, ok
}

// Verify GET /compliance/:asset/verify?sender=&receiver=
func (h *ComplianceHandlers) Verify(g *gin.Context) {
	asset, sender, receiver, ok := h.parties(g)
	if !ok {
		return
	}
	view(g, h.state, func(c *runtime.Context) (interface{}, error) {
		return VerifyResponse{
			Asset:    asset,
			Sender:   sender,
			Receiver: receiver,
			Result:   h.compliance.VerifyRestriction(c, asset, sender, receiver),
		}, nil
	})
}

// Report GET /compliance/:asset/report?sender=&receiver=
func (h *ComplianceHandlers) Report(g *gin.Context) {
	asset, sender, receiver, ok := h.parties(g)
	if !ok {
		return
	}
	view(g, h.state, func(c *runtime.Context) (interface{}, error) {
		report, err := h.compliance.ComplianceReport(c, asset, sender, receiver)
		if err != nil {
			return nil, err
		}
		return ReportResponse{AssetComplianceResult: report, Failed: report.FailedConditions()}, nil
	})
}

// Requirements GET /compliance/:asset
func (h *ComplianceHandlers) Requirements(g *gin.Context) {
	asset, ok := tickerParam(g)
	if !ok {
		return
	}
	view(g, h.state, func(c *runtime.Context) (interface{}, error) {
		ac, err := h.compliance.AssetCompliance(c, asset)
		if err != nil {
			return nil, err
		}
		issuers, err := h.compliance.TrustedClaimIssuers(c, asset)
		if err != nil {
			return nil, err
		}
		return RequirementsResponse{Compliance: ac, TrustedIssuers: issuers}, nil
	})
}
