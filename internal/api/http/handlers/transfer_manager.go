package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polymesh/engine/internal/core/compliance/transfermanager"
	"github.com/polymesh/engine/pkg/types"
)

// 旧版管理器类型
const (
	ManagerCount      = "count"
	ManagerPercentage = "percentage"
)

// ManagerSpec 单个旧版转账管理器的配置
type ManagerSpec struct {
	Type                 string             `json:"type" binding:"required"`
	MaxHolders           uint64             `json:"max_holders,omitempty"`
	MaxPercentage        types.Permill      `json:"max_percentage,omitempty"`
	Exempted             []types.IdentityId `json:"exempted,omitempty"`
	AllowPrimaryIssuance bool               `json:"allow_primary_issuance,omitempty"`
}

// TransferSpec 待判定的转账
type TransferSpec struct {
	From        *types.IdentityId `json:"from,omitempty"`
	To          *types.IdentityId `json:"to,omitempty"`
	Value       types.Balance     `json:"value"`
	BalanceFrom types.Balance     `json:"balance_from"`
	BalanceTo   types.Balance     `json:"balance_to"`
	TotalSupply types.Balance     `json:"total_supply"`
	HolderCount uint64            `json:"holder_count"`
}

// TransferManagerRequest POST /transfer-manager/verify 请求体
type TransferManagerRequest struct {
	Managers []ManagerSpec `json:"managers" binding:"required"`
	Transfer TransferSpec  `json:"transfer"`
}

// ManagerResult 单个管理器的判定
type ManagerResult struct {
	Type   string                  `json:"type"`
	Result types.RestrictionResult `json:"result"`
}

// TransferManagerResponse 组合判定与逐个管理器的判定
type TransferManagerResponse struct {
	Result   types.RestrictionResult `json:"result"`
	Managers []ManagerResult         `json:"managers"`
}

func (s ManagerSpec) manager() (transfermanager.Manager, error) {
	switch s.Type {
	case ManagerCount:
		return transfermanager.CountTransferManager{MaxHolders: s.MaxHolders}, nil
	case ManagerPercentage:
		if s.MaxPercentage > types.PermillOne {
			return nil, fmt.Errorf("max_percentage 超过 100%%: %d", s.MaxPercentage)
		}
		return transfermanager.PercentageTransferManager{
			MaxPercentage:        s.MaxPercentage,
			Exempted:             s.Exempted,
			AllowPrimaryIssuance: s.AllowPrimaryIssuance,
		}, nil
	default:
		return nil, fmt.Errorf("未知的管理器类型: %q", s.Type)
	}
}

// VerifyTransferManagers POST /transfer-manager/verify
//
// 纯函数判定，不读取链上状态。
func VerifyTransferManagers(g *gin.Context) {
	var req TransferManagerRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, err.Error())
		return
	}
	t := transfermanager.Transfer{
		From:        req.Transfer.From,
		To:          req.Transfer.To,
		Value:       req.Transfer.Value,
		BalanceFrom: req.Transfer.BalanceFrom,
		BalanceTo:   req.Transfer.BalanceTo,
		TotalSupply: req.Transfer.TotalSupply,
		HolderCount: req.Transfer.HolderCount,
	}

	managers := make([]transfermanager.Manager, 0, len(req.Managers))
	resp := TransferManagerResponse{Managers: make([]ManagerResult, 0, len(req.Managers))}
	for i, spec := range req.Managers {
		m, err := spec.manager()
		if err != nil {
			badRequest(g, fmt.Sprintf("managers[%d]: %v", i, err))
			return
		}
		managers = append(managers, m)
		resp.Managers = append(resp.Managers, ManagerResult{Type: spec.Type, Result: m.VerifyTransfer(t)})
	}
	resp.Result = transfermanager.Evaluate(managers, t)
	g.JSON(http.StatusOK, resp)
}
