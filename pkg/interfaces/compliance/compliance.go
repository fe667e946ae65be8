// Package compliance 资产合规引擎接口
package compliance

import (
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/types"
)

// Service 合规引擎
//
// 写操作要求调用身份是资产的外部代理；VerifyRestriction 与 ComplianceReport 是只读谓词，
// 读取声明失败按声明不存在处理。sender / receiver 为 nil 表示没有对手方（发行或赎回）。
type Service interface {
	AddComplianceRequirement(c *runtime.Context, asset types.Ticker, sender, receiver []types.Condition) (uint32, error)
	RemoveComplianceRequirement(c *runtime.Context, asset types.Ticker, id uint32) error
	ReplaceAssetCompliance(c *runtime.Context, asset types.Ticker, requirements []types.ComplianceRequirement) error
	ChangeComplianceRequirement(c *runtime.Context, asset types.Ticker, requirement types.ComplianceRequirement) error
	ResetAssetCompliance(c *runtime.Context, asset types.Ticker) error

	PauseAssetCompliance(c *runtime.Context, asset types.Ticker) error
	ResumeAssetCompliance(c *runtime.Context, asset types.Ticker) error

	AddDefaultTrustedClaimIssuer(c *runtime.Context, asset types.Ticker, issuer types.TrustedIssuer) error
	RemoveDefaultTrustedClaimIssuer(c *runtime.Context, asset types.Ticker, issuer types.IdentityId) error

	AssetCompliance(c *runtime.Context, asset types.Ticker) (types.AssetCompliance, error)
	TrustedClaimIssuers(c *runtime.Context, asset types.Ticker) ([]types.TrustedIssuer, error)

	// VerifyRestriction 暂停时恒为 true，否则任一需求全部条件成立即为 true
	VerifyRestriction(c *runtime.Context, asset types.Ticker, sender, receiver *types.IdentityId) bool
	// ComplianceReport 不短路地评估每个条件
	ComplianceReport(c *runtime.Context, asset types.Ticker, sender, receiver *types.IdentityId) (types.AssetComplianceResult, error)
}
