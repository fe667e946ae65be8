// Package identity 身份与声明服务接口
package identity

import (
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/types"
)

// ClaimFilter FetchClaims 的过滤条件，nil 字段不过滤
type ClaimFilter struct {
	Issuer *types.IdentityId
	Scope  *types.Scope
	// CustomId 仅对 Custom 类别有效
	CustomId uint32
}

// Service 身份服务
//
// 读取声明时的存储错误按“声明不存在”处理，声明过期按区块时间判断，不会被主动清理。
type Service interface {
	RegisterIdentity(c *runtime.Context, primaryKey types.AccountId) (types.IdentityId, error)
	KeyToIdentity(c *runtime.Context, key types.AccountId) (types.IdentityId, bool)
	EnsureCaller(c *runtime.Context) (types.IdentityId, error)
	IsIdentity(c *runtime.Context, did types.IdentityId) bool
	Record(c *runtime.Context, did types.IdentityId) (*types.DidRecord, error)

	AddClaim(c *runtime.Context, target types.IdentityId, claim types.Claim, expiry *types.Moment) error
	RevokeClaim(c *runtime.Context, target types.IdentityId, claim types.Claim) error

	// FetchClaim 精确读取一条未过期声明
	FetchClaim(c *runtime.Context, target types.IdentityId, claimType types.ClaimType, issuer types.IdentityId, scope types.Scope) (types.IdentityClaim, bool)
	// FetchClaims 读取目标身份指定类别的全部未过期声明
	FetchClaims(c *runtime.Context, target types.IdentityId, claimType types.ClaimType, filter ClaimFilter) []types.IdentityClaim
}
