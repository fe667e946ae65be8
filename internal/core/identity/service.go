// Package identity 身份注册与声明管理
package identity

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/core/state"
	identityIface "github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/types"
)

var _ identityIface.Service = (*Service)(nil)

// 事件
type (
	DidCreated struct {
		Did        types.IdentityId `json:"did"`
		PrimaryKey types.AccountId  `json:"primary_key"`
	}
	ClaimAdded struct {
		Target types.IdentityId    `json:"target"`
		Claim  types.IdentityClaim `json:"claim"`
	}
	ClaimRevoked struct {
		Target types.IdentityId `json:"target"`
		Issuer types.IdentityId `json:"issuer"`
		Claim  types.Claim      `json:"claim"`
	}
)

// Service 身份服务实现
type Service struct {
	logger log.Logger
}

// NewService 创建身份服务
func NewService(logger log.Logger) *Service {
	return &Service{logger: logger}
}

// RegisterIdentity 为账户创建新身份
//
// DID = blake2b-256("pm:did" || account || nonce)，nonce 全局递增。
func (s *Service) RegisterIdentity(c *runtime.Context, primaryKey types.AccountId) (types.IdentityId, error) {
	store := c.Store()
	if _, ok := s.KeyToIdentity(c, primaryKey); ok {
		return types.NoIdentity, ErrAlreadyLinked
	}

	nonce, err := state.LoadOr(store, nonceKey, uint64(0))
	if err != nil {
		return types.NoIdentity, err
	}
	did := deriveDid(primaryKey, nonce)

	record := types.DidRecord{Did: did, PrimaryKey: primaryKey, CreatedAt: c.Now()}
	if err := state.Save(store, state.Key(didRecordsPrefix, did.KeyBytes()), record); err != nil {
		return types.NoIdentity, err
	}
	if err := state.Save(store, state.Key(keyToDidPrefix, primaryKey.KeyBytes()), did); err != nil {
		return types.NoIdentity, err
	}
	if err := state.Save(store, nonceKey, nonce+1); err != nil {
		return types.NoIdentity, err
	}

	c.Deposit(moduleName, "DidCreated", DidCreated{Did: did, PrimaryKey: primaryKey})
	if s.logger != nil {
		s.logger.Infof("创建身份 did=%s key=%s", did.Short(), primaryKey)
	}
	return did, nil
}

func deriveDid(key types.AccountId, nonce uint64) types.IdentityId {
	buf := make([]byte, 0, 6+len(key)+8)
	buf = append(buf, "pm:did"...)
	buf = append(buf, key[:]...)
	buf = binary.BigEndian.AppendUint64(buf, nonce)
	return types.IdentityId(blake2b.Sum256(buf))
}

// KeyToIdentity 账户关联的身份
func (s *Service) KeyToIdentity(c *runtime.Context, key types.AccountId) (types.IdentityId, bool) {
	did, ok, err := state.Load[types.IdentityId](c.Store(), state.Key(keyToDidPrefix, key.KeyBytes()))
	if err != nil {
		s.warn("读取账户身份失败", err)
		return types.NoIdentity, false
	}
	return did, ok
}

// EnsureCaller 调用账户的身份
func (s *Service) EnsureCaller(c *runtime.Context) (types.IdentityId, error) {
	did, ok := s.KeyToIdentity(c, c.Caller())
	if !ok {
		return types.NoIdentity, ErrMissingIdentity
	}
	return did, nil
}

// IsIdentity 身份是否存在
func (s *Service) IsIdentity(c *runtime.Context, did types.IdentityId) bool {
	if did.IsZero() {
		return false
	}
	ok, err := c.Store().Has(state.Key(didRecordsPrefix, did.KeyBytes()))
	if err != nil {
		s.warn("读取身份记录失败", err)
		return false
	}
	return ok
}

// Record 身份记录
func (s *Service) Record(c *runtime.Context, did types.IdentityId) (*types.DidRecord, error) {
	record, ok, err := state.Load[types.DidRecord](c.Store(), state.Key(didRecordsPrefix, did.KeyBytes()))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrIdentityNotFound
	}
	return &record, nil
}

func validateClaim(claim types.Claim) error {
	switch claim.Type {
	case types.ClaimTypeCustomerDueDiligence:
		if claim.Scope.Kind != types.ScopeNone {
			return fmt.Errorf("%w: CDD 声明不能带作用域", ErrInvalidClaim)
		}
		return nil
	case types.ClaimTypeJurisdiction:
		if claim.Country == "" {
			return fmt.Errorf("%w: 缺少国家代码", ErrInvalidClaim)
		}
	case types.ClaimTypeAccredited, types.ClaimTypeAffiliate, types.ClaimTypeBuyLockup,
		types.ClaimTypeSellLockup, types.ClaimTypeKnowYourCustomer, types.ClaimTypeExempted,
		types.ClaimTypeBlocked, types.ClaimTypeCustom:
	default:
		return fmt.Errorf("%w: 未知类别 %d", ErrInvalidClaim, claim.Type)
	}
	if claim.Scope.Kind == types.ScopeNone {
		return fmt.Errorf("%w: %s 声明缺少作用域", ErrInvalidClaim, claim.Type)
	}
	return nil
}

// AddClaim 调用身份作为发行方向目标签发声明，同键声明被覆盖
func (s *Service) AddClaim(c *runtime.Context, target types.IdentityId, claim types.Claim, expiry *types.Moment) error {
	issuer, err := s.EnsureCaller(c)
	if err != nil {
		return err
	}
	if !s.IsIdentity(c, target) {
		return ErrIdentityNotFound
	}
	if err := validateClaim(claim); err != nil {
		return err
	}

	key := claimKey(target, claim, issuer)
	record := types.IdentityClaim{
		Issuer:       issuer,
		IssuanceDate: c.Now(),
		LastUpdate:   c.Now(),
		Expiry:       expiry,
		Claim:        claim,
	}
	if existing, ok, err := state.Load[types.IdentityClaim](c.Store(), key); err != nil {
		return err
	} else if ok {
		record.IssuanceDate = existing.IssuanceDate
	}
	if err := state.Save(c.Store(), key, record); err != nil {
		return err
	}
	c.Deposit(moduleName, "ClaimAdded", ClaimAdded{Target: target, Claim: record})
	return nil
}

// RevokeClaim 发行方撤销自己签发的声明
func (s *Service) RevokeClaim(c *runtime.Context, target types.IdentityId, claim types.Claim) error {
	issuer, err := s.EnsureCaller(c)
	if err != nil {
		return err
	}
	key := claimKey(target, claim, issuer)
	ok, err := c.Store().Has(key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrClaimNotFound
	}
	if err := state.Remove(c.Store(), key); err != nil {
		return err
	}
	c.Deposit(moduleName, "ClaimRevoked", ClaimRevoked{Target: target, Issuer: issuer, Claim: claim})
	return nil
}

// FetchClaim 精确读取一条未过期声明
func (s *Service) FetchClaim(c *runtime.Context, target types.IdentityId, claimType types.ClaimType, issuer types.IdentityId, scope types.Scope) (types.IdentityClaim, bool) {
	key := claimKey(target, types.Claim{Type: claimType, Scope: scope}, issuer)
	record, ok, err := state.Load[types.IdentityClaim](c.Store(), key)
	if err != nil {
		s.warn("读取声明失败", err)
		return types.IdentityClaim{}, false
	}
	if !ok || record.IsExpired(c.Now()) {
		return types.IdentityClaim{}, false
	}
	return record, true
}

// FetchCustomClaim 精确读取一条未过期的自定义声明
func (s *Service) FetchCustomClaim(c *runtime.Context, target types.IdentityId, customId uint32, issuer types.IdentityId, scope types.Scope) (types.IdentityClaim, bool) {
	key := claimKey(target, types.CustomClaim(customId, scope), issuer)
	record, ok, err := state.Load[types.IdentityClaim](c.Store(), key)
	if err != nil {
		s.warn("读取声明失败", err)
		return types.IdentityClaim{}, false
	}
	if !ok || record.IsExpired(c.Now()) {
		return types.IdentityClaim{}, false
	}
	return record, true
}

// FetchClaims 读取目标身份某类别的未过期声明
func (s *Service) FetchClaims(c *runtime.Context, target types.IdentityId, claimType types.ClaimType, filter identityIface.ClaimFilter) []types.IdentityClaim {
	parts := [][]byte{target.KeyBytes(), claimTypePart(claimType, filter.CustomId)}
	if filter.Issuer != nil {
		parts = append(parts, filter.Issuer.KeyBytes())
	}
	prefix := state.Key(claimsPrefix, parts...)

	var out []types.IdentityClaim
	err := state.Each(c.Store(), prefix, func(_ []byte, record types.IdentityClaim) error {
		if record.IsExpired(c.Now()) {
			return nil
		}
		if filter.Scope != nil && record.Claim.Scope != *filter.Scope {
			return nil
		}
		out = append(out, record)
		return nil
	})
	if err != nil {
		s.warn("遍历声明失败", err)
		return nil
	}
	return out
}

func (s *Service) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warnf("%s: %v", msg, err)
	}
}
