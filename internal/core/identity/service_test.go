package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/testutil"
	identityIface "github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/types"
)

func setup(t *testing.T) (*testutil.Harness, *Service) {
	t.Helper()
	return testutil.NewHarness(t), NewService(testutil.NewTestLogger())
}

func register(t *testing.T, h *testutil.Harness, svc *Service, seed string) (types.AccountId, types.IdentityId) {
	t.Helper()
	key := testutil.Account(seed)
	var did types.IdentityId
	h.MustDispatch(key, func(c *runtime.Context) error {
		var err error
		did, err = svc.RegisterIdentity(c, key)
		return err
	})
	return key, did
}

// TestRegisterIdentity_LinksKeyOnce 测试注册身份并且同一账户不能重复注册
func TestRegisterIdentity_LinksKeyOnce(t *testing.T) {
	h, svc := setup(t)
	aliceKey, alice := register(t, h, svc, "alice")
	_, bob := register(t, h, svc, "bob")

	assert.False(t, alice.IsZero())
	assert.NotEqual(t, alice, bob)
	h.View(func(c *runtime.Context) error {
		did, ok := svc.KeyToIdentity(c, aliceKey)
		assert.True(t, ok)
		assert.Equal(t, alice, did)
		assert.True(t, svc.IsIdentity(c, alice))
		assert.False(t, svc.IsIdentity(c, types.NoIdentity))
		record, err := svc.Record(c, bob)
		require.NoError(t, err)
		assert.Equal(t, testutil.Account("bob"), record.PrimaryKey)
		return nil
	})

	err := h.Dispatch(aliceKey, func(c *runtime.Context) error {
		_, err := svc.RegisterIdentity(c, aliceKey)
		return err
	})
	assert.ErrorIs(t, err, ErrAlreadyLinked)
	assert.Len(t, h.EventsOf(moduleName, "DidCreated"), 2)
}

// TestEnsureCaller_NoIdentity 测试未注册账户调用返回 ErrMissingIdentity
func TestEnsureCaller_NoIdentity(t *testing.T) {
	h, svc := setup(t)
	err := h.Dispatch(testutil.Account("nobody"), func(c *runtime.Context) error {
		_, err := svc.EnsureCaller(c)
		return err
	})
	assert.ErrorIs(t, err, ErrMissingIdentity)
	assert.Equal(t, types.KindAuthorization, types.KindOf(err))
}

// TestAddClaim_FetchAndExpiry 测试签发声明、按发行方读取以及过期判断
func TestAddClaim_FetchAndExpiry(t *testing.T) {
	h, svc := setup(t)
	issuerKey, issuer := register(t, h, svc, "issuer")
	_, target := register(t, h, svc, "target")
	scope := types.TickerScope(types.MustTicker("ACME"))
	expiry := types.Moment(2 * testutil.TestBlockIntervalMs)

	h.MustDispatch(issuerKey, func(c *runtime.Context) error {
		if err := svc.AddClaim(c, target, types.AccreditedClaim(scope), &expiry); err != nil {
			return err
		}
		return svc.AddClaim(c, target, types.JurisdictionClaim("US", scope), nil)
	})

	h.View(func(c *runtime.Context) error {
		claim, ok := svc.FetchClaim(c, target, types.ClaimTypeAccredited, issuer, scope)
		require.True(t, ok)
		assert.Equal(t, issuer, claim.Issuer)
		claims := svc.FetchClaims(c, target, types.ClaimTypeJurisdiction, identityIface.ClaimFilter{Issuer: &issuer})
		require.Len(t, claims, 1)
		assert.Equal(t, types.CountryCode("US"), claims[0].Claim.Country)
		return nil
	})

	// 区块时间到达 expiry 后声明视为不存在
	h.AdvanceBlocks(2)
	h.View(func(c *runtime.Context) error {
		_, ok := svc.FetchClaim(c, target, types.ClaimTypeAccredited, issuer, scope)
		assert.False(t, ok)
		assert.Empty(t, svc.FetchClaims(c, target, types.ClaimTypeAccredited, identityIface.ClaimFilter{}))
		return nil
	})
}

// TestAddClaim_Validation 测试非法声明与不存在的目标
func TestAddClaim_Validation(t *testing.T) {
	h, svc := setup(t)
	issuerKey, _ := register(t, h, svc, "issuer")
	_, target := register(t, h, svc, "target")

	tests := []struct {
		name   string
		target types.IdentityId
		claim  types.Claim
		want   error
	}{
		{"缺少作用域", target, types.AccreditedClaim(types.Scope{}), ErrInvalidClaim},
		{"缺少国家", target, types.JurisdictionClaim("", types.CustomScope("x")), ErrInvalidClaim},
		{"CDD 带作用域", target, types.Claim{Type: types.ClaimTypeCustomerDueDiligence, Scope: types.CustomScope("x")}, ErrInvalidClaim},
		{"未知类别", target, types.Claim{Type: 99, Scope: types.CustomScope("x")}, ErrInvalidClaim},
		{"目标不存在", types.IdentityId{7}, types.CddClaim(types.CddId{1}), ErrIdentityNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Dispatch(issuerKey, func(c *runtime.Context) error {
				return svc.AddClaim(c, tt.target, tt.claim, nil)
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// TestRevokeClaim 测试撤销声明
func TestRevokeClaim(t *testing.T) {
	h, svc := setup(t)
	issuerKey, issuer := register(t, h, svc, "issuer")
	_, target := register(t, h, svc, "target")
	cdd := types.CddClaim(types.CddId{1})

	h.MustDispatch(issuerKey, func(c *runtime.Context) error { return svc.AddClaim(c, target, cdd, nil) })
	h.MustDispatch(issuerKey, func(c *runtime.Context) error { return svc.RevokeClaim(c, target, cdd) })

	h.View(func(c *runtime.Context) error {
		_, ok := svc.FetchClaim(c, target, types.ClaimTypeCustomerDueDiligence, issuer, types.Scope{})
		assert.False(t, ok)
		return nil
	})
	err := h.Dispatch(issuerKey, func(c *runtime.Context) error { return svc.RevokeClaim(c, target, cdd) })
	assert.ErrorIs(t, err, ErrClaimNotFound)
}
