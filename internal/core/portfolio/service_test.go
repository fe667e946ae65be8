package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polymesh/engine/internal/core/identity"
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/testutil"
	"github.com/polymesh/engine/pkg/types"
)

type fixture struct {
	h          *testutil.Harness
	identity   *identity.Service
	portfolios *Service
	asset      types.Ticker
}

func newFixture(t *testing.T) *fixture {
	h := testutil.NewHarness(t)
	ids := identity.NewService(nil)
	return &fixture{h: h, identity: ids, portfolios: NewService(ids, nil), asset: types.MustTicker("ACME")}
}

func (f *fixture) register(t *testing.T, seed string) (types.AccountId, types.IdentityId) {
	key := testutil.Account(seed)
	var did types.IdentityId
	f.h.MustDispatch(key, func(c *runtime.Context) error {
		var err error
		did, err = f.identity.RegisterIdentity(c, key)
		return err
	})
	return key, did
}

func (f *fixture) credit(p types.PortfolioId, amount uint64) {
	f.h.MustDispatch(types.AccountId{}, func(c *runtime.Context) error {
		return f.portfolios.Credit(c, p, f.asset, types.NewBalance(amount))
	})
}

func (f *fixture) balances(t *testing.T, p types.PortfolioId) (balance, locked uint64) {
	f.h.View(func(c *runtime.Context) error {
		b, err := f.portfolios.Balance(c, p, f.asset)
		require.NoError(t, err)
		l, err := f.portfolios.Locked(c, p, f.asset)
		require.NoError(t, err)
		balance, locked = b.Uint64(), l.Uint64()
		return nil
	})
	return balance, locked
}

// TestCreatePortfolio_MonotonicNumbersAndUniqueNames 测试组合编号递增且名称唯一
func TestCreatePortfolio_MonotonicNumbersAndUniqueNames(t *testing.T) {
	// Arrange
	f := newFixture(t)
	aliceKey, alice := f.register(t, "alice")

	// Act
	var first, second types.PortfolioNumber
	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error {
		var err error
		if first, err = f.portfolios.CreatePortfolio(c, "trading"); err != nil {
			return err
		}
		second, err = f.portfolios.CreatePortfolio(c, "savings")
		return err
	})
	dupErr := f.h.Dispatch(aliceKey, func(c *runtime.Context) error {
		_, err := f.portfolios.CreatePortfolio(c, "trading")
		return err
	})
	emptyErr := f.h.Dispatch(aliceKey, func(c *runtime.Context) error {
		_, err := f.portfolios.CreatePortfolio(c, "")
		return err
	})

	// Assert
	assert.Equal(t, types.PortfolioNumber(1), first)
	assert.Equal(t, types.PortfolioNumber(2), second)
	assert.ErrorIs(t, dupErr, ErrPortfolioNameAlreadyInUse)
	assert.ErrorIs(t, emptyErr, ErrEmptyPortfolioName)
	f.h.View(func(c *runtime.Context) error {
		records, err := f.portfolios.Portfolios(c, alice)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "trading", records[0].Name)
		assert.Equal(t, "savings", records[1].Name)
		return nil
	})
}

// TestDeletePortfolio_NonEmptyRejected 测试非空组合不能删除，删除后编号不复用
func TestDeletePortfolio_NonEmptyRejected(t *testing.T) {
	f := newFixture(t)
	aliceKey, alice := f.register(t, "alice")
	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error {
		_, err := f.portfolios.CreatePortfolio(c, "p1")
		return err
	})
	p1 := types.UserPortfolio(alice, 1)
	f.credit(p1, 10)

	err := f.h.Dispatch(aliceKey, func(c *runtime.Context) error { return f.portfolios.DeletePortfolio(c, 1) })
	assert.ErrorIs(t, err, ErrPortfolioNotEmpty)

	f.h.MustDispatch(types.AccountId{}, func(c *runtime.Context) error {
		return f.portfolios.Debit(c, p1, f.asset, types.NewBalance(10))
	})
	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error { return f.portfolios.DeletePortfolio(c, 1) })

	var again types.PortfolioNumber
	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error {
		var err error
		again, err = f.portfolios.CreatePortfolio(c, "p1")
		return err
	})
	assert.Equal(t, types.PortfolioNumber(2), again)
	assert.Len(t, f.h.EventsOf(moduleName, "PortfolioDeleted"), 1)
}

// TestRenamePortfolio_FreesOldName 测试重命名后旧名称可以再次使用
func TestRenamePortfolio_FreesOldName(t *testing.T) {
	f := newFixture(t)
	aliceKey, alice := f.register(t, "alice")
	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error {
		if _, err := f.portfolios.CreatePortfolio(c, "old"); err != nil {
			return err
		}
		if err := f.portfolios.RenamePortfolio(c, 1, "new"); err != nil {
			return err
		}
		_, err := f.portfolios.CreatePortfolio(c, "old")
		return err
	})

	f.h.View(func(c *runtime.Context) error {
		name, err := f.portfolios.PortfolioName(c, types.UserPortfolio(alice, 1))
		require.NoError(t, err)
		assert.Equal(t, "new", name)
		return nil
	})
	err := f.h.Dispatch(aliceKey, func(c *runtime.Context) error { return f.portfolios.RenamePortfolio(c, 2, "new") })
	assert.ErrorIs(t, err, ErrPortfolioNameAlreadyInUse)
}

// TestCustody_SetQuitAndEnsure 测试托管方的指定、放弃与校验
func TestCustody_SetQuitAndEnsure(t *testing.T) {
	// Arrange
	f := newFixture(t)
	aliceKey, alice := f.register(t, "alice")
	bobKey, bob := f.register(t, "bob")
	p := types.DefaultPortfolio(alice)

	// Act & Assert
	err := f.h.Dispatch(bobKey, func(c *runtime.Context) error { return f.portfolios.SetCustodian(c, p, bob) })
	assert.ErrorIs(t, err, ErrNotPortfolioOwner)

	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error { return f.portfolios.SetCustodian(c, p, bob) })
	f.h.View(func(c *runtime.Context) error {
		assert.Equal(t, bob, f.portfolios.Custodian(c, p))
		assert.NoError(t, f.portfolios.EnsureCustody(c, p, bob))
		assert.ErrorIs(t, f.portfolios.EnsureCustody(c, p, alice), ErrUnauthorizedCustodian)
		inCustody, err := f.portfolios.PortfoliosInCustody(c, bob)
		require.NoError(t, err)
		assert.Equal(t, []types.PortfolioId{p}, inCustody)
		return nil
	})

	err = f.h.Dispatch(aliceKey, func(c *runtime.Context) error { return f.portfolios.QuitCustody(c, p) })
	assert.ErrorIs(t, err, ErrUnauthorizedCustodian)

	f.h.MustDispatch(bobKey, func(c *runtime.Context) error { return f.portfolios.QuitCustody(c, p) })
	f.h.View(func(c *runtime.Context) error {
		assert.Equal(t, alice, f.portfolios.Custodian(c, p))
		inCustody, err := f.portfolios.PortfoliosInCustody(c, bob)
		require.NoError(t, err)
		assert.Empty(t, inCustody)
		return nil
	})
}

// TestLockUnlock_RespectsFreeBalance 测试锁定只能使用可用余额，且 balance >= locked
func TestLockUnlock_RespectsFreeBalance(t *testing.T) {
	f := newFixture(t)
	_, alice := f.register(t, "alice")
	p := types.DefaultPortfolio(alice)
	f.credit(p, 100)

	f.h.MustDispatch(types.AccountId{}, func(c *runtime.Context) error {
		return f.portfolios.Lock(c, p, f.asset, types.NewBalance(70))
	})
	err := f.h.Dispatch(types.AccountId{}, func(c *runtime.Context) error {
		return f.portfolios.Lock(c, p, f.asset, types.NewBalance(31))
	})
	assert.ErrorIs(t, err, ErrInsufficientPortfolioBalance)

	err = f.h.Dispatch(types.AccountId{}, func(c *runtime.Context) error {
		return f.portfolios.Debit(c, p, f.asset, types.NewBalance(31))
	})
	assert.ErrorIs(t, err, ErrInsufficientPortfolioBalance, "锁定部分不能扣减")

	err = f.h.Dispatch(types.AccountId{}, func(c *runtime.Context) error {
		return f.portfolios.Unlock(c, p, f.asset, types.NewBalance(71))
	})
	assert.ErrorIs(t, err, ErrInsufficientTokensLocked)

	balance, locked := f.balances(t, p)
	assert.Equal(t, uint64(100), balance)
	assert.Equal(t, uint64(70), locked)

	f.h.MustDispatch(types.AccountId{}, func(c *runtime.Context) error {
		return f.portfolios.Unlock(c, p, f.asset, types.NewBalance(70))
	})
	_, locked = f.balances(t, p)
	assert.Zero(t, locked)
}

// TestTransfer_MovesFreeFundsOnly 测试划转只使用可用余额
func TestTransfer_MovesFreeFundsOnly(t *testing.T) {
	f := newFixture(t)
	_, alice := f.register(t, "alice")
	_, bob := f.register(t, "bob")
	from, to := types.DefaultPortfolio(alice), types.DefaultPortfolio(bob)
	f.credit(from, 50)
	f.h.MustDispatch(types.AccountId{}, func(c *runtime.Context) error {
		return f.portfolios.Lock(c, from, f.asset, types.NewBalance(20))
	})

	err := f.h.Dispatch(types.AccountId{}, func(c *runtime.Context) error {
		return f.portfolios.Transfer(c, from, to, f.asset, types.NewBalance(31))
	})
	assert.ErrorIs(t, err, ErrInsufficientPortfolioBalance)

	f.h.MustDispatch(types.AccountId{}, func(c *runtime.Context) error {
		return f.portfolios.Transfer(c, from, to, f.asset, types.NewBalance(30))
	})
	fromBalance, fromLocked := f.balances(t, from)
	toBalance, _ := f.balances(t, to)
	assert.Equal(t, uint64(20), fromBalance)
	assert.Equal(t, uint64(20), fromLocked)
	assert.Equal(t, uint64(30), toBalance)

	err = f.h.Dispatch(types.AccountId{}, func(c *runtime.Context) error {
		return f.portfolios.Transfer(c, from, types.UserPortfolio(bob, 9), f.asset, types.NewBalance(1))
	})
	assert.ErrorIs(t, err, ErrPortfolioDoesNotExist)
}

// TestMovePortfolioFunds_SameIdentityOnly 测试组合间划转限于同一身份并需要托管权
func TestMovePortfolioFunds_SameIdentityOnly(t *testing.T) {
	// Arrange
	f := newFixture(t)
	aliceKey, alice := f.register(t, "alice")
	bobKey, bob := f.register(t, "bob")
	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error {
		_, err := f.portfolios.CreatePortfolio(c, "vault")
		return err
	})
	def, vault := types.DefaultPortfolio(alice), types.UserPortfolio(alice, 1)
	f.credit(def, 40)
	items := []types.MovePortfolioItem{{Asset: f.asset, Amount: types.NewBalance(15), Memo: "rebalance"}}

	// Act
	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error {
		return f.portfolios.MovePortfolioFunds(c, def, vault, items)
	})
	crossErr := f.h.Dispatch(aliceKey, func(c *runtime.Context) error {
		return f.portfolios.MovePortfolioFunds(c, def, types.DefaultPortfolio(bob), items)
	})
	strangerErr := f.h.Dispatch(bobKey, func(c *runtime.Context) error {
		return f.portfolios.MovePortfolioFunds(c, def, vault, items)
	})
	sameErr := f.h.Dispatch(aliceKey, func(c *runtime.Context) error {
		return f.portfolios.MovePortfolioFunds(c, def, def, items)
	})

	// Assert
	defBalance, _ := f.balances(t, def)
	vaultBalance, _ := f.balances(t, vault)
	assert.Equal(t, uint64(25), defBalance)
	assert.Equal(t, uint64(15), vaultBalance)
	assert.ErrorIs(t, crossErr, ErrDifferentIdentityPortfolios)
	assert.ErrorIs(t, strangerErr, ErrUnauthorizedCustodian)
	assert.ErrorIs(t, sameErr, ErrDestinationIsSamePortfolio)
	assert.Len(t, f.h.EventsOf(moduleName, "FundsMovedBetweenPortfolios"), 1)

	f.h.View(func(c *runtime.Context) error {
		holdings, err := f.portfolios.Holdings(c, vault)
		require.NoError(t, err)
		require.Len(t, holdings, 1)
		assert.Equal(t, f.asset, holdings[0].Asset)
		assert.Equal(t, uint64(15), holdings[0].Balance.Uint64())
		return nil
	})
}
