package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	assetconfig "github.com/polymesh/engine/internal/config/asset"
	"github.com/polymesh/engine/internal/core/agents"
	"github.com/polymesh/engine/internal/core/identity"
	"github.com/polymesh/engine/internal/core/portfolio"
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/core/statistics"
	"github.com/polymesh/engine/internal/testutil"
	"github.com/polymesh/engine/pkg/types"
)

type fixture struct {
	h          *testutil.Harness
	identity   *identity.Service
	portfolios *portfolio.Service
	stats      *statistics.Service
	assets     *Service
	ticker     types.Ticker
}

func newFixture(t *testing.T) *fixture {
	h := testutil.NewHarness(t)
	ids := identity.NewService(nil)
	agentSvc := agents.NewService(ids, nil)
	portfolios := portfolio.NewService(ids, nil)
	stats := statistics.NewService(ids, agentSvc, nil, nil)
	options := &assetconfig.AssetOptions{MaxTickerLength: 8, RegistrationLengthMs: 2 * testutil.TestBlockIntervalMs}
	return &fixture{
		h:          h,
		identity:   ids,
		portfolios: portfolios,
		stats:      stats,
		assets:     NewService(ids, agentSvc, portfolios, stats, options, nil),
		ticker:     types.MustTicker("ACME"),
	}
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

func (f *fixture) create(t *testing.T, key types.AccountId, divisible bool) {
	f.h.MustDispatch(key, func(c *runtime.Context) error {
		return f.assets.CreateAsset(c, f.ticker, "Acme Corp", divisible)
	})
}

func (f *fixture) issue(t *testing.T, key types.AccountId, p types.PortfolioId, amount uint64) {
	f.h.MustDispatch(key, func(c *runtime.Context) error {
		return f.assets.Issue(c, f.ticker, types.NewBalance(amount), p)
	})
}

func (f *fixture) balanceOf(t *testing.T, did types.IdentityId) uint64 {
	var b types.Balance
	f.h.View(func(c *runtime.Context) error {
		var err error
		b, err = f.assets.BalanceOf(c, f.ticker, did)
		return err
	})
	return b.Uint64()
}

// TestRegisterTicker_ExpiredRegistrationReclaimed 测试过期注册被下一位注册者回收
func TestRegisterTicker_ExpiredRegistrationReclaimed(t *testing.T) {
	// Arrange
	f := newFixture(t)
	aliceKey, _ := f.register(t, "alice")
	bobKey, bob := f.register(t, "bob")
	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error { return f.assets.RegisterTicker(c, f.ticker) })

	// Act
	beforeExpiry := f.h.Dispatch(bobKey, func(c *runtime.Context) error { return f.assets.RegisterTicker(c, f.ticker) })
	f.h.AdvanceBlocks(2)
	f.h.MustDispatch(bobKey, func(c *runtime.Context) error { return f.assets.RegisterTicker(c, f.ticker) })

	// Assert
	assert.ErrorIs(t, beforeExpiry, ErrTickerAlreadyRegistered)
	f.h.View(func(c *runtime.Context) error {
		reg, ok, err := f.assets.TickerRegistration(c, f.ticker)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, bob, reg.Owner)
		return nil
	})
}

// TestRegisterTicker_Validation 测试 Ticker 长度限制
func TestRegisterTicker_Validation(t *testing.T) {
	f := newFixture(t)
	aliceKey, _ := f.register(t, "alice")

	err := f.h.Dispatch(aliceKey, func(c *runtime.Context) error {
		return f.assets.RegisterTicker(c, types.MustTicker("TOOLONGXX"))
	})
	assert.ErrorIs(t, err, ErrTickerTooLong)

	err = f.h.Dispatch(aliceKey, func(c *runtime.Context) error { return f.assets.RegisterTicker(c, types.Ticker{}) })
	assert.ErrorIs(t, err, ErrEmptyTicker)

	_, err = types.NewTicker("bad ticker")
	assert.ErrorIs(t, err, types.ErrInvalidTickerCharacter)
}

// TestCreateAsset_CreatorBecomesAgent 测试创建者成为代理，Ticker 不再过期
func TestCreateAsset_CreatorBecomesAgent(t *testing.T) {
	f := newFixture(t)
	aliceKey, alice := f.register(t, "alice")
	bobKey, _ := f.register(t, "bob")
	f.create(t, aliceKey, true)

	again := f.h.Dispatch(aliceKey, func(c *runtime.Context) error {
		return f.assets.CreateAsset(c, f.ticker, "again", true)
	})
	assert.ErrorIs(t, again, ErrAssetAlreadyCreated)

	f.h.AdvanceBlocks(5)
	stolen := f.h.Dispatch(bobKey, func(c *runtime.Context) error { return f.assets.RegisterTicker(c, f.ticker) })
	assert.ErrorIs(t, stolen, ErrAssetAlreadyCreated)

	f.h.View(func(c *runtime.Context) error {
		details, err := f.assets.Asset(c, f.ticker)
		require.NoError(t, err)
		assert.Equal(t, alice, details.Owner)
		assert.True(t, details.TotalSupply.IsZero())
		return nil
	})
}

// TestIssue_GranularityAndStats 测试不可分割资产的发行单位与统计更新
func TestIssue_GranularityAndStats(t *testing.T) {
	// Arrange
	f := newFixture(t)
	aliceKey, alice := f.register(t, "alice")
	bobKey, _ := f.register(t, "bob")
	f.create(t, aliceKey, false)
	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error {
		return f.stats.SetActiveAssetStats(c, f.ticker, []types.StatType{types.CountStat(), types.BalanceStat()})
	})
	p := types.DefaultPortfolio(alice)

	// Act
	badUnit := f.h.Dispatch(aliceKey, func(c *runtime.Context) error {
		return f.assets.Issue(c, f.ticker, types.NewBalance(types.OneUnit+1), p)
	})
	notAgent := f.h.Dispatch(bobKey, func(c *runtime.Context) error {
		return f.assets.Issue(c, f.ticker, types.NewBalance(types.OneUnit), p)
	})
	f.issue(t, aliceKey, p, 3*types.OneUnit)

	// Assert
	assert.ErrorIs(t, badUnit, ErrInvalidGranularity)
	assert.ErrorIs(t, notAgent, agents.ErrUnauthorizedAgent)
	assert.Equal(t, uint64(3*types.OneUnit), f.balanceOf(t, alice))
	f.h.View(func(c *runtime.Context) error {
		supply, err := f.assets.TotalSupply(c, f.ticker)
		require.NoError(t, err)
		assert.Equal(t, uint64(3*types.OneUnit), supply.Uint64())
		count, err := f.stats.InvestorCount(c, f.ticker)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)
		tracked, err := f.stats.AssetStats(c, types.Stat1stKey{Asset: f.ticker, StatType: types.BalanceStat()}, types.NoClaimStat())
		require.NoError(t, err)
		assert.True(t, tracked.Eq(supply))
		return nil
	})
}

// TestIssue_TotalSupplyOverflow 测试总量溢出被拒绝且状态不变
func TestIssue_TotalSupplyOverflow(t *testing.T) {
	f := newFixture(t)
	aliceKey, alice := f.register(t, "alice")
	f.create(t, aliceKey, true)
	p := types.DefaultPortfolio(alice)
	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error {
		return f.assets.Issue(c, f.ticker, types.MaxBalance(), p)
	})

	err := f.h.Dispatch(aliceKey, func(c *runtime.Context) error {
		return f.assets.Issue(c, f.ticker, types.NewBalance(1), p)
	})

	assert.ErrorIs(t, err, ErrTotalSupplyOverflow)
	f.h.View(func(c *runtime.Context) error {
		supply, err := f.assets.TotalSupply(c, f.ticker)
		require.NoError(t, err)
		assert.True(t, supply.Eq(types.MaxBalance()))
		return nil
	})
}

// TestRedeem_UsesFreeBalance 测试赎回只能使用组合的可用余额
func TestRedeem_UsesFreeBalance(t *testing.T) {
	f := newFixture(t)
	aliceKey, alice := f.register(t, "alice")
	f.create(t, aliceKey, true)
	p := types.DefaultPortfolio(alice)
	f.issue(t, aliceKey, p, 100)
	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error {
		return f.portfolios.Lock(c, p, f.ticker, types.NewBalance(60))
	})

	err := f.h.Dispatch(aliceKey, func(c *runtime.Context) error {
		return f.assets.Redeem(c, f.ticker, types.NewBalance(50), p)
	})
	assert.ErrorIs(t, err, portfolio.ErrInsufficientPortfolioBalance)

	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error {
		return f.assets.Redeem(c, f.ticker, types.NewBalance(40), p)
	})
	assert.Equal(t, uint64(60), f.balanceOf(t, alice))
	assert.Len(t, f.h.EventsOf(moduleName, "Redeemed"), 1)
}

// TestSettlementTransfer_FrozenAndBalanceSync 测试冻结拦截转账，跨身份转账同步 BalanceOf
func TestSettlementTransfer_FrozenAndBalanceSync(t *testing.T) {
	// Arrange
	f := newFixture(t)
	aliceKey, alice := f.register(t, "alice")
	_, bob := f.register(t, "bob")
	f.create(t, aliceKey, true)
	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error {
		_, err := f.portfolios.CreatePortfolio(c, "vault")
		return err
	})
	from := types.DefaultPortfolio(alice)
	f.issue(t, aliceKey, from, 100)
	transfer := func(to types.PortfolioId, amount uint64) error {
		return f.h.Dispatch(types.AccountId{}, func(c *runtime.Context) error {
			return f.assets.SettlementTransfer(c, from, to, f.ticker, types.NewBalance(amount))
		})
	}

	// Act & Assert
	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error { return f.assets.Freeze(c, f.ticker) })
	assert.ErrorIs(t, transfer(types.DefaultPortfolio(bob), 10), ErrAssetFrozen)
	again := f.h.Dispatch(aliceKey, func(c *runtime.Context) error { return f.assets.Freeze(c, f.ticker) })
	assert.ErrorIs(t, again, ErrAlreadyFrozen)

	f.h.MustDispatch(aliceKey, func(c *runtime.Context) error { return f.assets.Unfreeze(c, f.ticker) })
	require.NoError(t, transfer(types.DefaultPortfolio(bob), 30))
	require.NoError(t, transfer(types.UserPortfolio(alice, 1), 20))

	assert.Equal(t, uint64(70), f.balanceOf(t, alice), "同一身份内的划转不改变 BalanceOf")
	assert.Equal(t, uint64(30), f.balanceOf(t, bob))
	f.h.View(func(c *runtime.Context) error {
		vault, err := f.portfolios.Balance(c, types.UserPortfolio(alice, 1), f.ticker)
		require.NoError(t, err)
		assert.Equal(t, uint64(20), vault.Uint64())
		return nil
	})
}
