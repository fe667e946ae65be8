package sto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stoconfig "github.com/polymesh/engine/internal/config/sto"
	"github.com/polymesh/engine/internal/core/agents"
	"github.com/polymesh/engine/internal/core/asset"
	"github.com/polymesh/engine/internal/core/compliance"
	"github.com/polymesh/engine/internal/core/identity"
	"github.com/polymesh/engine/internal/core/portfolio"
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/core/settlement"
	"github.com/polymesh/engine/internal/core/statistics"
	"github.com/polymesh/engine/internal/testutil"
	stoIface "github.com/polymesh/engine/pkg/interfaces/sto"
	"github.com/polymesh/engine/pkg/types"
)

type party struct {
	key types.AccountId
	did types.IdentityId
}

func (p party) portfolio() types.PortfolioId { return types.DefaultPortfolio(p.did) }

type fixture struct {
	h          *testutil.Harness
	identity   *identity.Service
	portfolios *portfolio.Service
	assets     *asset.Service
	compliance *compliance.Service
	settlement *settlement.Service
	sto        *Service

	acme  types.Ticker
	usd   types.Ticker
	alice party
	bob   party
	venue types.VenueId
}

// newFixture alice 发行 ACME 并开设 Sto 场所，bob 持有 1000 USD
func newFixture(t *testing.T) *fixture {
	h := testutil.NewHarness(t)
	ids := identity.NewService(nil)
	agentSvc := agents.NewService(ids, nil)
	portfolios := portfolio.NewService(ids, nil)
	stats := statistics.NewService(ids, agentSvc, nil, nil)
	assets := asset.NewService(ids, agentSvc, portfolios, stats, nil, nil)
	complianceSvc := compliance.NewService(ids, agentSvc, nil, nil, nil)
	settlementSvc := settlement.NewService(settlement.Dependencies{
		Identity:   ids,
		Agents:     agentSvc,
		Portfolio:  portfolios,
		Assets:     assets,
		Compliance: complianceSvc,
		Statistics: stats,
	}, nil, nil)

	f := &fixture{
		h:          h,
		identity:   ids,
		portfolios: portfolios,
		assets:     assets,
		compliance: complianceSvc,
		settlement: settlementSvc,
		sto:        NewService(ids, agentSvc, portfolios, settlementSvc, &stoconfig.StoOptions{MaxTiers: 3}, nil),
		acme:       types.MustTicker("ACME"),
		usd:        types.MustTicker("USD"),
	}
	f.alice = f.register(t, "alice")
	f.bob = f.register(t, "bob")
	f.createAsset(t, f.alice, f.acme)
	f.createAsset(t, f.bob, f.usd)
	f.h.MustDispatch(f.alice.key, func(c *runtime.Context) error {
		var err error
		f.venue, err = f.settlement.CreateVenue(c, "primary offering", nil, types.VenueSto)
		return err
	})
	return f
}

func (f *fixture) register(t *testing.T, seed string) party {
	key := testutil.Account(seed)
	var did types.IdentityId
	f.h.MustDispatch(key, func(c *runtime.Context) error {
		var err error
		did, err = f.identity.RegisterIdentity(c, key)
		return err
	})
	return party{key: key, did: did}
}

func (f *fixture) createAsset(t *testing.T, owner party, ticker types.Ticker) {
	f.h.MustDispatch(owner.key, func(c *runtime.Context) error {
		if err := f.assets.CreateAsset(c, ticker, ticker.String(), true); err != nil {
			return err
		}
		if err := f.assets.Issue(c, ticker, types.NewBalance(1_000), owner.portfolio()); err != nil {
			return err
		}
		_, err := f.compliance.AddComplianceRequirement(c, ticker, nil, nil)
		return err
	})
}

func (f *fixture) request(tiers ...types.PriceTier) stoIface.FundraiserRequest {
	return stoIface.FundraiserRequest{
		Name:              "series a",
		OfferingPortfolio: f.alice.portfolio(),
		OfferingAsset:     f.acme,
		RaisingPortfolio:  f.alice.portfolio(),
		RaisingAsset:      f.usd,
		Tiers:             tiers,
		Venue:             f.venue,
	}
}

func (f *fixture) create(t *testing.T, req stoIface.FundraiserRequest) types.FundraiserId {
	var id types.FundraiserId
	f.h.MustDispatch(f.alice.key, func(c *runtime.Context) error {
		var err error
		id, err = f.sto.CreateFundraiser(c, req)
		return err
	})
	return id
}

func (f *fixture) invest(id types.FundraiserId, amount uint64, maxPrice *types.Balance, minTier *int) (stoIface.InvestResult, error) {
	var result stoIface.InvestResult
	err := f.h.Dispatch(f.bob.key, func(c *runtime.Context) error {
		var err error
		result, err = f.sto.Invest(c, stoIface.InvestRequest{
			InvestorOffering: f.bob.portfolio(),
			InvestorRaising:  f.bob.portfolio(),
			OfferingAsset:    f.acme,
			Fundraiser:       id,
			PurchaseAmount:   types.NewBalance(amount),
			MaxPrice:         maxPrice,
			MinTier:          minTier,
		})
		return err
	})
	return result, err
}

func (f *fixture) fundraiser(t *testing.T, id types.FundraiserId) types.Fundraiser {
	var fr types.Fundraiser
	f.h.View(func(c *runtime.Context) error {
		var err error
		fr, err = f.sto.Fundraiser(c, f.acme, id)
		return err
	})
	return fr
}

func (f *fixture) balance(t *testing.T, p party, ticker types.Ticker) (total, locked uint64) {
	f.h.View(func(c *runtime.Context) error {
		b, err := f.portfolios.Balance(c, p.portfolio(), ticker)
		require.NoError(t, err)
		l, err := f.portfolios.Locked(c, p.portfolio(), ticker)
		require.NoError(t, err)
		total, locked = b.Uint64(), l.Uint64()
		return nil
	})
	return total, locked
}

func (f *fixture) now(t *testing.T) types.Moment {
	var now types.Moment
	f.h.View(func(c *runtime.Context) error {
		now = c.Now()
		return nil
	})
	return now
}

func tier(total, price uint64) types.PriceTier {
	return types.PriceTier{Total: types.NewBalance(total), Price: types.NewBalance(price)}
}

func balancePtr(n uint64) *types.Balance {
	b := types.NewBalance(n)
	return &b
}

// TestInvest_PartialFillClosesFundraiser 测试超额认购只成交剩余量并关闭募资
func TestInvest_PartialFillClosesFundraiser(t *testing.T) {
	// Arrange
	f := newFixture(t)
	id := f.create(t, f.request(tier(100, 2)))
	_, lockedAfterCreate := f.balance(t, f.alice, f.acme)

	// Act
	result, err := f.invest(id, 150, nil, nil)
	_, again := f.invest(id, 1, nil, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint64(100), lockedAfterCreate)
	assert.Equal(t, uint64(100), result.Filled.Uint64())
	assert.Equal(t, uint64(200), result.Raised.Uint64())

	fr := f.fundraiser(t, id)
	assert.Equal(t, types.FundraiserClosed, fr.Status)
	remaining, err := fr.Remaining()
	require.NoError(t, err)
	assert.True(t, remaining.IsZero())
	assert.ErrorIs(t, again, ErrFundraiserClosed)

	aliceAcme, aliceLocked := f.balance(t, f.alice, f.acme)
	aliceUsd, _ := f.balance(t, f.alice, f.usd)
	bobAcme, _ := f.balance(t, f.bob, f.acme)
	bobUsd, _ := f.balance(t, f.bob, f.usd)
	assert.Equal(t, uint64(900), aliceAcme)
	assert.Zero(t, aliceLocked)
	assert.Equal(t, uint64(200), aliceUsd)
	assert.Equal(t, uint64(100), bobAcme)
	assert.Equal(t, uint64(800), bobUsd)

	events := f.h.EventsOf(moduleName, "Invested")
	require.Len(t, events, 1)
	invested := events[0].Data.(Invested)
	assert.Equal(t, uint64(150), invested.Requested.Uint64())
	assert.Equal(t, uint64(100), invested.Filled.Uint64())
}

// TestInvest_TiersAndMaxPrice 测试跨档位按各自价格成交以及价格上限
func TestInvest_TiersAndMaxPrice(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, f.request(tier(10, 1), tier(10, 3), tier(10, 5)))

	_, err := f.invest(id, 15, balancePtr(2), nil)
	assert.ErrorIs(t, err, ErrMaxPriceExceeded)

	result, err := f.invest(id, 15, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(10*1+5*3), result.Raised.Uint64())

	minTier := 2
	result, err = f.invest(id, 4, balancePtr(5), &minTier)
	require.NoError(t, err)
	assert.Equal(t, uint64(4*5), result.Raised.Uint64(), "从指定档位开始，跳过档位 1 的剩余量")

	fr := f.fundraiser(t, id)
	assert.Zero(t, fr.Tiers[0].Remaining.Uint64())
	assert.Equal(t, uint64(5), fr.Tiers[1].Remaining.Uint64())
	assert.Equal(t, uint64(6), fr.Tiers[2].Remaining.Uint64())
	assert.Equal(t, types.FundraiserLive, fr.Status)

	badTier := 3
	_, err = f.invest(id, 1, nil, &badTier)
	assert.ErrorIs(t, err, ErrInvalidPriceTiers)
}

// TestCreateFundraiser_Validation 测试创建募资的校验
func TestCreateFundraiser_Validation(t *testing.T) {
	f := newFixture(t)
	var otherVenue types.VenueId
	f.h.MustDispatch(f.alice.key, func(c *runtime.Context) error {
		var err error
		otherVenue, err = f.settlement.CreateVenue(c, "otc", nil, types.VenueOther)
		return err
	})
	start := f.now(t) + 10_000
	end := start

	cases := []struct {
		name   string
		mutate func(*stoIface.FundraiserRequest)
		want   error
	}{
		{"场所类型不是 Sto", func(r *stoIface.FundraiserRequest) { r.Venue = otherVenue }, ErrInvalidVenue},
		{"场所不存在", func(r *stoIface.FundraiserRequest) { r.Venue = 99 }, ErrInvalidVenue},
		{"没有档位", func(r *stoIface.FundraiserRequest) { r.Tiers = nil }, ErrInvalidPriceTiers},
		{"档位过多", func(r *stoIface.FundraiserRequest) {
			r.Tiers = []types.PriceTier{tier(1, 1), tier(1, 1), tier(1, 1), tier(1, 1)}
		}, ErrInvalidPriceTiers},
		{"档位数量为零", func(r *stoIface.FundraiserRequest) { r.Tiers = []types.PriceTier{tier(0, 1)} }, ErrInvalidPriceTiers},
		{"窗口为空", func(r *stoIface.FundraiserRequest) { r.Start, r.End = &start, &end }, ErrInvalidOfferingWindow},
		{"余额不足", func(r *stoIface.FundraiserRequest) { r.Tiers = []types.PriceTier{tier(600, 1), tier(600, 1)} }, portfolio.ErrInsufficientPortfolioBalance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := f.request(tier(100, 1))
			tc.mutate(&req)
			err := f.h.Dispatch(f.alice.key, func(c *runtime.Context) error {
				_, err := f.sto.CreateFundraiser(c, req)
				return err
			})
			assert.ErrorIs(t, err, tc.want)
		})
	}

	notAgent := f.h.Dispatch(f.bob.key, func(c *runtime.Context) error {
		_, err := f.sto.CreateFundraiser(c, f.request(tier(100, 1)))
		return err
	})
	assert.ErrorIs(t, notAgent, agents.ErrUnauthorizedAgent)
	_, locked := f.balance(t, f.alice, f.acme)
	assert.Zero(t, locked, "失败的创建不锁定余额")
}

// TestInvest_OfferingWindow 测试募资时间窗口
func TestInvest_OfferingWindow(t *testing.T) {
	// Arrange
	f := newFixture(t)
	start := f.now(t) + 2*testutil.TestBlockIntervalMs
	end := start + testutil.TestBlockIntervalMs
	req := f.request(tier(100, 1))
	req.Start, req.End = &start, &end
	id := f.create(t, req)

	// Act
	_, early := f.invest(id, 1, nil, nil)
	f.h.AdvanceBlocks(2)
	_, live := f.invest(id, 1, nil, nil)
	f.h.AdvanceBlocks(1)
	_, late := f.invest(id, 1, nil, nil)

	// Assert
	assert.ErrorIs(t, early, ErrFundraiserNotLive)
	assert.NoError(t, live)
	assert.ErrorIs(t, late, ErrFundraiserExpired)
}

// TestModifyFundraiserWindow 测试修改窗口后重新开放认购
func TestModifyFundraiserWindow(t *testing.T) {
	f := newFixture(t)
	now := f.now(t)
	end := now + testutil.TestBlockIntervalMs
	req := f.request(tier(100, 1))
	req.End = &end
	id := f.create(t, req)
	modify := func(start types.Moment, end *types.Moment) error {
		return f.h.Dispatch(f.alice.key, func(c *runtime.Context) error {
			return f.sto.ModifyFundraiserWindow(c, f.acme, id, start, end)
		})
	}

	assert.ErrorIs(t, modify(now+10, &now), ErrInvalidOfferingWindow)
	require.NoError(t, modify(now, nil))
	f.h.AdvanceBlocks(2)
	_, err := f.invest(id, 1, nil, nil)

	assert.NoError(t, err)
	assert.Nil(t, f.fundraiser(t, id).End)
}

// TestFreezeAndStop 测试冻结、解冻与提前结束
func TestFreezeAndStop(t *testing.T) {
	// Arrange
	f := newFixture(t)
	id := f.create(t, f.request(tier(100, 1)))
	freeze := func(p party) error {
		return f.h.Dispatch(p.key, func(c *runtime.Context) error { return f.sto.FreezeFundraiser(c, f.acme, id) })
	}
	unfreeze := func(p party) error {
		return f.h.Dispatch(p.key, func(c *runtime.Context) error { return f.sto.UnfreezeFundraiser(c, f.acme, id) })
	}
	stop := func(p party) error {
		return f.h.Dispatch(p.key, func(c *runtime.Context) error { return f.sto.Stop(c, f.acme, id) })
	}

	// Act & Assert
	assert.ErrorIs(t, freeze(f.bob), agents.ErrUnauthorizedAgent)
	require.NoError(t, freeze(f.alice))
	_, frozen := f.invest(id, 1, nil, nil)
	assert.ErrorIs(t, frozen, ErrFundraiserNotLive)
	require.NoError(t, unfreeze(f.alice))
	assert.ErrorIs(t, unfreeze(f.alice), ErrFundraiserNotFrozen)

	_, err := f.invest(id, 30, nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, stop(f.bob), ErrUnauthorized)
	require.NoError(t, stop(f.alice))

	assert.Equal(t, types.FundraiserClosedEarly, f.fundraiser(t, id).Status)
	_, locked := f.balance(t, f.alice, f.acme)
	assert.Zero(t, locked, "未售出的 70 已释放")
	_, closed := f.invest(id, 1, nil, nil)
	assert.ErrorIs(t, closed, ErrFundraiserClosed)
	assert.ErrorIs(t, stop(f.alice), ErrFundraiserClosed)
}

// TestInvest_MinimumInvestment 测试募集额低于最低认购
func TestInvest_MinimumInvestment(t *testing.T) {
	f := newFixture(t)
	req := f.request(tier(100, 2))
	req.MinimumInvestment = types.NewBalance(50)
	id := f.create(t, req)

	_, low := f.invest(id, 10, nil, nil)
	_, ok := f.invest(id, 25, nil, nil)

	assert.ErrorIs(t, low, ErrInvestmentAmountTooLow)
	assert.NoError(t, ok)
}

// TestInvest_ComplianceFailureRollsBack 测试结算合规失败时认购整体回滚
func TestInvest_ComplianceFailureRollsBack(t *testing.T) {
	// Arrange
	f := newFixture(t)
	id := f.create(t, f.request(tier(100, 1)))
	f.h.MustDispatch(f.alice.key, func(c *runtime.Context) error {
		if err := f.compliance.ResetAssetCompliance(c, f.acme); err != nil {
			return err
		}
		_, err := f.compliance.AddComplianceRequirement(c, f.acme, nil, []types.Condition{
			types.NewCondition(types.IsIdentity(types.SpecificTarget(f.alice.did))),
		})
		return err
	})

	// Act
	_, err := f.invest(id, 10, nil, nil)

	// Assert
	assert.ErrorIs(t, err, ErrSettlementFailed)
	remaining, rerr := f.fundraiser(t, id).Remaining()
	require.NoError(t, rerr)
	assert.Equal(t, uint64(100), remaining.Uint64())
	_, locked := f.balance(t, f.alice, f.acme)
	bobUsd, bobLocked := f.balance(t, f.bob, f.usd)
	assert.Equal(t, uint64(100), locked)
	assert.Equal(t, uint64(1_000), bobUsd)
	assert.Zero(t, bobLocked)
	assert.Empty(t, f.h.EventsOf(moduleName, "Invested"))
}

// TestFundraisers_OrderedById 测试按编号列出资产的募资
func TestFundraisers_OrderedById(t *testing.T) {
	f := newFixture(t)
	for range 3 {
		f.create(t, f.request(tier(10, 1)))
	}

	var list []types.Fundraiser
	f.h.View(func(c *runtime.Context) error {
		var err error
		list, err = f.sto.Fundraisers(c, f.acme)
		return err
	})

	require.Len(t, list, 3)
	for i, fr := range list {
		assert.Equal(t, types.FundraiserId(i+1), fr.Id)
	}
}
