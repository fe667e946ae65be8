package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	settlementconfig "github.com/polymesh/engine/internal/config/settlement"
	"github.com/polymesh/engine/internal/core/agents"
	"github.com/polymesh/engine/internal/core/asset"
	"github.com/polymesh/engine/internal/core/compliance"
	"github.com/polymesh/engine/internal/core/identity"
	"github.com/polymesh/engine/internal/core/portfolio"
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/core/statistics"
	"github.com/polymesh/engine/internal/testutil"
	settlementIface "github.com/polymesh/engine/pkg/interfaces/settlement"
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
	agents     *agents.Service
	portfolios *portfolio.Service
	stats      *statistics.Service
	assets     *asset.Service
	compliance *compliance.Service
	settlement *Service

	acme  types.Ticker
	alice party
	bob   party
	carol party
	venue types.VenueId
}

func newFixture(t *testing.T) *fixture {
	h := testutil.NewHarness(t)
	ids := identity.NewService(nil)
	agentSvc := agents.NewService(ids, nil)
	portfolios := portfolio.NewService(ids, nil)
	stats := statistics.NewService(ids, agentSvc, nil, nil)
	assets := asset.NewService(ids, agentSvc, portfolios, stats, nil, nil)
	complianceSvc := compliance.NewService(ids, agentSvc, nil, nil, nil)
	options := &settlementconfig.SettlementOptions{MaxLegsPerInstruction: 3, MaxVenueSigners: 2}
	svc := NewService(Dependencies{
		Identity:   ids,
		Agents:     agentSvc,
		Portfolio:  portfolios,
		Assets:     assets,
		Compliance: complianceSvc,
		Statistics: stats,
	}, options, nil)
	h.Runtime.RegisterHook(svc)

	f := &fixture{
		h:          h,
		identity:   ids,
		agents:     agentSvc,
		portfolios: portfolios,
		stats:      stats,
		assets:     assets,
		compliance: complianceSvc,
		settlement: svc,
		acme:       types.MustTicker("ACME"),
	}
	f.alice = f.register(t, "alice")
	f.bob = f.register(t, "bob")
	f.carol = f.register(t, "carol")
	f.createAsset(t, f.acme, 1_000)
	f.venue = f.createVenue(t, f.alice, types.VenueOther)
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

// createAsset alice 创建资产、发行到默认组合，并添加一条无条件的合规需求
func (f *fixture) createAsset(t *testing.T, ticker types.Ticker, supply uint64) {
	f.createAssetWith(t, ticker, supply, nil)
}

// createAssetWith 同 createAsset，setup 在发行前执行
func (f *fixture) createAssetWith(t *testing.T, ticker types.Ticker, supply uint64, setup func(c *runtime.Context) error) {
	f.h.MustDispatch(f.alice.key, func(c *runtime.Context) error {
		if err := f.assets.CreateAsset(c, ticker, ticker.String(), true); err != nil {
			return err
		}
		if setup != nil {
			if err := setup(c); err != nil {
				return err
			}
		}
		if err := f.assets.Issue(c, ticker, types.NewBalance(supply), f.alice.portfolio()); err != nil {
			return err
		}
		_, err := f.compliance.AddComplianceRequirement(c, ticker, nil, nil)
		return err
	})
}

func (f *fixture) createVenue(t *testing.T, owner party, venueType types.VenueType) types.VenueId {
	var id types.VenueId
	f.h.MustDispatch(owner.key, func(c *runtime.Context) error {
		var err error
		id, err = f.settlement.CreateVenue(c, "otc desk", nil, venueType)
		return err
	})
	return id
}

func (f *fixture) leg(from, to party, ticker types.Ticker, amount uint64) types.Leg {
	return types.Leg{From: from.portfolio(), To: to.portfolio(), Asset: ticker, Amount: types.NewBalance(amount)}
}

func (f *fixture) request(st types.SettlementType, legs ...types.Leg) settlementIface.InstructionRequest {
	return settlementIface.InstructionRequest{Venue: f.venue, SettlementType: st, Legs: legs}
}

func (f *fixture) add(t *testing.T, req settlementIface.InstructionRequest) types.InstructionId {
	var id types.InstructionId
	f.h.MustDispatch(f.alice.key, func(c *runtime.Context) error {
		var err error
		id, err = f.settlement.AddInstruction(c, req)
		return err
	})
	return id
}

func (f *fixture) affirm(p party, id types.InstructionId) error {
	return f.h.Dispatch(p.key, func(c *runtime.Context) error {
		return f.settlement.AffirmInstruction(c, id, []types.PortfolioId{p.portfolio()})
	})
}

func (f *fixture) instruction(t *testing.T, id types.InstructionId) types.Instruction {
	var inst types.Instruction
	f.h.View(func(c *runtime.Context) error {
		var err error
		inst, err = f.settlement.Instruction(c, id)
		return err
	})
	return inst
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

// TestVenue_CreateAndUpdate 测试场所创建者权限与签名者上限
func TestVenue_CreateAndUpdate(t *testing.T) {
	f := newFixture(t)
	s1, s2, s3 := testutil.Account("s1"), testutil.Account("s2"), testutil.Account("s3")

	tooMany := f.h.Dispatch(f.alice.key, func(c *runtime.Context) error {
		_, err := f.settlement.CreateVenue(c, "x", []types.AccountId{s1, s2, s3}, types.VenueOther)
		return err
	})
	assert.ErrorIs(t, tooMany, ErrMaxVenueSignersExceeded)

	notCreator := f.h.Dispatch(f.bob.key, func(c *runtime.Context) error {
		return f.settlement.UpdateVenueDetails(c, f.venue, "hijack")
	})
	assert.ErrorIs(t, notCreator, ErrUnauthorized)

	f.h.MustDispatch(f.alice.key, func(c *runtime.Context) error {
		if err := f.settlement.UpdateVenueType(c, f.venue, types.VenueExchange); err != nil {
			return err
		}
		return f.settlement.UpdateVenueSigners(c, f.venue, []types.AccountId{s1, s2}, true)
	})
	duplicate := f.h.Dispatch(f.alice.key, func(c *runtime.Context) error {
		return f.settlement.UpdateVenueSigners(c, f.venue, []types.AccountId{s1}, true)
	})
	assert.ErrorIs(t, duplicate, ErrSignerAlreadyExists)
	missing := f.h.Dispatch(f.alice.key, func(c *runtime.Context) error {
		return f.settlement.UpdateVenueSigners(c, f.venue, []types.AccountId{s3}, false)
	})
	assert.ErrorIs(t, missing, ErrSignerDoesNotExist)

	f.h.View(func(c *runtime.Context) error {
		v, err := f.settlement.Venue(c, f.venue)
		require.NoError(t, err)
		assert.Equal(t, types.VenueExchange, v.VenueType)
		assert.Equal(t, []types.AccountId{s1, s2}, v.Signers)
		_, err = f.settlement.Venue(c, 99)
		assert.ErrorIs(t, err, ErrInvalidVenue)
		return nil
	})
}

// TestAddInstruction_Validation 测试指令创建时的校验与锁定
func TestAddInstruction_Validation(t *testing.T) {
	f := newFixture(t)
	ok := f.leg(f.alice, f.bob, f.acme, 10)
	addAs := func(p party, req settlementIface.InstructionRequest) error {
		return f.h.Dispatch(p.key, func(c *runtime.Context) error {
			_, err := f.settlement.AddInstruction(c, req)
			return err
		})
	}
	later, earlier := types.Moment(2000), types.Moment(1000)

	cases := []struct {
		name string
		req  settlementIface.InstructionRequest
		want error
	}{
		{"没有腿", f.request(types.OnAffirmation()), ErrNoLegs},
		{"腿过多", f.request(types.OnAffirmation(), ok, ok, ok, ok), ErrInstructionHasTooManyLegs},
		{"金额为零", f.request(types.OnAffirmation(), f.leg(f.alice, f.bob, f.acme, 0)), ErrZeroAmount},
		{"同一组合", f.request(types.OnAffirmation(), f.leg(f.alice, f.alice, f.acme, 1)), ErrSameSenderReceiver},
		{"过去的区块", f.request(types.OnBlock(0), ok), ErrSettleOnPastBlock},
		{"余额不足", f.request(types.OnAffirmation(), f.leg(f.alice, f.bob, f.acme, 1_001)), portfolio.ErrInsufficientPortfolioBalance},
		{"日期倒置", settlementIface.InstructionRequest{
			Venue: f.venue, SettlementType: types.OnAffirmation(), TradeDate: &later, ValueDate: &earlier, Legs: []types.Leg{ok},
		}, ErrInvalidDates},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, addAs(f.alice, tc.req), tc.want)
		})
	}
	assert.ErrorIs(t, addAs(f.bob, f.request(types.OnAffirmation(), ok)), ErrUnauthorized)

	// 重复锁定同一余额
	f.add(t, f.request(types.OnAffirmation(), f.leg(f.alice, f.bob, f.acme, 600)))
	assert.ErrorIs(t, addAs(f.alice, f.request(types.OnAffirmation(), f.leg(f.alice, f.carol, f.acme, 600))), portfolio.ErrInsufficientPortfolioBalance)
	_, locked := f.balance(t, f.alice, f.acme)
	assert.Equal(t, uint64(600), locked)
}

// TestAddInstruction_VenueFiltering 测试资产场所白名单
func TestAddInstruction_VenueFiltering(t *testing.T) {
	f := newFixture(t)
	req := f.request(types.OnAffirmation(), f.leg(f.alice, f.bob, f.acme, 10))
	f.h.MustDispatch(f.alice.key, func(c *runtime.Context) error {
		return f.settlement.SetVenueFiltering(c, f.acme, true)
	})

	blocked := f.h.Dispatch(f.alice.key, func(c *runtime.Context) error {
		_, err := f.settlement.AddInstruction(c, req)
		return err
	})
	f.h.MustDispatch(f.alice.key, func(c *runtime.Context) error {
		return f.settlement.AllowVenues(c, f.acme, []types.VenueId{f.venue})
	})

	assert.ErrorIs(t, blocked, ErrUnauthorizedVenue)
	f.add(t, req)
}

// TestAffirm_ExecutesWhenAllAffirmed 测试全部确认后立即执行并释放锁定
func TestAffirm_ExecutesWhenAllAffirmed(t *testing.T) {
	// Arrange
	f := newFixture(t)
	id := f.add(t, f.request(types.OnAffirmation(), f.leg(f.alice, f.bob, f.acme, 100)))
	require.Equal(t, uint64(2), f.instruction(t, id).PendingAffirms)

	// Act
	require.NoError(t, f.affirm(f.alice, id))
	pendingAfterAlice := f.instruction(t, id)
	require.NoError(t, f.affirm(f.bob, id))

	// Assert
	assert.Equal(t, uint64(1), pendingAfterAlice.PendingAffirms)
	assert.Equal(t, types.InstructionPending, pendingAfterAlice.Status)
	assert.Equal(t, types.InstructionExecuted, f.instruction(t, id).Status)
	aliceTotal, aliceLocked := f.balance(t, f.alice, f.acme)
	bobTotal, _ := f.balance(t, f.bob, f.acme)
	assert.Equal(t, uint64(900), aliceTotal)
	assert.Zero(t, aliceLocked)
	assert.Equal(t, uint64(100), bobTotal)
	assert.Len(t, f.h.EventsOf(moduleName, "InstructionExecuted"), 1)
}

// TestAffirm_StatusRules 测试确认与撤回的状态约束
func TestAffirm_StatusRules(t *testing.T) {
	f := newFixture(t)
	id := f.add(t, f.request(types.OnAffirmation(), f.leg(f.alice, f.bob, f.acme, 100)))

	notController := f.h.Dispatch(f.carol.key, func(c *runtime.Context) error {
		return f.settlement.AffirmInstruction(c, id, []types.PortfolioId{f.bob.portfolio()})
	})
	assert.ErrorIs(t, notController, ErrUnauthorizedCustodian)
	assert.ErrorIs(t, f.affirm(f.carol, id), ErrPortfolioNotInInstruction)

	require.NoError(t, f.affirm(f.alice, id))
	assert.ErrorIs(t, f.affirm(f.alice, id), ErrUnexpectedAffirmationStatus)

	f.h.MustDispatch(f.alice.key, func(c *runtime.Context) error {
		return f.settlement.WithdrawAffirmation(c, id, []types.PortfolioId{f.alice.portfolio()})
	})
	withdrawAgain := f.h.Dispatch(f.alice.key, func(c *runtime.Context) error {
		return f.settlement.WithdrawAffirmation(c, id, []types.PortfolioId{f.alice.portfolio()})
	})
	assert.ErrorIs(t, withdrawAgain, ErrUnexpectedAffirmationStatus)
	assert.Equal(t, uint64(2), f.instruction(t, id).PendingAffirms)

	require.NoError(t, f.affirm(f.bob, id))
	require.NoError(t, f.affirm(f.alice, id))
	lateWithdraw := f.h.Dispatch(f.alice.key, func(c *runtime.Context) error {
		return f.settlement.WithdrawAffirmation(c, id, []types.PortfolioId{f.alice.portfolio()})
	})
	assert.ErrorIs(t, lateWithdraw, ErrInstructionNotPending)
}

// TestAffirm_Custodian 测试托管方可以代为确认
func TestAffirm_Custodian(t *testing.T) {
	f := newFixture(t)
	dave := f.register(t, "dave")
	f.h.MustDispatch(f.bob.key, func(c *runtime.Context) error {
		return f.portfolios.SetCustodian(c, f.bob.portfolio(), dave.did)
	})
	id := f.add(t, f.request(types.OnAffirmation(), f.leg(f.alice, f.bob, f.acme, 5)))

	f.h.MustDispatch(dave.key, func(c *runtime.Context) error {
		return f.settlement.AffirmInstruction(c, id, []types.PortfolioId{f.bob.portfolio()})
	})

	assert.Equal(t, types.AffirmationAffirmed, func() types.AffirmationStatus {
		var st types.AffirmationStatus
		f.h.View(func(c *runtime.Context) error {
			st = f.settlement.AffirmStatus(c, id, f.bob.portfolio())
			return nil
		})
		return st
	}())
}

// TestExecute_ComplianceFailureIsAtomic 测试一条腿合规失败时整条指令不生效
func TestExecute_ComplianceFailureIsAtomic(t *testing.T) {
	// Arrange
	f := newFixture(t)
	beta := types.MustTicker("BETA")
	f.h.MustDispatch(f.alice.key, func(c *runtime.Context) error {
		if err := f.assets.CreateAsset(c, beta, "Beta", true); err != nil {
			return err
		}
		if err := f.assets.Issue(c, beta, types.NewBalance(500), f.alice.portfolio()); err != nil {
			return err
		}
		_, err := f.compliance.AddComplianceRequirement(c, beta, nil, []types.Condition{
			types.NewCondition(types.IsIdentity(types.SpecificTarget(f.carol.did))),
		})
		return err
	})
	id := f.add(t, f.request(types.OnAffirmation(),
		f.leg(f.alice, f.bob, f.acme, 10),
		f.leg(f.alice, f.bob, beta, 20),
	))

	// Act
	require.NoError(t, f.affirm(f.alice, id))
	require.NoError(t, f.affirm(f.bob, id))

	// Assert
	assert.Equal(t, types.InstructionFailed, f.instruction(t, id).Status)
	for _, ticker := range []types.Ticker{f.acme, beta} {
		_, locked := f.balance(t, f.alice, ticker)
		bobTotal, _ := f.balance(t, f.bob, ticker)
		assert.Zero(t, locked, "锁定已释放 %s", ticker)
		assert.Zero(t, bobTotal, "没有腿被部分执行 %s", ticker)
	}
	events := f.h.EventsOf(moduleName, "InstructionFailed")
	require.Len(t, events, 1)
	failed, ok := events[0].Data.(InstructionFailed)
	require.True(t, ok)
	require.Len(t, failed.FailedLegs, 1)
	assert.Equal(t, 1, failed.FailedLegs[0].Index)
	assert.Equal(t, ReasonCompliance, failed.FailedLegs[0].Reason)
	require.NotNil(t, failed.FailedLegs[0].Compliance)
	assert.Equal(t, []string{"receiver#1:IsIdentity"}, failed.FailedLegs[0].Compliance.FailedConditions())
}

// TestExecute_TransferConditionRollsBackEarlierLegs 测试第二阶段失败回滚已划转的腿
func TestExecute_TransferConditionRollsBackEarlierLegs(t *testing.T) {
	// Arrange
	f := newFixture(t)
	gama := types.MustTicker("GAMA")
	f.createAssetWith(t, gama, 500, func(c *runtime.Context) error {
		if err := f.stats.SetActiveAssetStats(c, gama, []types.StatType{types.CountStat()}); err != nil {
			return err
		}
		return f.stats.SetAssetTransferCompliance(c, gama, []types.TransferCondition{types.MaxInvestorCount(2)})
	})
	id := f.add(t, f.request(types.OnAffirmation(),
		f.leg(f.alice, f.bob, gama, 10),
		f.leg(f.alice, f.carol, gama, 10),
	))

	// Act
	require.NoError(t, f.affirm(f.bob, id))
	require.NoError(t, f.affirm(f.carol, id))
	require.NoError(t, f.affirm(f.alice, id))

	// Assert
	assert.Equal(t, types.InstructionFailed, f.instruction(t, id).Status)
	bobTotal, _ := f.balance(t, f.bob, gama)
	assert.Zero(t, bobTotal, "第一条腿随保存点回滚")
	f.h.View(func(c *runtime.Context) error {
		count, err := f.stats.InvestorCount(c, gama)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)
		return nil
	})
	events := f.h.EventsOf(moduleName, "InstructionFailed")
	require.Len(t, events, 1)
	failed := events[0].Data.(InstructionFailed)
	assert.Equal(t, 1, failed.FailedLegs[0].Index)
	assert.Equal(t, ReasonTransferCondition, failed.FailedLegs[0].Reason)
	require.Len(t, failed.FailedLegs[0].Transfer, 1)
	assert.False(t, failed.FailedLegs[0].Transfer[0].Result)
	assert.Empty(t, f.h.EventsOf("asset", "Transfer"), "回滚的划转不发布事件")
}

// TestExecute_FrozenAsset 测试冻结资产的腿执行失败
func TestExecute_FrozenAsset(t *testing.T) {
	f := newFixture(t)
	id := f.add(t, f.request(types.OnAffirmation(), f.leg(f.alice, f.bob, f.acme, 10)))
	f.h.MustDispatch(f.alice.key, func(c *runtime.Context) error { return f.assets.Freeze(c, f.acme) })

	require.NoError(t, f.affirm(f.alice, id))
	require.NoError(t, f.affirm(f.bob, id))

	assert.Equal(t, types.InstructionFailed, f.instruction(t, id).Status)
	failed := f.h.EventsOf(moduleName, "InstructionFailed")[0].Data.(InstructionFailed)
	assert.Equal(t, ReasonFrozen, failed.FailedLegs[0].Reason)
}

// TestSettleOnBlock_ExecutesInHook 测试按区块结算由区块钩子触发
func TestSettleOnBlock_ExecutesInHook(t *testing.T) {
	// Arrange
	f := newFixture(t)
	affirmed := f.add(t, f.request(types.OnBlock(2), f.leg(f.alice, f.bob, f.acme, 10)))
	unaffirmed := f.add(t, f.request(types.OnBlock(2), f.leg(f.alice, f.carol, f.acme, 10)))
	require.NoError(t, f.affirm(f.alice, affirmed))
	require.NoError(t, f.affirm(f.bob, affirmed))
	require.NoError(t, f.affirm(f.alice, unaffirmed))

	// Act
	f.h.AdvanceBlocks(1)
	beforeBlock := f.instruction(t, affirmed).Status
	f.h.AdvanceBlocks(1)

	// Assert
	assert.Equal(t, types.InstructionPending, beforeBlock, "全部确认也要等到计划区块")
	assert.Equal(t, types.InstructionExecuted, f.instruction(t, affirmed).Status)
	assert.Equal(t, types.InstructionFailed, f.instruction(t, unaffirmed).Status)
	failed := f.h.EventsOf(moduleName, "InstructionFailed")[0].Data.(InstructionFailed)
	assert.Equal(t, ReasonNotAffirmed, failed.FailedLegs[0].Reason)
	_, locked := f.balance(t, f.alice, f.acme)
	assert.Zero(t, locked)
}

// TestExecuteManual_Rules 测试手动执行的区块与调用者约束
func TestExecuteManual_Rules(t *testing.T) {
	f := newFixture(t)
	outsider := f.register(t, "outsider")
	id := f.add(t, f.request(types.Manual(1), f.leg(f.alice, f.bob, f.acme, 10)))
	execute := func(p party) error {
		return f.h.Dispatch(p.key, func(c *runtime.Context) error {
			return f.settlement.ExecuteManualInstruction(c, id)
		})
	}

	require.NoError(t, f.affirm(f.alice, id))
	assert.ErrorIs(t, execute(f.bob), ErrInstructionSettleBlockNotReached)
	f.h.AdvanceBlocks(1)
	assert.ErrorIs(t, execute(f.bob), ErrInstructionNotAffirmed)
	require.NoError(t, f.affirm(f.bob, id))
	assert.Equal(t, types.InstructionPending, f.instruction(t, id).Status, "手动结算在确认后不会自动执行")
	assert.ErrorIs(t, execute(outsider), ErrCallerIsNotAParty)

	require.NoError(t, execute(f.bob))
	assert.Equal(t, types.InstructionExecuted, f.instruction(t, id).Status)
}

// TestRejectInstruction_ReleasesLocks 测试拒绝释放锁定且只能在 Pending 状态
func TestRejectInstruction_ReleasesLocks(t *testing.T) {
	f := newFixture(t)
	id := f.add(t, f.request(types.OnAffirmation(), f.leg(f.alice, f.bob, f.acme, 300)))
	reject := func(p party) error {
		return f.h.Dispatch(p.key, func(c *runtime.Context) error {
			return f.settlement.RejectInstruction(c, id, p.portfolio())
		})
	}

	assert.ErrorIs(t, reject(f.carol), ErrPortfolioNotInInstruction)
	require.NoError(t, reject(f.bob))

	assert.Equal(t, types.InstructionRejected, f.instruction(t, id).Status)
	_, locked := f.balance(t, f.alice, f.acme)
	assert.Zero(t, locked)
	assert.ErrorIs(t, reject(f.alice), ErrInstructionNotPending)
}

// TestAddAndAffirmInstruction 测试创建时一并确认
func TestAddAndAffirmInstruction(t *testing.T) {
	f := newFixture(t)
	var id types.InstructionId
	f.h.MustDispatch(f.alice.key, func(c *runtime.Context) error {
		var err error
		id, err = f.settlement.AddAndAffirmInstruction(c,
			f.request(types.OnAffirmation(), f.leg(f.alice, f.bob, f.acme, 10)),
			[]types.PortfolioId{f.alice.portfolio()},
		)
		return err
	})

	assert.Equal(t, uint64(1), f.instruction(t, id).PendingAffirms)
	require.NoError(t, f.affirm(f.bob, id))
	assert.Equal(t, types.InstructionExecuted, f.instruction(t, id).Status)
}
