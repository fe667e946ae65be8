// Package sto 分档定价募资
//
// 创建募资时锁定全部档位数量；每次认购按档位顺序消耗剩余量，
// 以结算指令完成发售资产与募集资产的交换。
package sto

import (
	"cmp"
	"fmt"
	"slices"

	stoconfig "github.com/polymesh/engine/internal/config/sto"
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/core/state"
	"github.com/polymesh/engine/pkg/interfaces/agents"
	"github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/interfaces/portfolio"
	"github.com/polymesh/engine/pkg/interfaces/settlement"
	stoIface "github.com/polymesh/engine/pkg/interfaces/sto"
	"github.com/polymesh/engine/pkg/types"
)

var _ stoIface.Service = (*Service)(nil)

// 募资事件
type (
	FundraiserCreated struct {
		Asset      types.Ticker       `json:"asset"`
		Id         types.FundraiserId `json:"id"`
		Creator    types.IdentityId   `json:"creator"`
		Name       string             `json:"name"`
		Fundraiser types.Fundraiser   `json:"fundraiser"`
	}
	Invested struct {
		Asset        types.Ticker        `json:"asset"`
		Id           types.FundraiserId  `json:"id"`
		Investor     types.IdentityId    `json:"investor"`
		RaisingAsset types.Ticker        `json:"raising_asset"`
		Instruction  types.InstructionId `json:"instruction"`
		Requested    types.Balance       `json:"requested"`
		Filled       types.Balance       `json:"filled"`
		Raised       types.Balance       `json:"raised"`
	}
	FundraiserFrozen struct {
		Asset types.Ticker       `json:"asset"`
		Id    types.FundraiserId `json:"id"`
	}
	FundraiserUnfrozen struct {
		Asset types.Ticker       `json:"asset"`
		Id    types.FundraiserId `json:"id"`
	}
	FundraiserWindowModified struct {
		Asset types.Ticker       `json:"asset"`
		Id    types.FundraiserId `json:"id"`
		Start types.Moment       `json:"start"`
		End   *types.Moment      `json:"end,omitempty"`
	}
	FundraiserClosed struct {
		Asset    types.Ticker           `json:"asset"`
		Id       types.FundraiserId     `json:"id"`
		Status   types.FundraiserStatus `json:"status"`
		Released types.Balance          `json:"released"`
	}
)

// Service 募资服务实现
type Service struct {
	identity   identity.Service
	agents     agents.Service
	portfolio  portfolio.Service
	settlement settlement.Service
	options    *stoconfig.StoOptions
	logger     log.Logger
}

// NewService 创建募资服务，options 为 nil 时使用默认配置
func NewService(ids identity.Service, agentSvc agents.Service, portfolios portfolio.Service, settlementSvc settlement.Service, options *stoconfig.StoOptions, logger log.Logger) *Service {
	if options == nil {
		options = stoconfig.New(nil).GetOptions()
	}
	return &Service{
		identity:   ids,
		agents:     agentSvc,
		portfolio:  portfolios,
		settlement: settlementSvc,
		options:    options,
		logger:     logger,
	}
}

// Fundraiser 读取募资
func (s *Service) Fundraiser(c *runtime.Context, asset types.Ticker, id types.FundraiserId) (types.Fundraiser, error) {
	f, ok, err := state.Load[types.Fundraiser](c.Store(), fundraiserKey(asset, id))
	if err != nil {
		return types.Fundraiser{}, err
	}
	if !ok {
		return types.Fundraiser{}, fmt.Errorf("%w: %s/%d", ErrFundraiserNotFound, asset, id)
	}
	return f, nil
}

// Fundraisers 资产的全部募资，按编号排序
func (s *Service) Fundraisers(c *runtime.Context, asset types.Ticker) ([]types.Fundraiser, error) {
	all, err := state.Collect[types.Fundraiser](c.Store(), assetFundraisersPrefix(asset))
	if err != nil {
		return nil, err
	}
	slices.SortFunc(all, func(a, b types.Fundraiser) int { return cmp.Compare(a.Id, b.Id) })
	return all, nil
}

func (s *Service) save(c *runtime.Context, f types.Fundraiser) error {
	return state.Save(c.Store(), fundraiserKey(f.OfferingAsset, f.Id), f)
}

func (s *Service) validateTiers(tiers []types.PriceTier) (types.Balance, error) {
	if len(tiers) == 0 || len(tiers) > s.options.MaxTiers {
		return types.ZeroBalance, fmt.Errorf("%w: 档位数 %d 不在 1..%d", ErrInvalidPriceTiers, len(tiers), s.options.MaxTiers)
	}
	total := types.ZeroBalance
	for i, t := range tiers {
		if t.Total.IsZero() {
			return types.ZeroBalance, fmt.Errorf("%w: 档位 %d 数量为零", ErrInvalidPriceTiers, i)
		}
		var err error
		if total, err = total.CheckedAdd(t.Total); err != nil {
			return types.ZeroBalance, fmt.Errorf("%w: 档位总量溢出", ErrInvalidPriceTiers)
		}
	}
	return total, nil
}

// CreateFundraiser 发售资产代理创建募资并锁定全部档位数量
func (s *Service) CreateFundraiser(c *runtime.Context, req stoIface.FundraiserRequest) (types.FundraiserId, error) {
	did, err := s.agents.EnsureAgent(c, req.OfferingAsset)
	if err != nil {
		return 0, err
	}
	for _, p := range []types.PortfolioId{req.OfferingPortfolio, req.RaisingPortfolio} {
		if err := s.portfolio.EnsurePortfolioValidity(c, p); err != nil {
			return 0, err
		}
		if err := s.portfolio.EnsureCustody(c, p, did); err != nil {
			return 0, err
		}
	}

	venue, err := s.settlement.Venue(c, req.Venue)
	if err != nil || venue.Creator != did || venue.VenueType != types.VenueSto {
		return 0, fmt.Errorf("%w: %d", ErrInvalidVenue, req.Venue)
	}
	total, err := s.validateTiers(req.Tiers)
	if err != nil {
		return 0, err
	}
	start := c.Now()
	if req.Start != nil {
		start = *req.Start
	}
	if req.End != nil && *req.End <= start {
		return 0, fmt.Errorf("%w: %d <= %d", ErrInvalidOfferingWindow, *req.End, start)
	}
	if err := s.portfolio.Lock(c, req.OfferingPortfolio, req.OfferingAsset, total); err != nil {
		return 0, err
	}

	last, err := state.LoadOr(c.Store(), counterKey(req.OfferingAsset), types.FundraiserId(0))
	if err != nil {
		return 0, err
	}
	id := last + 1
	if err := state.Save(c.Store(), counterKey(req.OfferingAsset), id); err != nil {
		return 0, err
	}

	tiers := make([]types.FundraiserTier, len(req.Tiers))
	for i, t := range req.Tiers {
		tiers[i] = types.FundraiserTier{Total: t.Total, Price: t.Price, Remaining: t.Total}
	}
	f := types.Fundraiser{
		Id:                id,
		Name:              req.Name,
		Creator:           did,
		OfferingPortfolio: req.OfferingPortfolio,
		OfferingAsset:     req.OfferingAsset,
		RaisingPortfolio:  req.RaisingPortfolio,
		RaisingAsset:      req.RaisingAsset,
		Tiers:             tiers,
		VenueId:           req.Venue,
		Start:             start,
		End:               req.End,
		Status:            types.FundraiserLive,
		MinimumInvestment: req.MinimumInvestment,
	}
	if err := s.save(c, f); err != nil {
		return 0, err
	}
	c.Deposit(moduleName, "FundraiserCreated", FundraiserCreated{
		Asset:      req.OfferingAsset,
		Id:         id,
		Creator:    did,
		Name:       req.Name,
		Fundraiser: f,
	})
	if s.logger != nil {
		s.logger.Infof("创建募资 asset=%s id=%d total=%s", req.OfferingAsset, id, total)
	}
	return id, nil
}

// ensureLive 募资处于进行中且在时间窗口内
func ensureLive(f types.Fundraiser, now types.Moment) error {
	switch {
	case f.Status.IsClosed():
		return fmt.Errorf("%w: %s", ErrFundraiserClosed, f.Status)
	case f.Status == types.FundraiserFrozen:
		return fmt.Errorf("%w: 已冻结", ErrFundraiserNotLive)
	case now < f.Start:
		return fmt.Errorf("%w: 尚未开始", ErrFundraiserNotLive)
	case f.End != nil && now >= *f.End:
		return ErrFundraiserExpired
	}
	return nil
}

// fill 从 minTier 开始按档位顺序消耗，返回成交量、募集额与更新后的档位
func fill(tiers []types.FundraiserTier, amount types.Balance, maxPrice *types.Balance, minTier int) (types.Balance, types.Balance, []types.FundraiserTier, error) {
	next := slices.Clone(tiers)
	left, raised := amount, types.ZeroBalance
	for i := minTier; i < len(next) && !left.IsZero(); i++ {
		tier := &next[i]
		if tier.Remaining.IsZero() {
			continue
		}
		if maxPrice != nil && tier.Price.Gt(*maxPrice) {
			return types.ZeroBalance, types.ZeroBalance, nil, fmt.Errorf("%w: 档位 %d 价格 %s > %s", ErrMaxPriceExceeded, i, tier.Price, *maxPrice)
		}
		take := left.Min(tier.Remaining)
		cost, err := take.CheckedMul(tier.Price)
		if err != nil {
			return types.ZeroBalance, types.ZeroBalance, nil, err
		}
		if raised, err = raised.CheckedAdd(cost); err != nil {
			return types.ZeroBalance, types.ZeroBalance, nil, err
		}
		tier.Remaining = tier.Remaining.SaturatingSub(take)
		left = left.SaturatingSub(take)
	}
	return amount.SaturatingSub(left), raised, next, nil
}

// Invest 调用身份认购，售罄前按可成交量部分成交
func (s *Service) Invest(c *runtime.Context, req stoIface.InvestRequest) (stoIface.InvestResult, error) {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return stoIface.InvestResult{}, err
	}
	f, err := s.Fundraiser(c, req.OfferingAsset, req.Fundraiser)
	if err != nil {
		return stoIface.InvestResult{}, err
	}
	if err := ensureLive(f, c.Now()); err != nil {
		return stoIface.InvestResult{}, err
	}
	for _, p := range []types.PortfolioId{req.InvestorOffering, req.InvestorRaising} {
		if err := s.portfolio.EnsureCustody(c, p, did); err != nil {
			return stoIface.InvestResult{}, err
		}
	}
	minTier := 0
	if req.MinTier != nil {
		minTier = *req.MinTier
	}
	if minTier < 0 || minTier >= len(f.Tiers) {
		return stoIface.InvestResult{}, fmt.Errorf("%w: 起始档位 %d", ErrInvalidPriceTiers, minTier)
	}

	filled, raised, tiers, err := fill(f.Tiers, req.PurchaseAmount, req.MaxPrice, minTier)
	if err != nil {
		return stoIface.InvestResult{}, err
	}
	if filled.IsZero() {
		return stoIface.InvestResult{}, fmt.Errorf("%w: 无剩余额度", ErrFundraiserClosed)
	}
	if raised.Lt(f.MinimumInvestment) {
		return stoIface.InvestResult{}, fmt.Errorf("%w: %s < %s", ErrInvestmentAmountTooLow, raised, f.MinimumInvestment)
	}

	id, err := s.settle(c, f, did, req, filled, raised)
	if err != nil {
		return stoIface.InvestResult{}, err
	}

	f.Tiers = tiers
	remaining, err := f.Remaining()
	if err != nil {
		return stoIface.InvestResult{}, err
	}
	if remaining.IsZero() {
		f.Status = types.FundraiserClosed
	}
	if err := s.save(c, f); err != nil {
		return stoIface.InvestResult{}, err
	}
	c.Deposit(moduleName, "Invested", Invested{
		Asset:        f.OfferingAsset,
		Id:           f.Id,
		Investor:     did,
		RaisingAsset: f.RaisingAsset,
		Instruction:  id,
		Requested:    req.PurchaseAmount,
		Filled:       filled,
		Raised:       raised,
	})
	return stoIface.InvestResult{Instruction: id, Filled: filled, Raised: raised}, nil
}

// settle 创建两腿指令，先确认发行方一侧再确认认购方一侧
//
// 成交量先从募资锁定中释放，由指令重新锁定；募集额为零时不产生募集腿。
func (s *Service) settle(c *runtime.Context, f types.Fundraiser, investor types.IdentityId, req stoIface.InvestRequest, filled, raised types.Balance) (types.InstructionId, error) {
	if err := s.portfolio.Unlock(c, f.OfferingPortfolio, f.OfferingAsset, filled); err != nil {
		return 0, err
	}
	legs := []types.Leg{{From: f.OfferingPortfolio, To: req.InvestorOffering, Asset: f.OfferingAsset, Amount: filled}}
	issuerSide := []types.PortfolioId{f.OfferingPortfolio}
	investorSide := []types.PortfolioId{req.InvestorOffering}
	if !raised.IsZero() {
		legs = append(legs, types.Leg{From: req.InvestorRaising, To: f.RaisingPortfolio, Asset: f.RaisingAsset, Amount: raised})
		issuerSide = append(issuerSide, f.RaisingPortfolio)
		investorSide = append(investorSide, req.InvestorRaising)
	}

	id, err := s.settlement.AddInstructionFor(c, f.Creator, settlement.InstructionRequest{
		Venue:          f.VenueId,
		SettlementType: types.OnAffirmation(),
		Legs:           legs,
		Memo:           f.Name,
	})
	if err != nil {
		return 0, err
	}
	if err := s.settlement.AffirmFor(c, f.Creator, id, issuerSide); err != nil {
		return 0, err
	}
	if err := s.settlement.AffirmFor(c, investor, id, investorSide); err != nil {
		return 0, err
	}
	inst, err := s.settlement.Instruction(c, id)
	if err != nil {
		return 0, err
	}
	if inst.Status != types.InstructionExecuted {
		return 0, fmt.Errorf("%w: 指令 %d 为 %s", ErrSettlementFailed, id, inst.Status)
	}
	return id, nil
}

// managed 读取募资并要求调用身份是发售资产代理
func (s *Service) managed(c *runtime.Context, asset types.Ticker, id types.FundraiserId) (types.Fundraiser, error) {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return types.Fundraiser{}, err
	}
	return s.Fundraiser(c, asset, id)
}

// FreezeFundraiser 暂停认购
func (s *Service) FreezeFundraiser(c *runtime.Context, asset types.Ticker, id types.FundraiserId) error {
	f, err := s.managed(c, asset, id)
	if err != nil {
		return err
	}
	if f.Status.IsClosed() {
		return ErrFundraiserClosed
	}
	if f.Status == types.FundraiserFrozen {
		return fmt.Errorf("%w: 已冻结", ErrFundraiserNotLive)
	}
	f.Status = types.FundraiserFrozen
	if err := s.save(c, f); err != nil {
		return err
	}
	c.Deposit(moduleName, "FundraiserFrozen", FundraiserFrozen{Asset: asset, Id: id})
	return nil
}

// UnfreezeFundraiser 恢复认购
func (s *Service) UnfreezeFundraiser(c *runtime.Context, asset types.Ticker, id types.FundraiserId) error {
	f, err := s.managed(c, asset, id)
	if err != nil {
		return err
	}
	if f.Status.IsClosed() {
		return ErrFundraiserClosed
	}
	if f.Status != types.FundraiserFrozen {
		return ErrFundraiserNotFrozen
	}
	f.Status = types.FundraiserLive
	if err := s.save(c, f); err != nil {
		return err
	}
	c.Deposit(moduleName, "FundraiserUnfrozen", FundraiserUnfrozen{Asset: asset, Id: id})
	return nil
}

// ModifyFundraiserWindow 修改时间窗口，已过期的募资不能修改
func (s *Service) ModifyFundraiserWindow(c *runtime.Context, asset types.Ticker, id types.FundraiserId, start types.Moment, end *types.Moment) error {
	f, err := s.managed(c, asset, id)
	if err != nil {
		return err
	}
	if f.Status.IsClosed() {
		return ErrFundraiserClosed
	}
	if f.End != nil && c.Now() >= *f.End {
		return ErrFundraiserExpired
	}
	if end != nil && *end <= start {
		return fmt.Errorf("%w: %d <= %d", ErrInvalidOfferingWindow, *end, start)
	}
	f.Start, f.End = start, end
	if err := s.save(c, f); err != nil {
		return err
	}
	c.Deposit(moduleName, "FundraiserWindowModified", FundraiserWindowModified{Asset: asset, Id: id, Start: start, End: end})
	return nil
}

// Stop 创建者或资产代理提前结束募资，释放未售出的锁定
func (s *Service) Stop(c *runtime.Context, asset types.Ticker, id types.FundraiserId) error {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return err
	}
	f, err := s.Fundraiser(c, asset, id)
	if err != nil {
		return err
	}
	if did != f.Creator && !s.agents.IsAgent(c, asset, did) {
		return ErrUnauthorized
	}
	if f.Status.IsClosed() {
		return ErrFundraiserClosed
	}

	remaining, err := f.Remaining()
	if err != nil {
		return err
	}
	if !remaining.IsZero() {
		if err := s.portfolio.Unlock(c, f.OfferingPortfolio, f.OfferingAsset, remaining); err != nil {
			return err
		}
	}
	f.Status = types.FundraiserClosedEarly
	if err := s.save(c, f); err != nil {
		return err
	}
	c.Deposit(moduleName, "FundraiserClosed", FundraiserClosed{Asset: asset, Id: id, Status: f.Status, Released: remaining})
	return nil
}
