// Package asset 资产注册、发行与赎回
//
// 资产层维护按身份汇总的余额（BalanceOf）与总量，组合账本维护按组合的明细；
// 两者只通过本包的发行、赎回与结算转账同步修改。
package asset

import (
	"fmt"

	assetconfig "github.com/polymesh/engine/internal/config/asset"
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/core/state"
	"github.com/polymesh/engine/pkg/interfaces/agents"
	assetIface "github.com/polymesh/engine/pkg/interfaces/asset"
	"github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/interfaces/portfolio"
	"github.com/polymesh/engine/pkg/interfaces/statistics"
	"github.com/polymesh/engine/pkg/types"
)

var _ assetIface.Service = (*Service)(nil)

var oneUnit = types.NewBalance(types.OneUnit)

// 事件
type (
	TickerRegistered struct {
		Ticker types.Ticker     `json:"ticker"`
		Owner  types.IdentityId `json:"owner"`
		Expiry *types.Moment    `json:"expiry,omitempty"`
	}
	AssetCreated struct {
		Ticker    types.Ticker     `json:"ticker"`
		Owner     types.IdentityId `json:"owner"`
		Name      string           `json:"name"`
		Divisible bool             `json:"divisible"`
	}
	Issued struct {
		Ticker      types.Ticker      `json:"ticker"`
		Portfolio   types.PortfolioId `json:"portfolio"`
		Amount      types.Balance     `json:"amount"`
		TotalSupply types.Balance     `json:"total_supply"`
	}
	Redeemed struct {
		Ticker    types.Ticker      `json:"ticker"`
		Portfolio types.PortfolioId `json:"portfolio"`
		Amount    types.Balance     `json:"amount"`
	}
	Transfer struct {
		Ticker types.Ticker      `json:"ticker"`
		From   types.PortfolioId `json:"from"`
		To     types.PortfolioId `json:"to"`
		Amount types.Balance     `json:"amount"`
	}
	AssetFrozen struct {
		Ticker types.Ticker `json:"ticker"`
	}
	AssetUnfrozen struct {
		Ticker types.Ticker `json:"ticker"`
	}
)

// Service 资产服务实现
type Service struct {
	identity   identity.Service
	agents     agents.Service
	portfolio  portfolio.Service
	statistics statistics.Service
	options    *assetconfig.AssetOptions
	logger     log.Logger
}

// NewService 创建资产服务，options 为 nil 时使用默认配置
func NewService(
	ids identity.Service,
	agentSvc agents.Service,
	portfolioSvc portfolio.Service,
	statsSvc statistics.Service,
	options *assetconfig.AssetOptions,
	logger log.Logger,
) *Service {
	if options == nil {
		options = assetconfig.New(nil).GetOptions()
	}
	return &Service{
		identity:   ids,
		agents:     agentSvc,
		portfolio:  portfolioSvc,
		statistics: statsSvc,
		options:    options,
		logger:     logger,
	}
}

func (s *Service) validateTicker(t types.Ticker) error {
	if t.IsZero() {
		return ErrEmptyTicker
	}
	if t.Len() > s.options.MaxTickerLength {
		return fmt.Errorf("%w: %s 超过 %d", ErrTickerTooLong, t, s.options.MaxTickerLength)
	}
	return nil
}

func (s *Service) registration(c *runtime.Context, t types.Ticker) (types.TickerRegistration, bool, error) {
	return state.Load[types.TickerRegistration](c.Store(), tickerKey(t))
}

func (s *Service) assetExists(c *runtime.Context, t types.Ticker) (bool, error) {
	return c.Store().Has(assetKey(t))
}

// ensureAvailable Ticker 是否可由 did 注册：无记录、已过期或已归 did 所有
func (s *Service) ensureAvailable(c *runtime.Context, t types.Ticker, did types.IdentityId) error {
	if exists, err := s.assetExists(c, t); err != nil {
		return err
	} else if exists {
		return ErrAssetAlreadyCreated
	}
	reg, ok, err := s.registration(c, t)
	if err != nil {
		return err
	}
	if ok && reg.Owner != did && !reg.IsExpired(c.Now()) {
		return ErrTickerAlreadyRegistered
	}
	return nil
}

// RegisterTicker 注册 Ticker，过期的他人注册在此时被回收
func (s *Service) RegisterTicker(c *runtime.Context, t types.Ticker) error {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return err
	}
	if err := s.validateTicker(t); err != nil {
		return err
	}
	if err := s.ensureAvailable(c, t, did); err != nil {
		return err
	}

	reg := types.TickerRegistration{Owner: did}
	if s.options.RegistrationLengthMs > 0 {
		reg.Expiry = types.MomentPtr(c.Now() + types.Moment(s.options.RegistrationLengthMs))
	}
	if err := state.Save(c.Store(), tickerKey(t), reg); err != nil {
		return err
	}
	c.Deposit(moduleName, "TickerRegistered", TickerRegistered{Ticker: t, Owner: did, Expiry: reg.Expiry})
	return nil
}

// TickerRegistration 注册记录
func (s *Service) TickerRegistration(c *runtime.Context, t types.Ticker) (types.TickerRegistration, bool, error) {
	return s.registration(c, t)
}

// CreateAsset 创建资产并关联 Ticker，创建者成为所有者和第一个代理
func (s *Service) CreateAsset(c *runtime.Context, t types.Ticker, name string, divisible bool) error {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return err
	}
	if err := s.validateTicker(t); err != nil {
		return err
	}
	if err := s.ensureAvailable(c, t, did); err != nil {
		return err
	}

	// 关联到资产的 Ticker 不再过期
	if err := state.Save(c.Store(), tickerKey(t), types.TickerRegistration{Owner: did}); err != nil {
		return err
	}
	details := types.AssetDetails{
		Ticker:    t,
		Name:      name,
		Owner:     did,
		Divisible: divisible,
		CreatedAt: c.Now(),
	}
	if err := state.Save(c.Store(), assetKey(t), details); err != nil {
		return err
	}
	if err := s.agents.AddInitialAgent(c, t, did); err != nil {
		return err
	}

	c.Deposit(moduleName, "AssetCreated", AssetCreated{Ticker: t, Owner: did, Name: name, Divisible: divisible})
	if s.logger != nil {
		s.logger.Infof("创建资产 ticker=%s owner=%s", t, did.Short())
	}
	return nil
}

// Asset 资产详情
func (s *Service) Asset(c *runtime.Context, t types.Ticker) (types.AssetDetails, error) {
	details, ok, err := state.Load[types.AssetDetails](c.Store(), assetKey(t))
	if err != nil {
		return types.AssetDetails{}, err
	}
	if !ok {
		return types.AssetDetails{}, ErrNoSuchAsset
	}
	return details, nil
}

// TotalSupply 资产总量
func (s *Service) TotalSupply(c *runtime.Context, t types.Ticker) (types.Balance, error) {
	details, err := s.Asset(c, t)
	if err != nil {
		return types.ZeroBalance, err
	}
	return details.TotalSupply, nil
}

// BalanceOf 身份在所有组合中的合计持有量
func (s *Service) BalanceOf(c *runtime.Context, t types.Ticker, did types.IdentityId) (types.Balance, error) {
	return state.LoadOr(c.Store(), balanceOfKey(t, did), types.ZeroBalance)
}

func (s *Service) setBalanceOf(c *runtime.Context, t types.Ticker, did types.IdentityId, b types.Balance) error {
	if b.IsZero() {
		return state.Remove(c.Store(), balanceOfKey(t, did))
	}
	return state.Save(c.Store(), balanceOfKey(t, did), b)
}

func ensureGranularity(details types.AssetDetails, amount types.Balance) error {
	if amount.IsZero() {
		return ErrZeroAmount
	}
	if !details.Divisible && !amount.IsMultipleOf(oneUnit) {
		return fmt.Errorf("%w: %s 不是 %d 的整数倍", ErrInvalidGranularity, amount, types.OneUnit)
	}
	return nil
}

// agentWithCustody 调用者须是资产代理并托管目标组合
func (s *Service) agentWithCustody(c *runtime.Context, t types.Ticker, p types.PortfolioId) (types.AssetDetails, error) {
	did, err := s.agents.EnsureAgent(c, t)
	if err != nil {
		return types.AssetDetails{}, err
	}
	details, err := s.Asset(c, t)
	if err != nil {
		return types.AssetDetails{}, err
	}
	if err := s.portfolio.EnsurePortfolioValidity(c, p); err != nil {
		return types.AssetDetails{}, err
	}
	if err := s.portfolio.EnsureCustody(c, p, did); err != nil {
		return types.AssetDetails{}, err
	}
	return details, nil
}

// Issue 代理向自己托管的组合发行
func (s *Service) Issue(c *runtime.Context, t types.Ticker, amount types.Balance, p types.PortfolioId) error {
	details, err := s.agentWithCustody(c, t, p)
	if err != nil {
		return err
	}
	if err := ensureGranularity(details, amount); err != nil {
		return err
	}
	supply, err := details.TotalSupply.CheckedAdd(amount)
	if err != nil {
		return fmt.Errorf("%w: %s + %s", ErrTotalSupplyOverflow, details.TotalSupply, amount)
	}

	holderBalance, err := s.BalanceOf(c, t, p.Did)
	if err != nil {
		return err
	}
	after, err := holderBalance.CheckedAdd(amount)
	if err != nil {
		return err
	}
	if err := s.portfolio.Credit(c, p, t, amount); err != nil {
		return err
	}
	if err := s.setBalanceOf(c, t, p.Did, after); err != nil {
		return err
	}
	details.TotalSupply = supply
	if err := state.Save(c.Store(), assetKey(t), details); err != nil {
		return err
	}
	receiver := p.Did
	if err := s.statistics.UpdateAssetStats(c, t, statistics.BalanceChange{
		Receiver:             &receiver,
		ReceiverBalanceAfter: &after,
		Amount:               amount,
	}); err != nil {
		return err
	}

	c.Deposit(moduleName, "Issued", Issued{Ticker: t, Portfolio: p, Amount: amount, TotalSupply: supply})
	return nil
}

// Redeem 代理从自己托管的组合赎回可用余额
func (s *Service) Redeem(c *runtime.Context, t types.Ticker, amount types.Balance, p types.PortfolioId) error {
	details, err := s.agentWithCustody(c, t, p)
	if err != nil {
		return err
	}
	if err := ensureGranularity(details, amount); err != nil {
		return err
	}
	holderBalance, err := s.BalanceOf(c, t, p.Did)
	if err != nil {
		return err
	}
	after, err := holderBalance.CheckedSub(amount)
	if err != nil {
		return fmt.Errorf("%w: 持有 %s，赎回 %s", ErrInsufficientBalance, holderBalance, amount)
	}
	if err := s.portfolio.Debit(c, p, t, amount); err != nil {
		return err
	}
	if err := s.setBalanceOf(c, t, p.Did, after); err != nil {
		return err
	}
	details.TotalSupply = details.TotalSupply.SaturatingSub(amount)
	if err := state.Save(c.Store(), assetKey(t), details); err != nil {
		return err
	}
	sender := p.Did
	if err := s.statistics.UpdateAssetStats(c, t, statistics.BalanceChange{
		Sender:             &sender,
		SenderBalanceAfter: &after,
		Amount:             amount,
	}); err != nil {
		return err
	}

	c.Deposit(moduleName, "Redeemed", Redeemed{Ticker: t, Portfolio: p, Amount: amount})
	return nil
}

// IsFrozen 资产是否冻结，读取失败视为冻结
func (s *Service) IsFrozen(c *runtime.Context, t types.Ticker) bool {
	frozen, err := c.Store().Has(frozenKey(t))
	if err != nil {
		if s.logger != nil {
			s.logger.Warnf("读取冻结状态失败: %v", err)
		}
		return true
	}
	return frozen
}

// Freeze 冻结资产
func (s *Service) Freeze(c *runtime.Context, t types.Ticker) error {
	if _, err := s.agents.EnsureAgent(c, t); err != nil {
		return err
	}
	if _, err := s.Asset(c, t); err != nil {
		return err
	}
	if s.IsFrozen(c, t) {
		return ErrAlreadyFrozen
	}
	if err := state.Save(c.Store(), frozenKey(t), true); err != nil {
		return err
	}
	c.Deposit(moduleName, "AssetFrozen", AssetFrozen{Ticker: t})
	return nil
}

// Unfreeze 解冻资产
func (s *Service) Unfreeze(c *runtime.Context, t types.Ticker) error {
	if _, err := s.agents.EnsureAgent(c, t); err != nil {
		return err
	}
	if !s.IsFrozen(c, t) {
		return ErrNotFrozen
	}
	if err := state.Remove(c.Store(), frozenKey(t)); err != nil {
		return err
	}
	c.Deposit(moduleName, "AssetUnfrozen", AssetUnfrozen{Ticker: t})
	return nil
}

// SettlementTransfer 结算腿的实际转账
//
// 不检查合规与转账条件（由结算负责）；不同身份之间转账时同步 BalanceOf 并更新统计。
func (s *Service) SettlementTransfer(c *runtime.Context, from, to types.PortfolioId, t types.Ticker, amount types.Balance) error {
	details, err := s.Asset(c, t)
	if err != nil {
		return err
	}
	if s.IsFrozen(c, t) {
		return ErrAssetFrozen
	}
	if err := ensureGranularity(details, amount); err != nil {
		return err
	}
	if err := s.portfolio.Transfer(c, from, to, t, amount); err != nil {
		return err
	}

	if from.Did != to.Did {
		senderBefore, err := s.BalanceOf(c, t, from.Did)
		if err != nil {
			return err
		}
		senderAfter, err := senderBefore.CheckedSub(amount)
		if err != nil {
			return err
		}
		receiverBefore, err := s.BalanceOf(c, t, to.Did)
		if err != nil {
			return err
		}
		receiverAfter, err := receiverBefore.CheckedAdd(amount)
		if err != nil {
			return err
		}
		if err := s.setBalanceOf(c, t, from.Did, senderAfter); err != nil {
			return err
		}
		if err := s.setBalanceOf(c, t, to.Did, receiverAfter); err != nil {
			return err
		}
		sender, receiver := from.Did, to.Did
		if err := s.statistics.UpdateAssetStats(c, t, statistics.BalanceChange{
			Sender:               &sender,
			Receiver:             &receiver,
			SenderBalanceAfter:   &senderAfter,
			ReceiverBalanceAfter: &receiverAfter,
			Amount:               amount,
		}); err != nil {
			return err
		}
	}

	c.Deposit(moduleName, "Transfer", Transfer{Ticker: t, From: from, To: to, Amount: amount})
	return nil
}
