// Package portfolio 投资组合账本
//
// 每个身份有一个默认组合和任意个编号递增的用户组合。组合可以指定一个托管方，
// 未指定时所有者即托管方。账本只记录 (组合, 资产) 的余额与锁定额。
package portfolio

import (
	"fmt"
	"sort"

	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/core/state"
	"github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	portfolioIface "github.com/polymesh/engine/pkg/interfaces/portfolio"
	"github.com/polymesh/engine/pkg/types"
)

var _ portfolioIface.Service = (*Service)(nil)

// 事件
type (
	PortfolioCreated struct {
		Portfolio types.PortfolioId `json:"portfolio"`
		Name      string            `json:"name"`
	}
	PortfolioDeleted struct {
		Portfolio types.PortfolioId `json:"portfolio"`
	}
	PortfolioRenamed struct {
		Portfolio types.PortfolioId `json:"portfolio"`
		Name      string            `json:"name"`
	}
	PortfolioCustodianChanged struct {
		Portfolio types.PortfolioId `json:"portfolio"`
		Custodian types.IdentityId  `json:"custodian"`
	}
	FundsMovedBetweenPortfolios struct {
		From   types.PortfolioId `json:"from"`
		To     types.PortfolioId `json:"to"`
		Asset  types.Ticker      `json:"asset"`
		Amount types.Balance     `json:"amount"`
		Memo   string            `json:"memo,omitempty"`
	}
)

// Service 组合账本实现
type Service struct {
	identity identity.Service
	logger   log.Logger
}

// NewService 创建组合账本
func NewService(ids identity.Service, logger log.Logger) *Service {
	return &Service{identity: ids, logger: logger}
}

func validateName(name string) error {
	if name == "" {
		return ErrEmptyPortfolioName
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: %d > %d", ErrPortfolioNameTooLong, len(name), maxNameLength)
	}
	return nil
}

func (s *Service) nameInUse(c *runtime.Context, did types.IdentityId, name string) (bool, error) {
	return c.Store().Has(nameKey(did, name))
}

// CreatePortfolio 为调用身份创建用户组合
func (s *Service) CreatePortfolio(c *runtime.Context, name string) (types.PortfolioNumber, error) {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return 0, err
	}
	if err := validateName(name); err != nil {
		return 0, err
	}
	if used, err := s.nameInUse(c, did, name); err != nil {
		return 0, err
	} else if used {
		return 0, ErrPortfolioNameAlreadyInUse
	}

	store := c.Store()
	nextKey := state.Key(nextNumberPrefix, did.KeyBytes())
	number, err := state.LoadOr(store, nextKey, types.PortfolioNumber(1))
	if err != nil {
		return 0, err
	}
	id := types.UserPortfolio(did, number)
	if err := state.Save(store, portfolioKey(did, number), types.PortfolioRecord{Id: id, Name: name}); err != nil {
		return 0, err
	}
	if err := state.Save(store, nameKey(did, name), number); err != nil {
		return 0, err
	}
	if err := state.Save(store, nextKey, number+1); err != nil {
		return 0, err
	}

	c.Deposit(moduleName, "PortfolioCreated", PortfolioCreated{Portfolio: id, Name: name})
	return number, nil
}

func (s *Service) record(c *runtime.Context, did types.IdentityId, n types.PortfolioNumber) (types.PortfolioRecord, error) {
	record, ok, err := state.Load[types.PortfolioRecord](c.Store(), portfolioKey(did, n))
	if err != nil {
		return types.PortfolioRecord{}, err
	}
	if !ok {
		return types.PortfolioRecord{}, ErrPortfolioDoesNotExist
	}
	return record, nil
}

// DeletePortfolio 删除调用身份的空用户组合
func (s *Service) DeletePortfolio(c *runtime.Context, number types.PortfolioNumber) error {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return err
	}
	record, err := s.record(c, did, number)
	if err != nil {
		return err
	}
	id := record.Id

	empty := true
	err = state.Each(c.Store(), state.KeyOf(balancesPrefix, id), func(_ []byte, b types.Balance) error {
		if !b.IsZero() {
			empty = false
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !empty {
		return ErrPortfolioNotEmpty
	}

	if custodian, ok, err := s.storedCustodian(c, id); err != nil {
		return err
	} else if ok {
		if err := s.clearCustodian(c, id, custodian); err != nil {
			return err
		}
	}
	if err := state.Remove(c.Store(), portfolioKey(did, number)); err != nil {
		return err
	}
	if err := state.Remove(c.Store(), nameKey(did, record.Name)); err != nil {
		return err
	}
	c.Deposit(moduleName, "PortfolioDeleted", PortfolioDeleted{Portfolio: id})
	return nil
}

// RenamePortfolio 重命名调用身份的用户组合
func (s *Service) RenamePortfolio(c *runtime.Context, number types.PortfolioNumber, name string) error {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return err
	}
	record, err := s.record(c, did, number)
	if err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	if record.Name == name {
		return nil
	}
	if used, err := s.nameInUse(c, did, name); err != nil {
		return err
	} else if used {
		return ErrPortfolioNameAlreadyInUse
	}

	if err := state.Remove(c.Store(), nameKey(did, record.Name)); err != nil {
		return err
	}
	record.Name = name
	if err := state.Save(c.Store(), portfolioKey(did, number), record); err != nil {
		return err
	}
	if err := state.Save(c.Store(), nameKey(did, name), number); err != nil {
		return err
	}
	c.Deposit(moduleName, "PortfolioRenamed", PortfolioRenamed{Portfolio: record.Id, Name: name})
	return nil
}

// PortfolioName 用户组合名称，默认组合返回空串
func (s *Service) PortfolioName(c *runtime.Context, p types.PortfolioId) (string, error) {
	if p.IsDefault() {
		return "", nil
	}
	record, err := s.record(c, p.Did, p.Kind.Number)
	if err != nil {
		return "", err
	}
	return record.Name, nil
}

// Portfolios 身份的全部用户组合，按编号排序
func (s *Service) Portfolios(c *runtime.Context, did types.IdentityId) ([]types.PortfolioRecord, error) {
	records, err := state.Collect[types.PortfolioRecord](c.Store(), state.Key(portfoliosPrefix, did.KeyBytes()))
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Id.Kind.Number < records[j].Id.Kind.Number })
	return records, nil
}

// EnsurePortfolioValidity 组合是否存在：默认组合要求身份存在，用户组合要求已创建
func (s *Service) EnsurePortfolioValidity(c *runtime.Context, p types.PortfolioId) error {
	if p.IsDefault() {
		if !s.identity.IsIdentity(c, p.Did) {
			return ErrPortfolioDoesNotExist
		}
		return nil
	}
	_, err := s.record(c, p.Did, p.Kind.Number)
	return err
}

// === 托管 ===

func (s *Service) storedCustodian(c *runtime.Context, p types.PortfolioId) (types.IdentityId, bool, error) {
	return state.Load[types.IdentityId](c.Store(), state.KeyOf(custodianPrefix, p))
}

func (s *Service) clearCustodian(c *runtime.Context, p types.PortfolioId, custodian types.IdentityId) error {
	if err := state.Remove(c.Store(), state.KeyOf(custodianPrefix, p)); err != nil {
		return err
	}
	return state.Remove(c.Store(), state.KeyOf(inCustodyPrefix, custodian, p))
}

// Custodian 组合当前托管方，未指定时为所有者
func (s *Service) Custodian(c *runtime.Context, p types.PortfolioId) types.IdentityId {
	custodian, ok, err := s.storedCustodian(c, p)
	if err != nil {
		s.warn("读取托管方失败", err)
		return p.Did
	}
	if !ok {
		return p.Did
	}
	return custodian
}

// EnsureCustody did 是否为组合的托管方
func (s *Service) EnsureCustody(c *runtime.Context, p types.PortfolioId, did types.IdentityId) error {
	if s.Custodian(c, p) != did {
		return ErrUnauthorizedCustodian
	}
	return nil
}

// SetCustodian 所有者为组合指定托管方，指定为自身即收回托管
func (s *Service) SetCustodian(c *runtime.Context, p types.PortfolioId, custodian types.IdentityId) error {
	caller, err := s.identity.EnsureCaller(c)
	if err != nil {
		return err
	}
	if caller != p.Did {
		return ErrNotPortfolioOwner
	}
	if err := s.EnsurePortfolioValidity(c, p); err != nil {
		return err
	}
	if !s.identity.IsIdentity(c, custodian) {
		return fmt.Errorf("%w: 托管方身份不存在", ErrUnauthorizedCustodian)
	}

	if current, ok, err := s.storedCustodian(c, p); err != nil {
		return err
	} else if ok {
		if err := s.clearCustodian(c, p, current); err != nil {
			return err
		}
	}
	if custodian != p.Did {
		if err := state.Save(c.Store(), state.KeyOf(custodianPrefix, p), custodian); err != nil {
			return err
		}
		if err := state.Save(c.Store(), state.KeyOf(inCustodyPrefix, custodian, p), p); err != nil {
			return err
		}
	}
	c.Deposit(moduleName, "PortfolioCustodianChanged", PortfolioCustodianChanged{Portfolio: p, Custodian: custodian})
	return nil
}

// QuitCustody 托管方放弃托管，组合回到所有者手中
func (s *Service) QuitCustody(c *runtime.Context, p types.PortfolioId) error {
	caller, err := s.identity.EnsureCaller(c)
	if err != nil {
		return err
	}
	current, ok, err := s.storedCustodian(c, p)
	if err != nil {
		return err
	}
	if !ok || current != caller {
		return ErrUnauthorizedCustodian
	}
	if err := s.clearCustodian(c, p, current); err != nil {
		return err
	}
	c.Deposit(moduleName, "PortfolioCustodianChanged", PortfolioCustodianChanged{Portfolio: p, Custodian: p.Did})
	return nil
}

// PortfoliosInCustody 由 did 托管的他人组合
func (s *Service) PortfoliosInCustody(c *runtime.Context, did types.IdentityId) ([]types.PortfolioId, error) {
	return state.Collect[types.PortfolioId](c.Store(), state.KeyOf(inCustodyPrefix, did))
}

// === 余额 ===

// Balance 组合总余额（含锁定）
func (s *Service) Balance(c *runtime.Context, p types.PortfolioId, asset types.Ticker) (types.Balance, error) {
	return state.LoadOr(c.Store(), balanceKey(p, asset), types.ZeroBalance)
}

// Locked 组合锁定额
func (s *Service) Locked(c *runtime.Context, p types.PortfolioId, asset types.Ticker) (types.Balance, error) {
	return state.LoadOr(c.Store(), lockedKey(p, asset), types.ZeroBalance)
}

// FreeBalance 可用余额 = 总余额 - 锁定额
func (s *Service) FreeBalance(c *runtime.Context, p types.PortfolioId, asset types.Ticker) (types.Balance, error) {
	balance, err := s.Balance(c, p, asset)
	if err != nil {
		return types.ZeroBalance, err
	}
	locked, err := s.Locked(c, p, asset)
	if err != nil {
		return types.ZeroBalance, err
	}
	return balance.SaturatingSub(locked), nil
}

// EnsureSufficientBalance 可用余额是否不少于 amount
func (s *Service) EnsureSufficientBalance(c *runtime.Context, p types.PortfolioId, asset types.Ticker, amount types.Balance) error {
	free, err := s.FreeBalance(c, p, asset)
	if err != nil {
		return err
	}
	if free.Lt(amount) {
		return fmt.Errorf("%w: %s 可用 %s，需要 %s", ErrInsufficientPortfolioBalance, p, free, amount)
	}
	return nil
}

// Holdings 组合持仓列表
func (s *Service) Holdings(c *runtime.Context, p types.PortfolioId) ([]types.PortfolioHolding, error) {
	var out []types.PortfolioHolding
	err := state.Each(c.Store(), state.KeyOf(balancesPrefix, p), func(key []byte, balance types.Balance) error {
		var asset types.Ticker
		copy(asset[:], key[len(key)-types.TickerLen:])
		locked, err := s.Locked(c, p, asset)
		if err != nil {
			return err
		}
		out = append(out, types.PortfolioHolding{Asset: asset, Balance: balance, Locked: locked})
		return nil
	})
	return out, err
}

func (s *Service) setBalance(c *runtime.Context, p types.PortfolioId, asset types.Ticker, b types.Balance) error {
	if b.IsZero() {
		return state.Remove(c.Store(), balanceKey(p, asset))
	}
	return state.Save(c.Store(), balanceKey(p, asset), b)
}

func (s *Service) setLocked(c *runtime.Context, p types.PortfolioId, asset types.Ticker, b types.Balance) error {
	if b.IsZero() {
		return state.Remove(c.Store(), lockedKey(p, asset))
	}
	return state.Save(c.Store(), lockedKey(p, asset), b)
}

// Lock 锁定可用余额
func (s *Service) Lock(c *runtime.Context, p types.PortfolioId, asset types.Ticker, amount types.Balance) error {
	if err := s.EnsureSufficientBalance(c, p, asset, amount); err != nil {
		return err
	}
	locked, err := s.Locked(c, p, asset)
	if err != nil {
		return err
	}
	next, err := locked.CheckedAdd(amount)
	if err != nil {
		return err
	}
	return s.setLocked(c, p, asset, next)
}

// Unlock 释放锁定额
func (s *Service) Unlock(c *runtime.Context, p types.PortfolioId, asset types.Ticker, amount types.Balance) error {
	locked, err := s.Locked(c, p, asset)
	if err != nil {
		return err
	}
	next, err := locked.CheckedSub(amount)
	if err != nil {
		return fmt.Errorf("%w: %s 锁定 %s，释放 %s", ErrInsufficientTokensLocked, p, locked, amount)
	}
	return s.setLocked(c, p, asset, next)
}

// Credit 增加组合余额（发行、入账）
func (s *Service) Credit(c *runtime.Context, p types.PortfolioId, asset types.Ticker, amount types.Balance) error {
	balance, err := s.Balance(c, p, asset)
	if err != nil {
		return err
	}
	next, err := balance.CheckedAdd(amount)
	if err != nil {
		return err
	}
	return s.setBalance(c, p, asset, next)
}

// Debit 扣减组合可用余额（赎回、出账）
func (s *Service) Debit(c *runtime.Context, p types.PortfolioId, asset types.Ticker, amount types.Balance) error {
	if err := s.EnsureSufficientBalance(c, p, asset, amount); err != nil {
		return err
	}
	balance, err := s.Balance(c, p, asset)
	if err != nil {
		return err
	}
	next, err := balance.CheckedSub(amount)
	if err != nil {
		return err
	}
	return s.setBalance(c, p, asset, next)
}

// Transfer 在两个组合之间划转可用余额
func (s *Service) Transfer(c *runtime.Context, from, to types.PortfolioId, asset types.Ticker, amount types.Balance) error {
	if from == to {
		return ErrDestinationIsSamePortfolio
	}
	if err := s.EnsurePortfolioValidity(c, to); err != nil {
		return err
	}
	if err := s.Debit(c, from, asset, amount); err != nil {
		return err
	}
	return s.Credit(c, to, asset, amount)
}

// MovePortfolioFunds 同一身份的组合之间划转，调用者须托管两个组合，不经过合规检查
func (s *Service) MovePortfolioFunds(c *runtime.Context, from, to types.PortfolioId, items []types.MovePortfolioItem) error {
	caller, err := s.identity.EnsureCaller(c)
	if err != nil {
		return err
	}
	if from.Did != to.Did {
		return ErrDifferentIdentityPortfolios
	}
	if from == to {
		return ErrDestinationIsSamePortfolio
	}
	for _, p := range []types.PortfolioId{from, to} {
		if err := s.EnsurePortfolioValidity(c, p); err != nil {
			return err
		}
		if err := s.EnsureCustody(c, p, caller); err != nil {
			return err
		}
	}

	for _, item := range items {
		if item.Amount.IsZero() {
			return fmt.Errorf("%w: %s", ErrEmptyTransfer, item.Asset)
		}
		if err := s.Transfer(c, from, to, item.Asset, item.Amount); err != nil {
			return err
		}
		c.Deposit(moduleName, "FundsMovedBetweenPortfolios", FundsMovedBetweenPortfolios{
			From:   from,
			To:     to,
			Asset:  item.Asset,
			Amount: item.Amount,
			Memo:   item.Memo,
		})
	}
	return nil
}

func (s *Service) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warnf("%s: %v", msg, err)
	}
}
