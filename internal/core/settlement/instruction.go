package settlement

import (
	"fmt"

	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/core/state"
	settlementIface "github.com/polymesh/engine/pkg/interfaces/settlement"
	"github.com/polymesh/engine/pkg/types"
)

// 指令事件
type (
	InstructionCreated struct {
		Id             types.InstructionId  `json:"id"`
		Venue          types.VenueId        `json:"venue"`
		Creator        types.IdentityId     `json:"creator"`
		SettlementType types.SettlementType `json:"settlement_type"`
		TradeDate      *types.Moment        `json:"trade_date,omitempty"`
		ValueDate      *types.Moment        `json:"value_date,omitempty"`
		Legs           []types.Leg          `json:"legs"`
		Memo           string               `json:"memo,omitempty"`
	}
	InstructionAffirmed struct {
		Id        types.InstructionId `json:"id"`
		Did       types.IdentityId    `json:"did"`
		Portfolio types.PortfolioId   `json:"portfolio"`
	}
	AffirmationWithdrawn struct {
		Id        types.InstructionId `json:"id"`
		Did       types.IdentityId    `json:"did"`
		Portfolio types.PortfolioId   `json:"portfolio"`
	}
	InstructionRejected struct {
		Id  types.InstructionId `json:"id"`
		Did types.IdentityId    `json:"did"`
	}
)

// Instruction 读取指令
func (s *Service) Instruction(c *runtime.Context, id types.InstructionId) (types.Instruction, error) {
	inst, ok, err := state.Load[types.Instruction](c.Store(), instructionKey(id))
	if err != nil {
		return types.Instruction{}, err
	}
	if !ok {
		return types.Instruction{}, fmt.Errorf("%w: %d", ErrInstructionNotFound, id)
	}
	return inst, nil
}

// Legs 指令的全部腿
func (s *Service) Legs(c *runtime.Context, id types.InstructionId) ([]types.Leg, error) {
	return state.LoadOr(c.Store(), legsKey(id), []types.Leg(nil))
}

// AffirmStatus 组合对指令的确认状态，读取失败视为 Unknown
func (s *Service) AffirmStatus(c *runtime.Context, id types.InstructionId, p types.PortfolioId) types.AffirmationStatus {
	st, err := state.LoadOr(c.Store(), affirmKey(id, p), types.AffirmationUnknown)
	if err != nil {
		s.warn("读取确认状态失败", err)
		return types.AffirmationUnknown
	}
	return st
}

func (s *Service) saveInstruction(c *runtime.Context, inst types.Instruction) error {
	return state.Save(c.Store(), instructionKey(inst.Id), inst)
}

// parties 指令涉及的全部组合，按首次出现顺序
func parties(legs []types.Leg) []types.PortfolioId {
	var out []types.PortfolioId
	seen := make(map[types.PortfolioId]struct{}, 2*len(legs))
	for _, leg := range legs {
		for _, p := range []types.PortfolioId{leg.From, leg.To} {
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				out = append(out, p)
			}
		}
	}
	return out
}

func (s *Service) validateRequest(c *runtime.Context, req settlementIface.InstructionRequest) error {
	if len(req.Legs) == 0 {
		return ErrNoLegs
	}
	if len(req.Legs) > s.options.MaxLegsPerInstruction {
		return fmt.Errorf("%w: %d > %d", ErrInstructionHasTooManyLegs, len(req.Legs), s.options.MaxLegsPerInstruction)
	}
	if req.TradeDate != nil && req.ValueDate != nil && *req.TradeDate > *req.ValueDate {
		return ErrInvalidDates
	}
	if req.SettlementType.Kind != types.SettleOnAffirmation && req.SettlementType.Block <= c.Block() {
		return fmt.Errorf("%w: %d <= %d", ErrSettleOnPastBlock, req.SettlementType.Block, c.Block())
	}
	for i, leg := range req.Legs {
		if leg.Amount.IsZero() {
			return fmt.Errorf("%w: 腿 %d", ErrZeroAmount, i)
		}
		if leg.From == leg.To {
			return fmt.Errorf("%w: 腿 %d", ErrSameSenderReceiver, i)
		}
		if err := s.portfolio.EnsurePortfolioValidity(c, leg.From); err != nil {
			return err
		}
		if err := s.portfolio.EnsurePortfolioValidity(c, leg.To); err != nil {
			return err
		}
		allowed, err := s.venueAllowed(c, leg.Asset, req.Venue)
		if err != nil {
			return err
		}
		if !allowed {
			return fmt.Errorf("%w: %s @ %d", ErrUnauthorizedVenue, leg.Asset, req.Venue)
		}
	}
	return nil
}

// AddInstruction 创建指令，调用身份必须是场所创建者
func (s *Service) AddInstruction(c *runtime.Context, req settlementIface.InstructionRequest) (types.InstructionId, error) {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return 0, err
	}
	return s.AddInstructionFor(c, did, req)
}

// AddAndAffirmInstruction 创建指令并立即确认调用身份控制的组合
func (s *Service) AddAndAffirmInstruction(c *runtime.Context, req settlementIface.InstructionRequest, portfolios []types.PortfolioId) (types.InstructionId, error) {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return 0, err
	}
	id, err := s.AddInstructionFor(c, did, req)
	if err != nil {
		return 0, err
	}
	if err := s.AffirmFor(c, did, id, portfolios); err != nil {
		return 0, err
	}
	return id, nil
}

// AddInstructionFor 以 creator 身份创建指令
func (s *Service) AddInstructionFor(c *runtime.Context, creator types.IdentityId, req settlementIface.InstructionRequest) (types.InstructionId, error) {
	venue, err := s.Venue(c, req.Venue)
	if err != nil {
		return 0, err
	}
	if venue.Creator != creator {
		return 0, ErrUnauthorized
	}
	if err := s.validateRequest(c, req); err != nil {
		return 0, err
	}

	for _, leg := range req.Legs {
		if err := s.portfolio.Lock(c, leg.From, leg.Asset, leg.Amount); err != nil {
			return 0, err
		}
	}

	counterKey := state.Key(instructionCounterPrefix)
	last, err := state.LoadOr(c.Store(), counterKey, types.InstructionId(0))
	if err != nil {
		return 0, err
	}
	id := last + 1
	if err := state.Save(c.Store(), counterKey, id); err != nil {
		return 0, err
	}

	involved := parties(req.Legs)
	inst := types.Instruction{
		Id:             id,
		VenueId:        req.Venue,
		Creator:        creator,
		Status:         types.InstructionPending,
		SettlementType: req.SettlementType,
		CreatedAt:      c.Now(),
		TradeDate:      req.TradeDate,
		ValueDate:      req.ValueDate,
		Memo:           req.Memo,
		PendingAffirms: uint64(len(involved)),
	}
	if err := s.saveInstruction(c, inst); err != nil {
		return 0, err
	}
	if err := state.Save(c.Store(), legsKey(id), req.Legs); err != nil {
		return 0, err
	}
	for _, p := range involved {
		if err := state.Save(c.Store(), affirmKey(id, p), types.AffirmationPending); err != nil {
			return 0, err
		}
	}
	if req.SettlementType.Kind == types.SettleOnBlock {
		if err := state.Save(c.Store(), scheduledKey(req.SettlementType.Block, id), id); err != nil {
			return 0, err
		}
	}

	c.Deposit(moduleName, "InstructionCreated", InstructionCreated{
		Id:             id,
		Venue:          req.Venue,
		Creator:        creator,
		SettlementType: req.SettlementType,
		TradeDate:      req.TradeDate,
		ValueDate:      req.ValueDate,
		Legs:           req.Legs,
		Memo:           req.Memo,
	})
	return id, nil
}

// controls did 是组合所有者或当前托管方
func (s *Service) controls(c *runtime.Context, did types.IdentityId, p types.PortfolioId) bool {
	return p.Did == did || s.portfolio.EnsureCustody(c, p, did) == nil
}

func (s *Service) pendingInstruction(c *runtime.Context, id types.InstructionId) (types.Instruction, error) {
	inst, err := s.Instruction(c, id)
	if err != nil {
		return types.Instruction{}, err
	}
	if inst.Status != types.InstructionPending {
		return types.Instruction{}, fmt.Errorf("%w: %d 为 %s", ErrInstructionNotPending, id, inst.Status)
	}
	return inst, nil
}

// AffirmInstruction 调用身份确认其控制的组合
func (s *Service) AffirmInstruction(c *runtime.Context, id types.InstructionId, portfolios []types.PortfolioId) error {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return err
	}
	return s.AffirmFor(c, did, id, portfolios)
}

// AffirmFor 以 did 身份确认组合，全部确认且为 SettleOnAffirmation 时立即执行
func (s *Service) AffirmFor(c *runtime.Context, did types.IdentityId, id types.InstructionId, portfolios []types.PortfolioId) error {
	inst, err := s.pendingInstruction(c, id)
	if err != nil {
		return err
	}
	for _, p := range dedupe(portfolios) {
		if !s.controls(c, did, p) {
			return fmt.Errorf("%w: %s", ErrUnauthorizedCustodian, p)
		}
		switch s.AffirmStatus(c, id, p) {
		case types.AffirmationUnknown:
			return fmt.Errorf("%w: %s", ErrPortfolioNotInInstruction, p)
		case types.AffirmationAffirmed:
			return fmt.Errorf("%w: %s 已确认", ErrUnexpectedAffirmationStatus, p)
		}
		if err := state.Save(c.Store(), affirmKey(id, p), types.AffirmationAffirmed); err != nil {
			return err
		}
		if inst.PendingAffirms > 0 {
			inst.PendingAffirms--
		}
		c.Deposit(moduleName, "InstructionAffirmed", InstructionAffirmed{Id: id, Did: did, Portfolio: p})
	}
	if err := s.saveInstruction(c, inst); err != nil {
		return err
	}

	if inst.PendingAffirms == 0 && inst.SettlementType.Kind == types.SettleOnAffirmation {
		_, err := s.executeInstruction(c, inst)
		return err
	}
	return nil
}

// WithdrawAffirmation 撤回确认，只在 Pending 状态允许
func (s *Service) WithdrawAffirmation(c *runtime.Context, id types.InstructionId, portfolios []types.PortfolioId) error {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return err
	}
	inst, err := s.pendingInstruction(c, id)
	if err != nil {
		return err
	}
	for _, p := range dedupe(portfolios) {
		if !s.controls(c, did, p) {
			return fmt.Errorf("%w: %s", ErrUnauthorizedCustodian, p)
		}
		switch s.AffirmStatus(c, id, p) {
		case types.AffirmationUnknown:
			return fmt.Errorf("%w: %s", ErrPortfolioNotInInstruction, p)
		case types.AffirmationPending:
			return fmt.Errorf("%w: %s 尚未确认", ErrUnexpectedAffirmationStatus, p)
		}
		if err := state.Save(c.Store(), affirmKey(id, p), types.AffirmationPending); err != nil {
			return err
		}
		inst.PendingAffirms++
		c.Deposit(moduleName, "AffirmationWithdrawn", AffirmationWithdrawn{Id: id, Did: did, Portfolio: p})
	}
	return s.saveInstruction(c, inst)
}

// RejectInstruction 参与组合的控制方拒绝指令，释放全部锁定
func (s *Service) RejectInstruction(c *runtime.Context, id types.InstructionId, p types.PortfolioId) error {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return err
	}
	inst, err := s.pendingInstruction(c, id)
	if err != nil {
		return err
	}
	if !s.controls(c, did, p) {
		return fmt.Errorf("%w: %s", ErrUnauthorizedCustodian, p)
	}
	if s.AffirmStatus(c, id, p) == types.AffirmationUnknown {
		return fmt.Errorf("%w: %s", ErrPortfolioNotInInstruction, p)
	}
	if err := s.releaseLocks(c, id); err != nil {
		return err
	}
	if err := s.unschedule(c, inst); err != nil {
		return err
	}
	inst.Status = types.InstructionRejected
	if err := s.saveInstruction(c, inst); err != nil {
		return err
	}
	c.Deposit(moduleName, "InstructionRejected", InstructionRejected{Id: id, Did: did})
	return nil
}

// releaseLocks 释放创建时对全部腿施加的锁定
func (s *Service) releaseLocks(c *runtime.Context, id types.InstructionId) error {
	legs, err := s.Legs(c, id)
	if err != nil {
		return err
	}
	for _, leg := range legs {
		if err := s.portfolio.Unlock(c, leg.From, leg.Asset, leg.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) unschedule(c *runtime.Context, inst types.Instruction) error {
	if inst.SettlementType.Kind != types.SettleOnBlock {
		return nil
	}
	return state.Remove(c.Store(), scheduledKey(inst.SettlementType.Block, inst.Id))
}
