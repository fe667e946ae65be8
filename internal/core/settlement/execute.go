package settlement

import (
	"errors"
	"fmt"
	"slices"

	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/core/state"
	statsIface "github.com/polymesh/engine/pkg/interfaces/statistics"
	"github.com/polymesh/engine/pkg/types"
)

// 失败原因
const (
	ReasonCompliance        = "compliance"
	ReasonFrozen            = "asset frozen"
	ReasonTransferCondition = "transfer condition"
	ReasonNotAffirmed       = "not affirmed"
)

// 执行事件
type (
	InstructionExecuted struct {
		Id types.InstructionId `json:"id"`
	}
	InstructionFailed struct {
		Id         types.InstructionId `json:"id"`
		FailedLegs []types.FailedLeg   `json:"failed_legs"`
	}
)

// legFailure 第二阶段中止保存点的腿级失败
type legFailure struct {
	leg types.FailedLeg
}

func (e *legFailure) Error() string {
	return fmt.Sprintf("腿 %d 执行失败: %s", e.leg.Index, e.leg.Reason)
}

func failLeg(index int, reason string) *legFailure {
	return &legFailure{leg: types.FailedLeg{Index: index, Reason: reason}}
}

// executeInstruction 两阶段执行指令，返回是否执行成功
//
// 执行失败不返回错误：状态记为 Failed，锁定全部释放；只有存储错误才会返回 error。
func (s *Service) executeInstruction(c *runtime.Context, inst types.Instruction) (bool, error) {
	legs, err := s.Legs(c, inst.Id)
	if err != nil {
		return false, err
	}

	var failed []types.FailedLeg
	for i, leg := range legs {
		from, to := leg.From.Did, leg.To.Did
		if s.compliance.VerifyRestriction(c, leg.Asset, &from, &to) {
			continue
		}
		fl := types.FailedLeg{Index: i, Reason: ReasonCompliance}
		if report, err := s.compliance.ComplianceReport(c, leg.Asset, &from, &to); err != nil {
			s.warn("生成合规报告失败", err)
		} else {
			fl.Compliance = &report
		}
		failed = append(failed, fl)
	}
	if len(failed) > 0 {
		return false, s.fail(c, inst, failed)
	}

	err = c.WithTransaction(func() error {
		for i, leg := range legs {
			if err := s.transferLeg(c, i, leg); err != nil {
				return err
			}
		}
		return nil
	})
	var lf *legFailure
	if errors.As(err, &lf) {
		return false, s.fail(c, inst, []types.FailedLeg{lf.leg})
	}
	if err != nil {
		return false, err
	}

	if err := s.unschedule(c, inst); err != nil {
		return false, err
	}
	inst.Status = types.InstructionExecuted
	if err := s.saveInstruction(c, inst); err != nil {
		return false, err
	}
	c.Deposit(moduleName, "InstructionExecuted", InstructionExecuted{Id: inst.Id})
	return true, nil
}

// transferLeg 冻结检查、统计限制、解锁并划转单条腿
func (s *Service) transferLeg(c *runtime.Context, index int, leg types.Leg) error {
	if s.assets.IsFrozen(c, leg.Asset) {
		return failLeg(index, ReasonFrozen)
	}

	check, err := s.transferCheck(c, leg)
	if err != nil {
		return failLeg(index, err.Error())
	}
	ok, err := s.statistics.VerifyTransferRestrictions(c, leg.Asset, check)
	if err != nil {
		return failLeg(index, err.Error())
	}
	if !ok {
		lf := failLeg(index, ReasonTransferCondition)
		if report, err := s.statistics.VerifyTransferRestrictionsReport(c, leg.Asset, check); err == nil {
			lf.leg.Transfer = report
		}
		return lf
	}

	if err := s.portfolio.Unlock(c, leg.From, leg.Asset, leg.Amount); err != nil {
		return failLeg(index, err.Error())
	}
	if err := s.assets.SettlementTransfer(c, leg.From, leg.To, leg.Asset, leg.Amount); err != nil {
		return failLeg(index, err.Error())
	}
	return nil
}

func (s *Service) transferCheck(c *runtime.Context, leg types.Leg) (statsIface.TransferCheck, error) {
	senderBefore, err := s.assets.BalanceOf(c, leg.Asset, leg.From.Did)
	if err != nil {
		return statsIface.TransferCheck{}, err
	}
	receiverBefore, err := s.assets.BalanceOf(c, leg.Asset, leg.To.Did)
	if err != nil {
		return statsIface.TransferCheck{}, err
	}
	supply, err := s.assets.TotalSupply(c, leg.Asset)
	if err != nil {
		return statsIface.TransferCheck{}, err
	}
	return statsIface.TransferCheck{
		Sender:                leg.From.Did,
		Receiver:              leg.To.Did,
		SenderBalanceBefore:   senderBefore,
		ReceiverBalanceBefore: receiverBefore,
		Amount:                leg.Amount,
		TotalSupply:           supply,
	}, nil
}

// fail 释放锁定并把指令记为 Failed
func (s *Service) fail(c *runtime.Context, inst types.Instruction, failed []types.FailedLeg) error {
	if err := s.releaseLocks(c, inst.Id); err != nil {
		return err
	}
	if err := s.unschedule(c, inst); err != nil {
		return err
	}
	inst.Status = types.InstructionFailed
	if err := s.saveInstruction(c, inst); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Infof("指令执行失败 id=%d failed_legs=%d", inst.Id, len(failed))
	}
	c.Deposit(moduleName, "InstructionFailed", InstructionFailed{Id: inst.Id, FailedLegs: failed})
	return nil
}

// ExecuteScheduledInstruction 执行到期的按区块结算指令，未全部确认时记为 Failed
func (s *Service) ExecuteScheduledInstruction(c *runtime.Context, id types.InstructionId) error {
	inst, err := s.pendingInstruction(c, id)
	if err != nil {
		return err
	}
	if inst.SettlementType.Kind != types.SettleOnBlock {
		return ErrInstructionNotScheduled
	}
	if c.Block() < inst.SettlementType.Block {
		return fmt.Errorf("%w: %d < %d", ErrInstructionSettleBlockNotReached, c.Block(), inst.SettlementType.Block)
	}
	if inst.PendingAffirms > 0 {
		return s.fail(c, inst, []types.FailedLeg{{Index: -1, Reason: ReasonNotAffirmed}})
	}
	_, err = s.executeInstruction(c, inst)
	return err
}

// ExecuteManualInstruction 场所创建者或参与方在指定区块之后手动执行
func (s *Service) ExecuteManualInstruction(c *runtime.Context, id types.InstructionId) error {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return err
	}
	inst, err := s.pendingInstruction(c, id)
	if err != nil {
		return err
	}
	if inst.SettlementType.Kind != types.SettleManual {
		return ErrInstructionNotManual
	}
	if c.Block() < inst.SettlementType.Block {
		return fmt.Errorf("%w: %d < %d", ErrInstructionSettleBlockNotReached, c.Block(), inst.SettlementType.Block)
	}
	if inst.PendingAffirms > 0 {
		return fmt.Errorf("%w: 还差 %d 个确认", ErrInstructionNotAffirmed, inst.PendingAffirms)
	}
	if did != inst.Creator {
		legs, err := s.Legs(c, id)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(parties(legs), func(p types.PortfolioId) bool { return s.controls(c, did, p) }) {
			return ErrCallerIsNotAParty
		}
	}
	_, err = s.executeInstruction(c, inst)
	return err
}

// Name 区块钩子名称
func (s *Service) Name() string { return moduleName }

// OnInitialize 执行计划在当前区块结算的指令，单条失败不影响其他指令
func (s *Service) OnInitialize(c *runtime.Context, block types.BlockNumber) error {
	var ids []types.InstructionId
	err := state.Each(c.Store(), scheduledBlockPrefix(block), func(_ []byte, id types.InstructionId) error {
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return err
	}
	slices.Sort(ids)

	for _, id := range ids {
		err := c.WithTransaction(func() error { return s.ExecuteScheduledInstruction(c, id) })
		if err != nil {
			s.warn(fmt.Sprintf("计划指令 %d 执行失败", id), err)
			if err := state.Remove(c.Store(), scheduledKey(block, id)); err != nil {
				return err
			}
		}
	}
	return nil
}
