package compliance

import (
	"github.com/polymesh/engine/internal/core/runtime"
	identityIface "github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/types"
)

// evalContext 单次评估共享的资产上下文
type evalContext struct {
	c        *runtime.Context
	asset    types.Ticker
	defaults []types.TrustedIssuer
}

func orNone(did *types.IdentityId) types.IdentityId {
	if did == nil {
		return types.NoIdentity
	}
	return *did
}

// hasClaim 身份是否持有由可信发行方签发、未过期且匹配的声明
func (s *Service) hasClaim(ec *evalContext, did types.IdentityId, want types.Claim, issuers []types.TrustedIssuer) bool {
	if did == types.NoIdentity {
		return false
	}
	if len(issuers) == 0 {
		issuers = ec.defaults
	}
	filter := identityIface.ClaimFilter{CustomId: want.CustomId}
	if want.Type != types.ClaimTypeCustomerDueDiligence {
		scope := want.Scope
		filter.Scope = &scope
	}
	for _, held := range s.identity.FetchClaims(ec.c, did, want.Type, filter) {
		if !want.Matches(held.Claim) {
			continue
		}
		for _, ti := range issuers {
			if ti.Issuer == held.Issuer && ti.IsTrustedFor(want.Type) {
				return true
			}
		}
	}
	return false
}

// evaluate 单个条件对指定身份是否成立
//
// 没有身份时 IsAbsent / IsNoneOf 成立，IsPresent / IsAnyOf 不成立，
// IsIdentity 只在目标为零身份时成立。
func (s *Service) evaluate(ec *evalContext, cond types.Condition, did types.IdentityId) bool {
	ct := cond.ConditionType
	switch ct.Kind {
	case types.ConditionIsPresent:
		return ct.Claim != nil && s.hasClaim(ec, did, *ct.Claim, cond.Issuers)
	case types.ConditionIsAbsent:
		return ct.Claim != nil && !s.hasClaim(ec, did, *ct.Claim, cond.Issuers)
	case types.ConditionIsAnyOf:
		for claim := range cond.Claims() {
			if s.hasClaim(ec, did, claim, cond.Issuers) {
				return true
			}
		}
		return false
	case types.ConditionIsNoneOf:
		for claim := range cond.Claims() {
			if s.hasClaim(ec, did, claim, cond.Issuers) {
				return false
			}
		}
		return true
	case types.ConditionIsIdentity:
		if ct.Target == nil {
			return false
		}
		if ct.Target.ExternalAgent {
			return did != types.NoIdentity && s.agents.IsAgent(ec.c, ec.asset, did)
		}
		return ct.Target.Identity == did
	}
	return false
}

func (s *Service) allHold(ec *evalContext, conds []types.Condition, did types.IdentityId) bool {
	for _, cond := range conds {
		if !s.evaluate(ec, cond, did) {
			return false
		}
	}
	return true
}

func (s *Service) newEvalContext(c *runtime.Context, asset types.Ticker) *evalContext {
	defaults, err := s.TrustedClaimIssuers(c, asset)
	if err != nil {
		s.warn("读取默认可信发行方失败", err)
	}
	return &evalContext{c: c, asset: asset, defaults: defaults}
}

// VerifyRestriction 评估转账是否满足资产合规配置
//
// 存储读取失败时按未通过处理。
func (s *Service) VerifyRestriction(c *runtime.Context, asset types.Ticker, sender, receiver *types.IdentityId) bool {
	passed := s.verify(c, asset, orNone(sender), orNone(receiver))
	if s.recorder != nil {
		s.recorder.ObserveComplianceCheck(passed)
	}
	return passed
}

func (s *Service) verify(c *runtime.Context, asset types.Ticker, sender, receiver types.IdentityId) bool {
	ac, err := s.AssetCompliance(c, asset)
	if err != nil {
		s.warn("读取合规配置失败", err)
		return false
	}
	if ac.Paused {
		return true
	}
	ec := s.newEvalContext(c, asset)
	for _, req := range ac.Requirements {
		if s.allHold(ec, req.SenderConditions, sender) && s.allHold(ec, req.ReceiverConditions, receiver) {
			return true
		}
	}
	return false
}

func (s *Service) report(ec *evalContext, conds []types.Condition, did types.IdentityId) ([]types.ConditionResult, bool) {
	out := make([]types.ConditionResult, 0, len(conds))
	all := true
	for _, cond := range conds {
		ok := s.evaluate(ec, cond, did)
		all = all && ok
		out = append(out, types.ConditionResult{Condition: cond, Result: ok})
	}
	return out, all
}

// ComplianceReport 逐条评估合规需求，暂停时结果为 true 但仍列出每个条件的实际取值
func (s *Service) ComplianceReport(c *runtime.Context, asset types.Ticker, sender, receiver *types.IdentityId) (types.AssetComplianceResult, error) {
	ac, err := s.AssetCompliance(c, asset)
	if err != nil {
		return types.AssetComplianceResult{}, err
	}
	ec := s.newEvalContext(c, asset)
	from, to := orNone(sender), orNone(receiver)

	result := types.AssetComplianceResult{Paused: ac.Paused, Result: ac.Paused}
	for _, req := range ac.Requirements {
		senderResults, senderOk := s.report(ec, req.SenderConditions, from)
		receiverResults, receiverOk := s.report(ec, req.ReceiverConditions, to)
		rr := types.RequirementResult{
			SenderConditions:   senderResults,
			ReceiverConditions: receiverResults,
			Id:                 req.Id,
			Result:             senderOk && receiverOk,
		}
		result.Result = result.Result || rr.Result
		result.Requirements = append(result.Requirements, rr)
	}
	return result, nil
}

func (s *Service) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warnf("%s: %v", msg, err)
	}
}
