// Package compliance 资产合规引擎
//
// 每个资产维护一组合规需求，转账时任一需求的发送方与接收方条件全部成立即放行。
// 条件基于身份声明与可信发行方评估，资产级默认可信发行方在条件未指定发行方时生效。
package compliance

import (
	"fmt"
	"slices"

	complianceconfig "github.com/polymesh/engine/internal/config/compliance"
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/core/state"
	"github.com/polymesh/engine/pkg/interfaces/agents"
	complianceIface "github.com/polymesh/engine/pkg/interfaces/compliance"
	"github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/metrics"
	"github.com/polymesh/engine/pkg/types"
)

var _ complianceIface.Service = (*Service)(nil)

// 事件
type (
	ComplianceRequirementCreated struct {
		Asset       types.Ticker                `json:"asset"`
		Requirement types.ComplianceRequirement `json:"requirement"`
	}
	ComplianceRequirementRemoved struct {
		Asset types.Ticker `json:"asset"`
		Id    uint32       `json:"id"`
	}
	ComplianceRequirementChanged struct {
		Asset       types.Ticker                `json:"asset"`
		Requirement types.ComplianceRequirement `json:"requirement"`
	}
	AssetComplianceReplaced struct {
		Asset        types.Ticker                  `json:"asset"`
		Requirements []types.ComplianceRequirement `json:"requirements"`
	}
	AssetComplianceReset struct {
		Asset types.Ticker `json:"asset"`
	}
	AssetCompliancePaused struct {
		Asset types.Ticker `json:"asset"`
	}
	AssetComplianceResumed struct {
		Asset types.Ticker `json:"asset"`
	}
	TrustedDefaultClaimIssuerAdded struct {
		Asset  types.Ticker        `json:"asset"`
		Issuer types.TrustedIssuer `json:"issuer"`
	}
	TrustedDefaultClaimIssuerRemoved struct {
		Asset  types.Ticker     `json:"asset"`
		Issuer types.IdentityId `json:"issuer"`
	}
)

// Service 合规引擎实现
type Service struct {
	identity identity.Service
	agents   agents.Service
	options  *complianceconfig.ComplianceOptions
	recorder metrics.Recorder
	logger   log.Logger
}

// NewService 创建合规引擎，options 为 nil 时使用默认配置，recorder 可为 nil
func NewService(ids identity.Service, agentSvc agents.Service, options *complianceconfig.ComplianceOptions, recorder metrics.Recorder, logger log.Logger) *Service {
	if options == nil {
		options = complianceconfig.New(nil).GetOptions()
	}
	return &Service{identity: ids, agents: agentSvc, options: options, recorder: recorder, logger: logger}
}

// AssetCompliance 资产合规配置
func (s *Service) AssetCompliance(c *runtime.Context, asset types.Ticker) (types.AssetCompliance, error) {
	return state.LoadOr(c.Store(), complianceKey(asset), types.AssetCompliance{})
}

// TrustedClaimIssuers 资产默认可信发行方
func (s *Service) TrustedClaimIssuers(c *runtime.Context, asset types.Ticker) ([]types.TrustedIssuer, error) {
	return state.LoadOr(c.Store(), issuersKey(asset), []types.TrustedIssuer(nil))
}

func (s *Service) saveCompliance(c *runtime.Context, asset types.Ticker, ac types.AssetCompliance) error {
	if !ac.Paused && len(ac.Requirements) == 0 {
		return state.Remove(c.Store(), complianceKey(asset))
	}
	return state.Save(c.Store(), complianceKey(asset), ac)
}

// nextId 分配需求编号，编号从 1 开始单调递增，删除后不复用
func (s *Service) nextId(c *runtime.Context, asset types.Ticker) (uint32, error) {
	current, err := state.LoadOr(c.Store(), nextIdKey(asset), uint32(0))
	if err != nil {
		return 0, err
	}
	next := current + 1
	if err := state.Save(c.Store(), nextIdKey(asset), next); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Service) validateCondition(c *runtime.Context, cond types.Condition) error {
	ct := cond.ConditionType
	switch ct.Kind {
	case types.ConditionIsPresent, types.ConditionIsAbsent:
		if ct.Claim == nil {
			return fmt.Errorf("%w: %s 缺少声明", ErrInvalidCondition, ct.Kind)
		}
	case types.ConditionIsAnyOf, types.ConditionIsNoneOf:
		if len(ct.Claims) == 0 {
			return fmt.Errorf("%w: %s 声明列表为空", ErrInvalidCondition, ct.Kind)
		}
	case types.ConditionIsIdentity:
		if ct.Target == nil {
			return fmt.Errorf("%w: IsIdentity 缺少目标", ErrInvalidCondition)
		}
	default:
		return fmt.Errorf("%w: 未知类别 %d", ErrInvalidCondition, ct.Kind)
	}
	if len(cond.Issuers) > s.options.MaxTrustedIssuerPerCondition {
		return fmt.Errorf("%w: %d > %d", ErrTooManyConditionIssuers, len(cond.Issuers), s.options.MaxTrustedIssuerPerCondition)
	}
	for _, ti := range cond.Issuers {
		if !s.identity.IsIdentity(c, ti.Issuer) {
			return fmt.Errorf("%w: %s", ErrInvalidIssuer, ti.Issuer.Short())
		}
	}
	return nil
}

// validateRequirement 检查条件合法性与复杂度
func (s *Service) validateRequirement(c *runtime.Context, asset types.Ticker, req types.ComplianceRequirement) error {
	for _, cond := range slices.Concat(req.SenderConditions, req.ReceiverConditions) {
		if err := s.validateCondition(c, cond); err != nil {
			return err
		}
	}
	defaults, err := s.TrustedClaimIssuers(c, asset)
	if err != nil {
		return err
	}
	if complexity := req.Complexity(len(defaults)); complexity > s.options.MaxConditionComplexity {
		return fmt.Errorf("%w: %d > %d", ErrComplianceRequirementTooComplex, complexity, s.options.MaxConditionComplexity)
	}
	return nil
}

// ensureComplexity 默认发行方变化后重新检查全部需求
func (s *Service) ensureComplexity(requirements []types.ComplianceRequirement, defaultIssuers int) error {
	for _, req := range requirements {
		if complexity := req.Complexity(defaultIssuers); complexity > s.options.MaxConditionComplexity {
			return fmt.Errorf("%w: 需求 #%d 复杂度 %d", ErrComplianceRequirementTooComplex, req.Id, complexity)
		}
	}
	return nil
}

// AddComplianceRequirement 添加合规需求，返回新编号
func (s *Service) AddComplianceRequirement(c *runtime.Context, asset types.Ticker, sender, receiver []types.Condition) (uint32, error) {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return 0, err
	}
	req := types.ComplianceRequirement{SenderConditions: sender, ReceiverConditions: receiver}
	if err := s.validateRequirement(c, asset, req); err != nil {
		return 0, err
	}

	ac, err := s.AssetCompliance(c, asset)
	if err != nil {
		return 0, err
	}
	for _, existing := range ac.Requirements {
		if existing.SameConditions(req) {
			return 0, fmt.Errorf("%w: 与 #%d 相同", ErrDuplicateComplianceRequirements, existing.Id)
		}
	}
	if len(ac.Requirements) >= s.options.MaxComplianceRequirementsPerAsset {
		return 0, fmt.Errorf("%w: %d", ErrTooManyRequirements, s.options.MaxComplianceRequirementsPerAsset)
	}

	if req.Id, err = s.nextId(c, asset); err != nil {
		return 0, err
	}
	ac.Requirements = append(ac.Requirements, req)
	if err := s.saveCompliance(c, asset, ac); err != nil {
		return 0, err
	}
	c.Deposit(moduleName, "ComplianceRequirementCreated", ComplianceRequirementCreated{Asset: asset, Requirement: req})
	return req.Id, nil
}

// RemoveComplianceRequirement 按编号移除需求
func (s *Service) RemoveComplianceRequirement(c *runtime.Context, asset types.Ticker, id uint32) error {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return err
	}
	ac, err := s.AssetCompliance(c, asset)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(ac.Requirements, func(r types.ComplianceRequirement) bool { return r.Id == id })
	if idx < 0 {
		return fmt.Errorf("%w: #%d", ErrRequirementNotFound, id)
	}
	ac.Requirements = slices.Delete(ac.Requirements, idx, idx+1)
	if err := s.saveCompliance(c, asset, ac); err != nil {
		return err
	}
	c.Deposit(moduleName, "ComplianceRequirementRemoved", ComplianceRequirementRemoved{Asset: asset, Id: id})
	return nil
}

// ReplaceAssetCompliance 整体替换需求列表，传入的编号被忽略并重新分配
func (s *Service) ReplaceAssetCompliance(c *runtime.Context, asset types.Ticker, requirements []types.ComplianceRequirement) error {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return err
	}
	if len(requirements) > s.options.MaxComplianceRequirementsPerAsset {
		return fmt.Errorf("%w: %d > %d", ErrTooManyRequirements, len(requirements), s.options.MaxComplianceRequirementsPerAsset)
	}
	next := make([]types.ComplianceRequirement, 0, len(requirements))
	for _, req := range requirements {
		if err := s.validateRequirement(c, asset, req); err != nil {
			return err
		}
		for _, prev := range next {
			if prev.SameConditions(req) {
				return ErrDuplicateComplianceRequirements
			}
		}
		next = append(next, req)
	}
	for i := range next {
		id, err := s.nextId(c, asset)
		if err != nil {
			return err
		}
		next[i].Id = id
	}

	ac, err := s.AssetCompliance(c, asset)
	if err != nil {
		return err
	}
	ac.Requirements = next
	if err := s.saveCompliance(c, asset, ac); err != nil {
		return err
	}
	c.Deposit(moduleName, "AssetComplianceReplaced", AssetComplianceReplaced{Asset: asset, Requirements: next})
	return nil
}

// ChangeComplianceRequirement 按编号修改已有需求的条件
func (s *Service) ChangeComplianceRequirement(c *runtime.Context, asset types.Ticker, requirement types.ComplianceRequirement) error {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return err
	}
	if err := s.validateRequirement(c, asset, requirement); err != nil {
		return err
	}
	ac, err := s.AssetCompliance(c, asset)
	if err != nil {
		return err
	}
	idx := -1
	for i, existing := range ac.Requirements {
		if existing.Id == requirement.Id {
			idx = i
			continue
		}
		if existing.SameConditions(requirement) {
			return fmt.Errorf("%w: 与 #%d 相同", ErrDuplicateComplianceRequirements, existing.Id)
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: #%d", ErrRequirementNotFound, requirement.Id)
	}
	ac.Requirements[idx] = requirement
	if err := s.saveCompliance(c, asset, ac); err != nil {
		return err
	}
	c.Deposit(moduleName, "ComplianceRequirementChanged", ComplianceRequirementChanged{Asset: asset, Requirement: requirement})
	return nil
}

// ResetAssetCompliance 清空需求并解除暂停，编号计数器保留
func (s *Service) ResetAssetCompliance(c *runtime.Context, asset types.Ticker) error {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return err
	}
	if err := state.Remove(c.Store(), complianceKey(asset)); err != nil {
		return err
	}
	c.Deposit(moduleName, "AssetComplianceReset", AssetComplianceReset{Asset: asset})
	return nil
}

func (s *Service) setPaused(c *runtime.Context, asset types.Ticker, paused bool) error {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return err
	}
	ac, err := s.AssetCompliance(c, asset)
	if err != nil {
		return err
	}
	switch {
	case paused && ac.Paused:
		return ErrAlreadyPaused
	case !paused && !ac.Paused:
		return ErrNotPaused
	}
	ac.Paused = paused
	return s.saveCompliance(c, asset, ac)
}

// PauseAssetCompliance 暂停合规检查，暂停期间全部转账通过
func (s *Service) PauseAssetCompliance(c *runtime.Context, asset types.Ticker) error {
	if err := s.setPaused(c, asset, true); err != nil {
		return err
	}
	c.Deposit(moduleName, "AssetCompliancePaused", AssetCompliancePaused{Asset: asset})
	return nil
}

// ResumeAssetCompliance 恢复合规检查
func (s *Service) ResumeAssetCompliance(c *runtime.Context, asset types.Ticker) error {
	if err := s.setPaused(c, asset, false); err != nil {
		return err
	}
	c.Deposit(moduleName, "AssetComplianceResumed", AssetComplianceResumed{Asset: asset})
	return nil
}

// AddDefaultTrustedClaimIssuer 添加资产默认可信发行方
func (s *Service) AddDefaultTrustedClaimIssuer(c *runtime.Context, asset types.Ticker, issuer types.TrustedIssuer) error {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return err
	}
	if !s.identity.IsIdentity(c, issuer.Issuer) {
		return fmt.Errorf("%w: %s", ErrInvalidIssuer, issuer.Issuer.Short())
	}
	issuers, err := s.TrustedClaimIssuers(c, asset)
	if err != nil {
		return err
	}
	if slices.ContainsFunc(issuers, func(ti types.TrustedIssuer) bool { return ti.Issuer == issuer.Issuer }) {
		return fmt.Errorf("%w: %s 已存在", ErrIncorrectOperationOnTrustedIssuer, issuer.Issuer.Short())
	}
	if len(issuers) >= s.options.MaxDefaultTrustedIssuers {
		return fmt.Errorf("%w: %d", ErrMaxDefaultTrustedIssuersReached, s.options.MaxDefaultTrustedIssuers)
	}

	ac, err := s.AssetCompliance(c, asset)
	if err != nil {
		return err
	}
	if err := s.ensureComplexity(ac.Requirements, len(issuers)+1); err != nil {
		return err
	}

	issuers = append(issuers, issuer)
	if err := state.Save(c.Store(), issuersKey(asset), issuers); err != nil {
		return err
	}
	c.Deposit(moduleName, "TrustedDefaultClaimIssuerAdded", TrustedDefaultClaimIssuerAdded{Asset: asset, Issuer: issuer})
	return nil
}

// RemoveDefaultTrustedClaimIssuer 移除资产默认可信发行方
func (s *Service) RemoveDefaultTrustedClaimIssuer(c *runtime.Context, asset types.Ticker, issuer types.IdentityId) error {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return err
	}
	issuers, err := s.TrustedClaimIssuers(c, asset)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(issuers, func(ti types.TrustedIssuer) bool { return ti.Issuer == issuer })
	if idx < 0 {
		return fmt.Errorf("%w: %s 不存在", ErrIncorrectOperationOnTrustedIssuer, issuer.Short())
	}
	issuers = slices.Delete(issuers, idx, idx+1)

	key := issuersKey(asset)
	if len(issuers) == 0 {
		err = state.Remove(c.Store(), key)
	} else {
		err = state.Save(c.Store(), key, issuers)
	}
	if err != nil {
		return err
	}
	c.Deposit(moduleName, "TrustedDefaultClaimIssuerRemoved", TrustedDefaultClaimIssuerRemoved{Asset: asset, Issuer: issuer})
	return nil
}
