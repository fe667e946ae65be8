// Package agents 资产外部代理
//
// 资产创建者自动成为第一个代理；之后由现有代理增删，最后一个代理不能被移除。
package agents

import (
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/core/state"
	agentsIface "github.com/polymesh/engine/pkg/interfaces/agents"
	"github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/types"
)

const moduleName = "agents"

var (
	agentsPrefix    = state.Prefix(moduleName, "agent_of")
	numAgentsPrefix = state.Prefix(moduleName, "num_agents")
)

var _ agentsIface.Service = (*Service)(nil)

// AgentRecord 代理记录
type AgentRecord struct {
	Asset   types.Ticker     `json:"asset"`
	Did     types.IdentityId `json:"did"`
	AddedAt types.Moment     `json:"added_at"`
}

// AgentAdded 代理已添加
type AgentAdded struct {
	Asset types.Ticker     `json:"asset"`
	Did   types.IdentityId `json:"did"`
}

// AgentRemoved 代理已移除
type AgentRemoved struct {
	Asset types.Ticker     `json:"asset"`
	Did   types.IdentityId `json:"did"`
}

// Service 代理服务实现
type Service struct {
	identity identity.Service
	logger   log.Logger
}

// NewService 创建代理服务
func NewService(ids identity.Service, logger log.Logger) *Service {
	return &Service{identity: ids, logger: logger}
}

func agentKey(asset types.Ticker, did types.IdentityId) []byte {
	return state.KeyOf(agentsPrefix, asset, did)
}

// AddInitialAgent 资产创建时登记第一个代理，不做权限检查
func (s *Service) AddInitialAgent(c *runtime.Context, asset types.Ticker, did types.IdentityId) error {
	return s.insert(c, asset, did)
}

// AddAgent 现有代理添加新代理
func (s *Service) AddAgent(c *runtime.Context, asset types.Ticker, did types.IdentityId) error {
	if _, err := s.EnsureAgent(c, asset); err != nil {
		return err
	}
	if !s.identity.IsIdentity(c, did) {
		return ErrIdentityNotFound
	}
	return s.insert(c, asset, did)
}

func (s *Service) insert(c *runtime.Context, asset types.Ticker, did types.IdentityId) error {
	if s.IsAgent(c, asset, did) {
		return ErrAlreadyAnAgent
	}
	record := AgentRecord{Asset: asset, Did: did, AddedAt: c.Now()}
	if err := state.Save(c.Store(), agentKey(asset, did), record); err != nil {
		return err
	}
	if err := s.adjustCount(c, asset, 1); err != nil {
		return err
	}
	c.Deposit(moduleName, "AgentAdded", AgentAdded{Asset: asset, Did: did})
	return nil
}

// RemoveAgent 现有代理移除代理（可以是自己）
func (s *Service) RemoveAgent(c *runtime.Context, asset types.Ticker, did types.IdentityId) error {
	if _, err := s.EnsureAgent(c, asset); err != nil {
		return err
	}
	if !s.IsAgent(c, asset, did) {
		return ErrNotAnAgent
	}
	n, err := s.count(c, asset)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrRemovingLastFullAgent
	}
	if err := state.Remove(c.Store(), agentKey(asset, did)); err != nil {
		return err
	}
	if err := s.adjustCount(c, asset, -1); err != nil {
		return err
	}
	c.Deposit(moduleName, "AgentRemoved", AgentRemoved{Asset: asset, Did: did})
	return nil
}

// IsAgent 身份是否为资产代理
func (s *Service) IsAgent(c *runtime.Context, asset types.Ticker, did types.IdentityId) bool {
	if did.IsZero() {
		return false
	}
	ok, err := c.Store().Has(agentKey(asset, did))
	if err != nil {
		if s.logger != nil {
			s.logger.Warnf("读取代理记录失败: %v", err)
		}
		return false
	}
	return ok
}

// EnsureAgent 调用身份必须是资产代理
func (s *Service) EnsureAgent(c *runtime.Context, asset types.Ticker) (types.IdentityId, error) {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return types.NoIdentity, err
	}
	if !s.IsAgent(c, asset, did) {
		return types.NoIdentity, ErrUnauthorizedAgent
	}
	return did, nil
}

// Agents 资产的全部代理
func (s *Service) Agents(c *runtime.Context, asset types.Ticker) ([]types.IdentityId, error) {
	var out []types.IdentityId
	err := state.Each(c.Store(), state.KeyOf(agentsPrefix, asset), func(_ []byte, record AgentRecord) error {
		out = append(out, record.Did)
		return nil
	})
	return out, err
}

func (s *Service) count(c *runtime.Context, asset types.Ticker) (uint32, error) {
	return state.LoadOr(c.Store(), state.KeyOf(numAgentsPrefix, asset), uint32(0))
}

func (s *Service) adjustCount(c *runtime.Context, asset types.Ticker, delta int) error {
	n, err := s.count(c, asset)
	if err != nil {
		return err
	}
	if delta < 0 && n > 0 {
		n--
	} else if delta > 0 {
		n++
	}
	return state.Save(c.Store(), state.KeyOf(numAgentsPrefix, asset), n)
}
