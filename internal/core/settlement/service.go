// Package settlement 结算状态机
//
// 场所创建者在场所下创建由若干腿组成的指令，创建时锁定每条腿发送组合的金额。
// 全部参与组合确认后按结算方式执行：先逐腿检查合规，再在保存点内逐腿划转，
// 任一腿失败则整条指令回滚，锁定释放，状态记为 Failed。
package settlement

import (
	"fmt"
	"slices"

	settlementconfig "github.com/polymesh/engine/internal/config/settlement"
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/internal/core/state"
	"github.com/polymesh/engine/pkg/interfaces/agents"
	"github.com/polymesh/engine/pkg/interfaces/asset"
	"github.com/polymesh/engine/pkg/interfaces/compliance"
	"github.com/polymesh/engine/pkg/interfaces/identity"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/interfaces/portfolio"
	settlementIface "github.com/polymesh/engine/pkg/interfaces/settlement"
	"github.com/polymesh/engine/pkg/interfaces/statistics"
	"github.com/polymesh/engine/pkg/types"
)

var (
	_ settlementIface.Service = (*Service)(nil)
	_ runtime.BlockHook       = (*Service)(nil)
)

// 场所事件
type (
	VenueCreated struct {
		Id      types.VenueId    `json:"id"`
		Creator types.IdentityId `json:"creator"`
		Details string           `json:"details"`
		Type    types.VenueType  `json:"type"`
	}
	VenueDetailsUpdated struct {
		Id      types.VenueId `json:"id"`
		Details string        `json:"details"`
	}
	VenueTypeUpdated struct {
		Id   types.VenueId   `json:"id"`
		Type types.VenueType `json:"type"`
	}
	VenueSignersUpdated struct {
		Id      types.VenueId     `json:"id"`
		Signers []types.AccountId `json:"signers"`
		Added   bool              `json:"added"`
	}
	VenueFiltering struct {
		Asset   types.Ticker `json:"asset"`
		Enabled bool         `json:"enabled"`
	}
	VenuesAllowed struct {
		Asset  types.Ticker    `json:"asset"`
		Venues []types.VenueId `json:"venues"`
	}
	VenuesBlocked struct {
		Asset  types.Ticker    `json:"asset"`
		Venues []types.VenueId `json:"venues"`
	}
)

// Service 结算服务实现
type Service struct {
	identity   identity.Service
	agents     agents.Service
	portfolio  portfolio.Service
	assets     asset.Service
	compliance compliance.Service
	statistics statistics.Service
	options    *settlementconfig.SettlementOptions
	logger     log.Logger
}

// Dependencies 结算服务依赖
type Dependencies struct {
	Identity   identity.Service
	Agents     agents.Service
	Portfolio  portfolio.Service
	Assets     asset.Service
	Compliance compliance.Service
	Statistics statistics.Service
}

// NewService 创建结算服务，options 为 nil 时使用默认配置
func NewService(deps Dependencies, options *settlementconfig.SettlementOptions, logger log.Logger) *Service {
	if options == nil {
		options = settlementconfig.New(nil).GetOptions()
	}
	return &Service{
		identity:   deps.Identity,
		agents:     deps.Agents,
		portfolio:  deps.Portfolio,
		assets:     deps.Assets,
		compliance: deps.Compliance,
		statistics: deps.Statistics,
		options:    options,
		logger:     logger,
	}
}

// Venue 读取场所
func (s *Service) Venue(c *runtime.Context, id types.VenueId) (types.Venue, error) {
	v, ok, err := state.Load[types.Venue](c.Store(), venueKey(id))
	if err != nil {
		return types.Venue{}, err
	}
	if !ok {
		return types.Venue{}, fmt.Errorf("%w: %d", ErrInvalidVenue, id)
	}
	return v, nil
}

// CreateVenue 创建场所，调用身份成为创建者
func (s *Service) CreateVenue(c *runtime.Context, details string, signers []types.AccountId, venueType types.VenueType) (types.VenueId, error) {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return 0, err
	}
	signers = dedupe(signers)
	if len(signers) > s.options.MaxVenueSigners {
		return 0, fmt.Errorf("%w: %d > %d", ErrMaxVenueSignersExceeded, len(signers), s.options.MaxVenueSigners)
	}

	counterKey := state.Key(venueCounterPrefix)
	last, err := state.LoadOr(c.Store(), counterKey, types.VenueId(0))
	if err != nil {
		return 0, err
	}
	id := last + 1
	venue := types.Venue{Creator: did, VenueType: venueType, Details: details, Signers: signers}
	if err := state.Save(c.Store(), venueKey(id), venue); err != nil {
		return 0, err
	}
	if err := state.Save(c.Store(), counterKey, id); err != nil {
		return 0, err
	}
	c.Deposit(moduleName, "VenueCreated", VenueCreated{Id: id, Creator: did, Details: details, Type: venueType})
	return id, nil
}

// ownedVenue 读取场所并要求调用身份是创建者
func (s *Service) ownedVenue(c *runtime.Context, id types.VenueId) (types.Venue, error) {
	did, err := s.identity.EnsureCaller(c)
	if err != nil {
		return types.Venue{}, err
	}
	venue, err := s.Venue(c, id)
	if err != nil {
		return types.Venue{}, err
	}
	if venue.Creator != did {
		return types.Venue{}, ErrUnauthorized
	}
	return venue, nil
}

// UpdateVenueDetails 修改场所说明
func (s *Service) UpdateVenueDetails(c *runtime.Context, id types.VenueId, details string) error {
	venue, err := s.ownedVenue(c, id)
	if err != nil {
		return err
	}
	venue.Details = details
	if err := state.Save(c.Store(), venueKey(id), venue); err != nil {
		return err
	}
	c.Deposit(moduleName, "VenueDetailsUpdated", VenueDetailsUpdated{Id: id, Details: details})
	return nil
}

// UpdateVenueType 修改场所类别
func (s *Service) UpdateVenueType(c *runtime.Context, id types.VenueId, venueType types.VenueType) error {
	venue, err := s.ownedVenue(c, id)
	if err != nil {
		return err
	}
	venue.VenueType = venueType
	if err := state.Save(c.Store(), venueKey(id), venue); err != nil {
		return err
	}
	c.Deposit(moduleName, "VenueTypeUpdated", VenueTypeUpdated{Id: id, Type: venueType})
	return nil
}

// UpdateVenueSigners 增加或移除场所签名者
func (s *Service) UpdateVenueSigners(c *runtime.Context, id types.VenueId, signers []types.AccountId, add bool) error {
	venue, err := s.ownedVenue(c, id)
	if err != nil {
		return err
	}
	signers = dedupe(signers)
	for _, signer := range signers {
		exists := slices.Contains(venue.Signers, signer)
		switch {
		case add && exists:
			return fmt.Errorf("%w: %s", ErrSignerAlreadyExists, signer)
		case !add && !exists:
			return fmt.Errorf("%w: %s", ErrSignerDoesNotExist, signer)
		}
	}
	if add {
		if len(venue.Signers)+len(signers) > s.options.MaxVenueSigners {
			return fmt.Errorf("%w: %d", ErrMaxVenueSignersExceeded, s.options.MaxVenueSigners)
		}
		venue.Signers = append(venue.Signers, signers...)
	} else {
		venue.Signers = slices.DeleteFunc(venue.Signers, func(a types.AccountId) bool { return slices.Contains(signers, a) })
	}
	if err := state.Save(c.Store(), venueKey(id), venue); err != nil {
		return err
	}
	c.Deposit(moduleName, "VenueSignersUpdated", VenueSignersUpdated{Id: id, Signers: signers, Added: add})
	return nil
}

// SetVenueFiltering 开启或关闭资产的场所白名单
func (s *Service) SetVenueFiltering(c *runtime.Context, asset types.Ticker, enabled bool) error {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return err
	}
	key := state.KeyOf(venueFilteringPrefix, asset)
	var err error
	if enabled {
		err = state.Save(c.Store(), key, true)
	} else {
		err = state.Remove(c.Store(), key)
	}
	if err != nil {
		return err
	}
	c.Deposit(moduleName, "VenueFiltering", VenueFiltering{Asset: asset, Enabled: enabled})
	return nil
}

// AllowVenues 将场所加入资产白名单
func (s *Service) AllowVenues(c *runtime.Context, asset types.Ticker, venues []types.VenueId) error {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return err
	}
	for _, v := range venues {
		if err := state.Save(c.Store(), allowKey(asset, v), true); err != nil {
			return err
		}
	}
	c.Deposit(moduleName, "VenuesAllowed", VenuesAllowed{Asset: asset, Venues: venues})
	return nil
}

// DisallowVenues 将场所移出资产白名单
func (s *Service) DisallowVenues(c *runtime.Context, asset types.Ticker, venues []types.VenueId) error {
	if _, err := s.agents.EnsureAgent(c, asset); err != nil {
		return err
	}
	for _, v := range venues {
		if err := state.Remove(c.Store(), allowKey(asset, v)); err != nil {
			return err
		}
	}
	c.Deposit(moduleName, "VenuesBlocked", VenuesBlocked{Asset: asset, Venues: venues})
	return nil
}

// venueAllowed 资产未开启过滤，或场所在白名单中
func (s *Service) venueAllowed(c *runtime.Context, asset types.Ticker, venue types.VenueId) (bool, error) {
	filtering, err := state.LoadOr(c.Store(), state.KeyOf(venueFilteringPrefix, asset), false)
	if err != nil || !filtering {
		return !filtering, err
	}
	return state.LoadOr(c.Store(), allowKey(asset, venue), false)
}

func dedupe[T comparable](in []T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func (s *Service) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warnf("%s: %v", msg, err)
	}
}
