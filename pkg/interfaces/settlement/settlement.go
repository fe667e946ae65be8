// Package settlement 结算状态机接口
package settlement

import (
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/types"
)

// InstructionRequest 创建指令的参数
type InstructionRequest struct {
	Venue          types.VenueId
	SettlementType types.SettlementType
	TradeDate      *types.Moment
	ValueDate      *types.Moment
	Legs           []types.Leg
	Memo           string
}

// Service 结算服务
//
// 指令状态只能从 Pending 迁移到 Executed / Rejected / Failed。
// 执行失败不作为错误返回：状态记为 Failed 并发出 InstructionFailed。
type Service interface {
	CreateVenue(c *runtime.Context, details string, signers []types.AccountId, venueType types.VenueType) (types.VenueId, error)
	UpdateVenueDetails(c *runtime.Context, id types.VenueId, details string) error
	UpdateVenueType(c *runtime.Context, id types.VenueId, venueType types.VenueType) error
	UpdateVenueSigners(c *runtime.Context, id types.VenueId, signers []types.AccountId, add bool) error
	Venue(c *runtime.Context, id types.VenueId) (types.Venue, error)

	SetVenueFiltering(c *runtime.Context, asset types.Ticker, enabled bool) error
	AllowVenues(c *runtime.Context, asset types.Ticker, venues []types.VenueId) error
	DisallowVenues(c *runtime.Context, asset types.Ticker, venues []types.VenueId) error

	AddInstruction(c *runtime.Context, req InstructionRequest) (types.InstructionId, error)
	AddAndAffirmInstruction(c *runtime.Context, req InstructionRequest, portfolios []types.PortfolioId) (types.InstructionId, error)
	AffirmInstruction(c *runtime.Context, id types.InstructionId, portfolios []types.PortfolioId) error
	WithdrawAffirmation(c *runtime.Context, id types.InstructionId, portfolios []types.PortfolioId) error
	RejectInstruction(c *runtime.Context, id types.InstructionId, portfolio types.PortfolioId) error
	ExecuteScheduledInstruction(c *runtime.Context, id types.InstructionId) error
	ExecuteManualInstruction(c *runtime.Context, id types.InstructionId) error

	// AddInstructionFor 以指定身份作为场所创建者创建指令，只供募资模块使用
	AddInstructionFor(c *runtime.Context, creator types.IdentityId, req InstructionRequest) (types.InstructionId, error)
	// AffirmFor 以指定身份确认组合，只供募资模块使用
	AffirmFor(c *runtime.Context, did types.IdentityId, id types.InstructionId, portfolios []types.PortfolioId) error

	Instruction(c *runtime.Context, id types.InstructionId) (types.Instruction, error)
	Legs(c *runtime.Context, id types.InstructionId) ([]types.Leg, error)
	AffirmStatus(c *runtime.Context, id types.InstructionId, portfolio types.PortfolioId) types.AffirmationStatus
}
