package settlement

import (
	"github.com/polymesh/engine/internal/core/state"
	"github.com/polymesh/engine/pkg/types"
)

const moduleName = "settlement"

var (
	venueCounterPrefix       = state.Prefix(moduleName, "venue_counter")
	venueInfoPrefix          = state.Prefix(moduleName, "venue_info")
	venueFilteringPrefix     = state.Prefix(moduleName, "venue_filtering")
	venueAllowListPrefix     = state.Prefix(moduleName, "venue_allow_list")
	instructionCounterPrefix = state.Prefix(moduleName, "instruction_counter")
	instructionsPrefix       = state.Prefix(moduleName, "instruction_details")
	legsPrefix               = state.Prefix(moduleName, "instruction_legs")
	affirmsPrefix            = state.Prefix(moduleName, "affirms_received")
	scheduledPrefix          = state.Prefix(moduleName, "scheduled_instructions")
)

func venueKey(id types.VenueId) []byte {
	return state.Key(venueInfoPrefix, state.U64(uint64(id)))
}

func allowKey(asset types.Ticker, venue types.VenueId) []byte {
	return state.Key(venueAllowListPrefix, asset.KeyBytes(), state.U64(uint64(venue)))
}

func instructionKey(id types.InstructionId) []byte {
	return state.Key(instructionsPrefix, state.U64(uint64(id)))
}

func legsKey(id types.InstructionId) []byte {
	return state.Key(legsPrefix, state.U64(uint64(id)))
}

func affirmKey(id types.InstructionId, p types.PortfolioId) []byte {
	return state.Key(affirmsPrefix, state.U64(uint64(id)), p.KeyBytes())
}

func scheduledBlockPrefix(block types.BlockNumber) []byte {
	return state.Key(scheduledPrefix, state.U64(uint64(block)))
}

func scheduledKey(block types.BlockNumber, id types.InstructionId) []byte {
	return state.Key(scheduledPrefix, state.U64(uint64(block)), state.U64(uint64(id)))
}
