package asset

import "github.com/polymesh/engine/pkg/types"

const (
	defaultMaxTickerLength = types.TickerLen

	// defaultRegistrationLengthMs 60 天
	defaultRegistrationLengthMs = 60 * 24 * 60 * 60 * 1000
)
