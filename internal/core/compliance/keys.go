package compliance

import (
	"github.com/polymesh/engine/internal/core/state"
	"github.com/polymesh/engine/pkg/types"
)

const moduleName = "compliance"

var (
	assetCompliancePrefix = state.Prefix(moduleName, "asset_compliances")
	nextRequirementPrefix = state.Prefix(moduleName, "next_requirement_id")
	trustedIssuersPrefix  = state.Prefix(moduleName, "trusted_claim_issuer")
)

func complianceKey(asset types.Ticker) []byte {
	return state.KeyOf(assetCompliancePrefix, asset)
}

func nextIdKey(asset types.Ticker) []byte {
	return state.KeyOf(nextRequirementPrefix, asset)
}

func issuersKey(asset types.Ticker) []byte {
	return state.KeyOf(trustedIssuersPrefix, asset)
}
