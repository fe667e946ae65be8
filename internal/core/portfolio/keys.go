package portfolio

import (
	"github.com/polymesh/engine/internal/core/state"
	"github.com/polymesh/engine/pkg/types"
)

const (
	moduleName = "portfolio"

	// maxNameLength 组合名最大字节数
	maxNameLength = 64
)

var (
	portfoliosPrefix   = state.Prefix(moduleName, "portfolios")
	nameToNumberPrefix = state.Prefix(moduleName, "name_to_number")
	nextNumberPrefix   = state.Prefix(moduleName, "next_number")
	balancesPrefix     = state.Prefix(moduleName, "balances")
	lockedPrefix       = state.Prefix(moduleName, "locked")
	custodianPrefix    = state.Prefix(moduleName, "custodian")
	inCustodyPrefix    = state.Prefix(moduleName, "in_custody")
)

func portfolioKey(did types.IdentityId, n types.PortfolioNumber) []byte {
	return state.Key(portfoliosPrefix, did.KeyBytes(), state.U64(uint64(n)))
}

func nameKey(did types.IdentityId, name string) []byte {
	return state.Key(nameToNumberPrefix, did.KeyBytes(), []byte(name))
}

func balanceKey(p types.PortfolioId, asset types.Ticker) []byte {
	return state.KeyOf(balancesPrefix, p, asset)
}

func lockedKey(p types.PortfolioId, asset types.Ticker) []byte {
	return state.KeyOf(lockedPrefix, p, asset)
}
