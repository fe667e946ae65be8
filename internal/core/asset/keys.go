package asset

import (
	"github.com/polymesh/engine/internal/core/state"
	"github.com/polymesh/engine/pkg/types"
)

const moduleName = "asset"

var (
	tickersPrefix   = state.Prefix(moduleName, "tickers")
	assetsPrefix    = state.Prefix(moduleName, "tokens")
	balanceOfPrefix = state.Prefix(moduleName, "balance_of")
	frozenPrefix    = state.Prefix(moduleName, "frozen")
)

func tickerKey(t types.Ticker) []byte { return state.KeyOf(tickersPrefix, t) }
func assetKey(t types.Ticker) []byte  { return state.KeyOf(assetsPrefix, t) }
func frozenKey(t types.Ticker) []byte { return state.KeyOf(frozenPrefix, t) }

func balanceOfKey(t types.Ticker, did types.IdentityId) []byte {
	return state.KeyOf(balanceOfPrefix, t, did)
}
