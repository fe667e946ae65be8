package sto

import (
	"github.com/polymesh/engine/internal/core/state"
	"github.com/polymesh/engine/pkg/types"
)

const moduleName = "sto"

var (
	fundraiserCountPrefix = state.Prefix(moduleName, "fundraiser_count")
	fundraisersPrefix     = state.Prefix(moduleName, "fundraisers")
)

func counterKey(asset types.Ticker) []byte {
	return state.KeyOf(fundraiserCountPrefix, asset)
}

func assetFundraisersPrefix(asset types.Ticker) []byte {
	return state.KeyOf(fundraisersPrefix, asset)
}

func fundraiserKey(asset types.Ticker, id types.FundraiserId) []byte {
	return state.Key(fundraisersPrefix, asset.KeyBytes(), state.U64(uint64(id)))
}
