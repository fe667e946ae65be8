package asset

import "github.com/polymesh/engine/pkg/types"

var (
	// ErrNoSuchAsset 资产不存在
	ErrNoSuchAsset = types.NewKindError(types.KindNotFound, "资产不存在")
	// ErrTickerAlreadyRegistered Ticker 已被他人注册
	ErrTickerAlreadyRegistered = types.NewKindError(types.KindState, "Ticker 已被注册")
	// ErrAssetAlreadyCreated 资产已创建
	ErrAssetAlreadyCreated = types.NewKindError(types.KindState, "资产已创建")
	// ErrTickerTooLong Ticker 超过配置的最大长度
	ErrTickerTooLong = types.ErrTickerTooLong
	// ErrEmptyTicker 空 Ticker
	ErrEmptyTicker = types.ErrEmptyTicker

	// ErrAssetFrozen 资产已冻结，禁止转账
	ErrAssetFrozen = types.NewKindError(types.KindState, "资产已冻结")
	// ErrAlreadyFrozen 资产已处于冻结状态
	ErrAlreadyFrozen = types.NewKindError(types.KindState, "资产已处于冻结状态")
	// ErrNotFrozen 资产未冻结
	ErrNotFrozen = types.NewKindError(types.KindState, "资产未冻结")

	// ErrZeroAmount 金额为零
	ErrZeroAmount = types.NewKindError(types.KindValidation, "金额不能为零")
	// ErrInvalidGranularity 不可分割资产的金额不是 ONE_UNIT 的整数倍
	ErrInvalidGranularity = types.NewKindError(types.KindValidation, "金额不符合资产最小单位")
	// ErrTotalSupplyOverflow 发行后总量溢出
	ErrTotalSupplyOverflow = types.NewKindError(types.KindArithmetic, "资产总量溢出")
	// ErrInsufficientBalance 赎回超过持有量
	ErrInsufficientBalance = types.NewKindError(types.KindResource, "持有量不足")
)
