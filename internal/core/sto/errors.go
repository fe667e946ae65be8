package sto

import "github.com/polymesh/engine/pkg/types"

var (
	// ErrFundraiserNotFound 募资不存在
	ErrFundraiserNotFound = types.NewKindError(types.KindNotFound, "募资不存在")
	// ErrInvalidVenue 场所不存在、不属于调用身份或类型不是 Sto
	ErrInvalidVenue = types.NewKindError(types.KindValidation, "募资场所无效")
	// ErrInvalidPriceTiers 档位为空、超出上限或数量为零
	ErrInvalidPriceTiers = types.NewKindError(types.KindValidation, "价格档位无效")
	// ErrInvalidOfferingWindow 结束时间不晚于开始时间
	ErrInvalidOfferingWindow = types.NewKindError(types.KindValidation, "募资时间窗口无效")
	// ErrUnauthorized 调用身份不是募资创建者或资产代理
	ErrUnauthorized = types.NewKindError(types.KindAuthorization, "无权操作该募资")

	// ErrFundraiserNotLive 募资未开始或已冻结
	ErrFundraiserNotLive = types.NewKindError(types.KindState, "募资未处于进行中")
	// ErrFundraiserNotFrozen 募资未冻结
	ErrFundraiserNotFrozen = types.NewKindError(types.KindState, "募资未冻结")
	// ErrFundraiserExpired 募资已过结束时间
	ErrFundraiserExpired = types.NewKindError(types.KindState, "募资已过期")
	// ErrFundraiserClosed 募资已关闭或已售罄
	ErrFundraiserClosed = types.NewKindError(types.KindState, "募资已关闭")

	// ErrMaxPriceExceeded 成交档位价格高于认购上限
	ErrMaxPriceExceeded = types.NewKindError(types.KindValidation, "档位价格超出认购上限")
	// ErrInvestmentAmountTooLow 募集额低于最低认购
	ErrInvestmentAmountTooLow = types.NewKindError(types.KindValidation, "认购金额低于最低要求")
	// ErrSettlementFailed 认购指令执行失败
	ErrSettlementFailed = types.NewKindError(types.KindState, "认购结算失败")
)
