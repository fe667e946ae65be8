package settlement

import "github.com/polymesh/engine/pkg/types"

var (
	// ErrInvalidVenue 场所不存在
	ErrInvalidVenue = types.NewKindError(types.KindNotFound, "场所不存在")
	// ErrUnauthorized 调用身份不是场所创建者
	ErrUnauthorized = types.NewKindError(types.KindAuthorization, "调用身份不是场所创建者")
	// ErrMaxVenueSignersExceeded 场所签名者数量超出上限
	ErrMaxVenueSignersExceeded = types.NewKindError(types.KindResource, "场所签名者数量超出上限")
	// ErrSignerAlreadyExists 签名者已存在
	ErrSignerAlreadyExists = types.NewKindError(types.KindState, "签名者已存在")
	// ErrSignerDoesNotExist 签名者不存在
	ErrSignerDoesNotExist = types.NewKindError(types.KindNotFound, "签名者不存在")
	// ErrUnauthorizedVenue 资产启用了场所过滤且该场所不在白名单
	ErrUnauthorizedVenue = types.NewKindError(types.KindAuthorization, "场所未获资产授权")

	// ErrInstructionNotFound 指令不存在
	ErrInstructionNotFound = types.NewKindError(types.KindNotFound, "指令不存在")
	// ErrNoLegs 指令没有腿
	ErrNoLegs = types.NewKindError(types.KindValidation, "指令没有腿")
	// ErrInstructionHasTooManyLegs 腿数量超出上限
	ErrInstructionHasTooManyLegs = types.NewKindError(types.KindResource, "指令腿数量超出上限")
	// ErrZeroAmount 腿金额为零
	ErrZeroAmount = types.NewKindError(types.KindValidation, "腿金额为零")
	// ErrSameSenderReceiver 腿的发送与接收组合相同
	ErrSameSenderReceiver = types.NewKindError(types.KindValidation, "发送与接收组合相同")
	// ErrInvalidDates 交易日期晚于起息日期
	ErrInvalidDates = types.NewKindError(types.KindValidation, "交易日期晚于起息日期")
	// ErrSettleOnPastBlock 计划执行区块不在未来
	ErrSettleOnPastBlock = types.NewKindError(types.KindValidation, "计划执行区块已过")

	// ErrInstructionNotPending 指令不处于 Pending 状态
	ErrInstructionNotPending = types.NewKindError(types.KindState, "指令不处于待处理状态")
	// ErrPortfolioNotInInstruction 组合不是指令的参与方
	ErrPortfolioNotInInstruction = types.NewKindError(types.KindNotFound, "组合不是指令参与方")
	// ErrUnexpectedAffirmationStatus 组合的确认状态不符合操作要求
	ErrUnexpectedAffirmationStatus = types.NewKindError(types.KindState, "确认状态不符")
	// ErrUnauthorizedCustodian 调用身份既不是组合所有者也不是托管方
	ErrUnauthorizedCustodian = types.NewKindError(types.KindAuthorization, "无权操作该组合")
	// ErrInstructionNotManual 指令不是手动执行类型
	ErrInstructionNotManual = types.NewKindError(types.KindState, "指令不是手动执行类型")
	// ErrInstructionNotScheduled 指令不是按区块执行类型
	ErrInstructionNotScheduled = types.NewKindError(types.KindState, "指令不是按区块执行类型")
	// ErrInstructionSettleBlockNotReached 尚未到达执行区块
	ErrInstructionSettleBlockNotReached = types.NewKindError(types.KindState, "尚未到达执行区块")
	// ErrInstructionNotAffirmed 指令尚未被全部确认
	ErrInstructionNotAffirmed = types.NewKindError(types.KindState, "指令尚未全部确认")
	// ErrCallerIsNotAParty 调用身份既不是场所创建者也不控制任何参与组合
	ErrCallerIsNotAParty = types.NewKindError(types.KindAuthorization, "调用身份不是指令参与方")
)
