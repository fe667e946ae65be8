package portfolio

import "github.com/polymesh/engine/pkg/types"

var (
	// ErrPortfolioDoesNotExist 组合不存在
	ErrPortfolioDoesNotExist = types.NewKindError(types.KindNotFound, "组合不存在")
	// ErrPortfolioNameAlreadyInUse 同一身份下组合名已被使用
	ErrPortfolioNameAlreadyInUse = types.NewKindError(types.KindState, "组合名已被使用")
	// ErrEmptyPortfolioName 组合名为空
	ErrEmptyPortfolioName = types.NewKindError(types.KindValidation, "组合名为空")
	// ErrPortfolioNameTooLong 组合名过长
	ErrPortfolioNameTooLong = types.NewKindError(types.KindValidation, "组合名过长")
	// ErrPortfolioNotEmpty 组合仍持有资产
	ErrPortfolioNotEmpty = types.NewKindError(types.KindState, "组合仍持有资产")

	// ErrUnauthorizedCustodian 调用身份不是组合的托管方
	ErrUnauthorizedCustodian = types.NewKindError(types.KindAuthorization, "无权操作该组合")
	// ErrNotPortfolioOwner 调用身份不是组合所有者
	ErrNotPortfolioOwner = types.NewKindError(types.KindAuthorization, "不是组合所有者")

	// ErrInsufficientPortfolioBalance 可用余额不足
	ErrInsufficientPortfolioBalance = types.NewKindError(types.KindResource, "组合可用余额不足")
	// ErrInsufficientTokensLocked 锁定余额不足
	ErrInsufficientTokensLocked = types.NewKindError(types.KindResource, "组合锁定余额不足")

	// ErrDifferentIdentityPortfolios 组合属于不同身份
	ErrDifferentIdentityPortfolios = types.NewKindError(types.KindValidation, "组合属于不同身份")
	// ErrDestinationIsSamePortfolio 源组合与目标组合相同
	ErrDestinationIsSamePortfolio = types.NewKindError(types.KindValidation, "源组合与目标组合相同")
	// ErrEmptyTransfer 划转金额为零
	ErrEmptyTransfer = types.NewKindError(types.KindValidation, "划转金额为零")
)
