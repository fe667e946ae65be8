package statistics

import "github.com/polymesh/engine/pkg/types"

var (
	// ErrStatTypeLimitReached 统计维度数量超出上限
	ErrStatTypeLimitReached = types.NewKindError(types.KindResource, "统计维度数量超出上限")
	// ErrStatTypeMissing 需要的统计维度未启用
	ErrStatTypeMissing = types.NewKindError(types.KindState, "统计维度未启用")
	// ErrTransferConditionLimitReached 转账条件数量超出上限
	ErrTransferConditionLimitReached = types.NewKindError(types.KindResource, "转账条件数量超出上限")
	// ErrUnsupportedStatClaim 该声明类别不支持统计分桶
	ErrUnsupportedStatClaim = types.NewKindError(types.KindValidation, "声明类别不支持统计分桶")
	// ErrInvalidTransferCondition 转账条件参数不合法
	ErrInvalidTransferCondition = types.NewKindError(types.KindValidation, "转账条件参数不合法")
)
