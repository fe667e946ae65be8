package compliance

import "github.com/polymesh/engine/pkg/types"

var (
	// ErrComplianceRequirementTooComplex 需求复杂度超出上限
	ErrComplianceRequirementTooComplex = types.NewKindError(types.KindResource, "合规需求过于复杂")
	// ErrDuplicateComplianceRequirements 已存在相同条件的需求
	ErrDuplicateComplianceRequirements = types.NewKindError(types.KindValidation, "合规需求重复")
	// ErrRequirementNotFound 需求不存在
	ErrRequirementNotFound = types.NewKindError(types.KindNotFound, "合规需求不存在")
	// ErrTooManyRequirements 需求数量超出上限
	ErrTooManyRequirements = types.NewKindError(types.KindResource, "合规需求数量超出上限")
	// ErrIncorrectOperationOnTrustedIssuer 重复添加或移除不存在的可信发行方
	ErrIncorrectOperationOnTrustedIssuer = types.NewKindError(types.KindState, "可信发行方操作无效")
	// ErrMaxDefaultTrustedIssuersReached 默认可信发行方数量超出上限
	ErrMaxDefaultTrustedIssuersReached = types.NewKindError(types.KindResource, "默认可信发行方数量超出上限")
	// ErrTooManyConditionIssuers 单个条件的发行方数量超出上限
	ErrTooManyConditionIssuers = types.NewKindError(types.KindResource, "条件发行方数量超出上限")
	// ErrInvalidCondition 条件缺少必要字段
	ErrInvalidCondition = types.NewKindError(types.KindValidation, "条件不合法")
	// ErrInvalidIssuer 发行方不是已注册身份
	ErrInvalidIssuer = types.NewKindError(types.KindNotFound, "发行方身份不存在")
	// ErrAlreadyPaused 合规已暂停
	ErrAlreadyPaused = types.NewKindError(types.KindState, "合规已暂停")
	// ErrNotPaused 合规未暂停
	ErrNotPaused = types.NewKindError(types.KindState, "合规未暂停")
)
