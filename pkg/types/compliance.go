package types

import "fmt"

// ComplianceRequirement 合规需求：发送方与接收方条件全部成立时通过
type ComplianceRequirement struct {
	SenderConditions   []Condition `json:"sender_conditions"`
	ReceiverConditions []Condition `json:"receiver_conditions"`
	Id                 uint32      `json:"id"`
}

// Complexity 需求复杂度
func (r ComplianceRequirement) Complexity(defaultIssuerCount int) uint32 {
	var total uint32
	for _, c := range r.SenderConditions {
		total = SaturatingAddU32(total, c.Complexity(defaultIssuerCount))
	}
	for _, c := range r.ReceiverConditions {
		total = SaturatingAddU32(total, c.Complexity(defaultIssuerCount))
	}
	return total
}

// SameConditions 条件列表是否完全相同（忽略 Id）
func (r ComplianceRequirement) SameConditions(o ComplianceRequirement) bool {
	return conditionsEqual(r.SenderConditions, o.SenderConditions) &&
		conditionsEqual(r.ReceiverConditions, o.ReceiverConditions)
}

func conditionsEqual(a, b []Condition) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// AssetCompliance 资产合规配置：暂停时恒为通过，否则任一需求通过即通过
type AssetCompliance struct {
	Paused       bool                    `json:"paused"`
	Requirements []ComplianceRequirement `json:"requirements"`
}

// ConditionResult 单个条件的评估结果
type ConditionResult struct {
	Condition Condition `json:"condition"`
	Result    bool      `json:"result"`
}

// RequirementResult 单个需求的评估结果
type RequirementResult struct {
	SenderConditions   []ConditionResult `json:"sender_conditions"`
	ReceiverConditions []ConditionResult `json:"receiver_conditions"`
	Id                 uint32            `json:"id"`
	Result             bool              `json:"result"`
}

// AssetComplianceResult 合规报告（不短路，用于诊断）
type AssetComplianceResult struct {
	Paused       bool                `json:"paused"`
	Requirements []RequirementResult `json:"requirements"`
	Result       bool                `json:"result"`
}

// FailedConditions 列出未通过的条件，前缀标明所属需求与方向
func (r AssetComplianceResult) FailedConditions() []string {
	var out []string
	for _, req := range r.Requirements {
		for _, c := range req.SenderConditions {
			if !c.Result {
				out = append(out, formatFailed(req.Id, "sender", c.Condition))
			}
		}
		for _, c := range req.ReceiverConditions {
			if !c.Result {
				out = append(out, formatFailed(req.Id, "receiver", c.Condition))
			}
		}
	}
	return out
}

func formatFailed(id uint32, side string, c Condition) string {
	return fmt.Sprintf("%s#%d:%s", side, id, c.ConditionType.Kind)
}

// RestrictionResult 旧版转账管理器的判定结果
type RestrictionResult uint8

const (
	RestrictionValid RestrictionResult = iota
	RestrictionInvalid
	RestrictionForceValid
)

// String 名称
func (r RestrictionResult) String() string {
	switch r {
	case RestrictionValid:
		return "Valid"
	case RestrictionForceValid:
		return "ForceValid"
	default:
		return "Invalid"
	}
}

// MarshalText 文本编码
func (r RestrictionResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
