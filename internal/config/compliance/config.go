// Package compliance 合规引擎配置
package compliance

import "github.com/polymesh/engine/pkg/types"

// ComplianceOptions 合规配置选项
type ComplianceOptions struct {
	MaxConditionComplexity            uint32 `json:"max_condition_complexity" yaml:"max_condition_complexity"`
	MaxDefaultTrustedIssuers          int    `json:"max_default_trusted_issuers" yaml:"max_default_trusted_issuers"`
	MaxTrustedIssuerPerCondition      int    `json:"max_trusted_issuer_per_condition" yaml:"max_trusted_issuer_per_condition"`
	MaxComplianceRequirementsPerAsset int    `json:"max_requirements" yaml:"max_requirements"`
}

// Config 合规配置实现
type Config struct {
	options *ComplianceOptions
}

// New 创建配置，userConfig 为 *types.UserComplianceConfig 或 nil
func New(userConfig interface{}) *Config {
	options := &ComplianceOptions{
		MaxConditionComplexity:            defaultMaxConditionComplexity,
		MaxDefaultTrustedIssuers:          defaultMaxDefaultTrustedIssuers,
		MaxTrustedIssuerPerCondition:      defaultMaxTrustedIssuerPerCondition,
		MaxComplianceRequirementsPerAsset: defaultMaxRequirements,
	}
	if u, ok := userConfig.(*types.UserComplianceConfig); ok && u != nil {
		if u.MaxConditionComplexity != nil {
			options.MaxConditionComplexity = *u.MaxConditionComplexity
		}
		if u.MaxDefaultTrustedIssuers != nil {
			options.MaxDefaultTrustedIssuers = *u.MaxDefaultTrustedIssuers
		}
		if u.MaxTrustedIssuerPerCond != nil {
			options.MaxTrustedIssuerPerCondition = *u.MaxTrustedIssuerPerCond
		}
		if u.MaxRequirements != nil {
			options.MaxComplianceRequirementsPerAsset = *u.MaxRequirements
		}
	}
	return &Config{options: options}
}

// GetOptions 完整选项
func (c *Config) GetOptions() *ComplianceOptions { return c.options }
