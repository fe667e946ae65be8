package compliance

const (
	defaultMaxConditionComplexity       = 50
	defaultMaxDefaultTrustedIssuers     = 10
	defaultMaxTrustedIssuerPerCondition = 5
	defaultMaxRequirements              = 32
)
