package types

// AppConfig 用户配置文件模型
//
// 只包含配置文件中实际出现的字段：所有字段都是指针，nil 表示使用默认值。
// 同一份结构同时支持 JSON 与 YAML。
type AppConfig struct {
	AppName *string `json:"app_name,omitempty" yaml:"app_name,omitempty"`
	DataDir *string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`

	Log        *UserLogConfig        `json:"log,omitempty" yaml:"log,omitempty"`
	Storage    *UserStorageConfig    `json:"storage,omitempty" yaml:"storage,omitempty"`
	Chain      *UserChainConfig      `json:"chain,omitempty" yaml:"chain,omitempty"`
	Asset      *UserAssetConfig      `json:"asset,omitempty" yaml:"asset,omitempty"`
	Compliance *UserComplianceConfig `json:"compliance,omitempty" yaml:"compliance,omitempty"`
	Statistics *UserStatisticsConfig `json:"statistics,omitempty" yaml:"statistics,omitempty"`
	Settlement *UserSettlementConfig `json:"settlement,omitempty" yaml:"settlement,omitempty"`
	Sto        *UserStoConfig        `json:"sto,omitempty" yaml:"sto,omitempty"`
	API        *UserAPIConfig        `json:"api,omitempty" yaml:"api,omitempty"`
}

// UserLogConfig 用户日志配置
type UserLogConfig struct {
	Level     *string `json:"level,omitempty" yaml:"level,omitempty"`
	FilePath  *string `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	ToConsole *bool   `json:"to_console,omitempty" yaml:"to_console,omitempty"`
	MultiFile *bool   `json:"multi_file,omitempty" yaml:"multi_file,omitempty"`
}

// UserStorageConfig 用户存储配置
type UserStorageConfig struct {
	Path       *string `json:"path,omitempty" yaml:"path,omitempty"`
	InMemory   *bool   `json:"in_memory,omitempty" yaml:"in_memory,omitempty"`
	SyncWrites *bool   `json:"sync_writes,omitempty" yaml:"sync_writes,omitempty"`
}

// UserChainConfig 用户出块配置
type UserChainConfig struct {
	BlockIntervalMs *uint64 `json:"block_interval_ms,omitempty" yaml:"block_interval_ms,omitempty"`
	ProducerEnabled *bool   `json:"producer_enabled,omitempty" yaml:"producer_enabled,omitempty"`
	GenesisMoment   *uint64 `json:"genesis_moment,omitempty" yaml:"genesis_moment,omitempty"`
}

// UserAssetConfig 用户资产配置
type UserAssetConfig struct {
	MaxTickerLength      *int    `json:"max_ticker_length,omitempty" yaml:"max_ticker_length,omitempty"`
	RegistrationLengthMs *uint64 `json:"registration_length_ms,omitempty" yaml:"registration_length_ms,omitempty"`
}

// UserComplianceConfig 用户合规配置
type UserComplianceConfig struct {
	MaxConditionComplexity   *uint32 `json:"max_condition_complexity,omitempty" yaml:"max_condition_complexity,omitempty"`
	MaxDefaultTrustedIssuers *int    `json:"max_default_trusted_issuers,omitempty" yaml:"max_default_trusted_issuers,omitempty"`
	MaxTrustedIssuerPerCond  *int    `json:"max_trusted_issuer_per_condition,omitempty" yaml:"max_trusted_issuer_per_condition,omitempty"`
	MaxRequirements          *int    `json:"max_requirements,omitempty" yaml:"max_requirements,omitempty"`
}

// UserStatisticsConfig 用户统计配置
type UserStatisticsConfig struct {
	MaxStatsPerAsset              *int `json:"max_stats_per_asset,omitempty" yaml:"max_stats_per_asset,omitempty"`
	MaxTransferConditionsPerAsset *int `json:"max_transfer_conditions_per_asset,omitempty" yaml:"max_transfer_conditions_per_asset,omitempty"`
}

// UserSettlementConfig 用户结算配置
type UserSettlementConfig struct {
	MaxLegsPerInstruction *int `json:"max_legs_per_instruction,omitempty" yaml:"max_legs_per_instruction,omitempty"`
	MaxVenueSigners       *int `json:"max_venue_signers,omitempty" yaml:"max_venue_signers,omitempty"`
}

// UserStoConfig 用户募资配置
type UserStoConfig struct {
	MaxTiers *int `json:"max_tiers,omitempty" yaml:"max_tiers,omitempty"`
}

// UserAPIConfig 用户 API 配置
type UserAPIConfig struct {
	Enabled    *bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	ListenAddr *string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	Metrics    *bool   `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}
