package types

// OneUnit 不可分割资产的最小单位（10^6）
const OneUnit = 1_000_000

// TickerRegistration Ticker 注册记录，Expiry 为 nil 表示永不过期
type TickerRegistration struct {
	Owner  IdentityId `json:"owner"`
	Expiry *Moment    `json:"expiry,omitempty"`
}

// IsExpired 在给定时间是否已过期
func (r TickerRegistration) IsExpired(now Moment) bool {
	return r.Expiry != nil && *r.Expiry <= now
}

// AssetDetails 资产详情
type AssetDetails struct {
	Ticker      Ticker     `json:"ticker"`
	Name        string     `json:"name"`
	Owner       IdentityId `json:"owner"`
	Divisible   bool       `json:"divisible"`
	TotalSupply Balance    `json:"total_supply"`
	CreatedAt   Moment     `json:"created_at"`
}
