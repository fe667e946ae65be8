package types

// FundraiserId 募资编号（每个发售资产内单调递增）
type FundraiserId uint64

// FundraiserStatus 募资状态
type FundraiserStatus uint8

const (
	FundraiserLive FundraiserStatus = iota
	FundraiserFrozen
	FundraiserClosed
	FundraiserClosedEarly
)

// String 名称
func (s FundraiserStatus) String() string {
	switch s {
	case FundraiserLive:
		return "Live"
	case FundraiserFrozen:
		return "Frozen"
	case FundraiserClosed:
		return "Closed"
	default:
		return "ClosedEarly"
	}
}

// IsClosed 是否已关闭
func (s FundraiserStatus) IsClosed() bool {
	return s == FundraiserClosed || s == FundraiserClosedEarly
}

// PriceTier 价格档位：Total 个单位以固定 Price 出售
type PriceTier struct {
	Total Balance `json:"total"`
	Price Balance `json:"price"`
}

// FundraiserTier 带剩余量的价格档位
type FundraiserTier struct {
	Total     Balance `json:"total"`
	Price     Balance `json:"price"`
	Remaining Balance `json:"remaining"`
}

// Fundraiser 分档定价的代币发售
type Fundraiser struct {
	Id                FundraiserId     `json:"id"`
	Name              string           `json:"name"`
	Creator           IdentityId       `json:"creator"`
	OfferingPortfolio PortfolioId      `json:"offering_portfolio"`
	OfferingAsset     Ticker           `json:"offering_asset"`
	RaisingPortfolio  PortfolioId      `json:"raising_portfolio"`
	RaisingAsset      Ticker           `json:"raising_asset"`
	Tiers             []FundraiserTier `json:"tiers"`
	VenueId           VenueId          `json:"venue_id"`
	Start             Moment           `json:"start"`
	End               *Moment          `json:"end,omitempty"`
	Status            FundraiserStatus `json:"status"`
	MinimumInvestment Balance          `json:"minimum_investment"`
}

// Remaining 所有档位剩余量之和
func (f Fundraiser) Remaining() (Balance, error) {
	total := ZeroBalance
	for _, t := range f.Tiers {
		var err error
		if total, err = total.CheckedAdd(t.Remaining); err != nil {
			return ZeroBalance, err
		}
	}
	return total, nil
}
