package types

// VenueId 交易场所编号
type VenueId uint64

// InstructionId 结算指令编号
type InstructionId uint64

// VenueType 交易场所类别
type VenueType uint8

const (
	VenueOther VenueType = iota
	VenueDistribution
	VenueSto
	VenueExchange
)

// String 名称
func (v VenueType) String() string {
	switch v {
	case VenueDistribution:
		return "Distribution"
	case VenueSto:
		return "Sto"
	case VenueExchange:
		return "Exchange"
	default:
		return "Other"
	}
}

// Venue 交易场所
type Venue struct {
	Creator   IdentityId  `json:"creator"`
	VenueType VenueType   `json:"venue_type"`
	Details   string      `json:"details"`
	Signers   []AccountId `json:"signers"`
}

// SettlementKind 结算方式
type SettlementKind uint8

const (
	// SettleOnAffirmation 全部确认后立即执行
	SettleOnAffirmation SettlementKind = iota
	// SettleOnBlock 在指定区块执行
	SettleOnBlock
	// SettleManual 指定区块之后手动执行
	SettleManual
)

// SettlementType 结算方式及其区块参数
type SettlementType struct {
	Kind  SettlementKind `json:"kind"`
	Block BlockNumber    `json:"block,omitempty"`
}

// OnAffirmation 全部确认后立即执行
func OnAffirmation() SettlementType { return SettlementType{Kind: SettleOnAffirmation} }

// OnBlock 在区块 n 执行
func OnBlock(n BlockNumber) SettlementType { return SettlementType{Kind: SettleOnBlock, Block: n} }

// Manual 区块 n 之后手动执行
func Manual(n BlockNumber) SettlementType { return SettlementType{Kind: SettleManual, Block: n} }

// InstructionStatus 指令状态
type InstructionStatus uint8

const (
	InstructionUnknown InstructionStatus = iota
	InstructionPending
	InstructionExecuted
	InstructionRejected
	InstructionFailed
)

// String 名称
func (s InstructionStatus) String() string {
	switch s {
	case InstructionPending:
		return "Pending"
	case InstructionExecuted:
		return "Executed"
	case InstructionRejected:
		return "Rejected"
	case InstructionFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// MarshalText 文本编码
func (s InstructionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsFinal 是否终态
func (s InstructionStatus) IsFinal() bool {
	return s == InstructionExecuted || s == InstructionRejected || s == InstructionFailed
}

// Leg 一笔资产移动
type Leg struct {
	From   PortfolioId `json:"from"`
	To     PortfolioId `json:"to"`
	Asset  Ticker      `json:"asset"`
	Amount Balance     `json:"amount"`
}

// Instruction 结算指令
type Instruction struct {
	Id             InstructionId     `json:"id"`
	VenueId        VenueId           `json:"venue_id"`
	Creator        IdentityId        `json:"creator"`
	Status         InstructionStatus `json:"status"`
	SettlementType SettlementType    `json:"settlement_type"`
	CreatedAt      Moment            `json:"created_at"`
	TradeDate      *Moment           `json:"trade_date,omitempty"`
	ValueDate      *Moment           `json:"value_date,omitempty"`
	Memo           string            `json:"memo,omitempty"`
	PendingAffirms uint64            `json:"pending_affirms"`
}

// AffirmationStatus 单个投资组合的确认状态
type AffirmationStatus uint8

const (
	AffirmationUnknown AffirmationStatus = iota
	AffirmationPending
	AffirmationAffirmed
)

// String 名称
func (a AffirmationStatus) String() string {
	switch a {
	case AffirmationPending:
		return "Pending"
	case AffirmationAffirmed:
		return "Affirmed"
	default:
		return "Unknown"
	}
}

// FailedLeg 执行失败的腿及原因
type FailedLeg struct {
	Index      int                       `json:"index"`
	Reason     string                    `json:"reason"`
	Compliance *AssetComplianceResult    `json:"compliance,omitempty"`
	Transfer   []TransferConditionResult `json:"transfer_conditions,omitempty"`
}
