package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/types"
)

// Genesis 初始状态描述（YAML）
//
// 身份以名称引用，资产、声明、场所中的 owner / issuer / target 均为身份名称。
type Genesis struct {
	Identities []IdentitySpec `yaml:"identities"`
	Claims     []ClaimGrant   `yaml:"claims"`
	Assets     []AssetSpec    `yaml:"assets"`
	Venues     []VenueSpec    `yaml:"venues"`
}

// IdentitySpec 身份与主密钥，Account 为空时由 Seed 派生
type IdentitySpec struct {
	Name    string `yaml:"name"`
	Account string `yaml:"account,omitempty"`
	Seed    string `yaml:"seed,omitempty"`
}

// ClaimSpec 声明
//
// Scope 为资产代码；省略时取所在资产（条件中）或不设作用域（CDD）。
type ClaimSpec struct {
	Type    string `yaml:"type"`
	Scope   string `yaml:"scope,omitempty"`
	Country string `yaml:"country,omitempty"`
}

// ClaimGrant 发行方向目标授予声明
type ClaimGrant struct {
	Issuer    string `yaml:"issuer"`
	Target    string `yaml:"target"`
	ClaimSpec `yaml:",inline"`
}

// ConditionSpec 合规条件，恰好设置一个字段
type ConditionSpec struct {
	Present       *ClaimSpec  `yaml:"present,omitempty"`
	Absent        *ClaimSpec  `yaml:"absent,omitempty"`
	AnyOf         []ClaimSpec `yaml:"any_of,omitempty"`
	NoneOf        []ClaimSpec `yaml:"none_of,omitempty"`
	Identity      string      `yaml:"identity,omitempty"`
	ExternalAgent bool        `yaml:"external_agent,omitempty"`
}

// RequirementSpec 合规需求
type RequirementSpec struct {
	Sender   []ConditionSpec `yaml:"sender,omitempty"`
	Receiver []ConditionSpec `yaml:"receiver,omitempty"`
}

// IssueSpec 发行
type IssueSpec struct {
	To     string        `yaml:"to"`
	Amount types.Balance `yaml:"amount"`
}

// AssetSpec 资产及其合规配置
type AssetSpec struct {
	Ticker           string            `yaml:"ticker"`
	Name             string            `yaml:"name"`
	Owner            string            `yaml:"owner"`
	Divisible        bool              `yaml:"divisible"`
	TrustedIssuers   []string          `yaml:"trusted_issuers,omitempty"`
	Compliance       []RequirementSpec `yaml:"compliance,omitempty"`
	MaxInvestorCount *uint64           `yaml:"max_investor_count,omitempty"`
	Issue            []IssueSpec       `yaml:"issue,omitempty"`
}

// VenueSpec 结算场所
type VenueSpec struct {
	Owner   string `yaml:"owner"`
	Details string `yaml:"details"`
	Type    string `yaml:"type"`
}

// GenesisResult 写入后的身份与场所编号
type GenesisResult struct {
	Identities map[string]types.IdentityId
	Venues     []types.VenueId
}

var venueTypes = map[string]types.VenueType{
	"other":        types.VenueOther,
	"distribution": types.VenueDistribution,
	"sto":          types.VenueSto,
	"exchange":     types.VenueExchange,
}

// LoadGenesis 读取 YAML 初始状态文件
func LoadGenesis(path string) (*Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取初始状态文件失败: %w", err)
	}
	var g Genesis
	if err := yaml.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("解析初始状态文件失败: %w", err)
	}
	return &g, nil
}

type genesisApplier struct {
	engine   *Engine
	accounts map[string]types.AccountId
	result   GenesisResult
}

// ApplyGenesis 依次写入身份、声明、资产、场所
//
// 每个条目一次调度；已登记的密钥复用现有身份，其余错误立即返回，已完成的条目保留。
func ApplyGenesis(ctx context.Context, engine *Engine, g *Genesis) (GenesisResult, error) {
	a := &genesisApplier{
		engine:   engine,
		accounts: make(map[string]types.AccountId),
		result:   GenesisResult{Identities: make(map[string]types.IdentityId)},
	}
	for _, spec := range g.Identities {
		if err := a.identity(ctx, spec); err != nil {
			return a.result, fmt.Errorf("身份 %q: %w", spec.Name, err)
		}
	}
	for i, grant := range g.Claims {
		if err := a.claim(ctx, grant); err != nil {
			return a.result, fmt.Errorf("claims[%d]: %w", i, err)
		}
	}
	for _, spec := range g.Assets {
		if err := a.asset(ctx, spec); err != nil {
			return a.result, fmt.Errorf("资产 %q: %w", spec.Ticker, err)
		}
	}
	for i, spec := range g.Venues {
		if err := a.venue(ctx, spec); err != nil {
			return a.result, fmt.Errorf("venues[%d]: %w", i, err)
		}
	}
	if engine.Logger != nil {
		engine.Logger.Infof("初始状态已写入: %d 个身份, %d 条声明, %d 个资产, %d 个场所",
			len(g.Identities), len(g.Claims), len(g.Assets), len(g.Venues))
	}
	return a.result, nil
}

func (a *genesisApplier) dispatch(ctx context.Context, call, owner string, fn func(c *runtime.Context) error) error {
	key, ok := a.accounts[owner]
	if !ok {
		return fmt.Errorf("未声明的身份: %q", owner)
	}
	return a.engine.Runtime.Dispatch(ctx, "genesis."+call, key, fn)
}

func (a *genesisApplier) did(name string) (types.IdentityId, error) {
	did, ok := a.result.Identities[name]
	if !ok {
		return types.IdentityId{}, fmt.Errorf("未声明的身份: %q", name)
	}
	return did, nil
}

func (a *genesisApplier) identity(ctx context.Context, spec IdentitySpec) error {
	if spec.Name == "" {
		return fmt.Errorf("缺少 name")
	}
	key := types.AccountIdFromSeed(spec.Seed)
	if spec.Account != "" {
		parsed, err := types.ParseAccountId(spec.Account)
		if err != nil {
			return err
		}
		key = parsed
	} else if spec.Seed == "" {
		key = types.AccountIdFromSeed(spec.Name)
	}
	a.accounts[spec.Name] = key

	return a.dispatch(ctx, "register_identity", spec.Name, func(c *runtime.Context) error {
		if did, ok := a.engine.Identity.KeyToIdentity(c, key); ok {
			a.result.Identities[spec.Name] = did
			return nil
		}
		did, err := a.engine.Identity.RegisterIdentity(c, key)
		if err != nil {
			return err
		}
		a.result.Identities[spec.Name] = did
		return nil
	})
}

func (a *genesisApplier) claim(ctx context.Context, grant ClaimGrant) error {
	target, err := a.did(grant.Target)
	if err != nil {
		return err
	}
	claim, err := grant.ClaimSpec.claim(types.Scope{})
	if err != nil {
		return err
	}
	return a.dispatch(ctx, "add_claim", grant.Issuer, func(c *runtime.Context) error {
		return a.engine.Identity.AddClaim(c, target, claim, nil)
	})
}

func (a *genesisApplier) asset(ctx context.Context, spec AssetSpec) error {
	ticker, err := types.NewTicker(spec.Ticker)
	if err != nil {
		return err
	}
	issuers := make([]types.TrustedIssuer, 0, len(spec.TrustedIssuers))
	for _, name := range spec.TrustedIssuers {
		did, err := a.did(name)
		if err != nil {
			return err
		}
		issuers = append(issuers, types.TrustedForAny(did))
	}
	requirements := make([][2][]types.Condition, 0, len(spec.Compliance))
	for i, req := range spec.Compliance {
		sender, err := a.conditions(req.Sender, ticker)
		if err != nil {
			return fmt.Errorf("compliance[%d].sender: %w", i, err)
		}
		receiver, err := a.conditions(req.Receiver, ticker)
		if err != nil {
			return fmt.Errorf("compliance[%d].receiver: %w", i, err)
		}
		requirements = append(requirements, [2][]types.Condition{sender, receiver})
	}
	type issuance struct {
		to     types.PortfolioId
		amount types.Balance
	}
	issues := make([]issuance, 0, len(spec.Issue))
	for _, is := range spec.Issue {
		did, err := a.did(is.To)
		if err != nil {
			return err
		}
		issues = append(issues, issuance{to: types.DefaultPortfolio(did), amount: is.Amount})
	}

	name := spec.Name
	if name == "" {
		name = ticker.String()
	}
	// 统计与转账条件须在发行前启用，否则持有人计数不含初始发行
	return a.dispatch(ctx, "create_asset", spec.Owner, func(c *runtime.Context) error {
		e := a.engine
		if err := e.Assets.CreateAsset(c, ticker, name, spec.Divisible); err != nil {
			return err
		}
		for _, issuer := range issuers {
			if err := e.Compliance.AddDefaultTrustedClaimIssuer(c, ticker, issuer); err != nil {
				return err
			}
		}
		for _, req := range requirements {
			if _, err := e.Compliance.AddComplianceRequirement(c, ticker, req[0], req[1]); err != nil {
				return err
			}
		}
		if spec.MaxInvestorCount != nil {
			if err := e.Statistics.SetActiveAssetStats(c, ticker, []types.StatType{types.CountStat()}); err != nil {
				return err
			}
			conditions := []types.TransferCondition{types.MaxInvestorCount(*spec.MaxInvestorCount)}
			if err := e.Statistics.SetAssetTransferCompliance(c, ticker, conditions); err != nil {
				return err
			}
		}
		for _, is := range issues {
			if err := e.Assets.Issue(c, ticker, is.amount, is.to); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *genesisApplier) venue(ctx context.Context, spec VenueSpec) error {
	kind := types.VenueOther
	if spec.Type != "" {
		var ok bool
		if kind, ok = venueTypes[strings.ToLower(spec.Type)]; !ok {
			return fmt.Errorf("未知的场所类型: %q", spec.Type)
		}
	}
	return a.dispatch(ctx, "create_venue", spec.Owner, func(c *runtime.Context) error {
		id, err := a.engine.Settlement.CreateVenue(c, spec.Details, nil, kind)
		if err != nil {
			return err
		}
		a.result.Venues = append(a.result.Venues, id)
		return nil
	})
}

func (a *genesisApplier) conditions(specs []ConditionSpec, asset types.Ticker) ([]types.Condition, error) {
	scope := types.TickerScope(asset)
	out := make([]types.Condition, 0, len(specs))
	for i, spec := range specs {
		ct, err := a.conditionType(spec, scope)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, types.NewCondition(ct))
	}
	return out, nil
}

func (a *genesisApplier) conditionType(spec ConditionSpec, scope types.Scope) (types.ConditionType, error) {
	var (
		set int
		ct  types.ConditionType
		err error
	)
	one := func(s *ClaimSpec, build func(types.Claim) types.ConditionType) {
		if s == nil {
			return
		}
		set++
		var claim types.Claim
		if claim, err = s.claim(scope); err == nil {
			ct = build(claim)
		}
	}
	many := func(specs []ClaimSpec, build func(...types.Claim) types.ConditionType) {
		if len(specs) == 0 {
			return
		}
		set++
		claims := make([]types.Claim, 0, len(specs))
		for _, s := range specs {
			claim, cerr := s.claim(scope)
			if cerr != nil {
				err = cerr
				return
			}
			claims = append(claims, claim)
		}
		ct = build(claims...)
	}
	one(spec.Present, types.IsPresent)
	one(spec.Absent, types.IsAbsent)
	many(spec.AnyOf, types.IsAnyOf)
	many(spec.NoneOf, types.IsNoneOf)
	if spec.Identity != "" {
		set++
		var did types.IdentityId
		if did, err = a.did(spec.Identity); err == nil {
			ct = types.IsIdentity(types.SpecificTarget(did))
		}
	}
	if spec.ExternalAgent {
		set++
		ct = types.IsIdentity(types.ExternalAgentTarget())
	}
	if err != nil {
		return ct, err
	}
	if set != 1 {
		return ct, fmt.Errorf("条件须恰好设置一项，实际 %d 项", set)
	}
	return ct, nil
}

func (s ClaimSpec) claim(scope types.Scope) (types.Claim, error) {
	t, err := types.ParseClaimType(s.Type)
	if err != nil {
		return types.Claim{}, err
	}
	if s.Scope != "" {
		ticker, err := types.NewTicker(s.Scope)
		if err != nil {
			return types.Claim{}, err
		}
		scope = types.TickerScope(ticker)
	}
	switch t {
	case types.ClaimTypeCustomerDueDiligence:
		return types.CddClaim(types.CddId{}), nil
	case types.ClaimTypeJurisdiction:
		if s.Country == "" {
			return types.Claim{}, fmt.Errorf("Jurisdiction 声明缺少 country")
		}
		return types.JurisdictionClaim(types.CountryCode(strings.ToUpper(s.Country)), scope), nil
	case types.ClaimTypeCustom:
		return types.Claim{}, fmt.Errorf("初始状态不支持 Custom 声明")
	default:
		return types.Claim{Type: t, Scope: scope}, nil
	}
}
