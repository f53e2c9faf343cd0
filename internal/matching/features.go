package matching

import (
	"fmt"
	"strings"
	"time"

	"venture-match/internal/models"

	"github.com/gosimple/slug"
)

type Stage string

const (
	StagePreSeed Stage = "pre-seed"
	StageSeed    Stage = "seed"
	StageSeriesA Stage = "series-a"
	StageSeriesB Stage = "series-b"
	StageSeriesC Stage = "series-c"
	StageGrowth  Stage = "growth"
)

var stageAliases = map[string]Stage{
	"pre-seed":      StagePreSeed,
	"preseed":       StagePreSeed,
	"idea":          StagePreSeed,
	"seed":          StageSeed,
	"series-a":      StageSeriesA,
	"seriesa":       StageSeriesA,
	"a":             StageSeriesA,
	"series-b":      StageSeriesB,
	"seriesb":       StageSeriesB,
	"b":             StageSeriesB,
	"series-c":      StageSeriesC,
	"seriesc":       StageSeriesC,
	"c":             StageSeriesC,
	"series-c-plus": StageGrowth,
	"series-d":      StageGrowth,
	"growth":        StageGrowth,
	"late-stage":    StageGrowth,
}

// ParseStage maps free-text stage labels ("Series A", "pre_seed") onto the canonical set.
func ParseStage(raw string) (Stage, bool) {
	st, ok := stageAliases[token(raw)]
	return st, ok
}

type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

var riskToleranceAliases = map[string]RiskTolerance{
	"low":          RiskLow,
	"conservative": RiskLow,
	"medium":       RiskMedium,
	"moderate":     RiskMedium,
	"balanced":     RiskMedium,
	"high":         RiskHigh,
	"aggressive":   RiskHigh,
}

var (
	highRiskPhrases = []string{"high risk", "high-risk", "moonshot", "contrarian", "deep tech", "frontier", "bold bets", "early bets"}
	lowRiskPhrases  = []string{"conservative", "proven", "profitable", "capital preservation", "de-risked", "low risk", "low-risk"}
)

// StartupFeatures is the comparable view of a startup. Unknown optional values are nil/empty.
type StartupFeatures struct {
	ID            string
	Stage         Stage
	Industry      string
	Geography     string
	FundingAsk    *float64
	Team          TeamFeatures
	Traction      TractionFeatures
	GrowthRate    *float64
	BusinessModel string
	RiskFactors   []string // nil = unknown, empty = none declared
	Strengths     []string
	Needs         []string
	Competitors   []string
	LastFundedAt  *time.Time
}

type TeamFeatures struct {
	Size               *int
	AvgExperienceYears *float64
	PriorExits         *int
	TechnicalCofounder *bool
	Education          []string
}

func (t TeamFeatures) known() bool {
	return t.Size != nil || t.AvgExperienceYears != nil || t.PriorExits != nil ||
		t.TechnicalCofounder != nil || t.Education != nil
}

type TractionFeatures struct {
	MonthlyRevenue *float64
	Customers      *int
	Description    string
}

// InvestorFeatures is the comparable view of an investor.
type InvestorFeatures struct {
	ID                  string
	InvestorType        string
	AcceptedStages      []Stage
	PreferredIndustries []string
	GeographicFocus     []string
	MinInvestment       *float64
	MaxInvestment       *float64
	TypicalCheckSize    *float64
	LeadInvestments     *bool
	ValueAdd            []string
	PortfolioSize       *int
	Philosophy          string
	RiskTolerance       RiskTolerance // empty = unknown
	InvestmentsPerYear  *int
	LastInvestmentAt    *time.Time
	NotableInvestments  []NotableInvestment
}

type NotableInvestment struct {
	Company  string
	Industry string
	Stage    Stage
	Outcome  string
}

// NormalizeStartup extracts StartupFeatures from a raw startup document.
func NormalizeStartup(s models.Startup) (*StartupFeatures, error) {
	id := strings.TrimSpace(s.ID)
	if id == "" {
		return nil, fmt.Errorf("%w: startup id is required", ErrIncompleteRecord)
	}
	stage, ok := ParseStage(s.Stage)
	if !ok {
		return nil, fmt.Errorf("%w: startup %s has no recognised stage (%q)", ErrIncompleteRecord, id, s.Stage)
	}
	industry := token(s.Industry)
	if industry == "" {
		return nil, fmt.Errorf("%w: startup %s has no industry", ErrIncompleteRecord, id)
	}

	f := &StartupFeatures{
		ID:            id,
		Stage:         stage,
		Industry:      industry,
		Geography:     token(s.Geography),
		FundingAsk:    positive(s.FundingAsk),
		GrowthRate:    s.GrowthRate,
		BusinessModel: token(s.BusinessModel),
		RiskFactors:   tokens(s.RiskFactors),
		Strengths:     tokens(s.Strengths),
		Needs:         tokens(s.Needs),
		Competitors:   tokens(s.Competitors),
		LastFundedAt:  s.LastFundedAt,
	}

	if ts := s.TeamSummary; ts != nil {
		f.Team = TeamFeatures{
			Size:               positiveInt(ts.Size),
			AvgExperienceYears: nonNegative(ts.AvgExperienceYears),
			PriorExits:         nonNegativeInt(ts.PriorExits),
			TechnicalCofounder: ts.TechnicalCofounder,
			Education:          tokens(ts.Education),
		}
	}
	if tr := s.TractionSignals; tr != nil {
		f.Traction = TractionFeatures{
			MonthlyRevenue: nonNegative(tr.MonthlyRevenue),
			Customers:      nonNegativeInt(tr.Customers),
			Description:    strings.ToLower(strings.TrimSpace(tr.Description)),
		}
	}
	return f, nil
}

// NormalizeInvestor extracts InvestorFeatures from a raw investor document.
func NormalizeInvestor(inv models.Investor) (*InvestorFeatures, error) {
	id := strings.TrimSpace(inv.ID)
	if id == "" {
		return nil, fmt.Errorf("%w: investor id is required", ErrIncompleteRecord)
	}

	var stages []Stage
	seen := make(map[Stage]bool)
	for _, raw := range inv.AcceptedStages {
		if st, ok := ParseStage(raw); ok && !seen[st] {
			seen[st] = true
			stages = append(stages, st)
		}
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: investor %s has no recognised accepted stages", ErrIncompleteRecord, id)
	}
	industries := tokens(inv.PreferredIndustries)
	if len(industries) == 0 {
		return nil, fmt.Errorf("%w: investor %s has no preferred industries", ErrIncompleteRecord, id)
	}

	f := &InvestorFeatures{
		ID:                  id,
		InvestorType:        token(inv.InvestorType),
		AcceptedStages:      stages,
		PreferredIndustries: industries,
		GeographicFocus:     tokens(inv.GeographicFocus),
		MinInvestment:       nonNegative(inv.MinInvestmentAmount),
		MaxInvestment:       positive(inv.MaxInvestmentAmount),
		TypicalCheckSize:    positive(inv.TypicalCheckSize),
		LeadInvestments:     inv.LeadInvestments,
		ValueAdd:            tokens(inv.ValueAdd),
		PortfolioSize:       nonNegativeInt(inv.PortfolioSize),
		Philosophy:          strings.ToLower(strings.TrimSpace(inv.InvestmentPhilosophy)),
		InvestmentsPerYear:  nonNegativeInt(inv.InvestmentsPerYear),
		LastInvestmentAt:    inv.LastInvestmentAt,
	}
	if f.MinInvestment != nil && f.MaxInvestment != nil && *f.MinInvestment > *f.MaxInvestment {
		f.MinInvestment, f.MaxInvestment = f.MaxInvestment, f.MinInvestment
	}
	f.RiskTolerance = deriveRiskTolerance(inv.RiskTolerance, f.Philosophy)

	for _, n := range inv.NotableInvestments {
		company := token(n.Company)
		if company == "" {
			continue
		}
		st, _ := ParseStage(n.Stage)
		f.NotableInvestments = append(f.NotableInvestments, NotableInvestment{
			Company:  company,
			Industry: token(n.Industry),
			Stage:    st,
			Outcome:  token(n.Outcome),
		})
	}
	return f, nil
}

func deriveRiskTolerance(explicit, philosophy string) RiskTolerance {
	if rt, ok := riskToleranceAliases[token(explicit)]; ok {
		return rt
	}
	if philosophy == "" {
		return ""
	}
	for _, p := range highRiskPhrases {
		if strings.Contains(philosophy, p) {
			return RiskHigh
		}
	}
	for _, p := range lowRiskPhrases {
		if strings.Contains(philosophy, p) {
			return RiskLow
		}
	}
	return RiskMedium
}

func token(s string) string {
	return strings.ReplaceAll(slug.Make(strings.TrimSpace(s)), "_", "-")
}

// tokens keeps nil distinct from an explicitly empty list.
func tokens(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		t := token(s)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func nonNegative(v *float64) *float64 {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}

func positiveInt(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func nonNegativeInt(v *int) *int {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}
