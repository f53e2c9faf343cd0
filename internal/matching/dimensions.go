package matching

import (
	"math"
	"strings"
	"time"
)

type Dimension string

const (
	DimensionStage     Dimension = "stage"
	DimensionIndustry  Dimension = "industry"
	DimensionGeography Dimension = "geography"
	DimensionCheckSize Dimension = "check_size"
	DimensionTeam      Dimension = "team"
	DimensionTraction  Dimension = "traction"
	DimensionValueAdd  Dimension = "value_add"
	DimensionNetwork   Dimension = "network"
	DimensionTiming    Dimension = "timing"
	DimensionRisk      Dimension = "risk"
)

// AllDimensions lists the ten dimensions in canonical order.
var AllDimensions = []Dimension{
	DimensionStage, DimensionIndustry, DimensionGeography, DimensionCheckSize, DimensionTeam,
	DimensionTraction, DimensionValueAdd, DimensionNetwork, DimensionTiming, DimensionRisk,
}

// DimensionScore is a 0-100 score plus whether the inputs needed to compute it existed.
type DimensionScore struct {
	Score   int
	Present bool
}

type dimensionScorer func(s *StartupFeatures, inv *InvestorFeatures, now time.Time) DimensionScore

var scorers = map[Dimension]dimensionScorer{
	DimensionStage:     scoreStage,
	DimensionIndustry:  scoreIndustry,
	DimensionGeography: scoreGeography,
	DimensionCheckSize: scoreCheckSize,
	DimensionTeam:      scoreTeam,
	DimensionTraction:  scoreTraction,
	DimensionValueAdd:  scoreValueAdd,
	DimensionNetwork:   scoreNetwork,
	DimensionTiming:    scoreTiming,
	DimensionRisk:      scoreRisk,
}

// ScoreDimensions runs every dimension scorer independently.
func ScoreDimensions(s *StartupFeatures, inv *InvestorFeatures, now time.Time) map[Dimension]DimensionScore {
	out := make(map[Dimension]DimensionScore, len(AllDimensions))
	for _, d := range AllDimensions {
		out[d] = scorers[d](s, inv, now)
	}
	return out
}

func scored(v float64) DimensionScore {
	return DimensionScore{Score: clampScore(v), Present: true}
}

func absent() DimensionScore {
	return DimensionScore{}
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Min(math.Max(v, 0), 100)))
}

func scoreStage(s *StartupFeatures, inv *InvestorFeatures, _ time.Time) DimensionScore {
	if s.Stage == "" || len(inv.AcceptedStages) == 0 {
		return absent()
	}
	for _, st := range inv.AcceptedStages {
		if st == s.Stage {
			return scored(100)
		}
	}
	return scored(0)
}

func scoreIndustry(s *StartupFeatures, inv *InvestorFeatures, _ time.Time) DimensionScore {
	if s.Industry == "" || len(inv.PreferredIndustries) == 0 {
		return absent()
	}
	if contains(inv.PreferredIndustries, s.Industry) {
		return scored(100)
	}
	return scored(0)
}

func scoreGeography(s *StartupFeatures, inv *InvestorFeatures, _ time.Time) DimensionScore {
	if s.Geography == "" || len(inv.GeographicFocus) == 0 {
		return absent()
	}
	if contains(inv.GeographicFocus, "global") || contains(inv.GeographicFocus, s.Geography) {
		return scored(100)
	}
	return scored(0)
}

// scoreCheckSize is 100 inside [min, max] and falls off linearly to 0 at max*2 above
// the range and at min/2 below it.
func scoreCheckSize(s *StartupFeatures, inv *InvestorFeatures, _ time.Time) DimensionScore {
	if s.FundingAsk == nil || (inv.MinInvestment == nil && inv.MaxInvestment == nil) {
		return absent()
	}
	ask := *s.FundingAsk
	lo := 0.0
	if inv.MinInvestment != nil {
		lo = *inv.MinInvestment
	}
	hi := math.Inf(1)
	if inv.MaxInvestment != nil {
		hi = *inv.MaxInvestment
	}

	switch {
	case ask >= lo && ask <= hi:
		return scored(100)
	case ask > hi:
		return scored(100 * (1 - (ask-hi)/hi))
	default:
		half := lo / 2
		return scored(100 * (ask - half) / half)
	}
}

func scoreTeam(s *StartupFeatures, _ *InvestorFeatures, _ time.Time) DimensionScore {
	t := s.Team
	if !t.known() {
		return absent()
	}
	var parts []float64
	if t.Size != nil {
		switch n := *t.Size; {
		case n == 1:
			parts = append(parts, 40)
		case n == 2:
			parts = append(parts, 70)
		case n <= 5:
			parts = append(parts, 100)
		case n <= 10:
			parts = append(parts, 90)
		default:
			parts = append(parts, 80)
		}
	}
	if t.AvgExperienceYears != nil {
		parts = append(parts, math.Min(100, 20+*t.AvgExperienceYears*10))
	}
	if t.PriorExits != nil {
		switch *t.PriorExits {
		case 0:
			parts = append(parts, 50)
		case 1:
			parts = append(parts, 85)
		default:
			parts = append(parts, 100)
		}
	}
	if t.TechnicalCofounder != nil {
		if *t.TechnicalCofounder {
			parts = append(parts, 100)
		} else {
			parts = append(parts, 50)
		}
	}
	if t.Education != nil {
		parts = append(parts, educationScore(t.Education))
	}
	return scored(mean(parts))
}

var advancedDegrees = []string{"phd", "doctorate", "mba", "masters", "master", "msc", "md", "jd"}

func educationScore(education []string) float64 {
	if len(education) == 0 {
		return 40
	}
	for _, e := range education {
		for _, deg := range advancedDegrees {
			if e == deg || strings.HasPrefix(e, deg+"-") || strings.Contains(e, "-"+deg) {
				return 100
			}
		}
	}
	return 70
}

type stageExpectation struct {
	monthlyRevenue float64
	customers      float64
	monthlyGrowth  float64
}

var stageExpectations = map[Stage]stageExpectation{
	StagePreSeed: {monthlyRevenue: 0, customers: 1, monthlyGrowth: 0.20},
	StageSeed:    {monthlyRevenue: 10_000, customers: 10, monthlyGrowth: 0.15},
	StageSeriesA: {monthlyRevenue: 80_000, customers: 50, monthlyGrowth: 0.10},
	StageSeriesB: {monthlyRevenue: 400_000, customers: 200, monthlyGrowth: 0.07},
	StageSeriesC: {monthlyRevenue: 1_200_000, customers: 500, monthlyGrowth: 0.05},
	StageGrowth:  {monthlyRevenue: 3_000_000, customers: 1000, monthlyGrowth: 0.03},
}

var (
	negativeTraction = []string{"pre-revenue", "no revenue", "no customers", "high churn", "declining"}
	positiveTraction = []string{"paying", "revenue", "profitable", "recurring", "contract", "pilot", "partnership", "waitlist", "retention", "letter of intent"}
)

func scoreTraction(s *StartupFeatures, _ *InvestorFeatures, _ time.Time) DimensionScore {
	tr := s.Traction
	if tr.MonthlyRevenue == nil && tr.Customers == nil && s.GrowthRate == nil && tr.Description == "" {
		return absent()
	}
	exp := stageExpectations[s.Stage]
	var parts []float64
	if tr.MonthlyRevenue != nil {
		if exp.monthlyRevenue == 0 {
			if *tr.MonthlyRevenue > 0 {
				parts = append(parts, 100)
			} else {
				parts = append(parts, 60)
			}
		} else {
			parts = append(parts, math.Min(100, 100*(*tr.MonthlyRevenue)/exp.monthlyRevenue))
		}
	}
	if tr.Customers != nil {
		parts = append(parts, math.Min(100, 100*float64(*tr.Customers)/exp.customers))
	}
	if s.GrowthRate != nil {
		parts = append(parts, math.Max(0, math.Min(100, 100*(*s.GrowthRate)/exp.monthlyGrowth)))
	}
	if tr.Description != "" {
		text := tr.Description
		neg := 0
		for _, p := range negativeTraction {
			if strings.Contains(text, p) {
				neg++
				text = strings.ReplaceAll(text, p, " ")
			}
		}
		pos := 0
		for _, p := range positiveTraction {
			if strings.Contains(text, p) {
				pos++
			}
		}
		parts = append(parts, math.Max(0, math.Min(100, 50+10*float64(pos)-15*float64(neg))))
	}
	return scored(mean(parts))
}

// capabilityNeeds lists the startup needs each investor capability serves beyond a direct match.
var capabilityNeeds = map[string][]string{
	"fundraising-support":     {"fundraising", "follow-on-funding", "investor-introductions"},
	"go-to-market":            {"sales", "marketing", "customer-acquisition"},
	"customer-introductions":  {"customers", "sales", "partnerships"},
	"recruiting":              {"hiring", "talent", "recruiting"},
	"talent":                  {"hiring", "talent", "recruiting"},
	"technical-expertise":     {"engineering", "product", "technology"},
	"product-development":     {"product", "engineering"},
	"regulatory":              {"compliance", "regulatory", "legal"},
	"international-expansion": {"expansion", "international", "market-entry"},
	"mentorship":              {"mentorship", "strategy", "coaching"},
	"board-governance":        {"governance", "strategy", "board"},
	"operations":              {"operations", "scaling", "supply-chain"},
}

func scoreValueAdd(s *StartupFeatures, inv *InvestorFeatures, _ time.Time) DimensionScore {
	if len(s.Needs) == 0 || len(inv.ValueAdd) == 0 {
		return absent()
	}
	addressed := 0
	for _, capability := range inv.ValueAdd {
		if addressesAny(capability, s.Needs) {
			addressed++
		}
	}
	return scored(100 * float64(addressed) / float64(len(inv.ValueAdd)))
}

func addressesAny(capability string, needs []string) bool {
	for _, need := range needs {
		if capability == need || strings.Contains(capability, need) || strings.Contains(need, capability) {
			return true
		}
		if contains(capabilityNeeds[capability], need) {
			return true
		}
	}
	return false
}

func scoreNetwork(s *StartupFeatures, inv *InvestorFeatures, _ time.Time) DimensionScore {
	if len(inv.NotableInvestments) == 0 {
		return absent()
	}
	same, conflicts := 0, 0
	for _, n := range inv.NotableInvestments {
		if n.Industry != "" && n.Industry == s.Industry {
			same++
		}
		if contains(s.Competitors, n.Company) {
			conflicts++
		}
	}
	score := 30.0
	if same > 0 {
		score = 50 + 50*float64(same)/float64(len(inv.NotableInvestments))
	}
	return scored(score - 30*float64(conflicts))
}

func scoreTiming(s *StartupFeatures, inv *InvestorFeatures, now time.Time) DimensionScore {
	var parts []float64
	if inv.InvestmentsPerYear != nil {
		switch n := *inv.InvestmentsPerYear; {
		case n >= 12:
			parts = append(parts, 100)
		case n >= 6:
			parts = append(parts, 85)
		case n >= 3:
			parts = append(parts, 65)
		case n >= 1:
			parts = append(parts, 45)
		default:
			parts = append(parts, 10)
		}
	}
	if s.LastFundedAt != nil {
		switch m := monthsBetween(*s.LastFundedAt, now); {
		case m < 6:
			parts = append(parts, 40)
		case m < 12:
			parts = append(parts, 75)
		case m < 24:
			parts = append(parts, 100)
		default:
			parts = append(parts, 70)
		}
	}
	if inv.LastInvestmentAt != nil {
		switch m := monthsBetween(*inv.LastInvestmentAt, now); {
		case m < 6:
			parts = append(parts, 100)
		case m < 12:
			parts = append(parts, 75)
		case m < 24:
			parts = append(parts, 50)
		default:
			parts = append(parts, 25)
		}
	}
	if len(parts) == 0 {
		return absent()
	}
	return scored(mean(parts))
}

var riskPenalty = map[RiskTolerance]float64{
	RiskLow:    25,
	RiskMedium: 15,
	RiskHigh:   8,
}

func scoreRisk(s *StartupFeatures, inv *InvestorFeatures, _ time.Time) DimensionScore {
	if s.RiskFactors == nil || inv.RiskTolerance == "" {
		return absent()
	}
	return scored(100 - riskPenalty[inv.RiskTolerance]*float64(len(s.RiskFactors)))
}

func monthsBetween(from, to time.Time) float64 {
	if to.Before(from) {
		return 0
	}
	return to.Sub(from).Hours() / (24 * 30.44)
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
