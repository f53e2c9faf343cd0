package matching

import (
	"time"

	"venture-match/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }
func timePtr(v time.Time) *time.Time {
	return &v
}

func monthsAgo(n int) *time.Time {
	return timePtr(testNow.AddDate(0, -n, 0))
}

// fullStartup has data for every dimension.
func fullStartup() models.Startup {
	return models.Startup{
		ID:         "startup-1",
		Name:       "PayFlow",
		Stage:      "Seed",
		Industry:   "Fintech",
		Geography:  "US",
		FundingAsk: floatPtr(500000),
		TeamSummary: &models.TeamSummary{
			Size:               intPtr(3),
			AvgExperienceYears: floatPtr(8),
			PriorExits:         intPtr(1),
			TechnicalCofounder: boolPtr(true),
			Education:          []string{"MBA"},
		},
		TractionSignals: &models.TractionSignals{
			MonthlyRevenue: floatPtr(20000),
			Customers:      intPtr(15),
			Description:    "Paying customers with recurring revenue",
		},
		GrowthRate:   floatPtr(0.2),
		RiskFactors:  []string{"regulatory"},
		Needs:        []string{"fundraising"},
		Competitors:  []string{"RivalPay"},
		LastFundedAt: monthsAgo(14),
	}
}

// fullInvestor has data for every dimension.
func fullInvestor() models.Investor {
	return models.Investor{
		ID:                  "investor-1",
		Name:                "Northwind Ventures",
		InvestorType:        "VC",
		AcceptedStages:      []string{"seed"},
		PreferredIndustries: []string{"fintech"},
		GeographicFocus:     []string{"us"},
		MinInvestmentAmount: floatPtr(250000),
		MaxInvestmentAmount: floatPtr(1000000),
		LeadInvestments:     boolPtr(true),
		ValueAdd:            []string{"fundraising-support"},
		RiskTolerance:       "high",
		InvestmentsPerYear:  intPtr(10),
		LastInvestmentAt:    monthsAgo(2),
		NotableInvestments: []models.NotableInvestment{
			{Company: "Ledgerly", Industry: "Fintech", Stage: "seed"},
		},
	}
}

// seedFintechPair is the minimal seed/fintech scenario: only stage, industry and check size are known.
func seedFintechPair() (models.Startup, models.Investor) {
	s := models.Startup{
		ID:         "startup-seed",
		Stage:      "seed",
		Industry:   "fintech",
		FundingAsk: floatPtr(500000),
	}
	inv := models.Investor{
		ID:                  "investor-seed",
		AcceptedStages:      []string{"seed"},
		PreferredIndustries: []string{"fintech"},
		MinInvestmentAmount: floatPtr(250000),
		MaxInvestmentAmount: floatPtr(1000000),
		LeadInvestments:     boolPtr(true),
		ValueAdd:            []string{"fundraising-support"},
	}
	return s, inv
}

func mustNormalize(s models.Startup, inv models.Investor) (*StartupFeatures, *InvestorFeatures) {
	sf, err := NormalizeStartup(s)
	if err != nil {
		panic(err)
	}
	inf, err := NormalizeInvestor(inv)
	if err != nil {
		panic(err)
	}
	return sf, inf
}

func allPresent(score int) map[Dimension]DimensionScore {
	out := make(map[Dimension]DimensionScore, len(AllDimensions))
	for _, d := range AllDimensions {
		out[d] = DimensionScore{Score: score, Present: true}
	}
	return out
}
