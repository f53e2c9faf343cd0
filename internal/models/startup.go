package models

import "time"

// Startup is the raw startup profile document as stored in the document store.
// Optional numeric fields are pointers so that an absent value stays distinguishable
// from a zero value.
type Startup struct {
	ID              string           `json:"id"`
	Name            string           `json:"name,omitempty"`
	Stage           string           `json:"stage"`
	Industry        string           `json:"industry"`
	Geography       string           `json:"geography,omitempty"`
	FundingAsk      *float64         `json:"fundingAsk,omitempty"`
	TeamSummary     *TeamSummary     `json:"teamSummary,omitempty"`
	TractionSignals *TractionSignals `json:"tractionSignals,omitempty"`
	GrowthRate      *float64         `json:"growthRate,omitempty"` // monthly, 0.15 = 15%
	BusinessModel   string           `json:"businessModel,omitempty"`
	RiskFactors     []string         `json:"riskFactors"`
	Strengths       []string         `json:"strengths,omitempty"`
	Needs           []string         `json:"needs,omitempty"`
	Competitors     []string         `json:"competitors,omitempty"`
	LastFundedAt    *time.Time       `json:"lastFundedAt,omitempty"`
}

type TeamSummary struct {
	Size               *int     `json:"size,omitempty"`
	AvgExperienceYears *float64 `json:"avgExperienceYears,omitempty"`
	PriorExits         *int     `json:"priorExits,omitempty"`
	TechnicalCofounder *bool    `json:"technicalCofounder,omitempty"`
	Education          []string `json:"education"`
}

type TractionSignals struct {
	MonthlyRevenue *float64 `json:"monthlyRevenue,omitempty"`
	Customers      *int     `json:"customers,omitempty"`
	Description    string   `json:"description,omitempty"`
}
