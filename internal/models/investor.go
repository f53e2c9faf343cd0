package models

import "time"

// Investor is the raw investor profile document as stored in the document store.
type Investor struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name,omitempty"`
	InvestorType         string              `json:"investorType,omitempty"`
	AcceptedStages       []string            `json:"acceptedStages"`
	PreferredIndustries  []string            `json:"preferredIndustries"`
	GeographicFocus      []string            `json:"geographicFocus,omitempty"`
	MinInvestmentAmount  *float64            `json:"minInvestmentAmount,omitempty"`
	MaxInvestmentAmount  *float64            `json:"maxInvestmentAmount,omitempty"`
	TypicalCheckSize     *float64            `json:"typicalCheckSize,omitempty"`
	LeadInvestments      *bool               `json:"leadInvestments,omitempty"`
	ValueAdd             []string            `json:"valueAdd,omitempty"`
	PortfolioSize        *int                `json:"portfolioSize,omitempty"`
	InvestmentPhilosophy string              `json:"investmentPhilosophy,omitempty"`
	RiskTolerance        string              `json:"riskTolerance,omitempty"` // low | medium | high
	InvestmentsPerYear   *int                `json:"investmentsPerYear,omitempty"`
	LastInvestmentAt     *time.Time          `json:"lastInvestmentAt,omitempty"`
	NotableInvestments   []NotableInvestment `json:"notableInvestments,omitempty"`
}

type NotableInvestment struct {
	Company  string `json:"company"`
	Industry string `json:"industry,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
}
