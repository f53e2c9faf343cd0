package rankmatches

type Input struct {
	StartupID     string `json:"startupId"`
	Limit         int    `json:"limit,omitempty"`
	MinScore      int    `json:"minScore,omitempty"`
	MarkPresented bool   `json:"markPresented,omitempty"`
}

type Output struct {
	StartupID string        `json:"startupId"`
	Matches   []RankedMatch `json:"matches"`
	Total     int           `json:"total"`
}

type RankedMatch struct {
	Rank               int      `json:"rank"`
	MatchID            string   `json:"matchId"`
	InvestorID         string   `json:"investorId"`
	OverallScore       int      `json:"overallScore"`
	Confidence         float64  `json:"confidence"`
	SuccessProbability float64  `json:"successProbability"`
	ExpectedOutcome    string   `json:"expectedOutcome"`
	RecommendedAction  string   `json:"recommendedAction"`
	Status             string   `json:"status"`
	Strengths          []string `json:"strengths"`
}
