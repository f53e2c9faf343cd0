package computematch

import "time"

type Input struct {
	StartupID        string `json:"startupId"`
	InvestorID       string `json:"investorId"`
	MatchType        string `json:"matchType,omitempty"`
	ForceRecalculate bool   `json:"forceRecalculate,omitempty"`
	ReadOnly         bool   `json:"readOnly,omitempty"`
}

// Output is the job result. Found is false only for a read-only lookup with no live record,
// in which case every other field is empty.
type Output struct {
	Found              bool           `json:"found"`
	MatchID            string         `json:"matchId"`
	OverallScore       int            `json:"overallScore"`
	Confidence         float64        `json:"confidence"`
	ScoreBreakdown     map[string]int `json:"scoreBreakdown"`
	SuccessProbability float64        `json:"successProbability"`
	ExpectedOutcome    string         `json:"expectedOutcome"`
	RecommendedAction  string         `json:"recommendedAction"`
	Strengths          []string       `json:"strengths"`
	Concerns           []string       `json:"concerns"`
	Status             string         `json:"status"`
	Source             string         `json:"source"`
	ArchivedRecords    int64          `json:"archivedRecords"`
	ExpiresAt          *time.Time     `json:"expiresAt,omitempty"`
}
