package submitmatchfeedback

type Input struct {
	MatchID       string `json:"matchId"`
	Side          string `json:"side"`
	Rating        int    `json:"rating,omitempty"`
	Notes         string `json:"notes,omitempty"`
	ActualOutcome string `json:"actualOutcome,omitempty"`
}

type Output struct {
	MatchID          string `json:"matchId"`
	Status           string `json:"status"`
	FeedbackRecorded bool   `json:"feedbackRecorded"`
	ActualOutcome    string `json:"actualOutcome,omitempty"`
	BothSidesRated   bool   `json:"bothSidesRated"`
}
