// internal/models/match.go
package models

import "time"

type MatchStatus string

const (
	MatchStatusActive    MatchStatus = "active"
	MatchStatusPresented MatchStatus = "presented"
	MatchStatusActedUpon MatchStatus = "acted-upon"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusExpired   MatchStatus = "expired"
	MatchStatusArchived  MatchStatus = "archived"
)

// LiveStatuses are the statuses covered by the one-record-per-identity constraint.
var LiveStatuses = []MatchStatus{MatchStatusActive, MatchStatusPresented, MatchStatusActedUpon}

func (s MatchStatus) IsLive() bool {
	for _, live := range LiveStatuses {
		if s == live {
			return true
		}
	}
	return false
}

// IsFrozen reports whether score and status fields may no longer change.
func (s MatchStatus) IsFrozen() bool {
	return s == MatchStatusCompleted || s == MatchStatusArchived
}

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusActive, MatchStatusPresented, MatchStatusActedUpon,
		MatchStatusCompleted, MatchStatusExpired, MatchStatusArchived:
		return true
	}
	return false
}

var statusTransitions = map[MatchStatus][]MatchStatus{
	MatchStatusActive:    {MatchStatusPresented, MatchStatusActedUpon, MatchStatusCompleted, MatchStatusExpired, MatchStatusArchived},
	MatchStatusPresented: {MatchStatusActedUpon, MatchStatusCompleted, MatchStatusExpired, MatchStatusArchived},
	MatchStatusActedUpon: {MatchStatusCompleted, MatchStatusExpired, MatchStatusArchived},
	MatchStatusExpired:   {MatchStatusCompleted, MatchStatusArchived},
}

// CanTransitionTo reports whether a record in status s may move to next.
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	if s.IsFrozen() {
		return false
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type ExpectedOutcome string

const (
	OutcomeHighProbabilityInvestment   ExpectedOutcome = "high-probability-investment"
	OutcomeMediumProbabilityInvestment ExpectedOutcome = "medium-probability-investment"
	OutcomeLowProbabilityInvestment    ExpectedOutcome = "low-probability-investment"
	OutcomeAdvisory                    ExpectedOutcome = "advisory"
	OutcomeNetworkIntroduction         ExpectedOutcome = "network-introduction"
	OutcomeFutureOpportunity           ExpectedOutcome = "future-opportunity"
	OutcomeNoMatch                     ExpectedOutcome = "no-match"
)

type RecommendedAction string

const (
	ActionImmediateIntroduction  RecommendedAction = "immediate-introduction"
	ActionWarmIntroduction       RecommendedAction = "warm-introduction"
	ActionColdOutreach           RecommendedAction = "cold-outreach"
	ActionWaitForTiming          RecommendedAction = "wait-for-timing"
	ActionBuildRelationshipFirst RecommendedAction = "build-relationship-first"
	ActionNoAction               RecommendedAction = "no-action"
)

// ActualOutcome is what really happened after a match was acted upon.
type ActualOutcome string

const (
	ActualInvestment   ActualOutcome = "investment"
	ActualPartnership  ActualOutcome = "partnership"
	ActualAdvisory     ActualOutcome = "advisory"
	ActualIntroduction ActualOutcome = "introduction"
	ActualNoOutcome    ActualOutcome = "no-outcome"
)

// SuccessValue maps an outcome onto [0,1] for historical calibration.
func (o ActualOutcome) SuccessValue() (float64, bool) {
	switch o {
	case ActualInvestment:
		return 1.0, true
	case ActualPartnership:
		return 0.8, true
	case ActualAdvisory:
		return 0.5, true
	case ActualIntroduction:
		return 0.3, true
	case ActualNoOutcome:
		return 0.0, true
	}
	return 0, false
}

type FeedbackSide string

const (
	SideStartup  FeedbackSide = "startup"
	SideInvestor FeedbackSide = "investor"
)

func (s FeedbackSide) Valid() bool {
	return s == SideStartup || s == SideInvestor
}

// Feedback is one side's view of a match. Rating is 1 to 5, or 0 when only notes were given.
type Feedback struct {
	Rating int    `json:"rating,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// Rated reports whether the feedback carries a rating.
func (f Feedback) Rated() bool {
	return f.Rating > 0
}

const DefaultMatchType = "startup-investor"

// MatchRecord is the persisted result of one compatibility computation.
type MatchRecord struct {
	ID                 string            `json:"id"`
	StartupID          string            `json:"startupId"`
	InvestorID         string            `json:"investorId"`
	MatchType          string            `json:"matchType"`
	OverallScore       int               `json:"overallScore"`
	Confidence         float64           `json:"confidence"`
	ScoreBreakdown     map[string]int    `json:"scoreBreakdown"`
	MissingDimensions  []string          `json:"missingDimensions,omitempty"`
	SuccessProbability float64           `json:"successProbability"`
	ExpectedOutcome    ExpectedOutcome   `json:"expectedOutcome"`
	RecommendedAction  RecommendedAction `json:"recommendedAction"`
	Strengths          []string          `json:"strengths,omitempty"`
	Concerns           []string          `json:"concerns,omitempty"`
	Status             MatchStatus       `json:"status"`
	StartupStage       string            `json:"startupStage"`
	StartupIndustry    string            `json:"startupIndustry"`
	CreatedAt          time.Time         `json:"createdAt"`
	LastUpdated        time.Time         `json:"lastUpdated"`
	ExpiresAt          time.Time         `json:"expiresAt"`
	StartupFeedback    *Feedback         `json:"startupFeedback,omitempty"`
	InvestorFeedback   *Feedback         `json:"investorFeedback,omitempty"`
	ActualOutcome      *ActualOutcome    `json:"actualOutcome,omitempty"`
}

// IsExpired reports whether the hard expiry horizon has passed at now.
func (m *MatchRecord) IsExpired(now time.Time) bool {
	return !now.Before(m.ExpiresAt)
}

// IsFresh reports whether the record may be reused without recomputation.
func (m *MatchRecord) IsFresh(now time.Time, window time.Duration) bool {
	return m.Status.IsLive() && !m.IsExpired(now) && now.Sub(m.LastUpdated) < window
}
