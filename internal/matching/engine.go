package matching

import (
	"context"
	"fmt"
	"time"

	"venture-match/internal/models"
)

// HistorySource returns completed matches sharing a startup's stage and industry.
type HistorySource interface {
	ResolvedMatches(ctx context.Context, stage, industry string) ([]HistoricalMatch, error)
}

// Evaluation is the full output of one pass through the pipeline.
type Evaluation struct {
	Startup   *StartupFeatures
	Investor  *InvestorFeatures
	Scores    map[Dimension]DimensionScore
	Aggregate *AggregateResult
	Reasoning Reasoning
	Predicted Prediction
}

// Engine scores startup/investor pairs. It is safe for concurrent use.
type Engine struct {
	weights   Weights
	predictor PredictorConfig
	now       func() time.Time
}

type EngineOption func(*Engine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func WithPredictorConfig(cfg PredictorConfig) EngineOption {
	return func(e *Engine) { e.predictor = cfg }
}

// NewEngine validates weights and returns an Engine.
func NewEngine(weights Weights, opts ...EngineOption) (*Engine, error) {
	if weights == nil {
		weights = DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		weights:   weights,
		predictor: DefaultPredictorConfig(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Weights() Weights {
	out := make(Weights, len(e.weights))
	for d, w := range e.weights {
		out[d] = w
	}
	return out
}

// Score normalizes both documents, scores every dimension and aggregates. It does not predict.
func (e *Engine) Score(startup models.Startup, investor models.Investor) (*Evaluation, error) {
	sf, err := NormalizeStartup(startup)
	if err != nil {
		return nil, err
	}
	inf, err := NormalizeInvestor(investor)
	if err != nil {
		return nil, err
	}

	scores := ScoreDimensions(sf, inf, e.now())
	agg, err := Aggregate(scores, e.weights)
	if err != nil {
		return nil, fmt.Errorf("%w (startup %s, investor %s)", err, sf.ID, inf.ID)
	}
	return &Evaluation{
		Startup:   sf,
		Investor:  inf,
		Scores:    scores,
		Aggregate: agg,
		Reasoning: Explain(scores),
	}, nil
}

// Predict fills in the outcome prediction using the supplied history (may be nil).
func (e *Engine) Predict(ev *Evaluation, history []HistoricalMatch) {
	ev.Predicted = Predict(ev.Aggregate, ev.Scores, history, e.predictor)
}

// Evaluate runs Score and Predict in one call without historical calibration.
func (e *Engine) Evaluate(startup models.Startup, investor models.Investor) (*Evaluation, error) {
	ev, err := e.Score(startup, investor)
	if err != nil {
		return nil, err
	}
	e.Predict(ev, nil)
	return ev, nil
}

// ToRecord builds a new active MatchRecord from an evaluation.
func (ev *Evaluation) ToRecord(id, matchType string, now time.Time, horizon time.Duration) *models.MatchRecord {
	breakdown := make(map[string]int, len(ev.Aggregate.Breakdown))
	for d, s := range ev.Aggregate.Breakdown {
		breakdown[string(d)] = s
	}
	missing := make([]string, 0, len(ev.Aggregate.Missing))
	for _, d := range ev.Aggregate.Missing {
		missing = append(missing, string(d))
	}
	if matchType == "" {
		matchType = models.DefaultMatchType
	}
	return &models.MatchRecord{
		ID:                 id,
		StartupID:          ev.Startup.ID,
		InvestorID:         ev.Investor.ID,
		MatchType:          matchType,
		OverallScore:       ev.Aggregate.OverallScore,
		Confidence:         ev.Aggregate.Confidence,
		ScoreBreakdown:     breakdown,
		MissingDimensions:  missing,
		SuccessProbability: ev.Predicted.SuccessProbability,
		ExpectedOutcome:    ev.Predicted.ExpectedOutcome,
		RecommendedAction:  ev.Predicted.RecommendedAction,
		Strengths:          ev.Reasoning.Strengths,
		Concerns:           ev.Reasoning.Concerns,
		Status:             models.MatchStatusActive,
		StartupStage:       string(ev.Startup.Stage),
		StartupIndustry:    ev.Startup.Industry,
		CreatedAt:          now,
		LastUpdated:        now,
		ExpiresAt:          now.Add(horizon),
	}
}
