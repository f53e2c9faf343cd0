package matching

import (
	"testing"

	"venture-match/internal/models"

	"github.com/stretchr/testify/assert"
)

func aggregateOf(score int, confidence float64) *AggregateResult {
	return &AggregateResult{OverallScore: score, Confidence: confidence, Breakdown: map[Dimension]int{}}
}

func TestPredict_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		name       string
		score      int
		confidence float64
		outcome    models.ExpectedOutcome
		action     models.RecommendedAction
	}{
		{"exactly 80 at 0.7", 80, 0.7, models.OutcomeHighProbabilityInvestment, models.ActionImmediateIntroduction},
		{"79 at 0.7", 79, 0.7, models.OutcomeMediumProbabilityInvestment, models.ActionWarmIntroduction},
		{"80 below confidence", 80, 0.69, models.OutcomeMediumProbabilityInvestment, models.ActionWarmIntroduction},
		{"60", 60, 1, models.OutcomeMediumProbabilityInvestment, models.ActionWarmIntroduction},
		{"59 without value add", 59, 1, models.OutcomeNetworkIntroduction, models.ActionColdOutreach},
		{"20", 20, 1, models.OutcomeFutureOpportunity, models.ActionBuildRelationshipFirst},
		{"19", 19, 1, models.OutcomeNoMatch, models.ActionNoAction},
		{"0", 0, 0.3, models.OutcomeNoMatch, models.ActionNoAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Predict(aggregateOf(tt.score, tt.confidence), nil, nil, DefaultPredictorConfig())
			assert.Equal(t, tt.outcome, p.ExpectedOutcome)
			assert.Equal(t, tt.action, p.RecommendedAction)
		})
	}
}

func TestPredict_AdvisoryDependsOnValueAdd(t *testing.T) {
	agg := aggregateOf(45, 1)

	p := Predict(agg, map[Dimension]DimensionScore{DimensionValueAdd: {Score: 60, Present: true}}, nil, DefaultPredictorConfig())
	assert.Equal(t, models.OutcomeAdvisory, p.ExpectedOutcome)
	assert.Equal(t, models.ActionColdOutreach, p.RecommendedAction)

	p = Predict(agg, map[Dimension]DimensionScore{DimensionValueAdd: {Score: 59, Present: true}}, nil, DefaultPredictorConfig())
	assert.Equal(t, models.OutcomeNetworkIntroduction, p.ExpectedOutcome)
}

func TestPredict_WaitForTiming(t *testing.T) {
	poorTiming := map[Dimension]DimensionScore{DimensionTiming: {Score: 30, Present: true}}

	p := Predict(aggregateOf(70, 0.9), poorTiming, nil, DefaultPredictorConfig())
	assert.Equal(t, models.OutcomeMediumProbabilityInvestment, p.ExpectedOutcome)
	assert.Equal(t, models.ActionWaitForTiming, p.RecommendedAction)

	p = Predict(aggregateOf(70, 0.9), nil, nil, DefaultPredictorConfig())
	assert.Equal(t, models.ActionWarmIntroduction, p.RecommendedAction)

	p = Predict(aggregateOf(90, 0.9), poorTiming, nil, DefaultPredictorConfig())
	assert.Equal(t, models.ActionImmediateIntroduction, p.RecommendedAction)
}

func TestPredict_BaseProbability(t *testing.T) {
	p := Predict(aggregateOf(80, 0.7), nil, nil, DefaultPredictorConfig())

	assert.InDelta(t, 0.56, p.SuccessProbability, 1e-9)
	assert.InDelta(t, 0.56, p.BaseProbability, 1e-9)
	assert.Zero(t, p.BlendWeight)
}

func TestPredict_HistoryBlend(t *testing.T) {
	t.Run("identical neighbours", func(t *testing.T) {
		history := []HistoricalMatch{
			{ID: "a", OverallScore: 60, Outcome: models.ActualInvestment},
			{ID: "b", OverallScore: 60, Outcome: models.ActualInvestment},
			{ID: "c", OverallScore: 60, Outcome: models.ActualInvestment},
		}

		p := Predict(aggregateOf(60, 1), nil, history, DefaultPredictorConfig())

		assert.InDelta(t, 0.30, p.BlendWeight, 1e-9)
		assert.InDelta(t, 0.72, p.SuccessProbability, 1e-9)
		assert.Len(t, p.Neighbours, 3)
	})

	t.Run("nearest three by score", func(t *testing.T) {
		history := []HistoricalMatch{
			{ID: "far-high", OverallScore: 90, Outcome: models.ActualInvestment},
			{ID: "exact", OverallScore: 60, Outcome: models.ActualNoOutcome},
			{ID: "bogus", OverallScore: 60, Outcome: models.ActualOutcome("unknown")},
			{ID: "above", OverallScore: 62, Outcome: models.ActualInvestment},
			{ID: "far-low", OverallScore: 10, Outcome: models.ActualInvestment},
			{ID: "below", OverallScore: 58, Outcome: models.ActualAdvisory},
		}

		p := Predict(aggregateOf(60, 1), nil, history, DefaultPredictorConfig())

		ids := []string{p.Neighbours[0].ID, p.Neighbours[1].ID, p.Neighbours[2].ID}
		assert.Equal(t, []string{"exact", "above", "below"}, ids)
		// empirical 0.5, similarity 0.98667, weight 0.296
		assert.InDelta(t, 0.296, p.BlendWeight, 1e-9)
		assert.InDelta(t, 0.5704, p.SuccessProbability, 1e-9)
	})

	t.Run("too few resolved records", func(t *testing.T) {
		history := []HistoricalMatch{
			{OverallScore: 60, Outcome: models.ActualInvestment},
			{OverallScore: 60, Outcome: models.ActualInvestment},
		}

		p := Predict(aggregateOf(60, 1), nil, history, DefaultPredictorConfig())

		assert.InDelta(t, 0.6, p.SuccessProbability, 1e-9)
		assert.Empty(t, p.Neighbours)
	})

	t.Run("blend cap cannot exceed thirty percent", func(t *testing.T) {
		history := []HistoricalMatch{
			{OverallScore: 50, Outcome: models.ActualNoOutcome},
			{OverallScore: 50, Outcome: models.ActualNoOutcome},
			{OverallScore: 50, Outcome: models.ActualNoOutcome},
		}

		p := Predict(aggregateOf(50, 1), nil, history, PredictorConfig{HistoryK: 3, BlendCap: 0.9})

		assert.InDelta(t, 0.30, p.BlendWeight, 1e-9)
		assert.InDelta(t, 0.35, p.SuccessProbability, 1e-9)
	})
}

func TestPredict_ProbabilityMonotonicInScore(t *testing.T) {
	prev := -1.0
	for score := 0; score <= 100; score++ {
		p := Predict(aggregateOf(score, 0.8), nil, nil, DefaultPredictorConfig())
		assert.GreaterOrEqual(t, p.SuccessProbability, prev)
		assert.GreaterOrEqual(t, p.SuccessProbability, 0.0)
		assert.LessOrEqual(t, p.SuccessProbability, 1.0)
		prev = p.SuccessProbability
	}
}
