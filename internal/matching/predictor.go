package matching

import (
	"math"
	"sort"

	"venture-match/internal/models"
)

const (
	DefaultHistoryK        = 3
	DefaultHistoryBlendCap = 0.30
)

// HistoricalMatch is a resolved past match used for calibration.
type HistoricalMatch struct {
	ID           string
	OverallScore int
	Outcome      models.ActualOutcome
}

type PredictorConfig struct {
	HistoryK int
	BlendCap float64
}

func DefaultPredictorConfig() PredictorConfig {
	return PredictorConfig{HistoryK: DefaultHistoryK, BlendCap: DefaultHistoryBlendCap}
}

// Prediction is the outcome estimate for a scored pair.
type Prediction struct {
	SuccessProbability float64
	BaseProbability    float64
	ExpectedOutcome    models.ExpectedOutcome
	RecommendedAction  models.RecommendedAction
	Neighbours         []HistoricalMatch
	BlendWeight        float64
}

// Predict applies the ordered threshold rules to the aggregate. history may be nil.
func Predict(agg *AggregateResult, scores map[Dimension]DimensionScore, history []HistoricalMatch, cfg PredictorConfig) Prediction {
	p := Prediction{}
	score := agg.OverallScore

	switch {
	case score >= 80 && agg.Confidence >= 0.7:
		p.ExpectedOutcome = models.OutcomeHighProbabilityInvestment
		p.RecommendedAction = models.ActionImmediateIntroduction
	case score >= 60:
		p.ExpectedOutcome = models.OutcomeMediumProbabilityInvestment
		p.RecommendedAction = models.ActionWarmIntroduction
		if timing := scores[DimensionTiming]; timing.Present && timing.Score < 40 {
			p.RecommendedAction = models.ActionWaitForTiming
		}
	case score >= 40:
		p.ExpectedOutcome = models.OutcomeNetworkIntroduction
		if va := scores[DimensionValueAdd]; va.Present && va.Score >= 60 {
			p.ExpectedOutcome = models.OutcomeAdvisory
		}
		p.RecommendedAction = models.ActionColdOutreach
	case score >= 20:
		p.ExpectedOutcome = models.OutcomeFutureOpportunity
		p.RecommendedAction = models.ActionBuildRelationshipFirst
	default:
		p.ExpectedOutcome = models.OutcomeNoMatch
		p.RecommendedAction = models.ActionNoAction
	}

	p.BaseProbability = clampUnit(float64(score) / 100 * agg.Confidence)
	p.SuccessProbability = p.BaseProbability

	k := cfg.HistoryK
	if k <= 0 {
		k = DefaultHistoryK
	}
	neighbours := nearestResolved(history, score, k)
	if len(neighbours) < k {
		return p
	}

	empirical, similarity := 0.0, 0.0
	for _, n := range neighbours {
		v, _ := n.Outcome.SuccessValue()
		empirical += v
		similarity += 1 - math.Abs(float64(n.OverallScore-score))/100
	}
	empirical /= float64(len(neighbours))
	similarity /= float64(len(neighbours))

	blendCap := math.Min(math.Max(cfg.BlendCap, 0), DefaultHistoryBlendCap)
	p.BlendWeight = blendCap * similarity
	p.SuccessProbability = clampUnit((1-p.BlendWeight)*p.BaseProbability + p.BlendWeight*empirical)
	p.Neighbours = neighbours
	return p
}

// nearestResolved picks the k records closest in overall score; input order breaks ties.
func nearestResolved(history []HistoricalMatch, score, k int) []HistoricalMatch {
	candidates := make([]HistoricalMatch, 0, len(history))
	for _, h := range history {
		if _, ok := h.Outcome.SuccessValue(); ok {
			candidates = append(candidates, h)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return absInt(candidates[i].OverallScore-score) < absInt(candidates[j].OverallScore-score)
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
