package matching

import (
	"fmt"
	"math"
)

// Weights is the tunable per-dimension weight table. It must cover every dimension.
type Weights map[Dimension]float64

// DefaultWeights returns the base weight table. Weights are relative: scores and confidence
// are normalised by the table total, which for the defaults is 110.
func DefaultWeights() Weights {
	return Weights{
		DimensionStage:     15,
		DimensionIndustry:  15,
		DimensionGeography: 10,
		DimensionCheckSize: 15,
		DimensionTeam:      10,
		DimensionTraction:  10,
		DimensionValueAdd:  10,
		DimensionNetwork:   10,
		DimensionTiming:    5,
		DimensionRisk:      10,
	}
}

func (w Weights) Validate() error {
	total := 0.0
	for _, d := range AllDimensions {
		v, ok := w[d]
		if !ok {
			return fmt.Errorf("weight for dimension %q is missing", d)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight for dimension %q must be a non-negative number, got %v", d, v)
		}
		total += v
	}
	if len(w) != len(AllDimensions) {
		return fmt.Errorf("weight table has %d entries, expected %d", len(w), len(AllDimensions))
	}
	if total <= 0 {
		return fmt.Errorf("weights must have a positive total, got %v", total)
	}
	return nil
}

// WeightsWithOverrides applies named overrides on top of the defaults.
func WeightsWithOverrides(overrides map[string]float64) (Weights, error) {
	w := DefaultWeights()
	for name, v := range overrides {
		d := Dimension(name)
		if _, ok := w[d]; !ok {
			return nil, fmt.Errorf("unknown dimension %q in weight overrides", name)
		}
		w[d] = v
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w Weights) total() float64 {
	sum := 0.0
	for _, d := range AllDimensions {
		sum += w[d]
	}
	return sum
}

// AggregateResult is the weighted combination of the dimension scores.
type AggregateResult struct {
	OverallScore int
	Confidence   float64
	Breakdown    map[Dimension]int
	Missing      []Dimension
}

// Aggregate renormalises the weighted sum over dimensions that had data. Confidence is
// the share of total weight backed by data.
func Aggregate(scores map[Dimension]DimensionScore, w Weights) (*AggregateResult, error) {
	res := &AggregateResult{Breakdown: make(map[Dimension]int, len(AllDimensions))}
	weighted, covered := 0.0, 0.0
	for _, d := range AllDimensions {
		ds, ok := scores[d]
		if !ok || !ds.Present {
			res.Missing = append(res.Missing, d)
			continue
		}
		score := clampScore(float64(ds.Score))
		res.Breakdown[d] = score
		weighted += w[d] * float64(score)
		covered += w[d]
	}

	total := w.total()
	if covered <= 0 || total <= 0 {
		return nil, fmt.Errorf("%w: no weighted dimension had data (missing %v)", ErrInsufficientData, res.Missing)
	}
	res.OverallScore = clampScore(weighted / covered)
	res.Confidence = math.Min(1, covered/total)
	return res, nil
}
