package matching

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeights_Validate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())

	tests := []struct {
		name   string
		mutate func(Weights)
	}{
		{"missing dimension", func(w Weights) { delete(w, DimensionRisk) }},
		{"negative weight", func(w Weights) { w[DimensionTeam] = -1 }},
		{"not a number", func(w Weights) { w[DimensionTeam] = math.NaN() }},
		{"unknown dimension", func(w Weights) { w[Dimension("luck")] = 5 }},
		{"zero total", func(w Weights) {
			for d := range w {
				w[d] = 0
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := DefaultWeights()
			tt.mutate(w)
			assert.Error(t, w.Validate())
		})
	}
}

func TestAggregate_AllPresent(t *testing.T) {
	scores := allPresent(100)
	scores[DimensionStage] = DimensionScore{Score: 0, Present: true}

	res, err := Aggregate(scores, DefaultWeights())
	require.NoError(t, err)

	// 95 * 100 / 110
	assert.Equal(t, 86, res.OverallScore)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Empty(t, res.Missing)
	assert.Len(t, res.Breakdown, len(AllDimensions))
	assert.Equal(t, 0, res.Breakdown[DimensionStage])
}

func TestAggregate_RenormalizesOverMissingDimension(t *testing.T) {
	weights := DefaultWeights()
	total := weights.total()

	for _, d := range AllDimensions {
		t.Run(string(d), func(t *testing.T) {
			scores := allPresent(70)
			scores[d] = DimensionScore{}

			res, err := Aggregate(scores, weights)
			require.NoError(t, err)

			assert.InDelta(t, (total-weights[d])/total, res.Confidence, 1e-9)
			assert.Equal(t, 70, res.OverallScore)
			assert.Equal(t, []Dimension{d}, res.Missing)
			assert.NotContains(t, res.Breakdown, d)
		})
	}
}

func TestAggregate_InsufficientData(t *testing.T) {
	scores := make(map[Dimension]DimensionScore)
	for _, d := range AllDimensions {
		scores[d] = DimensionScore{}
	}

	res, err := Aggregate(scores, DefaultWeights())

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestAggregate_ZeroWeightCoverageIsInsufficient(t *testing.T) {
	w := DefaultWeights()
	w[DimensionTiming] = 0
	w[DimensionStage] = 20
	scores := map[Dimension]DimensionScore{
		DimensionTiming: {Score: 90, Present: true},
	}

	_, err := Aggregate(scores, w)

	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestAggregate_ConfidenceNonIncreasingAsDataDisappears(t *testing.T) {
	scores := allPresent(60)
	prev := 1.0
	for _, d := range AllDimensions[:len(AllDimensions)-1] {
		scores[d] = DimensionScore{}
		res, err := Aggregate(scores, DefaultWeights())
		require.NoError(t, err)
		assert.LessOrEqual(t, res.Confidence, prev)
		prev = res.Confidence
	}
}

func TestAggregate_Monotonic(t *testing.T) {
	base := map[Dimension]DimensionScore{
		DimensionStage:     {Score: 100, Present: true},
		DimensionIndustry:  {Score: 0, Present: true},
		DimensionGeography: {Score: 30, Present: true},
		DimensionCheckSize: {Score: 55, Present: true},
		DimensionTeam:      {Score: 80, Present: true},
		DimensionTraction:  {},
		DimensionValueAdd:  {Score: 10, Present: true},
		DimensionNetwork:   {Score: 65, Present: true},
		DimensionTiming:    {Score: 45, Present: true},
		DimensionRisk:      {},
	}

	for _, d := range AllDimensions {
		if !base[d].Present {
			continue
		}
		t.Run(string(d), func(t *testing.T) {
			scores := make(map[Dimension]DimensionScore, len(base))
			for k, v := range base {
				scores[k] = v
			}
			prev := -1
			for s := 0; s <= 100; s += 5 {
				scores[d] = DimensionScore{Score: s, Present: true}
				res, err := Aggregate(scores, DefaultWeights())
				require.NoError(t, err)
				assert.GreaterOrEqual(t, res.OverallScore, prev)
				prev = res.OverallScore
			}
		})
	}
}

func TestAggregate_ClampsOutOfRangeInput(t *testing.T) {
	scores := allPresent(100)
	scores[DimensionTeam] = DimensionScore{Score: 250, Present: true}
	scores[DimensionRisk] = DimensionScore{Score: -40, Present: true}

	res, err := Aggregate(scores, DefaultWeights())
	require.NoError(t, err)

	assert.Equal(t, 100, res.Breakdown[DimensionTeam])
	assert.Equal(t, 0, res.Breakdown[DimensionRisk])
	assert.GreaterOrEqual(t, res.OverallScore, 0)
	assert.LessOrEqual(t, res.OverallScore, 100)
}

func TestWeightsWithOverrides(t *testing.T) {
	w, err := WeightsWithOverrides(map[string]float64{"timing": 10, "risk": 0})
	require.NoError(t, err)
	assert.Equal(t, 10.0, w[DimensionTiming])
	assert.Equal(t, 0.0, w[DimensionRisk])
	assert.Equal(t, 15.0, w[DimensionStage])

	_, err = WeightsWithOverrides(map[string]float64{"vibes": 5})
	assert.ErrorContains(t, err, "unknown dimension")

	_, err = WeightsWithOverrides(map[string]float64{"team": -1})
	assert.Error(t, err)

	w, err = WeightsWithOverrides(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), w)
}
