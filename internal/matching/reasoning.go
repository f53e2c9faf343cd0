package matching

import "fmt"

const maxReasons = 3

var (
	strengthLabels = map[Dimension]string{
		DimensionStage:     "investor actively backs this stage",
		DimensionIndustry:  "industry is a core thesis area",
		DimensionGeography: "geography is inside the investor's focus",
		DimensionCheckSize: "funding ask fits the typical check range",
		DimensionTeam:      "experienced, well-rounded founding team",
		DimensionTraction:  "traction is ahead of stage expectations",
		DimensionValueAdd:  "investor capabilities cover the startup's needs",
		DimensionNetwork:   "relevant portfolio network without conflicts",
		DimensionTiming:    "investor is deploying and the round timing fits",
		DimensionRisk:      "risk profile suits the investor's tolerance",
	}
	concernLabels = map[Dimension]string{
		DimensionStage:     "stage is outside the investor's mandate",
		DimensionIndustry:  "industry is not a stated focus",
		DimensionGeography: "geography is outside the investor's focus",
		DimensionCheckSize: "funding ask is outside the check range",
		DimensionTeam:      "team depth is limited",
		DimensionTraction:  "traction lags stage expectations",
		DimensionValueAdd:  "little overlap between needs and investor support",
		DimensionNetwork:   "portfolio overlap is weak or conflicting",
		DimensionTiming:    "timing is unfavourable for a new round",
		DimensionRisk:      "risk factors exceed the investor's tolerance",
	}
)

// Reasoning holds the human-readable highlights of a breakdown.
type Reasoning struct {
	Strengths []string
	Concerns  []string
}

// Explain picks up to three strengths (>= 80) and concerns (< 40) in canonical dimension order.
func Explain(scores map[Dimension]DimensionScore) Reasoning {
	var r Reasoning
	for _, d := range AllDimensions {
		ds, ok := scores[d]
		if !ok || !ds.Present {
			continue
		}
		switch {
		case ds.Score >= 80 && len(r.Strengths) < maxReasons:
			r.Strengths = append(r.Strengths, fmt.Sprintf("%s (%d)", strengthLabels[d], ds.Score))
		case ds.Score < 40 && len(r.Concerns) < maxReasons:
			r.Concerns = append(r.Concerns, fmt.Sprintf("%s (%d)", concernLabels[d], ds.Score))
		}
	}
	return r
}
