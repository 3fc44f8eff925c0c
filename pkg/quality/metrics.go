// Package quality scores prompt text on clarity, specificity, structure and
// completeness. Scoring prefers a model-graded assessment and falls back to
// keyword and length heuristics when no model is available or the call fails.
package quality

import "math"

// Metrics holds the four prompt quality scores, each in [0,1].
type Metrics struct {
	Clarity      float64 `json:"clarity_score"`
	Specificity  float64 `json:"specificity_score"`
	Structure    float64 `json:"structure_score"`
	Completeness float64 `json:"completeness_score"`
}

// Overall returns the mean of the four scores, rounded to 2 decimals.
func (m Metrics) Overall() float64 {
	return round2((m.Clarity + m.Specificity + m.Structure + m.Completeness) / 4)
}

// rounded returns a copy with every score rounded to 2 decimals.
func (m Metrics) rounded() Metrics {
	return Metrics{
		Clarity:      round2(m.Clarity),
		Specificity:  round2(m.Specificity),
		Structure:    round2(m.Structure),
		Completeness: round2(m.Completeness),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
