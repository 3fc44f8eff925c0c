package quality

import (
	"math"
	"strings"
)

// Keywords that signal a specific, directive prompt.
var specificityKeywords = []string{
	"specific", "exactly", "must", "should", "format", "structure", "please", "provide",
}

// Indicators of list or section formatting.
var structureIndicators = []string{
	"\n", ":", "-", "1.", "2.", "•", "Step",
}

// heuristicMetrics scores a prompt without a model call.
//
// Clarity rewards an average sentence length near 15 words. Specificity and
// structure count keyword and formatting occurrences against a target of 4.
// Completeness saturates at 50 words.
func heuristicMetrics(prompt string) Metrics {
	var m Metrics

	sentences := strings.Split(prompt, ".")
	words := 0
	for _, s := range sentences {
		words += len(strings.Fields(s))
	}
	avgSentenceLen := float64(words) / math.Max(float64(len(sentences)), 1)
	m.Clarity = math.Max(0, math.Min(1, 1-math.Abs(avgSentenceLen-15)/30))

	lower := strings.ToLower(prompt)
	keywordCount := 0
	for _, kw := range specificityKeywords {
		if strings.Contains(lower, kw) {
			keywordCount++
		}
	}
	m.Specificity = math.Min(1, float64(keywordCount)/4)

	indicatorCount := 0
	for _, ind := range structureIndicators {
		if strings.Contains(prompt, ind) {
			indicatorCount++
		}
	}
	m.Structure = math.Min(1, float64(indicatorCount)/4)

	m.Completeness = math.Min(1, float64(len(strings.Fields(prompt)))/50)

	return m
}
