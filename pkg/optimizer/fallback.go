package optimizer

import (
	"fmt"
	"math"
	"strings"
)

// maxImprovements caps the improvements list on every path.
const maxImprovements = 5

const fallbackTemplate = `Task: %s

Instructions:
%s

Please provide a detailed response that:
1. Directly addresses the stated purpose
2. Is clear and well-structured
3. Includes specific examples where relevant
4. Follows best practices for the given task

Output:`

var fallbackImprovements = []string{
	"Added clear task definition",
	"Structured the instructions for clarity",
	"Specified output requirements",
	"Included guidance for quality response",
}

const fallbackExplanation = "Applied template-based optimization to structure the prompt more effectively. " +
	"The optimized version provides clearer context and expectations for better results."

var defaultImprovements = []string{
	"Made the prompt more specific and actionable",
	"Added clarity to expected output format",
	"Improved instruction structure",
}

var bulletPrefixes = []string{"- ", "* ", "• ", "1. ", "2. ", "3. ", "4. ", "5. "}

// fallbackResult is the deterministic template optimization used when the
// framework path fails.
func fallbackResult(original, purpose string) *Result {
	return &Result{
		OptimizedPrompt: fmt.Sprintf(fallbackTemplate, purpose, original),
		Improvements:    append([]string(nil), fallbackImprovements...),
		Explanation:     fallbackExplanation,
		FallbackUsed:    true,
	}
}

// ParseImprovements turns raw improvement text into a cleaned list: one
// improvement per line, bullet and number prefixes stripped, capped at five.
// Empty input yields a default list rather than none.
func ParseImprovements(text string) []string {
	var improvements []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, prefix := range bulletPrefixes {
			if strings.HasPrefix(line, prefix) {
				line = strings.TrimSpace(line[len(prefix):])
				break
			}
		}
		if line != "" {
			improvements = append(improvements, line)
		}
	}

	if len(improvements) == 0 {
		return append([]string(nil), defaultImprovements...)
	}
	if len(improvements) > maxImprovements {
		improvements = improvements[:maxImprovements]
	}
	return improvements
}

// explain synthesizes a short explanation from the length delta and the
// leading improvements.
func explain(original, optimized string, improvements []string) string {
	var b strings.Builder
	b.WriteString("The prompt has been optimized to enhance clarity and effectiveness. ")

	switch {
	case len(optimized) > len(original):
		b.WriteString("Additional context and specificity were added to guide better responses. ")
	case len(optimized) < len(original):
		b.WriteString("The prompt was streamlined for conciseness while maintaining clarity. ")
	}

	if len(improvements) > 0 {
		head := improvements
		if len(head) > 3 {
			head = head[:3]
		}
		b.WriteString("Key improvements include: ")
		b.WriteString(strings.Join(head, ", "))
		b.WriteString(". ")
	}

	b.WriteString("These changes should result in more accurate and relevant outputs.")
	return b.String()
}

// OptimizationScore is a cheap heuristic score in [0,1] for how much an
// optimization improved on the original: rewarded for differing from the
// original, for landing in a reasonable length band, and for added structure.
func OptimizationScore(original, optimized string) float64 {
	if strings.TrimSpace(optimized) == "" {
		return 0
	}

	score := 0.0
	if strings.TrimSpace(optimized) != strings.TrimSpace(original) {
		score += 0.3
	}

	originalWords := len(strings.Fields(original))
	if originalWords == 0 {
		originalWords = 1
	}
	ratio := float64(len(strings.Fields(optimized))) / float64(originalWords)
	switch {
	case ratio >= 1.0 && ratio <= 2.5:
		score += 0.3
	case ratio >= 0.8 && ratio < 1.0:
		score += 0.2
	}

	structureMarkers := []string{"\n", ":", "-", "1.", "2.", "Step", "must", "should"}
	structureCount := 0
	for _, marker := range structureMarkers {
		if strings.Contains(optimized, marker) {
			structureCount++
		}
	}
	score += math.Min(0.4, float64(structureCount)*0.05)

	return math.Min(1.0, score)
}
