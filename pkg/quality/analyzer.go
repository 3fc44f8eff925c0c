package quality

import (
	"context"
	"strings"

	"github.com/teilomillet/gollm"
	"github.com/teilomillet/gollm/llm"
	"go.uber.org/zap"
)

// maxGradedChars limits how much of the prompt is sent for grading.
const maxGradedChars = 500

// Grader generates text from a prompt. gollm LLM instances satisfy it.
type Grader interface {
	Generate(ctx context.Context, prompt *gollm.Prompt, opts ...llm.GenerateOption) (string, error)
}

// Analyzer scores prompts. With a Grader it asks the model for one-line
// assessments of each dimension; without one, or when the call fails, it
// falls back to heuristics.
type Analyzer struct {
	grader Grader
	logger *zap.Logger
}

// NewAnalyzer creates an Analyzer. A nil grader is valid and yields
// heuristic-only scoring.
func NewAnalyzer(grader Grader, logger *zap.Logger) *Analyzer {
	return &Analyzer{grader: grader, logger: logger}
}

// Analyze scores the given prompt text. All scores are rounded to 2 decimals.
func (a *Analyzer) Analyze(ctx context.Context, prompt string) Metrics {
	if a.grader == nil {
		return heuristicMetrics(prompt).rounded()
	}

	m, err := a.gradedMetrics(ctx, prompt)
	if err != nil {
		a.logger.Warn("model-graded analysis failed, using heuristics", zap.Error(err))
		return heuristicMetrics(prompt).rounded()
	}
	return m.rounded()
}

// gradedMetrics asks the model for a one-line assessment per dimension and
// maps the grading words onto scores.
func (a *Analyzer) gradedMetrics(ctx context.Context, prompt string) (Metrics, error) {
	excerpt := prompt
	if len(excerpt) > maxGradedChars {
		excerpt = excerpt[:maxGradedChars]
	}

	p := gollm.NewPrompt(excerpt,
		gollm.WithDirectives(
			"Assess the quality of the prompt above along four dimensions: clarity, specificity, structure, completeness",
			"For each dimension answer with a single grading word such as excellent, good, fair or poor, plus a short justification",
		),
		gollm.WithOutput("Four lines, one per dimension, formatted as:\nclarity: <assessment>\nspecificity: <assessment>\nstructure: <assessment>\ncompleteness: <assessment>"),
	)

	raw, err := a.grader.Generate(ctx, p)
	if err != nil {
		return Metrics{}, err
	}

	assessments := parseAssessments(raw)
	return Metrics{
		Clarity:      assessmentScore(assessments["clarity"]),
		Specificity:  assessmentScore(assessments["specificity"]),
		Structure:    assessmentScore(assessments["structure"]),
		Completeness: assessmentScore(assessments["completeness"]),
	}, nil
}

// parseAssessments extracts "<dimension>: <assessment>" lines from raw model
// output. Dimension matching is case-insensitive and tolerates list prefixes.
func parseAssessments(raw string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• "))
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		val := strings.TrimSpace(line[idx+1:])
		for _, dim := range []string{"clarity", "specificity", "structure", "completeness"} {
			if strings.Contains(key, dim) {
				out[dim] = val
			}
		}
	}
	return out
}

// assessmentScore converts a grading phrase into a score. Unknown or missing
// assessments land on a neutral 0.5.
func assessmentScore(assessment string) float64 {
	lower := strings.ToLower(assessment)
	switch {
	case containsAny(lower, "excellent", "high", "strong"):
		return 0.9
	case containsAny(lower, "good", "clear", "adequate"):
		return 0.7
	case containsAny(lower, "fair", "moderate", "acceptable"):
		return 0.5
	case containsAny(lower, "poor", "weak", "unclear"):
		return 0.3
	default:
		return 0.5
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
