package quality

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teilomillet/gollm"
	gollmllm "github.com/teilomillet/gollm/llm"
	"go.uber.org/zap"
)

type stubGrader struct {
	out string
	err error
}

func (s *stubGrader) Generate(_ context.Context, _ *gollm.Prompt, _ ...gollmllm.GenerateOption) (string, error) {
	return s.out, s.err
}

func TestHeuristicSpecificity(t *testing.T) {
	m := heuristicMetrics("You must provide the exact format, please be specific.")
	assert.Equal(t, 1.0, m.Specificity)

	m = heuristicMetrics("tell me about dogs")
	assert.Equal(t, 0.0, m.Specificity)
}

func TestHeuristicStructure(t *testing.T) {
	structured := "Steps:\n1. First\n2. Second\n- note"
	m := heuristicMetrics(structured)
	assert.Equal(t, 1.0, m.Structure)

	m = heuristicMetrics("one flat sentence with no markers")
	assert.Equal(t, 0.0, m.Structure)
}

func TestHeuristicCompleteness(t *testing.T) {
	m := heuristicMetrics("short prompt")
	assert.InDelta(t, 2.0/50.0, m.Completeness, 1e-9)

	long := ""
	for i := 0; i < 60; i++ {
		long += "word "
	}
	m = heuristicMetrics(long)
	assert.Equal(t, 1.0, m.Completeness)
}

func TestHeuristicClarityPrefersMediumSentences(t *testing.T) {
	// Fifteen words per sentence is the sweet spot.
	ideal := "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen"
	terse := "hi"
	assert.Greater(t, heuristicMetrics(ideal).Clarity, heuristicMetrics(terse).Clarity)
}

func TestAssessmentScore(t *testing.T) {
	assert.Equal(t, 0.9, assessmentScore("Excellent, very strong wording"))
	assert.Equal(t, 0.7, assessmentScore("good overall"))
	assert.Equal(t, 0.5, assessmentScore("fairly moderate"))
	assert.Equal(t, 0.3, assessmentScore("poor and unclear"))
	assert.Equal(t, 0.5, assessmentScore("no grading word here"))
	assert.Equal(t, 0.5, assessmentScore(""))
}

func TestParseAssessments(t *testing.T) {
	raw := "clarity: excellent phrasing\n- Specificity: poor\nStructure assessment: good\nnonsense line\ncompleteness: fair"
	got := parseAssessments(raw)
	assert.Equal(t, "excellent phrasing", got["clarity"])
	assert.Equal(t, "poor", got["specificity"])
	assert.Equal(t, "good", got["structure"])
	assert.Equal(t, "fair", got["completeness"])
}

func TestAnalyzeGraded(t *testing.T) {
	grader := &stubGrader{out: "clarity: excellent\nspecificity: good\nstructure: poor\ncompleteness: fair"}
	a := NewAnalyzer(grader, zap.NewNop())

	m := a.Analyze(context.Background(), "Write a haiku about autumn.")
	assert.Equal(t, 0.9, m.Clarity)
	assert.Equal(t, 0.7, m.Specificity)
	assert.Equal(t, 0.3, m.Structure)
	assert.Equal(t, 0.5, m.Completeness)
}

func TestAnalyzeFallsBackOnGraderError(t *testing.T) {
	grader := &stubGrader{err: errors.New("upstream down")}
	a := NewAnalyzer(grader, zap.NewNop())

	prompt := "You must provide the exact format, please be specific."
	got := a.Analyze(context.Background(), prompt)
	want := heuristicMetrics(prompt).rounded()
	assert.Equal(t, want, got)
}

func TestAnalyzeNilGraderUsesHeuristics(t *testing.T) {
	a := NewAnalyzer(nil, zap.NewNop())
	got := a.Analyze(context.Background(), "short prompt")
	want := heuristicMetrics("short prompt").rounded()
	assert.Equal(t, want, got)
}

func TestOverall(t *testing.T) {
	m := Metrics{Clarity: 0.9, Specificity: 0.7, Structure: 0.3, Completeness: 0.5}
	assert.Equal(t, 0.6, m.Overall())
}
