// Package optimizer turns a rough prompt plus a stated purpose into an
// optimized prompt with a list of improvements. The heavy lifting is
// delegated to the gollm prompting framework; every framework failure
// degrades to a deterministic template fallback so the operation never
// returns an unusable result for valid input.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/teilomillet/gollm"
	"github.com/teilomillet/gollm/llm"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/promptforge/promptforge/pkg/api"
)

const (
	// maxExamples caps how many few-shot examples are forwarded.
	maxExamples = 5

	// maxBootstrapIterations caps framework optimization rounds on the
	// few-shot path.
	maxBootstrapIterations = 3
)

// LLM generates text from a prompt. gollm clients satisfy it; tests stub it.
type LLM interface {
	Generate(ctx context.Context, prompt *gollm.Prompt, opts ...llm.GenerateOption) (string, error)
}

// fewShotFunc runs the framework's iterative optimizer. Split out so tests
// can replace the framework round-trip.
type fewShotFunc func(ctx context.Context, original, purpose, examplesContext string, iterations int) (string, []string, error)

// Config holds the upstream model configuration for an Engine.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	Temperature float64

	// Timeout bounds a single framework call. LLM calls can be slow.
	Timeout time.Duration

	MaxRetries int
	RetryDelay time.Duration

	// RequestsPerSecond limits outbound framework calls. Zero means the
	// default of 2.
	RequestsPerSecond float64
}

// Result is the outcome of one optimization.
type Result struct {
	OptimizedPrompt string
	Improvements    []string
	Explanation     string

	// FallbackUsed is set when the template fallback produced the output.
	FallbackUsed bool
}

// Engine orchestrates prompt optimization against a gollm client.
type Engine struct {
	llm     LLM
	client  gollm.LLM
	fewshot fewShotFunc
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates an Engine backed by a real gollm client.
func New(cfg Config, logger *zap.Logger) (*Engine, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing API key")
	}
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 2
	}

	client, err := gollm.NewLLM(
		gollm.SetProvider(cfg.Provider),
		gollm.SetModel(cfg.Model),
		gollm.SetAPIKey(cfg.APIKey),
		gollm.SetTemperature(cfg.Temperature),
		gollm.SetTimeout(cfg.Timeout),
		gollm.SetMaxRetries(cfg.MaxRetries),
		gollm.SetRetryDelay(cfg.RetryDelay),
		gollm.SetLogLevel(gollm.LogLevelWarn),
	)
	if err != nil {
		return nil, fmt.Errorf("create gollm client: %w", err)
	}

	e := &Engine{
		llm:     client,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 4),
		logger:  logger,
	}
	e.fewshot = e.frameworkFewShot
	return e, nil
}

// Client exposes the underlying generator, e.g. for quality grading.
func (e *Engine) Client() LLM {
	return e.llm
}

// Optimize produces an optimized prompt for the given original and purpose.
// Examples beyond the first five are ignored. Errors from the framework are
// absorbed by the template fallback; Optimize only fails on invalid input or
// a cancelled context.
func (e *Engine) Optimize(ctx context.Context, original, purpose string, examples []api.Example) (*Result, error) {
	if strings.TrimSpace(original) == "" {
		return nil, errors.New("original prompt is empty")
	}
	if strings.TrimSpace(purpose) == "" {
		return nil, errors.New("purpose is empty")
	}

	if len(examples) > maxExamples {
		examples = examples[:maxExamples]
	}
	examplesContext := ExamplesContext(examples)

	var (
		optimized       string
		rawImprovements []string
		err             error
	)

	if len(examples) > 0 && e.fewshot != nil {
		iterations := len(examples)
		if iterations > maxBootstrapIterations {
			iterations = maxBootstrapIterations
		}
		optimized, rawImprovements, err = e.fewshot(ctx, original, purpose, examplesContext, iterations)
		if err != nil {
			e.logger.Warn("few-shot optimization failed, falling back to single pass", zap.Error(err))
			optimized, rawImprovements = "", nil
		}
	}

	if optimized == "" {
		optimized, rawImprovements, err = e.singlePass(ctx, original, purpose, examplesContext)
	}

	if err == nil {
		err = e.checkOptimized(original, optimized)
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("optimization failed, using template fallback", zap.Error(err))
		return fallbackResult(original, purpose), nil
	}

	improvements := ParseImprovements(strings.Join(rawImprovements, "\n"))
	explanation := explain(original, optimized, improvements)

	e.logger.Info("prompt optimized",
		zap.Int("original_words", len(strings.Fields(original))),
		zap.Int("optimized_words", len(strings.Fields(optimized))),
		zap.Float64("score", OptimizationScore(original, optimized)),
	)

	return &Result{
		OptimizedPrompt: optimized,
		Improvements:    improvements,
		Explanation:     explanation,
	}, nil
}

// singlePass is the base path: one framework call that asks for a rewritten
// prompt plus an improvements section, parsed out of the raw completion.
func (e *Engine) singlePass(ctx context.Context, original, purpose, examplesContext string) (string, []string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", nil, err
	}

	p := gollm.NewPrompt(original,
		gollm.WithContext(promptContext(purpose, examplesContext)),
		gollm.WithDirectives(
			"Rewrite the prompt above so it is clearer, more specific, and more effective for its stated purpose",
			"After the rewritten prompt, list the specific improvements you made, one per line, at most five",
		),
		gollm.WithOutput("Optimized Prompt:\n<the rewritten prompt>\n\nImprovements:\n<one improvement per line>"),
	)

	raw, err := e.llm.Generate(ctx, p)
	if err != nil {
		return "", nil, fmt.Errorf("generate: %w", err)
	}

	optimized, improvements := splitSections(raw)
	if strings.TrimSpace(optimized) == "" {
		return "", nil, errors.New("model output contained no optimized prompt")
	}
	return optimized, improvements, nil
}

// checkOptimized enforces the one hard requirement (non-empty output) and
// logs the advisory ones.
func (e *Engine) checkOptimized(original, optimized string) error {
	if strings.TrimSpace(optimized) == "" {
		return errors.New("optimized prompt is empty")
	}
	if strings.TrimSpace(optimized) == strings.TrimSpace(original) {
		e.logger.Info("optimized prompt is identical to the original")
	}
	if len(strings.Fields(optimized))*2 < len(strings.Fields(original)) {
		e.logger.Info("optimized prompt dropped more than half the original length")
	}
	return nil
}

// promptContext assembles the purpose and examples block passed as context.
func promptContext(purpose, examplesContext string) string {
	if examplesContext == "" {
		return "Purpose of the prompt: " + purpose
	}
	return "Purpose of the prompt: " + purpose + "\n\n" + examplesContext
}

// ExamplesContext renders examples into the block forwarded to the model.
// Missing fields render as N/A.
func ExamplesContext(examples []api.Example) string {
	if len(examples) == 0 {
		return ""
	}
	if len(examples) > maxExamples {
		examples = examples[:maxExamples]
	}

	var b strings.Builder
	b.WriteString("Consider these examples:\n")
	for i, ex := range examples {
		input := ex.Input
		if input == "" {
			input = "N/A"
		}
		output := ex.Output
		if output == "" {
			output = "N/A"
		}
		fmt.Fprintf(&b, "Example %d:\n  Input: %s\n  Output: %s\n", i+1, input, output)
	}
	return b.String()
}

var (
	improvementsHeader = regexp.MustCompile(`(?i)improvements:`)
	optimizedLabel     = regexp.MustCompile(`(?i)^optimized prompt:`)
)

// splitSections separates the optimized prompt from the improvements list in
// raw model output. Headers are matched case-insensitively on the raw bytes;
// lowercasing first would shift indices for case-changing multibyte runes.
// A missing header means the whole output is the optimized prompt.
func splitSections(raw string) (string, []string) {
	optimized := raw
	var improvements []string

	if loc := improvementsHeader.FindStringIndex(raw); loc != nil {
		optimized = raw[:loc[0]]
		improvements = strings.Split(raw[loc[1]:], "\n")
	}

	optimized = strings.TrimSpace(optimized)
	optimized = strings.TrimSpace(optimizedLabel.ReplaceAllString(optimized, ""))

	return optimized, improvements
}
