package optimizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/teilomillet/gollm"
	gollmopt "github.com/teilomillet/gollm/optimizer"
	"github.com/teilomillet/gollm/utils"
)

// frameworkFewShot drives gollm's iterative prompt optimizer when examples
// are present. The framework owns the bootstrapping loop; this only shapes
// its inputs and harvests the final assessment's suggestions as the
// improvements list.
func (e *Engine) frameworkFewShot(ctx context.Context, original, purpose, examplesContext string, iterations int) (string, []string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", nil, err
	}

	taskDesc := purpose
	if examplesContext != "" {
		taskDesc = purpose + "\n\n" + examplesContext
	}

	debugManager := utils.NewDebugManager(e.client.GetLogger(), utils.DebugOptions{})

	po := gollmopt.NewPromptOptimizer(e.client, debugManager, gollm.NewPrompt(original), taskDesc,
		gollmopt.WithCustomMetrics(
			gollmopt.Metric{Name: "Clarity", Description: "How clear and unambiguous the prompt is"},
			gollmopt.Metric{Name: "Specificity", Description: "How specific and detailed the prompt is"},
			gollmopt.Metric{Name: "Effectiveness", Description: "How well the prompt serves its stated purpose"},
		),
		gollmopt.WithRatingSystem("numerical"),
		gollmopt.WithOptimizationGoal(fmt.Sprintf("Optimize the prompt for %s", purpose)),
		gollmopt.WithIterations(iterations),
		gollmopt.WithMemorySize(2),
	)

	optimizedPrompt, err := po.OptimizePrompt(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("framework optimization: %w", err)
	}
	if optimizedPrompt == nil {
		return "", nil, errors.New("framework returned no optimized prompt")
	}

	var improvements []string
	if history := po.GetOptimizationHistory(); len(history) > 0 {
		last := history[len(history)-1]
		for _, s := range last.Assessment.Suggestions {
			improvements = append(improvements, s.Description)
		}
	}

	return optimizedPrompt.Input, improvements, nil
}
