package refinecmder

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/promptforge/promptforge/pkg/api"
	"github.com/promptforge/promptforge/pkg/logger"
	"github.com/promptforge/promptforge/pkg/optimizer"
	"github.com/promptforge/promptforge/pkg/quality"
	"github.com/promptforge/promptforge/server"
)

const refineLongDesc string = `Optimize a single prompt from the command line.

Sends the prompt through the optimization engine and prints the
optimized prompt, the improvements made and quality scores.
Requires an API key (config file or OPENAI_API_KEY).

Examples:
  promptforge refine --purpose "code review" "look at my PR"
  promptforge refine --purpose "poetry generation" --json "write a haiku"`

const refineShortDesc string = "Optimize a single prompt"

type refineCommander struct {
	configPath string
	purpose    string
	asJSON     bool
}

func NewRefineCmd() *cobra.Command {
	cmder := &refineCommander{}

	cmd := &cobra.Command{
		Use:   "refine <prompt>",
		Short: refineShortDesc,
		Long:  refineLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to TOML config file")
	cmd.Flags().StringVarP(&cmder.purpose, "purpose", "p", "general use", "What the prompt is meant to achieve")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print the full response as JSON")

	return cmd
}

func (c *refineCommander) run(cmd *cobra.Command, prompt string) error {
	config, err := server.Load(c.configPath)
	if err != nil {
		return err
	}
	if config.APIKey == "" {
		return fmt.Errorf("no API key configured, set OPENAI_API_KEY or api_key in the config file")
	}

	log := logger.NewLogger(config.Debug)
	defer log.Sync()

	engine, err := optimizer.New(optimizer.Config{
		Provider:    config.Provider,
		Model:       config.Model,
		APIKey:      config.APIKey,
		Temperature: config.Temperature,
	}, log)
	if err != nil {
		return err
	}

	result, err := engine.Optimize(cmd.Context(), prompt, c.purpose, nil)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	analyzer := quality.NewAnalyzer(engine.Client(), log)
	metrics := analyzer.Analyze(cmd.Context(), result.OptimizedPrompt)

	resp := api.OptimizeResponse{
		OptimizedPrompt: result.OptimizedPrompt,
		Improvements:    result.Improvements,
		Explanation:     result.Explanation,
		Metrics:         metrics,
		OriginalPrompt:  prompt,
	}

	return writeResult(cmd.OutOrStdout(), resp, c.asJSON)
}

// writeResult renders a response either as indented JSON or as a readable
// text report.
func writeResult(w io.Writer, resp api.OptimizeResponse, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("could not marshal response: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintf(w, "Optimized prompt:\n\n%s\n\n", resp.OptimizedPrompt)

	if len(resp.Improvements) > 0 {
		fmt.Fprintln(w, "Improvements:")
		for _, imp := range resp.Improvements {
			fmt.Fprintf(w, "  - %s\n", imp)
		}
		fmt.Fprintln(w)
	}

	if resp.Explanation != "" {
		fmt.Fprintf(w, "%s\n\n", resp.Explanation)
	}

	m := resp.Metrics
	fmt.Fprintf(w, "Scores: clarity %.2f | specificity %.2f | structure %.2f | completeness %.2f | overall %.2f\n",
		m.Clarity, m.Specificity, m.Structure, m.Completeness, m.Overall())

	return nil
}
