package api

import "github.com/promptforge/promptforge/pkg/quality"

// OptimizeResponse is the body returned for a successful optimization.
type OptimizeResponse struct {
	OptimizedPrompt string          `json:"optimized_prompt"` // The optimized version of the prompt
	Improvements    []string        `json:"improvements"`     // Improvements made, at most five
	Explanation     string          `json:"explanation"`      // Explanation of the optimization
	Metrics         quality.Metrics `json:"metrics"`          // Quality scores for the optimized prompt
	OriginalPrompt  string          `json:"original_prompt"`  // Original prompt for reference
}

// AnalyzeResponse is the body returned for a prompt analysis.
type AnalyzeResponse struct {
	Prompt       string          `json:"prompt"`
	Metrics      quality.Metrics `json:"metrics"`
	OverallScore float64         `json:"overall_score"` // Mean of the four scores, rounded to 2 decimals
}
