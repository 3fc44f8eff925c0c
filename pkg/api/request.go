package api

// OptimizeRequest is the body of a prompt optimization request.
type OptimizeRequest struct {
	OriginalPrompt string    `json:"original_prompt"`       // The prompt to optimize
	Purpose        string    `json:"purpose"`               // The intended purpose of the prompt
	Examples       []Example `json:"examples,omitempty"`    // Optional input/output examples
	Temperature    *float64  `json:"temperature,omitempty"` // Generation temperature (0.0-2.0, default 0.7)
}

// Example is a single input/output pair used to guide few-shot optimization.
type Example struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// AnalyzeRequest is the body of a prompt analysis request.
type AnalyzeRequest struct {
	Prompt string `json:"prompt"` // The prompt to score
}
