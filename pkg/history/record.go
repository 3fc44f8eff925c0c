// Package history persists optimization records so past runs can be listed
// and inspected.
package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/promptforge/promptforge/pkg/quality"
)

// Record is one completed optimization.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OriginalPrompt  string          `json:"original_prompt"`
	Purpose         string          `json:"purpose"`
	OptimizedPrompt string          `json:"optimized_prompt"`
	Improvements    []string        `json:"improvements"`
	Explanation     string          `json:"explanation"`
	Metrics         quality.Metrics `json:"metrics"`

	// FallbackUsed marks records produced by the template fallback.
	FallbackUsed bool `json:"fallback_used"`

	DurationMs int64 `json:"duration_ms"`
}

// NewRecord creates a Record with a fresh id and timestamp.
func NewRecord(original, purpose, optimized string, improvements []string, explanation string, metrics quality.Metrics, fallbackUsed bool, duration time.Duration) *Record {
	return &Record{
		ID:              uuid.New().String(),
		CreatedAt:       time.Now().UTC(),
		OriginalPrompt:  original,
		Purpose:         purpose,
		OptimizedPrompt: optimized,
		Improvements:    improvements,
		Explanation:     explanation,
		Metrics:         metrics,
		FallbackUsed:    fallbackUsed,
		DurationMs:      duration.Milliseconds(),
	}
}
