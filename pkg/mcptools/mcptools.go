// Package mcptools exposes prompt optimization and analysis as MCP tools,
// so agent runtimes can call promptforge without going through HTTP.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/promptforge/promptforge/pkg/api"
	"github.com/promptforge/promptforge/pkg/optimizer"
	"github.com/promptforge/promptforge/pkg/quality"
)

// Optimizer produces optimized prompts. *optimizer.Engine satisfies it.
type Optimizer interface {
	Optimize(ctx context.Context, original, purpose string, examples []api.Example) (*optimizer.Result, error)
}

// Analyzer scores prompt quality. *quality.Analyzer satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) quality.Metrics
}

// Register registers the promptforge tools on an MCP server.
func Register(srv *mcp.Server, engine Optimizer, analyzer Analyzer) {
	registerOptimizeTool(srv, engine, analyzer)
	registerAnalyzeTool(srv, analyzer)
}

func setToolError(res *mcp.CallToolResult, err error) {
	res.Content = []mcp.Content{&mcp.TextContent{Text: err.Error()}}
	res.IsError = true
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- optimize ---

func registerOptimizeTool(srv *mcp.Server, engine Optimizer, analyzer Analyzer) {
	tool := &mcp.Tool{
		Name:        "promptforge_optimize",
		Description: "Optimize a prompt for a stated purpose. Returns the optimized prompt, the improvements made, an explanation and quality scores.",
		InputSchema: inputSchema(map[string]any{
			"original_prompt": map[string]any{"type": "string", "description": "The prompt to optimize"},
			"purpose":         map[string]any{"type": "string", "description": "What the prompt is meant to achieve"},
			"examples": map[string]any{
				"type":        "array",
				"description": "Optional input/output examples guiding the optimization (at most five are used)",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"input":  map[string]any{"type": "string"},
						"output": map[string]any{"type": "string"},
					},
				},
			},
		}, []string{"original_prompt", "purpose"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r api.OptimizeRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			var res mcp.CallToolResult
			setToolError(&res,fmt.Errorf("invalid arguments: %w", err))
			return &res, nil
		}

		if engine == nil {
			var res mcp.CallToolResult
			setToolError(&res,errors.New("optimization unavailable: no API key configured"))
			return &res, nil
		}

		result, err := engine.Optimize(ctx, r.OriginalPrompt, r.Purpose, r.Examples)
		if err != nil {
			var res mcp.CallToolResult
			setToolError(&res,errors.New(err.Error()))
			return &res, nil
		}

		metrics := analyzer.Analyze(ctx, result.OptimizedPrompt)

		return textResult(api.OptimizeResponse{
			OptimizedPrompt: result.OptimizedPrompt,
			Improvements:    result.Improvements,
			Explanation:     result.Explanation,
			Metrics:         metrics,
			OriginalPrompt:  r.OriginalPrompt,
		})
	})
}

// --- analyze ---

func registerAnalyzeTool(srv *mcp.Server, analyzer Analyzer) {
	tool := &mcp.Tool{
		Name:        "promptforge_analyze",
		Description: "Score a prompt on clarity, specificity, structure and completeness without changing it.",
		InputSchema: inputSchema(map[string]any{
			"prompt": map[string]any{"type": "string", "description": "The prompt to score"},
		}, []string{"prompt"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r api.AnalyzeRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			var res mcp.CallToolResult
			setToolError(&res,fmt.Errorf("invalid arguments: %w", err))
			return &res, nil
		}

		if r.Prompt == "" {
			var res mcp.CallToolResult
			setToolError(&res,errors.New("prompt is required"))
			return &res, nil
		}

		metrics := analyzer.Analyze(ctx, r.Prompt)

		return textResult(api.AnalyzeResponse{
			Prompt:       r.Prompt,
			Metrics:      metrics,
			OverallScore: metrics.Overall(),
		})
	})
}

func textResult(resp any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		var res mcp.CallToolResult
		setToolError(&res,fmt.Errorf("marshal: %w", err))
		return &res, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}
