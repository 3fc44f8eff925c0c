// Package server exposes prompt optimization and analysis over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/promptforge/promptforge/pkg/api"
	"github.com/promptforge/promptforge/pkg/history"
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

// Server is the promptforge HTTP server. It wires the optimization engine,
// the quality analyzer and the history store behind a JSON API.
type Server struct {
	config   Config
	engine   Optimizer
	analyzer Analyzer
	store    history.Store
	logger   *zap.Logger
	app      *fiber.App
}

// New creates a new Server. A missing API key is not an error: the server
// starts in degraded mode where /optimize returns 503 and analysis uses
// heuristics only.
func New(config Config, logger *zap.Logger) (*Server, error) {
	var store history.Store
	var err error

	if config.DBPath != "" {
		store, err = history.NewSQLiteStore(config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite store: %w", err)
		}
		logger.Info("using SQLite history", zap.String("path", config.DBPath))
	} else {
		store = history.NewMemoryStore()
		logger.Info("using in-memory history")
	}

	var engine Optimizer
	var grader quality.Grader

	if config.APIKey != "" {
		eng, err := optimizer.New(optimizer.Config{
			Provider:    config.Provider,
			Model:       config.Model,
			APIKey:      config.APIKey,
			Temperature: config.Temperature,
		}, logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to create optimizer: %w", err)
		}
		engine = eng
		grader = eng.Client()
	} else {
		logger.Warn("no API key configured, /optimize is disabled and analysis is heuristic-only")
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	// Allow the configured frontend plus local dev; anything goes when
	// no frontend is pinned.
	origins := "*"
	if config.FrontendURL != "" {
		origins = config.FrontendURL + ", http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	s := &Server{
		config:   config,
		engine:   engine,
		analyzer: quality.NewAnalyzer(grader, logger),
		store:    store,
		logger:   logger,
		app:      app,
	}

	s.registerRoutes(app)

	return s, nil
}

func (s *Server) registerRoutes(app *fiber.App) {
	app.Get("/", s.handleRoot)
	app.Get("/health", s.handleHealth)

	app.Post("/optimize", s.handleOptimize)
	app.Post("/analyze", s.handleAnalyze)

	// History inspection endpoints
	app.Get("/optimizations", s.handleListOptimizations)
	app.Get("/optimizations/:id", s.handleGetOptimization)
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting promptforge server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("model", s.config.Model),
		zap.Bool("degraded", s.engine == nil),
	)

	return s.app.Listen(s.config.ListenAddr)
}

// Close shuts down the server and releases resources.
func (s *Server) Close() error {
	return s.store.Close()
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(map[string]any{
		"status":          "healthy",
		"service":         "promptforge",
		"optimizer_ready": s.engine != nil,
	})
}

// handleHealth reports degraded when the server runs without an engine.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	status := "healthy"
	if s.engine == nil {
		status = "degraded"
	}
	return c.JSON(map[string]any{
		"status":                status,
		"optimizer_initialized": s.engine != nil,
		"openai_configured":     s.config.APIKey != "",
	})
}

// handleOptimize runs one optimization and records it in the history store.
// Storage failures are logged but never fail the request.
func (s *Server) handleOptimize(c *fiber.Ctx) error {
	startTime := time.Now()

	var req api.OptimizeRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(api.ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.OriginalPrompt) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(api.ErrorResponse{Error: "original_prompt is required"})
	}
	if strings.TrimSpace(req.Purpose) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(api.ErrorResponse{Error: "purpose is required"})
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return c.Status(fiber.StatusBadRequest).JSON(api.ErrorResponse{Error: "temperature must be between 0.0 and 2.0"})
	}

	if s.engine == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(api.ErrorResponse{Error: "optimization unavailable: no API key configured"})
	}

	s.logger.Debug("received optimize request",
		zap.Int("prompt_length", len(req.OriginalPrompt)),
		zap.Int("example_count", len(req.Examples)),
	)

	result, err := s.engine.Optimize(c.Context(), req.OriginalPrompt, req.Purpose, req.Examples)
	if err != nil {
		s.logger.Error("optimization failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(api.ErrorResponse{Error: "optimization failed"})
	}

	metrics := s.analyzer.Analyze(c.Context(), result.OptimizedPrompt)

	record := history.NewRecord(
		req.OriginalPrompt, req.Purpose,
		result.OptimizedPrompt, result.Improvements, result.Explanation,
		metrics, result.FallbackUsed, time.Since(startTime),
	)
	if err := s.store.Put(c.Context(), record); err != nil {
		// Continue - don't fail the request just because storage failed
		s.logger.Error("failed to store optimization", zap.Error(err))
	} else {
		s.logger.Info("optimization stored",
			zap.String("id", record.ID),
			zap.Bool("fallback", record.FallbackUsed),
			zap.Duration("duration", time.Since(startTime)),
		)
	}

	return c.JSON(api.OptimizeResponse{
		OptimizedPrompt: result.OptimizedPrompt,
		Improvements:    result.Improvements,
		Explanation:     result.Explanation,
		Metrics:         metrics,
		OriginalPrompt:  req.OriginalPrompt,
	})
}

// handleAnalyze scores a prompt without optimizing it.
func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	var req api.AnalyzeRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(api.ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Prompt) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(api.ErrorResponse{Error: "prompt is required"})
	}

	metrics := s.analyzer.Analyze(c.Context(), req.Prompt)

	return c.JSON(api.AnalyzeResponse{
		Prompt:       req.Prompt,
		Metrics:      metrics,
		OverallScore: metrics.Overall(),
	})
}

// handleListOptimizations returns all stored optimizations, newest first.
func (s *Server) handleListOptimizations(c *fiber.Ctx) error {
	records, err := s.store.List(c.Context())
	if err != nil {
		s.logger.Error("failed to list optimizations", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(api.ErrorResponse{Error: "failed to list optimizations"})
	}

	return c.JSON(map[string]any{
		"count":         len(records),
		"optimizations": records,
	})
}

// handleGetOptimization returns a single stored optimization by id.
func (s *Server) handleGetOptimization(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(api.ErrorResponse{Error: "id parameter required"})
	}

	record, err := s.store.Get(c.Context(), id)
	if err != nil {
		var notFound history.ErrNotFound
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(api.ErrorResponse{Error: "optimization not found"})
		}
		s.logger.Error("failed to get optimization", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(api.ErrorResponse{Error: "failed to get optimization"})
	}

	return c.JSON(record)
}
