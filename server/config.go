package server

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the promptforge server configuration.
type Config struct {
	// Address to listen on (e.g., ":8000")
	ListenAddr string `toml:"listen_addr"`

	// Upstream model provider (e.g., "openai")
	Provider string `toml:"provider"`

	// Model identifier used for optimization and grading
	Model string `toml:"model"`

	// APIKey authenticates against the provider. Empty key runs the server
	// in degraded mode: analysis stays heuristic and /optimize returns 503.
	APIKey string `toml:"api_key"`

	// Temperature for model generation
	Temperature float64 `toml:"temperature"`

	// DBPath is the path to the SQLite database file.
	// Empty for in-memory history.
	DBPath string `toml:"db_path"`

	// FrontendURL restricts CORS. Empty allows any origin.
	FrontendURL string `toml:"frontend_url"`

	// Debug enables debug logging
	Debug bool `toml:"debug"`
}

// Load builds a Config from an optional TOML file and the environment.
// Environment variables override file values.
func Load(path string) (Config, error) {
	config := Config{
		ListenAddr:  ":8000",
		Provider:    "openai",
		Model:       "gpt-4",
		Temperature: 0.7,
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, &config); err != nil {
			return Config{}, fmt.Errorf("decode config file: %w", err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		config.ListenAddr = ":" + port
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.Model = model
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.APIKey = key
	}
	if temp := os.Getenv("TEMPERATURE"); temp != "" {
		parsed, err := strconv.ParseFloat(temp, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse TEMPERATURE: %w", err)
		}
		config.Temperature = parsed
	}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		config.FrontendURL = frontend
	}

	return config, nil
}
