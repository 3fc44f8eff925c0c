package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", config.ListenAddr)
	assert.Equal(t, "openai", config.Provider)
	assert.Equal(t, "gpt-4", config.Model)
	assert.Equal(t, 0.7, config.Temperature)
	assert.Empty(t, config.DBPath)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
listen_addr = ":9000"
model = "gpt-4o-mini"
db_path = "/tmp/promptforge.db"
debug = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", config.ListenAddr)
	assert.Equal(t, "gpt-4o-mini", config.Model)
	assert.Equal(t, "/tmp/promptforge.db", config.DBPath)
	assert.True(t, config.Debug)
	// Unset file values keep their defaults
	assert.Equal(t, "openai", config.Provider)
	assert.Equal(t, 0.7, config.Temperature)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`model = "gpt-4"`), 0o644))

	t.Setenv("PORT", "3000")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TEMPERATURE", "0.2")
	t.Setenv("FRONTEND_URL", "http://localhost:5173")

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":3000", config.ListenAddr)
	assert.Equal(t, "gpt-4o", config.Model)
	assert.Equal(t, "sk-test", config.APIKey)
	assert.Equal(t, 0.2, config.Temperature)
	assert.Equal(t, "http://localhost:5173", config.FrontendURL)
}

func TestLoadInvalidTemperature(t *testing.T) {
	t.Setenv("TEMPERATURE", "warm")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
