package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
port: 9090
database_url: postgres://localhost/wellbridge
openai:
  api_key: file-key
  model: gpt-4o-mini
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/wellbridge", cfg.DatabaseURL)
	assert.Equal(t, "file-key", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
port: 9090
database_url: postgres://localhost/fromfile
openai:
  api_key: file-key
`)
	t.Setenv("DATABASE_URL", "postgres://localhost/fromenv")
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/fromenv", cfg.DatabaseURL)
	assert.Equal(t, "env-key", cfg.OpenAI.APIKey)
	assert.Equal(t, 7070, cfg.Port)
}

func TestEnvOnlyWithoutFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/envonly")
	t.Setenv("OPENAI_API_KEY", "env-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err, "a missing config file is not an error")
	assert.Equal(t, 8080, cfg.Port, "default port")
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model, "default model")
	assert.Equal(t, "info", cfg.Log.Level, "default level")
}

func TestLoadRequiresDatabaseAndKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url")

	t.Setenv("DATABASE_URL", "postgres://localhost/x")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/x")
	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("PORT", "not-a-port")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
