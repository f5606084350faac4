package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLMBaseURL)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.LLMModel)
	assert.InDelta(t, 0.7, cfg.LLMTemperature, 1e-9)
	assert.Equal(t, 400, cfg.LLMMaxTokens)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "file", cfg.MemoryBackend)
	assert.Equal(t, "none", cfg.OCRBackend)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.False(t, cfg.EmphasizeKeywords)
	assert.Empty(t, cfg.LLMAPIKey)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, https://copilot.example.com ,")
	t.Setenv("LLM_MODEL", "gpt-4.1-mini")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("LLM_MAX_TOKENS", "256")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("MEMORY_BACKEND", "sqlite")
	t.Setenv("EMPHASIZE_KEYWORDS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"http://localhost:5173", "https://copilot.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLMModel)
	assert.InDelta(t, 0.2, cfg.LLMTemperature, 1e-9)
	assert.Equal(t, 256, cfg.LLMMaxTokens)
	assert.Equal(t, 15*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "sqlite", cfg.MemoryBackend)
	assert.True(t, cfg.EmphasizeKeywords)
}

func TestLoadAPIKeyFallback(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "gsk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gsk-test", cfg.LLMAPIKey)

	t.Setenv("LLM_API_KEY", "sk-primary")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-primary", cfg.LLMAPIKey)
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	t.Setenv("MEMORY_BACKEND", "redis")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("MEMORY_BACKEND", "file")
	t.Setenv("OCR_BACKEND", "tesseract")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm_model: from-file\nport: \"7000\"\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.LLMModel)
	assert.Equal(t, "7100", cfg.Port)
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	assert.Error(t, err)
}
