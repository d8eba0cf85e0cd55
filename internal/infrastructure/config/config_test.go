package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.Equal(t, 20*time.Second, cfg.Suggestion.AttemptTimeout)
	assert.Equal(t, 14, cfg.Suggestion.RecentDays)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Empty(t, cfg.LLM.FallbackModels)
}

func TestLoadConfig_EnvAliases(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LLM_PROVIDER", "openrouter")
	t.Setenv("LLM_MODEL", "primary/model")
	t.Setenv("LLM_FALLBACK_MODELS", "a/one, b/two,,")
	t.Setenv("LLM_API_KEY", "sk-test-123456789")
	t.Setenv("APP_SUGGESTION_RECENT_DAYS", "7")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "openrouter", cfg.LLM.Provider)
	assert.Equal(t, "primary/model", cfg.LLM.Model)
	assert.Equal(t, []string{"a/one", "b/two"}, cfg.LLM.FallbackModels)
	assert.Equal(t, "sk-test-123456789", cfg.LLM.APIKey)
	assert.Equal(t, 7, cfg.Suggestion.RecentDays)
}

func TestLoadConfig_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	t.Run("provider", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "bogus")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "unsupported llm provider")
	})

	t.Run("database driver", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "oracle")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "unsupported database driver")
	})

	t.Run("cache backend", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "disk")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "unsupported cache backend")
	})
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the original one when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(orig); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
