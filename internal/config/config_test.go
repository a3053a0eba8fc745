package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "LOG_LEVEL", "REDIS_URL", "CHOICE_DELAY", "COMPRESS_DELAY", "SCRIPT_PATH", "API_BASE_URL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 600*time.Millisecond, cfg.ChoiceDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.CompressDelay)
	assert.Empty(t, cfg.ScriptPath)
	assert.Empty(t, cfg.APIBaseURL)
	assert.False(t, cfg.IsProduction())
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("CHOICE_DELAY", "0s")
	t.Setenv("COMPRESS_DELAY", "2s")
	t.Setenv("SCRIPT_PATH", "/tmp/werewolf.yaml")
	t.Setenv("API_BASE_URL", "http://localhost:9090")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.RedisURL)
	assert.Equal(t, time.Duration(0), cfg.ChoiceDelay)
	assert.Equal(t, 2*time.Second, cfg.CompressDelay)
	assert.Equal(t, "/tmp/werewolf.yaml", cfg.ScriptPath)
	assert.Equal(t, "http://localhost:9090", cfg.APIBaseURL)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad duration", "CHOICE_DELAY", "soon"},
		{"negative delay", "COMPRESS_DELAY", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7070\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// godotenv never overrides variables that are already set.
	t.Setenv("PORT", "")
	require.NoError(t, os.Unsetenv("PORT"))
	t.Cleanup(func() { _ = os.Unsetenv("PORT") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}
