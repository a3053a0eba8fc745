package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/iron-and-snow/internal/config"
)

func TestSetupWriter_Production(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := SetupWriter(&config.Config{Environment: "production", LogLevel: slog.LevelInfo}, &buf)

	id := uuid.New()
	WithError(WithGameID(log, id), errors.New("snowed in")).Info("Game started")
	log.Debug("hidden")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Game started", entry["msg"])
	assert.Equal(t, id.String(), entry["game_id"])
	assert.Equal(t, "snowed in", entry["error"])
}

func TestSetupWriter_Development(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := SetupWriter(&config.Config{Environment: "development", LogLevel: slog.LevelDebug}, &buf)
	log.Debug("Action accepted", "action", "start")

	assert.Contains(t, buf.String(), `msg="Action accepted" action=start`)
	assert.Same(t, log, slog.Default())
}
