package handlers

import (
	"log/slog"
	"os"
	"testing"

	"github.com/jwebster45206/iron-and-snow/internal/session"
	"github.com/jwebster45206/iron-and-snow/pkg/engine"
	"github.com/jwebster45206/iron-and-snow/pkg/script"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func newTestRegistry(t *testing.T, opts engine.Options) *session.Registry {
	t.Helper()
	r := session.NewRegistry(script.MustDefault(), opts, testLogger())
	t.Cleanup(r.CloseAll)
	return r
}
