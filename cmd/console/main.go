package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/iron-and-snow/internal/config"
	"github.com/jwebster45206/iron-and-snow/internal/logger"
	"github.com/jwebster45206/iron-and-snow/internal/services"
	"github.com/jwebster45206/iron-and-snow/pkg/engine"
	"github.com/jwebster45206/iron-and-snow/pkg/script"
	"github.com/jwebster45206/iron-and-snow/pkg/state"
)

const apiTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	sc, err := loadScript(cfg.ScriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load script: %v\n", err)
		os.Exit(1)
	}

	b, initial, err := newBackend(cfg, sc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = b.Close() // Ignore error on exit
	}()

	p := tea.NewProgram(NewConsoleUI(sc, b, initial),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// newBackend plays against the API server when API_BASE_URL is set and
// against an in-process engine otherwise.
func newBackend(cfg *config.Config, sc *script.Script) (backend, state.GameState, error) {
	if cfg.APIBaseURL == "" {
		// The TUI owns the terminal, so engine logs are discarded.
		log := logger.SetupWriter(cfg, io.Discard)
		e := engine.New(sc, engine.Options{
			Narrator:      services.StaticNarrator{},
			Logger:        log,
			ChoiceDelay:   cfg.ChoiceDelay,
			CompressDelay: cfg.CompressDelay,
		})
		return &localBackend{engine: e}, e.State(), nil
	}

	client := &http.Client{Timeout: apiTimeout}
	if !testConnection(client, cfg.APIBaseURL) {
		return nil, state.GameState{}, fmt.Errorf("could not connect to API at %s. Please ensure the API is running.\nTry: go run ./cmd/api", cfg.APIBaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()
	rb, initial, err := newRemoteBackend(ctx, client, cfg.APIBaseURL)
	if err != nil {
		return nil, state.GameState{}, err
	}
	return rb, initial, nil
}

func loadScript(path string) (*script.Script, error) {
	if path == "" {
		return script.Default()
	}
	return script.LoadFile(path)
}
