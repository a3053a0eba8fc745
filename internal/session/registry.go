package session

import (
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/iron-and-snow/pkg/engine"
	"github.com/jwebster45206/iron-and-snow/pkg/script"
)

// ErrNotFound is returned for an ID with no live session.
var ErrNotFound = errors.New("game not found")

// Lifecycle is told when sessions are created and removed.
type Lifecycle interface {
	GameStarted()
	GameEnded()
}

// Registry holds the in-memory play sessions served by the API. Sessions are
// independent and are lost when the process exits.
type Registry struct {
	script   *script.Script
	opts     engine.Options
	logger   *slog.Logger
	onCreate []func(*engine.Engine)
	tracker  Lifecycle

	mu    sync.RWMutex
	games map[uuid.UUID]*engine.Engine
}

// NewRegistry creates an empty registry. Every engine it creates shares sc and
// opts.
func NewRegistry(sc *script.Script, opts engine.Options, logger *slog.Logger) *Registry {
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return &Registry{
		script: sc,
		opts:   opts,
		logger: logger,
		games:  make(map[uuid.UUID]*engine.Engine),
	}
}

// OnCreate registers fn to run on each new engine before it is returned,
// typically to attach subscribers.
func (r *Registry) OnCreate(fn func(*engine.Engine)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCreate = append(r.onCreate, fn)
}

// Track reports session counts to l.
func (r *Registry) Track(l Lifecycle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracker = l
}

// Create starts a new session at the initial state.
func (r *Registry) Create() *engine.Engine {
	e := engine.New(r.script, r.opts)

	r.mu.Lock()
	hooks := slices.Clone(r.onCreate)
	r.games[e.ID] = e
	tracker := r.tracker
	r.mu.Unlock()

	for _, fn := range hooks {
		fn(e)
	}
	if tracker != nil {
		tracker.GameStarted()
	}

	r.logger.Info("Game created", "game_id", e.ID.String())
	return e
}

// Get returns the session with id.
func (r *Registry) Get(id uuid.UUID) (*engine.Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// Delete removes a session, letting any in-flight beat finish first.
func (r *Registry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	e, ok := r.games[id]
	delete(r.games, id)
	tracker := r.tracker
	r.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	e.Close()
	if tracker != nil {
		tracker.GameEnded()
	}

	r.logger.Info("Game deleted", "game_id", id.String())
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// CloseAll removes every session. Used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	games := r.games
	r.games = make(map[uuid.UUID]*engine.Engine)
	r.mu.Unlock()

	for _, e := range games {
		e.Close()
	}
}

// Exists reports whether a session with id is live.
func (r *Registry) Exists(id uuid.UUID) bool {
	_, err := r.Get(id)
	return err == nil
}
