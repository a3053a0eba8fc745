package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/iron-and-snow/internal/session"
	"github.com/jwebster45206/iron-and-snow/pkg/engine"
	"github.com/jwebster45206/iron-and-snow/pkg/state"
)

// GameResponse is returned when a game is created or read.
type GameResponse struct {
	ID    uuid.UUID       `json:"id"`
	State state.GameState `json:"state"`
}

// ActionRequest is the body of POST /v1/games/{id}/actions.
type ActionRequest struct {
	Action  string `json:"action"`
	Payload string `json:"payload,omitempty"`
}

// ActionResponse carries the snapshot after an action and the lines it
// appended.
type ActionResponse struct {
	State state.GameState `json:"state"`
	Lines []string        `json:"lines"`
}

// GameEndedPublisher is notified when a session is deleted.
type GameEndedPublisher interface {
	PublishGameEnded(ctx context.Context, gameID uuid.UUID) error
}

type GamesHandler struct {
	games     *session.Registry
	publisher GameEndedPublisher // optional
	logger    *slog.Logger
}

func NewGamesHandler(games *session.Registry, publisher GameEndedPublisher, logger *slog.Logger) *GamesHandler {
	return &GamesHandler{
		games:     games,
		publisher: publisher,
		logger:    logger,
	}
}

// ServeHTTP handles HTTP requests for play sessions
// Routes:
// POST /v1/games                 - Start a new game
// GET /v1/games/{id}             - Read the current snapshot
// POST /v1/games/{id}/actions    - Dispatch an action (?wait=true blocks until delayed beats land)
// DELETE /v1/games/{id}          - End the game
func (h *GamesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			h.methodNotAllowed(w, r, "POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(path, "/")
	gameID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid game ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleRead(w, gameID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.handleDelete(w, r, gameID)
	case len(parts) == 1:
		h.methodNotAllowed(w, r, "GET, DELETE")
	case len(parts) == 2 && parts[1] == "actions" && r.Method == http.MethodPost:
		h.handleAction(w, r, gameID)
	case len(parts) == 2 && parts[1] == "actions":
		h.methodNotAllowed(w, r, "POST")
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *GamesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	e := h.games.Create()
	writeJSON(w, h.logger, http.StatusCreated, GameResponse{ID: e.ID, State: e.State()})
}

func (h *GamesHandler) handleRead(w http.ResponseWriter, gameID uuid.UUID) {
	e, ok := h.lookup(w, gameID)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, GameResponse{ID: e.ID, State: e.State()})
}

func (h *GamesHandler) handleDelete(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	if err := h.games.Delete(gameID); err != nil {
		h.writeLookupError(w, gameID, err)
		return
	}
	if h.publisher != nil {
		// Deletion has already happened; a failed notice is only logged.
		if err := h.publisher.PublishGameEnded(r.Context(), gameID); err != nil {
			h.logger.Warn("Failed to publish game ended", "game_id", gameID.String(), "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GamesHandler) handleAction(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	e, ok := h.lookup(w, gameID)
	if !ok {
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid action body", "game_id", gameID.String(), "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	action, err := engine.ParseAction(req.Action, req.Payload)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	wait := r.URL.Query().Get("wait") == "true"

	// With wait the response carries every line the action produced,
	// including those of its delayed beat.
	var mu sync.Mutex
	var collected []string
	if wait {
		unsubscribe := e.Subscribe(func(u engine.Update) {
			mu.Lock()
			defer mu.Unlock()
			collected = append(collected, u.Lines...)
		})
		defer unsubscribe()
	}

	st, lines, err := e.Dispatch(r.Context(), action)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidTransition) {
			writeError(w, h.logger, http.StatusConflict, err.Error())
			return
		}
		h.logger.Warn("Action dispatch failed", "game_id", gameID.String(), "error", err)
		writeError(w, h.logger, http.StatusServiceUnavailable, err.Error())
		return
	}

	if wait {
		if err := e.Wait(r.Context()); err != nil {
			writeError(w, h.logger, http.StatusGatewayTimeout, "Timed out waiting for the story to continue")
			return
		}
		st = e.State()
		mu.Lock()
		lines = append([]string(nil), collected...)
		mu.Unlock()
	}
	if lines == nil {
		lines = []string{}
	}

	writeJSON(w, h.logger, http.StatusOK, ActionResponse{State: st, Lines: lines})
}

func (h *GamesHandler) lookup(w http.ResponseWriter, gameID uuid.UUID) (*engine.Engine, bool) {
	e, err := h.games.Get(gameID)
	if err != nil {
		h.writeLookupError(w, gameID, err)
		return nil, false
	}
	return e, true
}

func (h *GamesHandler) writeLookupError(w http.ResponseWriter, gameID uuid.UUID, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return
	}
	h.logger.Error("Failed to look up game", "game_id", gameID.String(), "error", err)
	writeError(w, h.logger, http.StatusInternalServerError, "Internal server error")
}

func (h *GamesHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	h.logger.Warn("Method not allowed for games endpoint", "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Allow", allowed)
	writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: "+allowed)
}
