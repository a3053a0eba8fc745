package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/iron-and-snow/internal/services/events"
	"github.com/jwebster45206/iron-and-snow/pkg/engine"
)

// readEvent reads one SSE frame and returns its event type and data.
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var eventType, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, ": "):
			continue
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && eventType != "":
			return eventType, data
		}
	}
}

func TestEventsHandler_Stream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	registry := newTestRegistry(t, engine.Options{})
	broadcaster := events.NewBroadcaster(client, testLogger())
	registry.OnCreate(func(e *engine.Engine) {
		e.Subscribe(broadcaster.Subscriber())
	})

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go broadcaster.Run(runCtx)

	game := registry.Create()

	server := httptest.NewServer(NewEventsHandler(client, registry, testLogger()))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/v1/events/games/"+game.ID.String(), nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	eventType, _ := readEvent(t, reader)
	assert.Equal(t, "connected", eventType)

	_, _, err = game.Dispatch(ctx, engine.Start{})
	require.NoError(t, err)

	eventType, data := readEvent(t, reader)
	assert.Equal(t, string(events.EventTypeGameStateUpdated), eventType)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(data), &payload))
	assert.Equal(t, "HOME", payload["phase"])
	assert.Equal(t, "start", payload["action"])

	require.NoError(t, broadcaster.PublishGameEnded(ctx, game.ID))
	eventType, _ = readEvent(t, reader)
	assert.Equal(t, string(events.EventTypeGameEnded), eventType)
}

func TestEventsHandler_Errors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	registry := newTestRegistry(t, engine.Options{})
	game := registry.Create()

	tests := []struct {
		name           string
		client         *redis.Client
		method         string
		path           string
		expectedStatus int
	}{
		{"wrong method", client, http.MethodPost, "/v1/events/games/" + game.ID.String(), http.StatusMethodNotAllowed},
		{"bad path", client, http.MethodGet, "/v1/events/gamestate/" + game.ID.String(), http.StatusBadRequest},
		{"bad id", client, http.MethodGet, "/v1/events/games/nope", http.StatusBadRequest},
		{"unknown game", client, http.MethodGet, "/v1/events/games/" + uuid.NewString(), http.StatusNotFound},
		{"streaming disabled", nil, http.MethodGet, "/v1/events/games/" + game.ID.String(), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewEventsHandler(tt.client, registry, testLogger())
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}
