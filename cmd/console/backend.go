package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/iron-and-snow/pkg/engine"
	"github.com/jwebster45206/iron-and-snow/pkg/state"
)

// errRejected marks an action the story would not accept. The UI shows it as
// a dim status line rather than an error.
var errRejected = errors.New("rejected")

// backend plays one session. Do returns once any delayed beat the action
// started has landed.
type backend interface {
	Do(ctx context.Context, a engine.Action) (state.GameState, error)
	Current(ctx context.Context) (state.GameState, error)
	Close() error
}

// localBackend drives an in-process engine.
type localBackend struct {
	engine *engine.Engine
}

func (b *localBackend) Do(ctx context.Context, a engine.Action) (state.GameState, error) {
	st, _, err := b.engine.Dispatch(ctx, a)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidTransition) {
			return st, fmt.Errorf("%w: %w", errRejected, err)
		}
		return st, err
	}
	if err := b.engine.Wait(ctx); err != nil {
		return b.engine.State(), err
	}
	return b.engine.State(), nil
}

func (b *localBackend) Current(ctx context.Context) (state.GameState, error) {
	return b.engine.State(), nil
}

func (b *localBackend) Close() error {
	b.engine.Close()
	return nil
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type gameResponse struct {
	ID    uuid.UUID       `json:"id"`
	State state.GameState `json:"state"`
}

type actionRequest struct {
	Action  string `json:"action"`
	Payload string `json:"payload,omitempty"`
}

type actionResponse struct {
	State state.GameState `json:"state"`
	Lines []string        `json:"lines"`
}

// remoteBackend plays a session hosted by the API server.
type remoteBackend struct {
	client  *http.Client
	baseURL string
	gameID  uuid.UUID
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func newRemoteBackend(ctx context.Context, client *http.Client, baseURL string) (*remoteBackend, state.GameState, error) {
	var created gameResponse
	if err := doJSON(ctx, client, http.MethodPost, baseURL+"/v1/games", nil, http.StatusCreated, &created); err != nil {
		return nil, state.GameState{}, fmt.Errorf("failed to create game: %w", err)
	}
	return &remoteBackend{client: client, baseURL: baseURL, gameID: created.ID}, created.State, nil
}

func (b *remoteBackend) Do(ctx context.Context, a engine.Action) (state.GameState, error) {
	req := actionRequest{Action: string(a.Kind()), Payload: engine.Payload(a)}
	url := fmt.Sprintf("%s/v1/games/%s/actions?wait=true", b.baseURL, b.gameID)

	var resp actionResponse
	err := doJSON(ctx, b.client, http.MethodPost, url, req, http.StatusOK, &resp)
	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusConflict {
		st, curErr := b.Current(ctx)
		if curErr != nil {
			return state.GameState{}, curErr
		}
		return st, fmt.Errorf("%w: %s", errRejected, se.msg)
	}
	if err != nil {
		return state.GameState{}, err
	}
	return resp.State, nil
}

func (b *remoteBackend) Current(ctx context.Context) (state.GameState, error) {
	var resp gameResponse
	url := fmt.Sprintf("%s/v1/games/%s", b.baseURL, b.gameID)
	if err := doJSON(ctx, b.client, http.MethodGet, url, nil, http.StatusOK, &resp); err != nil {
		return state.GameState{}, fmt.Errorf("failed to get game: %w", err)
	}
	return resp.State, nil
}

func (b *remoteBackend) Close() error {
	url := fmt.Sprintf("%s/v1/games/%s", b.baseURL, b.gameID)
	return doJSON(context.Background(), b.client, http.MethodDelete, url, nil, http.StatusNoContent, nil)
}

type statusError struct {
	status int
	msg    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.status, e.msg)
}

// doJSON sends body as JSON and decodes the response into out when the
// status matches want.
func doJSON(ctx context.Context, client *http.Client, method, url string, body interface{}, want int, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errorResp ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return &statusError{status: resp.StatusCode, msg: string(data)}
		}
		return &statusError{status: resp.StatusCode, msg: errorResp.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
