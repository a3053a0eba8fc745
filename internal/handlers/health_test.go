package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwebster45206/iron-and-snow/internal/services"
	"github.com/jwebster45206/iron-and-snow/pkg/engine"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		redis          services.Pinger
		expectedStatus int
		expectedHealth string
		expectedRedis  string
	}{
		{
			name:           "redis healthy",
			redis:          &services.MockPinger{},
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expectedRedis:  "healthy",
		},
		{
			name: "redis unhealthy",
			redis: &services.MockPinger{PingFunc: func(ctx context.Context) error {
				return errors.New("connection failed")
			}},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expectedRedis:  "unhealthy",
		},
		{
			name:           "redis disabled",
			redis:          nil,
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expectedRedis:  "disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			games := newTestRegistry(t, engine.Options{})
			games.Create()
			handler := NewHealthHandler(tt.redis, games, testLogger())

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if rr.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
			}

			var response HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if response.Status != tt.expectedHealth {
				t.Errorf("Expected status %q, got %q", tt.expectedHealth, response.Status)
			}
			if response.Components["redis"] != tt.expectedRedis {
				t.Errorf("Expected redis %q, got %v", tt.expectedRedis, response.Components["redis"])
			}
			if response.Components["games"] != float64(1) {
				t.Errorf("Expected 1 game, got %v", response.Components["games"])
			}
			if response.Service != "iron-and-snow" {
				t.Errorf("Expected service iron-and-snow, got %q", response.Service)
			}
		})
	}
}
