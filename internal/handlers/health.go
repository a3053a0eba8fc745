package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/iron-and-snow/internal/services"
)

type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Service    string                 `json:"service"`
	Components map[string]interface{} `json:"components"`
}

// GameCounter reports the number of live sessions.
type GameCounter interface {
	Len() int
}

type HealthHandler struct {
	redis  services.Pinger // nil when event broadcast is disabled
	games  GameCounter
	logger *slog.Logger
}

func NewHealthHandler(redis services.Pinger, games GameCounter, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		redis:  redis,
		games:  games,
		logger: logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]interface{})
	overallStatus := "healthy"

	switch {
	case h.redis == nil:
		components["redis"] = "disabled"
	case h.redis.Ping(ctx) != nil:
		h.logger.Warn("Redis health check failed")
		components["redis"] = "unhealthy"
		overallStatus = "degraded"
	default:
		components["redis"] = "healthy"
	}
	if h.games != nil {
		components["games"] = h.games.Len()
	}

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "iron-and-snow",
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, h.logger, statusCode, response)
}
