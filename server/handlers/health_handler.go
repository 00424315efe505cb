package handlers

import (
	"context"
	"net/http"
	"time"

	"dine-server/logger"

	"go.uber.org/zap"
)

// Pinger is anything whose reachability /ping reports, usually the redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	redis Pinger
}

func NewHealthHandler(redis Pinger) *HealthHandler {
	return &HealthHandler{redis: redis}
}

// Ping handles GET /ping. A redis outage only degrades search caching, so it
// is reported but the server still answers 200.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "pong", "redis": "ok"}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.redis.Ping(ctx); err != nil {
			logger.Component("HealthHandler").Warn("redis ping failed", zap.Error(err))
			status["redis"] = "unavailable"
		}
	} else {
		status["redis"] = "disabled"
	}

	respondJSON(w, http.StatusOK, status)
}
