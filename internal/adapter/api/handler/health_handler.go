package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether a dependency is reachable. *sqlx.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	db      Pinger
	logger  *slog.Logger
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, logger *slog.Logger, timeout time.Duration) *HealthHandler {
	return &HealthHandler{
		db:      db,
		logger:  logger.With("component", "health_handler"),
		timeout: timeout,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("database ping failed", "error", err)
		respondWithJSON(w, h.logger, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}
