package api

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/leadstore/internal/adapter/api/handler"
	"github.com/V4T54L/leadstore/internal/adapter/api/middleware"
	"github.com/V4T54L/leadstore/internal/adapter/metrics"
)

// NewRouter creates and configures the main HTTP router for the lead API.
// Every route is wrapped with request id, logging and metrics middleware.
func NewRouter(
	logger *slog.Logger,
	m *metrics.Metrics,
	leadHandler *handler.LeadHandler,
	healthHandler *handler.HealthHandler,
) http.Handler {
	mux := http.NewServeMux()

	// Leads
	mux.HandleFunc("POST /leads", leadHandler.CreateLead)
	mux.HandleFunc("GET /leads", leadHandler.ListLeads)
	mux.HandleFunc("GET /leads/{id}", leadHandler.GetLead)
	mux.HandleFunc("PUT /leads/{id}", leadHandler.UpdateLead)
	mux.HandleFunc("DELETE /leads/{id}", leadHandler.DeleteLead)

	// Notes
	mux.HandleFunc("POST /leads/{id}/notes", leadHandler.AddNote)
	mux.HandleFunc("GET /leads/{id}/notes", leadHandler.ListNotes)

	// Health check
	mux.Handle("GET /health", healthHandler)

	var h http.Handler = mux
	h = middleware.Metrics(m)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)
	return h
}
