package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/V4T54L/leadstore/internal/adapter/api/middleware"
	"github.com/V4T54L/leadstore/internal/domain"
)

// errInvalidBody marks a request body that could not be decoded as JSON.
var errInvalidBody = errors.New("invalid request body")

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, logger *slog.Logger, code int, message string) {
	respondWithJSON(w, logger, code, errorResponse{Error: message})
}

// respondWithDomainError maps an error returned by the use case onto a status
// code. Anything unrecognised is logged and reported as a generic 500.
func respondWithDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var validationErr *domain.ValidationError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, logger, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, domain.ErrLeadNotFound):
		respondWithError(w, logger, http.StatusNotFound, "Lead not found")
	case errors.As(err, &maxBytesErr):
		respondWithError(w, logger, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, errInvalidBody):
		respondWithError(w, logger, http.StatusBadRequest, "Invalid request body")
	default:
		logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
		)
		respondWithError(w, logger, http.StatusInternalServerError, "Internal server error")
	}
}
