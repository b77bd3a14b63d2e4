package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/V4T54L/leadstore/internal/domain"
)

// LeadService is the set of operations the HTTP layer needs.
// It is satisfied by *usecase.LeadUseCase.
type LeadService interface {
	CreateLead(ctx context.Context, in domain.LeadInput) (*domain.Lead, error)
	ListLeads(ctx context.Context) ([]domain.Lead, error)
	GetLead(ctx context.Context, id int64) (*domain.Lead, error)
	UpdateLead(ctx context.Context, id int64, in domain.LeadInput) error
	DeleteLead(ctx context.Context, id int64) error
	AddNote(ctx context.Context, leadID int64, in domain.NoteInput) (*domain.Note, error)
	ListNotes(ctx context.Context, leadID int64) ([]domain.Note, error)
}

// LeadHandler handles HTTP requests for leads and their notes.
type LeadHandler struct {
	service      LeadService
	logger       *slog.Logger
	maxBodyBytes int64
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(service LeadService, logger *slog.Logger, maxBodyBytes int64) *LeadHandler {
	return &LeadHandler{
		service:      service,
		logger:       logger.With("component", "lead_handler"),
		maxBodyBytes: maxBodyBytes,
	}
}

// CreateLead handles POST /leads.
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var in domain.LeadInput
	if err := h.decodeBody(w, r, &in); err != nil {
		respondWithDomainError(w, r, h.logger, err)
		return
	}

	lead, err := h.service.CreateLead(r.Context(), in)
	if err != nil {
		respondWithDomainError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, lead)
}

// ListLeads handles GET /leads.
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.service.ListLeads(r.Context())
	if err != nil {
		respondWithDomainError(w, r, h.logger, err)
		return
	}
	if leads == nil {
		leads = []domain.Lead{}
	}

	respondWithJSON(w, h.logger, http.StatusOK, leads)
}

// GetLead handles GET /leads/{id}.
func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, h.logger, http.StatusNotFound, "Lead not found")
		return
	}

	lead, err := h.service.GetLead(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, lead)
}

// UpdateLead handles PUT /leads/{id}. The body replaces every column.
func (h *LeadHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, h.logger, http.StatusNotFound, "Lead not found")
		return
	}

	var in domain.LeadInput
	if err := h.decodeBody(w, r, &in); err != nil {
		respondWithDomainError(w, r, h.logger, err)
		return
	}

	if err := h.service.UpdateLead(r.Context(), id, in); err != nil {
		respondWithDomainError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, messageResponse{Message: "Lead updated successfully"})
}

// DeleteLead handles DELETE /leads/{id}.
func (h *LeadHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, h.logger, http.StatusNotFound, "Lead not found")
		return
	}

	if err := h.service.DeleteLead(r.Context(), id); err != nil {
		respondWithDomainError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, messageResponse{Message: "Lead deleted successfully"})
}

// AddNote handles POST /leads/{id}/notes. The note is validated before the
// id is resolved, so a missing note is a 400 for any numeric id.
func (h *LeadHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	if !isDigits(raw) {
		respondWithError(w, h.logger, http.StatusNotFound, "Lead not found")
		return
	}

	var in domain.NoteInput
	err := h.decodeBody(w, r, &in)
	// An empty body is a missing note, not a malformed one.
	if err != nil && !errors.Is(err, io.EOF) {
		respondWithDomainError(w, r, h.logger, err)
		return
	}
	if err := in.Validate(); err != nil {
		respondWithDomainError(w, r, h.logger, err)
		return
	}

	id, ok := parseID(r)
	if !ok {
		respondWithError(w, h.logger, http.StatusNotFound, "Lead not found")
		return
	}

	note, err := h.service.AddNote(r.Context(), id, in)
	if err != nil {
		respondWithDomainError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, note)
}

// ListNotes handles GET /leads/{id}/notes.
func (h *LeadHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, h.logger, http.StatusNotFound, "Lead not found")
		return
	}

	notes, err := h.service.ListNotes(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, h.logger, err)
		return
	}
	if notes == nil {
		notes = []domain.Note{}
	}

	respondWithJSON(w, h.logger, http.StatusOK, notes)
}

// decodeBody reads a single JSON value into dst, bounded by maxBodyBytes.
// An empty body is reported as errInvalidBody wrapping io.EOF.
func (h *LeadHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return maxBytesErr
		}
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	return nil
}

// parseID reads the {id} path value. Only unsigned decimal digits that fit a
// positive int64 identify a lead.
func parseID(r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	if !isDigits(raw) {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
