package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/V4T54L/leadstore/internal/domain"
)

// LeadUseCase implements the lead and note operations on top of the repositories.
// The cache is optional; a nil cache sends every read to the repository.
type LeadUseCase struct {
	leads  domain.LeadRepository
	notes  domain.NoteRepository
	cache  domain.LeadCache
	logger *slog.Logger
}

// NewLeadUseCase creates a new LeadUseCase.
func NewLeadUseCase(leads domain.LeadRepository, notes domain.NoteRepository, cache domain.LeadCache, logger *slog.Logger) *LeadUseCase {
	return &LeadUseCase{
		leads:  leads,
		notes:  notes,
		cache:  cache,
		logger: logger.With("component", "lead_usecase"),
	}
}

// CreateLead validates the required fields and stores a new lead.
func (uc *LeadUseCase) CreateLead(ctx context.Context, in domain.LeadInput) (*domain.Lead, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	lead, err := uc.leads.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("lead created", "lead_id", lead.ID)
	return lead, nil
}

// ListLeads returns every lead, newest first.
func (uc *LeadUseCase) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	return uc.leads.List(ctx)
}

// GetLead returns a single lead, consulting the cache first when one is configured.
// The cache is only filled after a clean miss, tagged with the generation that
// miss reported.
func (uc *LeadUseCase) GetLead(ctx context.Context, id int64) (*domain.Lead, error) {
	var generation int64
	fill := false

	if uc.cache != nil {
		lead, gen, err := uc.cache.Get(ctx, id)
		switch {
		case err == nil:
			return lead, nil
		case errors.Is(err, domain.ErrCacheMiss):
			generation, fill = gen, true
		default:
			// Non-fatal, the database is the source of truth
			uc.logger.Warn("lead cache read failed", "error", err, "lead_id", id)
		}
	}

	lead, err := uc.leads.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if fill {
		if err := uc.cache.Set(ctx, lead, generation); err != nil {
			uc.logger.Warn("lead cache write failed", "error", err, "lead_id", id)
		}
	}

	return lead, nil
}

// UpdateLead overwrites every column of the lead. Optional fields missing from
// the input are stored as NULL.
func (uc *LeadUseCase) UpdateLead(ctx context.Context, id int64, in domain.LeadInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	if err := uc.leads.Update(ctx, id, in); err != nil {
		return err
	}

	uc.invalidate(ctx, id)
	uc.logger.Debug("lead updated", "lead_id", id)
	return nil
}

// DeleteLead removes the lead.
func (uc *LeadUseCase) DeleteLead(ctx context.Context, id int64) error {
	if err := uc.leads.Delete(ctx, id); err != nil {
		return err
	}

	uc.invalidate(ctx, id)
	uc.logger.Debug("lead deleted", "lead_id", id)
	return nil
}

// AddNote attaches a note to an existing lead. The note field is checked
// before the lead, so a missing note is reported even for unknown leads.
func (uc *LeadUseCase) AddNote(ctx context.Context, leadID int64, in domain.NoteInput) (*domain.Note, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	note, err := uc.notes.Create(ctx, leadID, *in.Note)
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("note added", "lead_id", leadID, "note_id", note.ID)
	return note, nil
}

// ListNotes returns the lead's notes, newest first.
func (uc *LeadUseCase) ListNotes(ctx context.Context, leadID int64) ([]domain.Note, error) {
	return uc.notes.ListByLead(ctx, leadID)
}

func (uc *LeadUseCase) invalidate(ctx context.Context, id int64) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, id); err != nil {
		uc.logger.Warn("lead cache invalidation failed", "error", err, "lead_id", id)
	}
}
