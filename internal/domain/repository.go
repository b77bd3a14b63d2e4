package domain

import "context"

// LeadRepository persists leads.
type LeadRepository interface {
	// Create inserts a lead and returns the stored row, including generated columns.
	Create(ctx context.Context, in LeadInput) (*Lead, error)

	// List returns every lead, newest first.
	List(ctx context.Context) ([]Lead, error)

	// Get returns ErrLeadNotFound when no row matches.
	Get(ctx context.Context, id int64) (*Lead, error)

	// Update overwrites every column of the lead.
	// It returns ErrLeadNotFound when no row was affected.
	Update(ctx context.Context, id int64, in LeadInput) error

	// Delete returns ErrLeadNotFound when no row was affected.
	Delete(ctx context.Context, id int64) error
}

// NoteRepository persists notes attached to leads.
type NoteRepository interface {
	// Create inserts a note for an existing lead in a single statement.
	// It returns ErrLeadNotFound when the lead does not exist.
	Create(ctx context.Context, leadID int64, note string) (*Note, error)

	// ListByLead returns the lead's notes, newest first, or ErrLeadNotFound.
	ListByLead(ctx context.Context, leadID int64) ([]Note, error)
}

// LeadCache is an optional read-through cache in front of LeadRepository.Get.
// Each id carries a generation that Invalidate advances, so a fill that read
// the database before an invalidation cannot overwrite it afterwards.
// Implementations must be safe for concurrent use.
type LeadCache interface {
	// Get returns the cached lead. On ErrCacheMiss it also returns the id's
	// current generation, which the following Set must pass back.
	Get(ctx context.Context, id int64) (*Lead, int64, error)

	// Set stores the lead only if its generation still equals generation.
	// A stale fill is dropped without error.
	Set(ctx context.Context, lead *Lead, generation int64) error

	// Invalidate removes the entry and advances the generation.
	Invalidate(ctx context.Context, id int64) error
}
