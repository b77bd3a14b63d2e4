package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/V4T54L/leadstore/internal/domain"
)

const (
	// Inserts only when the lead exists; no row back means no lead.
	// The foreign key still guards against a concurrent delete.
	insertNoteQuery = `
		INSERT INTO notes (lead_id, note)
		SELECT id, $2::text FROM leads WHERE id = $1
		RETURNING id, lead_id, note, created_at`

	leadExistsQuery = `SELECT EXISTS(SELECT 1 FROM leads WHERE id = $1)`

	listNotesQuery = `
		SELECT id, lead_id, note, created_at
		FROM notes
		WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC`
)

// NoteRepository implements domain.NoteRepository on PostgreSQL.
type NoteRepository struct {
	db           *sqlx.DB
	logger       *slog.Logger
	queryTimeout time.Duration
}

// NewNoteRepository creates a new PostgreSQL note repository.
func NewNoteRepository(db *sqlx.DB, logger *slog.Logger, queryTimeout time.Duration) *NoteRepository {
	return &NoteRepository{
		db:           db,
		logger:       logger.With("component", "postgres_note_repository"),
		queryTimeout: queryTimeout,
	}
}

func (r *NoteRepository) Create(ctx context.Context, leadID int64, note string) (*domain.Note, error) {
	ctx, cancel := withTimeout(ctx, r.queryTimeout)
	defer cancel()

	var n domain.Note
	err := r.db.GetContext(ctx, &n, insertNoteQuery, leadID, note)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLeadNotFound
		}
		err = mapNoteInsertError(err)
		if errors.Is(err, domain.ErrLeadNotFound) {
			r.logger.Warn("lead removed while adding note", "lead_id", leadID, "error", err)
		}
		return nil, err
	}
	return &n, nil
}

// ListByLead runs the existence check and the select in one read-only
// snapshot so a concurrent delete cannot split them.
func (r *NoteRepository) ListByLead(ctx context.Context, leadID int64) ([]domain.Note, error) {
	ctx, cancel := withTimeout(ctx, r.queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin list notes: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	var exists bool
	if err := tx.GetContext(ctx, &exists, leadExistsQuery, leadID); err != nil {
		return nil, fmt.Errorf("check lead: %w", err)
	}
	if !exists {
		return nil, domain.ErrLeadNotFound
	}

	notes := []domain.Note{}
	if err := tx.SelectContext(ctx, &notes, listNotesQuery, leadID); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit list notes: %w", err)
	}
	return notes, nil
}
