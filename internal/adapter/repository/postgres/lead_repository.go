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

const leadColumns = `id, company_name, contact_person, organization_number, industry, website, status, summary, created_at, updated_at`

const (
	insertLeadQuery = `
		INSERT INTO leads (company_name, contact_person, organization_number, industry, website, status, summary)
		VALUES (:company_name, :contact_person, :organization_number, :industry, :website, :status, :summary)
		RETURNING ` + leadColumns

	listLeadsQuery = `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC, id DESC`

	getLeadQuery = `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	// updated_at is written here so the column does not depend on a trigger.
	updateLeadQuery = `
		UPDATE leads SET
			company_name = :company_name,
			contact_person = :contact_person,
			organization_number = :organization_number,
			industry = :industry,
			website = :website,
			status = :status,
			summary = :summary,
			updated_at = NOW()
		WHERE id = :id`

	deleteLeadQuery = `DELETE FROM leads WHERE id = $1`
)

// leadArgs binds named parameters for insert and update.
type leadArgs struct {
	ID int64 `db:"id"`
	domain.LeadInput
}

// LeadRepository implements domain.LeadRepository on PostgreSQL.
type LeadRepository struct {
	db           *sqlx.DB
	logger       *slog.Logger
	queryTimeout time.Duration
}

// NewLeadRepository creates a new PostgreSQL lead repository.
func NewLeadRepository(db *sqlx.DB, logger *slog.Logger, queryTimeout time.Duration) *LeadRepository {
	return &LeadRepository{
		db:           db,
		logger:       logger.With("component", "postgres_lead_repository"),
		queryTimeout: queryTimeout,
	}
}

func (r *LeadRepository) Create(ctx context.Context, in domain.LeadInput) (*domain.Lead, error) {
	ctx, cancel := withTimeout(ctx, r.queryTimeout)
	defer cancel()

	rows, err := r.db.NamedQueryContext(ctx, insertLeadQuery, leadArgs{LeadInput: in})
	if err != nil {
		return nil, fmt.Errorf("insert lead: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("insert lead: %w", err)
		}
		return nil, errors.New("insert lead: no row returned")
	}

	var lead domain.Lead
	if err := rows.StructScan(&lead); err != nil {
		return nil, fmt.Errorf("scan inserted lead: %w", err)
	}

	r.logger.Debug("inserted lead", "lead_id", lead.ID)
	return &lead, nil
}

func (r *LeadRepository) List(ctx context.Context) ([]domain.Lead, error) {
	ctx, cancel := withTimeout(ctx, r.queryTimeout)
	defer cancel()

	leads := []domain.Lead{}
	if err := r.db.SelectContext(ctx, &leads, listLeadsQuery); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

func (r *LeadRepository) Get(ctx context.Context, id int64) (*domain.Lead, error) {
	ctx, cancel := withTimeout(ctx, r.queryTimeout)
	defer cancel()

	var lead domain.Lead
	if err := r.db.GetContext(ctx, &lead, getLeadQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLeadNotFound
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return &lead, nil
}

func (r *LeadRepository) Update(ctx context.Context, id int64, in domain.LeadInput) error {
	ctx, cancel := withTimeout(ctx, r.queryTimeout)
	defer cancel()

	res, err := r.db.NamedExecContext(ctx, updateLeadQuery, leadArgs{ID: id, LeadInput: in})
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	return checkAffected(res, "update lead")
}

func (r *LeadRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx, r.queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, deleteLeadQuery, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	return checkAffected(res, "delete lead")
}

func checkAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}
