package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"

	"github.com/V4T54L/leadstore/internal/domain"
)

// mapNoteInsertError translates driver errors from the note insert.
// A foreign key violation means the lead was deleted concurrently.
func mapNoteInsertError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return fmt.Errorf("insert note: %w", err)
	}

	switch string(pqErr.Code) {
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %s", domain.ErrLeadNotFound, pqErr.Detail)
	case pgerrcode.QueryCanceled:
		return fmt.Errorf("insert note: query canceled: %w", err)
	default:
		return fmt.Errorf("insert note: postgres error [%s] %s: %w", pqErr.Code, pqErr.Message, err)
	}
}
