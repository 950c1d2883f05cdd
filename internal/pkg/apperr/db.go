package apperr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// IsUniqueViolation recognises unique-index failures from Postgres and SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsExclusionViolation recognises the reservation overlap constraint on Postgres.
func IsExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation
}

// FromDB maps storage errors: missing rows become NotFound(entity), unique or
// exclusion violations become Conflict(conflictMsg), the rest are wrapped.
func FromDB(err error, entity, conflictMsg, prefix string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(entity)
	case conflictMsg != "" && (IsUniqueViolation(err) || IsExclusionViolation(err)):
		return Conflict(conflictMsg)
	default:
		return Wrap(err, prefix)
	}
}
