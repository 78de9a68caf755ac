package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"taller/internal/core/apperror"
)

// Postgres error codes this layer maps to domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// MapError translates driver errors into domain errors: unique violations
// become Duplicate (retryable for code allocation races), foreign key
// violations become Conflict. Other errors pass through unchanged.
func MapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return apperror.NewDuplicate(entity, pgErr.ConstraintName, "").
			WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewConflict(entity + " is referenced by other records").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	}
	return err
}
