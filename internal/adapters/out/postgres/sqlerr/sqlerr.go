// Package sqlerr maps Postgres failures onto the errs taxonomy.
package sqlerr

import (
	"errors"

	"fleet/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// IsDuplicate reports whether err is a unique constraint violation, whether
// or not gorm translated it.
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Conflict turns a unique violation into a ConflictError and passes any
// other error through.
func Conflict(err error, entity string, id any, reason string) error {
	if IsDuplicate(err) {
		return errs.NewConflictErrorWithCause(entity, id, reason, err)
	}
	return err
}

// StaleVersion is returned when a versioned UPDATE matched no row.
func StaleVersion(entity string, id any) error {
	return errs.NewConflictError(entity, id, "modified concurrently")
}
