package sqlerr_test

import (
	"errors"
	"fmt"
	"testing"

	"fleet/internal/adapters/out/postgres/sqlerr"
	"fleet/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicate(t *testing.T) {
	assert.True(t, sqlerr.IsDuplicate(gorm.ErrDuplicatedKey))
	assert.True(t, sqlerr.IsDuplicate(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, sqlerr.IsDuplicate(&pgconn.PgError{Code: "23503"}))
	assert.False(t, sqlerr.IsDuplicate(errors.New("boom")))
}

func TestConflict(t *testing.T) {
	err := sqlerr.Conflict(gorm.ErrDuplicatedKey, "load", "LD-1", "number is taken")
	assert.ErrorIs(t, err, errs.ErrConflict)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	other := errors.New("connection reset")
	assert.Same(t, other, sqlerr.Conflict(other, "load", "LD-1", "number is taken"))
}
