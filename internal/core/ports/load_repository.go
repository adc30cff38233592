package ports

import (
	"context"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
)

// LoadRepository persists Load aggregates with their stage history.
type LoadRepository interface {
	// Add persists a new load. A duplicate number yields a ConflictError.
	Add(ctx context.Context, aggregate *load.Load) error

	// Update persists a changed load, appending new history entries. It fails
	// with a ConflictError when the stored version differs from the
	// aggregate's, i.e. another writer got there first.
	Update(ctx context.Context, aggregate *load.Load) error

	// Get returns an ObjectNotFoundError for unknown ids.
	Get(ctx context.Context, id kernel.UUID) (*load.Load, error)
}
