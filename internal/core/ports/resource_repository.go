package ports

import (
	"context"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/resource"
)

// ResourceRepository is the backing store of the Resource Registry.
type ResourceRepository interface {
	// Add registers a new entry. Registering an id twice yields a
	// ConflictError.
	Add(ctx context.Context, aggregate *resource.Resource) error

	// Update fails with a ConflictError on a version mismatch.
	Update(ctx context.Context, aggregate *resource.Resource) error

	Get(ctx context.Context, id kernel.UUID) (*resource.Resource, error)

	// GetMany returns the entries in the order of ids. A missing id yields an
	// ObjectNotFoundError.
	GetMany(ctx context.Context, ids []kernel.UUID) ([]*resource.Resource, error)

	// ListHeldBy returns every entry RESERVED or COMMITTED for the load.
	ListHeldBy(ctx context.Context, loadID kernel.UUID) ([]*resource.Resource, error)
}
