package ports

import (
	"context"
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
)

// AssignmentRepository persists Assignment aggregates.
type AssignmentRepository interface {
	Add(ctx context.Context, aggregate *assignment.Assignment) error

	// Update fails with a ConflictError on a version mismatch.
	Update(ctx context.Context, aggregate *assignment.Assignment) error

	Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error)

	// GetPendingByLoad returns the PENDING assignment of a load, or an
	// ObjectNotFoundError when there is none.
	GetPendingByLoad(ctx context.Context, loadID kernel.UUID) (*assignment.Assignment, error)

	// ListExpired returns up to limit PENDING assignments whose deadline is at
	// or before now, oldest deadline first.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*assignment.Assignment, error)
}
