package ports

import (
	"context"

	"fleet/internal/core/domain/model/notification"
)

// NotificationRepository stores notification mirrors, at most one per Key.
type NotificationRepository interface {
	// Add fails with a ConflictError when a mirror with the same key exists.
	Add(ctx context.Context, mirror *notification.Mirror) error

	// Update fails with a ConflictError on a version mismatch.
	Update(ctx context.Context, mirror *notification.Mirror) error

	// GetByKey returns an ObjectNotFoundError when no mirror exists yet.
	GetByKey(ctx context.Context, key notification.Key) (*notification.Mirror, error)
}
