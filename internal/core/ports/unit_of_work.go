package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork per operation.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Repositories obtained after
// Begin share its transaction; nothing is visible to others before Commit.
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//	// ... repository calls
//	return uow.Commit(ctx)
type UnitOfWork interface {
	Begin(ctx context.Context) error

	// Commit returns an error when no transaction is active.
	Commit(ctx context.Context) error

	// Rollback returns an error when no transaction is active, which makes a
	// deferred Rollback after a successful Commit harmless.
	Rollback(ctx context.Context) error

	LoadRepository() LoadRepository
	AssignmentRepository() AssignmentRepository
	ResourceRepository() ResourceRepository
	NotificationRepository() NotificationRepository
}
