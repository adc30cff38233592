package memory

import (
	"context"

	"fleet/internal/core/ports"
)

// UnitOfWork holds the store semaphore from Begin until Commit or Rollback.
// Repository calls outside a transaction run in their own short one.
type UnitOfWork struct {
	store *Store
	tx    *view
}

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return nil
	}
	if err := u.store.acquire(ctx); err != nil {
		return err
	}
	u.tx = newView(u.store)
	return nil
}

func (u *UnitOfWork) Commit(_ context.Context) error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	u.tx.apply()
	u.tx = nil
	u.store.release()
	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	u.tx = nil
	u.store.release()
	return nil
}

func (u *UnitOfWork) LoadRepository() ports.LoadRepository {
	return &LoadRepository{uow: u}
}

func (u *UnitOfWork) AssignmentRepository() ports.AssignmentRepository {
	return &AssignmentRepository{uow: u}
}

func (u *UnitOfWork) ResourceRepository() ports.ResourceRepository {
	return &ResourceRepository{uow: u}
}

func (u *UnitOfWork) NotificationRepository() ports.NotificationRepository {
	return &NotificationRepository{uow: u}
}

// do runs fn against the active transaction, or inside a one-off one.
func (u *UnitOfWork) do(ctx context.Context, fn func(v *view) error) error {
	if u.tx != nil {
		return fn(u.tx)
	}
	if err := u.store.acquire(ctx); err != nil {
		return err
	}
	defer u.store.release()

	v := newView(u.store)
	if err := fn(v); err != nil {
		return err
	}
	v.apply()
	return nil
}
