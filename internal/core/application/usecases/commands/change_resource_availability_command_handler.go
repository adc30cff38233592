package commands

import (
	"context"

	"fleet/internal/core/domain/model/resource"
)

// ChangeResourceAvailabilityCommandHandler toggles an entry between
// AVAILABLE and UNAVAILABLE under the resource's lock. Entries RESERVED or
// COMMITTED for a load yield a ConflictError; they are freed through the
// workflow only.
type ChangeResourceAvailabilityCommandHandler struct {
	uowFactory ResourceUoWFactory
	locks      Locker
}

func NewChangeResourceAvailabilityCommandHandler(
	uowFactory ResourceUoWFactory,
	locks Locker,
) ChangeResourceAvailabilityCommandHandler {
	return ChangeResourceAvailabilityCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
	}
}

func (h ChangeResourceAvailabilityCommandHandler) Handle(
	ctx context.Context,
	cmd ChangeResourceAvailabilityCommand,
) (*resource.Resource, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	unlock, err := h.locks.Lock(ctx, resourceKey(cmd.ResourceID()))
	if err != nil {
		return nil, err
	}
	defer unlock()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ResourceRepository()
	r, err := repo.Get(ctx, cmd.ResourceID())
	if err != nil {
		return nil, err
	}

	if cmd.Available() {
		err = r.MarkAvailable()
	} else {
		err = r.MarkUnavailable()
	}
	if err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, r); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return r, nil
}
