package commands

import (
	"context"

	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/ports"
)

// CreateLoadCommandHandler persists a new load. A load number already in use
// yields a ConflictError from the repository.
type CreateLoadCommandHandler struct {
	uowFactory LoadUoWFactory
	clock      ports.Clock
}

func NewCreateLoadCommandHandler(uowFactory LoadUoWFactory, clock ports.Clock) CreateLoadCommandHandler {
	return CreateLoadCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h CreateLoadCommandHandler) Handle(ctx context.Context, cmd CreateLoadCommand) (*load.Load, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	l, err := load.NewLoad(cmd.LoadID(), cmd.OrgID(), cmd.Number(), cmd.Origin(), cmd.Destination(),
		cmd.Schedule(), cmd.Terms(), cmd.CreatedBy(), h.clock.Now())
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.LoadRepository().Add(ctx, l); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return l, nil
}
