package commands

import (
	"context"

	"fleet/internal/core/domain/model/resource"
)

// RegisterResourceCommandHandler adds an AVAILABLE entry to the registry.
// Registering the same id twice yields a ConflictError.
type RegisterResourceCommandHandler struct {
	uowFactory ResourceUoWFactory
}

func NewRegisterResourceCommandHandler(uowFactory ResourceUoWFactory) RegisterResourceCommandHandler {
	return RegisterResourceCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h RegisterResourceCommandHandler) Handle(ctx context.Context, cmd RegisterResourceCommand) (*resource.Resource, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	r, err := resource.NewResource(cmd.ResourceID(), cmd.OrgID(), cmd.Kind(), cmd.Name())
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

	if err = uow.ResourceRepository().Add(ctx, r); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return r, nil
}
