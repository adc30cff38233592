package commands

import (
	"context"
	"errors"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/errs"

	"go.opentelemetry.io/otel/attribute"
)

// CreateAssignmentCommandHandler offers a CREATED load to a driver.
//
// The load, the driver and every vehicle are locked for the duration. The
// driver and vehicles are reserved all-or-nothing; on any failure the
// transaction is rolled back and nothing persists. After commit the driver's
// mirror is created and assignment.created is published.
//
// Returns:
//   - ObjectNotFoundError for an unknown load or resource
//   - ConflictError when the load is not CREATED, already has a PENDING
//     assignment, or a resource is not AVAILABLE
type CreateAssignmentCommandHandler struct {
	workflow *Workflow
}

func NewCreateAssignmentCommandHandler(workflow *Workflow) CreateAssignmentCommandHandler {
	return CreateAssignmentCommandHandler{workflow: workflow}
}

func (h CreateAssignmentCommandHandler) Handle(
	ctx context.Context,
	cmd CreateAssignmentCommand,
) (_ *assignment.Assignment, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	w := h.workflow
	ctx, finish := w.begin(ctx, "create_assignment", attribute.String("load.id", cmd.LoadID().String()))
	defer func() { finish(err) }()

	unlock, err := w.lockBundle(ctx, cmd.LoadID(), cmd.ResourceIDs())
	if err != nil {
		return nil, err
	}
	defer unlock()

	ttl := cmd.TTL()
	if ttl == 0 {
		ttl = w.defaultTTL
	}
	now := w.clock.Now()

	var (
		a *assignment.Assignment
		l *load.Load
	)
	err = w.write(ctx, func(uow ports.UnitOfWork) error {
		var err error
		if l, err = uow.LoadRepository().Get(ctx, cmd.LoadID()); err != nil {
			return err
		}

		pending, err := uow.AssignmentRepository().GetPendingByLoad(ctx, l.ID())
		switch {
		case err == nil:
			return errs.NewConflictError("load", l.ID(), "already has pending assignment "+pending.ID().String())
		case !errors.Is(err, errs.ErrObjectNotFound):
			return err
		}

		resources, err := uow.ResourceRepository().GetMany(ctx, cmd.ResourceIDs())
		if err != nil {
			return err
		}

		a, err = w.dispatcher.Offer(l, resources[0], resources[1:], kernel.NewUUID(), cmd.OfferedBy(), now, ttl)
		if err != nil {
			return err
		}

		if err = uow.AssignmentRepository().Add(ctx, a); err != nil {
			return err
		}
		if err = uow.LoadRepository().Update(ctx, l); err != nil {
			return err
		}
		for _, r := range resources {
			if err = uow.ResourceRepository().Update(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.logger.InfoContext(ctx, "Assignment created",
		"assignment_id", a.ID().String(),
		"load_id", l.ID().String(),
		"driver_id", a.DriverID().String(),
		"expires_at", a.ExpiresAt(),
	)
	w.afterCommit(ctx, a, l)

	return a, nil
}
