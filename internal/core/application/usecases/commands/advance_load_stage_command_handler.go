package commands

import (
	"context"
	"errors"
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/domain/model/resource"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/errs"

	"go.opentelemetry.io/otel/attribute"
)

// AdvanceLoadStageCommandHandler performs post-acceptance stage progression
// and cancellation.
//
// Reaching COMPLETED or CANCELLED releases every resource the load holds.
// Cancelling a load with an offer out also cancels that PENDING assignment,
// in the same transaction. Moves the stage machine does not allow yield an
// InvalidTransitionError; ASSIGNED and TRIP_ACCEPTED are only reached through
// the assignment operations.
type AdvanceLoadStageCommandHandler struct {
	workflow *Workflow
}

func NewAdvanceLoadStageCommandHandler(workflow *Workflow) AdvanceLoadStageCommandHandler {
	return AdvanceLoadStageCommandHandler{workflow: workflow}
}

func (h AdvanceLoadStageCommandHandler) Handle(ctx context.Context, cmd AdvanceLoadStageCommand) (_ *load.Load, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	w := h.workflow
	ctx, finish := w.begin(ctx, "advance_load_stage",
		attribute.String("load.id", cmd.LoadID().String()),
		attribute.String("load.target_stage", cmd.Target().String()),
	)
	defer func() { finish(err) }()

	unlockLoad, err := w.locks.Lock(ctx, loadKey(cmd.LoadID()))
	if err != nil {
		return nil, err
	}
	defer unlockLoad()

	releases := cmd.Target() == load.Completed || cmd.Target() == load.Cancelled

	// Only this load's lock holder can reserve for it, so the held set read
	// here cannot grow before the resource locks are taken.
	var held []kernel.UUID
	if releases {
		err = w.read(ctx, func(uow ports.UnitOfWork) error {
			rs, err := uow.ResourceRepository().ListHeldBy(ctx, cmd.LoadID())
			for _, r := range rs {
				held = append(held, r.ID())
			}
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(held))
	for _, id := range held {
		keys = append(keys, resourceKey(id))
	}
	unlockResources, err := w.locks.Lock(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer unlockResources()

	now := w.clock.Now()
	var (
		l         *load.Load
		from      load.Stage
		cancelled *assignment.Assignment
	)
	err = w.write(ctx, func(uow ports.UnitOfWork) error {
		var err error
		if l, err = uow.LoadRepository().Get(ctx, cmd.LoadID()); err != nil {
			return err
		}
		from = l.Stage()

		if cmd.Target() == load.Cancelled {
			if cancelled, err = cancelPending(ctx, uow, l.ID(), cmd.Actor(), now); err != nil {
				return err
			}
		}

		if err = l.Advance(cmd.Target(), cmd.Actor(), now, cmd.Note(), cmd.Report()); err != nil {
			return err
		}
		if err = uow.LoadRepository().Update(ctx, l); err != nil {
			return err
		}

		if !releases {
			return nil
		}
		resources, err := uow.ResourceRepository().GetMany(ctx, held)
		if err != nil {
			return err
		}
		w.dispatcher.Release(l, resources)
		return updateResources(ctx, uow, resources)
	})
	if err != nil {
		return nil, err
	}

	w.logger.InfoContext(ctx, "Load stage changed",
		"load_id", l.ID().String(),
		"from", from.String(),
		"to", l.Stage().String(),
		"released", len(held),
	)
	if cancelled != nil {
		w.afterCommit(ctx, cancelled, l)
	}
	w.publishStageChange(ctx, l, from, cancelled)

	return l, nil
}

// cancelPending closes the load's PENDING assignment, if any.
func cancelPending(
	ctx context.Context,
	uow ports.UnitOfWork,
	loadID, actor kernel.UUID,
	now time.Time,
) (*assignment.Assignment, error) {
	a, err := uow.AssignmentRepository().GetPendingByLoad(ctx, loadID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err = a.Cancel(actor, now); err != nil {
		return nil, err
	}
	if err = uow.AssignmentRepository().Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func updateResources(ctx context.Context, uow ports.UnitOfWork, resources []*resource.Resource) error {
	for _, r := range resources {
		if err := uow.ResourceRepository().Update(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
