package commands

import (
	"context"
	"errors"
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/domain/model/resource"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/errs"

	"go.opentelemetry.io/otel/attribute"
)

// ExpireAssignmentsCommandHandler closes PENDING assignments whose deadline
// passed, with reason "no response" and the same release and rollback as a
// rejection.
//
// Each assignment is expired in its own transaction under its load lock.
// Assignments that were answered or cancelled in the meantime are skipped,
// so overlapping sweeps are harmless. Handle returns how many assignments
// this sweep expired; failures on individual assignments are joined into
// the error without stopping the sweep.
type ExpireAssignmentsCommandHandler struct {
	workflow *Workflow
}

func NewExpireAssignmentsCommandHandler(workflow *Workflow) ExpireAssignmentsCommandHandler {
	return ExpireAssignmentsCommandHandler{workflow: workflow}
}

func (h ExpireAssignmentsCommandHandler) Handle(ctx context.Context, cmd ExpireAssignmentsCommand) (count int, err error) {
	if err = cmd.Validate(); err != nil {
		return 0, err
	}

	w := h.workflow
	ctx, finish := w.begin(ctx, "expire_assignments", attribute.Int("sweep.limit", cmd.Limit()))
	defer func() { finish(err) }()

	var due []*assignment.Assignment
	err = w.read(ctx, func(uow ports.UnitOfWork) error {
		var err error
		due, err = uow.AssignmentRepository().ListExpired(ctx, w.clock.Now(), cmd.Limit())
		return err
	})
	if err != nil {
		return 0, err
	}

	var failures []error
	for _, a := range due {
		if ctx.Err() != nil {
			failures = append(failures, ctx.Err())
			break
		}

		_, changed, err := w.respond(ctx, a.ID(),
			func(a *assignment.Assignment, l *load.Load, resources []*resource.Resource, now time.Time) (bool, error) {
				return w.dispatcher.Expire(a, l, resources, now)
			})
		switch {
		case err != nil && errors.Is(err, errs.ErrConflict):
			// answered, cancelled or re-dated between the listing and the lock
			w.logger.DebugContext(ctx, "Skipped assignment", "assignment_id", a.ID().String(), "error", err)
		case err != nil:
			failures = append(failures, err)
			w.logger.ErrorContext(ctx, "Failed to expire assignment", "assignment_id", a.ID().String(), "error", err)
		case changed:
			count++
		}
	}

	w.metrics.AssignmentsExpired(count)
	return count, errors.Join(failures...)
}
