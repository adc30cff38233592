package commands

import (
	"context"
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/domain/model/resource"

	"go.opentelemetry.io/otel/attribute"
)

// CancelAssignmentCommandHandler withdraws a PENDING offer with the same
// release and rollback as a rejection. An offer past its deadline that the
// sweep has not reached yet can still be cancelled. Cancelling twice is a
// no-op; cancelling an answered offer is a ConflictError.
type CancelAssignmentCommandHandler struct {
	workflow *Workflow
}

func NewCancelAssignmentCommandHandler(workflow *Workflow) CancelAssignmentCommandHandler {
	return CancelAssignmentCommandHandler{workflow: workflow}
}

func (h CancelAssignmentCommandHandler) Handle(
	ctx context.Context,
	cmd CancelAssignmentCommand,
) (_ *assignment.Assignment, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	w := h.workflow
	ctx, finish := w.begin(ctx, "cancel_assignment", attribute.String("assignment.id", cmd.AssignmentID().String()))
	defer func() { finish(err) }()

	a, _, err := w.respond(ctx, cmd.AssignmentID(),
		func(a *assignment.Assignment, l *load.Load, resources []*resource.Resource, now time.Time) (bool, error) {
			return w.dispatcher.Withdraw(a, l, resources, cmd.CancelledBy(), now)
		})
	return a, err
}
