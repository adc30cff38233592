package commands

import (
	"context"
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/domain/model/resource"

	"go.opentelemetry.io/otel/attribute"
)

// AcceptAssignmentCommandHandler records the driver's acceptance: the
// assignment becomes ACCEPTED, every reserved resource is committed and the
// load moves to TRIP_ACCEPTED in one transaction.
//
// Accepting an already ACCEPTED assignment again as the same driver returns
// it unchanged. A different driver, a closed assignment or a response after
// the deadline yield a ConflictError; the last wraps
// assignment.ErrAssignmentExpired even before the sweep has run.
type AcceptAssignmentCommandHandler struct {
	workflow *Workflow
}

func NewAcceptAssignmentCommandHandler(workflow *Workflow) AcceptAssignmentCommandHandler {
	return AcceptAssignmentCommandHandler{workflow: workflow}
}

func (h AcceptAssignmentCommandHandler) Handle(
	ctx context.Context,
	cmd AcceptAssignmentCommand,
) (_ *assignment.Assignment, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	w := h.workflow
	ctx, finish := w.begin(ctx, "accept_assignment", attribute.String("assignment.id", cmd.AssignmentID().String()))
	defer func() { finish(err) }()

	a, _, err := w.respond(ctx, cmd.AssignmentID(),
		func(a *assignment.Assignment, l *load.Load, resources []*resource.Resource, now time.Time) (bool, error) {
			return w.dispatcher.Confirm(a, l, resources, cmd.DriverID(), now)
		})
	return a, err
}
