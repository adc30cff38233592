package commands

import (
	"context"
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/domain/model/resource"

	"go.opentelemetry.io/otel/attribute"
)

// RejectAssignmentCommandHandler records the driver's refusal. The
// assignment becomes REJECTED, its resources are released and the load goes
// back to CREATED with its driver and vehicles cleared, all in one
// transaction. The dispatcher is then told the load number and reason so the
// load can be offered to someone else.
type RejectAssignmentCommandHandler struct {
	workflow *Workflow
}

func NewRejectAssignmentCommandHandler(workflow *Workflow) RejectAssignmentCommandHandler {
	return RejectAssignmentCommandHandler{workflow: workflow}
}

func (h RejectAssignmentCommandHandler) Handle(
	ctx context.Context,
	cmd RejectAssignmentCommand,
) (_ *assignment.Assignment, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	w := h.workflow
	ctx, finish := w.begin(ctx, "reject_assignment", attribute.String("assignment.id", cmd.AssignmentID().String()))
	defer func() { finish(err) }()

	a, _, err := w.respond(ctx, cmd.AssignmentID(),
		func(a *assignment.Assignment, l *load.Load, resources []*resource.Resource, now time.Time) (bool, error) {
			return w.dispatcher.Decline(a, l, resources, cmd.DriverID(), cmd.Reason(), now)
		})
	return a, err
}
