package commands

import (
	"errors"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"
)

var ErrCancelAssignmentCommandIsNotConstructed = errors.New(
	"CancelAssignmentCommand must be created via NewCancelAssignmentCommand constructor",
)

// CancelAssignmentCommand withdraws a PENDING offer on behalf of a
// dispatcher.
type CancelAssignmentCommand struct { //nolint:recvcheck //using for validation
	assignmentID kernel.UUID
	cancelledBy  kernel.UUID

	guard guard.ConstructorGuard
}

func NewCancelAssignmentCommand(assignmentID, cancelledBy kernel.UUID) (CancelAssignmentCommand, error) {
	if err := errors.Join(
		requireID("assignment", assignmentID),
		requireID("cancelled by", cancelledBy),
	); err != nil {
		return CancelAssignmentCommand{}, err
	}

	return CancelAssignmentCommand{
		assignmentID: assignmentID,
		cancelledBy:  cancelledBy,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c CancelAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrCancelAssignmentCommandIsNotConstructed)
}

func (c CancelAssignmentCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c CancelAssignmentCommand) CancelledBy() kernel.UUID  { return c.cancelledBy }
