package commands

import (
	"errors"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"
)

var ErrAcceptAssignmentCommandIsNotConstructed = errors.New(
	"AcceptAssignmentCommand must be created via NewAcceptAssignmentCommand constructor",
)

// AcceptAssignmentCommand is the offered driver's acceptance.
type AcceptAssignmentCommand struct { //nolint:recvcheck //using for validation
	assignmentID kernel.UUID
	driverID     kernel.UUID

	guard guard.ConstructorGuard
}

func NewAcceptAssignmentCommand(assignmentID, driverID kernel.UUID) (AcceptAssignmentCommand, error) {
	if err := errors.Join(
		requireID("assignment", assignmentID),
		requireID("driver", driverID),
	); err != nil {
		return AcceptAssignmentCommand{}, err
	}

	return AcceptAssignmentCommand{
		assignmentID: assignmentID,
		driverID:     driverID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c AcceptAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrAcceptAssignmentCommandIsNotConstructed)
}

func (c AcceptAssignmentCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c AcceptAssignmentCommand) DriverID() kernel.UUID     { return c.driverID }
