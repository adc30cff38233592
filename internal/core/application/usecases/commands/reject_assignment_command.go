package commands

import (
	"errors"
	"strings"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

const maxReasonLength = 500

var ErrRejectAssignmentCommandIsNotConstructed = errors.New(
	"RejectAssignmentCommand must be created via NewRejectAssignmentCommand constructor",
)

// RejectAssignmentCommand is the offered driver's refusal with an optional
// reason shown to the dispatcher.
type RejectAssignmentCommand struct { //nolint:recvcheck //using for validation
	assignmentID kernel.UUID
	driverID     kernel.UUID
	reason       string

	guard guard.ConstructorGuard
}

func NewRejectAssignmentCommand(assignmentID, driverID kernel.UUID, reason string) (RejectAssignmentCommand, error) {
	reason = strings.TrimSpace(reason)
	var tooLong error
	if len(reason) > maxReasonLength {
		tooLong = errs.NewValueIsOutOfRangeError("reason length", len(reason), 0, maxReasonLength)
	}

	if err := errors.Join(
		requireID("assignment", assignmentID),
		requireID("driver", driverID),
		tooLong,
	); err != nil {
		return RejectAssignmentCommand{}, err
	}

	return RejectAssignmentCommand{
		assignmentID: assignmentID,
		driverID:     driverID,
		reason:       reason,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c RejectAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrRejectAssignmentCommandIsNotConstructed)
}

func (c RejectAssignmentCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c RejectAssignmentCommand) DriverID() kernel.UUID     { return c.driverID }
func (c RejectAssignmentCommand) Reason() string            { return c.reason }
