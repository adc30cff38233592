package commands

import (
	"errors"

	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

// DefaultExpiryBatch bounds one sweep when no limit is given.
const DefaultExpiryBatch = 100

var ErrExpireAssignmentsCommandIsNotConstructed = errors.New(
	"ExpireAssignmentsCommand must be created via NewExpireAssignmentsCommand constructor",
)

// ExpireAssignmentsCommand asks for one expiry sweep over at most limit
// assignments.
type ExpireAssignmentsCommand struct { //nolint:recvcheck //using for validation
	limit int

	guard guard.ConstructorGuard
}

// NewExpireAssignmentsCommand uses DefaultExpiryBatch for a zero limit.
func NewExpireAssignmentsCommand(limit int) (ExpireAssignmentsCommand, error) {
	if limit < 0 {
		return ExpireAssignmentsCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 0, nil)
	}
	if limit == 0 {
		limit = DefaultExpiryBatch
	}

	return ExpireAssignmentsCommand{
		limit: limit,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c ExpireAssignmentsCommand) Validate() error {
	return c.guard.Validate(ErrExpireAssignmentsCommandIsNotConstructed)
}

func (c ExpireAssignmentsCommand) Limit() int { return c.limit }
