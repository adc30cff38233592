package commands

import (
	"errors"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"
)

var ErrChangeResourceAvailabilityCommandIsNotConstructed = errors.New(
	"ChangeResourceAvailabilityCommand must be created via NewChangeResourceAvailabilityCommand constructor",
)

// ChangeResourceAvailabilityCommand takes a free resource out of rotation or
// puts it back.
type ChangeResourceAvailabilityCommand struct { //nolint:recvcheck //using for validation
	resourceID kernel.UUID
	available  bool

	guard guard.ConstructorGuard
}

func NewChangeResourceAvailabilityCommand(resourceID kernel.UUID, available bool) (ChangeResourceAvailabilityCommand, error) {
	if err := requireID("resource", resourceID); err != nil {
		return ChangeResourceAvailabilityCommand{}, err
	}

	return ChangeResourceAvailabilityCommand{
		resourceID: resourceID,
		available:  available,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c ChangeResourceAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrChangeResourceAvailabilityCommandIsNotConstructed)
}

func (c ChangeResourceAvailabilityCommand) ResourceID() kernel.UUID { return c.resourceID }
func (c ChangeResourceAvailabilityCommand) Available() bool         { return c.available }
