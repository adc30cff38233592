package commands

import (
	"errors"
	"strings"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/resource"
	"fleet/internal/pkg/guard"
)

var ErrRegisterResourceCommandIsNotConstructed = errors.New(
	"RegisterResourceCommand must be created via NewRegisterResourceCommand constructor",
)

// RegisterResourceCommand adds a driver or vehicle to the Resource Registry.
type RegisterResourceCommand struct { //nolint:recvcheck //using for validation
	resourceID kernel.UUID
	orgID      kernel.UUID
	kind       resource.Kind
	name       string

	guard guard.ConstructorGuard
}

func NewRegisterResourceCommand(
	resourceID, orgID kernel.UUID,
	kind resource.Kind,
	name string,
) (RegisterResourceCommand, error) {
	name = strings.TrimSpace(name)
	var nameErr error
	if name == "" {
		nameErr = resource.ErrNameIsRequired
	}

	if err := errors.Join(
		requireID("resource", resourceID),
		requireID("organization", orgID),
		kind.Validate(),
		nameErr,
	); err != nil {
		return RegisterResourceCommand{}, err
	}

	return RegisterResourceCommand{
		resourceID: resourceID,
		orgID:      orgID,
		kind:       kind,
		name:       name,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c RegisterResourceCommand) Validate() error {
	return c.guard.Validate(ErrRegisterResourceCommandIsNotConstructed)
}

func (c RegisterResourceCommand) ResourceID() kernel.UUID { return c.resourceID }
func (c RegisterResourceCommand) OrgID() kernel.UUID      { return c.orgID }
func (c RegisterResourceCommand) Kind() resource.Kind     { return c.kind }
func (c RegisterResourceCommand) Name() string            { return c.name }
