package commands

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var ErrCreateAssignmentCommandIsNotConstructed = errors.New(
	"CreateAssignmentCommand must be created via NewCreateAssignmentCommand constructor",
)

// CreateAssignmentCommand offers a load to a driver, optionally bundled with
// a truck and trailer.
//
// Example:
//
//	cmd, err := NewCreateAssignmentCommand(loadID, driverID, []kernel.UUID{truckID}, dispatcherID, 0)
//	if err != nil {
//	    return err
//	}
//	a, err := handler.Handle(ctx, cmd)
type CreateAssignmentCommand struct { //nolint:recvcheck //using for validation
	loadID     kernel.UUID
	driverID   kernel.UUID
	vehicleIDs []kernel.UUID
	offeredBy  kernel.UUID
	ttl        time.Duration

	guard guard.ConstructorGuard
}

// NewCreateAssignmentCommand builds the command. A zero ttl selects the
// workflow default.
func NewCreateAssignmentCommand(
	loadID, driverID kernel.UUID,
	vehicleIDs []kernel.UUID,
	offeredBy kernel.UUID,
	ttl time.Duration,
) (CreateAssignmentCommand, error) {
	cmd := CreateAssignmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		requireID("load", loadID),
		requireID("driver", driverID),
		requireID("offered by", offeredBy),
		cmd.setVehicles(vehicleIDs),
		cmd.setTTL(ttl),
	); err != nil {
		return CreateAssignmentCommand{}, err
	}
	cmd.loadID, cmd.driverID, cmd.offeredBy = loadID, driverID, offeredBy

	return cmd, nil
}

func (c CreateAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrCreateAssignmentCommandIsNotConstructed)
}

func (c CreateAssignmentCommand) LoadID() kernel.UUID       { return c.loadID }
func (c CreateAssignmentCommand) DriverID() kernel.UUID     { return c.driverID }
func (c CreateAssignmentCommand) VehicleIDs() []kernel.UUID { return slices.Clone(c.vehicleIDs) }
func (c CreateAssignmentCommand) OfferedBy() kernel.UUID    { return c.offeredBy }
func (c CreateAssignmentCommand) TTL() time.Duration        { return c.ttl }

// ResourceIDs returns the driver followed by the vehicles.
func (c CreateAssignmentCommand) ResourceIDs() []kernel.UUID {
	return append([]kernel.UUID{c.driverID}, c.vehicleIDs...)
}

func (c *CreateAssignmentCommand) setVehicles(vehicleIDs []kernel.UUID) error {
	for _, id := range vehicleIDs {
		if err := id.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("vehicle", err)
		}
	}
	c.vehicleIDs = slices.Clone(vehicleIDs)
	return nil
}

func (c *CreateAssignmentCommand) setTTL(ttl time.Duration) error {
	if ttl < 0 {
		return errs.NewValueIsInvalidErrorWithCause("ttl", fmt.Errorf("%s is negative", ttl))
	}
	c.ttl = ttl
	return nil
}

func requireID(param string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(param, err)
	}
	return nil
}
