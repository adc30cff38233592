package commands

import (
	"errors"
	"strings"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/pkg/guard"
)

var ErrCreateLoadCommandIsNotConstructed = errors.New(
	"CreateLoadCommand must be created via NewCreateLoadCommand constructor",
)

// CreateLoadCommand registers a new shipment in stage CREATED.
//
// Example:
//
//	cmd, err := NewCreateLoadCommand(kernel.NewUUID(), orgID, "LD-1042", origin, destination, window, terms, dispatcherID)
//	if err != nil {
//	    return err
//	}
//	l, err := handler.Handle(ctx, cmd)
type CreateLoadCommand struct { //nolint:recvcheck //using for validation
	loadID      kernel.UUID
	orgID       kernel.UUID
	number      string
	origin      kernel.Place
	destination kernel.Place
	schedule    kernel.TimeWindow
	terms       load.Terms
	createdBy   kernel.UUID

	guard guard.ConstructorGuard
}

func NewCreateLoadCommand(
	loadID, orgID kernel.UUID,
	number string,
	origin, destination kernel.Place,
	schedule kernel.TimeWindow,
	terms load.Terms,
	createdBy kernel.UUID,
) (CreateLoadCommand, error) {
	number = strings.TrimSpace(number)
	var numberErr error
	if number == "" {
		numberErr = load.ErrNumberIsRequired
	}

	if err := errors.Join(
		requireID("load", loadID),
		requireID("organization", orgID),
		numberErr,
		origin.Validate(),
		destination.Validate(),
		schedule.Validate(),
		terms.Validate(),
		requireID("created by", createdBy),
	); err != nil {
		return CreateLoadCommand{}, err
	}

	return CreateLoadCommand{
		loadID:      loadID,
		orgID:       orgID,
		number:      number,
		origin:      origin,
		destination: destination,
		schedule:    schedule,
		terms:       terms,
		createdBy:   createdBy,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c CreateLoadCommand) Validate() error {
	return c.guard.Validate(ErrCreateLoadCommandIsNotConstructed)
}

func (c CreateLoadCommand) LoadID() kernel.UUID         { return c.loadID }
func (c CreateLoadCommand) OrgID() kernel.UUID          { return c.orgID }
func (c CreateLoadCommand) Number() string              { return c.number }
func (c CreateLoadCommand) Origin() kernel.Place        { return c.origin }
func (c CreateLoadCommand) Destination() kernel.Place   { return c.destination }
func (c CreateLoadCommand) Schedule() kernel.TimeWindow { return c.schedule }
func (c CreateLoadCommand) Terms() load.Terms           { return c.terms }
func (c CreateLoadCommand) CreatedBy() kernel.UUID      { return c.createdBy }
