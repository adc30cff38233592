package commands

import (
	"errors"
	"strings"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/pkg/guard"
)

var ErrAdvanceLoadStageCommandIsNotConstructed = errors.New(
	"AdvanceLoadStageCommand must be created via NewAdvanceLoadStageCommand constructor",
)

// AdvanceLoadStageCommand moves a load forward after the trip was accepted,
// or cancels it. Report is only read when the target is DELIVERED or later.
type AdvanceLoadStageCommand struct { //nolint:recvcheck //using for validation
	loadID kernel.UUID
	target load.Stage
	actor  kernel.UUID
	note   string
	report *load.DeliveryReport

	guard guard.ConstructorGuard
}

func NewAdvanceLoadStageCommand(
	loadID kernel.UUID,
	target load.Stage,
	actor kernel.UUID,
	note string,
	report *load.DeliveryReport,
) (AdvanceLoadStageCommand, error) {
	if err := errors.Join(
		requireID("load", loadID),
		target.Validate(),
		requireID("actor", actor),
	); err != nil {
		return AdvanceLoadStageCommand{}, err
	}

	return AdvanceLoadStageCommand{
		loadID: loadID,
		target: target,
		actor:  actor,
		note:   strings.TrimSpace(note),
		report: report,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c AdvanceLoadStageCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceLoadStageCommandIsNotConstructed)
}

func (c AdvanceLoadStageCommand) LoadID() kernel.UUID          { return c.loadID }
func (c AdvanceLoadStageCommand) Target() load.Stage           { return c.target }
func (c AdvanceLoadStageCommand) Actor() kernel.UUID           { return c.actor }
func (c AdvanceLoadStageCommand) Note() string                 { return c.note }
func (c AdvanceLoadStageCommand) Report() *load.DeliveryReport { return c.report }
