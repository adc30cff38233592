package commands_test

import (
	"strings"
	"testing"
	"time"

	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/domain/model/resource"
	"fleet/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateAssignmentCommand(t *testing.T) {
	loadID, driverID, truckID, dispatcherID := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()

	cmd, err := commands.NewCreateAssignmentCommand(loadID, driverID, []kernel.UUID{truckID}, dispatcherID, 0)

	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.Equal(t, []kernel.UUID{driverID, truckID}, cmd.ResourceIDs())
	assert.Zero(t, cmd.TTL())
}

func TestNewCreateAssignmentCommand_InvalidInput(t *testing.T) {
	_, err := commands.NewCreateAssignmentCommand(kernel.UUID{}, kernel.NewUUID(), nil, kernel.NewUUID(), 0)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = commands.NewCreateAssignmentCommand(kernel.NewUUID(), kernel.NewUUID(), []kernel.UUID{{}}, kernel.NewUUID(), 0)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = commands.NewCreateAssignmentCommand(kernel.NewUUID(), kernel.NewUUID(), nil, kernel.NewUUID(), -time.Second)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestCommands_ZeroValueIsNotConstructed(t *testing.T) {
	cases := map[error]interface{ Validate() error }{
		commands.ErrCreateAssignmentCommandIsNotConstructed:           commands.CreateAssignmentCommand{},
		commands.ErrAcceptAssignmentCommandIsNotConstructed:           commands.AcceptAssignmentCommand{},
		commands.ErrRejectAssignmentCommandIsNotConstructed:           commands.RejectAssignmentCommand{},
		commands.ErrCancelAssignmentCommandIsNotConstructed:           commands.CancelAssignmentCommand{},
		commands.ErrExpireAssignmentsCommandIsNotConstructed:          commands.ExpireAssignmentsCommand{},
		commands.ErrAdvanceLoadStageCommandIsNotConstructed:           commands.AdvanceLoadStageCommand{},
		commands.ErrCreateLoadCommandIsNotConstructed:                 commands.CreateLoadCommand{},
		commands.ErrRegisterResourceCommandIsNotConstructed:           commands.RegisterResourceCommand{},
		commands.ErrChangeResourceAvailabilityCommandIsNotConstructed: commands.ChangeResourceAvailabilityCommand{},
	}

	for want, cmd := range cases {
		assert.ErrorIs(t, cmd.Validate(), want)
	}
}

func TestNewRejectAssignmentCommand(t *testing.T) {
	cmd, err := commands.NewRejectAssignmentCommand(kernel.NewUUID(), kernel.NewUUID(), "  flat tire ")
	require.NoError(t, err)
	assert.Equal(t, "flat tire", cmd.Reason())

	_, err = commands.NewRejectAssignmentCommand(kernel.NewUUID(), kernel.NewUUID(), strings.Repeat("x", 501))
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	_, err = commands.NewRejectAssignmentCommand(kernel.NewUUID(), kernel.UUID{}, "")
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestNewExpireAssignmentsCommand(t *testing.T) {
	cmd, err := commands.NewExpireAssignmentsCommand(0)
	require.NoError(t, err)
	assert.Equal(t, commands.DefaultExpiryBatch, cmd.Limit())

	_, err = commands.NewExpireAssignmentsCommand(-1)
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestNewAdvanceLoadStageCommand(t *testing.T) {
	_, err := commands.NewAdvanceLoadStageCommand(kernel.NewUUID(), load.UnknownStage, kernel.NewUUID(), "", nil)
	assert.Error(t, err)

	cmd, err := commands.NewAdvanceLoadStageCommand(kernel.NewUUID(), load.Delivered, kernel.NewUUID(), " gate 3 ", nil)
	require.NoError(t, err)
	assert.Equal(t, "gate 3", cmd.Note())
	assert.Nil(t, cmd.Report())
}

func TestNewRegisterResourceCommand(t *testing.T) {
	_, err := commands.NewRegisterResourceCommand(kernel.NewUUID(), kernel.NewUUID(), resource.UnknownKind, " ")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.ErrorIs(t, err, resource.ErrNameIsRequired)
}
