package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/clock"
	"fleet/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLoadRepository struct{ mock.Mock }

func (m *MockLoadRepository) Add(ctx context.Context, l *load.Load) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLoadRepository) Update(ctx context.Context, l *load.Load) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLoadRepository) Get(ctx context.Context, id kernel.UUID) (*load.Load, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*load.Load), args.Error(1)
}

type MockLoadUoW struct{ mock.Mock }

func (m *MockLoadUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLoadUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLoadUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLoadUoW) LoadRepository() ports.LoadRepository {
	args := m.Called()
	return args.Get(0).(ports.LoadRepository)
}

type MockLoadUoWFactory struct{ mock.Mock }

func (m *MockLoadUoWFactory) Create() commands.LoadUoW {
	args := m.Called()
	return args.Get(0).(commands.LoadUoW)
}

func newCreateLoadCommand(t *testing.T) commands.CreateLoadCommand {
	t.Helper()
	origin, err := kernel.NewPlace("", "", "Tulsa", "OK", "", "US")
	require.NoError(t, err)
	destination, err := kernel.NewPlace("", "", "Omaha", "NE", "", "US")
	require.NoError(t, err)
	window, err := kernel.NewTimeWindow(start, start.Add(24*time.Hour))
	require.NoError(t, err)
	rate, err := kernel.NewMoney(120000, "USD")
	require.NoError(t, err)
	terms, err := load.NewTerms(rate, nil, nil)
	require.NoError(t, err)

	cmd, err := commands.NewCreateLoadCommand(kernel.NewUUID(), kernel.NewUUID(), " LD-7 ", origin, destination,
		window, terms, kernel.NewUUID())
	require.NoError(t, err)
	return cmd
}

func TestCreateLoadCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateLoadCommand(t)

	repo := new(MockLoadRepository)
	uow := new(MockLoadUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("LoadRepository").Return(repo).Once(),
		repo.On("Add", ctx, mock.MatchedBy(func(l *load.Load) bool {
			return l.ID() == cmd.LoadID() && l.Stage() == load.Created
		})).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockLoadUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCreateLoadCommandHandler(factory, clock.NewManual(start))
	l, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, "LD-7", l.Number())
	assert.Equal(t, start, l.CreatedAt())
	uow.AssertExpectations(t)
	repo.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestCreateLoadCommandHandler_Handle_DuplicateNumber(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateLoadCommand(t)
	duplicate := errs.NewConflictError("load", cmd.Number(), "number already in use")

	repo := new(MockLoadRepository)
	repo.On("Add", ctx, mock.AnythingOfType("*load.Load")).Return(duplicate).Once()
	uow := new(MockLoadUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("LoadRepository").Return(repo).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	factory := new(MockLoadUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err := commands.NewCreateLoadCommandHandler(factory, clock.NewManual(start)).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrConflict)
	uow.AssertNotCalled(t, "Commit", ctx)
}

func TestCreateLoadCommandHandler_Handle_BeginFails(t *testing.T) {
	ctx := t.Context()
	uow := new(MockLoadUoW)
	uow.On("Begin", ctx).Return(errors.New("connection refused")).Once()
	factory := new(MockLoadUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err := commands.NewCreateLoadCommandHandler(factory, clock.NewManual(start)).Handle(ctx, newCreateLoadCommand(t))

	require.EqualError(t, err, "connection refused")
	uow.AssertNotCalled(t, "LoadRepository")
}

func TestCreateLoadCommandHandler_Handle_NotConstructed(t *testing.T) {
	factory := new(MockLoadUoWFactory)

	_, err := commands.NewCreateLoadCommandHandler(factory, clock.NewManual(start)).
		Handle(t.Context(), commands.CreateLoadCommand{})

	require.ErrorIs(t, err, commands.ErrCreateLoadCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}
