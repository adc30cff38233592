package assignmentrepo_test

import (
	"context"
	"testing"
	"time"

	"fleet/internal/adapters/out/postgres/assignmentrepo"
	"fleet/internal/adapters/out/postgres/pgtest"
	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

type AssignmentRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *assignmentrepo.GormAssignmentRepository
	tracker    *MockAggregateTracker
}

var now = time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)

func (suite *AssignmentRepositoryIntegrationTestSuite) SetupSuite() {
	container, db, err := pgtest.Start(context.Background())
	suite.container = container
	suite.Require().NoError(err)
	suite.db = db
}

func (suite *AssignmentRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(pgtest.Truncate(suite.db))
	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.repository = assignmentrepo.NewGormAssignmentRepository(suite.db, suite.tracker)
}

func (suite *AssignmentRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *AssignmentRepositoryIntegrationTestSuite) offer(loadID kernel.UUID, ttl time.Duration, vehicles ...kernel.UUID) *assignment.Assignment {
	a, err := assignment.NewAssignment(kernel.NewUUID(), loadID, kernel.NewUUID(), vehicles, kernel.NewUUID(), now, ttl)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(context.Background(), a))
	return a
}

func (suite *AssignmentRepositoryIntegrationTestSuite) TestAddAndGet_RoundTrip() {
	truck, trailer := kernel.NewUUID(), kernel.NewUUID()
	a := suite.offer(kernel.NewUUID(), 24*time.Hour, truck, trailer)

	found, err := suite.repository.Get(context.Background(), a.ID())
	suite.Require().NoError(err)
	suite.Equal(a.LoadID(), found.LoadID())
	suite.Equal(a.DriverID(), found.DriverID())
	suite.Equal([]kernel.UUID{truck, trailer}, found.VehicleIDs())
	suite.Equal(assignment.Pending, found.State())
	suite.True(a.ExpiresAt().Equal(found.ExpiresAt()))
	suite.Nil(found.Response())
}

func (suite *AssignmentRepositoryIntegrationTestSuite) TestAdd_SecondPendingForLoad_Conflict() {
	loadID := kernel.NewUUID()
	suite.offer(loadID, time.Hour)

	second, err := assignment.NewAssignment(kernel.NewUUID(), loadID, kernel.NewUUID(), nil, kernel.NewUUID(), now, time.Hour)
	suite.Require().NoError(err)

	suite.ErrorIs(suite.repository.Add(context.Background(), second), errs.ErrConflict)
}

func (suite *AssignmentRepositoryIntegrationTestSuite) TestUpdate_RecordsResponse() {
	ctx := context.Background()
	a := suite.offer(kernel.NewUUID(), time.Hour)

	changed, err := a.Reject(a.DriverID(), "hours of service", now.Add(time.Minute))
	suite.Require().NoError(err)
	suite.Require().True(changed)
	suite.Require().NoError(suite.repository.Update(ctx, a))

	found, err := suite.repository.Get(ctx, a.ID())
	suite.Require().NoError(err)
	suite.Equal(assignment.Rejected, found.State())
	suite.Require().NotNil(found.Response())
	suite.Equal("hours of service", found.Response().Reason())
	suite.Equal(a.DriverID(), found.Response().By())
	suite.Equal(1, found.Version())

	// a new offer for the same load is allowed once the previous one closed
	suite.offer(a.LoadID(), time.Hour)
}

func (suite *AssignmentRepositoryIntegrationTestSuite) TestUpdate_StaleVersion_Conflict() {
	ctx := context.Background()
	a := suite.offer(kernel.NewUUID(), time.Hour)

	accepted, err := suite.repository.Get(ctx, a.ID())
	suite.Require().NoError(err)
	cancelled, err := suite.repository.Get(ctx, a.ID())
	suite.Require().NoError(err)

	_, err = accepted.Accept(a.DriverID(), now.Add(time.Minute))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, accepted))

	_, err = cancelled.Cancel(kernel.NewUUID(), now.Add(time.Minute))
	suite.Require().NoError(err)
	suite.ErrorIs(suite.repository.Update(ctx, cancelled), errs.ErrConflict)

	found, err := suite.repository.Get(ctx, a.ID())
	suite.Require().NoError(err)
	suite.Equal(assignment.Accepted, found.State())
}

func (suite *AssignmentRepositoryIntegrationTestSuite) TestGetPendingByLoad() {
	ctx := context.Background()
	loadID := kernel.NewUUID()

	_, err := suite.repository.GetPendingByLoad(ctx, loadID)
	suite.ErrorIs(err, errs.ErrObjectNotFound)

	a := suite.offer(loadID, time.Hour)
	found, err := suite.repository.GetPendingByLoad(ctx, loadID)
	suite.Require().NoError(err)
	suite.Equal(a.ID(), found.ID())
}

func (suite *AssignmentRepositoryIntegrationTestSuite) TestListExpired_OldestFirstWithLimit() {
	ctx := context.Background()
	late := suite.offer(kernel.NewUUID(), 40*time.Minute)
	early := suite.offer(kernel.NewUUID(), 10*time.Minute)
	suite.offer(kernel.NewUUID(), 2*time.Hour)

	expired, err := suite.repository.ListExpired(ctx, now.Add(time.Hour), 10)
	suite.Require().NoError(err)
	suite.Require().Len(expired, 2)
	suite.Equal(early.ID(), expired[0].ID())
	suite.Equal(late.ID(), expired[1].ID())

	limited, err := suite.repository.ListExpired(ctx, now.Add(time.Hour), 1)
	suite.Require().NoError(err)
	suite.Require().Len(limited, 1)
	suite.Equal(early.ID(), limited[0].ID())
}

func TestAssignmentRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AssignmentRepositoryIntegrationTestSuite))
}
