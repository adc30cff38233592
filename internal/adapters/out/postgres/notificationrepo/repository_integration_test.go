package notificationrepo_test

import (
	"context"
	"testing"
	"time"

	"fleet/internal/adapters/out/postgres/notificationrepo"
	"fleet/internal/adapters/out/postgres/pgtest"
	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/notification"
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

type NotificationRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *notificationrepo.GormNotificationRepository
	tracker    *MockAggregateTracker
}

var now = time.Date(2026, 6, 3, 12, 0, 0, 0, time.UTC)

func (suite *NotificationRepositoryIntegrationTestSuite) SetupSuite() {
	container, db, err := pgtest.Start(context.Background())
	suite.container = container
	suite.Require().NoError(err)
	suite.db = db
}

func (suite *NotificationRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(pgtest.Truncate(suite.db))
	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.repository = notificationrepo.NewGormNotificationRepository(suite.db, suite.tracker)
}

func (suite *NotificationRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *NotificationRepositoryIntegrationTestSuite) mirror(key notification.Key) *notification.Mirror {
	m, err := notification.NewMirror(kernel.NewUUID(), key, kernel.NewUUID(), kernel.NewUUID(),
		assignment.Pending, "New load offer LD-5", "Oakland, CA to Portland, OR", now)
	suite.Require().NoError(err)
	return m
}

func (suite *NotificationRepositoryIntegrationTestSuite) TestAdd_SameKeyTwice_Conflict() {
	ctx := context.Background()
	key := notification.Key{AssignmentID: kernel.NewUUID(), Audience: notification.Driver}
	suite.Require().NoError(suite.repository.Add(ctx, suite.mirror(key)))

	suite.ErrorIs(suite.repository.Add(ctx, suite.mirror(key)), errs.ErrConflict)

	other := notification.Key{AssignmentID: key.AssignmentID, Audience: notification.Dispatcher}
	suite.Require().NoError(suite.repository.Add(ctx, suite.mirror(other)))
}

func (suite *NotificationRepositoryIntegrationTestSuite) TestUpdate_InPlace() {
	ctx := context.Background()
	key := notification.Key{AssignmentID: kernel.NewUUID(), Audience: notification.Driver}
	m := suite.mirror(key)
	suite.Require().NoError(suite.repository.Add(ctx, m))

	stored, err := suite.repository.GetByKey(ctx, key)
	suite.Require().NoError(err)
	stored.MarkRead(now.Add(time.Minute))
	suite.Require().NoError(suite.repository.Update(ctx, stored))

	stored, err = suite.repository.GetByKey(ctx, key)
	suite.Require().NoError(err)
	suite.True(stored.IsRead())
	changed, err := stored.Apply(assignment.Expired, "Offer for load LD-5 expired", "", now.Add(time.Hour))
	suite.Require().NoError(err)
	suite.Require().True(changed)
	suite.Require().NoError(suite.repository.Update(ctx, stored))

	reloaded, err := suite.repository.GetByKey(ctx, key)
	suite.Require().NoError(err)
	suite.Equal(m.ID(), reloaded.ID())
	suite.Equal(assignment.Expired, reloaded.Status())
	suite.False(reloaded.IsRead())
	suite.Equal(2, reloaded.Version())

	var count int64
	suite.Require().NoError(suite.db.Model(&notificationrepo.NotificationDTO{}).Count(&count).Error)
	suite.Equal(int64(1), count)
}

func (suite *NotificationRepositoryIntegrationTestSuite) TestGetByKey_Missing_NotFound() {
	_, err := suite.repository.GetByKey(context.Background(),
		notification.Key{AssignmentID: kernel.NewUUID(), Audience: notification.Dispatcher})
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func TestNotificationRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationRepositoryIntegrationTestSuite))
}
