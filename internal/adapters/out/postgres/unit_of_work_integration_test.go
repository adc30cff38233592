package postgres_test

import (
	"context"
	"testing"
	"time"

	postgresadapter "fleet/internal/adapters/out/postgres"
	"fleet/internal/adapters/out/postgres/pgtest"
	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/domain/model/resource"
	"fleet/internal/core/domain/services"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

var now = time.Date(2026, 6, 4, 10, 0, 0, 0, time.UTC)

// UnitOfWorkIntegrationTestSuite exercises the GORM UnitOfWork against a
// real Postgres.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	container, db, err := pgtest.Start(context.Background())
	suite.container = container
	suite.Require().NoError(err)
	suite.db = db
	suite.factory = postgresadapter.NewGormUnitOfWorkFactory(db)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(pgtest.Truncate(suite.db))
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Begin on an open transaction is a no-op")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))

	suite.ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

// An offer touches the load, the assignment and every bundled resource; all
// of it must land together.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_OfferCommitsAtomically() {
	ctx := context.Background()
	l, driver, truck := suite.seed()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	a, err := services.NewDispatcher().Offer(l, driver, []*resource.Resource{truck}, kernel.NewUUID(), l.CreatedBy(), now, time.Hour)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.AssignmentRepository().Add(ctx, a))
	suite.Require().NoError(uow.LoadRepository().Update(ctx, l))
	suite.Require().NoError(uow.ResourceRepository().Update(ctx, driver))
	suite.Require().NoError(uow.ResourceRepository().Update(ctx, truck))
	suite.Require().NoError(uow.Commit(ctx))

	check := suite.factory.Create()
	stored, err := check.LoadRepository().Get(ctx, l.ID())
	suite.Require().NoError(err)
	suite.Equal(load.Assigned, stored.Stage())

	pending, err := check.AssignmentRepository().GetPendingByLoad(ctx, l.ID())
	suite.Require().NoError(err)
	suite.Equal(a.ID(), pending.ID())

	held, err := check.ResourceRepository().ListHeldBy(ctx, l.ID())
	suite.Require().NoError(err)
	suite.Len(held, 2)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsEverything() {
	ctx := context.Background()
	l, driver, truck := suite.seed()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	a, err := services.NewDispatcher().Offer(l, driver, []*resource.Resource{truck}, kernel.NewUUID(), l.CreatedBy(), now, time.Hour)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.AssignmentRepository().Add(ctx, a))
	suite.Require().NoError(uow.LoadRepository().Update(ctx, l))
	suite.Require().NoError(uow.ResourceRepository().Update(ctx, driver))

	tracked := uow.(*postgresadapter.GormUnitOfWork).TrackedAggregates()
	suite.Len(tracked, 3)

	suite.Require().NoError(uow.Rollback(ctx))
	suite.Empty(uow.(*postgresadapter.GormUnitOfWork).TrackedAggregates())

	check := suite.factory.Create()
	stored, err := check.LoadRepository().Get(ctx, l.ID())
	suite.Require().NoError(err)
	suite.Equal(load.Created, stored.Stage())

	_, err = check.AssignmentRepository().Get(ctx, a.ID())
	suite.ErrorIs(err, errs.ErrObjectNotFound)

	storedDriver, err := check.ResourceRepository().Get(ctx, driver.ID())
	suite.Require().NoError(err)
	suite.Equal(resource.Available, storedDriver.Availability())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_Isolation() {
	ctx := context.Background()
	l, _, _ := suite.seed()

	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()
	suite.Require().NoError(uow1.Begin(ctx))
	suite.Require().NoError(uow2.Begin(ctx))

	a, err := assignment.NewAssignment(kernel.NewUUID(), l.ID(), kernel.NewUUID(), nil, l.CreatedBy(), now, time.Hour)
	suite.Require().NoError(err)
	suite.Require().NoError(uow1.AssignmentRepository().Add(ctx, a))

	_, err = uow2.AssignmentRepository().Get(ctx, a.ID())
	suite.ErrorIs(err, errs.ErrObjectNotFound, "uncommitted writes stay private")

	suite.Require().NoError(uow1.Commit(ctx))
	suite.Require().NoError(uow2.Rollback(ctx))

	_, err = suite.factory.Create().AssignmentRepository().Get(ctx, a.ID())
	suite.NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) seed() (*load.Load, *resource.Resource, *resource.Resource) {
	ctx := context.Background()
	orgID := kernel.NewUUID()

	origin, err := kernel.NewPlace("", "", "Denver", "CO", "", "US")
	suite.Require().NoError(err)
	destination, err := kernel.NewPlace("", "", "Omaha", "NE", "", "US")
	suite.Require().NoError(err)
	window, err := kernel.NewTimeWindow(now, now.Add(24*time.Hour))
	suite.Require().NoError(err)
	rate, err := kernel.NewMoney(140000, "USD")
	suite.Require().NoError(err)
	terms, err := load.NewTerms(rate, nil, nil)
	suite.Require().NoError(err)
	l, err := load.NewLoad(kernel.NewUUID(), orgID, "LD-"+kernel.NewUUID().String()[:8], origin, destination, window, terms, kernel.NewUUID(), now)
	suite.Require().NoError(err)

	driver, err := resource.NewResource(kernel.NewUUID(), orgID, resource.Driver, "Sam")
	suite.Require().NoError(err)
	truck, err := resource.NewResource(kernel.NewUUID(), orgID, resource.Truck, "T-1")
	suite.Require().NoError(err)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.LoadRepository().Add(ctx, l))
	suite.Require().NoError(uow.ResourceRepository().Add(ctx, driver))
	suite.Require().NoError(uow.ResourceRepository().Add(ctx, truck))

	return l, driver, truck
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
