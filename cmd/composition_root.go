package cmd

import (
	"context"
	"errors"
	"log/slog"

	fleethttp "fleet/internal/adapters/in/http"
	"fleet/internal/adapters/out/kafka"
	"fleet/internal/adapters/out/logbus"
	"fleet/internal/adapters/out/postgres"
	"fleet/internal/core/application/events"
	"fleet/internal/core/application/notifications"
	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/application/usecases/queries"
	"fleet/internal/core/ports"
	"fleet/internal/jobs"
	"fleet/internal/metrics"
	"fleet/internal/pkg/clock"
	"fleet/internal/pkg/keylock"
	"fleet/internal/pkg/sequencer"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// CompositionRoot wires the process: one registry of locks, one side-effect
// sequencer and one event sink shared by every handler.
type CompositionRoot struct {
	cfg        Config
	logger     *slog.Logger
	gormDB     *gorm.DB
	uowFactory ports.UnitOfWorkFactory
	clock      ports.Clock
	locks      *keylock.Locker
	metrics    *metrics.Metrics
	effects    *sequencer.Sequencer
	kafka      *kafka.EventPublisher
	workflow   *commands.Workflow
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:        cfg,
		logger:     logger,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		clock:      clock.System{},
		locks:      keylock.New(),
		metrics:    metrics.New(),
	}

	var sink ports.EventPublisher = logbus.NewEventPublisher(logger)
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewEventPublisher(cfg.KafkaBrokers, cfg.KafkaEventsTopic)
		if err != nil {
			return nil, err
		}
		c.kafka = producer
		sink = producer
	}

	var effects commands.Sequencer = sequencer.Inline{}
	if cfg.SideEffectsAsync {
		c.effects = sequencer.New(logger)
		effects = c.effects
	}

	workflow, err := commands.NewWorkflow(commands.WorkflowDeps{
		UoWFactory: c.uowFactory,
		Clock:      c.clock,
		Locker:     c.locks,
		Sequencer:  effects,
		Notifier:   notifications.NewSynchronizer(c.uowFactory, c.clock, logger, c.metrics),
		Publisher:  events.NewPublisher(sink, logger, c.metrics),
		Metrics:    c.metrics,
		Logger:     logger,
		DefaultTTL: cfg.AssignmentTTL,
	})
	if err != nil {
		return nil, errors.Join(err, c.Close(context.Background()))
	}
	c.workflow = workflow

	return c, nil
}

func (c *CompositionRoot) CreateCreateLoadCommandHandler() commands.CreateLoadCommandHandler {
	var f commands.LoadUoWFactory = FuncLoadUoWFactory(func() commands.LoadUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateLoadCommandHandler(f, c.clock)
}

func (c *CompositionRoot) CreateRegisterResourceCommandHandler() commands.RegisterResourceCommandHandler {
	return commands.NewRegisterResourceCommandHandler(c.resourceUoWFactory())
}

func (c *CompositionRoot) CreateChangeResourceAvailabilityCommandHandler() commands.ChangeResourceAvailabilityCommandHandler {
	return commands.NewChangeResourceAvailabilityCommandHandler(c.resourceUoWFactory(), c.locks)
}

func (c *CompositionRoot) CreateExpireAssignmentsCommandHandler() commands.ExpireAssignmentsCommandHandler {
	return commands.NewExpireAssignmentsCommandHandler(c.workflow)
}

func (c *CompositionRoot) resourceUoWFactory() commands.ResourceUoWFactory {
	return FuncResourceUoWFactory(func() commands.ResourceUoW {
		return c.uowFactory.Create()
	})
}

// Handlers builds every command and query handler the HTTP API serves.
func (c *CompositionRoot) Handlers() fleethttp.Handlers {
	return fleethttp.Handlers{
		CreateLoad:         c.CreateCreateLoadCommandHandler(),
		AdvanceLoadStage:   commands.NewAdvanceLoadStageCommandHandler(c.workflow),
		CreateAssignment:   commands.NewCreateAssignmentCommandHandler(c.workflow),
		AcceptAssignment:   commands.NewAcceptAssignmentCommandHandler(c.workflow),
		RejectAssignment:   commands.NewRejectAssignmentCommandHandler(c.workflow),
		CancelAssignment:   commands.NewCancelAssignmentCommandHandler(c.workflow),
		RegisterResource:   c.CreateRegisterResourceCommandHandler(),
		ChangeAvailability: c.CreateChangeResourceAvailabilityCommandHandler(),

		GetActiveLoads:        queries.NewGetActiveLoadsQueryHandler(c.gormDB),
		GetLoad:               queries.NewGetLoadQueryHandler(c.gormDB),
		GetAvailableResources: queries.NewGetAvailableResourcesQueryHandler(c.gormDB),
		GetNotifications:      queries.NewGetNotificationsQueryHandler(c.gormDB),
	}
}

func (c *CompositionRoot) Router() (*echo.Echo, error) {
	return fleethttp.NewRouter(fleethttp.NewServer(c.Handlers(), c.logger), c.metrics, c.logger)
}

func (c *CompositionRoot) Jobs() *jobs.JobManager {
	jm := jobs.NewJobManager()
	jm.Add("expiry_sweep", jobs.NewExpirySweepJob(
		c.CreateExpireAssignmentsCommandHandler(),
		c.cfg.ExpirySweepSchedule,
		c.cfg.ExpirySweepBatch,
		c.logger,
	))
	return jm
}

// Close drains queued side effects, then closes the event sink they write to.
func (c *CompositionRoot) Close(ctx context.Context) error {
	var err error
	if c.effects != nil {
		err = c.effects.Close(ctx)
	}
	if c.kafka != nil {
		err = errors.Join(err, c.kafka.Close())
	}
	return err
}

type FuncLoadUoWFactory func() commands.LoadUoW

func (f FuncLoadUoWFactory) Create() commands.LoadUoW {
	return f()
}

type FuncResourceUoWFactory func() commands.ResourceUoW

func (f FuncResourceUoWFactory) Create() commands.ResourceUoW {
	return f()
}
