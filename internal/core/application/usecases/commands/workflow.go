package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"fleet/internal/core/application/events"
	"fleet/internal/core/application/notifications"
	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/domain/model/notification"
	"fleet/internal/core/domain/model/resource"
	"fleet/internal/core/domain/services"
	"fleet/internal/core/ports"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultAssignmentTTL applies when neither the command nor the workflow
// configuration names one.
const DefaultAssignmentTTL = 24 * time.Hour

const tracerName = "fleet/workflow"

type (
	// Locker serialises writers on the named entities.
	Locker interface {
		Lock(ctx context.Context, keys ...string) (func(), error)
	}

	// Sequencer runs side effects in submission order per key.
	Sequencer interface {
		Go(key string, task func()) error
	}

	// Notifier keeps notification mirrors in step with assignments.
	Notifier interface {
		Sync(ctx context.Context, target notifications.Target, state assignment.State, build notifications.MessageBuilder) bool
	}

	// Publisher emits real-time events, best effort.
	Publisher interface {
		Publish(ctx context.Context, topics []string, eventName string, payload any) bool
	}

	// Recorder receives operation metrics.
	Recorder interface {
		ObserveOperation(operation string, start time.Time, err error)
		AssignmentsExpired(n int)
	}
)

// WorkflowDeps are the collaborators of the assignment workflow.
type WorkflowDeps struct {
	UoWFactory ports.UnitOfWorkFactory
	Clock      ports.Clock
	Locker     Locker
	Sequencer  Sequencer
	Notifier   Notifier
	Publisher  Publisher
	Metrics    Recorder
	Logger     *slog.Logger

	// Tracer defaults to the global provider's tracer.
	Tracer trace.Tracer

	// DefaultTTL defaults to DefaultAssignmentTTL.
	DefaultTTL time.Duration
}

// Workflow is the collaborator bundle shared by the assignment and load
// command handlers. State changes run under the entity locks inside one
// UnitOfWork; notifications and events follow after commit, ordered per
// assignment.
type Workflow struct {
	uowFactory ports.UnitOfWorkFactory
	clock      ports.Clock
	locks      Locker
	effects    Sequencer
	notifier   Notifier
	publisher  Publisher
	metrics    Recorder
	logger     *slog.Logger
	tracer     trace.Tracer
	dispatcher services.Dispatcher
	defaultTTL time.Duration
}

func NewWorkflow(deps WorkflowDeps) (*Workflow, error) {
	if deps.UoWFactory == nil || deps.Clock == nil || deps.Locker == nil || deps.Sequencer == nil ||
		deps.Notifier == nil || deps.Publisher == nil || deps.Metrics == nil || deps.Logger == nil {
		return nil, errors.New("workflow: every collaborator is required")
	}

	w := &Workflow{
		uowFactory: deps.UoWFactory,
		clock:      deps.Clock,
		locks:      deps.Locker,
		effects:    deps.Sequencer,
		notifier:   deps.Notifier,
		publisher:  deps.Publisher,
		metrics:    deps.Metrics,
		logger:     deps.Logger.With("component", "workflow"),
		tracer:     deps.Tracer,
		dispatcher: services.NewDispatcher(),
		defaultTTL: deps.DefaultTTL,
	}
	if w.tracer == nil {
		w.tracer = otel.Tracer(tracerName)
	}
	if w.defaultTTL <= 0 {
		w.defaultTTL = DefaultAssignmentTTL
	}
	return w, nil
}

// begin opens a span for operation; the returned function ends it and
// records the outcome.
func (w *Workflow) begin(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := w.tracer.Start(ctx, "workflow."+operation, trace.WithAttributes(attrs...))
	start := time.Now()
	return ctx, func(err error) {
		w.metrics.ObserveOperation(operation, start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func loadKey(id kernel.UUID) string     { return "load:" + id.String() }
func resourceKey(id kernel.UUID) string { return "resource:" + id.String() }

// lockBundle takes the load key and every resource key in one sorted
// acquisition.
func (w *Workflow) lockBundle(ctx context.Context, loadID kernel.UUID, resourceIDs []kernel.UUID) (func(), error) {
	keys := make([]string, 0, len(resourceIDs)+1)
	keys = append(keys, loadKey(loadID))
	for _, id := range resourceIDs {
		keys = append(keys, resourceKey(id))
	}
	return w.locks.Lock(ctx, keys...)
}

// read runs fn in a transaction that is always rolled back.
func (w *Workflow) read(ctx context.Context, fn func(uow ports.UnitOfWork) error) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()
	return fn(uow)
}

// write runs fn in a transaction committed when fn succeeds.
func (w *Workflow) write(ctx context.Context, fn func(uow ports.UnitOfWork) error) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()
	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func (w *Workflow) lookupAssignment(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	var a *assignment.Assignment
	err := w.read(ctx, func(uow ports.UnitOfWork) error {
		var err error
		a, err = uow.AssignmentRepository().Get(ctx, id)
		return err
	})
	return a, err
}

// persistBundle writes the assignment, its load and the given resources.
func persistBundle(
	ctx context.Context,
	uow ports.UnitOfWork,
	a *assignment.Assignment,
	l *load.Load,
	resources []*resource.Resource,
) error {
	if err := uow.AssignmentRepository().Update(ctx, a); err != nil {
		return err
	}
	if err := uow.LoadRepository().Update(ctx, l); err != nil {
		return err
	}
	for _, r := range resources {
		if err := uow.ResourceRepository().Update(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// afterCommit hands the side effects of an assignment change to the
// sequencer. They run detached from ctx's cancellation.
func (w *Workflow) afterCommit(ctx context.Context, a *assignment.Assignment, l *load.Load) {
	ctx = context.WithoutCancel(ctx)
	state := a.State()
	offer := offerOf(l, a)
	eventName := events.ForAssignment(state)
	topics := events.AssignmentTopics(l, a)
	payload := events.NewAssignmentEvent(l, a, w.clock.Now())
	driver := notifications.Target{
		AssignmentID: a.ID(),
		Audience:     notification.Driver,
		RecipientID:  a.DriverID(),
		LoadID:       l.ID(),
	}
	dispatcher := notifications.Target{
		AssignmentID: a.ID(),
		Audience:     notification.Dispatcher,
		RecipientID:  a.OfferedBy(),
		LoadID:       l.ID(),
	}

	task := func() {
		w.notifier.Sync(ctx, driver, state, notifications.DriverMessages(offer))
		switch state {
		case assignment.Accepted, assignment.Rejected, assignment.Expired:
			w.notifier.Sync(ctx, dispatcher, state, notifications.DispatcherMessages(offer))
		}
		w.publisher.Publish(ctx, topics, eventName, payload)
	}

	if err := w.effects.Go(a.ID().String(), task); err != nil {
		w.logger.WarnContext(ctx, "Side effects dropped",
			"assignment_id", a.ID().String(),
			"event", eventName,
			"error", err,
		)
	}
}

// publishStageChange queues the stage event under the load id, or under the
// id of the assignment withdrawn by the same change so that the event
// follows that assignment's own side effects.
func (w *Workflow) publishStageChange(ctx context.Context, l *load.Load, from load.Stage, withdrawn *assignment.Assignment) {
	ctx = context.WithoutCancel(ctx)
	topics := []string{events.LoadTopic(l.ID()), events.OrgTopic(l.OrgID())}
	payload := events.NewStageChangedEvent(l, from)

	key := l.ID().String()
	if withdrawn != nil {
		key = withdrawn.ID().String()
	}
	if err := w.effects.Go(key, func() {
		w.publisher.Publish(ctx, topics, events.LoadStageChanged, payload)
	}); err != nil {
		w.logger.WarnContext(ctx, "Side effects dropped",
			"load_id", l.ID().String(),
			"event", events.LoadStageChanged,
			"error", err,
		)
	}
}

func offerOf(l *load.Load, a *assignment.Assignment) notifications.Offer {
	o := notifications.Offer{
		LoadNumber:  l.Number(),
		Origin:      l.Origin().String(),
		Destination: l.Destination().String(),
	}
	if r := a.Response(); r != nil {
		o.Reason = r.Reason()
	}
	return o
}

// transition applies a change to a PENDING assignment together with its load
// and the resources it names. changed=false means the assignment was already
// in the requested state; nothing is written and no side effects run.
type transition func(
	a *assignment.Assignment,
	l *load.Load,
	resources []*resource.Resource,
	now time.Time,
) (changed bool, err error)

func (w *Workflow) respond(
	ctx context.Context,
	assignmentID kernel.UUID,
	apply transition,
) (*assignment.Assignment, bool, error) {
	// Load and resource ids never change on an assignment, so they can be
	// read before the locks are taken.
	a, err := w.lookupAssignment(ctx, assignmentID)
	if err != nil {
		return nil, false, err
	}

	unlock, err := w.lockBundle(ctx, a.LoadID(), a.ResourceIDs())
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	now := w.clock.Now()
	var (
		l       *load.Load
		changed bool
	)
	err = w.write(ctx, func(uow ports.UnitOfWork) error {
		var err error
		if a, err = uow.AssignmentRepository().Get(ctx, assignmentID); err != nil {
			return err
		}
		if l, err = uow.LoadRepository().Get(ctx, a.LoadID()); err != nil {
			return err
		}
		resources, err := uow.ResourceRepository().GetMany(ctx, a.ResourceIDs())
		if err != nil {
			return err
		}

		changed, err = apply(a, l, resources, now)
		if err != nil || !changed {
			return err
		}
		return persistBundle(ctx, uow, a, l, resources)
	})
	if err != nil {
		return nil, false, err
	}

	if changed {
		w.logger.InfoContext(ctx, "Assignment "+strings.ToLower(a.State().String()),
			"assignment_id", a.ID().String(),
			"load_id", l.ID().String(),
			"load_stage", l.Stage().String(),
		)
		w.afterCommit(ctx, a, l)
	}
	return a, changed, nil
}
