package load

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

const maxNumberLength = 64

var (
	// ErrLoadIsNotConstructed is returned when a Load was not created through
	// NewLoad or RestoreLoad.
	ErrLoadIsNotConstructed = errors.New("Load must be created via NewLoad or RestoreLoad")

	ErrNumberIsRequired  = errs.NewValueIsRequiredError("number")
	ErrHistoryIsRequired = errs.NewValueIsRequiredError("stage history")
)

// Load is the aggregate root of a shipment.
//
// Invariants:
//   - driverID is set iff stage.HasDriver()
//   - vehicleIDs is empty whenever driverID is nil
//   - history is never empty and its last entry names the current stage
//   - completion is set once the stage is DELIVERED or COMPLETED
//
// Stage changes go through the transition methods only; each appends one
// HistoryEntry. Stores compare version on update.
type Load struct {
	id          kernel.UUID
	orgID       kernel.UUID
	number      string
	origin      kernel.Place
	destination kernel.Place
	schedule    kernel.TimeWindow
	terms       Terms
	stage       Stage
	driverID    *kernel.UUID
	vehicleIDs  []kernel.UUID
	history     []HistoryEntry
	completion  *Completion
	createdBy   kernel.UUID
	version     int

	guard guard.ConstructorGuard
}

// NewLoad creates a Load in stage CREATED with a single history entry made by
// createdBy at the given time.
//
// Example:
//
//	rate, _ := kernel.NewMoney(250000, "USD")
//	terms, _ := load.NewTerms(rate, nil, nil)
//	l, err := load.NewLoad(kernel.NewUUID(), orgID, "LD-1042", origin, destination, window, terms, dispatcherID, now)
func NewLoad(
	id, orgID kernel.UUID,
	number string,
	origin, destination kernel.Place,
	schedule kernel.TimeWindow,
	terms Terms,
	createdBy kernel.UUID,
	at time.Time,
) (*Load, error) {
	l := &Load{
		stage: Created,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		l.setID(id),
		l.setOrgID(orgID),
		l.setNumber(number),
		l.setRoute(origin, destination),
		l.setSchedule(schedule),
		l.setTerms(terms),
		l.setCreatedBy(createdBy),
	); err != nil {
		return nil, err
	}

	if err := l.appendHistory(Created, createdBy, at, ""); err != nil {
		return nil, err
	}

	return l, nil
}

// Snapshot is the persisted form of a Load, used by stores to rebuild it.
type Snapshot struct {
	ID          kernel.UUID
	OrgID       kernel.UUID
	Number      string
	Origin      kernel.Place
	Destination kernel.Place
	Schedule    kernel.TimeWindow
	Terms       Terms
	Stage       Stage
	DriverID    *kernel.UUID
	VehicleIDs  []kernel.UUID
	History     []HistoryEntry
	Completion  *Completion
	CreatedBy   kernel.UUID
	Version     int
}

// RestoreLoad rebuilds a Load from storage, re-checking every invariant.
func RestoreLoad(s Snapshot) (*Load, error) {
	l := &Load{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		l.setID(s.ID),
		l.setOrgID(s.OrgID),
		l.setNumber(s.Number),
		l.setRoute(s.Origin, s.Destination),
		l.setSchedule(s.Schedule),
		l.setTerms(s.Terms),
		l.setCreatedBy(s.CreatedBy),
		l.setVersion(s.Version),
		s.Stage.Validate(),
	); err != nil {
		return nil, err
	}

	l.stage = s.Stage
	if err := errors.Join(
		l.setResources(s.DriverID, s.VehicleIDs),
		l.setHistory(s.History),
		l.setCompletion(s.Completion),
	); err != nil {
		return nil, err
	}

	return l, nil
}

// Snapshot returns the persisted form of the load.
func (l *Load) Snapshot() Snapshot {
	return Snapshot{
		ID:          l.id,
		OrgID:       l.orgID,
		Number:      l.number,
		Origin:      l.origin,
		Destination: l.destination,
		Schedule:    l.schedule,
		Terms:       l.terms,
		Stage:       l.stage,
		DriverID:    copyID(l.driverID),
		VehicleIDs:  slices.Clone(l.vehicleIDs),
		History:     slices.Clone(l.history),
		Completion:  l.Completion(),
		CreatedBy:   l.createdBy,
		Version:     l.version,
	}
}

// Validate ensures the Load was built by NewLoad or RestoreLoad.
func (l *Load) Validate() error {
	if l == nil {
		return ErrLoadIsNotConstructed
	}
	return l.guard.Validate(ErrLoadIsNotConstructed)
}

func (l *Load) ID() kernel.UUID                { return l.id }
func (l *Load) OrgID() kernel.UUID             { return l.orgID }
func (l *Load) Number() string                 { return l.number }
func (l *Load) Origin() kernel.Place           { return l.origin }
func (l *Load) Destination() kernel.Place      { return l.destination }
func (l *Load) Schedule() kernel.TimeWindow    { return l.schedule }
func (l *Load) Terms() Terms                   { return l.terms }
func (l *Load) Stage() Stage                   { return l.stage }
func (l *Load) CreatedBy() kernel.UUID         { return l.createdBy }
func (l *Load) Version() int                   { return l.version }
func (l *Load) VehicleIDs() []kernel.UUID      { return slices.Clone(l.vehicleIDs) }
func (l *Load) History() []HistoryEntry        { return slices.Clone(l.history) }
func (l *Load) LastTransition() HistoryEntry   { return l.history[len(l.history)-1] }
func (l *Load) IsEqual(other *Load) bool       { return other != nil && l.id.IsEqual(other.id) }
func (l *Load) CreatedAt() time.Time           { return l.history[0].At() }
func (l *Load) HasAssignedResources() bool     { return l.driverID != nil }
func (l *Load) AssignedDriverID() *kernel.UUID { return copyID(l.driverID) }

// Completion returns the delivery stamp, or nil before DELIVERED.
func (l *Load) Completion() *Completion {
	if l.completion == nil {
		return nil
	}
	c := *l.completion
	return &c
}

// ResourceIDs returns the driver followed by the vehicles.
func (l *Load) ResourceIDs() []kernel.UUID {
	if l.driverID == nil {
		return nil
	}
	return append([]kernel.UUID{*l.driverID}, l.vehicleIDs...)
}

// Assign binds a driver and optional vehicles to a CREATED load when an offer
// goes out.
func (l *Load) Assign(driverID kernel.UUID, vehicleIDs []kernel.UUID, actor kernel.UUID, at time.Time) error {
	if l.stage != Created {
		return l.stage.transitionError(Assigned)
	}
	if err := driverID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("driver", err)
	}
	if err := validateVehicles(vehicleIDs); err != nil {
		return err
	}

	if err := l.appendHistory(Assigned, actor, at, ""); err != nil {
		return err
	}
	l.driverID = &driverID
	l.vehicleIDs = slices.Clone(vehicleIDs)
	return nil
}

// AcceptTrip moves an ASSIGNED load to TRIP_ACCEPTED once the driver accepted.
func (l *Load) AcceptTrip(actor kernel.UUID, at time.Time) error {
	if l.stage != Assigned {
		return l.stage.transitionError(TripAccepted)
	}
	return l.appendHistory(TripAccepted, actor, at, "")
}

// BounceBack returns an ASSIGNED load to CREATED and clears the bound
// resources, so the dispatcher can offer it again.
func (l *Load) BounceBack(actor kernel.UUID, at time.Time, note string) error {
	if l.stage != Assigned {
		return l.stage.transitionError(Created)
	}
	if err := l.appendHistory(Created, actor, at, note); err != nil {
		return err
	}
	l.clearResources()
	return nil
}

// Advance performs a forward stage progression after the trip was accepted,
// or a cancellation. Reaching DELIVERED stamps the completion fields from the
// report, falling back to the planned distance.
func (l *Load) Advance(target Stage, actor kernel.UUID, at time.Time, note string, report *DeliveryReport) error {
	if target == Cancelled {
		return l.Cancel(actor, at, note)
	}
	if !l.stage.CanAdvanceTo(target) {
		return l.stage.transitionError(target)
	}

	var completion *Completion
	if target.IsDelivered() && l.completion == nil {
		c, err := l.terms.stamp(at, report)
		if err != nil {
			return err
		}
		completion = &c
	}

	if err := l.appendHistory(target, actor, at, note); err != nil {
		return err
	}
	if completion != nil {
		l.completion = completion
	}
	return nil
}

// Cancel moves a non-terminal load to CANCELLED and clears the bound
// resources.
func (l *Load) Cancel(actor kernel.UUID, at time.Time, note string) error {
	if !l.stage.CanAdvanceTo(Cancelled) {
		return l.stage.transitionError(Cancelled)
	}
	if err := l.appendHistory(Cancelled, actor, at, note); err != nil {
		return err
	}
	l.clearResources()
	return nil
}

func (l *Load) clearResources() {
	l.driverID = nil
	l.vehicleIDs = nil
}

func (l *Load) appendHistory(stage Stage, actor kernel.UUID, at time.Time, note string) error {
	entry, err := NewHistoryEntry(stage, at, actor, note)
	if err != nil {
		return err
	}
	l.history = append(l.history, entry)
	l.stage = stage
	return nil
}

func (l *Load) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	l.id = id
	return nil
}

func (l *Load) setOrgID(orgID kernel.UUID) error {
	if err := orgID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("organization", err)
	}
	l.orgID = orgID
	return nil
}

func (l *Load) setNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return ErrNumberIsRequired
	}
	if len(number) > maxNumberLength {
		return errs.NewValueIsOutOfRangeError("number length", len(number), 1, maxNumberLength)
	}
	l.number = number
	return nil
}

func (l *Load) setRoute(origin, destination kernel.Place) error {
	if err := errors.Join(origin.Validate(), destination.Validate()); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("route", err)
	}
	l.origin = origin
	l.destination = destination
	return nil
}

func (l *Load) setSchedule(schedule kernel.TimeWindow) error {
	if err := schedule.Validate(); err != nil {
		return err
	}
	l.schedule = schedule
	return nil
}

func (l *Load) setTerms(terms Terms) error {
	if err := terms.Validate(); err != nil {
		return err
	}
	l.terms = terms
	return nil
}

func (l *Load) setCreatedBy(createdBy kernel.UUID) error {
	if err := createdBy.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("created by", err)
	}
	l.createdBy = createdBy
	return nil
}

func (l *Load) setVersion(version int) error {
	if version < 0 {
		return errs.NewVersionIsInvalidErrorWithCause("version", fmt.Errorf("%d is negative", version))
	}
	l.version = version
	return nil
}

func (l *Load) setResources(driverID *kernel.UUID, vehicleIDs []kernel.UUID) error {
	if l.stage.HasDriver() != (driverID != nil) {
		return errs.NewValueIsInvalidErrorWithCause(
			"assigned driver",
			fmt.Errorf("stage %s does not match driver presence %t", l.stage, driverID != nil),
		)
	}
	if driverID == nil {
		if len(vehicleIDs) > 0 {
			return errs.NewValueIsInvalidErrorWithCause("assigned vehicles", errors.New("vehicles set without a driver"))
		}
		return nil
	}
	if err := errors.Join(driverID.Validate(), validateVehicles(vehicleIDs)); err != nil {
		return err
	}
	l.driverID = copyID(driverID)
	l.vehicleIDs = slices.Clone(vehicleIDs)
	return nil
}

func (l *Load) setHistory(history []HistoryEntry) error {
	if len(history) == 0 {
		return ErrHistoryIsRequired
	}
	for _, h := range history {
		if err := h.Validate(); err != nil {
			return err
		}
	}
	if last := history[len(history)-1].Stage(); last != l.stage {
		return errs.NewValueIsInvalidErrorWithCause(
			"stage history",
			fmt.Errorf("last entry is %s, load is %s", last, l.stage),
		)
	}
	l.history = slices.Clone(history)
	return nil
}

func (l *Load) setCompletion(completion *Completion) error {
	if l.stage.IsDelivered() && completion == nil {
		return errs.NewValueIsRequiredError("completion")
	}
	if completion != nil {
		c := *completion
		l.completion = &c
	}
	return nil
}

func validateVehicles(vehicleIDs []kernel.UUID) error {
	seen := make(map[kernel.UUID]struct{}, len(vehicleIDs))
	for _, id := range vehicleIDs {
		if err := id.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("vehicle", err)
		}
		if _, dup := seen[id]; dup {
			return errs.NewValueIsInvalidErrorWithCause("vehicle", fmt.Errorf("%s is listed twice", id))
		}
		seen[id] = struct{}{}
	}
	return nil
}

func copyID(id *kernel.UUID) *kernel.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
