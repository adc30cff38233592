package services

import (
	"errors"
	"fmt"
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/domain/model/resource"
	"fleet/internal/pkg/errs"
)

var (
	// ErrResourceUnavailable is the cause of the ConflictError returned when a
	// resource named in an offer cannot be reserved.
	ErrResourceUnavailable = errors.New("resource is not available")

	// ErrMismatchedRecords is returned when the records handed to the
	// dispatcher do not belong together.
	ErrMismatchedRecords = errors.New("records do not belong to the same load")
)

// Dispatcher is the domain service that keeps a Load, its Assignment and the
// Resource Registry entries they reference consistent with each other.
//
// It works on aggregates already loaded by the caller and mutates them in
// memory only; persisting the result in one transaction is the caller's job.
// Offer leaves nothing reserved when it fails. After any other error the
// caller rolls back and discards the aggregates.
//
// Business rules:
//   - an offer reserves the driver and every vehicle, or nothing
//   - acceptance commits every reserved resource and moves the load to
//     TRIP_ACCEPTED
//   - rejection, expiry and cancellation release what the load holds and
//     bounce the load back to CREATED
//
// Example usage:
//
//	dispatcher := services.NewDispatcher()
//	a, err := dispatcher.Offer(l, driver, vehicles, kernel.NewUUID(), dispatcherID, now, 24*time.Hour)
//	if errors.Is(err, services.ErrResourceUnavailable) {
//	    // someone else holds the driver or a vehicle
//	}
type Dispatcher struct{}

func NewDispatcher() Dispatcher {
	return Dispatcher{}
}

// Offer reserves driver and vehicles for l, assigns them to the load and
// returns the new PENDING assignment.
//
// Returns:
//   - ConflictError when the load is not CREATED
//   - ConflictError wrapping ErrResourceUnavailable when any resource is
//     already held or out of service; resources reserved before it are
//     released again
//   - ValueIsInvalidError when a resource has the wrong kind or belongs to
//     another organisation
func (d Dispatcher) Offer(
	l *load.Load,
	driver *resource.Resource,
	vehicles []*resource.Resource,
	assignmentID, offeredBy kernel.UUID,
	now time.Time,
	ttl time.Duration,
) (*assignment.Assignment, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if l.Stage() != load.Created {
		return nil, errs.NewConflictError("load", l.ID(), "load is "+l.Stage().String())
	}
	if err := d.checkBundle(l, driver, vehicles); err != nil {
		return nil, err
	}

	vehicleIDs := make([]kernel.UUID, 0, len(vehicles))
	for _, v := range vehicles {
		vehicleIDs = append(vehicleIDs, v.ID())
	}

	a, err := assignment.NewAssignment(assignmentID, l.ID(), driver.ID(), vehicleIDs, offeredBy, now, ttl)
	if err != nil {
		return nil, err
	}

	bundle := append([]*resource.Resource{driver}, vehicles...)
	reserved := make([]*resource.Resource, 0, len(bundle))
	for _, r := range bundle {
		if !r.TryReserve(l.ID()) {
			releaseAll(reserved)
			return nil, errs.NewConflictErrorWithCause(
				"resource", r.ID(), r.Kind().String()+" is "+r.Availability().String(), ErrResourceUnavailable)
		}
		reserved = append(reserved, r)
	}

	if err = l.Assign(driver.ID(), vehicleIDs, offeredBy, now); err != nil {
		releaseAll(reserved)
		return nil, err
	}

	return a, nil
}

// Confirm applies the driver's acceptance. It reports false without touching
// anything when the driver had already accepted.
func (d Dispatcher) Confirm(
	a *assignment.Assignment,
	l *load.Load,
	resources []*resource.Resource,
	driverID kernel.UUID,
	now time.Time,
) (bool, error) {
	if err := d.checkRecords(a, l); err != nil {
		return false, err
	}

	changed, err := a.Accept(driverID, now)
	if err != nil || !changed {
		return false, err
	}

	for _, r := range resources {
		if err = r.Commit(l.ID()); err != nil {
			return false, err
		}
	}

	if err = l.AcceptTrip(driverID, now); err != nil {
		return false, err
	}

	return true, nil
}

// Decline applies the driver's rejection.
func (d Dispatcher) Decline(
	a *assignment.Assignment,
	l *load.Load,
	resources []*resource.Resource,
	driverID kernel.UUID,
	reason string,
	now time.Time,
) (bool, error) {
	return d.withdraw(a, l, resources, func() (bool, error) {
		return a.Reject(driverID, reason, now)
	}, driverID, now)
}

// Withdraw applies the dispatcher's cancellation of a PENDING offer.
func (d Dispatcher) Withdraw(
	a *assignment.Assignment,
	l *load.Load,
	resources []*resource.Resource,
	by kernel.UUID,
	now time.Time,
) (bool, error) {
	return d.withdraw(a, l, resources, func() (bool, error) {
		return a.Cancel(by, now)
	}, by, now)
}

// Expire closes an offer nobody answered in time.
func (d Dispatcher) Expire(
	a *assignment.Assignment,
	l *load.Load,
	resources []*resource.Resource,
	now time.Time,
) (bool, error) {
	return d.withdraw(a, l, resources, func() (bool, error) {
		return a.Expire(now)
	}, kernel.SystemActor, now)
}

// Release frees every resource the load still holds, as done when the load
// is completed or cancelled. Resources held by other loads are left alone.
func (d Dispatcher) Release(l *load.Load, resources []*resource.Resource) int {
	released := 0
	for _, r := range resources {
		if r.IsHeldBy(l.ID()) {
			r.Release()
			released++
		}
	}
	return released
}

func (d Dispatcher) withdraw(
	a *assignment.Assignment,
	l *load.Load,
	resources []*resource.Resource,
	transition func() (bool, error),
	actor kernel.UUID,
	now time.Time,
) (bool, error) {
	if err := d.checkRecords(a, l); err != nil {
		return false, err
	}

	changed, err := transition()
	if err != nil || !changed {
		return false, err
	}

	d.Release(l, resources)

	if l.Stage() == load.Assigned {
		if err = l.BounceBack(actor, now, bounceNote(a)); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (d Dispatcher) checkBundle(l *load.Load, driver *resource.Resource, vehicles []*resource.Resource) error {
	if err := driver.Validate(); err != nil {
		return err
	}
	if driver.Kind() != resource.Driver {
		return errs.NewValueIsInvalidErrorWithCause("driver", fmt.Errorf("%s is a %s", driver.ID(), driver.Kind()))
	}

	checks := []error{d.checkOrg(l, driver)}
	for _, v := range vehicles {
		if err := v.Validate(); err != nil {
			return err
		}
		if !v.Kind().IsVehicle() {
			checks = append(checks,
				errs.NewValueIsInvalidErrorWithCause("vehicle", fmt.Errorf("%s is a %s", v.ID(), v.Kind())))
		}
		checks = append(checks, d.checkOrg(l, v))
	}
	return errors.Join(checks...)
}

func (d Dispatcher) checkOrg(l *load.Load, r *resource.Resource) error {
	if !r.OrgID().IsEqual(l.OrgID()) {
		return errs.NewValueIsInvalidErrorWithCause(
			r.Kind().String(), fmt.Errorf("%s belongs to another organization", r.ID()))
	}
	return nil
}

func (d Dispatcher) checkRecords(a *assignment.Assignment, l *load.Load) error {
	if err := errors.Join(a.Validate(), l.Validate()); err != nil {
		return err
	}
	if !a.LoadID().IsEqual(l.ID()) {
		return fmt.Errorf("%w: assignment %s, load %s", ErrMismatchedRecords, a.ID(), l.ID())
	}
	return nil
}

func bounceNote(a *assignment.Assignment) string {
	r := a.Response()
	if r == nil {
		return ""
	}
	note := "offer " + a.State().String()
	if r.Reason() != "" {
		note += ": " + r.Reason()
	}
	return note
}

func releaseAll(resources []*resource.Resource) {
	for _, r := range resources {
		r.Release()
	}
}
