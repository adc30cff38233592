package assignment

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

// ReasonNoResponse is recorded on assignments closed by the expiry sweep.
const ReasonNoResponse = "no response"

const entityName = "assignment"

var (
	ErrAssignmentIsNotConstructed = errors.New("Assignment must be created via NewAssignment or RestoreAssignment")

	// ErrAssignmentExpired is the cause of the ConflictError returned when a
	// driver responds after ExpiresAt.
	ErrAssignmentExpired = errors.New("assignment expired")

	// ErrNotOfferedDriver is the cause of the ConflictError returned when
	// someone other than the offered driver responds.
	ErrNotOfferedDriver = errors.New("caller is not the offered driver")

	ErrTTLIsInvalid = errs.NewValueIsInvalidError("ttl")
)

// Response is the outcome recorded when an assignment leaves PENDING.
type Response struct {
	state       State
	respondedAt time.Time
	by          kernel.UUID
	reason      string
}

// RestoreResponse rebuilds a stored outcome.
func RestoreResponse(state State, respondedAt time.Time, by kernel.UUID, reason string) (Response, error) {
	if !state.IsTerminal() {
		return Response{}, errs.NewValueIsInvalidErrorWithCause("response state", fmt.Errorf("%s is not terminal", state))
	}
	if respondedAt.IsZero() {
		return Response{}, errs.NewValueIsRequiredError("responded at")
	}
	if err := by.Validate(); err != nil {
		return Response{}, errs.NewValueIsRequiredErrorWithCause("responded by", err)
	}
	return Response{state: state, respondedAt: respondedAt.UTC(), by: by, reason: reason}, nil
}

func (r Response) State() State           { return r.state }
func (r Response) RespondedAt() time.Time { return r.respondedAt }
func (r Response) By() kernel.UUID        { return r.by }
func (r Response) Reason() string         { return r.reason }

// Assignment is one offer of a load to a driver.
//
// Invariants:
//   - response is set iff state is terminal, and response.state == state
//   - expiresAt is after createdAt
//   - a terminal assignment never changes again
type Assignment struct {
	id         kernel.UUID
	loadID     kernel.UUID
	driverID   kernel.UUID
	vehicleIDs []kernel.UUID
	offeredBy  kernel.UUID
	state      State
	createdAt  time.Time
	expiresAt  time.Time
	response   *Response
	version    int

	guard guard.ConstructorGuard
}

// NewAssignment creates a PENDING offer expiring ttl after createdAt.
func NewAssignment(
	id, loadID, driverID kernel.UUID,
	vehicleIDs []kernel.UUID,
	offeredBy kernel.UUID,
	createdAt time.Time,
	ttl time.Duration,
) (*Assignment, error) {
	if ttl <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("ttl", fmt.Errorf("%s is not positive", ttl))
	}
	if createdAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("created at")
	}

	a := &Assignment{
		state:     Pending,
		createdAt: createdAt.UTC(),
		expiresAt: createdAt.Add(ttl).UTC(),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setIDs(id, loadID, driverID, offeredBy),
		a.setVehicles(vehicleIDs),
	); err != nil {
		return nil, err
	}

	return a, nil
}

// Snapshot is the persisted form of an Assignment.
type Snapshot struct {
	ID         kernel.UUID
	LoadID     kernel.UUID
	DriverID   kernel.UUID
	VehicleIDs []kernel.UUID
	OfferedBy  kernel.UUID
	State      State
	CreatedAt  time.Time
	ExpiresAt  time.Time
	Response   *Response
	Version    int
}

func RestoreAssignment(s Snapshot) (*Assignment, error) {
	a := &Assignment{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		a.setIDs(s.ID, s.LoadID, s.DriverID, s.OfferedBy),
		a.setVehicles(s.VehicleIDs),
		a.setWindow(s.CreatedAt, s.ExpiresAt),
		a.setOutcome(s.State, s.Response),
	); err != nil {
		return nil, err
	}
	if s.Version < 0 {
		return nil, errs.NewVersionIsInvalidErrorWithCause("version", fmt.Errorf("%d is negative", s.Version))
	}
	a.version = s.Version

	return a, nil
}

func (a *Assignment) Snapshot() Snapshot {
	return Snapshot{
		ID:         a.id,
		LoadID:     a.loadID,
		DriverID:   a.driverID,
		VehicleIDs: slices.Clone(a.vehicleIDs),
		OfferedBy:  a.offeredBy,
		State:      a.state,
		CreatedAt:  a.createdAt,
		ExpiresAt:  a.expiresAt,
		Response:   a.Response(),
		Version:    a.version,
	}
}

func (a *Assignment) Validate() error {
	if a == nil {
		return ErrAssignmentIsNotConstructed
	}
	return a.guard.Validate(ErrAssignmentIsNotConstructed)
}

func (a *Assignment) ID() kernel.UUID           { return a.id }
func (a *Assignment) LoadID() kernel.UUID       { return a.loadID }
func (a *Assignment) DriverID() kernel.UUID     { return a.driverID }
func (a *Assignment) VehicleIDs() []kernel.UUID { return slices.Clone(a.vehicleIDs) }
func (a *Assignment) OfferedBy() kernel.UUID    { return a.offeredBy }
func (a *Assignment) State() State              { return a.state }
func (a *Assignment) CreatedAt() time.Time      { return a.createdAt }
func (a *Assignment) ExpiresAt() time.Time      { return a.expiresAt }
func (a *Assignment) Version() int              { return a.version }

// Response returns the recorded outcome, or nil while PENDING.
func (a *Assignment) Response() *Response {
	if a.response == nil {
		return nil
	}
	r := *a.response
	return &r
}

// ResourceIDs returns the driver followed by the bundled vehicles.
func (a *Assignment) ResourceIDs() []kernel.UUID {
	return append([]kernel.UUID{a.driverID}, a.vehicleIDs...)
}

// IsExpired reports whether a PENDING assignment is at or past its deadline.
func (a *Assignment) IsExpired(now time.Time) bool {
	return a.state == Pending && !now.Before(a.expiresAt)
}

// Accept records the offered driver's acceptance. It reports changed=false
// when the same driver had already accepted.
func (a *Assignment) Accept(driverID kernel.UUID, now time.Time) (bool, error) {
	if err := a.checkResponder(driverID, Accepted, now); err != nil || a.state == Accepted {
		return false, err
	}

	a.close(Accepted, driverID, now, "")
	return true, nil
}

// Reject records the offered driver's refusal with an optional reason.
func (a *Assignment) Reject(driverID kernel.UUID, reason string, now time.Time) (bool, error) {
	if err := a.checkResponder(driverID, Rejected, now); err != nil || a.state == Rejected {
		return false, err
	}

	a.close(Rejected, driverID, now, strings.TrimSpace(reason))
	return true, nil
}

// Cancel withdraws a PENDING offer. An expired offer the sweep has not yet
// reached may still be cancelled.
func (a *Assignment) Cancel(by kernel.UUID, now time.Time) (bool, error) {
	if err := by.Validate(); err != nil {
		return false, errs.NewValueIsRequiredErrorWithCause("cancelled by", err)
	}
	switch a.state {
	case Cancelled:
		return false, nil
	case Pending:
		a.close(Cancelled, by, now, "")
		return true, nil
	default:
		return false, a.conflict("assignment is "+a.state.String(), nil)
	}
}

// Expire closes a PENDING assignment whose deadline passed. Assignments that
// already left PENDING are skipped with changed=false.
func (a *Assignment) Expire(now time.Time) (bool, error) {
	if a.state != Pending {
		return false, nil
	}
	if !a.IsExpired(now) {
		return false, a.conflict("assignment expires at "+a.expiresAt.Format(time.RFC3339Nano), nil)
	}

	a.close(Expired, kernel.SystemActor, now, ReasonNoResponse)
	return true, nil
}

// checkResponder validates a driver response. It returns nil for an
// idempotent retry, leaving the caller to detect it by the current state.
func (a *Assignment) checkResponder(driverID kernel.UUID, target State, now time.Time) error {
	if !driverID.IsEqual(a.driverID) {
		return a.conflict("driver "+driverID.String()+" cannot respond", ErrNotOfferedDriver)
	}
	if a.state == target {
		return nil
	}
	if a.state != Pending {
		return a.conflict("assignment is "+a.state.String(), nil)
	}
	if a.IsExpired(now) {
		return a.conflict("assignment expired at "+a.expiresAt.Format(time.RFC3339Nano), ErrAssignmentExpired)
	}
	return nil
}

func (a *Assignment) close(state State, by kernel.UUID, now time.Time, reason string) {
	a.state = state
	a.response = &Response{state: state, respondedAt: now.UTC(), by: by, reason: reason}
}

func (a *Assignment) conflict(reason string, cause error) error {
	if cause != nil {
		return errs.NewConflictErrorWithCause(entityName, a.id, reason, cause)
	}
	return errs.NewConflictError(entityName, a.id, reason)
}

func (a *Assignment) setIDs(id, loadID, driverID, offeredBy kernel.UUID) error {
	if err := errors.Join(
		id.Validate(),
		requiredID("load", loadID),
		requiredID("driver", driverID),
		requiredID("offered by", offeredBy),
	); err != nil {
		return err
	}
	a.id, a.loadID, a.driverID, a.offeredBy = id, loadID, driverID, offeredBy
	return nil
}

func (a *Assignment) setVehicles(vehicleIDs []kernel.UUID) error {
	seen := make(map[kernel.UUID]struct{}, len(vehicleIDs))
	for _, v := range vehicleIDs {
		if err := v.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("vehicle", err)
		}
		if _, dup := seen[v]; dup || v.IsEqual(a.driverID) {
			return errs.NewValueIsInvalidErrorWithCause("vehicle", fmt.Errorf("%s is listed twice", v))
		}
		seen[v] = struct{}{}
	}
	a.vehicleIDs = slices.Clone(vehicleIDs)
	return nil
}

func (a *Assignment) setWindow(createdAt, expiresAt time.Time) error {
	if createdAt.IsZero() || expiresAt.IsZero() {
		return errs.NewValueIsRequiredError("created at and expires at")
	}
	if !expiresAt.After(createdAt) {
		return ErrTTLIsInvalid
	}
	a.createdAt, a.expiresAt = createdAt.UTC(), expiresAt.UTC()
	return nil
}

func (a *Assignment) setOutcome(state State, response *Response) error {
	if err := state.Validate(); err != nil {
		return err
	}
	switch {
	case state == Pending && response != nil:
		return errs.NewValueIsInvalidErrorWithCause("response", errors.New("pending assignment has a response"))
	case state != Pending && response == nil:
		return errs.NewValueIsRequiredErrorWithCause("response", fmt.Errorf("%s assignment has no response", state))
	case response != nil && response.state != state:
		return errs.NewValueIsInvalidErrorWithCause("response", fmt.Errorf("response is %s, assignment is %s", response.state, state))
	}
	a.state = state
	if response != nil {
		r := *response
		a.response = &r
	}
	return nil
}

func requiredID(param string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(param, err)
	}
	return nil
}
