package resource

import (
	"errors"
	"fmt"
	"strings"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var (
	ErrResourceIsNotConstructed = errors.New("Resource must be created via NewResource or RestoreResource")
	ErrNameIsRequired           = errs.NewValueIsRequiredError("name")

	// ErrInconsistentHold signals an internal-consistency error: a commit for
	// a load that does not hold the resource.
	ErrInconsistentHold = errors.New("resource hold is inconsistent")
)

// Resource is a Resource Registry entry for one driver or vehicle.
//
// Invariants:
//   - holderLoadID is set iff availability is RESERVED or COMMITTED
//   - a RESERVED or COMMITTED resource cannot be reserved again
//
// Only the workflow engine mutates entries; version is the optimistic-lock
// counter the stores compare on update.
type Resource struct {
	id           kernel.UUID
	orgID        kernel.UUID
	kind         Kind
	name         string
	availability Availability
	holderLoadID *kernel.UUID
	version      int

	guard guard.ConstructorGuard
}

// NewResource registers a driver or vehicle as AVAILABLE. The id is the id of
// the driver or vehicle record the entry belongs to.
func NewResource(id, orgID kernel.UUID, kind Kind, name string) (*Resource, error) {
	r := &Resource{
		availability: Available,
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setID(id),
		r.setOrgID(orgID),
		r.setKind(kind),
		r.setName(name),
	); err != nil {
		return nil, err
	}

	return r, nil
}

// RestoreResource rebuilds an entry from storage and re-checks the holder
// invariant.
func RestoreResource(
	id, orgID kernel.UUID,
	kind Kind,
	name string,
	availability Availability,
	holderLoadID *kernel.UUID,
	version int,
) (*Resource, error) {
	r := &Resource{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setID(id),
		r.setOrgID(orgID),
		r.setKind(kind),
		r.setName(name),
		r.setHold(availability, holderLoadID),
		r.setVersion(version),
	); err != nil {
		return nil, err
	}

	return r, nil
}

// Snapshot is the persisted form of a Resource.
type Snapshot struct {
	ID           kernel.UUID
	OrgID        kernel.UUID
	Kind         Kind
	Name         string
	Availability Availability
	HolderLoadID *kernel.UUID
	Version      int
}

func (r *Resource) Snapshot() Snapshot {
	return Snapshot{
		ID:           r.id,
		OrgID:        r.orgID,
		Kind:         r.kind,
		Name:         r.name,
		Availability: r.availability,
		HolderLoadID: r.HolderLoadID(),
		Version:      r.version,
	}
}

// RestoreResourceSnapshot is RestoreResource over a Snapshot.
func RestoreResourceSnapshot(s Snapshot) (*Resource, error) {
	return RestoreResource(s.ID, s.OrgID, s.Kind, s.Name, s.Availability, s.HolderLoadID, s.Version)
}

func (r *Resource) Validate() error {
	if r == nil {
		return ErrResourceIsNotConstructed
	}
	return r.guard.Validate(ErrResourceIsNotConstructed)
}

func (r *Resource) ID() kernel.UUID            { return r.id }
func (r *Resource) OrgID() kernel.UUID         { return r.orgID }
func (r *Resource) Kind() Kind                 { return r.kind }
func (r *Resource) Name() string               { return r.name }
func (r *Resource) Availability() Availability { return r.availability }
func (r *Resource) Version() int               { return r.version }

// HolderLoadID returns the load holding the resource, or nil.
func (r *Resource) HolderLoadID() *kernel.UUID {
	if r.holderLoadID == nil {
		return nil
	}
	id := *r.holderLoadID
	return &id
}

// IsHeldBy reports whether loadID is the current holder.
func (r *Resource) IsHeldBy(loadID kernel.UUID) bool {
	return r.holderLoadID != nil && r.holderLoadID.IsEqual(loadID)
}

// TryReserve moves an AVAILABLE resource to RESERVED for loadID. It reports
// false, leaving the entry untouched, from any other state.
func (r *Resource) TryReserve(loadID kernel.UUID) bool {
	if r.availability != Available || loadID.Validate() != nil {
		return false
	}

	r.availability = Reserved
	r.holderLoadID = &loadID
	return true
}

// Commit confirms a reservation once the driver accepted. Committing again
// for the same load is a no-op.
func (r *Resource) Commit(loadID kernel.UUID) error {
	if !r.IsHeldBy(loadID) {
		return fmt.Errorf("%w: %s %s is %s, commit requested by load %s",
			ErrInconsistentHold, r.kind, r.id, r.availability, loadID)
	}

	r.availability = Committed
	return nil
}

// Release frees the resource. Releasing an AVAILABLE or UNAVAILABLE entry is
// a no-op so retries are harmless.
func (r *Resource) Release() {
	if !r.availability.IsHeld() {
		return
	}

	r.availability = Available
	r.holderLoadID = nil
}

// MarkUnavailable takes a free resource out of rotation.
func (r *Resource) MarkUnavailable() error {
	switch r.availability {
	case Unavailable:
		return nil
	case Available:
		r.availability = Unavailable
		return nil
	default:
		return errs.NewConflictError("resource", r.id, "resource is "+r.availability.String())
	}
}

// MarkAvailable puts an UNAVAILABLE resource back into rotation.
func (r *Resource) MarkAvailable() error {
	switch r.availability {
	case Available:
		return nil
	case Unavailable:
		r.availability = Available
		return nil
	default:
		return errs.NewConflictError("resource", r.id, "resource is "+r.availability.String())
	}
}

func (r *Resource) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Resource) setOrgID(orgID kernel.UUID) error {
	if err := orgID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("organization", err)
	}
	r.orgID = orgID
	return nil
}

func (r *Resource) setKind(kind Kind) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	r.kind = kind
	return nil
}

func (r *Resource) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	r.name = name
	return nil
}

func (r *Resource) setHold(availability Availability, holderLoadID *kernel.UUID) error {
	if err := availability.Validate(); err != nil {
		return err
	}
	if availability.IsHeld() && holderLoadID == nil {
		return errs.NewValueIsInvalidErrorWithCause("holder", fmt.Errorf("%s resource has no holder load", availability))
	}
	if !availability.IsHeld() && holderLoadID != nil {
		return errs.NewValueIsInvalidErrorWithCause("holder", fmt.Errorf("%s resource cannot have a holder load", availability))
	}
	if holderLoadID != nil {
		if err := holderLoadID.Validate(); err != nil {
			return err
		}
		id := *holderLoadID
		r.holderLoadID = &id
	}
	r.availability = availability
	return nil
}

func (r *Resource) setVersion(version int) error {
	if version < 0 {
		return errs.NewVersionIsInvalidErrorWithCause("version", fmt.Errorf("%d is negative", version))
	}
	r.version = version
	return nil
}
