package queries

import (
	"errors"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/resource"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var ErrGetAvailableResourcesQueryIsNotConstructed = errors.New(
	"GetAvailableResourcesQuery must be created via NewGetAvailableResourcesQuery constructor",
)

// GetAvailableResourcesQuery lists what a dispatcher can offer right now,
// optionally narrowed to one kind.
type GetAvailableResourcesQuery struct {
	orgID kernel.UUID
	kind  resource.Kind

	guard guard.ConstructorGuard
}

// NewGetAvailableResourcesQuery accepts resource.UnknownKind for "any kind".
func NewGetAvailableResourcesQuery(orgID kernel.UUID, kind resource.Kind) (GetAvailableResourcesQuery, error) {
	if err := orgID.Validate(); err != nil {
		return GetAvailableResourcesQuery{}, errs.NewValueIsRequiredErrorWithCause("organization", err)
	}
	if kind != resource.UnknownKind {
		if err := kind.Validate(); err != nil {
			return GetAvailableResourcesQuery{}, err
		}
	}
	return GetAvailableResourcesQuery{orgID: orgID, kind: kind, guard: guard.NewConstructorGuard()}, nil
}

func (q GetAvailableResourcesQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableResourcesQueryIsNotConstructed)
}

func (q GetAvailableResourcesQuery) OrgID() kernel.UUID  { return q.orgID }
func (q GetAvailableResourcesQuery) Kind() resource.Kind { return q.kind }

type ResourceSummary struct {
	ID   kernel.UUID
	Kind resource.Kind
	Name string
}
