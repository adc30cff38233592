package queries

import (
	"errors"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var ErrGetActiveLoadsQueryIsNotConstructed = errors.New(
	"GetActiveLoadsQuery must be created via NewGetActiveLoadsQuery constructor",
)

// GetActiveLoadsQuery lists an organization's loads that are neither
// COMPLETED nor CANCELLED.
//
// Example:
//
//	query, err := NewGetActiveLoadsQuery(orgID)
//	if err != nil {
//	    return err
//	}
//	loads, err := NewGetActiveLoadsQueryHandler(db).Handle(ctx, query)
type GetActiveLoadsQuery struct {
	orgID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetActiveLoadsQuery(orgID kernel.UUID) (GetActiveLoadsQuery, error) {
	if err := orgID.Validate(); err != nil {
		return GetActiveLoadsQuery{}, errs.NewValueIsRequiredErrorWithCause("organization", err)
	}
	return GetActiveLoadsQuery{orgID: orgID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetActiveLoadsQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveLoadsQueryIsNotConstructed)
}

func (q GetActiveLoadsQuery) OrgID() kernel.UUID { return q.orgID }

// LoadSummary is one row of the dispatcher's board.
type LoadSummary struct {
	ID                  kernel.UUID
	Number              string
	Stage               load.Stage
	OriginCity          string
	DestinationCity     string
	PickupAt            time.Time
	DeliverBy           time.Time
	DriverID            *kernel.UUID
	PendingAssignmentID *kernel.UUID
	PendingExpiresAt    *time.Time
}
