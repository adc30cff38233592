package queries

import (
	"errors"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var ErrGetLoadQueryIsNotConstructed = errors.New(
	"GetLoadQuery must be created via NewGetLoadQuery constructor",
)

type GetLoadQuery struct {
	loadID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetLoadQuery(loadID kernel.UUID) (GetLoadQuery, error) {
	if err := loadID.Validate(); err != nil {
		return GetLoadQuery{}, errs.NewValueIsRequiredErrorWithCause("load", err)
	}
	return GetLoadQuery{loadID: loadID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetLoadQuery) Validate() error {
	return q.guard.Validate(ErrGetLoadQueryIsNotConstructed)
}

func (q GetLoadQuery) LoadID() kernel.UUID { return q.loadID }

// LoadDetails is a single load with its vehicles and stage history.
type LoadDetails struct {
	ID                  kernel.UUID
	OrgID               kernel.UUID
	Number              string
	Stage               load.Stage
	OriginCity          string
	OriginCountry       string
	DestinationCity     string
	DestinationCountry  string
	PickupAt            time.Time
	DeliverBy           time.Time
	Currency            string
	LineHaulMinor       int64
	DriverID            *kernel.UUID
	VehicleIDs          []kernel.UUID
	DeliveredAt         *time.Time
	TotalDistance       *float64
	DriverPayMinor      *int64
	PendingAssignmentID *kernel.UUID
	History             []StageEntry
}

type StageEntry struct {
	Stage   load.Stage
	At      time.Time
	ActorID kernel.UUID
	Note    string
}
