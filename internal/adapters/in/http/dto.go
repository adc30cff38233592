package http

import (
	"errors"
	"math"
	"time"

	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/domain/model/resource"
	"fleet/internal/pkg/errs"
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Place struct {
	Name       string `json:"name,omitempty"`
	Street     string `json:"street,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
}

func (p Place) toDomain() (kernel.Place, error) {
	return kernel.NewPlace(p.Name, p.Street, p.City, p.Region, p.PostalCode, p.Country)
}

type CreateLoadRequest struct {
	OrgID                 string    `json:"orgId"`
	Number                string    `json:"number"`
	Origin                Place     `json:"origin"`
	Destination           Place     `json:"destination"`
	PickupAt              time.Time `json:"pickupAt"`
	DeliverBy             time.Time `json:"deliverBy"`
	Currency              string    `json:"currency"`
	LineHaulMinor         int64     `json:"lineHaulMinor"`
	DriverPayPerMileMinor *int64    `json:"driverPayPerMileMinor,omitempty"`
	PlannedDistance       *float64  `json:"plannedDistance,omitempty"`
}

func (r CreateLoadRequest) toCommand(createdBy kernel.UUID) (commands.CreateLoadCommand, error) {
	orgID, err := parseID("orgId", r.OrgID)
	if err != nil {
		return commands.CreateLoadCommand{}, err
	}
	origin, err := r.Origin.toDomain()
	if err != nil {
		return commands.CreateLoadCommand{}, err
	}
	destination, err := r.Destination.toDomain()
	if err != nil {
		return commands.CreateLoadCommand{}, err
	}
	window, err := kernel.NewTimeWindow(r.PickupAt, r.DeliverBy)
	if err != nil {
		return commands.CreateLoadCommand{}, err
	}
	lineHaul, err := kernel.NewMoney(r.LineHaulMinor, r.Currency)
	if err != nil {
		return commands.CreateLoadCommand{}, err
	}

	var perMile *kernel.Money
	if r.DriverPayPerMileMinor != nil {
		m, err := kernel.NewMoney(*r.DriverPayPerMileMinor, r.Currency)
		if err != nil {
			return commands.CreateLoadCommand{}, err
		}
		perMile = &m
	}

	terms, err := load.NewTerms(lineHaul, perMile, r.PlannedDistance)
	if err != nil {
		return commands.CreateLoadCommand{}, err
	}

	return commands.NewCreateLoadCommand(kernel.NewUUID(), orgID, r.Number, origin, destination, window, terms, createdBy)
}

type AdvanceStageRequest struct {
	Stage         string   `json:"stage"`
	Note          string   `json:"note,omitempty"`
	TotalDistance *float64 `json:"totalDistance,omitempty"`
}

// CreateAssignmentRequest carries the offer lifetime either as a duration
// string ("90s", "250ms") or in whole seconds. Absent both, the workflow
// default applies.
type CreateAssignmentRequest struct {
	DriverID   string   `json:"driverId"`
	VehicleIDs []string `json:"vehicleIds,omitempty"`
	TTL        string   `json:"ttl,omitempty"`
	TTLSeconds int64    `json:"ttlSeconds,omitempty"`
}

// maxTTLSeconds is the largest whole-second ttl a time.Duration can hold.
const maxTTLSeconds = math.MaxInt64 / int64(time.Second)

func (r CreateAssignmentRequest) ttl() (time.Duration, error) {
	switch {
	case r.TTL != "" && r.TTLSeconds != 0:
		return 0, errs.NewValueIsInvalidErrorWithCause("ttl", errors.New("ttl and ttlSeconds are exclusive"))
	case r.TTL != "":
		d, err := time.ParseDuration(r.TTL)
		if err != nil {
			return 0, errs.NewValueIsInvalidErrorWithCause("ttl", err)
		}
		if d <= 0 {
			return 0, errs.NewValueIsOutOfRangeError("ttl", r.TTL, "1ns", time.Duration(math.MaxInt64).String())
		}
		return d, nil
	case r.TTLSeconds < 0 || r.TTLSeconds > maxTTLSeconds:
		return 0, errs.NewValueIsOutOfRangeError("ttlSeconds", r.TTLSeconds, 1, maxTTLSeconds)
	default:
		return time.Duration(r.TTLSeconds) * time.Second, nil
	}
}

type RejectAssignmentRequest struct {
	Reason string `json:"reason,omitempty"`
}

type RegisterResourceRequest struct {
	ID    string `json:"id"`
	OrgID string `json:"orgId"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
}

func (r RegisterResourceRequest) toCommand() (commands.RegisterResourceCommand, error) {
	id, err := parseID("id", r.ID)
	if err != nil {
		return commands.RegisterResourceCommand{}, err
	}
	orgID, err := parseID("orgId", r.OrgID)
	if err != nil {
		return commands.RegisterResourceCommand{}, err
	}
	kind, err := resource.ParseKind(r.Kind)
	if err != nil {
		return commands.RegisterResourceCommand{}, err
	}
	return commands.NewRegisterResourceCommand(id, orgID, kind, r.Name)
}

type AvailabilityRequest struct {
	Available *bool `json:"available"`
}

type NotificationsParams struct {
	UnreadOnly *bool
	Limit      *int
}

type StageEntry struct {
	Stage   string    `json:"stage"`
	At      time.Time `json:"at"`
	ActorID string    `json:"actorId"`
	Note    string    `json:"note,omitempty"`
}

type Completion struct {
	DeliveredAt    time.Time `json:"deliveredAt"`
	TotalDistance  *float64  `json:"totalDistance,omitempty"`
	DriverPayMinor *int64    `json:"driverPayMinor,omitempty"`
}

type LoadResponse struct {
	ID          string       `json:"id"`
	OrgID       string       `json:"orgId"`
	Number      string       `json:"number"`
	Stage       string       `json:"stage"`
	Origin      Place        `json:"origin"`
	Destination Place        `json:"destination"`
	PickupAt    time.Time    `json:"pickupAt"`
	DeliverBy   time.Time    `json:"deliverBy"`
	Currency    string       `json:"currency"`
	LineHaul    int64        `json:"lineHaulMinor"`
	DriverID    *string      `json:"driverId,omitempty"`
	VehicleIDs  []string     `json:"vehicleIds"`
	Completion  *Completion  `json:"completion,omitempty"`
	History     []StageEntry `json:"history"`
	Version     int          `json:"version"`
}

type LoadSummaryResponse struct {
	ID                  string     `json:"id"`
	Number              string     `json:"number"`
	Stage               string     `json:"stage"`
	OriginCity          string     `json:"originCity"`
	DestinationCity     string     `json:"destinationCity"`
	PickupAt            time.Time  `json:"pickupAt"`
	DeliverBy           time.Time  `json:"deliverBy"`
	DriverID            *string    `json:"driverId,omitempty"`
	PendingAssignmentID *string    `json:"pendingAssignmentId,omitempty"`
	PendingExpiresAt    *time.Time `json:"pendingExpiresAt,omitempty"`
}

type LoadDetailsResponse struct {
	ID                  string       `json:"id"`
	OrgID               string       `json:"orgId"`
	Number              string       `json:"number"`
	Stage               string       `json:"stage"`
	OriginCity          string       `json:"originCity"`
	OriginCountry       string       `json:"originCountry"`
	DestinationCity     string       `json:"destinationCity"`
	DestinationCountry  string       `json:"destinationCountry"`
	PickupAt            time.Time    `json:"pickupAt"`
	DeliverBy           time.Time    `json:"deliverBy"`
	Currency            string       `json:"currency"`
	LineHaulMinor       int64        `json:"lineHaulMinor"`
	DriverID            *string      `json:"driverId,omitempty"`
	VehicleIDs          []string     `json:"vehicleIds"`
	DeliveredAt         *time.Time   `json:"deliveredAt,omitempty"`
	TotalDistance       *float64     `json:"totalDistance,omitempty"`
	DriverPayMinor      *int64       `json:"driverPayMinor,omitempty"`
	PendingAssignmentID *string      `json:"pendingAssignmentId,omitempty"`
	History             []StageEntry `json:"history"`
}

type AssignmentResponse struct {
	ID          string     `json:"id"`
	LoadID      string     `json:"loadId"`
	DriverID    string     `json:"driverId"`
	VehicleIDs  []string   `json:"vehicleIds"`
	OfferedBy   string     `json:"offeredBy"`
	State       string     `json:"state"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
	RespondedBy *string    `json:"respondedBy,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

type ResourceResponse struct {
	ID           string  `json:"id"`
	OrgID        string  `json:"orgId"`
	Kind         string  `json:"kind"`
	Name         string  `json:"name"`
	Availability string  `json:"availability"`
	HolderLoadID *string `json:"holderLoadId,omitempty"`
}

type ResourceSummaryResponse struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

type NotificationResponse struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignmentId"`
	Audience     string    `json:"audience"`
	LoadID       string    `json:"loadId"`
	Status       string    `json:"status"`
	Title        string    `json:"title"`
	Message      string    `json:"message,omitempty"`
	Read         bool      `json:"read"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
