// Package loadrepo persists Load aggregates: one row per load, its bound
// vehicles and its append-only stage history in child tables.
package loadrepo

import (
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"

	"github.com/google/uuid"
)

type LoadDTO struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey"`
	OrgID       uuid.UUID     `gorm:"type:uuid;not null;index"`
	Number      string        `gorm:"type:varchar(64);not null;uniqueIndex"`
	Origin      PlaceDTO      `gorm:"embedded;embeddedPrefix:origin_"`
	Destination PlaceDTO      `gorm:"embedded;embeddedPrefix:destination_"`
	PickupAt    time.Time     `gorm:"type:timestamptz;not null"`
	DeliverBy   time.Time     `gorm:"type:timestamptz;not null"`
	Terms       TermsDTO      `gorm:"embedded"`
	Stage       int           `gorm:"type:smallint;not null;index"`
	DriverID    *uuid.UUID    `gorm:"type:uuid;index"`
	Completion  CompletionDTO `gorm:"embedded"`
	CreatedBy   uuid.UUID     `gorm:"type:uuid;not null"`
	CreatedAt   time.Time     `gorm:"type:timestamptz;not null"`
	Version     int           `gorm:"type:int;not null"`

	Vehicles []VehicleDTO `gorm:"foreignKey:LoadID;constraint:OnDelete:CASCADE"`
	History  []HistoryDTO `gorm:"foreignKey:LoadID;constraint:OnDelete:CASCADE"`
}

func (LoadDTO) TableName() string {
	return "loads"
}

type PlaceDTO struct {
	Name       string `gorm:"type:varchar(255)"`
	Street     string `gorm:"type:varchar(255)"`
	City       string `gorm:"type:varchar(255);not null"`
	Region     string `gorm:"type:varchar(255)"`
	PostalCode string `gorm:"type:varchar(32)"`
	Country    string `gorm:"type:varchar(64);not null"`
}

type TermsDTO struct {
	Currency              string   `gorm:"type:char(3);not null"`
	LineHaulMinor         int64    `gorm:"type:bigint;not null"`
	DriverPayPerMileMinor *int64   `gorm:"type:bigint"`
	PlannedDistance       *float64 `gorm:"type:double precision"`
}

type CompletionDTO struct {
	DeliveredAt    *time.Time `gorm:"type:timestamptz"`
	TotalDistance  *float64   `gorm:"type:double precision"`
	DriverPayMinor *int64     `gorm:"type:bigint"`
}

// VehicleDTO keeps the vehicles bound to a load in offer order.
type VehicleDTO struct {
	LoadID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position  int       `gorm:"type:smallint;primaryKey"`
	VehicleID uuid.UUID `gorm:"type:uuid;not null;index"`
}

func (VehicleDTO) TableName() string {
	return "load_vehicles"
}

// HistoryDTO is one stage history entry. Seq orders entries within a load.
type HistoryDTO struct {
	LoadID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq     int       `gorm:"type:int;primaryKey"`
	Stage   int       `gorm:"type:smallint;not null"`
	At      time.Time `gorm:"type:timestamptz;not null"`
	ActorID uuid.UUID `gorm:"type:uuid;not null"`
	Note    string    `gorm:"type:text"`
}

func (HistoryDTO) TableName() string {
	return "load_stage_history"
}

func fromDomain(l *load.Load) LoadDTO {
	loadID := l.ID().Bytes()

	var driverID *uuid.UUID
	if id := l.AssignedDriverID(); id != nil {
		raw := id.Bytes()
		driverID = &raw
	}

	vehicles := make([]VehicleDTO, 0, len(l.VehicleIDs()))
	for i, v := range l.VehicleIDs() {
		vehicles = append(vehicles, VehicleDTO{LoadID: loadID, Position: i, VehicleID: v.Bytes()})
	}

	history := make([]HistoryDTO, 0, len(l.History()))
	for i, h := range l.History() {
		history = append(history, HistoryDTO{
			LoadID:  loadID,
			Seq:     i,
			Stage:   int(h.Stage()),
			At:      h.At(),
			ActorID: h.Actor().Bytes(),
			Note:    h.Note(),
		})
	}

	terms := l.Terms()
	termsDTO := TermsDTO{
		Currency:        terms.LineHaul().Currency(),
		LineHaulMinor:   terms.LineHaul().Minor(),
		PlannedDistance: terms.PlannedDistance(),
	}
	if pay := terms.DriverPayPerMile(); pay != nil {
		minor := pay.Minor()
		termsDTO.DriverPayPerMileMinor = &minor
	}

	var completion CompletionDTO
	if c := l.Completion(); c != nil {
		at := c.DeliveredAt()
		completion.DeliveredAt = &at
		completion.TotalDistance = c.TotalDistance()
		if pay := c.DriverPay(); pay != nil {
			minor := pay.Minor()
			completion.DriverPayMinor = &minor
		}
	}

	return LoadDTO{
		ID:          loadID,
		OrgID:       l.OrgID().Bytes(),
		Number:      l.Number(),
		Origin:      placeFromDomain(l.Origin()),
		Destination: placeFromDomain(l.Destination()),
		PickupAt:    l.Schedule().PickupAt(),
		DeliverBy:   l.Schedule().DeliverBy(),
		Terms:       termsDTO,
		Stage:       int(l.Stage()),
		DriverID:    driverID,
		Completion:  completion,
		CreatedBy:   l.CreatedBy().Bytes(),
		CreatedAt:   l.CreatedAt(),
		Version:     l.Version(),
		Vehicles:    vehicles,
		History:     history,
	}
}

func placeFromDomain(p kernel.Place) PlaceDTO {
	return PlaceDTO{
		Name:       p.Name(),
		Street:     p.Street(),
		City:       p.City(),
		Region:     p.Region(),
		PostalCode: p.PostalCode(),
		Country:    p.Country(),
	}
}

func toDomain(dto LoadDTO) (*load.Load, error) {
	s := load.Snapshot{
		Stage:   load.Stage(dto.Stage),
		Version: dto.Version,
	}

	var err error
	if s.ID, err = kernel.UUIDFromBytes(dto.ID[:]); err != nil {
		return nil, err
	}
	if s.OrgID, err = kernel.UUIDFromBytes(dto.OrgID[:]); err != nil {
		return nil, err
	}
	if s.CreatedBy, err = kernel.UUIDFromBytes(dto.CreatedBy[:]); err != nil {
		return nil, err
	}
	s.Number = dto.Number

	if s.Origin, err = placeToDomain(dto.Origin); err != nil {
		return nil, err
	}
	if s.Destination, err = placeToDomain(dto.Destination); err != nil {
		return nil, err
	}
	if s.Schedule, err = kernel.NewTimeWindow(dto.PickupAt, dto.DeliverBy); err != nil {
		return nil, err
	}
	if s.Terms, err = termsToDomain(dto.Terms); err != nil {
		return nil, err
	}

	if dto.DriverID != nil {
		driverID, idErr := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if idErr != nil {
			return nil, idErr
		}
		s.DriverID = &driverID
	}

	for _, v := range dto.Vehicles {
		vehicleID, idErr := kernel.UUIDFromBytes(v.VehicleID[:])
		if idErr != nil {
			return nil, idErr
		}
		s.VehicleIDs = append(s.VehicleIDs, vehicleID)
	}

	for _, h := range dto.History {
		entry, hErr := historyToDomain(h)
		if hErr != nil {
			return nil, hErr
		}
		s.History = append(s.History, entry)
	}

	if dto.Completion.DeliveredAt != nil {
		c, cErr := completionToDomain(dto.Completion, dto.Terms.Currency)
		if cErr != nil {
			return nil, cErr
		}
		s.Completion = &c
	}

	return load.RestoreLoad(s)
}

func placeToDomain(dto PlaceDTO) (kernel.Place, error) {
	return kernel.NewPlace(dto.Name, dto.Street, dto.City, dto.Region, dto.PostalCode, dto.Country)
}

func termsToDomain(dto TermsDTO) (load.Terms, error) {
	lineHaul, err := kernel.NewMoney(dto.LineHaulMinor, dto.Currency)
	if err != nil {
		return load.Terms{}, err
	}

	var payPerMile *kernel.Money
	if dto.DriverPayPerMileMinor != nil {
		pay, payErr := kernel.NewMoney(*dto.DriverPayPerMileMinor, dto.Currency)
		if payErr != nil {
			return load.Terms{}, payErr
		}
		payPerMile = &pay
	}

	return load.NewTerms(lineHaul, payPerMile, dto.PlannedDistance)
}

func historyToDomain(dto HistoryDTO) (load.HistoryEntry, error) {
	actor, err := kernel.UUIDFromBytes(dto.ActorID[:])
	if err != nil {
		return load.HistoryEntry{}, err
	}
	return load.NewHistoryEntry(load.Stage(dto.Stage), dto.At, actor, dto.Note)
}

func completionToDomain(dto CompletionDTO, currency string) (load.Completion, error) {
	var pay *kernel.Money
	if dto.DriverPayMinor != nil {
		m, err := kernel.NewMoney(*dto.DriverPayMinor, currency)
		if err != nil {
			return load.Completion{}, err
		}
		pay = &m
	}
	return load.RestoreCompletion(*dto.DeliveredAt, dto.TotalDistance, pay)
}
