// Package assignmentrepo persists Assignment aggregates.
package assignmentrepo

import (
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type AssignmentDTO struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey"`
	LoadID     uuid.UUID    `gorm:"type:uuid;not null;index"`
	DriverID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	VehicleIDs []VehicleDTO `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE"`
	OfferedBy  uuid.UUID    `gorm:"type:uuid;not null"`
	State      int          `gorm:"type:smallint;not null"`
	CreatedAt  time.Time    `gorm:"type:timestamptz;not null"`
	ExpiresAt  time.Time    `gorm:"type:timestamptz;not null;index"`
	Response   ResponseDTO  `gorm:"embedded;embeddedPrefix:response_"`
	Version    int          `gorm:"type:int;not null"`
}

func (AssignmentDTO) TableName() string {
	return "assignments"
}

type ResponseDTO struct {
	At     *time.Time `gorm:"type:timestamptz"`
	By     *uuid.UUID `gorm:"type:uuid"`
	Reason string     `gorm:"type:text"`
}

type VehicleDTO struct {
	AssignmentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position     int       `gorm:"type:smallint;primaryKey"`
	VehicleID    uuid.UUID `gorm:"type:uuid;not null"`
}

func (VehicleDTO) TableName() string {
	return "assignment_vehicles"
}

func fromDomain(a *assignment.Assignment) AssignmentDTO {
	id := a.ID().Bytes()

	vehicles := make([]VehicleDTO, 0, len(a.VehicleIDs()))
	for i, v := range a.VehicleIDs() {
		vehicles = append(vehicles, VehicleDTO{AssignmentID: id, Position: i, VehicleID: v.Bytes()})
	}

	var response ResponseDTO
	if r := a.Response(); r != nil {
		at := r.RespondedAt()
		by := r.By().Bytes()
		response = ResponseDTO{At: &at, By: &by, Reason: r.Reason()}
	}

	return AssignmentDTO{
		ID:         id,
		LoadID:     a.LoadID().Bytes(),
		DriverID:   a.DriverID().Bytes(),
		VehicleIDs: vehicles,
		OfferedBy:  a.OfferedBy().Bytes(),
		State:      int(a.State()),
		CreatedAt:  a.CreatedAt(),
		ExpiresAt:  a.ExpiresAt(),
		Response:   response,
		Version:    a.Version(),
	}
}

func toDomain(dto AssignmentDTO) (*assignment.Assignment, error) {
	s := assignment.Snapshot{
		State:     assignment.State(dto.State),
		CreatedAt: dto.CreatedAt,
		ExpiresAt: dto.ExpiresAt,
		Version:   dto.Version,
	}

	ids, err := kernel.UUIDsFromStrings([]string{
		dto.ID.String(), dto.LoadID.String(), dto.DriverID.String(), dto.OfferedBy.String(),
	})
	if err != nil {
		return nil, err
	}
	s.ID, s.LoadID, s.DriverID, s.OfferedBy = ids[0], ids[1], ids[2], ids[3]

	for _, v := range dto.VehicleIDs {
		vehicleID, idErr := kernel.UUIDFromBytes(v.VehicleID[:])
		if idErr != nil {
			return nil, idErr
		}
		s.VehicleIDs = append(s.VehicleIDs, vehicleID)
	}

	if dto.Response.At != nil && dto.Response.By != nil {
		by, idErr := kernel.UUIDFromBytes((*dto.Response.By)[:])
		if idErr != nil {
			return nil, idErr
		}
		r, rErr := assignment.RestoreResponse(s.State, *dto.Response.At, by, dto.Response.Reason)
		if rErr != nil {
			return nil, rErr
		}
		s.Response = &r
	}

	return assignment.RestoreAssignment(s)
}
