// Package resourcerepo is the Postgres backing store of the Resource
// Registry.
package resourcerepo

import (
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/resource"

	"github.com/google/uuid"
)

type ResourceDTO struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrgID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_resources_org_kind"`
	Kind         int        `gorm:"type:smallint;not null;index:idx_resources_org_kind"`
	Name         string     `gorm:"type:varchar(255);not null"`
	Availability int        `gorm:"type:smallint;not null"`
	HolderLoadID *uuid.UUID `gorm:"type:uuid;index"`
	Version      int        `gorm:"type:int;not null"`
	UpdatedAt    time.Time  `gorm:"type:timestamptz"`
}

func (ResourceDTO) TableName() string {
	return "resources"
}

func fromDomain(r *resource.Resource) ResourceDTO {
	var holder *uuid.UUID
	if id := r.HolderLoadID(); id != nil {
		raw := id.Bytes()
		holder = &raw
	}

	return ResourceDTO{
		ID:           r.ID().Bytes(),
		OrgID:        r.OrgID().Bytes(),
		Kind:         int(r.Kind()),
		Name:         r.Name(),
		Availability: int(r.Availability()),
		HolderLoadID: holder,
		Version:      r.Version(),
	}
}

func toDomain(dto ResourceDTO) (*resource.Resource, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orgID, err := kernel.UUIDFromBytes(dto.OrgID[:])
	if err != nil {
		return nil, err
	}

	var holder *kernel.UUID
	if dto.HolderLoadID != nil {
		h, hErr := kernel.UUIDFromBytes((*dto.HolderLoadID)[:])
		if hErr != nil {
			return nil, hErr
		}
		holder = &h
	}

	return resource.RestoreResource(id, orgID, resource.Kind(dto.Kind), dto.Name,
		resource.Availability(dto.Availability), holder, dto.Version)
}
