package resourcerepo

import (
	"context"
	"errors"

	"fleet/internal/adapters/out/postgres/sqlerr"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/resource"
	"fleet/internal/pkg/errs"

	"gorm.io/gorm"
)

const entityName = "resource"

// GormResourceRepository implements ports.ResourceRepository using GORM.
type GormResourceRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormResourceRepository(db *gorm.DB, tracker aggregateTracker) *GormResourceRepository {
	return &GormResourceRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormResourceRepository) Add(ctx context.Context, aggregate *resource.Resource) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return sqlerr.Conflict(err, entityName, aggregate.ID(), "already registered")
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormResourceRepository) Update(ctx context.Context, aggregate *resource.Resource) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&ResourceDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Updates(map[string]any{
			"name":           dto.Name,
			"availability":   dto.Availability,
			"holder_load_id": dto.HolderLoadID,
			"version":        aggregate.Version() + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&ResourceDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError(entityName, aggregate.ID().String())
		}
		return sqlerr.StaleVersion(entityName, aggregate.ID())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormResourceRepository) Get(ctx context.Context, id kernel.UUID) (*resource.Resource, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ResourceDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(entityName, id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetMany loads every id in one query and returns them in the order asked.
func (r *GormResourceRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*resource.Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	raw := make([]any, 0, len(ids))
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		raw = append(raw, id.Bytes())
	}

	var dtos []ResourceDTO
	if err := r.db.WithContext(ctx).Where("id IN ?", raw).Find(&dtos).Error; err != nil {
		return nil, err
	}

	byID := make(map[kernel.UUID]*resource.Resource, len(dtos))
	for _, dto := range dtos {
		res, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		byID[res.ID()] = res
	}

	found := make([]*resource.Resource, 0, len(ids))
	for _, id := range ids {
		res, ok := byID[id]
		if !ok {
			return nil, errs.NewObjectNotFoundError(entityName, id.String())
		}
		found = append(found, res)
	}
	return found, nil
}

func (r *GormResourceRepository) ListHeldBy(ctx context.Context, loadID kernel.UUID) ([]*resource.Resource, error) {
	if err := loadID.Validate(); err != nil {
		return nil, err
	}

	var dtos []ResourceDTO
	if err := r.db.WithContext(ctx).Where("holder_load_id = ?", loadID.Bytes()).Order("kind").Find(&dtos).Error; err != nil {
		return nil, err
	}

	held := make([]*resource.Resource, 0, len(dtos))
	for _, dto := range dtos {
		res, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		held = append(held, res)
	}
	return held, nil
}
