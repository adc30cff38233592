package assignmentrepo

import (
	"context"
	"errors"
	"time"

	"fleet/internal/adapters/out/postgres/sqlerr"
	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"

	"gorm.io/gorm"
)

const entityName = "assignment"

// OnePendingPerLoadIndex is the partial unique index that keeps a single
// PENDING assignment per load.
const OnePendingPerLoadIndex = "assignments_one_pending_per_load"

// GormAssignmentRepository implements ports.AssignmentRepository using GORM.
type GormAssignmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormAssignmentRepository(db *gorm.DB, tracker aggregateTracker) *GormAssignmentRepository {
	return &GormAssignmentRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormAssignmentRepository) Add(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return sqlerr.Conflict(err, "load", aggregate.LoadID(), "already has a pending assignment")
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the state and response. The offered bundle never changes
// after creation, so vehicles are left alone.
func (r *GormAssignmentRepository) Update(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&AssignmentDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Updates(map[string]any{
			"state":           dto.State,
			"response_at":     dto.Response.At,
			"response_by":     dto.Response.By,
			"response_reason": dto.Response.Reason,
			"version":         aggregate.Version() + 1,
		})
	if result.Error != nil {
		return sqlerr.Conflict(result.Error, "load", aggregate.LoadID(), "already has a pending assignment")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&AssignmentDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
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

func (r *GormAssignmentRepository) Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, errs.NewObjectNotFoundError(entityName, id.String()), "id = ?", id.Bytes())
}

func (r *GormAssignmentRepository) GetPendingByLoad(ctx context.Context, loadID kernel.UUID) (*assignment.Assignment, error) {
	if err := loadID.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, errs.NewObjectNotFoundError("pending assignment of load", loadID.String()),
		"load_id = ? AND state = ?", loadID.Bytes(), int(assignment.Pending))
}

func (r *GormAssignmentRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*assignment.Assignment, error) {
	query := r.db.WithContext(ctx).
		Preload("VehicleIDs", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("state = ? AND expires_at <= ?", int(assignment.Pending), now).
		Order("expires_at")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var dtos []AssignmentDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	expired := make([]*assignment.Assignment, 0, len(dtos))
	for _, dto := range dtos {
		a, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		expired = append(expired, a)
	}
	return expired, nil
}

func (r *GormAssignmentRepository) first(ctx context.Context, notFound error, query string, args ...any) (*assignment.Assignment, error) {
	var dto AssignmentDTO
	err := r.db.WithContext(ctx).
		Preload("VehicleIDs", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where(query, args...).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return toDomain(dto)
}
