package notificationrepo

import (
	"context"
	"errors"

	"fleet/internal/adapters/out/postgres/sqlerr"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/notification"
	"fleet/internal/pkg/errs"

	"gorm.io/gorm"
)

const entityName = "notification"

// GormNotificationRepository implements ports.NotificationRepository using
// GORM. The (assignment_id, audience) unique index backs the one mirror per
// key rule across processes.
type GormNotificationRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormNotificationRepository(db *gorm.DB, tracker aggregateTracker) *GormNotificationRepository {
	return &GormNotificationRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormNotificationRepository) Add(ctx context.Context, mirror *notification.Mirror) error {
	if err := mirror.Validate(); err != nil {
		return err
	}

	dto := fromDomain(mirror)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return sqlerr.Conflict(err, entityName, mirror.Key(), "mirror already exists")
	}

	r.tracker.TrackAggregate(mirror.ID(), mirror)
	return nil
}

func (r *GormNotificationRepository) Update(ctx context.Context, mirror *notification.Mirror) error {
	if err := mirror.Validate(); err != nil {
		return err
	}

	dto := fromDomain(mirror)
	db := r.db.WithContext(ctx)

	result := db.Model(&NotificationDTO{}).
		Where("id = ? AND version = ?", dto.ID, mirror.Version()).
		Updates(map[string]any{
			"status":     dto.Status,
			"title":      dto.Title,
			"message":    dto.Message,
			"read":       dto.Read,
			"updated_at": dto.UpdatedAt,
			"version":    mirror.Version() + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&NotificationDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError(entityName, mirror.Key().String())
		}
		return sqlerr.StaleVersion(entityName, mirror.Key())
	}

	r.tracker.TrackAggregate(mirror.ID(), mirror)
	return nil
}

func (r *GormNotificationRepository) GetByKey(ctx context.Context, key notification.Key) (*notification.Mirror, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	var dto NotificationDTO
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND audience = ?", key.AssignmentID.Bytes(), int(key.Audience)).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(entityName, key.String())
		}
		return nil, err
	}

	return toDomain(dto)
}
