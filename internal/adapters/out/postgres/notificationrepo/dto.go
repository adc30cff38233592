// Package notificationrepo stores notification mirrors, unique per
// assignment and audience.
package notificationrepo

import (
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/notification"

	"github.com/google/uuid"
)

type NotificationDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	AssignmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_notifications_key"`
	Audience     int       `gorm:"type:smallint;not null;uniqueIndex:idx_notifications_key"`
	RecipientID  uuid.UUID `gorm:"type:uuid;not null;index"`
	LoadID       uuid.UUID `gorm:"type:uuid;not null"`
	Status       int       `gorm:"type:smallint;not null"`
	Title        string    `gorm:"type:varchar(255);not null"`
	Message      string    `gorm:"type:text"`
	Read         bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt    time.Time `gorm:"type:timestamptz;not null"`
	Version      int       `gorm:"type:int;not null"`
}

func (NotificationDTO) TableName() string {
	return "notifications"
}

func fromDomain(m *notification.Mirror) NotificationDTO {
	return NotificationDTO{
		ID:           m.ID().Bytes(),
		AssignmentID: m.Key().AssignmentID.Bytes(),
		Audience:     int(m.Key().Audience),
		RecipientID:  m.RecipientID().Bytes(),
		LoadID:       m.LoadID().Bytes(),
		Status:       int(m.Status()),
		Title:        m.Title(),
		Message:      m.Message(),
		Read:         m.IsRead(),
		CreatedAt:    m.CreatedAt(),
		UpdatedAt:    m.UpdatedAt(),
		Version:      m.Version(),
	}
}

func toDomain(dto NotificationDTO) (*notification.Mirror, error) {
	ids := make([]kernel.UUID, 0, 4)
	for _, raw := range []uuid.UUID{dto.ID, dto.AssignmentID, dto.RecipientID, dto.LoadID} {
		id, err := kernel.UUIDFromBytes(raw[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return notification.RestoreMirror(notification.MirrorSnapshot{
		ID:          ids[0],
		Key:         notification.Key{AssignmentID: ids[1], Audience: notification.Audience(dto.Audience)},
		RecipientID: ids[2],
		LoadID:      ids[3],
		Status:      assignment.State(dto.Status),
		Title:       dto.Title,
		Message:     dto.Message,
		Read:        dto.Read,
		CreatedAt:   dto.CreatedAt,
		UpdatedAt:   dto.UpdatedAt,
		Version:     dto.Version,
	})
}
