package queries

import (
	"context"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/notification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetNotificationsQueryHandler struct {
	db *gorm.DB
}

func NewGetNotificationsQueryHandler(db *gorm.DB) GetNotificationsQueryHandler {
	return GetNotificationsQueryHandler{db: db}
}

func (h GetNotificationsQueryHandler) Handle(
	ctx context.Context,
	query GetNotificationsQuery,
) ([]NotificationView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	stmt := h.db.WithContext(ctx).
		Table("notifications").
		Select("id, assignment_id, audience, load_id, status, title, message, read, updated_at").
		Where("recipient_id = ?", query.RecipientID().Bytes())
	if query.UnreadOnly() {
		stmt = stmt.Where("read = ?", false)
	}

	rows, err := stmt.Order("updated_at DESC, id").Limit(query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]NotificationView, 0)
	for rows.Next() {
		var (
			row          NotificationView
			id           uuid.UUID
			assignmentID uuid.UUID
			loadID       uuid.UUID
			audience     int
			status       int
		)

		err = rows.Scan(
			&id,
			&assignmentID,
			&audience,
			&loadID,
			&status,
			&row.Title,
			&row.Message,
			&row.Read,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if row.ID, err = fromUUID(id); err != nil {
			return nil, err
		}
		if row.AssignmentID, err = fromUUID(assignmentID); err != nil {
			return nil, err
		}
		if row.LoadID, err = fromUUID(loadID); err != nil {
			return nil, err
		}
		row.Audience = notification.Audience(audience)
		row.Status = assignment.State(status)
		row.UpdatedAt = row.UpdatedAt.UTC()

		views = append(views, row)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return views, nil
}
