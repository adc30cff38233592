package queries

import (
	"context"
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/load"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveLoadsQueryHandler reads the board straight from the tables,
// joining the PENDING assignment of each load when there is one. Loads come
// back by pickup time, then number.
type GetActiveLoadsQueryHandler struct {
	db *gorm.DB
}

func NewGetActiveLoadsQueryHandler(db *gorm.DB) GetActiveLoadsQueryHandler {
	return GetActiveLoadsQueryHandler{db: db}
}

func (h GetActiveLoadsQueryHandler) Handle(ctx context.Context, query GetActiveLoadsQuery) ([]LoadSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	loads := make([]LoadSummary, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			l.id,
			l.number,
			l.stage,
			l.origin_city,
			l.destination_city,
			l.pickup_at,
			l.deliver_by,
			l.driver_id,
			a.id,
			a.expires_at
		FROM loads l
		LEFT JOIN assignments a ON a.load_id = l.id AND a.state = ?
		WHERE l.org_id = ? AND l.stage NOT IN (?, ?)
		ORDER BY l.pickup_at, l.number
	`, assignment.Pending, query.OrgID().Bytes(), load.Completed, load.Cancelled).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row       LoadSummary
			id        uuid.UUID
			stage     int
			driverID  *uuid.UUID
			pendingID *uuid.UUID
			expiresAt *time.Time
		)

		err = rows.Scan(
			&id,
			&row.Number,
			&stage,
			&row.OriginCity,
			&row.DestinationCity,
			&row.PickupAt,
			&row.DeliverBy,
			&driverID,
			&pendingID,
			&expiresAt,
		)
		if err != nil {
			return nil, err
		}

		if row.ID, err = fromUUID(id); err != nil {
			return nil, err
		}
		if row.DriverID, err = fromNullableUUID(driverID); err != nil {
			return nil, err
		}
		if row.PendingAssignmentID, err = fromNullableUUID(pendingID); err != nil {
			return nil, err
		}
		row.Stage = load.Stage(stage)
		row.PickupAt = row.PickupAt.UTC()
		row.DeliverBy = row.DeliverBy.UTC()
		if expiresAt != nil {
			t := expiresAt.UTC()
			row.PendingExpiresAt = &t
		}

		loads = append(loads, row)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return loads, nil
}
