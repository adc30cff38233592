package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetLoadQueryHandler struct {
	db *gorm.DB
}

func NewGetLoadQueryHandler(db *gorm.DB) GetLoadQueryHandler {
	return GetLoadQueryHandler{db: db}
}

func (h GetLoadQueryHandler) Handle(ctx context.Context, query GetLoadQuery) (LoadDetails, error) {
	if err := query.Validate(); err != nil {
		return LoadDetails{}, err
	}

	db := h.db.WithContext(ctx)
	id := query.LoadID().Bytes()

	details, err := h.loadRow(db, id)
	if err != nil {
		return LoadDetails{}, err
	}
	if details.VehicleIDs, err = h.vehicles(db, id); err != nil {
		return LoadDetails{}, err
	}
	if details.History, err = h.history(db, id); err != nil {
		return LoadDetails{}, err
	}

	return details, nil
}

func (h GetLoadQueryHandler) loadRow(db *gorm.DB, id uuid.UUID) (LoadDetails, error) {
	var (
		details     LoadDetails
		loadID      uuid.UUID
		orgID       uuid.UUID
		stage       int
		driverID    *uuid.UUID
		pendingID   *uuid.UUID
		deliveredAt *time.Time
	)

	row := db.Raw(`
		SELECT
			l.id,
			l.org_id,
			l.number,
			l.stage,
			l.origin_city,
			l.origin_country,
			l.destination_city,
			l.destination_country,
			l.pickup_at,
			l.deliver_by,
			l.currency,
			l.line_haul_minor,
			l.driver_id,
			l.delivered_at,
			l.total_distance,
			l.driver_pay_minor,
			a.id
		FROM loads l
		LEFT JOIN assignments a ON a.load_id = l.id AND a.state = ?
		WHERE l.id = ?
	`, assignment.Pending, id).Row()

	err := row.Scan(
		&loadID,
		&orgID,
		&details.Number,
		&stage,
		&details.OriginCity,
		&details.OriginCountry,
		&details.DestinationCity,
		&details.DestinationCountry,
		&details.PickupAt,
		&details.DeliverBy,
		&details.Currency,
		&details.LineHaulMinor,
		&driverID,
		&deliveredAt,
		&details.TotalDistance,
		&details.DriverPayMinor,
		&pendingID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return LoadDetails{}, errs.NewObjectNotFoundError("load", id.String())
	}
	if err != nil {
		return LoadDetails{}, err
	}

	if details.ID, err = fromUUID(loadID); err != nil {
		return LoadDetails{}, err
	}
	if details.OrgID, err = fromUUID(orgID); err != nil {
		return LoadDetails{}, err
	}
	if details.DriverID, err = fromNullableUUID(driverID); err != nil {
		return LoadDetails{}, err
	}
	if details.PendingAssignmentID, err = fromNullableUUID(pendingID); err != nil {
		return LoadDetails{}, err
	}
	details.Stage = load.Stage(stage)
	details.PickupAt = details.PickupAt.UTC()
	details.DeliverBy = details.DeliverBy.UTC()
	if deliveredAt != nil {
		t := deliveredAt.UTC()
		details.DeliveredAt = &t
	}

	return details, nil
}

func (h GetLoadQueryHandler) vehicles(db *gorm.DB, id uuid.UUID) ([]kernel.UUID, error) {
	rows, err := db.Raw(`
		SELECT vehicle_id FROM load_vehicles WHERE load_id = ? ORDER BY position
	`, id).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vehicles := make([]kernel.UUID, 0)
	for rows.Next() {
		var raw uuid.UUID
		if err = rows.Scan(&raw); err != nil {
			return nil, err
		}
		v, err := fromUUID(raw)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (h GetLoadQueryHandler) history(db *gorm.DB, id uuid.UUID) ([]StageEntry, error) {
	rows, err := db.Raw(`
		SELECT stage, at, actor_id, note FROM load_stage_history WHERE load_id = ? ORDER BY seq
	`, id).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]StageEntry, 0)
	for rows.Next() {
		var (
			entry StageEntry
			stage int
			actor uuid.UUID
		)
		if err = rows.Scan(&stage, &entry.At, &actor, &entry.Note); err != nil {
			return nil, err
		}
		if entry.ActorID, err = fromUUID(actor); err != nil {
			return nil, err
		}
		entry.Stage = load.Stage(stage)
		entry.At = entry.At.UTC()
		history = append(history, entry)
	}
	return history, rows.Err()
}
