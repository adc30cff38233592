package queries

import (
	"context"

	"fleet/internal/core/domain/model/resource"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetAvailableResourcesQueryHandler struct {
	db *gorm.DB
}

func NewGetAvailableResourcesQueryHandler(db *gorm.DB) GetAvailableResourcesQueryHandler {
	return GetAvailableResourcesQueryHandler{db: db}
}

func (h GetAvailableResourcesQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableResourcesQuery,
) ([]ResourceSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	stmt := h.db.WithContext(ctx).
		Table("resources").
		Select("id, kind, name").
		Where("org_id = ? AND availability = ?", query.OrgID().Bytes(), resource.Available)
	if query.Kind() != resource.UnknownKind {
		stmt = stmt.Where("kind = ?", query.Kind())
	}

	rows, err := stmt.Order("kind, name").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resources := make([]ResourceSummary, 0)
	for rows.Next() {
		var (
			row  ResourceSummary
			id   uuid.UUID
			kind int
		)
		if err = rows.Scan(&id, &kind, &row.Name); err != nil {
			return nil, err
		}
		if row.ID, err = fromUUID(id); err != nil {
			return nil, err
		}
		row.Kind = resource.Kind(kind)
		resources = append(resources, row)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return resources, nil
}
