// Package queries contains read models served straight from SQL, bypassing
// the aggregates.
package queries

import (
	"fleet/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

func fromUUID(id uuid.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}

func fromNullableUUID(id *uuid.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	parsed, err := fromUUID(*id)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
