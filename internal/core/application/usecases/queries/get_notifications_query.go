package queries

import (
	"errors"
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/notification"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

const (
	DefaultNotificationsLimit = 50
	MaxNotificationsLimit     = 500
)

var ErrGetNotificationsQueryIsNotConstructed = errors.New(
	"GetNotificationsQuery must be created via NewGetNotificationsQuery constructor",
)

// GetNotificationsQuery returns a recipient's mirrors, most recently updated
// first.
type GetNotificationsQuery struct {
	recipientID kernel.UUID
	unreadOnly  bool
	limit       int

	guard guard.ConstructorGuard
}

// NewGetNotificationsQuery treats a zero limit as DefaultNotificationsLimit.
func NewGetNotificationsQuery(recipientID kernel.UUID, unreadOnly bool, limit int) (GetNotificationsQuery, error) {
	if err := recipientID.Validate(); err != nil {
		return GetNotificationsQuery{}, errs.NewValueIsRequiredErrorWithCause("recipient", err)
	}
	if limit < 0 || limit > MaxNotificationsLimit {
		return GetNotificationsQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 0, MaxNotificationsLimit)
	}
	if limit == 0 {
		limit = DefaultNotificationsLimit
	}
	return GetNotificationsQuery{
		recipientID: recipientID,
		unreadOnly:  unreadOnly,
		limit:       limit,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (q GetNotificationsQuery) Validate() error {
	return q.guard.Validate(ErrGetNotificationsQueryIsNotConstructed)
}

func (q GetNotificationsQuery) RecipientID() kernel.UUID { return q.recipientID }
func (q GetNotificationsQuery) UnreadOnly() bool         { return q.unreadOnly }
func (q GetNotificationsQuery) Limit() int               { return q.limit }

type NotificationView struct {
	ID           kernel.UUID
	AssignmentID kernel.UUID
	Audience     notification.Audience
	LoadID       kernel.UUID
	Status       assignment.State
	Title        string
	Message      string
	Read         bool
	UpdatedAt    time.Time
}
