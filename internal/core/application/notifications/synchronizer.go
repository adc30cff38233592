// Package notifications keeps the persisted notification mirrors of an
// assignment in step with its state: one mirror per assignment and audience,
// created on first use and edited in place afterwards.
package notifications

import (
	"context"
	"errors"
	"log/slog"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/notification"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/errs"
)

const collaboratorName = "notifications"

// FailureCounter counts swallowed failures.
type FailureCounter interface {
	CollaboratorFailed(collaborator string)
}

// Target names the mirror to synchronise and who reads it.
type Target struct {
	AssignmentID kernel.UUID
	Audience     notification.Audience
	RecipientID  kernel.UUID
	LoadID       kernel.UUID
}

func (t Target) key() notification.Key {
	return notification.Key{AssignmentID: t.AssignmentID, Audience: t.Audience}
}

type Synchronizer struct {
	uowFactory ports.UnitOfWorkFactory
	clock      ports.Clock
	logger     *slog.Logger
	failures   FailureCounter
}

func NewSynchronizer(
	uowFactory ports.UnitOfWorkFactory,
	clock ports.Clock,
	logger *slog.Logger,
	failures FailureCounter,
) *Synchronizer {
	return &Synchronizer{
		uowFactory: uowFactory,
		clock:      clock,
		logger:     logger.With("component", "notification-synchronizer"),
		failures:   failures,
	}
}

// Sync upserts the mirror of target to reflect state. Errors are logged and
// counted, never returned: a failed mirror must not undo the transition it
// describes. It reports whether the mirror now shows state.
func (s *Synchronizer) Sync(ctx context.Context, target Target, state assignment.State, build MessageBuilder) bool {
	err := s.sync(ctx, target, state, build(state))
	if err != nil {
		s.failures.CollaboratorFailed(collaboratorName)
		s.logger.ErrorContext(ctx, "Failed to synchronize notification",
			"assignment_id", target.AssignmentID.String(),
			"audience", target.Audience.String(),
			"state", state.String(),
			"error", err,
		)
		return false
	}
	return true
}

func (s *Synchronizer) sync(ctx context.Context, target Target, state assignment.State, msg Message) error {
	if err := errors.Join(target.key().Validate(), target.RecipientID.Validate()); err != nil {
		return err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.NotificationRepository()
	now := s.clock.Now()

	mirror, err := repo.GetByKey(ctx, target.key())
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		mirror, err = notification.NewMirror(kernel.NewUUID(), target.key(), target.RecipientID, target.LoadID,
			state, msg.Title, msg.Body, now)
		if err != nil {
			return err
		}
		if err = repo.Add(ctx, mirror); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		changed, applyErr := mirror.Apply(state, msg.Title, msg.Body, now)
		if applyErr != nil {
			return applyErr
		}
		if !changed {
			return nil
		}
		if err = repo.Update(ctx, mirror); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
