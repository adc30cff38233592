package load

import (
	"errors"
	"strings"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var ErrHistoryEntryIsNotConstructed = errors.New("HistoryEntry must be created via NewHistoryEntry")

// HistoryEntry records one stage transition: the stage entered, when, by whom
// and an optional free-text note.
type HistoryEntry struct {
	stage Stage
	at    time.Time
	actor kernel.UUID
	note  string
	guard guard.ConstructorGuard
}

func NewHistoryEntry(stage Stage, at time.Time, actor kernel.UUID, note string) (HistoryEntry, error) {
	if err := errors.Join(
		stage.Validate(),
		validateAt(at),
		actor.Validate(),
	); err != nil {
		return HistoryEntry{}, err
	}

	return HistoryEntry{
		stage: stage,
		at:    at.UTC(),
		actor: actor,
		note:  strings.TrimSpace(note),
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (h HistoryEntry) Validate() error {
	return h.guard.Validate(ErrHistoryEntryIsNotConstructed)
}

func (h HistoryEntry) Stage() Stage       { return h.stage }
func (h HistoryEntry) At() time.Time      { return h.at }
func (h HistoryEntry) Actor() kernel.UUID { return h.actor }
func (h HistoryEntry) Note() string       { return h.note }

func validateAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("at")
	}
	return nil
}
