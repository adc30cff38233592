// Package notification holds the notification mirror: the persisted alert a
// driver or dispatcher sees for an assignment, kept in step with the
// assignment's state and edited in place instead of duplicated.
package notification

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var (
	ErrMirrorIsNotConstructed = errors.New("Mirror must be created via NewMirror or RestoreMirror")
	ErrTitleIsRequired        = errs.NewValueIsRequiredError("title")
)

// Key identifies the single mirror kept per assignment and audience.
type Key struct {
	AssignmentID kernel.UUID
	Audience     Audience
}

func (k Key) Validate() error {
	return errors.Join(k.AssignmentID.Validate(), k.Audience.Validate())
}

func (k Key) String() string {
	return k.AssignmentID.String() + "/" + k.Audience.String()
}

type Mirror struct {
	id          kernel.UUID
	key         Key
	recipientID kernel.UUID
	loadID      kernel.UUID
	status      assignment.State
	title       string
	message     string
	read        bool
	createdAt   time.Time
	updatedAt   time.Time
	version     int

	guard guard.ConstructorGuard
}

func NewMirror(
	id kernel.UUID,
	key Key,
	recipientID, loadID kernel.UUID,
	status assignment.State,
	title, message string,
	now time.Time,
) (*Mirror, error) {
	m := &Mirror{
		createdAt: now.UTC(),
		updatedAt: now.UTC(),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		id.Validate(),
		key.Validate(),
		recipientID.Validate(),
		loadID.Validate(),
		m.setContent(status, title, message),
	); err != nil {
		return nil, err
	}
	m.id, m.key, m.recipientID, m.loadID = id, key, recipientID, loadID

	return m, nil
}

// MirrorSnapshot is the persisted form of a Mirror.
type MirrorSnapshot struct {
	ID          kernel.UUID
	Key         Key
	RecipientID kernel.UUID
	LoadID      kernel.UUID
	Status      assignment.State
	Title       string
	Message     string
	Read        bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int
}

func RestoreMirror(s MirrorSnapshot) (*Mirror, error) {
	m, err := NewMirror(s.ID, s.Key, s.RecipientID, s.LoadID, s.Status, s.Title, s.Message, s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if s.UpdatedAt.Before(s.CreatedAt) {
		return nil, errs.NewValueIsInvalidErrorWithCause("updated at", fmt.Errorf("%s is before creation", s.UpdatedAt))
	}
	if s.Version < 0 {
		return nil, errs.NewVersionIsInvalidError("version")
	}
	m.read = s.Read
	m.updatedAt = s.UpdatedAt.UTC()
	m.version = s.Version
	return m, nil
}

func (m *Mirror) Snapshot() MirrorSnapshot {
	return MirrorSnapshot{
		ID:          m.id,
		Key:         m.key,
		RecipientID: m.recipientID,
		LoadID:      m.loadID,
		Status:      m.status,
		Title:       m.title,
		Message:     m.message,
		Read:        m.read,
		CreatedAt:   m.createdAt,
		UpdatedAt:   m.updatedAt,
		Version:     m.version,
	}
}

func (m *Mirror) Validate() error {
	if m == nil {
		return ErrMirrorIsNotConstructed
	}
	return m.guard.Validate(ErrMirrorIsNotConstructed)
}

func (m *Mirror) ID() kernel.UUID          { return m.id }
func (m *Mirror) Key() Key                 { return m.key }
func (m *Mirror) RecipientID() kernel.UUID { return m.recipientID }
func (m *Mirror) LoadID() kernel.UUID      { return m.loadID }
func (m *Mirror) Status() assignment.State { return m.status }
func (m *Mirror) Title() string            { return m.title }
func (m *Mirror) Message() string          { return m.message }
func (m *Mirror) IsRead() bool             { return m.read }
func (m *Mirror) CreatedAt() time.Time     { return m.createdAt }
func (m *Mirror) UpdatedAt() time.Time     { return m.updatedAt }
func (m *Mirror) Version() int             { return m.version }

// Apply edits the mirror to reflect a new assignment state and marks it
// unread. It reports false when the mirror already shows the same content.
func (m *Mirror) Apply(status assignment.State, title, message string, now time.Time) (bool, error) {
	title, message = strings.TrimSpace(title), strings.TrimSpace(message)
	if m.status == status && m.title == title && m.message == message {
		return false, nil
	}
	if err := m.setContent(status, title, message); err != nil {
		return false, err
	}
	m.read = false
	m.updatedAt = now.UTC()
	return true, nil
}

func (m *Mirror) MarkRead(now time.Time) {
	if m.read {
		return
	}
	m.read = true
	m.updatedAt = now.UTC()
}

func (m *Mirror) setContent(status assignment.State, title, message string) error {
	if err := status.Validate(); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrTitleIsRequired
	}
	m.status = status
	m.title = title
	m.message = strings.TrimSpace(message)
	return nil
}
