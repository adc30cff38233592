// Package events names the real-time events the workflow emits, the topics
// they go to, and wraps the EventPublisher port with best-effort delivery.
package events

import (
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
)

const (
	AssignmentCreated   = "assignment.created"
	AssignmentAccepted  = "assignment.accepted"
	AssignmentRejected  = "assignment.rejected"
	AssignmentExpired   = "assignment.expired"
	AssignmentCancelled = "assignment.cancelled"
	LoadStageChanged    = "load.stage_changed"
)

func LoadTopic(loadID kernel.UUID) string { return "load." + loadID.String() }
func OrgTopic(orgID kernel.UUID) string   { return "org." + orgID.String() }
func UserTopic(userID kernel.UUID) string { return "user." + userID.String() }

// ForAssignment returns the event name announcing an assignment that just
// entered state.
func ForAssignment(state assignment.State) string {
	switch state {
	case assignment.Accepted:
		return AssignmentAccepted
	case assignment.Rejected:
		return AssignmentRejected
	case assignment.Expired:
		return AssignmentExpired
	case assignment.Cancelled:
		return AssignmentCancelled
	default:
		return AssignmentCreated
	}
}

// AssignmentTopics lists the load and organization topics, plus the
// dispatcher's own topic for driver responses.
func AssignmentTopics(l *load.Load, a *assignment.Assignment) []string {
	topics := []string{LoadTopic(l.ID()), OrgTopic(l.OrgID())}
	if a.State() == assignment.Accepted || a.State() == assignment.Rejected {
		topics = append(topics, UserTopic(a.OfferedBy()))
	}
	return topics
}

// AssignmentEvent is the payload of every assignment.* event.
type AssignmentEvent struct {
	AssignmentID string    `json:"assignmentId"`
	LoadID       string    `json:"loadId"`
	LoadNumber   string    `json:"loadNumber"`
	DriverID     string    `json:"driverId"`
	VehicleIDs   []string  `json:"vehicleIds"`
	OfferedBy    string    `json:"offeredBy"`
	State        string    `json:"state"`
	Reason       string    `json:"reason,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
	At           time.Time `json:"at"`
}

func NewAssignmentEvent(l *load.Load, a *assignment.Assignment, at time.Time) AssignmentEvent {
	vehicles := make([]string, 0, len(a.VehicleIDs()))
	for _, id := range a.VehicleIDs() {
		vehicles = append(vehicles, id.String())
	}
	e := AssignmentEvent{
		AssignmentID: a.ID().String(),
		LoadID:       l.ID().String(),
		LoadNumber:   l.Number(),
		DriverID:     a.DriverID().String(),
		VehicleIDs:   vehicles,
		OfferedBy:    a.OfferedBy().String(),
		State:        a.State().String(),
		ExpiresAt:    a.ExpiresAt(),
		At:           at.UTC(),
	}
	if r := a.Response(); r != nil {
		e.Reason = r.Reason()
		e.At = r.RespondedAt()
	}
	return e
}

// StageChangedEvent is the payload of load.stage_changed.
type StageChangedEvent struct {
	LoadID     string    `json:"loadId"`
	LoadNumber string    `json:"loadNumber"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ActorID    string    `json:"actorId"`
	Note       string    `json:"note,omitempty"`
	At         time.Time `json:"at"`
}

// NewStageChangedEvent describes the load's latest transition.
func NewStageChangedEvent(l *load.Load, from load.Stage) StageChangedEvent {
	last := l.LastTransition()
	return StageChangedEvent{
		LoadID:     l.ID().String(),
		LoadNumber: l.Number(),
		From:       from.String(),
		To:         l.Stage().String(),
		ActorID:    last.Actor().String(),
		Note:       last.Note(),
		At:         last.At(),
	}
}
