package load

import (
	"fmt"
	"strings"

	"fleet/internal/pkg/errs"
)

// Stage is the Load's position in its delivery lifecycle.
//
// Transitions:
//
//	Created ──> Assigned ──> TripAccepted ──> DepartedOrigin ──> AtDestination ──> Unloading ──> Delivered ──> Completed
//	   ^           │
//	   └───────────┘ (bounce back on reject, expiry or cancel of the offer)
//
// Cancelled is reachable from every stage except Completed and Cancelled.
// Forward moves after TripAccepted may skip sub-stages; Completed is only
// reachable from Delivered.
type Stage int

const (
	// UnknownStage (0) catches uninitialised values.
	UnknownStage Stage = iota

	// Created loads wait for an offer to a driver.
	Created

	// Assigned loads have a PENDING offer out to a driver.
	Assigned

	// TripAccepted loads have a driver who accepted the offer.
	TripAccepted

	// DepartedOrigin, AtDestination and Unloading are the in-progress
	// sub-stages.
	DepartedOrigin
	AtDestination
	Unloading

	// Delivered loads have been handed over to the consignee.
	Delivered

	// Completed is terminal: paperwork closed, resources released.
	Completed

	// Cancelled is terminal: the shipment will not be moved.
	Cancelled
)

func getStageStrings() map[Stage]string {
	//nolint:exhaustive // UnknownStage is intentionally excluded as it's invalid
	return map[Stage]string{
		Created:        "CREATED",
		Assigned:       "ASSIGNED",
		TripAccepted:   "TRIP_ACCEPTED",
		DepartedOrigin: "DEPARTED_ORIGIN",
		AtDestination:  "AT_DESTINATION",
		Unloading:      "UNLOADING",
		Delivered:      "DELIVERED",
		Completed:      "COMPLETED",
		Cancelled:      "CANCELLED",
	}
}

// String returns the persisted name, or "UNKNOWN" for invalid values.
func (s Stage) String() string {
	if str, ok := getStageStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// Validate reports whether s is one of the defined stages. It is used on
// values read from storage or received over the API.
func (s Stage) Validate() error {
	if _, ok := getStageStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("stage", fmt.Errorf("%d is not a valid stage", s))
	}
	return nil
}

// ParseStage accepts the persisted name, case-insensitively. The alias
// IN_PROGRESS maps to DepartedOrigin, the first in-progress sub-stage.
func ParseStage(s string) (Stage, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "IN_PROGRESS" {
		return DepartedOrigin, nil
	}
	for stage, str := range getStageStrings() {
		if str == name {
			return stage, nil
		}
	}
	return UnknownStage, errs.NewValueIsInvalidErrorWithCause("stage", fmt.Errorf("%q is not a valid stage", s))
}

// InProgress reports whether s is one of the in-progress sub-stages.
func (s Stage) InProgress() bool {
	return s >= DepartedOrigin && s <= Unloading
}

// IsTerminal reports whether no further transition is possible.
func (s Stage) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// HasDriver reports whether a Load in stage s must have an assigned driver.
func (s Stage) HasDriver() bool {
	return s >= Assigned && s <= Completed
}

// IsDelivered reports whether the delivery-completion stamp applies.
func (s Stage) IsDelivered() bool {
	return s == Delivered || s == Completed
}

// CanAdvanceTo reports whether target is reachable through a forward stage
// progression. Moves into Assigned and TripAccepted belong to the assignment
// workflow and are not forward progressions.
//
// Rules:
//   - DepartedOrigin..Delivered from TripAccepted or any earlier in-progress
//     sub-stage
//   - Completed from Delivered only
//   - Cancelled from any non-terminal stage
func (s Stage) CanAdvanceTo(target Stage) bool {
	switch {
	case target == Cancelled:
		return s.Validate() == nil && !s.IsTerminal()
	case target == Completed:
		return s == Delivered
	case target >= DepartedOrigin && target <= Delivered:
		return s >= TripAccepted && s < target
	default:
		return false
	}
}

func (s Stage) transitionError(target Stage) error {
	return errs.NewInvalidTransitionError("load", s.String(), target.String())
}
