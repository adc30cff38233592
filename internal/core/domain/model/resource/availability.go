package resource

import (
	"fmt"
	"strings"

	"fleet/internal/pkg/errs"
)

// Availability is the Resource Registry state of a driver or vehicle.
type Availability int

const (
	UnknownAvailability Availability = iota

	// Available resources may be offered on a new load.
	Available

	// Reserved resources are bundled in a PENDING assignment awaiting the
	// driver's response.
	Reserved

	// Committed resources are in use on a load whose trip the driver accepted.
	Committed

	// Unavailable resources are off duty or out of service.
	Unavailable
)

var availabilityNames = map[Availability]string{
	Available:   "AVAILABLE",
	Reserved:    "RESERVED",
	Committed:   "COMMITTED",
	Unavailable: "UNAVAILABLE",
}

func (a Availability) String() string {
	if s, ok := availabilityNames[a]; ok {
		return s
	}
	return "UNKNOWN"
}

func (a Availability) Validate() error {
	if _, ok := availabilityNames[a]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("availability", fmt.Errorf("%d is not a valid availability", a))
	}
	return nil
}

// IsHeld reports whether a load holds the resource.
func (a Availability) IsHeld() bool {
	return a == Reserved || a == Committed
}

func ParseAvailability(s string) (Availability, error) {
	for a, name := range availabilityNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return a, nil
		}
	}
	return UnknownAvailability, errs.NewValueIsInvalidErrorWithCause(
		"availability", fmt.Errorf("%q is not a valid availability", s))
}
