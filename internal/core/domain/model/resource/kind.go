package resource

import (
	"fmt"
	"strings"

	"fleet/internal/pkg/errs"
)

// Kind tells drivers apart from the two vehicle kinds.
type Kind int

const (
	UnknownKind Kind = iota
	Driver
	Truck
	Trailer
)

var kindNames = map[Kind]string{
	Driver:  "DRIVER",
	Truck:   "TRUCK",
	Trailer: "TRAILER",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

func (k Kind) Validate() error {
	if _, ok := kindNames[k]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("kind", fmt.Errorf("%d is not a valid resource kind", k))
	}
	return nil
}

// IsVehicle reports whether the kind can be bundled as an offer's vehicle.
func (k Kind) IsVehicle() bool {
	return k == Truck || k == Trailer
}

// ParseKind accepts the String form, case-insensitively.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return UnknownKind, errs.NewValueIsInvalidErrorWithCause("kind", fmt.Errorf("%q is not a valid resource kind", s))
}
