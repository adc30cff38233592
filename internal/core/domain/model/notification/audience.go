package notification

import (
	"fmt"
	"strings"

	"fleet/internal/pkg/errs"
)

// Audience is the side of an assignment a mirror is shown to.
type Audience int

const (
	UnknownAudience Audience = iota
	Driver
	Dispatcher
)

func (a Audience) String() string {
	switch a {
	case Driver:
		return "DRIVER"
	case Dispatcher:
		return "DISPATCHER"
	default:
		return "UNKNOWN"
	}
}

func (a Audience) Validate() error {
	if a != Driver && a != Dispatcher {
		return errs.NewValueIsInvalidErrorWithCause("audience", fmt.Errorf("%d is not a valid audience", a))
	}
	return nil
}

func ParseAudience(s string) (Audience, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DRIVER":
		return Driver, nil
	case "DISPATCHER":
		return Dispatcher, nil
	default:
		return UnknownAudience, errs.NewValueIsInvalidErrorWithCause("audience", fmt.Errorf("%q is not a valid audience", s))
	}
}
