package assignment

import (
	"fmt"
	"strings"

	"fleet/internal/pkg/errs"
)

// State is the closed set of assignment states.
type State int

const (
	UnknownState State = iota
	Pending
	Accepted
	Rejected
	Expired
	Cancelled
)

func getStateStrings() map[State]string {
	//nolint:exhaustive // UnknownState is intentionally excluded as it's invalid
	return map[State]string{
		Pending:   "PENDING",
		Accepted:  "ACCEPTED",
		Rejected:  "REJECTED",
		Expired:   "EXPIRED",
		Cancelled: "CANCELLED",
	}
}

func (s State) String() string {
	if str, ok := getStateStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

func (s State) Validate() error {
	if _, ok := getStateStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("state", fmt.Errorf("%d is not a valid assignment state", s))
	}
	return nil
}

// IsTerminal is true for every valid state except Pending.
func (s State) IsTerminal() bool {
	return s.Validate() == nil && s != Pending
}

func ParseState(s string) (State, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for state, str := range getStateStrings() {
		if str == name {
			return state, nil
		}
	}
	return UnknownState, errs.NewValueIsInvalidErrorWithCause("state", fmt.Errorf("%q is not a valid assignment state", s))
}
