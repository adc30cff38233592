package kernel

import (
	"fmt"
	"time"

	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var ErrTimeWindowIsNotConstructed = errs.NewValueIsRequiredError("time window must be created via NewTimeWindow")

// TimeWindow is a load's schedule: pickup time and delivery deadline.
type TimeWindow struct {
	pickupAt  time.Time
	deliverBy time.Time
	guard     guard.ConstructorGuard
}

func NewTimeWindow(pickupAt, deliverBy time.Time) (TimeWindow, error) {
	if pickupAt.IsZero() {
		return TimeWindow{}, errs.NewValueIsRequiredError("pickup time")
	}
	if deliverBy.IsZero() {
		return TimeWindow{}, errs.NewValueIsRequiredError("delivery deadline")
	}
	if deliverBy.Before(pickupAt) {
		return TimeWindow{}, errs.NewValueIsInvalidErrorWithCause(
			"delivery deadline",
			fmt.Errorf("%s is before pickup %s", deliverBy.Format(time.RFC3339), pickupAt.Format(time.RFC3339)),
		)
	}

	return TimeWindow{
		pickupAt:  pickupAt.UTC(),
		deliverBy: deliverBy.UTC(),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (w TimeWindow) Validate() error {
	return w.guard.Validate(ErrTimeWindowIsNotConstructed)
}

func (w TimeWindow) PickupAt() time.Time  { return w.pickupAt }
func (w TimeWindow) DeliverBy() time.Time { return w.deliverBy }
