package load

import (
	"errors"
	"fmt"
	"math"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var ErrTermsIsNotConstructed = errors.New("Terms must be created via NewTerms")

// Terms are the financial inputs of a Load. Distances are in miles.
type Terms struct {
	lineHaul         kernel.Money
	driverPayPerMile *kernel.Money
	plannedDistance  *float64
	guard            guard.ConstructorGuard
}

// NewTerms requires the line-haul rate. Driver pay per mile and planned
// distance are optional; when pay per mile is given it must be in the
// line-haul currency.
func NewTerms(lineHaul kernel.Money, driverPayPerMile *kernel.Money, plannedDistance *float64) (Terms, error) {
	if err := lineHaul.Validate(); err != nil {
		return Terms{}, errs.NewValueIsRequiredErrorWithCause("line haul rate", err)
	}

	t := Terms{lineHaul: lineHaul, guard: guard.NewConstructorGuard()}

	if driverPayPerMile != nil {
		if err := driverPayPerMile.Validate(); err != nil {
			return Terms{}, err
		}
		if driverPayPerMile.Currency() != lineHaul.Currency() {
			return Terms{}, fmt.Errorf("driver pay per mile: %w", kernel.ErrCurrencyMismatch)
		}
		pay := *driverPayPerMile
		t.driverPayPerMile = &pay
	}

	if plannedDistance != nil {
		if err := validateDistance("planned distance", *plannedDistance); err != nil {
			return Terms{}, err
		}
		d := *plannedDistance
		t.plannedDistance = &d
	}

	return t, nil
}

func (t Terms) Validate() error {
	return t.guard.Validate(ErrTermsIsNotConstructed)
}

func (t Terms) LineHaul() kernel.Money { return t.lineHaul }

func (t Terms) DriverPayPerMile() *kernel.Money {
	if t.driverPayPerMile == nil {
		return nil
	}
	pay := *t.driverPayPerMile
	return &pay
}

func (t Terms) PlannedDistance() *float64 {
	if t.plannedDistance == nil {
		return nil
	}
	d := *t.plannedDistance
	return &d
}

// DeliveryReport carries the figures a driver or dispatcher reports when a
// load reaches DELIVERED.
type DeliveryReport struct {
	TotalDistance *float64
}

// Completion is the delivery stamp written once a Load reaches DELIVERED.
// Distance and pay stay nil when their inputs were unknown.
type Completion struct {
	deliveredAt   time.Time
	totalDistance *float64
	driverPay     *kernel.Money
}

// RestoreCompletion rebuilds a stamp read from storage.
func RestoreCompletion(deliveredAt time.Time, totalDistance *float64, driverPay *kernel.Money) (Completion, error) {
	if err := validateAt(deliveredAt); err != nil {
		return Completion{}, err
	}
	if totalDistance != nil {
		if err := validateDistance("total distance", *totalDistance); err != nil {
			return Completion{}, err
		}
	}
	if driverPay != nil {
		if err := driverPay.Validate(); err != nil {
			return Completion{}, err
		}
	}
	return Completion{deliveredAt: deliveredAt.UTC(), totalDistance: totalDistance, driverPay: driverPay}, nil
}

func (c Completion) DeliveredAt() time.Time { return c.deliveredAt }

func (c Completion) TotalDistance() *float64 {
	if c.totalDistance == nil {
		return nil
	}
	d := *c.totalDistance
	return &d
}

func (c Completion) DriverPay() *kernel.Money {
	if c.driverPay == nil {
		return nil
	}
	pay := *c.driverPay
	return &pay
}

// stamp computes the delivery stamp: the reported distance wins over the
// planned one, and pay is pay per mile times distance when both are known.
func (t Terms) stamp(at time.Time, report *DeliveryReport) (Completion, error) {
	c := Completion{deliveredAt: at.UTC()}

	switch {
	case report != nil && report.TotalDistance != nil:
		if err := validateDistance("total distance", *report.TotalDistance); err != nil {
			return Completion{}, err
		}
		d := *report.TotalDistance
		c.totalDistance = &d
	case t.plannedDistance != nil:
		d := *t.plannedDistance
		c.totalDistance = &d
	}

	if c.totalDistance != nil && t.driverPayPerMile != nil {
		pay, err := t.driverPayPerMile.MulFloat(*c.totalDistance)
		if err != nil {
			return Completion{}, err
		}
		c.driverPay = &pay
	}

	return c, nil
}

func validateDistance(param string, d float64) error {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return errs.NewValueIsOutOfRangeError(param, d, 0, math.MaxFloat64)
	}
	return nil
}
