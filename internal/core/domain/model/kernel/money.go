package kernel

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var (
	ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError("money must be created via NewMoney")
	ErrCurrencyMismatch      = errors.New("currency mismatch")
)

// Money is an amount in minor units (cents) of a single currency.
type Money struct { //nolint:recvcheck //using for validation
	minor    int64
	currency string
	guard    guard.ConstructorGuard
}

// NewMoney rejects negative amounts and anything but a three-letter currency.
func NewMoney(minor int64, currency string) (Money, error) {
	m := Money{guard: guard.NewConstructorGuard()}

	if err := errors.Join(m.setMinor(minor), m.setCurrency(currency)); err != nil {
		return Money{}, err
	}

	return m, nil
}

func (m Money) Validate() error {
	return m.guard.Validate(ErrMoneyIsNotConstructed)
}

func (m Money) Minor() int64     { return m.minor }
func (m Money) Currency() string { return m.currency }
func (m Money) IsZero() bool     { return m.minor == 0 }
func (m Money) IsEqual(o Money) bool {
	return m.minor == o.minor && m.currency == o.currency
}

// Add sums two amounts of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if err := errors.Join(m.Validate(), other.Validate()); err != nil {
		return Money{}, err
	}
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return NewMoney(m.minor+other.minor, m.currency)
}

// MulFloat scales the amount by factor, rounding half away from zero to the
// nearest minor unit. It is used for per-mile pay.
func (m Money) MulFloat(factor float64) (Money, error) {
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("factor", fmt.Errorf("%v is not a non-negative number", factor))
	}
	return NewMoney(int64(math.Round(float64(m.minor)*factor)), m.currency)
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.minor/100, m.minor%100, m.currency)
}

func (m *Money) setMinor(minor int64) error {
	if minor < 0 {
		return errs.NewValueIsOutOfRangeError("amount", minor, 0, int64(math.MaxInt64))
	}
	m.minor = minor
	return nil
}

func (m *Money) setCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return errs.NewValueIsInvalidErrorWithCause("currency", fmt.Errorf("%q is not a three-letter code", currency))
	}
	m.currency = currency
	return nil
}
