package kernel

import (
	"errors"
	"fmt"
	"strings"

	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var ErrPlaceIsNotConstructed = errs.NewValueIsRequiredError("place must be created via NewPlace")

// Place describes a pickup or drop-off point as the shipper wrote it.
// It carries no coordinates; routing and geofencing are outside this service.
type Place struct { //nolint:recvcheck //using for validation
	name       string
	street     string
	city       string
	region     string
	postalCode string
	country    string

	guard guard.ConstructorGuard
}

// NewPlace requires city and country; the remaining fields are optional.
// Country is normalised to upper case (ISO 3166 alpha-2 is expected).
func NewPlace(name, street, city, region, postalCode, country string) (Place, error) {
	p := Place{
		name:       strings.TrimSpace(name),
		street:     strings.TrimSpace(street),
		region:     strings.TrimSpace(region),
		postalCode: strings.TrimSpace(postalCode),
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(p.setCity(city), p.setCountry(country)); err != nil {
		return Place{}, err
	}

	return p, nil
}

func (p Place) Validate() error {
	return p.guard.Validate(ErrPlaceIsNotConstructed)
}

func (p Place) Name() string       { return p.name }
func (p Place) Street() string     { return p.street }
func (p Place) City() string       { return p.city }
func (p Place) Region() string     { return p.region }
func (p Place) PostalCode() string { return p.postalCode }
func (p Place) Country() string    { return p.country }

// String renders "name, city, region, country" skipping empty parts.
func (p Place) String() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.name, p.city, p.region, p.country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func (p *Place) setCity(city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return errs.NewValueIsRequiredError("city")
	}
	p.city = city
	return nil
}

func (p *Place) setCountry(country string) error {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return errs.NewValueIsRequiredError("country")
	}
	if len(country) != 2 {
		return errs.NewValueIsInvalidErrorWithCause("country", fmt.Errorf("%q is not a two-letter code", country))
	}
	p.country = country
	return nil
}
