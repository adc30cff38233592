package services_test

import (
	"testing"
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/domain/model/resource"
	"fleet/internal/core/domain/services"
	"fleet/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 4, 20, 6, 0, 0, 0, time.UTC)

type fixture struct {
	load       *load.Load
	driver     *resource.Resource
	truck      *resource.Resource
	trailer    *resource.Resource
	dispatcher kernel.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	orgID := kernel.NewUUID()
	dispatcherID := kernel.NewUUID()

	origin, err := kernel.NewPlace("", "", "Fresno", "CA", "", "US")
	require.NoError(t, err)
	destination, err := kernel.NewPlace("", "", "Boise", "ID", "", "US")
	require.NoError(t, err)
	window, err := kernel.NewTimeWindow(now, now.Add(48*time.Hour))
	require.NoError(t, err)
	rate, err := kernel.NewMoney(180000, "USD")
	require.NoError(t, err)
	terms, err := load.NewTerms(rate, nil, nil)
	require.NoError(t, err)
	l, err := load.NewLoad(kernel.NewUUID(), orgID, "LD-9", origin, destination, window, terms, dispatcherID, now)
	require.NoError(t, err)

	newResource := func(kind resource.Kind) *resource.Resource {
		r, err := resource.NewResource(kernel.NewUUID(), orgID, kind, kind.String())
		require.NoError(t, err)
		return r
	}

	return &fixture{
		load:       l,
		driver:     newResource(resource.Driver),
		truck:      newResource(resource.Truck),
		trailer:    newResource(resource.Trailer),
		dispatcher: dispatcherID,
	}
}

func (f *fixture) all() []*resource.Resource {
	return []*resource.Resource{f.driver, f.truck, f.trailer}
}

func (f *fixture) offer(t *testing.T) *assignment.Assignment {
	t.Helper()
	a, err := services.NewDispatcher().Offer(f.load, f.driver, []*resource.Resource{f.truck, f.trailer},
		kernel.NewUUID(), f.dispatcher, now, 24*time.Hour)
	require.NoError(t, err)
	return a
}

func TestDispatcher_Offer(t *testing.T) {
	t.Run("should reserve the bundle and assign the load", func(t *testing.T) {
		f := newFixture(t)

		a := f.offer(t)

		assert.Equal(t, assignment.Pending, a.State())
		assert.Equal(t, load.Assigned, f.load.Stage())
		for _, r := range f.all() {
			assert.Equal(t, resource.Reserved, r.Availability())
			assert.True(t, r.IsHeldBy(f.load.ID()))
		}
		assert.Equal(t, a.ResourceIDs(), f.load.ResourceIDs())
	})

	t.Run("should release earlier reservations when a later one fails", func(t *testing.T) {
		f := newFixture(t)
		require.True(t, f.trailer.TryReserve(kernel.NewUUID()))

		a, err := services.NewDispatcher().Offer(f.load, f.driver, []*resource.Resource{f.truck, f.trailer},
			kernel.NewUUID(), f.dispatcher, now, time.Hour)

		require.Error(t, err)
		assert.Nil(t, a)
		assert.ErrorIs(t, err, errs.ErrConflict)
		assert.ErrorIs(t, err, services.ErrResourceUnavailable)
		assert.Equal(t, resource.Available, f.driver.Availability())
		assert.Equal(t, resource.Available, f.truck.Availability())
		assert.Nil(t, f.truck.HolderLoadID())
		assert.Equal(t, resource.Reserved, f.trailer.Availability())
		assert.Equal(t, load.Created, f.load.Stage())
	})

	t.Run("should refuse a load that is not CREATED", func(t *testing.T) {
		f := newFixture(t)
		f.offer(t)
		other, err := resource.NewResource(kernel.NewUUID(), f.load.OrgID(), resource.Driver, "Other")
		require.NoError(t, err)

		_, err = services.NewDispatcher().Offer(f.load, other, nil, kernel.NewUUID(), f.dispatcher, now, time.Hour)

		assert.ErrorIs(t, err, errs.ErrConflict)
		assert.Equal(t, resource.Available, other.Availability())
	})

	t.Run("should refuse wrong kinds and foreign resources", func(t *testing.T) {
		f := newFixture(t)
		foreign, err := resource.NewResource(kernel.NewUUID(), kernel.NewUUID(), resource.Truck, "Foreign")
		require.NoError(t, err)

		_, err = services.NewDispatcher().Offer(f.load, f.truck, nil, kernel.NewUUID(), f.dispatcher, now, time.Hour)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

		_, err = services.NewDispatcher().Offer(f.load, f.driver, []*resource.Resource{f.driver}, kernel.NewUUID(), f.dispatcher, now, time.Hour)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

		_, err = services.NewDispatcher().Offer(f.load, f.driver, []*resource.Resource{foreign}, kernel.NewUUID(), f.dispatcher, now, time.Hour)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

		for _, r := range append(f.all(), foreign) {
			assert.Equal(t, resource.Available, r.Availability())
		}
		assert.Equal(t, load.Created, f.load.Stage())
	})
}

func TestDispatcher_Confirm(t *testing.T) {
	f := newFixture(t)
	a := f.offer(t)
	d := services.NewDispatcher()

	changed, err := d.Confirm(a, f.load, f.all(), f.driver.ID(), now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, assignment.Accepted, a.State())
	assert.Equal(t, load.TripAccepted, f.load.Stage())
	for _, r := range f.all() {
		assert.Equal(t, resource.Committed, r.Availability())
	}
	historyLen := len(f.load.History())

	changed, err = d.Confirm(a, f.load, f.all(), f.driver.ID(), now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, f.load.History(), historyLen)
}

func TestDispatcher_Confirm_InconsistentHold(t *testing.T) {
	f := newFixture(t)
	a := f.offer(t)
	f.truck.Release()

	_, err := services.NewDispatcher().Confirm(a, f.load, f.all(), f.driver.ID(), now)

	assert.ErrorIs(t, err, resource.ErrInconsistentHold)
}

func TestDispatcher_Withdrawals(t *testing.T) {
	cases := []struct {
		name  string
		run   func(f *fixture, a *assignment.Assignment) (bool, error)
		state assignment.State
		note  string
	}{
		{
			name: "reject",
			run: func(f *fixture, a *assignment.Assignment) (bool, error) {
				return services.NewDispatcher().Decline(a, f.load, f.all(), f.driver.ID(), "sick", now)
			},
			state: assignment.Rejected,
			note:  "offer REJECTED: sick",
		},
		{
			name: "cancel",
			run: func(f *fixture, a *assignment.Assignment) (bool, error) {
				return services.NewDispatcher().Withdraw(a, f.load, f.all(), f.dispatcher, now)
			},
			state: assignment.Cancelled,
			note:  "offer CANCELLED",
		},
		{
			name: "expire",
			run: func(f *fixture, a *assignment.Assignment) (bool, error) {
				return services.NewDispatcher().Expire(a, f.load, f.all(), now.Add(25*time.Hour))
			},
			state: assignment.Expired,
			note:  "offer EXPIRED: no response",
		},
	}

	for _, tc := range cases {
		t.Run("should roll back on "+tc.name, func(t *testing.T) {
			f := newFixture(t)
			a := f.offer(t)

			changed, err := tc.run(f, a)

			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, tc.state, a.State())
			assert.Equal(t, load.Created, f.load.Stage())
			assert.Nil(t, f.load.AssignedDriverID())
			assert.Empty(t, f.load.VehicleIDs())
			assert.Equal(t, tc.note, f.load.LastTransition().Note())
			for _, r := range f.all() {
				assert.Equal(t, resource.Available, r.Availability())
				assert.Nil(t, r.HolderLoadID())
			}

			changed, err = tc.run(f, a)
			require.NoError(t, err)
			assert.False(t, changed)
		})
	}
}

func TestDispatcher_Release(t *testing.T) {
	f := newFixture(t)
	f.offer(t)
	stranger, err := resource.NewResource(kernel.NewUUID(), f.load.OrgID(), resource.Truck, "Stranger")
	require.NoError(t, err)
	require.True(t, stranger.TryReserve(kernel.NewUUID()))

	released := services.NewDispatcher().Release(f.load, append(f.all(), stranger))

	assert.Equal(t, 3, released)
	assert.Equal(t, resource.Reserved, stranger.Availability())
}

func TestDispatcher_MismatchedRecords(t *testing.T) {
	f := newFixture(t)
	a := f.offer(t)
	other := newFixture(t)

	_, err := services.NewDispatcher().Withdraw(a, other.load, other.all(), f.dispatcher, now)

	assert.ErrorIs(t, err, services.ErrMismatchedRecords)
	assert.Equal(t, assignment.Pending, a.State())
}
