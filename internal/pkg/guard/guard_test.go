package guard_test

import (
	"errors"
	"sync"
	"testing"

	"fleet/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	errNotConstructed := errors.New("TimeWindow must be created via NewTimeWindow")

	t.Run("constructed_guard_returns_nil", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errNotConstructed))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_guard_returns_caller_error", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(errNotConstructed)

		assert.Equal(t, errNotConstructed, err)
	})

	t.Run("zero_value_guard_falls_back_to_default_error", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(nil)

		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
		assert.Equal(t, "object must be created via its constructor", err.Error())
	})
}

func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	type place struct {
		city  string
		guard guard.ConstructorGuard
	}
	errPlaceIsNotConstructed := errors.New("place must be created via newPlace")

	newPlace := func(city string) (place, error) {
		if city == "" {
			return place{}, errors.New("city is required")
		}
		return place{city: city, guard: guard.NewConstructorGuard()}, nil
	}

	p, err := newPlace("Denver")
	require.NoError(t, err)
	require.NoError(t, p.guard.Validate(errPlaceIsNotConstructed))

	copied := p
	require.NoError(t, copied.guard.Validate(errPlaceIsNotConstructed))

	var zero place
	assert.Equal(t, errPlaceIsNotConstructed, zero.guard.Validate(errPlaceIsNotConstructed))
}

func TestConstructorGuard_ConcurrentValidate(t *testing.T) {
	g := guard.NewConstructorGuard()
	errNotConstructed := errors.New("not constructed")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.NoError(t, g.Validate(errNotConstructed))
			}
		}()
	}
	wg.Wait()
}

func BenchmarkConstructorGuard_Validate(b *testing.B) {
	g := guard.NewConstructorGuard()
	err := errors.New("not constructed")
	for range b.N {
		_ = g.Validate(err)
	}
}
