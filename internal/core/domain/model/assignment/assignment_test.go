package assignment_test

import (
	"testing"
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2026, 5, 11, 9, 30, 0, 0, time.UTC)

func createPending(t *testing.T, ttl time.Duration, vehicles ...kernel.UUID) *assignment.Assignment {
	t.Helper()
	a, err := assignment.NewAssignment(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), vehicles, kernel.NewUUID(), createdAt, ttl)
	require.NoError(t, err)
	return a
}

func TestNewAssignment(t *testing.T) {
	t.Run("should create a pending offer", func(t *testing.T) {
		truck := kernel.NewUUID()
		a := createPending(t, 24*time.Hour, truck)

		require.NoError(t, a.Validate())
		assert.Equal(t, assignment.Pending, a.State())
		assert.Equal(t, createdAt.Add(24*time.Hour), a.ExpiresAt())
		assert.Nil(t, a.Response())
		assert.Equal(t, []kernel.UUID{a.DriverID(), truck}, a.ResourceIDs())
	})

	t.Run("should reject a non-positive ttl", func(t *testing.T) {
		_, err := assignment.NewAssignment(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), nil, kernel.NewUUID(), createdAt, 0)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject driver listed as vehicle", func(t *testing.T) {
		driver := kernel.NewUUID()
		_, err := assignment.NewAssignment(kernel.NewUUID(), kernel.NewUUID(), driver, []kernel.UUID{driver}, kernel.NewUUID(), createdAt, time.Hour)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should require identifiers", func(t *testing.T) {
		_, err := assignment.NewAssignment(kernel.NewUUID(), kernel.UUID{}, kernel.UUID{}, nil, kernel.UUID{}, createdAt, time.Hour)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestAssignment_Accept(t *testing.T) {
	t.Run("should accept and be idempotent for the same driver", func(t *testing.T) {
		a := createPending(t, time.Hour)
		at := createdAt.Add(time.Minute)

		changed, err := a.Accept(a.DriverID(), at)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, assignment.Accepted, a.State())
		require.NotNil(t, a.Response())
		assert.Equal(t, at, a.Response().RespondedAt())
		assert.True(t, a.Response().By().IsEqual(a.DriverID()))

		changed, err = a.Accept(a.DriverID(), at.Add(2*time.Hour))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, at, a.Response().RespondedAt())
	})

	t.Run("should refuse another driver", func(t *testing.T) {
		a := createPending(t, time.Hour)

		changed, err := a.Accept(kernel.NewUUID(), createdAt)

		assert.False(t, changed)
		var conflict *errs.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.ErrorIs(t, err, assignment.ErrNotOfferedDriver)
		assert.Equal(t, assignment.Pending, a.State())
	})

	t.Run("should refuse after expiry without mutating", func(t *testing.T) {
		a := createPending(t, time.Millisecond)

		_, err := a.Accept(a.DriverID(), createdAt.Add(5*time.Millisecond))

		assert.ErrorIs(t, err, errs.ErrConflict)
		assert.ErrorIs(t, err, assignment.ErrAssignmentExpired)
		assert.Equal(t, assignment.Pending, a.State())
		assert.True(t, a.IsExpired(createdAt.Add(5*time.Millisecond)))
	})

	t.Run("should refuse on any other terminal state", func(t *testing.T) {
		a := createPending(t, time.Hour)
		_, err := a.Reject(a.DriverID(), "", createdAt)
		require.NoError(t, err)

		_, err = a.Accept(a.DriverID(), createdAt)
		assert.ErrorIs(t, err, errs.ErrConflict)
		assert.Equal(t, assignment.Rejected, a.State())
	})
}

func TestAssignment_Reject(t *testing.T) {
	a := createPending(t, time.Hour)

	changed, err := a.Reject(a.DriverID(), "  sick ", createdAt)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "sick", a.Response().Reason())

	changed, err = a.Reject(a.DriverID(), "other", createdAt)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "sick", a.Response().Reason())

	_, err = a.Cancel(kernel.NewUUID(), createdAt)
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestAssignment_Cancel(t *testing.T) {
	t.Run("should cancel an expired but pending offer", func(t *testing.T) {
		a := createPending(t, time.Minute)
		dispatcher := kernel.NewUUID()

		changed, err := a.Cancel(dispatcher, createdAt.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, assignment.Cancelled, a.State())
		assert.True(t, a.Response().By().IsEqual(dispatcher))

		changed, err = a.Cancel(dispatcher, createdAt.Add(2*time.Hour))
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("should lose against an earlier accept", func(t *testing.T) {
		a := createPending(t, time.Hour)
		_, err := a.Accept(a.DriverID(), createdAt)
		require.NoError(t, err)

		changed, err := a.Cancel(a.OfferedBy(), createdAt)
		assert.False(t, changed)
		assert.ErrorIs(t, err, errs.ErrConflict)
	})
}

func TestAssignment_Expire(t *testing.T) {
	a := createPending(t, time.Hour)

	_, err := a.Expire(createdAt.Add(time.Minute))
	assert.ErrorIs(t, err, errs.ErrConflict, "not yet due")

	changed, err := a.Expire(createdAt.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, assignment.Expired, a.State())
	assert.Equal(t, assignment.ReasonNoResponse, a.Response().Reason())
	assert.True(t, a.Response().By().IsEqual(kernel.SystemActor))

	changed, err = a.Expire(createdAt.Add(2 * time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRestoreAssignment(t *testing.T) {
	a := createPending(t, time.Hour, kernel.NewUUID())
	_, err := a.Accept(a.DriverID(), createdAt)
	require.NoError(t, err)

	snapshot := assignment.Snapshot{
		ID:         a.ID(),
		LoadID:     a.LoadID(),
		DriverID:   a.DriverID(),
		VehicleIDs: a.VehicleIDs(),
		OfferedBy:  a.OfferedBy(),
		State:      a.State(),
		CreatedAt:  a.CreatedAt(),
		ExpiresAt:  a.ExpiresAt(),
		Response:   a.Response(),
		Version:    2,
	}

	restored, err := assignment.RestoreAssignment(snapshot)
	require.NoError(t, err)
	assert.Equal(t, assignment.Accepted, restored.State())
	assert.Equal(t, 2, restored.Version())
	assert.Equal(t, a.Response(), restored.Response())

	t.Run("should reject terminal state without response", func(t *testing.T) {
		broken := snapshot
		broken.Response = nil
		_, err := assignment.RestoreAssignment(broken)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject mismatching response", func(t *testing.T) {
		broken := snapshot
		broken.State = assignment.Rejected
		_, err := assignment.RestoreAssignment(broken)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject inverted window", func(t *testing.T) {
		broken := snapshot
		broken.ExpiresAt = broken.CreatedAt
		_, err := assignment.RestoreAssignment(broken)
		assert.ErrorIs(t, err, assignment.ErrTTLIsInvalid)
	})

	t.Run("should restore a stored response", func(t *testing.T) {
		r, err := assignment.RestoreResponse(assignment.Rejected, createdAt, a.DriverID(), "sick")
		require.NoError(t, err)

		broken := snapshot
		broken.State = assignment.Rejected
		broken.Response = &r
		restored, err := assignment.RestoreAssignment(broken)
		require.NoError(t, err)
		assert.Equal(t, "sick", restored.Response().Reason())

		_, err = assignment.RestoreResponse(assignment.Pending, createdAt, a.DriverID(), "")
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestState(t *testing.T) {
	s, err := assignment.ParseState("expired")
	require.NoError(t, err)
	assert.Equal(t, assignment.Expired, s)
	assert.True(t, s.IsTerminal())
	assert.False(t, assignment.Pending.IsTerminal())
	assert.False(t, assignment.UnknownState.IsTerminal())

	_, err = assignment.ParseState("maybe")
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
