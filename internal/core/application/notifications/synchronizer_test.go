package notifications_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"fleet/internal/adapters/out/memory"
	"fleet/internal/core/application/notifications"
	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/notification"
	"fleet/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failureCounter struct {
	counts map[string]int
}

func (f *failureCounter) CollaboratorFailed(name string) {
	if f.counts == nil {
		f.counts = map[string]int{}
	}
	f.counts[name]++
}

var offer = notifications.Offer{LoadNumber: "LD-42", Origin: "Fresno, CA", Destination: "Boise, ID"}

func newSynchronizer() (*notifications.Synchronizer, *memory.Store, *clock.Manual, *failureCounter) {
	store := memory.NewStore()
	clk := clock.NewManual(time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))
	failures := &failureCounter{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return notifications.NewSynchronizer(store, clk, logger, failures), store, clk, failures
}

func getMirror(t *testing.T, store *memory.Store, key notification.Key) *notification.Mirror {
	t.Helper()
	ctx := context.Background()
	uow := store.Create()
	require.NoError(t, uow.Begin(ctx))
	defer func() { _ = uow.Rollback(ctx) }()
	m, err := uow.NotificationRepository().GetByKey(ctx, key)
	require.NoError(t, err)
	return m
}

func TestSynchronizer_CreatesThenUpdatesInPlace(t *testing.T) {
	sync, store, clk, failures := newSynchronizer()
	ctx := context.Background()
	target := notifications.Target{
		AssignmentID: kernel.NewUUID(),
		Audience:     notification.Driver,
		RecipientID:  kernel.NewUUID(),
		LoadID:       kernel.NewUUID(),
	}
	key := notification.Key{AssignmentID: target.AssignmentID, Audience: notification.Driver}

	require.True(t, sync.Sync(ctx, target, assignment.Pending, notifications.DriverMessages(offer)))
	created := getMirror(t, store, key)
	assert.Equal(t, assignment.Pending, created.Status())
	assert.Equal(t, "New load offer LD-42", created.Title())
	assert.Equal(t, "Fresno, CA to Boise, ID", created.Message())

	clk.Advance(time.Minute)
	require.True(t, sync.Sync(ctx, target, assignment.Accepted, notifications.DriverMessages(offer)))
	updated := getMirror(t, store, key)
	assert.Equal(t, created.ID(), updated.ID())
	assert.Equal(t, assignment.Accepted, updated.Status())
	assert.Equal(t, "Load LD-42 accepted", updated.Title())
	assert.Equal(t, clk.Now(), updated.UpdatedAt())
	assert.Empty(t, failures.counts)
}

func TestSynchronizer_RepeatedStateIsNoop(t *testing.T) {
	sync, store, _, _ := newSynchronizer()
	ctx := context.Background()
	target := notifications.Target{
		AssignmentID: kernel.NewUUID(),
		Audience:     notification.Driver,
		RecipientID:  kernel.NewUUID(),
		LoadID:       kernel.NewUUID(),
	}

	require.True(t, sync.Sync(ctx, target, assignment.Cancelled, notifications.DriverMessages(offer)))
	require.True(t, sync.Sync(ctx, target, assignment.Cancelled, notifications.DriverMessages(offer)))

	m := getMirror(t, store, notification.Key{AssignmentID: target.AssignmentID, Audience: notification.Driver})
	assert.Equal(t, 0, m.Version())
}

func TestSynchronizer_SwallowsFailures(t *testing.T) {
	sync, _, _, failures := newSynchronizer()

	ok := sync.Sync(context.Background(), notifications.Target{
		AssignmentID: kernel.NewUUID(),
		RecipientID:  kernel.NewUUID(),
	}, assignment.Rejected, notifications.DispatcherMessages(offer))

	assert.False(t, ok)
	assert.Equal(t, 1, failures.counts["notifications"])
}

func TestDispatcherMessages(t *testing.T) {
	build := notifications.DispatcherMessages(notifications.Offer{LoadNumber: "LD-7", Reason: "truck broke down"})

	assert.Equal(t, "Load LD-7 rejected: truck broke down", build(assignment.Rejected).Title)
	assert.Equal(t, "Load LD-7 expired: no response", build(assignment.Expired).Title)
	assert.Equal(t, "Load LD-7 accepted by driver", build(assignment.Accepted).Title)
}
