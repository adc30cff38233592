package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"fleet/internal/core/application/events"
	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Publish(ctx context.Context, topics []string, eventName string, payload any) error {
	args := m.Called(ctx, topics, eventName, payload)
	return args.Error(0)
}

type failureCounter struct{ n int }

func (f *failureCounter) CollaboratorFailed(string) { f.n++ }

func newPublisher(sink *MockSink) (*events.Publisher, *failureCounter) {
	failures := &failureCounter{}
	return events.NewPublisher(sink, slog.New(slog.NewTextHandler(io.Discard, nil)), failures), failures
}

func TestPublisher_Publish(t *testing.T) {
	sink := &MockSink{}
	sink.On("Publish", mock.Anything, []string{"load.1"}, events.AssignmentCreated, "payload").Return(nil).Once()
	p, failures := newPublisher(sink)

	ok := p.Publish(context.Background(), []string{"load.1"}, events.AssignmentCreated, "payload")

	assert.True(t, ok)
	assert.Zero(t, failures.n)
	sink.AssertExpectations(t)
}

func TestPublisher_SwallowsErrors(t *testing.T) {
	sink := &MockSink{}
	sink.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("broker down")).Once()
	p, failures := newPublisher(sink)

	ok := p.Publish(context.Background(), []string{"load.1"}, events.AssignmentRejected, nil)

	assert.False(t, ok)
	assert.Equal(t, 1, failures.n)
	sink.AssertNumberOfCalls(t, "Publish", 1)
}

func TestPublisher_RecoversPanics(t *testing.T) {
	sink := &MockSink{}
	sink.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("boom") })
	p, failures := newPublisher(sink)

	assert.NotPanics(t, func() {
		assert.False(t, p.Publish(context.Background(), nil, events.LoadStageChanged, nil))
	})
	assert.Equal(t, 1, failures.n)
}

func TestAssignmentTopics(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	origin, err := kernel.NewPlace("", "", "Reno", "NV", "", "US")
	require.NoError(t, err)
	destination, err := kernel.NewPlace("", "", "Salt Lake City", "UT", "", "US")
	require.NoError(t, err)
	window, err := kernel.NewTimeWindow(at, at.Add(24*time.Hour))
	require.NoError(t, err)
	rate, err := kernel.NewMoney(90000, "USD")
	require.NoError(t, err)
	terms, err := load.NewTerms(rate, nil, nil)
	require.NoError(t, err)
	dispatcher := kernel.NewUUID()
	l, err := load.NewLoad(kernel.NewUUID(), kernel.NewUUID(), "LD-1", origin, destination, window, terms, dispatcher, at)
	require.NoError(t, err)
	driver := kernel.NewUUID()
	a, err := assignment.NewAssignment(kernel.NewUUID(), l.ID(), driver, nil, dispatcher, at, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, []string{"load." + l.ID().String(), "org." + l.OrgID().String()}, events.AssignmentTopics(l, a))

	_, err = a.Reject(driver, "too far", at.Add(time.Minute))
	require.NoError(t, err)
	topics := events.AssignmentTopics(l, a)
	assert.Contains(t, topics, "user."+dispatcher.String())
	assert.Equal(t, events.AssignmentRejected, events.ForAssignment(a.State()))

	e := events.NewAssignmentEvent(l, a, at)
	assert.Equal(t, "too far", e.Reason)
	assert.Equal(t, "REJECTED", e.State)
	assert.Equal(t, at.Add(time.Minute), e.At)
}
