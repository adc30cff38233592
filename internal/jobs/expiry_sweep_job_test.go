package jobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"fleet/internal/core/application/usecases/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockExpireHandler struct {
	mock.Mock
}

func (m *MockExpireHandler) Handle(ctx context.Context, cmd commands.ExpireAssignmentsCommand) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestExpirySweepJob_Run(t *testing.T) {
	t.Run("logs the count", func(t *testing.T) {
		handler := new(MockExpireHandler)
		handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ExpireAssignmentsCommand) bool {
			return cmd.Limit() == 25
		})).Return(3, nil).Once()
		logger, buf := newTestLogger()

		count := NewExpirySweepJob(handler, "", 25, logger).Run(context.Background())

		assert.Equal(t, 3, count)
		assert.Contains(t, buf.String(), "Expired assignments")
		assert.Contains(t, buf.String(), "count=3")
		handler.AssertExpectations(t)
	})

	t.Run("quiet when nothing expired", func(t *testing.T) {
		handler := new(MockExpireHandler)
		handler.On("Handle", mock.Anything, mock.Anything).Return(0, nil).Once()
		logger, buf := newTestLogger()

		assert.Zero(t, NewExpirySweepJob(handler, "", 0, logger).Run(context.Background()))
		assert.NotContains(t, buf.String(), "Expired assignments")
	})

	t.Run("partial failure keeps the count", func(t *testing.T) {
		handler := new(MockExpireHandler)
		handler.On("Handle", mock.Anything, mock.Anything).Return(2, errors.New("db hiccup")).Once()
		logger, buf := newTestLogger()

		assert.Equal(t, 2, NewExpirySweepJob(handler, "", 0, logger).Run(context.Background()))
		assert.Contains(t, buf.String(), "Expiry sweep failed")
		assert.Contains(t, buf.String(), "db hiccup")
	})

	t.Run("bad batch never reaches the handler", func(t *testing.T) {
		handler := new(MockExpireHandler)
		logger, buf := newTestLogger()

		assert.Zero(t, NewExpirySweepJob(handler, "", -1, logger).Run(context.Background()))
		assert.Contains(t, buf.String(), "Expiry sweep misconfigured")
		handler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})
}

func TestExpirySweepJob_StartRunsOnSchedule(t *testing.T) {
	handler := new(MockExpireHandler)
	var runs atomic.Int32
	handler.On("Handle", mock.Anything, mock.Anything).Run(func(mock.Arguments) { runs.Add(1) }).Return(0, nil)
	logger, _ := newTestLogger()

	job := NewExpirySweepJob(handler, "@every 1s", 0, logger)
	require.NoError(t, job.Start())
	defer job.Stop()

	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestExpirySweepJob_InvalidSchedule(t *testing.T) {
	logger, _ := newTestLogger()

	err := NewExpirySweepJob(new(MockExpireHandler), "every now and then", 0, logger).Start()

	require.Error(t, err)
}

type stubJob struct {
	name    string
	fail    bool
	journal *[]string
}

func (j stubJob) Start() error {
	if j.fail {
		return errors.New("boom")
	}
	*j.journal = append(*j.journal, "start "+j.name)
	return nil
}

func (j stubJob) Stop() { *j.journal = append(*j.journal, "stop "+j.name) }

func TestJobManager(t *testing.T) {
	t.Run("starts in order and stops in reverse", func(t *testing.T) {
		var journal []string
		jm := NewJobManager()
		jm.Add("a", stubJob{name: "a", journal: &journal})
		jm.Add("b", stubJob{name: "b", journal: &journal})

		require.NoError(t, jm.StartAll())
		jm.StopAll()

		assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, journal)
	})

	t.Run("rolls back on a failed start", func(t *testing.T) {
		var journal []string
		jm := NewJobManager()
		jm.Add("a", stubJob{name: "a", journal: &journal})
		jm.Add("b", stubJob{name: "b", fail: true, journal: &journal})

		err := jm.StartAll()

		require.ErrorContains(t, err, "failed to start b job")
		assert.Equal(t, []string{"start a", "stop a"}, journal)
	})
}
