package sequencer_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"fleet/internal/pkg/sequencer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSequencer() *sequencer.Sequencer {
	return sequencer.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSequencer_PreservesOrderPerKey(t *testing.T) {
	s := newSequencer()

	var (
		mu  sync.Mutex
		got = map[string][]int{}
	)
	for i := range 100 {
		for _, key := range []string{"assignment:a", "assignment:b"} {
			require.NoError(t, s.Go(key, func() {
				if i%10 == 0 {
					time.Sleep(100 * time.Microsecond)
				}
				mu.Lock()
				got[key] = append(got[key], i)
				mu.Unlock()
			}))
		}
	}
	s.Wait()

	for _, key := range []string{"assignment:a", "assignment:b"} {
		require.Len(t, got[key], 100)
		for i, v := range got[key] {
			assert.Equal(t, i, v, "key %s out of order", key)
		}
	}
}

func TestSequencer_RecoversFromPanics(t *testing.T) {
	s := newSequencer()

	ran := make(chan struct{})
	require.NoError(t, s.Go("assignment:a", func() { panic("publisher blew up") }))
	require.NoError(t, s.Go("assignment:a", func() { close(ran) }))

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task after panic did not run")
	}
}

func TestSequencer_CloseRejectsNewWork(t *testing.T) {
	s := newSequencer()

	var ran bool
	require.NoError(t, s.Go("k", func() { ran = true }))
	require.NoError(t, s.Close(context.Background()))
	assert.True(t, ran)

	err := s.Go("k", func() {})
	require.ErrorIs(t, err, sequencer.ErrClosed)
}

func TestInline_RunsImmediately(t *testing.T) {
	var ran bool

	require.NoError(t, sequencer.Inline{}.Go("k", func() { ran = true }))

	assert.True(t, ran)
}
