// Package sequencer runs fire-and-forget work off the caller's goroutine while
// keeping submissions for the same key in FIFO order.
//
// The workflow engine submits notification and publish work keyed by
// assignment id: a later state's side effects never overtake an earlier one
// for the same assignment, while different assignments proceed in parallel.
package sequencer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var ErrClosed = errors.New("sequencer is closed")

// Sequencer owns one worker goroutine per key with pending work.
type Sequencer struct {
	mu     sync.Mutex
	queues map[string][]func()
	wg     sync.WaitGroup
	closed bool
	logger *slog.Logger
}

func New(logger *slog.Logger) *Sequencer {
	return &Sequencer{
		queues: make(map[string][]func()),
		logger: logger.With("component", "sequencer"),
	}
}

// Go queues task behind every earlier task submitted with the same key.
func (s *Sequencer) Go(key string, task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	pending, running := s.queues[key]
	s.queues[key] = append(pending, task)
	if !running {
		s.wg.Add(1)
		go s.drain(key)
	}
	return nil
}

// Wait blocks until every queued task has run.
func (s *Sequencer) Wait() {
	s.wg.Wait()
}

// Close stops accepting work and waits for queued tasks or ctx, whichever
// comes first.
func (s *Sequencer) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sequencer) drain(key string) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		pending := s.queues[key]
		if len(pending) == 0 {
			delete(s.queues, key)
			s.mu.Unlock()
			return
		}
		task := pending[0]
		pending[0] = nil
		s.queues[key] = pending[1:]
		s.mu.Unlock()

		s.run(key, task)
	}
}

func (s *Sequencer) run(key string, task func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Sequenced task panicked", "key", key, "panic", r)
		}
	}()
	task()
}

// Inline runs every task on the caller's goroutine. Ordering per key follows
// from the caller's own ordering.
type Inline struct{}

func (Inline) Go(_ string, task func()) error {
	task()
	return nil
}
