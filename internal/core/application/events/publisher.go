package events

import (
	"context"
	"fmt"
	"log/slog"

	"fleet/internal/core/ports"
)

const collaboratorName = "events"

// FailureCounter counts swallowed failures.
type FailureCounter interface {
	CollaboratorFailed(collaborator string)
}

// Publisher delivers events once and forgets about them. A failed or
// panicking sink is logged and counted; callers never see the error.
type Publisher struct {
	sink     ports.EventPublisher
	logger   *slog.Logger
	failures FailureCounter
}

func NewPublisher(sink ports.EventPublisher, logger *slog.Logger, failures FailureCounter) *Publisher {
	return &Publisher{
		sink:     sink,
		logger:   logger.With("component", "event-publisher"),
		failures: failures,
	}
}

// Publish reports whether the sink accepted the event.
func (p *Publisher) Publish(ctx context.Context, topics []string, eventName string, payload any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.fail(ctx, topics, eventName, fmt.Errorf("publisher panic: %v", r))
			ok = false
		}
	}()

	if err := p.sink.Publish(ctx, topics, eventName, payload); err != nil {
		p.fail(ctx, topics, eventName, err)
		return false
	}
	return true
}

func (p *Publisher) fail(ctx context.Context, topics []string, eventName string, err error) {
	p.failures.CollaboratorFailed(collaboratorName)
	p.logger.WarnContext(ctx, "Failed to publish event",
		"event", eventName,
		"topics", topics,
		"error", err,
	)
}
