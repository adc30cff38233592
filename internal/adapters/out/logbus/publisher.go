// Package logbus is the event sink used when no broker is configured: every
// event is written to the structured log, one record per topic.
package logbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

type EventPublisher struct {
	logger *slog.Logger
}

func NewEventPublisher(logger *slog.Logger) *EventPublisher {
	return &EventPublisher{logger: logger.With("component", "logbus")}
}

func (p *EventPublisher) Publish(ctx context.Context, topics []string, eventName string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("logbus: encode %s: %w", eventName, err)
	}

	for _, topic := range topics {
		p.logger.InfoContext(ctx, "Event published",
			"topic", topic,
			"event", eventName,
			"payload", json.RawMessage(value),
		)
	}
	return nil
}
