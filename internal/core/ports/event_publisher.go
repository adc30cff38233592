package ports

import "context"

// EventPublisher is the real-time pub/sub sink. Implementations make a single
// delivery attempt per topic and return the first failure.
type EventPublisher interface {
	Publish(ctx context.Context, topics []string, eventName string, payload any) error
}
