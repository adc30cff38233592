// Package kafka publishes real-time events to a single Kafka topic. The
// event topic (load.<id>, org.<id>, user.<id>) becomes the message key so a
// fan-out service can route by prefix and keep per-topic ordering.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
)

const (
	HeaderEvent = "event"
	HeaderTopic = "topic"
)

var ErrTopicIsRequired = errors.New("kafka: events topic is required")

var newSyncProducer = sarama.NewSyncProducer

// EventPublisher implements ports.EventPublisher on a sarama SyncProducer.
// It makes one delivery attempt per event topic and stops at the first
// failure.
type EventPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewConfig is the producer configuration: no retries, every replica acks.
func NewConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 0
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	return cfg
}

// NewEventPublisher dials the brokers. It returns nil, nil when no brokers are
// configured so the caller can fall back to another sink.
func NewEventPublisher(brokers []string, topic string) (*EventPublisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}
	if strings.TrimSpace(topic) == "" {
		return nil, ErrTopicIsRequired
	}

	producer, err := newSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka: create producer: %w", err)
	}

	return &EventPublisher{producer: producer, topic: topic}, nil
}

// NewEventPublisherWithProducer wraps an existing producer.
func NewEventPublisherWithProducer(producer sarama.SyncProducer, topic string) *EventPublisher {
	return &EventPublisher{producer: producer, topic: topic}
}

func (p *EventPublisher) Publish(ctx context.Context, topics []string, eventName string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("kafka: encode %s: %w", eventName, err)
	}

	for _, topic := range topics {
		if err = ctx.Err(); err != nil {
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(topic),
			Value: sarama.ByteEncoder(value),
			Headers: []sarama.RecordHeader{
				{Key: []byte(HeaderEvent), Value: []byte(eventName)},
				{Key: []byte(HeaderTopic), Value: []byte(topic)},
			},
		}
		if _, _, err = p.producer.SendMessage(msg); err != nil {
			return fmt.Errorf("kafka: publish %s to %s: %w", eventName, topic, err)
		}
	}

	return nil
}

func (p *EventPublisher) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
