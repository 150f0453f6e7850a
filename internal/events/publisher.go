// Package events publishes workflow transitions as JSON messages. The
// publisher is strictly fire-and-forget: business transactions never fail
// because an event could not be delivered.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Event types published on workflow transitions.
const (
	TypeProductSubmitted  = "product.submitted"
	TypeProductReviewed   = "product.reviewed"
	TypeOrderCreated      = "order.created"
	TypeOrderStatus       = "order.status_changed"
	TypePaymentCreated    = "payment.created"
	TypePaymentCompleted  = "payment.completed"
	TypeDonationScheduled = "donation.scheduled"
	TypeDonationStatus    = "donation.status_changed"
)

// Publisher emits workflow events keyed by the affected entity id.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any)
	Close() error
}

// kafkaPublisher writes events to a single Kafka topic.
type kafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaPublisher creates a Kafka-backed publisher.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 5 * time.Second,
	}

	return &kafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "event-publisher").Logger(),
	}
}

type envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) {
	data, err := json.Marshal(envelope{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event")
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	})
	if err != nil {
		// Best effort only; the triggering transaction already committed.
		p.logger.Error().Err(err).Str("event_type", eventType).Str("key", key).Msg("failed to publish event")
		return
	}

	p.logger.Debug().Str("event_type", eventType).Str("key", key).Msg("event published")
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// nopPublisher drops all events. Used when Kafka is disabled and in tests.
type nopPublisher struct{}

// NewNopPublisher creates a publisher that discards events.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, string, any) {}

func (nopPublisher) Close() error { return nil }
