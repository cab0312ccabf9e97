package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/yigit/learnhub/internal/config"
	"github.com/yigit/learnhub/internal/pkg/metrics"
)

// Domain event types
const (
	UserRegistered    = "user.registered"
	AdminCreated      = "admin.created"
	CourseCreated     = "course.created"
	CourseUpdated     = "course.updated"
	CoursePublished   = "course.published"
	CourseUnpublished = "course.unpublished"
	CourseDeleted     = "course.deleted"
	CourseEnrolled    = "course.enrolled"
	CourseUnenrolled  = "course.unenrolled"
)

// MetadataEventType is the message metadata key holding the event type.
const MetadataEventType = "event_type"

// Emitter publishes domain events after the state change committed.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload any)
}

// Envelope is the JSON body of every published message.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Publisher emits domain events on a watermill publisher. A nil underlying
// publisher discards events.
type Publisher struct {
	publisher message.Publisher
	topic     string
	logger    zerolog.Logger
}

// NewPublisher wraps pub, publishing on topic.
func NewPublisher(pub message.Publisher, topic string, logger zerolog.Logger) *Publisher {
	return &Publisher{publisher: pub, topic: topic, logger: logger}
}

// NewFromConfig builds the publisher selected by cfg.Driver.
func NewFromConfig(cfg config.EventsConfig, logger zerolog.Logger) (*Publisher, error) {
	wmLogger := NewLoggerAdapter(logger)

	switch cfg.Driver {
	case config.EventsDriverNone, "":
		return NewPublisher(nil, cfg.Topic, logger), nil
	case config.EventsDriverGoChannel:
		return NewPublisher(gochannel.NewGoChannel(gochannel.Config{}, wmLogger), cfg.Topic, logger), nil
	case config.EventsDriverKafka:
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.Brokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		return NewPublisher(pub, cfg.Topic, logger), nil
	default:
		return nil, fmt.Errorf("unsupported events driver %q", cfg.Driver)
	}
}

// Emit publishes one event. Failures are logged and counted, never returned:
// the state change the event describes has already happened.
func (p *Publisher) Emit(ctx context.Context, eventType string, payload any) {
	if p == nil || p.publisher == nil {
		return
	}

	envelope := Envelope{
		ID:         watermill.NewUUID(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to encode event")
		metrics.RecordEvent(eventType, "error")
		return
	}

	msg := message.NewMessage(envelope.ID, body)
	msg.Metadata.Set(MetadataEventType, eventType)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to publish event")
		metrics.RecordEvent(eventType, "error")
		return
	}

	metrics.RecordEvent(eventType, "ok")
	p.logger.Debug().Str("event_type", eventType).Str("event_id", envelope.ID).Msg("Event published")
}

// Close releases the underlying publisher.
func (p *Publisher) Close() error {
	if p == nil || p.publisher == nil {
		return nil
	}
	return p.publisher.Close()
}
