package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/yigit/learnhub/internal/config"
)

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(string, ...*message.Message) error {
	f.calls++
	return errors.New("broker unavailable")
}

func (f *failingPublisher) Close() error { return nil }

func TestPublisherEmit(t *testing.T) {
	t.Parallel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	messages, err := pubSub.Subscribe(t.Context(), "learnhub.test")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	publisher := NewPublisher(pubSub, "learnhub.test", zerolog.Nop())
	publisher.Emit(t.Context(), CourseCreated, map[string]any{"id": 1, "slug": "go-101"})

	select {
	case msg := <-messages:
		msg.Ack()
		if got := msg.Metadata.Get(MetadataEventType); got != CourseCreated {
			t.Errorf("metadata event_type = %q", got)
		}

		var envelope struct {
			ID      string         `json:"id"`
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if envelope.Type != CourseCreated || envelope.ID != msg.UUID || envelope.Payload["slug"] != "go-101" {
			t.Errorf("unexpected envelope %+v", envelope)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublisherSwallowsFailures(t *testing.T) {
	t.Parallel()

	failing := &failingPublisher{}
	publisher := NewPublisher(failing, "topic", zerolog.Nop())
	publisher.Emit(t.Context(), CourseDeleted, map[string]any{"id": 1})

	if failing.calls != 1 {
		t.Errorf("Publish calls = %d, want 1", failing.calls)
	}
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("none discards", func(t *testing.T) {
		t.Parallel()
		publisher, err := NewFromConfig(config.EventsConfig{Driver: config.EventsDriverNone, Topic: "t"}, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewFromConfig() error = %v", err)
		}
		publisher.Emit(t.Context(), CourseCreated, nil)
		if err := publisher.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	t.Run("gochannel", func(t *testing.T) {
		t.Parallel()
		publisher, err := NewFromConfig(config.EventsConfig{Driver: config.EventsDriverGoChannel, Topic: "t"}, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewFromConfig() error = %v", err)
		}
		publisher.Emit(t.Context(), CourseCreated, map[string]any{"id": 1})
		if err := publisher.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Parallel()
		if _, err := NewFromConfig(config.EventsConfig{Driver: "nats"}, zerolog.Nop()); err == nil {
			t.Error("expected error for unknown driver")
		}
	})

	t.Run("nil publisher is safe", func(t *testing.T) {
		t.Parallel()
		var publisher *Publisher
		publisher.Emit(t.Context(), CourseCreated, nil)
		if err := publisher.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
}
