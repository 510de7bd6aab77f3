package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// DefaultTopic is where attempt lifecycle events land unless config says
// otherwise.
const DefaultTopic = "attempt-events"

type EventType string

const (
	EventSubmissionCompleted EventType = "submission.completed"
	EventAttemptScored       EventType = "attempt.scored"
	EventAttemptAbandoned    EventType = "attempt.abandoned"
)

// Envelope is the wire frame for every published event. Payload holds the
// event-specific document (submission snapshot, score result, ...).
type Envelope struct {
	EventID    string          `json:"event_id"`
	Type       EventType       `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	AttemptID  string          `json:"attempt_id"`
	TestID     string          `json:"test_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope frames a payload for publishing.
func NewEnvelope(eventType EventType, attemptID, testID string, payload any) (Envelope, error) {
	env := Envelope{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		AttemptID:  attemptID,
		TestID:     testID,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
		}
		env.Payload = data
	}
	return env, nil
}

// Publisher is the outbound edge towards the backend: submissions and
// results leave the engine as events, not as HTTP calls.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// WatermillPublisher adapts any watermill publisher to the engine's
// envelope contract.
type WatermillPublisher struct {
	pub    message.Publisher
	topic  string
	logger *slog.Logger
}

func NewWatermillPublisher(pub message.Publisher, topic string, logger *slog.Logger) *WatermillPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &WatermillPublisher{pub: pub, topic: topic, logger: logger}
}

func (p *WatermillPublisher) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	msg := message.NewMessage(env.EventID, data)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", string(env.Type))
	msg.Metadata.Set("attempt_id", env.AttemptID)

	if err := p.pub.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", env.Type, err)
	}
	p.logger.DebugContext(ctx, "event published",
		"event_type", env.Type,
		"event_id", env.EventID,
		"attempt_id", env.AttemptID,
		"topic", p.topic)
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.pub.Close()
}

// NewGoChannelPubSub builds the in-process pub/sub used by default and in
// tests. The returned subscriber consumes the same channel the publisher
// writes to.
func NewGoChannelPubSub(logger *slog.Logger) (*WatermillPublisher, message.Subscriber) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))
	return NewWatermillPublisher(pubSub, DefaultTopic, logger), pubSub
}

// NewKafkaPublisher connects the production event stream.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*WatermillPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}
	return NewWatermillPublisher(pub, topic, logger), nil
}

// NopPublisher drops every event. Used when eventing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Envelope) error { return nil }
func (NopPublisher) Close() error                            { return nil }
