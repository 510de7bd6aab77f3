package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope(EventAttemptScored, "attempt-1", "test-1", map[string]int{"score": 11})
	if err != nil {
		t.Fatalf("NewEnvelope() error = %v", err)
	}
	if env.EventID == "" {
		t.Error("expected generated event id")
	}
	if env.Type != EventAttemptScored {
		t.Errorf("Type = %q, want %q", env.Type, EventAttemptScored)
	}
	if env.AttemptID != "attempt-1" || env.TestID != "test-1" {
		t.Errorf("ids = (%q, %q), want (attempt-1, test-1)", env.AttemptID, env.TestID)
	}

	var payload map[string]int
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["score"] != 11 {
		t.Errorf("payload score = %d, want 11", payload["score"])
	}
}

func TestNewEnvelope_UnmarshalablePayload(t *testing.T) {
	if _, err := NewEnvelope(EventSubmissionCompleted, "a", "t", make(chan int)); err == nil {
		t.Fatal("expected error for unmarshalable payload")
	}
}

func TestWatermillPublisher_PublishAndReceive(t *testing.T) {
	pub, sub := NewGoChannelPubSub(discardLogger())
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := sub.Subscribe(ctx, DefaultTopic)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	env, err := NewEnvelope(EventSubmissionCompleted, "attempt-9", "test-3", nil)
	if err != nil {
		t.Fatalf("NewEnvelope() error = %v", err)
	}
	if err := pub.Publish(ctx, env); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-msgs:
		msg.Ack()
		if got := msg.Metadata.Get("event_type"); got != string(EventSubmissionCompleted) {
			t.Errorf("event_type metadata = %q, want %q", got, EventSubmissionCompleted)
		}
		var received Envelope
		if err := json.Unmarshal(msg.Payload, &received); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		if received.EventID != env.EventID {
			t.Errorf("EventID = %q, want %q", received.EventID, env.EventID)
		}
		if received.AttemptID != "attempt-9" {
			t.Errorf("AttemptID = %q, want attempt-9", received.AttemptID)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for published event")
	}
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	if _, err := NewKafkaPublisher(nil, DefaultTopic, discardLogger()); err == nil {
		t.Fatal("expected error for empty broker list")
	}
}

// Integration test (requires a running Kafka broker)
func TestKafkaPublisher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_BROKERS not set")
	}

	pub, err := NewKafkaPublisher(strings.Split(brokers, ","), DefaultTopic, discardLogger())
	if err != nil {
		t.Fatalf("NewKafkaPublisher() error = %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	env, err := NewEnvelope(EventAttemptScored, "attempt-kafka", "test-kafka", map[string]int{"score": 1})
	if err != nil {
		t.Fatalf("NewEnvelope() error = %v", err)
	}
	if err := pub.Publish(ctx, env); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
}
