package events

import (
	"context"
	"log/slog"
	"sync"
)

// MockEventPublisher records envelopes instead of sending them. Used by
// service tests to assert on the published stream.
type MockEventPublisher struct {
	logger *slog.Logger

	mu        sync.Mutex
	published []Envelope
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (p *MockEventPublisher) Publish(ctx context.Context, env Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.published = append(p.published, env)
	p.logger.DebugContext(ctx, "mock event captured", "event_type", env.Type, "event_id", env.EventID)
	return nil
}

func (p *MockEventPublisher) Close() error { return nil }

// GetPublishedEvents returns a copy of everything published so far.
func (p *MockEventPublisher) GetPublishedEvents() []Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Envelope, len(p.published))
	copy(out, p.published)
	return out
}

func (p *MockEventPublisher) ClearEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.published = nil
}
