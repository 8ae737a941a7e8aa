package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Publisher sends raw payloads to a subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSForwarder relays dispatched events to an external NATS server.
type NATSForwarder struct {
	publisher Publisher
	prefix    string
	conn      *nats.Conn
}

// NewNATSForwarder connects to url and forwards events under prefix.<event_type>.
func NewNATSForwarder(url, prefix string) (*NATSForwarder, error) {
	conn, err := nats.Connect(url, nats.Name("waitlist-service"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSForwarder{publisher: conn, prefix: prefix, conn: conn}, nil
}

// NewForwarder wraps an arbitrary publisher, mainly for tests.
func NewForwarder(publisher Publisher, prefix string) *NATSForwarder {
	return &NATSForwarder{publisher: publisher, prefix: prefix}
}

// Subject returns the NATS subject for an event type.
func (f *NATSForwarder) Subject(eventType EventType) string {
	if f.prefix == "" {
		return string(eventType)
	}
	return f.prefix + "." + string(eventType)
}

// Handle is an EventHandler that publishes the event as JSON.
func (f *NATSForwarder) Handle(_ context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	if err := f.publisher.Publish(f.Subject(event.Type), payload); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close drains the underlying connection when one was opened.
func (f *NATSForwarder) Close() error {
	if f == nil || f.conn == nil {
		return nil
	}
	return f.conn.Drain()
}
