package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"escrowbot/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Publisher sends a payload to a subject
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// PublishRecorder observes forwarded events
type PublishRecorder interface {
	RecordNATSMessagePublished(ctx context.Context, eventType string)
}

// Envelope wraps a lifecycle event on the wire
type Envelope struct {
	EventID    string           `json:"event_id"`
	Type       events.EventType `json:"type"`
	OccurredAt time.Time        `json:"occurred_at"`
	Payload    events.Event     `json:"payload"`
}

// EventForwarder forwards bus events to the message bus under
// escrow.<event_type>. Delivery is best effort; failures are logged.
type EventForwarder struct {
	publisher Publisher
	recorder  PublishRecorder
	now       func() time.Time
}

// NewEventForwarder creates a forwarder. recorder may be nil.
func NewEventForwarder(publisher Publisher, recorder PublishRecorder) *EventForwarder {
	return &EventForwarder{
		publisher: publisher,
		recorder:  recorder,
		now:       time.Now,
	}
}

// Subject returns the subject an event type is published on
func Subject(eventType events.EventType) string {
	return EscrowSubjectRoot + "." + string(eventType)
}

// Attach subscribes the forwarder to every event type on the bus
func (f *EventForwarder) Attach(bus *events.Bus) {
	bus.SubscribeAll(f.Handle)
}

// Handle publishes one event
func (f *EventForwarder) Handle(ctx context.Context, event events.Event) {
	if err := f.forward(ctx, event); err != nil {
		log.WithFields(log.Fields{
			"event_type": event.Type(),
			"error":      err,
		}).Error("Failed to forward event")
	}
}

func (f *EventForwarder) forward(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(Envelope{
		EventID:    uuid.NewString(),
		Type:       event.Type(),
		OccurredAt: f.now().UTC(),
		Payload:    event,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := f.publisher.Publish(ctx, Subject(event.Type()), data); err != nil {
		return err
	}

	if f.recorder != nil {
		f.recorder.RecordNATSMessagePublished(ctx, string(event.Type()))
	}
	return nil
}
