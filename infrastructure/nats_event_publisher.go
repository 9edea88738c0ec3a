package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prizepool/events"
	"prizepool/infrastructure/observability"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// NATSEventPublisher delivers events to in-process subscribers and then to NATS
type NATSEventPublisher struct {
	client        MessagePublisher
	subjectMapper *EventSubjectMapper
	localBus      *events.Bus
}

// NewNATSEventPublisher creates a new NATS event publisher. localBus may be nil.
func NewNATSEventPublisher(client MessagePublisher, subjectMapper *EventSubjectMapper, localBus *events.Bus) *NATSEventPublisher {
	return &NATSEventPublisher{
		client:        client,
		subjectMapper: subjectMapper,
		localBus:      localBus,
	}
}

// Publish publishes an event to its subject
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()

	if p.localBus != nil {
		p.localBus.Emit(ctx, event)
	}

	subject := p.subjectMapper.MapEventToSubject(event)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err := p.client.Publish(ctx, subject, data); err != nil {
		// Event streams are optional; nobody is listening.
		if errors.Is(err, nats.ErrNoStreamResponse) {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}
	observability.GetMetrics().RecordNATSMessagePublished(string(event.Type()))

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")
	return nil
}

// StreamEnsurer creates JetStream streams
type StreamEnsurer interface {
	EnsureStream(streamName, description string, subjects []string) error
}

// EnsureEventStream creates the stream holding every domain event subject
func (p *NATSEventPublisher) EnsureEventStream(client StreamEnsurer) error {
	return client.EnsureStream(EventStreamName, "prize pool domain events", p.subjectMapper.GetAllSubjects())
}
