package infrastructure

import (
	"strings"

	"prizepool/events"
)

// EventSubjectMapper maps domain events to NATS subjects and back
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return EventSubjectPrefix + "." + string(event.Type())
}

// MapSubjectToEventType converts a subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	return events.EventType(strings.TrimPrefix(subject, EventSubjectPrefix+"."))
}

// GetAllSubjects returns every subject the pool publishes events to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	types := []events.EventType{
		events.EventTypeStakeDeposited,
		events.EventTypeStakeUnwound,
		events.EventTypeTokensWithdrawn,
		events.EventTypeStakeRedelegated,
		events.EventTypeDrawCompleted,
		events.EventTypeTriggerFeeWithdrawn,
		events.EventTypeLifecycleChanged,
		events.EventTypeConfigChanged,
		events.EventTypePoolInitialized,
	}
	subjects := make([]string, len(types))
	for i, t := range types {
		subjects[i] = EventSubjectPrefix + "." + string(t)
	}
	return subjects
}
