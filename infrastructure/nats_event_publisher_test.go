package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"prizepool/events"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNATSEventPublisher_PublishesEnvelope(t *testing.T) {
	t.Parallel()

	client := &fakeBusClient{}
	bus := events.NewBus()
	var local []events.Event
	bus.Subscribe(events.EventTypeDrawCompleted, func(_ context.Context, e events.Event) {
		local = append(local, e)
	})

	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), bus)
	event := events.DrawCompletedEvent{Status: "winner", Winner: "alice", Prize: "11000", Fee: "110", Payout: "10890", Candidates: 2}
	require.NoError(t, publisher.Publish(event))

	require.Len(t, local, 1, "local subscribers see the event")
	require.Len(t, client.published, 1)
	assert.Equal(t, "prizepool.events.draw_completed", client.published[0].subject)

	var env EventEnvelope
	require.NoError(t, json.Unmarshal(client.published[0].data, &env))
	assert.Equal(t, "draw_completed", env.EventType)
	assert.NotEmpty(t, env.EventID)

	var payload events.DrawCompletedEvent
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, event, payload)
}

func TestNATSEventPublisher_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing stream is ignored", func(t *testing.T) {
		t.Parallel()
		client := &fakeBusClient{publishErr: fmt.Errorf("failed to publish: %w", nats.ErrNoStreamResponse)}
		publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), nil)
		assert.NoError(t, publisher.Publish(events.ConfigChangedEvent{Field: "admin", Value: "bob"}))
	})

	t.Run("other failures surface", func(t *testing.T) {
		t.Parallel()
		client := &fakeBusClient{publishErr: errors.New("connection closed")}
		publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), nil)
		assert.Error(t, publisher.Publish(events.ConfigChangedEvent{Field: "admin", Value: "bob"}))
	})
}

func TestEventSubjectMapper(t *testing.T) {
	t.Parallel()

	m := NewEventSubjectMapper()
	subjects := m.GetAllSubjects()
	assert.Len(t, subjects, 9)
	for _, s := range subjects {
		assert.Equal(t, s, m.MapEventToSubject(stubEvent(m.MapSubjectToEventType(s))))
	}
}

type stubEvent events.EventType

func (s stubEvent) Type() events.EventType { return events.EventType(s) }

type recordingEnsurer struct {
	name     string
	subjects []string
}

func (r *recordingEnsurer) EnsureStream(name, _ string, subjects []string) error {
	r.name = name
	r.subjects = subjects
	return nil
}

func TestNATSEventPublisher_EnsureEventStream(t *testing.T) {
	t.Parallel()

	ensurer := &recordingEnsurer{}
	publisher := NewNATSEventPublisher(&fakeBusClient{}, NewEventSubjectMapper(), nil)
	require.NoError(t, publisher.EnsureEventStream(ensurer))

	assert.Equal(t, EventStreamName, ensurer.name)
	assert.Contains(t, ensurer.subjects, EventSubjectPrefix+".draw_completed")
	assert.Len(t, ensurer.subjects, 9)
}
