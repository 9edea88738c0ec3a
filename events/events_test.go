package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversBySubscribedType(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var received []Event
	bus.Subscribe(EventTypeDrawCompleted, func(_ context.Context, e Event) {
		received = append(received, e)
	})

	bus.Emit(context.Background(), DrawCompletedEvent{Status: "winner", Winner: "alice"})
	bus.Emit(context.Background(), StakeDepositedEvent{Address: "bob", Amount: "1000000"})

	require.Len(t, received, 1)
	assert.Equal(t, "alice", received[0].(DrawCompletedEvent).Winner)
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	calls := 0
	bus.Subscribe(EventTypeConfigChanged, func(context.Context, Event) { panic("boom") })
	bus.Subscribe(EventTypeConfigChanged, func(context.Context, Event) { calls++ })

	bus.Emit(context.Background(), ConfigChangedEvent{Field: "admin", Value: "carol"})
	assert.Equal(t, 1, calls)
}
