package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeStakeDeposited      EventType = "stake_deposited"
	EventTypeStakeUnwound        EventType = "stake_unwound"
	EventTypeTokensWithdrawn     EventType = "tokens_withdrawn"
	EventTypeStakeRedelegated    EventType = "stake_redelegated"
	EventTypeDrawCompleted       EventType = "draw_completed"
	EventTypeTriggerFeeWithdrawn EventType = "trigger_fee_withdrawn"
	EventTypeLifecycleChanged    EventType = "lifecycle_changed"
	EventTypeConfigChanged       EventType = "config_changed"
	EventTypePoolInitialized     EventType = "pool_initialized"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// Amounts are decimal strings so events stay JSON friendly.

// StakeDepositedEvent is emitted when a deposit enters the pool
type StakeDepositedEvent struct {
	Address   string `json:"address"`
	Amount    string `json:"amount"`
	Forwarded string `json:"forwarded"`
	EntryTime uint64 `json:"entry_time"`
}

func (e StakeDepositedEvent) Type() EventType { return EventTypeStakeDeposited }

// StakeUnwoundEvent is emitted when principal moves from stake to the withdrawable balance
type StakeUnwoundEvent struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

func (e StakeUnwoundEvent) Type() EventType { return EventTypeStakeUnwound }

// TokensWithdrawnEvent is emitted when tokens leave the pool to a user
type TokensWithdrawnEvent struct {
	Address   string `json:"address"`
	Amount    string `json:"amount"`
	Principal string `json:"principal"`
}

func (e TokensWithdrawnEvent) Type() EventType { return EventTypeTokensWithdrawn }

// StakeRedelegatedEvent is emitted when a user restakes their withdrawable balance
type StakeRedelegatedEvent struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

func (e StakeRedelegatedEvent) Type() EventType { return EventTypeStakeRedelegated }

// DrawCompletedEvent is emitted for every draw attempt that advanced the window
type DrawCompletedEvent struct {
	Status      string `json:"status"`
	Winner      string `json:"winner,omitempty"`
	Prize       string `json:"prize"`
	Fee         string `json:"fee"`
	Payout      string `json:"payout"`
	Candidates  int    `json:"candidates"`
	BlockTime   uint64 `json:"block_time"`
	NextEndTime uint64 `json:"next_end_time"`
}

func (e DrawCompletedEvent) Type() EventType { return EventTypeDrawCompleted }

// TriggerFeeWithdrawnEvent is emitted when the accrued trigger fee is paid out
type TriggerFeeWithdrawnEvent struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

func (e TriggerFeeWithdrawnEvent) Type() EventType { return EventTypeTriggerFeeWithdrawn }

// LifecycleChangedEvent is emitted on stop, resume and recovery transitions
type LifecycleChangedEvent struct {
	Action         string `json:"action"`
	OldState       string `json:"old_state"`
	NewState       string `json:"new_state"`
	RecoveredFunds string `json:"recovered_funds"`
}

func (e LifecycleChangedEvent) Type() EventType { return EventTypeLifecycleChanged }

// ConfigChangedEvent is emitted when an admin setter changes a value
type ConfigChangedEvent struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (e ConfigChangedEvent) Type() EventType { return EventTypeConfigChanged }

// PoolInitializedEvent is emitted once, when the pool is created
type PoolInitializedEvent struct {
	Admin     string `json:"admin"`
	Triggerer string `json:"triggerer"`
	StartTime uint64 `json:"start_time"`
	EndTime   uint64 `json:"end_time"`
}

func (e PoolInitializedEvent) Type() EventType { return EventTypePoolInitialized }

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages in-process event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit calls every handler registered for the event's type.
// Handlers run synchronously; a panicking handler is logged and skipped.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for i, handler := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": i,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			handler(ctx, event)
		}()
	}
}
