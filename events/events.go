package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAccountCreated EventType = "account_created"
	EventTypeBetOpened      EventType = "bet_opened"
	EventTypeBetJoined      EventType = "bet_joined"
	EventTypeBetSettled     EventType = "bet_settled"
	EventTypeBetCancelled   EventType = "bet_cancelled"
)

// AllEventTypes lists every event type, for subscribers that forward everything
var AllEventTypes = []EventType{
	EventTypeAccountCreated,
	EventTypeBetOpened,
	EventTypeBetJoined,
	EventTypeBetSettled,
	EventTypeBetCancelled,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AccountCreatedEvent is emitted after a custodial account is created.
// It never carries key material.
type AccountCreatedEvent struct {
	ExternalID string `json:"external_id"`
	PublicKey  string `json:"public_key"`
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// BetOpenedEvent is emitted after initialize succeeds on-chain
type BetOpenedEvent struct {
	GameIdentifier string `json:"game_identifier"`
	InitializerID  string `json:"initializer_id"`
	Amount         uint64 `json:"amount"`
	TxRef          string `json:"tx_ref"`
}

func (e BetOpenedEvent) Type() EventType {
	return EventTypeBetOpened
}

// BetJoinedEvent is emitted after deposit succeeds on-chain
type BetJoinedEvent struct {
	GameIdentifier string `json:"game_identifier"`
	InitializerID  string `json:"initializer_id"`
	JoinerID       string `json:"joiner_id"`
	TxRef          string `json:"tx_ref"`
}

func (e BetJoinedEvent) Type() EventType {
	return EventTypeBetJoined
}

// BetSettledEvent is emitted after outcome pays the winner
type BetSettledEvent struct {
	GameIdentifier string `json:"game_identifier"`
	WinnerID       string `json:"winner_id"`
	LoserID        string `json:"loser_id"`
	TxRef          string `json:"tx_ref"`
}

func (e BetSettledEvent) Type() EventType {
	return EventTypeBetSettled
}

// BetCancelledEvent is emitted after an unjoined bet is refunded
type BetCancelledEvent struct {
	GameIdentifier string `json:"game_identifier"`
	InitializerID  string `json:"initializer_id"`
	TxRef          string `json:"tx_ref"`
}

func (e BetCancelledEvent) Type() EventType {
	return EventTypeBetCancelled
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
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

// SubscribeAll adds a handler for every event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes {
		b.Subscribe(eventType, handler)
	}
}

// Emit publishes an event to all registered handlers.
// Handlers run asynchronously with a context detached from the caller's
// cancellation, so a finished command does not abort its event delivery.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	handlerCtx := context.WithoutCancel(ctx)
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(handlerCtx, event)
		}(handler, i)
	}
}
