package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	received := make(chan BetOpenedEvent, 1)

	bus.Subscribe(EventTypeBetOpened, func(ctx context.Context, event Event) {
		if opened, ok := event.(BetOpenedEvent); ok {
			received <- opened
		}
	})

	bus.Emit(context.Background(), BetOpenedEvent{GameIdentifier: "g", InitializerID: "alice", Amount: 50})

	select {
	case event := <-received:
		assert.Equal(t, "g", event.GameIdentifier)
		assert.Equal(t, uint64(50), event.Amount)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestBus_OnlyMatchingTypes(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	var seen []EventType
	var wg sync.WaitGroup

	bus.Subscribe(EventTypeBetSettled, func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		seen = append(seen, event.Type())
		mu.Unlock()
	})

	wg.Add(1)
	bus.Emit(context.Background(), BetJoinedEvent{GameIdentifier: "g"})
	bus.Emit(context.Background(), BetSettledEvent{GameIdentifier: "g"})
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []EventType{EventTypeBetSettled}, seen)
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()
	var wg sync.WaitGroup
	var mu sync.Mutex
	counts := make(map[EventType]int)

	bus.SubscribeAll(func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		counts[event.Type()]++
		mu.Unlock()
	})

	all := []Event{
		AccountCreatedEvent{ExternalID: "a"},
		BetOpenedEvent{},
		BetJoinedEvent{},
		BetSettledEvent{},
		BetCancelledEvent{},
	}
	wg.Add(len(all))
	for _, event := range all {
		bus.Emit(context.Background(), event)
	}
	wg.Wait()

	require.Len(t, counts, len(AllEventTypes))
	for _, eventType := range AllEventTypes {
		assert.Equal(t, 1, counts[eventType], eventType)
	}
}

func TestBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewBus()
	done := make(chan struct{})

	bus.Subscribe(EventTypeBetCancelled, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeBetCancelled, func(ctx context.Context, event Event) {
		close(done)
	})

	bus.Emit(context.Background(), BetCancelledEvent{})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second handler did not run")
	}
}

func TestBus_HandlersOutliveCallerContext(t *testing.T) {
	bus := NewBus()
	errs := make(chan error, 1)

	bus.Subscribe(EventTypeBetOpened, func(ctx context.Context, event Event) {
		time.Sleep(10 * time.Millisecond)
		errs <- ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	bus.Emit(ctx, BetOpenedEvent{})
	cancel()

	select {
	case err := <-errs:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("handler did not run")
	}
}

func TestBus_EmitDoesNotWaitForHandlers(t *testing.T) {
	bus := NewBus()
	release := make(chan struct{})
	finished := make(chan struct{})

	bus.Subscribe(EventTypeBetJoined, func(ctx context.Context, event Event) {
		<-release
		close(finished)
	})

	emitted := make(chan struct{})
	go func() {
		bus.Emit(context.Background(), BetJoinedEvent{GameIdentifier: "g"})
		close(emitted)
	}()

	select {
	case <-emitted:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a handler")
	}

	close(release)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("handler did not finish")
	}
}
