package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recorder collects the events a listener receives.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) listen(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type())
	}
	return out
}

func TestBusDeliversMatchingTypesInOrder(t *testing.T) {
	bus := NewBus(zap.NewNop(), 10)
	defer bus.Shutdown(context.Background())

	var portfolio, refresh recorder
	bus.Subscribe("portfolio", portfolio.listen, HoldingAdded, HoldingRemoved)
	bus.Subscribe("refresh", refresh.listen, SnapshotRefreshed)

	require.NoError(t, bus.Publish(HoldingAddedEvent{BaseEvent: NewBase(HoldingAdded)}))
	require.NoError(t, bus.Publish(SnapshotRefreshedEvent{BaseEvent: NewBase(SnapshotRefreshed), Provider: "mock"}))
	require.NoError(t, bus.Publish(HoldingRemovedEvent{BaseEvent: NewBase(HoldingRemoved)}))

	require.Eventually(t, func() bool { return portfolio.len() == 2 && refresh.len() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []EventType{HoldingAdded, HoldingRemoved}, portfolio.types())

	ev, ok := refresh.events[0].(SnapshotRefreshedEvent)
	require.True(t, ok)
	assert.Equal(t, "mock", ev.Provider)
}

func TestSubscriptionCancel(t *testing.T) {
	bus := NewBus(zap.NewNop(), 10)

	var rec recorder
	sub := bus.Subscribe("ws", rec.listen, RefreshFailed)
	assert.Equal(t, []string{"ws"}, bus.Stats().Listeners)

	sub.Cancel()
	sub.Cancel()
	assert.Empty(t, bus.Stats().Listeners)

	require.NoError(t, bus.Publish(RefreshFailedEvent{BaseEvent: NewBase(RefreshFailed)}))
	require.NoError(t, bus.Shutdown(context.Background()))
	assert.Zero(t, rec.len())
}

func TestBusCountsFailuresAndDrops(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)

	release := make(chan struct{})
	bus.Subscribe("slow", func(context.Context, Event) error {
		<-release
		return errors.New("boom")
	}, HoldingAdded)

	// The first event occupies the listener, the second fills the queue and
	// the rest are dropped.
	require.NoError(t, bus.Publish(HoldingAddedEvent{BaseEvent: NewBase(HoldingAdded)}))
	require.Eventually(t, func() bool { return bus.Stats().Pending == 0 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, bus.Publish(HoldingAddedEvent{BaseEvent: NewBase(HoldingAdded)}))
	assert.ErrorIs(t, bus.Publish(HoldingAddedEvent{BaseEvent: NewBase(HoldingAdded)}), ErrBufferFull)

	close(release)
	require.NoError(t, bus.Shutdown(context.Background()))

	st := bus.Stats()
	assert.Equal(t, 1, st.Capacity)
	assert.Equal(t, uint64(2), st.Published)
	assert.Equal(t, uint64(1), st.Dropped)
	assert.Equal(t, uint64(2), st.Failed)
	assert.Zero(t, st.Delivered)
}

func TestBusShutdownDrainsAndRejects(t *testing.T) {
	bus := NewBus(zap.NewNop(), 10)

	var rec recorder
	bus.Subscribe("portfolio", rec.listen, HoldingRemoved)

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(HoldingRemovedEvent{BaseEvent: NewBase(HoldingRemoved)}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, bus.Shutdown(ctx))
	require.NoError(t, bus.Shutdown(ctx))

	assert.Equal(t, 5, rec.len())
	assert.ErrorIs(t, bus.Publish(HoldingRemovedEvent{BaseEvent: NewBase(HoldingRemoved)}), ErrBusClosed)
	assert.Equal(t, uint64(5), bus.Stats().Delivered)
}
