// Package events carries dashboard notifications from the board to
// interested listeners such as the WebSocket stream.
package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	ErrBusClosed  = errors.New("event bus is shutting down")
	ErrBufferFull = errors.New("event buffer full")
)

// DefaultBufferSize is used when NewBus gets a non-positive size.
const DefaultBufferSize = 100

// Listener receives one event. Listeners run on the bus goroutine in
// subscription order and should return quickly.
type Listener func(ctx context.Context, e Event) error

type entry struct {
	id     uint64
	name   string
	topics map[EventType]struct{}
	fn     Listener
}

func (e *entry) wants(t EventType) bool {
	_, ok := e.topics[t]
	return ok
}

// Bus queues published events and hands them to listeners from a single
// goroutine, so every listener sees events in publish order.
type Bus struct {
	mu      sync.RWMutex
	entries []*entry
	nextID  uint64

	queue  chan Event
	closed chan struct{}
	done   chan struct{}
	once   sync.Once
	logger *zap.Logger

	published atomic.Uint64
	dropped   atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
}

// NewBus starts a bus holding up to bufferSize undelivered events.
func NewBus(logger *zap.Logger, bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	b := &Bus{
		queue:  make(chan Event, bufferSize),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger.Named("event_bus"),
	}
	go b.loop()
	return b
}

// Subscribe registers fn under name for the given event types. A
// subscription with no types never fires.
func (b *Bus) Subscribe(name string, fn Listener, topics ...EventType) *Subscription {
	e := &entry{name: name, fn: fn, topics: make(map[EventType]struct{}, len(topics))}
	for _, t := range topics {
		e.topics[t] = struct{}{}
	}

	b.mu.Lock()
	b.nextID++
	e.id = b.nextID
	b.entries = append(b.entries, e)
	b.mu.Unlock()

	b.logger.Debug("Listener subscribed", zap.String("listener", name), zap.Int("types", len(topics)))
	return &Subscription{bus: b, id: e.id, name: name}
}

func (b *Bus) remove(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.entries {
		if e.id == id {
			b.entries = append(b.entries[:i:i], b.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Publish queues e without blocking. It fails once the bus is closing or
// when the queue is full; the event is dropped in both cases.
func (b *Bus) Publish(e Event) error {
	select {
	case <-b.closed:
		b.dropped.Add(1)
		return ErrBusClosed
	default:
	}

	select {
	case b.queue <- e:
		b.published.Add(1)
		return nil
	default:
		b.dropped.Add(1)
		b.logger.Warn("Event buffer full, dropping event", zap.String("event_type", string(e.Type())))
		return ErrBufferFull
	}
}

func (b *Bus) loop() {
	defer close(b.done)
	for {
		select {
		case e := <-b.queue:
			b.deliver(e)
		case <-b.closed:
			for {
				select {
				case e := <-b.queue:
					b.deliver(e)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) deliver(e Event) {
	b.mu.RLock()
	targets := make([]*entry, 0, len(b.entries))
	for _, en := range b.entries {
		if en.wants(e.Type()) {
			targets = append(targets, en)
		}
	}
	b.mu.RUnlock()

	for _, en := range targets {
		if err := en.fn(context.Background(), e); err != nil {
			b.failed.Add(1)
			b.logger.Error("Listener failed",
				zap.String("listener", en.name),
				zap.String("event_type", string(e.Type())),
				zap.Error(err))
			continue
		}
		b.delivered.Add(1)
	}
}

// Shutdown stops accepting events and waits until the queue is drained or
// ctx is done. It is safe to call more than once.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.once.Do(func() {
		b.logger.Info("Shutting down event bus", zap.Int("pending", len(b.queue)))
		close(b.closed)
	})

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		b.logger.Warn("Event bus shutdown timeout")
		return ctx.Err()
	}
}

// Stats is a point-in-time view of the bus counters.
type Stats struct {
	Capacity  int      `json:"capacity"`
	Pending   int      `json:"pending"`
	Published uint64   `json:"published"`
	Dropped   uint64   `json:"dropped"`
	Delivered uint64   `json:"delivered"`
	Failed    uint64   `json:"failed"`
	Listeners []string `json:"listeners"`
}

func (b *Bus) Stats() Stats {
	b.mu.RLock()
	names := make([]string, 0, len(b.entries))
	for _, e := range b.entries {
		names = append(names, e.name)
	}
	b.mu.RUnlock()

	return Stats{
		Capacity:  cap(b.queue),
		Pending:   len(b.queue),
		Published: b.published.Load(),
		Dropped:   b.dropped.Load(),
		Delivered: b.delivered.Load(),
		Failed:    b.failed.Load(),
		Listeners: names,
	}
}
