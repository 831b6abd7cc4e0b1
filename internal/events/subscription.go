package events

import (
	"sync"

	"go.uber.org/zap"
)

// Subscription is the handle returned by Bus.Subscribe.
type Subscription struct {
	bus  *Bus
	id   uint64
	name string
	once sync.Once
}

// Cancel removes the listener from later deliveries.
// Later calls are no-ops.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		if s.bus.remove(s.id) {
			s.bus.logger.Debug("Listener removed", zap.String("listener", s.name))
		}
	})
}
