// internal/events/types.go
package events

import (
	"time"

	"github.com/rovshanmuradov/tokenboard/internal/types"
)

// EventType represents the type of event.
type EventType string

const (
	// Refresh events
	SnapshotRefreshed EventType = "snapshot.refreshed"
	RefreshFailed     EventType = "refresh.failed"

	// Portfolio events
	HoldingAdded   EventType = "holding.added"
	HoldingRemoved EventType = "holding.removed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType `json:"type"`
	EventTime time.Time `json:"time"`
}

// NewBase stamps an event of type t with the current time.
func NewBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now().UTC()}
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// SnapshotRefreshedEvent is emitted after a new token snapshot is stored.
type SnapshotRefreshedEvent struct {
	BaseEvent
	Provider string        `json:"provider"`
	Tokens   []types.Token `json:"tokens"`
	Duration time.Duration `json:"duration"`
}

// RefreshFailedEvent is emitted when the provider could not be read.
type RefreshFailedEvent struct {
	BaseEvent
	Provider string `json:"provider"`
	Error    string `json:"error"`
}

// HoldingAddedEvent is emitted when a holding enters the portfolio.
type HoldingAddedEvent struct {
	BaseEvent
	Holding types.Holding `json:"holding"`
}

// HoldingRemovedEvent is emitted when a holding leaves the portfolio.
type HoldingRemovedEvent struct {
	BaseEvent
	Holding types.Holding `json:"holding"`
}
