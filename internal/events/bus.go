// Package events provides the in-process event bus. Link transitions,
// command results, telemetry drops, and session loss are published here;
// the Recorder keeps a ring of them for the status API.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(LinkStateChangedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event's Publish is generic; dispatch per concrete type.
	switch e := ev.(type) {
	case LinkStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case CommandResultEvent:
		event.Publish(b.dispatcher, e)
	case TelemetryDroppedEvent:
		event.Publish(b.dispatcher, e)
	case SessionLostEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes a handler function; the handler's parameter type
// selects which events it receives. Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e LinkStateChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(LinkStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(CommandResultEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(TelemetryDroppedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SessionLostEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
