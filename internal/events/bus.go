package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher for in-process event broadcasting.
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
// Usage: bus.Publish(OverrunEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches on the concrete type, so the generic
	// Publish must be called with it.
	switch e := ev.(type) {
	case StreamOpenedEvent:
		event.Publish(b.dispatcher, e)
	case StreamClosedEvent:
		event.Publish(b.dispatcher, e)
	case OverrunEvent:
		event.Publish(b.dispatcher, e)
	case UnderrunEvent:
		event.Publish(b.dispatcher, e)
	case BurstEndEvent:
		event.Publish(b.dispatcher, e)
	case SampleRateChangedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function. The handler's
// parameter type determines which events it receives. Returns an
// unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e OverrunEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(StreamOpenedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(StreamClosedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(OverrunEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(UnderrunEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(BurstEndEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SampleRateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}

// SubscribeToChannel bridges callback-based subscriptions to a channel, for
// select-loop consumers. Events are dropped if the channel is full.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}
