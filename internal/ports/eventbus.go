// Package ports define interfaces for dependency inversion.
// These interfaces keep the services independent of HTTP, audio and GUI frameworks.
package ports

import (
	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// EventBus is the interface for publishing and subscribing to events.
//
// Services publish a snapshot after every state change and views subscribe to
// re-render. Publishers do not know who is listening.
//
// Thread-safety: Implementations must be thread-safe as events may be published and
// subscribed from multiple goroutines simultaneously.
//
// Example usage:
//
//	subID := bus.Subscribe(domain.EventTransportChanged, func(event domain.Event) {
//	    e := event.(domain.TransportChangedEvent)
//	    view.SetProgress(e.State.Progress())
//	})
//	defer bus.Unsubscribe(subID)
type EventBus interface {
	// Publish delivers an event to all subscribers of its type.
	// Handlers should return quickly.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the specified type.
	// Each subscription gets a unique SubscriptionID.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered event handler.
	// If the subscription ID is invalid or already unsubscribed, this is a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler that receives all events regardless of type.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers returns true if there are any active subscriptions for the given event type.
	HasSubscribers(eventType domain.EventType) bool

	// Close shuts down the event bus and cleans up resources.
	Close() error
}
