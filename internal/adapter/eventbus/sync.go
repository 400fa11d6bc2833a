// Package eventbus provides implementations of the EventBus interface.
package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// ErrClosed is returned by Close when the bus was already closed.
var ErrClosed = errors.New("event bus already closed")

// SyncEventBus delivers events synchronously on the publishing goroutine.
// Handlers run in subscription order; type-specific handlers run before
// wildcard handlers.
//
// Thread-safety: Publish, Subscribe and Unsubscribe may be called concurrently.
// Handlers are invoked without the lock held, so a handler may subscribe,
// unsubscribe or publish.
type SyncEventBus struct {
	logger *slog.Logger

	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	closed bool
}

// a subscription is either bound to one event type or to all of them.
type subscription struct {
	id        domain.SubscriptionID
	eventType domain.EventType
	wildcard  bool
	handler   domain.EventHandler
}

func (s subscription) matches(t domain.EventType) bool {
	return s.wildcard || s.eventType == t
}

// NewSyncEventBus creates a new synchronous event bus.
// A nil logger discards all bus diagnostics.
func NewSyncEventBus(logger *slog.Logger) *SyncEventBus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SyncEventBus{logger: logger}
}

// Publish delivers the event to all matching subscribers.
// Publishing on a closed bus or publishing nil does nothing.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	typed := make([]subscription, 0, len(bus.subs))
	var wildcard []subscription
	for _, sub := range bus.subs {
		switch {
		case sub.wildcard:
			wildcard = append(wildcard, sub)
		case sub.eventType == event.Type():
			typed = append(typed, sub)
		}
	}
	bus.mu.RUnlock()

	for _, sub := range typed {
		bus.deliver(sub, event)
	}
	for _, sub := range wildcard {
		bus.deliver(sub, event)
	}
}

// deliver calls one handler and recovers from its panic.
func (bus *SyncEventBus) deliver(sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			bus.logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("event_type", string(event.Type())),
				slog.String("subscription", string(sub.id)))
		}
	}()
	sub.handler(event)
}

// Subscribe registers a handler for events of the specified type.
// It panics on a nil handler or a closed bus, both of which are programming errors.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(subscription{eventType: eventType, handler: handler}, "sub")
}

// SubscribeAll registers a handler that receives every event.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(subscription{wildcard: true, handler: handler}, "sub-all")
}

func (bus *SyncEventBus) add(sub subscription, prefix string) domain.SubscriptionID {
	if sub.handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	bus.nextID++
	sub.id = domain.SubscriptionID(fmt.Sprintf("%s-%d", prefix, bus.nextID))
	bus.subs = append(bus.subs, sub)

	bus.logger.Debug("subscribed",
		slog.String("subscription", string(sub.id)),
		slog.String("event_type", string(sub.eventType)))
	return sub.id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	for i, sub := range bus.subs {
		if sub.id == id {
			// keep delivery order stable for the remaining subscribers
			bus.subs = append(bus.subs[:i:i], bus.subs[i+1:]...)
			return
		}
	}
}

// HasSubscribers returns true if an event of this type would reach any handler.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, sub := range bus.subs {
		if sub.matches(eventType) {
			return true
		}
	}
	return false
}

// Close drops all subscriptions. Later publishes are ignored.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return ErrClosed
	}
	bus.closed = true
	bus.subs = nil
	return nil
}

// SubscriberCount returns the number of active subscriptions.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subs)
}

// Verify that SyncEventBus implements the EventBus interface
var _ ports.EventBus = (*SyncEventBus)(nil)
