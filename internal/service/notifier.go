package service

import (
	"sync"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// notifier publishes events on its own goroutine, in the order they were
// queued. Services queue events while holding their own lock, so handlers
// always observe states in commit order and may call back into the service.
type notifier struct {
	bus ports.EventBus

	mu         sync.Mutex
	cond       *sync.Cond
	queue      []domain.Event
	delivering bool
	closed     bool
	done       chan struct{}
}

func newNotifier(bus ports.EventBus) *notifier {
	n := &notifier{
		bus:  bus,
		done: make(chan struct{}),
	}
	n.cond = sync.NewCond(&n.mu)
	go n.run()
	return n
}

// publish queues events. It never blocks on handlers.
func (n *notifier) publish(events ...domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed || n.bus == nil {
		return
	}
	n.queue = append(n.queue, events...)
	n.cond.Broadcast()
}

func (n *notifier) run() {
	defer close(n.done)

	n.mu.Lock()
	defer n.mu.Unlock()

	for {
		for len(n.queue) == 0 && !n.closed {
			n.cond.Wait()
		}
		if len(n.queue) == 0 {
			return
		}

		ev := n.queue[0]
		n.queue[0] = nil
		n.queue = n.queue[1:]
		n.delivering = true
		n.mu.Unlock()

		n.bus.Publish(ev)

		n.mu.Lock()
		n.delivering = false
		n.cond.Broadcast()
	}
}

// flush waits until every queued event has been delivered.
// It must not be called from an event handler.
func (n *notifier) flush() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for len(n.queue) > 0 || n.delivering {
		n.cond.Wait()
	}
}

// close delivers what is already queued and stops the goroutine.
func (n *notifier) close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		<-n.done
		return
	}
	n.closed = true
	n.cond.Broadcast()
	n.mu.Unlock()
	<-n.done
}
