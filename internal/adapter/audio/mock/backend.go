// Package mock provides a scriptable implementation of the MediaBackend interface.
// It is used for testing the transport service without a sound device, and as a
// silent backend when no audio output is available.
package mock

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// eventBuffer is deep enough for every test script and for the simulation ticker.
const eventBuffer = 256

// Backend records the commands it receives and emits events on demand.
//
// A successful Open makes the stream current at once and queues MediaReady
// (plus MediaDuration when the request carries a length). HoldOpens parks
// requests instead, so tests can observe a load that has not finished.
//
// Thread-safety: This implementation is thread-safe.
type Backend struct {
	logger *slog.Logger

	mu         sync.Mutex
	events     chan domain.MediaEvent
	closed     bool
	url        string
	generation uint64
	playing    bool
	position   float64
	length     float64
	opened     []string
	calls      []string

	// Behavior configuration (for testing error scenarios)
	failOpen   error
	failResume error
	hold       bool
	pending    *domain.StreamRequest

	// simulation
	simStop chan struct{}
	simDone chan struct{}
}

// NewBackend creates a new mock backend.
func NewBackend() *Backend {
	return &Backend{
		logger: slog.New(slog.DiscardHandler),
		events: make(chan domain.MediaEvent, eventBuffer),
	}
}

// SetLogger sets the logger for this backend.
func (m *Backend) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// SetFailOpen makes the next loads fail with err (nil restores success).
// The failure is reported as a MediaError for the requested generation.
func (m *Backend) SetFailOpen(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOpen = err
}

// SetFailResume makes Resume fail with err (nil restores success).
func (m *Backend) SetFailResume(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failResume = err
}

// Open loads the requested stream, or parks it while opens are held.
func (m *Backend) Open(ctx context.Context, req domain.StreamRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, "open")
	if m.closed {
		return domain.ErrBackendClosed
	}
	if m.hold {
		m.pending = &req
		return nil
	}
	m.pending = nil
	m.finishLocked(req, ctx.Err())
	return nil
}

// finishLocked completes a load. The current stream is untouched when the
// load fails.
func (m *Backend) finishLocked(req domain.StreamRequest, err error) {
	if err == nil {
		err = m.failOpen
	}
	if err != nil {
		m.logger.Debug("stream load failed", slog.String("url", req.URL), slog.Any("error", err))
		m.sendLocked(domain.MediaEvent{Kind: domain.MediaError, Generation: req.Generation, Err: err})
		return
	}

	m.url = req.URL
	m.generation = req.Generation
	m.length = req.Duration
	m.playing = true
	m.position = 0
	m.opened = append(m.opened, req.URL)
	m.logger.Debug("stream opened", slog.String("url", req.URL), slog.Uint64("generation", req.Generation))

	m.emitLocked(domain.MediaEvent{Kind: domain.MediaReady})
	if req.Duration > 0 {
		m.emitLocked(domain.MediaEvent{Kind: domain.MediaDuration, Seconds: req.Duration})
	}
}

// HoldOpens parks every following Open until ReleaseOpen. A newer Open
// replaces the parked request, as a real backend abandons a pending load.
func (m *Backend) HoldOpens() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hold = true
}

// ReleaseOpen stops holding and completes the parked request, if any.
func (m *Backend) ReleaseOpen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hold = false
	if req := m.pending; req != nil && !m.closed {
		m.pending = nil
		m.finishLocked(*req, nil)
	}
}

// Pending returns the parked request.
func (m *Backend) Pending() (domain.StreamRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return domain.StreamRequest{}, false
	}
	return *m.pending, true
}

// Pause pauses the current stream.
func (m *Backend) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "pause")
	if m.closed {
		return domain.ErrBackendClosed
	}
	m.playing = false
	return nil
}

// Resume resumes the current stream.
func (m *Backend) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "resume")
	if m.closed {
		return domain.ErrBackendClosed
	}
	if m.failResume != nil {
		return m.failResume
	}
	m.playing = m.url != ""
	return nil
}

// Seek moves the current stream position.
func (m *Backend) Seek(seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "seek")
	if m.closed {
		return domain.ErrBackendClosed
	}
	m.position = seconds
	return nil
}

// Stop ends the current stream.
func (m *Backend) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "stop")
	if m.closed {
		return domain.ErrBackendClosed
	}
	m.url = ""
	m.pending = nil
	m.playing = false
	m.position = 0
	return nil
}

// Events returns the event channel.
func (m *Backend) Events() <-chan domain.MediaEvent {
	return m.events
}

// Close stops the simulation and closes the event channel.
func (m *Backend) Close() error {
	m.StopSimulation()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return domain.ErrBackendClosed
	}
	m.closed = true
	close(m.events)
	return nil
}

// Emit sends an event tagged with the current generation.
func (m *Backend) Emit(kind domain.MediaEventKind, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emitLocked(domain.MediaEvent{Kind: kind, Seconds: seconds})
}

// EmitError sends a MediaError event for the current generation.
func (m *Backend) EmitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emitLocked(domain.MediaEvent{Kind: domain.MediaError, Err: err})
}

// EmitFor sends an event tagged with an explicit generation, e.g. a late
// signal from a stream that was already replaced.
func (m *Backend) EmitFor(generation uint64, kind domain.MediaEventKind, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendLocked(domain.MediaEvent{Kind: kind, Seconds: seconds, Generation: generation})
}

// emitLocked tags ev with the current stream and applies it to the mock state.
// It must be called with m.mu held.
func (m *Backend) emitLocked(ev domain.MediaEvent) {
	ev.Generation = m.generation
	switch ev.Kind {
	case domain.MediaPosition:
		m.position = ev.Seconds
	case domain.MediaExternalPause, domain.MediaCompleted:
		m.playing = false
	case domain.MediaExternalPlay:
		m.playing = true
	}
	m.sendLocked(ev)
}

// sendLocked queues ev without blocking. It must be called with m.mu held.
func (m *Backend) sendLocked(ev domain.MediaEvent) {
	if m.closed {
		return
	}
	select {
	case m.events <- ev:
	default:
		m.logger.Warn("event buffer full, dropping event", slog.String("kind", ev.Kind.String()))
	}
}

// StartSimulation advances the position of a playing stream by the elapsed
// wall time every interval and completes it at the length given to Open.
// Streams of unknown length play until stopped.
func (m *Backend) StartSimulation(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.simStop != nil || m.closed {
		return
	}
	m.simStop = make(chan struct{})
	m.simDone = make(chan struct{})

	go m.simulate(interval, m.simStop, m.simDone)
}

// StopSimulation stops the simulation goroutine and waits for it to exit.
func (m *Backend) StopSimulation() {
	m.mu.Lock()
	stop, done := m.simStop, m.simDone
	m.simStop, m.simDone = nil, nil
	m.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

func (m *Backend) simulate(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			if m.playing && m.url != "" {
				next := m.position + interval.Seconds()
				if m.length > 0 && next >= m.length {
					m.emitLocked(domain.MediaEvent{Kind: domain.MediaPosition, Seconds: m.length})
					m.emitLocked(domain.MediaEvent{Kind: domain.MediaCompleted})
				} else {
					m.emitLocked(domain.MediaEvent{Kind: domain.MediaPosition, Seconds: next})
				}
			}
			m.mu.Unlock()
		}
	}
}

// Inspection helpers

// Opened returns the url of every load that succeeded.
func (m *Backend) Opened() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.opened)
}

// Calls returns the names of all commands received so far.
func (m *Backend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// Generation returns the generation of the current stream.
func (m *Backend) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// IsPlaying reports whether the mock considers its stream audible.
func (m *Backend) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Position returns the last position set by Seek or an emitted position event.
func (m *Backend) Position() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// ErrMockOpen is a ready-made failure for SetFailOpen.
var ErrMockOpen = errors.New("mock open failed")

// Verify that Backend implements the MediaBackend interface
var _ ports.MediaBackend = (*Backend)(nil)
