package service

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// StreamLocator resolves a song id to the URL the media backend plays.
// ports.CatalogClient satisfies it.
type StreamLocator interface {
	StreamURL(songID string) string
}

// pendingStart is a song whose stream was requested but is not audible yet.
// prev is the state to return to when the load fails.
type pendingStart struct {
	gen     uint64
	song    domain.Song
	auto    bool
	prev    domain.TransportState
	prevGen uint64
}

// command is a unit of work executed on the transport loop.
type command struct {
	run  func()
	done chan struct{}
}

// TransportService is the playback state machine.
//
// All state lives on a single loop goroutine. User commands are sent to the
// loop and the caller waits for them to finish; media backend events are
// read from the backend's channel by the same loop. One command or event is
// processed to completion before the next, so a snapshot is always
// internally consistent. Starting a song only asks the backend for the
// stream; the song becomes Playing when the backend reports it ready, so a
// slow stream never holds up later commands.
//
// Navigation (next, previous, auto-advance) works on the collection given
// to SetCollection. When the current song is not part of that collection,
// navigation is a no-op and the current song keeps playing.
type TransportService struct {
	logger  *slog.Logger
	backend ports.MediaBackend
	streams StreamLocator
	notify  *notifier

	ctx       context.Context
	cancel    context.CancelFunc
	cmds      chan command
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// owned by the loop goroutine
	state     domain.TransportState
	songs     []domain.Song
	nextGen   uint64
	activeGen uint64
	pending   *pendingStart

	// published copy for readers
	mu       sync.RWMutex
	snap     domain.TransportState
	navigate bool
}

// NewTransportService creates the service and starts its loop.
// The service takes ownership of the backend and closes it on Shutdown.
func NewTransportService(logger *slog.Logger, backend ports.MediaBackend, streams StreamLocator, bus ports.EventBus) *TransportService {
	ctx, cancel := context.WithCancel(context.Background())
	t := &TransportService{
		logger:  logger,
		backend: backend,
		streams: streams,
		notify:  newNotifier(bus),
		ctx:     ctx,
		cancel:  cancel,
		cmds:    make(chan command),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go t.loop()
	return t
}

// Snapshot returns a copy of the current transport state.
func (t *TransportService) Snapshot() domain.TransportState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap := t.snap
	if snap.Current != nil {
		song := *snap.Current
		snap.Current = &song
	}
	return snap
}

// HasNavigation reports whether next/previous can reach another song.
func (t *TransportService) HasNavigation() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.navigate
}

// SetCollection replaces the navigation universe. Playback is not interrupted.
func (t *TransportService) SetCollection(songs []domain.Song) error {
	songs = slices.Clone(songs)
	return t.exec(func() {
		t.songs = songs
		t.commit()
	})
}

// Collection returns the navigation universe.
func (t *TransportService) Collection() ([]domain.Song, error) {
	var songs []domain.Song
	err := t.exec(func() {
		songs = slices.Clone(t.songs)
	})
	return songs, err
}

// SelectSong plays a song. Selecting the current song toggles between
// playing and paused; any other song starts from the beginning.
func (t *TransportService) SelectSong(song domain.Song) error {
	return t.exec(func() {
		t.selectSong(song)
	})
}

// Play resumes a paused song, or starts the first song of the collection
// when nothing is current.
func (t *TransportService) Play() error {
	return t.exec(func() {
		switch t.state.Status {
		case domain.StatusPaused:
			t.resume()
		case domain.StatusIdle:
			if len(t.songs) > 0 {
				t.start(t.songs[0], false)
			}
		}
	})
}

// Pause pauses a playing song.
func (t *TransportService) Pause() error {
	return t.exec(t.pause)
}

// Resume resumes a paused song.
func (t *TransportService) Resume() error {
	return t.exec(t.resume)
}

// Toggle switches between playing and paused, starting playback from idle.
func (t *TransportService) Toggle() error {
	return t.exec(func() {
		switch t.state.Status {
		case domain.StatusPlaying:
			t.pause()
		case domain.StatusPaused:
			t.resume()
		case domain.StatusIdle:
			if len(t.songs) > 0 {
				t.start(t.songs[0], false)
			}
		}
	})
}

// Advance moves to the next or previous song of the collection, wrapping
// around at both ends. The target always starts from position zero.
func (t *TransportService) Advance(dir domain.Direction) error {
	return t.exec(func() {
		t.advance(dir, false)
	})
}

// Next is Advance(domain.Next).
func (t *TransportService) Next() error {
	return t.Advance(domain.Next)
}

// Previous is Advance(domain.Previous).
func (t *TransportService) Previous() error {
	return t.Advance(domain.Previous)
}

// Seek moves the current song to the given position in seconds, clamped to
// the known duration.
func (t *TransportService) Seek(seconds float64) error {
	return t.exec(func() {
		if t.state.Current == nil || t.state.Status == domain.StatusLoading {
			return
		}
		seconds = math.Max(0, seconds)
		if t.state.Duration > 0 {
			seconds = math.Min(seconds, t.state.Duration)
		}
		if err := t.backend.Seek(seconds); err != nil {
			t.fail("seek", err, false)
			return
		}
		t.state.Position = seconds
		t.commit()
	})
}

// Stop ends playback and returns to idle.
func (t *TransportService) Stop() error {
	return t.exec(func() {
		if t.state.Current == nil {
			return
		}
		if err := t.backend.Stop(); err != nil {
			t.logger.Warn("failed to stop backend", slog.Any("error", err))
		}
		t.pending = nil
		t.activeGen = 0
		t.state = domain.TransportState{Status: domain.StatusIdle}
		t.commit()
	})
}

// WaitIdle blocks until every command and media event queued so far has been
// processed and its notifications delivered. It must not be called from an
// event handler.
func (t *TransportService) WaitIdle() error {
	if err := t.exec(func() {}); err != nil {
		return err
	}
	t.notify.flush()
	return nil
}

// Shutdown stops the loop and closes the media backend.
func (t *TransportService) Shutdown() error {
	var err error
	t.closeOnce.Do(func() {
		t.cancel()
		close(t.quit)
		<-t.done

		if cerr := t.backend.Close(); cerr != nil {
			err = cerr
		}
		t.notify.close()
	})
	return err
}

// exec runs fn on the loop and waits for it.
func (t *TransportService) exec(fn func()) error {
	cmd := command{run: fn, done: make(chan struct{})}
	select {
	case t.cmds <- cmd:
	case <-t.quit:
		return domain.ErrServiceClosed
	}
	<-cmd.done
	return nil
}

func (t *TransportService) loop() {
	defer close(t.done)

	events := t.backend.Events()
	for {
		select {
		case <-t.quit:
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			t.handleMedia(ev)
		case cmd := <-t.cmds:
			// apply media events that were queued before the command
			events = t.drain(events)
			cmd.run()
			close(cmd.done)
		}
	}
}

func (t *TransportService) drain(events <-chan domain.MediaEvent) <-chan domain.MediaEvent {
	for events != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			t.handleMedia(ev)
		default:
			return events
		}
	}
	return nil
}

// Transitions (loop goroutine only)

func (t *TransportService) selectSong(song domain.Song) {
	if t.state.Current != nil && t.state.Current.ID == song.ID {
		switch t.state.Status {
		case domain.StatusPlaying:
			t.pause()
		case domain.StatusPaused:
			t.resume()
		}
		return
	}
	t.start(song, false)
}

// start requests a song from position zero. The previous state is kept
// aside until the backend reports the outcome of the load.
func (t *TransportService) start(song domain.Song, auto bool) {
	prev, prevGen := t.state, t.activeGen
	if t.pending != nil {
		// the superseded load never became audible
		prev, prevGen = t.pending.prev, t.pending.prevGen
	}

	t.nextGen++
	gen := t.nextGen
	t.activeGen = gen
	t.pending = &pendingStart{gen: gen, song: song, auto: auto, prev: prev, prevGen: prevGen}

	current := song
	t.state = domain.TransportState{Status: domain.StatusLoading, Current: &current}
	t.commit()

	req := domain.StreamRequest{
		URL:        t.streams.StreamURL(song.ID),
		Generation: gen,
		Duration:   math.Max(0, song.Duration),
	}
	if err := t.backend.Open(t.ctx, req); err != nil {
		t.failStart(err)
		return
	}
	t.logger.Debug("song requested",
		slog.String("song_id", song.ID),
		slog.Bool("auto", auto),
		slog.Uint64("generation", gen))
}

// started completes the pending start once its stream is audible.
func (t *TransportService) started() {
	p := t.pending
	t.pending = nil

	t.state.Status = domain.StatusPlaying
	t.commit()
	t.notify.publish(domain.NewSongStartedEvent(p.song, p.auto))
	t.logger.Debug("song started",
		slog.String("song_id", p.song.ID),
		slog.Bool("auto", p.auto),
		slog.Uint64("generation", p.gen))
}

// failStart restores the state from before the pending start and records
// the failure.
func (t *TransportService) failStart(err error) {
	p := t.pending
	t.pending = nil

	msg := "media backend error"
	if err != nil {
		msg = err.Error()
	}
	t.logger.Warn("failed to open song",
		slog.String("song_id", p.song.ID),
		slog.Uint64("generation", p.gen),
		slog.Any("error", err))

	t.activeGen = p.prevGen
	t.state = p.prev
	perr := domain.NewPlaybackError("open", p.song.ID, msg, err)
	t.state.Err = perr
	t.commit()

	song := p.song
	t.notify.publish(domain.NewPlaybackErrorEvent(&song, perr))
}

func (t *TransportService) pause() {
	if t.state.Status != domain.StatusPlaying {
		return
	}
	if err := t.backend.Pause(); err != nil {
		t.fail("pause", err, false)
		return
	}
	t.state.Status = domain.StatusPaused
	t.commit()
}

func (t *TransportService) resume() {
	if t.state.Status != domain.StatusPaused {
		return
	}
	if err := t.backend.Resume(); err != nil {
		t.fail("resume", err, false)
		return
	}
	t.state.Status = domain.StatusPlaying
	t.state.Err = nil
	t.commit()
}

func (t *TransportService) advance(dir domain.Direction, auto bool) {
	if t.state.Current == nil || len(t.songs) == 0 {
		return
	}
	currentID := t.state.Current.ID
	_, idx, found := lo.FindIndexOf(t.songs, func(s domain.Song) bool { return s.ID == currentID })
	if !found {
		t.logger.Debug("current song not in collection, ignoring advance",
			slog.String("song_id", currentID),
			slog.String("direction", dir.String()))
		return
	}

	n := len(t.songs)
	var target int
	switch dir {
	case domain.Previous:
		if idx == 0 {
			target = n - 1
		} else {
			target = idx - 1
		}
	default:
		target = (idx + 1) % n
	}
	t.start(t.songs[target], auto)
}

func (t *TransportService) handleMedia(ev domain.MediaEvent) {
	if ev.Generation != t.activeGen || t.state.Current == nil {
		t.logger.Debug("dropping stale media event",
			slog.String("kind", ev.Kind.String()),
			slog.Uint64("generation", ev.Generation),
			slog.Uint64("active", t.activeGen))
		return
	}

	switch ev.Kind {
	case domain.MediaReady:
		if t.pending != nil {
			t.started()
		}
	case domain.MediaPosition:
		t.state.Position = ev.Seconds
		t.commit()
	case domain.MediaDuration:
		t.state.Duration = ev.Seconds
		t.commit()
	case domain.MediaCompleted:
		t.advance(domain.Next, true)
	case domain.MediaExternalPause:
		if t.state.Status == domain.StatusPlaying {
			t.state.Status = domain.StatusPaused
			t.commit()
		}
	case domain.MediaExternalPlay:
		if t.state.Status == domain.StatusPaused {
			t.state.Status = domain.StatusPlaying
			t.commit()
		}
	case domain.MediaError:
		if t.pending != nil {
			t.failStart(ev.Err)
			return
		}
		t.fail("stream", ev.Err, true)
	}
}

// fail records a backend failure. When stopped is true the backend can no
// longer play the song, so a playing song becomes paused.
func (t *TransportService) fail(op string, err error, stopped bool) {
	songID := ""
	if t.state.Current != nil {
		songID = t.state.Current.ID
	}
	msg := "media backend error"
	if err != nil {
		msg = err.Error()
	}
	t.logger.Warn("playback failure", slog.String("op", op), slog.String("song_id", songID), slog.Any("error", err))

	perr := domain.NewPlaybackError(op, songID, msg, err)
	t.state.Err = perr
	if stopped && t.state.Status == domain.StatusPlaying {
		t.state.Status = domain.StatusPaused
	}
	t.commit()
	t.notify.publish(domain.NewPlaybackErrorEvent(t.state.Current, perr))
}

// commit publishes the loop state to readers and subscribers.
func (t *TransportService) commit() {
	snap := t.state
	if snap.Current != nil {
		song := *snap.Current
		snap.Current = &song
	}

	t.mu.Lock()
	t.snap = snap
	t.navigate = len(t.songs) > 1
	t.mu.Unlock()

	t.notify.publish(domain.NewTransportChangedEvent(snap))
}
