// Package fyne provides Fyne UI adapter implementations.
// This package implements the UI layer using the Fyne toolkit.
package fyne

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
	"github.com/tejashwikalptaru/tunestream/internal/service"
)

// Presenter implements the Presenter pattern (MVP architecture).
// It coordinates between the session services and the UI.
//
// Responsibilities:
// - Subscribe to events from the event bus
// - Map domain events to View updates
// - Translate UI commands to service method calls
//
// Transport commands run in order on a single worker goroutine, so the last
// tap always wins and the UI thread never waits for the transport loop.
// Catalog requests run on their own goroutines and are cancelled on Shutdown.
//
// Thread-safety: All operations are thread-safe via sync.RWMutex.
type Presenter struct {
	logger  *slog.Logger
	session *service.Session
	bus     ports.EventBus
	view    ports.View

	subscriptions []domain.SubscriptionID

	// Presentation state
	mu        sync.RWMutex
	selection domain.SelectionSnapshot
	transport domain.TransportState

	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	shutdownOnce sync.Once

	// ordered transport commands
	cmdMu      sync.Mutex
	cmdClosed  bool
	commands   chan transportCommand
	queued     sync.WaitGroup
	workerDone chan struct{}
}

type transportCommand struct {
	op  string
	run func() error
}

// NewPresenter creates a new presenter and syncs the view with the current state.
func NewPresenter(logger *slog.Logger, session *service.Session, bus ports.EventBus, view ports.View) *Presenter {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Presenter{
		logger:    logger,
		session:   session,
		bus:       bus,
		view:      view,
		selection: session.Selection.Snapshot(),
		transport: session.Transport.Snapshot(),
		ctx:        ctx,
		cancel:     cancel,
		commands:   make(chan transportCommand, 64),
		workerDone: make(chan struct{}),
	}

	go p.runCommands()
	p.subscribeToEvents()
	p.renderSelection()
	p.renderTransport()
	return p
}

// Start loads the artist list.
func (p *Presenter) Start() {
	p.session.Selection.RefreshArtists()
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		domain.EventSelectionChanged: p.onSelectionChanged,
		domain.EventTransportChanged: p.onTransportChanged,
		domain.EventPlaybackError:    p.onPlaybackError,
		domain.EventCatalogError:     p.onCatalogError,
	}

	for eventType, handler := range subscriptions {
		p.subscriptions = append(p.subscriptions, p.bus.Subscribe(eventType, handler))
	}
}

// Event handlers

func (p *Presenter) onSelectionChanged(event domain.Event) {
	e, ok := event.(domain.SelectionChangedEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	p.selection = e.Selection
	p.mu.Unlock()

	p.renderSelection()
}

func (p *Presenter) onTransportChanged(event domain.Event) {
	e, ok := event.(domain.TransportChangedEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	previous := p.transport.Current
	p.transport = e.State
	p.mu.Unlock()

	p.renderTransport()

	// the highlighted row follows the current song
	if currentID(previous) != currentID(e.State.Current) {
		p.renderSongs()
	}
}

func (p *Presenter) onPlaybackError(event domain.Event) {
	e, ok := event.(domain.PlaybackErrorEvent)
	if !ok {
		return
	}

	title := "Playback Error"
	if e.Song != nil {
		title = fmt.Sprintf("Cannot play %s", e.Song.DisplayTitle())
	}
	p.view.ShowNotification(title, errorMessage(e.Err))
}

func (p *Presenter) onCatalogError(event domain.Event) {
	e, ok := event.(domain.CatalogErrorEvent)
	if !ok {
		return
	}
	p.logger.Warn("catalog request failed", slog.String("op", e.Op), slog.Any("error", e.Err))
}

// Rendering

func (p *Presenter) renderSelection() {
	p.mu.RLock()
	snap := p.selection
	p.mu.RUnlock()

	artistIndex := -1
	if snap.Artist != nil {
		artistIndex = slices.IndexFunc(snap.Artists, func(a domain.Artist) bool { return a.ID == snap.Artist.ID })
	}
	albumIndex := -1
	if snap.Album != nil {
		albumIndex = slices.IndexFunc(snap.Albums, func(a domain.Album) bool { return a.ID == snap.Album.ID })
	}

	p.view.SetArtists(snap.Artists, artistIndex)
	p.view.SetAlbums(snap.Albums, albumIndex)
	p.renderSongs()
	p.view.SetLoading(snap.LoadingArtists, snap.LoadingAlbums, snap.LoadingSongs)
	p.renderError()
}

func (p *Presenter) renderSongs() {
	p.mu.RLock()
	songs := p.selection.Songs
	mode := p.selection.Mode
	id := currentID(p.transport.Current)
	p.mu.RUnlock()

	current := -1
	if id != "" {
		current = slices.IndexFunc(songs, func(s domain.Song) bool { return s.ID == id })
	}
	p.view.SetSongs(songs, current, mode)
}

func (p *Presenter) renderTransport() {
	p.mu.RLock()
	state := p.transport
	p.mu.RUnlock()

	p.view.SetNowPlaying(state.Current, state.Status)
	p.view.SetProgress(state.Progress(), state.Position, state.Duration)
	p.view.SetNavigation(p.session.Transport.HasNavigation())
	p.renderError()
}

// renderError shows the catalog error first, then the playback error.
func (p *Presenter) renderError() {
	p.mu.RLock()
	err := p.selection.Err
	if err == nil {
		err = p.transport.Err
	}
	p.mu.RUnlock()

	p.view.ShowError(errorMessage(err))
}

// UI Command handlers (called by UI)

// OnArtistSelected handles a tap on the artist list.
func (p *Presenter) OnArtistSelected(index int) {
	p.mu.RLock()
	artist, ok := itemAt(p.selection.Artists, index)
	p.mu.RUnlock()
	if !ok {
		return
	}
	p.session.Selection.SelectArtist(&artist)
}

// OnAlbumSelected handles a tap on the album list.
func (p *Presenter) OnAlbumSelected(index int) {
	p.mu.RLock()
	album, ok := itemAt(p.selection.Albums, index)
	p.mu.RUnlock()
	if !ok {
		return
	}
	if err := p.session.Selection.SelectAlbum(&album); err != nil {
		p.logger.Warn("album selection rejected", slog.Any("error", err))
		p.view.ShowError(errorMessage(err))
	}
}

// OnSongTapped plays a song, or toggles it when it is the current one.
func (p *Presenter) OnSongTapped(index int) {
	p.mu.RLock()
	song, ok := itemAt(p.selection.Songs, index)
	p.mu.RUnlock()
	if !ok {
		return
	}
	p.queueTransport("select song", func() error {
		return p.session.Transport.SelectSong(song)
	})
}

// OnPlayClicked handles the play/pause button click.
func (p *Presenter) OnPlayClicked() {
	p.queueTransport("toggle", func() error {
		return p.session.Transport.Toggle()
	})
}

// OnStopClicked handles the stop button click.
func (p *Presenter) OnStopClicked() {
	p.queueTransport("stop", func() error {
		return p.session.Transport.Stop()
	})
}

// OnNextClicked handles the next button click.
func (p *Presenter) OnNextClicked() {
	p.queueTransport("next", func() error {
		return p.session.Transport.Next()
	})
}

// OnPreviousClicked handles the previous button click.
func (p *Presenter) OnPreviousClicked() {
	p.queueTransport("previous", func() error {
		return p.session.Transport.Previous()
	})
}

// OnSeekRequested moves the current song to a fraction of its duration.
func (p *Presenter) OnSeekRequested(fraction float64) {
	p.mu.RLock()
	duration := p.transport.Duration
	p.mu.RUnlock()
	if duration <= 0 {
		return
	}
	p.queueTransport("seek", func() error {
		return p.session.Transport.Seek(domain.Fraction(fraction, 1) * duration)
	})
}

// OnShowAllSongs switches the song list to every song in the catalog.
func (p *Presenter) OnShowAllSongs() {
	p.session.Selection.ShowAllSongs()
}

// OnRefreshClicked reloads every list of the current selection.
func (p *Presenter) OnRefreshClicked() {
	p.session.Selection.RefreshArtists()
	p.session.Selection.RefreshAlbums()
	p.session.Selection.RefreshSongs()
}

// OnCreateArtist creates an artist and selects it.
func (p *Presenter) OnCreateArtist(name, bio string) {
	name = strings.TrimSpace(name)
	if name == "" {
		p.view.ShowError("artist name is required")
		return
	}
	p.run("create artist", func(ctx context.Context) error {
		_, err := p.session.CreateArtist(ctx, domain.ArtistPatch{Name: name, Bio: strings.TrimSpace(bio)})
		return err
	})
}

// OnCreateAlbum creates an album for the selected artist. The year is optional.
func (p *Presenter) OnCreateAlbum(title, year string) {
	title = strings.TrimSpace(title)
	if title == "" {
		p.view.ShowError("album title is required")
		return
	}
	patch := domain.AlbumPatch{Title: title}
	if year = strings.TrimSpace(year); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil || y <= 0 {
			p.view.ShowError(fmt.Sprintf("invalid year %q", year))
			return
		}
		patch.Year = &y
	}
	p.run("create album", func(ctx context.Context) error {
		_, err := p.session.CreateAlbum(ctx, patch)
		return err
	})
}

// OnUploadFile uploads a local file into the selected artist and album.
func (p *Presenter) OnUploadFile(path string) {
	p.mu.RLock()
	var artistID, albumID string
	if p.selection.Artist != nil {
		artistID = p.selection.Artist.ID
	}
	if p.selection.Album != nil {
		albumID = p.selection.Album.ID
	}
	p.mu.RUnlock()

	p.run("upload", func(ctx context.Context) error {
		song, err := p.session.UploadFile(ctx, path, "", artistID, albumID)
		if err != nil {
			return err
		}
		p.view.ShowNotification("Upload Complete", song.DisplayTitle())
		return nil
	})
}

// OnDeleteSong deletes a song from the catalog.
func (p *Presenter) OnDeleteSong(index int) {
	p.mu.RLock()
	song, ok := itemAt(p.selection.Songs, index)
	p.mu.RUnlock()
	if !ok {
		return
	}
	p.run("delete song", func(ctx context.Context) error {
		return p.session.DeleteSong(ctx, song.ID)
	})
}

// run executes a command off the UI thread and reports its failure.
func (p *Presenter) run(op string, fn func(ctx context.Context) error) {
	if p.ctx.Err() != nil {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.report(op, fn(p.ctx))
	}()
}

// queueTransport queues a transport command behind the ones already queued.
func (p *Presenter) queueTransport(op string, fn func() error) {
	p.cmdMu.Lock()
	defer p.cmdMu.Unlock()
	if p.cmdClosed {
		return
	}
	p.queued.Add(1)
	p.commands <- transportCommand{op: op, run: fn}
}

func (p *Presenter) runCommands() {
	defer close(p.workerDone)
	for {
		select {
		case <-p.ctx.Done():
			// drop what is still queued
			for {
				select {
				case <-p.commands:
					p.queued.Done()
				default:
					return
				}
			}
		case cmd := <-p.commands:
			p.report(cmd.op, cmd.run())
			p.queued.Done()
		}
	}
}

func (p *Presenter) report(op string, err error) {
	if err == nil || errors.Is(err, domain.ErrServiceClosed) || errors.Is(err, context.Canceled) {
		return
	}
	p.logger.Error("command failed", slog.String("op", op), slog.Any("error", err))
	p.view.ShowError(errorMessage(err))
}

// Wait blocks until every command started so far has finished.
func (p *Presenter) Wait() {
	p.queued.Wait()
	p.wg.Wait()
}

// Shutdown cleans up resources.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		for _, id := range p.subscriptions {
			p.bus.Unsubscribe(id)
		}

		p.cmdMu.Lock()
		p.cmdClosed = true
		p.cmdMu.Unlock()

		p.cancel()
		<-p.workerDone
		p.wg.Wait()
	})
}

func itemAt[T any](items []T, index int) (T, bool) {
	if index < 0 || index >= len(items) {
		var zero T
		return zero, false
	}
	return items[index], true
}

func currentID(song *domain.Song) string {
	if song == nil {
		return ""
	}
	return song.ID
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
