// Package service contains the application services: the selection cascade
// that keeps artist, album and song lists consistent, and the transport
// machine that plays songs from the active list.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// loadKind identifies one dependent collection of the cascade.
type loadKind int

const (
	loadArtists loadKind = iota
	loadAlbums
	loadSongs
)

func (k loadKind) String() string {
	switch k {
	case loadArtists:
		return "artists"
	case loadAlbums:
		return "albums"
	default:
		return "songs"
	}
}

// allSongsScope is the scope of the global song list in flat mode.
const allSongsScope = "*"

// ticket identifies an issued load. A completed load is applied only if its
// ticket still matches the latest issued sequence number and the current scope.
type ticket struct {
	kind  loadKind
	seq   uint64
	scope string
}

// SelectionService owns the artist → album → song selection and the
// collections that depend on it.
//
// Loads run asynchronously. Results from superseded loads are discarded, so
// rapidly changing the selection always ends with the collections of the
// last selection.
//
// Thread-safety: All methods are safe for concurrent use.
type SelectionService struct {
	logger  *slog.Logger
	catalog ports.CatalogClient
	notify  *notifier

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	state  domain.SelectionSnapshot
	seq    [3]uint64
	closed bool
}

// NewSelectionService creates a selection service with nothing selected.
func NewSelectionService(logger *slog.Logger, catalog ports.CatalogClient, bus ports.EventBus) *SelectionService {
	ctx, cancel := context.WithCancel(context.Background())
	return &SelectionService{
		logger:  logger,
		catalog: catalog,
		notify:  newNotifier(bus),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Snapshot returns a copy of the current selection state.
func (s *SelectionService) Snapshot() domain.SelectionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Songs returns the active song collection.
func (s *SelectionService) Songs() []domain.Song {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Songs)
}

// RefreshArtists reloads the artist list. The selected artist is kept if it
// still exists, otherwise the whole selection is cleared.
func (s *SelectionService) RefreshArtists() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	t := s.issueLocked(loadArtists, "")
	s.state.LoadingArtists = true
	s.commitLocked(false)

	s.spawn(func() {
		artists, err := s.catalog.ListArtists(s.ctx)
		s.applyArtists(t, artists, err)
	})
}

// SelectArtist selects an artist (nil for none). Changing the artist clears
// the album and the song collection in one step and loads the new artist's albums.
func (s *SelectionService) SelectArtist(artist *domain.Artist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if artist == nil {
		if s.state.Artist == nil && s.state.Mode == domain.ModeLibrary {
			return
		}
		songsChanged := s.clearArtistLocked()
		s.commitLocked(songsChanged)
		return
	}

	if s.state.Artist != nil && s.state.Artist.ID == artist.ID && s.state.Mode == domain.ModeLibrary {
		return
	}

	a := *artist
	s.state.Mode = domain.ModeLibrary
	s.state.Artist = &a
	s.state.Album = nil
	s.state.Albums = nil
	s.state.Songs = nil
	s.state.LoadingSongs = false
	s.state.Err = nil
	s.invalidateLocked(loadSongs)

	t := s.issueLocked(loadAlbums, a.ID)
	s.state.LoadingAlbums = true
	s.commitLocked(true)

	s.logger.Debug("artist selected", slog.String("artist_id", a.ID), slog.Uint64("seq", t.seq))
	s.spawn(func() {
		albums, err := s.catalog.ListAlbums(s.ctx, t.scope)
		s.applyAlbums(t, albums, err)
	})
}

// SelectAlbum selects an album of the selected artist (nil for none) and
// loads its songs. Selecting an album of another artist, or any album while
// no artist is selected, returns an error matching domain.ErrInvalidSelection
// and leaves the state untouched.
func (s *SelectionService) SelectAlbum(album *domain.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrServiceClosed
	}

	if album == nil {
		if s.state.Album == nil {
			return nil
		}
		s.state.Album = nil
		s.invalidateLocked(loadSongs)
		s.state.LoadingSongs = false
		songsChanged := s.state.Mode == domain.ModeLibrary
		if songsChanged {
			s.state.Songs = nil
		}
		s.commitLocked(songsChanged)
		return nil
	}

	if s.state.Artist == nil {
		return domain.NewSelectionError("select album", "no artist selected", domain.ErrNoArtistSelected)
	}
	if album.ArtistID != s.state.Artist.ID {
		return domain.NewSelectionError("select album",
			fmt.Sprintf("album %s belongs to artist %s, not %s", album.ID, album.ArtistID, s.state.Artist.ID), nil)
	}
	if s.state.Album != nil && s.state.Album.ID == album.ID && s.state.Mode == domain.ModeLibrary {
		return nil
	}

	a := *album
	s.state.Mode = domain.ModeLibrary
	s.state.Album = &a
	s.state.Songs = nil
	s.state.Err = nil

	t := s.issueLocked(loadSongs, a.ID)
	s.state.LoadingSongs = true
	s.commitLocked(true)

	s.logger.Debug("album selected", slog.String("album_id", a.ID), slog.Uint64("seq", t.seq))
	s.spawn(func() {
		songs, err := s.catalog.ListSongs(s.ctx, domain.SongFilter{AlbumID: t.scope})
		s.applySongs(t, songs, err)
	})
	return nil
}

// ShowAllSongs switches to the flat view and loads every song in the catalog.
// The artist and album selections are kept but no longer drive the song list.
func (s *SelectionService) ShowAllSongs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.state.Mode = domain.ModeFlat
	s.state.Songs = nil
	s.state.Err = nil
	t := s.issueLocked(loadSongs, allSongsScope)
	s.state.LoadingSongs = true
	s.commitLocked(true)

	s.spawn(func() {
		songs, err := s.catalog.ListSongs(s.ctx, domain.SongFilter{})
		s.applySongs(t, songs, err)
	})
}

// RefreshAlbums re-issues the album load of the selected artist.
// The selected album survives if it is still part of the result.
func (s *SelectionService) RefreshAlbums() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state.Artist == nil {
		return
	}

	t := s.issueLocked(loadAlbums, s.state.Artist.ID)
	s.state.LoadingAlbums = true
	s.commitLocked(false)

	s.spawn(func() {
		albums, err := s.catalog.ListAlbums(s.ctx, t.scope)
		s.applyAlbums(t, albums, err)
	})
}

// RefreshSongs re-issues the song load of the current view.
func (s *SelectionService) RefreshSongs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	scope := s.songScopeLocked()
	if scope == "" {
		return
	}
	filter := domain.SongFilter{AlbumID: scope}
	if scope == allSongsScope {
		filter = domain.SongFilter{}
	}

	t := s.issueLocked(loadSongs, scope)
	s.state.LoadingSongs = true
	s.commitLocked(false)

	s.spawn(func() {
		songs, err := s.catalog.ListSongs(s.ctx, filter)
		s.applySongs(t, songs, err)
	})
}

// AddArtist appends a newly created artist and selects it.
func (s *SelectionService) AddArtist(artist domain.Artist) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if !lo.ContainsBy(s.state.Artists, func(a domain.Artist) bool { return a.ID == artist.ID }) {
		s.state.Artists = append(slices.Clone(s.state.Artists), artist)
		s.commitLocked(false)
	}
	s.mu.Unlock()

	s.SelectArtist(&artist)
}

// AddAlbum appends a newly created album of the selected artist and selects it.
func (s *SelectionService) AddAlbum(album domain.Album) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrServiceClosed
	}
	if s.state.Artist == nil || s.state.Artist.ID != album.ArtistID {
		s.mu.Unlock()
		return domain.NewSelectionError("add album", "album does not belong to the selected artist", nil)
	}
	if !lo.ContainsBy(s.state.Albums, func(a domain.Album) bool { return a.ID == album.ID }) {
		s.state.Albums = append(slices.Clone(s.state.Albums), album)
		s.commitLocked(false)
	}
	s.mu.Unlock()

	return s.SelectAlbum(&album)
}

// AddUploadedSong puts a freshly uploaded song into the active collection.
// In the flat view it is prepended; in the library view the album's songs are
// reloaded when the song belongs to the selected album.
func (s *SelectionService) AddUploadedSong(song domain.Song) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	switch s.state.Mode {
	case domain.ModeFlat:
		rest := lo.Filter(s.state.Songs, func(x domain.Song, _ int) bool { return x.ID != song.ID })
		s.state.Songs = append([]domain.Song{song}, rest...)
		s.commitLocked(true)
		s.mu.Unlock()
	default:
		reload := s.state.Album != nil && s.state.Album.ID == song.AlbumID
		s.mu.Unlock()
		if reload {
			s.RefreshSongs()
		}
	}
}

// ReplaceSong swaps the record with the same id in the active collection.
func (s *SelectionService) ReplaceSong(song domain.Song) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.state.Songs, func(x domain.Song) bool { return x.ID == song.ID })
	if s.closed || i < 0 {
		return
	}
	songs := slices.Clone(s.state.Songs)
	songs[i] = song
	s.state.Songs = songs
	s.commitLocked(true)
}

// RemoveSong drops the song with the given id from the active collection.
func (s *SelectionService) RemoveSong(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !lo.ContainsBy(s.state.Songs, func(x domain.Song) bool { return x.ID == id }) {
		return
	}
	s.state.Songs = lo.Filter(s.state.Songs, func(x domain.Song, _ int) bool { return x.ID != id })
	s.commitLocked(true)
}

// WaitIdle blocks until all issued loads have completed and their events
// have been delivered. It must not be called from an event handler.
func (s *SelectionService) WaitIdle() {
	s.wg.Wait()
	s.notify.flush()
}

// Shutdown cancels pending loads and waits for them to finish.
func (s *SelectionService) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.notify.close()
	return nil
}

// Load completion

func (s *SelectionService) applyArtists(t ticket, artists []domain.Artist, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptLocked(t) {
		return
	}
	s.state.LoadingArtists = false

	if err != nil {
		s.failLocked("list artists", err)
		return
	}

	s.state.Err = nil
	s.state.Artists = artists

	songsChanged := false
	if s.state.Artist != nil {
		if fresh, ok := lo.Find(artists, func(a domain.Artist) bool { return a.ID == s.state.Artist.ID }); ok {
			s.state.Artist = &fresh
		} else {
			s.logger.Debug("selected artist no longer exists", slog.String("artist_id", s.state.Artist.ID))
			songsChanged = s.clearArtistLocked()
		}
	}
	s.commitLocked(songsChanged)
}

func (s *SelectionService) applyAlbums(t ticket, albums []domain.Album, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptLocked(t) {
		return
	}
	s.state.LoadingAlbums = false

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// the artist itself is gone
			songsChanged := s.clearArtistLocked()
			s.commitLocked(songsChanged)
			return
		}
		s.failLocked("list albums", err)
		return
	}

	s.state.Err = nil
	s.state.Albums = albums

	songsChanged := false
	if s.state.Album != nil {
		if fresh, ok := lo.Find(albums, func(a domain.Album) bool { return a.ID == s.state.Album.ID }); ok {
			s.state.Album = &fresh
		} else {
			s.logger.Debug("selected album no longer exists", slog.String("album_id", s.state.Album.ID))
			songsChanged = s.clearAlbumLocked()
		}
	}
	s.commitLocked(songsChanged)
}

func (s *SelectionService) applySongs(t ticket, songs []domain.Song, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptLocked(t) {
		return
	}
	s.state.LoadingSongs = false

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) && s.state.Mode == domain.ModeLibrary {
			// the album itself is gone
			songsChanged := s.clearAlbumLocked()
			s.commitLocked(songsChanged)
			return
		}
		s.failLocked("list songs", err)
		return
	}

	s.state.Err = nil
	s.state.Songs = songs
	s.commitLocked(true)
}

// acceptLocked reports whether a completed load is still the latest for its
// kind and scope. Stale results are dropped.
func (s *SelectionService) acceptLocked(t ticket) bool {
	if s.closed {
		return false
	}
	current := s.seq[t.kind] == t.seq && s.scopeLocked(t.kind) == t.scope
	if !current {
		s.logger.Debug("discarding stale load",
			slog.String("kind", t.kind.String()),
			slog.String("scope", t.scope),
			slog.Uint64("seq", t.seq),
			slog.Uint64("latest", s.seq[t.kind]))
	}
	return current
}

// failLocked records a load failure and keeps the previous collection.
func (s *SelectionService) failLocked(op string, err error) {
	s.logger.Warn("catalog load failed", slog.String("op", op), slog.Any("error", err))
	s.state.Err = err
	s.notify.publish(domain.NewCatalogErrorEvent(op, err))
	s.commitLocked(false)
}

// Helpers (must be called with s.mu held)

func (s *SelectionService) issueLocked(kind loadKind, scope string) ticket {
	s.seq[kind]++
	return ticket{kind: kind, seq: s.seq[kind], scope: scope}
}

// invalidateLocked makes any pending load of the kind stale.
func (s *SelectionService) invalidateLocked(kind loadKind) {
	s.seq[kind]++
}

func (s *SelectionService) scopeLocked(kind loadKind) string {
	switch kind {
	case loadAlbums:
		if s.state.Artist == nil {
			return ""
		}
		return s.state.Artist.ID
	case loadSongs:
		return s.songScopeLocked()
	default:
		return ""
	}
}

func (s *SelectionService) songScopeLocked() string {
	if s.state.Mode == domain.ModeFlat {
		return allSongsScope
	}
	if s.state.Album == nil {
		return ""
	}
	return s.state.Album.ID
}

// clearArtistLocked drops the artist and everything below it. It returns
// whether the song collection changed.
func (s *SelectionService) clearArtistLocked() bool {
	s.state.Artist = nil
	s.state.Albums = nil
	s.state.LoadingAlbums = false
	s.invalidateLocked(loadAlbums)
	if s.state.Mode == domain.ModeFlat {
		s.state.Album = nil
		return false
	}
	s.clearAlbumLocked()
	return true
}

// clearAlbumLocked drops the album and, in the library view, its songs.
func (s *SelectionService) clearAlbumLocked() bool {
	s.state.Album = nil
	if s.state.Mode == domain.ModeFlat {
		return false
	}
	s.state.Songs = nil
	s.state.LoadingSongs = false
	s.invalidateLocked(loadSongs)
	return true
}

func (s *SelectionService) snapshotLocked() domain.SelectionSnapshot {
	snap := s.state
	if s.state.Artist != nil {
		a := *s.state.Artist
		snap.Artist = &a
	}
	if s.state.Album != nil {
		a := *s.state.Album
		snap.Album = &a
	}
	snap.Artists = slices.Clone(s.state.Artists)
	snap.Albums = slices.Clone(s.state.Albums)
	snap.Songs = slices.Clone(s.state.Songs)
	return snap
}

// commitLocked queues the state change notification. Both events are queued
// under the same lock so no handler can observe a half-applied cascade.
func (s *SelectionService) commitLocked(songsChanged bool) {
	snap := s.snapshotLocked()
	if songsChanged {
		s.notify.publish(
			domain.NewSongListChangedEvent(slices.Clone(snap.Songs), snap.Mode),
			domain.NewSelectionChangedEvent(snap),
		)
		return
	}
	s.notify.publish(domain.NewSelectionChangedEvent(snap))
}

func (s *SelectionService) spawn(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}
