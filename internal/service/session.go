package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// Session ties the selection cascade to the transport: every change of the
// active song collection becomes the transport's navigation universe.
// It also runs the catalog mutations whose results feed back into the
// selection (create, upload, update, delete).
type Session struct {
	logger    *slog.Logger
	catalog   ports.CatalogClient
	bus       ports.EventBus
	Selection *SelectionService
	Transport *TransportService

	subID domain.SubscriptionID
}

// NewSession builds both services on the given catalog and backend.
// The session owns the backend through its transport.
func NewSession(logger *slog.Logger, catalog ports.CatalogClient, backend ports.MediaBackend, bus ports.EventBus) *Session {
	s := &Session{
		logger:    logger,
		catalog:   catalog,
		bus:       bus,
		Selection: NewSelectionService(logger.With(slog.String("service", "selection")), catalog, bus),
		Transport: NewTransportService(logger.With(slog.String("service", "transport")), backend, catalog, bus),
	}
	s.subID = bus.Subscribe(domain.EventSongListChanged, s.onSongListChanged)
	return s
}

func (s *Session) onSongListChanged(event domain.Event) {
	e, ok := event.(domain.SongListChangedEvent)
	if !ok {
		return
	}
	if err := s.Transport.SetCollection(e.Songs); err != nil && !errors.Is(err, domain.ErrServiceClosed) {
		s.logger.Warn("failed to update transport collection", slog.Any("error", err))
	}
}

// CreateArtist creates an artist on the server and selects it.
func (s *Session) CreateArtist(ctx context.Context, patch domain.ArtistPatch) (domain.Artist, error) {
	artist, err := s.catalog.CreateArtist(ctx, patch)
	if err != nil {
		return domain.Artist{}, err
	}
	s.Selection.AddArtist(artist)
	return artist, nil
}

// CreateAlbum creates an album for the selected artist and selects it.
func (s *Session) CreateAlbum(ctx context.Context, patch domain.AlbumPatch) (domain.Album, error) {
	snap := s.Selection.Snapshot()
	if snap.Artist == nil {
		return domain.Album{}, domain.NewSelectionError("create album", "no artist selected", domain.ErrNoArtistSelected)
	}
	patch.ArtistID = snap.Artist.ID

	album, err := s.catalog.CreateAlbum(ctx, patch)
	if err != nil {
		return domain.Album{}, err
	}
	if err := s.Selection.AddAlbum(album); err != nil {
		// the artist changed while the request was in flight
		s.logger.Debug("created album not selected", slog.String("album_id", album.ID), slog.Any("error", err))
	}
	return album, nil
}

// Upload sends a song file to the server and adds the result to the active collection.
func (s *Session) Upload(ctx context.Context, req ports.UploadRequest) (domain.Song, error) {
	song, err := s.catalog.UploadSong(ctx, req)
	if err != nil {
		return domain.Song{}, err
	}
	s.logger.Info("song uploaded", slog.String("song_id", song.ID), slog.String("title", song.Title))
	s.Selection.AddUploadedSong(song)
	return song, nil
}

// UpdateSong edits a song and replaces its record in the active collection.
func (s *Session) UpdateSong(ctx context.Context, id string, patch domain.SongPatch) (domain.Song, error) {
	song, err := s.catalog.UpdateSong(ctx, id, patch)
	if err != nil {
		return domain.Song{}, err
	}
	s.Selection.ReplaceSong(song)
	return song, nil
}

// DeleteSong deletes a song and drops it from the active collection.
// A song that is currently playing keeps playing until the user moves on.
func (s *Session) DeleteSong(ctx context.Context, id string) error {
	if err := s.catalog.DeleteSong(ctx, id); err != nil {
		return err
	}
	s.Selection.RemoveSong(id)
	return nil
}

// WaitIdle waits until both services have settled.
func (s *Session) WaitIdle() {
	s.Selection.WaitIdle()
	_ = s.Transport.WaitIdle()
}

// Shutdown stops the selection loads first, then the transport and its backend.
func (s *Session) Shutdown() error {
	s.bus.Unsubscribe(s.subID)

	var errs []error
	if err := s.Selection.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Transport.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
