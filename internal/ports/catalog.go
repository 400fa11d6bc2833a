package ports

import (
	"context"
	"io"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// CatalogClient is the interface to the remote music catalog.
// Implementations are stateless; every call is an independent request.
//
// Failures are returned as *domain.CatalogError so callers can test
// errors.Is(err, domain.ErrNotFound) or domain.ErrNetworkFailure.
type CatalogClient interface {
	// Listing methods

	ListArtists(ctx context.Context) ([]domain.Artist, error)
	ListAlbums(ctx context.Context, artistID string) ([]domain.Album, error)

	// ListSongs lists songs scoped by the filter. The zero filter lists every song.
	ListSongs(ctx context.Context, filter domain.SongFilter) ([]domain.Song, error)

	// Mutation methods

	CreateArtist(ctx context.Context, patch domain.ArtistPatch) (domain.Artist, error)
	UpdateArtist(ctx context.Context, id string, patch domain.ArtistPatch) (domain.Artist, error)
	DeleteArtist(ctx context.Context, id string) error

	CreateAlbum(ctx context.Context, patch domain.AlbumPatch) (domain.Album, error)
	UpdateAlbum(ctx context.Context, id string, patch domain.AlbumPatch) (domain.Album, error)
	DeleteAlbum(ctx context.Context, id string) error

	UpdateSong(ctx context.Context, id string, patch domain.SongPatch) (domain.Song, error)
	DeleteSong(ctx context.Context, id string) error

	// UploadSong sends an audio file and returns the created record,
	// including the server-assigned id, duration and file size.
	UploadSong(ctx context.Context, req UploadRequest) (domain.Song, error)

	// StreamURL returns the URL of the song's audio stream.
	StreamURL(songID string) string
}

// UploadRequest describes a song upload.
type UploadRequest struct {
	// Filename is sent as the multipart file name
	Filename string

	// Body is the audio content
	Body io.Reader

	Title       string
	ArtistID    string
	AlbumID     string
	TrackNumber int // 0 when unknown
}
