// Package domain contains core business models and logic with no external dependencies.
// This package defines the catalog entities and the playback state of the TuneStream client.
package domain

import (
	"strconv"
	"time"
)

// Artist is a catalog artist. The ID is the stable key.
type Artist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Album belongs to exactly one artist.
type Album struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	ArtistID   string    `json:"artist_id"`
	ArtistName string    `json:"artist_name,omitempty"`
	Year       *int      `json:"year,omitempty"`
	CoverArt   string    `json:"cover_art,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Song is a streamable audio file known to the catalog.
// AlbumID is empty for songs uploaded outside of an album.
type Song struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ArtistID    string    `json:"artist_id"`
	AlbumID     string    `json:"album_id,omitempty"`
	TrackNumber *int      `json:"track_number,omitempty"`
	Duration    float64   `json:"duration"`  // seconds
	FileSize    int64     `json:"file_size"` // bytes
	ContentType string    `json:"content_type,omitempty"`
	ArtistName  string    `json:"artist_name,omitempty"`
	AlbumTitle  string    `json:"album_title,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayTitle returns the title prefixed with the track number when there is one.
func (s Song) DisplayTitle() string {
	if s.TrackNumber != nil && *s.TrackNumber > 0 {
		return strconv.Itoa(*s.TrackNumber) + ". " + s.Title
	}
	return s.Title
}

// Subtitle returns "artist - album" using whatever names the server joined in.
func (s Song) Subtitle() string {
	switch {
	case s.ArtistName != "" && s.AlbumTitle != "":
		return s.ArtistName + " - " + s.AlbumTitle
	case s.ArtistName != "":
		return s.ArtistName
	default:
		return s.AlbumTitle
	}
}

// SongFilter scopes a song listing. At most one id is used; AlbumID wins.
// The zero value lists every song.
type SongFilter struct {
	AlbumID  string
	ArtistID string
}

// ArtistPatch carries the fields of an artist create or update.
type ArtistPatch struct {
	Name string `json:"name"`
	Bio  string `json:"bio,omitempty"`
}

// AlbumPatch carries the fields of an album create or update.
type AlbumPatch struct {
	Title    string `json:"title"`
	ArtistID string `json:"artist_id"`
	Year     *int   `json:"year,omitempty"`
	CoverArt string `json:"cover_art,omitempty"`
}

// SongPatch carries the editable song fields.
type SongPatch struct {
	Title       string `json:"title"`
	ArtistID    string `json:"artist_id"`
	AlbumID     string `json:"album_id,omitempty"`
	TrackNumber *int   `json:"track_number,omitempty"`
}

// BrowseMode tells which collection the song list currently represents.
type BrowseMode int

const (
	// ModeLibrary shows the songs of the selected album
	ModeLibrary BrowseMode = iota

	// ModeFlat shows every song in the catalog
	ModeFlat
)

// String returns a human-readable representation of the browse mode.
func (m BrowseMode) String() string {
	switch m {
	case ModeLibrary:
		return "library"
	case ModeFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// SelectionSnapshot is an immutable copy of the selection cascade state.
type SelectionSnapshot struct {
	Mode BrowseMode

	// Artist and Album are the current selections (nil when none).
	// Album, when set, always belongs to Artist.
	Artist *Artist
	Album  *Album

	Artists []Artist
	Albums  []Album
	Songs   []Song

	LoadingArtists bool
	LoadingAlbums  bool
	LoadingSongs   bool

	// Err is the most recent load failure, cleared by the next successful load
	Err error
}

// TransportStatus represents the state of the transport machine.
type TransportStatus int

const (
	// StatusIdle indicates no song is current
	StatusIdle TransportStatus = iota

	// StatusLoading indicates a song was chosen and the backend is opening it
	StatusLoading

	// StatusPlaying indicates playback is active
	StatusPlaying

	// StatusPaused indicates playback is paused
	StatusPaused
)

// String returns a human-readable representation of the transport status.
func (s TransportStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Direction selects the neighbour used by an advance.
type Direction int

const (
	Next Direction = iota
	Previous
)

// String returns "next" or "previous".
func (d Direction) String() string {
	if d == Previous {
		return "previous"
	}
	return "next"
}

// TransportState is a snapshot of the transport machine.
type TransportState struct {
	Status  TransportStatus
	Current *Song

	// Position and Duration are in seconds
	Position float64
	Duration float64

	// Err is the last playback failure, cleared when a song starts successfully
	Err error
}

// IsPlaying reports whether audio is actively playing.
func (s TransportState) IsPlaying() bool {
	return s.Status == StatusPlaying
}

// IsCurrent reports whether the song with the given id is the current one.
func (s TransportState) IsCurrent(songID string) bool {
	return s.Current != nil && s.Current.ID == songID
}

// Progress returns the clamped playback fraction of this snapshot.
func (s TransportState) Progress() float64 {
	return Fraction(s.Position, s.Duration)
}

// MediaEventKind identifies a signal coming from the media backend.
type MediaEventKind int

const (
	MediaReady MediaEventKind = iota
	MediaPosition
	MediaDuration
	MediaCompleted
	MediaExternalPause
	MediaExternalPlay
	MediaError
)

// String returns a human-readable representation of the media event kind.
func (k MediaEventKind) String() string {
	switch k {
	case MediaReady:
		return "ready"
	case MediaPosition:
		return "position"
	case MediaDuration:
		return "duration"
	case MediaCompleted:
		return "completed"
	case MediaExternalPause:
		return "external_pause"
	case MediaExternalPlay:
		return "external_play"
	case MediaError:
		return "error"
	default:
		return "unknown"
	}
}

// StreamRequest asks the media backend to load a song.
type StreamRequest struct {
	URL        string
	Generation uint64

	// Duration is the catalog's length of the song in seconds, zero when unknown
	Duration float64
}

// MediaEvent is a single signal from the media backend.
// Generation identifies the Open call that produced the event.
type MediaEvent struct {
	Kind       MediaEventKind
	Generation uint64
	Seconds    float64
	Err        error
}
