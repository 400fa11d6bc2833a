// Package fake provides an in-memory catalog client for tests.
//
// Responses can be held back per request key so tests can deliver them out
// of order, and failures can be injected per key. Keys are:
//
//	"artists", "albums:<artistID>", "songs:album:<albumID>",
//	"songs:artist:<artistID>", "songs:all", "upload"
package fake

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// Catalog is a thread-safe in-memory CatalogClient.
type Catalog struct {
	mu       sync.Mutex
	artists  []domain.Artist
	albums   []domain.Album
	songs    []domain.Song
	gates    map[string]chan struct{}
	failures map[string]error
	calls    []string
	waiting  map[string]int
	changed  chan struct{}
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		gates:    make(map[string]chan struct{}),
		failures: make(map[string]error),
		waiting:  make(map[string]int),
		changed:  make(chan struct{}),
	}
}

// AddArtist stores an artist.
func (c *Catalog) AddArtist(a domain.Artist) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artists = append(c.artists, a)
}

// AddAlbum stores an album.
func (c *Catalog) AddAlbum(a domain.Album) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.albums = append(c.albums, a)
}

// AddSong stores a song.
func (c *Catalog) AddSong(s domain.Song) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.songs = append(c.songs, s)
}

// Hold makes requests with the given key block until Release is called
// or the request context is done.
func (c *Catalog) Hold(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.gates[key]; !ok {
		c.gates[key] = make(chan struct{})
	}
}

// Release unblocks every request waiting on key.
func (c *Catalog) Release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gate, ok := c.gates[key]; ok {
		close(gate)
		delete(c.gates, key)
	}
}

// Fail makes requests with the given key return err until cleared with a nil err.
func (c *Catalog) Fail(key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failures, key)
		return
	}
	c.failures[key] = err
}

// Calls returns the keys of all requests received so far.
func (c *Catalog) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.calls)
}

// Waiting returns a channel that is closed once at least n requests are
// blocked on key.
func (c *Catalog) Waiting(key string, n int) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			c.mu.Lock()
			count := c.waiting[key]
			changed := c.changed
			c.mu.Unlock()
			if count >= n {
				return
			}
			<-changed
		}
	}()
	return done
}

// notifyLocked wakes Waiting observers. Must be called with c.mu held.
func (c *Catalog) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// enter records the call, blocks on a held gate and returns the injected failure.
func (c *Catalog) enter(ctx context.Context, op, key string) error {
	c.mu.Lock()
	c.calls = append(c.calls, key)
	gate := c.gates[key]
	if gate != nil {
		c.waiting[key]++
		c.notifyLocked()
	}
	c.mu.Unlock()

	if gate != nil {
		defer func() {
			c.mu.Lock()
			c.waiting[key]--
			c.mu.Unlock()
		}()
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.NewCatalogError(op, 0, "execute request", ctx.Err())
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failures[key]; err != nil {
		return err
	}
	return nil
}

// ListArtists returns every artist.
func (c *Catalog) ListArtists(ctx context.Context) ([]domain.Artist, error) {
	if err := c.enter(ctx, "list artists", "artists"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.artists), nil
}

// ListAlbums returns the albums of one artist.
func (c *Catalog) ListAlbums(ctx context.Context, artistID string) ([]domain.Album, error) {
	if err := c.enter(ctx, "list albums", "albums:"+artistID); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.Filter(c.albums, func(a domain.Album, _ int) bool {
		return a.ArtistID == artistID
	}), nil
}

// ListSongs returns songs scoped by the filter.
func (c *Catalog) ListSongs(ctx context.Context, filter domain.SongFilter) ([]domain.Song, error) {
	key := "songs:all"
	match := func(domain.Song) bool { return true }
	switch {
	case filter.AlbumID != "":
		key = "songs:album:" + filter.AlbumID
		match = func(s domain.Song) bool { return s.AlbumID == filter.AlbumID }
	case filter.ArtistID != "":
		key = "songs:artist:" + filter.ArtistID
		match = func(s domain.Song) bool { return s.ArtistID == filter.ArtistID }
	}
	if err := c.enter(ctx, "list songs", key); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.Filter(c.songs, func(s domain.Song, _ int) bool { return match(s) }), nil
}

// CreateArtist stores a new artist with a generated id.
func (c *Catalog) CreateArtist(ctx context.Context, patch domain.ArtistPatch) (domain.Artist, error) {
	if err := c.enter(ctx, "create artist", "create:artist"); err != nil {
		return domain.Artist{}, err
	}
	a := domain.Artist{ID: uuid.NewString(), Name: patch.Name, Bio: patch.Bio}
	c.AddArtist(a)
	return a, nil
}

// UpdateArtist replaces an artist by id.
func (c *Catalog) UpdateArtist(ctx context.Context, id string, patch domain.ArtistPatch) (domain.Artist, error) {
	if err := c.enter(ctx, "update artist", "update:artist:"+id); err != nil {
		return domain.Artist{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.artists, func(a domain.Artist) bool { return a.ID == id })
	if i < 0 {
		return domain.Artist{}, notFound("update artist", id)
	}
	c.artists[i].Name = patch.Name
	c.artists[i].Bio = patch.Bio
	return c.artists[i], nil
}

// DeleteArtist removes an artist by id.
func (c *Catalog) DeleteArtist(ctx context.Context, id string) error {
	if err := c.enter(ctx, "delete artist", "delete:artist:"+id); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	before := len(c.artists)
	c.artists = slices.DeleteFunc(c.artists, func(a domain.Artist) bool { return a.ID == id })
	if len(c.artists) == before {
		return notFound("delete artist", id)
	}
	return nil
}

// CreateAlbum stores a new album with a generated id.
func (c *Catalog) CreateAlbum(ctx context.Context, patch domain.AlbumPatch) (domain.Album, error) {
	if err := c.enter(ctx, "create album", "create:album"); err != nil {
		return domain.Album{}, err
	}
	a := domain.Album{ID: uuid.NewString(), Title: patch.Title, ArtistID: patch.ArtistID, Year: patch.Year, CoverArt: patch.CoverArt}
	c.AddAlbum(a)
	return a, nil
}

// UpdateAlbum replaces an album by id.
func (c *Catalog) UpdateAlbum(ctx context.Context, id string, patch domain.AlbumPatch) (domain.Album, error) {
	if err := c.enter(ctx, "update album", "update:album:"+id); err != nil {
		return domain.Album{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.albums, func(a domain.Album) bool { return a.ID == id })
	if i < 0 {
		return domain.Album{}, notFound("update album", id)
	}
	c.albums[i].Title = patch.Title
	c.albums[i].ArtistID = patch.ArtistID
	c.albums[i].Year = patch.Year
	c.albums[i].CoverArt = patch.CoverArt
	return c.albums[i], nil
}

// DeleteAlbum removes an album by id.
func (c *Catalog) DeleteAlbum(ctx context.Context, id string) error {
	if err := c.enter(ctx, "delete album", "delete:album:"+id); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	before := len(c.albums)
	c.albums = slices.DeleteFunc(c.albums, func(a domain.Album) bool { return a.ID == id })
	if len(c.albums) == before {
		return notFound("delete album", id)
	}
	return nil
}

// UpdateSong replaces a song by id.
func (c *Catalog) UpdateSong(ctx context.Context, id string, patch domain.SongPatch) (domain.Song, error) {
	if err := c.enter(ctx, "update song", "update:song:"+id); err != nil {
		return domain.Song{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.songs, func(s domain.Song) bool { return s.ID == id })
	if i < 0 {
		return domain.Song{}, notFound("update song", id)
	}
	c.songs[i].Title = patch.Title
	c.songs[i].ArtistID = patch.ArtistID
	c.songs[i].AlbumID = patch.AlbumID
	c.songs[i].TrackNumber = patch.TrackNumber
	return c.songs[i], nil
}

// DeleteSong removes a song by id.
func (c *Catalog) DeleteSong(ctx context.Context, id string) error {
	if err := c.enter(ctx, "delete song", "delete:song:"+id); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	before := len(c.songs)
	c.songs = slices.DeleteFunc(c.songs, func(s domain.Song) bool { return s.ID == id })
	if len(c.songs) == before {
		return notFound("delete song", id)
	}
	return nil
}

// UploadSong stores a song built from the request. The file size is the
// number of bytes read from the body.
func (c *Catalog) UploadSong(ctx context.Context, req ports.UploadRequest) (domain.Song, error) {
	if err := c.enter(ctx, "upload song", "upload"); err != nil {
		return domain.Song{}, err
	}
	var size int64
	if req.Body != nil {
		n, err := io.Copy(io.Discard, req.Body)
		if err != nil {
			return domain.Song{}, domain.NewCatalogError("upload song", 0, "read file", err)
		}
		size = n
	}
	s := domain.Song{
		ID:       uuid.NewString(),
		Title:    req.Title,
		ArtistID: req.ArtistID,
		AlbumID:  req.AlbumID,
		FileSize: size,
	}
	if req.TrackNumber > 0 {
		s.TrackNumber = lo.ToPtr(req.TrackNumber)
	}
	c.AddSong(s)
	return s, nil
}

// StreamURL returns a fake stream URL.
func (c *Catalog) StreamURL(songID string) string {
	return "fake://songs/" + songID + "/stream"
}

func notFound(op, id string) error {
	return domain.NewCatalogError(op, 404, fmt.Sprintf("%s not found", id), nil)
}

// Verify that Catalog implements the CatalogClient interface
var _ ports.CatalogClient = (*Catalog)(nil)
