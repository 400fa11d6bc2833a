package fake

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
	"github.com/tejashwikalptaru/tunestream/internal/testutil"
)

func TestCatalogScopes(t *testing.T) {
	c := NewCatalog()
	c.AddAlbum(domain.Album{ID: "al1", ArtistID: "a1"})
	c.AddAlbum(domain.Album{ID: "al2", ArtistID: "a2"})
	c.AddSong(domain.Song{ID: "s1", ArtistID: "a1", AlbumID: "al1"})
	c.AddSong(domain.Song{ID: "s2", ArtistID: "a1"})

	ctx := context.Background()
	albums, err := c.ListAlbums(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, albums, 1)

	songs, err := c.ListSongs(ctx, domain.SongFilter{AlbumID: "al1"})
	require.NoError(t, err)
	assert.Len(t, songs, 1)

	songs, err = c.ListSongs(ctx, domain.SongFilter{ArtistID: "a1"})
	require.NoError(t, err)
	assert.Len(t, songs, 2)

	assert.Equal(t, []string{"albums:a1", "songs:album:al1", "songs:artist:a1"}, c.Calls())
}

func TestCatalogHoldAndRelease(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	c := NewCatalog()
	c.AddArtist(domain.Artist{ID: "a1"})
	c.Hold("artists")

	done := make(chan []domain.Artist)
	go func() {
		artists, _ := c.ListArtists(context.Background())
		done <- artists
	}()

	select {
	case <-c.Waiting("artists", 1):
	case <-time.After(time.Second):
		t.Fatal("request never blocked")
	}

	select {
	case <-done:
		t.Fatal("held request returned early")
	default:
	}

	c.Release("artists")
	assert.Len(t, <-done, 1)
}

func TestCatalogHoldHonoursContext(t *testing.T) {
	c := NewCatalog()
	c.Hold("artists")
	defer c.Release("artists")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListArtists(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
}

func TestCatalogFailures(t *testing.T) {
	c := NewCatalog()
	c.Fail("albums:a1", domain.NewCatalogError("list albums", 500, "boom", nil))

	_, err := c.ListAlbums(context.Background(), "a1")
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)

	c.Fail("albums:a1", nil)
	_, err = c.ListAlbums(context.Background(), "a1")
	assert.NoError(t, err)

	err = c.DeleteSong(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogUpload(t *testing.T) {
	c := NewCatalog()
	song, err := c.UploadSong(context.Background(), ports.UploadRequest{
		Body: strings.NewReader("12345"), Title: "T", ArtistID: "a1", TrackNumber: 4,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, song.ID)
	assert.Equal(t, int64(5), song.FileSize)
	require.NotNil(t, song.TrackNumber)
	assert.Equal(t, 4, *song.TrackNumber)

	all, err := c.ListSongs(context.Background(), domain.SongFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
