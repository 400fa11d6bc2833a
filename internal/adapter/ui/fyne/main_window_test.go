package fyne

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"github.com/tejashwikalptaru/tunestream/internal/adapter/ui/fyne/widgets"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

func newTestWindow(t *testing.T) *MainWindow {
	t.Helper()
	return NewMainWindow(test.NewTempApp(t), 800, 600, "TuneStream test")
}

func TestMainWindow_Lists(t *testing.T) {
	w := newTestWindow(t)
	year := 1959

	w.SetArtists([]domain.Artist{{ID: "ar1", Name: "Miles"}, {ID: "ar2", Name: "Nina"}}, 1)
	w.SetAlbums([]domain.Album{{ID: "al1", Title: "Blue", ArtistID: "ar2", Year: &year}}, -1)
	w.SetSongs([]domain.Song{{ID: "s1", Title: "One"}, {ID: "s2", Title: "Two"}}, 1, domain.ModeFlat)

	assert.Equal(t, 2, w.artistList.Length())
	assert.Equal(t, 1, w.albumList.Length())
	assert.Equal(t, 2, w.songList.Length())
	assert.Equal(t, 1, w.currentSong)
	assert.Equal(t, "All Songs", w.songHeader.Text)
	assert.Equal(t, "Blue (1959)", albumLabel(w.albums[0]))

	w.SetLoading(true, false, true)
	assert.Equal(t, "Artists (loading…)", w.artistHeader.Text)
	assert.Equal(t, "Albums", w.albumHeader.Text)
	assert.Equal(t, "All Songs (loading…)", w.songHeader.Text)
}

func TestMainWindow_PlayerBar(t *testing.T) {
	w := newTestWindow(t)
	song := domain.Song{ID: "s1", Title: "One", Duration: 200}

	w.SetNowPlaying(nil, domain.StatusIdle)
	assert.Equal(t, "Nothing playing", w.nowPlaying.Text)

	w.SetNowPlaying(&song, domain.StatusLoading)
	assert.Equal(t, "Loading One…", w.nowPlaying.Text)

	w.SetNowPlaying(&song, domain.StatusPlaying)
	assert.Equal(t, "One", w.nowPlaying.Text)

	w.SetProgress(0.25, 50, 200)
	assert.InDelta(t, 0.25, w.progress.Value, 1e-9)
	assert.InDelta(t, 0.25, w.ring.Fraction(), 1e-9)
	assert.Equal(t, "0:50 / 3:20", w.timeLabel.Text)

	w.SetNavigation(false)
	assert.True(t, w.prevButton.Disabled())
	assert.True(t, w.nextButton.Disabled())
	w.SetNavigation(true)
	assert.False(t, w.nextButton.Disabled())

	w.ShowError("server down")
	assert.True(t, w.errorLabel.Visible())
	assert.Equal(t, "server down", w.errorLabel.Text)
	w.ShowError("")
	assert.False(t, w.errorLabel.Visible())
}

func TestMainWindow_CurrentRowShowsProgressRing(t *testing.T) {
	w := newTestWindow(t)
	w.SetSongs([]domain.Song{{ID: "s1", Title: "One"}, {ID: "s2", Title: "Two"}}, 1, domain.ModeLibrary)
	w.SetProgress(0.4, 80, 200)

	current := widgets.NewSongRow(nil, nil)
	w.updateSongRow(1, current)
	assert.True(t, current.RingVisible())
	assert.InDelta(t, 0.4, current.Progress(), 1e-9)
	assert.Equal(t, "▶ Two", current.Title())

	other := widgets.NewSongRow(nil, nil)
	w.updateSongRow(0, other)
	assert.False(t, other.RingVisible())
	assert.Zero(t, other.Progress())
}
