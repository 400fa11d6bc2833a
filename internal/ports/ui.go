// Package ports define the View interface for view abstraction.
// This interface allows the presenter to update the UI without depending on Fyne directly.
package ports

import (
	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// View is the interface for the user interface layer.
// This abstracts the Fyne UI implementation and allows for testing without a real UI.
//
// The presenter receives events from the event bus and calls these methods to
// update the UI. Events arrive on the services' notification goroutines, so
// implementations must hand their widget updates to the UI thread themselves.
type View interface {
	// Browse lists

	// SetArtists shows the artist list. selected is -1 when nothing is selected.
	SetArtists(artists []domain.Artist, selected int)

	// SetAlbums shows the albums of the selected artist.
	SetAlbums(albums []domain.Album, selected int)

	// SetSongs shows the active song collection. current is the index of the
	// current song, or -1 when it is not part of the collection.
	SetSongs(songs []domain.Song, current int, mode domain.BrowseMode)

	// SetLoading marks the lists that are waiting for the catalog.
	SetLoading(artists, albums, songs bool)

	// Player bar

	// SetNowPlaying shows the current song (nil for none) and its status.
	SetNowPlaying(song *domain.Song, status domain.TransportStatus)

	// SetProgress shows the projected fraction with its position and duration in seconds.
	SetProgress(fraction, position, duration float64)

	// SetNavigation enables or disables the next and previous controls.
	SetNavigation(enabled bool)

	// Notification methods

	// ShowError displays an error message. An empty message clears it.
	ShowError(message string)

	// ShowNotification displays a temporary notification to the user.
	ShowNotification(title, message string)
}
