package fyne

import (
	"fmt"
	"sync"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"

	"github.com/tejashwikalptaru/tunestream/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// AppName is the window title.
const AppName = "TuneStream"

const playerRingSize = 28

// MainWindow is the main UI window implementing the View interface.
// It handles all UI rendering and user interactions.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - User interactions are forwarded to the Presenter
//
// View methods may be called from any goroutine; they hand the widget
// updates to the UI thread with fyne.Do. The list data below is only touched
// on the UI thread.
type MainWindow struct {
	app     fyneapp.App
	window  fyneapp.Window
	version string

	// UI components
	artistList   *widget.List
	albumList    *widget.List
	songList     *widget.List
	artistHeader *widget.Label
	albumHeader  *widget.Label
	songHeader   *widget.Label
	prevButton   *widget.Button
	playButton   *widget.Button
	stopButton   *widget.Button
	nextButton   *widget.Button
	nowPlaying   *widget.Label
	timeLabel    *widget.Label
	progress     *widgets.SeekBar
	ring         *widgets.ProgressRing
	errorLabel   *widget.Label

	// List data (UI thread only)
	artists     []domain.Artist
	albums      []domain.Album
	songs       []domain.Song
	currentSong int
	fraction    float64
	mode        domain.BrowseMode
	syncing     bool

	// Lifecycle management
	closeOnce sync.Once

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates a new main window. version is shown in the About dialog.
func NewMainWindow(app fyneapp.App, width, height float32, version string) *MainWindow {
	w := &MainWindow{
		app:         app,
		version:     version,
		currentSong: -1,
	}

	// Create a window
	w.window = app.NewWindow(AppName)

	// Build UI
	w.buildUI()

	// Set window properties
	w.window.Resize(fyneapp.NewSize(width, height))

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	w.artistHeader = widget.NewLabelWithStyle("Artists", fyneapp.TextAlignLeading, fyneapp.TextStyle{Bold: true})
	w.albumHeader = widget.NewLabelWithStyle("Albums", fyneapp.TextAlignLeading, fyneapp.TextStyle{Bold: true})
	w.songHeader = widget.NewLabelWithStyle("Songs", fyneapp.TextAlignLeading, fyneapp.TextStyle{Bold: true})

	w.artistList = widget.NewList(
		func() int { return len(w.artists) },
		func() fyneapp.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, obj fyneapp.CanvasObject) {
			if i < len(w.artists) {
				obj.(*widget.Label).SetText(w.artists[i].Name)
			}
		},
	)

	w.albumList = widget.NewList(
		func() int { return len(w.albums) },
		func() fyneapp.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, obj fyneapp.CanvasObject) {
			if i < len(w.albums) {
				obj.(*widget.Label).SetText(albumLabel(w.albums[i]))
			}
		},
	)

	w.songList = widget.NewList(
		func() int { return len(w.songs) },
		func() fyneapp.CanvasObject {
			return widgets.NewSongRow(w.onSongTapped, w.onSongSecondaryTapped)
		},
		func(i widget.ListItemID, obj fyneapp.CanvasObject) {
			if i < len(w.songs) {
				w.updateSongRow(i, obj.(*widgets.SongRow))
			}
		},
	)

	// Player bar
	w.prevButton = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), nil)
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	w.stopButton = widget.NewButtonWithIcon("", theme.MediaStopIcon(), nil)
	w.nextButton = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), nil)

	w.nowPlaying = widget.NewLabel("Nothing playing")
	w.nowPlaying.Truncation = fyneapp.TextTruncateEllipsis
	w.nowPlaying.TextStyle = fyneapp.TextStyle{Bold: true, Italic: true}

	w.timeLabel = widget.NewLabel("0:00 / 0:00")
	w.progress = widgets.NewSeekBar(nil)
	w.ring = widgets.NewProgressRing(playerRingSize)

	w.errorLabel = widget.NewLabel("")
	w.errorLabel.Importance = widget.DangerImportance
	w.errorLabel.Wrapping = fyneapp.TextWrapWord
	w.errorLabel.Hide()

	buttons := container.NewHBox(w.prevButton, w.playButton, w.stopButton, w.nextButton)
	info := container.NewBorder(nil, nil, container.NewHBox(buttons, w.ring), w.timeLabel, w.nowPlaying)
	player := container.NewVBox(w.errorLabel, info, w.progress)

	// Browse columns
	artistColumn := container.NewBorder(w.artistHeader, nil, nil, nil, w.artistList)
	albumColumn := container.NewBorder(w.albumHeader, nil, nil, nil, w.albumList)
	songColumn := container.NewBorder(w.songHeader, nil, nil, nil, w.songList)

	left := container.NewHSplit(artistColumn, albumColumn)
	browse := container.NewHSplit(left, songColumn)
	browse.Offset = 0.45

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ViewRefreshIcon(), w.onRefresh),
		widget.NewToolbarAction(theme.ListIcon(), w.onShowAllSongs),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.AccountIcon(), w.showArtistForm),
		widget.NewToolbarAction(theme.FolderNewIcon(), w.showAlbumForm),
		widget.NewToolbarAction(theme.UploadIcon(), w.showUploadDialog),
	)

	w.window.SetContent(container.NewPadded(container.NewBorder(toolbar, player, nil, nil, browse)))
	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	w.artistList.OnSelected = func(id widget.ListItemID) {
		if !w.syncing {
			w.presenter.OnArtistSelected(id)
		}
	}
	w.albumList.OnSelected = func(id widget.ListItemID) {
		if !w.syncing {
			w.presenter.OnAlbumSelected(id)
		}
	}

	w.playButton.OnTapped = w.presenter.OnPlayClicked
	w.stopButton.OnTapped = w.presenter.OnStopClicked
	w.nextButton.OnTapped = w.presenter.OnNextClicked
	w.prevButton.OnTapped = w.presenter.OnPreviousClicked
	w.progress.OnSeek = w.presenter.OnSeekRequested
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	separator := fyneapp.NewMenuItemSeparator()

	newArtist := fyneapp.NewMenuItem("New Artist…", w.showArtistForm)
	newAlbum := fyneapp.NewMenuItem("New Album…", w.showAlbumForm)
	upload := fyneapp.NewMenuItem("Upload Song…", w.showUploadDialog)
	exitMenu := fyneapp.NewMenuItem("Exit", func() {
		w.window.Close()
	})

	allSongs := fyneapp.NewMenuItem("All Songs", w.onShowAllSongs)
	refresh := fyneapp.NewMenuItem("Refresh", w.onRefresh)

	about := fyneapp.NewMenuItem("About", func() {
		ShowAbout(w.window, w.version)
	})

	return []*fyneapp.Menu{
		fyneapp.NewMenu("Library", newArtist, newAlbum, upload, separator, exitMenu),
		fyneapp.NewMenu("View", allSongs, refresh),
		fyneapp.NewMenu("Help", about),
	}
}

// Toolbar and menu actions

func (w *MainWindow) onRefresh() {
	if w.presenter != nil {
		w.presenter.OnRefreshClicked()
	}
}

func (w *MainWindow) onShowAllSongs() {
	if w.presenter != nil {
		w.presenter.OnShowAllSongs()
	}
}

func (w *MainWindow) showArtistForm() {
	if w.presenter == nil {
		return
	}
	ShowArtistForm(w.window, w.presenter.OnCreateArtist)
}

func (w *MainWindow) showAlbumForm() {
	if w.presenter == nil {
		return
	}
	ShowAlbumForm(w.window, w.presenter.OnCreateAlbum)
}

func (w *MainWindow) showUploadDialog() {
	if w.presenter == nil {
		return
	}
	NewUploadDialog(w.window, w.presenter.OnUploadFile, w.presenter.logger).Show()
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeySpace,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) {
		w.presenter.OnPlayClicked()
	})

	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyRight,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) {
		w.presenter.OnNextClicked()
	})

	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyLeft,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) {
		w.presenter.OnPreviousClicked()
	})
}

func (w *MainWindow) onSongTapped(index int) {
	if w.presenter != nil {
		w.presenter.OnSongTapped(index)
	}
}

func (w *MainWindow) onSongSecondaryTapped(index int, pos fyneapp.Position) {
	if w.presenter == nil || index >= len(w.songs) {
		return
	}
	song := w.songs[index]
	menu := fyneapp.NewMenu("",
		fyneapp.NewMenuItem("Play", func() { w.presenter.OnSongTapped(index) }),
		fyneapp.NewMenuItem("Delete", func() {
			ConfirmDelete(w.window, song.DisplayTitle(), func() {
				w.presenter.OnDeleteSong(index)
			})
		}),
	)
	widget.ShowPopUpMenuAtPosition(menu, w.window.Canvas(), pos)
}

func (w *MainWindow) updateSongRow(i int, row *widgets.SongRow) {
	song := w.songs[i]
	title := song.DisplayTitle()
	if i == w.currentSong {
		title = "▶ " + title
	}
	detail := domain.FormatDuration(song.Duration)
	if song.FileSize > 0 {
		detail += "  " + humanize.Bytes(uint64(song.FileSize))
	}
	if w.mode == domain.ModeFlat {
		if sub := song.Subtitle(); sub != "" {
			detail = sub + "  " + detail
		}
	}
	row.Set(i, title, detail, i == w.currentSong)
	if i == w.currentSong {
		row.SetProgress(w.fraction)
	}
}

// ShowAndRun shows the window and runs the application.
func (w *MainWindow) ShowAndRun() {
	w.window.ShowAndRun()
}

// Close closes the window.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		w.window.Close()
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// View interface implementation

// SetArtists updates the artist list.
func (w *MainWindow) SetArtists(artists []domain.Artist, selected int) {
	fyneapp.Do(func() {
		w.artists = artists
		w.artistList.Refresh()
		w.selectRow(w.artistList, selected)
	})
}

// SetAlbums updates the album list.
func (w *MainWindow) SetAlbums(albums []domain.Album, selected int) {
	fyneapp.Do(func() {
		w.albums = albums
		w.albumList.Refresh()
		w.selectRow(w.albumList, selected)
	})
}

// SetSongs updates the song list.
func (w *MainWindow) SetSongs(songs []domain.Song, current int, mode domain.BrowseMode) {
	fyneapp.Do(func() {
		w.songs = songs
		w.currentSong = current
		w.mode = mode
		if mode == domain.ModeFlat {
			w.songHeader.SetText("All Songs")
		} else {
			w.songHeader.SetText("Songs")
		}
		w.songList.Refresh()
	})
}

// SetLoading marks the columns that are loading.
func (w *MainWindow) SetLoading(artists, albums, songs bool) {
	fyneapp.Do(func() {
		w.artistHeader.SetText(loadingTitle("Artists", artists))
		w.albumHeader.SetText(loadingTitle("Albums", albums))
		base := "Songs"
		if w.mode == domain.ModeFlat {
			base = "All Songs"
		}
		w.songHeader.SetText(loadingTitle(base, songs))
	})
}

// SetNowPlaying updates the song label and the play/pause button.
func (w *MainWindow) SetNowPlaying(song *domain.Song, status domain.TransportStatus) {
	fyneapp.Do(func() {
		switch {
		case song == nil:
			w.nowPlaying.SetText("Nothing playing")
		case status == domain.StatusLoading:
			w.nowPlaying.SetText("Loading " + song.DisplayTitle() + "…")
		default:
			w.nowPlaying.SetText(song.DisplayTitle())
		}

		if status == domain.StatusPlaying {
			w.playButton.SetIcon(theme.MediaPauseIcon())
		} else {
			w.playButton.SetIcon(theme.MediaPlayIcon())
		}
	})
}

// SetProgress updates the progress bar, the rings and the time label.
func (w *MainWindow) SetProgress(fraction, position, duration float64) {
	fyneapp.Do(func() {
		w.fraction = fraction
		w.progress.SetValue(fraction)
		w.ring.SetFraction(fraction)
		if w.currentSong >= 0 && w.currentSong < len(w.songs) {
			w.songList.RefreshItem(w.currentSong)
		}
		w.timeLabel.SetText(fmt.Sprintf("%s / %s", domain.FormatDuration(position), domain.FormatDuration(duration)))
	})
}

// SetNavigation enables next and previous when there is somewhere to go.
func (w *MainWindow) SetNavigation(enabled bool) {
	fyneapp.Do(func() {
		if enabled {
			w.prevButton.Enable()
			w.nextButton.Enable()
		} else {
			w.prevButton.Disable()
			w.nextButton.Disable()
		}
	})
}

// ShowError shows or clears the error line above the player bar.
func (w *MainWindow) ShowError(message string) {
	fyneapp.Do(func() {
		w.errorLabel.SetText(message)
		if message == "" {
			w.errorLabel.Hide()
		} else {
			w.errorLabel.Show()
		}
	})
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

// selectRow selects a row without forwarding it to the presenter.
func (w *MainWindow) selectRow(list *widget.List, index int) {
	w.syncing = true
	defer func() { w.syncing = false }()
	if index < 0 {
		list.UnselectAll()
		return
	}
	list.Select(index)
}

func albumLabel(a domain.Album) string {
	if a.Year != nil {
		return fmt.Sprintf("%s (%d)", a.Title, *a.Year)
	}
	return a.Title
}

func loadingTitle(title string, loading bool) string {
	if loading {
		return title + " (loading…)"
	}
	return title
}

// Verify View implementation
var _ ports.View = (*MainWindow)(nil)
