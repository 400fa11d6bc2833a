package fyne

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/tunestream/internal/service"
	"github.com/tejashwikalptaru/tunestream/res"
)

// UploadDialog is a file open dialog limited to uploadable audio files.
type UploadDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
}

// NewUploadDialog creates a new upload dialog.
func NewUploadDialog(window fyne.Window, callback func(string), logger *slog.Logger) *UploadDialog {
	return &UploadDialog{
		window:   window,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the file dialog.
func (d *UploadDialog) Show() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			d.logger.Error("upload dialog error", slog.Any("error", err))
			return
		}
		if reader == nil {
			return // User cancelled
		}
		defer reader.Close()

		filePath := reader.URI().Path()
		if d.callback != nil {
			d.callback(filePath)
		}
	}, d.window)
	fd.SetFilter(storage.NewExtensionFileFilter(service.SupportedFormats()))
	fd.Show()
}

// ShowArtistForm asks for the name and bio of a new artist.
func ShowArtistForm(window fyne.Window, submit func(name, bio string)) {
	name := widget.NewEntry()
	name.SetPlaceHolder("Name")
	bio := widget.NewMultiLineEntry()
	bio.SetPlaceHolder("Optional")

	items := []*widget.FormItem{
		widget.NewFormItem("Name", name),
		widget.NewFormItem("Bio", bio),
	}
	dialog.ShowForm("New Artist", "Create", "Cancel", items, func(ok bool) {
		if ok {
			submit(name.Text, bio.Text)
		}
	}, window)
}

// ShowAlbumForm asks for the title and release year of a new album.
func ShowAlbumForm(window fyne.Window, submit func(title, year string)) {
	title := widget.NewEntry()
	title.SetPlaceHolder("Title")
	year := widget.NewEntry()
	year.SetPlaceHolder("Optional")

	items := []*widget.FormItem{
		widget.NewFormItem("Title", title),
		widget.NewFormItem("Year", year),
	}
	dialog.ShowForm("New Album", "Create", "Cancel", items, func(ok bool) {
		if ok {
			submit(title.Text, year.Text)
		}
	}, window)
}

// ConfirmDelete asks before deleting the named item.
func ConfirmDelete(window fyne.Window, name string, confirmed func()) {
	dialog.ShowConfirm("Delete", "Delete \""+name+"\" from the catalog?", func(ok bool) {
		if ok {
			confirmed()
		}
	}, window)
}

// ShowAbout shows the about text with the running version.
func ShowAbout(window fyne.Window, version string) {
	content := widget.NewRichTextFromMarkdown(res.AboutContent + "\n\n*" + version + "*")
	content.Wrapping = fyne.TextWrapWord
	d := dialog.NewCustom("About "+AppName, "Close", content, window)
	d.Resize(fyne.NewSize(420, 300))
	d.Show()
}
