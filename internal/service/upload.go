package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dhowden/tag"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// supportedExts are the audio containers the catalog server accepts.
var supportedExts = []string{".mp3", ".flac", ".ogg", ".oga", ".wav", ".m4a", ".aac"}

// UploadFile describes a local audio file about to be uploaded. Title, artist,
// album and track number are taken from its tags when present.
type UploadFile struct {
	Path        string
	Size        int64
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	Year        int
}

// IsFormatSupported checks the file extension against the accepted formats.
func IsFormatSupported(path string) bool {
	return slices.Contains(supportedExts, strings.ToLower(filepath.Ext(path)))
}

// SupportedFormats returns the accepted file extensions.
func SupportedFormats() []string {
	return slices.Clone(supportedExts)
}

// InspectUpload stats the file and reads its tags. A file without readable
// tags is still valid; its title falls back to the file name.
func InspectUpload(path string) (UploadFile, error) {
	if !IsFormatSupported(path) {
		return UploadFile{}, fmt.Errorf("%s: %w", filepath.Base(path), domain.ErrUnsupportedFormat)
	}

	file, err := os.Open(path)
	if err != nil {
		return UploadFile{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return UploadFile{}, err
	}

	up := UploadFile{
		Path:  path,
		Size:  info.Size(),
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	metadata, err := tag.ReadFrom(file)
	if err != nil || metadata == nil {
		return up, nil
	}

	if title := strings.TrimSpace(metadata.Title()); title != "" {
		up.Title = title
	}
	up.Artist = strings.TrimSpace(metadata.Artist())
	up.Album = strings.TrimSpace(metadata.Album())
	up.TrackNumber, _ = metadata.Track()
	up.Year = metadata.Year()

	return up, nil
}

// UploadFile uploads a local file into the given artist and optional album.
// An empty title uses the one read from the file.
func (s *Session) UploadFile(ctx context.Context, path, title, artistID, albumID string) (domain.Song, error) {
	if artistID == "" {
		return domain.Song{}, domain.NewSelectionError("upload", "an artist is required", domain.ErrNoArtistSelected)
	}

	up, err := InspectUpload(path)
	if err != nil {
		return domain.Song{}, err
	}
	if title == "" {
		title = up.Title
	}

	file, err := os.Open(path)
	if err != nil {
		return domain.Song{}, err
	}
	defer file.Close()

	return s.Upload(ctx, ports.UploadRequest{
		Filename:    filepath.Base(path),
		Body:        file,
		Title:       title,
		ArtistID:    artistID,
		AlbumID:     albumID,
		TrackNumber: up.TrackNumber,
	})
}
