package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/testutil"
)

func writeAudio(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestIsFormatSupported(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"song.mp3", true},
		{"SONG.MP3", true},
		{"song.flac", true},
		{"song.m4a", true},
		{"cover.jpg", false},
		{"notes.txt", false},
		{"noext", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsFormatSupported(tt.path))
		})
	}

	formats := SupportedFormats()
	formats[0] = ".changed"
	assert.Equal(t, ".mp3", SupportedFormats()[0])
}

func TestInspectUpload_UntaggedFile(t *testing.T) {
	path := writeAudio(t, "Night Drive.mp3", []byte("not really audio"))

	up, err := InspectUpload(path)
	require.NoError(t, err)
	assert.Equal(t, "Night Drive", up.Title)
	assert.Equal(t, int64(len("not really audio")), up.Size)
	assert.Zero(t, up.TrackNumber)
}

func TestInspectUpload_Errors(t *testing.T) {
	_, err := InspectUpload(writeAudio(t, "cover.png", []byte{0x89}))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = InspectUpload(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSession_UploadFile(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)
	cat := newTestCatalog()
	sess, _, _ := newTestSession(cat)
	defer sess.Shutdown()

	sess.Selection.SelectArtist(&artistY)
	require.NoError(t, sess.Selection.SelectAlbum(&albumA2))
	sess.WaitIdle()

	path := writeAudio(t, "Bonus.mp3", []byte("0123456789"))

	_, err := sess.UploadFile(context.Background(), path, "", "", "")
	assert.ErrorIs(t, err, domain.ErrNoArtistSelected)

	song, err := sess.UploadFile(context.Background(), path, "", "ar1", "al2")
	require.NoError(t, err)
	assert.Equal(t, "Bonus", song.Title)
	assert.Equal(t, int64(10), song.FileSize)
	sess.WaitIdle()

	// the selected album was reloaded with the new song
	assert.Equal(t, []string{"s3", song.ID}, ids(sess.Selection.Songs()))

	song, err = sess.UploadFile(context.Background(), path, "Bonus (Alt)", "ar1", "")
	require.NoError(t, err)
	assert.Equal(t, "Bonus (Alt)", song.Title)
}
