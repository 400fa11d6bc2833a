package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunestream/internal/adapter/catalog/fake"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
	"github.com/tejashwikalptaru/tunestream/internal/testutil"
)

func testCatalog() *fake.Catalog {
	year := 1959
	cat := fake.NewCatalog()
	cat.AddArtist(domain.Artist{ID: "ar1", Name: "Miles"})
	cat.AddArtist(domain.Artist{ID: "ar2", Name: "Nina"})
	cat.AddAlbum(domain.Album{ID: "al1", Title: "Kind of Blue", ArtistID: "ar1", Year: &year})
	cat.AddSong(domain.Song{ID: "s1", Title: "So What", ArtistID: "ar1", AlbumID: "al1", Duration: 545, FileSize: 8_700_000})
	cat.AddSong(domain.Song{ID: "s2", Title: "Blue in Green", ArtistID: "ar1", AlbumID: "al1", Duration: 337, FileSize: 5_400_000})
	cat.AddSong(domain.Song{ID: "s3", Title: "Sinnerman", ArtistID: "ar2", Duration: 622})
	return cat
}

// execute runs the command line against the catalog with config files and
// the working directory isolated in temp dirs.
func execute(t *testing.T, cat *fake.Catalog, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(logger.EnvLevel, "")
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	t.Chdir(t.TempDir())

	root := newRootCmd(&env{catalog: cat, logger: logger.NewTestLogger()})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--backend", "mock"))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestArtistsCommand(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	out, err := execute(t, testCatalog(), "", "artists")
	require.NoError(t, err)
	assert.Contains(t, out, "Miles")
	assert.Contains(t, out, "Nina")
	assert.Contains(t, out, "ar2")
}

func TestAlbumsCommand(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	out, err := execute(t, testCatalog(), "", "albums", "--artist", "ar1")
	require.NoError(t, err)
	assert.Contains(t, out, "Kind of Blue")
	assert.Contains(t, out, "1959")

	out, err = execute(t, testCatalog(), "", "albums", "--artist", "ar2")
	require.NoError(t, err)
	assert.Contains(t, out, "No albums found")

	_, err = execute(t, testCatalog(), "", "albums")
	assert.ErrorContains(t, err, "artist")
}

func TestSongsCommand(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	out, err := execute(t, testCatalog(), "", "songs", "--album", "al1")
	require.NoError(t, err)
	assert.Contains(t, out, "So What")
	assert.Contains(t, out, "9:05")
	assert.Contains(t, out, "8.7 MB")
	assert.Contains(t, out, "2 songs")
	assert.NotContains(t, out, "Sinnerman")

	out, err = execute(t, testCatalog(), "", "songs")
	require.NoError(t, err)
	assert.Contains(t, out, "3 songs")

	_, err = execute(t, testCatalog(), "", "songs", "--album", "al1", "--artist", "ar1")
	assert.Error(t, err)
}

func TestCatalogErrorsAreReturned(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	cat := testCatalog()
	cat.Fail("artists", domain.ErrNetworkFailure)
	_, err := execute(t, cat, "", "artists")
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
}

func TestInvalidServerFlag(t *testing.T) {
	_, err := execute(t, testCatalog(), "", "artists", "--server", "nowhere")
	assert.ErrorContains(t, err, "server_url")
}

func TestUploadCommand(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	path := filepath.Join(t.TempDir(), "Freddie Freeloader.mp3")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o600))

	cat := testCatalog()
	out, err := execute(t, cat, "", "upload", path, "--artist", "ar1", "--album", "al1")
	require.NoError(t, err)
	assert.Contains(t, out, `Uploaded "Freddie Freeloader"`)
	assert.Contains(t, out, "10 B")

	songs, err := cat.ListSongs(context.Background(), domain.SongFilter{AlbumID: "al1"})
	require.NoError(t, err)
	assert.Len(t, songs, 3)

	_, err = execute(t, cat, "", "upload", path)
	assert.ErrorContains(t, err, "artist")

	_, err = execute(t, cat, "", "upload", filepath.Join(t.TempDir(), "notes.txt"), "--artist", "ar1")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestPlayCommand(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	out, err := execute(t, testCatalog(), "n\nt\ng 60\nbogus\np\np\ns\nq\n", "play", "--album", "al1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 8)
	assert.Equal(t, "2 songs queued. Type h for help.", lines[0])
	assert.Contains(t, lines[1], "▶ So What")
	assert.Contains(t, lines[2], "▶ Blue in Green")
	assert.Contains(t, lines[3], "⏸ Blue in Green")
	assert.Contains(t, lines[4], "1:00 / 5:37")
	assert.Contains(t, lines[5], `unknown command "bogus"`)
	// previous wraps around the collection
	assert.Contains(t, lines[6], "So What")
	assert.Contains(t, lines[7], "Blue in Green")
	assert.Contains(t, out, "■ stopped")
}

func TestPlayCommandEmptyCollection(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	out, err := execute(t, testCatalog(), "", "play", "--album", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "No songs found")
}

func TestPlayCommandEndsAtEOF(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	out, err := execute(t, testCatalog(), "i\n", "play", "--artist", "ar2")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "▶ Sinnerman"))
}
