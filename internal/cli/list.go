package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

func artistsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "artists",
		Aliases: []string{"ar"},
		Short:   "List artists",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := e.newApp(true)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			artists, err := application.Catalog().ListArtists(cmd.Context())
			if err != nil {
				return err
			}
			renderArtists(cmd.OutOrStdout(), artists)
			return nil
		},
	}
}

func albumsCmd(e *env) *cobra.Command {
	var artistID string
	cmd := &cobra.Command{
		Use:     "albums",
		Aliases: []string{"al"},
		Short:   "List the albums of an artist",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := e.newApp(true)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			albums, err := application.Catalog().ListAlbums(cmd.Context(), artistID)
			if err != nil {
				return err
			}
			renderAlbums(cmd.OutOrStdout(), albums)
			return nil
		},
	}
	cmd.Flags().StringVarP(&artistID, "artist", "a", "", "artist id")
	_ = cmd.MarkFlagRequired("artist")
	return cmd
}

func songsCmd(e *env) *cobra.Command {
	var filter domain.SongFilter
	cmd := &cobra.Command{
		Use:   "songs",
		Short: "List songs of an album, an artist or the whole catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := e.newApp(true)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			songs, err := application.Catalog().ListSongs(cmd.Context(), filter)
			if err != nil {
				return err
			}
			renderSongs(cmd.OutOrStdout(), songs)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.AlbumID, "album", "", "album id")
	cmd.Flags().StringVarP(&filter.ArtistID, "artist", "a", "", "artist id")
	cmd.MarkFlagsMutuallyExclusive("album", "artist")
	return cmd
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderArtists(w io.Writer, artists []domain.Artist) {
	if len(artists) == 0 {
		fmt.Fprintln(w, "No artists found")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Added"})
	for _, a := range artists {
		t.AppendRow(table.Row{a.ID, a.Name, added(a.CreatedAt)})
	}
	t.Render()
}

func renderAlbums(w io.Writer, albums []domain.Album) {
	if len(albums) == 0 {
		fmt.Fprintln(w, "No albums found")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Title", "Year"})
	for _, a := range albums {
		year := ""
		if a.Year != nil {
			year = strconv.Itoa(*a.Year)
		}
		t.AppendRow(table.Row{a.ID, a.Title, year})
	}
	t.Render()
}

func renderSongs(w io.Writer, songs []domain.Song) {
	if len(songs) == 0 {
		fmt.Fprintln(w, "No songs found")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Title", "Artist / Album", "Length", "Size"})
	var total int64
	for _, s := range songs {
		t.AppendRow(table.Row{
			s.ID,
			s.DisplayTitle(),
			s.Subtitle(),
			domain.FormatDuration(s.Duration),
			humanize.Bytes(uint64(max(s.FileSize, 0))),
		})
		total += max(s.FileSize, 0)
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d songs", len(songs)), "", "", humanize.Bytes(uint64(total))})
	t.Render()
}

// added renders a creation time relative to now, e.g. "3 days ago".
func added(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}
