package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/service"
)

const playHelp = `Commands:
  n, next       next song
  p, prev       previous song
  t, toggle     pause or resume
  s, stop       stop playback
  g SECONDS     seek
  i, status     show the current song
  q, quit       exit`

func playCmd(e *env) *cobra.Command {
	var filter domain.SongFilter
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play an album, an artist or the whole catalog from the terminal",
		Long:  "Play an album, an artist or the whole catalog from the terminal.\n\n" + playHelp,
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
			if len(songs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No songs found")
				return nil
			}

			p := &player{
				transport: application.Session().Transport,
				out:       cmd.OutOrStdout(),
			}
			return p.run(cmd.Context(), songs, cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVar(&filter.AlbumID, "album", "", "album id")
	cmd.Flags().StringVarP(&filter.ArtistID, "artist", "a", "", "artist id")
	cmd.MarkFlagsMutuallyExclusive("album", "artist")
	return cmd
}

// player drives the transport from line commands.
type player struct {
	transport *service.TransportService
	out       io.Writer
}

func (p *player) run(ctx context.Context, songs []domain.Song, in io.Reader) error {
	if err := p.transport.SetCollection(songs); err != nil {
		return err
	}
	if err := p.transport.Play(); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "%d songs queued. Type h for help.\n", len(songs))
	p.status()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := p.exec(line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

// exec runs one command line. It reports whether the player should exit.
func (p *player) exec(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	var err error
	switch fields[0] {
	case "n", "next":
		err = p.transport.Next()
	case "p", "prev", "previous":
		err = p.transport.Previous()
	case "t", "toggle":
		err = p.transport.Toggle()
	case "s", "stop":
		err = p.transport.Stop()
	case "g", "seek":
		if len(fields) < 2 {
			fmt.Fprintln(p.out, "seek needs a position in seconds")
			return false, nil
		}
		seconds, perr := strconv.ParseFloat(fields[1], 64)
		if perr != nil || math.IsNaN(seconds) {
			fmt.Fprintf(p.out, "invalid position %q\n", fields[1])
			return false, nil
		}
		err = p.transport.Seek(seconds)
	case "i", "status":
	case "h", "help", "?":
		fmt.Fprintln(p.out, playHelp)
		return false, nil
	case "q", "quit", "exit":
		return true, nil
	default:
		fmt.Fprintf(p.out, "unknown command %q\n", fields[0])
		return false, nil
	}

	if errors.Is(err, domain.ErrServiceClosed) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if err := p.transport.WaitIdle(); err != nil {
		return true, nil
	}
	p.status()
	return false, nil
}

// status prints the current song with its projected progress.
func (p *player) status() {
	state := p.transport.Snapshot()
	if state.Current == nil {
		fmt.Fprintln(p.out, "■ stopped")
		return
	}

	icon := "▶"
	switch state.Status {
	case domain.StatusPaused:
		icon = "⏸"
	case domain.StatusLoading:
		icon = "…"
	}
	fmt.Fprintf(p.out, "%s %s  %s / %s  %3.0f%%\n",
		icon,
		state.Current.DisplayTitle(),
		domain.FormatDuration(state.Position),
		domain.FormatDuration(state.Duration),
		state.Progress()*100)
	if state.Err != nil {
		fmt.Fprintf(p.out, "  error: %v\n", state.Err)
	}
}
