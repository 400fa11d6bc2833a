package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func uploadCmd(e *env) *cobra.Command {
	var artistID, albumID, title string
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload an audio file to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := e.newApp(true)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			song, err := application.Session().UploadFile(cmd.Context(), args[0], title, artistID, albumID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %q as %s (%s)\n",
				song.Title, song.ID, humanize.Bytes(uint64(max(song.FileSize, 0))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&artistID, "artist", "a", "", "artist id")
	cmd.Flags().StringVar(&albumID, "album", "", "album id (optional)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "song title (defaults to the file's tag or name)")
	_ = cmd.MarkFlagRequired("artist")
	return cmd
}
