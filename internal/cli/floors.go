package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/ambient/internal/core"
)

var floorsCmd = &cobra.Command{
	Use:   "floors",
	Short: "List floors and their tracks",
	Long:  `Load every configured track and show which floors are playable.`,
	RunE:  runFloors,
}

func init() {
	rootCmd.AddCommand(floorsCmd)
}

type floorJSON struct {
	Floor  int    `json:"floor"`
	Title  string `json:"title"`
	Path   string `json:"path"`
	Loaded bool   `json:"loaded"`
	Error  string `json:"error,omitempty"`
}

func runFloors(cmd *cobra.Command, args []string) error {
	ctrl, err := loadController(cmd.Context())
	if err != nil {
		return err
	}
	tracks := ctrl.Tracks()
	ctrl.Cleanup()

	if JSONOutput() {
		out := make([]floorJSON, len(tracks))
		for i, t := range tracks {
			out[i] = floorJSON{Floor: t.Floor, Title: t.Title, Path: t.Path, Loaded: t.Loaded}
			if t.LoadErr != nil {
				out[i].Error = t.LoadErr.Error()
			}
		}
		return printJSON(out)
	}

	writeFloors(os.Stdout, tracks, core.PlaybackState{})
	return nil
}
