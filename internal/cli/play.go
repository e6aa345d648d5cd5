package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/ambient/internal/audio"
	"github.com/tessro/ambient/internal/core"
	apperrors "github.com/tessro/ambient/internal/errors"
	"github.com/tessro/ambient/internal/wizard"
)

var (
	playWatchConfig bool
	playFor         time.Duration
)

var errNoFloorSelected = errors.New("no floor selected")

var playCmd = &cobra.Command{
	Use:   "play [floor]",
	Short: "Play a floor's track",
	Long: `Load all tracks, start the given floor and keep playing until interrupted.
Without a floor, a picker is shown on a terminal; otherwise the default floor
from the config plays.

Examples:
  ambient play                 # Pick a floor
  ambient play 2               # Play floor 2
  ambient play 0 --for 30s     # Play floor 0 for 30 seconds
  ambient play --watch-config  # Apply volume edits from the config file`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVarP(&playWatchConfig, "watch-config", "w", false, "apply volume and fade changes from the config file")
	playCmd.Flags().DurationVar(&playFor, "for", 0, "stop after this long (default: until interrupted)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	ctrl, err := openController(ctx)
	if err != nil {
		return err
	}
	defer shutdown(ctrl)

	floor, err := resolveFloor(args, ctrl.Tracks())
	if errors.Is(err, errNoFloorSelected) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := startFloor(ctx, ctrl, floor); err != nil {
		return err
	}

	if playWatchConfig {
		if err := watchConfig(ctx, ctrl); err != nil {
			return err
		}
	}

	if playFor > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(playFor):
		}
	} else {
		<-ctx.Done()
	}

	if !JSONOutput() {
		fmt.Println("⏹ Stopped")
	}
	return nil
}

// resolveFloor picks the floor to play from the argument, the picker or the
// config default.
func resolveFloor(args []string, tracks []core.Track) (int, error) {
	if !wizard.NeedsFloor(args) {
		floor, ok := wizard.ParseFloor(args[0])
		if !ok {
			return 0, apperrors.WithSuggestion(
				fmt.Errorf("invalid floor %q", args[0]),
				"Floors are numbered from 0. Run 'ambient floors' to list them",
			)
		}
		return floor, nil
	}

	interactive := wizard.NewInteractive()
	interactive.SetEnabled(!JSONOutput())
	interactive.SetTracks(tracks)
	if interactive.CanInteract() {
		floor, err := interactive.PromptFloor()
		if err != nil {
			return 0, err
		}
		if floor < 0 {
			return 0, errNoFloorSelected
		}
		return floor, nil
	}

	floor := wizard.FirstPlayable(tracks, cfg.Playback.DefaultFloor)
	if floor < 0 {
		return 0, apperrors.ErrFloorUnavailable
	}
	return floor, nil
}

// startFloor starts floor from silence and reports the result.
func startFloor(ctx context.Context, ctrl *audio.Controller, floor int) error {
	change, play := ctrl.StartWithTrack(ctx, floor)
	if !change.Accepted() {
		return apperrors.WithSuggestion(
			fmt.Errorf("%w: floor %d (%s)", apperrors.ErrFloorUnavailable, floor, change),
			"Run 'ambient floors' to see which tracks loaded",
		)
	}
	if play != audio.OutcomeOK {
		return fmt.Errorf("%w: floor %d (%s)", apperrors.ErrPlaybackStart, floor, play)
	}

	state := ctrl.Snapshot()
	if JSONOutput() {
		return printJSON(map[string]any{
			"status": "playing",
			"floor":  state.CurrentFloor(),
			"title":  state.Current.Title,
			"volume": state.Volume,
		})
	}
	fmt.Printf("▶ Playing %s at %s\n", state.Current, FormatVolume(state.Volume))
	return nil
}
