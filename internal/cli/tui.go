package cli

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tessro/ambient/internal/tui"
	"github.com/tessro/ambient/internal/wizard"
)

var (
	tuiRefresh  int
	tuiAutoplay bool
)

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides a live view with:
  • Floors - every floor, its load status and the preloaded next floor
  • Now Playing - current floor, play state and volume
  • History - recent floor changes and their outcome

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  j/k, 0-9     Select floor
  Enter        Crossfade to selected floor
  Space        Play/Pause
  +/-          Volume up/down
  Tab          Switch panel`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "refresh interval in milliseconds (default from config)")
	tuiCmd.Flags().BoolVar(&tuiAutoplay, "autoplay", true, "start the default floor on launch")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	ctrl, err := openController(ctx)
	if err != nil {
		return err
	}
	defer shutdown(ctrl)

	if tuiAutoplay {
		if floor := wizard.FirstPlayable(ctrl.Tracks(), cfg.Playback.DefaultFloor); floor >= 0 {
			go func() {
				change, play := ctrl.StartWithTrack(ctx, floor)
				logger.Debug("autoplay", zap.Int("floor", floor),
					zap.Stringer("change", change), zap.Stringer("play", play))
			}()
		}
	}

	refresh := tuiRefresh
	if refresh <= 0 {
		refresh = cfg.TUI.RefreshInterval
	}
	return tui.Run(ctrl, time.Duration(refresh)*time.Millisecond, cfg.TUI.Theme)
}
