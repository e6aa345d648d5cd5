package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tessro/ambient/internal/audio"
	"github.com/tessro/ambient/internal/tail"
	"github.com/tessro/ambient/internal/wizard"
)

var (
	tailNoEmoji   bool
	tailTimestamp bool
	tailFormat    string
	tailInterval  time.Duration
	tailDwell     time.Duration
	tailRounds    int
)

var tailCmd = &cobra.Command{
	Use:   "tail [floor...]",
	Short: "Tour floors and follow playback changes",
	Long: `Play the given floors in turn (all playable floors by default), moving to
the next one every --dwell, and print playback changes as they happen.

Events tracked:
  - Track changes and staged tracks
  - Pause/Resume
  - Volume changes
  - Transition start/end
  - Preloaded next floor`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	tailCmd.Flags().BoolVarP(&tailTimestamp, "timestamp", "t", false, "show timestamps")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom format template")
	tailCmd.Flags().DurationVarP(&tailInterval, "interval", "i", 250*time.Millisecond, "poll interval")
	tailCmd.Flags().DurationVarP(&tailDwell, "dwell", "d", 10*time.Second, "time spent on each floor")
	tailCmd.Flags().IntVarP(&tailRounds, "rounds", "r", 0, "number of passes over the floors (0: until interrupted)")

	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if !flags.Changed("interval") {
		tailInterval = time.Duration(cfg.Tail.Interval) * time.Millisecond
	}
	if !flags.Changed("no-emoji") {
		tailNoEmoji = !cfg.Tail.Emoji
	}
	if !flags.Changed("timestamp") {
		tailTimestamp = cfg.Tail.Timestamp
	}
	if !flags.Changed("format") {
		tailFormat = cfg.Tail.Format
	}
	if tailFormat != "" {
		if _, err := tail.ParseTemplate(tailFormat); err != nil {
			return fmt.Errorf("invalid format template: %w", err)
		}
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	ctrl, err := openController(ctx)
	if err != nil {
		return err
	}
	defer shutdown(ctrl)

	floors, err := tourFloors(args, ctrl)
	if err != nil {
		return err
	}

	formatter := tail.NewFormatter(
		tail.WithEmoji(!tailNoEmoji),
		tail.WithTimestamp(tailTimestamp),
		tail.WithTemplate(tailFormat),
		tail.WithJSON(JSONOutput()),
	)
	watcher := tail.NewWatcher(ctrl, tailInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Start(gctx)
	})
	g.Go(func() error {
		defer watcher.Stop()
		return tour(gctx, ctrl, floors)
	})
	g.Go(func() error {
		for event := range watcher.Events() {
			fmt.Println(formatter.Format(event))
		}
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// tourFloors returns the floors named in args, or every playable floor.
func tourFloors(args []string, ctrl *audio.Controller) ([]int, error) {
	tracks := ctrl.Tracks()
	if len(args) == 0 {
		var floors []int
		for _, t := range tracks {
			if t.Loaded {
				floors = append(floors, t.Floor)
			}
		}
		return floors, nil
	}

	floors := make([]int, 0, len(args))
	for _, arg := range args {
		floor, ok := wizard.ParseFloor(arg)
		if !ok || floor >= len(tracks) {
			return nil, fmt.Errorf("invalid floor %q (have %d floors)", arg, len(tracks))
		}
		floors = append(floors, floor)
	}
	return floors, nil
}

// tour starts the first floor and moves through the rest every tailDwell.
func tour(ctx context.Context, ctrl *audio.Controller, floors []int) error {
	if len(floors) == 0 {
		return nil
	}

	change, play := ctrl.StartWithTrack(ctx, floors[0])
	logger.Debug("tour started", zap.Int("floor", floors[0]),
		zap.Stringer("change", change), zap.Stringer("play", play))

	ticker := time.NewTicker(tailDwell)
	defer ticker.Stop()

	for step := 1; tailRounds <= 0 || step < tailRounds*len(floors); step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		floor := floors[step%len(floors)]
		if outcome := ctrl.ChangeTrackSmooth(ctx, floor); !outcome.Accepted() {
			logger.Info("floor change skipped", zap.Int("floor", floor), zap.Stringer("outcome", outcome))
		}
	}

	// Let the last floor play out its dwell.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ticker.C:
		return nil
	}
}
