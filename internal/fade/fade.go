// Package fade ramps handle volumes in discrete timed steps.
package fade

import (
	"context"
	"time"

	"github.com/tessro/ambient/internal/core"
)

const (
	// FadeSteps is the number of steps in a single-handle fade.
	FadeSteps = 20

	// CrossfadeSteps is the number of steps in a crossfade.
	CrossfadeSteps = 50
)

// Target is anything whose volume can be ramped.
type Target interface {
	SetVolume(v float64)
}

// Source is a crossfade's outgoing side; it is paused once silent.
type Source interface {
	Target
	Pause()
}

// Fade linearly ramps t from one volume to another over d.
//
// Every intermediate value is clamped to [0, 1] and the final step writes the
// exact target. ctx is checked before each step; a cancelled fade leaves the
// volume at its last written value and returns ctx.Err().
func Fade(ctx context.Context, t Target, from, to float64, d time.Duration) error {
	to = core.ClampVolume(to)
	delta := (to - from) / FadeSteps

	return run(ctx, FadeSteps, d, func(step int) {
		if step == FadeSteps {
			t.SetVolume(to)
			return
		}
		t.SetVolume(core.ClampVolume(from + delta*float64(step)))
	})
}

// Crossfade ramps from down and to up on one shared ticker.
//
// target is the volume to end at; it is read once by the caller. On
// completion from is silenced and paused and to sits exactly at target.
func Crossfade(ctx context.Context, from Source, to Target, target float64, d time.Duration) error {
	target = core.ClampVolume(target)

	return run(ctx, CrossfadeSteps, d, func(step int) {
		if step == CrossfadeSteps {
			from.SetVolume(0)
			to.SetVolume(target)
			from.Pause()
			return
		}
		p := float64(step) / CrossfadeSteps
		from.SetVolume(core.ClampVolume(target * (1 - p)))
		to.SetVolume(core.ClampVolume(target * p))
	})
}

// run calls fn for steps 1..n, one per tick of a d/n interval.
func run(ctx context.Context, n int, d time.Duration, fn func(step int)) error {
	interval := d / time.Duration(n)
	if interval <= 0 {
		for step := 1; step <= n; step++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(step)
		}
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for step := 1; step <= n; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		fn(step)
	}
	return nil
}
