package fade

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	volumes []float64
	paused  int
}

func (r *recorder) SetVolume(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.volumes = append(r.volumes, v)
}

func (r *recorder) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused++
}

func (r *recorder) history() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.volumes...)
}

func (r *recorder) last() float64 {
	h := r.history()
	if len(h) == 0 {
		return -1
	}
	return h[len(h)-1]
}

func TestFade_StepsAndEndpoint(t *testing.T) {
	r := &recorder{}
	err := Fade(context.Background(), r, 0, 0.7, 20*time.Millisecond)
	require.NoError(t, err)

	h := r.history()
	require.Len(t, h, FadeSteps)
	assert.Equal(t, 0.7, h[len(h)-1], "final step must write the exact target")
	for i := 1; i < len(h); i++ {
		assert.GreaterOrEqual(t, h[i], h[i-1], "fade in must be monotonic")
	}
	assert.InDelta(t, 0.035, h[0], 1e-9)
}

func TestFade_Down(t *testing.T) {
	r := &recorder{}
	require.NoError(t, Fade(context.Background(), r, 0.5, 0, 10*time.Millisecond))

	h := r.history()
	require.Len(t, h, FadeSteps)
	assert.Equal(t, 0.0, h[len(h)-1])
	for _, v := range h {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 0.5)
	}
}

func TestFade_ClampsOutOfRange(t *testing.T) {
	r := &recorder{}
	require.NoError(t, Fade(context.Background(), r, -0.5, 1.5, 0))

	for _, v := range r.history() {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Equal(t, 1.0, r.last())
}

func TestFade_TakesAboutDuration(t *testing.T) {
	r := &recorder{}
	start := time.Now()
	require.NoError(t, Fade(context.Background(), r, 0, 1, 40*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestFade_Cancelled(t *testing.T) {
	r := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Fade(ctx, r, 0, 1, 20*time.Millisecond)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.history(), "no step should run after cancellation")
}

func TestFade_CancelledMidway(t *testing.T) {
	r := &recorder{}
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	err := Fade(ctx, r, 0, 1, 200*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, len(r.history()), FadeSteps)
	assert.Less(t, r.last(), 1.0)
}

func TestCrossfade(t *testing.T) {
	from := &recorder{}
	to := &recorder{}

	require.NoError(t, Crossfade(context.Background(), from, to, 0.5, 25*time.Millisecond))

	fh := from.history()
	th := to.history()
	require.Len(t, fh, CrossfadeSteps)
	require.Len(t, th, CrossfadeSteps)

	assert.Equal(t, 0.0, fh[len(fh)-1])
	assert.Equal(t, 0.5, th[len(th)-1])
	assert.Equal(t, 1, from.paused)
	assert.Equal(t, 0, to.paused)

	// Both sides advance on the same tick, so their sum stays at the target.
	for i := 0; i < CrossfadeSteps; i++ {
		assert.InDelta(t, 0.5, fh[i]+th[i], 1e-9, "step %d", i+1)
	}
}

func TestCrossfade_Cancelled(t *testing.T) {
	from := &recorder{}
	to := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Crossfade(ctx, from, to, 1, 10*time.Millisecond)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, from.paused, "cancelled crossfade must not pause the source")
}
