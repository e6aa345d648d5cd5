package audio

import "github.com/tessro/ambient/internal/core"

// Registry maps floor indices to tracks. It is filled once by Initialize and
// emptied by Cleanup; the controller's mutex guards it.
type Registry struct {
	tracks []*core.Track
}

// Len returns the number of registered tracks.
func (r *Registry) Len() int {
	return len(r.tracks)
}

// At returns the track for floor.
func (r *Registry) At(floor int) (*core.Track, bool) {
	if floor < 0 || floor >= len(r.tracks) || r.tracks[floor] == nil {
		return nil, false
	}
	return r.tracks[floor], true
}

// NextFloor returns the floor after floor, wrapping around.
func (r *Registry) NextFloor(floor int) int {
	if len(r.tracks) == 0 {
		return -1
	}
	return (floor + 1) % len(r.tracks)
}

// Views returns handle-free copies of every track in floor order.
func (r *Registry) Views() []core.Track {
	out := make([]core.Track, 0, len(r.tracks))
	for _, t := range r.tracks {
		if t != nil {
			out = append(out, *t.View())
		}
	}
	return out
}

func (r *Registry) set(tracks []*core.Track) {
	r.tracks = tracks
}

func (r *Registry) clear() []*core.Track {
	tracks := r.tracks
	r.tracks = nil
	return tracks
}
