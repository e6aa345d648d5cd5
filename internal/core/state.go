package core

// PlaybackState is the controller's observable state.
type PlaybackState struct {
	Current       *Track  `json:"current"`
	Next          *Track  `json:"next"`
	Playing       bool    `json:"playing"`
	Volume        float64 `json:"volume"`
	Transitioning bool    `json:"transitioning"`
}

// HasTrack returns true if there is a current track.
func (s *PlaybackState) HasTrack() bool {
	return s != nil && s.Current != nil
}

// CurrentFloor returns the floor of the current track, or -1.
func (s *PlaybackState) CurrentFloor() int {
	if !s.HasTrack() {
		return -1
	}
	return s.Current.Floor
}

// NextFloor returns the floor of the preloaded track, or -1.
func (s *PlaybackState) NextFloor() int {
	if s == nil || s.Next == nil {
		return -1
	}
	return s.Next.Floor
}

// VolumePercent returns the target volume as an integer percentage (0-100).
func (s *PlaybackState) VolumePercent() int {
	if s == nil {
		return 0
	}
	return int(ClampVolume(s.Volume)*100 + 0.5)
}

// ClampVolume limits v to the range [0, 1].
func ClampVolume(v float64) float64 {
	if v != v { // NaN
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
