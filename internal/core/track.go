package core

import "fmt"

// TrackSource is a configured audio file for one floor.
type TrackSource struct {
	Path  string `json:"path" toml:"path" yaml:"path"`
	Title string `json:"title" toml:"title" yaml:"title"`
}

// Track is a registered source together with its playable handle.
type Track struct {
	Handle  Handle `json:"-"`
	Floor   int    `json:"floor"`
	Path    string `json:"path"`
	Title   string `json:"title"`
	Loaded  bool   `json:"loaded"`
	LoadErr error  `json:"-"`
}

// Source returns the configuration the track was built from.
func (t *Track) Source() TrackSource {
	return TrackSource{Path: t.Path, Title: t.Title}
}

// Playable returns true if the track loaded and still has a handle.
func (t *Track) Playable() bool {
	return t != nil && t.Loaded && t.Handle != nil
}

// String returns a short human-readable label.
func (t *Track) String() string {
	if t == nil {
		return "<none>"
	}
	return fmt.Sprintf("floor %d: %s", t.Floor, t.Title)
}

// View returns a copy of the track without its handle.
func (t *Track) View() *Track {
	if t == nil {
		return nil
	}
	return &Track{
		Floor:   t.Floor,
		Path:    t.Path,
		Title:   t.Title,
		Loaded:  t.Loaded,
		LoadErr: t.LoadErr,
	}
}
