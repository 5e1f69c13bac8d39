package model

import "errors"

// ErrNoTracks is returned when a playlist would be empty
var ErrNoTracks = errors.New("playlist has no tracks")

// Playlist is the fixed, ordered list of tracks the player cycles through.
// It is built once at startup and never changes size afterwards.
type Playlist struct {
	Title  string
	Tracks []*Track
}

// NewPlaylist creates a playlist from the given tracks
func NewPlaylist(title string, tracks []*Track) (*Playlist, error) {
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}
	return &Playlist{
		Title:  title,
		Tracks: tracks,
	}, nil
}

// Len returns the number of tracks
func (p *Playlist) Len() int {
	return len(p.Tracks)
}

// At returns the track at index i, or nil when out of range
func (p *Playlist) At(i int) *Track {
	if i < 0 || i >= len(p.Tracks) {
		return nil
	}
	return p.Tracks[i]
}

// Next returns the index after i, wrapping to the start
func (p *Playlist) Next(i int) int {
	return (i + 1) % len(p.Tracks)
}

// Prev returns the index before i, wrapping to the end
func (p *Playlist) Prev(i int) int {
	n := len(p.Tracks)
	return ((i-1)%n + n) % n
}

// Titles returns the display titles in playlist order
func (p *Playlist) Titles() []string {
	titles := make([]string, 0, len(p.Tracks))
	for _, track := range p.Tracks {
		titles = append(titles, track.GetDisplayTitle())
	}
	return titles
}
