package player

import "time"

// Media is a single playable resource. Implementations wrap a real audio
// backend; tests use an in-memory fake.
type Media interface {
	// Play requests playback. done is called exactly once, possibly from
	// another goroutine, with nil on success or the reason playback could
	// not start.
	Play(done func(error))
	Pause()
	Paused() bool
	CurrentTime() time.Duration
	SetCurrentTime(time.Duration)
	// Duration reports false while the length is not known yet.
	Duration() (time.Duration, bool)
	Volume() float64
	SetVolume(float64)
}

// VolumeStore persists the single volume preference
type VolumeStore interface {
	Volume() (float64, bool)
	SetVolume(float64)
}

// Dispatcher runs fn on the goroutine that owns the controller
type Dispatcher func(fn func())

// Bounds is the horizontal extent of the progress track
type Bounds struct {
	Left  float64
	Width float64
}

// PointerHandler is the capability a UI toolkit drives for scrub gestures.
// Mouse and touch sequences both map onto it.
type PointerHandler interface {
	PointerDown(x float64, bounds Bounds)
	PointerMove(x float64, bounds Bounds)
	PointerUp()
}
