package player

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/samber/lo"

	"github.com/tnoatlas/atlas/internal/logger"
	"github.com/tnoatlas/atlas/internal/model"
)

// Transport constants
const (
	// RestartThreshold is the elapsed time after which Prev rewinds the
	// current track instead of moving to the previous one
	RestartThreshold = 3 * time.Second

	// DefaultVolume is used when no volume has been stored yet
	DefaultVolume = 0.5

	// UnmuteVolume is applied when the volume button is pressed while muted
	UnmuteVolume = 0.5
)

// ErrMediaMismatch is returned when the media list does not match the playlist
var ErrMediaMismatch = errors.New("media count does not match playlist length")

// State is the player state owned by a Controller
type State struct {
	CurrentTrackIndex    int
	IsPlaying            bool
	IsDraggingProgress   bool
	WasPlayingBeforeDrag bool
	Status               model.PlayerStatus
	Volume               float64
	Minimized            bool
}

// Controller keeps exactly one active track and exposes the transport
// operations. All methods must be called from the dispatcher goroutine.
type Controller struct {
	playlist *model.Playlist
	media    []Media
	store    VolumeStore
	dispatch Dispatcher

	state            State
	statusBeforeDrag model.PlayerStatus

	// generation identifies the latest play/pause command; completions of
	// older play requests are dropped
	generation uint64

	// consecutive play failures within the current auto-advance chain
	failures int

	firstInteractionDone bool
	onUpdate             func(ViewModel)
}

// Option configures a Controller
type Option func(*Controller)

// WithStartIndex selects the initial track instead of a random one
func WithStartIndex(index int) Option {
	return func(c *Controller) {
		c.state.CurrentTrackIndex = index
	}
}

// WithDispatcher sets how media completions are delivered back to the
// controller goroutine. The default runs them inline.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Controller) {
		if d != nil {
			c.dispatch = d
		}
	}
}

// NewController creates a controller over a playlist and one Media per track.
// The stored volume (or DefaultVolume) is applied to every track.
func NewController(playlist *model.Playlist, media []Media, store VolumeStore, opts ...Option) (*Controller, error) {
	if playlist == nil || playlist.Len() == 0 {
		return nil, model.ErrNoTracks
	}
	if len(media) != playlist.Len() {
		return nil, fmt.Errorf("%w: %d media for %d tracks", ErrMediaMismatch, len(media), playlist.Len())
	}

	c := &Controller{
		playlist: playlist,
		media:    media,
		store:    store,
		dispatch: func(fn func()) { fn() },
		state: State{
			CurrentTrackIndex: rand.IntN(playlist.Len()),
			Status:            model.PlayerStatusIdle,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.state.CurrentTrackIndex < 0 || c.state.CurrentTrackIndex >= playlist.Len() {
		return nil, fmt.Errorf("start index %d out of range [0,%d)", c.state.CurrentTrackIndex, playlist.Len())
	}

	c.restoreVolume()
	return c, nil
}

// SetUpdateCallback sets the callback invoked with a fresh view model after
// every observable change
func (c *Controller) SetUpdateCallback(callback func(ViewModel)) {
	c.onUpdate = callback
}

// State returns a copy of the current state
func (c *Controller) State() State {
	return c.state
}

// Playlist returns the playlist the controller cycles through
func (c *Controller) Playlist() *model.Playlist {
	return c.playlist
}

// ViewModel renders the current state for the UI
func (c *Controller) ViewModel() ViewModel {
	vm := Present(c.state, c.playlist.At(c.state.CurrentTrackIndex), c.snapshot())
	vm.TrackCount = c.playlist.Len()
	return vm
}

// Play pauses and rewinds every track, then requests playback of the track at
// index. If playback cannot start the controller advances to the next track.
// Each call starts a new auto-advance chain.
func (c *Controller) Play(index int) {
	c.failures = 0
	c.play(index)
}

func (c *Controller) play(index int) {
	if index < 0 || index >= c.playlist.Len() {
		logger.Warn("Play called with out of range index", logger.Int("index", index))
		return
	}

	for _, m := range c.media {
		m.Pause()
		m.SetCurrentTime(0)
	}

	c.state.CurrentTrackIndex = index
	c.state.IsPlaying = false
	c.state.Status = model.PlayerStatusLoading
	gen := c.bump()

	track := c.playlist.At(index)
	logger.Debug("Requesting playback",
		logger.Int("index", index),
		logger.String("track_id", track.ID),
		logger.String("title", track.Title),
		logger.Uint64("generation", gen))

	c.notify()

	c.media[index].Play(c.continuation(gen, func(err error) {
		if err != nil {
			c.failures++
			logger.Error("Playback failed",
				logger.Int("index", index),
				logger.String("track_id", track.ID),
				logger.ErrorField(err))

			if c.failures >= c.playlist.Len() {
				logger.Error("Every track failed to play, stopping",
					logger.Int("failures", c.failures))
				c.failures = 0
				c.state.Status = model.PlayerStatusIdle
				c.notify()
				return
			}
			c.play(c.playlist.Next(c.state.CurrentTrackIndex))
			return
		}

		c.failures = 0
		c.state.IsPlaying = true
		c.state.Status = model.PlayerStatusPlaying
		logger.Info("Track started",
			logger.Int("index", index),
			logger.String("title", track.Title))
		c.notify()
	}))
}

// Next advances to the following track, wrapping around, and plays it
func (c *Controller) Next() {
	c.Play(c.playlist.Next(c.state.CurrentTrackIndex))
}

// Prev restarts the current track when more than RestartThreshold has
// elapsed; otherwise it plays the previous track
func (c *Controller) Prev() {
	active := c.active()
	if active.CurrentTime() > RestartThreshold {
		active.SetCurrentTime(0)
		c.notify()
		return
	}
	c.Play(c.playlist.Prev(c.state.CurrentTrackIndex))
}

// TogglePlayPause pauses the active track or resumes it. A failed resume is
// only logged.
func (c *Controller) TogglePlayPause() {
	if c.state.IsPlaying {
		c.pauseActive()
		c.state.Status = model.PlayerStatusPaused
		c.notify()
		return
	}

	previous := c.state.Status
	c.resume(func() {
		if previous == model.PlayerStatusIdle {
			c.state.Status = model.PlayerStatusIdle
		} else {
			c.state.Status = model.PlayerStatusPaused
		}
	})
}

// SetVolume clamps v to [0,1], applies it to every track and persists it.
// NaN is ignored.
func (c *Controller) SetVolume(v float64) {
	if math.IsNaN(v) {
		logger.Warn("Ignoring NaN volume")
		return
	}
	v = lo.Clamp(v, 0, 1)

	for _, m := range c.media {
		m.SetVolume(v)
	}
	c.state.Volume = v
	if c.store != nil {
		c.store.SetVolume(v)
	}
	c.notify()
}

// ToggleMute switches between silence and UnmuteVolume
func (c *Controller) ToggleMute() {
	if c.active().Volume() == 0 {
		c.SetVolume(UnmuteVolume)
		return
	}
	c.SetVolume(0)
}

// SeekTo moves the active track to the pointer position inside bounds. It is
// ignored unless a drag is in progress and the track duration is known.
func (c *Controller) SeekTo(pointerX float64, bounds Bounds) {
	if !c.state.IsDraggingProgress {
		return
	}
	active := c.active()
	duration, ok := active.Duration()
	if !ok || duration <= 0 || bounds.Width <= 0 {
		return
	}

	pos := lo.Clamp((pointerX-bounds.Left)/bounds.Width, 0, 1)
	active.SetCurrentTime(time.Duration(pos * float64(duration)))
	c.notify()
}

// BeginDrag starts a scrub gesture, pausing playback for its duration
func (c *Controller) BeginDrag(pointerX float64, bounds Bounds) {
	if c.state.IsDraggingProgress {
		c.SeekTo(pointerX, bounds)
		return
	}

	c.statusBeforeDrag = c.state.Status
	c.state.IsDraggingProgress = true
	c.state.WasPlayingBeforeDrag = c.state.IsPlaying || c.state.Status.IsActive()
	if c.state.WasPlayingBeforeDrag {
		c.pauseActive()
	}
	c.state.Status = model.PlayerStatusDragging
	c.notify()

	c.SeekTo(pointerX, bounds)
}

// DragMove seeks while a scrub gesture is active
func (c *Controller) DragMove(pointerX float64, bounds Bounds) {
	if c.state.IsDraggingProgress {
		c.SeekTo(pointerX, bounds)
	}
}

// EndDrag finishes a scrub gesture and resumes playback if it was playing
// when the gesture started
func (c *Controller) EndDrag() {
	if !c.state.IsDraggingProgress {
		return
	}
	c.state.IsDraggingProgress = false

	if !c.state.WasPlayingBeforeDrag {
		if c.statusBeforeDrag == model.PlayerStatusIdle {
			c.state.Status = model.PlayerStatusIdle
		} else {
			c.state.Status = model.PlayerStatusPaused
		}
		c.notify()
		return
	}

	c.resume(func() {
		c.state.Status = model.PlayerStatusPaused
	})
}

// Scrubber exposes the drag lifecycle as a PointerHandler
func (c *Controller) Scrubber() PointerHandler {
	return scrubber{c}
}

// TrackEnded handles natural completion of a track
func (c *Controller) TrackEnded(index int) {
	if index != c.state.CurrentTrackIndex {
		logger.Debug("Ignoring end of inactive track", logger.Int("index", index))
		return
	}
	c.state.IsPlaying = false
	c.Next()
}

// TrackFailed handles a runtime error reported by a track's media
func (c *Controller) TrackFailed(index int, err error) {
	logger.Error("Track error", logger.Int("index", index), logger.ErrorField(err))
	if index != c.state.CurrentTrackIndex {
		return
	}
	c.state.IsPlaying = false
	c.Next()
}

// TimeUpdated refreshes the view when the active track's position changes
func (c *Controller) TimeUpdated(index int) {
	if index == c.state.CurrentTrackIndex {
		c.notify()
	}
}

// MetadataLoaded refreshes the view when a track learns its duration
func (c *Controller) MetadataLoaded(index int) {
	if index == c.state.CurrentTrackIndex {
		c.notify()
	}
}

// FirstInteraction starts playback on the first user input if nothing is
// playing yet. Later calls do nothing.
func (c *Controller) FirstInteraction() {
	if c.firstInteractionDone {
		return
	}
	c.firstInteractionDone = true
	if !c.state.IsPlaying {
		c.Play(c.state.CurrentTrackIndex)
	}
}

// ToggleMinimized collapses or expands the player panel
func (c *Controller) ToggleMinimized() {
	c.state.Minimized = !c.state.Minimized
	c.notify()
}

// resume requests playback of the active track without rewinding it.
// onFail restores the status when the request is rejected.
func (c *Controller) resume(onFail func()) {
	index := c.state.CurrentTrackIndex
	c.state.Status = model.PlayerStatusLoading
	gen := c.bump()
	c.notify()

	c.media[index].Play(c.continuation(gen, func(err error) {
		if err != nil {
			logger.Error("Playback failed", logger.Int("index", index), logger.ErrorField(err))
			onFail()
			c.notify()
			return
		}
		c.state.IsPlaying = true
		c.state.Status = model.PlayerStatusPlaying
		c.notify()
	}))
}

func (c *Controller) pauseActive() {
	c.active().Pause()
	c.state.IsPlaying = false
	c.bump()
}

func (c *Controller) restoreVolume() {
	v := DefaultVolume
	if c.store != nil {
		if saved, ok := c.store.Volume(); ok && !math.IsNaN(saved) {
			v = saved
		}
	}
	c.SetVolume(v)
}

func (c *Controller) bump() uint64 {
	c.generation++
	return c.generation
}

// continuation wraps fn so it runs on the dispatcher and only if no newer
// play or pause command has been issued since gen
func (c *Controller) continuation(gen uint64, fn func(error)) func(error) {
	return func(err error) {
		c.dispatch(func() {
			if gen != c.generation {
				logger.Debug("Dropping stale playback result",
					logger.Uint64("generation", gen),
					logger.Uint64("current", c.generation),
					logger.Bool("failed", err != nil))
				return
			}
			fn(err)
		})
	}
}

func (c *Controller) active() Media {
	return c.media[c.state.CurrentTrackIndex]
}

func (c *Controller) snapshot() Snapshot {
	active := c.active()
	duration, known := active.Duration()
	return Snapshot{
		Elapsed:       active.CurrentTime(),
		Duration:      duration,
		DurationKnown: known,
		Volume:        active.Volume(),
	}
}

func (c *Controller) notify() {
	if c.onUpdate != nil {
		c.onUpdate(c.ViewModel())
	}
}

type scrubber struct {
	c *Controller
}

func (s scrubber) PointerDown(x float64, bounds Bounds) { s.c.BeginDrag(x, bounds) }
func (s scrubber) PointerMove(x float64, bounds Bounds) { s.c.DragMove(x, bounds) }
func (s scrubber) PointerUp()                           { s.c.EndDrag() }
