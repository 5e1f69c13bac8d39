package media

import (
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/tnoatlas/atlas/internal/logger"
)

// Backend defaults
const (
	DefaultSampleRate   = 44100
	DefaultPollInterval = 250 * time.Millisecond
)

// Events receives track notifications. The player controller implements it.
type Events interface {
	TrackEnded(index int)
	TrackFailed(index int, err error)
	TimeUpdated(index int)
	MetadataLoaded(index int)
}

// Backend owns the audio context and the tracks created from it
type Backend struct {
	sampleRate int
	dispatch   func(fn func())

	mu      sync.Mutex
	context *audio.Context
	events  Events
	tracks  []*Track

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewBackend creates a backend. dispatch runs event callbacks on the goroutine
// that owns the controller; nil runs them inline.
func NewBackend(sampleRate int, dispatch func(fn func())) *Backend {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Backend{
		sampleRate: sampleRate,
		dispatch:   dispatch,
	}
}

// SetEvents sets the receiver of track notifications
func (b *Backend) SetEvents(events Events) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = events
}

// NewTrack creates a lazily loaded track for the file at path
func (b *Backend) NewTrack(index int, path string) *Track {
	t := &Track{
		backend: b,
		index:   index,
		path:    path,
		volume:  1,
	}
	b.mu.Lock()
	b.tracks = append(b.tracks, t)
	b.mu.Unlock()
	return t
}

// Start begins polling tracks for progress and completion
func (b *Backend) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	b.mu.Lock()
	if b.stop != nil {
		b.mu.Unlock()
		return
	}
	b.stop = make(chan struct{})
	stop := b.stop
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				b.poll()
			}
		}
	}()
}

// Close stops polling and releases every loaded track
func (b *Backend) Close() {
	b.mu.Lock()
	stop := b.stop
	b.stop = nil
	tracks := append([]*Track(nil), b.tracks...)
	b.mu.Unlock()

	if stop != nil {
		close(stop)
		b.wg.Wait()
	}
	for _, t := range tracks {
		t.unload()
	}
}

func (b *Backend) audioContext() *audio.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.context == nil {
		if current := audio.CurrentContext(); current != nil {
			b.context = current
		} else {
			b.context = audio.NewContext(b.sampleRate)
		}
	}
	return b.context
}

func (b *Backend) poll() {
	b.mu.Lock()
	tracks := append([]*Track(nil), b.tracks...)
	b.mu.Unlock()

	for _, t := range tracks {
		switch ev := t.check(); ev.kind {
		case eventEnded:
			b.emit(func(e Events) { e.TrackEnded(t.index) })
		case eventFailed:
			logger.Warn("Track read error", logger.Int("index", t.index), logger.ErrorField(ev.err))
			b.emit(func(e Events) { e.TrackFailed(t.index, ev.err) })
		case eventProgress:
			b.emit(func(e Events) { e.TimeUpdated(t.index) })
		}
	}
}

func (b *Backend) emit(fn func(Events)) {
	b.mu.Lock()
	events := b.events
	b.mu.Unlock()
	if events == nil {
		return
	}
	b.dispatch(func() { fn(events) })
}
