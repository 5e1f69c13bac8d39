package media

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/tnoatlas/atlas/internal/logger"
)

// ErrAborted is reported when Pause arrives before a pending play started
var ErrAborted = errors.New("play request aborted by pause")

type eventKind int

const (
	eventNone eventKind = iota
	eventProgress
	eventEnded
	eventFailed
)

type event struct {
	kind eventKind
	err  error
}

// playback is the part of *audio.Player a track drives
type playback interface {
	Play()
	Pause()
	IsPlaying() bool
	Position() time.Duration
	SetPosition(offset time.Duration) error
	SetVolume(volume float64)
	Close() error
}

var _ playback = (*audio.Player)(nil)

// Track is one playable file. It loads on the first Play.
type Track struct {
	backend *Backend
	index   int
	path    string

	mu            sync.Mutex
	file          *os.File
	stream        *errorStream
	player        playback
	duration      time.Duration
	durationKnown bool
	volume        float64
	position      time.Duration // applied on load
	wantPlaying   bool
	starting      int // play requests that have not reached player.Play yet
	lastReported  time.Duration
	failed        bool
}

// Path returns the file backing the track
func (t *Track) Path() string {
	return t.path
}

// Play loads the track if needed and starts it. done runs on a background
// goroutine.
func (t *Track) Play(done func(error)) {
	t.mu.Lock()
	t.wantPlaying = true
	t.failed = false
	t.starting++
	t.mu.Unlock()

	go func() {
		done(t.start())
	}()
}

func (t *Track) start() error {
	err := t.load()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.starting--
	if err != nil {
		t.wantPlaying = false
		return err
	}
	if !t.wantPlaying {
		return ErrAborted
	}
	t.player.Play()
	return nil
}

// Pause stops playback and cancels a pending Play
func (t *Track) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wantPlaying = false
	if t.player != nil {
		t.player.Pause()
	}
}

// Paused reports whether the track is not playing or about to play
func (t *Track) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.wantPlaying
}

// CurrentTime returns the playback position
func (t *Track) CurrentTime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.player != nil {
		return t.player.Position()
	}
	return t.position
}

// SetCurrentTime seeks to d
func (t *Track) SetCurrentTime(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d < 0 {
		d = 0
	}
	if t.durationKnown && d > t.duration {
		d = t.duration
	}
	t.position = d
	t.lastReported = d
	if t.player != nil {
		if err := t.player.SetPosition(d); err != nil {
			logger.Warn("Seek failed", logger.Int("index", t.index), logger.ErrorField(err))
		}
	}
}

// Duration returns the track length once the file has been decoded
func (t *Track) Duration() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration, t.durationKnown
}

// Volume returns the playback volume in [0,1]
func (t *Track) Volume() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.volume
}

// SetVolume sets the playback volume
func (t *Track) SetVolume(v float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.volume = v
	if t.player != nil {
		t.player.SetVolume(v)
	}
}

func (t *Track) load() error {
	t.mu.Lock()
	loaded := t.player != nil
	t.mu.Unlock()
	if loaded {
		return nil
	}

	file, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("open track: %w", err)
	}

	decode, err := DetectDecoder(t.path, file)
	if err != nil {
		file.Close()
		return err
	}

	sampleRate := t.backend.sampleRate
	decoded, err := decode(sampleRate, file)
	if err != nil {
		file.Close()
		return fmt.Errorf("decode %s: %w", t.path, err)
	}

	stream := &errorStream{ReadSeeker: decoded}
	player, err := t.backend.audioContext().NewPlayer(stream)
	if err != nil {
		file.Close()
		return fmt.Errorf("create player: %w", err)
	}

	duration, known := StreamDuration(decoded.Length(), sampleRate)

	t.mu.Lock()
	if t.player != nil {
		// lost a race with a concurrent load
		t.mu.Unlock()
		player.Close()
		file.Close()
		return nil
	}
	t.file = file
	t.stream = stream
	t.player = player
	t.duration = duration
	t.durationKnown = known
	player.SetVolume(t.volume)
	if t.position > 0 {
		if err := player.SetPosition(t.position); err != nil {
			logger.Warn("Seek failed", logger.Int("index", t.index), logger.ErrorField(err))
		}
	}
	t.mu.Unlock()

	logger.Debug("Track loaded",
		logger.Int("index", t.index),
		logger.String("path", t.path),
		logger.Duration("duration", duration))

	if known {
		t.backend.emit(func(e Events) { e.MetadataLoaded(t.index) })
	}
	return nil
}

// check inspects a playing track and reports what changed since the last
// poll. A track whose play request has not reached the player yet is skipped.
func (t *Track) check() event {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.player == nil || !t.wantPlaying || t.failed || t.starting > 0 {
		return event{}
	}

	if err := t.streamErr(); err != nil {
		t.failed = true
		t.wantPlaying = false
		t.player.Pause()
		return event{kind: eventFailed, err: err}
	}

	if !t.player.IsPlaying() {
		t.wantPlaying = false
		return event{kind: eventEnded}
	}

	pos := t.player.Position()
	if pos != t.lastReported {
		t.lastReported = pos
		return event{kind: eventProgress}
	}
	return event{}
}

func (t *Track) streamErr() error {
	if t.stream == nil {
		return nil
	}
	return t.stream.Err()
}

func (t *Track) unload() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.player != nil {
		t.player.Pause()
		t.player.Close()
		t.player = nil
	}
	if t.file != nil {
		t.file.Close()
		t.file = nil
	}
	t.stream = nil
}
