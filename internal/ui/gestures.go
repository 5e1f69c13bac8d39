package ui

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/mobile"
)

// GestureType represents different types of gestures
type GestureType int

const (
	GestureNone GestureType = iota
	GestureTap
	GestureLongPress
	GestureSwipe
)

// Gesture thresholds constants
const (
	DefaultSwipeThreshold    float32 = 10.0
	DefaultLongPressDuration         = 500 * time.Millisecond
)

// GestureHandler classifies touch sequences on the map. Taps and drags are
// delivered by Fyne directly, so only long presses reach the callback.
type GestureHandler struct {
	onGesture func(GestureType, fyne.Position)

	// Touch tracking
	touchStartTime time.Time
	touchStartPos  fyne.Position
	now            func() time.Time

	// Gesture thresholds
	swipeThreshold    float32
	longPressDuration time.Duration
}

// NewGestureHandler creates a new gesture handler
func NewGestureHandler(onGesture func(GestureType, fyne.Position)) *GestureHandler {
	return &GestureHandler{
		onGesture:         onGesture,
		now:               time.Now,
		swipeThreshold:    DefaultSwipeThreshold,
		longPressDuration: DefaultLongPressDuration,
	}
}

// Classify returns the gesture for a touch that lasted duration and moved
// dx, dy pixels
func (gh *GestureHandler) Classify(duration time.Duration, dx, dy float32) GestureType {
	if dx*dx+dy*dy >= gh.swipeThreshold*gh.swipeThreshold {
		return GestureSwipe
	}
	if duration >= gh.longPressDuration {
		return GestureLongPress
	}
	return GestureTap
}

// TouchDown handles touch down events for gesture detection
func (gh *GestureHandler) TouchDown(event *mobile.TouchEvent) {
	gh.touchStartTime = gh.now()
	gh.touchStartPos = event.Position
}

// TouchUp handles touch up events for gesture detection
func (gh *GestureHandler) TouchUp(event *mobile.TouchEvent) {
	if gh.touchStartTime.IsZero() {
		return
	}
	duration := gh.now().Sub(gh.touchStartTime)
	gh.touchStartTime = time.Time{}

	gesture := gh.Classify(duration,
		event.Position.X-gh.touchStartPos.X,
		event.Position.Y-gh.touchStartPos.Y)

	if gesture == GestureLongPress && gh.onGesture != nil {
		gh.onGesture(gesture, gh.touchStartPos)
	}
}

// TouchCancel handles touch cancel events
func (gh *GestureHandler) TouchCancel(*mobile.TouchEvent) {
	gh.touchStartTime = time.Time{}
}
