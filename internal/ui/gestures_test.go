package ui

import (
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/mobile"
)

func TestGestureHandler_Classify(t *testing.T) {
	gh := NewGestureHandler(nil)

	tests := []struct {
		name     string
		duration time.Duration
		dx, dy   float32
		expected GestureType
	}{
		{"quick tap", 100 * time.Millisecond, 1, 1, GestureTap},
		{"long press", time.Second, 2, 0, GestureLongPress},
		{"long drag is a swipe", time.Second, 30, 0, GestureSwipe},
		{"quick swipe", 50 * time.Millisecond, 0, -15, GestureSwipe},
		{"threshold edge", DefaultLongPressDuration, 0, 0, GestureLongPress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gh.Classify(tt.duration, tt.dx, tt.dy); got != tt.expected {
				t.Errorf("Classify() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestGestureHandler_LongPressCallback(t *testing.T) {
	var got []GestureType
	gh := NewGestureHandler(func(g GestureType, _ fyne.Position) {
		got = append(got, g)
	})

	clock := time.Unix(0, 0)
	gh.now = func() time.Time { return clock }

	down := &mobile.TouchEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(100, 100)}}

	// tap: no callback
	gh.TouchDown(down)
	clock = clock.Add(100 * time.Millisecond)
	gh.TouchUp(down)

	// long press
	gh.TouchDown(down)
	clock = clock.Add(time.Second)
	gh.TouchUp(down)

	// cancelled long press
	gh.TouchDown(down)
	clock = clock.Add(time.Second)
	gh.TouchCancel(down)
	gh.TouchUp(down)

	if len(got) != 1 || got[0] != GestureLongPress {
		t.Errorf("Expected exactly one long press, got %v", got)
	}
}
