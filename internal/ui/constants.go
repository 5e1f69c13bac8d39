package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (symbols)
const (
	IconStar  = "★"
	IconClose = "×"
)

// Window sizing
const (
	WindowWidth  float32 = 1100
	WindowHeight float32 = 720
)

// Player panel sizing
const (
	PlayerPanelWidth     float32 = 360
	PlayerMinimizedWidth float32 = 220
	PlayerMargin         float32 = 12
	ScrubberHeight       float32 = 8
	ScrubberMinWidth     float32 = 160
	TimeLabelWidth       float32 = 44

	// Touch target minimum sizes (iOS/Android guidelines)
	MinTouchTargetSize float32 = 44
)

// Map sizing
const (
	MarkerBorderWidth float32 = 2
	TapTolerance              = 4.0 // extra pixels around a line that still count as a hit
	ScrollZoomStep            = 1
)

// Timeouts
const (
	MapReloadTimeout = 30 * time.Second
)
