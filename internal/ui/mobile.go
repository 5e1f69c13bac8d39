package ui

import (
	"fyne.io/fyne/v2"
)

// isMobileDevice reports whether the app runs on a phone or tablet. The test
// driver has no device, so it counts as desktop.
func isMobileDevice() bool {
	device := fyne.CurrentDevice()
	return device != nil && device.IsMobile()
}

// touchHeight grows h to the minimum touch target on mobile devices
func touchHeight(h float32) float32 {
	if isMobileDevice() && h < MinTouchTargetSize {
		return MinTouchTargetSize
	}
	return h
}

// panelWidth returns the expanded player width for a canvas of the given
// width. On narrow mobile screens the panel spans the canvas.
func panelWidth(canvasWidth float32) float32 {
	w := PlayerPanelWidth
	if isMobileDevice() || canvasWidth-2*PlayerMargin < w {
		w = canvasWidth - 2*PlayerMargin
	}
	if w < PlayerMinimizedWidth {
		w = PlayerMinimizedWidth
	}
	return w
}
