package config

import (
	"math"
	"strconv"

	"fyne.io/fyne/v2"
	"github.com/samber/lo"
)

// Settings keys for Fyne preferences
const (
	KeyPlayerVolume = "playerVolume"
)

// Default values
const (
	DefaultVolume = 0.5
)

// Settings manages the persisted player preference. The volume is stored as a
// decimal string so the value round-trips exactly.
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// Volume returns the stored volume. ok is false when nothing valid is stored.
func (s *Settings) Volume() (float64, bool) {
	raw := s.app.Preferences().String(KeyPlayerVolume)
	if raw == "" {
		return DefaultVolume, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return DefaultVolume, false
	}
	return lo.Clamp(v, 0, 1), true
}

// SetVolume stores the volume, clamped to [0,1]
func (s *Settings) SetVolume(v float64) {
	if math.IsNaN(v) {
		return
	}
	v = lo.Clamp(v, 0, 1)
	s.app.Preferences().SetString(KeyPlayerVolume, strconv.FormatFloat(v, 'f', -1, 64))
}
