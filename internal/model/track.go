package model

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Track represents a single playlist entry
type Track struct {
	ID     string // generated at load time, used for log correlation
	Title  string // display title
	Source string // media file path or URL
}

// NewTrack creates a track with a fresh ID
func NewTrack(title, source string) *Track {
	return &Track{
		ID:     uuid.NewString(),
		Title:  title,
		Source: source,
	}
}

// GetDisplayTitle returns the title, or the source file name without extension
func (t *Track) GetDisplayTitle() string {
	if strings.TrimSpace(t.Title) != "" {
		return strings.TrimSpace(t.Title)
	}
	if t.Source == "" {
		return ""
	}
	name := filepath.Base(t.Source)
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	return name
}

// FormatClock formats seconds as m:ss. Unknown or negative values render as 0:00.
func FormatClock(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	mins := int(seconds) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}
