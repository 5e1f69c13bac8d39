package player

import (
	"time"

	"github.com/samber/lo"

	"github.com/tnoatlas/atlas/internal/model"
)

// Snapshot is what the view needs to know about the active media
type Snapshot struct {
	Elapsed       time.Duration
	Duration      time.Duration
	DurationKnown bool
	Volume        float64
}

// ViewModel is everything the player panel displays
type ViewModel struct {
	Title      string
	Elapsed    string
	Total      string
	Progress   float64 // 0..1
	Volume     float64
	TrackIndex int
	TrackCount int
	Status     model.PlayerStatus

	// Exactly one icon of each pair is visible
	ShowPlayIcon   bool // otherwise pause
	ShowMuteIcon   bool // otherwise volume-high
	ShowExpandIcon bool // otherwise collapse
	Minimized      bool
}

// Present maps controller state and the active media readings to a view model
func Present(state State, track *model.Track, snap Snapshot) ViewModel {
	vm := ViewModel{
		Elapsed:        model.FormatClock(snap.Elapsed.Seconds()),
		Total:          model.FormatClock(0),
		Volume:         snap.Volume,
		TrackIndex:     state.CurrentTrackIndex,
		Status:         state.Status,
		ShowPlayIcon:   !state.IsPlaying,
		ShowMuteIcon:   snap.Volume == 0,
		ShowExpandIcon: state.Minimized,
		Minimized:      state.Minimized,
	}

	if track != nil {
		vm.Title = track.GetDisplayTitle()
	}

	if snap.DurationKnown && snap.Duration > 0 {
		vm.Total = model.FormatClock(snap.Duration.Seconds())
		vm.Progress = lo.Clamp(float64(snap.Elapsed)/float64(snap.Duration), 0, 1)
	}

	return vm
}
