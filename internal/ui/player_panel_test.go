package ui

import (
	"math"
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"

	"github.com/tnoatlas/atlas/internal/model"
	"github.com/tnoatlas/atlas/internal/player"
)

type fakeTransport struct {
	calls   []string
	volumes []float64
	pointer fakePointer
}

func (f *fakeTransport) Prev()            { f.calls = append(f.calls, "prev") }
func (f *fakeTransport) Next()            { f.calls = append(f.calls, "next") }
func (f *fakeTransport) TogglePlayPause() { f.calls = append(f.calls, "toggle") }
func (f *fakeTransport) ToggleMute()      { f.calls = append(f.calls, "mute") }
func (f *fakeTransport) ToggleMinimized() { f.calls = append(f.calls, "minimize") }

func (f *fakeTransport) SetVolume(v float64) {
	f.calls = append(f.calls, "volume")
	f.volumes = append(f.volumes, v)
}

func (f *fakeTransport) Scrubber() player.PointerHandler {
	return &f.pointer
}

func newTestPanel(t *testing.T) (*PlayerPanel, *fakeTransport, *int) {
	t.Helper()
	test.NewApp()
	fake := &fakeTransport{}
	panel := NewPlayerPanel(fake, NewLocalization())
	interactions := 0
	panel.OnInteraction = func() { interactions++ }
	return panel, fake, &interactions
}

func TestPlayerPanel_Buttons(t *testing.T) {
	panel, fake, interactions := newTestPanel(t)

	test.Tap(panel.prevBtn)
	test.Tap(panel.playPauseBtn)
	test.Tap(panel.nextBtn)
	test.Tap(panel.volumeBtn)
	test.Tap(panel.minimizeBtn)
	test.Tap(panel.miniPlayBtn)
	test.Tap(panel.miniExpand)

	expected := []string{"prev", "toggle", "next", "mute", "minimize", "toggle", "minimize"}
	if !equalStrings(fake.calls, expected) {
		t.Errorf("Expected %v, got %v", expected, fake.calls)
	}
	if *interactions != len(expected) {
		t.Errorf("Expected %d interactions, got %d", len(expected), *interactions)
	}
}

func TestPlayerPanel_Update(t *testing.T) {
	panel, fake, _ := newTestPanel(t)

	panel.Update(player.ViewModel{
		Title:      "TNO OST - Toolbox Theory",
		Elapsed:    "1:05",
		Total:      "2:10",
		Progress:   0.5,
		Volume:     0.3,
		TrackIndex: 1,
		TrackCount: 5,
		Status:     model.PlayerStatusPlaying,
	})

	if panel.titleLabel.Text != "TNO OST - Toolbox Theory" {
		t.Errorf("Unexpected title %q", panel.titleLabel.Text)
	}
	if panel.counterLabel.Text != "2 / 5" {
		t.Errorf("Expected counter 2 / 5, got %q", panel.counterLabel.Text)
	}
	if panel.elapsedLabel.Text != "1:05" || panel.totalLabel.Text != "2:10" {
		t.Errorf("Unexpected time labels %q / %q", panel.elapsedLabel.Text, panel.totalLabel.Text)
	}
	if panel.scrubber.Progress() != 0.5 {
		t.Errorf("Expected progress 0.5, got %v", panel.scrubber.Progress())
	}
	if panel.playPauseBtn.Icon.Name() != theme.MediaPauseIcon().Name() {
		t.Error("Expected pause icon while playing")
	}
	if panel.volumeBtn.Icon.Name() != theme.VolumeUpIcon().Name() {
		t.Error("Expected volume icon when not muted")
	}
	if math.Abs(panel.volumeSlider.Value-0.3) > 1e-9 {
		t.Errorf("Expected slider at 0.3, got %v", panel.volumeSlider.Value)
	}
	if len(fake.volumes) != 0 {
		t.Errorf("Expected slider update not to echo back, got %v", fake.volumes)
	}
}

func TestPlayerPanel_IconPairs(t *testing.T) {
	panel, _, _ := newTestPanel(t)

	panel.Update(player.ViewModel{ShowPlayIcon: true, ShowMuteIcon: true, Minimized: true, ShowExpandIcon: true})

	if panel.playPauseBtn.Icon.Name() != theme.MediaPlayIcon().Name() || panel.miniPlayBtn.Icon.Name() != theme.MediaPlayIcon().Name() {
		t.Error("Expected play icon")
	}
	if panel.volumeBtn.Icon.Name() != theme.VolumeMuteIcon().Name() {
		t.Error("Expected mute icon")
	}
	if panel.expanded.Visible() || !panel.minimized.Visible() {
		t.Error("Expected minimized layout")
	}
	if !panel.Minimized() {
		t.Error("Expected Minimized() to report true")
	}

	panel.Update(player.ViewModel{})
	if !panel.expanded.Visible() || panel.minimized.Visible() {
		t.Error("Expected expanded layout")
	}
}

func TestPlayerPanel_VolumeSlider(t *testing.T) {
	panel, fake, interactions := newTestPanel(t)

	panel.volumeSlider.OnChanged(0.8)

	if len(fake.volumes) != 1 || fake.volumes[0] != 0.8 {
		t.Errorf("Expected SetVolume(0.8), got %v", fake.volumes)
	}
	if *interactions != 1 {
		t.Errorf("Expected 1 interaction, got %d", *interactions)
	}
}

func TestPlayerPanel_ScrubberForwardsToTransport(t *testing.T) {
	panel, fake, _ := newTestPanel(t)
	panel.scrubber.Resize(panel.scrubber.MinSize())

	panel.scrubber.TouchDown(touchAt(10))
	panel.scrubber.TouchUp(touchAt(10))

	expected := []string{"down", "up"}
	if !equalStrings(fake.pointer.kinds(), expected) {
		t.Errorf("Expected %v, got %v", expected, fake.pointer.kinds())
	}
}
