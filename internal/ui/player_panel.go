package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tnoatlas/atlas/internal/player"
)

// Volume slider range
const (
	VolumeSliderStep = 0.01
)

// Transport is the subset of the player controller driven by the panel
type Transport interface {
	Prev()
	Next()
	TogglePlayPause()
	ToggleMute()
	SetVolume(v float64)
	ToggleMinimized()
	Scrubber() player.PointerHandler
}

// PlayerPanel is the docked audio player
type PlayerPanel struct {
	transport    Transport
	localization *Localization

	titleLabel   *widget.Label
	counterLabel *widget.Label
	elapsedLabel *widget.Label
	totalLabel   *widget.Label
	scrubber     *Scrubber

	prevBtn      *widget.Button
	playPauseBtn *widget.Button
	nextBtn      *widget.Button
	volumeBtn    *widget.Button
	volumeSlider *widget.Slider
	minimizeBtn  *widget.Button

	miniTitle   *widget.Label
	miniPlayBtn *widget.Button
	miniExpand  *widget.Button

	expanded  *fyne.Container
	minimized *fyne.Container
	root      *fyne.Container

	// set while Update writes the slider so OnChanged does not echo it back
	updating bool
	last     player.ViewModel

	// OnInteraction fires after every control action
	OnInteraction func()
}

// NewPlayerPanel creates the panel for transport
func NewPlayerPanel(transport Transport, localization *Localization) *PlayerPanel {
	p := &PlayerPanel{
		transport:    transport,
		localization: localization,
	}
	p.createUI()
	return p
}

// createUI creates all UI components
func (p *PlayerPanel) createUI() {
	p.titleLabel = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	p.titleLabel.Truncation = fyne.TextTruncateEllipsis
	p.counterLabel = widget.NewLabel("")

	p.elapsedLabel = widget.NewLabel("0:00")
	p.totalLabel = widget.NewLabel("0:00")
	p.scrubber = NewScrubber(p.transport.Scrubber())

	p.prevBtn = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), p.action(p.transport.Prev))
	p.playPauseBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), p.action(p.transport.TogglePlayPause))
	p.playPauseBtn.Importance = widget.HighImportance
	p.nextBtn = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), p.action(p.transport.Next))
	p.volumeBtn = widget.NewButtonWithIcon("", theme.VolumeUpIcon(), p.action(p.transport.ToggleMute))
	p.volumeBtn.Importance = widget.LowImportance

	p.volumeSlider = widget.NewSlider(0, 1)
	p.volumeSlider.Step = VolumeSliderStep
	p.volumeSlider.OnChanged = p.onVolumeChanged

	p.minimizeBtn = widget.NewButtonWithIcon("", theme.MoveDownIcon(), p.action(p.transport.ToggleMinimized))
	p.minimizeBtn.Importance = widget.LowImportance

	header := container.NewBorder(nil, nil, nil, container.NewHBox(p.counterLabel, p.minimizeBtn), p.titleLabel)
	progress := container.NewBorder(nil, nil,
		fixedWidth(TimeLabelWidth, p.elapsedLabel),
		fixedWidth(TimeLabelWidth, p.totalLabel),
		p.scrubber)
	controls := container.NewBorder(nil, nil,
		container.NewHBox(p.prevBtn, p.playPauseBtn, p.nextBtn),
		nil,
		container.NewBorder(nil, nil, p.volumeBtn, nil, p.volumeSlider))

	p.expanded = container.NewVBox(header, progress, controls)

	p.miniTitle = widget.NewLabel("")
	p.miniTitle.Truncation = fyne.TextTruncateEllipsis
	p.miniPlayBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), p.action(p.transport.TogglePlayPause))
	p.miniExpand = widget.NewButtonWithIcon("", theme.MoveUpIcon(), p.action(p.transport.ToggleMinimized))
	p.miniExpand.Importance = widget.LowImportance
	p.minimized = container.NewBorder(nil, nil, p.miniPlayBtn, p.miniExpand, p.miniTitle)
	p.minimized.Hide()

	background := canvas.NewRectangle(ColorPanel)
	background.CornerRadius = theme.InputRadiusSize() * 2
	p.root = container.NewStack(background, container.NewPadded(container.NewStack(p.expanded, p.minimized)))
}

// Container returns the panel root
func (p *PlayerPanel) Container() *fyne.Container {
	return p.root
}

// Minimized reports whether the compact layout is shown
func (p *PlayerPanel) Minimized() bool {
	return p.last.Minimized
}

// Update shows a fresh view model
func (p *PlayerPanel) Update(vm player.ViewModel) {
	p.last = vm

	p.titleLabel.SetText(vm.Title)
	p.miniTitle.SetText(vm.Title)
	if vm.TrackCount > 0 {
		p.counterLabel.SetText(fmt.Sprintf(p.localization.GetText(KeyTrackCounter), vm.TrackIndex+1, vm.TrackCount))
	} else {
		p.counterLabel.SetText("")
	}

	p.elapsedLabel.SetText(vm.Elapsed)
	p.totalLabel.SetText(vm.Total)
	p.scrubber.SetProgress(vm.Progress)

	playIcon := theme.MediaPauseIcon()
	if vm.ShowPlayIcon {
		playIcon = theme.MediaPlayIcon()
	}
	p.playPauseBtn.SetIcon(playIcon)
	p.miniPlayBtn.SetIcon(playIcon)

	if vm.ShowMuteIcon {
		p.volumeBtn.SetIcon(theme.VolumeMuteIcon())
	} else {
		p.volumeBtn.SetIcon(theme.VolumeUpIcon())
	}

	if p.volumeSlider.Value != vm.Volume {
		p.updating = true
		p.volumeSlider.SetValue(vm.Volume)
		p.updating = false
	}

	if vm.Minimized {
		p.expanded.Hide()
		p.minimized.Show()
	} else {
		p.minimized.Hide()
		p.expanded.Show()
	}
	p.root.Refresh()
}

// RefreshTexts reapplies localized strings
func (p *PlayerPanel) RefreshTexts() {
	p.Update(p.last)
}

func (p *PlayerPanel) onVolumeChanged(v float64) {
	if p.updating {
		return
	}
	p.transport.SetVolume(v)
	p.interacted()
}

// action wraps a control so it also counts as user interaction
func (p *PlayerPanel) action(fn func()) func() {
	return func() {
		fn()
		p.interacted()
	}
}

func (p *PlayerPanel) interacted() {
	if p.OnInteraction != nil {
		p.OnInteraction()
	}
}
