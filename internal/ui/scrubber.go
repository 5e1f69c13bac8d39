package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
	"github.com/samber/lo"

	"github.com/tnoatlas/atlas/internal/player"
)

// Scrubber is the progress bar of the player. Mouse and touch sequences are
// both forwarded to a player.PointerHandler in widget-local coordinates.
type Scrubber struct {
	widget.BaseWidget

	handler  player.PointerHandler
	progress float64
	pressed  bool
}

// NewScrubber creates a scrubber driving handler
func NewScrubber(handler player.PointerHandler) *Scrubber {
	s := &Scrubber{handler: handler}
	s.ExtendBaseWidget(s)
	return s
}

// SetProgress sets the filled fraction, clamped to [0,1]
func (s *Scrubber) SetProgress(p float64) {
	p = lo.Clamp(p, 0, 1)
	if p == s.progress {
		return
	}
	s.progress = p
	s.Refresh()
}

// Progress returns the filled fraction
func (s *Scrubber) Progress() float64 {
	return s.progress
}

func (s *Scrubber) bounds() player.Bounds {
	return player.Bounds{Left: 0, Width: float64(s.Size().Width)}
}

func (s *Scrubber) down(pos fyne.Position) {
	s.pressed = true
	if s.handler != nil {
		s.handler.PointerDown(float64(pos.X), s.bounds())
	}
}

func (s *Scrubber) move(pos fyne.Position) {
	if !s.pressed {
		s.down(pos)
		return
	}
	if s.handler != nil {
		s.handler.PointerMove(float64(pos.X), s.bounds())
	}
}

func (s *Scrubber) up() {
	if !s.pressed {
		return
	}
	s.pressed = false
	if s.handler != nil {
		s.handler.PointerUp()
	}
}

// MouseDown starts a scrub on the primary button
func (s *Scrubber) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonPrimary {
		s.down(ev.Position)
	}
}

// MouseUp ends a scrub
func (s *Scrubber) MouseUp(*desktop.MouseEvent) {
	s.up()
}

// Dragged seeks to the pointer while the gesture lasts
func (s *Scrubber) Dragged(ev *fyne.DragEvent) {
	s.move(ev.Position)
}

// DragEnd ends a scrub that left the widget before the button was released
func (s *Scrubber) DragEnd() {
	s.up()
}

// TouchDown starts a scrub
func (s *Scrubber) TouchDown(ev *mobile.TouchEvent) {
	s.down(ev.Position)
}

// TouchUp ends a scrub
func (s *Scrubber) TouchUp(*mobile.TouchEvent) {
	s.up()
}

// TouchCancel ends a scrub
func (s *Scrubber) TouchCancel(*mobile.TouchEvent) {
	s.up()
}

// CreateRenderer creates the widget renderer
func (s *Scrubber) CreateRenderer() fyne.WidgetRenderer {
	track := canvas.NewRectangle(ColorTrack)
	track.CornerRadius = ScrubberHeight / 2
	fill := canvas.NewRectangle(ColorAccent)
	fill.CornerRadius = ScrubberHeight / 2
	thumb := canvas.NewCircle(ColorMarkerFill)

	return &scrubberRenderer{
		scrubber: s,
		track:    track,
		fill:     fill,
		thumb:    thumb,
		objects:  []fyne.CanvasObject{track, fill, thumb},
	}
}

type scrubberRenderer struct {
	scrubber *Scrubber
	track    *canvas.Rectangle
	fill     *canvas.Rectangle
	thumb    *canvas.Circle
	objects  []fyne.CanvasObject
}

func (r *scrubberRenderer) Layout(size fyne.Size) {
	y := (size.Height - ScrubberHeight) / 2
	r.track.Move(fyne.NewPos(0, y))
	r.track.Resize(fyne.NewSize(size.Width, ScrubberHeight))

	w := size.Width * float32(r.scrubber.progress)
	r.fill.Move(fyne.NewPos(0, y))
	r.fill.Resize(fyne.NewSize(w, ScrubberHeight))

	d := ScrubberHeight * 2
	r.thumb.Move(fyne.NewPos(w-d/2, (size.Height-d)/2))
	r.thumb.Resize(fyne.NewSize(d, d))
}

// MinSize keeps the bar usable as a touch target
func (r *scrubberRenderer) MinSize() fyne.Size {
	return fyne.NewSize(ScrubberMinWidth, touchHeight(ScrubberHeight))
}

func (r *scrubberRenderer) Refresh() {
	r.Layout(r.scrubber.Size())
	canvas.Refresh(r.scrubber)
}

func (r *scrubberRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *scrubberRenderer) Destroy() {}
