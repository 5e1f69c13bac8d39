package ui

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/samber/lo"

	"github.com/tnoatlas/atlas/internal/geo"
)

// TileProvider supplies raster tiles to the map view
type TileProvider interface {
	Cached(t maptile.Tile) ([]byte, bool)
	Request(ctx context.Context, t maptile.Tile)
	SetLoadedCallback(callback func(maptile.Tile, []byte))
}

// MapView is a bounded, zoom-limited slippy map with a read-only feature
// layer on top. It must only be touched from the UI goroutine.
type MapView struct {
	widget.BaseWidget

	ctx      context.Context
	tiles    TileProvider
	viewport geo.Viewport
	layer    *geo.Layer

	images    map[maptile.Tile]*canvas.Image
	requested map[maptile.Tile]bool
	projected []orb.Geometry
	gestures  *GestureHandler

	// OnTapped receives the popup of the tapped feature, or nil for an
	// empty spot. pos is relative to the map.
	OnTapped func(popup *geo.Popup, pos fyne.Position)
	// OnInteraction fires on any pointer input
	OnInteraction func()
	// OnViewportChanged fires after the map moved or zoomed
	OnViewportChanged func(geo.Viewport)
}

// NewMapView creates a map over tiles. tiles may be nil for a blank basemap.
// Tile requests are cancelled when ctx is done.
func NewMapView(ctx context.Context, tiles TileProvider) *MapView {
	m := &MapView{
		ctx:       ctx,
		tiles:     tiles,
		viewport:  geo.NewRegionViewport(),
		layer:     &geo.Layer{},
		images:    make(map[maptile.Tile]*canvas.Image),
		requested: make(map[maptile.Tile]bool),
	}
	m.gestures = NewGestureHandler(func(g GestureType, _ fyne.Position) {
		if g == GestureLongPress {
			m.ResetView()
		}
	})

	if tiles != nil {
		tiles.SetLoadedCallback(func(t maptile.Tile, data []byte) {
			fyne.Do(func() { m.tileLoaded(t, data) })
		})
	}

	m.ExtendBaseWidget(m)
	return m
}

// SetLayer replaces the feature layer
func (m *MapView) SetLayer(layer *geo.Layer) {
	if layer == nil {
		layer = &geo.Layer{}
	}
	m.layer = layer
	m.projected = nil
	m.Refresh()
}

// Layer returns the current feature layer
func (m *MapView) Layer() *geo.Layer {
	return m.layer
}

// Viewport returns the current camera
func (m *MapView) Viewport() geo.Viewport {
	return m.viewport
}

// SetViewport moves the camera, clamped to the viewport bounds
func (m *MapView) SetViewport(vp geo.Viewport) {
	w, h := m.dims()
	vp.Zoom = vp.ClampZoom(vp.Zoom)
	vp.Center = vp.ClampCenter(vp.Center, vp.Zoom, w, h)
	m.apply(vp)
}

// ResetView returns to the initial centre and zoom
func (m *MapView) ResetView() {
	m.SetViewport(geo.NewRegionViewport())
}

// ZoomIn zooms in one level around the centre
func (m *MapView) ZoomIn() {
	w, h := m.dims()
	m.apply(m.viewport.ZoomBy(1, w, h))
}

// ZoomOut zooms out one level around the centre
func (m *MapView) ZoomOut() {
	w, h := m.dims()
	m.apply(m.viewport.ZoomBy(-1, w, h))
}

// PanBy moves the map content by dx, dy pixels
func (m *MapView) PanBy(dx, dy float32) {
	w, h := m.dims()
	m.apply(m.viewport.Pan(float64(dx), float64(dy), w, h))
}

// HitTest returns the popup of the topmost feature at pos. Markers are
// above shapes; later features are above earlier ones.
func (m *MapView) HitTest(pos fyne.Position) (*geo.Popup, bool) {
	w, h := m.dims()
	p := orb.Point{float64(pos.X), float64(pos.Y)}

	for i := len(m.layer.Markers) - 1; i >= 0; i-- {
		marker := m.layer.Markers[i]
		x, y := m.viewport.ToScreen(marker.Position, w, h)
		if math.Hypot(p[0]-x, p[1]-y) <= geo.MarkerSize/2 {
			return &marker.Popup, true
		}
	}

	projected := m.ensureProjected()
	for i := len(m.layer.Shapes) - 1; i >= 0; i-- {
		shape := m.layer.Shapes[i]
		tolerance := float64(shape.Style.Weight)/2 + TapTolerance
		if projected[i] != nil && hitShape(projected[i], p, tolerance) {
			return &shape.Popup, true
		}
	}
	return nil, false
}

// Tapped opens the popup of the feature under the pointer
func (m *MapView) Tapped(ev *fyne.PointEvent) {
	m.interacted()
	popup, _ := m.HitTest(ev.Position)
	if m.OnTapped != nil {
		m.OnTapped(popup, ev.Position)
	}
}

// DoubleTapped zooms in around the pointer
func (m *MapView) DoubleTapped(ev *fyne.PointEvent) {
	m.interacted()
	m.zoomAround(1, ev.Position)
}

// TappedSecondary zooms out around the pointer
func (m *MapView) TappedSecondary(ev *fyne.PointEvent) {
	m.interacted()
	m.zoomAround(-1, ev.Position)
}

// Scrolled zooms one level per wheel notch around the pointer
func (m *MapView) Scrolled(ev *fyne.ScrollEvent) {
	m.interacted()
	switch {
	case ev.Scrolled.DY > 0:
		m.zoomAround(ScrollZoomStep, ev.Position)
	case ev.Scrolled.DY < 0:
		m.zoomAround(-ScrollZoomStep, ev.Position)
	}
}

// Dragged pans the map
func (m *MapView) Dragged(ev *fyne.DragEvent) {
	m.PanBy(ev.Dragged.DX, ev.Dragged.DY)
}

// DragEnd is required by fyne.Draggable
func (m *MapView) DragEnd() {}

// MouseDown counts as user interaction
func (m *MapView) MouseDown(*desktop.MouseEvent) {
	m.interacted()
}

// MouseUp is required by desktop.Mouseable
func (m *MapView) MouseUp(*desktop.MouseEvent) {}

// TouchDown starts long-press detection
func (m *MapView) TouchDown(ev *mobile.TouchEvent) {
	m.interacted()
	m.gestures.TouchDown(ev)
}

// TouchUp resets the view after a long press
func (m *MapView) TouchUp(ev *mobile.TouchEvent) {
	m.gestures.TouchUp(ev)
}

// TouchCancel aborts long-press detection
func (m *MapView) TouchCancel(ev *mobile.TouchEvent) {
	m.gestures.TouchCancel(ev)
}

// Resize keeps the camera inside the bounds for the new size
func (m *MapView) Resize(size fyne.Size) {
	m.BaseWidget.Resize(size)
	m.viewport.Center = m.viewport.ClampCenter(m.viewport.Center, m.viewport.Zoom,
		float64(size.Width), float64(size.Height))
	m.projected = nil
}

func (m *MapView) zoomAround(delta int, pos fyne.Position) {
	w, h := m.dims()
	m.apply(m.viewport.ZoomAround(delta, float64(pos.X), float64(pos.Y), w, h))
}

func (m *MapView) apply(vp geo.Viewport) {
	if vp == m.viewport {
		return
	}
	if vp.Zoom != m.viewport.Zoom {
		// decoded tiles of other zoom levels are never visible again
		m.images = lo.PickBy(m.images, func(t maptile.Tile, _ *canvas.Image) bool {
			return int(t.Z) == vp.Zoom
		})
		m.requested = make(map[maptile.Tile]bool)
	}
	m.viewport = vp
	m.projected = nil
	m.Refresh()
	if m.OnViewportChanged != nil {
		m.OnViewportChanged(vp)
	}
}

func (m *MapView) interacted() {
	if m.OnInteraction != nil {
		m.OnInteraction()
	}
}

func (m *MapView) dims() (float64, float64) {
	size := m.Size()
	return float64(size.Width), float64(size.Height)
}

func (m *MapView) ensureProjected() []orb.Geometry {
	if m.projected == nil || len(m.projected) != len(m.layer.Shapes) {
		w, h := m.dims()
		m.projected = projectShapes(m.layer.Shapes, m.viewport, w, h)
	}
	return m.projected
}

// tileImage returns the decoded tile, requesting it when it is not cached
func (m *MapView) tileImage(t maptile.Tile) *canvas.Image {
	if img, ok := m.images[t]; ok {
		return img
	}
	if m.tiles == nil {
		return nil
	}
	if data, ok := m.tiles.Cached(t); ok {
		return m.decodeTile(t, data)
	}
	if !m.requested[t] {
		m.requested[t] = true
		m.tiles.Request(m.ctx, t)
	}
	return nil
}

func (m *MapView) tileLoaded(t maptile.Tile, data []byte) {
	if int(t.Z) != m.viewport.Zoom {
		return
	}
	m.decodeTile(t, data)
	m.Refresh()
}

func (m *MapView) decodeTile(t maptile.Tile, data []byte) *canvas.Image {
	img := canvas.NewImageFromReader(bytes.NewReader(data), fmt.Sprintf("%d-%d-%d.png", t.Z, t.X, t.Y))
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScaleFastest
	m.images[t] = img
	return img
}

// CreateRenderer creates the widget renderer
func (m *MapView) CreateRenderer() fyne.WidgetRenderer {
	r := &mapRenderer{
		view:       m,
		background: canvas.NewRectangle(ColorMapBlank),
		tiles:      container.NewWithoutLayout(),
		markers:    container.NewWithoutLayout(),
	}
	r.overlay = canvas.NewRaster(r.drawOverlay)
	r.overlay.ScaleMode = canvas.ImageScaleSmooth
	r.objects = []fyne.CanvasObject{r.background, r.tiles, r.overlay, r.markers}
	return r
}

type mapRenderer struct {
	view       *MapView
	background *canvas.Rectangle
	tiles      *fyne.Container
	overlay    *canvas.Raster
	markers    *fyne.Container
	objects    []fyne.CanvasObject

	markerLayer *geo.Layer
	markerIcons []fyne.CanvasObject
}

func (r *mapRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.overlay.Resize(size)
	r.tiles.Resize(size)
	r.markers.Resize(size)

	r.layoutTiles(size)
	r.layoutMarkers(size)
}

func (r *mapRenderer) layoutTiles(size fyne.Size) {
	placements := r.view.viewport.VisibleTiles(float64(size.Width), float64(size.Height))
	objects := make([]fyne.CanvasObject, 0, len(placements))
	for _, p := range placements {
		img := r.view.tileImage(p.Tile)
		if img == nil {
			continue
		}
		img.Move(fyne.NewPos(float32(p.X), float32(p.Y)))
		img.Resize(fyne.NewSquareSize(geo.TileSize))
		objects = append(objects, img)
	}
	r.tiles.Objects = objects
}

func (r *mapRenderer) layoutMarkers(size fyne.Size) {
	layer := r.view.layer
	if layer != r.markerLayer {
		r.markerLayer = layer
		r.markerIcons = lo.Map(layer.Markers, func(marker geo.Marker, _ int) fyne.CanvasObject {
			return newMarkerIcon(marker.Kind)
		})
		r.markers.Objects = r.markerIcons
	}

	w, h := float64(size.Width), float64(size.Height)
	for i, marker := range layer.Markers {
		icon := r.markerIcons[i]
		x, y := r.view.viewport.ToScreen(marker.Position, w, h)
		if x < -geo.MarkerSize || y < -geo.MarkerSize || x > w+geo.MarkerSize || y > h+geo.MarkerSize {
			icon.Hide()
			continue
		}
		icon.Show()
		icon.Move(fyne.NewPos(float32(x-geo.MarkerAnchor), float32(y-geo.MarkerAnchor)))
		icon.Resize(fyne.NewSquareSize(geo.MarkerSize))
	}
}

func (r *mapRenderer) drawOverlay(w, h int) image.Image {
	size := r.view.Size()
	if size.Width <= 0 || len(r.view.layer.Shapes) == 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	scale := float64(w) / float64(size.Width)
	return renderOverlay(r.view.layer.Shapes, r.view.ensureProjected(), w, h, scale)
}

func (r *mapRenderer) MinSize() fyne.Size {
	return fyne.NewSize(geo.TileSize, geo.TileSize)
}

func (r *mapRenderer) Refresh() {
	r.Layout(r.view.Size())
	r.overlay.Refresh()
	r.tiles.Refresh()
	r.markers.Refresh()
}

func (r *mapRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *mapRenderer) Destroy() {}

// newMarkerIcon draws a round marker; capitals carry a star
func newMarkerIcon(kind geo.MarkerKind) fyne.CanvasObject {
	fill, border := markerColors(kind)
	circle := canvas.NewCircle(fill)
	circle.StrokeColor = border
	circle.StrokeWidth = MarkerBorderWidth

	if kind != geo.MarkerCapital {
		return circle
	}

	star := canvas.NewText(IconStar, ColorMarkerBorder)
	star.Alignment = fyne.TextAlignCenter
	star.TextSize = geo.MarkerSize * 0.7
	return container.NewStack(circle, container.NewCenter(star))
}
