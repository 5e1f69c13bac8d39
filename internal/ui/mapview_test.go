package ui

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"

	"github.com/tnoatlas/atlas/internal/geo"
)

type fakeTiles struct {
	mu        sync.Mutex
	cached    map[maptile.Tile][]byte
	requested []maptile.Tile
	onLoaded  func(maptile.Tile, []byte)
	images    map[string][]byte
}

func newFakeTiles() *fakeTiles {
	return &fakeTiles{
		cached: make(map[maptile.Tile][]byte),
		images: make(map[string][]byte),
	}
}

func (f *fakeTiles) Cached(t maptile.Tile) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.cached[t]
	return data, ok
}

func (f *fakeTiles) Request(_ context.Context, t maptile.Tile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, t)
}

func (f *fakeTiles) SetLoadedCallback(callback func(maptile.Tile, []byte)) {
	f.onLoaded = callback
}

func (f *fakeTiles) FetchURL(_ context.Context, url string) ([]byte, error) {
	if data, ok := f.images[url]; ok {
		return data, nil
	}
	return nil, geo.ErrHTTPStatus
}

func (f *fakeTiles) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requested)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func sampleLayer() *geo.Layer {
	fc := geojson.NewFeatureCollection()

	capital := geojson.NewFeature(orb.Point{44.5, 43.2})
	capital.Properties = geojson.Properties{"name": "Tbilisi", "capital": true, "population": 1}
	fc.Append(capital)

	zone := geojson.NewFeature(orb.Polygon{{{42, 43}, {43, 43}, {43, 44}, {42, 44}, {42, 43}}})
	zone.Properties = geojson.Properties{"name": "Zone"}
	fc.Append(zone)

	return geo.BuildLayer(fc)
}

func newTestMap(t *testing.T, tiles TileProvider) *MapView {
	t.Helper()
	test.NewApp()
	m := NewMapView(context.Background(), tiles)
	m.Resize(fyne.NewSize(800, 600))
	return m
}

func TestMapView_HitTest(t *testing.T) {
	m := newTestMap(t, nil)
	m.SetLayer(sampleLayer())
	vp := m.Viewport()

	x, y := vp.ToScreen(orb.Point{44.5, 43.2}, 800, 600)
	popup, ok := m.HitTest(fyne.NewPos(float32(x+3), float32(y-3)))
	if !ok {
		t.Fatal("Expected marker hit")
	}
	if len(popup.Rows) != 1 || popup.Rows[0].Key != "population" {
		t.Errorf("Expected marker popup, got %+v", popup)
	}

	x, y = vp.ToScreen(orb.Point{42.5, 43.5}, 800, 600)
	popup, ok = m.HitTest(fyne.NewPos(float32(x), float32(y)))
	if !ok {
		t.Fatal("Expected polygon hit")
	}
	if popup.Title != "Zone" {
		t.Errorf("Expected polygon popup, got %+v", popup)
	}

	x, y = vp.ToScreen(orb.Point{47, 46}, 800, 600)
	if _, ok := m.HitTest(fyne.NewPos(float32(x), float32(y))); ok {
		t.Error("Expected no hit on empty map")
	}
}

func TestMapView_Tapped(t *testing.T) {
	m := newTestMap(t, nil)
	m.SetLayer(sampleLayer())

	interactions := 0
	var got *geo.Popup
	tapped := false
	m.OnInteraction = func() { interactions++ }
	m.OnTapped = func(p *geo.Popup, _ fyne.Position) {
		tapped = true
		got = p
	}

	m.Tapped(&fyne.PointEvent{Position: fyne.NewPos(1, 1)})

	if !tapped || got != nil {
		t.Errorf("Expected tap on empty spot with nil popup, got tapped=%v popup=%v", tapped, got)
	}
	if interactions != 1 {
		t.Errorf("Expected 1 interaction, got %d", interactions)
	}
}

func TestMapView_ZoomAndPan(t *testing.T) {
	m := newTestMap(t, nil)

	changes := 0
	m.OnViewportChanged = func(geo.Viewport) { changes++ }

	m.Scrolled(&fyne.ScrollEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(400, 300)},
		Scrolled:   fyne.NewDelta(0, 1),
	})
	if m.Viewport().Zoom != geo.InitialZoom+1 {
		t.Errorf("Expected zoom %d after scroll up, got %d", geo.InitialZoom+1, m.Viewport().Zoom)
	}

	m.DoubleTapped(&fyne.PointEvent{Position: fyne.NewPos(400, 300)})
	if m.Viewport().Zoom != geo.InitialZoom+2 {
		t.Errorf("Expected zoom %d after double tap, got %d", geo.InitialZoom+2, m.Viewport().Zoom)
	}

	before := m.Viewport().Center
	m.Dragged(&fyne.DragEvent{Dragged: fyne.NewDelta(50, 0)})
	if m.Viewport().Center[0] >= before[0] {
		t.Errorf("Expected dragging right to move the centre west, %v -> %v", before, m.Viewport().Center)
	}

	m.TappedSecondary(&fyne.PointEvent{Position: fyne.NewPos(400, 300)})
	if m.Viewport().Zoom != geo.InitialZoom+1 {
		t.Errorf("Expected zoom %d after secondary tap, got %d", geo.InitialZoom+1, m.Viewport().Zoom)
	}

	m.ResetView()
	if m.Viewport().Zoom != geo.InitialZoom {
		t.Errorf("Expected initial zoom after reset, got %d", m.Viewport().Zoom)
	}
	if changes != 5 {
		t.Errorf("Expected 5 viewport changes, got %d", changes)
	}
}

func TestMapView_ZoomLimits(t *testing.T) {
	m := newTestMap(t, nil)

	m.ZoomOut()
	if m.Viewport().Zoom != geo.MinZoom {
		t.Errorf("Expected zoom to stay at %d, got %d", geo.MinZoom, m.Viewport().Zoom)
	}

	for i := 0; i < 20; i++ {
		m.ZoomIn()
	}
	if m.Viewport().Zoom != geo.MaxZoom {
		t.Errorf("Expected zoom to stop at %d, got %d", geo.MaxZoom, m.Viewport().Zoom)
	}
}

func TestMapView_RequestsVisibleTilesOnce(t *testing.T) {
	tiles := newFakeTiles()
	m := newTestMap(t, tiles)
	w := test.NewWindow(m)
	defer w.Close()
	w.Resize(fyne.NewSize(800, 600))

	first := tiles.requestCount()
	if first == 0 {
		t.Fatal("Expected tile requests")
	}
	seen := make(map[maptile.Tile]bool)
	for _, tile := range tiles.requested {
		if seen[tile] {
			t.Errorf("Tile %v requested twice", tile)
		}
		seen[tile] = true
	}

	m.Refresh()
	if tiles.requestCount() != first {
		t.Errorf("Expected no repeated requests, got %d", tiles.requestCount())
	}

	if tiles.onLoaded == nil {
		t.Fatal("Expected the map to register a loaded callback")
	}
}

func TestMapView_UsesCachedTiles(t *testing.T) {
	tiles := newFakeTiles()
	vp := geo.NewRegionViewport()
	vp.Center = vp.ClampCenter(vp.Center, vp.Zoom, 800, 600)
	for _, p := range vp.VisibleTiles(800, 600) {
		tiles.cached[p.Tile] = pngBytes(t, 4, 4)
	}

	m := newTestMap(t, tiles)
	r := test.TempWidgetRenderer(t, m).(*mapRenderer)
	r.Layout(fyne.NewSize(800, 600))

	if tiles.requestCount() != 0 {
		t.Errorf("Expected cached tiles not to be requested, got %d", tiles.requestCount())
	}
	if len(r.tiles.Objects) != len(tiles.cached) {
		t.Errorf("Expected %d tile images, got %d", len(tiles.cached), len(r.tiles.Objects))
	}
}

func TestMapView_TileLoadedIgnoresOtherZoom(t *testing.T) {
	m := newTestMap(t, newFakeTiles())

	m.tileLoaded(maptile.New(0, 0, maptile.Zoom(geo.InitialZoom+3)), pngBytes(t, 1, 1))
	if len(m.images) != 0 {
		t.Errorf("Expected stale zoom tile to be dropped, got %d images", len(m.images))
	}

	tile := maptile.New(79, 46, maptile.Zoom(geo.InitialZoom))
	m.tileLoaded(tile, pngBytes(t, 1, 1))
	if _, ok := m.images[tile]; !ok {
		t.Error("Expected current zoom tile to be kept")
	}

	m.ZoomIn()
	if len(m.images) != 0 {
		t.Errorf("Expected images of the old zoom to be evicted, got %d", len(m.images))
	}
}

func TestMapView_MarkersLaidOut(t *testing.T) {
	m := newTestMap(t, nil)
	m.SetLayer(sampleLayer())

	r := test.TempWidgetRenderer(t, m).(*mapRenderer)
	r.Layout(fyne.NewSize(800, 600))

	if len(r.markerIcons) != 1 {
		t.Fatalf("Expected 1 marker icon, got %d", len(r.markerIcons))
	}
	icon := r.markerIcons[0]
	x, y := m.Viewport().ToScreen(orb.Point{44.5, 43.2}, 800, 600)
	pos := icon.Position()
	if pos.X != float32(x-geo.MarkerAnchor) || pos.Y != float32(y-geo.MarkerAnchor) {
		t.Errorf("Expected marker anchored at %v,%v, got %v", x, y, pos)
	}
	if icon.Size() != fyne.NewSquareSize(geo.MarkerSize) {
		t.Errorf("Expected marker size %d, got %v", geo.MarkerSize, icon.Size())
	}
}
