package ui

import (
	"context"
	"net/url"
	"sort"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/paulmach/orb/geojson"
	"github.com/samber/lo"

	"github.com/tnoatlas/atlas/internal/geo"
	"github.com/tnoatlas/atlas/internal/logger"
	"github.com/tnoatlas/atlas/internal/player"
)

// Player is the controller surface the window needs
type Player interface {
	Transport
	FirstInteraction()
	ViewModel() player.ViewModel
	SetUpdateCallback(callback func(player.ViewModel))
}

// MapLoader fetches the feature collection shown on the map
type MapLoader interface {
	Load(ctx context.Context, source string) (*geojson.FeatureCollection, error)
}

// Tiles serves both basemap tiles and popup images
type Tiles interface {
	TileProvider
	ImageFetcher
}

// Options wires the window to its services. Tiles may be nil.
type Options struct {
	Player      Player
	Loader      MapLoader
	MapSource   string
	Tiles       Tiles
	Attribution string
	Language    string
}

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	localization *Localization
	opts         Options

	ctx    context.Context
	cancel context.CancelFunc

	mapView     *MapView
	mapPopup    *MapPopup
	playerPanel *PlayerPanel

	errorBox     *fyne.Container
	errorTitle   *widget.Label
	errorMessage *widget.Label
	loadErr      error

	// serializes map loads; a newer load wins
	loadMu  sync.Mutex
	loadSeq uint64
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, opts Options) *RootUI {
	localization := NewLocalization()
	localization.SetLanguage(opts.Language)

	ctx, cancel := context.WithCancel(context.Background())
	ui := &RootUI{
		window:       window,
		localization: localization,
		opts:         opts,
		ctx:          ctx,
		cancel:       cancel,
	}

	window.SetTitle(localization.GetText(KeyAppTitle))
	ui.setupUI()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.createMenu()

	var tiles TileProvider
	if ui.opts.Tiles != nil {
		tiles = ui.opts.Tiles
	}
	ui.mapView = NewMapView(ui.ctx, tiles)
	ui.mapView.OnTapped = ui.onMapTapped
	ui.mapView.OnInteraction = ui.onInteraction
	ui.mapView.OnViewportChanged = func(geo.Viewport) { ui.mapPopup.Hide() }
	ui.mapPopup = NewMapPopup(ui.window.Canvas())

	ui.errorTitle = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ui.errorMessage = widget.NewLabel("")
	ui.errorMessage.Wrapping = fyne.TextWrapWord
	errorBackground := canvas.NewRectangle(ColorPanel)
	ui.errorBox = container.NewStack(errorBackground, container.NewPadded(container.NewVBox(ui.errorTitle, ui.errorMessage)))
	ui.errorBox.Hide()

	attribution := ui.opts.Attribution
	if attribution == "" {
		attribution = geo.DefaultAttribution
	}
	link, _ := url.Parse(geo.AttributionURL)
	attributionLink := widget.NewHyperlink(attribution, link)

	overlay := container.New(&overlayLayout{minimized: func() bool { return ui.playerPanel != nil && ui.playerPanel.Minimized() }})
	if ui.opts.Player != nil {
		ui.playerPanel = NewPlayerPanel(ui.opts.Player, ui.localization)
		ui.playerPanel.OnInteraction = ui.onInteraction
		ui.opts.Player.SetUpdateCallback(func(vm player.ViewModel) {
			ui.playerPanel.Update(vm)
			overlay.Refresh()
		})
		ui.playerPanel.Update(ui.opts.Player.ViewModel())
		overlay.Objects = []fyne.CanvasObject{ui.errorBox, attributionLink, ui.playerPanel.Container()}
	} else {
		overlay.Objects = []fyne.CanvasObject{ui.errorBox, attributionLink}
	}

	ui.window.Canvas().SetOnTypedKey(ui.onTypedKey)
	ui.window.Canvas().SetOnTypedRune(ui.onTypedRune)
	ui.window.SetContent(container.NewStack(ui.mapView, overlay))
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	languages := ui.localization.GetAvailableLanguages()
	codes := lo.Keys(languages)
	sort.Strings(codes)
	for _, code := range codes {
		langCode := code
		langItem := fyne.NewMenuItem(languages[code], func() {
			ui.onLanguageChange(langCode)
		})
		langItem.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	viewMenu := fyne.NewMenu(ui.localization.GetText(KeyView),
		fyne.NewMenuItem(ui.localization.GetText(KeyResetView), func() { ui.mapView.ResetView() }),
		fyne.NewMenuItem(ui.localization.GetText(KeyReloadMap), ui.ReloadMap),
	)

	menus := []*fyne.Menu{viewMenu}
	if p := ui.opts.Player; p != nil {
		menus = append(menus, fyne.NewMenu(ui.localization.GetText(KeyPlayerMenu),
			fyne.NewMenuItem(ui.localization.GetText(KeyTogglePlayback), ui.withInteraction(p.TogglePlayPause)),
			fyne.NewMenuItem(ui.localization.GetText(KeyNext), ui.withInteraction(p.Next)),
			fyne.NewMenuItem(ui.localization.GetText(KeyPrevious), ui.withInteraction(p.Prev)),
		))
	}
	menus = append(menus, languageMenu)

	ui.window.SetMainMenu(fyne.NewMainMenu(menus...))
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.refreshUITexts()
	ui.createMenu()
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))
	if ui.playerPanel != nil {
		ui.playerPanel.RefreshTexts()
	}
	if ui.loadErr != nil {
		ui.showLoadError(ui.loadErr)
	}
	ui.mapPopup.Hide()
}

// MapView returns the map widget
func (ui *RootUI) MapView() *MapView {
	return ui.mapView
}

// Localization returns the active string tables
func (ui *RootUI) Localization() *Localization {
	return ui.localization
}

// LoadMap fetches the map data in the background and shows it. Failures are
// logged and shown inline; the map stays usable.
func (ui *RootUI) LoadMap() {
	if ui.opts.Loader == nil {
		return
	}

	ui.loadMu.Lock()
	ui.loadSeq++
	seq := ui.loadSeq
	ui.loadMu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(ui.ctx, MapReloadTimeout)
		defer cancel()

		fc, err := ui.opts.Loader.Load(ctx, ui.opts.MapSource)

		ui.loadMu.Lock()
		stale := seq != ui.loadSeq
		ui.loadMu.Unlock()
		if stale {
			return
		}

		if err != nil {
			logger.Error("Map data loading failed", logger.String("source", ui.opts.MapSource), logger.ErrorField(err))
			fyne.Do(func() { ui.showLoadError(err) })
			return
		}

		layer := geo.BuildLayer(fc)
		logger.Info("Map data loaded",
			logger.String("source", ui.opts.MapSource),
			logger.Int("markers", len(layer.Markers)),
			logger.Int("shapes", len(layer.Shapes)))
		fyne.Do(func() { ui.showLayer(layer) })
	}()
}

// ReloadMap reloads the map data, keeping the current layer until the new
// one arrives
func (ui *RootUI) ReloadMap() {
	ui.LoadMap()
}

func (ui *RootUI) showLayer(layer *geo.Layer) {
	ui.loadErr = nil
	ui.errorBox.Hide()
	ui.mapPopup.Hide()
	ui.mapView.SetLayer(layer)
}

func (ui *RootUI) showLoadError(err error) {
	ui.loadErr = err
	ui.errorTitle.SetText(ui.localization.GetText(KeyDataLoadError))
	ui.errorMessage.SetText(err.Error())
	ui.errorBox.Show()
	ui.errorBox.Refresh()
}

// ErrorText returns the inline error message, empty when hidden
func (ui *RootUI) ErrorText() string {
	if !ui.errorBox.Visible() {
		return ""
	}
	return ui.errorTitle.Text + "\n" + ui.errorMessage.Text
}

func (ui *RootUI) onMapTapped(popup *geo.Popup, pos fyne.Position) {
	if popup == nil {
		ui.mapPopup.Hide()
		return
	}

	ctx, cancel := context.WithCancel(ui.ctx)
	var images ImageFetcher
	if ui.opts.Tiles != nil {
		images = ui.opts.Tiles
	}
	content := NewPopupContent(ctx, popup, ui.localization, images)
	abs := fyne.CurrentApp().Driver().AbsolutePositionForObject(ui.mapView)
	ui.mapPopup.Show(content, abs.Add(pos), cancel)
}

// onTypedKey handles keyboard navigation of the map and the player
func (ui *RootUI) onTypedKey(ev *fyne.KeyEvent) {
	step := float32(geo.TileSize / 4)
	switch ev.Name {
	case fyne.KeyLeft:
		ui.mapView.PanBy(step, 0)
	case fyne.KeyRight:
		ui.mapView.PanBy(-step, 0)
	case fyne.KeyUp:
		ui.mapView.PanBy(0, step)
	case fyne.KeyDown:
		ui.mapView.PanBy(0, -step)
	case fyne.KeyHome:
		ui.mapView.ResetView()
	case fyne.KeyEscape:
		ui.mapPopup.Hide()
	case fyne.KeySpace:
		if ui.opts.Player != nil {
			ui.opts.Player.TogglePlayPause()
		}
	}
	ui.onInteraction()
}

func (ui *RootUI) onTypedRune(r rune) {
	switch r {
	case '+', '=':
		ui.mapView.ZoomIn()
	case '-', '_':
		ui.mapView.ZoomOut()
	}
	ui.onInteraction()
}

func (ui *RootUI) onInteraction() {
	if ui.opts.Player != nil {
		ui.opts.Player.FirstInteraction()
	}
}

func (ui *RootUI) withInteraction(fn func()) func() {
	return func() {
		fn()
		ui.onInteraction()
	}
}

// Close cancels pending map and image loads
func (ui *RootUI) Close() {
	ui.cancel()
	ui.mapPopup.Hide()
}

// overlayLayout places the error box at the top, the attribution at the
// bottom right and the player panel at the bottom left
type overlayLayout struct {
	minimized func() bool
}

func (l *overlayLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	for i, obj := range objects {
		minSize := obj.MinSize()
		switch i {
		case 0: // error box
			w := minSize.Width
			if limit := size.Width - 2*PlayerMargin; w > limit {
				w = limit
			}
			if w < geo.PopupContentWidth {
				w = geo.PopupContentWidth
			}
			obj.Resize(fyne.NewSize(w, minSize.Height))
			obj.Move(fyne.NewPos((size.Width-w)/2, PlayerMargin))
		case 1: // attribution
			obj.Resize(minSize)
			obj.Move(fyne.NewPos(size.Width-minSize.Width, size.Height-minSize.Height))
		case 2: // player
			w := panelWidth(size.Width)
			if l.minimized != nil && l.minimized() {
				w = PlayerMinimizedWidth
			}
			obj.Resize(fyne.NewSize(w, minSize.Height))
			obj.Move(fyne.NewPos(PlayerMargin, size.Height-minSize.Height-PlayerMargin))
		}
	}
}

func (l *overlayLayout) MinSize([]fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(PlayerPanelWidth+2*PlayerMargin, 0)
}
