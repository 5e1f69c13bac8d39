package ui

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"path"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/samber/lo"

	"github.com/tnoatlas/atlas/internal/geo"
	"github.com/tnoatlas/atlas/internal/logger"
)

// Flag image box
const (
	FlagMaxHeight float32 = 100
)

// ImageFetcher loads remote images such as popup flags
type ImageFetcher interface {
	FetchURL(ctx context.Context, url string) ([]byte, error)
}

// fixedWidth pins obj to width w using a transparent rectangle underneath
func fixedWidth(w float32, obj fyne.CanvasObject) fyne.CanvasObject {
	spacer := canvas.NewRectangle(color.RGBA{0, 0, 0, 0})
	spacer.SetMinSize(fyne.NewSize(w, obj.MinSize().Height))
	return container.NewStack(spacer, obj)
}

// popupWidth clamps the natural content width to the popup limits
func popupWidth(natural float32) float32 {
	switch {
	case natural < geo.PopupMinWidth:
		return geo.PopupMinWidth
	case natural > geo.PopupContentWidth:
		return geo.PopupContentWidth
	}
	return natural
}

// NewPopupContent builds the body of a feature popup. The flag image, if
// any, is fetched in the background.
func NewPopupContent(ctx context.Context, p *geo.Popup, loc *Localization, images ImageFetcher) fyne.CanvasObject {
	if p.NoData {
		return widget.NewLabel(loc.GetText(KeyNoData))
	}

	var rows []fyne.CanvasObject
	if p.FlagURL != "" {
		rows = append(rows, newFlagBox(ctx, p.FlagURL, loc, images))
	}

	switch {
	case p.NoName:
		rows = append(rows, wrapped(loc.GetText(KeyNoName), fyne.TextStyle{}))
	case p.Title != "":
		title := widget.NewRichText(&widget.TextSegment{
			Text: p.Title,
			Style: widget.RichTextStyle{
				SizeName:  theme.SizeNameHeadingText,
				TextStyle: fyne.TextStyle{Bold: true},
			},
		})
		title.Wrapping = fyne.TextWrapWord
		rows = append(rows, title)
	}

	for _, row := range p.Rows {
		text := widget.NewRichText(
			&widget.TextSegment{Text: row.Key + " ", Style: widget.RichTextStyle{
				Inline: true, TextStyle: fyne.TextStyle{Bold: true},
			}},
			&widget.TextSegment{Text: row.Value, Style: widget.RichTextStyle{Inline: true}},
		)
		text.Wrapping = fyne.TextWrapWord
		rows = append(rows, text)
	}

	body := container.NewVBox(rows...)
	return fixedWidth(popupWidth(body.MinSize().Width), body)
}

func wrapped(text string, style fyne.TextStyle) *widget.Label {
	label := widget.NewLabelWithStyle(text, fyne.TextAlignLeading, style)
	label.Wrapping = fyne.TextWrapWord
	return label
}

// newFlagBox shows the alt text until the flag arrives, and a notice when
// it cannot be loaded
func newFlagBox(ctx context.Context, flagURL string, loc *Localization, images ImageFetcher) fyne.CanvasObject {
	status := widget.NewLabel(loc.GetText(KeyFlagAlt))
	box := container.NewStack(status)

	if images == nil {
		status.SetText(loc.GetText(KeyFlagNotLoaded))
		return box
	}

	go func() {
		img, err := loadFlag(ctx, images, flagURL)
		if err != nil {
			logger.Warn("Flag not loaded", logger.String("url", flagURL), logger.ErrorField(err))
			fyne.Do(func() { status.SetText(loc.GetText(KeyFlagNotLoaded)) })
			return
		}
		fyne.Do(func() {
			box.Objects = []fyne.CanvasObject{img}
			box.Refresh()
		})
	}()
	return box
}

func loadFlag(ctx context.Context, images ImageFetcher, flagURL string) (*canvas.Image, error) {
	data, err := images.FetchURL(ctx, flagURL)
	if err != nil {
		return nil, err
	}

	name := flagName(flagURL)
	var aspect float32 = 1.5
	if !strings.HasSuffix(name, ".svg") {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if cfg.Height > 0 {
			aspect = float32(cfg.Width) / float32(cfg.Height)
		}
	}

	img := canvas.NewImageFromReader(bytes.NewReader(data), name)
	img.FillMode = canvas.ImageFillContain
	h := FlagMaxHeight
	if w := h * aspect; w > geo.PopupContentWidth {
		h = geo.PopupContentWidth / aspect
	}
	img.SetMinSize(fyne.NewSize(h*aspect, h))
	return img, nil
}

// flagName returns the file name of a flag URL, used by Fyne to pick a decoder
func flagName(flagURL string) string {
	if u, err := url.Parse(flagURL); err == nil && u.Path != "" {
		return strings.ToLower(path.Base(u.Path))
	}
	return "flag"
}

// MapPopup is the single popup bubble over the map
type MapPopup struct {
	canvas fyne.Canvas
	popup  *widget.PopUp
	cancel context.CancelFunc
}

// NewMapPopup creates a popup host on c
func NewMapPopup(c fyne.Canvas) *MapPopup {
	return &MapPopup{canvas: c}
}

// Show replaces any open popup with content anchored at pos, kept inside the
// canvas. cancel aborts its pending image loads when the popup closes.
func (mp *MapPopup) Show(content fyne.CanvasObject, pos fyne.Position, cancel context.CancelFunc) {
	mp.Hide()

	closeBtn := widget.NewButton(IconClose, mp.Hide)
	closeBtn.Importance = widget.LowImportance
	body := container.NewBorder(container.NewBorder(nil, nil, nil, closeBtn), nil, nil, nil, content)

	mp.popup = widget.NewPopUp(body, mp.canvas)
	mp.cancel = cancel

	size := mp.popup.MinSize()
	limit := mp.canvas.Size()
	pos.X = lo.Clamp(pos.X-size.Width/2, 0, max(0, limit.Width-size.Width))
	pos.Y = lo.Clamp(pos.Y-size.Height-geo.MarkerAnchor, 0, max(0, limit.Height-size.Height))
	mp.popup.ShowAtPosition(pos)
}

// Hide closes the popup if it is open
func (mp *MapPopup) Hide() {
	if mp.cancel != nil {
		mp.cancel()
		mp.cancel = nil
	}
	if mp.popup != nil {
		mp.popup.Hide()
		mp.popup = nil
	}
}

// Visible reports whether a popup is open
func (mp *MapPopup) Visible() bool {
	return mp.popup != nil && mp.popup.Visible()
}
