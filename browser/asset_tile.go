package browser

import (
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/alexballas/assetgrid/masonry"
)

const tileIconSize = 48

// assetTile renders one visible record. Tiles are pooled by the grid and
// rebound to other records as the viewport moves.
type assetTile struct {
	widget.BaseWidget
	grid *AssetGrid

	index int
	rec   masonry.AssetRecord
	item  masonry.LayoutItem

	bg          *canvas.Rectangle
	placeholder *canvas.Rectangle
	icon        *widget.FileIcon
	thumbnail   *canvas.Image
	label       *widget.Label
	badgeBg     *canvas.Rectangle
	badge       *canvas.Text

	selected   bool
	thumbRef   string
	thumbWidth int
	lastClick  time.Time
	loadTimer  *time.Timer
}

func newAssetTile(g *AssetGrid) *assetTile {
	t := &assetTile{
		grid:        g,
		bg:          canvas.NewRectangle(theme.Color(theme.ColorNameSelection)),
		placeholder: canvas.NewRectangle(theme.Color(theme.ColorNameInputBackground)),
		icon:        widget.NewFileIcon(nil),
		thumbnail:   canvas.NewImageFromImage(nil),
		label:       widget.NewLabel(""),
		badgeBg:     canvas.NewRectangle(theme.Color(theme.ColorNameOverlayBackground)),
		badge:       canvas.NewText("", theme.Color(theme.ColorNameForeground)),
	}
	t.bg.Hide()
	t.thumbnail.FillMode = canvas.ImageFillContain
	t.thumbnail.Hide()
	t.label.Truncation = fyne.TextTruncateEllipsis
	t.label.Alignment = fyne.TextAlignCenter
	t.badge.TextSize = theme.CaptionTextSize()
	t.badge.Hide()
	t.badgeBg.CornerRadius = theme.InputRadiusSize()
	t.badgeBg.Hide()
	t.ExtendBaseWidget(t)
	return t
}

func (t *assetTile) CreateRenderer() fyne.WidgetRenderer {
	return &assetTileRenderer{tile: t}
}

// bind points the tile at a record and its placement.
func (t *assetTile) bind(index int, rec masonry.AssetRecord, item masonry.LayoutItem, annotation string) {
	t.index = index
	t.item = item

	if t.rec.ID != rec.ID || t.rec.Path != rec.Path || t.label.Text == "" {
		if rec.Path != "" {
			t.icon.SetURI(storage.NewFileURI(rec.Path))
		} else {
			t.icon.SetURI(nil)
		}
		t.label.SetText(rec.Name)
	}
	t.rec = rec

	if annotation != t.badge.Text {
		t.badge.Text = annotation
		if annotation == "" {
			t.badge.Hide()
			t.badgeBg.Hide()
		} else {
			t.badge.Show()
			t.badgeBg.Show()
		}
		t.badge.Refresh()
	}

	width := thumbnailWidth(item.Width * t.grid.canvasScale())
	if rec.ThumbnailRef != t.thumbRef || width != t.thumbWidth {
		t.loadThumbnail(rec.ThumbnailRef, width)
	}
}

func (t *assetTile) loadThumbnail(ref string, width int) {
	t.stopLoad()
	t.thumbRef = ref
	t.thumbWidth = width

	t.thumbnail.Image = nil
	t.thumbnail.Hide()
	t.icon.Show()

	if ref == "" || !CanThumbnail(ref) {
		return
	}

	tm := GetThumbnailManager()
	if img := tm.LoadMemoryOnly(ref, width); img != nil {
		t.showThumbnail(img)
		return
	}

	t.loadTimer = time.AfterFunc(thumbnailDelay, func() {
		tm.Load(ref, width, func(img image.Image) {
			fyne.Do(func() {
				// The tile may have been rebound while decoding.
				if t.thumbRef != ref || t.thumbWidth != width {
					return
				}
				t.showThumbnail(img)
			})
		})
	})
}

func (t *assetTile) showThumbnail(img image.Image) {
	t.thumbnail.Image = img
	t.thumbnail.Show()
	t.thumbnail.Refresh()
	t.icon.Hide()
}

func (t *assetTile) stopLoad() {
	if t.loadTimer != nil {
		t.loadTimer.Stop()
		t.loadTimer = nil
	}
}

// release detaches the tile before it goes back to the pool.
func (t *assetTile) release() {
	t.stopLoad()
	t.thumbRef = ""
	t.thumbWidth = 0
	t.thumbnail.Image = nil
	t.selected = false
	t.bg.Hide()
}

func (t *assetTile) setSelected(selected bool) {
	if t.selected == selected {
		return
	}
	t.selected = selected
	if selected {
		t.bg.Show()
	} else {
		t.bg.Hide()
	}
	t.bg.Refresh()
}

func (t *assetTile) Tapped(*fyne.PointEvent) {
	if fyne.CurrentDevice().IsMobile() {
		t.grid.tileClicked(t.index, 0)
		return
	}
	if t.grid.suppressClick() {
		return
	}

	now := time.Now()
	if now.Sub(t.lastClick) < fyne.CurrentApp().Driver().DoubleTapDelay() {
		t.grid.tileDoubleClicked(t.index)
		now = time.Time{}
	}
	t.lastClick = now
}

func (t *assetTile) SecondaryTapped(e *fyne.PointEvent) {
	t.grid.tileContextMenu(t.index, e.AbsolutePosition)
}

var _ desktop.Mouseable = (*assetTile)(nil)

func (t *assetTile) MouseDown(*desktop.MouseEvent) {}

func (t *assetTile) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	// A rubber-band release can arrive here before DragEnd on some platforms.
	if t.grid.suppressClick() {
		return
	}
	t.grid.tileClicked(t.index, modifiersFrom(e.Modifier))
}

type assetTileRenderer struct {
	tile *assetTile
}

func (r *assetTileRenderer) Layout(size fyne.Size) {
	t := r.tile
	t.bg.Resize(size)

	inset := theme.Padding() / 2
	thumbH := t.item.ThumbHeight
	if thumbH <= 0 || thumbH > size.Height {
		thumbH = size.Height
	}
	thumbPos := fyne.NewPos(inset, inset)
	thumbSize := fyne.NewSize(size.Width-inset*2, thumbH-inset*2)

	t.placeholder.Move(thumbPos)
	t.placeholder.Resize(thumbSize)
	t.thumbnail.Move(thumbPos)
	t.thumbnail.Resize(thumbSize)

	iconSize := fyne.NewSquareSize(min(tileIconSize, thumbSize.Width, thumbSize.Height))
	t.icon.Resize(iconSize)
	t.icon.Move(fyne.NewPos((size.Width-iconSize.Width)/2, (thumbH-iconSize.Height)/2))

	t.label.Move(fyne.NewPos(0, thumbH))
	t.label.Resize(fyne.NewSize(size.Width, size.Height-thumbH))

	if t.badge.Visible() {
		pad := theme.Padding()
		ts := t.badge.MinSize()
		bgSize := fyne.NewSize(ts.Width+pad*2, ts.Height+pad)
		bgPos := fyne.NewPos(size.Width-bgSize.Width-pad, pad)
		t.badgeBg.Move(bgPos)
		t.badgeBg.Resize(bgSize)
		t.badge.Move(bgPos.Add(fyne.NewPos(pad, pad/2)))
		t.badge.Resize(ts)
	}
}

func (r *assetTileRenderer) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

func (r *assetTileRenderer) Refresh() {
	t := r.tile
	t.bg.FillColor = theme.Color(theme.ColorNameSelection)
	t.placeholder.FillColor = theme.Color(theme.ColorNameInputBackground)
	t.badge.Color = theme.Color(theme.ColorNameForeground)
	r.Layout(t.Size())

	t.bg.Refresh()
	t.placeholder.Refresh()
	t.icon.Refresh()
	t.thumbnail.Refresh()
	t.label.Refresh()
	t.badgeBg.Refresh()
	t.badge.Refresh()
}

func (r *assetTileRenderer) Objects() []fyne.CanvasObject {
	t := r.tile
	return []fyne.CanvasObject{t.bg, t.placeholder, t.thumbnail, t.icon, t.label, t.badgeBg, t.badge}
}

func (r *assetTileRenderer) Destroy() {
	r.tile.stopLoad()
}
