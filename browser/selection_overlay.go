package browser

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// selectionOverlay covers the scroll viewport and turns drags into
// rubber-band gestures. It does not implement Tappable or Mouseable, so
// clicks still reach the tiles below. Positions it reports are relative to
// the viewport.
type selectionOverlay struct {
	widget.BaseWidget

	rect *canvas.Rectangle

	dragging bool

	onStart func(pos fyne.Position)
	onMove  func(pos fyne.Position)
	onEnd   func()
}

func newSelectionOverlay(onStart, onMove func(fyne.Position), onEnd func()) *selectionOverlay {
	s := &selectionOverlay{
		rect:    canvas.NewRectangle(color.Transparent),
		onStart: onStart,
		onMove:  onMove,
		onEnd:   onEnd,
	}
	s.rect.StrokeColor = theme.Color(theme.ColorNamePrimary)
	s.rect.StrokeWidth = 2
	r, g, b, _ := theme.Color(theme.ColorNameFocus).RGBA()
	s.rect.FillColor = color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 64}
	s.rect.Hide()

	s.ExtendBaseWidget(s)
	return s
}

func (s *selectionOverlay) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewWithoutLayout(s.rect))
}

func (s *selectionOverlay) Dragged(e *fyne.DragEvent) {
	if !s.dragging {
		s.dragging = true
		if s.onStart != nil {
			s.onStart(e.Position.Subtract(e.Dragged))
		}
	}
	if s.onMove != nil {
		s.onMove(e.Position)
	}
}

func (s *selectionOverlay) DragEnd() {
	if !s.dragging {
		return
	}
	s.dragging = false
	if s.onEnd != nil {
		s.onEnd()
	}
}

// showRect draws the band between tl and br, in viewport coordinates.
func (s *selectionOverlay) showRect(tl, br fyne.Position) {
	s.rect.Move(tl)
	s.rect.Resize(fyne.NewSize(br.X-tl.X, br.Y-tl.Y))
	if !s.rect.Visible() {
		s.rect.Show()
	}
	s.rect.Refresh()
}

func (s *selectionOverlay) hideRect() {
	if s.rect.Visible() {
		s.rect.Hide()
		s.rect.Refresh()
	}
}

var _ fyne.Draggable = (*selectionOverlay)(nil)
