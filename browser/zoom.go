package browser

import (
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// zoomLevels scale the minimum column width, so zooming in gives fewer,
// wider columns.
var zoomLevels = []float32{
	0.6,
	0.8,
	1.0,
	1.25,
	1.5,
	2.0,
}

const defaultZoomLevelIndex = 2 // 1.0

func clampZoomLevelIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(zoomLevels) {
		return len(zoomLevels) - 1
	}
	return i
}

func isZoomModifierActive() bool {
	mods := currentModifiers()
	return mods&(fyne.KeyModifierControl|fyne.KeyModifierShortcutDefault) != 0
}

// wheelSteps turns scroll deltas into whole zoom steps. Touchpads deliver
// many small deltas, so they are accumulated up to a wheel notch.
type wheelSteps struct {
	acc float32
}

// Fyne scroll deltas are about 40 per mouse wheel notch.
const wheelNotch = float32(40)

func (w *wheelSteps) add(dy float32) int {
	if math.IsNaN(float64(dy)) || math.IsInf(float64(dy), 0) {
		return 0
	}
	w.acc += dy

	var steps int
	for w.acc >= wheelNotch {
		steps++
		w.acc -= wheelNotch
	}
	for w.acc <= -wheelNotch {
		steps--
		w.acc += wheelNotch
	}
	return steps
}

// zoomScrollOverlay sits above the grid and only takes part in hit testing
// while the zoom modifier is held, so plain wheel events still scroll.
type zoomScrollOverlay struct {
	widget.BaseWidget
	onStep func(steps int)
	wheel  wheelSteps
}

func newZoomScrollOverlay(onStep func(steps int)) *zoomScrollOverlay {
	z := &zoomScrollOverlay{onStep: onStep}
	z.ExtendBaseWidget(z)
	return z
}

func (z *zoomScrollOverlay) Visible() bool {
	if !z.BaseWidget.Visible() {
		return false
	}
	return isZoomModifierActive()
}

func (z *zoomScrollOverlay) Scrolled(e *fyne.ScrollEvent) {
	if z.onStep == nil {
		return
	}
	if steps := z.wheel.add(e.Scrolled.DY); steps != 0 {
		z.onStep(steps)
	}
}

func (z *zoomScrollOverlay) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewWithoutLayout())
}

var _ fyne.Scrollable = (*zoomScrollOverlay)(nil)
