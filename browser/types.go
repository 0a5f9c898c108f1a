package browser

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/alexballas/assetgrid/masonry"
)

const (
	minColumnWidthKey = "assetgrid:minColumnWidth"
	gapKey            = "assetgrid:gap"
	zoomLevelKey      = "assetgrid:zoomLevel"
	pageSizeKey       = "assetgrid:pageSize"
	ffmpegPathKey     = "assetgrid:ffmpegPath"
)

const (
	// clickGuard swallows the click that some platforms deliver right after
	// a rubber-band drag ends.
	clickGuard = 200 * time.Millisecond
	// thumbnailDelay keeps fast scrolling from queueing decodes for tiles
	// that are gone again a moment later.
	thumbnailDelay = 200 * time.Millisecond

	autoScrollInterval = 30 * time.Millisecond
)

func toPoint(p fyne.Position) masonry.Point {
	return masonry.Point{X: p.X, Y: p.Y}
}

// modifiersFrom maps fyne key modifiers to the grid's selection modifiers.
// Control (Command on macOS) toggles, Shift extends.
func modifiersFrom(m fyne.KeyModifier) masonry.Modifiers {
	var mods masonry.Modifiers
	if m&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0 {
		mods |= masonry.ModToggle
	}
	if m&fyne.KeyModifierShift != 0 {
		mods |= masonry.ModShift
	}
	return mods
}

func currentModifiers() fyne.KeyModifier {
	app := fyne.CurrentApp()
	if app == nil {
		return 0
	}
	d, ok := app.Driver().(desktop.Driver)
	if !ok {
		return 0
	}
	return d.CurrentKeyModifiers()
}
