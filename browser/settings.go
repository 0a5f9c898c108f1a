package browser

import (
	"fyne.io/fyne/v2"

	"github.com/alexballas/assetgrid/masonry"
)

// Bounds for user adjustable grid settings.
const (
	MinColumnWidthFloor   = 80
	MinColumnWidthCeiling = 600
	MaxGap                = 48
)

// Settings persists the grid preferences of the browser.
type Settings struct {
	prefs fyne.Preferences
}

// NewSettings returns settings stored in the preferences of app.
func NewSettings(app fyne.App) *Settings {
	return &Settings{prefs: app.Preferences()}
}

// MinColumnWidth returns the unzoomed minimum column width.
func (s *Settings) MinColumnWidth() float32 {
	w := float32(s.prefs.FloatWithFallback(minColumnWidthKey, masonry.DefaultMinColumnWidth))
	return clampFloat(w, MinColumnWidthFloor, MinColumnWidthCeiling)
}

// SetMinColumnWidth stores the unzoomed minimum column width.
func (s *Settings) SetMinColumnWidth(w float32) {
	s.prefs.SetFloat(minColumnWidthKey, float64(clampFloat(w, MinColumnWidthFloor, MinColumnWidthCeiling)))
}

// Gap returns the spacing between tiles.
func (s *Settings) Gap() float32 {
	return clampFloat(float32(s.prefs.FloatWithFallback(gapKey, masonry.DefaultGap)), 0, MaxGap)
}

// SetGap stores the spacing between tiles.
func (s *Settings) SetGap(gap float32) {
	s.prefs.SetFloat(gapKey, float64(clampFloat(gap, 0, MaxGap)))
}

// ZoomLevel returns the index into the zoom steps.
func (s *Settings) ZoomLevel() int {
	return clampZoomLevelIndex(s.prefs.IntWithFallback(zoomLevelKey, defaultZoomLevelIndex))
}

// SetZoomLevel stores the zoom step index.
func (s *Settings) SetZoomLevel(level int) {
	s.prefs.SetInt(zoomLevelKey, clampZoomLevelIndex(level))
}

// PageSize returns how many records are requested per page.
func (s *Settings) PageSize() int {
	return masonry.ClampPageSize(s.prefs.IntWithFallback(pageSizeKey, masonry.DefaultPageSize))
}

// SetPageSize stores the page size, clamped to what the index accepts.
func (s *Settings) SetPageSize(n int) {
	s.prefs.SetInt(pageSizeKey, masonry.ClampPageSize(n))
}

// FFmpegPath returns the ffmpeg binary used for video thumbnails.
func (s *Settings) FFmpegPath() string {
	return s.prefs.StringWithFallback(ffmpegPathKey, "ffmpeg")
}

// SetFFmpegPath stores the ffmpeg binary used for video thumbnails.
func (s *Settings) SetFFmpegPath(path string) {
	if path == "" {
		path = "ffmpeg"
	}
	s.prefs.SetString(ffmpegPathKey, path)
}

// Config returns base with the stored preferences applied. Zoom is not
// included; the grid scales the column width itself.
func (s *Settings) Config(base masonry.Config) masonry.Config {
	base.MinColumnWidth = s.MinColumnWidth()
	base.Gap = s.Gap()
	base.PageSize = s.PageSize()
	return base
}

func clampFloat(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
