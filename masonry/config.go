package masonry

import "time"

// Config holds the tuning knobs of the grid. The zero value is not useful;
// start from DefaultConfig.
type Config struct {
	MinColumnWidth float32
	Gap            float32
	LabelHeight    float32

	// Aspect is the height/width ratio policy applied to every tile.
	Aspect AspectPolicy

	// BufferPx is rendered above and below the viewport to hide pop-in.
	BufferPx float32
	// IndexThreshold is the item count above which culling goes through an
	// IntervalIndex instead of a linear scan.
	IndexThreshold int

	// LoadThreshold is the distance from the bottom of the content that
	// starts loading the next page.
	LoadThreshold float32
	PageSize      int

	// DragThreshold is how far the pointer must travel on either axis before
	// a press on the background turns into a rubber-band selection.
	DragThreshold float32

	ResizeInterval time.Duration
}

// AspectPolicy bounds tile heights so extreme panoramas or strips stay usable.
type AspectPolicy struct {
	Min     float32
	Max     float32
	Default float32
}

const (
	DefaultMinColumnWidth = 180
	DefaultGap            = 8
	DefaultLabelHeight    = 28
	DefaultBufferPx       = 400
	DefaultLoadThreshold  = 600
	DefaultPageSize       = 100
	MaxPageSize           = 500
	DefaultDragThreshold  = 5
	DefaultIndexThreshold = 2000
)

// DefaultAspect is used when the natural size of an asset is unknown (4:3).
var DefaultAspect = AspectPolicy{Min: 0.4, Max: 2.5, Default: 0.75}

// DefaultConfig returns the configuration the browser starts with.
func DefaultConfig() Config {
	return Config{
		MinColumnWidth: DefaultMinColumnWidth,
		Gap:            DefaultGap,
		LabelHeight:    DefaultLabelHeight,
		Aspect:         DefaultAspect,
		BufferPx:       DefaultBufferPx,
		IndexThreshold: DefaultIndexThreshold,
		LoadThreshold:  DefaultLoadThreshold,
		PageSize:       DefaultPageSize,
		DragThreshold:  DefaultDragThreshold,
		ResizeInterval: 60 * time.Millisecond,
	}
}

// ClampPageSize keeps a page size inside what the index accepts.
func ClampPageSize(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

func (a AspectPolicy) ratio(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return a.Default
	}
	r := float32(height) / float32(width)
	if r < a.Min {
		return a.Min
	}
	if r > a.Max {
		return a.Max
	}
	return r
}
