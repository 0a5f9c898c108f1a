package masonry

// Columns derives the column count and width for a container.
// A container narrower than one column still gets a single column.
func Columns(containerWidth, minColumnWidth, gap float32) (int, float32) {
	if containerWidth <= 0 {
		return 1, 0
	}
	count := 1
	if step := minColumnWidth + gap; step > 0 {
		if n := int((containerWidth + gap) / step); n > 1 {
			count = n
		}
	}
	width := (containerWidth - gap*float32(count-1)) / float32(count)
	if width < 0 {
		width = 0
	}
	return count, width
}

// ComputeLayout packs items into columnCount columns using the shortest-column
// rule: every item goes to the currently shortest column, ties resolved towards
// the lowest column index. The result depends only on its arguments.
func ComputeLayout(items []AssetRecord, columnCount int, columnWidth, gap, labelHeight float32, aspect AspectPolicy) Layout {
	if columnCount < 1 {
		columnCount = 1
	}

	heights := make([]float32, columnCount)
	out := make([]LayoutItem, len(items))

	for i, rec := range items {
		col := 0
		for c := 1; c < columnCount; c++ {
			if heights[c] < heights[col] {
				col = c
			}
		}

		thumb := aspect.ratio(rec.Width, rec.Height) * columnWidth
		total := thumb + labelHeight
		out[i] = LayoutItem{
			Index:       i,
			ID:          rec.ID,
			Column:      col,
			X:           float32(col) * (columnWidth + gap),
			Y:           heights[col],
			Width:       columnWidth,
			ThumbHeight: thumb,
			TotalHeight: total,
		}
		// Two steps, so the next top is exactly Y+TotalHeight+gap in float32.
		heights[col] += total
		heights[col] += gap
	}

	var tallest float32
	for _, h := range heights {
		tallest = max32(tallest, h)
	}

	return Layout{
		Items:       out,
		TotalHeight: tallest,
		Columns:     columnCount,
		ColumnWidth: columnWidth,
	}
}

type layoutKey struct {
	version     uint64
	count       int
	columns     int
	columnWidth float32
	gap         float32
	labelHeight float32
	aspect      AspectPolicy
}

// Engine memoises ComputeLayout. Callers bump the items version whenever the
// item list changes; anything else (scrolling in particular) reuses the last
// result.
type Engine struct {
	key        layoutKey
	valid      bool
	current    Layout
	recomputes int
}

// Layout returns the layout for the given inputs, recomputing only when one of
// them differs from the previous call.
func (e *Engine) Layout(items []AssetRecord, version uint64, columns int, columnWidth float32, cfg Config) Layout {
	key := layoutKey{
		version:     version,
		count:       len(items),
		columns:     columns,
		columnWidth: columnWidth,
		gap:         cfg.Gap,
		labelHeight: cfg.LabelHeight,
		aspect:      cfg.Aspect,
	}
	if e.valid && e.key == key {
		return e.current
	}

	e.current = ComputeLayout(items, columns, columnWidth, cfg.Gap, cfg.LabelHeight, cfg.Aspect)
	e.key = key
	e.valid = true
	e.recomputes++
	return e.current
}

// Recomputes is the number of times the engine actually ran ComputeLayout.
func (e *Engine) Recomputes() int {
	return e.recomputes
}
