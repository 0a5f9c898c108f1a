package masonry

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func approx(a, b float32) bool {
	return abs32(a-b) < 1e-3
}

func unknownItems(n int) []AssetRecord {
	items := make([]AssetRecord, n)
	for i := range items {
		items[i] = AssetRecord{ID: int64(i + 1)}
	}
	return items
}

func randomItems(seed int64, n int) []AssetRecord {
	r := rand.New(rand.NewSource(seed))
	items := make([]AssetRecord, n)
	for i := range items {
		items[i] = AssetRecord{ID: int64(1000 + i)}
		// Leave some sizes unknown.
		if r.Intn(5) != 0 {
			items[i].Width = 50 + r.Intn(4000)
			items[i].Height = 50 + r.Intn(4000)
		}
	}
	return items
}

func TestColumns_DerivedFromContainerWidth(t *testing.T) {
	cols, width := Columns(964, 180, 8)
	if cols != 5 {
		t.Fatalf("expected 5 columns for 964px, got %d", cols)
	}
	if !approx(width, (964-4*8)/5.0) {
		t.Fatalf("expected column width %.2f, got %.2f", (964-4*8)/5.0, width)
	}

	// Narrower than one column still yields one full-width column.
	cols, width = Columns(120, 180, 8)
	if cols != 1 || width != 120 {
		t.Fatalf("expected 1 column of 120px, got %d of %.2f", cols, width)
	}

	// Unknown width is clamped rather than failing.
	cols, width = Columns(0, 180, 8)
	if cols != 1 || width != 0 {
		t.Fatalf("expected 1 column of 0px for zero width, got %d of %.2f", cols, width)
	}
}

func TestComputeLayout_TwelveUnknownItemsInFiveColumns(t *testing.T) {
	cols, width := Columns(964, 180, 8)
	lay := ComputeLayout(unknownItems(12), cols, width, 8, DefaultLabelHeight, DefaultAspect)

	thumb := 0.75 * width
	step := thumb + DefaultLabelHeight + 8

	for i, it := range lay.Items {
		wantCol := i % 5
		wantRow := i / 5
		if it.Column != wantCol {
			t.Errorf("item %d: expected column %d, got %d", i, wantCol, it.Column)
		}
		if !approx(it.X, float32(wantCol)*(width+8)) {
			t.Errorf("item %d: expected x %.2f, got %.2f", i, float32(wantCol)*(width+8), it.X)
		}
		if !approx(it.Y, float32(wantRow)*step) {
			t.Errorf("item %d: expected y %.2f, got %.2f", i, float32(wantRow)*step, it.Y)
		}
		if !approx(it.ThumbHeight, thumb) {
			t.Errorf("item %d: expected thumb height %.2f, got %.2f", i, thumb, it.ThumbHeight)
		}
		if !approx(it.TotalHeight, thumb+DefaultLabelHeight) {
			t.Errorf("item %d: expected total height %.2f, got %.2f", i, thumb+DefaultLabelHeight, it.TotalHeight)
		}
	}

	// Columns 0 and 1 hold three items, the rest two.
	if !approx(lay.TotalHeight, 3*step) {
		t.Fatalf("expected total height %.2f, got %.2f", 3*step, lay.TotalHeight)
	}
}

func TestComputeLayout_Deterministic(t *testing.T) {
	items := randomItems(7, 500)

	a := ComputeLayout(items, 6, 173.5, 8, 24, DefaultAspect)
	b := ComputeLayout(items, 6, 173.5, 8, 24, DefaultAspect)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("layouts differ between identical calls (-first +second):\n%s", diff)
	}
}

func TestComputeLayout_NoOverlapWithinColumn(t *testing.T) {
	const gap = 8
	tests := []struct {
		name    string
		items   []AssetRecord
		columns int
	}{
		{"mixed", randomItems(42, 800), 7},
		// Tops reach millions of pixels, where float32 rounding shows.
		{"deep", randomItems(7, 60000), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lay := ComputeLayout(tt.items, tt.columns, 150, gap, 20, DefaultAspect)

			byColumn := map[int][]LayoutItem{}
			for _, it := range lay.Items {
				byColumn[it.Column] = append(byColumn[it.Column], it)
			}
			for col, list := range byColumn {
				// Items of one column are emitted top to bottom.
				for i := 1; i < len(list); i++ {
					prev, cur := list[i-1], list[i]
					if prev.Y+prev.TotalHeight+gap > cur.Y {
						t.Fatalf("column %d: item %d (y %.2f h %.2f) overlaps item %d (y %.2f)",
							col, prev.Index, prev.Y, prev.TotalHeight, cur.Index, cur.Y)
					}
				}
			}
		})
	}
}

func TestComputeLayout_ShortestColumnWins(t *testing.T) {
	items := []AssetRecord{
		{ID: 1, Width: 100, Height: 250}, // tall, column 0
		{ID: 2, Width: 100, Height: 40},  // short, column 1
		{ID: 3, Width: 100, Height: 100}, // column 1 is shorter now
	}
	lay := ComputeLayout(items, 2, 100, 0, 0, DefaultAspect)

	got := []int{lay.Items[0].Column, lay.Items[1].Column, lay.Items[2].Column}
	if diff := cmp.Diff([]int{0, 1, 1}, got); diff != "" {
		t.Fatalf("unexpected columns (-want +got):\n%s", diff)
	}
	if !approx(lay.Items[2].Y, 40) {
		t.Fatalf("expected third item under the short tile at y 40, got %.2f", lay.Items[2].Y)
	}
	if !approx(lay.TotalHeight, 250) {
		t.Fatalf("expected total height of the tallest column, got %.2f", lay.TotalHeight)
	}
}

func TestComputeLayout_AspectClamp(t *testing.T) {
	items := []AssetRecord{
		{ID: 1, Width: 100, Height: 1000}, // very tall
		{ID: 2, Width: 1000, Height: 100}, // very wide
		{ID: 3, Width: 0, Height: 480},    // unknown
		{ID: 4, Width: 400, Height: 300},
	}
	lay := ComputeLayout(items, 1, 200, 0, 0, DefaultAspect)

	want := []float32{500, 80, 150, 150}
	for i, it := range lay.Items {
		if !approx(it.ThumbHeight, want[i]) {
			t.Errorf("item %d: expected thumb height %.1f, got %.2f", i, want[i], it.ThumbHeight)
		}
	}

	custom := AspectPolicy{Min: 1, Max: 1, Default: 1}
	lay = ComputeLayout(items, 1, 200, 0, 0, custom)
	for i, it := range lay.Items {
		if !approx(it.ThumbHeight, 200) {
			t.Errorf("square policy: item %d expected 200, got %.2f", i, it.ThumbHeight)
		}
	}
}

func TestEngine_RecomputesOnlyWhenInputsChange(t *testing.T) {
	var e Engine
	cfg := DefaultConfig()
	items := unknownItems(20)

	first := e.Layout(items, 1, 4, 200, cfg)
	again := e.Layout(items, 1, 4, 200, cfg)
	if e.Recomputes() != 1 {
		t.Fatalf("expected a single recompute for identical inputs, got %d", e.Recomputes())
	}
	if diff := cmp.Diff(first, again); diff != "" {
		t.Fatalf("cached layout differs:\n%s", diff)
	}

	e.Layout(items, 2, 4, 200, cfg)
	e.Layout(items, 2, 5, 200, cfg)
	e.Layout(items, 2, 5, 190, cfg)
	if e.Recomputes() != 4 {
		t.Fatalf("expected 4 recomputes after version, column and width changes, got %d", e.Recomputes())
	}
}
