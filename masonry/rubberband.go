package masonry

// PointerButton identifies the mouse button of a press.
type PointerButton int

const (
	ButtonPrimary PointerButton = iota
	ButtonSecondary
	ButtonTertiary
)

// GestureEvent is one input to ReduceGesture.
type GestureEvent interface {
	gestureEvent()
}

// PointerDown starts a potential rubber-band. Pos and Origin share one
// coordinate space; Origin is the top-left corner of the scrolling container.
type PointerDown struct {
	Pos      Point
	Origin   Point
	Scroll   float32
	Button   PointerButton
	OverTile bool
}

// PointerMove reports the pointer while the button is held.
type PointerMove struct {
	Pos    Point
	Origin Point
	Scroll float32
}

// ScrollChanged reports a scroll offset change while the pointer is held,
// e.g. from edge auto-scroll.
type ScrollChanged struct {
	Scroll float32
}

// PointerUp ends the gesture.
type PointerUp struct {
	Modifiers Modifiers
}

// GestureCancel aborts the gesture without touching the selection.
type GestureCancel struct{}

func (PointerDown) gestureEvent()   {}
func (PointerMove) gestureEvent()   {}
func (ScrollChanged) gestureEvent() {}
func (PointerUp) gestureEvent()     {}
func (GestureCancel) gestureEvent() {}

// DragGestureState is everything the rubber-band selector knows about the
// current gesture. It is a plain value; ReduceGesture returns the next one.
type DragGestureState struct {
	Active bool
	// Dragging is set once the pointer travelled past the threshold.
	Dragging bool
	Origin   Point // content coordinates
	Current  Point // content coordinates

	// Last pointer position relative to the container, used to re-derive
	// Current when only the scroll offset changes.
	local Point
}

// Rect is the normalised selection rectangle in content coordinates.
func (s DragGestureState) Rect() Rect {
	return RectFromPoints(s.Origin, s.Current)
}

// GestureResult tells the caller what a reduction produced.
type GestureResult struct {
	// Preview holds the ids under the rectangle while dragging, nil otherwise.
	Preview IDSet
	// Done is set on release of a real drag; Selected and Additive are only
	// meaningful then.
	Done     bool
	Selected IDSet
	Additive bool
}

// ToContent converts a pointer position to content coordinates.
func ToContent(pos, origin Point, scroll float32) Point {
	return Point{X: pos.X - origin.X, Y: pos.Y - origin.Y + scroll}
}

// ReduceGesture advances the rubber-band state machine by one event.
func ReduceGesture(s DragGestureState, ev GestureEvent, items []LayoutItem, threshold float32) (DragGestureState, GestureResult) {
	switch e := ev.(type) {
	case PointerDown:
		if e.Button != ButtonPrimary || e.OverTile {
			return DragGestureState{}, GestureResult{}
		}
		local := Point{X: e.Pos.X - e.Origin.X, Y: e.Pos.Y - e.Origin.Y}
		start := ToContent(e.Pos, e.Origin, e.Scroll)
		return DragGestureState{Active: true, Origin: start, Current: start, local: local}, GestureResult{}

	case PointerMove:
		if !s.Active {
			return s, GestureResult{}
		}
		s.local = Point{X: e.Pos.X - e.Origin.X, Y: e.Pos.Y - e.Origin.Y}
		s.Current = ToContent(e.Pos, e.Origin, e.Scroll)
		return s.track(items, threshold)

	case ScrollChanged:
		if !s.Active {
			return s, GestureResult{}
		}
		s.Current = Point{X: s.local.X, Y: s.local.Y + e.Scroll}
		return s.track(items, threshold)

	case PointerUp:
		if !s.Active || !s.Dragging {
			return DragGestureState{}, GestureResult{}
		}
		return DragGestureState{}, GestureResult{
			Done:     true,
			Selected: HitTest(items, s.Rect()),
			Additive: e.Modifiers.Additive(),
		}

	case GestureCancel:
		return DragGestureState{}, GestureResult{}
	}
	return s, GestureResult{}
}

func (s DragGestureState) track(items []LayoutItem, threshold float32) (DragGestureState, GestureResult) {
	if !s.Dragging {
		if abs32(s.Current.X-s.Origin.X) < threshold && abs32(s.Current.Y-s.Origin.Y) < threshold {
			return s, GestureResult{}
		}
		s.Dragging = true
	}
	return s, GestureResult{Preview: HitTest(items, s.Rect())}
}

// HitTest returns the ids of every item whose box intersects r.
func HitTest(items []LayoutItem, r Rect) IDSet {
	ids := IDSet{}
	for _, it := range items {
		if r.Intersects(it) {
			ids[it.ID] = struct{}{}
		}
	}
	return ids
}

// ItemAt returns the item containing p, if any.
func ItemAt(items []LayoutItem, p Point) (LayoutItem, bool) {
	for _, it := range items {
		if p.X >= it.X && p.X < it.X+it.Width && p.Y >= it.Y && p.Y < it.Y+it.TotalHeight {
			return it, true
		}
	}
	return LayoutItem{}, false
}
