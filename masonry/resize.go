package masonry

import "time"

// Size is a container size.
type Size struct {
	Width, Height float32
}

// ResizeAdapter coalesces bursts of container size changes. The first change
// after a quiet period is delivered straight away; changes arriving faster
// than MinInterval re-arm a trailing timer that delivers the latest size, so
// the final size of a burst is never lost.
type ResizeAdapter struct {
	MinInterval time.Duration

	dispatch func(func())
	onResize func(Size)

	last      Size
	pending   Size
	lastFired time.Time
	timer     *time.Timer
	// gen identifies the armed trailing timer; closures of older timers
	// that were already queued in dispatch see a different value and drop out.
	gen   uint64
	armed bool

	now func() time.Time
}

// NewResizeAdapter returns an adapter that calls onResize on the UI thread via
// dispatch.
func NewResizeAdapter(interval time.Duration, dispatch func(func()), onResize func(Size)) *ResizeAdapter {
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	return &ResizeAdapter{
		MinInterval: interval,
		dispatch:    dispatch,
		onResize:    onResize,
		now:         time.Now,
	}
}

// Notify records a new container size. It must be called on the UI thread.
func (r *ResizeAdapter) Notify(size Size) {
	if abs32(size.Width-r.last.Width) < 0.5 && abs32(size.Height-r.last.Height) < 0.5 {
		return
	}
	r.last = size
	r.pending = size

	now := r.now()
	elapsed := now.Sub(r.lastFired)
	if elapsed >= r.MinInterval && !r.armed {
		r.lastFired = now
		r.dispatch(func() { r.deliver(size) })
		return
	}

	delay := r.MinInterval - elapsed
	if delay < 0 {
		delay = 0
	}
	r.disarm()
	r.armed = true
	gen := r.gen
	r.timer = time.AfterFunc(delay, func() {
		r.dispatch(func() {
			if !r.armed || gen != r.gen {
				return
			}
			r.armed = false
			r.timer = nil
			r.lastFired = r.now()
			r.deliver(r.pending)
		})
	})
}

// Stop cancels a pending trailing delivery.
func (r *ResizeAdapter) Stop() {
	r.disarm()
}

func (r *ResizeAdapter) disarm() {
	r.gen++
	r.armed = false
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *ResizeAdapter) deliver(size Size) {
	if r.onResize != nil {
		r.onResize(size)
	}
}
