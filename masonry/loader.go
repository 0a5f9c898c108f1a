package masonry

import (
	"context"
	"fmt"
)

// PageResult is one page returned by the asset index.
type PageResult struct {
	Records []AssetRecord
	Total   int
}

// PageSource is the slice of the asset index the loader needs. Pages are
// numbered from 1.
type PageSource interface {
	QueryPage(ctx context.Context, page, pageSize int) (PageResult, error)
}

// PageSourceFunc adapts a function to PageSource.
type PageSourceFunc func(ctx context.Context, page, pageSize int) (PageResult, error)

// QueryPage calls f.
func (f PageSourceFunc) QueryPage(ctx context.Context, page, pageSize int) (PageResult, error) {
	return f(ctx, page, pageSize)
}

// LoadState is the state of the incremental loader.
type LoadState int

const (
	LoadIdle LoadState = iota
	LoadLoading
	LoadExhausted
)

func (s LoadState) String() string {
	switch s {
	case LoadIdle:
		return "idle"
	case LoadLoading:
		return "loading"
	case LoadExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("LoadState(%d)", int(s))
}

// LoadError reports a failed page fetch. It is never fatal: the loader goes
// back to idle and the next scroll into the load zone retries.
type LoadError struct {
	Page int
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load page %d: %v", e.Page, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader pages records in from a PageSource as the viewport nears the bottom
// of the content.
//
// All methods must be called on the UI thread. The fetch itself runs through
// Run (a new goroutine by default) and its outcome is handed back through the
// dispatcher given to NewLoader, so state is only ever touched on the UI thread.
type Loader struct {
	src       PageSource
	pageSize  int
	threshold float32
	dispatch  func(func())

	// Run starts a fetch. Tests replace it to control timing.
	Run func(func())

	OnAppend      func([]AssetRecord)
	OnError       func(error)
	OnStateChange func(LoadState)

	state    LoadState
	nextPage int
	loaded   int
	total    int
	gen      uint64
	cancel   context.CancelFunc
}

// NewLoader returns an idle loader. dispatch must run its argument on the UI
// thread; fyne.Do is the usual choice.
func NewLoader(src PageSource, pageSize int, threshold float32, dispatch func(func())) *Loader {
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	return &Loader{
		src:       src,
		pageSize:  ClampPageSize(pageSize),
		threshold: threshold,
		dispatch:  dispatch,
		Run:       func(f func()) { go f() },
		nextPage:  1,
		total:     -1,
	}
}

// State returns the current state.
func (l *Loader) State() LoadState {
	return l.state
}

// Loaded returns how many records have been appended since the last reset.
func (l *Loader) Loaded() int {
	return l.loaded
}

// Total returns the index's last reported total, or -1 before the first page.
func (l *Loader) Total() int {
	return l.total
}

// Check starts loading the next page when distanceFromBottom is inside the
// load zone. It reports whether a fetch was started.
func (l *Loader) Check(distanceFromBottom float32) bool {
	if distanceFromBottom >= l.threshold {
		return false
	}
	return l.LoadMore()
}

// LoadMore starts loading the next page if the loader is idle.
func (l *Loader) LoadMore() bool {
	if l.state != LoadIdle || l.src == nil {
		return false
	}
	l.setState(LoadLoading)

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	gen := l.gen
	page := l.nextPage
	size := l.pageSize
	src := l.src

	l.Run(func() {
		res, err := src.QueryPage(ctx, page, size)
		cancel()
		l.dispatch(func() {
			l.finish(gen, page, res, err)
		})
	})
	return true
}

func (l *Loader) finish(gen uint64, page int, res PageResult, err error) {
	if gen != l.gen {
		// reset or closed while in flight
		return
	}
	l.cancel = nil

	if err != nil {
		l.setState(LoadIdle)
		if l.OnError != nil {
			l.OnError(&LoadError{Page: page, Err: err})
		}
		return
	}

	l.nextPage = page + 1
	l.loaded += len(res.Records)
	l.total = res.Total

	// Settle the state first: appending relays out the grid, which may
	// immediately ask for the next page.
	l.setState(LoadIdle)
	if l.loaded >= res.Total || len(res.Records) == 0 {
		l.setState(LoadExhausted)
	}
	if len(res.Records) > 0 && l.OnAppend != nil {
		l.OnAppend(res.Records)
	}
}

// Reset forgets all progress and discards any fetch in flight. The next Check
// starts again from the first page.
func (l *Loader) Reset() {
	l.invalidate()
	l.nextPage = 1
	l.loaded = 0
	l.total = -1
	l.setState(LoadIdle)
}

// SetSource swaps the page source and resets.
func (l *Loader) SetSource(src PageSource) {
	l.src = src
	l.Reset()
}

// Close discards any fetch in flight and stops further loading.
func (l *Loader) Close() {
	l.invalidate()
	l.src = nil
}

func (l *Loader) invalidate() {
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Loader) setState(s LoadState) {
	if l.state == s {
		return
	}
	l.state = s
	if l.OnStateChange != nil {
		l.OnStateChange(s)
	}
}
