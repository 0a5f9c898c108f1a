package masonry

import (
	"testing"
	"time"
)

func TestResizeAdapter_LastSizeOfBurstWins(t *testing.T) {
	queue := make(chan func(), 16)
	var got []Size
	r := NewResizeAdapter(50*time.Millisecond, func(f func()) { queue <- f }, func(s Size) {
		got = append(got, s)
	})

	r.Notify(Size{Width: 100, Height: 100})
	r.Notify(Size{Width: 200, Height: 100})
	r.Notify(Size{Width: 300, Height: 120})

	// The first change goes out straight away.
	(<-queue)()
	if len(got) != 1 || got[0].Width != 100 {
		t.Fatalf("expected the first size to be delivered immediately, got %v", got)
	}

	select {
	case f := <-queue:
		f()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the trailing resize")
	}

	if len(got) != 2 || got[1] != (Size{Width: 300, Height: 120}) {
		t.Fatalf("expected the trailing delivery to carry the last size, got %v", got)
	}
}

func TestResizeAdapter_IgnoresSubPixelChanges(t *testing.T) {
	var got []Size
	r := NewResizeAdapter(0, nil, func(s Size) { got = append(got, s) })

	r.Notify(Size{Width: 400, Height: 300})
	r.Notify(Size{Width: 400.2, Height: 300.3})
	if len(got) != 1 {
		t.Fatalf("expected sub-pixel jitter to be ignored, got %v", got)
	}

	r.Notify(Size{Width: 401, Height: 300})
	if len(got) != 2 {
		t.Fatalf("expected a real change to be delivered, got %v", got)
	}
}

func TestResizeAdapter_StopCancelsTrailingDelivery(t *testing.T) {
	queue := make(chan func(), 16)
	r := NewResizeAdapter(30*time.Millisecond, func(f func()) { queue <- f }, func(Size) {})

	r.Notify(Size{Width: 100, Height: 100})
	(<-queue)()
	r.Notify(Size{Width: 150, Height: 100})
	r.Stop()

	select {
	case <-queue:
		t.Fatal("expected no delivery after Stop")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestResizeAdapter_ChangeAfterTimerFiredDeliversOnce(t *testing.T) {
	queue := make(chan func(), 16)
	var got []Size
	r := NewResizeAdapter(30*time.Millisecond, func(f func()) { queue <- f }, func(s Size) {
		got = append(got, s)
	})
	next := func() func() {
		select {
		case f := <-queue:
			return f
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for a delivery")
		}
		return nil
	}

	r.Notify(Size{Width: 100, Height: 100})
	next()()
	r.Notify(Size{Width: 160, Height: 100})

	// The trailing timer has fired but its delivery is still queued when
	// the next size arrives.
	queued := next()
	r.Notify(Size{Width: 170, Height: 100})
	queued()
	next()()

	select {
	case f := <-queue:
		f()
	case <-time.After(100 * time.Millisecond):
	}

	want := []Size{{Width: 100, Height: 100}, {Width: 170, Height: 100}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
