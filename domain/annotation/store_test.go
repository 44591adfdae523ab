package annotation

import (
	"math/rand"
	"testing"

	"github.com/soocke/vision-edit-go/domain/viewport"
)

func TestStore_HitTestPrefersTopmost(t *testing.T) {
	s := NewStore()
	s.Add(Box{Rect: viewport.Rect{X: 0, Y: 0, W: 100, H: 100}, Label: Foreground})
	s.Add(Box{Rect: viewport.Rect{X: 50, Y: 50, W: 100, H: 100}, Label: Background})
	if got := s.HitTest(viewport.Pt(75, 75)); got != 1 {
		t.Fatalf("expected topmost box 1, got=%d", got)
	}
	if got := s.HitTest(viewport.Pt(10, 10)); got != 0 {
		t.Fatalf("expected box 0, got=%d", got)
	}
	if got := s.HitTest(viewport.Pt(500, 500)); got != -1 {
		t.Fatalf("expected miss, got=%d", got)
	}
}

func TestStore_MutationsAndBounds(t *testing.T) {
	s := NewStore()
	s.Add(Box{Rect: viewport.Rect{W: 10, H: 10}})
	s.Add(Box{Rect: viewport.Rect{X: 20, W: 10, H: 10}, Label: Foreground})
	if l := s.ToggleLabel(0); l != Foreground {
		t.Fatalf("toggle label got=%v", l)
	}
	s.SetRect(1, viewport.Rect{X: 1, Y: 2, W: 3, H: 4})
	if b, _ := s.At(1); b.Rect != (viewport.Rect{X: 1, Y: 2, W: 3, H: 4}) {
		t.Fatalf("set rect got %+v", b.Rect)
	}
	s.Remove(5) // out of range is ignored
	s.SetRect(-1, viewport.Rect{})
	s.Remove(0)
	if s.Len() != 1 {
		t.Fatalf("expected 1 box, got=%d", s.Len())
	}
	rects, labels := s.Prompt()
	if len(rects) != 1 || !labels[0] {
		t.Fatalf("prompt got rects=%v labels=%v", rects, labels)
	}
	entries := s.Entries()
	entries[0].Rect.X = 999
	if b, _ := s.At(0); b.Rect.X == 999 {
		t.Fatalf("Entries must return a copy")
	}
}

func TestHitHandle(t *testing.T) {
	r := viewport.Rect{X: 100, Y: 100, W: 200, H: 100}
	cases := []struct {
		p    viewport.Point
		want int
	}{
		{viewport.Pt(102, 98), 0},
		{viewport.Pt(200, 105), 1},
		{viewport.Pt(300, 100), 2},
		{viewport.Pt(296, 150), 3},
		{viewport.Pt(300, 200), 4},
		{viewport.Pt(200, 200), 5},
		{viewport.Pt(100, 207), 6},
		{viewport.Pt(93, 150), 7},
		{viewport.Pt(150, 150), -1},
	}
	for _, c := range cases {
		if got := HitHandle(r, c.p, 8); got != c.want {
			t.Fatalf("HitHandle(%v) got=%d want=%d", c.p, got, c.want)
		}
	}
}

func TestUpdateRectForHandle_SwapsPastOpposite(t *testing.T) {
	r := viewport.Rect{X: 10, Y: 10, W: 20, H: 20}
	got := UpdateRectForHandle(r, 3, viewport.Pt(0, 0)) // drag right edge past left
	if got != (viewport.Rect{X: 0, Y: 10, W: 10, H: 20}) {
		t.Fatalf("right edge swap got %+v", got)
	}
	got = UpdateRectForHandle(r, 0, viewport.Pt(40, 50))
	if got != (viewport.Rect{X: 30, Y: 30, W: 10, H: 20}) {
		t.Fatalf("corner swap got %+v", got)
	}
}

func TestUpdateRectForHandle_RandomDragsStayNormalized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := viewport.Rect{X: 50, Y: 50, W: 30, H: 30}
	for i := 0; i < 2000; i++ {
		h := rng.Intn(HandleCount)
		p := viewport.Pt(rng.Float64()*200-50, rng.Float64()*200-50)
		r = UpdateRectForHandle(r, h, p)
		if r.W < 0 || r.H < 0 {
			t.Fatalf("step %d handle %d produced unnormalized rect %+v", i, h, r)
		}
	}
}
