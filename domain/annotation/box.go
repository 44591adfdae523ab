package annotation

import (
	"github.com/soocke/vision-edit-go/domain/viewport"
)

// Label classifies a box as a foreground or background prompt.
type Label bool

const (
	Foreground Label = true
	Background Label = false
)

func (l Label) String() string {
	if l == Foreground {
		return "FG"
	}
	return "BG"
}

// Box is a labeled rectangle in image space.
type Box struct {
	Rect  viewport.Rect
	Label Label
}

// HandleCount is the number of resize handles on a box.
const HandleCount = 8

// Handles returns the eight handle positions of r in clockwise order starting at the
// top-left corner: 0 TL, 1 T, 2 TR, 3 R, 4 BR, 5 B, 6 BL, 7 L.
func Handles(r viewport.Rect) [HandleCount]viewport.Point {
	cx := r.X + r.W/2
	cy := r.Y + r.H/2
	return [HandleCount]viewport.Point{
		{X: r.Left(), Y: r.Top()},
		{X: cx, Y: r.Top()},
		{X: r.Right(), Y: r.Top()},
		{X: r.Right(), Y: cy},
		{X: r.Right(), Y: r.Bottom()},
		{X: cx, Y: r.Bottom()},
		{X: r.Left(), Y: r.Bottom()},
		{X: r.Left(), Y: cy},
	}
}

// HitHandle returns the index of the first handle of screenRect within radius of p, or -1.
func HitHandle(screenRect viewport.Rect, p viewport.Point, radius float64) int {
	for i, h := range Handles(screenRect) {
		if h.Dist(p) <= radius {
			return i
		}
	}
	return -1
}

// IsCornerHandle reports whether h is one of the four corner handles.
func IsCornerHandle(h int) bool { return h >= 0 && h < HandleCount && h%2 == 0 }

// UpdateRectForHandle moves the edges controlled by handle h to p. If an edge is dragged
// past its opposite the two are swapped, so the result is always normalized.
func UpdateRectForHandle(r viewport.Rect, h int, p viewport.Point) viewport.Rect {
	l, t, rr, b := r.Left(), r.Top(), r.Right(), r.Bottom()
	switch h {
	case 0:
		l, t = p.X, p.Y
	case 1:
		t = p.Y
	case 2:
		rr, t = p.X, p.Y
	case 3:
		rr = p.X
	case 4:
		rr, b = p.X, p.Y
	case 5:
		b = p.Y
	case 6:
		l, b = p.X, p.Y
	case 7:
		l = p.X
	}
	if l > rr {
		l, rr = rr, l
	}
	if t > b {
		t, b = b, t
	}
	return viewport.Rect{X: l, Y: t, W: rr - l, H: b - t}
}

// Valid reports whether r is large enough to keep as a box.
func Valid(r viewport.Rect, minSize float64) bool {
	return r.W >= minSize && r.H >= minSize
}
