package viewport

import "math"

const (
	DefaultMinZoom = 0.5
	DefaultMaxZoom = 10.0
)

// Letterbox returns the screen rectangle the image occupies: the image scaled uniformly
// to fit the viewport, multiplied by zoom, centered and then shifted by pan.
// An empty image or viewport yields the zero Rect.
func Letterbox(img, view Size, zoom float64, pan Point) Rect {
	if img.Empty() || view.Empty() {
		return Rect{}
	}
	scale := math.Min(view.W/img.W, view.H/img.H) * zoom
	w := img.W * scale
	h := img.H * scale
	return Rect{
		X: (view.W-w)/2 + pan.X,
		Y: (view.H-h)/2 + pan.Y,
		W: w,
		H: h,
	}
}

// ScreenToImage maps a screen position into image space using the letterbox rect.
func ScreenToImage(p Point, lb Rect, img Size) Point {
	if lb.W == 0 || lb.H == 0 {
		return Point{}
	}
	return Point{
		X: (p.X - lb.X) / lb.W * img.W,
		Y: (p.Y - lb.Y) / lb.H * img.H,
	}
}

// ImageToScreenPoint maps an image position into screen space.
func ImageToScreenPoint(p Point, lb Rect, img Size) Point {
	if img.Empty() {
		return Point{}
	}
	return Point{
		X: lb.X + p.X/img.W*lb.W,
		Y: lb.Y + p.Y/img.H*lb.H,
	}
}

// ImageToScreen maps an image-space rectangle into screen space.
func ImageToScreen(r Rect, lb Rect, img Size) Rect {
	if img.Empty() {
		return Rect{}
	}
	sx := lb.W / img.W
	sy := lb.H / img.H
	return Rect{X: lb.X + r.X*sx, Y: lb.Y + r.Y*sy, W: r.W * sx, H: r.H * sy}
}

// ClampZoom limits z to [min,max].
func ClampZoom(z, min, max float64) float64 {
	if z < min {
		return min
	}
	if z > max {
		return max
	}
	return z
}

// ZoomAtCursor returns the zoom and pan that keep the image point under cursor fixed when
// zooming from oldZoom to requested. The requested zoom is clamped to [min,max] before the
// pan is derived, so the anchor holds at the limits too.
func ZoomAtCursor(oldZoom, requested float64, pan, cursor Point, view Size, min, max float64) (float64, Point) {
	newZoom := ClampZoom(requested, min, max)
	if oldZoom <= 0 {
		return newZoom, pan
	}
	r := newZoom / oldZoom
	cx := view.W / 2
	cy := view.H / 2
	return newZoom, Point{
		X: cursor.X - r*(cursor.X-pan.X-cx) - cx,
		Y: cursor.Y - r*(cursor.Y-pan.Y-cy) - cy,
	}
}

// Viewport holds the mutable zoom/pan pair of the canvas. The zero value is not usable;
// construct with New.
type Viewport struct {
	Zoom    float64
	Pan     Point
	MinZoom float64
	MaxZoom float64
}

// New returns a viewport at zoom 1 without pan. Non-positive limits fall back to the defaults.
func New(minZoom, maxZoom float64) *Viewport {
	if minZoom <= 0 {
		minZoom = DefaultMinZoom
	}
	if maxZoom <= minZoom {
		maxZoom = DefaultMaxZoom
	}
	return &Viewport{Zoom: 1, MinZoom: minZoom, MaxZoom: maxZoom}
}

// Reset restores zoom 1 and zero pan.
func (v *Viewport) Reset() {
	if v == nil {
		return
	}
	v.Zoom = 1
	v.Pan = Point{}
}

// Letterbox returns the current letterbox rect for the given image and viewport sizes.
func (v *Viewport) Letterbox(img, view Size) Rect {
	if v == nil {
		return Letterbox(img, view, 1, Point{})
	}
	return Letterbox(img, view, v.Zoom, v.Pan)
}

// ZoomBy multiplies the zoom by factor keeping the point under cursor fixed.
func (v *Viewport) ZoomBy(factor float64, cursor Point, view Size) {
	if v == nil || factor <= 0 {
		return
	}
	v.Zoom, v.Pan = ZoomAtCursor(v.Zoom, v.Zoom*factor, v.Pan, cursor, view, v.MinZoom, v.MaxZoom)
}

// SetPan replaces the pan offset.
func (v *Viewport) SetPan(p Point) {
	if v == nil {
		return
	}
	v.Pan = p
}
