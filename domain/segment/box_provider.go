package segment

import (
	"context"
	"errors"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/soocke/vision-edit-go/domain/viewport"
)

// ErrTextUnsupported is returned by providers that cannot segment from a text prompt.
var ErrTextUnsupported = errors.New("segment: text prompts not supported")

// BoxProvider is an offline provider that turns every foreground box into a rectangular
// mask with background boxes carved out of it. It lets the editor run without a model.
type BoxProvider struct {
	// Feather softens mask edges over this many image pixels; 0 gives hard edges.
	Feather float64
}

func (p *BoxProvider) SegmentText(ctx context.Context, img image.Image, prompt string) (*Result, error) {
	return nil, ErrTextUnsupported
}

func (p *BoxProvider) SegmentBoxes(ctx context.Context, img image.Image, boxes []viewport.Rect, labels []bool) (*Result, error) {
	if img == nil {
		return nil, errors.New("segment: nil image")
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, errors.New("segment: empty image")
	}
	var bg []viewport.Rect
	for i, r := range boxes {
		if i < len(labels) && !labels[i] {
			bg = append(bg, r.Normalize().Clamp(float64(w), float64(h)))
		}
	}
	res := &Result{}
	for i, r := range boxes {
		if i < len(labels) && !labels[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r = r.Normalize().Clamp(float64(w), float64(h))
		if r.W <= 0 || r.H <= 0 {
			continue
		}
		grid := mat.NewDense(h, w, nil)
		x0, x1 := int(r.Left()), int(math.Ceil(r.Right()))
		y0, y1 := int(r.Top()), int(math.Ceil(r.Bottom()))
		for y := y0; y < y1 && y < h; y++ {
			for x := x0; x < x1 && x < w; x++ {
				pt := viewport.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
				if inAny(bg, pt) {
					continue
				}
				grid.Set(y, x, p.edgeWeight(r, pt))
			}
		}
		res.Masks = append(res.Masks, grid)
		res.Boxes = append(res.Boxes, [4]float64{r.X, r.Y, r.W, r.H})
		res.Scores = append(res.Scores, 1)
	}
	return res, nil
}

func (p *BoxProvider) edgeWeight(r viewport.Rect, pt viewport.Point) float64 {
	if p.Feather <= 0 {
		return 1
	}
	d := min(pt.X-r.Left(), r.Right()-pt.X, pt.Y-r.Top(), r.Bottom()-pt.Y)
	return math.Max(0, math.Min(1, d/p.Feather))
}

func inAny(rects []viewport.Rect, pt viewport.Point) bool {
	for _, r := range rects {
		if r.W > 0 && r.H > 0 && r.Contains(pt) {
			return true
		}
	}
	return false
}

var _ Provider = (*BoxProvider)(nil)
