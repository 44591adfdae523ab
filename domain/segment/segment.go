package segment

import (
	"context"
	"fmt"
	"image"

	"gonum.org/v1/gonum/mat"

	"github.com/soocke/vision-edit-go/domain/mask"
	"github.com/soocke/vision-edit-go/domain/viewport"
)

// Result is what a segmentation provider returns: one probability grid per detected
// object plus its bounding box [x, y, w, h] and confidence. Slices are index-aligned;
// Boxes and Scores may be shorter than Masks.
type Result struct {
	Masks  []*mat.Dense
	Boxes  [][4]float64
	Scores []float64
}

// Empty reports whether the result carries no masks.
func (r *Result) Empty() bool { return r == nil || len(r.Masks) == 0 }

// ToMasks converts the grids into colored masks. Empty grids are skipped.
func (r *Result) ToMasks() ([]*mask.Mask, error) {
	if r.Empty() {
		return nil, nil
	}
	out := make([]*mask.Mask, 0, len(r.Masks))
	for i, g := range r.Masks {
		score := 0.0
		if i < len(r.Scores) {
			score = r.Scores[i]
		}
		m, err := mask.New(g, score)
		if err != nil {
			if err == mask.ErrEmptyGrid {
				continue
			}
			return nil, fmt.Errorf("mask %d: %w", i, err)
		}
		out = append(out, m)
	}
	mask.AssignColors(out)
	return out, nil
}

// Provider produces masks for an image from a text prompt or from labeled boxes.
// labels[i] is true for a foreground box.
type Provider interface {
	SegmentText(ctx context.Context, img image.Image, prompt string) (*Result, error)
	SegmentBoxes(ctx context.Context, img image.Image, boxes []viewport.Rect, labels []bool) (*Result, error)
}
