package images

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/soocke/vision-edit-go/domain/mask"
)

// UnselectedAlphaScale dims masks that are not selected.
const UnselectedAlphaScale = 0.35

// OverlayOptions controls mask overlay rendering.
type OverlayOptions struct {
	Alpha     float64 // fill opacity for selected masks
	Threshold float64 // binarization cutoff
	Outline   bool
	Tags      bool        // draw "#n score" at the mask's top-left corner
	Highlight color.NRGBA // outline color for selected masks
	TagText   color.NRGBA
	TagFace   font.Face // defaults to basicfont.Face7x13
}

// DefaultOverlayOptions mirrors the editor defaults.
func DefaultOverlayOptions() OverlayOptions {
	return OverlayOptions{
		Alpha:     0.45,
		Threshold: mask.DefaultThreshold,
		Outline:   true,
		Tags:      true,
		Highlight: color.NRGBA{R: 0, G: 255, B: 255, A: 255},
		TagText:   color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// RenderMaskOverlays returns a copy of base with the masks painted over it. Once any mask is
// selected the unselected ones are hidden; otherwise every mask is drawn dimmed.
func RenderMaskOverlays(base image.Image, masks []*mask.Mask, selected []bool, opts OverlayOptions) *image.NRGBA {
	if base == nil {
		return nil
	}
	out := imaging.Clone(base)
	if len(masks) == 0 {
		return out
	}
	if opts.TagFace == nil {
		opts.TagFace = basicfont.Face7x13
	}
	anySelected := false
	for _, s := range selected {
		anySelected = anySelected || s
	}
	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	for i, m := range masks {
		sel := i < len(selected) && selected[i]
		if m == nil || (anySelected && !sel) {
			continue
		}
		alpha := opts.Alpha
		if !sel {
			alpha *= UnselectedAlphaScale
		}
		bin := m.Binary(w, h, opts.Threshold)
		minX, minY, found := fill(out, bin, m.Color, alpha)
		if !found {
			continue
		}
		if opts.Outline {
			edge := m.Color
			if sel {
				edge = opts.Highlight
			}
			outline(out, bin, edge)
		}
		if opts.Tags {
			shade := color.NRGBA{R: m.Color.R / 2, G: m.Color.G / 2, B: m.Color.B / 2, A: 255}
			drawTag(out, opts.TagFace, fmt.Sprintf("#%d %.2f", i+1, m.Score), minX, minY, shade, opts.TagText)
		}
	}
	return out
}

// fill blends c into every set pixel and reports the top-left of the covered area.
func fill(dst *image.NRGBA, bin []bool, c color.NRGBA, alpha float64) (int, int, bool) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	minX, minY, found := w, h, false
	for y := 0; y < h; y++ {
		row := y * dst.Stride
		for x := 0; x < w; x++ {
			if !bin[y*w+x] {
				continue
			}
			found = true
			minX, minY = min(minX, x), min(minY, y)
			i := row + x*4
			dst.Pix[i+0] = lerp(dst.Pix[i+0], c.R, alpha)
			dst.Pix[i+1] = lerp(dst.Pix[i+1], c.G, alpha)
			dst.Pix[i+2] = lerp(dst.Pix[i+2], c.B, alpha)
		}
	}
	return minX, minY, found
}

// outline paints set pixels that touch an unset 4-neighbour or the image border.
func outline(dst *image.NRGBA, bin []bool, c color.NRGBA) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	set := func(x, y int) bool { return x >= 0 && y >= 0 && x < w && y < h && bin[y*w+x] }
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !bin[y*w+x] {
				continue
			}
			if set(x-1, y) && set(x+1, y) && set(x, y-1) && set(x, y+1) {
				continue
			}
			dst.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
}

func drawTag(dst *image.NRGBA, face font.Face, text string, x, y int, bg, fg color.NRGBA) {
	m := face.Metrics()
	tw := font.MeasureString(face, text).Ceil()
	th := (m.Ascent + m.Descent).Ceil()
	box := image.Rect(x, y, x+tw+4, y+th+2).Intersect(dst.Bounds())
	for py := box.Min.Y; py < box.Max.Y; py++ {
		for px := box.Min.X; px < box.Max.X; px++ {
			dst.SetNRGBA(px, py, bg)
		}
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x + 2), Y: fixed.I(y+1) + m.Ascent},
	}
	d.DrawString(text)
}

func lerp(a, b uint8, t float64) uint8 {
	v := float64(a)*(1-t) + float64(b)*t
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
