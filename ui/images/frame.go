package images

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/soocke/vision-edit-go/domain/annotation"
	"github.com/soocke/vision-edit-go/domain/viewport"
)

// HandleSize is the side of a drawn resize handle in screen pixels.
const HandleSize = 10

// Palette holds the colors the frame renderer paints with.
type Palette struct {
	Canvas     color.NRGBA
	Foreground color.NRGBA // foreground box stroke
	Background color.NRGBA // background box stroke
	Handle     color.NRGBA
	BadgeText  color.NRGBA
}

// DefaultPalette is used when a zero Palette is passed.
var DefaultPalette = Palette{
	Canvas:     color.NRGBA{R: 30, G: 30, B: 30, A: 255},
	Foreground: color.NRGBA{R: 0, G: 200, B: 0, A: 255},
	Background: color.NRGBA{R: 220, G: 40, B: 40, A: 255},
	Handle:     color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	BadgeText:  color.NRGBA{R: 255, G: 255, B: 255, A: 255},
}

// Frame describes one canvas render.
type Frame struct {
	View     viewport.Size
	Image    viewport.Size // source image size the boxes are expressed in
	Display  image.Image   // drawn inside the letterbox, usually with overlays
	Box      viewport.Rect // letterbox in screen space
	Boxes    []annotation.Box
	Selected int // selected box or -1
	Scaler   draw.Scaler
}

// RenderFrame paints the display image into its letterbox and draws the annotation boxes on
// top. Unselected boxes are dashed; the selected one gets handles and an FG/BG badge.
func RenderFrame(f Frame, pal Palette) *image.NRGBA {
	if pal == (Palette{}) {
		pal = DefaultPalette
	}
	w, h := max(1, int(f.View.W)), max(1, int(f.View.H))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(pal.Canvas), image.Point{}, draw.Src)
	if f.Display == nil || f.Image.Empty() {
		return dst
	}
	scaler := f.Scaler
	if scaler == nil {
		scaler = draw.CatmullRom
	}
	if dr, sr, ok := visiblePart(screenRect(f.Box), dst.Bounds(), f.Display.Bounds()); ok {
		scaler.Scale(dst, dr, f.Display, sr, draw.Over, nil)
	}

	for i, b := range f.Boxes {
		sr := viewport.ImageToScreen(b.Rect, f.Box, f.Image)
		stroke := pal.Foreground
		if !b.Label {
			stroke = pal.Background
		}
		if i == f.Selected {
			strokeRect(dst, sr, stroke, 2, 0)
			for _, p := range annotation.Handles(sr) {
				drawHandle(dst, p, pal.Handle, stroke)
			}
			drawBadge(dst, basicfont.Face7x13, b.Label.String(), sr, stroke, pal.BadgeText)
			continue
		}
		strokeRect(dst, sr, stroke, 1, 6)
	}
	return dst
}

func screenRect(r viewport.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.Left())), int(math.Round(r.Top())),
		int(math.Round(r.Right())), int(math.Round(r.Bottom())),
	)
}

// visiblePart crops the letterboxed destination to the canvas and returns the matching
// source rectangle, so zoomed-in frames only scale what is on screen.
func visiblePart(dr, canvas, src image.Rectangle) (image.Rectangle, image.Rectangle, bool) {
	vis := dr.Intersect(canvas)
	if vis.Empty() || dr.Dx() <= 0 || dr.Dy() <= 0 || src.Empty() {
		return image.Rectangle{}, image.Rectangle{}, false
	}
	fx := float64(src.Dx()) / float64(dr.Dx())
	fy := float64(src.Dy()) / float64(dr.Dy())
	sr := image.Rect(
		src.Min.X+int(math.Floor(float64(vis.Min.X-dr.Min.X)*fx)),
		src.Min.Y+int(math.Floor(float64(vis.Min.Y-dr.Min.Y)*fy)),
		src.Min.X+int(math.Ceil(float64(vis.Max.X-dr.Min.X)*fx)),
		src.Min.Y+int(math.Ceil(float64(vis.Max.Y-dr.Min.Y)*fy)),
	).Intersect(src)
	if sr.Empty() {
		return image.Rectangle{}, image.Rectangle{}, false
	}
	return vis, sr, true
}

// strokeRect draws the outline of r with the given width. A positive dash length alternates
// painted and skipped runs.
func strokeRect(dst *image.NRGBA, r viewport.Rect, c color.NRGBA, width, dash int) {
	ir := screenRect(r)
	for t := 0; t < width; t++ {
		hline(dst, ir.Min.X, ir.Max.X, ir.Min.Y+t, c, dash)
		hline(dst, ir.Min.X, ir.Max.X, ir.Max.Y-1-t, c, dash)
		vline(dst, ir.Min.Y, ir.Max.Y, ir.Min.X+t, c, dash)
		vline(dst, ir.Min.Y, ir.Max.Y, ir.Max.X-1-t, c, dash)
	}
}

func hline(dst *image.NRGBA, x0, x1, y int, c color.NRGBA, dash int) {
	b := dst.Bounds()
	if y < b.Min.Y || y >= b.Max.Y {
		return
	}
	for x := max(x0, b.Min.X); x < min(x1, b.Max.X); x++ {
		if dash > 0 && ((x-x0)/dash)%2 == 1 {
			continue
		}
		dst.SetNRGBA(x, y, c)
	}
}

func vline(dst *image.NRGBA, y0, y1, x int, c color.NRGBA, dash int) {
	b := dst.Bounds()
	if x < b.Min.X || x >= b.Max.X {
		return
	}
	for y := max(y0, b.Min.Y); y < min(y1, b.Max.Y); y++ {
		if dash > 0 && ((y-y0)/dash)%2 == 1 {
			continue
		}
		dst.SetNRGBA(x, y, c)
	}
}

func drawHandle(dst *image.NRGBA, p viewport.Point, fill, border color.NRGBA) {
	half := float64(HandleSize) / 2
	r := viewport.Rect{X: p.X - half, Y: p.Y - half, W: HandleSize, H: HandleSize}
	draw.Draw(dst, screenRect(r), image.NewUniform(fill), image.Point{}, draw.Src)
	strokeRect(dst, r, border, 1, 0)
}

// drawBadge labels the box just above its top-left corner, or inside it near the top edge.
func drawBadge(dst *image.NRGBA, face font.Face, text string, r viewport.Rect, bg, fg color.NRGBA) {
	m := face.Metrics()
	th := (m.Ascent + m.Descent).Ceil() + 2
	x, y := int(math.Round(r.Left())), int(math.Round(r.Top()))-th-HandleSize/2
	if y < 0 {
		y = int(math.Round(r.Top())) + HandleSize/2 + 1
	}
	drawTag(dst, face, text, x, y, bg, fg)
}
