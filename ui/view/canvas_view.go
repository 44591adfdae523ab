package view

import (
	"image"

	"github.com/soocke/vision-edit-go/domain/interaction"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CanvasInput receives the canvas pointer and key events in canvas pixels.
type CanvasInput interface {
	PointerDown(b interaction.Button, x, y float64)
	PointerMove(x, y float64)
	PointerUp(x, y float64)
	Wheel(notches int, x, y float64)
	KeyPress(k interaction.Key)
	FocusLost()
}

// CanvasView shows rendered frames in a fixed-size photo label and forwards input.
type CanvasView struct {
	photo  *photoLabel
	width  int
	height int
}

// NewCanvasView creates the canvas label. Grid it with Widget.
func NewCanvasView(width, height int) *CanvasView {
	p := newPhotoLabel(width, height, Borderwidth(1), Relief("sunken"), Cursor(cursorName(interaction.CursorDefault)))
	return &CanvasView{photo: p, width: width, height: height}
}

// Widget returns the underlying label.
func (v *CanvasView) Widget() *LabelWidget { return v.photo.label }

// Size returns the canvas size in pixels.
func (v *CanvasView) Size() (int, int) { return v.width, v.height }

// Bind routes mouse, wheel, key and focus events of the label to in.
func (v *CanvasView) Bind(in CanvasInput) {
	w := v.photo.label
	down := func(b interaction.Button) func(*Event) {
		return func(e *Event) {
			Focus(w)
			in.PointerDown(b, float64(e.X), float64(e.Y))
		}
	}
	Bind(w, "<ButtonPress-1>", Command(down(interaction.ButtonLeft)))
	Bind(w, "<ButtonPress-2>", Command(down(interaction.ButtonMiddle)))
	Bind(w, "<ButtonPress-3>", Command(down(interaction.ButtonRight)))
	move := Command(func(e *Event) { in.PointerMove(float64(e.X), float64(e.Y)) })
	Bind(w, "<Motion>", move)
	up := Command(func(e *Event) { in.PointerUp(float64(e.X), float64(e.Y)) })
	Bind(w, "<ButtonRelease-1>", up)
	Bind(w, "<ButtonRelease-2>", up)
	Bind(w, "<ButtonRelease-3>", up)
	// X11 reports wheel notches as buttons 4 and 5.
	Bind(w, "<Button-4>", Command(func(e *Event) { in.Wheel(1, float64(e.X), float64(e.Y)) }))
	Bind(w, "<Button-5>", Command(func(e *Event) { in.Wheel(-1, float64(e.X), float64(e.Y)) }))
	Bind(w, "<Delete>", Command(func() { in.KeyPress(interaction.KeyDelete) }))
	Bind(w, "<BackSpace>", Command(func() { in.KeyPress(interaction.KeyBackspace) }))
	Bind(w, "<Key-0>", Command(func() { in.KeyPress(interaction.KeyResetZoom) }))
	Bind(w, "<FocusOut>", Command(func() { in.FocusLost() }))
}

// ShowFrame replaces the displayed frame.
func (v *CanvasView) ShowFrame(img image.Image) {
	if v != nil {
		v.photo.show(img)
	}
}

// SetCursor maps the advisory cursor to a Tk cursor name.
func (v *CanvasView) SetCursor(c interaction.Cursor) {
	if v != nil && v.photo.label != nil {
		v.photo.label.Configure(Cursor(cursorName(c)))
	}
}

func cursorName(c interaction.Cursor) string {
	switch c {
	case interaction.CursorCrosshair:
		return "crosshair"
	case interaction.CursorMove:
		return "fleur"
	case interaction.CursorResizeNWSE:
		return "bottom_right_corner"
	case interaction.CursorResizeNESW:
		return "bottom_left_corner"
	case interaction.CursorResizeNS:
		return "sb_v_double_arrow"
	case interaction.CursorResizeWE:
		return "sb_h_double_arrow"
	case interaction.CursorPan:
		return "hand2"
	default:
		return "arrow"
	}
}
