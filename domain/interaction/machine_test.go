package interaction

import (
	"log/slog"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/soocke/vision-edit-go/domain/annotation"
	"github.com/soocke/vision-edit-go/domain/mask"
	"github.com/soocke/vision-edit-go/domain/viewport"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

type boxRecorder struct {
	calls int
	last  annotation.Box
	index int
}

func (r *boxRecorder) listener(i int, b annotation.Box) {
	r.calls++
	r.index = i
	r.last = b
}

// newTestMachine loads a 200x100 image into a 400x200 canvas so screen = 2 * image.
func newTestMachine(mode Mode) (*Machine, *annotation.Store, *mask.Selection) {
	store := annotation.NewStore()
	sel := mask.NewSelection()
	m := NewMachine(discardLogger, Options{}, store, sel, viewport.New(0, 0))
	m.SetViewSize(400, 200)
	m.Load(viewport.Size{W: 200, H: 100})
	m.SetMode(mode)
	return m, store, sel
}

func TestMachine_DrawNewBox(t *testing.T) {
	m, store, _ := newTestMachine(ModeBoundingBox)
	r := &boxRecorder{}
	m.AddBoxListener(r.listener)
	m.PointerDown(ButtonLeft, 20, 20)
	if m.State() != StateDrawingNewBox || store.Len() != 1 || m.SelectedBox() != 0 {
		t.Fatalf("expected drawing with appended box, state=%v len=%d sel=%d", m.State(), store.Len(), m.SelectedBox())
	}
	m.PointerMove(120, 80)
	m.PointerUp(120, 80)
	b, _ := store.At(0)
	if b.Rect != (viewport.Rect{X: 10, Y: 10, W: 50, H: 30}) || b.Label != annotation.Foreground {
		t.Fatalf("unexpected box %+v", b)
	}
	if m.State() != StateIdle || r.calls != 1 || r.index != 0 {
		t.Fatalf("expected idle and one notification, state=%v calls=%d", m.State(), r.calls)
	}
}

func TestMachine_DrawBackwardsNormalizes(t *testing.T) {
	m, store, _ := newTestMachine(ModeBoundingBox)
	m.PointerDown(ButtonLeft, 120, 80)
	m.PointerUp(20, 20)
	b, _ := store.At(0)
	if b.Rect != (viewport.Rect{X: 10, Y: 10, W: 50, H: 30}) {
		t.Fatalf("unexpected box %+v", b.Rect)
	}
}

func TestMachine_TinyBoxDiscarded(t *testing.T) {
	m, store, _ := newTestMachine(ModeBoundingBox)
	store.Add(annotation.Box{Rect: viewport.Rect{X: 150, Y: 60, W: 20, H: 20}})
	r := &boxRecorder{}
	m.AddBoxListener(r.listener)
	// image (10,10) -> (11,11)
	m.PointerDown(ButtonLeft, 20, 20)
	m.PointerUp(22, 22)
	if store.Len() != 1 {
		t.Fatalf("tiny box should be discarded, len=%d", store.Len())
	}
	if m.SelectedBox() != 0 {
		t.Fatalf("selection should fall back to last box, got=%d", m.SelectedBox())
	}
	if r.calls != 0 {
		t.Fatalf("discarded box must not notify, calls=%d", r.calls)
	}
}

func TestMachine_ClickSelectsTopmostAndMoves(t *testing.T) {
	m, store, _ := newTestMachine(ModeBoundingBox)
	store.Add(annotation.Box{Rect: viewport.Rect{X: 10, Y: 10, W: 50, H: 50}})
	store.Add(annotation.Box{Rect: viewport.Rect{X: 30, Y: 30, W: 50, H: 50}})
	m.PointerDown(ButtonLeft, 90, 90) // image (45,45), inside both
	if m.State() != StateMovingBox || m.SelectedBox() != 1 {
		t.Fatalf("expected moving topmost, state=%v sel=%d", m.State(), m.SelectedBox())
	}
	m.PointerMove(110, 100)
	m.PointerUp(110, 100)
	b, _ := store.At(1)
	if b.Rect != (viewport.Rect{X: 40, Y: 35, W: 50, H: 50}) {
		t.Fatalf("unexpected moved rect %+v", b.Rect)
	}
}

func TestMachine_MoveClampsToImage(t *testing.T) {
	m, store, _ := newTestMachine(ModeBoundingBox)
	store.Add(annotation.Box{Rect: viewport.Rect{X: 150, Y: 10, W: 40, H: 40}})
	m.PointerDown(ButtonLeft, 340, 60)
	m.PointerUp(380, 60) // +20 image px: right edge at 210
	b, _ := store.At(0)
	if b.Rect != (viewport.Rect{X: 170, Y: 10, W: 30, H: 40}) {
		t.Fatalf("expected clamped rect, got %+v", b.Rect)
	}
}

func TestMachine_MoveOutsideCanvasKeepsGesture(t *testing.T) {
	m, store, _ := newTestMachine(ModeBoundingBox)
	store.Add(annotation.Box{Rect: viewport.Rect{X: 150, Y: 10, W: 40, H: 40}})
	m.PointerDown(ButtonLeft, 340, 60)
	m.PointerMove(500, 60) // past the right edge of the 400 px canvas
	b, _ := store.At(0)
	if m.State() != StateMovingBox || b.Rect.X != 230 {
		t.Fatalf("expected unclamped move in progress, state=%v rect=%+v", m.State(), b.Rect)
	}
	m.PointerMove(360, 60)
	m.PointerUp(360, 60)
	b, _ = store.At(0)
	if m.State() != StateIdle || b.Rect != (viewport.Rect{X: 160, Y: 10, W: 40, H: 40}) {
		t.Fatalf("expected gesture resolved on release, state=%v rect=%+v", m.State(), b.Rect)
	}
}

func TestMachine_MovedFullyOutsideIsDropped(t *testing.T) {
	m, store, _ := newTestMachine(ModeBoundingBox)
	store.Add(annotation.Box{Rect: viewport.Rect{X: 150, Y: 10, W: 40, H: 40}})
	m.PointerDown(ButtonLeft, 340, 60)
	m.PointerUp(800, 60)
	if store.Len() != 0 || m.SelectedBox() != -1 {
		t.Fatalf("box moved off-image should be discarded, len=%d sel=%d", store.Len(), m.SelectedBox())
	}
}

func TestMachine_DragHandlePastOppositeEdge(t *testing.T) {
	m, store, _ := newTestMachine(ModeBoundingBox)
	store.Add(annotation.Box{Rect: viewport.Rect{X: 50, Y: 20, W: 40, H: 40}})
	m.PointerDown(ButtonLeft, 140, 80) // select via body
	m.PointerUp(140, 80)
	// bottom-right handle sits at screen (180,120)
	m.PointerDown(ButtonLeft, 182, 118)
	if m.State() != StateDraggingHandle {
		t.Fatalf("expected handle drag, got %v", m.State())
	}
	if c := m.Hover(182, 118); c != CursorResizeNWSE {
		t.Fatalf("drag cursor got %v", c)
	}
	m.PointerMove(60, 20) // image (30,10): past the top-left corner
	m.PointerUp(60, 20)
	b, _ := store.At(0)
	if b.Rect != (viewport.Rect{X: 30, Y: 10, W: 20, H: 10}) {
		t.Fatalf("expected swapped rect, got %+v", b.Rect)
	}
}

func TestMachine_RightClickTogglesLabel(t *testing.T) {
	m, store, _ := newTestMachine(ModeBoundingBox)
	store.Add(annotation.Box{Rect: viewport.Rect{X: 10, Y: 10, W: 50, H: 50}, Label: annotation.Foreground})
	r := &boxRecorder{}
	m.AddBoxListener(r.listener)
	m.PointerDown(ButtonRight, 40, 40)
	b, _ := store.At(0)
	if b.Label != annotation.Background || m.SelectedBox() != 0 || r.calls != 1 || m.State() != StateIdle {
		t.Fatalf("right click: label=%v sel=%d calls=%d state=%v", b.Label, m.SelectedBox(), r.calls, m.State())
	}
}

func TestMachine_DeleteSelected(t *testing.T) {
	m, store, _ := newTestMachine(ModeBoundingBox)
	store.Add(annotation.Box{Rect: viewport.Rect{X: 10, Y: 10, W: 20, H: 20}})
	store.Add(annotation.Box{Rect: viewport.Rect{X: 100, Y: 10, W: 20, H: 20}})
	store.Add(annotation.Box{Rect: viewport.Rect{X: 150, Y: 50, W: 20, H: 20}})
	m.PointerDown(ButtonLeft, 40, 40)
	m.PointerUp(40, 40)
	m.KeyPress(KeyDelete)
	if store.Len() != 2 || m.SelectedBox() != 1 {
		t.Fatalf("delete: len=%d sel=%d", store.Len(), m.SelectedBox())
	}
	m.KeyPress(KeyBackspace)
	m.KeyPress(KeyBackspace)
	m.KeyPress(KeyBackspace)
	if store.Len() != 0 || m.SelectedBox() != -1 {
		t.Fatalf("backspace: len=%d sel=%d", store.Len(), m.SelectedBox())
	}
}

func TestMachine_MaskClickTogglesWithoutGesture(t *testing.T) {
	for _, mode := range []Mode{ModeNone, ModePrompt, ModeBoundingBox} {
		m, store, sel := newTestMachine(mode)
		d := mat.NewDense(10, 20, nil)
		for y := 2; y < 8; y++ {
			for x := 2; x < 10; x++ {
				d.Set(y, x, 0.9)
			}
		}
		mk, _ := mask.New(d, 1)
		sel.SetMasks([]*mask.Mask{mk})
		var published int
		sel.AddListener(func(int, bool) { published++ })
		m.PointerDown(ButtonLeft, 100, 100) // image (50,50): mask cell (5,5)
		m.PointerUp(100, 100)
		if !sel.IsSelected(0) || published != 1 {
			t.Fatalf("mode %v: mask not toggled selected=%v published=%d", mode, sel.IsSelected(0), published)
		}
		if m.State() != StateIdle || store.Len() != 0 {
			t.Fatalf("mode %v: mask click must not start a gesture state=%v boxes=%d", mode, m.State(), store.Len())
		}
	}
}

func TestMachine_PanAndFocusLoss(t *testing.T) {
	m, _, _ := newTestMachine(ModeNone)
	m.PointerDown(ButtonMiddle, 100, 100)
	if m.State() != StatePanning || m.Hover(100, 100) != CursorPan {
		t.Fatalf("expected panning, got %v", m.State())
	}
	m.PointerMove(130, 90)
	if m.Viewport().Pan != (viewport.Point{X: 30, Y: -10}) {
		t.Fatalf("unexpected pan %v", m.Viewport().Pan)
	}
	m.FocusLost()
	if m.State() != StateIdle {
		t.Fatalf("focus loss should return to idle, got %v", m.State())
	}
	m.KeyPress(KeyResetZoom)
	if m.Viewport().Pan != (viewport.Point{}) || m.Viewport().Zoom != 1 {
		t.Fatalf("reset zoom failed")
	}
}

func TestMachine_FocusLossCommitsDrawing(t *testing.T) {
	m, store, _ := newTestMachine(ModeBoundingBox)
	m.PointerDown(ButtonLeft, 20, 20)
	m.PointerMove(500, 500)
	m.FocusLost()
	b, ok := store.At(0)
	if !ok || b.Rect != (viewport.Rect{X: 10, Y: 10, W: 190, H: 90}) || m.State() != StateIdle {
		t.Fatalf("focus loss should clamp and commit, box=%+v ok=%v state=%v", b, ok, m.State())
	}
}

func TestMachine_HoverCursors(t *testing.T) {
	m, store, _ := newTestMachine(ModeBoundingBox)
	store.Add(annotation.Box{Rect: viewport.Rect{X: 50, Y: 20, W: 40, H: 40}})
	m.PointerDown(ButtonLeft, 140, 80)
	m.PointerUp(140, 80)
	cases := []struct {
		x, y float64
		want Cursor
	}{
		{100, 40, CursorResizeNWSE}, // TL
		{140, 40, CursorResizeNS},   // T
		{180, 40, CursorResizeNESW}, // TR
		{180, 80, CursorResizeWE},   // R
		{140, 80, CursorMove},
		{10, 190, CursorCrosshair},
	}
	for _, c := range cases {
		if got := m.Hover(c.x, c.y); got != c.want {
			t.Fatalf("hover (%v,%v) got=%v want=%v", c.x, c.y, got, c.want)
		}
	}
	m.SetMode(ModeNone)
	if got := m.Hover(10, 190); got != CursorDefault {
		t.Fatalf("non-box mode cursor got=%v", got)
	}
}

func TestMachine_NoImageRequestsOpen(t *testing.T) {
	m := NewMachine(discardLogger, Options{}, nil, nil, nil)
	m.SetViewSize(400, 200)
	m.SetMode(ModeBoundingBox)
	var opened int
	m.AddOpenListener(func() { opened++ })
	m.PointerDown(ButtonLeft, 10, 10)
	m.PointerDown(ButtonMiddle, 10, 10)
	m.Wheel(3, 10, 10)
	if opened != 1 || m.State() != StateIdle || m.Viewport().Zoom != 1 {
		t.Fatalf("no-image input: opened=%d state=%v zoom=%v", opened, m.State(), m.Viewport().Zoom)
	}
}

func TestMachine_WheelZoomKeepsAnchor(t *testing.T) {
	m, _, _ := newTestMachine(ModeNone)
	cursor := viewport.Pt(300, 50)
	before := viewport.ScreenToImage(cursor, m.Letterbox(), m.ImageSize())
	m.Wheel(2, cursor.X, cursor.Y)
	m.Wheel(-1, cursor.X, cursor.Y)
	after := viewport.ScreenToImage(cursor, m.Letterbox(), m.ImageSize())
	if d := before.Dist(after); d > 1e-6 {
		t.Fatalf("anchor drift %v before=%v after=%v", d, before, after)
	}
	if z := m.Viewport().Zoom; z <= 1 {
		t.Fatalf("expected zoomed in, got %v", z)
	}
}
