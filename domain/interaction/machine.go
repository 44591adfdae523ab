package interaction

import (
	"log/slog"
	"math"

	"github.com/soocke/vision-edit-go/domain/annotation"
	"github.com/soocke/vision-edit-go/domain/mask"
	"github.com/soocke/vision-edit-go/domain/viewport"
)

// Options tunes hit testing and zoom behavior.
type Options struct {
	HandleRadius float64 // screen pixels
	MinBoxSize   float64 // image pixels
	ZoomStep     float64 // zoom factor per wheel notch
}

// DefaultOptions returns the standard canvas tuning.
func DefaultOptions() Options {
	return Options{HandleRadius: 8, MinBoxSize: 2, ZoomStep: 1.15}
}

// Machine turns pointer and key events into box edits, mask toggles and viewport changes.
// All methods must be called from the goroutine that owns the store, selection and viewport.
type Machine struct {
	logger *slog.Logger
	opts   Options
	store  *annotation.Store
	masks  *mask.Selection
	vp     *viewport.Viewport

	img  viewport.Size
	view viewport.Size
	mode Mode

	state    State
	handle   int
	selected int

	// Gestures are recomputed from their start each move so repeated events are idempotent.
	anchor     viewport.Point // image space while drawing, screen space otherwise
	boxAtStart viewport.Rect
	panAtStart viewport.Point

	boxListeners   []BoxChangedListener
	stateListeners []StateListener
	openListeners  []func()
}

// NewMachine wires a machine to the shared annotation store, mask selection and viewport.
// Zero-valued options fall back to DefaultOptions.
func NewMachine(logger *slog.Logger, opts Options, store *annotation.Store, masks *mask.Selection, vp *viewport.Viewport) *Machine {
	def := DefaultOptions()
	if opts.HandleRadius <= 0 {
		opts.HandleRadius = def.HandleRadius
	}
	if opts.MinBoxSize <= 0 {
		opts.MinBoxSize = def.MinBoxSize
	}
	if opts.ZoomStep <= 1 {
		opts.ZoomStep = def.ZoomStep
	}
	if store == nil {
		store = annotation.NewStore()
	}
	if masks == nil {
		masks = mask.NewSelection()
	}
	if vp == nil {
		vp = viewport.New(0, 0)
	}
	return &Machine{logger: logger, opts: opts, store: store, masks: masks, vp: vp, selected: -1}
}

// AddBoxListener registers l for committed box gestures.
func (m *Machine) AddBoxListener(l BoxChangedListener) {
	if l != nil {
		m.boxListeners = append(m.boxListeners, l)
	}
}

// AddStateListener registers l for state transitions.
func (m *Machine) AddStateListener(l StateListener) {
	if l != nil {
		m.stateListeners = append(m.stateListeners, l)
	}
}

// AddOpenListener registers l for clicks on an empty canvas.
func (m *Machine) AddOpenListener(l func()) {
	if l != nil {
		m.openListeners = append(m.openListeners, l)
	}
}

// Load resets gesture state and viewport for a newly loaded image of size img.
func (m *Machine) Load(img viewport.Size) {
	m.img = img
	m.state = StateIdle
	m.handle = -1
	m.selected = -1
	m.vp.Reset()
}

// Unload forgets the image; pointer input is then ignored except for open requests.
func (m *Machine) Unload() { m.Load(viewport.Size{}) }

// SetViewSize records the canvas size in screen pixels.
func (m *Machine) SetViewSize(w, h float64) { m.view = viewport.Size{W: w, H: h} }

func (m *Machine) ViewSize() viewport.Size  { return m.view }
func (m *Machine) ImageSize() viewport.Size { return m.img }
func (m *Machine) State() State             { return m.state }
func (m *Machine) Mode() Mode               { return m.mode }
func (m *Machine) Viewport() *viewport.Viewport {
	return m.vp
}

// SelectedBox returns the selected box index or -1.
func (m *Machine) SelectedBox() int {
	if !m.store.Valid(m.selected) {
		return -1
	}
	return m.selected
}

// SetMode switches tools, finishing any gesture in progress first.
func (m *Machine) SetMode(mode Mode) {
	if m.state != StateIdle {
		m.finish()
	}
	if mode != ModeBoundingBox {
		m.selected = -1
	}
	m.mode = mode
}

// Letterbox returns the screen rectangle the image currently occupies.
func (m *Machine) Letterbox() viewport.Rect { return m.vp.Letterbox(m.img, m.view) }

// PointerDown starts a gesture. Priority: middle button pans; in box mode a handle of the
// selected box, then the topmost box under the pointer; then a mask under the pointer
// toggles; finally an empty spot in box mode starts a new box.
func (m *Machine) PointerDown(b Button, x, y float64) {
	if m.state != StateIdle {
		return
	}
	p := viewport.Pt(x, y)
	if m.img.Empty() {
		if b == ButtonLeft {
			for _, l := range m.openListeners {
				l()
			}
		}
		return
	}
	if b == ButtonMiddle {
		m.anchor = p
		m.panAtStart = m.vp.Pan
		m.transition(StatePanning)
		return
	}
	lb := m.Letterbox()
	ip := viewport.ScreenToImage(p, lb, m.img)
	boxMode := m.mode == ModeBoundingBox

	if boxMode && b == ButtonLeft {
		if box, ok := m.store.At(m.selected); ok {
			sr := viewport.ImageToScreen(box.Rect, lb, m.img)
			if h := annotation.HitHandle(sr, p, m.opts.HandleRadius); h >= 0 {
				m.handle = h
				m.boxAtStart = box.Rect
				m.transition(StateDraggingHandle)
				return
			}
		}
	}
	if boxMode {
		if i := m.store.HitTest(ip); i >= 0 {
			m.selected = i
			if b == ButtonRight {
				m.store.ToggleLabel(i)
				box, _ := m.store.At(i)
				m.emitBox(i, box)
				return
			}
			if b == ButtonLeft {
				box, _ := m.store.At(i)
				m.anchor = p
				m.boxAtStart = box.Rect
				m.transition(StateMovingBox)
			}
			return
		}
	}
	if b != ButtonLeft {
		return
	}
	if i := m.masks.HitTest(ip, m.img); i >= 0 {
		m.masks.Toggle(i)
		return
	}
	if boxMode {
		m.anchor = ip
		m.selected = m.store.Add(annotation.Box{Rect: viewport.Rect{X: ip.X, Y: ip.Y}, Label: annotation.Foreground})
		m.transition(StateDrawingNewBox)
	}
}

// PointerMove advances the current gesture.
func (m *Machine) PointerMove(x, y float64) {
	p := viewport.Pt(x, y)
	switch m.state {
	case StatePanning:
		m.vp.SetPan(m.panAtStart.Add(p.Sub(m.anchor)))
	case StateDrawingNewBox:
		ip := viewport.ScreenToImage(p, m.Letterbox(), m.img)
		m.store.SetRect(m.selected, viewport.RectFromPoints(m.anchor, ip))
	case StateDraggingHandle:
		ip := viewport.ScreenToImage(p, m.Letterbox(), m.img)
		m.store.SetRect(m.selected, annotation.UpdateRectForHandle(m.boxAtStart, m.handle, ip))
	case StateMovingBox:
		lb := m.Letterbox()
		if lb.W == 0 || lb.H == 0 {
			return
		}
		d := p.Sub(m.anchor)
		di := viewport.Pt(d.X/lb.W*m.img.W, d.Y/lb.H*m.img.H)
		m.store.SetRect(m.selected, m.boxAtStart.Offset(di))
	}
}

// PointerUp finishes the current gesture.
func (m *Machine) PointerUp(x, y float64) {
	if m.state == StateIdle {
		return
	}
	m.PointerMove(x, y)
	m.finish()
}

// FocusLost resolves any gesture in progress as if the pointer had been released in place.
func (m *Machine) FocusLost() {
	if m.state == StateIdle {
		return
	}
	m.finish()
}

// Wheel zooms by ZoomStep per notch around the pointer. Positive notches zoom in.
func (m *Machine) Wheel(notches int, x, y float64) {
	if m.img.Empty() || notches == 0 {
		return
	}
	m.vp.ZoomBy(math.Pow(m.opts.ZoomStep, float64(notches)), viewport.Pt(x, y), m.view)
}

// KeyPress handles delete of the selected box and zoom reset.
func (m *Machine) KeyPress(k Key) {
	switch k {
	case KeyDelete, KeyBackspace:
		if m.mode != ModeBoundingBox || m.state != StateIdle || !m.store.Valid(m.selected) {
			return
		}
		m.store.Remove(m.selected)
		m.selected = m.store.Len() - 1
		if m.logger != nil {
			m.logger.Debug("box deleted", "remaining", m.store.Len())
		}
	case KeyResetZoom:
		m.vp.Reset()
	}
}

// Hover returns the advisory cursor for the pointer at (x,y).
func (m *Machine) Hover(x, y float64) Cursor {
	switch m.state {
	case StatePanning:
		return CursorPan
	case StateMovingBox:
		return CursorMove
	case StateDraggingHandle:
		return handleCursor(m.handle)
	case StateDrawingNewBox:
		return CursorCrosshair
	}
	if m.img.Empty() || m.mode != ModeBoundingBox {
		return CursorDefault
	}
	p := viewport.Pt(x, y)
	lb := m.Letterbox()
	if box, ok := m.store.At(m.selected); ok {
		if h := annotation.HitHandle(viewport.ImageToScreen(box.Rect, lb, m.img), p, m.opts.HandleRadius); h >= 0 {
			return handleCursor(h)
		}
	}
	if m.store.HitTest(viewport.ScreenToImage(p, lb, m.img)) >= 0 {
		return CursorMove
	}
	return CursorCrosshair
}

// finish commits box gestures and returns to idle.
func (m *Machine) finish() {
	switch m.state {
	case StateDrawingNewBox, StateDraggingHandle, StateMovingBox:
		m.commitBox()
	}
	m.handle = -1
	m.transition(StateIdle)
}

// commitBox clamps the selected box to the image and drops it when it ends up too small.
func (m *Machine) commitBox() {
	box, ok := m.store.At(m.selected)
	if !ok {
		return
	}
	r := box.Rect.Normalize().Clamp(m.img.W, m.img.H)
	if !annotation.Valid(r, m.opts.MinBoxSize) {
		m.store.Remove(m.selected)
		m.selected = m.store.Len() - 1
		if m.logger != nil {
			m.logger.Debug("box discarded", "w", r.W, "h", r.H)
		}
		return
	}
	m.store.SetRect(m.selected, r)
	box.Rect = r
	m.emitBox(m.selected, box)
}

func (m *Machine) emitBox(i int, box annotation.Box) {
	for _, l := range m.boxListeners {
		l(i, box)
	}
}

func (m *Machine) transition(next State) {
	prev := m.state
	if prev == next {
		return
	}
	m.state = next
	if m.logger != nil {
		m.logger.Debug("canvas state transition", "from", prev.String(), "to", next.String())
	}
	for _, l := range m.stateListeners {
		l(prev, next)
	}
}

// Ensure contract satisfaction
var _ Contract = (*Machine)(nil)
