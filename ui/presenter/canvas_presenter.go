package presenter

import (
	"image"

	"github.com/soocke/vision-edit-go/domain/annotation"
	"github.com/soocke/vision-edit-go/domain/interaction"
	"github.com/soocke/vision-edit-go/domain/mask"
	"github.com/soocke/vision-edit-go/domain/session"
	"github.com/soocke/vision-edit-go/ui/images"
)

// CanvasView is the drawing surface the canvas presenter renders into.
type CanvasView interface {
	ShowFrame(img image.Image)
	SetCursor(c interaction.Cursor)
}

// Invalidator schedules a redraw on the next tick.
type Invalidator interface{ Invalidate() }

type overlayKey struct {
	display image.Image
	head    *mask.Mask
	flags   string
	masks   int
}

// CanvasPresenter forwards pointer and key input to the interaction machine and redraws the
// canvas at most once per tick when something changed.
type CanvasPresenter struct {
	session *session.Session
	view    CanvasView
	palette images.Palette
	overlay images.OverlayOptions

	dirty      bool
	cursor     interaction.Cursor
	cachedKey  overlayKey
	cachedOver image.Image
	frames     uint64
}

// NewCanvasPresenter wires the presenter to the session's machine.
func NewCanvasPresenter(s *session.Session, view CanvasView, pal images.Palette, overlay images.OverlayOptions) *CanvasPresenter {
	p := &CanvasPresenter{session: s, view: view, palette: pal, overlay: overlay, dirty: true, cursor: -1}
	m := s.Machine()
	m.AddStateListener(func(from, to interaction.State) { p.Invalidate() })
	m.AddBoxListener(func(int, annotation.Box) { p.Invalidate() })
	s.Selection().AddListener(func(int, bool) { p.Invalidate() })
	return p
}

func (p *CanvasPresenter) Invalidate() {
	if p != nil {
		p.dirty = true
	}
}

// Resize records the new canvas size.
func (p *CanvasPresenter) Resize(w, h int) {
	if p == nil || w <= 0 || h <= 0 {
		return
	}
	v := p.session.Machine().ViewSize()
	if int(v.W) == w && int(v.H) == h {
		return
	}
	p.session.Machine().SetViewSize(float64(w), float64(h))
	p.Invalidate()
}

func (p *CanvasPresenter) PointerDown(b interaction.Button, x, y float64) {
	if p == nil {
		return
	}
	p.session.Machine().PointerDown(b, x, y)
	p.updateCursor(x, y)
	p.Invalidate()
}

// PointerMove advances an active gesture; while idle it only refreshes the cursor.
func (p *CanvasPresenter) PointerMove(x, y float64) {
	if p == nil {
		return
	}
	m := p.session.Machine()
	if m.State() != interaction.StateIdle {
		m.PointerMove(x, y)
		p.Invalidate()
	}
	p.updateCursor(x, y)
}

func (p *CanvasPresenter) PointerUp(x, y float64) {
	if p == nil {
		return
	}
	p.session.Machine().PointerUp(x, y)
	p.updateCursor(x, y)
	p.Invalidate()
}

func (p *CanvasPresenter) Wheel(notches int, x, y float64) {
	if p == nil || notches == 0 {
		return
	}
	p.session.Machine().Wheel(notches, x, y)
	p.Invalidate()
}

func (p *CanvasPresenter) KeyPress(k interaction.Key) {
	if p == nil {
		return
	}
	p.session.Machine().KeyPress(k)
	p.Invalidate()
}

func (p *CanvasPresenter) FocusLost() {
	if p == nil {
		return
	}
	p.session.Machine().FocusLost()
	p.Invalidate()
}

// SetMode switches the canvas tool.
func (p *CanvasPresenter) SetMode(mode interaction.Mode) {
	if p == nil {
		return
	}
	p.session.Machine().SetMode(mode)
	p.Invalidate()
}

// ToggleOriginal flips the before/after view.
func (p *CanvasPresenter) ToggleOriginal() bool {
	if p == nil {
		return false
	}
	on := p.session.ToggleShowOriginal()
	p.Invalidate()
	return on
}

// Tick redraws when invalidated.
func (p *CanvasPresenter) Tick() {
	if p == nil || !p.dirty || p.view == nil {
		return
	}
	p.dirty = false
	p.frames++
	p.view.ShowFrame(p.Render())
}

// Frames returns how many frames were pushed to the view.
func (p *CanvasPresenter) Frames() uint64 { return p.frames }

// Render composes the current canvas image.
func (p *CanvasPresenter) Render() image.Image {
	m := p.session.Machine()
	display := p.session.DisplayImage()
	if display != nil && !p.session.ShowingOriginal() {
		display = p.overlayFor(display)
	}
	return images.RenderFrame(images.Frame{
		View:     m.ViewSize(),
		Image:    p.session.ImageSize(),
		Display:  display,
		Box:      m.Letterbox(),
		Boxes:    p.session.Store().Entries(),
		Selected: m.SelectedBox(),
	}, p.palette)
}

// overlayFor caches the mask overlay until the display image or the selection changes.
func (p *CanvasPresenter) overlayFor(display image.Image) image.Image {
	sel := p.session.Selection()
	if sel.Len() == 0 {
		return display
	}
	masks := sel.Masks()
	key := overlayKey{display: display, head: masks[0], flags: flagKey(sel.Flags()), masks: len(masks)}
	if p.cachedOver != nil && key == p.cachedKey {
		return p.cachedOver
	}
	p.cachedKey = key
	p.cachedOver = images.RenderMaskOverlays(display, masks, sel.Flags(), p.overlay)
	return p.cachedOver
}

func (p *CanvasPresenter) updateCursor(x, y float64) {
	c := p.session.Machine().Hover(x, y)
	if c == p.cursor || p.view == nil {
		return
	}
	p.cursor = c
	p.view.SetCursor(c)
}

func flagKey(flags []bool) string {
	b := make([]byte, len(flags))
	for i, f := range flags {
		b[i] = '0'
		if f {
			b[i] = '1'
		}
	}
	return string(b)
}
