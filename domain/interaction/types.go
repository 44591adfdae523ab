package interaction

import (
	"github.com/soocke/vision-edit-go/domain/annotation"
)

// State enumerates the pointer gesture in progress.
type State int

const (
	StateIdle State = iota
	StateDrawingNewBox
	StateDraggingHandle
	StateMovingBox
	StatePanning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawingNewBox:
		return "drawing"
	case StateDraggingHandle:
		return "dragging-handle"
	case StateMovingBox:
		return "moving"
	case StatePanning:
		return "panning"
	default:
		return "unknown"
	}
}

// Mode selects which tools the canvas offers.
type Mode int

const (
	ModeNone Mode = iota
	ModeBoundingBox
	ModePrompt
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeBoundingBox:
		return "box"
	case ModePrompt:
		return "prompt"
	default:
		return "unknown"
	}
}

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota + 1
	ButtonMiddle
	ButtonRight
)

// Key identifies the keyboard commands the canvas reacts to.
type Key int

const (
	KeyNone Key = iota
	KeyDelete
	KeyBackspace
	KeyResetZoom
)

// Cursor is an advisory pointer shape for the host toolkit.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorCrosshair
	CursorMove
	CursorResizeNWSE
	CursorResizeNESW
	CursorResizeNS
	CursorResizeWE
	CursorPan
)

func (c Cursor) String() string {
	switch c {
	case CursorCrosshair:
		return "crosshair"
	case CursorMove:
		return "move"
	case CursorResizeNWSE:
		return "resize-nwse"
	case CursorResizeNESW:
		return "resize-nesw"
	case CursorResizeNS:
		return "resize-ns"
	case CursorResizeWE:
		return "resize-we"
	case CursorPan:
		return "pan"
	default:
		return "default"
	}
}

// handleCursor maps a handle index to its resize cursor.
func handleCursor(h int) Cursor {
	switch h {
	case 0, 4:
		return CursorResizeNWSE
	case 2, 6:
		return CursorResizeNESW
	case 1, 5:
		return CursorResizeNS
	case 3, 7:
		return CursorResizeWE
	default:
		return CursorDefault
	}
}

// BoxChangedListener is called when a box gesture commits or a label flips.
// Boxes discarded for being too small are dropped without notification.
type BoxChangedListener func(index int, box annotation.Box)

// StateListener is called on each state transition.
type StateListener func(prev, next State)

// Contract is the surface presenters drive.
type Contract interface {
	PointerDown(b Button, x, y float64)
	PointerMove(x, y float64)
	PointerUp(x, y float64)
	FocusLost()
	Wheel(notches int, x, y float64)
	KeyPress(k Key)
	Hover(x, y float64) Cursor
	State() State
	SelectedBox() int
	SetMode(Mode)
	Mode() Mode
}
