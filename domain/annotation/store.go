package annotation

import (
	"github.com/soocke/vision-edit-go/domain/viewport"
)

// Store is an ordered list of boxes. Later entries are drawn on top and win hit tests.
// It is owned by the UI goroutine and is not synchronized.
type Store struct {
	boxes []Box
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// Len returns the number of boxes.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.boxes)
}

// Valid reports whether i addresses an existing box.
func (s *Store) Valid(i int) bool { return i >= 0 && i < s.Len() }

// At returns the box at i.
func (s *Store) At(i int) (Box, bool) {
	if !s.Valid(i) {
		return Box{}, false
	}
	return s.boxes[i], true
}

// Entries returns a copy of all boxes in draw order.
func (s *Store) Entries() []Box {
	if s == nil {
		return nil
	}
	out := make([]Box, len(s.boxes))
	copy(out, s.boxes)
	return out
}

// Add appends b and returns its index.
func (s *Store) Add(b Box) int {
	s.boxes = append(s.boxes, b)
	return len(s.boxes) - 1
}

// SetRect replaces the rectangle of box i.
func (s *Store) SetRect(i int, r viewport.Rect) {
	if !s.Valid(i) {
		return
	}
	s.boxes[i].Rect = r
}

// ToggleLabel flips the FG/BG label of box i and returns the new label.
func (s *Store) ToggleLabel(i int) Label {
	if !s.Valid(i) {
		return Background
	}
	s.boxes[i].Label = !s.boxes[i].Label
	return s.boxes[i].Label
}

// Remove deletes box i, shifting later boxes down.
func (s *Store) Remove(i int) {
	if !s.Valid(i) {
		return
	}
	s.boxes = append(s.boxes[:i], s.boxes[i+1:]...)
}

// Clear removes all boxes.
func (s *Store) Clear() {
	if s == nil {
		return
	}
	s.boxes = nil
}

// HitTest returns the topmost box containing the image point p, or -1.
func (s *Store) HitTest(p viewport.Point) int {
	for i := s.Len() - 1; i >= 0; i-- {
		if s.boxes[i].Rect.Contains(p) {
			return i
		}
	}
	return -1
}

// Prompt splits the boxes into the rectangle and label slices a segmentation provider takes.
func (s *Store) Prompt() ([]viewport.Rect, []bool) {
	n := s.Len()
	if n == 0 {
		return nil, nil
	}
	rects := make([]viewport.Rect, n)
	labels := make([]bool, n)
	for i, b := range s.boxes {
		rects[i] = b.Rect
		labels[i] = bool(b.Label)
	}
	return rects, labels
}
