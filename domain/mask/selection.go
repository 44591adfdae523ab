package mask

import (
	"github.com/soocke/vision-edit-go/domain/viewport"
)

// SelectionListener is called after a published selection change.
type SelectionListener func(index int, selected bool)

// Selection tracks which masks are selected. Toggle publishes to listeners; Set is the
// silent path used when mirroring a change that originated elsewhere.
// It is owned by the UI goroutine and is not synchronized.
type Selection struct {
	masks     []*Mask
	selected  []bool
	listeners []SelectionListener
}

// NewSelection returns an empty selection.
func NewSelection() *Selection { return &Selection{} }

// AddListener registers l for published changes.
func (s *Selection) AddListener(l SelectionListener) {
	if s == nil || l == nil {
		return
	}
	s.listeners = append(s.listeners, l)
}

// SetMasks replaces the mask list and clears every selection flag without publishing.
func (s *Selection) SetMasks(masks []*Mask) {
	if s == nil {
		return
	}
	s.masks = append([]*Mask(nil), masks...)
	s.selected = make([]bool, len(masks))
}

// Clear drops all masks.
func (s *Selection) Clear() { s.SetMasks(nil) }

// Len returns the number of masks.
func (s *Selection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.masks)
}

// Masks returns the masks in index order.
func (s *Selection) Masks() []*Mask {
	if s == nil {
		return nil
	}
	return append([]*Mask(nil), s.masks...)
}

// IsSelected reports the flag of mask i; out-of-range indices are unselected.
func (s *Selection) IsSelected(i int) bool {
	if i < 0 || i >= s.Len() {
		return false
	}
	return s.selected[i]
}

// Flags returns a copy of the selection vector.
func (s *Selection) Flags() []bool {
	if s == nil {
		return nil
	}
	return append([]bool(nil), s.selected...)
}

// Any reports whether at least one mask is selected.
func (s *Selection) Any() bool {
	for i := 0; i < s.Len(); i++ {
		if s.selected[i] {
			return true
		}
	}
	return false
}

// Selected returns the selected masks in index order.
func (s *Selection) Selected() []*Mask {
	var out []*Mask
	for i := 0; i < s.Len(); i++ {
		if s.selected[i] {
			out = append(out, s.masks[i])
		}
	}
	return out
}

// Toggle flips mask i and publishes the new state. Out-of-range indices are ignored.
func (s *Selection) Toggle(i int) bool {
	if i < 0 || i >= s.Len() {
		return false
	}
	s.selected[i] = !s.selected[i]
	v := s.selected[i]
	for _, l := range s.listeners {
		l(i, v)
	}
	return v
}

// Set assigns mask i without publishing and reports whether the flag changed.
func (s *Selection) Set(i int, selected bool) bool {
	if i < 0 || i >= s.Len() || s.selected[i] == selected {
		return false
	}
	s.selected[i] = selected
	return true
}

// HitTest returns the index of the topmost mask containing the image point, or -1.
func (s *Selection) HitTest(p viewport.Point, img viewport.Size) int {
	for i := s.Len() - 1; i >= 0; i-- {
		if s.masks[i].Contains(p, img) {
			return i
		}
	}
	return -1
}
