package model

import (
	"fmt"
	"image/color"

	"github.com/soocke/vision-edit-go/domain/mask"
)

// MaskRow is one entry of the mask list.
type MaskRow struct {
	Index    int
	Label    string
	Color    color.NRGBA
	Score    float64
	Selected bool
}

// SelectionChangedListener is called when the user toggles a row.
type SelectionChangedListener func(index int, selected bool)

// MaskListModel backs the mask list widget. SetRowSelected mirrors changes made elsewhere
// without raising selection-changed; Click is the user path and does raise it.
// The zero value is ready to use. Owned by the UI goroutine.
type MaskListModel struct {
	rows      []MaskRow
	listeners []SelectionChangedListener
	version   uint64
}

func NewMaskListModel() *MaskListModel { return &MaskListModel{} }

// OnSelectionChanged registers l for user-initiated row toggles.
func (m *MaskListModel) OnSelectionChanged(l SelectionChangedListener) {
	if m == nil || l == nil {
		return
	}
	m.listeners = append(m.listeners, l)
}

// Populate replaces the rows with one unselected row per mask.
func (m *MaskListModel) Populate(masks []*mask.Mask) {
	if m == nil {
		return
	}
	m.rows = make([]MaskRow, len(masks))
	for i, mk := range masks {
		m.rows[i] = MaskRow{Index: i, Label: fmt.Sprintf("Mask %d (%.2f)", i+1, mk.Score), Color: mk.Color, Score: mk.Score}
	}
	m.version++
}

// SetRowSelected updates a row silently. Out-of-range rows are ignored.
func (m *MaskListModel) SetRowSelected(i int, selected bool) {
	if m == nil || i < 0 || i >= len(m.rows) || m.rows[i].Selected == selected {
		return
	}
	m.rows[i].Selected = selected
	m.version++
}

// Click toggles row i on behalf of the user and notifies listeners.
func (m *MaskListModel) Click(i int) {
	if m == nil || i < 0 || i >= len(m.rows) {
		return
	}
	m.rows[i].Selected = !m.rows[i].Selected
	m.version++
	for _, l := range m.listeners {
		l(i, m.rows[i].Selected)
	}
}

// Rows returns a copy of the rows.
func (m *MaskListModel) Rows() []MaskRow {
	if m == nil {
		return nil
	}
	return append([]MaskRow(nil), m.rows...)
}

func (m *MaskListModel) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rows)
}

// Version increases on every change so views can skip redundant redraws.
func (m *MaskListModel) Version() uint64 {
	if m == nil {
		return 0
	}
	return m.version
}
