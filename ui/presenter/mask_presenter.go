package presenter

import (
	"github.com/soocke/vision-edit-go/domain/mask"
	"github.com/soocke/vision-edit-go/ui/model"
)

// MaskListView shows the mask list rows.
type MaskListView interface {
	ShowMasks(rows []model.MaskRow)
}

// MaskPresenter keeps the canvas selection and the mask list in step. A toggle on either
// side is mirrored to the other through its silent setter, so neither echoes back.
type MaskPresenter struct {
	selection *mask.Selection
	list      *model.MaskListModel
	view      MaskListView
	canvas    Invalidator
	onChange  func()

	shown uint64
}

// NewMaskPresenter wires both directions. onChange runs after every selection change. The
// list side sets the selection silently, so canvas is invalidated here for that path.
func NewMaskPresenter(selection *mask.Selection, list *model.MaskListModel, view MaskListView, canvas Invalidator, onChange func()) *MaskPresenter {
	p := &MaskPresenter{selection: selection, list: list, view: view, canvas: canvas, onChange: onChange}
	selection.AddListener(func(i int, selected bool) {
		p.list.SetRowSelected(i, selected)
		p.changed()
	})
	list.OnSelectionChanged(func(i int, selected bool) {
		p.selection.Set(i, selected)
		if p.canvas != nil {
			p.canvas.Invalidate()
		}
		p.changed()
	})
	return p
}

// Populate rebuilds the list from the current masks.
func (p *MaskPresenter) Populate() {
	if p == nil {
		return
	}
	p.list.Populate(p.selection.Masks())
	for i, sel := range p.selection.Flags() {
		p.list.SetRowSelected(i, sel)
	}
	p.Tick()
}

// RowClicked is the list widget's click handler.
func (p *MaskPresenter) RowClicked(i int) {
	if p != nil {
		p.list.Click(i)
	}
}

// Tick pushes rows to the view when the list changed.
func (p *MaskPresenter) Tick() {
	if p == nil || p.view == nil || p.list.Version() == p.shown {
		return
	}
	p.shown = p.list.Version()
	p.view.ShowMasks(p.list.Rows())
}

func (p *MaskPresenter) changed() {
	if p.onChange != nil {
		p.onChange()
	}
}
