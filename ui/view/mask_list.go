package view

import (
	"fmt"
	"image/color"

	"github.com/soocke/vision-edit-go/ui/model"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// MaskList shows one colored toggle button per mask inside its frame.
type MaskList struct {
	frame   *FrameWidget
	empty   *LabelWidget
	buttons []*ButtonWidget
	onClick func(int)
}

// NewMaskList creates the list frame. onClick receives the row index.
func NewMaskList(onClick func(int)) *MaskList {
	f := Frame(Borderwidth(1), Relief("groove"))
	empty := Label(Txt("No masks"), Anchor("w"))
	Grid(empty, In(f), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	return &MaskList{frame: f, empty: empty, onClick: onClick}
}

// Widget returns the list frame.
func (l *MaskList) Widget() *FrameWidget { return l.frame }

// ShowMasks rebuilds the buttons when the row count changes and restyles them otherwise.
func (l *MaskList) ShowMasks(rows []model.MaskRow) {
	if l == nil || l.frame == nil {
		return
	}
	if len(rows) != len(l.buttons) {
		for _, b := range l.buttons {
			Destroy(b)
		}
		l.buttons = l.buttons[:0]
		for i := range rows {
			idx := i
			b := Button(Command(func() {
				if l.onClick != nil {
					l.onClick(idx)
				}
			}))
			Grid(b, In(l.frame), Row(i+1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.1m"))
			l.buttons = append(l.buttons, b)
		}
	}
	if len(rows) == 0 {
		l.empty.Configure(Txt("No masks"))
	} else {
		l.empty.Configure(Txt(fmt.Sprintf("%d masks", len(rows))))
	}
	for i, r := range rows {
		relief, mark := "raised", "[ ]"
		if r.Selected {
			relief, mark = "sunken", "[x]"
		}
		l.buttons[i].Configure(
			Txt(mark+" "+r.Label),
			Background(hexColor(r.Color)),
			Foreground(textOn(r.Color)),
			Relief(relief),
		)
	}
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// textOn picks black or white for legibility on c.
func textOn(c color.NRGBA) string {
	if 299*int(c.R)+587*int(c.G)+114*int(c.B) > 128000 {
		return "black"
	}
	return "white"
}
