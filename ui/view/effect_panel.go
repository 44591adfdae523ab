package view

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/soocke/vision-edit-go/domain/effect"
	"github.com/soocke/vision-edit-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// EffectInput receives effect panel actions.
type EffectInput interface {
	Select(id effect.ID)
	Nudge(name string, steps int)
	SetNumber(name string, v float64)
	ToggleFlag(name string)
	SetColor(name string, c color.NRGBA)
	ResetCurrent()
	Apply()
	ResetAll()
}

// EffectPanel lists the effects and the parameters of the active one.
type EffectPanel struct {
	frame    *FrameWidget
	params   *FrameWidget
	choices  map[effect.ID]*ButtonWidget
	applyBtn *TButtonWidget
	applied  *LabelWidget
	busy     *TLabelWidget
	in       EffectInput

	shown   effect.ID
	numbers map[string]*TextWidget
	flags   map[string]*ButtonWidget
	colors  map[string]*TextWidget
	widgets []*Window
}

// NewEffectPanel builds the panel for the effect catalog.
func NewEffectPanel(in EffectInput) *EffectPanel {
	p := &EffectPanel{in: in, choices: map[effect.ID]*ButtonWidget{}}
	p.frame = Frame(Borderwidth(1), Relief("groove"))
	row := 0
	for i, info := range effect.Catalog() {
		id := info.ID
		b := Button(Txt(info.Name), Relief("raised"), Command(func() { in.Select(id) }))
		Grid(b, In(p.frame), Row(row+i/2), Column(i%2), Sticky("we"), Padx("0.2m"), Pady("0.1m"))
		p.choices[id] = b
	}
	row += (len(p.choices) + 1) / 2

	p.params = Frame()
	Grid(p.params, In(p.frame), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"), Pady("0.3m"))
	row++

	p.applyBtn = TButton(Txt("Apply"), Style(theme.StylePrimaryButton), Command(in.Apply))
	Grid(p.applyBtn, In(p.frame), Row(row), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	reset := Button(Txt("Reset Params"), Command(in.ResetCurrent))
	Grid(reset, In(p.frame), Row(row), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	row++
	resetAll := TButton(Txt("Reset All"), Style(theme.StyleDangerButton), Command(in.ResetAll))
	Grid(resetAll, In(p.frame), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	row++

	p.busy = TLabel(Txt(""), Style(theme.StyleMutedLabel))
	Grid(p.busy, In(p.frame), Row(row), Column(0), Columnspan(2), Sticky("w"), Padx("0.2m"))
	row++
	p.applied = Label(Txt("Applied: none"), Anchor("w"), Wraplength("60m"))
	Grid(p.applied, In(p.frame), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	return p
}

// Widget returns the panel frame.
func (p *EffectPanel) Widget() *FrameWidget { return p.frame }

// ShowEffect highlights the active effect and shows its parameters.
func (p *EffectPanel) ShowEffect(info effect.Info, params effect.Params, active bool) {
	if p == nil {
		return
	}
	for id, b := range p.choices {
		relief := "raised"
		if active && id == info.ID {
			relief = "sunken"
		}
		b.Configure(Relief(relief))
	}
	id := info.ID
	if !active {
		id = ""
	}
	if id != p.shown {
		p.rebuild(info, active)
		p.shown = id
	}
	if !active {
		return
	}
	for _, s := range info.Numbers {
		setText(p.numbers[s.Name], formatNumber(params.Number(s.Name, s.Default)))
	}
	for _, s := range info.Flags {
		if b := p.flags[s.Name]; b != nil {
			b.Configure(Txt(flagText(s.Label, params.Flag(s.Name))))
		}
	}
	for _, s := range info.Colors {
		setText(p.colors[s.Name], hexColor(params.Color(s.Name, s.Default)))
	}
}

// ShowApplied lists the committed effects.
func (p *EffectPanel) ShowApplied(names []string) {
	if p == nil || p.applied == nil {
		return
	}
	text := "Applied: none"
	if len(names) > 0 {
		text = "Applied: " + strings.Join(names, ", ")
	}
	p.applied.Configure(Txt(text))
}

// ShowBusy disables Apply while a commit runs.
func (p *EffectPanel) ShowBusy(busy bool) {
	if p == nil {
		return
	}
	state, text := "normal", ""
	if busy {
		state, text = "disabled", "Applying..."
	}
	p.applyBtn.Configure(State(state))
	p.busy.Configure(Txt(text))
}

func (p *EffectPanel) rebuild(info effect.Info, active bool) {
	for _, w := range p.widgets {
		Destroy(w)
	}
	p.widgets = nil
	p.numbers = map[string]*TextWidget{}
	p.flags = map[string]*ButtonWidget{}
	p.colors = map[string]*TextWidget{}
	if !active {
		return
	}
	in := p.in
	row := 0
	for _, s := range info.Numbers {
		name := s.Name
		lbl := Label(Txt(s.Label), Anchor("w"))
		minus := Button(Txt("-"), Width(2), Command(func() { in.Nudge(name, -1) }))
		value := Text(Height(1), Width(8))
		plus := Button(Txt("+"), Width(2), Command(func() { in.Nudge(name, 1) }))
		Bind(value, "<Return>", Command(func() {
			if f, err := strconv.ParseFloat(textOf(value), 64); err == nil {
				in.SetNumber(name, f)
			}
		}))
		Grid(lbl, In(p.params), Row(row), Column(0), Sticky("w"), Padx("0.2m"))
		Grid(minus, In(p.params), Row(row), Column(1), Padx("0.1m"))
		Grid(value, In(p.params), Row(row), Column(2), Sticky("we"), Padx("0.1m"))
		Grid(plus, In(p.params), Row(row), Column(3), Padx("0.1m"))
		p.numbers[name] = value
		p.widgets = append(p.widgets, lbl.Window, minus.Window, value.Window, plus.Window)
		row++
	}
	for _, s := range info.Flags {
		name := s.Name
		b := Button(Txt(flagText(s.Label, false)), Command(func() { in.ToggleFlag(name) }))
		Grid(b, In(p.params), Row(row), Column(0), Columnspan(4), Sticky("w"), Padx("0.2m"), Pady("0.1m"))
		p.flags[name] = b
		p.widgets = append(p.widgets, b.Window)
		row++
	}
	for _, s := range info.Colors {
		name := s.Name
		lbl := Label(Txt(s.Label), Anchor("w"))
		value := Text(Height(1), Width(8))
		Bind(value, "<Return>", Command(func() {
			if c, ok := parseHexColor(textOf(value)); ok {
				in.SetColor(name, c)
			}
		}))
		Grid(lbl, In(p.params), Row(row), Column(0), Sticky("w"), Padx("0.2m"))
		Grid(value, In(p.params), Row(row), Column(1), Columnspan(3), Sticky("we"), Padx("0.1m"))
		p.colors[name] = value
		p.widgets = append(p.widgets, lbl.Window, value.Window)
		row++
	}
}

func flagText(label string, on bool) string {
	if on {
		return "[x] " + label
	}
	return "[ ] " + label
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// parseHexColor accepts "#rrggbb" or "rrggbb".
func parseHexColor(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.NRGBA{}, false
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}, true
}

func setText(w *TextWidget, value string) {
	if w == nil {
		return
	}
	w.Delete("1.0", END)
	w.Insert("1.0", value)
}

func textOf(w *TextWidget) string {
	if w == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
}
