package view

import (
	"log/slog"
	"strings"

	"github.com/soocke/vision-edit-go/config"
	"github.com/soocke/vision-edit-go/domain/interaction"
	"github.com/soocke/vision-edit-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Actions are the toolbar and prompt handlers. Nil entries leave their control inert.
type Actions struct {
	OpenFile       func(path string)
	Screenshot     func()
	PickRegion     func()
	Segment        func(prompt string)
	SetMode        func(mode interaction.Mode)
	ToggleOriginal func() bool
	ZoomIn         func()
	ZoomOut        func()
	ResetZoom      func()
	DeleteBox      func()
	ClearMasks     func()
	Exit           func()
}

// RootView composes the top-level application layout. Its subviews are exported so the
// container can hand them to the presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Canvas      *CanvasView
	Masks       *MaskList
	Effects     *EffectPanel
	ConfigPanel *ConfigPanel

	// Widgets
	StatusLabel *TLabelWidget
	prompt      *TextWidget
	modeButtons map[interaction.Mode]*ButtonWidget
	originalBtn *ButtonWidget
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger, modeButtons: map[interaction.Mode]*ButtonWidget{}}
}

// Build constructs the layout around an existing canvas, mask list and effect panel.
func (rv *RootView) Build(canvas *CanvasView, masks *MaskList, effects *EffectPanel, a Actions) {
	if rv == nil {
		return
	}
	rv.Canvas, rv.Masks, rv.Effects = canvas, masks, effects

	// Row 0: toolbar
	bar := Frame()
	Grid(bar, Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	col := 0
	add := func(w Widget) {
		Grid(w, In(bar), Row(0), Column(col), Sticky("we"), Padx("0.2m"))
		col++
	}
	add(TButton(Txt("Open..."), Style(theme.StylePrimaryButton), Command(func() { rv.OpenDialog(a.OpenFile) })))
	add(Button(Txt("Screenshot"), Command(call(a.Screenshot))))
	add(Button(Txt("Region..."), Command(call(a.PickRegion))))
	for _, m := range []interaction.Mode{interaction.ModeBoundingBox, interaction.ModePrompt, interaction.ModeNone} {
		mode := m
		b := Button(Txt(modeTitle(mode)), Relief("raised"), Command(func() {
			if a.SetMode != nil {
				a.SetMode(mode)
				rv.ShowMode(mode)
			}
		}))
		rv.modeButtons[mode] = b
		add(b)
	}
	add(Button(Txt("-"), Width(2), Command(call(a.ZoomOut))))
	add(Button(Txt("+"), Width(2), Command(call(a.ZoomIn))))
	add(Button(Txt("Fit"), Command(call(a.ResetZoom))))
	add(Button(Txt("Delete Box"), Command(call(a.DeleteBox))))
	add(Button(Txt("Clear Masks"), Command(call(a.ClearMasks))))
	rv.originalBtn = Button(Txt("Show Original"), Command(func() {
		if a.ToggleOriginal != nil {
			rv.showOriginal(a.ToggleOriginal())
		}
	}))
	add(rv.originalBtn)
	add(TButton(Txt("Exit"), Style(theme.StyleDangerButton), Command(call(a.Exit))))

	// Row 1: canvas and side panel
	Grid(canvas.Widget(), Row(1), Column(0), Sticky("nw"), Padx("0.4m"), Pady("0.4m"))
	side := Frame()
	Grid(side, Row(1), Column(1), Sticky("nwe"), Padx("0.4m"), Pady("0.4m"))
	Grid(TLabel(Txt("Masks"), Style(theme.StyleAccentLabel)), In(side), Row(0), Column(0), Sticky("w"))
	Grid(masks.Widget(), In(side), Row(1), Column(0), Sticky("we"), Pady("0.2m"))
	Grid(TLabel(Txt("Effects"), Style(theme.StyleAccentLabel)), In(side), Row(2), Column(0), Sticky("w"))
	Grid(effects.Widget(), In(side), Row(3), Column(0), Sticky("we"), Pady("0.2m"))
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger)
	Grid(TLabel(Txt("Settings"), Style(theme.StyleAccentLabel)), In(side), Row(4), Column(0), Sticky("w"))
	Grid(rv.ConfigPanel.Build(), In(side), Row(5), Column(0), Sticky("we"), Pady("0.2m"))

	// Row 2: prompt and status
	promptRow := Frame()
	Grid(promptRow, Row(2), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	Grid(Label(Txt("Prompt:")), In(promptRow), Row(0), Column(0), Sticky("w"))
	rv.prompt = Text(Height(1), Width(40))
	Grid(rv.prompt, In(promptRow), Row(0), Column(1), Sticky("we"), Padx("0.2m"))
	segment := func() {
		if a.Segment != nil {
			a.Segment(textOf(rv.prompt))
		}
	}
	Bind(rv.prompt, "<Return>", Command(segment))
	Grid(TButton(Txt("Segment"), Style(theme.StylePrimaryButton), Command(segment)), In(promptRow), Row(0), Column(2), Padx("0.2m"))
	rv.StatusLabel = TLabel(Txt("Open an image to start"), Style(theme.StyleStatusLabel))
	Grid(rv.StatusLabel, In(promptRow), Row(0), Column(3), Sticky("we"), Padx("0.4m"))
}

// ShowStatus updates the status line.
func (rv *RootView) ShowStatus(text string) {
	if rv != nil && rv.StatusLabel != nil {
		rv.StatusLabel.Configure(Txt(text))
	}
}

// ShowMode highlights the active canvas tool.
func (rv *RootView) ShowMode(mode interaction.Mode) {
	if rv == nil {
		return
	}
	for m, b := range rv.modeButtons {
		relief := "raised"
		if m == mode {
			relief = "sunken"
		}
		b.Configure(Relief(relief))
	}
}

func (rv *RootView) showOriginal(on bool) {
	if rv.originalBtn == nil {
		return
	}
	text := "Show Original"
	if on {
		text = "Show Edited"
	}
	rv.originalBtn.Configure(Txt(text))
}

// OpenDialog asks for an image file and passes the chosen path to open.
func (rv *RootView) OpenDialog(open func(string)) {
	if open == nil {
		return
	}
	files := GetOpenFile(Title("Open image"))
	if len(files) == 0 {
		return
	}
	if path := strings.TrimSpace(files[0]); path != "" {
		open(path)
	}
}

func modeTitle(m interaction.Mode) string {
	switch m {
	case interaction.ModeBoundingBox:
		return "Boxes"
	case interaction.ModePrompt:
		return "Prompt"
	default:
		return "Select"
	}
}

func call(fn func()) func() {
	return func() {
		if fn != nil {
			fn()
		}
	}
}
