package app

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/vision-edit-go/config"
	"github.com/soocke/vision-edit-go/debug"
	"github.com/soocke/vision-edit-go/domain/effect"
	"github.com/soocke/vision-edit-go/domain/interaction"
	"github.com/soocke/vision-edit-go/ui/theme"
	"github.com/soocke/vision-edit-go/ui/view"
)

type app struct {
	config    *config.Config
	cfgPath   string
	logger    *slog.Logger
	container *AppContainer
	root      *view.RootView
	canvas    *view.CanvasView
	region    *view.RegionOverlay
	afterID   string
	cancel    context.CancelFunc
}

// NewApp prepares the main window. Nothing is shown until Start.
func NewApp(title string, cfg *config.Config, cfgPath string, logger *slog.Logger) *app {
	a := &app{config: cfg, cfgPath: cfgPath, logger: logger}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", cfg.WindowWidth, cfg.WindowHeight))
	return a
}

// Start builds the UI, optionally opens imagePath and runs the Tk event loop until the
// window closes.
func (a *app) Start(imagePath string) {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	pal := theme.For(a.config.Dark)
	theme.Apply(pal)

	c := BuildContainer(a.config, a.logger)
	a.container = c
	a.root = view.NewRootView(a.config, a.cfgPath, a.logger)
	a.canvas = view.NewCanvasView(a.config.CanvasWidth, a.config.CanvasHeight)
	masks := view.NewMaskList(func(i int) { c.MaskPresenter.RowClicked(i) })
	effects := view.NewEffectPanel(effectInput{c: c})
	a.region = view.NewRegionOverlay(a.config, a.cfgPath, a.logger, func(r *image.Rectangle) {
		if r == nil {
			a.root.ShowStatus("Screenshot captures the whole display")
			return
		}
		a.root.ShowStatus(fmt.Sprintf("Screenshot region %dx%d", r.Dx(), r.Dy()))
	})

	c.Wire(Views{Canvas: a.canvas, Masks: masks, Effects: effects, Status: a.root, Palette: pal.Canvas}, nil)
	a.root.Build(a.canvas, masks, effects, a.actions())
	a.root.ShowMode(c.Session.Machine().Mode())
	a.canvas.Bind(c.Canvas)
	c.Canvas.Resize(a.canvas.Size())
	c.Session.Machine().AddOpenListener(func() { a.root.OpenDialog(a.openFile) })

	if a.config.Debug {
		debug.StartGoroutineLogger(ctx, 0, a.logger, c.PipelineAttrs)
		debug.StartMemLogger(ctx, 0, a.logger)
	}
	if imagePath != "" {
		a.openFile(imagePath)
	}

	a.scheduleUpdate()
	App.Wait()
}

func (a *app) actions() view.Actions {
	c := a.container
	center := func() (float64, float64) {
		w, h := a.canvas.Size()
		return float64(w) / 2, float64(h) / 2
	}
	return view.Actions{
		OpenFile: a.openFile,
		Screenshot: func() {
			_ = c.ImagePresenter.CaptureScreen(a.region.Region())
		},
		PickRegion:     a.region.OpenOrFocus,
		Segment:        c.ImagePresenter.Segment,
		SetMode:        c.Canvas.SetMode,
		ToggleOriginal: c.Canvas.ToggleOriginal,
		ZoomIn: func() {
			x, y := center()
			c.Canvas.Wheel(1, x, y)
		},
		ZoomOut: func() {
			x, y := center()
			c.Canvas.Wheel(-1, x, y)
		},
		ResetZoom:  func() { c.Canvas.KeyPress(interaction.KeyResetZoom) },
		DeleteBox:  func() { c.Canvas.KeyPress(interaction.KeyDelete) },
		ClearMasks: c.ImagePresenter.ClearMasks,
		Exit:       a.exitHandler,
	}
}

func (a *app) openFile(path string) {
	_ = a.container.ImagePresenter.OpenFile(path)
}

func (a *app) update() {
	func() {
		defer func() {
			if r := recover(); r != nil && a.logger != nil {
				a.logger.Error("update loop panic", "error", r)
			}
		}()
		a.container.Loop.Tick()
	}()
	a.scheduleUpdate()
}

func (a *app) exitHandler() {
	// Cancel scheduled after event if any.
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.container != nil {
		a.container.Close()
	}
	Destroy(App)
}

func (a *app) scheduleUpdate() {
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(a.config.Tick(), func() { a.update() })
}

// effectInput forwards panel actions to the effect presenter, which is wired after the
// panel exists.
type effectInput struct{ c *AppContainer }

func (e effectInput) Select(id effect.ID)                 { e.c.EffectPres.Select(id) }
func (e effectInput) Nudge(name string, steps int)        { e.c.EffectPres.Nudge(name, steps) }
func (e effectInput) SetNumber(name string, v float64)    { e.c.EffectPres.SetNumber(name, v) }
func (e effectInput) ToggleFlag(name string)              { e.c.EffectPres.ToggleFlag(name) }
func (e effectInput) SetColor(name string, c color.NRGBA) { e.c.EffectPres.SetColor(name, c) }
func (e effectInput) ResetCurrent()                       { e.c.EffectPres.ResetCurrent() }
func (e effectInput) Apply()                              { e.c.EffectPres.Apply() }
func (e effectInput) ResetAll()                           { e.c.ImagePresenter.ResetAll() }

var _ view.EffectInput = effectInput{}
