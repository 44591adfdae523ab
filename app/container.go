package app

import (
	"log/slog"

	"github.com/soocke/vision-edit-go/config"
	"github.com/soocke/vision-edit-go/domain/effect"
	"github.com/soocke/vision-edit-go/domain/interaction"
	"github.com/soocke/vision-edit-go/domain/preview"
	"github.com/soocke/vision-edit-go/domain/segment"
	"github.com/soocke/vision-edit-go/domain/session"
	"github.com/soocke/vision-edit-go/domain/viewport"
	"github.com/soocke/vision-edit-go/ui/images"
	"github.com/soocke/vision-edit-go/ui/model"
	"github.com/soocke/vision-edit-go/ui/presenter"
)

// Views are the widgets the presenters drive.
type Views struct {
	Canvas  presenter.CanvasView
	Masks   presenter.MaskListView
	Effects presenter.EffectView
	Status  presenter.StatusView
	Palette images.Palette
}

// AppContainer assembles models, services and presenters.
type AppContainer struct {
	Config    *config.Config
	Logger    *slog.Logger
	Session   *session.Session
	Scheduler *preview.Scheduler
	Provider  segment.Provider
	Effects   *model.EffectModel
	MaskList  *model.MaskListModel

	// Presenters
	Canvas         *presenter.CanvasPresenter
	PreviewPres    *presenter.PreviewPresenter
	EffectPres     *presenter.EffectPresenter
	MaskPresenter  *presenter.MaskPresenter
	ImagePresenter *presenter.ImagePresenter
	Loop           *presenter.Loop
}

// BuildContainer constructs the session, the preview pipeline and the models.
func BuildContainer(cfg *config.Config, logger *slog.Logger) *AppContainer {
	c := &AppContainer{Config: cfg, Logger: logger}
	opts := interaction.Options{
		HandleRadius: cfg.HandleRadiusPx,
		MinBoxSize:   cfg.MinBoxSizePx,
		ZoomStep:     cfg.ZoomStep,
	}
	c.Session = session.New(logger, opts, viewport.New(cfg.MinZoom, cfg.MaxZoom))
	c.Scheduler = preview.NewScheduler(effect.NewImagingEngine(), logger, preview.Options{
		Debounce:      cfg.Debounce(),
		HeavyDebounce: cfg.HeavyDebounce(),
		MaxDim:        cfg.PreviewMaxDim,
	})
	c.Provider = &segment.BoxProvider{}
	c.Effects = model.NewEffectModel()
	c.MaskList = model.NewMaskListModel()
	return c
}

// Wire builds the presenters on top of v. after runs at the end of every loop tick.
func (c *AppContainer) Wire(v Views, after func()) *presenter.Loop {
	overlay := images.DefaultOverlayOptions()
	overlay.Alpha = c.Config.OverlayAlpha
	overlay.Threshold = c.Config.MaskThreshold
	heavy := func(id effect.ID) bool { return c.Config.IsHeavy(string(id)) }

	c.Canvas = presenter.NewCanvasPresenter(c.Session, v.Canvas, v.Palette, overlay)
	c.Canvas.SetMode(interaction.ModeBoundingBox)
	c.PreviewPres = presenter.NewPreviewPresenter(c.Session, c.Effects, c.Scheduler, heavy, c.Canvas, c.Logger)
	c.EffectPres = presenter.NewEffectPresenter(c.Session, c.Effects, c.Scheduler, c.PreviewPres, c.Canvas, v.Effects, v.Status, c.Logger)
	c.MaskPresenter = presenter.NewMaskPresenter(c.Session.Selection(), c.MaskList, v.Masks, c.Canvas, c.PreviewPres.Refresh)
	c.ImagePresenter = presenter.NewImagePresenter(c.Session, c.Provider, c.MaskPresenter, c.EffectPres, c.PreviewPres, c.Canvas, v.Status, c.Logger)
	c.Loop = presenter.NewLoop(c.ImagePresenter, c.EffectPres, c.PreviewPres, c.MaskPresenter, c.Canvas, after)
	c.EffectPres.Refresh()
	c.MaskPresenter.Populate()
	return c.Loop
}

// PipelineAttrs reports preview scheduler counters for the debug logger.
func (c *AppContainer) PipelineAttrs() []slog.Attr {
	st := c.Scheduler.Stats()
	return []slog.Attr{
		slog.Uint64("preview_scheduled", st.Scheduled),
		slog.Uint64("preview_started", st.Started),
		slog.Uint64("preview_cancelled", st.Cancelled),
		slog.Uint64("preview_published", st.Published),
		slog.Uint64("preview_failed", st.Failed),
		slog.Int("masks", c.Session.Selection().Len()),
		slog.Int("boxes", c.Session.Store().Len()),
	}
}

// Close stops background work.
func (c *AppContainer) Close() {
	if c.EffectPres != nil {
		c.EffectPres.Abort()
	}
	if c.Scheduler != nil {
		c.Scheduler.Close()
	}
}
