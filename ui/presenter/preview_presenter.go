package presenter

import (
	"context"
	"image"
	"log/slog"

	"github.com/soocke/vision-edit-go/domain/effect"
	"github.com/soocke/vision-edit-go/domain/preview"
	"github.com/soocke/vision-edit-go/domain/session"
	"github.com/soocke/vision-edit-go/ui/model"
)

// Previewer is the part of the preview scheduler the presenters drive.
type Previewer interface {
	Schedule(req preview.Request) uint64
	Cancel()
	Poll() (preview.Result, bool)
	Commit(ctx context.Context, req preview.Request) (image.Image, error)
}

// PreviewPresenter keeps the live preview in step with the active effect, its parameters and
// the mask selection. Finished previews are picked up on Tick.
type PreviewPresenter struct {
	session   *session.Session
	effects   *model.EffectModel
	scheduler Previewer
	heavy     func(effect.ID) bool
	canvas    Invalidator
	logger    *slog.Logger

	lastGeneration uint64
}

// NewPreviewPresenter subscribes to effect changes. heavy may be nil, in which case the
// catalog flag decides.
func NewPreviewPresenter(s *session.Session, effects *model.EffectModel, scheduler Previewer, heavy func(effect.ID) bool, canvas Invalidator, logger *slog.Logger) *PreviewPresenter {
	if heavy == nil {
		heavy = func(id effect.ID) bool {
			info, ok := effect.Lookup(id)
			return ok && info.Heavy
		}
	}
	p := &PreviewPresenter{session: s, effects: effects, scheduler: scheduler, heavy: heavy, canvas: canvas, logger: logger}
	effects.OnChange(func(effect.ID) { p.Refresh() })
	return p
}

// Refresh requests a new preview for the current state, or clears the preview when there is
// no active effect, no image, or no selected mask.
func (p *PreviewPresenter) Refresh() {
	if p == nil || p.scheduler == nil {
		return
	}
	id, active := p.effects.Active()
	if !active {
		p.clear()
		return
	}
	req, ok := p.session.PreviewRequest(id, p.effects.Params(id), p.heavy(id))
	if !ok {
		p.clear()
		return
	}
	p.lastGeneration = p.scheduler.Schedule(req)
}

// Tick hands a finished preview to the session.
func (p *PreviewPresenter) Tick() {
	if p == nil || p.scheduler == nil {
		return
	}
	res, ok := p.scheduler.Poll()
	if !ok {
		return
	}
	if res.Generation != p.lastGeneration {
		return
	}
	p.session.SetPreview(res.Image)
	if p.canvas != nil {
		p.canvas.Invalidate()
	}
	if p.logger != nil {
		p.logger.Debug("preview shown", "effect", res.Effect, "generation", res.Generation, "elapsed", res.Elapsed, "scaled", res.Scaled)
	}
}

func (p *PreviewPresenter) clear() {
	p.scheduler.Cancel()
	if p.session.Preview() != nil {
		p.session.ClearPreview()
		if p.canvas != nil {
			p.canvas.Invalidate()
		}
	}
}
