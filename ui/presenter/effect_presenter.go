package presenter

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"time"

	"github.com/soocke/vision-edit-go/domain/effect"
	"github.com/soocke/vision-edit-go/domain/session"
	"github.com/soocke/vision-edit-go/ui/model"
)

// EffectView shows the effect panel.
type EffectView interface {
	ShowEffect(info effect.Info, params effect.Params, active bool)
	ShowApplied(names []string)
	ShowBusy(busy bool)
}

// StatusView shows one line of status text.
type StatusView interface {
	ShowStatus(text string)
}

type commitResult struct {
	epoch   uint64
	id      effect.ID
	img     image.Image
	err     error
	elapsed time.Duration
}

// EffectPresenter handles effect selection, parameter edits, Apply and the reset actions.
// Apply runs the full-resolution fold off the UI goroutine; the result is adopted on Tick.
type EffectPresenter struct {
	session   *session.Session
	effects   *model.EffectModel
	scheduler Previewer
	preview   *PreviewPresenter
	canvas    Invalidator
	view      EffectView
	status    StatusView
	logger    *slog.Logger

	resultCh chan commitResult
	cancel   context.CancelFunc
	applying bool
}

func NewEffectPresenter(s *session.Session, effects *model.EffectModel, scheduler Previewer, preview *PreviewPresenter, canvas Invalidator, view EffectView, status StatusView, logger *slog.Logger) *EffectPresenter {
	p := &EffectPresenter{
		session:   s,
		effects:   effects,
		scheduler: scheduler,
		preview:   preview,
		canvas:    canvas,
		view:      view,
		status:    status,
		logger:    logger,
		resultCh:  make(chan commitResult, 1),
	}
	effects.OnChange(func(effect.ID) { p.showEffect() })
	return p
}

// Select toggles id as the active effect.
func (p *EffectPresenter) Select(id effect.ID) {
	if p != nil {
		p.effects.Toggle(id)
	}
}

// Nudge steps a numeric parameter of the active effect.
func (p *EffectPresenter) Nudge(name string, steps int) {
	if p != nil {
		p.effects.Nudge(name, steps)
	}
}

// SetNumber stores a typed-in value for a numeric parameter.
func (p *EffectPresenter) SetNumber(name string, v float64) {
	if p != nil {
		p.effects.SetNumber(name, v)
	}
}

// ToggleFlag flips a boolean parameter.
func (p *EffectPresenter) ToggleFlag(name string) {
	if p != nil {
		p.effects.ToggleFlag(name)
	}
}

// SetColor stores a color parameter.
func (p *EffectPresenter) SetColor(name string, c color.NRGBA) {
	if p != nil {
		p.effects.SetColor(name, c)
	}
}

// ResetCurrent restores the active effect's defaults.
func (p *EffectPresenter) ResetCurrent() {
	if p != nil {
		p.effects.ResetCurrent()
	}
}

// Apply commits the active effect at full resolution. Requests while a commit is running,
// or without an active effect and selected mask, are ignored.
func (p *EffectPresenter) Apply() {
	if p == nil || p.applying || p.scheduler == nil {
		return
	}
	id, ok := p.effects.Active()
	if !ok {
		p.showStatus("Select an effect first")
		return
	}
	req, ok := p.session.PreviewRequest(id, p.effects.Params(id), false)
	if !ok {
		p.showStatus("Select at least one mask")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.applying = true
	if p.view != nil {
		p.view.ShowBusy(true)
	}
	epoch := p.session.Epoch()
	go func() {
		defer recoverLog(p.logger, "apply goroutine panic")
		start := time.Now()
		img, err := p.scheduler.Commit(ctx, req)
		p.deliver(commitResult{epoch: epoch, id: id, img: img, err: err, elapsed: time.Since(start)})
	}()
}

// Abort cancels a running commit; its result is discarded.
func (p *EffectPresenter) Abort() {
	if p != nil && p.cancel != nil {
		p.cancel()
	}
}

// Applying reports whether a commit is in flight.
func (p *EffectPresenter) Applying() bool { return p != nil && p.applying }

// Tick adopts a finished commit.
func (p *EffectPresenter) Tick() {
	if p == nil {
		return
	}
	select {
	case res := <-p.resultCh:
		p.handleResult(res)
	default:
	}
}

// Refresh redraws the panel from the model and the session.
func (p *EffectPresenter) Refresh() {
	if p == nil {
		return
	}
	p.showEffect()
	p.showApplied()
}

func (p *EffectPresenter) handleResult(res commitResult) {
	p.applying = false
	p.cancel = nil
	if p.view != nil {
		p.view.ShowBusy(false)
	}
	if errors.Is(res.err, context.Canceled) {
		return
	}
	if res.err != nil {
		if p.logger != nil {
			p.logger.Error("apply effect", "effect", res.id, "error", res.err)
		}
		p.showStatus("Apply failed")
		return
	}
	if !p.session.AdoptCommitted(res.epoch, res.img, res.id) {
		return
	}
	if p.logger != nil {
		p.logger.Info("effect committed", "effect", res.id, "elapsed", res.elapsed)
	}
	p.showApplied()
	p.showStatus("Applied " + effect.DisplayName(res.id))
	p.preview.Refresh()
	if p.canvas != nil {
		p.canvas.Invalidate()
	}
}

// deliver replaces any unread result with res.
func (p *EffectPresenter) deliver(res commitResult) {
	select {
	case p.resultCh <- res:
	default:
		select {
		case <-p.resultCh:
		default:
		}
		select {
		case p.resultCh <- res:
		default:
		}
	}
}

func (p *EffectPresenter) showEffect() {
	if p.view == nil {
		return
	}
	id, active := p.effects.Active()
	info, _ := effect.Lookup(id)
	p.view.ShowEffect(info, p.effects.Params(id), active)
}

func (p *EffectPresenter) showApplied() {
	if p.view != nil {
		p.view.ShowApplied(p.session.AppliedEffects())
	}
}

func (p *EffectPresenter) showStatus(text string) {
	if p.status != nil {
		p.status.ShowStatus(text)
	}
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}
