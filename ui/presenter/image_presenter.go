package presenter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/vision-edit-go/domain/segment"
	"github.com/soocke/vision-edit-go/domain/session"
	"github.com/soocke/vision-edit-go/domain/source"
)

// DefaultSegmentTimeout bounds one segmentation request.
const DefaultSegmentTimeout = 30 * time.Second

type segmentResult struct {
	epoch uint64
	res   *segment.Result
	err   error
}

// ImagePresenter loads images and runs segmentation. Provider calls run off the UI goroutine
// and are installed on Tick; results for an image that was replaced meanwhile are dropped.
type ImagePresenter struct {
	session  *session.Session
	provider segment.Provider
	masks    *MaskPresenter
	effects  *EffectPresenter
	preview  *PreviewPresenter
	canvas   Invalidator
	status   StatusView
	logger   *slog.Logger
	timeout  time.Duration

	resultCh   chan segmentResult
	segmenting bool
}

func NewImagePresenter(s *session.Session, provider segment.Provider, masks *MaskPresenter, effects *EffectPresenter, preview *PreviewPresenter, canvas Invalidator, status StatusView, logger *slog.Logger) *ImagePresenter {
	return &ImagePresenter{
		session:  s,
		provider: provider,
		masks:    masks,
		effects:  effects,
		preview:  preview,
		canvas:   canvas,
		status:   status,
		logger:   logger,
		timeout:  DefaultSegmentTimeout,
		resultCh: make(chan segmentResult, 1),
	}
}

// OpenFile loads the image at path.
func (p *ImagePresenter) OpenFile(path string) error {
	if p == nil {
		return nil
	}
	src, err := source.NewFileSource(path)
	if err != nil {
		p.fail("open", err)
		return err
	}
	return p.load(src)
}

// CaptureScreen loads a screenshot of region, or of the whole primary display when region is nil.
func (p *ImagePresenter) CaptureScreen(region *image.Rectangle) error {
	if p == nil {
		return nil
	}
	return p.load(&source.ScreenSource{Region: region})
}

// Load replaces the session image with the one from src.
func (p *ImagePresenter) Load(src source.Source) error {
	if p == nil {
		return nil
	}
	return p.load(src)
}

func (p *ImagePresenter) load(src source.Source) error {
	if err := p.session.LoadImage(src); err != nil {
		p.fail("load", err)
		return err
	}
	p.effects.Abort()
	p.reloaded()
	size := p.session.ImageSize()
	p.showStatus(fmt.Sprintf("%s (%dx%d)", src.Name(), int(size.W), int(size.H)))
	return nil
}

// ResetAll goes back to the image as it was first loaded, dropping applied effects,
// masks and boxes.
func (p *ImagePresenter) ResetAll() {
	if p == nil {
		return
	}
	if err := p.session.ResetAll(); err != nil {
		p.fail("reset all", err)
		return
	}
	p.effects.Abort()
	p.reloaded()
	p.showStatus("Image reset")
}

// ClearMasks drops the current segmentation result. Boxes are kept for the next run.
func (p *ImagePresenter) ClearMasks() {
	if p == nil || p.session.Selection().Len() == 0 {
		return
	}
	p.session.ClearMasks()
	p.masks.Populate()
	p.preview.Refresh()
	p.showStatus("Masks cleared")
	p.invalidate()
}

func (p *ImagePresenter) reloaded() {
	p.preview.Refresh()
	p.masks.Populate()
	p.effects.Refresh()
	p.invalidate()
}

// Segment asks the provider for masks: from the drawn boxes in box mode, else from prompt.
func (p *ImagePresenter) Segment(prompt string) {
	if p == nil || p.segmenting {
		return
	}
	if p.provider == nil {
		p.showStatus("No segmentation provider configured")
		return
	}
	job, err := p.session.NewSegmentJob(prompt)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoImage):
			p.showStatus("Open an image first")
		case errors.Is(err, session.ErrEmptyPrompt):
			p.showStatus("Draw a box or enter a prompt")
		default:
			p.fail("segment", err)
		}
		return
	}
	p.segmenting = true
	p.showStatus("Segmenting...")
	go func() {
		defer recoverLog(p.logger, "segment goroutine panic")
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		res, err := job.Run(ctx, p.provider)
		p.resultCh <- segmentResult{epoch: job.Epoch, res: res, err: err}
	}()
}

// Segmenting reports whether a provider call is in flight.
func (p *ImagePresenter) Segmenting() bool { return p != nil && p.segmenting }

// Tick installs a finished segmentation.
func (p *ImagePresenter) Tick() {
	if p == nil {
		return
	}
	select {
	case r := <-p.resultCh:
		p.segmenting = false
		p.handleSegmentation(r)
	default:
	}
}

func (p *ImagePresenter) handleSegmentation(r segmentResult) {
	if r.err != nil {
		p.fail("segment", r.err)
		return
	}
	n, err := p.session.AcceptSegmentation(r.epoch, r.res)
	if err != nil {
		p.fail("segment", err)
		return
	}
	if n == 0 {
		p.showStatus("No masks found")
		return
	}
	p.masks.Populate()
	p.preview.Refresh()
	p.showStatus(fmt.Sprintf("%d masks", n))
	p.invalidate()
}

func (p *ImagePresenter) fail(op string, err error) {
	if p.logger != nil {
		p.logger.Error(op, "error", err)
	}
	p.showStatus(err.Error())
}

func (p *ImagePresenter) showStatus(text string) {
	if p.status != nil {
		p.status.ShowStatus(text)
	}
}

func (p *ImagePresenter) invalidate() {
	if p.canvas != nil {
		p.canvas.Invalidate()
	}
}
