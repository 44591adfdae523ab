package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/soocke/vision-edit-go/domain/annotation"
	"github.com/soocke/vision-edit-go/domain/effect"
	"github.com/soocke/vision-edit-go/domain/interaction"
	"github.com/soocke/vision-edit-go/domain/mask"
	"github.com/soocke/vision-edit-go/domain/preview"
	"github.com/soocke/vision-edit-go/domain/segment"
	"github.com/soocke/vision-edit-go/domain/source"
	"github.com/soocke/vision-edit-go/domain/viewport"
)

var (
	// ErrNoImage is returned by operations that need a loaded image.
	ErrNoImage = errors.New("session: no image loaded")
	// ErrEmptyPrompt is returned when segmentation has neither text nor boxes to work with.
	ErrEmptyPrompt = errors.New("session: empty segmentation prompt")
)

// ImageListener is called after a new image replaced the session content.
type ImageListener func(name string, size viewport.Size)

// Session owns the image being edited together with its masks, boxes and applied-effect log.
// It is confined to the UI goroutine; work handed to other goroutines carries the epoch it
// was started under so results for a replaced image can be recognized and dropped.
type Session struct {
	logger *slog.Logger

	src      source.Source
	original image.Image
	working  image.Image
	preview  image.Image
	showOrig bool
	epoch    uint64
	applied  []string

	store   *annotation.Store
	masks   *mask.Selection
	vp      *viewport.Viewport
	machine *interaction.Machine

	listeners []ImageListener
}

// New builds an empty session and the interaction machine that edits it.
func New(logger *slog.Logger, opts interaction.Options, vp *viewport.Viewport) *Session {
	if vp == nil {
		vp = viewport.New(0, 0)
	}
	s := &Session{logger: logger, store: annotation.NewStore(), masks: mask.NewSelection(), vp: vp}
	s.machine = interaction.NewMachine(logger, opts, s.store, s.masks, vp)
	return s
}

func (s *Session) Store() *annotation.Store      { return s.store }
func (s *Session) Selection() *mask.Selection    { return s.masks }
func (s *Session) Machine() *interaction.Machine { return s.machine }
func (s *Session) Viewport() *viewport.Viewport  { return s.vp }
func (s *Session) Source() source.Source         { return s.src }
func (s *Session) Epoch() uint64                 { return s.epoch }
func (s *Session) HasImage() bool                { return s.working != nil }
func (s *Session) Working() image.Image          { return s.working }
func (s *Session) Original() image.Image         { return s.original }
func (s *Session) Preview() image.Image          { return s.preview }
func (s *Session) ShowingOriginal() bool         { return s.showOrig }

// AddImageListener registers l for image loads.
func (s *Session) AddImageListener(l ImageListener) {
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
}

// ImageSize returns the working image size, or zero without an image.
func (s *Session) ImageSize() viewport.Size {
	if s.working == nil {
		return viewport.Size{}
	}
	b := s.working.Bounds()
	return viewport.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

// LoadImage replaces the session content with the image from src. On failure the
// current content is left untouched.
func (s *Session) LoadImage(src source.Source) error {
	if src == nil {
		return errors.New("session: nil source")
	}
	img, err := src.Load()
	if err != nil {
		return fmt.Errorf("session: load %s: %w", src.Name(), err)
	}
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("session: load %s: empty image", src.Name())
	}
	s.install(src, img)
	return nil
}

func (s *Session) install(src source.Source, img image.Image) {
	s.src = src
	s.original = img
	s.working = img
	s.preview = nil
	s.showOrig = false
	s.applied = nil
	s.epoch++
	s.masks.Clear()
	s.store.Clear()
	size := s.ImageSize()
	s.machine.Load(size)
	if s.logger != nil {
		s.logger.Info("image loaded", "source", src.Name(), "width", size.W, "height", size.H)
	}
	for _, l := range s.listeners {
		l(src.Name(), size)
	}
}

// SegmentJob is a snapshot of what a segmentation provider needs. Run may be called from
// any goroutine; the result goes back through AcceptSegmentation.
type SegmentJob struct {
	Epoch  uint64
	Image  image.Image
	Prompt string
	Boxes  []viewport.Rect
	Labels []bool
}

// NewSegmentJob snapshots the working image for the provider. In box mode the annotated
// boxes are the prompt; in the other modes the text prompt is.
func (s *Session) NewSegmentJob(prompt string) (SegmentJob, error) {
	if s.working == nil {
		return SegmentJob{}, ErrNoImage
	}
	job := SegmentJob{Epoch: s.epoch, Image: s.working}
	if s.machine.Mode() == interaction.ModeBoundingBox {
		job.Boxes, job.Labels = s.store.Prompt()
		if len(job.Boxes) == 0 {
			return SegmentJob{}, ErrEmptyPrompt
		}
		return job, nil
	}
	job.Prompt = strings.TrimSpace(prompt)
	if job.Prompt == "" {
		return SegmentJob{}, ErrEmptyPrompt
	}
	return job, nil
}

// Run asks p for masks.
func (j SegmentJob) Run(ctx context.Context, p segment.Provider) (*segment.Result, error) {
	if p == nil {
		return nil, errors.New("session: no segmentation provider")
	}
	if j.Prompt != "" {
		return p.SegmentText(ctx, j.Image, j.Prompt)
	}
	return p.SegmentBoxes(ctx, j.Image, j.Boxes, j.Labels)
}

// AcceptSegmentation installs res as the mask set if it still belongs to the current image.
// An empty result is a no-op. It returns the number of installed masks.
func (s *Session) AcceptSegmentation(epoch uint64, res *segment.Result) (int, error) {
	if epoch != s.epoch || s.working == nil {
		return 0, nil
	}
	if res.Empty() {
		return 0, nil
	}
	ms, err := res.ToMasks()
	if err != nil {
		return 0, fmt.Errorf("session: segmentation: %w", err)
	}
	if len(ms) == 0 {
		return 0, nil
	}
	s.masks.SetMasks(ms)
	s.preview = nil
	if s.logger != nil {
		s.logger.Info("segmentation installed", "masks", len(ms))
	}
	return len(ms), nil
}

// SetSegmentation installs res for the current image.
func (s *Session) SetSegmentation(res *segment.Result) (int, error) {
	return s.AcceptSegmentation(s.epoch, res)
}

// PreviewRequest builds a preview snapshot for id. It reports false when there is no image
// or no selected mask, in which case no preview should be shown.
func (s *Session) PreviewRequest(id effect.ID, params effect.Params, heavy bool) (preview.Request, bool) {
	if s.working == nil || !s.masks.Any() {
		return preview.Request{}, false
	}
	return preview.Request{
		Effect: id,
		Heavy:  heavy,
		Params: params,
		Masks:  s.masks.Selected(),
		Source: s.working,
	}, true
}

// SetPreview shows img instead of the working image until it is cleared.
func (s *Session) SetPreview(img image.Image) { s.preview = img }

// ClearPreview drops the preview image.
func (s *Session) ClearPreview() { s.preview = nil }

// AdoptCommitted replaces the working image with a committed result and logs the effect.
// Results for a replaced image, and nil results, are ignored.
func (s *Session) AdoptCommitted(epoch uint64, img image.Image, id effect.ID) bool {
	if epoch != s.epoch || img == nil || s.working == nil {
		return false
	}
	s.working = img
	s.preview = nil
	s.applied = append(s.applied, effect.DisplayName(id))
	if s.logger != nil {
		s.logger.Info("effect applied", "effect", id, "applied", len(s.applied))
	}
	return true
}

// AppliedEffects returns the display names of committed effects in order.
func (s *Session) AppliedEffects() []string { return append([]string(nil), s.applied...) }

// ResetAll puts the originally loaded pixels back and starts over as after a fresh load:
// masks, boxes, zoom and pan and the applied-effect log are cleared. The source is not read
// again, so a screenshot resets to the capture it started from.
func (s *Session) ResetAll() error {
	if s.src == nil || s.original == nil {
		return ErrNoImage
	}
	s.install(s.src, s.original)
	return nil
}

// ClearMasks drops the segmentation result and any preview built from it. Boxes stay.
func (s *Session) ClearMasks() {
	s.masks.Clear()
	s.preview = nil
	if s.logger != nil {
		s.logger.Info("masks cleared")
	}
}

// ToggleShowOriginal flips between the original and the edited image.
func (s *Session) ToggleShowOriginal() bool {
	s.showOrig = !s.showOrig
	return s.showOrig
}

// DisplayImage returns what the canvas should show: the original when requested, else the
// preview if one is set, else the working image.
func (s *Session) DisplayImage() image.Image {
	switch {
	case s.working == nil:
		return nil
	case s.showOrig:
		return s.original
	case s.preview != nil:
		return s.preview
	default:
		return s.working
	}
}
