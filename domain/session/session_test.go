package session

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/soocke/vision-edit-go/domain/annotation"
	"github.com/soocke/vision-edit-go/domain/effect"
	"github.com/soocke/vision-edit-go/domain/interaction"
	"github.com/soocke/vision-edit-go/domain/segment"
	"github.com/soocke/vision-edit-go/domain/source"
	"github.com/soocke/vision-edit-go/domain/viewport"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// fakeSource counts loads and can be told to fail.
type fakeSource struct {
	name  string
	img   image.Image
	err   error
	loads int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Load() (image.Image, error) {
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func oneMaskResult(w, h int) *segment.Result {
	return &segment.Result{Masks: []*mat.Dense{mat.NewDense(h, w, nil)}, Scores: []float64{0.8}}
}

func loaded(t *testing.T) (*Session, *fakeSource) {
	t.Helper()
	s := New(discardLogger, interaction.DefaultOptions(), nil)
	src := &fakeSource{name: "cat.png", img: solid(40, 20, color.NRGBA{R: 10, A: 255})}
	if err := s.LoadImage(src); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s, src
}

func TestLoadImage_ResetsEverything(t *testing.T) {
	s, _ := loaded(t)
	var notified []string
	s.AddImageListener(func(name string, size viewport.Size) { notified = append(notified, name) })
	s.Store().Add(annotation.Box{Rect: viewport.Rect{W: 5, H: 5}, Label: annotation.Foreground})
	if _, err := s.SetSegmentation(oneMaskResult(40, 20)); err != nil {
		t.Fatal(err)
	}
	s.Selection().Toggle(0)
	s.SetPreview(solid(40, 20, color.NRGBA{A: 255}))
	s.Viewport().ZoomBy(3, viewport.Point{}, viewport.Size{W: 100, H: 100})
	epoch := s.Epoch()

	next := &fakeSource{name: "dog.png", img: solid(8, 8, color.NRGBA{A: 255})}
	if err := s.LoadImage(next); err != nil {
		t.Fatal(err)
	}
	if s.Store().Len() != 0 || s.Selection().Len() != 0 || s.Preview() != nil {
		t.Fatalf("load must clear boxes, masks and preview")
	}
	if s.Viewport().Zoom != 1 || s.Epoch() == epoch || s.ImageSize() != (viewport.Size{W: 8, H: 8}) {
		t.Fatalf("unexpected state zoom=%v epoch=%d size=%v", s.Viewport().Zoom, s.Epoch(), s.ImageSize())
	}
	if len(notified) != 1 || notified[0] != "dog.png" {
		t.Fatalf("listener got=%v", notified)
	}
}

func TestLoadImage_FailureLeavesStateUntouched(t *testing.T) {
	s, src := loaded(t)
	before := s.Working()
	epoch := s.Epoch()
	bad := &fakeSource{name: "bad.png", err: source.ErrUnsupportedFormat}
	err := s.LoadImage(bad)
	if !errors.Is(err, source.ErrUnsupportedFormat) {
		t.Fatalf("expected wrapped source error, got=%v", err)
	}
	if s.Working() != before || s.Source() != src || s.Epoch() != epoch {
		t.Fatalf("failed load modified the session")
	}
	if err := s.LoadImage(&fakeSource{name: "empty", img: image.NewNRGBA(image.Rect(0, 0, 0, 0))}); err == nil {
		t.Fatalf("expected error for empty image")
	}
}

func TestSegmentation_NoOpsAndStaleEpoch(t *testing.T) {
	s, _ := loaded(t)
	if n, err := s.SetSegmentation(nil); n != 0 || err != nil {
		t.Fatalf("nil result must be a no-op, got n=%d err=%v", n, err)
	}
	if n, _ := s.SetSegmentation(&segment.Result{}); n != 0 || s.Selection().Len() != 0 {
		t.Fatalf("empty result must be a no-op")
	}
	if n, _ := s.AcceptSegmentation(s.Epoch()-1, oneMaskResult(40, 20)); n != 0 {
		t.Fatalf("stale result installed")
	}
	n, err := s.SetSegmentation(oneMaskResult(10, 5))
	if err != nil || n != 1 || s.Selection().Len() != 1 {
		t.Fatalf("expected one mask, n=%d err=%v", n, err)
	}
	if s.Selection().Masks()[0].Color.A != 255 {
		t.Fatalf("mask color not assigned")
	}
}

func TestSegmentJob_BoxesRoundTrip(t *testing.T) {
	s := New(discardLogger, interaction.DefaultOptions(), nil)
	if _, err := s.NewSegmentJob(""); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got=%v", err)
	}
	if err := s.LoadImage(&fakeSource{name: "a", img: solid(20, 20, color.NRGBA{A: 255})}); err != nil {
		t.Fatal(err)
	}
	s.Machine().SetMode(interaction.ModeBoundingBox)
	if _, err := s.NewSegmentJob("ignored in box mode"); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got=%v", err)
	}
	s.Store().Add(annotation.Box{Rect: viewport.Rect{X: 2, Y: 2, W: 8, H: 8}, Label: annotation.Foreground})
	job, err := s.NewSegmentJob("")
	if err != nil {
		t.Fatal(err)
	}
	res, err := job.Run(context.Background(), &segment.BoxProvider{})
	if err != nil {
		t.Fatal(err)
	}
	if n, err := s.AcceptSegmentation(job.Epoch, res); n != 1 || err != nil {
		t.Fatalf("accept got n=%d err=%v", n, err)
	}
	if !s.Selection().Masks()[0].Contains(viewport.Point{X: 5, Y: 5}, s.ImageSize()) {
		t.Fatalf("mask should cover the box")
	}
	if job.Prompt != "" {
		t.Fatalf("box job must not carry text, got=%q", job.Prompt)
	}
	if _, err := (SegmentJob{Prompt: "cat"}).Run(context.Background(), &segment.BoxProvider{}); !errors.Is(err, segment.ErrTextUnsupported) {
		t.Fatalf("text prompt should reach SegmentText, got=%v", err)
	}
}

func TestPreviewRequest_NeedsSelection(t *testing.T) {
	s, _ := loaded(t)
	if _, ok := s.PreviewRequest(effect.Grayscale, effect.NewParams(), false); ok {
		t.Fatalf("no masks: request must not be built")
	}
	s.SetSegmentation(oneMaskResult(40, 20))
	if _, ok := s.PreviewRequest(effect.Grayscale, effect.NewParams(), false); ok {
		t.Fatalf("no selection: request must not be built")
	}
	s.Selection().Toggle(0)
	req, ok := s.PreviewRequest(effect.Artistic, effect.NewParams(), true)
	if !ok || len(req.Masks) != 1 || req.Source != s.Working() || !req.Heavy || req.Effect != effect.Artistic {
		t.Fatalf("unexpected request %+v ok=%v", req, ok)
	}
}

func TestCommitAndResetAll(t *testing.T) {
	s, src := loaded(t)
	s.SetSegmentation(oneMaskResult(40, 20))
	s.Selection().Toggle(0)
	epoch := s.Epoch()
	edited := solid(40, 20, color.NRGBA{G: 200, A: 255})
	if !s.AdoptCommitted(epoch, edited, effect.Grayscale) {
		t.Fatalf("commit rejected")
	}
	if s.AdoptCommitted(epoch, nil, effect.Grayscale) || s.AdoptCommitted(epoch+7, edited, effect.Grayscale) {
		t.Fatalf("nil or stale commit accepted")
	}
	s.AdoptCommitted(epoch, edited, effect.PixelBlur)
	got := s.AppliedEffects()
	if len(got) != 2 || got[0] != effect.DisplayName(effect.Grayscale) || got[1] != effect.DisplayName(effect.PixelBlur) {
		t.Fatalf("applied log got=%v", got)
	}
	if s.Working() != image.Image(edited) || s.Original() == image.Image(edited) {
		t.Fatalf("working image not replaced")
	}

	s.Store().Add(annotation.Box{Rect: viewport.Rect{X: 2, Y: 2, W: 8, H: 8}, Label: annotation.Foreground})
	s.Viewport().ZoomBy(3, viewport.Point{}, viewport.Size{W: 80, H: 40})

	// A live source would return different pixels now.
	src.img = solid(40, 20, color.NRGBA{R: 100, A: 255})
	if err := s.ResetAll(); err != nil {
		t.Fatal(err)
	}
	if src.loads != 1 {
		t.Fatalf("reset must not read the source again, loads=%d", src.loads)
	}
	r, _, _, _ := s.Working().At(0, 0).RGBA()
	if r>>8 != 10 || s.Working() != s.Original() {
		t.Fatalf("expected original pixels restored, R=%d", r>>8)
	}
	if len(s.AppliedEffects()) != 0 || s.Epoch() == epoch {
		t.Fatalf("reset must clear the log and bump the epoch, applied=%v", s.AppliedEffects())
	}
	if s.Selection().Len() != 0 || s.Store().Len() != 0 {
		t.Fatalf("reset must clear masks and boxes, masks=%d boxes=%d", s.Selection().Len(), s.Store().Len())
	}
	if vp := s.Viewport(); vp.Zoom != 1 || vp.Pan != (viewport.Point{}) {
		t.Fatalf("reset must restore zoom and pan, zoom=%v pan=%v", vp.Zoom, vp.Pan)
	}
}

func TestClearMasks(t *testing.T) {
	s, _ := loaded(t)
	s.SetSegmentation(oneMaskResult(40, 20))
	s.Selection().Toggle(0)
	s.Store().Add(annotation.Box{Rect: viewport.Rect{X: 2, Y: 2, W: 8, H: 8}, Label: annotation.Foreground})
	s.SetPreview(solid(40, 20, color.NRGBA{B: 1, A: 255}))
	s.ClearMasks()
	if s.Selection().Len() != 0 || s.Selection().Any() || s.Preview() != nil {
		t.Fatalf("expected masks and preview cleared, masks=%d", s.Selection().Len())
	}
	if s.Store().Len() != 1 {
		t.Fatalf("boxes should survive, got=%d", s.Store().Len())
	}
	if _, ok := s.PreviewRequest(effect.Grayscale, effect.NewParams(), false); ok {
		t.Fatalf("no preview without masks")
	}
}

func TestDisplayImage_Precedence(t *testing.T) {
	s := New(nil, interaction.Options{}, nil)
	if s.DisplayImage() != nil {
		t.Fatalf("no image: nothing to display")
	}
	if err := s.ResetAll(); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got=%v", err)
	}
	orig := solid(4, 4, color.NRGBA{A: 255})
	s.LoadImage(&fakeSource{name: "o", img: orig})
	prev := solid(4, 4, color.NRGBA{B: 9, A: 255})
	s.SetPreview(prev)
	if s.DisplayImage() != image.Image(prev) {
		t.Fatalf("preview should be displayed")
	}
	if !s.ToggleShowOriginal() || s.DisplayImage() != image.Image(orig) {
		t.Fatalf("original should be displayed")
	}
	s.ToggleShowOriginal()
	s.ClearPreview()
	if s.DisplayImage() != image.Image(orig) || s.ShowingOriginal() {
		t.Fatalf("working image should be displayed")
	}
}

func TestSegmentJob_TextModes(t *testing.T) {
	s, _ := loaded(t)
	s.Store().Add(annotation.Box{Rect: viewport.Rect{X: 2, Y: 2, W: 8, H: 8}, Label: annotation.Foreground})
	for _, mode := range []interaction.Mode{interaction.ModePrompt, interaction.ModeNone} {
		s.Machine().SetMode(mode)
		if _, err := s.NewSegmentJob("   "); !errors.Is(err, ErrEmptyPrompt) {
			t.Fatalf("mode=%v: blank prompt got=%v", mode, err)
		}
		job, err := s.NewSegmentJob(" a cat ")
		if err != nil {
			t.Fatalf("mode=%v: %v", mode, err)
		}
		if job.Prompt != "a cat" || len(job.Boxes) != 0 {
			t.Fatalf("mode=%v: expected text job, got=%+v", mode, job)
		}
	}
}
