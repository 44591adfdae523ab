package presenter

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/soocke/vision-edit-go/domain/effect"
	"github.com/soocke/vision-edit-go/domain/interaction"
	"github.com/soocke/vision-edit-go/domain/preview"
	"github.com/soocke/vision-edit-go/domain/segment"
	"github.com/soocke/vision-edit-go/domain/session"
	"github.com/soocke/vision-edit-go/domain/source"
	"github.com/soocke/vision-edit-go/ui/model"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

type mockCanvasView struct {
	frames  int
	last    image.Image
	cursors []interaction.Cursor
}

func (v *mockCanvasView) ShowFrame(img image.Image) {
	v.frames++
	v.last = img
}

func (v *mockCanvasView) SetCursor(c interaction.Cursor) { v.cursors = append(v.cursors, c) }

type mockInvalidator struct{ calls int }

func (m *mockInvalidator) Invalidate() { m.calls++ }

type mockMaskView struct {
	calls int
	rows  []model.MaskRow
}

func (v *mockMaskView) ShowMasks(rows []model.MaskRow) {
	v.calls++
	v.rows = rows
}

type mockEffectView struct {
	effects []effect.ID
	active  bool
	applied []string
	busy    []bool
}

func (v *mockEffectView) ShowEffect(info effect.Info, params effect.Params, active bool) {
	v.effects = append(v.effects, info.ID)
	v.active = active
}

func (v *mockEffectView) ShowApplied(names []string) { v.applied = names }
func (v *mockEffectView) ShowBusy(busy bool)         { v.busy = append(v.busy, busy) }

type mockStatus struct{ last string }

func (s *mockStatus) ShowStatus(text string) { s.last = text }

// mockScheduler records calls; Commit returns commitImg unless commitErr is set. With block
// set, Commit waits for it to close or for ctx to end.
type mockScheduler struct {
	mu        sync.Mutex
	scheduled []preview.Request
	cancels   int
	gen       uint64
	pending   *preview.Result
	commitImg image.Image
	commitErr error
	commits   int
	block     chan struct{}
}

func (s *mockScheduler) Schedule(req preview.Request) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.scheduled = append(s.scheduled, req)
	return s.gen
}

func (s *mockScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cancels++
}

func (s *mockScheduler) Poll() (preview.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return preview.Result{}, false
	}
	res := *s.pending
	s.pending = nil
	return res, true
}

func (s *mockScheduler) Commit(ctx context.Context, req preview.Request) (image.Image, error) {
	s.mu.Lock()
	s.commits++
	img, err, block := s.commitImg, s.commitErr, s.block
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (s *mockScheduler) counts() (scheduled, cancels int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scheduled), s.cancels
}

func (s *mockScheduler) publish(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &preview.Result{Generation: s.gen, Image: img}
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// fullMask returns a segmentation covering the whole 200x100 test image.
func fullMask(n int) *segment.Result {
	res := &segment.Result{}
	for i := 0; i < n; i++ {
		g := mat.NewDense(10, 20, nil)
		for r := 0; r < 10; r++ {
			for c := 0; c < 20; c++ {
				g.Set(r, c, 1)
			}
		}
		res.Masks = append(res.Masks, g)
		res.Scores = append(res.Scores, 0.9)
	}
	return res
}

// newTestSession loads a 200x100 image into a 400x200 canvas.
func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(discardLogger, interaction.DefaultOptions(), nil)
	s.Machine().SetViewSize(400, 200)
	src := &source.ImageSource{Label: "test.png", Image: solid(200, 100, color.NRGBA{R: 40, G: 40, B: 40, A: 255})}
	if err := s.LoadImage(src); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func waitUntil(t *testing.T, cond func() bool, timeout time.Duration, what string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}
