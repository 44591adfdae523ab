package preview

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"

	"github.com/soocke/vision-edit-go/domain/effect"
	"github.com/soocke/vision-edit-go/domain/mask"
)

const (
	DefaultDebounce      = 80 * time.Millisecond
	DefaultHeavyDebounce = 300 * time.Millisecond
	DefaultMaxDim        = 900
)

// Request is the snapshot one preview is computed from.
type Request struct {
	Effect effect.ID
	Heavy  bool
	Params effect.Params
	Masks  []*mask.Mask
	Source image.Image
}

// Result is a finished preview ready for display.
type Result struct {
	Generation uint64
	Effect     effect.ID
	Image      image.Image
	Scaled     bool // computed on a resolution-capped copy
	Elapsed    time.Duration
}

// Options tunes the scheduler. Zero values fall back to the defaults.
type Options struct {
	Debounce      time.Duration
	HeavyDebounce time.Duration
	MaxDim        int
}

// Stats counts scheduler outcomes since construction.
type Stats struct {
	Scheduled uint64
	Started   uint64
	Cancelled uint64
	Published uint64
	Failed    uint64
}

// Scheduler debounces preview requests and runs at most one at a time. Each request gets a
// generation number; only the newest generation may reach the UI. Results are handed over
// through a single-slot channel that the UI goroutine drains with Poll.
type Scheduler struct {
	engine effect.Engine
	logger *slog.Logger
	opts   Options

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    atomic.Uint64

	slot    chan struct{} // held while the engine runs
	results chan Result
	wg      sync.WaitGroup

	scheduled, started, cancelled, published, failed atomic.Uint64
}

// NewScheduler constructs a scheduler around engine.
func NewScheduler(engine effect.Engine, logger *slog.Logger, opts Options) *Scheduler {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.HeavyDebounce <= 0 {
		opts.HeavyDebounce = DefaultHeavyDebounce
	}
	if opts.HeavyDebounce < opts.Debounce {
		opts.HeavyDebounce = opts.Debounce
	}
	if opts.MaxDim <= 0 {
		opts.MaxDim = DefaultMaxDim
	}
	return &Scheduler{
		engine:  engine,
		logger:  logger,
		opts:    opts,
		slot:    make(chan struct{}, 1),
		results: make(chan Result, 1),
	}
}

// Schedule snapshots req, supersedes every earlier request and starts a debounced run.
// The source image is copied here so later edits cannot leak into the computation.
// It returns the generation assigned to the request.
func (s *Scheduler) Schedule(req Request) uint64 {
	snap := Request{
		Effect: req.Effect,
		Heavy:  req.Heavy,
		Params: req.Params.Clone(),
		Masks:  append([]*mask.Mask(nil), req.Masks...),
	}
	if req.Source != nil {
		snap.Source = imaging.Clone(req.Source)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	gen := s.gen.Add(1)
	s.mu.Unlock()

	s.scheduled.Add(1)
	s.wg.Add(1)
	go s.run(ctx, gen, snap)
	return gen
}

// Cancel supersedes any pending or running preview without starting a new one and drops
// a result that has not been polled yet.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen.Add(1)
	s.mu.Unlock()
	select {
	case <-s.results:
		s.cancelled.Add(1)
	default:
	}
}

// Poll returns the newest finished preview, if any. Call it from the UI goroutine.
func (s *Scheduler) Poll() (Result, bool) {
	select {
	case res := <-s.results:
		if res.Generation != s.gen.Load() {
			s.cancelled.Add(1)
			return Result{}, false
		}
		return res, true
	default:
		return Result{}, false
	}
}

// Generation returns the newest generation handed out.
func (s *Scheduler) Generation() uint64 { return s.gen.Load() }

// Commit cancels previews and folds the request at full resolution on the caller's goroutine.
func (s *Scheduler) Commit(ctx context.Context, req Request) (image.Image, error) {
	s.Cancel()
	if req.Source == nil {
		return nil, errors.New("preview: commit without source image")
	}
	return effect.Fold(ctx, s.engine, req.Effect, req.Source, req.Masks, req.Params)
}

// Close cancels outstanding work and waits for every run to exit.
func (s *Scheduler) Close() {
	s.Cancel()
	s.wg.Wait()
}

// Stats returns a snapshot of the outcome counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Scheduled: s.scheduled.Load(),
		Started:   s.started.Load(),
		Cancelled: s.cancelled.Load(),
		Published: s.published.Load(),
		Failed:    s.failed.Load(),
	}
}

func (s *Scheduler) run(ctx context.Context, gen uint64, req Request) {
	defer s.wg.Done()
	defer recoverLog(s.logger, "preview goroutine panic")

	delay := s.opts.Debounce
	if req.Heavy {
		delay = s.opts.HeavyDebounce
	}
	if !sleep(ctx, delay) {
		s.cancelled.Add(1)
		return
	}
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		s.cancelled.Add(1)
		return
	}
	defer func() { <-s.slot }()
	if !s.current(ctx, gen) {
		s.cancelled.Add(1)
		return
	}

	s.started.Add(1)
	start := time.Now()
	src := req.Source
	scaled := false
	if req.Heavy {
		src, scaled = ScaleForPreview(src, s.opts.MaxDim)
	}
	out, err := effect.Fold(ctx, s.engine, req.Effect, src, req.Masks, req.Params)
	if err != nil {
		if ctx.Err() != nil {
			s.cancelled.Add(1)
			return
		}
		s.failed.Add(1)
		if s.logger != nil {
			s.logger.Error("preview failed", "effect", req.Effect, "error", err)
		}
		return
	}
	if !s.current(ctx, gen) {
		s.cancelled.Add(1)
		return
	}
	res := Result{Generation: gen, Effect: req.Effect, Image: out, Scaled: scaled, Elapsed: time.Since(start)}
	s.publish(res)
	if s.logger != nil {
		s.logger.Debug("preview ready", "effect", req.Effect, "generation", gen, "scaled", scaled, "elapsed", res.Elapsed)
	}
}

func (s *Scheduler) current(ctx context.Context, gen uint64) bool {
	return ctx.Err() == nil && s.gen.Load() == gen
}

// publish replaces any unread result with res.
func (s *Scheduler) publish(res Result) {
	s.published.Add(1)
	select {
	case s.results <- res:
	default:
		select {
		case <-s.results:
		default:
		}
		select {
		case s.results <- res:
		default:
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// ScaleForPreview returns a bilinear copy whose longest side is at most maxDim, keeping the
// aspect ratio and at least one pixel per side. Images within the limit are returned as is.
func ScaleForPreview(src image.Image, maxDim int) (image.Image, bool) {
	if src == nil || maxDim <= 0 {
		return src, false
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src, false
	}
	scale := float64(maxDim) / float64(max(w, h))
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))
	return imaging.Resize(src, nw, nh, imaging.Linear), true
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}
