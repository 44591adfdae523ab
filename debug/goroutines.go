package debug

// Debug runtime metrics logger. Started only when config.Debug is true.
// Emits goroutine count (runtime metrics) and stack usage at a fixed interval, together
// with whatever the caller reports through extra (preview pipeline counters, for example).

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"
)

// AttrsFunc reports additional attributes for one log line.
type AttrsFunc func() []slog.Attr

// StartGoroutineLogger launches a ticker that logs goroutine count and stack memory until
// ctx is done.
func StartGoroutineLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, extra AttrsFunc) {
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			metrics.Read(samples)
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			attrs := []slog.Attr{
				slog.Uint64("goroutines", samples[0].Value.Uint64()),
				slog.Uint64("stack_inuse", ms.StackInuse),
				slog.Uint64("stack_sys", ms.StackSys),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
			}
			if extra != nil {
				attrs = append(attrs, extra()...)
			}
			logger.LogAttrs(ctx, slog.LevelInfo, "goroutine-stacks", attrs...)
		}
	}()
}
