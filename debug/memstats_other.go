//go:build !windows

package debug

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// residentBytes returns the peak resident set size of the current process. Linux reports
// ru_maxrss in kilobytes, darwin in bytes.
func residentBytes() (uint64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}
	rss := uint64(ru.Maxrss)
	if runtime.GOOS != "darwin" {
		rss *= 1024
	}
	return rss, nil
}

// StartMemLogger launches a goroutine that logs memory stats every interval until ctx is
// done.
func StartMemLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	startMemLogger(ctx, interval, logger, residentBytes)
}
