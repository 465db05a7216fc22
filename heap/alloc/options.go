package alloc

import (
	"io"
	"log/slog"
	"os"
)

// Runtime switches read once at startup.
var (
	// KHEAP_LOG_ALLOC enables debug-level allocation logging to stderr.
	logAlloc = os.Getenv("KHEAP_LOG_ALLOC") != ""

	// KHEAP_CHECKS=0 disables invariant assertions.
	noChecks = os.Getenv("KHEAP_CHECKS") == "0"
)

// Options configures an Allocator.
type Options struct {
	// Checks enables fail-fast invariant assertions.
	Checks bool

	// Scrub zeroes the payload of every block returned to a free list.
	Scrub bool

	// Logger receives debug-level allocation events. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns checks enabled, scrubbing disabled, and logging
// as selected by the KHEAP_LOG_ALLOC environment variable.
func DefaultOptions() Options {
	opts := Options{Checks: !noChecks}
	if logAlloc {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return opts
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
