package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/kheap/heap/alloc"
	"github.com/joshuapare/kheap/heap/region"
	"github.com/joshuapare/kheap/internal/logger"
)

// numbers groups digits in every %d the CLI prints.
var numbers = message.NewPrinter(language.English)

// parseSize accepts "65536", "64KiB", "1 MiB" and the like.
func parseSize(s string) (int, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n > 1<<40 {
		return 0, fmt.Errorf("size %q too large", s)
	}
	return int(n), nil
}

// formatBytes renders n in binary units, e.g. "1.0 MiB".
func formatBytes(n uint64) string {
	return humanize.IBytes(n)
}

// openHeap builds an allocator over a fresh region. The returned function
// releases a mapped region.
func openHeap(size int, mapped bool) (*alloc.Allocator, func() error, error) {
	var (
		r   *region.Region
		err error
	)
	if mapped {
		r, err = region.Map(size)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to map region: %w", err)
		}
	} else {
		r = region.New(size)
	}

	opts := alloc.DefaultOptions()
	opts.Logger = logger.L
	a, err := alloc.New(r, &opts)
	if err != nil {
		_ = r.Close()
		return nil, nil, err
	}
	logger.Debug("heap opened", "size", size, "mapped", mapped, "base", fmt.Sprintf("0x%x", r.Base()))
	return a, r.Close, nil
}

// printStats writes the allocator counters in text form.
func printStats(s alloc.Stats) {
	printInfo("Capacity:     %s (%d bytes)\n", formatBytes(s.Capacity), s.Capacity)
	printInfo("In use:       %s in %d blocks\n", formatBytes(s.BytesInUse), s.LiveBlocks)
	printInfo("Free:         %s in %d blocks (largest %s)\n", formatBytes(s.FreeBytes), s.FreeBlocks, formatBytes(s.LargestFree))
	printInfo("Calls:        %d alloc (%d failed), %d free\n", s.AllocCalls, s.AllocFailures, s.FreeCalls)
	printInfo("Splits:       %d\n", s.Splits)
	printInfo("Coalesces:    %d backward, %d forward\n", s.CoalesceBackward, s.CoalesceForward)
	printVerbose("Free blocks by class:\n")
	for c, n := range s.FreeByClass {
		if n > 0 {
			printVerbose("  class %2d: %d\n", c, n)
		}
	}
}
