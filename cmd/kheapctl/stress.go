package main

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/kheap/heap/alloc"
	"github.com/joshuapare/kheap/internal/logger"
)

var (
	stressHeaps       int
	stressOps         int
	stressSeed        int64
	stressSize        string
	stressMaxAlloc    string
	stressVerifyEvery int
	stressMmap        bool
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressHeaps, "heaps", 4, "Number of independent heaps to run in parallel")
	cmd.Flags().IntVar(&stressOps, "ops", 10000, "Operations per heap")
	cmd.Flags().Int64Var(&stressSeed, "seed", 1, "Base random seed; heap i uses seed+i")
	cmd.Flags().StringVar(&stressSize, "size", "256KiB", "Region size per heap")
	cmd.Flags().StringVar(&stressMaxAlloc, "max-alloc", "4KiB", "Largest single request")
	cmd.Flags().IntVar(&stressVerifyEvery, "verify-every", 100, "Run a full consistency check every N operations (0 disables)")
	cmd.Flags().BoolVar(&stressMmap, "mmap", false, "Back each region with an anonymous mapping")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Run random alloc/free workloads on independent heaps",
		Long: `The stress command runs a random allocate/free workload on several
heaps at once. Each heap owns its own region and is driven by exactly one
goroutine, so no heap is ever shared. After the workload every live block
is freed and the heap must return to a single free block.

Example:
  kheapctl stress
  kheapctl stress --heaps 16 --ops 100000 --seed 7
  kheapctl stress --size 1MiB --max-alloc 64KiB --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd.Context())
		},
	}
}

// StressConfig parameterizes one stress run.
type StressConfig struct {
	Heaps       int
	Ops         int
	Seed        int64
	Size        int
	MaxAlloc    int
	VerifyEvery int
	Mapped      bool
}

// HeapReport is the outcome for one heap.
type HeapReport struct {
	Heap      int         `json:"heap"`
	Seed      int64       `json:"seed"`
	PeakInUse uint64      `json:"peak_in_use"`
	PeakLive  int         `json:"peak_live"`
	Stats     alloc.Stats `json:"stats"`
}

func runStress(ctx context.Context) error {
	size, err := parseSize(stressSize)
	if err != nil {
		return err
	}
	maxAlloc, err := parseSize(stressMaxAlloc)
	if err != nil {
		return err
	}
	if stressHeaps <= 0 || stressOps < 0 || maxAlloc <= 0 {
		return fmt.Errorf("heaps and max-alloc must be positive, ops non-negative")
	}

	reports, err := stress(ctx, StressConfig{
		Heaps:       stressHeaps,
		Ops:         stressOps,
		Seed:        stressSeed,
		Size:        size,
		MaxAlloc:    maxAlloc,
		VerifyEvery: stressVerifyEvery,
		Mapped:      stressMmap,
	})
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(reports)
	}
	printInfo("%-5s %-8s %10s %10s %10s %8s %10s\n", "heap", "seed", "allocs", "failed", "frees", "splits", "peak")
	for _, r := range reports {
		printInfo("%-5d %-8d %10d %10d %10d %8d %10s\n",
			r.Heap, r.Seed, r.Stats.AllocCalls, r.Stats.AllocFailures, r.Stats.FreeCalls, r.Stats.Splits, formatBytes(r.PeakInUse))
	}
	printInfo("\nOK: %d heaps returned to a single free block\n", len(reports))
	return nil
}

// stress runs cfg.Heaps workloads in parallel and returns one report per heap.
func stress(ctx context.Context, cfg StressConfig) ([]HeapReport, error) {
	reports := make([]HeapReport, cfg.Heaps)
	g, ctx := errgroup.WithContext(ctx)

	for i := range cfg.Heaps {
		g.Go(func() error {
			rep, err := stressHeap(ctx, cfg, i)
			if err != nil {
				return fmt.Errorf("heap %d (seed %d): %w", i, cfg.Seed+int64(i), err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func stressHeap(ctx context.Context, cfg StressConfig, i int) (HeapReport, error) {
	rep := HeapReport{Heap: i, Seed: cfg.Seed + int64(i)}

	a, release, err := openHeap(cfg.Size, cfg.Mapped)
	if err != nil {
		return rep, err
	}
	defer release()

	rng := rand.New(rand.NewSource(rep.Seed))
	var live []alloc.Ptr

	for op := range cfg.Ops {
		if op%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
		}

		if len(live) == 0 || rng.Intn(5) < 3 {
			p, err := a.Alloc(1 + rng.Intn(cfg.MaxAlloc))
			if err == nil {
				live = append(live, p)
			}
		} else {
			j := rng.Intn(len(live))
			a.Free(live[j])
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
		}

		s := a.Stats()
		rep.PeakInUse = max(rep.PeakInUse, s.BytesInUse)
		rep.PeakLive = max(rep.PeakLive, s.LiveBlocks)

		if cfg.VerifyEvery > 0 && (op+1)%cfg.VerifyEvery == 0 {
			if err := a.Verify(); err != nil {
				return rep, fmt.Errorf("after op %d: %w", op, err)
			}
		}
	}

	for _, p := range live {
		a.Free(p)
	}
	if err := a.Verify(); err != nil {
		return rep, err
	}
	rep.Stats = a.Stats()
	if rep.Stats.FreeBlocks != 1 || rep.Stats.FreeBytes != rep.Stats.Capacity {
		return rep, fmt.Errorf("heap did not recoalesce: %d free blocks, %d of %d bytes free",
			rep.Stats.FreeBlocks, rep.Stats.FreeBytes, rep.Stats.Capacity)
	}
	logger.Info("stress heap done", "heap", i, "seed", rep.Seed, "allocs", rep.Stats.AllocCalls, "peak", rep.PeakInUse)
	return rep, nil
}
