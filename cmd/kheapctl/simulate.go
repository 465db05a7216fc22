package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/kheap/heap/alloc"
	"github.com/joshuapare/kheap/internal/logger"
	"github.com/joshuapare/kheap/internal/trace"
)

var (
	simulateSize string
	simulateMmap bool
)

func init() {
	cmd := newSimulateCmd()
	cmd.Flags().StringVar(&simulateSize, "size", "1MiB", "Region size")
	cmd.Flags().BoolVar(&simulateMmap, "mmap", false, "Back the region with an anonymous mapping")
	rootCmd.AddCommand(cmd)
}

func newSimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate <trace>",
		Short: "Replay an allocation trace",
		Long: `The simulate command replays a workload script against a fresh heap.
Each line is one of:

  alloc <name> <size>
  free <name>
  verify
  expect-fail <size>

Example:
  kheapctl simulate workload.trace
  kheapctl simulate workload.trace --size 64KiB --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(args)
		},
	}
}

// SimulateResult is the outcome of one replay.
type SimulateResult struct {
	Trace  string       `json:"trace"`
	Replay trace.Result `json:"replay"`
	Stats  alloc.Stats  `json:"stats"`
}

func runSimulate(args []string) error {
	path := args[0]
	size, err := parseSize(simulateSize)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	ops, err := trace.Parse(f)
	if err != nil {
		return err
	}
	printVerbose("Parsed %d operations from %s\n", len(ops), path)

	a, release, err := openHeap(size, simulateMmap)
	if err != nil {
		return err
	}
	defer release()

	res, err := trace.Run(a, ops)
	if err != nil {
		logger.Error("replay failed", "trace", path, "err", err)
		return err
	}
	if err := a.Verify(); err != nil {
		return err
	}

	out := SimulateResult{Trace: path, Replay: res, Stats: a.Stats()}
	if jsonOut {
		return printJSON(out)
	}
	printInfo("Trace: %s\n", path)
	printInfo("Ops:          %d (%d alloc, %d free, %d verify, %d expected failures)\n",
		res.Ops, res.Allocs, res.Frees, res.Verifies, res.ExpectedFail)
	printInfo("Peak in use:  %s\n", formatBytes(res.PeakInUse))
	printInfo("Still live:   %d\n\n", res.Live)
	printStats(out.Stats)
	return nil
}
