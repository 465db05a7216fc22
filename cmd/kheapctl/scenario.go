package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/kheap/heap/alloc"
	"github.com/joshuapare/kheap/internal/format"
)

var (
	scenarioSize string
	scenarioMmap bool
)

func init() {
	cmd := newScenarioCmd()
	cmd.Flags().StringVar(&scenarioSize, "size", "1MiB", "Region size")
	cmd.Flags().BoolVar(&scenarioMmap, "mmap", false, "Back the region with an anonymous mapping")
	rootCmd.AddCommand(cmd)
}

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario",
		Short: "Run the reference allocate/free/recoalesce scenario",
		Long: `The scenario command allocates two 64-byte blocks, frees both, and then
claims the entire region in one allocation, proving that freed blocks
merge back into a single block.

Example:
  kheapctl scenario
  kheapctl scenario --size 4MiB --mmap
  kheapctl scenario --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario()
		},
	}
}

// ScenarioResult is the outcome of one scenario run.
type ScenarioResult struct {
	RegionSize int         `json:"region_size"`
	P1         alloc.Ptr   `json:"p1"`
	P2         alloc.Ptr   `json:"p2"`
	Whole      alloc.Ptr   `json:"whole"`
	WholeSize  int         `json:"whole_size"`
	Stats      alloc.Stats `json:"stats"`
}

var errScenario = errors.New("scenario failed")

func runScenario() error {
	size, err := parseSize(scenarioSize)
	if err != nil {
		return err
	}
	a, release, err := openHeap(size, scenarioMmap)
	if err != nil {
		return err
	}
	defer release()

	res, err := scenario(a, size)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(res)
	}
	printInfo("Region: %s\n", formatBytes(uint64(size)))
	printInfo("alloc(64)    -> %d\n", res.P1)
	printInfo("alloc(64)    -> %d (+%d)\n", res.P2, res.P2-res.P1)
	printInfo("free both\n")
	printInfo("alloc(%d) -> %d\n", res.WholeSize, res.Whole)
	printInfo("\n")
	printStats(res.Stats)
	printInfo("\nOK: region fully recoalesced\n")
	return nil
}

// scenario runs the reference sequence against a fresh allocator over a
// region of size bytes.
func scenario(a *alloc.Allocator, size int) (ScenarioResult, error) {
	res := ScenarioResult{RegionSize: size}
	wantFirst := alloc.Ptr(format.SentinelSize + format.PayloadOffset)

	p1, err := a.Alloc(64)
	if err != nil {
		return res, fmt.Errorf("%w: first alloc: %w", errScenario, err)
	}
	if p1 != wantFirst {
		return res, fmt.Errorf("%w: first pointer %d, want %d", errScenario, p1, wantFirst)
	}
	p2, err := a.Alloc(64)
	if err != nil {
		return res, fmt.Errorf("%w: second alloc: %w", errScenario, err)
	}
	if want := p1 + alloc.Ptr(format.Footprint(64)); p2 != want {
		return res, fmt.Errorf("%w: second pointer %d, want %d", errScenario, p2, want)
	}
	res.P1, res.P2 = p1, p2

	a.Free(p1)
	a.Free(p2)
	printVerbose("freed %d and %d\n", p1, p2)

	res.WholeSize = size - format.RegionOverhead - format.Overhead
	whole, err := a.Alloc(res.WholeSize)
	if err != nil {
		return res, fmt.Errorf("%w: whole-region alloc of %d: %w", errScenario, res.WholeSize, err)
	}
	if whole != wantFirst {
		return res, fmt.Errorf("%w: whole-region pointer %d, want %d", errScenario, whole, wantFirst)
	}
	res.Whole = whole

	if err := a.Verify(); err != nil {
		return res, fmt.Errorf("%w: %w", errScenario, err)
	}
	res.Stats = a.Stats()
	return res, nil
}
