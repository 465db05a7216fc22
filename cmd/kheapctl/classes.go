package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/kheap/heap/alloc"
)

var classesMax string

func init() {
	cmd := newClassesCmd()
	cmd.Flags().StringVar(&classesMax, "max", "1MiB", "Largest block size to show")
	rootCmd.AddCommand(cmd)
}

func newClassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "Print the size-class table",
		Long: `The classes command prints which block sizes land in which free list.
Sizes include the 16 bytes of boundary tags.

Example:
  kheapctl classes
  kheapctl classes --max 64KiB`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasses()
		},
	}
}

// ClassRange is the span of block sizes held by one class.
type ClassRange struct {
	Class int    `json:"class"`
	Min   uint64 `json:"min"`
	Max   uint64 `json:"max"`
}

// classRanges lists every class a block of at most maxSize bytes can use.
func classRanges(maxSize uint64) []ClassRange {
	var out []ClassRange
	for c := alloc.ClassOf(alloc.MinBlockSize); c <= alloc.ClassOf(maxSize); c++ {
		lo := uint64(1)<<c + 16
		hi := uint64(1)<<(c+1) + 15
		out = append(out, ClassRange{Class: c, Min: max(lo, alloc.MinBlockSize), Max: hi})
	}
	return out
}

func runClasses() error {
	maxSize, err := parseSize(classesMax)
	if err != nil {
		return err
	}
	ranges := classRanges(uint64(maxSize))
	if jsonOut {
		return printJSON(ranges)
	}
	printInfo("%-6s %14s %14s\n", "class", "min", "max")
	for _, r := range ranges {
		printInfo("%-6d %14d %14d\n", r.Class, r.Min, r.Max)
	}
	return nil
}
