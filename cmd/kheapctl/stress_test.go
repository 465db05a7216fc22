package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStress(t *testing.T) {
	cfg := StressConfig{
		Heaps:       3,
		Ops:         2000,
		Seed:        42,
		Size:        64 << 10,
		MaxAlloc:    2048,
		VerifyEvery: 50,
	}
	reports, err := stress(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, reports, cfg.Heaps)

	for i, r := range reports {
		require.Equal(t, i, r.Heap)
		require.Equal(t, cfg.Seed+int64(i), r.Seed)
		require.Equal(t, 1, r.Stats.FreeBlocks)
		require.Equal(t, r.Stats.Capacity, r.Stats.FreeBytes)
		require.Zero(t, r.Stats.LiveBlocks)
		require.Positive(t, r.PeakLive)
		require.Equal(t, r.Stats.AllocCalls-r.Stats.AllocFailures, r.Stats.FreeCalls)
	}
}

func TestStressDeterministic(t *testing.T) {
	cfg := StressConfig{Heaps: 2, Ops: 500, Seed: 7, Size: 16 << 10, MaxAlloc: 512}
	first, err := stress(context.Background(), cfg)
	require.NoError(t, err)
	second, err := stress(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestStressCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := stress(ctx, StressConfig{Heaps: 2, Ops: 100, Seed: 1, Size: 16 << 10, MaxAlloc: 64})
	require.ErrorIs(t, err, context.Canceled)
}

func TestStressCommand(t *testing.T) {
	resetFlags()
	stressHeaps = 2
	stressOps = 300
	stressSize = "32KiB"

	output, err := captureOutput(t, func() error { return runStress(context.Background()) })
	require.NoError(t, err)
	assertContains(t, output, []string{"heap", "OK: 2 heaps returned to a single free block"})

	resetFlags()
	stressHeaps = 0
	_, err = captureOutput(t, func() error { return runStress(context.Background()) })
	require.Error(t, err)
}
