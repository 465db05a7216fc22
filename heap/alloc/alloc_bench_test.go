package alloc

import (
	"math/rand"
	"testing"

	"github.com/joshuapare/kheap/heap/region"
)

func newBenchAllocator(b *testing.B, size int, checks bool) *Allocator {
	b.Helper()
	a, err := New(region.New(size), &Options{Checks: checks})
	if err != nil {
		b.Fatal(err)
	}
	return a
}

// Benchmark_AllocFree_Small pairs every small allocation with a free, so the
// heap keeps splitting and recoalescing the same block.
func Benchmark_AllocFree_Small(b *testing.B) {
	a := newBenchAllocator(b, mib, false)

	b.ResetTimer()
	b.ReportAllocs()

	for i := range b.N {
		p, err := a.Alloc(16 + (i%8)*16)
		if err != nil {
			b.Fatal(err)
		}
		a.Free(p)
	}
}

// Benchmark_AllocFree_Checks is the small case with invariant checks on.
func Benchmark_AllocFree_Checks(b *testing.B) {
	a := newBenchAllocator(b, mib, true)

	b.ResetTimer()
	b.ReportAllocs()

	for i := range b.N {
		p, err := a.Alloc(16 + (i%8)*16)
		if err != nil {
			b.Fatal(err)
		}
		a.Free(p)
	}
}

// Benchmark_Fragmented keeps a window of live blocks of mixed sizes and
// frees them out of order.
func Benchmark_Fragmented(b *testing.B) {
	const window = 256
	a := newBenchAllocator(b, 16*mib, false)
	rng := rand.New(rand.NewSource(1))
	live := make([]Ptr, window)

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		j := rng.Intn(window)
		a.Free(live[j])
		p, err := a.Alloc(32 + rng.Intn(4096))
		if err != nil {
			b.Fatal(err)
		}
		live[j] = p
	}
}

// Benchmark_Verify measures a full consistency check over a heap holding
// a few thousand blocks.
func Benchmark_Verify(b *testing.B) {
	a := newBenchAllocator(b, 4*mib, true)
	for i := range 4000 {
		p, err := a.Alloc(64 + (i%16)*32)
		if err != nil {
			b.Fatal(err)
		}
		if i%3 == 0 {
			a.Free(p)
		}
	}

	b.ResetTimer()

	for range b.N {
		if err := a.Verify(); err != nil {
			b.Fatal(err)
		}
	}
}
