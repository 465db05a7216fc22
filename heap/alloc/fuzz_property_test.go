package alloc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// Test_Fuzz_RandomAllocFree_GuardInvariants performs random alloc/free,
// verifies the heap after every step, then frees everything and expects
// the exact post-init free lists back.
func Test_Fuzz_RandomAllocFree_GuardInvariants(t *testing.T) {
	for _, seed := range []int64{1, 42, 1337} {
		a := newTestAllocator(t, 64*1024)
		initial := a.FreeLists()
		initialFree := a.Stats().FreeBytes

		rng := rand.New(rand.NewSource(seed))
		live := make(map[Ptr]byte)

		for i := range 2000 {
			if len(live) == 0 || rng.Intn(3) != 0 {
				size := 1 + rng.Intn(2048)
				p, err := a.Alloc(size)
				if err != nil {
					require.ErrorIs(t, err, ErrNoSpace, "seed %d step %d", seed, i)
					continue
				}
				_, dup := live[p]
				require.False(t, dup, "seed %d step %d: pointer 0x%x handed out twice", seed, i, p)
				require.GreaterOrEqual(t, a.UsableSize(p), size)

				fill := byte(rng.Intn(256))
				b := a.Bytes(p)
				for j := range b {
					b[j] = fill
				}
				live[p] = fill
			} else {
				for p, fill := range live {
					for j, v := range a.Bytes(p) {
						require.Equal(t, fill, v, "seed %d step %d: payload of 0x%x clobbered at %d", seed, i, p, j)
					}
					a.Free(p)
					delete(live, p)
					break
				}
			}
			require.NoError(t, a.Verify(), "seed %d step %d", seed, i)
		}

		for p := range live {
			a.Free(p)
		}
		requireConsistent(t, a)
		require.Equal(t, initial, a.FreeLists(), "seed %d: free lists not restored", seed)
		require.Equal(t, initialFree, a.Stats().FreeBytes)
	}
}

// Test_AllocSucceedsBelowLargestClass checks that any request whose
// footprint fits the smallest block of the largest free block's class
// succeeds, however fragmented the heap is.
func Test_AllocSucceedsBelowLargestClass(t *testing.T) {
	a := newTestAllocator(t, 64*1024)
	rng := rand.New(rand.NewSource(99))

	var live []Ptr
	for range 300 {
		if p, err := a.Alloc(1 + rng.Intn(512)); err == nil {
			live = append(live, p)
		}
	}
	rng.Shuffle(len(live), func(i, j int) { live[i], live[j] = live[j], live[i] })
	for _, p := range live[:len(live)/2] {
		a.Free(p)
	}
	requireConsistent(t, a)

	largest := a.Stats().LargestFree
	require.NotZero(t, largest)
	limit := 1 << ClassOf(largest)

	for range 20 {
		r := 1 + rng.Intn(limit)
		before := a.Stats()
		p, err := a.Alloc(r)
		require.NoError(t, err, "request %d with largest free %d", r, largest)
		a.Free(p)
		require.Equal(t, before.FreeBytes, a.Stats().FreeBytes)
	}
}

// FuzzAllocFree drives the allocator from an arbitrary byte script: even
// bytes allocate, odd bytes free one live pointer.
func FuzzAllocFree(f *testing.F) {
	f.Add([]byte{0, 2, 4, 1, 3, 5})
	f.Add([]byte{254, 254, 254, 1, 1, 1, 128, 3})
	f.Add([]byte{10, 11, 12, 13, 14, 15, 16, 17})

	f.Fuzz(func(t *testing.T, script []byte) {
		a := newTestAllocator(t, 16*1024)
		initial := a.FreeLists()
		var live []Ptr

		for _, op := range script {
			if op%2 == 0 || len(live) == 0 {
				if p, err := a.Alloc(int(op) * 13); err == nil {
					live = append(live, p)
				}
			} else {
				i := int(op) % len(live)
				a.Free(live[i])
				live = append(live[:i], live[i+1:]...)
			}
			if err := a.Verify(); err != nil {
				t.Fatalf("verify after op %d: %v", op, err)
			}
		}
		for _, p := range live {
			a.Free(p)
		}
		require.Equal(t, initial, a.FreeLists(), "free lists not restored")
	})
}
