package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kheap/heap/region"
)

const mib = 1 << 20

// newTestAllocator creates an allocator with checks on and logging off.
func newTestAllocator(t testing.TB, size int) *Allocator {
	t.Helper()
	a, err := New(region.New(size), &Options{Checks: true})
	require.NoError(t, err)
	return a
}

// requireInvariant runs fn and asserts it panics with an *InvariantError
// whose reason contains want.
func requireInvariant(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		rec := recover()
		require.NotNil(t, rec, "expected invariant panic")
		err, ok := rec.(error)
		require.True(t, ok, "panic value %v is not an error", rec)

		var ie *InvariantError
		require.True(t, errors.As(err, &ie), "panic %v is not an InvariantError", err)
		require.ErrorIs(t, err, ErrCorrupt)
		require.Contains(t, ie.Reason, want)
	}()
	fn()
}

// blocks returns the physical block list.
func blocks(t testing.TB, a *Allocator) []BlockInfo {
	t.Helper()
	var out []BlockInfo
	require.NoError(t, a.Walk(func(bi BlockInfo) bool {
		out = append(out, bi)
		return true
	}))
	return out
}

// requireConsistent runs Verify and fails the test on any error.
func requireConsistent(t testing.TB, a *Allocator) {
	t.Helper()
	require.NoError(t, a.Verify())
}
