// Package buf contains overflow-safe range checks for raw memory views.
package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow uint64.
func AddOverflowSafe(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// CheckRange validates that n bytes starting at off fit in a buffer of
// bufLen bytes. Returns the end offset if valid, or an error describing the
// specific failure (overflow or out of bounds).
func CheckRange(bufLen int, off, n uint64) (uint64, error) {
	end, ok := AddOverflowSafe(off, n)
	if !ok {
		return 0, fmt.Errorf("overflow: off=%d + n=%d", off, n)
	}
	if end > uint64(bufLen) {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, bufLen)
	}
	return end, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n uint64) ([]byte, bool) {
	end, err := CheckRange(len(b), off, n)
	if err != nil {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n uint64) bool {
	_, err := CheckRange(len(b), off, n)
	return err == nil
}
