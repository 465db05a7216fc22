// Package region provides the backing memory an allocator manages: one
// contiguous, fixed-size byte range with bounds-checked word access.
//
// Addresses inside a region are byte offsets from its base. Every access
// goes through Word/PutWord/Slice, which panic with a *BoundsError instead
// of touching memory outside the range.
package region

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/kheap/internal/buf"
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/internal/mmfile"
)

// Region is a contiguous range of memory handed to an allocator.
type Region struct {
	data    []byte
	release func() error
}

// BoundsError reports an access outside the region.
type BoundsError struct {
	Off uint64
	N   uint64
	Len int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("region: access [0x%x, +%d) outside %d-byte region", e.Off, e.N, e.Len)
}

// New returns a region of size bytes backed by the Go heap. The buffer is
// over-allocated and trimmed so the base lands on a 16-byte boundary.
func New(size int) *Region {
	if size < 0 {
		size = 0
	}
	raw := make([]byte, size+format.Alignment)
	skip := 0
	if len(raw) > 0 {
		if mis := int(uintptr(unsafe.Pointer(&raw[0])) & format.AlignmentMask); mis != 0 {
			skip = format.Alignment - mis
		}
	}
	return &Region{data: raw[skip : skip+size : skip+size]}
}

// Map returns a region of size bytes mapped outside the Go heap. The base is
// page aligned. Close releases the mapping; the region must not be used
// afterwards.
func Map(size int) (*Region, error) {
	data, release, err := mmfile.Anon(size)
	if err != nil {
		return nil, err
	}
	return &Region{data: data, release: release}, nil
}

// Wrap uses b as the backing memory. The caller keeps ownership of b and
// must not touch it while an allocator manages it.
func Wrap(b []byte) *Region {
	return &Region{data: b}
}

// Close releases a mapped region. It is a no-op for heap-backed regions.
func (r *Region) Close() error {
	if r.release == nil {
		return nil
	}
	err := r.release()
	r.release = nil
	r.data = nil
	return err
}

// Len returns the region size in bytes.
func (r *Region) Len() int { return len(r.data) }

// Base returns the address of the first byte, or 0 for an empty region.
func (r *Region) Base() uintptr {
	if len(r.data) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&r.data[0]))
}

// Bytes exposes the whole backing range.
func (r *Region) Bytes() []byte { return r.data }

// Contains reports whether [off, off+n) lies inside the region.
func (r *Region) Contains(off, n uint64) bool {
	return buf.Has(r.data, off, n)
}

// Word reads the 8-byte word at off.
func (r *Region) Word(off uint64) uint64 {
	r.check(off, format.WordSize)
	return format.ReadU64(r.data, int(off))
}

// PutWord writes the 8-byte word at off.
func (r *Region) PutWord(off, v uint64) {
	r.check(off, format.WordSize)
	format.PutU64(r.data, int(off), v)
}

// Slice returns the n bytes starting at off.
func (r *Region) Slice(off, n uint64) []byte {
	s, ok := buf.Slice(r.data, off, n)
	if !ok {
		panic(&BoundsError{Off: off, N: n, Len: len(r.data)})
	}
	return s
}

// Zero clears n bytes starting at off.
func (r *Region) Zero(off, n uint64) {
	clear(r.Slice(off, n))
}

func (r *Region) check(off, n uint64) {
	if !buf.Has(r.data, off, n) {
		panic(&BoundsError{Off: off, N: n, Len: len(r.data)})
	}
}
