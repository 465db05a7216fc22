// Package global holds the process-wide heap: one allocator, initialized
// exactly once and never torn down, behind a single lock.
//
// The allocator itself is not safe for concurrent use. This package is the
// serialization point the allocator expects its environment to provide,
// playing the role of masking interrupts around every call.
package global

import (
	"errors"
	"sync"

	"github.com/joshuapare/kheap/heap/alloc"
	"github.com/joshuapare/kheap/heap/region"
)

var (
	// ErrNotInitialized is returned by calls made before Init.
	ErrNotInitialized = errors.New("global: heap not initialized")

	// ErrAlreadyInitialized is returned by every Init after the first.
	ErrAlreadyInitialized = errors.New("global: heap already initialized")
)

var (
	mu   sync.Mutex
	heap *alloc.Allocator
)

// Init hands r to the process-wide allocator. It succeeds once; the region
// stays owned by the heap for the rest of the process.
func Init(r *region.Region, opts *alloc.Options) error {
	mu.Lock()
	defer mu.Unlock()

	if heap != nil {
		return ErrAlreadyInitialized
	}
	a, err := alloc.New(r, opts)
	if err != nil {
		return err
	}
	heap = a
	return nil
}

// Initialized reports whether Init has succeeded.
func Initialized() bool {
	mu.Lock()
	defer mu.Unlock()
	return heap != nil
}

// Alloc allocates n bytes from the process-wide heap.
func Alloc(n int) (alloc.Ptr, error) {
	mu.Lock()
	defer mu.Unlock()

	if heap == nil {
		return alloc.Null, ErrNotInitialized
	}
	return heap.Alloc(n)
}

// Free returns p to the process-wide heap. Freeing a non-null pointer
// before Init panics, since no allocation can have produced it.
func Free(p alloc.Ptr) {
	mu.Lock()
	defer mu.Unlock()

	if p == alloc.Null {
		return
	}
	if heap == nil {
		panic(ErrNotInitialized)
	}
	heap.Free(p)
}

// Do runs fn with exclusive access to the process-wide allocator, for
// callers that need several operations or payload access under one lock.
func Do(fn func(a *alloc.Allocator) error) error {
	mu.Lock()
	defer mu.Unlock()

	if heap == nil {
		return ErrNotInitialized
	}
	return fn(heap)
}

// Stats returns the process-wide heap counters.
func Stats() (alloc.Stats, error) {
	mu.Lock()
	defer mu.Unlock()

	if heap == nil {
		return alloc.Stats{}, ErrNotInitialized
	}
	return heap.Stats(), nil
}

// reset drops the process-wide heap. Tests only.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	heap = nil
}
