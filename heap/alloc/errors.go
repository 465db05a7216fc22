package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSpace indicates that no free block large enough was found. The
	// region never grows, so callers must treat this as final.
	ErrNoSpace = errors.New("alloc: no free block large enough")

	// ErrBadSize indicates a negative allocation request.
	ErrBadSize = errors.New("alloc: bad allocation size")

	// ErrBadRegion indicates a region too small for one block or with a
	// length that is not a multiple of 16.
	ErrBadRegion = errors.New("alloc: unusable region")

	// ErrMisaligned indicates a region whose base is not 16-byte aligned.
	ErrMisaligned = errors.New("alloc: region base not 16-byte aligned")

	// ErrCorrupt is matched by every *InvariantError.
	ErrCorrupt = errors.New("alloc: heap corrupted")
)

// InvariantError describes a broken heap invariant at a given offset.
type InvariantError struct {
	Op     string
	Off    uint64
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("alloc: %s at 0x%x: %s", e.Op, e.Off, e.Reason)
}

func (e *InvariantError) Unwrap() error { return ErrCorrupt }
