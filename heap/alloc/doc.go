// Package alloc implements a boundary-tag heap allocator over one fixed
// region of memory, the way a freestanding kernel manages its heap when
// there is no lower allocator to fall back on.
//
// # Overview
//
// All bookkeeping lives inside the managed memory. Each block carries a
// size word at both ends (its boundary tags) with the busy flag in bit 0,
// and a free block keeps its free-list links in its first payload words.
// Physical neighbors are found by reading the tag just before or just
// after a block; a zero word marks the edge of the region.
//
//	| sentinel 0 | block | block | ... | block | sentinel 0 |
//
// # Allocator Interface
//
//   - Alloc(n): hand out at least n bytes, or (Null, ErrNoSpace)
//   - Free(p): return a pointer obtained from Alloc
//
// Pointers are byte offsets into the region (Ptr). Offset 0 always holds
// the leading sentinel, so Null (0) is never a valid allocation.
//
// # Size Classes
//
// Free blocks are kept in 64 segregated, doubly linked lists. A block of
// size s lives in class ClassOf(s), the index of the highest set bit of
// s-16:
//
//	Class 4:    32 -    47 bytes
//	Class 5:    48 -    79 bytes
//	Class 6:    80 -   143 bytes
//	Class 7:   144 -   271 bytes
//	...
//	Class 19: 512K+16 - 1M+15 bytes
//
// Allocation scans classes upward from the request's class and takes the
// head of the first list that fits. It never searches inside a list for a
// tighter fit.
//
// # Splitting and Coalescing
//
// A block with at least MinBlockSize bytes of excess is split and the
// leftover returned to its list. Free merges with both physical neighbors
// immediately when they are free, so no two free blocks are ever adjacent.
//
// # Invariant Checks
//
// With Options.Checks enabled (the default) tag mismatches, double frees,
// stray pointers and free-list corruption panic with *InvariantError.
// Nothing is recovered silently. With checks disabled these paths are
// undefined, as they would be in a release kernel build, and only the
// region's own bounds checks remain.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must serialize access
// externally; see the global package for a process-wide locked instance.
package alloc
