package alloc

import (
	"fmt"
	"maps"
	"slices"

	"github.com/joshuapare/kheap/internal/format"
)

// BlockInfo describes one block found by Walk.
type BlockInfo struct {
	Off  uint64 // offset of the head tag
	Size uint64 // footprint, tags included
	Free bool
}

// Ptr returns the pointer Alloc handed out (or would hand out) for the block.
func (bi BlockInfo) Ptr() Ptr { return bi.Off + format.PayloadOffset }

// Walk visits every block in physical order, stopping early when fn returns
// false. It returns an *InvariantError when a tag cannot be trusted to reach
// the next block.
func (a *Allocator) Walk(fn func(BlockInfo) bool) error {
	r := a.mem.r
	end := uint64(r.Len()) - format.SentinelSize

	off := uint64(firstBlock)
	for off < end {
		head := r.Word(off)
		size := format.TagSizeOf(head)
		switch {
		case size < format.MinBlockSize:
			return &InvariantError{Op: "walk", Off: off, Reason: fmt.Sprintf("block size %d below minimum", size)}
		case !format.IsAligned(size):
			return &InvariantError{Op: "walk", Off: off, Reason: fmt.Sprintf("block size %d off the 16-byte grid", size)}
		case size > end-off:
			return &InvariantError{Op: "walk", Off: off, Reason: fmt.Sprintf("block size %d runs past region end", size)}
		}
		if tail := r.Word(off + size - format.TagSize); tail != head {
			return &InvariantError{Op: "walk", Off: off, Reason: fmt.Sprintf("head tag 0x%x, tail tag 0x%x", head, tail)}
		}
		if !fn(BlockInfo{Off: off, Size: size, Free: !format.TagBusy(head)}) {
			return nil
		}
		off += size
	}
	if off != end {
		return &InvariantError{Op: "walk", Off: off, Reason: "blocks overrun trailing sentinel"}
	}
	return nil
}

// Verify checks the whole heap: sentinels, tag agreement and adjacency of
// every block, that no two free blocks touch, that every free block sits in
// exactly the list of its class with consistent links, and that the live
// counters match what the walk finds.
func (a *Allocator) Verify() error {
	r := a.mem.r
	n := uint64(r.Len())
	if r.Word(0) != 0 {
		return &InvariantError{Op: "verify", Off: 0, Reason: "leading sentinel overwritten"}
	}
	if r.Word(n-format.SentinelSize) != 0 {
		return &InvariantError{Op: "verify", Off: n - format.SentinelSize, Reason: "trailing sentinel overwritten"}
	}

	free := make(map[uint64]uint64)
	var (
		prevFree  bool
		busyBytes uint64
		busy      int
		walkErr   error
	)
	err := a.Walk(func(bi BlockInfo) bool {
		if bi.Free {
			if prevFree {
				walkErr = &InvariantError{Op: "verify", Off: bi.Off, Reason: "adjacent free blocks not coalesced"}
				return false
			}
			free[bi.Off] = bi.Size
		} else {
			busyBytes += bi.Size
			busy++
		}
		prevFree = bi.Free
		return true
	})
	if err != nil {
		return err
	}
	if walkErr != nil {
		return walkErr
	}

	for c := range NumClasses {
		var prev uint64
		count := 0
		for off := a.arena.heads[c]; off != 0; off = a.mem.block(off).nextLink() {
			size, ok := free[off]
			if !ok {
				return &InvariantError{Op: "verify", Off: off, Reason: fmt.Sprintf("class %d lists a block that is not free", c)}
			}
			if got := ClassOf(size); got != c {
				return &InvariantError{Op: "verify", Off: off, Reason: fmt.Sprintf("block of class %d in list %d", got, c)}
			}
			if back := a.mem.block(off).prevLink(); back != prev {
				return &InvariantError{Op: "verify", Off: off, Reason: fmt.Sprintf("prev link 0x%x, want 0x%x", back, prev)}
			}
			delete(free, off)
			prev = off
			count++
		}
		if count != a.arena.counts[c] {
			return &InvariantError{Op: "verify", Off: a.arena.heads[c], Reason: fmt.Sprintf("class %d holds %d blocks, counted %d", c, count, a.arena.counts[c])}
		}
	}
	if len(free) > 0 {
		return &InvariantError{Op: "verify", Off: slices.Min(slices.Collect(maps.Keys(free))), Reason: "free block missing from its class list"}
	}

	if busyBytes != a.stats.BytesInUse || busy != a.stats.LiveBlocks {
		return &InvariantError{Op: "verify", Off: 0, Reason: fmt.Sprintf(
			"walk found %d busy blocks (%d bytes), counters say %d (%d bytes)",
			busy, busyBytes, a.stats.LiveBlocks, a.stats.BytesInUse)}
	}
	return nil
}
