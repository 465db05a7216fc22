package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/kheap/heap/region"
	"github.com/joshuapare/kheap/internal/format"
)

// Ptr is a byte offset into the managed region.
type Ptr = uint64

// Null is the failure sentinel. Offset 0 holds the leading region sentinel
// and is never handed out.
const Null Ptr = 0

const (
	// MinBlockSize is the smallest block footprint, tags included.
	MinBlockSize = format.MinBlockSize

	// Overhead is the per-block bookkeeping added to every request.
	Overhead = format.Overhead

	// Alignment is the only alignment Alloc guarantees, relative to the
	// region base.
	Alignment = format.Alignment

	// minRegionSize fits both sentinels and one minimum block.
	minRegionSize = format.RegionOverhead + format.MinBlockSize

	// firstBlock is the offset of the block seeded at init.
	firstBlock = format.SentinelSize
)

// Allocator hands out blocks from one fixed region.
type Allocator struct {
	mem   memory
	arena arena
	opts  Options
	log   *slog.Logger

	capacity uint64
	stats    allocatorStats
}

// New takes ownership of r and seeds it as one free block between two zero
// sentinels. Nil opts means DefaultOptions.
//
// The region length must be a multiple of 16, its base 16-byte aligned, and
// it must hold at least one minimum block plus the sentinels.
func New(r *region.Region, opts *Options) (*Allocator, error) {
	if opts == nil {
		d := DefaultOptions()
		opts = &d
	}

	n := r.Len()
	if n < minRegionSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrBadRegion, n, minRegionSize)
	}
	if n%format.Alignment != 0 {
		return nil, fmt.Errorf("%w: length %d not a multiple of %d", ErrBadRegion, n, format.Alignment)
	}
	if base := r.Base(); base&format.AlignmentMask != 0 {
		return nil, fmt.Errorf("%w: base 0x%x", ErrMisaligned, base)
	}

	a := &Allocator{
		opts:     *opts,
		log:      opts.logger(),
		capacity: uint64(n) - format.RegionOverhead,
	}
	a.mem = memory{r: r, checks: opts.Checks}
	a.arena.m = &a.mem

	r.PutWord(0, 0)
	r.PutWord(uint64(n)-format.SentinelSize, 0)
	a.arena.insert(a.mem.newBlock(firstBlock, a.capacity))

	a.log.Debug("alloc: init",
		"region", n,
		"block", a.capacity,
		"class", ClassOf(a.capacity),
		"checks", opts.Checks)
	return a, nil
}

// Alloc returns a pointer to at least n usable bytes, 16-byte aligned
// relative to the region base. When no free block fits it returns
// (Null, ErrNoSpace) and leaves the free lists untouched.
func (a *Allocator) Alloc(n int) (Ptr, error) {
	a.stats.AllocCalls++
	if n < 0 {
		return Null, ErrBadSize
	}

	need := format.Footprint(uint64(n))
	b, ok := a.arena.find(need)
	if !ok {
		a.stats.AllocFailures++
		a.log.Debug("alloc: no space", "request", n, "footprint", need)
		return Null, ErrNoSpace
	}

	if b.size()-need >= format.MinBlockSize {
		lead, rest := b.split(need)
		a.arena.insert(rest)
		a.stats.Splits++
		a.log.Debug("alloc: split", "off", lead.off, "size", need, "leftover", rest.size())
		b = lead
	}

	b.setFree(false)
	a.stats.BytesInUse += b.size()
	a.stats.LiveBlocks++
	return b.off + format.PayloadOffset, nil
}

// Free returns p to the heap, merging it with free physical neighbors on
// both sides before reinserting it. p must be exactly what Alloc returned;
// Free(Null) is a no-op.
func (a *Allocator) Free(p Ptr) {
	if p == Null {
		return
	}
	a.stats.FreeCalls++

	b := a.blockOf(p, "free")
	a.stats.BytesInUse -= b.size()
	a.stats.LiveBlocks--
	b.setFree(true)

	if prev, ok := b.prev(); ok && prev.isFree() {
		a.arena.remove(prev)
		b = prev.coalesce(b)
		a.stats.CoalesceBackward++
		a.log.Debug("alloc: coalesce backward", "off", b.off, "size", b.size())
	}
	if next, ok := b.next(); ok && next.isFree() {
		a.arena.remove(next)
		b = b.coalesce(next)
		a.stats.CoalesceForward++
		a.log.Debug("alloc: coalesce forward", "off", b.off, "size", b.size())
	}

	if a.opts.Scrub {
		clear(b.payload())
		b = a.mem.newBlock(b.off, b.size())
	}
	a.arena.insert(b)
}

// Bytes returns the usable memory behind a live pointer.
func (a *Allocator) Bytes(p Ptr) []byte {
	return a.blockOf(p, "bytes").payload()
}

// UsableSize returns how many bytes p may hold, which can exceed the
// original request.
func (a *Allocator) UsableSize(p Ptr) int {
	return int(a.blockOf(p, "size").size() - format.Overhead)
}

// Region returns the managed region.
func (a *Allocator) Region() *region.Region { return a.mem.r }

// blockOf recovers the busy block owning p. With checks enabled a pointer
// that is misaligned, outside the region, not busy, or whose tags disagree
// panics.
func (a *Allocator) blockOf(p Ptr, op string) block {
	m := &a.mem
	end := uint64(m.r.Len()) - format.SentinelSize

	m.assert(p >= firstBlock+format.PayloadOffset && p < end, op, p, "pointer outside heap")
	m.assert(format.IsAligned(p), op, p, "pointer off the 16-byte grid")

	b := m.block(p - format.PayloadOffset)
	if m.checks {
		size := b.size()
		m.assert(size >= format.MinBlockSize && size <= end-b.off, op, b.off, "corrupt block size")
		m.assert(b.tagsAgree(), op, b.off, "head and tail tags disagree")
		m.assert(!b.isFree(), op, b.off, "block is not allocated (double free?)")
	}
	return b
}
