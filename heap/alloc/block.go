package alloc

import (
	"github.com/joshuapare/kheap/heap/region"
	"github.com/joshuapare/kheap/internal/format"
)

// memory is the region plus the assertion policy shared by blocks and the
// arena.
type memory struct {
	r      *region.Region
	checks bool
}

func (m *memory) assert(ok bool, op string, off uint64, reason string) {
	if m.checks && !ok {
		panic(&InvariantError{Op: op, Off: off, Reason: reason})
	}
}

// block is an address-based handle to one block inside the region. It holds
// no state of its own: every accessor reads the tags in place, so a handle
// is only meaningful while the memory it names still holds that block.
type block struct {
	m   *memory
	off uint64
}

func (m *memory) block(off uint64) block {
	return block{m: m, off: off}
}

// newBlock writes fresh tags for a free block of size bytes at off and
// clears its links.
func (m *memory) newBlock(off, size uint64) block {
	m.assert(size >= format.MinBlockSize, "create", off, "block below minimum size")
	m.assert(format.IsAligned(size), "create", off, "block size off the 16-byte grid")

	tag := format.EncodeTag(size, false)
	m.r.PutWord(off+format.HeadTagOffset, tag)
	m.r.PutWord(off+format.PrevLinkOffset, 0)
	m.r.PutWord(off+format.NextLinkOffset, 0)
	m.r.PutWord(off+size-format.TagSize, tag)
	return m.block(off)
}

func (b block) head() uint64 { return b.m.r.Word(b.off + format.HeadTagOffset) }

func (b block) tail() uint64 { return b.m.r.Word(b.end() - format.TagSize) }

// size returns the footprint including both tags.
func (b block) size() uint64 { return format.TagSizeOf(b.head()) }

// end returns the offset one past the block.
func (b block) end() uint64 { return b.off + b.size() }

func (b block) isFree() bool { return !format.TagBusy(b.head()) }

// setFree rewrites the flag in both tags.
func (b block) setFree(free bool) {
	size := b.size()
	tag := format.EncodeTag(size, !free)
	b.m.r.PutWord(b.off+format.HeadTagOffset, tag)
	b.m.r.PutWord(b.off+size-format.TagSize, tag)
}

// tagsAgree reports whether head and tail carry the same size and flag.
func (b block) tagsAgree() bool {
	return b.head() == b.tail()
}

func (b block) prevLink() uint64 { return b.m.r.Word(b.off + format.PrevLinkOffset) }
func (b block) nextLink() uint64 { return b.m.r.Word(b.off + format.NextLinkOffset) }

func (b block) setPrevLink(off uint64) { b.m.r.PutWord(b.off+format.PrevLinkOffset, off) }
func (b block) setNextLink(off uint64) { b.m.r.PutWord(b.off+format.NextLinkOffset, off) }

// payload returns the caller-visible memory of the block.
func (b block) payload() []byte {
	return b.m.r.Slice(b.off+format.PayloadOffset, b.size()-format.Overhead)
}

// split carves a leading block of at bytes and returns it with the
// leftover, both freshly tagged and free. The block must be free and at
// least MinBlockSize bytes must remain.
func (b block) split(at uint64) (block, block) {
	size := b.size()
	b.m.assert(b.isFree(), "split", b.off, "block is busy")
	b.m.assert(size > at && size-at >= format.MinBlockSize, "split", b.off, "leftover below minimum size")

	lead := b.m.newBlock(b.off, at)
	rest := b.m.newBlock(b.off+at, size-at)
	return lead, rest
}

// coalesce merges b with the block physically after it. Both must be free.
func (b block) coalesce(next block) block {
	b.m.assert(b.isFree() && next.isFree(), "coalesce", b.off, "block is busy")
	b.m.assert(b.end() == next.off, "coalesce", b.off, "blocks are not adjacent")

	return b.m.newBlock(b.off, b.size()+next.size())
}

// prev locates the block physically before b from the tail tag just in
// front of it. A zero tag is the leading sentinel.
func (b block) prev() (block, bool) {
	tag := b.m.r.Word(b.off - format.TagSize)
	size := format.TagSizeOf(tag)
	if size == 0 {
		return block{}, false
	}
	b.m.assert(size <= b.off-format.SentinelSize, "prev", b.off, "neighbor tag runs past region start")

	p := b.m.block(b.off - size)
	b.m.assert(p.head() == tag, "prev", p.off, "head and tail tags disagree")
	return p, true
}

// next locates the block physically after b from the head tag just past
// its end. A zero tag is the trailing sentinel.
func (b block) next() (block, bool) {
	end := b.end()
	tag := b.m.r.Word(end)
	if format.TagSizeOf(tag) == 0 {
		return block{}, false
	}

	n := b.m.block(end)
	b.m.assert(uint64(b.m.r.Len())-end >= format.TagSizeOf(tag)+format.SentinelSize,
		"next", end, "neighbor runs past region end")
	b.m.assert(n.tail() == tag, "next", end, "head and tail tags disagree")
	return n, true
}
