package alloc

import "math/bits"

// NumClasses is the number of segregated free lists, one per bit of a
// 64-bit size.
const NumClasses = 64

// classBias is subtracted from a size before taking its highest bit.
const classBias = 16

// ClassOf maps a block size to its size class: the index of the highest set
// bit of size-16. Sizes at or below 16 are never block sizes and map to 0.
func ClassOf(size uint64) int {
	if size <= classBias {
		return 0
	}
	return bits.Len64(size-classBias) - 1
}

// arena is the segregated free-list index. Each class holds a doubly linked
// list threaded through the free blocks themselves; heads holds the offset
// of the first block or 0 for an empty list.
type arena struct {
	m      *memory
	heads  [NumClasses]uint64
	counts [NumClasses]int
}

// insert pushes b onto the head of its class list.
func (a *arena) insert(b block) {
	a.m.assert(b.isFree(), "insert", b.off, "busy block in free list")

	c := ClassOf(b.size())
	head := a.heads[c]
	b.setPrevLink(0)
	b.setNextLink(head)
	if head != 0 {
		a.m.block(head).setPrevLink(b.off)
	}
	a.heads[c] = b.off
	a.counts[c]++
}

// find pops a free block of at least need bytes. The scan starts at
// ClassOf(need) and only moves upward. Only the head of each list is
// considered: in the starting class the head may still be smaller than need,
// in which case the next class is tried. Every higher class fits.
func (a *arena) find(need uint64) (block, bool) {
	for c := ClassOf(need); c < NumClasses; c++ {
		head := a.heads[c]
		if head == 0 {
			continue
		}
		b := a.m.block(head)
		if b.size() < need {
			continue
		}
		a.pop(c)
		return b, true
	}
	return block{}, false
}

// pop unlinks the head of class c.
func (a *arena) pop(c int) block {
	b := a.m.block(a.heads[c])
	next := b.nextLink()
	if next != 0 {
		a.m.block(next).setPrevLink(0)
	}
	a.heads[c] = next
	a.counts[c]--

	b.setNextLink(0)
	b.setPrevLink(0)
	return b
}

// remove unlinks b from anywhere in its class list. Used when a specific
// neighbor is claimed during coalescing. b must still carry the size it
// was inserted with.
func (a *arena) remove(b block) {
	a.m.assert(b.isFree(), "remove", b.off, "busy block in free list")

	c := ClassOf(b.size())
	prev, next := b.prevLink(), b.nextLink()
	if prev == 0 {
		a.m.assert(a.heads[c] == b.off, "remove", b.off, "block has no prev link but is not its class head")
		a.heads[c] = next
	} else {
		a.m.block(prev).setNextLink(next)
	}
	if next != 0 {
		a.m.block(next).setPrevLink(prev)
	}
	a.counts[c]--

	b.setPrevLink(0)
	b.setNextLink(0)
}

// list returns the offsets of class c in list order.
func (a *arena) list(c int) []uint64 {
	offs := make([]uint64, 0, a.counts[c])
	for off := a.heads[c]; off != 0 && len(offs) <= a.counts[c]; off = a.m.block(off).nextLink() {
		offs = append(offs, off)
	}
	return offs
}
