// Package format describes the in-place boundary-tag layout of heap blocks.
// Every block carries a size word at both ends; the low bit of that word is
// the busy flag. While a block is free its first payload words hold the
// free-list links.
//
//	+0        head tag   size | busy
//	+8        prev link  (free only)
//	+16       next link  (free only)
//	...
//	+size-8   tail tag   size | busy
package format

const (
	// WordSize is the width of every tag and link word.
	WordSize = 8

	// TagSize is the size of one boundary tag.
	TagSize = WordSize

	// Overhead is the per-block bookkeeping: head tag plus tail tag.
	Overhead = 2 * TagSize

	// SentinelSize is the zero word bracketing each end of the region.
	SentinelSize = WordSize

	// RegionOverhead is the fixed cost of the two region sentinels.
	RegionOverhead = 2 * SentinelSize

	// MinBlockSize is the smallest block footprint: two tags and two links.
	MinBlockSize = 32

	// Alignment is the granularity of block sizes and payload addresses.
	Alignment     = 16
	AlignmentMask = Alignment - 1

	// BusyFlag marks a block as handed out. Sizes are multiples of
	// Alignment so bit 0 is always available.
	BusyFlag = 0x1
	SizeMask = ^uint64(BusyFlag)
)

// Offsets relative to the start of a block.
const (
	HeadTagOffset  = 0
	PrevLinkOffset = TagSize
	NextLinkOffset = TagSize + WordSize

	// PayloadOffset is where the caller's memory starts.
	PayloadOffset = TagSize
)
