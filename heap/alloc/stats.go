package alloc

// allocatorStats holds internal allocator counters.
type allocatorStats struct {
	AllocCalls       int
	AllocFailures    int
	FreeCalls        int
	Splits           int
	CoalesceBackward int
	CoalesceForward  int
	BytesInUse       uint64 // footprints of live blocks, tags included
	LiveBlocks       int
}

// Stats is a point-in-time view of allocator activity and capacity.
type Stats struct {
	AllocCalls       int    `json:"alloc_calls"`
	AllocFailures    int    `json:"alloc_failures"`
	FreeCalls        int    `json:"free_calls"`
	Splits           int    `json:"splits"`
	CoalesceBackward int    `json:"coalesce_backward"`
	CoalesceForward  int    `json:"coalesce_forward"`
	Capacity         uint64 `json:"capacity"`
	BytesInUse       uint64 `json:"bytes_in_use"`
	LiveBlocks       int    `json:"live_blocks"`
	FreeBytes        uint64 `json:"free_bytes"`
	FreeBlocks       int    `json:"free_blocks"`
	LargestFree      uint64 `json:"largest_free"`

	// FreeByClass counts free blocks per size class.
	FreeByClass [NumClasses]int `json:"-"`
}

// Stats returns counters plus free-space figures derived from the free
// lists.
func (a *Allocator) Stats() Stats {
	s := Stats{
		AllocCalls:       a.stats.AllocCalls,
		AllocFailures:    a.stats.AllocFailures,
		FreeCalls:        a.stats.FreeCalls,
		Splits:           a.stats.Splits,
		CoalesceBackward: a.stats.CoalesceBackward,
		CoalesceForward:  a.stats.CoalesceForward,
		Capacity:         a.capacity,
		BytesInUse:       a.stats.BytesInUse,
		LiveBlocks:       a.stats.LiveBlocks,
		FreeByClass:      a.arena.counts,
	}
	for c := range NumClasses {
		for _, off := range a.arena.list(c) {
			size := a.mem.block(off).size()
			s.FreeBytes += size
			s.FreeBlocks++
			s.LargestFree = max(s.LargestFree, size)
		}
	}
	return s
}

// FreeLists returns the block offsets of every class list, in list order.
func (a *Allocator) FreeLists() [NumClasses][]uint64 {
	var lists [NumClasses][]uint64
	for c := range NumClasses {
		if a.arena.heads[c] != 0 {
			lists[c] = a.arena.list(c)
		}
	}
	return lists
}
