package format

// Align16 returns n aligned up to the next 16-byte boundary.
//
// Example:
//
//	Align16(1)  = 16
//	Align16(16) = 16
//	Align16(17) = 32
func Align16(n uint64) uint64 {
	return (n + AlignmentMask) &^ AlignmentMask
}

// IsAligned reports whether n sits on the 16-byte grid.
func IsAligned(n uint64) bool {
	return n&AlignmentMask == 0
}

// Footprint returns the block size needed to hand out n payload bytes:
// the aligned payload plus both tags, never below MinBlockSize.
func Footprint(n uint64) uint64 {
	return max(Align16(n)+Overhead, MinBlockSize)
}
