package format

import "encoding/binary"

// Tag words are little-endian uint64 values.
//
// Implementation: encoding/binary.LittleEndian. The compiler inlines these
// into single loads and stores, so there is nothing to gain from unsafe.

// PutU64 writes a uint64 value to the buffer at the specified offset in little-endian format.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in little-endian format.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// EncodeTag packs a size and busy flag into one tag word.
func EncodeTag(size uint64, busy bool) uint64 {
	tag := size & SizeMask
	if busy {
		tag |= BusyFlag
	}
	return tag
}

// TagSizeOf returns the size held in a tag word.
func TagSizeOf(tag uint64) uint64 {
	return tag & SizeMask
}

// TagBusy reports whether a tag word has the busy flag set.
func TagBusy(tag uint64) bool {
	return tag&BusyFlag != 0
}
