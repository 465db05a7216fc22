package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlign16(t *testing.T) {
	cases := map[uint64]uint64{0: 0, 1: 16, 15: 16, 16: 16, 17: 32, 1000: 1008}
	for in, want := range cases {
		require.Equal(t, want, Align16(in), "Align16(%d)", in)
	}
	require.True(t, IsAligned(48))
	require.False(t, IsAligned(40))
}

func TestFootprint(t *testing.T) {
	require.Equal(t, uint64(MinBlockSize), Footprint(0))
	require.Equal(t, uint64(MinBlockSize), Footprint(1))
	require.Equal(t, uint64(MinBlockSize), Footprint(16))
	require.Equal(t, uint64(48), Footprint(17))
	require.Equal(t, uint64(80), Footprint(64))
	require.Equal(t, uint64(80), Footprint(63))
}

func TestTagRoundTrip(t *testing.T) {
	b := make([]byte, 16)

	PutU64(b, 8, EncodeTag(0x1230, true))
	tag := ReadU64(b, 8)
	require.True(t, TagBusy(tag))
	require.Equal(t, uint64(0x1230), TagSizeOf(tag))

	PutU64(b, 0, EncodeTag(0x40, false))
	tag = ReadU64(b, 0)
	require.False(t, TagBusy(tag))
	require.Equal(t, uint64(0x40), TagSizeOf(tag))
	require.Equal(t, byte(0x40), b[0], "tags are little-endian")
}

func TestEncodeTagMasksFlag(t *testing.T) {
	// A stray low bit in the size must not leak into the flag.
	require.False(t, TagBusy(EncodeTag(0x41, false)))
	require.Equal(t, uint64(0x40), TagSizeOf(EncodeTag(0x41, true)))
}
