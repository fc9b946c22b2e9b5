package udp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromSliceRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	h := New(21, 1234, len(payload))
	b := h.ToBytes()
	wire := append(b[:], payload...)

	got, rest, err := FromSlice(wire)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, payload, rest)
}

func TestFromSliceLengthSmallerThanHeader(t *testing.T) {
	h := Header{SourcePort: 1, DestinationPort: 2, Length: 4}
	b := h.ToBytes()
	_, _, err := FromSlice(b[:])
	require.Error(t, err)
}

func TestFromSliceLengthExceedsSlice(t *testing.T) {
	h := Header{SourcePort: 1, DestinationPort: 2, Length: 100}
	b := h.ToBytes()
	_, _, err := FromSlice(b[:])
	require.Error(t, err)
}

func TestIpv4ChecksumNeverZero(t *testing.T) {
	payload := []byte{}
	h := New(0, 0, 0)
	src := [4]byte{0, 0, 0, 0}
	dst := [4]byte{0, 0, 0, 0}
	chk := h.WithIpv4Checksum(src, dst, payload)
	require.NotEqual(t, uint16(0), chk)
}

func TestIpv4ChecksumStableOnceFilled(t *testing.T) {
	payload := []byte{0xAA, 0xBB, 0xCC}
	h := New(53, 9999, len(payload))
	src := [4]byte{192, 168, 1, 1}
	dst := [4]byte{192, 168, 1, 2}
	h.Checksum = h.WithIpv4Checksum(src, dst, payload)

	result := h.WithIpv4Checksum(src, dst, payload)
	require.Equal(t, h.Checksum, result)
}
