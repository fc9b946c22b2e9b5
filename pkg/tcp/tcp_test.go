package tcp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromSliceRoundTrip(t *testing.T) {
	h := New(4000, 80)
	h.Flags = Flags{SYN: true, NS: true}
	h.SequenceNumber = 12345
	payload := []byte{1, 2, 3, 4}

	wire := append(h.ToBytes(), payload...)
	got, rest, err := FromSlice(wire)
	require.NoError(t, err)
	require.Equal(t, payload, rest)
	require.Equal(t, h.Flags, got.Flags)
	require.Equal(t, h.SequenceNumber, got.SequenceNumber)
}

func TestDataOffsetTooSmall(t *testing.T) {
	data := make([]byte, MinHeaderLen)
	data[12] = 4 << 4 // data offset 4
	_, _, err := FromSlice(data)
	require.Error(t, err)
}

func TestOptionsRoundTrip(t *testing.T) {
	opts := []Option{
		{Kind: OptionMaxSegmentSize, MaxSegmentSize: 1460},
		{Kind: OptionWindowScale, WindowScale: 7},
		{Kind: OptionSelectiveAckPermitted},
	}
	buf, err := EncodeOptions(opts)
	require.NoError(t, err)
	require.Equal(t, 0, len(buf)%4)

	got, err := ParseOptions(buf)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, OptionMaxSegmentSize, got[0].Kind)
	require.Equal(t, uint16(1460), got[0].MaxSegmentSize)
	require.Equal(t, OptionWindowScale, got[1].Kind)
	require.Equal(t, uint8(7), got[1].WindowScale)
}

func TestMalformedOptionTooLong(t *testing.T) {
	buf := []byte{optionKindMSS, 200, 0, 0}
	_, err := ParseOptions(buf)
	require.Error(t, err)
}

func TestChecksumStableOnceFilled(t *testing.T) {
	h := New(1, 2)
	payload := []byte{0xAA}
	src := [4]byte{10, 0, 0, 1}
	dst := [4]byte{10, 0, 0, 2}
	h.Checksum = h.WithIpv4Checksum(src, dst, payload)

	result := h.WithIpv4Checksum(src, dst, payload)
	require.Equal(t, h.Checksum, result)
}
