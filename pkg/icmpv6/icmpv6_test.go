package icmpv6

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var src = [16]byte{0x20, 0x01, 0x0d, 0xb8}
var dst = [16]byte{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}

func TestEchoReplyRoundTrip(t *testing.T) {
	m := NewEchoReply(1, 2, []byte{0xAA, 0xBB})
	m.FillChecksum(src, dst)

	got, rest, err := FromSlice(m.ToBytes())
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, KindEchoReply, got.Kind)
	require.Equal(t, m.Id, got.Id)
	require.Equal(t, m.Checksum, got.Checksum)
}

func TestTooShort(t *testing.T) {
	_, _, err := FromSlice([]byte{128, 0, 0})
	require.Error(t, err)
}

func TestPacketTooBigRoundTrip(t *testing.T) {
	m := &Message{Kind: KindPacketTooBig, Mtu: 1280}
	got, _, err := FromSlice(m.ToBytes())
	require.NoError(t, err)
	require.Equal(t, KindPacketTooBig, got.Kind)
	require.Equal(t, uint32(1280), got.Mtu)
}

func TestParameterProblemRoundTrip(t *testing.T) {
	m := &Message{Kind: KindParameterProblem, Code: 2, Pointer: 40}
	got, _, err := FromSlice(m.ToBytes())
	require.NoError(t, err)
	require.Equal(t, uint8(2), got.Code)
	require.Equal(t, uint32(40), got.Pointer)
}

func TestChecksumBitFlipSensitivity(t *testing.T) {
	m := NewEchoRequest(5, 6, []byte{1, 2, 3})
	good := m.WithIpv6Checksum(src, dst)

	flippedSrc := src
	flippedSrc[0] ^= 0x01
	require.NotEqual(t, good, m.WithIpv6Checksum(flippedSrc, dst))

	m.Payload[0] ^= 0x01
	require.NotEqual(t, good, m.WithIpv6Checksum(src, dst))
}

func TestUnknownTypeRoundTrip(t *testing.T) {
	m := &Message{Kind: KindUnknown, UnknownType: 250, UnknownCode: 3}
	got, _, err := FromSlice(m.ToBytes())
	require.NoError(t, err)
	require.Equal(t, KindUnknown, got.Kind)
	require.Equal(t, uint8(250), got.UnknownType)
}
