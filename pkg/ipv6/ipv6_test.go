package ipv6

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arjunmenon/pktlayers/pkg/common"
	"github.com/arjunmenon/pktlayers/pkg/values"
)

func TestFromSliceRoundTrip(t *testing.T) {
	src, _ := common.ParseIPv6("fe80::1")
	dst, _ := common.ParseIPv6("fe80::2")
	h := New(src, dst, values.IpNumberUDP)
	payload := []byte{1, 2, 3, 4}
	h.PayloadLength = uint16(len(payload))

	b := h.ToBytes()
	wire := append(b[:], payload...)

	got, rest, err := FromSlice(wire)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, payload, rest)
}

func TestFromSliceWrongVersion(t *testing.T) {
	data := make([]byte, HeaderLen)
	data[0] = 0x40 // version 4
	_, _, err := FromSlice(data)
	require.Error(t, err)
}

func TestFromSlicePayloadLengthExceedsBuffer(t *testing.T) {
	h := New(common.IPv6Address{}, common.IPv6Address{}, values.IpNumberTCP)
	h.PayloadLength = 100
	b := h.ToBytes()
	_, _, err := FromSlice(b[:])
	require.Error(t, err)
}

func TestZeroPayloadLengthUsesRestOfBuffer(t *testing.T) {
	h := New(common.IPv6Address{}, common.IPv6Address{}, values.IpNumberTCP)
	h.PayloadLength = 0
	b := h.ToBytes()
	wire := append(b[:], 1, 2, 3)

	_, rest, err := FromSlice(wire)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, rest)
}

func TestSliceAccessors(t *testing.T) {
	h := New(common.IPv6Address{}, common.IPv6Address{}, values.IpNumberICMP)
	h.PayloadLength = 0
	b := h.ToBytes()

	s, _, err := SliceFromSlice(b[:])
	require.NoError(t, err)
	require.Equal(t, h.NextHeader, s.NextHeader())
	require.Equal(t, h.PayloadLength, s.PayloadLength())
	require.Equal(t, h, s.ToHeader())
}
