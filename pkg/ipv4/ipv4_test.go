package ipv4

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arjunmenon/pktlayers/pkg/common"
	"github.com/arjunmenon/pktlayers/pkg/values"
)

func TestFromSliceRoundTrip(t *testing.T) {
	h := New(common.IPv4Address{192, 168, 1, 1}, common.IPv4Address{192, 168, 1, 2}, values.IpNumberUDP)
	h.Identification = 0xBEEF
	h.TotalLen = uint16(h.HeaderLen() + 8)
	h.FillChecksum()

	wire := h.ToBytes()
	wire = append(wire, make([]byte, 8)...)

	got, rest, err := FromSlice(wire)
	require.NoError(t, err)
	require.Len(t, rest, 8)
	require.Equal(t, h.Source, got.Source)
	require.Equal(t, h.Destination, got.Destination)
	require.Equal(t, h.HeaderChecksum, got.HeaderChecksum)
	require.True(t, got.VerifyChecksum())
}

func TestIhlOptionsLenFormula(t *testing.T) {
	for k := 0; k <= 10; k++ {
		h := New(common.IPv4Address{}, common.IPv4Address{}, values.IpNumberTCP)
		require.NoError(t, h.SetOptions(make([]byte, 4*k)))
		require.Equal(t, 20+4*k, h.HeaderLen())
		require.Equal(t, uint8(5+k), h.Ihl())
	}
}

func TestIhlBelow5Fails(t *testing.T) {
	for ihl := uint8(0); ihl < 5; ihl++ {
		data := make([]byte, 20)
		data[0] = (Version << 4) | ihl
		_, _, err := FromSlice(data)
		require.Error(t, err)
	}
}

func TestUnsupportedVersion(t *testing.T) {
	data := make([]byte, 20)
	data[0] = (6 << 4) | 5
	_, _, err := FromSlice(data)
	require.Error(t, err)
}

func TestTotalLenSmallerThanHeaderFallsBackToSlice(t *testing.T) {
	h := New(common.IPv4Address{10, 0, 0, 1}, common.IPv4Address{10, 0, 0, 2}, values.IpNumberUDP)
	h.TotalLen = 5 // smaller than header_len
	wire := h.ToBytes()
	wire = append(wire, 1, 2, 3, 4)

	got, rest, err := FromSlice(wire)
	require.NoError(t, err)
	require.Equal(t, h.HeaderLen(), got.HeaderLen())
	require.Equal(t, []byte{1, 2, 3, 4}, rest)
}
