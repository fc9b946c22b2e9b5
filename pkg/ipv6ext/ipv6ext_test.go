package ipv6ext

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arjunmenon/pktlayers/pkg/lenerr"
	"github.com/arjunmenon/pktlayers/pkg/values"
)

func TestGenericRoundTrip(t *testing.T) {
	h := GenericHeader{NextHeader: values.IpNumberTCP, Data: make([]byte, 14)} // total len 16 -> hdrExtLen=1
	wire := h.ToBytes()
	require.Equal(t, uint8(1), wire[1])

	got, rest, err := FromGenericSlice(wire, lenerr.LayerIpv6ExtHeader)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, h.NextHeader, got.NextHeader)
	require.Equal(t, h.Data, got.Data)
}

func TestGenericTooShort(t *testing.T) {
	_, _, err := FromGenericSlice([]byte{0}, lenerr.LayerIpv6ExtHeader)
	require.Error(t, err)
}

func TestFragmentRoundTrip(t *testing.T) {
	h := FragmentHeader{NextHeader: values.IpNumberTCP, FragmentOffset: values.NewIpFragOffsetUnchecked(100), MoreFragments: true, Identification: 0xCAFEBABE}
	b := h.ToBytes()

	got, rest, err := FragmentFromSlice(append(b[:], 1, 2))
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, rest)
	require.Equal(t, h, got)
}

func TestAuthZeroPayloadLenRejected(t *testing.T) {
	data := make([]byte, AuthFixedLen)
	data[1] = 0
	_, _, err := AuthFromSlice(data)
	require.Error(t, err)
}

func TestAuthRoundTrip(t *testing.T) {
	icv := make([]byte, 12)
	ah := &AuthHeader{NextHeader: values.IpNumberTCP, SecurityParametersIndex: 7, SequenceNumber: 1}
	ah.PayloadLen = uint8((AuthFixedLen+len(icv))/4 - 2)
	require.NoError(t, ah.SetIcv(icv))

	wire := ah.ToBytes()
	got, rest, err := AuthFromSlice(wire)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, ah.NextHeader, got.NextHeader)
	require.Equal(t, ah.SecurityParametersIndex, got.SecurityParametersIndex)
	require.Equal(t, ah.Icv(), got.Icv())
}
