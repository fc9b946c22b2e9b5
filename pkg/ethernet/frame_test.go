package ethernet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arjunmenon/pktlayers/pkg/common"
	"github.com/arjunmenon/pktlayers/pkg/lenerr"
	"github.com/arjunmenon/pktlayers/pkg/values"
)

func testHeader() Header {
	return Header{
		Destination: common.MACAddress{0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C},
		Source:      common.MACAddress{0x01, 0x02, 0x03, 0x04, 0x05, 0x06},
		EtherType:   values.EtherTypeIPv4,
	}
}

func TestFromSliceRoundTrip(t *testing.T) {
	h := testHeader()
	b := h.ToBytes()
	payload := []byte{0xAA, 0xBB, 0xCC}
	wire := append(b[:], payload...)

	got, rest, err := FromSlice(wire)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, payload, rest)
}

func TestFromSliceTooShort(t *testing.T) {
	_, _, err := FromSlice(make([]byte, 10))
	require.Error(t, err)
	var lenErr *lenerr.LenError
	require.ErrorAs(t, err, &lenErr)
	require.Equal(t, lenerr.LayerEthernet2Header, lenErr.Layer)
	require.Equal(t, HeaderLen, lenErr.RequiredLen)
	require.Equal(t, 10, lenErr.Len)
}

func TestReadWrite(t *testing.T) {
	h := testHeader()
	var buf bytes.Buffer
	require.NoError(t, h.Write(&buf))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestSliceAccessorsMatchHeader(t *testing.T) {
	h := testHeader()
	b := h.ToBytes()

	s, rest, err := SliceFromSlice(b[:])
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, h.Destination, s.Destination())
	require.Equal(t, h.Source, s.Source())
	require.Equal(t, h.EtherType, s.EtherType())
	require.Equal(t, h, s.ToHeader())
}
