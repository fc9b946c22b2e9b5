package macsec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromSliceNoSciRoundTrip(t *testing.T) {
	h := Header{Encrypted: true, Changed: true, AssociationNumber: 2, ShortLength: 0, PacketNumber: 0xDEADBEEF}
	wire := h.ToBytes()
	require.Len(t, wire, MinHeaderLen)

	got, rest, err := FromSlice(append(wire, 0xAA, 0xBB))
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, []byte{0xAA, 0xBB}, rest)
}

func TestFromSliceWithSciRoundTrip(t *testing.T) {
	h := Header{
		SecureChannel: true, Encrypted: true, AssociationNumber: 1,
		PacketNumber: 42, SCI: [8]byte{1, 2, 3, 4, 5, 6, 7, 8},
	}
	wire := h.ToBytes()
	require.Len(t, wire, HeaderLenWithSci)

	got, rest, err := FromSlice(wire)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, h, got)
}

func TestFromSliceTooShortForSci(t *testing.T) {
	h := Header{SecureChannel: true, PacketNumber: 1}
	wire := h.ToBytes()
	_, _, err := FromSlice(wire[:MinHeaderLen+2])
	require.Error(t, err)
}

func TestReadWrite(t *testing.T) {
	h := Header{SecureChannel: true, PacketNumber: 7, SCI: [8]byte{9, 9, 9, 9, 9, 9, 9, 9}}
	var buf bytes.Buffer
	require.NoError(t, h.Write(&buf))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}
