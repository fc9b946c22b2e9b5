package icmpv4

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEchoRoundTrip(t *testing.T) {
	m := NewEchoRequest(1, 2, []byte{0xAA, 0xBB})
	m.FillChecksum()

	got, rest, err := FromSlice(m.ToBytes())
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, KindEchoRequest, got.Kind)
	require.Equal(t, m.Id, got.Id)
	require.Equal(t, m.Sequence, got.Sequence)
	require.Equal(t, m.Checksum, got.Checksum)
}

func TestTooShort(t *testing.T) {
	_, _, err := FromSlice([]byte{8, 0, 0, 0})
	require.Error(t, err)
}

func TestRedirectRoundTrip(t *testing.T) {
	m := &Message{Kind: KindRedirect, Code: 1, Gateway: [4]byte{10, 0, 0, 1}}
	got, _, err := FromSlice(m.ToBytes())
	require.NoError(t, err)
	require.Equal(t, KindRedirect, got.Kind)
	require.Equal(t, uint8(1), got.Code)
	require.Equal(t, m.Gateway, got.Gateway)
}

func TestTimestampRoundTrip(t *testing.T) {
	m := &Message{Kind: KindTimestampRequest, Id: 5, Sequence: 6, Originate: 100, Receive: 200, Transmit: 300}
	wire := m.ToBytes()
	require.Len(t, wire, TimestampLen)

	got, rest, err := FromSlice(wire)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, KindTimestampRequest, got.Kind)
	require.Equal(t, m.Originate, got.Originate)
	require.Equal(t, m.Receive, got.Receive)
	require.Equal(t, m.Transmit, got.Transmit)
}

func TestTimestampTooShort(t *testing.T) {
	data := make([]byte, MinLen)
	data[0] = 13
	_, _, err := FromSlice(data)
	require.Error(t, err)
}

func TestUnknownTypeRoundTrip(t *testing.T) {
	m := &Message{Kind: KindUnknown, UnknownType: 200, UnknownCode: 9}
	got, _, err := FromSlice(m.ToBytes())
	require.NoError(t, err)
	require.Equal(t, KindUnknown, got.Kind)
	require.Equal(t, uint8(200), got.UnknownType)
	require.Equal(t, uint8(9), got.UnknownCode)
}

func TestChecksumBitFlipSensitivity(t *testing.T) {
	m := NewEchoReply(1, 1, []byte{1, 2, 3, 4})
	m.FillChecksum()
	good := m.Checksum

	m.Payload[0] ^= 0x01
	require.NotEqual(t, good, m.CalcChecksum())
}
