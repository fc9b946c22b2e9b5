package arp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arjunmenon/pktlayers/pkg/values"
)

func TestEthernetIPv4RoundTrip(t *testing.T) {
	p := NewEthernetIPv4Request([6]byte{1, 2, 3, 4, 5, 6}, [4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2})
	wire, err := p.ToBytes()
	require.NoError(t, err)
	require.Len(t, wire, FixedHeaderLen+2*6+2*4)

	got, rest, err := FromSlice(wire)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, p.HardwareType, got.HardwareType)
	require.Equal(t, p.ProtocolType, got.ProtocolType)
	require.Equal(t, p.Operation, got.Operation)
	require.Equal(t, p.SenderHwAddr, got.SenderHwAddr)
	require.Equal(t, p.SenderProtoAddr, got.SenderProtoAddr)
	require.Equal(t, p.TargetHwAddr, got.TargetHwAddr)
	require.Equal(t, p.TargetProtoAddr, got.TargetProtoAddr)
}

func TestFromSliceTooShortForFixedHeader(t *testing.T) {
	_, _, err := FromSlice(make([]byte, 4))
	require.Error(t, err)
}

func TestFromSliceTooShortForAddresses(t *testing.T) {
	data := make([]byte, FixedHeaderLen+1)
	data[4] = 6 // hw len
	data[5] = 4 // proto len
	_, _, err := FromSlice(data)
	require.Error(t, err)
}

func TestToBytesMismatchedHwLen(t *testing.T) {
	p := &Packet{
		HardwareType:    values.ArpHardwareIdEthernet,
		ProtocolType:    values.EtherTypeIPv4,
		Operation:       values.ArpOperationRequest,
		SenderHwAddr:    make([]byte, 6),
		TargetHwAddr:    make([]byte, 4),
		SenderProtoAddr: make([]byte, 4),
		TargetProtoAddr: make([]byte, 4),
	}
	_, err := p.ToBytes()
	require.Error(t, err)
}

func TestVariableWidthAddresses(t *testing.T) {
	p := &Packet{
		HardwareType:    values.ArpHardwareIdIEEE802,
		ProtocolType:    values.EtherTypeIPv6,
		Operation:       values.ArpOperationReply,
		SenderHwAddr:    make([]byte, 8),
		TargetHwAddr:    make([]byte, 8),
		SenderProtoAddr: make([]byte, 16),
		TargetProtoAddr: make([]byte, 16),
	}
	wire, err := p.ToBytes()
	require.NoError(t, err)

	got, rest, err := FromSlice(wire)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, 8, got.HwAddrLen())
	require.Equal(t, 16, got.ProtoAddrLen())
}
