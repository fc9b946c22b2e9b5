package vlan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arjunmenon/pktlayers/pkg/values"
)

func TestFromBytesToBytesRoundTrip(t *testing.T) {
	pcp, err := values.NewVlanPcp(5)
	require.NoError(t, err)
	id, err := values.NewVlanId(100)
	require.NoError(t, err)

	h := Header{PriorityCodePoint: pcp, DropEligible: true, VlanId: id, EtherType: values.EtherTypeIPv4}
	b := h.ToBytes()
	got := FromBytes(b)
	require.Equal(t, h, got)
}

func TestFromSliceTooShort(t *testing.T) {
	_, _, err := FromSlice(make([]byte, 2))
	require.Error(t, err)
}

func TestDoubleFromSliceRoundTrip(t *testing.T) {
	outer := Header{VlanId: values.NewVlanIdUnchecked(10), EtherType: values.EtherTypeVlanTaggedFrame}
	inner := Header{VlanId: values.NewVlanIdUnchecked(20), EtherType: values.EtherTypeIPv4}
	d := DoubleHeader{Outer: outer, Inner: inner}
	wire := d.ToBytes()

	got, rest, err := DoubleFromSlice(wire[:])
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, d, got)
}

func TestDoubleFromSliceShortInner(t *testing.T) {
	outer := Header{VlanId: values.NewVlanIdUnchecked(10), EtherType: values.EtherTypeVlanTaggedFrame}
	wire := outer.ToBytes()
	buf := append(wire[:], 0x00, 0x00) // only 2 of 4 bytes for the inner tag

	_, _, err := DoubleFromSlice(buf)
	require.Error(t, err)
}

func TestSliceAccessorsMatchHeader(t *testing.T) {
	h := Header{VlanId: values.NewVlanIdUnchecked(42), EtherType: values.EtherTypeIPv6}
	b := h.ToBytes()

	s, rest, err := SliceFromSlice(b[:])
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, h.EtherType, s.EtherType())
	require.Equal(t, h.VlanId, s.VlanId())
	require.Equal(t, h, s.ToHeader())
}
