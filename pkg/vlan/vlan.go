// Package vlan implements the 802.1Q/802.1ad VLAN tag header: a 4-byte
// {pcp, dei, vlan_id, ethertype} tuple inserted between the Ethernet2
// header and its payload. Single and double (QinQ) tagging share the
// same per-tag layout, so both are built from the one Header type.
package vlan

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arjunmenon/pktlayers/pkg/lenerr"
	"github.com/arjunmenon/pktlayers/pkg/values"
)

// HeaderLen is the fixed size of a single VLAN tag.
const HeaderLen = 4

// Header is one 802.1Q/802.1ad VLAN tag.
type Header struct {
	PriorityCodePoint values.VlanPcp
	DropEligible      bool
	VlanId            values.VlanId
	EtherType         values.EtherType
}

// FromBytes decodes a fixed-size tag. Infallible: every 4-byte array is a
// structurally valid VLAN tag (the PCP/DEI/VlanId bitfields always mask
// cleanly out of 2 bytes).
func FromBytes(b [HeaderLen]byte) Header {
	tci := binary.BigEndian.Uint16(b[0:2])
	return Header{
		PriorityCodePoint: values.NewVlanPcpUnchecked(uint8(tci >> 13)),
		DropEligible:      tci&0x1000 != 0,
		VlanId:            values.NewVlanIdUnchecked(tci & 0x0FFF),
		EtherType:         values.EtherType(binary.BigEndian.Uint16(b[2:4])),
	}
}

// FromSlice decodes a single VLAN tag from the front of data.
func FromSlice(data []byte) (Header, []byte, error) {
	if len(data) < HeaderLen {
		return Header{}, nil, &lenerr.LenError{
			RequiredLen: HeaderLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerVlanHeader,
		}
	}
	var arr [HeaderLen]byte
	copy(arr[:], data[:HeaderLen])
	return FromBytes(arr), data[HeaderLen:], nil
}

// Read decodes a tag from a stream.
func Read(r io.Reader) (Header, error) {
	var arr [HeaderLen]byte
	if _, err := io.ReadFull(r, arr[:]); err != nil {
		return Header{}, err
	}
	return FromBytes(arr), nil
}

// ToBytes serializes the tag to its fixed wire form.
func (h Header) ToBytes() [HeaderLen]byte {
	var b [HeaderLen]byte
	tci := uint16(h.PriorityCodePoint.Value())<<13 | uint16(h.VlanId.Value())
	if h.DropEligible {
		tci |= 0x1000
	}
	binary.BigEndian.PutUint16(b[0:2], tci)
	binary.BigEndian.PutUint16(b[2:4], uint16(h.EtherType))
	return b
}

// Write serializes the tag to a stream.
func (h Header) Write(w io.Writer) error {
	b := h.ToBytes()
	_, err := w.Write(b[:])
	return err
}

func (h Header) String() string {
	return fmt.Sprintf("Vlan{Id=%d, Pcp=%d, Dei=%t, Type=%s}",
		h.VlanId.Value(), h.PriorityCodePoint.Value(), h.DropEligible, h.EtherType)
}

// Slice is a zero-copy view over a byte range already validated to hold
// exactly one VLAN tag.
type Slice struct {
	data [HeaderLen]byte
}

// SliceFromSlice validates that data is at least HeaderLen bytes and
// returns a view over its first HeaderLen bytes plus the remainder.
func SliceFromSlice(data []byte) (Slice, []byte, error) {
	if len(data) < HeaderLen {
		return Slice{}, nil, &lenerr.LenError{
			RequiredLen: HeaderLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerVlanHeader,
		}
	}
	var s Slice
	copy(s.data[:], data[:HeaderLen])
	return s, data[HeaderLen:], nil
}

func (s Slice) EtherType() values.EtherType {
	return values.EtherType(binary.BigEndian.Uint16(s.data[2:4]))
}

func (s Slice) VlanId() values.VlanId {
	tci := binary.BigEndian.Uint16(s.data[0:2])
	return values.NewVlanIdUnchecked(tci & 0x0FFF)
}

// ToHeader lifts the slice into an owned, mutable Header.
func (s Slice) ToHeader() Header { return FromBytes(s.data) }

// SliceLen is the number of bytes this slice view covers.
func (s Slice) SliceLen() int { return HeaderLen }

// SingleHeader is one 802.1Q tag over an untagged payload.
type SingleHeader struct {
	Header
}

// DoubleHeader is an 802.1ad/QinQ outer tag followed by an inner 802.1Q
// tag, as emitted by a provider-bridging edge switch.
type DoubleHeader struct {
	Outer Header
	Inner Header
}

// DoubleHeaderLen is the combined wire size of both tags.
const DoubleHeaderLen = 2 * HeaderLen

// DoubleFromSlice decodes an outer+inner VLAN tag pair.
func DoubleFromSlice(data []byte) (DoubleHeader, []byte, error) {
	outer, rest, err := FromSlice(data)
	if err != nil {
		return DoubleHeader{}, nil, err
	}
	inner, rest, err := FromSlice(rest)
	if err != nil {
		if le, ok := err.(*lenerr.LenError); ok {
			return DoubleHeader{}, nil, le.AddOffset(HeaderLen)
		}
		return DoubleHeader{}, nil, err
	}
	return DoubleHeader{Outer: outer, Inner: inner}, rest, nil
}

// ToBytes serializes both tags back to back.
func (h DoubleHeader) ToBytes() [DoubleHeaderLen]byte {
	var b [DoubleHeaderLen]byte
	outer := h.Outer.ToBytes()
	inner := h.Inner.ToBytes()
	copy(b[0:HeaderLen], outer[:])
	copy(b[HeaderLen:], inner[:])
	return b
}
