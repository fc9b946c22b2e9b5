// Package ipv6 implements the fixed IPv6 header (RFC 8200 §3): version,
// traffic class, flow label, payload length, next header, hop limit and
// the two 128-bit addresses. Extension headers live in pkg/ipv6ext.
package ipv6

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arjunmenon/pktlayers/pkg/common"
	"github.com/arjunmenon/pktlayers/pkg/lenerr"
	"github.com/arjunmenon/pktlayers/pkg/values"
)

// HeaderLen is the fixed size of the IPv6 header.
const HeaderLen = 40

// Version is the fixed version nibble for IPv6.
const Version = 6

// Header is a decoded IPv6 fixed header.
type Header struct {
	TrafficClass uint8
	FlowLabel    values.Ipv6FlowLabel
	PayloadLength uint16
	NextHeader   values.IpNumber
	HopLimit     uint8
	Source       common.IPv6Address
	Destination  common.IPv6Address
}

// FromBytes decodes a fixed-size header array. Infallible: it does not
// check the version nibble (FromSlice does), so it is for callers who
// already know the bytes are IPv6.
func FromBytes(b [HeaderLen]byte) Header {
	versionTcFlow := binary.BigEndian.Uint32(b[0:4])
	var h Header
	h.TrafficClass = uint8(versionTcFlow >> 20)
	h.FlowLabel = values.NewIpv6FlowLabelUnchecked(versionTcFlow & 0xFFFFF)
	h.PayloadLength = binary.BigEndian.Uint16(b[4:6])
	h.NextHeader = values.IpNumber(b[6])
	h.HopLimit = b[7]
	copy(h.Source[:], b[8:24])
	copy(h.Destination[:], b[24:40])
	return h
}

// FromSlice decodes a header from the front of data, validating the
// version nibble. The payload slice is bounded by PayloadLength
// (LenSourceIpv6HeaderPayloadLen) when it fits the outer buffer; a
// PayloadLength of 0 is a jumbogram signal and is treated here as "use
// the rest of the buffer" (see the jumbogram note in the top-level
// design notes — the Jumbo Payload hop-by-hop option itself is not
// parsed).
func FromSlice(data []byte) (Header, []byte, error) {
	if len(data) < HeaderLen {
		return Header{}, nil, &lenerr.LenError{
			RequiredLen: HeaderLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerIpv6Header,
		}
	}
	version := data[0] >> 4
	if version != Version {
		return Header{}, nil, &lenerr.UnsupportedIpVersionError{VersionNumber: version}
	}
	var arr [HeaderLen]byte
	copy(arr[:], data[:HeaderLen])
	h := FromBytes(arr)

	rest := data[HeaderLen:]
	if h.PayloadLength == 0 {
		return h, rest, nil
	}
	if int(h.PayloadLength) > len(rest) {
		return Header{}, nil, &lenerr.LenError{
			RequiredLen: HeaderLen + int(h.PayloadLength), Len: len(data),
			LenSource: lenerr.LenSourceIpv6HeaderPayloadLen, Layer: lenerr.LayerIpv6Header,
		}
	}
	return h, rest[:h.PayloadLength], nil
}

// Read decodes a header from a stream.
func Read(r io.Reader) (Header, error) {
	var arr [HeaderLen]byte
	if _, err := io.ReadFull(r, arr[:]); err != nil {
		return Header{}, err
	}
	if arr[0]>>4 != Version {
		return Header{}, &lenerr.UnsupportedIpVersionError{VersionNumber: arr[0] >> 4}
	}
	return FromBytes(arr), nil
}

// ToBytes serializes the header.
func (h Header) ToBytes() [HeaderLen]byte {
	var b [HeaderLen]byte
	versionTcFlow := uint32(Version)<<28 | uint32(h.TrafficClass)<<20 | h.FlowLabel.Value()
	binary.BigEndian.PutUint32(b[0:4], versionTcFlow)
	binary.BigEndian.PutUint16(b[4:6], h.PayloadLength)
	b[6] = h.NextHeader.Value()
	b[7] = h.HopLimit
	copy(b[8:24], h.Source[:])
	copy(b[24:40], h.Destination[:])
	return b
}

// Write serializes the header to a stream.
func (h Header) Write(w io.Writer) error {
	b := h.ToBytes()
	_, err := w.Write(b[:])
	return err
}

func (h Header) String() string {
	return fmt.Sprintf("Ipv6{%s -> %s, Next=%s, HopLimit=%d, PayloadLen=%d}",
		h.Source, h.Destination, h.NextHeader, h.HopLimit, h.PayloadLength)
}

// New builds a header with sane defaults (hop limit 64, zero flow label).
func New(src, dst common.IPv6Address, nextHeader values.IpNumber) Header {
	return Header{
		HopLimit:    64,
		NextHeader:  nextHeader,
		Source:      src,
		Destination: dst,
	}
}

// Slice is a zero-copy view over a byte range already validated to hold
// exactly one IPv6 fixed header.
type Slice struct {
	data [HeaderLen]byte
}

// SliceFromSlice validates that data is at least HeaderLen bytes and the
// version nibble is 6.
func SliceFromSlice(data []byte) (Slice, []byte, error) {
	if len(data) < HeaderLen {
		return Slice{}, nil, &lenerr.LenError{
			RequiredLen: HeaderLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerIpv6Header,
		}
	}
	if data[0]>>4 != Version {
		return Slice{}, nil, &lenerr.UnsupportedIpVersionError{VersionNumber: data[0] >> 4}
	}
	var s Slice
	copy(s.data[:], data[:HeaderLen])
	return s, data[HeaderLen:], nil
}

func (s Slice) PayloadLength() uint16   { return binary.BigEndian.Uint16(s.data[4:6]) }
func (s Slice) NextHeader() values.IpNumber { return values.IpNumber(s.data[6]) }
func (s Slice) ToHeader() Header        { return FromBytes(s.data) }
func (s Slice) SliceLen() int           { return HeaderLen }
