// Package udp implements the User Datagram Protocol header (RFC 768).
package udp

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arjunmenon/pktlayers/pkg/checksum"
	"github.com/arjunmenon/pktlayers/pkg/lenerr"
)

// HeaderLen is the fixed size of a UDP header.
const HeaderLen = 8

// Header is a decoded UDP header.
type Header struct {
	SourcePort      uint16
	DestinationPort uint16
	Length          uint16
	Checksum        uint16
}

// FromBytes decodes a fixed-size header array. Infallible.
func FromBytes(b [HeaderLen]byte) Header {
	return Header{
		SourcePort:      binary.BigEndian.Uint16(b[0:2]),
		DestinationPort: binary.BigEndian.Uint16(b[2:4]),
		Length:          binary.BigEndian.Uint16(b[4:6]),
		Checksum:        binary.BigEndian.Uint16(b[6:8]),
	}
}

// FromSlice decodes a header from the front of data. The payload range
// is bounded by the header's own Length field (LenSourceUdpHeaderLen)
// when it is internally consistent; callers that need lax fallback
// behavior should bound the payload themselves using the outer buffer.
func FromSlice(data []byte) (Header, []byte, error) {
	if len(data) < HeaderLen {
		return Header{}, nil, &lenerr.LenError{
			RequiredLen: HeaderLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerUdpHeader,
		}
	}
	var arr [HeaderLen]byte
	copy(arr[:], data[:HeaderLen])
	h := FromBytes(arr)

	if int(h.Length) < HeaderLen {
		return Header{}, nil, &lenerr.LenError{
			RequiredLen: HeaderLen, Len: int(h.Length),
			LenSource: lenerr.LenSourceUdpHeaderLen, Layer: lenerr.LayerUdpHeader,
		}
	}
	if int(h.Length) > len(data) {
		return Header{}, nil, &lenerr.LenError{
			RequiredLen: int(h.Length), Len: len(data),
			LenSource: lenerr.LenSourceUdpHeaderLen, Layer: lenerr.LayerUdpHeader,
		}
	}
	return h, data[HeaderLen:h.Length], nil
}

// Read decodes a header from a stream.
func Read(r io.Reader) (Header, error) {
	var arr [HeaderLen]byte
	if _, err := io.ReadFull(r, arr[:]); err != nil {
		return Header{}, err
	}
	return FromBytes(arr), nil
}

// ToBytes serializes the header.
func (h Header) ToBytes() [HeaderLen]byte {
	var b [HeaderLen]byte
	binary.BigEndian.PutUint16(b[0:2], h.SourcePort)
	binary.BigEndian.PutUint16(b[2:4], h.DestinationPort)
	binary.BigEndian.PutUint16(b[4:6], h.Length)
	binary.BigEndian.PutUint16(b[6:8], h.Checksum)
	return b
}

// Write serializes the header to a stream.
func (h Header) Write(w io.Writer) error {
	b := h.ToBytes()
	_, err := w.Write(b[:])
	return err
}

// WithIpv4Checksum computes the checksum over an IPv4 pseudo-header, this
// header (checksum field zeroed) and payload. A computed value of zero is
// replaced with 0xFFFF per RFC 768, since zero on the wire means "no
// checksum computed".
func (h Header) WithIpv4Checksum(src, dst [4]byte, payload []byte) uint16 {
	s := checksum.Ipv4PseudoHeader(src, dst, 17, h.Length)
	zeroed := h
	zeroed.Checksum = 0
	b := zeroed.ToBytes()
	s.AddSlice(b[:])
	s.AddSlice(payload)
	return s.OnesComplementWithNoZero()
}

// WithIpv6Checksum computes the checksum over an IPv6 pseudo-header, this
// header (checksum field zeroed) and payload. UDP over IPv6 may never
// carry a zero checksum (RFC 8200 §8.1), so a zero result is returned as
// 0xFFFF, as in WithIpv4Checksum.
func (h Header) WithIpv6Checksum(src, dst [16]byte, payload []byte) uint16 {
	s := checksum.Ipv6PseudoHeader(src, dst, 17, uint32(h.Length))
	zeroed := h
	zeroed.Checksum = 0
	b := zeroed.ToBytes()
	s.AddSlice(b[:])
	s.AddSlice(payload)
	return s.OnesComplementWithNoZero()
}

func (h Header) String() string {
	return fmt.Sprintf("Udp{%d -> %d, Len=%d}", h.SourcePort, h.DestinationPort, h.Length)
}

// New builds a header with Length set for the given payload size.
func New(srcPort, dstPort uint16, payloadLen int) Header {
	return Header{
		SourcePort:      srcPort,
		DestinationPort: dstPort,
		Length:          uint16(HeaderLen + payloadLen),
	}
}

// Slice is a zero-copy view over a byte range already validated to hold
// exactly one UDP header.
type Slice struct {
	data [HeaderLen]byte
}

// SliceFromSlice validates that data is at least HeaderLen bytes.
func SliceFromSlice(data []byte) (Slice, []byte, error) {
	if len(data) < HeaderLen {
		return Slice{}, nil, &lenerr.LenError{
			RequiredLen: HeaderLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerUdpHeader,
		}
	}
	var s Slice
	copy(s.data[:], data[:HeaderLen])
	return s, data[HeaderLen:], nil
}

func (s Slice) Length() uint16   { return binary.BigEndian.Uint16(s.data[4:6]) }
func (s Slice) ToHeader() Header { return FromBytes(s.data) }
func (s Slice) SliceLen() int    { return HeaderLen }
