// Package ethernet implements the Ethernet II header (RFC 894): a
// fixed 14-byte {destination, source, ethertype} triple with no length
// field of its own — the payload range comes from whatever carries the
// frame (an outer buffer, a capture record, ...).
package ethernet

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arjunmenon/pktlayers/pkg/common"
	"github.com/arjunmenon/pktlayers/pkg/lenerr"
	"github.com/arjunmenon/pktlayers/pkg/values"
)

// HeaderLen is the fixed size of an Ethernet II header.
const HeaderLen = 14

// Header is an owned, mutable Ethernet II header.
type Header struct {
	Destination common.MACAddress
	Source      common.MACAddress
	EtherType   values.EtherType
}

// FromBytes decodes a fixed-size header array. This can never fail: every
// 14-byte array is a structurally valid Ethernet2 header.
func FromBytes(b [HeaderLen]byte) Header {
	var h Header
	copy(h.Destination[:], b[0:6])
	copy(h.Source[:], b[6:12])
	h.EtherType = values.EtherType(binary.BigEndian.Uint16(b[12:14]))
	return h
}

// FromSlice decodes a header from the front of data and returns the
// remaining bytes (the payload, uninterpreted).
func FromSlice(data []byte) (Header, []byte, error) {
	if len(data) < HeaderLen {
		return Header{}, nil, &lenerr.LenError{
			RequiredLen: HeaderLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerEthernet2Header,
		}
	}
	var arr [HeaderLen]byte
	copy(arr[:], data[:HeaderLen])
	return FromBytes(arr), data[HeaderLen:], nil
}

// Read decodes a header from a stream.
func Read(r io.Reader) (Header, error) {
	var arr [HeaderLen]byte
	if _, err := io.ReadFull(r, arr[:]); err != nil {
		return Header{}, err
	}
	return FromBytes(arr), nil
}

// ToBytes serializes the header to its fixed wire form.
func (h Header) ToBytes() [HeaderLen]byte {
	var b [HeaderLen]byte
	copy(b[0:6], h.Destination[:])
	copy(b[6:12], h.Source[:])
	binary.BigEndian.PutUint16(b[12:14], uint16(h.EtherType))
	return b
}

// Write serializes the header to a stream.
func (h Header) Write(w io.Writer) error {
	b := h.ToBytes()
	_, err := w.Write(b[:])
	return err
}

// HeaderLen returns the constant header size; defined as a method for
// parity with the variable-length header codecs that implement the same
// signature.
func (h Header) HeaderLen() int { return HeaderLen }

func (h Header) String() string {
	return fmt.Sprintf("Ethernet2{Dst=%s, Src=%s, Type=%s}", h.Destination, h.Source, h.EtherType)
}

// Slice is a zero-copy view over a byte range already validated to hold
// exactly one Ethernet II header.
type Slice struct {
	data [HeaderLen]byte
}

// SliceFromSlice validates that data is at least HeaderLen bytes and
// returns a view over its first HeaderLen bytes plus the remainder.
func SliceFromSlice(data []byte) (Slice, []byte, error) {
	if len(data) < HeaderLen {
		return Slice{}, nil, &lenerr.LenError{
			RequiredLen: HeaderLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerEthernet2Header,
		}
	}
	var s Slice
	copy(s.data[:], data[:HeaderLen])
	return s, data[HeaderLen:], nil
}

func (s Slice) Destination() common.MACAddress {
	var m common.MACAddress
	copy(m[:], s.data[0:6])
	return m
}

func (s Slice) Source() common.MACAddress {
	var m common.MACAddress
	copy(m[:], s.data[6:12])
	return m
}

func (s Slice) EtherType() values.EtherType {
	return values.EtherType(binary.BigEndian.Uint16(s.data[12:14]))
}

// ToHeader lifts the slice into an owned, mutable Header.
func (s Slice) ToHeader() Header {
	return FromBytes(s.data)
}

// SliceLen is the number of bytes this slice view covers.
func (s Slice) SliceLen() int { return HeaderLen }
