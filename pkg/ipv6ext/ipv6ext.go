// Package ipv6ext implements the IPv6 extension headers (RFC 8200, RFC
// 4302): the generic {next_header, hdr_ext_len}*8-byte TLV shape shared
// by hop-by-hop, routing, destination-options, mobility, HIP and Shim6;
// the fixed 8-byte fragment header; and the authentication header's own
// `(payload_len+2)*4` length formula. Ordering rules across a chain of
// these headers are enforced by the chaining engine, not here — this
// package only decodes/encodes one header at a time.
package ipv6ext

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arjunmenon/pktlayers/pkg/lenerr"
	"github.com/arjunmenon/pktlayers/pkg/values"
)

// MaxGenericDataLen is the largest possible options/routing-data payload
// for a generic extension header: hdr_ext_len maxes out at 255, giving a
// total header length of (255+1)*8 = 2048 bytes, minus the 2-byte prefix.
const MaxGenericDataLen = 256*8 - 2

// GenericHeader is the shared shape of hop-by-hop, routing,
// destination-options, mobility, HIP and Shim6 extension headers: a
// {next_header, hdr_ext_len} prefix followed by (hdr_ext_len+1)*8-2 bytes
// of header-specific data this codec does not interpret further.
type GenericHeader struct {
	NextHeader values.IpNumber
	HdrExtLen  uint8
	Data       []byte
}

// HeaderLen returns the wire length of this header: 2 bytes prefix plus
// (HdrExtLen+1)*8-2 bytes of data.
func (h *GenericHeader) HeaderLen() int { return (int(h.HdrExtLen) + 1) * 8 }

// FromGenericSlice decodes a generic extension header from the front of
// data. layer identifies which concrete extension kind is being decoded,
// for error attribution.
func FromGenericSlice(data []byte, layer lenerr.Layer) (GenericHeader, []byte, error) {
	if len(data) < 2 {
		return GenericHeader{}, nil, &lenerr.LenError{
			RequiredLen: 2, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: layer,
		}
	}
	h := GenericHeader{
		NextHeader: values.IpNumber(data[0]),
		HdrExtLen:  data[1],
	}
	total := h.HeaderLen()
	if len(data) < total {
		return GenericHeader{}, nil, &lenerr.LenError{
			RequiredLen: total, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: layer,
		}
	}
	h.Data = append([]byte(nil), data[2:total]...)
	return h, data[total:], nil
}

// ToBytes serializes the header. HdrExtLen is derived from len(Data),
// which the caller must keep a multiple of 8 bytes (minus the 2-byte
// prefix) for the round-trip to preserve HdrExtLen exactly.
func (h *GenericHeader) ToBytes() []byte {
	hdrExtLen := uint8((len(h.Data)+2)/8 - 1)
	b := make([]byte, 2+len(h.Data))
	b[0] = h.NextHeader.Value()
	b[1] = hdrExtLen
	copy(b[2:], h.Data)
	return b
}

func (h *GenericHeader) String() string {
	return fmt.Sprintf("Ipv6Ext{Next=%s, Len=%d}", h.NextHeader, h.HeaderLen())
}

// FragmentHeaderLen is the fixed size of an IPv6 fragment header.
const FragmentHeaderLen = 8

// FragmentHeader is the IPv6 Fragment extension header (RFC 8200 §4.5).
type FragmentHeader struct {
	NextHeader     values.IpNumber
	FragmentOffset values.IpFragOffset
	MoreFragments  bool
	Identification uint32
}

// FragmentFromSlice decodes a fragment header from the front of data.
func FragmentFromSlice(data []byte) (FragmentHeader, []byte, error) {
	if len(data) < FragmentHeaderLen {
		return FragmentHeader{}, nil, &lenerr.LenError{
			RequiredLen: FragmentHeaderLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerIpv6FragmentHeader,
		}
	}
	offsetFlags := binary.BigEndian.Uint16(data[2:4])
	h := FragmentHeader{
		NextHeader:     values.IpNumber(data[0]),
		FragmentOffset: values.NewIpFragOffsetUnchecked(offsetFlags >> 3),
		MoreFragments:  offsetFlags&0x1 != 0,
		Identification: binary.BigEndian.Uint32(data[4:8]),
	}
	return h, data[FragmentHeaderLen:], nil
}

// ToBytes serializes the fragment header.
func (h FragmentHeader) ToBytes() [FragmentHeaderLen]byte {
	var b [FragmentHeaderLen]byte
	b[0] = h.NextHeader.Value()
	b[1] = 0
	offsetFlags := h.FragmentOffset.Value() << 3
	if h.MoreFragments {
		offsetFlags |= 0x1
	}
	binary.BigEndian.PutUint16(b[2:4], offsetFlags)
	binary.BigEndian.PutUint32(b[4:8], h.Identification)
	return b
}

// Write serializes the fragment header to a stream.
func (h FragmentHeader) Write(w io.Writer) error {
	b := h.ToBytes()
	_, err := w.Write(b[:])
	return err
}

func (h FragmentHeader) String() string {
	return fmt.Sprintf("Ipv6Fragment{Next=%s, Offset=%d, M=%t, Id=%d}",
		h.NextHeader, h.FragmentOffset.Value(), h.MoreFragments, h.Identification)
}

// MaxIcvLen is the authentication header's fixed inline ICV capacity.
const MaxIcvLen = 1024

// AuthFixedLen is the size of the authentication header before its ICV:
// next_header, payload_len, 2 reserved bytes, SPI, sequence number.
const AuthFixedLen = 12

// AuthHeader is the IP Authentication Header (RFC 4302).
type AuthHeader struct {
	NextHeader      values.IpNumber
	PayloadLen      uint8 // raw wire field: (header_len/4)-2
	SecurityParametersIndex uint32
	SequenceNumber  uint32

	icvLen int
	icv    [MaxIcvLen]byte
}

// HeaderLen returns the wire length: (PayloadLen+2)*4 bytes.
func (h *AuthHeader) HeaderLen() int { return (int(h.PayloadLen) + 2) * 4 }

// Icv returns the integrity check value bytes.
func (h *AuthHeader) Icv() []byte { return h.icv[:h.icvLen] }

// SetIcv stores the ICV, which must fit within MaxIcvLen.
func (h *AuthHeader) SetIcv(icv []byte) error {
	if len(icv) > MaxIcvLen {
		return &values.ValueTooBigError{Actual: uint32(len(icv)), MaxAllowed: MaxIcvLen, ValueType: "IpAuthIcvLen"}
	}
	h.icvLen = len(icv)
	copy(h.icv[:], icv)
	return nil
}

// AuthFromSlice decodes an authentication header from the front of data.
// A PayloadLen of 0 leaves no room for an ICV and is rejected with
// ZeroPayloadLenError, per RFC 4302's minimum integrity-check requirement.
func AuthFromSlice(data []byte) (*AuthHeader, []byte, error) {
	if len(data) < AuthFixedLen {
		return nil, nil, &lenerr.LenError{
			RequiredLen: AuthFixedLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerIpAuthHeader,
		}
	}
	payloadLen := data[1]
	if payloadLen == 0 {
		return nil, nil, &lenerr.ZeroPayloadLenError{}
	}
	h := &AuthHeader{
		NextHeader:              values.IpNumber(data[0]),
		PayloadLen:              payloadLen,
		SecurityParametersIndex: binary.BigEndian.Uint32(data[4:8]),
		SequenceNumber:          binary.BigEndian.Uint32(data[8:12]),
	}
	total := h.HeaderLen()
	if len(data) < total {
		return nil, nil, &lenerr.LenError{
			RequiredLen: total, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerIpAuthHeader,
		}
	}
	if err := h.SetIcv(data[AuthFixedLen:total]); err != nil {
		return nil, nil, err
	}
	return h, data[total:], nil
}

// ToBytes serializes the authentication header.
func (h *AuthHeader) ToBytes() []byte {
	b := make([]byte, h.HeaderLen())
	b[0] = h.NextHeader.Value()
	b[1] = h.PayloadLen
	binary.BigEndian.PutUint32(b[4:8], h.SecurityParametersIndex)
	binary.BigEndian.PutUint32(b[8:12], h.SequenceNumber)
	copy(b[AuthFixedLen:], h.Icv())
	return b
}

func (h *AuthHeader) String() string {
	return fmt.Sprintf("IpAuth{Next=%s, SPI=%d, Seq=%d, IcvLen=%d}",
		h.NextHeader, h.SecurityParametersIndex, h.SequenceNumber, h.icvLen)
}
