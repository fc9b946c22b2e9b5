// Package icmpv6 implements the ICMPv6 message (RFC 4443) as a tagged
// union over the recognized type/code combinations. Unlike ICMPv4, the
// checksum always covers an IPv6 pseudo-header (RFC 8200 §8.1, next
// header 58) in addition to the message itself.
package icmpv6

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arjunmenon/pktlayers/pkg/checksum"
	"github.com/arjunmenon/pktlayers/pkg/lenerr"
)

// HeaderLen is the fixed length of every ICMPv6 message's header.
const HeaderLen = 8

// NextHeaderValue is the IPv6 next-header value identifying ICMPv6.
const NextHeaderValue = 58

const (
	wireTypeDestinationUnreachable = 1
	wireTypePacketTooBig           = 2
	wireTypeTimeExceeded           = 3
	wireTypeParameterProblem       = 4
	wireTypeEchoRequest            = 128
	wireTypeEchoReply              = 129
)

// Kind identifies which variant of the tagged union a Message holds.
type Kind int

const (
	KindDestinationUnreachable Kind = iota
	KindPacketTooBig
	KindTimeExceeded
	KindParameterProblem
	KindEchoRequest
	KindEchoReply
	KindUnknown
)

// Message is a decoded ICMPv6 message.
type Message struct {
	Kind     Kind
	Checksum uint16

	// Code carries the variant's code byte for DestinationUnreachable,
	// TimeExceeded and ParameterProblem.
	Code uint8

	// Mtu is the PacketTooBig variant's reported path MTU.
	Mtu uint32

	// Pointer is the ParameterProblem variant's byte offset of the
	// offending octet within the invoking packet.
	Pointer uint32

	// Id and Sequence carry EchoRequest/EchoReply identifiers.
	Id, Sequence uint16

	// UnknownType, UnknownCode and Bytes5to8 hold an unrecognized
	// (type, code) combination verbatim.
	UnknownType, UnknownCode uint8
	Bytes5to8                [4]byte

	Payload []byte
}

// FromSlice decodes a message from the front of data.
func FromSlice(data []byte) (*Message, []byte, error) {
	if len(data) < HeaderLen {
		return nil, nil, &lenerr.LenError{
			RequiredLen: HeaderLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerIcmpv6,
		}
	}
	typ := data[0]
	code := data[1]
	m := &Message{Checksum: binary.BigEndian.Uint16(data[2:4])}

	switch typ {
	case wireTypeDestinationUnreachable:
		m.Kind = KindDestinationUnreachable
		m.Code = code
	case wireTypePacketTooBig:
		m.Kind = KindPacketTooBig
		m.Mtu = binary.BigEndian.Uint32(data[4:8])
	case wireTypeTimeExceeded:
		m.Kind = KindTimeExceeded
		m.Code = code
	case wireTypeParameterProblem:
		m.Kind = KindParameterProblem
		m.Code = code
		m.Pointer = binary.BigEndian.Uint32(data[4:8])
	case wireTypeEchoRequest:
		m.Kind = KindEchoRequest
		m.Id = binary.BigEndian.Uint16(data[4:6])
		m.Sequence = binary.BigEndian.Uint16(data[6:8])
	case wireTypeEchoReply:
		m.Kind = KindEchoReply
		m.Id = binary.BigEndian.Uint16(data[4:6])
		m.Sequence = binary.BigEndian.Uint16(data[6:8])
	default:
		m.Kind = KindUnknown
		m.UnknownType = typ
		m.UnknownCode = code
		copy(m.Bytes5to8[:], data[4:8])
	}
	m.Payload = append([]byte(nil), data[HeaderLen:]...)
	return m, nil, nil
}

// Read decodes a message from a stream, reading the remainder via r
// until EOF (ICMPv6 carries no explicit total length of its own).
func Read(r io.Reader) (*Message, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m, _, err := FromSlice(buf)
	return m, err
}

// ToBytes serializes the message with its current Checksum field (call
// FillChecksum first for a correct on-wire checksum).
func (m *Message) ToBytes() []byte {
	buf := make([]byte, HeaderLen+len(m.Payload))
	binary.BigEndian.PutUint16(buf[2:4], m.Checksum)

	switch m.Kind {
	case KindDestinationUnreachable:
		buf[0] = wireTypeDestinationUnreachable
		buf[1] = m.Code
	case KindPacketTooBig:
		buf[0] = wireTypePacketTooBig
		binary.BigEndian.PutUint32(buf[4:8], m.Mtu)
	case KindTimeExceeded:
		buf[0] = wireTypeTimeExceeded
		buf[1] = m.Code
	case KindParameterProblem:
		buf[0] = wireTypeParameterProblem
		buf[1] = m.Code
		binary.BigEndian.PutUint32(buf[4:8], m.Pointer)
	case KindEchoRequest:
		buf[0] = wireTypeEchoRequest
		binary.BigEndian.PutUint16(buf[4:6], m.Id)
		binary.BigEndian.PutUint16(buf[6:8], m.Sequence)
	case KindEchoReply:
		buf[0] = wireTypeEchoReply
		binary.BigEndian.PutUint16(buf[4:6], m.Id)
		binary.BigEndian.PutUint16(buf[6:8], m.Sequence)
	default:
		buf[0] = m.UnknownType
		buf[1] = m.UnknownCode
		copy(buf[4:8], m.Bytes5to8[:])
	}
	copy(buf[HeaderLen:], m.Payload)
	return buf
}

// Write serializes the message to a stream.
func (m *Message) Write(w io.Writer) error {
	_, err := w.Write(m.ToBytes())
	return err
}

// WithIpv6Checksum computes the ICMPv6 checksum over the IPv6
// pseudo-header (next header 58), this message (checksum field zeroed)
// and payload. A single flipped bit anywhere in src, dst or the message
// changes the result (RFC 4443 §2.3's mandatory pseudo-header coverage).
func (m *Message) WithIpv6Checksum(src, dst [16]byte) uint16 {
	icmpLen := uint32(HeaderLen + len(m.Payload))
	s := checksum.Ipv6PseudoHeader(src, dst, NextHeaderValue, icmpLen)
	zeroed := *m
	zeroed.Checksum = 0
	s.AddSlice(zeroed.ToBytes())
	return s.OnesComplement()
}

// FillChecksum computes and stores the checksum in place.
func (m *Message) FillChecksum(src, dst [16]byte) {
	m.Checksum = m.WithIpv6Checksum(src, dst)
}

func (k Kind) String() string {
	switch k {
	case KindDestinationUnreachable:
		return "DestinationUnreachable"
	case KindPacketTooBig:
		return "PacketTooBig"
	case KindTimeExceeded:
		return "TimeExceeded"
	case KindParameterProblem:
		return "ParameterProblem"
	case KindEchoRequest:
		return "EchoRequest"
	case KindEchoReply:
		return "EchoReply"
	default:
		return "Unknown"
	}
}

func (m *Message) String() string {
	return fmt.Sprintf("Icmpv6{%s, Code=%d}", m.Kind, m.Code)
}

// NewEchoRequest builds an Echo Request message.
func NewEchoRequest(id, seq uint16, payload []byte) *Message {
	return &Message{Kind: KindEchoRequest, Id: id, Sequence: seq, Payload: payload}
}

// NewEchoReply builds an Echo Reply message.
func NewEchoReply(id, seq uint16, payload []byte) *Message {
	return &Message{Kind: KindEchoReply, Id: id, Sequence: seq, Payload: payload}
}
