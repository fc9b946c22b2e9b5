// Package icmpv4 implements the ICMPv4 message (RFC 792, 1122, 1812) as a
// tagged union over the recognized type/code combinations, with checksum
// computed over the message as a standalone header-only sum (no
// pseudo-header, unlike ICMPv6).
package icmpv4

import (
	"encoding/binary"
	"fmt"

	"github.com/arjunmenon/pktlayers/pkg/checksum"
	"github.com/arjunmenon/pktlayers/pkg/lenerr"
)

// MinLen is the header length for every variant but Timestamp.
const MinLen = 8

// TimestampLen is the fixed length of the Timestamp request/reply variant.
const TimestampLen = 20

const (
	wireTypeEchoReply              = 0
	wireTypeDestinationUnreachable = 3
	wireTypeSourceQuench           = 4
	wireTypeRedirect               = 5
	wireTypeEchoRequest            = 8
	wireTypeTimeExceeded           = 11
	wireTypeParameterProblem       = 12
	wireTypeTimestampRequest       = 13
	wireTypeTimestampReply         = 14
)

// Kind identifies which variant of the tagged union a Message holds.
type Kind int

const (
	KindEchoReply Kind = iota
	KindDestinationUnreachable
	KindSourceQuench
	KindRedirect
	KindEchoRequest
	KindTimeExceeded
	KindParameterProblem
	KindTimestampRequest
	KindTimestampReply
	KindUnknown
)

// Message is a decoded ICMPv4 message.
type Message struct {
	Kind     Kind
	Checksum uint16

	// Code carries the variant's code byte for DestinationUnreachable,
	// Redirect, TimeExceeded and ParameterProblem.
	Code uint8

	// Gateway is the Redirect variant's replacement gateway address.
	Gateway [4]byte

	// Pointer is the ParameterProblem variant's byte offset of the
	// offending octet.
	Pointer uint8

	// Id and Sequence carry EchoRequest/EchoReply/Timestamp identifiers.
	Id, Sequence uint16

	// Originate, Receive, Transmit carry the Timestamp variants' three
	// 32-bit millisecond-since-midnight-UTC timestamps.
	Originate, Receive, Transmit uint32

	// UnknownType, UnknownCode and Bytes5to8 hold an unrecognized
	// (type, code) combination verbatim.
	UnknownType, UnknownCode uint8
	Bytes5to8                [4]byte

	// Payload is any data past the fixed-size portion of the message.
	Payload []byte
}

// FromSlice decodes a message from the front of data.
func FromSlice(data []byte) (*Message, []byte, error) {
	if len(data) < MinLen {
		return nil, nil, &lenerr.LenError{
			RequiredLen: MinLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerIcmpv4,
		}
	}
	typ := data[0]
	code := data[1]
	m := &Message{Checksum: binary.BigEndian.Uint16(data[2:4])}

	switch typ {
	case wireTypeEchoReply:
		m.Kind = KindEchoReply
		m.Id = binary.BigEndian.Uint16(data[4:6])
		m.Sequence = binary.BigEndian.Uint16(data[6:8])
	case wireTypeDestinationUnreachable:
		m.Kind = KindDestinationUnreachable
		m.Code = code
	case wireTypeSourceQuench:
		m.Kind = KindSourceQuench
	case wireTypeRedirect:
		m.Kind = KindRedirect
		m.Code = code
		copy(m.Gateway[:], data[4:8])
	case wireTypeEchoRequest:
		m.Kind = KindEchoRequest
		m.Id = binary.BigEndian.Uint16(data[4:6])
		m.Sequence = binary.BigEndian.Uint16(data[6:8])
	case wireTypeTimeExceeded:
		m.Kind = KindTimeExceeded
		m.Code = code
	case wireTypeParameterProblem:
		m.Kind = KindParameterProblem
		m.Code = code
		m.Pointer = data[4]
	case wireTypeTimestampRequest, wireTypeTimestampReply:
		if typ == wireTypeTimestampRequest {
			m.Kind = KindTimestampRequest
		} else {
			m.Kind = KindTimestampReply
		}
		if len(data) < TimestampLen {
			return nil, nil, &lenerr.LenError{
				RequiredLen: TimestampLen, Len: len(data),
				LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerIcmpv4,
			}
		}
		m.Id = binary.BigEndian.Uint16(data[4:6])
		m.Sequence = binary.BigEndian.Uint16(data[6:8])
		m.Originate = binary.BigEndian.Uint32(data[8:12])
		m.Receive = binary.BigEndian.Uint32(data[12:16])
		m.Transmit = binary.BigEndian.Uint32(data[16:20])
		m.Payload = append([]byte(nil), data[TimestampLen:]...)
		return m, nil, nil
	default:
		m.Kind = KindUnknown
		m.UnknownType = typ
		m.UnknownCode = code
		copy(m.Bytes5to8[:], data[4:8])
	}
	m.Payload = append([]byte(nil), data[MinLen:]...)
	return m, nil, nil
}

// ToBytes serializes the message with its current Checksum field (call
// FillChecksum first for a correct on-wire checksum).
func (m *Message) ToBytes() []byte {
	var fixed [8]byte
	switch m.Kind {
	case KindEchoReply:
		fixed[0] = wireTypeEchoReply
		binary.BigEndian.PutUint16(fixed[4:6], m.Id)
		binary.BigEndian.PutUint16(fixed[6:8], m.Sequence)
	case KindDestinationUnreachable:
		fixed[0] = wireTypeDestinationUnreachable
		fixed[1] = m.Code
	case KindSourceQuench:
		fixed[0] = wireTypeSourceQuench
	case KindRedirect:
		fixed[0] = wireTypeRedirect
		fixed[1] = m.Code
		copy(fixed[4:8], m.Gateway[:])
	case KindEchoRequest:
		fixed[0] = wireTypeEchoRequest
		binary.BigEndian.PutUint16(fixed[4:6], m.Id)
		binary.BigEndian.PutUint16(fixed[6:8], m.Sequence)
	case KindTimeExceeded:
		fixed[0] = wireTypeTimeExceeded
		fixed[1] = m.Code
	case KindParameterProblem:
		fixed[0] = wireTypeParameterProblem
		fixed[1] = m.Code
		fixed[4] = m.Pointer
	case KindTimestampRequest, KindTimestampReply:
		if m.Kind == KindTimestampRequest {
			fixed[0] = wireTypeTimestampRequest
		} else {
			fixed[0] = wireTypeTimestampReply
		}
		b := make([]byte, TimestampLen+len(m.Payload))
		copy(b, fixed[:4])
		binary.BigEndian.PutUint16(b[2:4], m.Checksum)
		binary.BigEndian.PutUint16(b[4:6], m.Id)
		binary.BigEndian.PutUint16(b[6:8], m.Sequence)
		binary.BigEndian.PutUint32(b[8:12], m.Originate)
		binary.BigEndian.PutUint32(b[12:16], m.Receive)
		binary.BigEndian.PutUint32(b[16:20], m.Transmit)
		copy(b[TimestampLen:], m.Payload)
		return b
	default:
		fixed[0] = m.UnknownType
		fixed[1] = m.UnknownCode
		copy(fixed[4:8], m.Bytes5to8[:])
	}
	binary.BigEndian.PutUint16(fixed[2:4], m.Checksum)
	b := make([]byte, 8+len(m.Payload))
	copy(b, fixed[:])
	copy(b[8:], m.Payload)
	return b
}

// CalcChecksum computes the message checksum with the Checksum field
// itself held at zero: a plain header-only one's-complement sum, unlike
// the pseudo-header sum ICMPv6 requires.
func (m *Message) CalcChecksum() uint16 {
	saved := m.Checksum
	m.Checksum = 0
	defer func() { m.Checksum = saved }()

	var s checksum.Sum16BitWords
	s.AddSlice(m.ToBytes())
	return s.OnesComplement()
}

// FillChecksum computes and stores the checksum in place.
func (m *Message) FillChecksum() { m.Checksum = m.CalcChecksum() }

func (k Kind) String() string {
	switch k {
	case KindEchoReply:
		return "EchoReply"
	case KindDestinationUnreachable:
		return "DestinationUnreachable"
	case KindSourceQuench:
		return "SourceQuench"
	case KindRedirect:
		return "Redirect"
	case KindEchoRequest:
		return "EchoRequest"
	case KindTimeExceeded:
		return "TimeExceeded"
	case KindParameterProblem:
		return "ParameterProblem"
	case KindTimestampRequest:
		return "TimestampRequest"
	case KindTimestampReply:
		return "TimestampReply"
	default:
		return "Unknown"
	}
}

func (m *Message) String() string {
	return fmt.Sprintf("Icmpv4{%s, Code=%d}", m.Kind, m.Code)
}

// NewEchoRequest builds an Echo Request message.
func NewEchoRequest(id, seq uint16, payload []byte) *Message {
	return &Message{Kind: KindEchoRequest, Id: id, Sequence: seq, Payload: payload}
}

// NewEchoReply builds an Echo Reply message.
func NewEchoReply(id, seq uint16, payload []byte) *Message {
	return &Message{Kind: KindEchoReply, Id: id, Sequence: seq, Payload: payload}
}
