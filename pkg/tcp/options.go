package tcp

import (
	"encoding/binary"

	"github.com/arjunmenon/pktlayers/pkg/lenerr"
)

// Option kind octets (RFC 9293 §3.1, RFC 7323).
const (
	optionKindEOL           = 0
	optionKindNOP           = 1
	optionKindMSS           = 2
	optionKindWindowScale   = 3
	optionKindSackPermitted = 4
	optionKindSack          = 5
	optionKindTimestamp     = 8
)

// OptionKind identifies the decoded shape of a TCP option.
type OptionKind int

const (
	OptionNop OptionKind = iota
	OptionMaxSegmentSize
	OptionWindowScale
	OptionSelectiveAckPermitted
	OptionSelectiveAck
	OptionTimestamp
	OptionUnknown
)

// SackRange is one selective-acknowledgment block.
type SackRange struct {
	Left, Right uint32
}

// Option is one decoded TCP option TLV.
type Option struct {
	Kind OptionKind

	MaxSegmentSize uint16
	WindowScale    uint8
	SackRanges     []SackRange
	TsVal, TsEcr   uint32

	UnknownType uint8
	UnknownData []byte
}

// Options decodes the header's options buffer into a slice of typed
// TLVs. A malformed TLV sequence (a declared length that doesn't fit
// the remaining buffer, or an option whose length byte is inconsistent
// with its kind) stops decoding and returns MalformedTcpOptionError.
func (h *Header) Options() ([]Option, error) {
	return ParseOptions(h.OptionsBytes())
}

// ParseOptions decodes a raw TCP options buffer into typed TLVs.
func ParseOptions(buf []byte) ([]Option, error) {
	var out []Option
	i := 0
	for i < len(buf) {
		kind := buf[i]
		switch kind {
		case optionKindEOL:
			return out, nil
		case optionKindNOP:
			out = append(out, Option{Kind: OptionNop})
			i++
			continue
		}

		if i+1 >= len(buf) {
			return nil, &lenerr.MalformedTcpOptionError{Offset: i, Reason: "option kind byte with no length byte"}
		}
		length := int(buf[i+1])
		if length < 2 || i+length > len(buf) {
			return nil, &lenerr.MalformedTcpOptionError{Offset: i, Reason: "option length byte out of range"}
		}
		data := buf[i+2 : i+length]

		switch kind {
		case optionKindMSS:
			if length != 4 {
				return nil, &lenerr.MalformedTcpOptionError{Offset: i, Reason: "MSS option must be 4 bytes"}
			}
			out = append(out, Option{Kind: OptionMaxSegmentSize, MaxSegmentSize: binary.BigEndian.Uint16(data)})
		case optionKindWindowScale:
			if length != 3 {
				return nil, &lenerr.MalformedTcpOptionError{Offset: i, Reason: "WindowScale option must be 3 bytes"}
			}
			out = append(out, Option{Kind: OptionWindowScale, WindowScale: data[0]})
		case optionKindSackPermitted:
			if length != 2 {
				return nil, &lenerr.MalformedTcpOptionError{Offset: i, Reason: "SackPermitted option must be 2 bytes"}
			}
			out = append(out, Option{Kind: OptionSelectiveAckPermitted})
		case optionKindSack:
			if (length-2)%8 != 0 {
				return nil, &lenerr.MalformedTcpOptionError{Offset: i, Reason: "SACK option length must be 2 + 8n bytes"}
			}
			var ranges []SackRange
			for j := 0; j+8 <= len(data); j += 8 {
				ranges = append(ranges, SackRange{
					Left:  binary.BigEndian.Uint32(data[j : j+4]),
					Right: binary.BigEndian.Uint32(data[j+4 : j+8]),
				})
			}
			out = append(out, Option{Kind: OptionSelectiveAck, SackRanges: ranges})
		case optionKindTimestamp:
			if length != 10 {
				return nil, &lenerr.MalformedTcpOptionError{Offset: i, Reason: "Timestamp option must be 10 bytes"}
			}
			out = append(out, Option{
				Kind:  OptionTimestamp,
				TsVal: binary.BigEndian.Uint32(data[0:4]),
				TsEcr: binary.BigEndian.Uint32(data[4:8]),
			})
		default:
			out = append(out, Option{Kind: OptionUnknown, UnknownType: kind, UnknownData: append([]byte(nil), data...)})
		}
		i += length
	}
	return out, nil
}

// EncodeOptions serializes a typed option list back into a 4-byte-aligned
// buffer, padding with zero bytes (End of Option List) up to the next
// multiple of 4.
func EncodeOptions(opts []Option) ([]byte, error) {
	var buf []byte
	for _, o := range opts {
		switch o.Kind {
		case OptionNop:
			buf = append(buf, optionKindNOP)
		case OptionMaxSegmentSize:
			b := make([]byte, 4)
			b[0], b[1] = optionKindMSS, 4
			binary.BigEndian.PutUint16(b[2:4], o.MaxSegmentSize)
			buf = append(buf, b...)
		case OptionWindowScale:
			buf = append(buf, optionKindWindowScale, 3, o.WindowScale)
		case OptionSelectiveAckPermitted:
			buf = append(buf, optionKindSackPermitted, 2)
		case OptionSelectiveAck:
			length := 2 + 8*len(o.SackRanges)
			b := make([]byte, length)
			b[0], b[1] = optionKindSack, uint8(length)
			off := 2
			for _, r := range o.SackRanges {
				binary.BigEndian.PutUint32(b[off:off+4], r.Left)
				binary.BigEndian.PutUint32(b[off+4:off+8], r.Right)
				off += 8
			}
			buf = append(buf, b...)
		case OptionTimestamp:
			b := make([]byte, 10)
			b[0], b[1] = optionKindTimestamp, 10
			binary.BigEndian.PutUint32(b[2:6], o.TsVal)
			binary.BigEndian.PutUint32(b[6:10], o.TsEcr)
			buf = append(buf, b...)
		case OptionUnknown:
			b := make([]byte, 2+len(o.UnknownData))
			b[0], b[1] = o.UnknownType, uint8(len(b))
			copy(b[2:], o.UnknownData)
			buf = append(buf, b...)
		}
	}
	if pad := (4 - len(buf)%4) % 4; pad > 0 {
		buf = append(buf, make([]byte, pad)...)
	}
	if len(buf) > MaxOptionsLen {
		return nil, &lenerr.MalformedTcpOptionError{Offset: len(buf), Reason: "encoded options exceed 40-byte capacity"}
	}
	return buf, nil
}
