// Package tcp implements the TCP header (RFC 9293): ports, sequence and
// acknowledgment numbers, the nine-flag byte layout (including the ECN
// Nonce Sum bit carried in the reserved nibble), window, checksum,
// urgent pointer and a typed options TLV iterator.
package tcp

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arjunmenon/pktlayers/pkg/checksum"
	"github.com/arjunmenon/pktlayers/pkg/lenerr"
)

// MinHeaderLen is the header length with no options (data offset == 5).
const MinHeaderLen = 20

// MaxHeaderLen is the header length at the maximum data offset of 15.
const MaxHeaderLen = 60

// MaxOptionsLen is the options buffer's fixed inline capacity.
const MaxOptionsLen = MaxHeaderLen - MinHeaderLen

// Flags are the nine TCP control bits: eight in byte 13, plus NS packed
// into the low bit of the reserved nibble in byte 12.
type Flags struct {
	NS  bool
	FIN bool
	SYN bool
	RST bool
	PSH bool
	ACK bool
	URG bool
	ECE bool
	CWR bool
}

// Header is a decoded TCP header.
type Header struct {
	SourcePort      uint16
	DestinationPort uint16
	SequenceNumber  uint32
	AckNumber       uint32
	Flags           Flags
	WindowSize      uint16
	Checksum        uint16
	UrgentPointer   uint16

	optionsLen int
	options    [MaxOptionsLen]byte
}

// DataOffset returns the header length in 32-bit words: 5 plus one word
// per 4 bytes of options.
func (h *Header) DataOffset() uint8 { return uint8(5 + h.optionsLen/4) }

// HeaderLen returns the header's wire length in bytes.
func (h *Header) HeaderLen() int { return MinHeaderLen + h.optionsLen }

// OptionsBytes returns the raw options bytes; Options() decodes them into
// a []Option.
func (h *Header) OptionsBytes() []byte { return h.options[:h.optionsLen] }

// SetOptionsBytes sets the raw options buffer directly. Length must be a
// multiple of 4 and at most MaxOptionsLen.
func (h *Header) SetOptionsBytes(opts []byte) error {
	if len(opts)%4 != 0 || len(opts) > MaxOptionsLen {
		return &lenerr.MalformedTcpOptionError{Offset: 0, Reason: "options length must be a multiple of 4, at most 40 bytes"}
	}
	h.optionsLen = len(opts)
	copy(h.options[:], opts)
	return nil
}

// FromSlice decodes a header from the front of data and returns the
// remaining bytes as the payload (the caller — typically the chaining
// engine — is responsible for bounding that payload using TcpHeaderLen
// semantics or the enclosing IP layer's own length).
func FromSlice(data []byte) (*Header, []byte, error) {
	if len(data) < MinHeaderLen {
		return nil, nil, &lenerr.LenError{
			RequiredLen: MinHeaderLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerTcpHeader,
		}
	}
	dataOffset := data[12] >> 4
	if dataOffset < 5 {
		return nil, nil, &lenerr.DataOffsetTooSmallError{DataOffset: dataOffset}
	}
	headerLen := int(dataOffset) * 4
	if len(data) < headerLen {
		return nil, nil, &lenerr.LenError{
			RequiredLen: headerLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerTcpHeader,
		}
	}

	h := &Header{
		SourcePort:      binary.BigEndian.Uint16(data[0:2]),
		DestinationPort: binary.BigEndian.Uint16(data[2:4]),
		SequenceNumber:  binary.BigEndian.Uint32(data[4:8]),
		AckNumber:       binary.BigEndian.Uint32(data[8:12]),
	}
	h.Flags = Flags{
		NS:  data[12]&0x01 != 0,
		FIN: data[13]&0x01 != 0,
		SYN: data[13]&0x02 != 0,
		RST: data[13]&0x04 != 0,
		PSH: data[13]&0x08 != 0,
		ACK: data[13]&0x10 != 0,
		URG: data[13]&0x20 != 0,
		ECE: data[13]&0x40 != 0,
		CWR: data[13]&0x80 != 0,
	}
	h.WindowSize = binary.BigEndian.Uint16(data[14:16])
	h.Checksum = binary.BigEndian.Uint16(data[16:18])
	h.UrgentPointer = binary.BigEndian.Uint16(data[18:20])
	if err := h.SetOptionsBytes(data[MinHeaderLen:headerLen]); err != nil {
		return nil, nil, err
	}

	return h, data[headerLen:], nil
}

// Read decodes a header from a stream.
func Read(r io.Reader) (*Header, error) {
	var fixed [MinHeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return nil, err
	}
	dataOffset := fixed[12] >> 4
	if dataOffset < 5 {
		return nil, &lenerr.DataOffsetTooSmallError{DataOffset: dataOffset}
	}
	optLen := (int(dataOffset) - 5) * 4
	buf := make([]byte, MinHeaderLen+optLen)
	copy(buf, fixed[:])
	if optLen > 0 {
		if _, err := io.ReadFull(r, buf[MinHeaderLen:]); err != nil {
			return nil, err
		}
	}
	h, _, err := FromSlice(buf)
	return h, err
}

// ToBytes serializes the header.
func (h *Header) ToBytes() []byte {
	buf := make([]byte, h.HeaderLen())
	binary.BigEndian.PutUint16(buf[0:2], h.SourcePort)
	binary.BigEndian.PutUint16(buf[2:4], h.DestinationPort)
	binary.BigEndian.PutUint32(buf[4:8], h.SequenceNumber)
	binary.BigEndian.PutUint32(buf[8:12], h.AckNumber)
	buf[12] = h.DataOffset() << 4
	if h.Flags.NS {
		buf[12] |= 0x01
	}
	var flagByte uint8
	if h.Flags.FIN {
		flagByte |= 0x01
	}
	if h.Flags.SYN {
		flagByte |= 0x02
	}
	if h.Flags.RST {
		flagByte |= 0x04
	}
	if h.Flags.PSH {
		flagByte |= 0x08
	}
	if h.Flags.ACK {
		flagByte |= 0x10
	}
	if h.Flags.URG {
		flagByte |= 0x20
	}
	if h.Flags.ECE {
		flagByte |= 0x40
	}
	if h.Flags.CWR {
		flagByte |= 0x80
	}
	buf[13] = flagByte
	binary.BigEndian.PutUint16(buf[14:16], h.WindowSize)
	binary.BigEndian.PutUint16(buf[16:18], h.Checksum)
	binary.BigEndian.PutUint16(buf[18:20], h.UrgentPointer)
	copy(buf[MinHeaderLen:], h.OptionsBytes())
	return buf
}

// Write serializes the header to a stream.
func (h *Header) Write(w io.Writer) error {
	_, err := w.Write(h.ToBytes())
	return err
}

// WithIpv4Checksum computes the TCP checksum over an IPv4 pseudo-header,
// this header (checksum field zeroed) and payload.
func (h *Header) WithIpv4Checksum(src, dst [4]byte, payload []byte) uint16 {
	tcpLen := uint16(h.HeaderLen() + len(payload))
	s := checksum.Ipv4PseudoHeader(src, dst, 6, tcpLen)
	zeroed := *h
	zeroed.Checksum = 0
	s.AddSlice(zeroed.ToBytes())
	s.AddSlice(payload)
	return s.OnesComplement()
}

// WithIpv6Checksum computes the TCP checksum over an IPv6 pseudo-header,
// this header (checksum field zeroed) and payload.
func (h *Header) WithIpv6Checksum(src, dst [16]byte, payload []byte) uint16 {
	tcpLen := uint32(h.HeaderLen() + len(payload))
	s := checksum.Ipv6PseudoHeader(src, dst, 6, tcpLen)
	zeroed := *h
	zeroed.Checksum = 0
	s.AddSlice(zeroed.ToBytes())
	s.AddSlice(payload)
	return s.OnesComplement()
}

func (h *Header) String() string {
	return fmt.Sprintf("Tcp{%d -> %d, Seq=%d, Ack=%d, Flags=%+v, Win=%d}",
		h.SourcePort, h.DestinationPort, h.SequenceNumber, h.AckNumber, h.Flags, h.WindowSize)
}

// New builds a header with default window size and no options.
func New(srcPort, dstPort uint16) *Header {
	return &Header{SourcePort: srcPort, DestinationPort: dstPort, WindowSize: 65535}
}
