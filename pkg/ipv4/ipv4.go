// Package ipv4 implements the IPv4 header (RFC 791): version/IHL,
// DSCP/ECN, total length, identification, flags/fragment offset, TTL,
// protocol, header checksum, addresses and a bounded options buffer.
package ipv4

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arjunmenon/pktlayers/pkg/checksum"
	"github.com/arjunmenon/pktlayers/pkg/common"
	"github.com/arjunmenon/pktlayers/pkg/lenerr"
	"github.com/arjunmenon/pktlayers/pkg/values"
)

// MinHeaderLen is the header length with no options (IHL == 5).
const MinHeaderLen = 20

// MaxHeaderLen is the header length at the maximum IHL of 15.
const MaxHeaderLen = 60

// MaxOptionsLen is the options buffer's fixed inline capacity.
const MaxOptionsLen = MaxHeaderLen - MinHeaderLen

// Version is the fixed version nibble for IPv4.
const Version = 4

// Flags mirrors the 3-bit flags field (reserved, don't-fragment, more-fragments).
type Flags struct {
	DontFragment  bool
	MoreFragments bool
}

// Header is a decoded IPv4 header. Options are stored in a fixed-capacity
// inline array with an explicit length, matching the no-heap-allocation
// decode path the rest of the codec follows.
type Header struct {
	Dscp           values.Ipv4Dscp
	Ecn            values.IpEcn
	TotalLen       uint16
	Identification uint16
	Flags          Flags
	FragmentOffset values.IpFragOffset
	TimeToLive     uint8
	Protocol       values.IpNumber
	HeaderChecksum uint16
	Source         common.IPv4Address
	Destination    common.IPv4Address

	optionsLen int
	options    [MaxOptionsLen]byte
}

// Ihl returns the Internet Header Length in 32-bit words: 5 plus one word
// per 4 bytes of options.
func (h *Header) Ihl() uint8 { return uint8(5 + h.optionsLen/4) }

// HeaderLen returns the header's wire length in bytes: 20 + the options length.
func (h *Header) HeaderLen() int { return MinHeaderLen + h.optionsLen }

// Options returns the header's options bytes.
func (h *Header) Options() []byte { return h.options[:h.optionsLen] }

// SetOptions sets the options buffer. Length must be a multiple of 4 and
// at most MaxOptionsLen, or ValueTooBigError is returned.
func (h *Header) SetOptions(opts []byte) error {
	if len(opts)%4 != 0 {
		return &values.ValueTooBigError{Actual: uint32(len(opts)), MaxAllowed: uint32(len(opts) - len(opts)%4), ValueType: "Ipv4OptionsLen(not a multiple of 4)"}
	}
	if len(opts) > MaxOptionsLen {
		return &values.ValueTooBigError{Actual: uint32(len(opts)), MaxAllowed: MaxOptionsLen, ValueType: "Ipv4OptionsLen"}
	}
	h.optionsLen = len(opts)
	copy(h.options[:], opts)
	return nil
}

// FromSlice decodes a header from the front of data and returns the
// remaining bytes as the payload, sized by total_len (LenSourceIpv4HeaderTotalLen)
// when it is internally consistent.
func FromSlice(data []byte) (*Header, []byte, error) {
	if len(data) < MinHeaderLen {
		return nil, nil, &lenerr.LenError{
			RequiredLen: MinHeaderLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerIpv4Header,
		}
	}
	versionIhl := data[0]
	version := versionIhl >> 4
	ihl := versionIhl & 0x0F
	if version != Version {
		return nil, nil, &lenerr.UnsupportedIpVersionError{VersionNumber: version}
	}
	if ihl < 5 {
		return nil, nil, &lenerr.Ipv4HeaderLengthSmallerThanHeaderError{Ihl: ihl}
	}
	headerLen := int(ihl) * 4
	if len(data) < headerLen {
		return nil, nil, &lenerr.LenError{
			RequiredLen: headerLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerIpv4Header,
		}
	}

	h := &Header{}
	dscpEcn := data[1]
	h.Dscp = values.NewIpv4DscpUnchecked(dscpEcn >> 2)
	h.Ecn = values.NewIpv4EcnUnchecked(dscpEcn & 0x03)
	h.TotalLen = binary.BigEndian.Uint16(data[2:4])
	h.Identification = binary.BigEndian.Uint16(data[4:6])
	flagsFrag := binary.BigEndian.Uint16(data[6:8])
	h.Flags = Flags{
		DontFragment:  flagsFrag&0x4000 != 0,
		MoreFragments: flagsFrag&0x2000 != 0,
	}
	h.FragmentOffset = values.NewIpFragOffsetUnchecked(flagsFrag & 0x1FFF)
	h.TimeToLive = data[8]
	h.Protocol = values.IpNumber(data[9])
	h.HeaderChecksum = binary.BigEndian.Uint16(data[10:12])
	copy(h.Source[:], data[12:16])
	copy(h.Destination[:], data[16:20])
	if err := h.SetOptions(data[MinHeaderLen:headerLen]); err != nil {
		return nil, nil, err
	}

	rest := data[headerLen:]
	if int(h.TotalLen) >= headerLen && len(data) >= int(h.TotalLen) {
		return h, data[headerLen:int(h.TotalLen)], nil
	}
	return h, rest, nil
}

// Read decodes a header from a stream.
func Read(r io.Reader) (*Header, error) {
	var fixed [MinHeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return nil, err
	}
	ihl := fixed[0] & 0x0F
	if ihl < 5 {
		return nil, &lenerr.Ipv4HeaderLengthSmallerThanHeaderError{Ihl: ihl}
	}
	optLen := (int(ihl) - 5) * 4
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

// ToBytes serializes the header with its current HeaderChecksum field
// (call FillChecksum first for a correct on-wire checksum).
func (h *Header) ToBytes() []byte {
	buf := make([]byte, h.HeaderLen())
	buf[0] = (Version << 4) | h.Ihl()
	buf[1] = (h.Dscp.Value() << 2) | h.Ecn.Value()
	binary.BigEndian.PutUint16(buf[2:4], h.TotalLen)
	binary.BigEndian.PutUint16(buf[4:6], h.Identification)
	var flagsFrag uint16
	if h.Flags.DontFragment {
		flagsFrag |= 0x4000
	}
	if h.Flags.MoreFragments {
		flagsFrag |= 0x2000
	}
	flagsFrag |= h.FragmentOffset.Value()
	binary.BigEndian.PutUint16(buf[6:8], flagsFrag)
	buf[8] = h.TimeToLive
	buf[9] = h.Protocol.Value()
	binary.BigEndian.PutUint16(buf[10:12], h.HeaderChecksum)
	copy(buf[12:16], h.Source[:])
	copy(buf[16:20], h.Destination[:])
	copy(buf[MinHeaderLen:], h.Options())
	return buf
}

// Write serializes the header to a stream.
func (h *Header) Write(w io.Writer) error {
	_, err := w.Write(h.ToBytes())
	return err
}

// CalcHeaderChecksum computes the header checksum with the checksum
// field itself treated as zero, per RFC 791.
func (h *Header) CalcHeaderChecksum() uint16 {
	saved := h.HeaderChecksum
	h.HeaderChecksum = 0
	defer func() { h.HeaderChecksum = saved }()

	var s checksum.Sum16BitWords
	s.AddSlice(h.ToBytes())
	return s.OnesComplement()
}

// FillChecksum computes and stores the header checksum in place.
func (h *Header) FillChecksum() { h.HeaderChecksum = h.CalcHeaderChecksum() }

// VerifyChecksum reports whether the header's stored checksum is
// internally consistent: summing the header as-is (checksum field
// included) must fold to 0xFFFF, i.e. its one's complement is zero.
func (h *Header) VerifyChecksum() bool {
	var s checksum.Sum16BitWords
	s.AddSlice(h.ToBytes())
	return s.OnesComplement() == 0
}

func (h *Header) String() string {
	return fmt.Sprintf("Ipv4{%s -> %s, Proto=%s, TTL=%d, Id=%d, TotalLen=%d}",
		h.Source, h.Destination, h.Protocol, h.TimeToLive, h.Identification, h.TotalLen)
}

// New builds a header with sane defaults (IHL=5, TTL=64, zero checksum)
// ready for a builder or test to fill in further.
func New(src, dst common.IPv4Address, protocol values.IpNumber) *Header {
	return &Header{
		TimeToLive:  64,
		Protocol:    protocol,
		Source:      src,
		Destination: dst,
	}
}
