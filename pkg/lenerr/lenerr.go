// Package lenerr implements the error taxonomy that every codec and the
// protocol chaining engine report through: length shortfalls attributed
// to a specific layer and byte offset, plus the structural content
// errors a length check alone can't catch.
package lenerr

import "fmt"

// Layer identifies which protocol layer a LenError or content error was
// raised while decoding.
type Layer int

const (
	LayerEthernet2Header Layer = iota
	LayerVlanHeader
	LayerMacSecHeader
	LayerArpPacket
	LayerIpv4Header
	LayerIpv4Options
	LayerIpv6Header
	LayerIpv6ExtHeader
	LayerIpv6FragmentHeader
	LayerIpAuthHeader
	LayerTcpHeader
	LayerTcpOptions
	LayerUdpHeader
	LayerIcmpv4
	LayerIcmpv6
	LayerIpPayload
)

func (l Layer) String() string {
	switch l {
	case LayerEthernet2Header:
		return "Ethernet2Header"
	case LayerVlanHeader:
		return "VlanHeader"
	case LayerMacSecHeader:
		return "MacSecHeader"
	case LayerArpPacket:
		return "ArpPacket"
	case LayerIpv4Header:
		return "Ipv4Header"
	case LayerIpv4Options:
		return "Ipv4Options"
	case LayerIpv6Header:
		return "Ipv6Header"
	case LayerIpv6ExtHeader:
		return "Ipv6ExtHeader"
	case LayerIpv6FragmentHeader:
		return "Ipv6FragmentHeader"
	case LayerIpAuthHeader:
		return "IpAuthHeader"
	case LayerTcpHeader:
		return "TcpHeader"
	case LayerTcpOptions:
		return "TcpOptions"
	case LayerUdpHeader:
		return "UdpHeader"
	case LayerIcmpv4:
		return "Icmpv4"
	case LayerIcmpv6:
		return "Icmpv6"
	case LayerIpPayload:
		return "IpPayload"
	default:
		return fmt.Sprintf("Layer(%d)", int(l))
	}
}

// LenSource records which field (or the absence of one) supplied the
// upper bound used to carve a payload range out of a buffer.
type LenSource int

const (
	// LenSourceSlice means the outer buffer's own length was used —
	// either because no length field applies (Ethernet payload) or
	// because a lax walker fell back after an inconsistent length field.
	LenSourceSlice LenSource = iota
	LenSourceIpv4HeaderTotalLen
	LenSourceIpv6HeaderPayloadLen
	LenSourceUdpHeaderLen
	LenSourceTcpHeaderLen
	LenSourceArpAddrLengths
	LenSourceIcmpV4Len
	LenSourceIcmpV6Len
)

func (s LenSource) String() string {
	switch s {
	case LenSourceSlice:
		return "Slice"
	case LenSourceIpv4HeaderTotalLen:
		return "Ipv4HeaderTotalLen"
	case LenSourceIpv6HeaderPayloadLen:
		return "Ipv6HeaderPayloadLen"
	case LenSourceUdpHeaderLen:
		return "UdpHeaderLen"
	case LenSourceTcpHeaderLen:
		return "TcpHeaderLen"
	case LenSourceArpAddrLengths:
		return "ArpAddrLengths"
	case LenSourceIcmpV4Len:
		return "IcmpV4Len"
	case LenSourceIcmpV6Len:
		return "IcmpV6Len"
	default:
		return fmt.Sprintf("LenSource(%d)", int(s))
	}
}

// LenError reports that fewer bytes were available than a layer needed.
// LayerStartOffset is always measured from the start of the outermost
// input buffer; only the chaining engine (pkg/ipstack) is allowed to
// shift it as an error bubbles up through nested layers — codecs always
// report offsets relative to their own slice.
type LenError struct {
	RequiredLen      int
	Len              int
	LenSource        LenSource
	Layer            Layer
	LayerStartOffset int
}

func (e *LenError) Error() string {
	return fmt.Sprintf("%s: not enough data: %d bytes required (source: %s), %d bytes available at offset %d",
		e.Layer, e.RequiredLen, e.LenSource, e.Len, e.LayerStartOffset)
}

// AddOffset returns a copy of e shifted forward by n bytes. Used by the
// chaining engine when an extension-layer error bubbles up past the
// fixed IP header that preceded it.
func (e *LenError) AddOffset(n int) *LenError {
	shifted := *e
	shifted.LayerStartOffset += n
	return &shifted
}

// WithLenSource returns a copy of e with LenSource replaced. Used when an
// extension-layer error bubbles up into the enclosing IP layer, which
// always reports the IP layer's own LenSource rather than the
// extension's local one.
func (e *LenError) WithLenSource(s LenSource) *LenError {
	shifted := *e
	shifted.LenSource = s
	return &shifted
}

// --- content errors: structural violations a length check can't catch ---

// Ipv4HeaderLengthSmallerThanHeaderError reports an IHL field smaller
// than 5 (the minimum 32-bit-word count for a header with no options).
type Ipv4HeaderLengthSmallerThanHeaderError struct{ Ihl uint8 }

func (e *Ipv4HeaderLengthSmallerThanHeaderError) Error() string {
	return fmt.Sprintf("IPv4 IHL %d is smaller than the minimum header length (5)", e.Ihl)
}

// UnsupportedIpVersionError reports a version nibble other than 4 or 6.
type UnsupportedIpVersionError struct{ VersionNumber uint8 }

func (e *UnsupportedIpVersionError) Error() string {
	return fmt.Sprintf("unsupported IP version number: %d", e.VersionNumber)
}

// HopByHopNotAtStartError reports a Hop-by-Hop IPv6 extension header
// appearing anywhere but first in the extension chain.
type HopByHopNotAtStartError struct{}

func (e *HopByHopNotAtStartError) Error() string {
	return "IPv6 hop-by-hop extension header must be the first extension header"
}

// Ipv6ExtensionNotReferencedError reports an extension header kind that
// appeared more than once where the ordering rules in spec §4.5 forbid a
// repeat (e.g. a second destination-options header with no routing
// header between the two).
type Ipv6ExtensionNotReferencedError struct{ Layer Layer }

func (e *Ipv6ExtensionNotReferencedError) Error() string {
	return fmt.Sprintf("%s: extension header order violates RFC 8200 ordering rules", e.Layer)
}

// ZeroPayloadLenError reports an IP-Authentication header whose
// payload-length byte is zero (the header's length formula,
// (payload_len+2)*4, requires payload_len >= 1 to leave room for an ICV).
type ZeroPayloadLenError struct{}

func (e *ZeroPayloadLenError) Error() string {
	return "IP authentication header payload length of 0 leaves no room for an ICV"
}

// DataOffsetTooSmallError reports a TCP data offset smaller than 5 (the
// minimum 32-bit-word count for a header with no options).
type DataOffsetTooSmallError struct{ DataOffset uint8 }

func (e *DataOffsetTooSmallError) Error() string {
	return fmt.Sprintf("TCP data offset %d is smaller than the minimum header length (5)", e.DataOffset)
}

// Icmpv6InIpv4Error reports a builder rejecting an ICMPv6 payload placed
// on top of an IPv4 header (ICMPv6 is only valid over IPv6).
type Icmpv6InIpv4Error struct{}

func (e *Icmpv6InIpv4Error) Error() string {
	return "ICMPv6 cannot be carried over an IPv4 header"
}

// MalformedTcpOptionError reports a TCP option TLV whose declared length
// doesn't fit the remaining options buffer, or whose kind/length
// combination is otherwise inconsistent.
type MalformedTcpOptionError struct {
	Offset int
	Reason string
}

func (e *MalformedTcpOptionError) Error() string {
	return fmt.Sprintf("malformed TCP option at offset %d: %s", e.Offset, e.Reason)
}

// SenderTargetAddrLenMismatchError reports ARP sender/target hardware or
// protocol address buffers whose declared lengths do not match each
// other (sender hw != target hw, or sender proto != target proto).
type SenderTargetAddrLenMismatchError struct {
	SenderLen, TargetLen int
	Kind                 string // "hardware" or "protocol"
}

func (e *SenderTargetAddrLenMismatchError) Error() string {
	return fmt.Sprintf("ARP sender/target %s address length mismatch: %d != %d", e.Kind, e.SenderLen, e.TargetLen)
}

// AddrLenTooBigError reports an ARP address buffer longer than the
// 255-byte wire-format maximum (the length is a single byte field).
type AddrLenTooBigError struct{ Len int }

func (e *AddrLenTooBigError) Error() string {
	return fmt.Sprintf("ARP address length %d exceeds the 255-byte maximum", e.Len)
}
