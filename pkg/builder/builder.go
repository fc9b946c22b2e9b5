// Package builder composes outbound packets with a type-state fluent
// API: each transition method commits one more layer and returns a
// stage type that only exposes the transitions legal from there
// (Ethernet2 → {Vlan, Ip}; Ethernet2 → Vlan → Ip; () → Ip directly;
// Ip → {Udp, Tcp, Icmpv4, Icmpv6}, terminal before Bytes/Write). The
// type parameter from a generic-language builder becomes, in Go, a
// distinct struct per stage — the same idiom the codec packages use for
// Header vs. Slice, generalized to a staged draft instead of a single
// decode result.
//
// Bytes/Write perform a final pass once the transport layer is
// committed: fix up the Ethernet EtherType and each VLAN tag's inner
// EtherType, set the IP length field and protocol/next-header (walking
// backward through the link-extension and IP layers), fill the UDP
// length, compute the transport checksum, and compute the IPv4 header
// checksum last. Nothing is written to the wire before that call.
package builder

import (
	"io"

	"github.com/arjunmenon/pktlayers/pkg/common"
	"github.com/arjunmenon/pktlayers/pkg/ethernet"
	"github.com/arjunmenon/pktlayers/pkg/icmpv4"
	"github.com/arjunmenon/pktlayers/pkg/icmpv6"
	"github.com/arjunmenon/pktlayers/pkg/ipv4"
	"github.com/arjunmenon/pktlayers/pkg/ipv6"
	"github.com/arjunmenon/pktlayers/pkg/lenerr"
	"github.com/arjunmenon/pktlayers/pkg/tcp"
	"github.com/arjunmenon/pktlayers/pkg/udp"
	"github.com/arjunmenon/pktlayers/pkg/values"
	"github.com/arjunmenon/pktlayers/pkg/vlan"
)

// link is the optional Ethernet2 + VLAN-tag chain a build may start
// from. A nil link in IpStage means the IP layer is the outermost one
// written, the "() → Ip" transition.
type link struct {
	eth  ethernet.Header
	tags []vlan.Header
}

// EthernetStage is the builder state right after Ethernet2: the frame
// has a link header and may add VLAN tags or commit to an IP layer.
type EthernetStage struct {
	link *link
}

// Ethernet2 starts a build with an Ethernet II header.
func Ethernet2(src, dst common.MACAddress) *EthernetStage {
	return &EthernetStage{link: &link{eth: ethernet.Header{Source: src, Destination: dst}}}
}

// Vlan adds one 802.1Q/802.1ad tag. Calling Vlan again on the returned
// VlanStage composes QinQ (double tagging).
func (s *EthernetStage) Vlan(id values.VlanId) *VlanStage {
	return &VlanStage{link: s.link, tags: []vlan.Header{{VlanId: id}}}
}

// Ipv4 commits an IPv4 net layer directly under the Ethernet2 header.
func (s *EthernetStage) Ipv4(src, dst common.IPv4Address) *IpStage {
	h := ipv4.New(src, dst, 0)
	return &IpStage{link: s.link, ipv4: h}
}

// Ipv6 commits an IPv6 net layer directly under the Ethernet2 header.
func (s *EthernetStage) Ipv6(src, dst common.IPv6Address) *IpStage {
	h := ipv6.New(src, dst, 0)
	return &IpStage{link: s.link, ipv6: &h}
}

// VlanStage is the builder state with at least one VLAN tag committed.
type VlanStage struct {
	link *link
	tags []vlan.Header
}

// Vlan adds a further 802.1Q/802.1ad tag (QinQ).
func (s *VlanStage) Vlan(id values.VlanId) *VlanStage {
	s.tags = append(s.tags, vlan.Header{VlanId: id})
	return s
}

// Ipv4 commits an IPv4 net layer under the VLAN tag chain.
func (s *VlanStage) Ipv4(src, dst common.IPv4Address) *IpStage {
	h := ipv4.New(src, dst, 0)
	return &IpStage{link: s.link, tags: s.tags, ipv4: h}
}

// Ipv6 commits an IPv6 net layer under the VLAN tag chain.
func (s *VlanStage) Ipv6(src, dst common.IPv6Address) *IpStage {
	h := ipv6.New(src, dst, 0)
	return &IpStage{link: s.link, tags: s.tags, ipv6: &h}
}

// Ipv4 starts a build with a bare IPv4 layer, no Ethernet framing.
func Ipv4(src, dst common.IPv4Address) *IpStage {
	h := ipv4.New(src, dst, 0)
	return &IpStage{ipv4: h}
}

// Ipv6 starts a build with a bare IPv6 layer, no Ethernet framing.
func Ipv6(src, dst common.IPv6Address) *IpStage {
	h := ipv6.New(src, dst, 0)
	return &IpStage{ipv6: &h}
}

// IpStage is the builder state with an IP layer committed: exactly one
// of ipv4, ipv6 is set. Ttl/Dscp mutate that header in place before the
// terminal transport transition.
type IpStage struct {
	link *link
	tags []vlan.Header

	ipv4 *ipv4.Header
	ipv6 *ipv6.Header
}

// Ttl sets the IPv4 time-to-live or IPv6 hop limit.
func (s *IpStage) Ttl(ttl uint8) *IpStage {
	if s.ipv4 != nil {
		s.ipv4.TimeToLive = ttl
	} else {
		s.ipv6.HopLimit = ttl
	}
	return s
}

// Dscp sets the IPv4 DSCP field. A no-op on an IPv6 build, since the
// spec's data model carries DSCP only on the IPv4 header.
func (s *IpStage) Dscp(dscp values.Ipv4Dscp) *IpStage {
	if s.ipv4 != nil {
		s.ipv4.Dscp = dscp
	}
	return s
}

// Udp commits a UDP transport layer, terminal before Bytes/Write.
func (s *IpStage) Udp(srcPort, dstPort uint16) *TransportStage {
	return &TransportStage{ip: s, udp: &udp.Header{SourcePort: srcPort, DestinationPort: dstPort}}
}

// Tcp commits a TCP transport layer, terminal before Bytes/Write.
func (s *IpStage) Tcp(srcPort, dstPort uint16) *TransportStage {
	return &TransportStage{ip: s, tcp: tcp.New(srcPort, dstPort)}
}

// Icmpv4 commits an ICMPv4 message as the transport layer.
func (s *IpStage) Icmpv4(msg *icmpv4.Message) *TransportStage {
	return &TransportStage{ip: s, icmpv4: msg}
}

// Icmpv6 commits an ICMPv6 message as the transport layer. Composing
// ICMPv6 over an IPv4 net layer is rejected: the two protocols are wire
// incompatible and RFC 4443 ICMPv6 never rides IPv4.
func (s *IpStage) Icmpv6(msg *icmpv6.Message) (*TransportStage, error) {
	if s.ipv4 != nil {
		return nil, &lenerr.Icmpv6InIpv4Error{}
	}
	return &TransportStage{ip: s, icmpv6: msg}, nil
}

// TransportStage is the terminal builder state: every layer is
// committed and only Size/Bytes/Write remain.
type TransportStage struct {
	ip *IpStage

	udp    *udp.Header
	tcp    *tcp.Header
	icmpv4 *icmpv4.Message
	icmpv6 *icmpv6.Message
}

func (s *TransportStage) ipEtherType() values.EtherType {
	if s.ip.ipv4 != nil {
		return values.EtherTypeIPv4
	}
	return values.EtherTypeIPv6
}

// fixLinkEtherTypes fills in Step 1-2 of the final pass: the Ethernet
// EtherType (vlan-tagged or the IP version directly) and each VLAN
// tag's inner EtherType, walking from the innermost tag (adjacent to
// the IP layer) outward.
func (s *TransportStage) fixLinkEtherTypes() (ethernet.Header, []vlan.Header) {
	if s.ip.link == nil {
		return ethernet.Header{}, nil
	}
	eth := s.ip.link.eth
	tags := append([]vlan.Header(nil), s.ip.link.tags...)
	next := s.ipEtherType()
	for i := len(tags) - 1; i >= 0; i-- {
		tags[i].EtherType = next
		next = values.EtherTypeVlanTaggedFrame
	}
	if len(tags) > 0 {
		eth.EtherType = values.EtherTypeVlanTaggedFrame
	} else {
		eth.EtherType = s.ipEtherType()
	}
	return eth, tags
}

// transportBytes performs steps 5-6: fill the UDP length, compute the
// transport checksum over the matching pseudo-header with a 0xFFFF
// substitution for a zero UDP/IPv4 result, and return the fully
// serialized transport header plus payload. payload may be nil, in
// which case an ICMPv4/ICMPv6 message's own Payload field (set when it
// was constructed) is used as-is.
func (s *TransportStage) transportBytes(payload []byte) ([]byte, error) {
	switch {
	case s.udp != nil:
		s.udp.Length = uint16(udp.HeaderLen + len(payload))
		if s.ip.ipv4 != nil {
			s.udp.Checksum = s.udp.WithIpv4Checksum(s.ip.ipv4.Source, s.ip.ipv4.Destination, payload)
		} else {
			s.udp.Checksum = s.udp.WithIpv6Checksum(s.ip.ipv6.Source, s.ip.ipv6.Destination, payload)
		}
		b := s.udp.ToBytes()
		return append(b[:], payload...), nil
	case s.tcp != nil:
		if s.ip.ipv4 != nil {
			s.tcp.Checksum = s.tcp.WithIpv4Checksum(s.ip.ipv4.Source, s.ip.ipv4.Destination, payload)
		} else {
			s.tcp.Checksum = s.tcp.WithIpv6Checksum(s.ip.ipv6.Source, s.ip.ipv6.Destination, payload)
		}
		return append(s.tcp.ToBytes(), payload...), nil
	case s.icmpv4 != nil:
		if payload != nil {
			s.icmpv4.Payload = payload
		}
		s.icmpv4.FillChecksum()
		return s.icmpv4.ToBytes(), nil
	case s.icmpv6 != nil:
		if payload != nil {
			s.icmpv6.Payload = payload
		}
		s.icmpv6.FillChecksum(s.ip.ipv6.Source, s.ip.ipv6.Destination)
		return s.icmpv6.ToBytes(), nil
	default:
		panic("builder: no transport layer committed")
	}
}

func (s *TransportStage) protocol() values.IpNumber {
	switch {
	case s.udp != nil:
		return values.IpNumberUDP
	case s.tcp != nil:
		return values.IpNumberTCP
	case s.icmpv4 != nil:
		return values.IpNumberICMP
	default:
		return values.IpNumberIPv6Icmp
	}
}

// Bytes runs the final pass (steps 1-7 of the builder's write
// algorithm) and returns the fully serialized packet (step 8).
func (s *TransportStage) Bytes(payload []byte) ([]byte, error) {
	transport, err := s.transportBytes(payload)
	if err != nil {
		return nil, err
	}

	var out []byte
	if s.ip.link != nil {
		eth, tags := s.fixLinkEtherTypes()
		ethBytes := eth.ToBytes()
		out = append(out, ethBytes[:]...)
		for _, t := range tags {
			tb := t.ToBytes()
			out = append(out, tb[:]...)
		}
	}

	if s.ip.ipv4 != nil {
		h := s.ip.ipv4
		h.Protocol = s.protocol()
		h.TotalLen = uint16(h.HeaderLen() + len(transport))
		h.FillChecksum()
		out = append(out, h.ToBytes()...)
	} else {
		h := s.ip.ipv6
		h.NextHeader = s.protocol()
		h.PayloadLength = uint16(len(transport))
		b := h.ToBytes()
		out = append(out, b[:]...)
	}

	out = append(out, transport...)
	return out, nil
}

// Write is Bytes followed by a single write to w.
func (s *TransportStage) Write(w io.Writer, payload []byte) error {
	b, err := s.Bytes(payload)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Size returns the exact serialized size for the given payload length
// without writing anything, per the spec's size(payload_len) operation.
func (s *TransportStage) Size(payloadLen int) int {
	n := 0
	if s.ip.link != nil {
		n += ethernet.HeaderLen
		n += len(s.ip.link.tags) * vlan.HeaderLen
	}
	if s.ip.ipv4 != nil {
		n += s.ip.ipv4.HeaderLen()
	} else {
		n += ipv6.HeaderLen
	}
	switch {
	case s.udp != nil:
		n += udp.HeaderLen
	case s.tcp != nil:
		n += s.tcp.HeaderLen()
	case s.icmpv4 != nil:
		if s.icmpv4.Kind == icmpv4.KindTimestampRequest || s.icmpv4.Kind == icmpv4.KindTimestampReply {
			n += icmpv4.TimestampLen
		} else {
			n += icmpv4.MinLen
		}
	case s.icmpv6 != nil:
		n += icmpv6.HeaderLen
	}
	return n + payloadLen
}
