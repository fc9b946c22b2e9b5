// Package ipstack chains the fixed-header codecs together: an Ethernet
// frame walks through its link extensions (VLAN tags, MACsec) into an IP
// or ARP net layer, the IP layer walks its own extension chain, and
// whatever remains is handed to the matching transport codec. Two entry
// points share this structure: a strict walk that stops at the first
// inconsistency, and a lax walk that degrades to best-effort slicing
// instead of failing outright.
package ipstack

import (
	"github.com/arjunmenon/pktlayers/pkg/arp"
	"github.com/arjunmenon/pktlayers/pkg/ethernet"
	"github.com/arjunmenon/pktlayers/pkg/icmpv4"
	"github.com/arjunmenon/pktlayers/pkg/icmpv6"
	"github.com/arjunmenon/pktlayers/pkg/ipv4"
	"github.com/arjunmenon/pktlayers/pkg/ipv6"
	"github.com/arjunmenon/pktlayers/pkg/ipv6ext"
	"github.com/arjunmenon/pktlayers/pkg/lenerr"
	"github.com/arjunmenon/pktlayers/pkg/macsec"
	"github.com/arjunmenon/pktlayers/pkg/tcp"
	"github.com/arjunmenon/pktlayers/pkg/udp"
	"github.com/arjunmenon/pktlayers/pkg/values"
	"github.com/arjunmenon/pktlayers/pkg/vlan"
)

// MaxLinkExtensions bounds the link-extension vector (VLAN tags,
// MACsec) a single walk will accumulate before giving up on further
// nesting.
const MaxLinkExtensions = 3

// LinkExtensionKind identifies which link extension a LinkExtension holds.
type LinkExtensionKind int

const (
	LinkExtensionVlan LinkExtensionKind = iota
	LinkExtensionMacSec
)

// LinkExtension is one decoded link-layer extension header. Exactly one
// of Vlan, MacSec is populated, selected by Kind.
type LinkExtension struct {
	Kind   LinkExtensionKind
	Vlan   vlan.Header
	MacSec macsec.Header
}

// Ipv6Extension is one decoded entry in an IPv6 extension header chain.
// Exactly one of Generic, Fragment, Auth is populated, selected by IpNumber.
type Ipv6Extension struct {
	IpNumber values.IpNumber
	Generic  *ipv6ext.GenericHeader
	Fragment *ipv6ext.FragmentHeader
	Auth     *ipv6ext.AuthHeader
}

// Ipv4Headers is the decoded IPv4 net layer. IPv4 carries no extension
// chain of its own.
type Ipv4Headers struct {
	Header ipv4.Header
}

// Ipv6Headers is the decoded IPv6 net layer: the fixed header plus its
// ordered extension chain.
type Ipv6Headers struct {
	Header     ipv6.Header
	Extensions []Ipv6Extension
}

// NetHeaders is the decoded net-layer payload: exactly one of Ipv4,
// Ipv6, Arp is populated.
type NetHeaders struct {
	Ipv4 *Ipv4Headers
	Ipv6 *Ipv6Headers
	Arp  *arp.Packet
}

// TransportKind identifies which transport header a TransportHeader holds.
type TransportKind int

const (
	TransportUdp TransportKind = iota
	TransportTcp
	TransportIcmpv4
	TransportIcmpv6
)

// TransportHeader is the decoded transport layer.
type TransportHeader struct {
	Kind   TransportKind
	Udp    udp.Header
	Tcp    *tcp.Header
	Icmpv4 *icmpv4.Message
	Icmpv6 *icmpv6.Message
}

// PayloadKind classifies the trailing, uninterpreted bytes of a walk.
type PayloadKind int

const (
	// PayloadEther is raw bytes whose protocol the walk did not
	// recognize or could not see past (e.g. past an undecrypted
	// MACsec SecTag, or an Ethernet frame whose EtherType matched no
	// known net-layer protocol).
	PayloadEther PayloadKind = iota
	// PayloadIp is the IP-layer payload range when no further
	// transport decode happened — either because the datagram is
	// fragmented, or because its IP number did not match a known
	// transport codec.
	PayloadIp
	PayloadUdp
	PayloadTcp
	PayloadIcmpv4
	PayloadIcmpv6
	PayloadEmpty
)

// IpPayload carries the metadata the protocol-chaining engine collects
// about an IP-layer payload range: which protocol it claims to be,
// whether the datagram was fragmented, and which length field the range
// bound came from.
type IpPayload struct {
	IpNumber   values.IpNumber
	Fragmented bool
	LenSource  lenerr.LenSource
}

// PayloadSlice is the terminal descriptor of a walk: whatever bytes
// remain once the walk stopped finding more structure to decode.
type PayloadSlice struct {
	Kind PayloadKind
	Ip   IpPayload
	Data []byte
}

// PacketHeaders is the aggregated result of a successful strict walk.
type PacketHeaders struct {
	Link           *ethernet.Header
	LinkExtensions []LinkExtension
	Net            *NetHeaders
	Transport      *TransportHeader
	Payload        PayloadSlice
}

// LaxPacketHeaders is the aggregated result of a lax walk: the same
// layer chain as PacketHeaders, plus whatever stopped further decoding
// (if anything) and whether the payload range was truncated against the
// outer buffer.
type LaxPacketHeaders struct {
	PacketHeaders
	StopErr    error
	StopLayer  lenerr.Layer
	Incomplete bool
}
