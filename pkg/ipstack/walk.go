package ipstack

import (
	"github.com/sirupsen/logrus"

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

// walkState accumulates a PacketHeaders as the walk proceeds, so both
// entry points (Ethernet-rooted and IP-rooted) and both fidelities
// (strict, lax) can share one code path with only the lax-recovery
// branches differing.
type walkState struct {
	lax    bool
	logger logrus.FieldLogger

	headers    PacketHeaders
	stopErr    error
	stopLayer  lenerr.Layer
	incomplete bool
}

// LaxWalkOptions configures a lax walk. The zero value runs silently;
// setting Logger reports degraded-decode signals (early stop, payload
// truncation) at debug level. The strict entry points take no options
// and never touch a logger, keeping that path alloc-free of one.
type LaxWalkOptions struct {
	Logger logrus.FieldLogger
}

// FromEthernetSlice runs a strict walk starting from an Ethernet II
// frame. It stops and returns an error at the first inconsistency.
func FromEthernetSlice(data []byte) (*PacketHeaders, error) {
	st := &walkState{lax: false}
	if err := st.walkEthernet(data); err != nil {
		return nil, err
	}
	return &st.headers, nil
}

// LaxFromEthernetSlice runs a lax walk starting from an Ethernet II
// frame with default options (no logging). Structural decode failures
// (not enough bytes for a header whose presence is already implied)
// still return an error; length or ordering inconsistencies within the
// IP layer instead stop the walk early and report the partial result
// via StopErr/StopLayer.
func LaxFromEthernetSlice(data []byte) (*LaxPacketHeaders, error) {
	return LaxFromEthernetSliceWithOptions(data, LaxWalkOptions{})
}

// LaxFromEthernetSliceWithOptions is LaxFromEthernetSlice with an
// explicit LaxWalkOptions, e.g. to supply a Logger.
func LaxFromEthernetSliceWithOptions(data []byte, opts LaxWalkOptions) (*LaxPacketHeaders, error) {
	st := &walkState{lax: true, logger: opts.Logger}
	if err := st.walkEthernet(data); err != nil {
		return nil, err
	}
	st.logOutcome()
	return &LaxPacketHeaders{
		PacketHeaders: st.headers,
		StopErr:       st.stopErr,
		StopLayer:     st.stopLayer,
		Incomplete:    st.incomplete,
	}, nil
}

// IpSliceFromSlice runs a strict walk starting directly from an IP
// datagram (version sniffed from the first nibble), with no link layer.
func IpSliceFromSlice(data []byte) (*PacketHeaders, error) {
	st := &walkState{lax: false}
	if err := st.walkNet(data, 0); err != nil {
		return nil, err
	}
	return &st.headers, nil
}

// LaxIpSliceFromSlice is IpSliceFromSlice's lax counterpart, with
// default options (no logging).
func LaxIpSliceFromSlice(data []byte) (*LaxPacketHeaders, error) {
	return LaxIpSliceFromSliceWithOptions(data, LaxWalkOptions{})
}

// LaxIpSliceFromSliceWithOptions is LaxIpSliceFromSlice with an
// explicit LaxWalkOptions, e.g. to supply a Logger.
func LaxIpSliceFromSliceWithOptions(data []byte, opts LaxWalkOptions) (*LaxPacketHeaders, error) {
	st := &walkState{lax: true, logger: opts.Logger}
	if err := st.walkNet(data, 0); err != nil {
		return nil, err
	}
	st.logOutcome()
	return &LaxPacketHeaders{
		PacketHeaders: st.headers,
		StopErr:       st.stopErr,
		StopLayer:     st.stopLayer,
		Incomplete:    st.incomplete,
	}, nil
}

// logOutcome reports a lax walk's degraded-decode signals at debug
// level, if a Logger was supplied. It is a no-op for the strict entry
// points, which never set stopErr/incomplete.
func (st *walkState) logOutcome() {
	if st.logger == nil {
		return
	}
	if st.stopErr != nil {
		st.logger.WithFields(logrus.Fields{
			"layer": st.stopLayer,
			"error": st.stopErr,
		}).Debug("lax walk stopped early")
	}
	if st.incomplete {
		st.logger.WithField("layer", st.stopLayer).Debug("lax walk payload range truncated against buffer")
	}
}

func (st *walkState) walkEthernet(data []byte) error {
	eth, rest, err := ethernet.FromSlice(data)
	if err != nil {
		return err
	}
	st.headers.Link = &eth
	etherType := eth.EtherType

	for len(st.headers.LinkExtensions) < MaxLinkExtensions {
		switch etherType {
		case values.EtherTypeVlanTaggedFrame, values.EtherTypeProviderBridging, values.EtherTypeVlanDoubleTagged:
			v, vrest, err := vlan.FromSlice(rest)
			if err != nil {
				return err
			}
			st.headers.LinkExtensions = append(st.headers.LinkExtensions, LinkExtension{Kind: LinkExtensionVlan, Vlan: v})
			etherType = v.EtherType
			rest = vrest
			continue
		case values.EtherTypeMacSec:
			m, mrest, err := macsec.FromSlice(rest)
			if err != nil {
				return err
			}
			st.headers.LinkExtensions = append(st.headers.LinkExtensions, LinkExtension{Kind: LinkExtensionMacSec, MacSec: m})
			// The walk does not look past a SecTag, whether or not the
			// frame is encrypted: everything after it is opaque PayloadEther.
			st.headers.Payload = PayloadSlice{Kind: PayloadEther, Data: mrest}
			return nil
		}
		break
	}

	return st.walkNet(rest, etherType)
}

// walkNet decodes the net layer. etherType of 0 means "sniff the IP
// version from the first nibble" (the IP-rooted entry points); any
// other value routes by the preceding link layer's declared EtherType.
func (st *walkState) walkNet(data []byte, etherType values.EtherType) error {
	switch etherType {
	case values.EtherTypeARP:
		p, rest, err := arp.FromSlice(data)
		if err != nil {
			return err
		}
		st.headers.Net = &NetHeaders{Arp: p}
		if len(rest) == 0 {
			st.headers.Payload = PayloadSlice{Kind: PayloadEmpty}
		} else {
			st.headers.Payload = PayloadSlice{Kind: PayloadEther, Data: rest}
		}
		return nil
	case values.EtherTypeIPv4:
		return st.walkIpv4(data)
	case values.EtherTypeIPv6:
		return st.walkIpv6(data)
	case 0:
		if len(data) == 0 {
			return &lenerr.LenError{RequiredLen: 1, Len: 0, LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerIpv4Header}
		}
		switch data[0] >> 4 {
		case ipv4.Version:
			return st.walkIpv4(data)
		case ipv6.Version:
			return st.walkIpv6(data)
		default:
			return &lenerr.UnsupportedIpVersionError{VersionNumber: data[0] >> 4}
		}
	default:
		st.headers.Payload = PayloadSlice{Kind: PayloadEther, Data: data}
		return nil
	}
}

func (st *walkState) walkIpv4(data []byte) error {
	h, _, err := ipv4.FromSlice(data)
	if err != nil {
		return err
	}
	st.headers.Net = &NetHeaders{Ipv4: &Ipv4Headers{Header: *h}}

	headerLen := h.HeaderLen()
	totalLen := int(h.TotalLen)

	var payload []byte
	var lenSource lenerr.LenSource
	switch {
	case totalLen < headerLen:
		if !st.lax {
			return &lenerr.LenError{
				RequiredLen: headerLen, Len: totalLen,
				LenSource: lenerr.LenSourceIpv4HeaderTotalLen, Layer: lenerr.LayerIpv4Header,
			}
		}
		payload, lenSource = data[headerLen:], lenerr.LenSourceSlice
	case len(data) < totalLen:
		if !st.lax {
			return &lenerr.LenError{
				RequiredLen: totalLen, Len: len(data),
				LenSource: lenerr.LenSourceIpv4HeaderTotalLen, Layer: lenerr.LayerIpv4Header,
			}
		}
		payload, lenSource = data[headerLen:], lenerr.LenSourceSlice
		st.incomplete = true
	default:
		payload, lenSource = data[headerLen:totalLen], lenerr.LenSourceIpv4HeaderTotalLen
	}

	return st.dispatchTransport(h.Protocol, payload, lenSource, true)
}

func (st *walkState) walkIpv6(data []byte) error {
	if len(data) < ipv6.HeaderLen {
		return &lenerr.LenError{
			RequiredLen: ipv6.HeaderLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerIpv6Header,
		}
	}
	if data[0]>>4 != ipv6.Version {
		return &lenerr.UnsupportedIpVersionError{VersionNumber: data[0] >> 4}
	}
	var arr [ipv6.HeaderLen]byte
	copy(arr[:], data[:ipv6.HeaderLen])
	h := ipv6.FromBytes(arr)
	rest := data[ipv6.HeaderLen:]

	var payload []byte
	var lenSource lenerr.LenSource
	switch {
	case h.PayloadLength == 0:
		payload, lenSource = rest, lenerr.LenSourceSlice
	case int(h.PayloadLength) > len(rest):
		if !st.lax {
			return &lenerr.LenError{
				RequiredLen: ipv6.HeaderLen + int(h.PayloadLength), Len: len(data),
				LenSource: lenerr.LenSourceIpv6HeaderPayloadLen, Layer: lenerr.LayerIpv6Header,
			}
		}
		payload, lenSource = rest, lenerr.LenSourceSlice
		st.incomplete = true
	default:
		payload, lenSource = rest[:h.PayloadLength], lenerr.LenSourceIpv6HeaderPayloadLen
	}

	net := &Ipv6Headers{Header: h}
	st.headers.Net = &NetHeaders{Ipv6: net}

	nextHeader := h.NextHeader
	offset := ipv6.HeaderLen
	sawDestOpts := false
	sawRoutingSinceLastDestOpts := false
	fragmented := false

extLoop:
	for i := 0; ; i++ {
		if !nextHeader.IsIpv6ExtHeader() && nextHeader != values.IpNumberIPv6FragmentationHeader && nextHeader != values.IpNumberAuthenticationHeader {
			break
		}
		if nextHeader == values.IpNumberHopByHop && i != 0 {
			if !st.lax {
				return &lenerr.HopByHopNotAtStartError{}
			}
			st.stopErr = &lenerr.HopByHopNotAtStartError{}
			st.stopLayer = lenerr.LayerIpv6ExtHeader
			break
		}
		if nextHeader == values.IpNumberIPv6DestinationOptions {
			if sawDestOpts && !sawRoutingSinceLastDestOpts {
				notRef := &lenerr.Ipv6ExtensionNotReferencedError{Layer: lenerr.LayerIpv6ExtHeader}
				if !st.lax {
					return notRef
				}
				st.stopErr = notRef
				st.stopLayer = lenerr.LayerIpv6ExtHeader
				break
			}
			sawDestOpts = true
			sawRoutingSinceLastDestOpts = false
		}
		if nextHeader == values.IpNumberIPv6RouteHeader && sawDestOpts {
			sawRoutingSinceLastDestOpts = true
		}

		switch {
		case nextHeader == values.IpNumberIPv6FragmentationHeader:
			fh, frest, err := ipv6ext.FragmentFromSlice(payload)
			if err != nil {
				if shiftedErr, lErr := shiftLenError(err, offset, lenSource); lErr {
					if !st.lax {
						return shiftedErr
					}
					st.stopErr = shiftedErr
					st.stopLayer = lenerr.LayerIpv6FragmentHeader
					break extLoop
				}
				return err
			}
			net.Extensions = append(net.Extensions, Ipv6Extension{IpNumber: nextHeader, Fragment: &fh})
			fragmented = true
			offset += ipv6ext.FragmentHeaderLen
			payload = frest
			nextHeader = fh.NextHeader
		case nextHeader == values.IpNumberAuthenticationHeader:
			ah, arest, err := ipv6ext.AuthFromSlice(payload)
			if err != nil {
				if shiftedErr, lErr := shiftLenError(err, offset, lenSource); lErr {
					if !st.lax {
						return shiftedErr
					}
					st.stopErr = shiftedErr
					st.stopLayer = lenerr.LayerIpAuthHeader
					break extLoop
				}
				return err
			}
			net.Extensions = append(net.Extensions, Ipv6Extension{IpNumber: nextHeader, Auth: ah})
			offset += ah.HeaderLen()
			payload = arest
			nextHeader = ah.NextHeader
		default:
			gh, grest, err := ipv6ext.FromGenericSlice(payload, lenerr.LayerIpv6ExtHeader)
			if err != nil {
				if shiftedErr, lErr := shiftLenError(err, offset, lenSource); lErr {
					if !st.lax {
						return shiftedErr
					}
					st.stopErr = shiftedErr
					st.stopLayer = lenerr.LayerIpv6ExtHeader
					break extLoop
				}
				return err
			}
			net.Extensions = append(net.Extensions, Ipv6Extension{IpNumber: nextHeader, Generic: &gh})
			offset += gh.HeaderLen()
			payload = grest
			nextHeader = gh.NextHeader
		}
	}

	if fragmented {
		st.headers.Payload = PayloadSlice{
			Kind: PayloadIp,
			Ip:   IpPayload{IpNumber: nextHeader, Fragmented: true, LenSource: lenSource},
			Data: payload,
		}
		return nil
	}

	return st.dispatchTransport(nextHeader, payload, lenSource, false)
}

// shiftLenError rewrites a *lenerr.LenError's offset and len_source to
// the enclosing IPv6 layer's coordinate system, per the chaining
// engine's layer-attribution contract. It reports false in its second
// return value for any other error type, which callers propagate as-is.
func shiftLenError(err error, offset int, lenSource lenerr.LenSource) (error, bool) {
	le, ok := err.(*lenerr.LenError)
	if !ok {
		return err, false
	}
	return le.AddOffset(offset).WithLenSource(lenSource), true
}

// dispatchTransport decodes the transport layer named by ipNumber, or
// falls back to an undecoded IP-payload descriptor when ipNumber names
// no transport this codec understands. isV4 limits ICMPv4 decoding to
// IPv4 payloads and ICMPv6 decoding to IPv6 payloads; an ICMP IP-number
// under the other IP version gets the undecoded IP-payload descriptor.
// Checksum verification is left to the caller,
// which has the addresses needed for the pseudo-header via Net.
func (st *walkState) dispatchTransport(ipNumber values.IpNumber, payload []byte, lenSource lenerr.LenSource, isV4 bool) error {
	switch {
	case ipNumber == values.IpNumberUDP:
		u, rest, err := udp.FromSlice(payload)
		if err != nil {
			return err
		}
		st.headers.Transport = &TransportHeader{Kind: TransportUdp, Udp: u}
		st.headers.Payload = PayloadSlice{Kind: PayloadUdp, Data: rest}
		return nil
	case ipNumber == values.IpNumberTCP:
		t, rest, err := tcp.FromSlice(payload)
		if err != nil {
			return err
		}
		st.headers.Transport = &TransportHeader{Kind: TransportTcp, Tcp: t}
		st.headers.Payload = PayloadSlice{Kind: PayloadTcp, Data: rest}
		return nil
	case isV4 && ipNumber == values.IpNumberICMP:
		m, rest, err := icmpv4.FromSlice(payload)
		if err != nil {
			return err
		}
		st.headers.Transport = &TransportHeader{Kind: TransportIcmpv4, Icmpv4: m}
		st.headers.Payload = PayloadSlice{Kind: PayloadIcmpv4, Data: rest}
		return nil
	case !isV4 && ipNumber == values.IpNumberIPv6Icmp:
		m, rest, err := icmpv6.FromSlice(payload)
		if err != nil {
			return err
		}
		st.headers.Transport = &TransportHeader{Kind: TransportIcmpv6, Icmpv6: m}
		st.headers.Payload = PayloadSlice{Kind: PayloadIcmpv6, Data: rest}
		return nil
	}
	st.headers.Payload = PayloadSlice{
		Kind: PayloadIp,
		Ip:   IpPayload{IpNumber: ipNumber, Fragmented: false, LenSource: lenSource},
		Data: payload,
	}
	return nil
}
