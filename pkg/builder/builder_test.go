package builder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arjunmenon/pktlayers/pkg/common"
	"github.com/arjunmenon/pktlayers/pkg/icmpv6"
	"github.com/arjunmenon/pktlayers/pkg/ipstack"
	"github.com/arjunmenon/pktlayers/pkg/ipv4"
	"github.com/arjunmenon/pktlayers/pkg/udp"
	"github.com/arjunmenon/pktlayers/pkg/values"
)

var (
	srcMAC = common.MACAddress{1, 2, 3, 4, 5, 6}
	dstMAC = common.MACAddress{6, 5, 4, 3, 2, 1}
	srcIP4 = common.IPv4Address{10, 0, 0, 1}
	dstIP4 = common.IPv4Address{10, 0, 0, 2}
)

func TestEthernetIpv4UdpRoundTripMatchesStrictParser(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	stage := Ethernet2(srcMAC, dstMAC).
		Ipv4(srcIP4, dstIP4).
		Ttl(20).
		Udp(21, 1234)

	wire, err := stage.Bytes(payload)
	require.NoError(t, err)
	require.Equal(t, stage.Size(len(payload)), len(wire))

	got, err := ipstack.FromEthernetSlice(wire)
	require.NoError(t, err)
	require.NotNil(t, got.Net.Ipv4)
	require.Equal(t, uint8(20), got.Net.Ipv4.Header.TimeToLive)
	require.Equal(t, values.IpNumberUDP, got.Net.Ipv4.Header.Protocol)
	require.True(t, got.Net.Ipv4.Header.VerifyChecksum())
	require.Equal(t, ipstack.TransportUdp, got.Transport.Kind)
	require.Equal(t, uint16(21), got.Transport.Udp.SourcePort)
	require.Equal(t, uint16(1234), got.Transport.Udp.DestinationPort)
	require.Equal(t, payload, got.Payload.Data)

	wantUdp := udp.New(21, 1234, len(payload))
	wantUdp.Checksum = wantUdp.WithIpv4Checksum(srcIP4, dstIP4, payload)
	require.Equal(t, wantUdp.Checksum, got.Transport.Udp.Checksum)

	wantIp := ipv4.New(srcIP4, dstIP4, values.IpNumberUDP)
	wantIp.TimeToLive = 20
	wantIp.TotalLen = uint16(wantIp.HeaderLen() + udp.HeaderLen + len(payload))
	wantIp.FillChecksum()
	require.Equal(t, wantIp.HeaderChecksum, got.Net.Ipv4.Header.HeaderChecksum)
}

func TestBareIpv6TcpRoundTrip(t *testing.T) {
	src := common.IPv6Address{0x20, 0x01}
	dst := common.IPv6Address{0x20, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	payload := []byte("payload")

	stage := Ipv6(src, dst).Tcp(443, 5000)
	wire, err := stage.Bytes(payload)
	require.NoError(t, err)

	got, err := ipstack.IpSliceFromSlice(wire)
	require.NoError(t, err)
	require.NotNil(t, got.Net.Ipv6)
	require.Equal(t, values.IpNumberTCP, got.Net.Ipv6.Header.NextHeader)
	require.Equal(t, ipstack.TransportTcp, got.Transport.Kind)
	require.Equal(t, uint16(443), got.Transport.Tcp.SourcePort)
	require.Equal(t, payload, got.Payload.Data)
}

func TestVlanTaggedEthernetIpv4Udp(t *testing.T) {
	payload := []byte("x")
	stage := Ethernet2(srcMAC, dstMAC).
		Vlan(values.NewVlanIdUnchecked(100)).
		Ipv4(srcIP4, dstIP4).
		Udp(1, 2)

	wire, err := stage.Bytes(payload)
	require.NoError(t, err)

	got, err := ipstack.FromEthernetSlice(wire)
	require.NoError(t, err)
	require.Equal(t, values.EtherTypeVlanTaggedFrame, got.Link.EtherType)
	require.Len(t, got.LinkExtensions, 1)
	require.Equal(t, values.EtherTypeIPv4, got.LinkExtensions[0].Vlan.EtherType)
	require.NotNil(t, got.Net.Ipv4)
}

func TestIcmpv6OverIpv4Rejected(t *testing.T) {
	msg := icmpv6.NewEchoRequest(1, 2, nil)
	_, err := Ipv4(srcIP4, dstIP4).Icmpv6(msg)
	require.Error(t, err)
}

func TestIcmpv6OverIpv6RoundTrip(t *testing.T) {
	src := common.IPv6Address{0x20, 0x01}
	dst := common.IPv6Address{0x20, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	msg := icmpv6.NewEchoRequest(7, 8, []byte{0xAA})

	stage, err := Ipv6(src, dst).Icmpv6(msg)
	require.NoError(t, err)

	wire, err := stage.Bytes(nil)
	require.NoError(t, err)

	got, err := ipstack.IpSliceFromSlice(wire)
	require.NoError(t, err)
	require.Equal(t, ipstack.TransportIcmpv6, got.Transport.Kind)
	require.Equal(t, icmpv6.KindEchoRequest, got.Transport.Icmpv6.Kind)
}
