package ipstack

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arjunmenon/pktlayers/pkg/arp"
	"github.com/arjunmenon/pktlayers/pkg/common"
	"github.com/arjunmenon/pktlayers/pkg/ethernet"
	"github.com/arjunmenon/pktlayers/pkg/ipv4"
	"github.com/arjunmenon/pktlayers/pkg/ipv6"
	"github.com/arjunmenon/pktlayers/pkg/ipv6ext"
	"github.com/arjunmenon/pktlayers/pkg/tcp"
	"github.com/arjunmenon/pktlayers/pkg/udp"
	"github.com/arjunmenon/pktlayers/pkg/values"
)

func buildIpv4Udp(t *testing.T, payload []byte) []byte {
	eth := ethernet.Header{
		Destination: common.MACAddress{1, 2, 3, 4, 5, 6},
		Source:      common.MACAddress{6, 5, 4, 3, 2, 1},
		EtherType:   values.EtherTypeIPv4,
	}
	u := udp.New(1234, 80, len(payload))
	src := common.IPv4Address{10, 0, 0, 1}
	dst := common.IPv4Address{10, 0, 0, 2}
	u.Checksum = u.WithIpv4Checksum(src, dst, payload)

	ip := ipv4.New(src, dst, values.IpNumberUDP)
	ip.TotalLen = uint16(ip.HeaderLen() + udp.HeaderLen + len(payload))
	ip.FillChecksum()

	ethBytes := eth.ToBytes()
	var buf []byte
	buf = append(buf, ethBytes[:]...)
	buf = append(buf, ip.ToBytes()...)
	uBytes := u.ToBytes()
	buf = append(buf, uBytes[:]...)
	buf = append(buf, payload...)
	return buf
}

func TestEthernetIpv4UdpHappyPath(t *testing.T) {
	payload := []byte("hello")
	wire := buildIpv4Udp(t, payload)

	got, err := FromEthernetSlice(wire)
	require.NoError(t, err)
	require.NotNil(t, got.Link)
	require.Equal(t, values.EtherTypeIPv4, got.Link.EtherType)
	require.NotNil(t, got.Net)
	require.NotNil(t, got.Net.Ipv4)
	require.NotNil(t, got.Transport)
	require.Equal(t, TransportUdp, got.Transport.Kind)
	require.Equal(t, PayloadUdp, got.Payload.Kind)
	require.Equal(t, payload, got.Payload.Data)
}

func buildIpv6TcpWithExtensions(t *testing.T) []byte {
	hopByHop := ipv6ext.GenericHeader{NextHeader: values.IpNumberIPv6FragmentationHeader, Data: make([]byte, 6)}
	fragment := ipv6ext.FragmentHeader{NextHeader: values.IpNumberTCP, FragmentOffset: values.NewIpFragOffsetUnchecked(0), MoreFragments: true, Identification: 42}

	hopBytes := hopByHop.ToBytes()
	fragBytes := fragment.ToBytes()

	ip := ipv6.New(common.IPv6Address{0x20, 0x01}, common.IPv6Address{0x20, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}, values.IpNumberHopByHop)
	extraPayload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	ip.PayloadLength = uint16(len(hopBytes) + len(fragBytes) + len(extraPayload))

	eth := ethernet.Header{
		Destination: common.MACAddress{1, 2, 3, 4, 5, 6},
		Source:      common.MACAddress{6, 5, 4, 3, 2, 1},
		EtherType:   values.EtherTypeIPv6,
	}

	ethBytes := eth.ToBytes()
	var buf []byte
	buf = append(buf, ethBytes[:]...)
	ipBytes := ip.ToBytes()
	buf = append(buf, ipBytes[:]...)
	buf = append(buf, hopBytes...)
	buf = append(buf, fragBytes[:]...)
	buf = append(buf, extraPayload...)
	return buf
}

func TestIpv6TcpWithExtensionsIsFragmented(t *testing.T) {
	wire := buildIpv6TcpWithExtensions(t)

	got, err := FromEthernetSlice(wire)
	require.NoError(t, err)
	require.NotNil(t, got.Net.Ipv6)
	require.Len(t, got.Net.Ipv6.Extensions, 2)
	require.Nil(t, got.Transport)
	require.Equal(t, PayloadIp, got.Payload.Kind)
	require.True(t, got.Payload.Ip.Fragmented)
	require.Equal(t, values.IpNumberTCP, got.Payload.Ip.IpNumber)
}

func TestArpRequestRoundTrip(t *testing.T) {
	senderMAC := [6]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	senderIP := [4]byte{192, 168, 1, 1}
	targetIP := [4]byte{192, 168, 1, 2}

	eth := ethernet.Header{
		Destination: common.MACAddress{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
		Source:      common.MACAddress(senderMAC),
		EtherType:   values.EtherTypeARP,
	}
	arpPkt := arp.NewEthernetIPv4Request(senderMAC, senderIP, targetIP)
	arpBytes, err := arpPkt.ToBytes()
	require.NoError(t, err)

	ethBytes := eth.ToBytes()
	wire := append(append([]byte{}, ethBytes[:]...), arpBytes...)

	got, err := FromEthernetSlice(wire)
	require.NoError(t, err)
	require.NotNil(t, got.Net.Arp)
	require.Equal(t, values.ArpOperationRequest, got.Net.Arp.Operation)
	require.Equal(t, PayloadEmpty, got.Payload.Kind)
}

func TestLaxIpv4OversizedTotalLenFallsBack(t *testing.T) {
	payload := []byte("abc")
	src := common.IPv4Address{10, 0, 0, 1}
	dst := common.IPv4Address{10, 0, 0, 2}
	ip := ipv4.New(src, dst, values.IpNumberUDP)
	u := udp.New(1, 2, len(payload))
	ip.TotalLen = uint16(ip.HeaderLen()+udp.HeaderLen+len(payload)) + 100 // oversized
	ip.FillChecksum()

	uBytes := u.ToBytes()
	var buf []byte
	buf = append(buf, ip.ToBytes()...)
	buf = append(buf, uBytes[:]...)
	buf = append(buf, payload...)

	_, err := IpSliceFromSlice(buf)
	require.Error(t, err)

	got, err := LaxIpSliceFromSlice(buf)
	require.NoError(t, err)
	require.True(t, got.Incomplete)
	require.NotNil(t, got.Net.Ipv4)
}

func TestHopByHopNotAtStartRejected(t *testing.T) {
	dest := ipv6ext.GenericHeader{NextHeader: values.IpNumberHopByHop, Data: make([]byte, 6)}
	hop := ipv6ext.GenericHeader{NextHeader: values.IpNumberTCP, Data: make([]byte, 6)}

	destBytes := dest.ToBytes()
	hopBytes := hop.ToBytes()

	ip := ipv6.New(common.IPv6Address{1}, common.IPv6Address{2}, values.IpNumberIPv6DestinationOptions)
	ip.PayloadLength = uint16(len(destBytes) + len(hopBytes))

	var buf []byte
	ipBytes := ip.ToBytes()
	buf = append(buf, ipBytes[:]...)
	buf = append(buf, destBytes...)
	buf = append(buf, hopBytes...)

	_, err := IpSliceFromSlice(buf)
	require.Error(t, err)

	got, err := LaxIpSliceFromSlice(buf)
	require.NoError(t, err)
	require.Error(t, got.StopErr)
}

func TestTcpTransportDecodedWhenNotFragmented(t *testing.T) {
	src := common.IPv4Address{1, 1, 1, 1}
	dst := common.IPv4Address{2, 2, 2, 2}
	th := tcp.New(1000, 2000)
	payload := []byte{9, 9}
	th.Checksum = th.WithIpv4Checksum(src, dst, payload)

	ip := ipv4.New(src, dst, values.IpNumberTCP)
	ip.TotalLen = uint16(ip.HeaderLen() + th.HeaderLen() + len(payload))
	ip.FillChecksum()

	var buf []byte
	buf = append(buf, ip.ToBytes()...)
	buf = append(buf, th.ToBytes()...)
	buf = append(buf, payload...)

	got, err := IpSliceFromSlice(buf)
	require.NoError(t, err)
	require.Equal(t, TransportTcp, got.Transport.Kind)
	require.Equal(t, payload, got.Payload.Data)
}
