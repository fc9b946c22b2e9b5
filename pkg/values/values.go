// Package values implements the restricted-width numeric newtypes and
// open registry values shared by every header codec: EtherType and
// IpNumber (any u8/u16 value accepted), and the bit-width-restricted
// fields (DSCP, ECN, fragment offset, flow label, VLAN id/PCP) whose
// constructors reject out-of-range input.
package values

import "fmt"

// ValueTooBigError reports a restricted-width constructor rejecting an
// input that does not fit in the field's bit width.
type ValueTooBigError struct {
	Actual     uint32
	MaxAllowed uint32
	ValueType  string
}

func (e *ValueTooBigError) Error() string {
	return fmt.Sprintf("%s: value %d exceeds maximum allowed value %d", e.ValueType, e.Actual, e.MaxAllowed)
}

// EtherType is the 16-bit protocol identifier in an Ethernet II or VLAN
// header. Any value is valid; only a handful are named.
type EtherType uint16

const (
	EtherTypeIPv4        EtherType = 0x0800
	EtherTypeARP         EtherType = 0x0806
	EtherTypeWakeOnLan   EtherType = 0x0842
	EtherTypeVlanTaggedFrame    EtherType = 0x8100
	EtherTypeProviderBridging   EtherType = 0x88A8
	EtherTypeVlanDoubleTagged   EtherType = 0x9100
	EtherTypeMacSec      EtherType = 0x88E5
	EtherTypeIPv6        EtherType = 0x86DD
	EtherTypePppoeDiscovery EtherType = 0x8863
	EtherTypePppoeSession   EtherType = 0x8864
)

func (et EtherType) Value() uint16 { return uint16(et) }

// String returns a human-readable name, falling back to the numeric form.
func (et EtherType) String() string {
	switch et {
	case EtherTypeIPv4:
		return "IPv4"
	case EtherTypeARP:
		return "ARP"
	case EtherTypeWakeOnLan:
		return "WakeOnLan"
	case EtherTypeVlanTaggedFrame:
		return "VlanTaggedFrame(802.1Q)"
	case EtherTypeProviderBridging:
		return "ProviderBridging(802.1ad/QinQ)"
	case EtherTypeVlanDoubleTagged:
		return "VlanDoubleTagged(QinQ legacy)"
	case EtherTypeMacSec:
		return "MacSec"
	case EtherTypeIPv6:
		return "IPv6"
	case EtherTypePppoeDiscovery:
		return "PppoeDiscovery"
	case EtherTypePppoeSession:
		return "PppoeSession"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", uint16(et))
	}
}

// IsVlanTag reports whether this EtherType introduces a VLAN tag (802.1Q,
// 802.1ad provider bridging, or the legacy double-tag value some switches
// emit).
func (et EtherType) IsVlanTag() bool {
	switch et {
	case EtherTypeVlanTaggedFrame, EtherTypeProviderBridging, EtherTypeVlanDoubleTagged:
		return true
	default:
		return false
	}
}

// LinuxNonstandardEtherType is the Linux-kernel registry of EtherType
// values below 1536 (ARPHRD_* link types reused as ethertype-like tags
// when the kernel hands a non-Ethernet-II frame to a raw socket). Source:
// include/uapi/linux/if_ether.h.
type LinuxNonstandardEtherType uint16

const (
	LinuxNonstandardEtherTypeNetRomOr8023 LinuxNonstandardEtherType = 0x0001
	LinuxNonstandardEtherTypeAX25         LinuxNonstandardEtherType = 0x0002
	LinuxNonstandardEtherTypeAll          LinuxNonstandardEtherType = 0x0003
	LinuxNonstandardEtherType8022         LinuxNonstandardEtherType = 0x0004
	LinuxNonstandardEtherTypeSnap         LinuxNonstandardEtherType = 0x0005
	LinuxNonstandardEtherTypeDdcmp        LinuxNonstandardEtherType = 0x0006
	LinuxNonstandardEtherTypeWanPpp       LinuxNonstandardEtherType = 0x0007
	LinuxNonstandardEtherTypePppMp        LinuxNonstandardEtherType = 0x0008
	LinuxNonstandardEtherTypeLocalTalk    LinuxNonstandardEtherType = 0x0009
	LinuxNonstandardEtherTypeCan          LinuxNonstandardEtherType = 0x000C
	LinuxNonstandardEtherTypeCanFd        LinuxNonstandardEtherType = 0x000D
	LinuxNonstandardEtherTypeCanXl        LinuxNonstandardEtherType = 0x000E
	LinuxNonstandardEtherTypePppTalk      LinuxNonstandardEtherType = 0x0010
	LinuxNonstandardEtherTypeTr8022       LinuxNonstandardEtherType = 0x0011
	LinuxNonstandardEtherTypeMobitex      LinuxNonstandardEtherType = 0x0015
	LinuxNonstandardEtherTypeControl      LinuxNonstandardEtherType = 0x0016
	LinuxNonstandardEtherTypeIrda         LinuxNonstandardEtherType = 0x0017
	LinuxNonstandardEtherTypeEconet       LinuxNonstandardEtherType = 0x0018
	LinuxNonstandardEtherTypeHdlc         LinuxNonstandardEtherType = 0x0019
	LinuxNonstandardEtherTypeArcnet       LinuxNonstandardEtherType = 0x001A
	LinuxNonstandardEtherTypeDsa          LinuxNonstandardEtherType = 0x001B
	LinuxNonstandardEtherTypeTrailer      LinuxNonstandardEtherType = 0x001C
	LinuxNonstandardEtherTypePhonet       LinuxNonstandardEtherType = 0x00F5
	LinuxNonstandardEtherTypeIeee802154   LinuxNonstandardEtherType = 0x00F6
	LinuxNonstandardEtherTypeCaif         LinuxNonstandardEtherType = 0x00F7
	LinuxNonstandardEtherTypeXdsa         LinuxNonstandardEtherType = 0x00F8
	LinuxNonstandardEtherTypeMap          LinuxNonstandardEtherType = 0x00F9
	LinuxNonstandardEtherTypeMctp         LinuxNonstandardEtherType = 0x00FA
)

// TryLinuxNonstandardEtherType looks up a value in the registry. Unlike
// EtherType, these values are closed: anything not in the table is
// rejected, mirroring the Linux kernel header the table is sourced from.
func TryLinuxNonstandardEtherType(v uint16) (LinuxNonstandardEtherType, bool) {
	switch LinuxNonstandardEtherType(v) {
	case LinuxNonstandardEtherTypeNetRomOr8023, LinuxNonstandardEtherTypeAX25, LinuxNonstandardEtherTypeAll,
		LinuxNonstandardEtherType8022, LinuxNonstandardEtherTypeSnap, LinuxNonstandardEtherTypeDdcmp,
		LinuxNonstandardEtherTypeWanPpp, LinuxNonstandardEtherTypePppMp, LinuxNonstandardEtherTypeLocalTalk,
		LinuxNonstandardEtherTypeCan, LinuxNonstandardEtherTypeCanFd, LinuxNonstandardEtherTypeCanXl,
		LinuxNonstandardEtherTypePppTalk, LinuxNonstandardEtherTypeTr8022, LinuxNonstandardEtherTypeMobitex,
		LinuxNonstandardEtherTypeControl, LinuxNonstandardEtherTypeIrda, LinuxNonstandardEtherTypeEconet,
		LinuxNonstandardEtherTypeHdlc, LinuxNonstandardEtherTypeArcnet, LinuxNonstandardEtherTypeDsa,
		LinuxNonstandardEtherTypeTrailer, LinuxNonstandardEtherTypePhonet, LinuxNonstandardEtherTypeIeee802154,
		LinuxNonstandardEtherTypeCaif, LinuxNonstandardEtherTypeXdsa, LinuxNonstandardEtherTypeMap,
		LinuxNonstandardEtherTypeMctp:
		return LinuxNonstandardEtherType(v), true
	default:
		return 0, false
	}
}

func (t LinuxNonstandardEtherType) Value() uint16 { return uint16(t) }

// IpNumber is the protocol/next-header number carried in the IPv4
// "protocol" field and the IPv6 "next header" chain. Any value is valid;
// this is an open registry, not a restricted-width field.
type IpNumber uint8

const (
	IpNumberHopByHop     IpNumber = 0
	IpNumberICMP         IpNumber = 1
	IpNumberIPv4         IpNumber = 4
	IpNumberTCP          IpNumber = 6
	IpNumberUDP          IpNumber = 17
	IpNumberIPv6         IpNumber = 41
	IpNumberIPv6RouteHeader IpNumber = 43
	IpNumberIPv6FragmentationHeader IpNumber = 44
	IpNumberIPv6Icmp     IpNumber = 58
	IpNumberIPv6NoNextHeader IpNumber = 59
	IpNumberIPv6DestinationOptions IpNumber = 60
	IpNumberMobility     IpNumber = 135
	IpNumberHip          IpNumber = 139
	IpNumberShim6        IpNumber = 140
	IpNumberAuthenticationHeader IpNumber = 51
	IpNumberEncapsulatingSecurityPayload IpNumber = 50
)

func (n IpNumber) Value() uint8 { return uint8(n) }

// IsIpv6ExtHeader reports whether n identifies one of the generic
// "TLV-shaped" IPv6 extension headers that share the
// {next_header, hdr_ext_len} * 8-byte layout (hop-by-hop, routing,
// destination options, mobility, HIP, Shim6). Fragment and
// Authentication have their own layouts and are excluded here.
func (n IpNumber) IsIpv6ExtHeader() bool {
	switch n {
	case IpNumberHopByHop, IpNumberIPv6RouteHeader, IpNumberIPv6DestinationOptions,
		IpNumberMobility, IpNumberHip, IpNumberShim6:
		return true
	default:
		return false
	}
}

func (n IpNumber) String() string {
	switch n {
	case IpNumberHopByHop:
		return "IPv6HopByHop"
	case IpNumberICMP:
		return "ICMP"
	case IpNumberIPv4:
		return "IPv4"
	case IpNumberTCP:
		return "TCP"
	case IpNumberUDP:
		return "UDP"
	case IpNumberIPv6:
		return "IPv6"
	case IpNumberIPv6RouteHeader:
		return "IPv6Route"
	case IpNumberIPv6FragmentationHeader:
		return "IPv6Fragment"
	case IpNumberIPv6Icmp:
		return "ICMPv6"
	case IpNumberIPv6NoNextHeader:
		return "IPv6NoNextHeader"
	case IpNumberIPv6DestinationOptions:
		return "IPv6DestinationOptions"
	case IpNumberMobility:
		return "Mobility"
	case IpNumberHip:
		return "HIP"
	case IpNumberShim6:
		return "Shim6"
	case IpNumberAuthenticationHeader:
		return "IPAuth"
	case IpNumberEncapsulatingSecurityPayload:
		return "ESP"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(n))
	}
}

// ArpHardwareId is the ARP "hardware type" field. Open registry.
type ArpHardwareId uint16

const (
	ArpHardwareIdEthernet ArpHardwareId = 1
	ArpHardwareIdIEEE802  ArpHardwareId = 6
	ArpHardwareIdFrameRelay ArpHardwareId = 15
)

func (h ArpHardwareId) Value() uint16 { return uint16(h) }

// ArpOperation is the ARP "operation" field. Open registry.
type ArpOperation uint16

const (
	ArpOperationRequest    ArpOperation = 1
	ArpOperationReply      ArpOperation = 2
	ArpOperationRequestRev ArpOperation = 3
	ArpOperationReplyRev   ArpOperation = 4
)

func (o ArpOperation) Value() uint16 { return uint16(o) }

func (o ArpOperation) String() string {
	switch o {
	case ArpOperationRequest:
		return "Request"
	case ArpOperationReply:
		return "Reply"
	case ArpOperationRequestRev:
		return "RequestReverse"
	case ArpOperationReplyRev:
		return "ReplyReverse"
	default:
		return fmt.Sprintf("Unknown(%d)", uint16(o))
	}
}

// Ipv4Dscp is the 6-bit Differentiated Services Code Point.
type Ipv4Dscp uint8

const Ipv4DscpMax Ipv4Dscp = 0x3F

// NewIpv4Dscp validates v fits in 6 bits.
func NewIpv4Dscp(v uint8) (Ipv4Dscp, error) {
	if v > uint8(Ipv4DscpMax) {
		return 0, &ValueTooBigError{Actual: uint32(v), MaxAllowed: uint32(Ipv4DscpMax), ValueType: "Ipv4Dscp"}
	}
	return Ipv4Dscp(v), nil
}

// NewIpv4DscpUnchecked constructs without validation; callers must have
// already masked the value to 6 bits (e.g. a decoder reading `b[1] >> 2`).
func NewIpv4DscpUnchecked(v uint8) Ipv4Dscp { return Ipv4Dscp(v & 0x3F) }

func (d Ipv4Dscp) Value() uint8 { return uint8(d) }

// Ipv4Ecn is the 2-bit Explicit Congestion Notification field. Shared
// shape with IPv6's ECN bits, so it is also used there (spec's `IpEcn`).
type Ipv4Ecn uint8

const Ipv4EcnMax Ipv4Ecn = 0x3

func NewIpv4Ecn(v uint8) (Ipv4Ecn, error) {
	if v > uint8(Ipv4EcnMax) {
		return 0, &ValueTooBigError{Actual: uint32(v), MaxAllowed: uint32(Ipv4EcnMax), ValueType: "Ipv4Ecn"}
	}
	return Ipv4Ecn(v), nil
}

func NewIpv4EcnUnchecked(v uint8) Ipv4Ecn { return Ipv4Ecn(v & 0x3) }

func (e Ipv4Ecn) Value() uint8 { return uint8(e) }

// IpEcn is an alias of Ipv4Ecn: the ECN field has the same 2-bit shape
// in both IPv4 and IPv6 and this codec represents it with one type.
type IpEcn = Ipv4Ecn

// IpFragOffset is the 13-bit IPv4 fragment offset, in units of 8 bytes.
type IpFragOffset uint16

const IpFragOffsetMax IpFragOffset = 0x1FFF

func NewIpFragOffset(v uint16) (IpFragOffset, error) {
	if v > uint16(IpFragOffsetMax) {
		return 0, &ValueTooBigError{Actual: uint32(v), MaxAllowed: uint32(IpFragOffsetMax), ValueType: "IpFragOffset"}
	}
	return IpFragOffset(v), nil
}

func NewIpFragOffsetUnchecked(v uint16) IpFragOffset { return IpFragOffset(v & 0x1FFF) }

func (o IpFragOffset) Value() uint16 { return uint16(o) }

// Ipv6FlowLabel is the 20-bit IPv6 flow label.
type Ipv6FlowLabel uint32

const Ipv6FlowLabelMax Ipv6FlowLabel = 0xFFFFF

func NewIpv6FlowLabel(v uint32) (Ipv6FlowLabel, error) {
	if v > uint32(Ipv6FlowLabelMax) {
		return 0, &ValueTooBigError{Actual: v, MaxAllowed: uint32(Ipv6FlowLabelMax), ValueType: "Ipv6FlowLabel"}
	}
	return Ipv6FlowLabel(v), nil
}

func NewIpv6FlowLabelUnchecked(v uint32) Ipv6FlowLabel { return Ipv6FlowLabel(v & 0xFFFFF) }

func (f Ipv6FlowLabel) Value() uint32 { return uint32(f) }

// VlanId is the 12-bit VLAN identifier.
type VlanId uint16

const VlanIdMax VlanId = 0x0FFF

func NewVlanId(v uint16) (VlanId, error) {
	if v > uint16(VlanIdMax) {
		return 0, &ValueTooBigError{Actual: uint32(v), MaxAllowed: uint32(VlanIdMax), ValueType: "VlanId"}
	}
	return VlanId(v), nil
}

func NewVlanIdUnchecked(v uint16) VlanId { return VlanId(v & 0x0FFF) }

func (v VlanId) Value() uint16 { return uint16(v) }

// VlanPcp is the 3-bit VLAN Priority Code Point.
type VlanPcp uint8

const VlanPcpMax VlanPcp = 0x7

func NewVlanPcp(v uint8) (VlanPcp, error) {
	if v > uint8(VlanPcpMax) {
		return 0, &ValueTooBigError{Actual: uint32(v), MaxAllowed: uint32(VlanPcpMax), ValueType: "VlanPcp"}
	}
	return VlanPcp(v), nil
}

func NewVlanPcpUnchecked(v uint8) VlanPcp { return VlanPcp(v & 0x7) }

func (p VlanPcp) Value() uint8 { return uint8(p) }
