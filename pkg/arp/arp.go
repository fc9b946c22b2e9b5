// Package arp implements the Address Resolution Protocol (RFC 826) for
// arbitrary hardware/protocol address widths, not just the common
// Ethernet/IPv4 (6-byte/4-byte) case: the wire format carries its own
// address-length bytes, so a general decoder must honor whatever widths
// those bytes declare rather than assume 6 and 4.
package arp

import (
	"encoding/binary"
	"fmt"

	"github.com/arjunmenon/pktlayers/pkg/lenerr"
	"github.com/arjunmenon/pktlayers/pkg/values"
)

// FixedHeaderLen is the size of the {hardware type, protocol type,
// hardware addr len, protocol addr len, operation} prefix, before the
// four variable-length address fields.
const FixedHeaderLen = 8

// Packet is a decoded ARP packet with its four address fields kept at
// whatever width the packet itself declares.
type Packet struct {
	HardwareType   values.ArpHardwareId
	ProtocolType   values.EtherType
	Operation      values.ArpOperation
	SenderHwAddr   []byte
	SenderProtoAddr []byte
	TargetHwAddr   []byte
	TargetProtoAddr []byte
}

// HwAddrLen and ProtoAddrLen report the per-field widths this packet was
// decoded with (or will serialize with). Sender and target share the
// same width for each kind of address, so either can report it.
func (p *Packet) HwAddrLen() int    { return len(p.SenderHwAddr) }
func (p *Packet) ProtoAddrLen() int { return len(p.SenderProtoAddr) }

// PacketLen returns the total wire length of this packet.
func (p *Packet) PacketLen() int {
	return FixedHeaderLen + 2*p.HwAddrLen() + 2*p.ProtoAddrLen()
}

// FromSlice decodes an ARP packet from the front of data. The fixed
// header's declared hardware/protocol address lengths determine how much
// of the variable section is consumed. The one length byte per address
// kind applies to both sender and target, so a decoded packet never has
// mismatched sender/target widths; SenderTargetAddrLenMismatchError is
// only returned when serializing.
func FromSlice(data []byte) (*Packet, []byte, error) {
	if len(data) < FixedHeaderLen {
		return nil, nil, &lenerr.LenError{
			RequiredLen: FixedHeaderLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerArpPacket,
		}
	}
	hwLen := int(data[4])
	protoLen := int(data[5])
	total := FixedHeaderLen + 2*hwLen + 2*protoLen
	if len(data) < total {
		return nil, nil, &lenerr.LenError{
			RequiredLen: total, Len: len(data),
			LenSource: lenerr.LenSourceArpAddrLengths, Layer: lenerr.LayerArpPacket,
		}
	}

	p := &Packet{
		HardwareType: values.ArpHardwareId(binary.BigEndian.Uint16(data[0:2])),
		ProtocolType: values.EtherType(binary.BigEndian.Uint16(data[2:4])),
		Operation:    values.ArpOperation(binary.BigEndian.Uint16(data[6:8])),
	}

	off := FixedHeaderLen
	p.SenderHwAddr = append([]byte(nil), data[off:off+hwLen]...)
	off += hwLen
	p.SenderProtoAddr = append([]byte(nil), data[off:off+protoLen]...)
	off += protoLen
	p.TargetHwAddr = append([]byte(nil), data[off:off+hwLen]...)
	off += hwLen
	p.TargetProtoAddr = append([]byte(nil), data[off:off+protoLen]...)
	off += protoLen

	return p, data[off:], nil
}

// ToBytes serializes the packet. SenderHwAddr and TargetHwAddr must be
// the same length (likewise the two protocol addresses); both lengths
// must fit in a byte, since the wire format stores them as single bytes.
func (p *Packet) ToBytes() ([]byte, error) {
	if len(p.SenderHwAddr) != len(p.TargetHwAddr) {
		return nil, &lenerr.SenderTargetAddrLenMismatchError{
			SenderLen: len(p.SenderHwAddr), TargetLen: len(p.TargetHwAddr), Kind: "hardware",
		}
	}
	if len(p.SenderProtoAddr) != len(p.TargetProtoAddr) {
		return nil, &lenerr.SenderTargetAddrLenMismatchError{
			SenderLen: len(p.SenderProtoAddr), TargetLen: len(p.TargetProtoAddr), Kind: "protocol",
		}
	}
	if len(p.SenderHwAddr) > 255 {
		return nil, &lenerr.AddrLenTooBigError{Len: len(p.SenderHwAddr)}
	}
	if len(p.SenderProtoAddr) > 255 {
		return nil, &lenerr.AddrLenTooBigError{Len: len(p.SenderProtoAddr)}
	}

	hwLen := len(p.SenderHwAddr)
	protoLen := len(p.SenderProtoAddr)
	buf := make([]byte, p.PacketLen())

	binary.BigEndian.PutUint16(buf[0:2], p.HardwareType.Value())
	binary.BigEndian.PutUint16(buf[2:4], uint16(p.ProtocolType))
	buf[4] = uint8(hwLen)
	buf[5] = uint8(protoLen)
	binary.BigEndian.PutUint16(buf[6:8], p.Operation.Value())

	off := FixedHeaderLen
	copy(buf[off:off+hwLen], p.SenderHwAddr)
	off += hwLen
	copy(buf[off:off+protoLen], p.SenderProtoAddr)
	off += protoLen
	copy(buf[off:off+hwLen], p.TargetHwAddr)
	off += hwLen
	copy(buf[off:off+protoLen], p.TargetProtoAddr)

	return buf, nil
}

func (p *Packet) String() string {
	return fmt.Sprintf("ARP{Op=%s, HwType=%d, ProtoType=%s, SenderHw=% x, SenderProto=% x, TargetHw=% x, TargetProto=% x}",
		p.Operation, p.HardwareType.Value(), p.ProtocolType, p.SenderHwAddr, p.SenderProtoAddr, p.TargetHwAddr, p.TargetProtoAddr)
}

// NewEthernetIPv4Request builds the common case: an Ethernet/IPv4 ARP
// request asking "who has targetIP? Tell senderIP".
func NewEthernetIPv4Request(senderMAC [6]byte, senderIP, targetIP [4]byte) *Packet {
	return &Packet{
		HardwareType:    values.ArpHardwareIdEthernet,
		ProtocolType:    values.EtherTypeIPv4,
		Operation:       values.ArpOperationRequest,
		SenderHwAddr:    senderMAC[:],
		SenderProtoAddr: senderIP[:],
		TargetHwAddr:    make([]byte, 6),
		TargetProtoAddr: targetIP[:],
	}
}

// NewEthernetIPv4Reply builds the common case: an Ethernet/IPv4 ARP reply
// "targetIP is at targetMAC".
func NewEthernetIPv4Reply(senderMAC [6]byte, senderIP [4]byte, targetMAC [6]byte, targetIP [4]byte) *Packet {
	return &Packet{
		HardwareType:    values.ArpHardwareIdEthernet,
		ProtocolType:    values.EtherTypeIPv4,
		Operation:       values.ArpOperationReply,
		SenderHwAddr:    senderMAC[:],
		SenderProtoAddr: senderIP[:],
		TargetHwAddr:    targetMAC[:],
		TargetProtoAddr: targetIP[:],
	}
}
