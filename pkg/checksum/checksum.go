// Package checksum implements the 16-bit one's-complement Internet
// checksum (RFC 1071) used by IPv4, ICMPv4, ICMPv6, UDP and TCP. All
// sums accumulate in 32 bits and are folded once at the end; there is no
// need to reduce after every add for the result to be correct.
package checksum

import (
	"encoding/binary"
	"math/bits"
)

// Sum16BitWords accumulates 16-bit words for a one's-complement checksum.
// The zero value is ready to use.
type Sum16BitWords struct {
	sum uint32
}

// NewSum16BitWords returns an accumulator, equivalent to the zero value;
// provided for symmetry with the teacher's New* constructor style.
func NewSum16BitWords() Sum16BitWords { return Sum16BitWords{} }

// Add16BitWord adds a single big-endian 16-bit word to the running sum.
func (s *Sum16BitWords) Add16BitWord(w uint16) { s.sum += uint32(w) }

// AddBytes2 adds a 2-byte big-endian field (e.g. a port number).
func (s *Sum16BitWords) AddBytes2(b [2]byte) {
	s.Add16BitWord(binary.BigEndian.Uint16(b[:]))
}

// AddBytes4 adds a 4-byte field (e.g. an IPv4 address or a sequence
// number) as two 16-bit words.
func (s *Sum16BitWords) AddBytes4(b [4]byte) {
	s.Add16BitWord(binary.BigEndian.Uint16(b[0:2]))
	s.Add16BitWord(binary.BigEndian.Uint16(b[2:4]))
}

// AddBytes16 adds a 16-byte field (an IPv6 address) as eight 16-bit words.
func (s *Sum16BitWords) AddBytes16(b [16]byte) {
	for i := 0; i < 16; i += 2 {
		s.Add16BitWord(binary.BigEndian.Uint16(b[i : i+2]))
	}
}

// AddSlice adds an arbitrary-length byte slice, padding a trailing odd
// byte with an implicit zero low byte (the RFC 1071 padding rule).
func (s *Sum16BitWords) AddSlice(b []byte) {
	n := len(b)
	for i := 0; i+1 < n; i += 2 {
		s.Add16BitWord(binary.BigEndian.Uint16(b[i : i+2]))
	}
	if n%2 == 1 {
		s.Add16BitWord(uint16(b[n-1]) << 8)
	}
}

// fold reduces the accumulated sum to 16 bits by repeatedly adding the
// carry bits back into the low 16 bits.
func (s Sum16BitWords) fold() uint16 {
	sum := s.sum
	for sum>>16 != 0 {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}
	return uint16(sum)
}

// OnesComplement folds the sum and returns its one's complement — the
// value that belongs in a checksum field computed with that field
// itself held at zero.
func (s Sum16BitWords) OnesComplement() uint16 {
	return ^s.fold()
}

// OnesComplementWithNoZero is OnesComplement, except a zero result is
// replaced with 0xFFFF. UDP (and, by the same RFC 768 rule, any
// transport whose checksum field of 0 means "no checksum present")
// needs this so that a legitimately-zero computed checksum is never
// confused with "checksum not computed".
func (s Sum16BitWords) OnesComplementWithNoZero() uint16 {
	v := s.OnesComplement()
	if v == 0 {
		return 0xFFFF
	}
	return v
}

// ToBE byte-swaps v. A checksum value is computed and stored as a plain
// uint16; this is only needed where a caller holds one in host order
// (e.g. off the wire via a native-endian load) and must place it in a
// big-endian wire buffer directly rather than through
// encoding/binary.BigEndian.PutUint16.
func ToBE(v uint16) uint16 {
	return bits.ReverseBytes16(v)
}

// Ipv4PseudoHeader computes the pseudo-header sum for a TCP/UDP checksum
// carried over IPv4: source + destination + a zero byte + protocol +
// upper-layer length, per RFC 793 / RFC 768.
func Ipv4PseudoHeader(src, dst [4]byte, protocol uint8, upperLayerLen uint16) Sum16BitWords {
	var s Sum16BitWords
	s.AddBytes4(src)
	s.AddBytes4(dst)
	var zeroProto [2]byte
	zeroProto[0] = 0
	zeroProto[1] = protocol
	s.AddBytes2(zeroProto)
	var lenBytes [2]byte
	binary.BigEndian.PutUint16(lenBytes[:], upperLayerLen)
	s.AddBytes2(lenBytes)
	return s
}

// Ipv6PseudoHeader computes the pseudo-header sum for a TCP/UDP/ICMPv6
// checksum carried over IPv6: source + destination + a 32-bit
// upper-layer length + three zero bytes + next header, per RFC 8200 §8.1.
func Ipv6PseudoHeader(src, dst [16]byte, nextHeader uint8, upperLayerLen uint32) Sum16BitWords {
	var s Sum16BitWords
	s.AddBytes16(src)
	s.AddBytes16(dst)
	var lenBytes [4]byte
	binary.BigEndian.PutUint32(lenBytes[:], upperLayerLen)
	s.Add16BitWord(binary.BigEndian.Uint16(lenBytes[0:2]))
	s.Add16BitWord(binary.BigEndian.Uint16(lenBytes[2:4]))
	s.Add16BitWord(0) // 3 reserved zero bytes + high byte of next-header word
	s.Add16BitWord(uint16(nextHeader))
	return s
}
