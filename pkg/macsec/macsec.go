// Package macsec implements the IEEE 802.1AE MACsec SecTag: the header
// prefixing an encrypted Ethernet frame. Only the SecTag's fixed shape is
// decoded — the frame body it introduces is opaque ciphertext plus a
// trailing ICV, since no key material exists at this layer to decrypt it.
package macsec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arjunmenon/pktlayers/pkg/lenerr"
)

// MinHeaderLen is the SecTag size when the SC (Secure Channel) bit is
// clear and no explicit SCI follows the packet number.
const MinHeaderLen = 6

// HeaderLenWithSci is the SecTag size when an 8-byte SCI is present.
const HeaderLenWithSci = MinHeaderLen + 8

// Header is a decoded MACsec SecTag.
type Header struct {
	// Version is the V bit; always 0 in the current standard.
	Version bool
	// EndStation is the ES bit: the frame's source is a single station's
	// MAC address rather than a bridged source.
	EndStation bool
	// SecureChannel is the SC bit: an explicit 8-byte SCI follows the
	// packet number rather than being implied by the source MAC + port.
	SecureChannel bool
	// SingleCopyBroadcast is the SCB bit.
	SingleCopyBroadcast bool
	// Encrypted is the E bit: the user data is encrypted (not just
	// integrity-protected).
	Encrypted bool
	// Changed is the C bit: the user data's length differs from the
	// original plaintext (true whenever Encrypted is true, but can also
	// be set for integrity-only frames that were padded).
	Changed bool
	// AssociationNumber is the 2-bit AN field identifying which of the
	// four Security Associations secured this frame.
	AssociationNumber uint8
	// ShortLength is the SL field: the post-SecTag frame length when it
	// is under 48 bytes (0 means "use the Ethernet length/type field or
	// frame boundary instead").
	ShortLength uint8
	// PacketNumber is the replay-protection sequence number.
	PacketNumber uint32
	// SCI is the explicit Secure Channel Identifier, present only when
	// SecureChannel is set.
	SCI [8]byte
}

// HasSci reports whether this header carries an explicit SCI field.
func (h Header) HasSci() bool { return h.SecureChannel }

// HeaderLen returns the wire size of this header: MinHeaderLen, plus 8
// more bytes when an SCI is present.
func (h Header) HeaderLen() int {
	if h.HasSci() {
		return HeaderLenWithSci
	}
	return MinHeaderLen
}

// FromSlice decodes a SecTag from the front of data. The presence of the
// trailing SCI is determined by the SC bit in the first byte, so this
// reads 1 byte ahead before deciding how much more it needs.
func FromSlice(data []byte) (Header, []byte, error) {
	if len(data) < MinHeaderLen {
		return Header{}, nil, &lenerr.LenError{
			RequiredLen: MinHeaderLen, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerMacSecHeader,
		}
	}
	tciAn := data[0]
	var h Header
	h.Version = tciAn&0x80 != 0
	h.EndStation = tciAn&0x40 != 0
	h.SecureChannel = tciAn&0x20 != 0
	h.SingleCopyBroadcast = tciAn&0x10 != 0
	h.Encrypted = tciAn&0x08 != 0
	h.Changed = tciAn&0x04 != 0
	h.AssociationNumber = tciAn & 0x03
	h.ShortLength = data[1]
	h.PacketNumber = binary.BigEndian.Uint32(data[2:6])

	if !h.SecureChannel {
		return h, data[MinHeaderLen:], nil
	}
	if len(data) < HeaderLenWithSci {
		return Header{}, nil, &lenerr.LenError{
			RequiredLen: HeaderLenWithSci, Len: len(data),
			LenSource: lenerr.LenSourceSlice, Layer: lenerr.LayerMacSecHeader,
		}
	}
	copy(h.SCI[:], data[MinHeaderLen:HeaderLenWithSci])
	return h, data[HeaderLenWithSci:], nil
}

// Read decodes a SecTag from a stream.
func Read(r io.Reader) (Header, error) {
	var fixed [MinHeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return Header{}, err
	}
	var h Header
	h.Version = fixed[0]&0x80 != 0
	h.EndStation = fixed[0]&0x40 != 0
	h.SecureChannel = fixed[0]&0x20 != 0
	h.SingleCopyBroadcast = fixed[0]&0x10 != 0
	h.Encrypted = fixed[0]&0x08 != 0
	h.Changed = fixed[0]&0x04 != 0
	h.AssociationNumber = fixed[0] & 0x03
	h.ShortLength = fixed[1]
	h.PacketNumber = binary.BigEndian.Uint32(fixed[2:6])
	if !h.SecureChannel {
		return h, nil
	}
	if _, err := io.ReadFull(r, h.SCI[:]); err != nil {
		return Header{}, err
	}
	return h, nil
}

// ToBytes serializes the header to its wire form, which is MinHeaderLen
// or HeaderLenWithSci bytes long depending on SecureChannel.
func (h Header) ToBytes() []byte {
	b := make([]byte, h.HeaderLen())
	var tciAn byte
	if h.Version {
		tciAn |= 0x80
	}
	if h.EndStation {
		tciAn |= 0x40
	}
	if h.SecureChannel {
		tciAn |= 0x20
	}
	if h.SingleCopyBroadcast {
		tciAn |= 0x10
	}
	if h.Encrypted {
		tciAn |= 0x08
	}
	if h.Changed {
		tciAn |= 0x04
	}
	tciAn |= h.AssociationNumber & 0x03
	b[0] = tciAn
	b[1] = h.ShortLength
	binary.BigEndian.PutUint32(b[2:6], h.PacketNumber)
	if h.SecureChannel {
		copy(b[MinHeaderLen:HeaderLenWithSci], h.SCI[:])
	}
	return b
}

// Write serializes the header to a stream.
func (h Header) Write(w io.Writer) error {
	_, err := w.Write(h.ToBytes())
	return err
}

func (h Header) String() string {
	return fmt.Sprintf("MacSec{AN=%d, PN=%d, SC=%t, E=%t, C=%t}",
		h.AssociationNumber, h.PacketNumber, h.SecureChannel, h.Encrypted, h.Changed)
}
