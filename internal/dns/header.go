package dns

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed wire size of a DNS header, in bytes.
const HeaderSize = 12

// Header is the fixed 12-byte DNS message header (RFC 1035 Section 4.1.1).
type Header struct {
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// Marshal serializes the header to wire format (big-endian, 12 bytes).
func (h Header) Marshal() []byte {
	b := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(b[0:2], h.ID)
	binary.BigEndian.PutUint16(b[2:4], h.Flags)
	binary.BigEndian.PutUint16(b[4:6], h.QDCount)
	binary.BigEndian.PutUint16(b[6:8], h.ANCount)
	binary.BigEndian.PutUint16(b[8:10], h.NSCount)
	binary.BigEndian.PutUint16(b[10:12], h.ARCount)
	return b
}

// ParseHeader parses a DNS header at *off, advancing it by HeaderSize.
func ParseHeader(msg []byte, off *int) (Header, error) {
	if *off+HeaderSize > len(msg) {
		return Header{}, fmt.Errorf("header: %w", ErrTruncatedBuffer)
	}
	h := Header{
		ID:      binary.BigEndian.Uint16(msg[*off : *off+2]),
		Flags:   binary.BigEndian.Uint16(msg[*off+2 : *off+4]),
		QDCount: binary.BigEndian.Uint16(msg[*off+4 : *off+6]),
		ANCount: binary.BigEndian.Uint16(msg[*off+6 : *off+8]),
		NSCount: binary.BigEndian.Uint16(msg[*off+8 : *off+10]),
		ARCount: binary.BigEndian.Uint16(msg[*off+10 : *off+12]),
	}
	*off += HeaderSize
	return h, nil
}

// WithID returns a copy of the header with the transaction ID replaced.
// Used by the query pool to rewrite the outbound ID on forward and the
// client ID on reply, without mutating the original packet tree.
func (h Header) WithID(id uint16) Header {
	h.ID = id
	return h
}

// SetRCode returns a copy of the flags with QR set and RCODE replaced,
// preserving the RD bit from the original query. Used to synthesize
// NXDOMAIN/SERVFAIL responses.
func SetRCode(queryFlags uint16, rcode RCode) uint16 {
	flags := QRFlag | (queryFlags & RDFlag)
	flags = (flags &^ RCodeMask) | (uint16(rcode) & RCodeMask)
	return flags
}
