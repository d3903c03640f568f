package dns

// DNS header flags (RFC 1035 Section 4.1.1).
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|QR|   Opcode  |AA|TC|RD|RA| Z|      RCODE       |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	 15 14 13 12 11 10  9  8  7  6  5  4  3  2  1  0
//
// Z occupies bits 6-4 and must be zero (spec §3): this relay never sets it.
const (
	QRFlag     uint16 = 0x8000
	OpcodeMask uint16 = 0x7800
	AAFlag     uint16 = 0x0400
	TCFlag     uint16 = 0x0200
	RDFlag     uint16 = 0x0100
	RAFlag     uint16 = 0x0080
	ZMask      uint16 = 0x0070
	RCodeMask  uint16 = 0x000F
)

// OpcodeQuery is the standard query opcode. The relay does not filter
// ingress datagrams on their opcode.
const OpcodeQuery uint16 = 0

// RecordType is a DNS resource record type.
type RecordType uint16

// The record types this relay parses typed RDATA for (spec §3/§4.A). Any
// other type decodes to an OpaqueRecord with the RDATA passed through
// untouched.
const (
	TypeA     RecordType = 1
	TypeNS    RecordType = 2
	TypeCNAME RecordType = 5
	TypeSOA   RecordType = 6
	TypeAAAA  RecordType = 28
)

// RecordClass is a DNS resource record class.
type RecordClass uint16

// ClassIN is the only class this relay handles.
const ClassIN RecordClass = 1

// RCode is a DNS response code (RFC 1035 §4.1.1).
type RCode uint16

const (
	RCodeNoError  RCode = 0
	RCodeFormErr  RCode = 1
	RCodeServFail RCode = 2
	RCodeNXDomain RCode = 3
	RCodeNotImp   RCode = 4
	RCodeRefused  RCode = 5
)

// RCodeFromFlags extracts the response code (low 4 bits) from the header flags.
func RCodeFromFlags(flags uint16) RCode {
	return RCode(flags & RCodeMask)
}

// IsResponse reports whether the QR bit is set.
func IsResponse(flags uint16) bool {
	return flags&QRFlag != 0
}

// Opcode extracts the 4-bit opcode (bits 14-11) from the header flags.
func Opcode(flags uint16) uint16 {
	return (flags & OpcodeMask) >> 11
}

// RecursionDesired reports whether the RD bit is set.
func RecursionDesired(flags uint16) bool {
	return flags&RDFlag != 0
}
