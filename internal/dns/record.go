package dns

import (
	"encoding/binary"
	"fmt"
)

// RRHeader is the fixed portion of a resource record shared by every type
// (RFC 1035 Section 4.1.3): owner name, type, class, and TTL. RDLENGTH is
// never stored here — it is always recomputed from the marshaled RDATA on
// encode (spec §4.A "RDLENGTH is recomputed ... never trusted from input").
type RRHeader struct {
	Name  string
	Type  RecordType
	Class RecordClass
	TTL   uint32
}

// Record is a resource record: a fixed header plus type-specific RDATA.
// Each concrete type (IPRecord, NameRecord, SOARecord, OpaqueRecord)
// implements this rather than sharing one generic RDATA blob, so the
// compiler enforces that callers handle the shapes the cache actually
// needs (spec §3 "typed per type").
type Record interface {
	Header() RRHeader
	MarshalRData() ([]byte, error)
}

// Marshal serializes a record to wire format: name, type, class, ttl,
// rdlength, rdata. The name is always written uncompressed.
func Marshal(rr Record) ([]byte, error) {
	h := rr.Header()
	nameWire, err := EncodeName(h.Name)
	if err != nil {
		return nil, err
	}
	rdata, err := rr.MarshalRData()
	if err != nil {
		return nil, err
	}
	if len(rdata) > 0xFFFF {
		return nil, fmt.Errorf("record %s: rdata %d bytes: %w", h.Name, len(rdata), ErrBadRdLength)
	}

	out := make([]byte, 0, len(nameWire)+10+len(rdata))
	out = append(out, nameWire...)
	fixed := make([]byte, 10)
	binary.BigEndian.PutUint16(fixed[0:2], uint16(h.Type))
	binary.BigEndian.PutUint16(fixed[2:4], uint16(h.Class))
	binary.BigEndian.PutUint32(fixed[4:8], h.TTL)
	binary.BigEndian.PutUint16(fixed[8:10], uint16(len(rdata)))
	out = append(out, fixed...)
	return append(out, rdata...), nil
}

// ParseRecord decodes one resource record at *off, advancing past it, and
// dispatches to a typed record for A, AAAA, CNAME, NS, and SOA; any other
// type decodes to an OpaqueRecord with its RDATA passed through untouched
// (spec §4.A "unknown types").
func ParseRecord(msg []byte, off *int) (Record, error) {
	name, err := DecodeName(msg, off)
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	if *off+10 > len(msg) {
		return nil, fmt.Errorf("record %s: %w", name, ErrTruncatedBuffer)
	}
	rtype := RecordType(binary.BigEndian.Uint16(msg[*off : *off+2]))
	rclass := RecordClass(binary.BigEndian.Uint16(msg[*off+2 : *off+4]))
	ttl := binary.BigEndian.Uint32(msg[*off+4 : *off+8])
	rdlen := int(binary.BigEndian.Uint16(msg[*off+8 : *off+10]))
	*off += 10

	if *off+rdlen > len(msg) {
		return nil, fmt.Errorf("record %s rdata: %w", name, ErrTruncatedBuffer)
	}
	start := *off
	h := RRHeader{Name: name, Type: rtype, Class: rclass, TTL: ttl}

	switch rtype {
	case TypeA, TypeAAAA:
		return parseIPRData(msg, off, h, rdlen)
	case TypeCNAME, TypeNS:
		return parseNameRData(msg, off, h, start, rdlen)
	case TypeSOA:
		return parseSOARData(msg, off, h, start, rdlen)
	default:
		return parseOpaqueRData(msg, off, h, rdlen)
	}
}
