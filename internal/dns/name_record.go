package dns

import "fmt"

// NameRecord is a CNAME or NS record: RDATA is a single, uncompressed
// domain name re-materialized on decode (spec §4.A).
type NameRecord struct {
	H      RRHeader
	Target string
}

func NewNameRecord(h RRHeader, target string) *NameRecord {
	return &NameRecord{H: h, Target: target}
}

func (r *NameRecord) Header() RRHeader { return r.H }

func (r *NameRecord) MarshalRData() ([]byte, error) {
	return EncodeName(r.Target)
}

func parseNameRData(msg []byte, off *int, h RRHeader, start, rdlen int) (*NameRecord, error) {
	target, err := DecodeName(msg, off)
	if err != nil {
		return nil, fmt.Errorf("name record %s: %w", h.Name, err)
	}
	if *off-start != rdlen {
		return nil, fmt.Errorf("name record %s: decoded %d bytes, rdlength %d: %w", h.Name, *off-start, rdlen, ErrBadRdLength)
	}
	return &NameRecord{H: h, Target: NormalizeName(target)}, nil
}
