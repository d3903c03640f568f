package dns

import "fmt"

// IPRecord is an A or AAAA record (spec §4.A "A: 4 bytes ... AAAA: 16 bytes").
type IPRecord struct {
	H    RRHeader
	Addr []byte // 4 bytes for A, 16 bytes for AAAA
}

// NewIPRecord builds an A or AAAA record; h.Type must already be set to
// match len(addr) (4 -> TypeA, 16 -> TypeAAAA).
func NewIPRecord(h RRHeader, addr []byte) *IPRecord {
	return &IPRecord{H: h, Addr: addr}
}

func (r *IPRecord) Header() RRHeader { return r.H }

func (r *IPRecord) MarshalRData() ([]byte, error) {
	switch len(r.Addr) {
	case 4, 16:
		return r.Addr, nil
	default:
		return nil, fmt.Errorf("ip record %s: address is %d bytes: %w", r.H.Name, len(r.Addr), ErrBadRdLength)
	}
}

func parseIPRData(msg []byte, off *int, h RRHeader, rdlen int) (*IPRecord, error) {
	if (h.Type == TypeA && rdlen != 4) || (h.Type == TypeAAAA && rdlen != 16) {
		return nil, fmt.Errorf("ip record %s: rdlength %d: %w", h.Name, rdlen, ErrBadRdLength)
	}
	addr := make([]byte, rdlen)
	copy(addr, msg[*off:*off+rdlen])
	*off += rdlen
	return &IPRecord{H: h, Addr: addr}, nil
}
