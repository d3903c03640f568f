package dns

import (
	"encoding/binary"
	"fmt"
)

// SOARecord is a Start-of-Authority record: two uncompressed domain names
// (MName, RName) followed by five big-endian 32-bit fields (spec §4.A
// "SOA: mname, rname (both uncompressed), then 20 bytes of ... serial,
// refresh, retry, expire, minimum").
type SOARecord struct {
	H       RRHeader
	MName   string
	RName   string
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (r *SOARecord) Header() RRHeader { return r.H }

func (r *SOARecord) MarshalRData() ([]byte, error) {
	mname, err := EncodeName(r.MName)
	if err != nil {
		return nil, err
	}
	rname, err := EncodeName(r.RName)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(mname)+len(rname)+20)
	out = append(out, mname...)
	out = append(out, rname...)
	tail := make([]byte, 20)
	binary.BigEndian.PutUint32(tail[0:4], r.Serial)
	binary.BigEndian.PutUint32(tail[4:8], r.Refresh)
	binary.BigEndian.PutUint32(tail[8:12], r.Retry)
	binary.BigEndian.PutUint32(tail[12:16], r.Expire)
	binary.BigEndian.PutUint32(tail[16:20], r.Minimum)
	return append(out, tail...), nil
}

func parseSOARData(msg []byte, off *int, h RRHeader, start, rdlen int) (*SOARecord, error) {
	mname, err := DecodeName(msg, off)
	if err != nil {
		return nil, fmt.Errorf("soa record %s mname: %w", h.Name, err)
	}
	rname, err := DecodeName(msg, off)
	if err != nil {
		return nil, fmt.Errorf("soa record %s rname: %w", h.Name, err)
	}
	if *off+20 > len(msg) || *off-start+20 != rdlen {
		return nil, fmt.Errorf("soa record %s: %w", h.Name, ErrBadRdLength)
	}
	r := &SOARecord{
		H:       h,
		MName:   NormalizeName(mname),
		RName:   NormalizeName(rname),
		Serial:  binary.BigEndian.Uint32(msg[*off : *off+4]),
		Refresh: binary.BigEndian.Uint32(msg[*off+4 : *off+8]),
		Retry:   binary.BigEndian.Uint32(msg[*off+8 : *off+12]),
		Expire:  binary.BigEndian.Uint32(msg[*off+12 : *off+16]),
		Minimum: binary.BigEndian.Uint32(msg[*off+16 : *off+20]),
	}
	*off += 20
	return r, nil
}
