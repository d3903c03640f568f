package dns

// OpaqueRecord holds a record of a type this relay does not parse typed
// RDATA for. The RDATA is kept exactly as received and re-emitted
// unchanged (spec §4.A "Unknown types: rdata passed through opaque;
// rdlength preserved").
type OpaqueRecord struct {
	H    RRHeader
	Data []byte
}

func (r *OpaqueRecord) Header() RRHeader { return r.H }

func (r *OpaqueRecord) MarshalRData() ([]byte, error) {
	return r.Data, nil
}

func parseOpaqueRData(msg []byte, off *int, h RRHeader, rdlen int) (*OpaqueRecord, error) {
	data := make([]byte, rdlen)
	copy(data, msg[*off:*off+rdlen])
	*off += rdlen
	return &OpaqueRecord{H: h, Data: data}, nil
}
