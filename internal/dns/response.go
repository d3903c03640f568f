package dns

// BuildErrorResponse constructs a reply carrying the original transaction
// ID and question, no answer/authority/additional records, and the given
// RCODE — used to synthesize the NXDOMAIN reply for blocked hosts-file
// entries (spec §4.C). The query pool builds its SERVFAIL reply after
// upstream timeout exhaustion separately, from the stored question.
func BuildErrorResponse(req Packet, rcode RCode) Packet {
	return Packet{
		Header: Header{
			ID:      req.Header.ID,
			Flags:   SetRCode(req.Header.Flags, rcode),
			QDCount: uint16(len(req.Questions)),
		},
		Questions: req.Questions,
	}
}
