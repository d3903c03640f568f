package dns

import "fmt"

// Packet is a complete DNS message: header plus the four sections
// (RFC 1035 Section 4).
type Packet struct {
	Header      Header
	Questions   []Question
	Answers     []Record
	Authorities []Record
	Additionals []Record
}

// Marshal serializes the packet. Per spec §4.A, the header's declared
// section counts must equal the actual section lengths — Marshal asserts
// this rather than silently recomputing it, so a caller that builds a
// Packet with a stale header catches the bug immediately.
func (p Packet) Marshal() ([]byte, error) {
	if int(p.Header.QDCount) != len(p.Questions) ||
		int(p.Header.ANCount) != len(p.Answers) ||
		int(p.Header.NSCount) != len(p.Authorities) ||
		int(p.Header.ARCount) != len(p.Additionals) {
		return nil, fmt.Errorf("marshal packet id=%d: %w", p.Header.ID, ErrCountMismatch)
	}

	out := make([]byte, 0, HeaderSize+64*(len(p.Questions)+len(p.Answers)+len(p.Authorities)+len(p.Additionals)))
	out = append(out, p.Header.Marshal()...)

	for _, q := range p.Questions {
		b, err := q.Marshal()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	for _, section := range [][]Record{p.Answers, p.Authorities, p.Additionals} {
		for _, rr := range section {
			b, err := Marshal(rr)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
	}
	return out, nil
}

// ParsePacket decodes a complete DNS message. Questions and records are
// read strictly in header-count order (spec §4.A); reading past the
// buffer end at any point is a decode error.
func ParsePacket(msg []byte) (Packet, error) {
	off := 0
	h, err := ParseHeader(msg, &off)
	if err != nil {
		return Packet{}, err
	}

	p := Packet{Header: h}

	p.Questions = make([]Question, 0, h.QDCount)
	for range h.QDCount {
		q, err := ParseQuestion(msg, &off)
		if err != nil {
			return Packet{}, err
		}
		p.Questions = append(p.Questions, q)
	}

	for _, spec := range []struct {
		count int
		dst   *[]Record
	}{
		{int(h.ANCount), &p.Answers},
		{int(h.NSCount), &p.Authorities},
		{int(h.ARCount), &p.Additionals},
	} {
		*spec.dst = make([]Record, 0, spec.count)
		for range spec.count {
			rr, err := ParseRecord(msg, &off)
			if err != nil {
				return Packet{}, err
			}
			*spec.dst = append(*spec.dst, rr)
		}
	}
	return p, nil
}
