package dns

import (
	"fmt"
	"strings"
)

// DumpHex renders msg as a 16-bytes-per-line hex dump, the Go analogue
// of the original relay's byte-stream debug print. Callers gate this
// behind slog.LevelDebug; it is never useful at higher verbosity and
// allocates proportionally to len(msg).
func DumpHex(msg []byte) string {
	var b strings.Builder
	for i := 0; i < len(msg); i += 16 {
		end := min(i+16, len(msg))
		fmt.Fprintf(&b, "%04x ", i)
		for _, c := range msg[i:end] {
			fmt.Fprintf(&b, "%02x ", c)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Dump renders a Packet's sections in the same Header/Question/Answer/
// Authority/Additional order the original relay's debug printer used,
// for structured-log attachment rather than direct stdout writes.
func Dump(p Packet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "id=0x%04x qr=%v opcode=%d rcode=%d qd=%d an=%d ns=%d ar=%d\n",
		p.Header.ID, IsResponse(p.Header.Flags), Opcode(p.Header.Flags),
		RCodeFromFlags(p.Header.Flags), p.Header.QDCount, p.Header.ANCount, p.Header.NSCount, p.Header.ARCount)
	for _, q := range p.Questions {
		fmt.Fprintf(&b, "  Q %s type=%d class=%d\n", q.Name, q.Type, q.Class)
	}
	for _, section := range []struct {
		name string
		recs []Record
	}{
		{"ANSWER", p.Answers},
		{"AUTHORITY", p.Authorities},
		{"ADDITIONAL", p.Additionals},
	} {
		for _, rr := range section.recs {
			h := rr.Header()
			fmt.Fprintf(&b, "  %s %s type=%d ttl=%d\n", section.name, h.Name, h.Type, h.TTL)
		}
	}
	return b.String()
}
