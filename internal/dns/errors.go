// Package dns implements RFC 1035 DNS message parsing and serialization:
// the header, question, and resource-record wire formats, name compression
// on ingress, and uncompressed re-emission on egress.
//
// Standards Compliance:
//
//   - RFC 1035: Domain Names - Implementation and Specification
//   - RFC 3596: DNS Extensions to Support IPv6 (AAAA records)
//
// Type-Oriented Design:
//
// Each supported resource record type is its own Go type (IPRecord,
// NameRecord, SOARecord) rather than one generic struct with an `any`
// payload. Unknown types fall back to OpaqueRecord, which keeps the raw
// RDATA bytes untouched.
//
// Error Handling:
//
// All errors are wrapped with context via fmt.Errorf("...: %w", err),
// wrapping one of the sentinel errors below so callers can classify a
// decode failure with errors.Is.
package dns

import "errors"

var (
	// ErrTruncatedBuffer is returned when a read would run past the end
	// of the message buffer.
	ErrTruncatedBuffer = errors.New("dns: truncated buffer")
	// ErrNameTooLong is returned when a domain name exceeds the RFC 1035
	// limits (63 bytes per label, 255 bytes total wire length).
	ErrNameTooLong = errors.New("dns: name too long")
	// ErrPointerCycle is returned when name decompression detects a
	// compression pointer that revisits an offset already followed.
	ErrPointerCycle = errors.New("dns: compression pointer cycle")
	// ErrBadRdLength is returned when a record's RDATA does not match
	// its declared or expected length for its type.
	ErrBadRdLength = errors.New("dns: bad rdlength")
	// ErrCountMismatch is returned by Packet.Marshal when the header's
	// declared section counts do not match the actual section lengths.
	ErrCountMismatch = errors.New("dns: section count mismatch")
)
