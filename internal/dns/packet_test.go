package dns

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTestPacket() Packet {
	answers := []Record{
		NewIPRecord(RRHeader{Name: "example.com", Type: TypeA, Class: ClassIN, TTL: 300}, []byte{93, 184, 216, 34}),
	}
	return Packet{
		Header:    Header{ID: 0x1234, Flags: QRFlag, QDCount: 1, ANCount: 1},
		Questions: []Question{{Name: "example.com", Type: uint16(TypeA), Class: uint16(ClassIN)}},
		Answers:   answers,
	}
}

func TestPacketRoundTripNoCompression(t *testing.T) {
	p := buildTestPacket()
	wire, err := p.Marshal()
	require.NoError(t, err)

	got, err := ParsePacket(wire)
	require.NoError(t, err)
	require.Equal(t, p.Header, got.Header)
	require.Equal(t, p.Questions, got.Questions)
	require.Len(t, got.Answers, 1)
	ip, ok := got.Answers[0].(*IPRecord)
	require.True(t, ok)
	require.Equal(t, []byte{93, 184, 216, 34}, ip.Addr)
}

func TestPacketMarshalCountMismatch(t *testing.T) {
	p := buildTestPacket()
	p.Header.ANCount = 2 // stale relative to len(p.Answers)
	_, err := p.Marshal()
	require.ErrorIs(t, err, ErrCountMismatch)
}

func TestParsePacketCNAMEChainAndTruncation(t *testing.T) {
	p := Packet{
		Header:    Header{ID: 1, Flags: QRFlag, QDCount: 1, ANCount: 2},
		Questions: []Question{{Name: "a.test", Type: uint16(TypeA), Class: uint16(ClassIN)}},
		Answers: []Record{
			NewNameRecord(RRHeader{Name: "a.test", Type: TypeCNAME, Class: ClassIN, TTL: 60}, "b.test"),
			NewIPRecord(RRHeader{Name: "b.test", Type: TypeA, Class: ClassIN, TTL: 60}, []byte{10, 0, 0, 1}),
		},
	}
	wire, err := p.Marshal()
	require.NoError(t, err)

	got, err := ParsePacket(wire)
	require.NoError(t, err)
	require.Len(t, got.Answers, 2)

	_, err = ParsePacket(wire[:len(wire)-1])
	require.Error(t, err)
}
