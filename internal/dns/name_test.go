package dns

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeNameRoundTrip(t *testing.T) {
	names := []string{"www.example.com", "example.com", "a.b.c.d.test", ""}
	for _, n := range names {
		wire, err := EncodeName(n)
		require.NoError(t, err)

		off := 0
		got, err := DecodeName(wire, &off)
		require.NoError(t, err)
		require.Equal(t, n, got)
		require.Equal(t, len(wire), off)
	}
}

func TestEncodeNameLabelTooLong(t *testing.T) {
	_, err := EncodeName(strings.Repeat("a", 64) + ".com")
	require.ErrorIs(t, err, ErrNameTooLong)
}

func TestEncodeNameTotalTooLong(t *testing.T) {
	var labels []string
	for range 10 {
		labels = append(labels, strings.Repeat("a", 30))
	}
	_, err := EncodeName(strings.Join(labels, "."))
	require.ErrorIs(t, err, ErrNameTooLong)
}

func TestDecodeNameFollowsForwardCompressionPointer(t *testing.T) {
	// "example.com" at offset 0, then a second name "www" pointing back to it.
	base, err := EncodeName("example.com")
	require.NoError(t, err)
	msg := append([]byte{}, base...)
	ptrOff := len(msg)
	msg = append(msg, 3, 'w', 'w', 'w')
	msg = append(msg, 0xC0, 0x00) // pointer to offset 0

	off := ptrOff
	got, err := DecodeName(msg, &off)
	require.NoError(t, err)
	require.Equal(t, "www.example.com", got)
	require.Equal(t, ptrOff+4+2, off)
}

func TestDecodeNamePointerCycle(t *testing.T) {
	// Pointer at offset 0 points to itself.
	msg := []byte{0xC0, 0x00}
	off := 0
	_, err := DecodeName(msg, &off)
	require.ErrorIs(t, err, ErrPointerCycle)
}

func TestDecodeNamePointerMutualCycle(t *testing.T) {
	// Offset 0 points to offset 2, offset 2 points back to offset 0.
	msg := []byte{0xC0, 0x02, 0xC0, 0x00}
	off := 0
	_, err := DecodeName(msg, &off)
	require.ErrorIs(t, err, ErrPointerCycle)
}

func TestDecodeNameTruncated(t *testing.T) {
	off := 0
	_, err := DecodeName([]byte{5, 'a', 'b'}, &off)
	require.ErrorIs(t, err, ErrTruncatedBuffer)
}
