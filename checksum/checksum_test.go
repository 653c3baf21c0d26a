package checksum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestXOR8KnownVector(t *testing.T) {
	body := []byte("VNIMU,+01.0854,-02.0143,+02.1980,-01.157,+00.271,-09.847,+00.001114,+00.000727,+00.002568,+21.4,+084.334")
	require.Equal(t, byte(0x6D), XOR8(body))
}

func TestXOR8SelfCheck(t *testing.T) {
	body := []byte("some arbitrary sentence body")
	chk := XOR8(body)
	require.Equal(t, byte(0), XOR8(append(append([]byte{}, body...), chk)))
}

func TestX25CRCDeterministic(t *testing.T) {
	payload := make([]byte, 38)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	a := X25CRC(payload, 184)
	b := X25CRC(payload, 184)
	require.Equal(t, a, b)

	other := X25CRC(payload, 185)
	require.NotEqual(t, a, other)
}

func TestX25TableCRCMatchesAccumulator(t *testing.T) {
	payload := make([]byte, 43)
	for i := range payload {
		payload[i] = byte(i*31 + 11)
	}
	require.Equal(t, X25CRC(payload, 184), X25TableCRC(payload, 184))
}
