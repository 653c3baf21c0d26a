package mesh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitHandshakeRoundTrip(t *testing.T) {
	// 16-byte wire form: 69 6E 69 74 | f64 1.7e9 | u32 0xDEADBEEF
	msg := InitMessage{StartTime: 1.7e9, Key: 0xDEADBEEF}
	wire := EncodeInit(msg)
	require.Len(t, wire, 16)
	require.Equal(t, []byte("init"), wire[0:4])

	decoded, err := DecodeInit(wire[4:])
	require.NoError(t, err)
	require.Equal(t, msg, decoded)
}

func TestBodySizes(t *testing.T) {
	require.Equal(t, 12, TagInit.BodySize())
	require.Equal(t, 0, TagStop.BodySize())
	require.Equal(t, 0, TagCtlX.BodySize())
	require.Equal(t, 8, TagCtlS.BodySize())
	require.Equal(t, 8, TagCtlR.BodySize())
}

func TestCtlSRoundTrip(t *testing.T) {
	wire := EncodeCtlS(1.25)
	require.Equal(t, []byte("ctls"), wire[0:4])
	v, err := DecodeF64Body(wire[4:])
	require.NoError(t, err)
	require.Equal(t, 1.25, v)
}
