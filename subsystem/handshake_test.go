package subsystem

import (
	"bytes"
	"testing"
	"time"

	"github.com/dstockhouse/mrfusion/mesh"
	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory Conn: Write appends to an outbound buffer,
// Read drains a preloaded inbound buffer a chunk at a time.
type fakeConn struct {
	in  *bytes.Buffer
	out bytes.Buffer
}

func (c *fakeConn) Read(p []byte) (int, error) {
	if c.in.Len() == 0 {
		return 0, nil
	}
	return c.in.Read(p)
}

func (c *fakeConn) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func TestHandshakeDecodesInitMessage(t *testing.T) {
	// spec scenario 5: 69 6E 69 74 | f64 1.7e9 | u32 0xDEADBEEF
	body := mesh.EncodeInit(mesh.InitMessage{StartTime: 1.7e9, Key: 0xDEADBEEF})
	require.Equal(t, []byte{0x69, 0x6e, 0x69, 0x74}, body[0:4])

	conn := &fakeConn{in: bytes.NewBuffer(body)}
	msg, ok, err := AwaitHandshake(conn, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 1.7e9, msg.StartTime, 1)
	require.Equal(t, uint32(0xDEADBEEF), msg.Key)
}

func TestHandshakeTimesOutWithoutMessage(t *testing.T) {
	conn := &fakeConn{in: bytes.NewBuffer(nil)}
	_, ok, err := AwaitHandshake(conn, 20*time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRuntimeHandshakeFallsBackOnTimeout(t *testing.T) {
	rt := New("test", nil)
	conn := &fakeConn{in: bytes.NewBuffer(nil)}
	require.NoError(t, rt.Handshake(conn, 10*time.Millisecond))
	require.NotZero(t, rt.Params.StartTime)
}
