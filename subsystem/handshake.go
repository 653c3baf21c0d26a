package subsystem

import (
	"fmt"
	"time"

	"github.com/dstockhouse/mrfusion/mesh"
)

// AwaitHandshake implements step 5 of the subsystem skeleton: wait on the
// guidance connection for the 16-byte init message, up to timeout. On
// success it returns the decoded message and true; it does not touch any
// Runtime (Runtime.Handshake applies the result to Params). On timeout it
// returns false without error and the caller is expected to call
// Runtime.InteractiveFallback.
func AwaitHandshake(conn Conn, timeout time.Duration) (mesh.InitMessage, bool, error) {
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 0, 16)
	chunk := make([]byte, 16)

	for time.Now().Before(deadline) {
		n, err := conn.Read(chunk)
		if err != nil {
			return mesh.InitMessage{}, false, fmt.Errorf("subsystem: handshake read: %w", err)
		}
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if len(buf) >= 16 {
				if string(buf[0:4]) != "init" {
					return mesh.InitMessage{}, false, fmt.Errorf("subsystem: handshake: expected init tag, got %q", buf[0:4])
				}
				msg, err := mesh.DecodeInit(buf[4:16])
				if err != nil {
					return mesh.InitMessage{}, false, err
				}
				return msg, true, nil
			}
			continue
		}
		time.Sleep(5 * time.Millisecond)
	}
	return mesh.InitMessage{}, false, nil
}

// Handshake runs AwaitHandshake against conn and applies its result to
// rt.Params, falling back to the local clock and a random key on timeout.
func (rt *Runtime) Handshake(conn Conn, timeout time.Duration) error {
	msg, ok, err := AwaitHandshake(conn, timeout)
	if err != nil {
		return err
	}
	if !ok {
		rt.InteractiveFallback()
		return nil
	}
	rt.Params.StartTime = msg.StartTime
	rt.Params.Key = msg.Key
	return nil
}
