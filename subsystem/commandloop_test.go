package subsystem

import (
	"bytes"
	"testing"
	"time"

	"github.com/dstockhouse/mrfusion/mesh"
	"github.com/stretchr/testify/require"
)

func timeoutChan(t *testing.T) <-chan time.Time {
	t.Helper()
	return time.After(2 * time.Second)
}

// fakeMotor records every line written to it, standing in for a Kangaroo
// serial port in tests.
type fakeMotor struct {
	writes [][]byte
}

func (m *fakeMotor) Write(p []byte) (int, error) {
	cp := append([]byte{}, p...)
	m.writes = append(m.writes, cp)
	return len(p), nil
}

func TestCommandLoopExitsOnStop(t *testing.T) {
	// spec scenario 6: harness sends 73 74 6F 70 ("stop"); the loop must
	// exit on the next iteration without requiring a join timeout.
	conn := &fakeConn{in: bytes.NewBuffer(mesh.EncodeStop())}
	motor := &fakeMotor{}
	rt := New("control", nil)

	done := make(chan struct{})
	go func() {
		CommandLoop(rt, conn, motor)
		close(done)
	}()

	select {
	case <-done:
	case <-timeoutChan(t):
		t.Fatal("CommandLoop did not exit after stop")
	}
}

func TestCommandLoopAppliesSpeedCommand(t *testing.T) {
	body := append(append([]byte{}, mesh.EncodeCtlS(1.0)...), mesh.EncodeStop()...)
	conn := &fakeConn{in: bytes.NewBuffer(body)}
	motor := &fakeMotor{}
	rt := New("control", nil)

	CommandLoop(rt, conn, motor)

	require.NotEmpty(t, motor.writes)
}
