package vn200

import (
	"testing"

	"github.com/dstockhouse/mrfusion/ringbuf"
	"github.com/stretchr/testify/require"
)

func frameBytes(sentence string) []byte {
	return append(append([]byte("$"), []byte(sentence)...))
}

func TestParseFramesIMU(t *testing.T) {
	buf := ringbuf.New()
	buf.AppendMany([]byte("$VNIMU,+01.0854,-02.0143,+02.1980,-01.157,+00.271,-09.847,+00.001114,+00.000727,+00.002568,+21.4,+084.334*6D\r\n"))

	var got IMURecord
	count := 0
	ParseFrames(buf, Dispatch{
		OnIMU: func(r IMURecord) { got = r; count++ },
		Now:   func() float64 { return 42 },
	})

	require.Equal(t, 1, count)
	require.InDelta(t, 1.0854, got.Compass[0], 1e-9)
	require.InDelta(t, -2.0143, got.Compass[1], 1e-9)
	require.InDelta(t, 2.1980, got.Compass[2], 1e-9)
	require.InDelta(t, -1.157, got.Accel[0], 1e-9)
	require.InDelta(t, 0.271, got.Accel[1], 1e-9)
	require.InDelta(t, -9.847, got.Accel[2], 1e-9)
	require.InDelta(t, 0.001114, got.Gyro[0], 1e-9)
	require.InDelta(t, 0.000727, got.Gyro[1], 1e-9)
	require.InDelta(t, 0.002568, got.Gyro[2], 1e-9)
	require.InDelta(t, 21.4, got.Temp, 1e-9)
	require.InDelta(t, 84.334, got.Baro, 1e-9)
	require.Equal(t, float64(42), got.Timestamp)
	require.Equal(t, 0, buf.Len())
}

func TestParseFramesGPS(t *testing.T) {
	buf := ringbuf.New()
	buf.AppendMany([]byte("$VNGPE,570937.199558,2075,3,07,-2006902.850,-4857470.210,+3604176.410,+000.110,-000.680,+000.170,+019.320,+016.935,+016.758,+001.312,9.00E-09*07\r\n"))

	var got GPSRecord
	ParseFrames(buf, Dispatch{
		OnGPS: func(r GPSRecord) { got = r },
		Now:   func() float64 { return 1 },
	})

	require.InDelta(t, 570937.199558, got.TimeOfWeek, 1e-6)
	require.Equal(t, uint16(2075), got.Week)
	require.Equal(t, uint8(3), got.FixType)
	require.Equal(t, uint8(7), got.NumSats)
	require.InDelta(t, -2006902.850, got.PosECEF[0], 1e-3)
	require.InDelta(t, -4857470.210, got.PosECEF[1], 1e-3)
	require.InDelta(t, 3604176.410, got.PosECEF[2], 1e-3)
	require.InDelta(t, 0.110, float64(got.VelNED[0]), 1e-3)
	require.InDelta(t, -0.680, float64(got.VelNED[1]), 1e-3)
	require.InDelta(t, 0.170, float64(got.VelNED[2]), 1e-3)
	require.InDelta(t, 1.312, float64(got.SpeedAcc), 1e-3)
	require.InDelta(t, 9.00e-9, float64(got.TimeAcc), 1e-10)
}

func TestBadChecksumResyncs(t *testing.T) {
	buf := ringbuf.New()
	buf.AppendMany([]byte("$VNIMU,+01.0854,-02.0143,+02.1980,-01.157,+00.271,-09.847,+00.001114,+00.000727,+00.002568,+21.4,+084.334*00\r\n"))
	buf.AppendMany([]byte("$VNIMU,+01.0854,-02.0143,+02.1980,-01.157,+00.271,-09.847,+00.001114,+00.000727,+00.002568,+21.4,+084.334*6D\r\n"))

	count := 0
	ParseFrames(buf, Dispatch{
		OnIMU: func(r IMURecord) { count++ },
		Now:   func() float64 { return 0 },
	})

	require.Equal(t, 1, count)
}

func TestIncompleteFrameWaitsForMoreInput(t *testing.T) {
	buf := ringbuf.New()
	buf.AppendMany([]byte("$VNIMU,+01.0854,-02.0143"))

	called := false
	ParseFrames(buf, Dispatch{OnIMU: func(r IMURecord) { called = true }})

	require.False(t, called)
	require.Greater(t, buf.Len(), 0)
}
