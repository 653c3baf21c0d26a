package kangaroo

import (
	"testing"

	"github.com/dstockhouse/mrfusion/ringbuf"
	"github.com/stretchr/testify/require"
)

func TestParseLinesPositionAndSpeed(t *testing.T) {
	buf := ringbuf.New()
	buf.AppendMany([]byte("1,p120\r\n2,s-50\r\n"))

	var packets []Packet
	ParseLines(buf, func() float64 { return 0 }, func(p Packet) { packets = append(packets, p) })

	require.Len(t, packets, 2)
	require.Equal(t, TypePosition, packets[0].Type)
	require.Equal(t, int32(120), packets[0].Data)
	require.Equal(t, 1, packets[0].Channel)
	require.Equal(t, TypeSpeed, packets[1].Type)
	require.Equal(t, int32(-50), packets[1].Data)
	require.Equal(t, 0, buf.Len())
}

func TestParseLinesIncompleteLineWaits(t *testing.T) {
	buf := ringbuf.New()
	buf.AppendMany([]byte("1,p120"))

	called := false
	ParseLines(buf, func() float64 { return 0 }, func(p Packet) { called = true })

	require.False(t, called)
	require.Greater(t, buf.Len(), 0)
}

func TestOdometryPairingWithinWindow(t *testing.T) {
	p := NewPairer(0.05)

	_, paired := p.Observe(Packet{Channel: ChannelLeft, Type: TypePosition, Data: 120, Timestamp: 1.000, Valid: true})
	require.False(t, paired)

	row, paired := p.Observe(Packet{Channel: ChannelRight, Type: TypePosition, Data: -118, Timestamp: 1.020, Valid: true})
	require.True(t, paired)
	require.Equal(t, int32(120), row.LeftMM)
	require.Equal(t, int32(-118), row.RightMM)
	require.Equal(t, 1.000, row.Timestamp)
}

func TestOdometryPairingOutsideWindowEmitsNothing(t *testing.T) {
	p := NewPairer(0.05)

	p.Observe(Packet{Channel: ChannelLeft, Type: TypePosition, Data: 1, Timestamp: 1.100, Valid: true})
	_, paired := p.Observe(Packet{Channel: ChannelRight, Type: TypePosition, Data: 2, Timestamp: 1.200, Valid: true})

	require.False(t, paired)
}

func TestErrorCodeFromValue(t *testing.T) {
	require.Equal(t, ErrChecksum, ErrorCodeFromValue(6))
	require.Equal(t, ErrNone, ErrorCodeFromValue(999))
}

func TestSpeedAndPositionCommandFraming(t *testing.T) {
	require.Equal(t, []byte("1,s-50\r\n"), SpeedCommand(1, -50))
	require.Equal(t, []byte("2,getp\r\n"), PositionQuery(2))
}
