package adsb

import (
	"encoding/binary"
	"testing"

	"github.com/dstockhouse/mrfusion/checksum"
	"github.com/stretchr/testify/require"
)

func buildFrame(payload [38]byte) []byte {
	frame := make([]byte, FrameLength)
	frame[0] = sigFE
	frame[1] = sigLen
	frame[2] = 0x01 // SEQ
	frame[3] = 0x02 // SYSID
	frame[4] = 0x03 // COMP
	frame[5] = sigMsgID
	copy(frame[6:44], payload[:])
	crc := checksum.X25CRC(frame[1:44], crcExtra)
	binary.LittleEndian.PutUint16(frame[44:46], crc)
	return frame
}

func TestScanValidFrame(t *testing.T) {
	var payload [38]byte
	binary.BigEndian.PutUint32(payload[0:4], 0x00ABCDEF)
	binary.BigEndian.PutUint32(payload[4:8], 123456789)
	frame := buildFrame(payload)

	r := Scan(frame)
	require.True(t, r.Ok)
	require.Equal(t, FrameLength, r.Consumed)
	require.Equal(t, uint32(0x00ABCDEF), r.Message.ICAOAddress)
	require.Equal(t, int32(123456789), r.Message.Lat)
}

func TestScanBadCRCAdvancesOneByte(t *testing.T) {
	var payload [38]byte
	frame := buildFrame(payload)
	frame[44] ^= 0xFF // corrupt CRC

	r := Scan(frame)
	require.False(t, r.Ok)
	require.Equal(t, 1, r.Consumed)
}

func TestScanIncompleteFrameWaits(t *testing.T) {
	var payload [38]byte
	frame := buildFrame(payload)
	truncated := frame[:FrameLength-1]

	r := Scan(truncated)
	require.False(t, r.Ok)
	require.Equal(t, 0, r.Consumed)
}

func TestScanNoSignatureWaits(t *testing.T) {
	data := make([]byte, FrameLength)
	r := Scan(data)
	require.Equal(t, 0, r.Consumed)
}
