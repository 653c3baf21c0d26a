// Package adsb implements the binary packet parser for the pingUSB ADS-B
// receiver: MAVLink-v1-shaped 46-byte frames carrying a Message246
// traffic report, validated with an X.25 CRC-16.
package adsb

import (
	"encoding/binary"

	"github.com/dstockhouse/mrfusion/checksum"
)

// FrameLength is the total wire size of one ADS-B frame.
const FrameLength = 46

const (
	sigFE     = 0xFE
	sigLen    = 0x26
	sigMsgID  = 246
	crcExtra  = 184
	payloadSz = 38
)

// Message246 is the decoded ADS-B traffic-report payload. Multi-byte
// fields are big-endian on the wire — the physical receiver's byte order,
// not a host-endianness artifact, so it is preserved verbatim rather than
// normalized to the TCP mesh's little-endian convention.
type Message246 struct {
	ICAOAddress      uint32 // 24-bit, high byte zero
	Lat              int32  // degrees * 1e7
	Lon              int32  // degrees * 1e7
	AltitudeMM       int32
	HeadingCentideg  uint16
	HorVelocityCMS   uint16
	VerVelocityCMS   int16
	ValidFlags       uint16
	Squawk           uint16
	AltitudeType     uint8
	Callsign         [9]byte
	EmitterType      uint8
	TimeSinceContact uint8
}

// Result is one scan outcome: either a decoded Message and the number of
// bytes the scan consumed, or zero Message with consumed=1 (the scanner
// steps a spurious signature by exactly one byte on CRC failure).
type Result struct {
	Message  Message246
	Ok       bool
	Consumed int
}

// Scan looks for the frame signature (0xFE, 0x26, ..., ..., ..., 246) at
// offsets (i, i+1, i+5) within data, starting at offset 0. If no complete
// frame fits before the end of data, it returns Ok=false, Consumed=0 (the
// boundary case: wait for more input). Otherwise it returns Ok=true and
// the decoded message, or — on a CRC mismatch — Ok=false and Consumed=1
// so the caller's cursor advances by one byte and retries.
func Scan(data []byte) Result {
	for i := 0; i+FrameLength <= len(data); i++ {
		if data[i] != sigFE || data[i+1] != sigLen || data[i+5] != sigMsgID {
			continue
		}
		frame := data[i : i+FrameLength]
		crcBody := frame[1:44]
		wantCRC := binary.LittleEndian.Uint16(frame[44:46])
		gotCRC := checksum.X25CRC(crcBody, crcExtra)
		if gotCRC != wantCRC {
			return Result{Consumed: 1}
		}
		return Result{Message: decodePayload(frame[6:44]), Ok: true, Consumed: i + FrameLength}
	}
	return Result{Consumed: 0}
}

func decodePayload(p []byte) Message246 {
	be32 := func(b []byte) int32 { return int32(be32u(b)) }
	var cs [9]byte
	copy(cs[:], p[27:36])
	return Message246{
		ICAOAddress:      be32u(p[0:4]),
		Lat:              be32(p[4:8]),
		Lon:              be32(p[8:12]),
		AltitudeMM:       be32(p[12:16]),
		HeadingCentideg:  binary.BigEndian.Uint16(p[16:18]),
		HorVelocityCMS:   binary.BigEndian.Uint16(p[18:20]),
		VerVelocityCMS:   int16(binary.BigEndian.Uint16(p[20:22])),
		ValidFlags:       binary.BigEndian.Uint16(p[22:24]),
		Squawk:           binary.BigEndian.Uint16(p[24:26]),
		AltitudeType:     p[26],
		Callsign:         cs,
		EmitterType:      p[36],
		TimeSinceContact: p[37],
	}
}

func be32u(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}
