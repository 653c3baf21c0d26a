package mesh

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Tag is one of the fixed 4-byte message tags the mesh recognizes.
// Framing is length-implicit: a reader recognizes a message by its tag
// plus a fixed body size, never by an explicit length prefix.
type Tag [4]byte

var (
	TagInit = Tag{'i', 'n', 'i', 't'}
	TagStop = Tag{'s', 't', 'o', 'p'}
	TagCtlX = Tag{'c', 't', 'l', 'x'}
	TagCtlS = Tag{'c', 't', 'l', 's'}
	TagCtlR = Tag{'c', 't', 'l', 'r'}
)

// BodySize returns the fixed body length following tag (0 for a bare
// tag), or -1 if the tag is not one the mesh recognizes.
func (t Tag) BodySize() int {
	switch t {
	case TagInit:
		return 12 // f64 start_time + u32 key
	case TagStop, TagCtlX:
		return 0
	case TagCtlS, TagCtlR:
		return 8 // f64
	default:
		return -1
	}
}

// InitMessage is the 16-byte handshake payload the deploy harness sends:
// 'i','n','i','t', a double start time, and a u32 key.
type InitMessage struct {
	StartTime float64
	Key       uint32
}

// EncodeInit serializes an InitMessage to its 16-byte wire form, little-
// endian as the spec's interoperability note mandates.
func EncodeInit(m InitMessage) []byte {
	buf := make([]byte, 16)
	copy(buf[0:4], TagInit[:])
	binary.LittleEndian.PutUint64(buf[4:12], math.Float64bits(m.StartTime))
	binary.LittleEndian.PutUint32(buf[12:16], m.Key)
	return buf
}

// DecodeInit parses the 12-byte body that follows the tag of a 16-byte
// init message.
func DecodeInit(body []byte) (InitMessage, error) {
	if len(body) < 12 {
		return InitMessage{}, fmt.Errorf("mesh: init body too short: %d bytes", len(body))
	}
	bits := binary.LittleEndian.Uint64(body[0:8])
	key := binary.LittleEndian.Uint32(body[8:12])
	return InitMessage{StartTime: math.Float64frombits(bits), Key: key}, nil
}

// EncodeStop, EncodeCtlX serialize their bare 4-byte tags.
func EncodeStop() []byte { return append([]byte{}, TagStop[:]...) }
func EncodeCtlX() []byte { return append([]byte{}, TagCtlX[:]...) }

// EncodeCtlS serializes a speed command: tag + f64 speed in m/s.
func EncodeCtlS(speedMPS float64) []byte {
	buf := make([]byte, 12)
	copy(buf[0:4], TagCtlS[:])
	binary.LittleEndian.PutUint64(buf[4:12], math.Float64bits(speedMPS))
	return buf
}

// EncodeCtlR serializes a rotation command: tag + f64 rotation in rad/s.
func EncodeCtlR(rotationRadPS float64) []byte {
	buf := make([]byte, 12)
	copy(buf[0:4], TagCtlR[:])
	binary.LittleEndian.PutUint64(buf[4:12], math.Float64bits(rotationRadPS))
	return buf
}

// DecodeF64Body extracts the single f64 trailing a ctls/ctlr tag.
func DecodeF64Body(body []byte) (float64, error) {
	if len(body) < 8 {
		return 0, fmt.Errorf("mesh: f64 body too short: %d bytes", len(body))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(body[0:8])), nil
}
