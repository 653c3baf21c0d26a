package kangaroo

import (
	"strconv"
	"strings"

	"github.com/dstockhouse/mrfusion/ringbuf"
)

// ParseLines scans buf for complete \r- or \n-terminated reply lines,
// parses each into a Packet, invokes onPacket, and advances the consume
// cursor past every line it handled — complete or malformed. An
// incomplete trailing line is left in buf for the next poll.
func ParseLines(buf *ringbuf.Buffer, now func() float64, onPacket func(Packet)) {
	for {
		term := -1
		for i := 0; i < buf.Len(); i++ {
			c := buf.At(i)
			if c == '\r' || c == '\n' {
				term = i
				break
			}
		}
		if term < 0 {
			return
		}
		if term == 0 {
			buf.RemoveFront(1)
			continue
		}

		line := make([]byte, term)
		buf.CopyOut(line, 0)
		buf.RemoveFront(term + 1)

		pkt := parseLine(string(line), now())
		onPacket(pkt)
	}
}

// parseLine splits "<channel>,<letter><signed-int>" into a Packet.
func parseLine(s string, ts float64) Packet {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Packet{Timestamp: ts, Valid: false}
	}
	channel, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Packet{Timestamp: ts, Valid: false}
	}
	body := strings.TrimSpace(parts[1])
	if body == "" {
		return Packet{Channel: channel, Timestamp: ts, Valid: false}
	}

	letter := body[0]
	numStr := body[1:]
	value, err := strconv.ParseInt(numStr, 10, 32)
	if err != nil {
		return Packet{Channel: channel, Timestamp: ts, Valid: false}
	}

	var typ PacketType
	switch letter {
	case 'p', 'P':
		typ = TypePosition
	case 's', 'S':
		typ = TypeSpeed
	case 'e', 'E':
		typ = TypeError
	default:
		return Packet{Channel: channel, Timestamp: ts, Valid: false}
	}

	return Packet{Channel: channel, Type: typ, Data: int32(value), Timestamp: ts, Valid: true}
}
