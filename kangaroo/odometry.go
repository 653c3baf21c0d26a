package kangaroo

import "math"

// Channel assignment: 1 is the left motor, 2 is the right motor.
const (
	ChannelLeft  = 1
	ChannelRight = 2
)

// OdometryRow is one paired left/right position sample, emitted when both
// readings fall within the configured pairing window of each other.
type OdometryRow struct {
	LeftMM    int32
	RightMM   int32
	Timestamp float64 // the earlier of the two source timestamps
}

// Pairer implements the sole fusion policy in §4.10: it holds the most
// recent unpaired POSITION packet from each channel and emits an
// OdometryRow whenever the two are within windowSeconds of each other.
type Pairer struct {
	windowSeconds float64
	haveLeft      bool
	haveRight     bool
	left          Packet
	right         Packet
}

// NewPairer returns a Pairer using windowSeconds as the max timestamp gap
// (the design notes expose this as a configuration knob, not a constant).
func NewPairer(windowSeconds float64) *Pairer {
	return &Pairer{windowSeconds: windowSeconds}
}

// Observe feeds one POSITION packet into the pairer. If the fed packet
// completes a valid pair, it returns the row and true; otherwise it
// records the packet as the latest for its channel and returns false.
func (p *Pairer) Observe(pkt Packet) (OdometryRow, bool) {
	if pkt.Type != TypePosition || !pkt.Valid {
		return OdometryRow{}, false
	}

	switch pkt.Channel {
	case ChannelLeft:
		p.left = pkt
		p.haveLeft = true
	case ChannelRight:
		p.right = pkt
		p.haveRight = true
	default:
		return OdometryRow{}, false
	}

	if !p.haveLeft || !p.haveRight {
		return OdometryRow{}, false
	}
	if math.Abs(p.left.Timestamp-p.right.Timestamp) > p.windowSeconds {
		return OdometryRow{}, false
	}

	row := OdometryRow{
		LeftMM:    p.left.Data,
		RightMM:   p.right.Data,
		Timestamp: math.Min(p.left.Timestamp, p.right.Timestamp),
	}
	p.haveLeft = false
	p.haveRight = false
	return row, true
}
