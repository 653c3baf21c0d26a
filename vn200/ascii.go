package vn200

import (
	"strconv"
	"strings"

	"github.com/dstockhouse/mrfusion/checksum"
	"github.com/dstockhouse/mrfusion/debuglog"
	"github.com/dstockhouse/mrfusion/metrics"
	"github.com/dstockhouse/mrfusion/ringbuf"
)

// Dispatch carries the callbacks ParseFrames invokes for each record type
// it successfully decodes.
type Dispatch struct {
	OnGPS func(GPSRecord)
	OnIMU func(IMURecord)
	Now   func() float64 // overridable for tests; defaults to mrutil.NowDouble
	Log   *debuglog.Logger

	// Metrics, if non-nil, gets a FramesDiscarded/ChecksumFailures
	// increment for every frame this scan rejects.
	Metrics *metrics.Registry
}

// ParseFrames repeats the single-frame scan in §4.8 until no forward
// progress is possible, draining as many complete frames as the ring
// buffer currently holds. It never blocks: an incomplete trailing frame
// is left in buf for the next poll.
func ParseFrames(buf *ringbuf.Buffer, d Dispatch) {
	for {
		if !parseOneFrame(buf, d) {
			return
		}
	}
}

// parseOneFrame attempts to consume exactly one frame (successful or
// discarded) from the front of buf. It returns false if no further
// progress is possible this poll (no '$', or an incomplete frame).
func parseOneFrame(buf *ringbuf.Buffer, d Dispatch) bool {
	p := buf.IndexByte('$', 0)
	if p < 0 {
		// No '$' anywhere: nothing buffered can begin a frame (this is
		// also how a consumed frame's trailing CRLF is cleared).
		buf.RemoveFront(buf.Len())
		return false
	}

	// The search for '*' stops three bytes before end-of-buffer to
	// leave room for the checksum trailer.
	limit := buf.Len() - 3
	c := -1
	for i := p + 1; i <= limit; i++ {
		if buf.At(i) == '*' {
			c = i
			break
		}
	}
	if c < 0 {
		// Incomplete frame: if garbage precedes '$', drop it so the
		// buffer doesn't fill with un-framed bytes, but keep '$' onward.
		if p > 0 {
			buf.RemoveFront(p)
		}
		return false
	}

	chkDigits := make([]byte, 2)
	if n := buf.CopyOut(chkDigits, c+1); n < 2 {
		return false
	}
	chkRead, err := strconv.ParseUint(string(chkDigits), 16, 8)
	body := make([]byte, c-p-1)
	buf.CopyOut(body, p+1)

	consumeTo := c + 3 // past '*' and the two hex digits
	discard := func(reason string) bool {
		logf(d, "discarding frame: %s", reason)
		if d.Metrics != nil {
			d.Metrics.FramesDiscarded.WithLabelValues("vn200", reason).Inc()
		}
		buf.RemoveFront(consumeTo)
		return true
	}

	if err != nil {
		return discard("malformed checksum trailer")
	}
	if checksum.XOR8(body) != byte(chkRead) {
		if d.Metrics != nil {
			d.Metrics.ChecksumFailures.WithLabelValues("vn200").Inc()
		}
		return discard("checksum mismatch")
	}

	id, rest, ok := splitID(body)
	if !ok {
		return discard("missing id token")
	}

	now := d.Now
	if now == nil {
		now = defaultNow
	}

	switch id {
	case "VNGPE":
		rec, err := parseGPSFields(rest)
		if err != nil {
			return discard("GPS field parse: " + err.Error())
		}
		rec.Timestamp = now()
		if d.OnGPS != nil {
			d.OnGPS(rec)
		}
	case "VNIMU":
		rec, err := parseIMUFields(rest)
		if err != nil {
			return discard("IMU field parse: " + err.Error())
		}
		rec.Timestamp = now()
		if d.OnIMU != nil {
			d.OnIMU(rec)
		}
	default:
		return discard("unrecognized id " + id)
	}

	buf.RemoveFront(consumeTo)
	return true
}

func logf(d Dispatch, format string, args ...any) {
	if d.Log != nil {
		d.Log.Log(debuglog.INFO, format, args...)
	}
}

// splitID extracts the id token (up to the first comma) and the remaining
// comma-separated field list.
func splitID(body []byte) (id string, rest []string, ok bool) {
	s := string(body)
	idx := strings.IndexByte(s, ',')
	if idx < 0 {
		return "", nil, false
	}
	return s[:idx], strings.Split(s[idx+1:], ","), true
}

func parseIMUFields(f []string) (IMURecord, error) {
	if len(f) < 11 {
		return IMURecord{}, errShortFields(11, len(f))
	}
	v, err := parseFloats(f[:11])
	if err != nil {
		return IMURecord{}, err
	}
	return IMURecord{
		Compass: [3]float64{v[0], v[1], v[2]},
		Accel:   [3]float64{v[3], v[4], v[5]},
		Gyro:    [3]float64{v[6], v[7], v[8]},
		Temp:    v[9],
		Baro:    v[10],
	}, nil
}

func parseGPSFields(f []string) (GPSRecord, error) {
	if len(f) < 15 {
		return GPSRecord{}, errShortFields(15, len(f))
	}
	v, err := parseFloats(f[:15])
	if err != nil {
		return GPSRecord{}, err
	}
	return GPSRecord{
		TimeOfWeek: v[0],
		Week:       uint16(v[1]),
		FixType:    uint8(v[2]),
		NumSats:    uint8(v[3]),
		PosECEF:    [3]float64{v[4], v[5], v[6]},
		VelNED:     [3]float32{float32(v[7]), float32(v[8]), float32(v[9])},
		PosAcc:     [3]float32{float32(v[10]), float32(v[11]), float32(v[12])},
		SpeedAcc:   float32(v[13]),
		TimeAcc:    float32(v[14]),
	}, nil
}

func parseFloats(f []string) ([]float64, error) {
	out := make([]float64, len(f))
	for i, s := range f {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type shortFieldsError struct{ want, got int }

func (e shortFieldsError) Error() string {
	return "expected " + strconv.Itoa(e.want) + " fields, got " + strconv.Itoa(e.got)
}

func errShortFields(want, got int) error {
	return shortFieldsError{want, got}
}

func defaultNow() float64 {
	return nowDouble()
}
