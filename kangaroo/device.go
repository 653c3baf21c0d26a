package kangaroo

import (
	"github.com/dstockhouse/mrfusion/debuglog"
	"github.com/dstockhouse/mrfusion/internal/mailbox"
	"github.com/dstockhouse/mrfusion/logsink"
	"github.com/dstockhouse/mrfusion/metrics"
	"github.com/dstockhouse/mrfusion/mrutil"
	"github.com/dstockhouse/mrfusion/ringbuf"
	"github.com/dstockhouse/mrfusion/worker"
)

// ReaderPort is the minimal serial interface the encoder reader loop
// needs; Port (commands.go) and ReaderPort are typically satisfied by the
// same underlying serial.Port.
type ReaderPort interface {
	Read(p []byte) (int, error)
}

// Device is the runtime half of the Kangaroo driver: it owns the input
// ring buffer, parses reply lines to Packets, feeds POSITION packets
// through the odometry Pairer, and publishes the latest packet per
// channel for the command loop to read back (e.g. to surface errors).
type Device struct {
	port ReaderPort
	buf  *ringbuf.Buffer
	pair *Pairer

	Latest map[int]*mailbox.Box[Packet]

	RawLog      *logsink.File
	OdometryCSV *logsink.File
	Log         *debuglog.Logger

	Metrics *metrics.Registry
}

// NewDevice wraps port with a fresh ring buffer, a Pairer using the given
// pairing window, and per-channel packet mailboxes.
func NewDevice(port ReaderPort, pairWindowSeconds float64, log *debuglog.Logger) *Device {
	return &Device{
		port: port,
		buf:  ringbuf.New(),
		pair: NewPairer(pairWindowSeconds),
		Latest: map[int]*mailbox.Box[Packet]{
			ChannelLeft:  mailbox.New[Packet](),
			ChannelRight: mailbox.New[Packet](),
		},
		Log: log,
	}
}

// RunLoop is the encoder reader loop: poll the UART into the ring buffer,
// parse complete lines, pair POSITION packets into odometry rows, log
// ERROR packets, and publish the latest packet per channel.
func (d *Device) RunLoop(w *worker.Worker) {
	readBuf := make([]byte, 256)
	for w.Continue() {
		n, err := d.port.Read(readBuf)
		if err != nil {
			if d.Log != nil {
				d.Log.Log(debuglog.DEBUG, "kangaroo read error: %v", err)
			}
			continue
		}
		if n == 0 {
			continue
		}
		d.buf.AppendMany(readBuf[:n])
		if d.RawLog != nil {
			d.RawLog.Write(readBuf[:n])
		}
		if d.Metrics != nil {
			d.Metrics.BytesRead.WithLabelValues("kangaroo").Add(float64(n))
		}

		ParseLines(d.buf, mrutil.NowDouble, d.onPacket)
	}
}

func (d *Device) onPacket(pkt Packet) {
	if !pkt.Valid {
		if d.Metrics != nil {
			d.Metrics.FramesDiscarded.WithLabelValues("kangaroo", "invalid").Inc()
		}
		return
	}
	if d.Metrics != nil {
		d.Metrics.FramesParsed.WithLabelValues("kangaroo").Inc()
	}
	if box, ok := d.Latest[pkt.Channel]; ok {
		box.Publish(pkt)
	}

	switch pkt.Type {
	case TypeError:
		if d.Log != nil {
			d.Log.Log(debuglog.INFO, "kangaroo channel %d error: %s", pkt.Channel, ErrorCodeFromValue(pkt.Data))
		}
	case TypePosition:
		if row, ok := d.pair.Observe(pkt); ok && d.OdometryCSV != nil {
			d.OdometryCSV.Write([]byte(formatOdometryCSV(row) + "\n"))
		}
	}
}
