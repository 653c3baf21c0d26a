package adsb

import (
	"github.com/dstockhouse/mrfusion/debuglog"
	"github.com/dstockhouse/mrfusion/internal/mailbox"
	"github.com/dstockhouse/mrfusion/logsink"
	"github.com/dstockhouse/mrfusion/metrics"
	"github.com/dstockhouse/mrfusion/ringbuf"
	"github.com/dstockhouse/mrfusion/worker"
)

// Port is the minimal serial interface the ADS-B poller needs.
type Port interface {
	Read(p []byte) (int, error)
}

// Device polls a pingUSB serial line, scans for valid Message246 frames,
// and publishes the most recent one. Matching the source's dual-sink
// discipline, it writes both the raw byte stream and the parsed record
// to separate log sinks.
type Device struct {
	port Port
	buf  *ringbuf.Buffer
	tmp  []byte

	Latest *mailbox.Box[Message246]
	RawLog *logsink.File
	CSV    *logsink.File
	Log    *debuglog.Logger

	Metrics *metrics.Registry
}

// NewDevice wraps port with a fresh ring buffer and mailbox.
func NewDevice(port Port, log *debuglog.Logger) *Device {
	return &Device{
		port:   port,
		buf:    ringbuf.New(),
		Latest: mailbox.New[Message246](),
		Log:    log,
	}
}

// RunLoop polls port into the ring buffer and scans to completion each
// iteration, consuming the buffer either one full frame or one byte at a
// time per Scan's contract.
func (d *Device) RunLoop(w *worker.Worker) {
	readBuf := make([]byte, 512)
	for w.Continue() {
		n, err := d.port.Read(readBuf)
		if err != nil {
			if d.Log != nil {
				d.Log.Log(debuglog.DEBUG, "adsb read error: %v", err)
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
			d.Metrics.BytesRead.WithLabelValues("adsb").Add(float64(n))
		}
		d.drain()
	}
}

func (d *Device) drain() {
	for {
		n := d.buf.Len()
		if n < FrameLength {
			return
		}
		if cap(d.tmp) < n {
			d.tmp = make([]byte, n)
		}
		view := d.tmp[:n]
		d.buf.CopyOut(view, 0)

		r := Scan(view)
		if r.Consumed == 0 {
			return // incomplete frame at tail, wait for more input
		}
		d.buf.RemoveFront(r.Consumed)
		if r.Ok {
			d.Latest.Publish(r.Message)
			if d.CSV != nil {
				d.CSV.Write([]byte(FormatCSV(r.Message) + "\n"))
			}
			if d.Metrics != nil {
				d.Metrics.FramesParsed.WithLabelValues("adsb").Inc()
			}
		} else {
			if d.Log != nil {
				d.Log.Log(debuglog.INFO, "adsb: CRC mismatch, advancing one byte")
			}
			if d.Metrics != nil {
				d.Metrics.FramesDiscarded.WithLabelValues("adsb", "crc_mismatch").Inc()
				d.Metrics.ChecksumFailures.WithLabelValues("adsb").Inc()
			}
		}
	}
}
