package vn200

import (
	"github.com/dstockhouse/mrfusion/debuglog"
	"github.com/dstockhouse/mrfusion/internal/mailbox"
	"github.com/dstockhouse/mrfusion/logsink"
	"github.com/dstockhouse/mrfusion/metrics"
	"github.com/dstockhouse/mrfusion/ringbuf"
	"github.com/dstockhouse/mrfusion/worker"
)

// Device is the runtime half of the VN200 driver: it owns the input ring
// buffer, drives ParseFrames to completion on every poll, and publishes
// the latest GPS and IMU records through single-writer/single-reader
// mailboxes for the main command loop to consume.
type Device struct {
	port Port
	buf  *ringbuf.Buffer

	GPS *mailbox.Box[GPSRecord]
	IMU *mailbox.Box[IMURecord]

	RawLog *logsink.File
	GPSCSV *logsink.File
	IMUCSV *logsink.File

	Log     *debuglog.Logger
	Metrics *metrics.Registry
}

// NewDevice wraps an already-initialized port with fresh mailboxes and
// optional log sinks (any of RawLog/GPSCSV/IMUCSV may be left nil to
// disable that sink).
func NewDevice(port Port, log *debuglog.Logger) *Device {
	return &Device{
		port: port,
		buf:  ringbuf.New(),
		GPS:  mailbox.New[GPSRecord](),
		IMU:  mailbox.New[IMURecord](),
		Log:  log,
	}
}

// RunLoop is the C11 runtime loop body: poll the UART into the ring
// buffer, parse to completion, publish, log. It returns when w.Continue()
// becomes false. Intended to be passed to worker.Spawn.
func (d *Device) RunLoop(w *worker.Worker) {
	readBuf := make([]byte, 512)
	for w.Continue() {
		n, err := d.port.Read(readBuf)
		if err != nil {
			if d.Log != nil {
				d.Log.Log(debuglog.DEBUG, "vn200 read error: %v", err)
			}
			continue
		}
		if n == 0 {
			continue
		}
		stored := d.buf.AppendMany(readBuf[:n])
		if stored < n && d.Log != nil {
			d.Log.Log(debuglog.INFO, "vn200 ring buffer full, dropped %d bytes", n-stored)
		}
		if d.RawLog != nil {
			d.RawLog.Write(readBuf[:n])
		}
		if d.Metrics != nil {
			d.Metrics.BytesRead.WithLabelValues("vn200").Add(float64(n))
		}

		ParseFrames(d.buf, Dispatch{
			OnGPS:   d.onGPS,
			OnIMU:   d.onIMU,
			Log:     d.Log,
			Metrics: d.Metrics,
		})
	}
}

func (d *Device) onGPS(r GPSRecord) {
	d.GPS.Publish(r)
	if d.GPSCSV != nil {
		d.GPSCSV.Write([]byte(FormatGPSCSV(r) + "\n"))
	}
	if d.Metrics != nil {
		d.Metrics.FramesParsed.WithLabelValues("vn200_gps").Inc()
	}
}

func (d *Device) onIMU(r IMURecord) {
	d.IMU.Publish(r)
	if d.IMUCSV != nil {
		d.IMUCSV.Write([]byte(FormatIMUCSV(r) + "\n"))
	}
	if d.Metrics != nil {
		d.Metrics.FramesParsed.WithLabelValues("vn200_imu").Inc()
	}
}
