// Package encoderbuf drives an LS7366R-style quadrature encoder buffer
// chip over SPI: a supplemental, higher-resolution odometry source
// alongside the Kangaroo controllers' own position readback.
package encoderbuf

import (
	"fmt"
	"time"

	"github.com/dstockhouse/mrfusion/debuglog"
	"github.com/dstockhouse/mrfusion/logsink"
	"github.com/dstockhouse/mrfusion/mrutil"
	"github.com/dstockhouse/mrfusion/spi"
	"github.com/dstockhouse/mrfusion/worker"
)

// Register addresses, matching the LS7366R instruction byte's low
// nibble-and-a-half: OP (bits 7:6) | register (bits 5:3).
const (
	regMDR0 = 0x08
	regMDR1 = 0x10
	regDTR  = 0x18
	regCNTR = 0x20
	regOTR  = 0x28
	regSTR  = 0x30
)

const (
	opClear = 0x00
	opRead  = 0x40
	opWrite = 0x80
	opLoad  = 0xC0
)

// MDR0 mode bits this driver always sets: x4 quadrature, free-running
// count, index disabled, asynchronous index.
const defaultMDR0 = 0x03

// MDR1 mode bits: 4-byte counter, no flags enabled, counting enabled.
const defaultMDR1 = 0x00

// transceiver is the slice of *spi.Device this driver actually needs,
// broken out so tests can substitute a fake chip instead of a real SPI
// fd.
type transceiver interface {
	Tx(data []byte) ([]byte, error)
	Close() error
}

// Device is one LS7366R channel reached over an SPI chip-select line.
type Device struct {
	dev transceiver
}

// Open configures an SPI device at path/speed for encoder-buffer use and
// resets its counter registers.
func Open(path string, speedHz uint32) (*Device, error) {
	dev, err := spi.Open(path, &spi.Config{Mode: 0, Bits: 8, Speed: speedHz})
	if err != nil {
		return nil, err
	}
	d := &Device{dev: dev}
	if err := d.reset(); err != nil {
		dev.Close()
		return nil, err
	}
	return d, nil
}

// newWithTransceiver builds a Device around an already-configured
// transceiver, skipping spi.Open — the seam tests use to drive
// reset()/ReadCounter() against a fake chip.
func newWithTransceiver(t transceiver) (*Device, error) {
	d := &Device{dev: t}
	if err := d.reset(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) reset() error {
	for _, reg := range []byte{regMDR0, regMDR1, regCNTR, regSTR} {
		if _, err := d.dev.Tx([]byte{opClear | reg}); err != nil {
			return err
		}
	}
	if _, err := d.dev.Tx([]byte{opWrite | regMDR0, defaultMDR0}); err != nil {
		return err
	}
	if _, err := d.dev.Tx([]byte{opWrite | regMDR1, defaultMDR1}); err != nil {
		return err
	}
	return nil
}

// ReadCounter latches CNTR into OTR and reads back the 32-bit signed
// count accumulated since the last Clear.
func (d *Device) ReadCounter() (int32, error) {
	if _, err := d.dev.Tx([]byte{opLoad | regOTR}); err != nil {
		return 0, err
	}
	read, err := d.dev.Tx([]byte{opRead | regCNTR, 0, 0, 0, 0})
	if err != nil {
		return 0, err
	}
	if len(read) < 5 {
		return 0, nil
	}
	v := uint32(read[1])<<24 | uint32(read[2])<<16 | uint32(read[3])<<8 | uint32(read[4])
	return int32(v), nil
}

// Clear zeroes the running count.
func (d *Device) Clear() error {
	_, err := d.dev.Tx([]byte{opClear | regCNTR})
	return err
}

func (d *Device) Close() error {
	return d.dev.Close()
}

// CSVHeader names the columns Reader.RunLoop writes.
const CSVHeader = "timestamp,count"

// Reader polls a Device on a fixed period and logs each sample as a
// supplemental odometry CSV row (it keeps no raw sink), alongside the
// Kangaroo controllers' own position readback.
type Reader struct {
	dev    *Device
	period time.Duration

	CSV *logsink.File
	Log *debuglog.Logger
}

// NewReader wraps dev for a worker.Spawn reader loop that samples every
// period.
func NewReader(dev *Device, period time.Duration, log *debuglog.Logger) *Reader {
	return &Reader{dev: dev, period: period, Log: log}
}

// RunLoop is the C12 reader-thread body: sample the counter, log it, sleep
// period, repeat until w.Continue() is false.
func (r *Reader) RunLoop(w *worker.Worker) {
	for w.Continue() {
		count, err := r.dev.ReadCounter()
		if err != nil {
			if r.Log != nil {
				r.Log.Log(debuglog.DEBUG, "encoderbuf read error: %v", err)
			}
		} else if r.CSV != nil {
			r.CSV.Write([]byte(fmt.Sprintf("%.9f,%d\n", mrutil.NowDouble(), count)))
		}
		time.Sleep(r.period)
	}
}
