// Package subsystem implements the C12 process skeleton every subsystem
// executable (navigation, control, guidance, image-proc) runs: mesh
// wiring, the initial-conditions handshake, worker lifecycle, and
// cooperative shutdown.
package subsystem

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/dstockhouse/mrfusion/config"
	"github.com/dstockhouse/mrfusion/debuglog"
	"github.com/dstockhouse/mrfusion/kangaroo"
	"github.com/dstockhouse/mrfusion/logsink"
	"github.com/dstockhouse/mrfusion/mesh"
	"github.com/dstockhouse/mrfusion/metrics"
	"github.com/dstockhouse/mrfusion/mrutil"
	"github.com/dstockhouse/mrfusion/worker"
)

// Params is the subsystem parameter record: constructed once in main,
// read by every worker thread, never reassigned.
type Params struct {
	StartTime float64
	Key       uint32
	LogDir    string
}

// Runtime holds everything one subsystem process's main thread owns:
// its mesh connections, its spawned reader-thread workers, and (for the
// motion-controller subsystem) the Kangaroo device those workers feed.
type Runtime struct {
	Name   string
	Params Params

	Conns   map[string]*mesh.Conn
	Workers []*worker.Worker

	Kangaroo *kangaroo.Device

	// powerdownPort is the same Kangaroo serial port CommandLoop
	// writes speed commands to; Shutdown writes the powerdown sequence
	// to it. Tests supply a fake via SetKangarooPort.
	powerdownPort kangaroo.Port

	// sinks are every logsink.File this subsystem opened; Shutdown
	// flushes and gzips each one so a clean stop never drops the tail of
	// an append-only log.
	sinks []*logsink.File

	Metrics *metrics.Registry

	Log *debuglog.Logger
}

// SetKangarooPort records the port Shutdown should send the powerdown
// sequence to once this subsystem's Kangaroo device is wired up.
func (rt *Runtime) SetKangarooPort(p kangaroo.Port) {
	rt.powerdownPort = p
}

// SetMetrics records the Prometheus registry this subsystem reports
// through, so DialMesh can count connects/accepts against it.
func (rt *Runtime) SetMetrics(m *metrics.Registry) {
	rt.Metrics = m
}

// RegisterSink records a logsink.File this subsystem opened so Shutdown
// flushes and compresses it before the process exits.
func (rt *Runtime) RegisterSink(s *logsink.File) {
	if s != nil {
		rt.sinks = append(rt.sinks, s)
	}
}

// New constructs an empty Runtime for the named subsystem.
func New(name string, log *debuglog.Logger) *Runtime {
	return &Runtime{Name: name, Log: log}
}

// DialMesh resolves every peer connection this subsystem needs via the
// fixpoint connect/accept loop, storing the result on the Runtime.
func (rt *Runtime) DialMesh(peers []mesh.PeerSpec) error {
	conns, err := mesh.DialMesh(peers, config.Defaults.ConnectRetryPeriod, config.Defaults.ConnectRetryBound)
	if err != nil {
		return fmt.Errorf("subsystem %s: mesh dial: %w", rt.Name, err)
	}
	rt.Conns = conns
	if rt.Metrics != nil {
		for _, p := range peers {
			if _, ok := conns[p.Name]; !ok {
				continue
			}
			if p.Connect {
				rt.Metrics.MeshConnects.WithLabelValues(p.Name).Inc()
			} else {
				rt.Metrics.MeshAccepts.WithLabelValues(p.Name).Inc()
			}
		}
	}
	return nil
}

// Spawn starts fn as a reader-thread worker with requested priority 0,
// i.e. FIFO priority worker.MaxFIFOPriority (the elevated priority every
// device reader runs at), and tracks it for the eventual cooperative
// shutdown join.
func (rt *Runtime) Spawn(name string, fn func(w *worker.Worker)) *worker.Worker {
	w := worker.Spawn(name, 0, fn)
	rt.Workers = append(rt.Workers, w)
	return w
}

// StartTimeAsTime converts Params.StartTime (seconds since the epoch, as
// stored in the wire init message) to a time.Time for filename building.
func (rt *Runtime) StartTimeAsTime() time.Time {
	sec := int64(rt.Params.StartTime)
	nsec := int64((rt.Params.StartTime - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// OpenLogDir creates this run's per-subsystem log directory under dir,
// named per the persisted-state layout in the spec's external-interfaces
// section, and records it on Params.
func (rt *Runtime) OpenLogDir(baseDir string) error {
	run := mrutil.RunDirName(rt.StartTimeAsTime(), rt.Params.Key)
	path := baseDir + "/" + run + "/" + rt.Name
	if err := mrutil.MkdirAll(path); err != nil {
		return err
	}
	rt.Params.LogDir = path
	return nil
}

// InteractiveFallback seeds Params from the local clock and a randomly
// generated key, for the case where no guidance handshake ever arrives
// (standalone/interactive operation).
func (rt *Runtime) InteractiveFallback() {
	rt.Params.StartTime = mrutil.NowDouble()
	rt.Params.Key = rand.Uint32()
	if rt.Log != nil {
		rt.Log.Log(debuglog.INFO, "%s: no init handshake received, falling back to local clock, key=%08x", rt.Name, rt.Params.Key)
	}
}

// Shutdown clears every worker's continue-flag, joins them with a
// bounded retry, powers down the motor controller if this subsystem
// owns one, flushes and compresses every log sink this subsystem opened,
// and closes every mesh connection. Workers are joined before the sinks
// are touched so no reader goroutine is still writing to one when it
// closes.
func (rt *Runtime) Shutdown() error {
	for _, w := range rt.Workers {
		w.Stop()
	}
	var firstErr error
	for _, w := range rt.Workers {
		if err := w.Join(config.Defaults.ShutdownJoinRetries, config.Defaults.ShutdownJoinPeriod); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if rt.powerdownPort != nil {
		kangaroo.SendPowerdown(rt.powerdownPort)
	}
	for _, s := range rt.sinks {
		if err := s.CloseCompressed(); err != nil {
			if rt.Log != nil {
				rt.Log.Log(debuglog.INFO, "%s: closing log sink %s: %v", rt.Name, s.Path, err)
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	for _, c := range rt.Conns {
		c.Close()
	}
	return firstErr
}
