// Command control runs the control subsystem: it owns the Kangaroo
// motor controller, receives guidance's speed/rotation commands, and
// logs paired odometry.
package main

import (
	"fmt"
	"os"

	"github.com/dstockhouse/mrfusion/config"
	"github.com/dstockhouse/mrfusion/debuglog"
	"github.com/dstockhouse/mrfusion/encoderbuf"
	"github.com/dstockhouse/mrfusion/kangaroo"
	"github.com/dstockhouse/mrfusion/logsink"
	"github.com/dstockhouse/mrfusion/mesh"
	"github.com/dstockhouse/mrfusion/metrics"
	"github.com/dstockhouse/mrfusion/serial"
	"github.com/dstockhouse/mrfusion/subsystem"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "control:", err)
		os.Exit(1)
	}
}

func run() error {
	log, err := debuglog.New("control", debuglog.INFO, debuglog.BackendStdout, nil)
	if err != nil {
		return err
	}

	devicePath := config.DefaultDevicePaths["kangaroo"]
	if len(os.Args) > 1 {
		devicePath = os.Args[1]
	}

	port, err := serial.Open(devicePath)
	if err != nil {
		return fmt.Errorf("opening kangaroo device: %w", err)
	}
	defer port.Close()
	if err := port.Configure(config.DefaultBaud["kangaroo"]); err != nil {
		return fmt.Errorf("configuring kangaroo device: %w", err)
	}
	if err := kangaroo.SendInit(port); err != nil {
		return fmt.Errorf("initializing kangaroo: %w", err)
	}

	rt := subsystem.New("control", log)
	rt.SetKangarooPort(port)

	reg := metrics.New("control")
	if err := reg.Serve(config.MetricsAddr); err != nil {
		log.Log(debuglog.INFO, "metrics server unavailable: %v", err)
	}
	rt.SetMetrics(reg)

	guidancePort := config.MeshPort[[2]config.Peer{config.PeerGuidance, config.PeerControl}]
	if err := rt.DialMesh([]mesh.PeerSpec{{Name: "guidance", IP: "127.0.0.1", Port: guidancePort, Connect: false}}); err != nil {
		return err
	}
	conn := rt.Conns["guidance"]
	if err := rt.Handshake(conn, config.Defaults.HandshakeTimeout); err != nil {
		return err
	}
	if err := rt.OpenLogDir("log"); err != nil {
		return err
	}

	device := kangaroo.NewDevice(port, config.Defaults.OdometryPairWindow.Seconds(), log)
	device.Metrics = reg
	rt.Kangaroo = device
	if device.RawLog, err = logsink.Open(rt.Params.LogDir, "KANGAROO", rt.StartTimeAsTime(), rt.Params.Key, logsink.KindRawLog); err != nil {
		return err
	}
	rt.RegisterSink(device.RawLog)
	if device.OdometryCSV, err = logsink.Open(rt.Params.LogDir, "ODOMETRY_K", rt.StartTimeAsTime(), rt.Params.Key, logsink.KindCSV); err != nil {
		return err
	}
	rt.RegisterSink(device.OdometryCSV)
	device.OdometryCSV.Write([]byte(kangaroo.CSVHeader + "\n"))

	rt.Spawn("kangaroo-reader", device.RunLoop)

	// The encoder buffer is supplemental hardware: a missing chip logs and
	// control still runs on the Kangaroo's own position readback alone.
	if enc, err := encoderbuf.Open(config.DefaultDevicePaths["encoderbuf"], config.Defaults.EncoderBufSPISpeedHz); err != nil {
		log.Log(debuglog.INFO, "encoder buffer unavailable: %v", err)
	} else {
		reader := encoderbuf.NewReader(enc, config.Defaults.EncoderBufSamplePeriod, log)
		if reader.CSV, err = logsink.Open(rt.Params.LogDir, "ODOMETRY_ENC", rt.StartTimeAsTime(), rt.Params.Key, logsink.KindCSV); err != nil {
			return err
		}
		rt.RegisterSink(reader.CSV)
		reader.CSV.Write([]byte(encoderbuf.CSVHeader + "\n"))
		rt.Spawn("encoderbuf-reader", reader.RunLoop)
	}

	subsystem.CommandLoop(rt, conn, port)

	return rt.Shutdown()
}
