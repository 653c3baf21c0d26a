// Command navigation runs the navigation subsystem: it owns the VN200
// GPS/IMU sensor, logs its parsed streams, and idles until guidance
// sends stop.
package main

import (
	"fmt"
	"os"

	"github.com/dstockhouse/mrfusion/config"
	"github.com/dstockhouse/mrfusion/debuglog"
	"github.com/dstockhouse/mrfusion/logsink"
	"github.com/dstockhouse/mrfusion/mesh"
	"github.com/dstockhouse/mrfusion/metrics"
	"github.com/dstockhouse/mrfusion/serial"
	"github.com/dstockhouse/mrfusion/subsystem"
	"github.com/dstockhouse/mrfusion/vn200"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "navigation:", err)
		os.Exit(1)
	}
}

func run() error {
	log, err := debuglog.New("navigation", debuglog.INFO, debuglog.BackendStdout, nil)
	if err != nil {
		return err
	}

	devicePath := config.DefaultDevicePaths["vn200"]
	if len(os.Args) > 1 {
		devicePath = os.Args[1]
	}

	port, err := serial.Open(devicePath)
	if err != nil {
		return fmt.Errorf("opening vn200 device: %w", err)
	}
	defer port.Close()
	if err := port.Configure(config.DefaultBaud["vn200"]); err != nil {
		return fmt.Errorf("configuring vn200 device: %w", err)
	}

	if err := vn200.Init(port, vn200.InitOptions{
		SampleFreqHz: 40,
		Mode:         vn200.ModeBoth,
	}, func(b []byte) {
		log.Log(debuglog.VDEBUG, "vn200 init drain: %q", b)
	}); err != nil {
		return fmt.Errorf("initializing vn200: %w", err)
	}

	rt := subsystem.New("navigation", log)

	guidancePort := config.MeshPort[[2]config.Peer{config.PeerGuidance, config.PeerNavigation}]
	if err := rt.DialMesh([]mesh.PeerSpec{{Name: "guidance", IP: "127.0.0.1", Port: guidancePort, Connect: false}}); err != nil {
		return err
	}
	if err := rt.Handshake(rt.Conns["guidance"], config.Defaults.HandshakeTimeout); err != nil {
		return err
	}
	if err := rt.OpenLogDir("log"); err != nil {
		return err
	}

	reg := metrics.New("navigation")
	if err := reg.Serve(config.MetricsAddr); err != nil {
		log.Log(debuglog.INFO, "metrics server unavailable: %v", err)
	}
	rt.SetMetrics(reg)

	device := vn200.NewDevice(port, log)
	device.Metrics = reg
	if device.RawLog, err = logsink.Open(rt.Params.LogDir, "VN200", rt.StartTimeAsTime(), rt.Params.Key, logsink.KindRawLog); err != nil {
		return err
	}
	rt.RegisterSink(device.RawLog)
	if device.GPSCSV, err = logsink.Open(rt.Params.LogDir, "VN200_GPS", rt.StartTimeAsTime(), rt.Params.Key, logsink.KindCSV); err != nil {
		return err
	}
	rt.RegisterSink(device.GPSCSV)
	if device.IMUCSV, err = logsink.Open(rt.Params.LogDir, "VN200_IMU", rt.StartTimeAsTime(), rt.Params.Key, logsink.KindCSV); err != nil {
		return err
	}
	rt.RegisterSink(device.IMUCSV)
	device.GPSCSV.Write([]byte(vn200.CSVHeaderGPS + "\n"))
	device.IMUCSV.Write([]byte(vn200.CSVHeaderIMU + "\n"))

	rt.Spawn("vn200-reader", device.RunLoop)

	subsystem.WaitForStop(rt.Conns["guidance"])

	return rt.Shutdown()
}
