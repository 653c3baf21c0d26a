// Command guidance runs the guidance subsystem: it owns the ADS-B
// traffic sensor, originates the mesh-wide init/stop messages, and
// drives control's speed/rotation interactively (arrow keys) until
// SIGINT/SIGTERM or a stdin read error; it has no autonomous mode.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dstockhouse/mrfusion/adsb"
	"github.com/dstockhouse/mrfusion/config"
	"github.com/dstockhouse/mrfusion/debuglog"
	"github.com/dstockhouse/mrfusion/logsink"
	"github.com/dstockhouse/mrfusion/mesh"
	"github.com/dstockhouse/mrfusion/metrics"
	"github.com/dstockhouse/mrfusion/serial"
	"github.com/dstockhouse/mrfusion/subsystem"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "guidance:", err)
		os.Exit(1)
	}
}

func run() error {
	log, err := debuglog.New("guidance", debuglog.INFO, debuglog.BackendStdout, nil)
	if err != nil {
		return err
	}

	devicePath := config.DefaultDevicePaths["adsb"]
	if len(os.Args) > 1 {
		devicePath = os.Args[1]
	}

	port, err := serial.Open(devicePath)
	if err != nil {
		return fmt.Errorf("opening adsb device: %w", err)
	}
	defer port.Close()
	if err := port.Configure(config.DefaultBaud["adsb"]); err != nil {
		return fmt.Errorf("configuring adsb device: %w", err)
	}

	rt := subsystem.New("guidance", log)
	// Guidance is the handshake's source, not its recipient: it seeds its
	// own run identity immediately rather than waiting on itself.
	rt.InteractiveFallback()

	peers := []mesh.PeerSpec{
		{Name: "navigation", IP: "127.0.0.1", Port: config.MeshPort[[2]config.Peer{config.PeerGuidance, config.PeerNavigation}], Connect: true},
		{Name: "control", IP: "127.0.0.1", Port: config.MeshPort[[2]config.Peer{config.PeerGuidance, config.PeerControl}], Connect: true},
		{Name: "imageproc", IP: "127.0.0.1", Port: config.MeshPort[[2]config.Peer{config.PeerGuidance, config.PeerImageProc}], Connect: true},
	}
	if err := rt.DialMesh(peers); err != nil {
		return err
	}
	if err := rt.OpenLogDir("log"); err != nil {
		return err
	}

	reg := metrics.New("guidance")
	if err := reg.Serve(config.MetricsAddr); err != nil {
		log.Log(debuglog.INFO, "metrics server unavailable: %v", err)
	}
	rt.SetMetrics(reg)

	initMsg := mesh.EncodeInit(mesh.InitMessage{StartTime: rt.Params.StartTime, Key: rt.Params.Key})
	for _, c := range rt.Conns {
		c.Write(initMsg)
	}

	device := adsb.NewDevice(port, log)
	device.Metrics = reg
	if device.RawLog, err = logsink.Open(rt.Params.LogDir, "ADSB", rt.StartTimeAsTime(), rt.Params.Key, logsink.KindRawBin); err != nil {
		return err
	}
	rt.RegisterSink(device.RawLog)
	if device.CSV, err = logsink.Open(rt.Params.LogDir, "ADSB", rt.StartTimeAsTime(), rt.Params.Key, logsink.KindCSV); err != nil {
		return err
	}
	rt.RegisterSink(device.CSV)
	device.CSV.Write([]byte(adsb.CSVHeader + "\n"))
	rt.Spawn("adsb-reader", device.RunLoop)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		<-sigCh
		close(done)
	}()

	if err := subsystem.RunInteractive(rt.Conns["control"], os.Stdin.Read, done); err != nil {
		log.Log(debuglog.INFO, "guidance: interactive control ended: %v", err)
	}

	stop := mesh.EncodeStop()
	for _, c := range rt.Conns {
		c.Write(stop)
	}

	return rt.Shutdown()
}

