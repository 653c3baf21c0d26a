// Command imageproc runs the image-processing subsystem's process
// skeleton. The depth-image encoder itself is an out-of-scope OpenCV
// pipeline (see spec Non-goals); this binary exists to participate in
// the mesh handshake and shut down cleanly on guidance's stop.
package main

import (
	"fmt"
	"os"

	"github.com/dstockhouse/mrfusion/config"
	"github.com/dstockhouse/mrfusion/debuglog"
	"github.com/dstockhouse/mrfusion/mesh"
	"github.com/dstockhouse/mrfusion/metrics"
	"github.com/dstockhouse/mrfusion/subsystem"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "imageproc:", err)
		os.Exit(1)
	}
}

func run() error {
	log, err := debuglog.New("imageproc", debuglog.INFO, debuglog.BackendStdout, nil)
	if err != nil {
		return err
	}

	rt := subsystem.New("imageproc", log)

	guidancePort := config.MeshPort[[2]config.Peer{config.PeerGuidance, config.PeerImageProc}]
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

	reg := metrics.New("imageproc")
	if err := reg.Serve(config.MetricsAddr); err != nil {
		log.Log(debuglog.INFO, "metrics server unavailable: %v", err)
	}
	rt.SetMetrics(reg)

	subsystem.WaitForStop(conn)

	return rt.Shutdown()
}
