// Command deploy is the deploy harness: it forks one child process per
// subsystem, distributes the shared start-time/key handshake, lets them
// run for a fixed dwell (or until SIGINT), then broadcasts stop and
// waits for every child to exit.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dstockhouse/mrfusion/config"
	"github.com/dstockhouse/mrfusion/debuglog"
	"github.com/dstockhouse/mrfusion/deployharness"
	"github.com/dstockhouse/mrfusion/metrics"
)

func main() {
	log, err := debuglog.New("deploy", debuglog.INFO, debuglog.BackendStdout, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "deploy:", err)
		os.Exit(1)
	}

	children := []*deployharness.Child{
		{Name: "navigation", Path: "./navigation"},
		{Name: "control", Path: "./control"},
		{Name: "imageproc", Path: "./imageproc"},
	}

	h := deployharness.New(children, log)

	reg := metrics.New("deploy")
	if err := reg.Serve(config.MetricsAddr); err != nil {
		log.Log(debuglog.INFO, "metrics server unavailable: %v", err)
	}
	h.Metrics = reg

	if err := h.Spawn(); err != nil {
		fmt.Fprintln(os.Stderr, "deploy:", err)
		os.Exit(-1)
	}

	ports := map[string]int{
		"navigation": config.MeshPort[[2]config.Peer{config.PeerGuidance, config.PeerNavigation}],
		"control":    config.MeshPort[[2]config.Peer{config.PeerGuidance, config.PeerControl}],
		"imageproc":  config.MeshPort[[2]config.Peer{config.PeerGuidance, config.PeerImageProc}],
	}
	if err := h.AcceptAll(ports, "127.0.0.1"); err != nil {
		fmt.Fprintln(os.Stderr, "deploy:", err)
		os.Exit(-1)
	}

	if err := h.BroadcastInit(); err != nil {
		fmt.Fprintln(os.Stderr, "deploy:", err)
		os.Exit(-1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	interrupt := make(chan struct{})
	go func() {
		<-sigCh
		close(interrupt)
	}()

	h.Dwell(config.Defaults.DeployRunDuration, interrupt)

	if err := h.BroadcastStop(); err != nil {
		log.Log(debuglog.INFO, "deploy: broadcasting stop: %v", err)
	}
	h.Close()

	os.Exit(h.Wait())
}
