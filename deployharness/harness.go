// Package deployharness implements C13: the parent process that forks one
// child per subsystem, distributes the initial-conditions handshake, lets
// them run for a fixed dwell or until signaled, then broadcasts stop and
// collects exit codes.
package deployharness

import (
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"time"

	"github.com/dstockhouse/mrfusion/config"
	"github.com/dstockhouse/mrfusion/debuglog"
	"github.com/dstockhouse/mrfusion/mesh"
	"github.com/dstockhouse/mrfusion/metrics"
	"github.com/dstockhouse/mrfusion/mrutil"
)

// Child is one forked-and-exec'd subsystem process plus the guidance-side
// connection the harness accepted from it.
type Child struct {
	Name string
	Path string
	Args []string

	cmd  *exec.Cmd
	conn *mesh.Conn
}

// Harness owns the full set of children for one deployment run.
type Harness struct {
	Children []*Child
	StartTime float64
	Key       uint32

	Metrics *metrics.Registry

	Log *debuglog.Logger
}

// New builds a Harness for the given children, seeding the run's shared
// start time from the local clock and its key from math/rand (not a
// cryptographic source; the key only needs to be unique per run, not
// unguessable).
func New(children []*Child, log *debuglog.Logger) *Harness {
	return &Harness{
		Children:  children,
		StartTime: mrutil.NowDouble(),
		Key:       rand.Uint32(),
		Log:       log,
	}
}

// Spawn fork/execs every child.
func (h *Harness) Spawn() error {
	for _, c := range h.Children {
		cmd := exec.Command(c.Path, c.Args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("deployharness: starting %s: %w", c.Name, err)
		}
		c.cmd = cmd
		if h.Log != nil {
			h.Log.Log(debuglog.INFO, "deployharness: started %s (pid %d)", c.Name, cmd.Process.Pid)
		}
	}
	return nil
}

// AcceptAll opens a TCP server per child's guidance port and accepts each
// child's connection within the bounded accept budget.
func (h *Harness) AcceptAll(ports map[string]int, ip string) error {
	listeners := make(map[string]*mesh.Listener, len(h.Children))
	for _, c := range h.Children {
		port, ok := ports[c.Name]
		if !ok {
			return fmt.Errorf("deployharness: no port configured for %s", c.Name)
		}
		l, err := mesh.ServerNew(ip, port)
		if err != nil {
			return fmt.Errorf("deployharness: listening for %s: %w", c.Name, err)
		}
		listeners[c.Name] = l
	}

	remaining := len(h.Children)
	for iter := 0; iter < config.Defaults.DeployAcceptBound && remaining > 0; iter++ {
		for _, c := range h.Children {
			if c.conn != nil {
				continue
			}
			l := listeners[c.Name]
			conn, ok, err := l.ServerTryAccept()
			if err != nil {
				return fmt.Errorf("deployharness: accepting %s: %w", c.Name, err)
			}
			if ok {
				c.conn = conn
				remaining--
			}
		}
		if remaining == 0 {
			break
		}
		time.Sleep(config.Defaults.DeployAcceptPeriod)
	}
	if remaining > 0 {
		return fmt.Errorf("deployharness: %d/%d children never connected within budget", remaining, len(h.Children))
	}
	return nil
}

// BroadcastInit sends the 16-byte init handshake to every connected child.
func (h *Harness) BroadcastInit() error {
	msg := mesh.EncodeInit(mesh.InitMessage{StartTime: h.StartTime, Key: h.Key})
	for _, c := range h.Children {
		if _, err := c.conn.Write(msg); err != nil {
			return fmt.Errorf("deployharness: sending init to %s: %w", c.Name, err)
		}
	}
	return nil
}

// BroadcastStop sends the 4-byte stop tag to every connected child.
func (h *Harness) BroadcastStop() error {
	msg := mesh.EncodeStop()
	for _, c := range h.Children {
		if _, err := c.conn.Write(msg); err != nil {
			return fmt.Errorf("deployharness: sending stop to %s: %w", c.Name, err)
		}
	}
	return nil
}

// Dwell waits for dur or until interrupted, sampling each child's
// CPU/RSS once per tick via sampleChildren.
func (h *Harness) Dwell(dur time.Duration, interrupt <-chan struct{}) {
	deadline := time.After(dur)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-deadline:
			return
		case <-interrupt:
			return
		case <-ticker.C:
			h.sampleChildren()
			if h.Metrics != nil {
				h.Metrics.LoopIterations.Inc()
			}
		}
	}
}

// Wait blocks for every child process to exit and returns the last
// non-zero exit code observed, or 0 if every child exited cleanly.
func (h *Harness) Wait() int {
	status := 0
	for _, c := range h.Children {
		if c.cmd == nil {
			continue
		}
		err := c.cmd.Wait()
		if err == nil {
			continue
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			status = exitErr.ExitCode()
		} else {
			status = -1
		}
	}
	return status
}

// Close closes every accepted connection.
func (h *Harness) Close() {
	for _, c := range h.Children {
		if c.conn != nil {
			c.conn.Close()
		}
	}
}
