// Package config holds the module's compile-time-ish defaults. There is no
// flag or environment library here: the only command-line surface the
// system has is a single optional positional device-path override, which
// each cmd/* entrypoint reads straight off os.Args, matching the
// teacher's total absence of a CLI dependency.
package config

import "time"

// Defaults collects every behavioral knob the design notes call out as
// "should be a parameter, not a hard-coded constant": the low-pass filter
// size and the odometry pairing window.
var Defaults = struct {
	// FilterSize is the single-pole low-pass filter's smoothing factor
	// (alpha = 1/FilterSize) applied to commanded speed and rotation.
	FilterSize int

	// OdometryPairWindow is the maximum timestamp gap between a left and
	// right Kangaroo POSITION packet for them to be logged as one paired
	// odometry row.
	OdometryPairWindow time.Duration

	// PositionRequestPeriod is how many main-loop iterations elapse
	// between successive Kangaroo getp requests.
	PositionRequestPeriod int

	// MainLoopPeriod is the main command loop's sleep interval.
	MainLoopPeriod time.Duration

	// ConnectRetryPeriod is the sleep between TCP connect/accept
	// fixpoint iterations.
	ConnectRetryPeriod time.Duration

	// ConnectRetryBound is the maximum number of fixpoint iterations
	// before a subsystem aborts startup.
	ConnectRetryBound int

	// HandshakeTimeout bounds how long a subsystem waits for the deploy
	// harness's init message before falling back to its own clock.
	HandshakeTimeout time.Duration

	// ShutdownJoinRetries/Period bound the cooperative-shutdown join
	// loop.
	ShutdownJoinRetries int
	ShutdownJoinPeriod  time.Duration

	// DeployAcceptBound/Period bound the deploy harness's accept
	// fixpoint loop.
	DeployAcceptBound  int
	DeployAcceptPeriod time.Duration

	// DeployRunDuration is how long the harness lets subsystems run
	// before broadcasting stop, absent an external signal.
	DeployRunDuration time.Duration

	// EncoderBufSamplePeriod is how often the supplemental LS7366R
	// encoder-buffer odometry source is polled, if present.
	EncoderBufSamplePeriod time.Duration

	// EncoderBufSPISpeedHz is the SPI clock rate used to talk to the
	// encoder buffer chip.
	EncoderBufSPISpeedHz uint32
}{
	FilterSize:             16,
	OdometryPairWindow:     50 * time.Millisecond,
	PositionRequestPeriod:  5,
	MainLoopPeriod:         20 * time.Millisecond,
	ConnectRetryPeriod:     10 * time.Millisecond,
	ConnectRetryBound:      10000,
	HandshakeTimeout:       30 * time.Second,
	ShutdownJoinRetries:    10,
	ShutdownJoinPeriod:     100 * time.Millisecond,
	DeployAcceptBound:      20,
	DeployAcceptPeriod:     100 * time.Millisecond,
	DeployRunDuration:      10 * time.Second,
	EncoderBufSamplePeriod: 20 * time.Millisecond,
	EncoderBufSPISpeedHz:   500000,
}

// Peer identifies one of the fixed subsystem roles in the mesh.
type Peer string

const (
	PeerGuidance  Peer = "guidance"
	PeerNavigation Peer = "navigation"
	PeerControl    Peer = "control"
	PeerImageProc  Peer = "imageproc"
)

// MeshPort is the fixed, compile-time port table: every ordered (from,to)
// pair of subsystems that exchange a TCP connection has exactly one
// entry here.
var MeshPort = map[[2]Peer]int{
	{PeerGuidance, PeerNavigation}: 5001,
	{PeerGuidance, PeerControl}:    5002,
	{PeerGuidance, PeerImageProc}:  5003,
}

// DefaultDevicePaths gives each subsystem's default serial device path,
// overridable by the single positional command-line argument.
var DefaultDevicePaths = map[string]string{
	"vn200":      "/dev/ttyUSB0",
	"kangaroo":   "/dev/ttyUSB1",
	"adsb":       "/dev/ttyUSB2",
	"encoderbuf": "/dev/spidev0.0",
}

// DefaultBaud gives each device's operating baud rate.
var DefaultBaud = map[string]int{
	"vn200":    115200,
	"kangaroo": 9600,
	"adsb":     57600,
}

// MetricsAddr is the bind address for each subsystem's Prometheus
// /metrics endpoint.
const MetricsAddr = "127.0.0.1:0"
