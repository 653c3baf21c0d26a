// Package metrics exposes each subsystem's Prometheus counters: bytes
// read per device, frames parsed/discarded per stream, checksum failures,
// and TCP mesh connect/accept activity. This is an ambient observability
// surface layered on top of the fixed mesh and drivers; it introduces no
// new control channel or peer discovery.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the counters one subsystem process reports.
type Registry struct {
	reg *prometheus.Registry

	BytesRead        *prometheus.CounterVec
	FramesParsed     *prometheus.CounterVec
	FramesDiscarded  *prometheus.CounterVec
	ChecksumFailures *prometheus.CounterVec
	MeshConnects     *prometheus.CounterVec
	MeshAccepts      *prometheus.CounterVec
	LoopIterations   prometheus.Counter
}

// New builds a fresh Registry for subsystem, labeled counters keyed by
// device or peer name at increment time.
func New(subsystem string) *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		BytesRead: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mrfusion",
			Subsystem: subsystem,
			Name:      "bytes_read_total",
			Help:      "Bytes read from a serial device.",
		}, []string{"device"}),
		FramesParsed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mrfusion",
			Subsystem: subsystem,
			Name:      "frames_parsed_total",
			Help:      "Frames successfully parsed from a stream.",
		}, []string{"stream"}),
		FramesDiscarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mrfusion",
			Subsystem: subsystem,
			Name:      "frames_discarded_total",
			Help:      "Frames discarded by a parser (bad checksum, unknown id, short field list).",
		}, []string{"stream", "reason"}),
		ChecksumFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mrfusion",
			Subsystem: subsystem,
			Name:      "checksum_failures_total",
			Help:      "Frames rejected by checksum validation.",
		}, []string{"stream"}),
		MeshConnects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mrfusion",
			Subsystem: subsystem,
			Name:      "mesh_connects_total",
			Help:      "Successful outbound TCP mesh connections.",
		}, []string{"peer"}),
		MeshAccepts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mrfusion",
			Subsystem: subsystem,
			Name:      "mesh_accepts_total",
			Help:      "Successful inbound TCP mesh accepts.",
		}, []string{"peer"}),
		LoopIterations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "mrfusion",
			Subsystem: subsystem,
			Name:      "main_loop_iterations_total",
			Help:      "Main command loop iterations executed.",
		}),
	}
}

// Serve starts an HTTP server exposing /metrics on addr in a new
// goroutine and returns immediately; a ":0" addr binds an ephemeral port.
func (r *Registry) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))
	ln, err := newListener(addr)
	if err != nil {
		return err
	}
	go http.Serve(ln, mux)
	return nil
}
