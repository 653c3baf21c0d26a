package mesh

import (
	"fmt"
	"time"
)

// PeerSpec describes one mesh peer this subsystem must establish a
// connection with, either by connecting out or by accepting in.
type PeerSpec struct {
	Name string
	IP   string
	Port int
	// Connect is true if this subsystem dials out; false if it listens
	// and accepts.
	Connect bool
}

// DialMesh resolves the connect/accept cyclic-startup problem described in
// the design notes as a single fixpoint loop: each iteration touches
// every still-unresolved peer once, non-blockingly, so two subsystems
// that connect to each other make progress regardless of start order.
// It returns a map from peer name to established Conn, or an error if the
// iteration bound is exceeded before every peer resolves.
func DialMesh(peers []PeerSpec, period time.Duration, bound int) (map[string]*Conn, error) {
	conns := make(map[string]*Conn, len(peers))
	clients := make(map[string]*Conn)
	listeners := make(map[string]*Listener)

	for _, p := range peers {
		if p.Connect {
			c, err := ClientNew()
			if err != nil {
				return nil, fmt.Errorf("mesh: preparing client for %q: %w", p.Name, err)
			}
			clients[p.Name] = c
		} else {
			l, err := ServerNew(p.IP, p.Port)
			if err != nil {
				return nil, fmt.Errorf("mesh: preparing server for %q: %w", p.Name, err)
			}
			listeners[p.Name] = l
		}
	}

	for iter := 0; iter < bound; iter++ {
		if len(conns) == len(peers) {
			return conns, nil
		}
		for _, p := range peers {
			if _, done := conns[p.Name]; done {
				continue
			}
			if p.Connect {
				c := clients[p.Name]
				ok, err := c.ClientTryConnect(p.IP, p.Port)
				if err != nil {
					return nil, fmt.Errorf("mesh: connecting to %q: %w", p.Name, err)
				}
				if ok {
					conns[p.Name] = c
				}
			} else {
				l := listeners[p.Name]
				c, ok, err := l.ServerTryAccept()
				if err != nil {
					return nil, fmt.Errorf("mesh: accepting %q: %w", p.Name, err)
				}
				if ok {
					conns[p.Name] = c
				}
			}
		}
		time.Sleep(period)
	}
	if len(conns) == len(peers) {
		return conns, nil
	}
	return nil, fmt.Errorf("mesh: connect/accept budget (%d iterations) exhausted with %d/%d peers resolved", bound, len(conns), len(peers))
}
