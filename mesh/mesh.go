// Package mesh implements the fixed TCP mesh primitives: each subsystem
// process either connects to or accepts from each other subsystem on a
// compile-time port. Both halves are non-blocking so startup order never
// matters — see DialMesh for the fixpoint retry loop that resolves the
// resulting connect/accept cycle.
//
// Raw unix sockets are used instead of net.Conn because the wire contract
// needs exact control over non-blocking semantics: ECONNREFUSED is
// non-fatal, a zero-byte read means "no data" rather than EOF, and writes
// must suppress SIGPIPE.
package mesh

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Conn is one fd-backed mesh endpoint, either the client side of a
// connect or the accepted peer of a server listen.
type Conn struct {
	fd int
}

// Fd returns the raw file descriptor, for callers that need to hand it to
// select/poll machinery outside this package.
func (c *Conn) Fd() int {
	return c.fd
}

// ClientNew creates a blocking stream socket configured with
// SO_REUSEADDR|SO_REUSEPORT, ready for ClientTryConnect.
func ClientNew() (*Conn, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("mesh: socket: %w", err)
	}
	if err := setReuse(fd); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Conn{fd: fd}, nil
}

// ClientTryConnect attempts one connect to ip:port on the still-blocking
// socket ClientNew created. A
// refused connection is reported via the returned bool (false, nil) so
// the caller's retry loop can keep going; any other error is fatal to
// this attempt. On success the socket is left non-blocking.
func (c *Conn) ClientTryConnect(ip string, port int) (connected bool, err error) {
	addr := &unix.SockaddrInet4{Port: port}
	ipv4, err := parseIPv4(ip)
	if err != nil {
		return false, err
	}
	addr.Addr = ipv4

	err = unix.Connect(c.fd, addr)
	if err == nil {
		if err := unix.SetNonblock(c.fd, true); err != nil {
			return false, fmt.Errorf("mesh: set nonblock after connect: %w", err)
		}
		return true, nil
	}
	if err == unix.ECONNREFUSED || err == unix.EINPROGRESS || err == unix.EALREADY {
		return false, nil
	}
	return false, fmt.Errorf("mesh: connect %s:%d: %w", ip, port, err)
}

// Listener is a bound, listening, non-blocking server socket awaiting
// exactly one peer (backlog 1), matching the mesh's one-peer-per-port
// topology.
type Listener struct {
	fd int
}

// ServerNew binds and listens on ip:port with backlog 1, non-blocking.
func ServerNew(ip string, port int) (*Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("mesh: socket: %w", err)
	}
	if err := setReuse(fd); err != nil {
		unix.Close(fd)
		return nil, err
	}
	ipv4, err := parseIPv4(ip)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port, Addr: ipv4}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mesh: bind %s:%d: %w", ip, port, err)
	}
	if err := unix.Listen(fd, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mesh: listen %s:%d: %w", ip, port, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Listener{fd: fd}, nil
}

// ServerTryAccept is a one-shot, non-blocking accept attempt. On success
// it closes the listening socket (the mesh expects exactly one peer per
// port) and returns the connected Conn.
func (l *Listener) ServerTryAccept() (conn *Conn, accepted bool, err error) {
	fd, _, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("mesh: accept: %w", err)
	}
	unix.Close(l.fd)
	return &Conn{fd: fd}, true, nil
}

// Close closes the listening socket without accepting.
func (l *Listener) Close() error {
	return unix.Close(l.fd)
}

// Read performs one non-blocking read. A return of (0, nil) means no data
// is currently available, not peer close.
func (c *Conn) Read(buf []byte) (int, error) {
	n, err := unix.Read(c.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, nil
		}
		return 0, fmt.Errorf("mesh: read: %w", err)
	}
	return n, nil
}

// Write performs one non-blocking write, suppressing SIGPIPE on a
// peer-closed connection.
func (c *Conn) Write(buf []byte) (int, error) {
	n, err := unix.SendmsgN(c.fd, buf, nil, nil, unix.MSG_NOSIGNAL|unix.MSG_DONTWAIT)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, nil
		}
		return 0, fmt.Errorf("mesh: write: %w", err)
	}
	return n, nil
}

// Close closes the connected socket.
func (c *Conn) Close() error {
	return unix.Close(c.fd)
}

func setReuse(fd int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("mesh: SO_REUSEADDR: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		return fmt.Errorf("mesh: SO_REUSEPORT: %w", err)
	}
	return nil
}

func parseIPv4(ip string) ([4]byte, error) {
	var out [4]byte
	var a, b, c, d int
	n, err := fmt.Sscanf(ip, "%d.%d.%d.%d", &a, &b, &c, &d)
	if err != nil || n != 4 {
		return out, fmt.Errorf("mesh: invalid IPv4 address %q", ip)
	}
	out[0], out[1], out[2], out[3] = byte(a), byte(b), byte(c), byte(d)
	return out, nil
}
