package serial

import (
	"sync/atomic"
	"syscall"
	"unsafe"

	ioctl "github.com/daedaluz/goioctl"
)

// Port is a single open serial device. Reads and writes are plain
// blocking syscalls against a file descriptor configured for raw,
// non-canonical mode with VMIN=0/VTIME=1 (see Configure): a Read call
// returns whatever bytes are already buffered by the kernel, waiting
// at most 100ms, rather than blocking for a full line. That is the
// only read-timeout mechanism this driver uses; there is no userspace
// poll layer riding on top of it.
type Port struct {
	closed atomic.Bool
	f      int
}

// Open opens name for raw read/write access. The descriptor is left in
// whatever mode the kernel/driver defaults to; call Configure to put it
// into the 8N1/VMIN=0/VTIME=1 shape every device on this robot expects.
func Open(name string) (*Port, error) {
	fd, err := syscall.Open(name, syscall.O_RDWR|syscall.O_NOCTTY, 0)
	if err != nil {
		return nil, wrapErr("open "+name, err)
	}
	return &Port{f: fd}, nil
}

func (p *Port) Write(data []byte) (n int, err error) {
	if p.closed.Load() {
		return 0, ErrClosed
	}
	n, err = syscall.Write(p.f, data)
	return n, wrapErr("write", err)
}

func (p *Port) Read(data []byte) (n int, err error) {
	if p.closed.Load() {
		return 0, ErrClosed
	}
	n, err = syscall.Read(p.f, data)
	return n, wrapErr("read", err)
}

func (p *Port) Fd() int {
	if p.closed.Load() {
		return -1
	}
	return p.f
}

func (p *Port) Close() error {
	if !p.closed.Swap(true) {
		fd := p.f
		p.f = -1
		return wrapErr("close", syscall.Close(fd))
	}
	return ErrClosed
}

func (p *Port) GetAttr() (*Termios, error) {
	attrs := &Termios{}
	err := ioctl.Ioctl(uintptr(p.f), tcgets, uintptr(unsafe.Pointer(attrs)))
	if err != nil {
		return nil, wrapErr("tcgets", err)
	}
	return attrs, nil
}

func (p *Port) SetAttr(when Action, attrs *Termios) error {
	return wrapErr("tcsets", ioctl.Ioctl(uintptr(p.f), tcsets+uintptr(when), uintptr(unsafe.Pointer(attrs))))
}

func (p *Port) GetAttr2() (*Termios2, error) {
	attrs := &Termios2{}
	err := ioctl.Ioctl(uintptr(p.f), tcgets2, uintptr(unsafe.Pointer(attrs)))
	if err != nil {
		return nil, wrapErr("tcgets2", err)
	}
	return attrs, nil
}

func (p *Port) SetAttr2(when Action, attrs *Termios2) error {
	return wrapErr("tcsets2", ioctl.Ioctl(uintptr(p.f), tcsets2+uintptr(when), uintptr(unsafe.Pointer(attrs))))
}

// Drain waits until all output written to the port has been transmitted.
func (p *Port) Drain() error {
	return wrapErr("drain", ioctl.Ioctl(uintptr(p.f), tcsbrk, 1))
}

// Flush discards data written but not transmitted, or received but not
// read, depending on queue.
func (p *Port) Flush(queue Queue) error {
	return wrapErr("flush", ioctl.Ioctl(uintptr(p.f), tcflsh, uintptr(queue)))
}

// Flow suspends or resumes transmission/reception per flow.
func (p *Port) Flow(flow Flow) error {
	return wrapErr("flow", ioctl.Ioctl(uintptr(p.f), tcxonc, uintptr(flow)))
}

// MakeRaw puts the port into raw line-discipline mode without touching
// its current speed.
func (p *Port) MakeRaw() error {
	attrs, err := p.GetAttr()
	if err != nil {
		return err
	}
	attrs.makeRaw()
	return p.SetAttr(TCSANOW, attrs)
}

// Configure puts the port into the shape every device on this robot's
// mesh needs: 8 data bits, no parity, one stop bit, raw discipline, and
// VMIN=0/VTIME=1 so Read returns within 100ms instead of blocking for a
// full line, at the given baud. Rates in the fixed Bnnnn table use the
// legacy termios ioctl; anything else goes through termios2 and BOTHER.
func (p *Port) Configure(baud int) error {
	if speed, ok := baudConstant(baud); ok {
		attrs, err := p.GetAttr()
		if err != nil {
			return err
		}
		attrs.makeRaw()
		attrs.setSpeed(speed)
		attrs.Cc[VMIN] = 0
		attrs.Cc[VTIME] = 1
		return p.SetAttr(TCSANOW, attrs)
	}

	attrs, err := p.GetAttr2()
	if err != nil {
		return err
	}
	attrs.makeRaw2()
	attrs.setCustomSpeed(uint32(baud))
	attrs.Cc[VMIN] = 0
	attrs.Cc[VTIME] = 1
	return p.SetAttr2(TCSANOW, attrs)
}

// SetBaud changes the port's speed without otherwise touching its
// configuration, for mid-session baud upshifts such as the VN200's
// 57600->115200 dialogue.
func (p *Port) SetBaud(baud int) error {
	if speed, ok := baudConstant(baud); ok {
		attrs, err := p.GetAttr()
		if err != nil {
			return err
		}
		attrs.setSpeed(speed)
		return p.SetAttr(TCSANOW, attrs)
	}

	attrs, err := p.GetAttr2()
	if err != nil {
		return err
	}
	attrs.setCustomSpeed(uint32(baud))
	return p.SetAttr2(TCSANOW, attrs)
}
