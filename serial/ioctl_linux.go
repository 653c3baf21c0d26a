package serial

import (
	ioctl "github.com/daedaluz/goioctl"
	"unsafe"
)

// Raw ioctl request numbers for the subset of termios control this driver
// exercises: attribute get/set (legacy and the _2 variants that carry
// arbitrary input/output speeds via BOTHER) and drain/flush/flow. The
// tiocm* modem-line numbers are declared but no Port method issues them.
// The RS485 and serial_struct ioctls the teacher
// carried are not wired to anything in this module's device set (no
// RS485 transceiver, no legacy UART reconfiguration) and are dropped.
var (
	tcgets = uintptr(0x5401)
	tcsets = uintptr(0x5402)

	tcgets2 = ioctl.IOR('T', 0x2A, unsafe.Sizeof(Termios2{}))
	tcsets2 = ioctl.IOW('T', 0x2B, unsafe.Sizeof(Termios2{}))

	tcsbrk = uintptr(0x5409)
	tcflsh = uintptr(0x540B)
	tcxonc = uintptr(0x540A)

	tiocmget = uintptr(0x5415)
	tiocmbis = uintptr(0x5416)
	tiocmbic = uintptr(0x5417)
	tiocmset = uintptr(0x5418)
)
