package mrutil

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// rawModeGuard is the lazily-initialized, process-global terminal state
// stash the source keeps as a file-scope static. Every call to
// SetStdinRaw routes through it so there is exactly one place that knows
// how to restore the original settings.
var rawModeGuard struct {
	once     sync.Once
	mu       sync.Mutex
	saved    unix.Termios
	haveSave bool
}

// SetStdinRaw toggles non-canonical, no-echo, zero-VMIN input on fd 0 for
// interactive arrow-key control. Calling it with on=false restores the
// terminal state captured by the first on=true call.
func SetStdinRaw(on bool) error {
	rawModeGuard.mu.Lock()
	defer rawModeGuard.mu.Unlock()

	if on {
		t, err := unix.IoctlGetTermios(0, unix.TCGETS)
		if err != nil {
			return fmt.Errorf("mrutil: get termios: %w", err)
		}
		if !rawModeGuard.haveSave {
			rawModeGuard.saved = *t
			rawModeGuard.haveSave = true
		}
		raw := *t
		raw.Lflag &^= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
		raw.Iflag &^= unix.IXON | unix.ICRNL | unix.BRKINT | unix.ISTRIP
		raw.Cc[unix.VMIN] = 0
		raw.Cc[unix.VTIME] = 1
		if err := unix.IoctlSetTermios(0, unix.TCSETS, &raw); err != nil {
			return fmt.Errorf("mrutil: set termios raw: %w", err)
		}
		return nil
	}

	if !rawModeGuard.haveSave {
		return nil
	}
	saved := rawModeGuard.saved
	return unix.IoctlSetTermios(0, unix.TCSETS, &saved)
}
