package vn200

import (
	"fmt"
	"time"
)

// Mode selects which of the device's async streams the init dialogue's
// final mode command enables.
type Mode int

const (
	ModeIMUOnly Mode = 19
	ModeGPSOnly Mode = 20
	ModeBoth    Mode = 248
)

// Port is the minimal serial interface the init dialogue and runtime loop
// need; github.com/dstockhouse/mrfusion/serial.Port satisfies it.
type Port interface {
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	SetBaud(baud int) error
}

// InitOptions configures one run of the init dialogue.
type InitOptions struct {
	// UpshiftTo115200, if true, performs the optional baud-rate upshift:
	// the device is commanded from its current (57600) rate to 115200 and
	// the local line is reconfigured to match.
	UpshiftTo115200 bool
	SampleFreqHz    int
	Mode            Mode
	// SaveAndReset performs VNWNV + VNRST and a 1s settle wait before
	// the mode command, per step 5 of the dialogue.
	SaveAndReset bool
	Sleep        func(time.Duration) // overridable for tests
}

// Init runs the full VN200 init dialogue over port: optional baud upshift,
// serial-number probe, async-output disable, sample frequency, optional
// save+reset, mode selection, and a final drain.
func Init(port Port, opts InitOptions, drainAndLog func([]byte)) error {
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	if opts.UpshiftTo115200 {
		if _, err := port.Write(BuildCommand("VNWRG,05,115200", true)); err != nil {
			return fmt.Errorf("vn200: sending baud upshift: %w", err)
		}
		sleep(50 * time.Millisecond)
		if err := port.SetBaud(115200); err != nil {
			return fmt.Errorf("vn200: switching local baud: %w", err)
		}
	}

	if _, err := port.Write(BuildCommand("VNRRG,03", true)); err != nil {
		return fmt.Errorf("vn200: requesting serial number: %w", err)
	}
	sleep(20 * time.Millisecond)
	drainResponse(port, drainAndLog)

	if _, err := port.Write(BuildCommand("VNWRG,06,0", true)); err != nil {
		return fmt.Errorf("vn200: disabling async output: %w", err)
	}
	sleep(20 * time.Millisecond)

	if _, err := port.Write(BuildCommand(fmt.Sprintf("VNWRG,07,%d", opts.SampleFreqHz), true)); err != nil {
		return fmt.Errorf("vn200: setting sample frequency: %w", err)
	}
	sleep(20 * time.Millisecond)

	if opts.SaveAndReset {
		if _, err := port.Write(BuildCommand("VNWNV", true)); err != nil {
			return fmt.Errorf("vn200: VNWNV: %w", err)
		}
		if _, err := port.Write(BuildCommand("VNRST", true)); err != nil {
			return fmt.Errorf("vn200: VNRST: %w", err)
		}
		sleep(time.Second)
	}

	modeCmd := fmt.Sprintf("VNWRG,06,%d", int(opts.Mode))
	if _, err := port.Write(BuildCommand(modeCmd, true)); err != nil {
		return fmt.Errorf("vn200: setting mode: %w", err)
	}
	sleep(20 * time.Millisecond)

	drainResponse(port, drainAndLog)
	return nil
}

func drainResponse(port Port, drainAndLog func([]byte)) {
	buf := make([]byte, 256)
	n, err := port.Read(buf)
	if err != nil || n == 0 {
		return
	}
	if drainAndLog != nil {
		drainAndLog(buf[:n])
	}
}
