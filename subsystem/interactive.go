package subsystem

import (
	"time"

	"github.com/dstockhouse/mrfusion/config"
	"github.com/dstockhouse/mrfusion/mesh"
	"github.com/dstockhouse/mrfusion/mrutil"
)

// arrowKey identifies a decoded terminal escape sequence.
type arrowKey int

const (
	arrowNone arrowKey = iota
	arrowUp
	arrowDown
	arrowLeft
	arrowRight
)

// decodeArrowKey recognizes a CSI arrow-key escape sequence (ESC '[' A/B/C/D)
// at the front of buf, returning the key and how many bytes it consumed.
// ESC '[' followed by any other byte consumes 3 and returns arrowNone;
// anything else (a plain character, an incomplete sequence) consumes 0.
func decodeArrowKey(buf []byte) (arrowKey, int) {
	if len(buf) < 3 || buf[0] != 0x1b || buf[1] != '[' {
		return arrowNone, 0
	}
	switch buf[2] {
	case 'A':
		return arrowUp, 3
	case 'B':
		return arrowDown, 3
	case 'C':
		return arrowRight, 3
	case 'D':
		return arrowLeft, 3
	default:
		return arrowNone, 3
	}
}

// interactiveSpeedStepMPS and interactiveRotStepRadPS are the fixed
// per-keypress increments: up/down nudge the target speed, left/right
// nudge the target rotation, matching the terminal arrow-key control fallback the spec's
// §4.12 step 7 allows for interactive operation.
const interactiveSpeedStepMPS = 0.05
const interactiveRotStepRadPS = 0.1

// RunInteractive reads raw (non-canonical) stdin for arrow-key escape
// sequences, maintains a target speed/rotation, and forwards ctls/ctlr
// over conn at the main loop period until a read from readStdin returns
// an error (EOF on interrupt) or stop is requested externally via done.
func RunInteractive(conn Conn, readStdin func([]byte) (int, error), done <-chan struct{}) error {
	if err := mrutil.SetStdinRaw(true); err != nil {
		return err
	}
	defer mrutil.SetStdinRaw(false)

	var speed, rotation float64
	pending := make([]byte, 0, 8)
	chunk := make([]byte, 8)

	ticker := time.NewTicker(config.Defaults.MainLoopPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return nil
		case <-ticker.C:
			n, err := readStdin(chunk)
			if err != nil {
				return err
			}
			if n > 0 {
				pending = append(pending, chunk[:n]...)
			}
			for {
				key, consumed := decodeArrowKey(pending)
				if consumed == 0 {
					break
				}
				pending = pending[consumed:]
				switch key {
				case arrowUp:
					speed += interactiveSpeedStepMPS
				case arrowDown:
					speed -= interactiveSpeedStepMPS
				case arrowLeft:
					rotation -= interactiveRotStepRadPS
				case arrowRight:
					rotation += interactiveRotStepRadPS
				}
			}
			conn.Write(mesh.EncodeCtlS(speed))
			conn.Write(mesh.EncodeCtlR(rotation))
		}
	}
}
