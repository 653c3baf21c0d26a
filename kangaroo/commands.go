package kangaroo

import "fmt"

// Port is the minimal serial interface the Kangaroo driver needs.
type Port interface {
	Write(p []byte) (int, error)
}

// line frames a bare command with the protocol's \r\n terminator.
func line(cmd string) []byte {
	return []byte(cmd + "\r\n")
}

// InitSequence returns the four commands sent once at startup: start
// both channels, then set each channel's units so that 798mm of travel
// equals 420 encoder lines.
func InitSequence() [][]byte {
	return [][]byte{
		line("1,start"),
		line("2,start"),
		line("1,units798mm=420lines"),
		line("2,units798mm=420lines"),
	}
}

// PowerdownSequence returns the two commands sent on shutdown.
func PowerdownSequence() [][]byte {
	return [][]byte{
		line("1,powerdown"),
		line("2,powerdown"),
	}
}

// SpeedCommand builds "<ch>,s<signed-int>\r\n".
func SpeedCommand(channel int, speed int32) []byte {
	return line(fmt.Sprintf("%d,s%d", channel, speed))
}

// PositionQuery builds "<ch>,getp\r\n".
func PositionQuery(channel int) []byte {
	return line(fmt.Sprintf("%d,getp", channel))
}

// SendInit writes the init sequence to port in order.
func SendInit(port Port) error {
	for _, cmd := range InitSequence() {
		if _, err := port.Write(cmd); err != nil {
			return fmt.Errorf("kangaroo: init command %q: %w", string(cmd), err)
		}
	}
	return nil
}

// SendPowerdown writes the powerdown sequence to port in order.
func SendPowerdown(port Port) error {
	for _, cmd := range PowerdownSequence() {
		if _, err := port.Write(cmd); err != nil {
			return fmt.Errorf("kangaroo: powerdown command %q: %w", string(cmd), err)
		}
	}
	return nil
}
