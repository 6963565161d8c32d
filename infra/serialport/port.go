package serialport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// readTimeout bounds each Read so a reader goroutine notices cancellation.
const readTimeout = 500 * time.Millisecond

// openPort is replaced in tests.
var openPort = func(device string, mode *serial.Mode) (serial.Port, error) {
	return serial.Open(device, mode)
}

// Open opens device with opts. Reads return after at most half a second
// with zero bytes when the line is idle.
func Open(device string, opts PortOptions) (serial.Port, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}
	port, err := openPort(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", device, err)
	}
	return port, nil
}

// Ports lists the serial devices present on the host.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
