package serialmux

import (
	"go.bug.st/serial"
)

// OpenPort opens the serial port at the given path with the provided options
// and returns it as a SerialPorter.
func OpenPort(path string, opts PortOptions) (SerialPorter, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}

	return port, nil
}

// OpenLineSource opens the serial port at the given path and wraps it in a
// LineSource ready for polling.
func OpenLineSource(path string, opts PortOptions) (*LineSource, error) {
	port, err := OpenPort(path, opts)
	if err != nil {
		return nil, err
	}
	return NewLineSource(port), nil
}
