package seriallink

import (
	"errors"

	"go.bug.st/serial"
)

// SerialFactory opens real devices through go.bug.st/serial.
type SerialFactory struct{}

// Open opens path with the given options. The returned serial.Port
// implements TimeoutPorter, so Link applies the read timeout.
func (SerialFactory) Open(path string, opts PortOptions) (Porter, error) {
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

// describeOpenError turns driver errors into short operator-facing reasons.
func describeOpenError(err error) string {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortNotFound:
			return "port not found"
		case serial.PermissionDenied:
			return "permission denied"
		case serial.PortBusy:
			return "port busy"
		case serial.InvalidSerialPort:
			return "not a serial port"
		}
	}
	return err.Error()
}
