package seriallink

import (
	"io"
	"time"
)

// Porter defines the minimal interface needed for a serial device handle.
// Tests substitute a TestablePort so no hardware is required.
type Porter interface {
	io.ReadWriter
	io.Closer
}

// TimeoutPorter is implemented by ports that support a bounded read timeout.
// The bridge never reads, but the timeout is applied at open so any future
// read path cannot hang forever.
type TimeoutPorter interface {
	Porter
	SetReadTimeout(timeout time.Duration) error
}

// PortFactory opens serial devices. It is injected into Link so the link state
// machine can be exercised without real hardware.
type PortFactory interface {
	Open(path string, opts PortOptions) (Porter, error)
}

// PortFactoryFunc adapts a plain function to PortFactory.
type PortFactoryFunc func(path string, opts PortOptions) (Porter, error)

func (f PortFactoryFunc) Open(path string, opts PortOptions) (Porter, error) {
	return f(path, opts)
}
