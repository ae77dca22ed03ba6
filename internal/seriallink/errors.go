package seriallink

import (
	"errors"
	"fmt"
)

var (
	// ErrLinkUnavailable is returned by Write when the link is not open. No
	// I/O is attempted.
	ErrLinkUnavailable = errors.New("serial link unavailable")
	// ErrWriteFailed is matched by every WriteError.
	ErrWriteFailed = errors.New("failed to write to serial port")
	// ErrNoPort is returned by Reopen before any port has been configured.
	ErrNoPort = errors.New("no serial port configured")
)

// OpenError reports a failed attempt to open the device.
type OpenError struct {
	Path   string
	Reason string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open serial port %s: %s", e.Path, e.Reason)
}

func (e *OpenError) Unwrap() error { return e.Err }

// WriteError reports an I/O failure while writing a command. The link is
// marked failed before it is returned.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("serial write failed: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrWriteFailed }
