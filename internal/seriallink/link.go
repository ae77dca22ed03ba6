// Package seriallink owns the single serial connection to the microcontroller.
// All opens, writes and state transitions happen inside one critical section so
// concurrent requests never interleave bytes on the wire and a reopen cannot
// race an in-flight write.
package seriallink

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banshee-data/statebridge/internal/command"
	"github.com/banshee-data/statebridge/internal/monitoring"
)

// Link manages the lifecycle of one serial device handle. The zero value is
// not usable; construct with NewLink.
type Link struct {
	mu         sync.Mutex
	factory    PortFactory
	port       Porter
	status     Status
	opts       PortOptions
	configured bool

	// snapshot is republished on every transition so Status and IsAvailable
	// never wait behind a write.
	snapshot atomic.Pointer[Status]
	now      func() time.Time
}

// NewLink creates an unopened link. A nil factory selects the real
// go.bug.st/serial implementation.
func NewLink(factory PortFactory) *Link {
	if factory == nil {
		factory = SerialFactory{}
	}
	l := &Link{
		factory: factory,
		now:     time.Now,
	}
	l.status = Status{State: StateUnopened, Since: l.now()}
	l.publishLocked()
	return l
}

// Open opens the device at path. Any handle that is already open is closed
// first. On failure the link moves to StateFailed and an *OpenError is
// returned; the caller decides whether that is fatal.
func (l *Link) Open(path string, opts PortOptions) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.openLocked(path, opts)
}

// Reopen retries the most recent Open with the same path and options.
func (l *Link) Reopen() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.configured {
		return ErrNoPort
	}
	return l.openLocked(l.status.PortPath, l.opts)
}

func (l *Link) openLocked(path string, opts PortOptions) error {
	l.closePortLocked()
	l.configured = true
	l.status.PortPath = path

	normalized, err := opts.Normalize()
	if err != nil {
		l.setStateLocked(StateFailed, err.Error())
		return &OpenError{Path: path, Reason: err.Error(), Err: err}
	}
	l.opts = normalized
	l.status.BaudRate = normalized.BaudRate

	if path == "" {
		l.setStateLocked(StateFailed, ErrNoPort.Error())
		return &OpenError{Path: path, Reason: ErrNoPort.Error(), Err: ErrNoPort}
	}

	port, err := l.factory.Open(path, normalized)
	if err != nil {
		reason := describeOpenError(err)
		l.setStateLocked(StateFailed, reason)
		return &OpenError{Path: path, Reason: reason, Err: err}
	}

	if tp, ok := port.(TimeoutPorter); ok {
		if err := tp.SetReadTimeout(normalized.ReadTimeout); err != nil {
			port.Close()
			reason := "failed to set read timeout: " + err.Error()
			l.setStateLocked(StateFailed, reason)
			return &OpenError{Path: path, Reason: reason, Err: err}
		}
	}

	l.port = port
	l.setStateLocked(StateOpen, "")
	monitoring.Logf("serial link open: %s @ %d baud", path, normalized.BaudRate)
	return nil
}

// Write sends cmd to the device as decimal text followed by a newline. When
// the link is not open it returns ErrLinkUnavailable without touching the
// device. An I/O error or short write closes the handle, moves the link to
// StateFailed and is returned as a *WriteError. Writes are never retried.
func (l *Link) Write(cmd command.Value) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status.State != StateOpen || l.port == nil {
		return ErrLinkUnavailable
	}

	wire := cmd.Wire()
	n, err := l.port.Write(wire)
	if err == nil && n != len(wire) {
		err = io.ErrShortWrite
	}
	if err != nil {
		monitoring.Logf("serial write of %s failed, marking link failed: %v", cmd, err)
		l.closePortLocked()
		l.setStateLocked(StateFailed, err.Error())
		return &WriteError{Err: err}
	}

	l.status.Writes++
	l.publishLocked()
	return nil
}

// IsAvailable reports whether the link is open. It never blocks.
func (l *Link) IsAvailable() bool {
	return l.snapshot.Load().Available()
}

// Status returns the latest published snapshot. It never blocks.
func (l *Link) Status() Status {
	return *l.snapshot.Load()
}

// Close releases the device handle and returns the link to StateUnopened.
// The link may be opened again afterwards.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	if l.port != nil {
		err = l.port.Close()
		l.port = nil
	}
	l.setStateLocked(StateUnopened, "")
	return err
}

func (l *Link) closePortLocked() {
	if l.port == nil {
		return
	}
	if err := l.port.Close(); err != nil {
		monitoring.Logf("failed to close serial port %s: %v", l.status.PortPath, err)
	}
	l.port = nil
}

func (l *Link) setStateLocked(state State, reason string) {
	if state != l.status.State || reason != l.status.Reason {
		l.status.Since = l.now()
	}
	l.status.State = state
	l.status.Reason = reason
	l.publishLocked()
}

func (l *Link) publishLocked() {
	snap := l.status
	l.snapshot.Store(&snap)
}
