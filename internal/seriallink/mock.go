package seriallink

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

// TestablePort implements TimeoutPorter with configurable behaviour for
// testing. Every Write call is recorded as a separate chunk.
type TestablePort struct {
	mu sync.Mutex

	// Chunks holds the bytes of each Write call in order
	Chunks [][]byte

	// WriteLatency adds a delay to each Write call
	WriteLatency time.Duration

	// WriteError is returned by the next Write call if set
	WriteError error

	// ShortWrite makes the next Write report one byte fewer than requested
	ShortWrite bool

	// CloseError is returned by Close if set
	CloseError error

	// TimeoutError is returned by SetReadTimeout if set
	TimeoutError error

	Closed      bool
	ReadCalls   int
	WriteCalls  int
	ReadTimeout time.Duration
}

// NewTestablePort creates a TestablePort for testing.
func NewTestablePort() *TestablePort {
	return &TestablePort{}
}

// Read always reports a timeout with no data; the bridge never reads.
func (t *TestablePort) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ReadCalls++
	if t.Closed {
		return 0, errors.New("serial port closed")
	}
	return 0, nil
}

func (t *TestablePort) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.WriteCalls++

	if t.Closed {
		return 0, errors.New("serial port closed")
	}

	if t.WriteError != nil {
		err := t.WriteError
		t.WriteError = nil
		return 0, err
	}

	if t.WriteLatency > 0 {
		t.mu.Unlock()
		time.Sleep(t.WriteLatency)
		t.mu.Lock()
	}

	n := len(p)
	if t.ShortWrite && n > 0 {
		t.ShortWrite = false
		n--
	}
	t.Chunks = append(t.Chunks, append([]byte(nil), p[:n]...))
	return n, nil
}

func (t *TestablePort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Closed = true
	return t.CloseError
}

func (t *TestablePort) SetReadTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.TimeoutError != nil {
		return t.TimeoutError
	}
	t.ReadTimeout = timeout
	return nil
}

// Written returns everything written to the port, concatenated.
func (t *TestablePort) Written() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return bytes.Join(t.Chunks, nil)
}

// WrittenChunks returns a copy of the recorded Write calls.
func (t *TestablePort) WrittenChunks() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.Chunks))
	copy(out, t.Chunks)
	return out
}

// IsClosed reports whether Close was called.
func (t *TestablePort) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Closed
}

// MockPortFactory implements PortFactory for testing.
type MockPortFactory struct {
	mu sync.Mutex

	// Ports are handed out in order; the last one is reused
	Ports []Porter

	// Error is returned by Open if set
	Error error

	// OpenCalls records all Open calls
	OpenCalls []MockOpenCall

	served int
}

// MockOpenCall records details of an Open call.
type MockOpenCall struct {
	Path string
	Opts PortOptions
}

// NewMockPortFactory creates a MockPortFactory returning the given ports.
func NewMockPortFactory(ports ...Porter) *MockPortFactory {
	return &MockPortFactory{Ports: ports}
}

func (f *MockPortFactory) Open(path string, opts PortOptions) (Porter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.OpenCalls = append(f.OpenCalls, MockOpenCall{Path: path, Opts: opts})

	if f.Error != nil {
		return nil, f.Error
	}
	if len(f.Ports) == 0 {
		return nil, errors.New("mock factory has no ports")
	}
	idx := f.served
	if idx >= len(f.Ports) {
		idx = len(f.Ports) - 1
	}
	f.served++
	return f.Ports[idx], nil
}

// Calls returns the number of Open calls.
func (f *MockPortFactory) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.OpenCalls)
}

// SetError changes the error returned by subsequent Open calls.
func (f *MockPortFactory) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Error = err
}
