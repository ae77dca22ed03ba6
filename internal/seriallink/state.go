package seriallink

import (
	"fmt"
	"time"
)

// State is the lifecycle state of the serial link.
type State int

const (
	StateUnopened State = iota
	StateOpen
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpen:
		return "open"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "unopened":
		*s = StateUnopened
	case "open":
		*s = StateOpen
	case "failed":
		*s = StateFailed
	default:
		return fmt.Errorf("unknown link state %q", b)
	}
	return nil
}

// Status is a point-in-time snapshot of the link for health and debug output.
type Status struct {
	State    State     `json:"state"`
	Reason   string    `json:"reason,omitempty"`
	PortPath string    `json:"port_path,omitempty"`
	BaudRate int       `json:"baud_rate,omitempty"`
	Since    time.Time `json:"since"`
	Writes   uint64    `json:"writes"`
}

// Available reports whether writes will be attempted.
func (s Status) Available() bool { return s.State == StateOpen }

func (s Status) String() string {
	if s.Reason != "" {
		return fmt.Sprintf("%s (%s)", s.State, s.Reason)
	}
	if s.PortPath != "" {
		return fmt.Sprintf("%s %s @ %d", s.State, s.PortPath, s.BaudRate)
	}
	return s.State.String()
}
