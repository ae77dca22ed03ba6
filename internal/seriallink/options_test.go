package seriallink

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.bug.st/serial"
)

func TestPortOptions_Normalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      PortOptions
		want    PortOptions
		wantErr bool
	}{
		{
			name: "defaults",
			in:   PortOptions{},
			want: PortOptions{BaudRate: 115200, DataBits: 8, StopBits: 1, Parity: "N", ReadTimeout: time.Second},
		},
		{
			name: "explicit values kept",
			in:   PortOptions{BaudRate: 9600, DataBits: 7, StopBits: 2, Parity: "even", ReadTimeout: 50 * time.Millisecond},
			want: PortOptions{BaudRate: 9600, DataBits: 7, StopBits: 2, Parity: "E", ReadTimeout: 50 * time.Millisecond},
		},
		{
			name: "odd parity lowercase",
			in:   PortOptions{Parity: " o "},
			want: PortOptions{BaudRate: 115200, DataBits: 8, StopBits: 1, Parity: "O", ReadTimeout: time.Second},
		},
		{name: "negative baud", in: PortOptions{BaudRate: -1}, wantErr: true},
		{name: "data bits too high", in: PortOptions{DataBits: 9}, wantErr: true},
		{name: "data bits too low", in: PortOptions{DataBits: 4}, wantErr: true},
		{name: "stop bits", in: PortOptions{StopBits: 3}, wantErr: true},
		{name: "parity", in: PortOptions{Parity: "mark"}, wantErr: true},
		{name: "negative timeout", in: PortOptions{ReadTimeout: -time.Second}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.in.Normalize()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%+v) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%+v) unexpected error: %v", tt.in, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPortOptions_SerialMode(t *testing.T) {
	t.Parallel()

	mode, err := PortOptions{BaudRate: 19200, StopBits: 2, Parity: "O"}.SerialMode()
	if err != nil {
		t.Fatalf("SerialMode: %v", err)
	}
	want := &serial.Mode{BaudRate: 19200, DataBits: 8, Parity: serial.OddParity, StopBits: serial.TwoStopBits}
	if diff := cmp.Diff(want, mode); diff != "" {
		t.Errorf("SerialMode mismatch (-want +got):\n%s", diff)
	}

	if _, err := (PortOptions{Parity: "X"}).SerialMode(); err == nil {
		t.Error("expected error for invalid parity")
	}
}

func TestDescribeOpenError(t *testing.T) {
	t.Parallel()

	plain := errors.New("boom")
	if got := describeOpenError(plain); got != "boom" {
		t.Errorf("describeOpenError(plain) = %q", got)
	}

	wrapped := fmt.Errorf("open: %w", &serial.PortError{})
	if got := describeOpenError(wrapped); got == "" {
		t.Error("describeOpenError returned empty reason")
	}
}
