// Package command converts untyped state values received from web clients into
// the integer commands understood by the microcontroller firmware.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidInput is matched by every error returned from Translate.
var ErrInvalidInput = errors.New("invalid value")

// Value is the target state sent to the device. The bridge applies no range
// checks; the firmware decides what a value means.
type Value int64

// Wire returns the exact bytes written to the serial line: decimal ASCII
// terminated by a single newline.
func (v Value) Wire() []byte {
	return append(strconv.AppendInt(nil, int64(v), 10), '\n')
}

func (v Value) String() string {
	return strconv.FormatInt(int64(v), 10)
}

// InvalidInputError describes why a raw value could not be translated.
type InvalidInputError struct {
	Raw    any
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidInput, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Translate accepts a raw value exactly as it was extracted from a request
// (nil when the field was absent) and parses it as a base-10 signed integer.
// Text is trimmed of surrounding whitespace first. Fractional numbers are
// rejected rather than truncated.
func Translate(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return 0, &InvalidInputError{Raw: raw, Reason: "missing value"}
	case string:
		return parseText(raw, v)
	case json.Number:
		return parseText(raw, v.String())
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, &InvalidInputError{Raw: raw, Reason: fmt.Sprintf("%v is not an integer", v)}
		}
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, &InvalidInputError{Raw: raw, Reason: fmt.Sprintf("%v is out of range", v)}
		}
		return Value(int64(v)), nil
	case int:
		return Value(v), nil
	case int32:
		return Value(v), nil
	case int64:
		return Value(v), nil
	default:
		return 0, &InvalidInputError{Raw: raw, Reason: fmt.Sprintf("unsupported type %T", raw)}
	}
}

func parseText(raw any, s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &InvalidInputError{Raw: raw, Reason: "empty value"}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, &InvalidInputError{Raw: raw, Reason: fmt.Sprintf("%q is out of range", s)}
		}
		return 0, &InvalidInputError{Raw: raw, Reason: fmt.Sprintf("%q is not an integer", s)}
	}
	return Value(n), nil
}
