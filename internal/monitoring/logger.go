// Package monitoring provides the diagnostic logger and Prometheus metrics
// shared by the bridge packages.
package monitoring

import "log"

// Logf is the package-level diagnostic logger used by the serial link and the
// bridge endpoint. It defaults to log.Printf; tests may redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
