package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels for CommandsTotal.
const (
	ResultOK              = "ok"
	ResultInvalidInput    = "invalid_input"
	ResultLinkUnavailable = "link_unavailable"
	ResultWriteFailed     = "write_failed"
)

// Metrics groups the bridge's Prometheus collectors.
type Metrics struct {
	// CommandsTotal counts bridge requests by outcome and transport.
	CommandsTotal *prometheus.CounterVec
	// WriteLatency observes the time spent in serial writes that were attempted.
	WriteLatency prometheus.Histogram
	// LinkUp reports 1 while the serial link is open.
	LinkUp prometheus.GaugeFunc
}

// NewMetrics creates the collectors and registers them with reg. linkUp is
// polled at scrape time.
func NewMetrics(reg prometheus.Registerer, linkUp func() bool) *Metrics {
	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statebridge_commands_total",
				Help: "Total number of state update requests by result and transport.",
			},
			[]string{"result", "transport"},
		),
		WriteLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "statebridge_serial_write_seconds",
				Help:    "Latency of serial writes to the device.",
				Buckets: prometheus.DefBuckets,
			},
		),
		LinkUp: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "statebridge_serial_link_up",
				Help: "Whether the serial link to the device is open (1) or not (0).",
			},
			func() float64 {
				if linkUp != nil && linkUp() {
					return 1
				}
				return 0
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.CommandsTotal, m.WriteLatency, m.LinkUp)
	}
	return m
}

// ObserveCommand records one request outcome. Safe on a nil receiver so
// callers without metrics need no guards.
func (m *Metrics) ObserveCommand(result, transport string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(result, transport).Inc()
}

// ObserveWrite records the duration of an attempted serial write.
func (m *Metrics) ObserveWrite(d time.Duration) {
	if m == nil {
		return
	}
	m.WriteLatency.Observe(d.Seconds())
}
