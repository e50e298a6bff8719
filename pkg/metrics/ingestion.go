package metrics

import (
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "enose"
	subsystem = "ingestion"
)

// IngestionMetrics counts what flows through the device read loop. A nil
// *IngestionMetrics is valid and records nothing.
type IngestionMetrics struct {
	linesReceived    prometheus.Counter
	readings         prometheus.Counter
	statusEvents     prometheus.Counter
	linesDropped     prometheus.Counter
	connectionErrors prometheus.Counter
	connected        prometheus.Gauge
}

// NewIngestionMetrics registers the ingestion collectors with reg. It
// returns nil when reg is nil.
func NewIngestionMetrics(reg prometheus.Registerer) *IngestionMetrics {
	if reg == nil {
		return nil
	}

	m := &IngestionMetrics{
		linesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "lines_received_total",
			Help:      "Complete lines read from the device stream.",
		}),
		readings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "readings_total",
			Help:      "DATA lines decoded into readings.",
		}),
		statusEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "status_events_total",
			Help:      "STATUS lines decoded into status events.",
		}),
		linesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "lines_dropped_total",
			Help:      "Tagged lines dropped because the payload was malformed.",
		}),
		connectionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "connection_errors_total",
			Help:      "Failed connection attempts and mid-stream I/O failures.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "connected",
			Help:      "1 while connected to the device, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		m.linesReceived,
		m.readings,
		m.statusEvents,
		m.linesDropped,
		m.connectionErrors,
		m.connected,
	)
	return m
}

func (m *IngestionMetrics) LineReceived() {
	if m == nil {
		return
	}
	m.linesReceived.Inc()
}

func (m *IngestionMetrics) LineDropped() {
	if m == nil {
		return
	}
	m.linesDropped.Inc()
}

func (m *IngestionMetrics) EventDecoded(kind entities.EventKind) {
	if m == nil {
		return
	}
	switch kind {
	case entities.EventReading:
		m.readings.Inc()
	case entities.EventStatus:
		m.statusEvents.Inc()
	}
}

func (m *IngestionMetrics) ConnectionError() {
	if m == nil {
		return
	}
	m.connectionErrors.Inc()
}

func (m *IngestionMetrics) SetConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.connected.Set(1)
		return
	}
	m.connected.Set(0)
}
