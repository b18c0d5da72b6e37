// Package metrics registers Prometheus instrumentation for the telemetry
// pipeline. Counters are nil-guarded so callers never need to check whether
// Init has run (tests exercise the pipeline without metrics).
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "plantcore_"

var (
	registerOnce sync.Once

	readingsTotal   *prometheus.CounterVec
	parseErrors     prometheus.Counter
	alertsTotal     *prometheus.CounterVec
	commandsTotal   *prometheus.CounterVec
	emailsTotal     *prometheus.CounterVec
	broadcastsTotal *prometheus.CounterVec
	wsClients       prometheus.Gauge
)

// Init registers pipeline metrics with the default Prometheus registry.
// Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		readingsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "readings_total",
				Help: "Total processed readings by QC status",
			},
			[]string{"status"},
		)
		parseErrors = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "parse_errors_total",
				Help: "Total inbound payloads dropped as unparseable",
			},
		)
		alertsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alerts_total",
				Help: "Total persisted alerts by severity",
			},
			[]string{"severity"},
		)
		commandsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "commands_total",
				Help: "Total actuation commands by command and result",
			},
			[]string{"command", "result"},
		)
		emailsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "emails_total",
				Help: "Total alert emails by outcome (sent, suppressed, failed)",
			},
			[]string{"outcome"},
		)
		broadcastsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "broadcasts_total",
				Help: "Total WebSocket broadcasts by event type",
			},
			[]string{"type"},
		)
		wsClients = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "ws_clients",
				Help: "Currently connected WebSocket clients",
			},
		)

		prometheus.MustRegister(
			readingsTotal,
			parseErrors,
			alertsTotal,
			commandsTotal,
			emailsTotal,
			broadcastsTotal,
			wsClients,
		)
	})
}

// Email outcome labels.
const (
	EmailSent       = "sent"
	EmailSuppressed = "suppressed"
	EmailFailed     = "failed"
)

// Command result labels.
const (
	CommandOK     = "ok"
	CommandFailed = "failed"
)

// IncReading counts a processed reading by QC status.
func IncReading(status string) {
	if readingsTotal != nil {
		readingsTotal.WithLabelValues(status).Inc()
	}
}

// IncParseError counts a dropped, unparseable payload.
func IncParseError() {
	if parseErrors != nil {
		parseErrors.Inc()
	}
}

// IncAlert counts a persisted alert by severity.
func IncAlert(severity string) {
	if alertsTotal != nil {
		alertsTotal.WithLabelValues(severity).Inc()
	}
}

// IncCommand counts an actuation command attempt.
func IncCommand(command, result string) {
	if commandsTotal != nil {
		commandsTotal.WithLabelValues(command, result).Inc()
	}
}

// IncEmail counts an alert email by outcome.
func IncEmail(outcome string) {
	if emailsTotal != nil {
		emailsTotal.WithLabelValues(outcome).Inc()
	}
}

// IncBroadcast counts a WebSocket broadcast by event type.
func IncBroadcast(eventType string) {
	if broadcastsTotal != nil {
		broadcastsTotal.WithLabelValues(eventType).Inc()
	}
}

// SetWSClients records the current WebSocket client count.
func SetWSClients(n int) {
	if wsClients != nil {
		wsClients.Set(float64(n))
	}
}
