// Package metrics defines the Prometheus collectors of the intake bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "intake"

// Outcome label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics groups every collector the conversation pipeline updates.
type Metrics struct {
	registry *prometheus.Registry

	InboundMessages prometheus.Counter
	Transitions     *prometheus.CounterVec
	Replies         *prometheus.CounterVec
	Records         *prometheus.CounterVec
	StepDuration    prometheus.Histogram
	ActiveSenders   prometheus.Gauge
}

// New creates the collectors and registers them, with the Go and process collectors,
// on a dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		InboundMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_messages_total",
			Help:      "Total number of inbound messages accepted by the webhook",
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Total number of state transitions by source and target state",
		}, []string{"from", "to"}),
		Replies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_total",
			Help:      "Outgoing SMS replies by result",
		}, []string{"result"}),
		Records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Completed records appended to the sink by result",
		}, []string{"result"}),
		StepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of one conversation step, including replies and persistence",
			Buckets:   prometheus.DefBuckets,
		}),
		ActiveSenders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_senders",
			Help:      "Senders with queued or running conversation steps",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.InboundMessages,
		m.Transitions,
		m.Replies,
		m.Records,
		m.StepDuration,
		m.ActiveSenders,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Result maps an error to an outcome label.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
