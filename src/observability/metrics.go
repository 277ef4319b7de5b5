// Package observability provides Prometheus metrics for the feed and server.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Feed metrics
	FeedTicks      prometheus.Counter
	UpdatesEmitted prometheus.Counter
	HandlerFaults  *prometheus.CounterVec
	UpdatesApplied prometheus.Counter
	UpdatesMissed  prometheus.Counter

	// Generation metrics
	BatchesGenerated *prometheus.CounterVec
	TokensListed     prometheus.Counter

	// Store metrics
	TokensTracked *prometheus.GaugeVec

	// Server metrics
	WSClients          prometheus.Gauge
	MessagesBroadcast  *prometheus.CounterVec
	SlowClientsDropped prometheus.Counter
}

// NewMetrics creates a Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_pulse"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		FeedTicks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "ticks_total",
			Help:      "Total number of feed ticks that produced a batch",
		}),
		UpdatesEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "updates_emitted_total",
			Help:      "Total number of price updates emitted by the feed",
		}),
		HandlerFaults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "handler_faults_total",
			Help:      "Subscriber handler panics recovered by the feed",
		}, []string{"source"}),
		UpdatesApplied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "updates_applied_total",
			Help:      "Price updates that matched a token in the store",
		}),
		UpdatesMissed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "updates_unmatched_total",
			Help:      "Price updates that referenced an unknown token id",
		}),
		BatchesGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "batches_total",
			Help:      "Progressive generator batches delivered",
		}, []string{"category"}),
		TokensListed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "listings_total",
			Help:      "Tokens added by the listing job",
		}),
		TokensTracked: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "tokens",
			Help:      "Tokens currently held per category",
		}, []string{"category"}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "ws_clients",
			Help:      "Connected websocket clients",
		}),
		MessagesBroadcast: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "messages_broadcast_total",
			Help:      "Envelopes broadcast to websocket clients",
		}, []string{"type"}),
		SlowClientsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "slow_clients_dropped_total",
			Help:      "Websocket clients dropped for not keeping up",
		}),
	}
}

// Handler returns the HTTP handler exposing this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveTick records one delivered feed batch.
func (m *Metrics) ObserveTick(updates int) {
	if m == nil {
		return
	}
	m.FeedTicks.Inc()
	m.UpdatesEmitted.Add(float64(updates))
}

func (m *Metrics) ObserveHandlerFault(source string) {
	if m == nil {
		return
	}
	m.HandlerFaults.WithLabelValues(source).Inc()
}

// ObserveApplied records matched and unmatched update counts.
func (m *Metrics) ObserveApplied(matched, missed int) {
	if m == nil {
		return
	}
	m.UpdatesApplied.Add(float64(matched))
	m.UpdatesMissed.Add(float64(missed))
}

func (m *Metrics) ObserveBatch(category string) {
	if m == nil {
		return
	}
	m.BatchesGenerated.WithLabelValues(category).Inc()
}

func (m *Metrics) ObserveListing() {
	if m == nil {
		return
	}
	m.TokensListed.Inc()
}

func (m *Metrics) SetTokenCount(category string, n int) {
	if m == nil {
		return
	}
	m.TokensTracked.WithLabelValues(category).Set(float64(n))
}

func (m *Metrics) SetClients(n int) {
	if m == nil {
		return
	}
	m.WSClients.Set(float64(n))
}

func (m *Metrics) ObserveBroadcast(messageType string) {
	if m == nil {
		return
	}
	m.MessagesBroadcast.WithLabelValues(messageType).Inc()
}

func (m *Metrics) ObserveSlowClient() {
	if m == nil {
		return
	}
	m.SlowClientsDropped.Inc()
}
