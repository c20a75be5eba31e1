package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tick delivery paths
const (
	PathSubscribe = "subscribe"
	PathPoller    = "poller"
	PathPusher    = "pusher"
)

// -----------------------------------------------------------------------------

// Metrics owns its registry so several instances (tests) never collide on
// the global default registerer.
type Metrics struct {
	Registry *prometheus.Registry

	TicksEmitted    *prometheus.CounterVec
	TicksDropped    prometheus.Counter
	LoopErrors      *prometheus.CounterVec
	Connections     prometheus.Gauge
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	SampleDataCoins prometheus.Gauge
}

// -----------------------------------------------------------------------------

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		TicksEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coinmarket_ticks_emitted_total",
			Help: "Simulated price ticks delivered to connections, by delivery path",
		}, []string{"path"}),
		TicksDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "coinmarket_ticks_dropped_total",
			Help: "Ticks dropped because a connection's send buffer was full",
		}),
		LoopErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coinmarket_loop_errors_total",
			Help: "Failed background loop iterations",
		}, []string{"task"}),
		Connections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "coinmarket_realtime_connections",
			Help: "Open realtime connections",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coinmarket_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coinmarket_http_request_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"route"}),
		SampleDataCoins: factory.NewGauge(prometheus.GaugeOpts{
			Name: "coinmarket_sample_coins",
			Help: "Coins loaded from the sample document",
		}),
	}
}

// -----------------------------------------------------------------------------

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
