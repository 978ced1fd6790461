package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "registry"

// Metrics holds the collectors exported by a registry process.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	eventsTotal     *prometheus.CounterVec
	journalHead     prometheus.Gauge
	tokensMinted    prometheus.Gauge
	subscribers     prometheus.Gauge
	droppedFrames   prometheus.Counter
}

// New registers the registry collectors on a fresh registry, along with the
// Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(registry, registry)
}

// NewWithRegistry registers the registry collectors on registerer and serves
// them from gatherer.
func NewWithRegistry(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		gatherer: gatherer,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "Total gRPC requests by method and status code",
		}, []string{"method", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_request_duration_seconds",
			Help:      "gRPC request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "journal_events_total",
			Help:      "Committed journal events by type",
		}, []string{"type"}),
		journalHead: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "journal_head_seq",
			Help:      "Sequence number of the latest committed journal event",
		}),
		tokensMinted: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tokens_minted",
			Help:      "Number of tokens minted so far",
		}),
		subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_subscribers",
			Help:      "Connected live event feed subscribers",
		}),
		droppedFrames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_dropped_frames_total",
			Help:      "Feed frames dropped for slow subscribers",
		}),
	}
}

// ObserveRequest records one finished gRPC call.
func (m *Metrics) ObserveRequest(method, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, code).Inc()
	m.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveEvent records one committed journal event.
func (m *Metrics) ObserveEvent(eventType string, seq uint64) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(eventType).Inc()
	m.journalHead.Set(float64(seq))
}

// SetTokenCount records the number of minted tokens.
func (m *Metrics) SetTokenCount(count uint64) {
	if m == nil {
		return
	}
	m.tokensMinted.Set(float64(count))
}

// SubscriberJoined increments the live feed subscriber gauge.
func (m *Metrics) SubscriberJoined() {
	if m == nil {
		return
	}
	m.subscribers.Inc()
}

// SubscriberLeft decrements the live feed subscriber gauge.
func (m *Metrics) SubscriberLeft() {
	if m == nil {
		return
	}
	m.subscribers.Dec()
}

// FrameDropped counts a feed frame skipped for a slow subscriber.
func (m *Metrics) FrameDropped() {
	if m == nil {
		return
	}
	m.droppedFrames.Inc()
}

// Handler serves the gathered metrics in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
