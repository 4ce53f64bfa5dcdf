package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/karacalc/internal/karatsuba"
)

const namespace = "karacalc"

// Metrics groups the Prometheus collectors of the HTTP service. Each
// instance owns its registry, so several can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	activeRequests  prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	multiplications    *prometheus.CounterVec
	multiplyDuration   *prometheus.HistogramVec
	productDigits      prometheus.Histogram
	splitNodes         prometheus.Counter
	maxRecursionDepth  prometheus.Gauge
	parallelSpawnTotal prometheus.Counter
}

// NewMetrics registers the karacalc collectors together with the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_requests",
			Help:      "Number of HTTP requests being served.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests by path and status code.",
		}, []string{"path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		multiplications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "multiplications_total",
			Help:      "Multiplications by algorithm and outcome.",
		}, []string{"algorithm", "result"}),
		multiplyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "multiplication_duration_seconds",
			Help:      "Time spent in a multiplication.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 14),
		}, []string{"algorithm"}),
		productDigits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "product_digits",
			Help:      "Decimal digit count of computed products.",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 8),
		}),
		splitNodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "karatsuba_split_nodes_total",
			Help:      "Karatsuba split nodes evaluated.",
		}),
		maxRecursionDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "karatsuba_last_max_depth",
			Help:      "Recursion depth of the latest Karatsuba multiplication.",
		}),
		parallelSpawnTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "karatsuba_parallel_spawns_total",
			Help:      "Sub-products run on their own goroutine.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.activeRequests, m.requestsTotal, m.requestDuration,
		m.multiplications, m.multiplyDuration, m.productDigits,
		m.splitNodes, m.maxRecursionDepth, m.parallelSpawnTotal,
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// Handler returns the /metrics handler.
func (m *Metrics) Handler() http.Handler { return m.handler }

// WritePrometheus serves the exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(path string, status int, d time.Duration) {
	m.requestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(d.Seconds())
}

// ObserveMultiplication records one multiplication. stats may be nil for
// algorithms that do not report recursion statistics.
func (m *Metrics) ObserveMultiplication(algorithm string, d time.Duration, productDigits int, stats *karatsuba.Stats, err error) {
	if err != nil {
		m.multiplications.WithLabelValues(algorithm, "error").Inc()
		return
	}
	m.multiplications.WithLabelValues(algorithm, "success").Inc()
	m.multiplyDuration.WithLabelValues(algorithm).Observe(d.Seconds())
	m.productDigits.Observe(float64(productDigits))
	if stats != nil {
		m.splitNodes.Add(float64(stats.SplitNodes))
		m.maxRecursionDepth.Set(float64(stats.MaxDepth))
		m.parallelSpawnTotal.Add(float64(stats.ParallelSpawns))
	}
}
