package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments HTTP traffic with a request counter, a latency
// histogram, and an in-flight gauge. Requests are labeled by route
// template (gin's FullPath) rather than the raw URL so label cardinality
// stays bounded.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inflight        prometheus.Gauge
}

// NewMetrics builds the metric vectors and registers them on reg (nil uses
// the default registerer). Duplicate registration is tolerated so tests can
// construct multiple instances.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests currently being served",
		}),
	}

	for _, collector := range []prometheus.Collector{m.requestsTotal, m.requestDuration, m.inflight} {
		if err := registerCollector(reg, collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Handler returns the instrumentation middleware.
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			// Unrouted requests share one label so scans cannot mint series.
			path = "unmatched"
		}
		method := c.Request.Method

		m.inflight.Inc()
		start := time.Now()

		c.Next()

		m.inflight.Dec()
		m.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// registerCollector registers the collector, ignoring duplicates.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}
