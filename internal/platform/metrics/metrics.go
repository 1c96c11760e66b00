package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can create as many as they need.
type Collector struct {
	reg *prometheus.Registry

	SolvesTotal    *prometheus.CounterVec // outcome label: ok|validation|no_feasible_arc|...
	SolveDuration  prometheus.Histogram
	StopsPerSolve  prometheus.Histogram
	WeatherSamples *prometheus.CounterVec // condition label

	StatusUpdates *prometheus.CounterVec // status label

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge

	HTTPRequests *prometheus.CounterVec // method, path, status
	HTTPDuration *prometheus.HistogramVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		SolvesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_solves_total",
			Help: "Total routing solves by outcome.",
		}, []string{"outcome"}),
		SolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "router_solve_duration_seconds",
			Help:    "Wall-clock duration of route construction.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
		}),
		StopsPerSolve: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "router_stops_per_solve",
			Help:    "Number of stops (including the depot) per solve.",
			Buckets: prometheus.ExponentialBuckets(2, 2, 10),
		}),
		WeatherSamples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_weather_total",
			Help: "Weather condition applied to solves.",
		}, []string{"condition"}),
		StatusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_status_updates_total",
			Help: "Delivery status updates recorded on the ledger.",
		}, []string{"status"}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "router_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "router_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "router_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		c.SolvesTotal, c.SolveDuration, c.StopsPerSolve, c.WeatherSamples,
		c.StatusUpdates,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
		c.HTTPRequests, c.HTTPDuration,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) SolveObserve(outcome string, stops int, d time.Duration) {
	c.SolvesTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		c.SolveDuration.Observe(d.Seconds())
		c.StopsPerSolve.Observe(float64(stops))
	}
}

func (c *Collector) WeatherObserve(condition string) {
	c.WeatherSamples.WithLabelValues(condition).Inc()
}

func (c *Collector) StatusObserve(status string) {
	c.StatusUpdates.WithLabelValues(status).Inc()
}

func (c *Collector) NATSPublishedInc() { c.NATSPublished.Inc() }
func (c *Collector) NATSPublishErrInc() { c.NATSPublishErrs.Inc() }
func (c *Collector) NATSSetConnected(ok bool) {
	if ok {
		c.NATSConnected.Set(1)
		return
	}
	c.NATSConnected.Set(0)
}

func (c *Collector) HTTPObserve(method, path string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, path).Observe(d.Seconds())
}
