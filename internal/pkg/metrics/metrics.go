package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Routing query outcomes.
const (
	OutcomeFound        = "found"
	OutcomeNoRoute      = "no_route"
	OutcomeStopNotFound = "stop_not_found"
	OutcomeError        = "error"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transitcat",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "transitcat",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "transitcat",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Transit-specific metrics
	RoutingQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transitcat",
		Subsystem: "routing",
		Name:      "queries_total",
		Help:      "Total itinerary queries by outcome",
	}, []string{"outcome"})

	RoutingQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "transitcat",
		Subsystem: "routing",
		Name:      "query_duration_seconds",
		Help:      "Duration of itinerary queries, cache misses only",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	GraphBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "transitcat",
		Subsystem: "graph",
		Name:      "build_duration_seconds",
		Help:      "Duration of network snapshot builds",
		Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60},
	})

	GraphVertices = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "transitcat",
		Subsystem: "graph",
		Name:      "vertices",
		Help:      "Vertices in the active routing graph",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "transitcat",
		Subsystem: "graph",
		Name:      "edges",
		Help:      "Edges in the active routing graph",
	})

	NATSRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transitcat",
		Subsystem: "nats",
		Name:      "requests_total",
		Help:      "Total NATS query requests handled",
	}, []string{"subject", "status"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transitcat",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transitcat",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "transitcat",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "transitcat",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "transitcat",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// ObserveGraph records the size of a freshly built routing graph.
func ObserveGraph(vertices, edges int, took time.Duration) {
	GraphVertices.Set(float64(vertices))
	GraphEdges.Set(float64(edges))
	GraphBuildDuration.Observe(took.Seconds())
}

// UpdateDBPoolMetrics updates database pool metrics from pgx pool stats.
func UpdateDBPoolMetrics(stat interface{}) {
	// Matches *pgxpool.Stat without importing pgxpool here.
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
