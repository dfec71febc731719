package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/LuaAI777/cts-project/internal/middleware"
)

// metricSet holds all Prometheus collectors for the trust-scoring API.
type metricSet struct {
	Evaluations        *prometheus.CounterVec
	EvaluationFailures *prometheus.CounterVec
	GovernanceOps      *prometheus.CounterVec
	StoreDegraded      prometheus.Gauge
	RequestDuration    *prometheus.HistogramVec
	RequestsInFlight   prometheus.Gauge
	DBPoolActive       prometheus.GaugeFunc
	DBPoolIdle         prometheus.GaugeFunc
}

// Metrics is usable before InitMetrics; registration only exposes it.
var Metrics = newMetrics()

func newMetrics() *metricSet {
	return &metricSet{
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cts_evaluations_total",
				Help: "Completed trust evaluations, by grade.",
			},
			[]string{"grade"},
		),
		EvaluationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cts_evaluation_failures_total",
				Help: "Failed trust evaluations, by error kind.",
			},
			[]string{"kind"},
		),
		GovernanceOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cts_governance_operations_total",
				Help: "Config governance operations, by operation and outcome.",
			},
			[]string{"op", "outcome"},
		),
		StoreDegraded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cts_store_degraded",
				Help: "1 when the config store fell back to in-memory state.",
			},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cts_api_request_duration_seconds",
				Help:    "HTTP request duration in seconds, by endpoint and method.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "method", "status"},
		),
		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cts_requests_in_flight",
				Help: "Number of HTTP requests currently being served.",
			},
		),
	}
}

// InitMetrics registers all Prometheus metrics. Call once at startup. pool
// is nil unless the Postgres backend is active.
func InitMetrics(pool *pgxpool.Pool) {
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "cts_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "cts_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.Evaluations,
		Metrics.EvaluationFailures,
		Metrics.GovernanceOps,
		Metrics.StoreDegraded,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
	)
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next(); Fiber
		// returns slices backed by the fasthttp buffer which can be reused.
		endpoint := middleware.SanitizePath(string([]byte(c.Path())))
		method := string([]byte(c.Method()))

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
