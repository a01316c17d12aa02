package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/samirrijal/checkout/internal/core/domain"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "checkout",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "checkout",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Checkout-specific metrics
	checkoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "checkout",
		Name:      "request_duration_ms",
		Help:      "Checkout processing duration in milliseconds",
		Buckets:   []float64{10, 25, 50, 75, 100, 125, 150, 200, 300, 500, 1000},
	})

	checkoutRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "requests_total",
		Help:      "Total checkout requests by outcome",
	}, []string{"outcome"})

	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "orders_created_total",
		Help:      "Total orders created",
	})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "checkout",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "checkout",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "checkout",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "checkout",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Outcome label values for checkout_requests_total.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Sink forwards recorded checkout samples to Prometheus. It implements
// ports.SampleSink.
type Sink struct{}

func (Sink) ObserveCheckout(durationMs float64, success bool) {
	checkoutDuration.Observe(durationMs)
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeError
	}
	checkoutRequests.WithLabelValues(outcome).Inc()
}

func (Sink) OrderCreated() {
	ordersCreated.Inc()
}

// RegisterBudgetGauges exposes error-budget fields as gauges evaluated at
// scrape time. Call once per process.
func RegisterBudgetGauges(reg prometheus.Registerer, snapshot func() domain.BudgetSnapshot) {
	gauge := func(name, help string, value func(domain.BudgetSnapshot) float64) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "checkout",
			Subsystem: "slo",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(snapshot()) })
	}

	reg.MustRegister(
		gauge("error_rate", "Cumulative checkout error rate",
			func(s domain.BudgetSnapshot) float64 { return s.ErrorRate }),
		gauge("p95_latency_ms", "p95 checkout latency over the recent sample window",
			func(s domain.BudgetSnapshot) float64 { return s.P95LatencyMs }),
		gauge("remaining_budget", "Remaining error budget against the 2% target",
			func(s domain.BudgetSnapshot) float64 { return s.RemainingBudget }),
	)
}

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
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics updates database pool gauges from a pgxpool.Stat.
func UpdateDBPoolMetrics(stat interface{}) {
	// Accept an interface so this package does not import pgxpool.
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
