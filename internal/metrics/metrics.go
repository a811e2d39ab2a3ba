// Package metrics exposes the prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry            *prometheus.Registry
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	intakeLoggedTotal   prometheus.Counter
	intakeLoggedMl      prometheus.Counter
	storeWriteFailures  *prometheus.CounterVec
	reminderGenerations *prometheus.CounterVec
}

func New() *Metrics {
	metrics := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waterline_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "waterline_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		intakeLoggedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waterline_intake_logged_total",
			Help: "Number of intake records logged",
		}),
		intakeLoggedMl: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waterline_intake_logged_ml_total",
			Help: "Milliliters of logged intake",
		}),
		storeWriteFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waterline_store_write_failures_total",
				Help: "Failed writes to the durable store",
			},
			[]string{"key"},
		),
		reminderGenerations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waterline_reminder_generations_total",
				Help: "Finished reminder generation runs",
			},
			[]string{"outcome"},
		),
	}

	metrics.registry.MustRegister(
		metrics.httpRequestsTotal,
		metrics.httpRequestDuration,
		metrics.intakeLoggedTotal,
		metrics.intakeLoggedMl,
		metrics.storeWriteFailures,
		metrics.reminderGenerations,
	)
	return metrics
}

func (metrics *Metrics) Registry() *prometheus.Registry {
	return metrics.registry
}

func (metrics *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{})
}

func (metrics *Metrics) IntakeLogged(amount int) {
	metrics.intakeLoggedTotal.Inc()
	metrics.intakeLoggedMl.Add(float64(amount))
}

func (metrics *Metrics) StoreWriteFailed(key string) {
	metrics.storeWriteFailures.WithLabelValues(key).Inc()
}

func (metrics *Metrics) ReminderGeneration(outcome string) {
	metrics.reminderGenerations.WithLabelValues(outcome).Inc()
}

// Middleware records request counts and latency by route template so path
// parameters do not explode the label space.
func (metrics *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		metrics.httpRequestsTotal.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		metrics.httpRequestDuration.WithLabelValues(route, c.Method()).Observe(time.Since(start).Seconds())
		return err
	}
}
