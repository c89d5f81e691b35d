// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ordertracker"

// Collector implements ports.Metrics and the HTTP middleware on one registry.
type Collector struct {
	transitions   *prometheus.CounterVec
	webhookEvents *prometheus.CounterVec
	courierPushes *prometheus.CounterVec
	notifications *prometheus.CounterVec

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. Each registry accepts one Collector.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Transition requests by source and result.",
			},
			[]string{"source", "result"},
		),
		webhookEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_events_total",
				Help:      "Inbound courier events by outcome.",
			},
			[]string{"outcome"},
		),
		courierPushes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "courier_pushes_total",
				Help:      "Outbound courier push attempts by outcome.",
			},
			[]string{"outcome"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Notifications by channel and outcome.",
			},
			[]string{"channel", "outcome"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Request latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (c *Collector) TransitionObserved(source, result string) {
	c.transitions.WithLabelValues(source, result).Inc()
}

func (c *Collector) WebhookEventObserved(outcome string) {
	c.webhookEvents.WithLabelValues(outcome).Inc()
}

func (c *Collector) CourierPushObserved(outcome string) {
	c.courierPushes.WithLabelValues(outcome).Inc()
}

func (c *Collector) NotificationObserved(channel, outcome string) {
	c.notifications.WithLabelValues(channel, outcome).Inc()
}

// Middleware counts requests per route template, so path parameters do not
// blow up cardinality. Requests that match no route are labelled "unmatched".
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil {
				// let the error handler write the response so the status is final
				ctx.Error(err)
			}

			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			method := ctx.Request().Method

			c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(ctx.Response().Status)).Inc()
			c.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
