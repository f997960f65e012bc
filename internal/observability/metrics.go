package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatlink_http_requests_total",
			Help: "Total number of HTTP requests processed by the service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatlink_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatlink_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatlink_ws_events_total",
			Help: "Total number of websocket lifecycle events.",
		},
		[]string{"event"},
	)
	routedEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatlink_routed_events_total",
			Help: "Total number of events routed to live connections.",
		},
		[]string{"event", "outcome"},
	)
	dispatchedItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatlink_dispatched_items_total",
			Help: "Total number of due items processed by the dispatcher.",
		},
		[]string{"kind"},
	)
	dispatchTickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chatlink_dispatch_tick_duration_seconds",
			Help:    "Duration of dispatcher ticks in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chatlink_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		routedEventsTotal,
		dispatchedItemsTotal,
		dispatchTickDuration,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

// IncRoutedEvent records one routing attempt; outcome is "sent",
// "dropped" (recipient offline) or "failed" (write error).
func IncRoutedEvent(event, outcome string) {
	routedEventsTotal.WithLabelValues(event, outcome).Inc()
}

func IncDispatchedItem(kind string) {
	dispatchedItemsTotal.WithLabelValues(kind).Inc()
}

func ObserveDispatchTick(d time.Duration) {
	dispatchTickDuration.Observe(d.Seconds())
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
