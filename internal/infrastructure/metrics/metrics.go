package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the order-lifecycle instrumentation. A nil *Metrics is a
// valid no-op sink, so wiring it stays optional.
type Metrics struct {
	ordersCreated   prometheus.Counter
	ordersExecuted  *prometheus.CounterVec
	ordersCancelled prometheus.Counter
	quoteRefreshes  *prometheus.CounterVec
	swapDuration    prometheus.Histogram
}

// New registers the collectors with reg, or the default registerer when nil
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solswap_orders_created_total",
			Help: "Orders created",
		}),
		ordersExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solswap_orders_executed_total",
			Help: "Order executions by outcome",
		}, []string{"outcome"}),
		ordersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solswap_orders_cancelled_total",
			Help: "Orders cancelled",
		}),
		quoteRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solswap_quote_refreshes_total",
			Help: "Pending-order quote refreshes by result",
		}, []string{"result"}),
		swapDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "solswap_swap_duration_seconds",
			Help:    "Wall time of swap execution, quote to confirmation",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}

	reg.MustRegister(m.ordersCreated, m.ordersExecuted, m.ordersCancelled, m.quoteRefreshes, m.swapDuration)
	return m
}

// OrderCreated counts one created order
func (m *Metrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// OrderExecuted counts one execution with its outcome
func (m *Metrics) OrderExecuted(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ordersExecuted.WithLabelValues(outcome).Inc()
	m.swapDuration.Observe(elapsed.Seconds())
}

// OrderCancelled counts one cancellation
func (m *Metrics) OrderCancelled() {
	if m == nil {
		return
	}
	m.ordersCancelled.Inc()
}

// QuoteRefresh counts one refresh attempt
func (m *Metrics) QuoteRefresh(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.quoteRefreshes.WithLabelValues(result).Inc()
}

// Server exposes the metrics endpoint
type Server struct {
	Addr string
}

// NewServer creates a metrics server for the given listen address
func NewServer(addr string) *Server {
	return &Server{Addr: addr}
}

// Run serves /metrics until the listener fails
func (s *Server) Run() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(s.Addr, mux)
}
