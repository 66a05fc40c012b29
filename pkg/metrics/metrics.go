package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueriesTotal    *prometheus.CounterVec
	DBQueryDuration   *prometheus.HistogramVec
	DBOpenConnections *prometheus.GaugeVec
	DBInUse           *prometheus.GaugeVec
	DBIdle            *prometheus.GaugeVec
	DBWaitCount       *prometheus.GaugeVec

	BookingsCreated       *prometheus.CounterVec
	BookingConflicts      *prometheus.CounterVec
	BookingTransitions    *prometheus.CounterVec
	PaymentAuthorizations *prometheus.CounterVec
}

// New регистрирует метрики в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry регистрирует метрики в указанном реестре (используется в тестах)
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	namespace := sanitize(serviceName)

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		DBQueriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_queries_total",
			Help:      "Total number of database queries",
		}, []string{"service", "operation", "status"}),
		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database query latency",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"service", "operation"}),
		DBOpenConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_open_connections",
			Help:      "Number of established connections",
		}, []string{"service"}),
		DBInUse: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_in_use_connections",
			Help:      "Number of connections currently in use",
		}, []string{"service"}),
		DBIdle: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_idle_connections",
			Help:      "Number of idle connections",
		}, []string{"service"}),
		DBWaitCount: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_wait_count",
			Help:      "Total number of connections waited for",
		}, []string{"service"}),

		BookingsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings created, by service type",
		}, []string{"service", "service_type"}),
		BookingConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Rejected booking writes, by reason",
		}, []string{"service", "reason"}),
		BookingTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Accepted booking status transitions",
		}, []string{"service", "from", "to"}),
		PaymentAuthorizations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_authorizations_total",
			Help:      "Payment authorization attempts, by outcome",
		}, []string{"service", "outcome"}),
	}
}

func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
