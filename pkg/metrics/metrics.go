package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Decision metrics
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bastion_decisions_total",
			Help: "Total number of hook decisions by hook and verdict",
		},
		[]string{"hook", "verdict"},
	)

	AnomaliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bastion_anomalies_total",
			Help: "Total number of tolerated anomalies by hook",
		},
		[]string{"hook"},
	)

	// Lineage metrics
	LineageEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bastion_lineage_events_total",
			Help: "Total number of lineage events by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	// Table metrics
	TableEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bastion_table_entries",
			Help: "Occupied rows per shared state table",
		},
		[]string{"table"},
	)

	TableCapacity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bastion_table_capacity",
			Help: "Fixed capacity per shared state table",
		},
		[]string{"table"},
	)

	// Registration metrics
	ContainersRegistered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bastion_containers_registered",
			Help: "Containers currently registered",
		},
	)

	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bastion_registrations_total",
			Help: "Total container registration operations by kind and status",
		},
		[]string{"kind", "status"},
	)

	// Control API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bastion_api_requests_total",
			Help: "Total number of control API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bastion_api_request_duration_seconds",
			Help:    "Control API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(DecisionsTotal)
	prometheus.MustRegister(AnomaliesTotal)
	prometheus.MustRegister(LineageEventsTotal)
	prometheus.MustRegister(TableEntries)
	prometheus.MustRegister(TableCapacity)
	prometheus.MustRegister(ContainersRegistered)
	prometheus.MustRegister(RegistrationsTotal)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler returns the Prometheus exposition handler for the /metrics
// endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures a duration for histogram observation
type Timer struct {
	start time.Time
}

// NewTimer starts a timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDurationVec records the elapsed time in a histogram vec
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
