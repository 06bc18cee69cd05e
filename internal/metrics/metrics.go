package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "endpoint", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	SubmissionsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "submissions_processed_total",
		Help: "Total number of billing submissions analysed",
	})

	AnomaliesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anomalies_detected_total",
		Help: "Total number of anomalous bills detected",
	})

	PeakDemandFlags = promauto.NewCounter(prometheus.CounterOpts{
		Name: "peak_demand_flags_total",
		Help: "Total number of submissions at or above the owner's previous peak",
	})

	RollingAverageBill = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rolling_average_bill",
		Help: "Rolling average of submitted bill amounts",
	})

	SideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "side_effect_failures_total",
		Help: "Failures caching or publishing analytics results",
	}, []string{"kind"})
)
