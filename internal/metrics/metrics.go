package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defialerts_runs_total",
			Help: "Total number of scheduled evaluation runs",
		},
		[]string{"status"}, // status: ok, error
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "defialerts_run_duration_seconds",
			Help:    "End-to-end duration of one evaluation run",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	ProviderFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "defialerts_provider_fetch_duration_seconds",
			Help:    "Time taken to fetch rates from one protocol provider",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"protocol"},
	)

	ProviderFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defialerts_provider_fetch_errors_total",
			Help: "Total number of failed provider fetches",
		},
		[]string{"protocol"},
	)

	RatesCollected = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "defialerts_rates_collected",
			Help: "Number of market rates collected in the latest snapshot",
		},
		[]string{"protocol"},
	)

	AlertsEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "defialerts_alerts_evaluated_total",
			Help: "Total number of alerts evaluated across runs",
		},
	)

	EventsFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defialerts_events_fired_total",
			Help: "Total number of condition breaches detected",
		},
		[]string{"condition_kind", "severity"},
	)

	EventsSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "defialerts_events_suppressed_total",
			Help: "Total number of breaches suppressed by the frequency gate",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defialerts_notifications_sent_total",
			Help: "Total number of channel deliveries attempted",
		},
		[]string{"channel", "status"}, // status: success, failed
	)
)
