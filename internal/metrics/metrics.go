package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Label value constants to prevent typos
const (
	// Activity outcomes
	OutcomeSynced          = "synced"
	OutcomeDuplicate       = "duplicate"
	OutcomeUnsupportedType = "unsupported_type"
	OutcomeFailed          = "failed"

	// API services
	ServiceStrava = "strava"
	ServiceNotion = "notion"

	// Strava API operations
	OpRefreshToken   = "refresh_token"
	OpListActivities = "list_activities"

	// Notion API operations
	OpQueryActivities = "query_activities"
	OpCreatePage      = "create_page"
	OpQueryPlanned    = "query_planned"
	OpUpdateRelation  = "update_relation"
	OpUpdateStatus    = "update_status"
)

// Sync run metrics
var (
	ActivitiesFetchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_activities_fetched_total",
			Help: "Total number of activities fetched from Strava",
		},
	)

	ActivitiesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_activities_processed_total",
			Help: "Total number of activities processed, by outcome",
		},
		[]string{"outcome"},
	)

	PlannedActivitiesLinkedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_planned_activities_linked_total",
			Help: "Total number of planned activities linked and marked done",
		},
	)

	RunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_run_duration_seconds",
			Help: "Duration of the last sync run in seconds",
		},
	)
)

// Outbound API metrics
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_api_requests_total",
			Help: "Total number of outbound API requests, by service, operation and status code",
		},
		[]string{"service", "operation", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_api_request_duration_seconds",
			Help:    "Outbound API request latency in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"service", "operation"},
	)
)

// Push sends all registered metrics to a Pushgateway. The process is a
// one-shot batch job, so metrics are pushed at the end of the run instead
// of being served from an endpoint.
func Push(url, job string) error {
	return push.New(url, job).
		Gatherer(prometheus.DefaultGatherer).
		Push()
}
