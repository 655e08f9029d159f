package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	apiRequestsTotal       *prometheus.CounterVec
	apiLatencySeconds      *prometheus.HistogramVec
	apiErrorsTotal         *prometheus.CounterVec
	fetchCyclesTotal       *prometheus.CounterVec
	courseFallbacksTotal   prometheus.Counter
	courseFailuresTotal    prometheus.Counter
	assignmentsKeptTotal   prometheus.Counter
	advisoryOutcomesTotal  *prometheus.CounterVec
	preferenceCacheResults *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API and the planning pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		fetchCyclesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_fetch_cycles_total",
			Help: "Assignment fetch cycles by outcome.",
		}, []string{"outcome"})

		courseFallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_course_fallbacks_total",
			Help: "Times the favorites listing failed and active courses were used instead.",
		})

		courseFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_course_assignment_failures_total",
			Help: "Per-course assignment fetches that failed and contributed nothing.",
		})

		assignmentsKeptTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_assignments_prioritized_total",
			Help: "Assignments that survived filtering and were prioritized.",
		})

		advisoryOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_advisory_outcomes_total",
			Help: "Start date recommendations by source.",
		}, []string{"outcome"})

		preferenceCacheResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "preferences_cache_lookups_total",
			Help: "Preference cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			fetchCyclesTotal,
			courseFallbacksTotal,
			courseFailuresTotal,
			assignmentsKeptTotal,
			advisoryOutcomesTotal,
			preferenceCacheResults,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// FetchCycles counts completed fetch cycles labelled "success" or "failure".
func FetchCycles() *prometheus.CounterVec {
	RegisterMetrics()
	return fetchCyclesTotal
}

// CourseFallbacks counts favorites-to-active course listing fallbacks.
func CourseFallbacks() prometheus.Counter {
	RegisterMetrics()
	return courseFallbacksTotal
}

// CourseFailures counts absorbed per-course assignment fetch failures.
func CourseFailures() prometheus.Counter {
	RegisterMetrics()
	return courseFailuresTotal
}

// AssignmentsPrioritized counts assignments returned to callers.
func AssignmentsPrioritized() prometheus.Counter {
	RegisterMetrics()
	return assignmentsKeptTotal
}

// AdvisoryOutcomes counts start dates by source: "ai", "fallback" or "buffer".
func AdvisoryOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return advisoryOutcomesTotal
}

// PreferenceCache counts preference cache lookups labelled "hit", "miss" or "error".
func PreferenceCache() *prometheus.CounterVec {
	RegisterMetrics()
	return preferenceCacheResults
}
