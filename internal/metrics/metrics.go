package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "plumb_sentinel"

// Metrics wraps Prometheus collectors for plumb-sentinel.
type Metrics struct {
	registry                   *prometheus.Registry
	cycleDurationSeconds       *prometheus.HistogramVec
	unitsTotal                 *prometheus.GaugeVec
	assessmentsTotal           *prometheus.CounterVec
	assessmentDurationSeconds  prometheus.Histogram
	alertsTotal                *prometheus.CounterVec
	fetchErrorsTotal           *prometheus.CounterVec
	assessmentErrorsTotal      *prometheus.CounterVec
	notificationErrorsTotal    *prometheus.CounterVec
	unitHealthScore            *prometheus.GaugeVec
	unitFailureProbability     *prometheus.GaugeVec
	lastSuccessfulCycleSeconds *prometheus.GaugeVec
}

// New initializes a Metrics registry with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		cycleDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of inventory evaluation cycles in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"feed"}),
		unitsTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "units_total",
			Help:      "Units by feed and verdict badge.",
		}, []string{"feed", "badge"}),
		assessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Completed assessments by equipment family and action.",
		}, []string{"family", "action"}),
		assessmentDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assessment_duration_seconds",
			Help:      "Duration of single unit assessments in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts emitted by feed and severity.",
		}, []string{"feed", "severity"}),
		fetchErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_fetch_errors_total",
			Help:      "Inventory fetch errors after retries.",
		}, []string{"feed"}),
		assessmentErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessment_errors_total",
			Help:      "Units rejected with configuration errors.",
		}, []string{"feed"}),
		notificationErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_errors_total",
			Help:      "Failed notification deliveries.",
		}, []string{"feed"}),
		unitHealthScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unit_health_score",
			Help:      "Latest health score per unit (0-100).",
		}, []string{"feed", "unit"}),
		unitFailureProbability: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unit_failure_probability",
			Help:      "Latest failure probability per unit (percent).",
		}, []string{"feed", "unit"}),
		lastSuccessfulCycleSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of the last successful cycle.",
		}, []string{"feed"}),
	}

	registry.MustRegister(
		m.cycleDurationSeconds,
		m.unitsTotal,
		m.assessmentsTotal,
		m.assessmentDurationSeconds,
		m.alertsTotal,
		m.fetchErrorsTotal,
		m.assessmentErrorsTotal,
		m.notificationErrorsTotal,
		m.unitHealthScore,
		m.unitFailureProbability,
		m.lastSuccessfulCycleSeconds,
	)

	return m
}

// Handler returns a Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCycleDuration records the duration of a completed cycle.
func (m *Metrics) ObserveCycleDuration(feed string, duration time.Duration) {
	if m == nil {
		return
	}
	m.cycleDurationSeconds.WithLabelValues(feed).Observe(duration.Seconds())
}

// SetUnitsTotal sets the units gauge for the given feed/badge.
func (m *Metrics) SetUnitsTotal(feed, badge string, value int) {
	if m == nil {
		return
	}
	m.unitsTotal.WithLabelValues(feed, badge).Set(float64(value))
}

// ObserveAssessment counts a completed assessment and its duration.
func (m *Metrics) ObserveAssessment(family, action string, duration time.Duration) {
	if m == nil {
		return
	}
	m.assessmentsTotal.WithLabelValues(family, action).Inc()
	m.assessmentDurationSeconds.Observe(duration.Seconds())
}

// IncAlertsTotal increments the alerts counter for the given feed/severity.
func (m *Metrics) IncAlertsTotal(feed, severity string) {
	if m == nil {
		return
	}
	m.alertsTotal.WithLabelValues(feed, severity).Inc()
}

func (m *Metrics) IncFetchErrors(feed string) {
	if m == nil {
		return
	}
	m.fetchErrorsTotal.WithLabelValues(feed).Inc()
}

func (m *Metrics) IncAssessmentErrors(feed string) {
	if m == nil {
		return
	}
	m.assessmentErrorsTotal.WithLabelValues(feed).Inc()
}

func (m *Metrics) IncNotificationErrors(feed string) {
	if m == nil {
		return
	}
	m.notificationErrorsTotal.WithLabelValues(feed).Inc()
}

// SetUnitHealth publishes the latest score and failure probability of a unit.
func (m *Metrics) SetUnitHealth(feed, unit string, score, failureProbability float64) {
	if m == nil {
		return
	}
	m.unitHealthScore.WithLabelValues(feed, unit).Set(score)
	m.unitFailureProbability.WithLabelValues(feed, unit).Set(failureProbability)
}

// DeleteUnit drops per-unit series for a unit that left the inventory.
func (m *Metrics) DeleteUnit(feed, unit string) {
	if m == nil {
		return
	}
	m.unitHealthScore.DeleteLabelValues(feed, unit)
	m.unitFailureProbability.DeleteLabelValues(feed, unit)
}

// SetLastSuccessfulCycleTimestamp sets the last successful cycle time.
func (m *Metrics) SetLastSuccessfulCycleTimestamp(feed string, t time.Time) {
	if m == nil {
		return
	}
	m.lastSuccessfulCycleSeconds.WithLabelValues(feed).Set(float64(t.Unix()))
}
