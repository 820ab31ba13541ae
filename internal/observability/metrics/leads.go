package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for lead intake and CRM forwarding.
type LeadMetrics struct {
	submissions    *prometheus.CounterVec
	forwardLatency *prometheus.HistogramVec
	recordTotal    *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "realestate",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Lead submissions by outcome",
		}, []string{"outcome"}),
		forwardLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "realestate",
			Subsystem: "leads",
			Name:      "boldtrail_latency_seconds",
			Help:      "Latency of BoldTrail contact creation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		recordTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "realestate",
			Subsystem: "leads",
			Name:      "record_total",
			Help:      "Best-effort lead record inserts by status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissions, m.forwardLatency, m.recordTotal)
	return m
}

// ObserveSubmission counts one intake attempt. Outcome is one of
// "synced", "rejected", "upstream_error", "unreachable", "misconfigured", "error".
func (m *LeadMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveForward(status string, seconds float64) {
	if m == nil {
		return
	}
	m.forwardLatency.WithLabelValues(status).Observe(seconds)
}

func (m *LeadMetrics) ObserveRecord(ok bool) {
	if m == nil {
		return
	}
	label := "ok"
	if !ok {
		label = "failed"
	}
	m.recordTotal.WithLabelValues(label).Inc()
}
