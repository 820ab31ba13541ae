package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the conversational session.
type ChatMetrics struct {
	sessions        prometheus.Gauge
	turns           *prometheus.CounterVec
	firstChunk      prometheus.Histogram
	suggestionTotal *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "realestate",
			Subsystem: "chat",
			Name:      "active_sessions",
			Help:      "Chat sessions currently held in memory",
		}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "realestate",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Assistant turns by outcome",
		}, []string{"outcome"}),
		firstChunk: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "realestate",
			Subsystem: "chat",
			Name:      "first_chunk_seconds",
			Help:      "Time from user message to first streamed chunk",
			Buckets:   prometheus.DefBuckets,
		}),
		suggestionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "realestate",
			Subsystem: "chat",
			Name:      "suggestions_total",
			Help:      "Follow-up suggestion requests by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessions, m.turns, m.firstChunk, m.suggestionTotal)
	return m
}

func (m *ChatMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

func (m *ChatMetrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(outcome).Inc()
}

func (m *ChatMetrics) ObserveFirstChunk(seconds float64) {
	if m == nil {
		return
	}
	m.firstChunk.Observe(seconds)
}

func (m *ChatMetrics) ObserveSuggestions(outcome string) {
	if m == nil {
		return
	}
	m.suggestionTotal.WithLabelValues(outcome).Inc()
}
