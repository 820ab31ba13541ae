package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if labelsMatch(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, lp := range metric.GetLabel() {
		if want, ok := labels[lp.GetName()]; ok && want == lp.GetValue() {
			matched++
		}
	}
	return matched == len(labels)
}

func TestLeadMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeadMetrics(reg)
	m.ObserveSubmission("synced")
	m.ObserveSubmission("synced")
	m.ObserveSubmission("rejected")
	m.ObserveForward("201", 0.2)
	m.ObserveRecord(false)

	assert.Equal(t, 2.0, counterValue(t, reg, "realestate_leads_submissions_total", map[string]string{"outcome": "synced"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "realestate_leads_submissions_total", map[string]string{"outcome": "rejected"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "realestate_leads_record_total", map[string]string{"status": "failed"}))
}

func TestChatMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChatMetrics(reg)
	m.SetActiveSessions(3)
	m.ObserveTurn("completed")
	m.ObserveFirstChunk(0.4)
	m.ObserveSuggestions("parse_error")

	assert.Equal(t, 1.0, counterValue(t, reg, "realestate_chat_turns_total", map[string]string{"outcome": "completed"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "realestate_chat_suggestions_total", map[string]string{"outcome": "parse_error"}))
}

func TestMetricsNilSafe(t *testing.T) {
	var lm *LeadMetrics
	lm.ObserveSubmission("synced")
	lm.ObserveForward("500", 0.1)
	lm.ObserveRecord(true)

	var cm *ChatMetrics
	cm.SetActiveSessions(1)
	cm.ObserveTurn("failed")
	cm.ObserveFirstChunk(0.1)
	cm.ObserveSuggestions("ok")
}
