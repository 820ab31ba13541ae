package analytics

import (
	"math"
	"sort"

	"github.com/wolfman30/realestate-chatbot/internal/events"
)

const dayLayout = "2006-01-02"

// DayCount is the number of session opens on one UTC calendar date.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Summary is the 30-day usage rollup.
type Summary struct {
	TotalConversations         int        `json:"total_conversations"`
	UniqueSessions             int        `json:"unique_sessions"`
	AvgMessagesPerConversation int        `json:"avg_messages_per_conversation"`
	AvgLatencyMS               int        `json:"avg_latency_ms"`
	PerDay                     []DayCount `json:"per_day"`
}

// Summarize computes the rollup from the three row sets. Message counts are
// averaged over sessions that have an open event; latency averages only
// positive finite values.
func Summarize(opens []events.Event, messages []events.Message, assists []events.Message) Summary {
	sessions := make(map[string]struct{}, len(opens))
	for _, ev := range opens {
		sessions[ev.SessionID] = struct{}{}
	}

	perSession := make(map[string]int)
	for _, m := range messages {
		perSession[m.SessionID]++
	}

	avgMessages := 0
	if len(sessions) > 0 {
		total := 0
		for id := range sessions {
			total += perSession[id]
		}
		avgMessages = int(math.Round(float64(total) / float64(len(sessions))))
	}

	return Summary{
		TotalConversations:         len(opens),
		UniqueSessions:             len(sessions),
		AvgMessagesPerConversation: avgMessages,
		AvgLatencyMS:               averageLatency(assists),
		PerDay:                     histogramByDay(opens),
	}
}

func averageLatency(assists []events.Message) int {
	var sum float64
	var n int
	for _, m := range assists {
		v := m.Latency()
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

func histogramByDay(opens []events.Event) []DayCount {
	counts := make(map[string]int)
	for _, ev := range opens {
		counts[ev.CreatedAt.UTC().Format(dayLayout)]++
	}
	out := make([]DayCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, DayCount{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
