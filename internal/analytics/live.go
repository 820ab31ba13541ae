package analytics

import (
	"math"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const firstChunkMetric = "realestate_chat_first_chunk_seconds"

// LiveLatency summarizes time-to-first-chunk since process start, read from
// the in-process Prometheus histogram.
type LiveLatency struct {
	Total int64   `json:"total"`
	P50Ms float64 `json:"p50_ms"`
	P90Ms float64 `json:"p90_ms"`
}

func snapshotFirstChunk(gatherer prometheus.Gatherer) LiveLatency {
	if gatherer == nil {
		return LiveLatency{}
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return LiveLatency{}
	}

	var hist *dto.Histogram
	for _, mf := range mfs {
		if mf.GetName() != firstChunkMetric || len(mf.GetMetric()) == 0 {
			continue
		}
		hist = mf.GetMetric()[0].GetHistogram()
		break
	}
	if hist == nil || hist.GetSampleCount() == 0 {
		return LiveLatency{}
	}

	cumulative := map[float64]uint64{}
	uppers := make([]float64, 0, len(hist.GetBucket()))
	for _, b := range hist.GetBucket() {
		cumulative[b.GetUpperBound()] = b.GetCumulativeCount()
		uppers = append(uppers, b.GetUpperBound())
	}
	sort.Float64s(uppers)

	total := hist.GetSampleCount()
	return LiveLatency{
		Total: int64(total),
		P50Ms: bucketQuantile(0.5, total, uppers, cumulative) * 1000,
		P90Ms: bucketQuantile(0.9, total, uppers, cumulative) * 1000,
	}
}

// bucketQuantile returns the upper bound of the first bucket whose cumulative
// count reaches q of the total.
func bucketQuantile(q float64, total uint64, uppers []float64, cumulative map[float64]uint64) float64 {
	target := uint64(math.Ceil(q * float64(total)))
	last := 0.0
	for _, upper := range uppers {
		if math.IsInf(upper, 1) {
			break
		}
		last = upper
		if cumulative[upper] >= target {
			return upper
		}
	}
	return last
}
