package metrics

import (
	"math"
	"sort"

	"zenbot/evaluation/harness"
)

// DefaultSlowThreshold is the latency above which a response counts as
// slow, in seconds.
const DefaultSlowThreshold = 1.0

// IntentSummary aggregates the intent_is_correct column. Accuracy and
// error rate are computed over the known (yes/no) rows only; the unknown
// ratio is taken over all rows.
type IntentSummary struct {
	Insufficient bool
	Total        int
	Known        int
	Accuracy     float64
	ErrorRate    float64
	UnknownRatio float64
}

// SummarizeIntent computes intent accuracy and error rate over the records.
func SummarizeIntent(records []harness.Record) IntentSummary {
	var s IntentSummary
	s.Total = len(records)

	correct := 0
	for _, record := range records {
		if !record.Intent.Known() {
			continue
		}
		s.Known++
		if record.Intent == harness.IntentYes {
			correct++
		}
	}

	if s.Total > 0 {
		s.UnknownRatio = float64(s.Total-s.Known) / float64(s.Total)
	}
	if s.Known == 0 {
		s.Insufficient = true
		return s
	}
	s.Accuracy = float64(correct) / float64(s.Known)
	s.ErrorRate = float64(s.Known-correct) / float64(s.Known)
	return s
}

// LatencySummary is the response-time distribution in seconds.
type LatencySummary struct {
	Count     int
	Mean      float64
	Std       float64
	Min       float64
	P50       float64
	P95       float64
	P99       float64
	Max       float64
	SlowRatio float64
}

// SummarizeLatency computes distribution statistics over response times.
// Std uses the sample form (n-1); a single observation yields 0.
func SummarizeLatency(seconds []float64, slowThreshold float64) LatencySummary {
	var s LatencySummary
	s.Count = len(seconds)
	if s.Count == 0 {
		return s
	}
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowThreshold
	}

	sorted := append([]float64(nil), seconds...)
	sort.Float64s(sorted)

	slow := 0
	var sum float64
	for _, v := range sorted {
		sum += v
		if v > slowThreshold {
			slow++
		}
	}
	s.Mean = sum / float64(s.Count)
	s.Std = sampleStd(sorted, s.Mean)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P50 = percentile(sorted, 0.50)
	s.P95 = percentile(sorted, 0.95)
	s.P99 = percentile(sorted, 0.99)
	s.SlowRatio = float64(slow) / float64(s.Count)
	return s
}

// ResponseTimes extracts the latency column from quantitative records.
func ResponseTimes(records []harness.Record) []float64 {
	times := make([]float64, 0, len(records))
	for _, record := range records {
		times = append(times, record.ResponseSeconds)
	}
	return times
}

func sampleStd(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// percentile interpolates linearly between the two nearest ranks, matching
// the convention of the original analysis tooling. Input must be sorted.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := q * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
