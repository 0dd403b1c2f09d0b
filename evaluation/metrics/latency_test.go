package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"zenbot/evaluation/harness"
)

func TestSummarizeIntent(t *testing.T) {
	records := []harness.Record{
		{Intent: harness.IntentYes},
		{Intent: harness.IntentYes},
		{Intent: harness.IntentYes},
		{Intent: harness.IntentNo},
	}
	s := SummarizeIntent(records)

	assert.False(t, s.Insufficient)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 4, s.Known)
	assert.InDelta(t, 0.75, s.Accuracy, 1e-9)
	assert.InDelta(t, 0.25, s.ErrorRate, 1e-9)
	assert.Zero(t, s.UnknownRatio)
}

func TestSummarizeIntentExcludesUnknown(t *testing.T) {
	records := []harness.Record{
		{Intent: harness.IntentYes},
		{Intent: harness.IntentUnknown},
	}
	s := SummarizeIntent(records)

	assert.False(t, s.Insufficient)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Known)
	assert.InDelta(t, 1.0, s.Accuracy, 1e-9, "unknown rows stay out of the accuracy denominator")
	assert.Zero(t, s.ErrorRate)
	assert.InDelta(t, 0.5, s.UnknownRatio, 1e-9)
}

func TestSummarizeIntentAllUnknown(t *testing.T) {
	records := []harness.Record{
		{Intent: harness.IntentUnknown},
		{Intent: harness.IntentUnknown},
	}
	s := SummarizeIntent(records)

	assert.True(t, s.Insufficient)
	assert.InDelta(t, 1.0, s.UnknownRatio, 1e-9)
}

func TestSummarizeIntentEmpty(t *testing.T) {
	s := SummarizeIntent(nil)
	assert.True(t, s.Insufficient)
}

func TestSummarizeLatency(t *testing.T) {
	seconds := []float64{0.1, 0.2, 0.3, 0.4, 2.0}
	s := SummarizeLatency(seconds, DefaultSlowThreshold)

	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 0.6, s.Mean, 1e-9)
	assert.InDelta(t, 0.1, s.Min, 1e-9)
	assert.InDelta(t, 2.0, s.Max, 1e-9)
	assert.InDelta(t, 0.3, s.P50, 1e-9)
	// Linear interpolation between the two highest ranks.
	assert.InDelta(t, 1.68, s.P95, 1e-9)
	assert.InDelta(t, 1.936, s.P99, 1e-9)
	assert.InDelta(t, 0.2, s.SlowRatio, 1e-9)
	// Sample standard deviation of {0.1, 0.2, 0.3, 0.4, 2.0}.
	assert.InDelta(t, 0.79056942, s.Std, 1e-6)
}

func TestSummarizeLatencySingleObservation(t *testing.T) {
	s := SummarizeLatency([]float64{0.25}, 0)

	assert.Equal(t, 1, s.Count)
	assert.InDelta(t, 0.25, s.Mean, 1e-9)
	assert.InDelta(t, 0.25, s.P50, 1e-9)
	assert.InDelta(t, 0.25, s.P99, 1e-9)
	assert.Zero(t, s.Std)
}

func TestSummarizeLatencyEmpty(t *testing.T) {
	s := SummarizeLatency(nil, 0)
	assert.Zero(t, s.Count)
	assert.Zero(t, s.Mean)
}

func TestResponseTimes(t *testing.T) {
	records := []harness.Record{
		{ResponseSeconds: 0.5},
		{ResponseSeconds: 1.5},
	}
	assert.Equal(t, []float64{0.5, 1.5}, ResponseTimes(records))
}
