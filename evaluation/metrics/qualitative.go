package metrics

import (
	"math"
	"sort"

	"zenbot/evaluation/harness"
)

// ScoreColumns are the qualitative columns in correlation-matrix order.
var ScoreColumns = []string{"naturalness", "coherence", "helpfulness", "binary_pass"}

// Descriptive holds per-column distribution statistics.
type Descriptive struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	P25   float64
	P50   float64
	P75   float64
	Max   float64
}

// Describe computes descriptive statistics for one score column.
func Describe(values []float64) Descriptive {
	var d Descriptive
	d.Count = len(values)
	if d.Count == 0 {
		return d
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	d.Mean = sum / float64(d.Count)
	d.Std = sampleStd(sorted, d.Mean)
	d.Min = sorted[0]
	d.Max = sorted[len(sorted)-1]
	d.P25 = percentile(sorted, 0.25)
	d.P50 = percentile(sorted, 0.50)
	d.P75 = percentile(sorted, 0.75)
	return d
}

// Pearson computes the correlation coefficient of two equal-length series.
// A constant series has no defined correlation; that degenerate case
// yields 0 rather than NaN so downstream CSV output stays numeric.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

// QualitativeSummary aggregates judged scores: per-column descriptive
// stats, the pairwise Pearson matrix over ScoreColumns, and the pass rate.
type QualitativeSummary struct {
	Stats       map[string]Descriptive
	Correlation [][]float64
	PassRate    float64
}

// SummarizeQualitative computes the full qualitative metric set.
func SummarizeQualitative(records []harness.QualitativeRecord) QualitativeSummary {
	columns := scoreSeries(records)

	summary := QualitativeSummary{
		Stats:       make(map[string]Descriptive, len(ScoreColumns)-1),
		Correlation: make([][]float64, len(ScoreColumns)),
	}
	// binary_pass joins the correlation matrix but not the descriptive
	// stats table.
	for _, name := range ScoreColumns[:3] {
		summary.Stats[name] = Describe(columns[name])
	}
	for i, row := range ScoreColumns {
		summary.Correlation[i] = make([]float64, len(ScoreColumns))
		for j, col := range ScoreColumns {
			summary.Correlation[i][j] = Pearson(columns[row], columns[col])
		}
	}

	if len(records) > 0 {
		passed := 0
		for _, record := range records {
			if record.BinaryPass == 1 {
				passed++
			}
		}
		summary.PassRate = float64(passed) / float64(len(records))
	}
	return summary
}

func scoreSeries(records []harness.QualitativeRecord) map[string][]float64 {
	columns := make(map[string][]float64, len(ScoreColumns))
	for _, record := range records {
		columns["naturalness"] = append(columns["naturalness"], record.Naturalness)
		columns["coherence"] = append(columns["coherence"], record.Coherence)
		columns["helpfulness"] = append(columns["helpfulness"], record.Helpfulness)
		columns["binary_pass"] = append(columns["binary_pass"], float64(record.BinaryPass))
	}
	return columns
}
