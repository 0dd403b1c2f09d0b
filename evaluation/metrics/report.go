package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"zenbot/evaluation/harness"
)

// Summary bundles every quantitative metric group for one detail CSV.
type Summary struct {
	Policy  Classification
	API     Classification
	Intent  IntentSummary
	Latency LatencySummary
}

// Summarize computes the full quantitative metric set over labeled records.
func Summarize(records []harness.Record) Summary {
	policyLabels := make([]harness.Label, 0, len(records))
	apiLabels := make([]harness.Label, 0, len(records))
	for _, record := range records {
		policyLabels = append(policyLabels, record.PolicyError)
		apiLabels = append(apiLabels, record.APIError)
	}

	return Summary{
		Policy:  Classify(policyLabels),
		API:     Classify(apiLabels),
		Intent:  SummarizeIntent(records),
		Latency: SummarizeLatency(ResponseTimes(records), DefaultSlowThreshold),
	}
}

var summaryColumns = []string{
	"metric_group",
	"precision", "recall", "f1_score", "fpr", "fnr", "auc",
	"accuracy", "error_rate", "unknown_ratio",
	"mean", "std", "min", "50%", "95%", "99%", "max", ">1s_ratio",
	"note",
}

// WriteSummary writes error_metrics_summary.csv: one row per metric group
// with the cells that do not apply left empty. An insufficient-data column
// gets a note instead of numbers; a single-class ROC leaves auc empty.
func WriteSummary(path string, summary Summary) error {
	rows := [][]string{
		classificationRow("policy_error", summary.Policy),
		classificationRow("api_error", summary.API),
		intentRow(summary),
		latencyRow(summary.Latency),
	}
	return writeCSV(path, summaryColumns, rows)
}

func classificationRow(group string, c Classification) []string {
	row := emptyRow(group)
	if c.Insufficient {
		row[colIndex("note")] = "Not enough valid data"
		return row
	}
	row[colIndex("precision")] = formatFloat(c.Precision)
	row[colIndex("recall")] = formatFloat(c.Recall)
	row[colIndex("f1_score")] = formatFloat(c.F1)
	row[colIndex("fpr")] = formatFloat(c.FPR)
	row[colIndex("fnr")] = formatFloat(c.FNR)
	if c.ROC != nil {
		row[colIndex("auc")] = formatFloat(c.ROC.AUC)
	} else {
		row[colIndex("note")] = "ROC not applicable: single-class ground truth"
	}
	return row
}

func intentRow(summary Summary) []string {
	row := emptyRow("intent")
	if summary.Intent.Total > 0 {
		row[colIndex("unknown_ratio")] = formatFloat(summary.Intent.UnknownRatio)
	}
	if summary.Intent.Insufficient {
		row[colIndex("note")] = "Not enough valid data"
		return row
	}
	row[colIndex("accuracy")] = formatFloat(summary.Intent.Accuracy)
	row[colIndex("error_rate")] = formatFloat(summary.Intent.ErrorRate)
	return row
}

func latencyRow(l LatencySummary) []string {
	row := emptyRow("latency")
	if l.Count == 0 {
		row[colIndex("note")] = "Not enough valid data"
		return row
	}
	row[colIndex("mean")] = formatFloat(l.Mean)
	row[colIndex("std")] = formatFloat(l.Std)
	row[colIndex("min")] = formatFloat(l.Min)
	row[colIndex("50%")] = formatFloat(l.P50)
	row[colIndex("95%")] = formatFloat(l.P95)
	row[colIndex("99%")] = formatFloat(l.P99)
	row[colIndex("max")] = formatFloat(l.Max)
	row[colIndex(">1s_ratio")] = formatFloat(l.SlowRatio)
	return row
}

// WriteROCCurves writes roc_curve_<column>.csv for each error-type column
// whose curve exists. Columns without an applicable ROC produce no file.
func WriteROCCurves(dir string, summary Summary) error {
	for _, entry := range []struct {
		column string
		roc    *ROC
	}{
		{"policy_error", summary.Policy.ROC},
		{"api_error", summary.API.ROC},
	} {
		if entry.roc == nil {
			continue
		}
		rows := make([][]string, 0, len(entry.roc.Points))
		for _, point := range entry.roc.Points {
			rows = append(rows, []string{formatFloat(point.FPR), formatFloat(point.TPR)})
		}
		path := filepath.Join(dir, fmt.Sprintf("roc_curve_%s.csv", entry.column))
		if err := writeCSV(path, []string{"fpr", "tpr"}, rows); err != nil {
			return err
		}
	}
	return nil
}

var descriptiveRows = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// WriteDescriptiveStats writes descriptive_stats.csv: statistics as rows,
// score columns as columns.
func WriteDescriptiveStats(path string, summary QualitativeSummary) error {
	scoreNames := ScoreColumns[:3]
	header := append([]string{""}, scoreNames...)

	rows := make([][]string, 0, len(descriptiveRows))
	for _, stat := range descriptiveRows {
		row := []string{stat}
		for _, name := range scoreNames {
			row = append(row, formatFloat(descriptiveValue(summary.Stats[name], stat)))
		}
		rows = append(rows, row)
	}
	return writeCSV(path, header, rows)
}

func descriptiveValue(d Descriptive, stat string) float64 {
	switch stat {
	case "count":
		return float64(d.Count)
	case "mean":
		return d.Mean
	case "std":
		return d.Std
	case "min":
		return d.Min
	case "25%":
		return d.P25
	case "50%":
		return d.P50
	case "75%":
		return d.P75
	default:
		return d.Max
	}
}

// WriteCorrelationMatrix writes correlation_matrix.csv: the pairwise
// Pearson matrix over scores and the pass flag.
func WriteCorrelationMatrix(path string, summary QualitativeSummary) error {
	header := append([]string{""}, ScoreColumns...)
	rows := make([][]string, 0, len(ScoreColumns))
	for i, name := range ScoreColumns {
		row := []string{name}
		for j := range ScoreColumns {
			row = append(row, formatFloat(summary.Correlation[i][j]))
		}
		rows = append(rows, row)
	}
	return writeCSV(path, header, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header of %s: %w", path, err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row of %s: %w", path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func emptyRow(group string) []string {
	row := make([]string, len(summaryColumns))
	row[0] = group
	return row
}

func colIndex(name string) int {
	for i, col := range summaryColumns {
		if col == name {
			return i
		}
	}
	return len(summaryColumns) - 1
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
