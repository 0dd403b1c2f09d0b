package harness

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"zenbot/internal/agent"
	"zenbot/internal/orderapi"
)

// Label is a 4-way confusion outcome for one error-type column, or
// "unknown" when the comparison does not apply to the example.
type Label string

const (
	LabelTP      Label = "TP"
	LabelTN      Label = "TN"
	LabelFP      Label = "FP"
	LabelFN      Label = "FN"
	LabelUnknown Label = "unknown"
)

// Valid reports whether the label participates in confusion metrics.
func (l Label) Valid() bool {
	switch l {
	case LabelTP, LabelTN, LabelFP, LabelFN:
		return true
	}
	return false
}

// Intent is the three-state intent_is_correct value. The driver only
// emits yes or no; unknown appears in externally produced detail CSVs and
// must stay out of accuracy denominators.
type Intent string

const (
	IntentYes     Intent = "yes"
	IntentNo      Intent = "no"
	IntentUnknown Intent = "unknown"
)

// Known reports whether the intent participates in accuracy metrics.
func (i Intent) Known() bool {
	return i == IntentYes || i == IntentNo
}

func parseIntent(raw string) (Intent, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes":
		return IntentYes, nil
	case "no":
		return IntentNo, nil
	case "unknown":
		return IntentUnknown, nil
	}
	return "", fmt.Errorf("invalid intent_is_correct value %q", raw)
}

// Record is one quantitative detail row: the labeled outcome of running
// the router on one example.
type Record struct {
	ExampleID       string
	Intent          Intent
	PolicyError     Label
	APIError        Label
	ResponseSeconds float64
}

// LabelResult derives the full record for one example/result pair.
func LabelResult(example Example, result agent.Result) Record {
	intent := IntentNo
	if result.ToolName == example.CorrectTool {
		intent = IntentYes
	}
	return Record{
		ExampleID:       example.ID,
		Intent:          intent,
		PolicyError:     derivePolicyLabel(example, result, intent),
		APIError:        deriveAPILabel(example, result),
		ResponseSeconds: result.ResponseSeconds(),
	}
}

// derivePolicyLabel compares predicted and expected policy outcomes.
// Positive means the policy passed. The comparison only applies when the
// intent matched and the tool path actually executed; everything else is
// unknown.
func derivePolicyLabel(example Example, result agent.Result, intent Intent) Label {
	if intent != IntentYes {
		return LabelUnknown
	}
	if result.APIStatus == nil || result.ToolOutput == nil {
		return LabelUnknown
	}
	if result.PolicyPassed == nil || example.CorrectPolicy == nil {
		return LabelUnknown
	}
	return confusion(*result.PolicyPassed, *example.CorrectPolicy)
}

// deriveAPILabel compares predicted and expected remote-call outcomes.
// Tracking's richer status enum collapses to ok/error before comparing;
// positive means the call succeeded.
func deriveAPILabel(example Example, result agent.Result) Label {
	if example.CorrectAPIStatus == nil || result.APIStatus == nil {
		return LabelUnknown
	}
	predicted := normalizeStatus(*result.APIStatus) == orderapi.StatusOK
	expected := normalizeStatus(*example.CorrectAPIStatus) == orderapi.StatusOK
	return confusion(predicted, expected)
}

func confusion(predicted, expected bool) Label {
	switch {
	case predicted && expected:
		return LabelTP
	case !predicted && !expected:
		return LabelTN
	case predicted && !expected:
		return LabelFP
	default:
		return LabelFN
	}
}

func normalizeStatus(status string) string {
	if status == orderapi.StatusError {
		return orderapi.StatusError
	}
	return orderapi.StatusOK
}

// RecordColumns is the quantitative detail-CSV header.
var RecordColumns = []string{
	"example_id",
	"intent_is_correct",
	"policy_error",
	"api_error",
	"response_time",
}

// WriteRecords writes the quantitative detail CSV, one row per processed
// example, response time rounded to milliseconds.
func WriteRecords(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create record output: %w", err)
	}
	defer f.Close()

	if err := writeRecordRows(f, records); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func writeRecordRows(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(RecordColumns); err != nil {
		return fmt.Errorf("write record header: %w", err)
	}
	for _, record := range records {
		row := []string{
			record.ExampleID,
			string(record.Intent),
			string(record.PolicyError),
			string(record.APIError),
			strconv.FormatFloat(record.ResponseSeconds, 'f', 3, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write record row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// LoadRecords reads a quantitative detail CSV back for analysis.
func LoadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open record set: %w", err)
	}
	defer f.Close()

	records, err := readRecordRows(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func readRecordRows(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(RecordColumns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read record header: %w", err)
	}
	for i, want := range RecordColumns {
		if strings.TrimSpace(header[i]) != want {
			return nil, fmt.Errorf("unexpected record column %d: got %q, want %q", i, header[i], want)
		}
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record row: %w", err)
		}

		intent, err := parseIntent(row[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		seconds, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse response_time: %w", line, err)
		}
		records = append(records, Record{
			ExampleID:       row[0],
			Intent:          intent,
			PolicyError:     Label(strings.TrimSpace(row[2])),
			APIError:        Label(strings.TrimSpace(row[3])),
			ResponseSeconds: seconds,
		})
	}
	return records, nil
}
