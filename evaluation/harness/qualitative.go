package harness

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"zenbot/internal/llm"
)

const judgeSystemPrompt = "You are an expert judge evaluating chatbot responses. " +
	"Rate the following response on three criteria: naturalness, coherence, and helpfulness. " +
	"A helpful response is in line with the user's intent. " +
	"Examples of unhelpful responses: " +
	"- Sorry. I'm having trouble reaching the language LLM server right now. Please try again later. " +
	"- Sorry. I didn't understand that. " +
	"- Sorry. An error occurred. " +
	"- Error generating final response. " +
	"- Unknown tool. " +
	"Give each a score from 1 to 5 and a one-sentence justification for each. " +
	"Format your output as valid JSON with keys 'naturalness', 'coherence', 'helpfulness', " +
	"each mapping to an object with 'score' and 'reason'. " +
	"Respond only with the raw JSON object, no extra text or markdown."

// DefaultPassThreshold is the mean score at which a response counts as a
// pass.
const DefaultPassThreshold = 4.0

// QualitativeRecord is one judged response: three 1-5 scores plus the
// derived pass flag.
type QualitativeRecord struct {
	ExampleID   string
	Naturalness float64
	Coherence   float64
	Helpfulness float64
	BinaryPass  int
}

// Mean returns the average of the three scores.
func (r QualitativeRecord) Mean() float64 {
	return (r.Naturalness + r.Coherence + r.Helpfulness) / 3
}

// Judge scores one response with the completion service at temperature
// zero. The judge is told to emit bare JSON but routinely wraps it in
// prose, so the payload goes through extraction and lenient decoding; an
// unrecoverable payload is an error carrying the raw text.
type Judge struct {
	client        llm.Client
	passThreshold float64
	guidance      []string
}

// NewJudge builds a judge over the given completion client.
func NewJudge(client llm.Client, passThreshold float64) *Judge {
	if passThreshold <= 0 {
		passThreshold = DefaultPassThreshold
	}
	return &Judge{client: client, passThreshold: passThreshold}
}

// systemPrompt appends any rubric guidance to the fixed instructions.
func (j *Judge) systemPrompt() string {
	if len(j.guidance) == 0 {
		return judgeSystemPrompt
	}
	var b strings.Builder
	b.WriteString(judgeSystemPrompt)
	b.WriteString(" Additional guidance:")
	for _, line := range j.guidance {
		b.WriteString(" ")
		b.WriteString(line)
	}
	return b.String()
}

// Score judges one user-input/response pair.
func (j *Judge) Score(ctx context.Context, exampleID, userInput, response string) (QualitativeRecord, error) {
	resp, err := j.client.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "system", Content: j.systemPrompt()},
			{Role: "user", Content: fmt.Sprintf("User message: %s\nChatbot response: %s", userInput, response)},
		},
		Temperature: 0,
	})
	if err != nil {
		return QualitativeRecord{}, fmt.Errorf("judge completion: %w", err)
	}

	verdict, err := llm.ExtractJSONObject(resp.Content)
	if err != nil {
		return QualitativeRecord{}, fmt.Errorf("parse judge verdict: %w", err)
	}

	record := QualitativeRecord{ExampleID: exampleID}
	for _, criterion := range []struct {
		key  string
		dest *float64
	}{
		{"naturalness", &record.Naturalness},
		{"coherence", &record.Coherence},
		{"helpfulness", &record.Helpfulness},
	} {
		score, err := extractScore(verdict, criterion.key)
		if err != nil {
			return QualitativeRecord{}, err
		}
		*criterion.dest = score
	}

	if record.Mean() >= j.passThreshold {
		record.BinaryPass = 1
	}
	return record, nil
}

// extractScore reads verdict[key].score, tolerating a bare number where
// the judge skipped the {score, reason} wrapper.
func extractScore(verdict map[string]any, key string) (float64, error) {
	entry, ok := verdict[key]
	if !ok {
		return 0, fmt.Errorf("judge verdict missing %q", key)
	}
	switch v := entry.(type) {
	case map[string]any:
		score, ok := v["score"].(float64)
		if !ok {
			return 0, fmt.Errorf("judge verdict %q has no numeric score", key)
		}
		return score, nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("judge verdict %q has unexpected shape", key)
	}
}

// RunQualitative runs the router over every example and judges each final
// response. Router and judge failures both skip the example.
func (d *Driver) RunQualitative(ctx context.Context, examples []Example, judge *Judge) []QualitativeRecord {
	d.logger.Info("run %s: starting qualitative evaluation over %d examples", d.runID, len(examples))

	records := make([]QualitativeRecord, 0, len(examples))
	skipped := 0
	for i, example := range examples {
		d.logger.Info("run %s: example %s (%d/%d)", d.runID, example.ID, i+1, len(examples))

		result, err := d.router.Run(ctx, example.UserInput, example.Order)
		if err != nil {
			skipped++
			d.logger.Error("run %s: example %s failed, skipping: %v", d.runID, example.ID, err)
			continue
		}

		record, err := judge.Score(ctx, example.ID, example.UserInput, result.FinalResponse)
		if err != nil {
			skipped++
			d.logger.Error("run %s: judge failed for example %s, skipping: %v", d.runID, example.ID, err)
			continue
		}

		d.logger.Info("run %s: example %s naturalness=%.0f coherence=%.0f helpfulness=%.0f binary_pass=%d",
			d.runID, example.ID, record.Naturalness, record.Coherence, record.Helpfulness, record.BinaryPass)
		records = append(records, record)
	}

	d.logger.Info("run %s: qualitative evaluation done, %d judged, %d skipped", d.runID, len(records), skipped)
	return records
}

// QualitativeColumns is the qualitative detail-CSV header.
var QualitativeColumns = []string{
	"example_id",
	"naturalness",
	"coherence",
	"helpfulness",
	"binary_pass",
}

// WriteQualitativeRecords writes the judged scores, one row per example.
func WriteQualitativeRecords(path string, records []QualitativeRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create qualitative output: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(QualitativeColumns); err != nil {
		return fmt.Errorf("write qualitative header: %w", err)
	}
	for _, record := range records {
		row := []string{
			record.ExampleID,
			strconv.FormatFloat(record.Naturalness, 'f', -1, 64),
			strconv.FormatFloat(record.Coherence, 'f', -1, 64),
			strconv.FormatFloat(record.Helpfulness, 'f', -1, 64),
			strconv.Itoa(record.BinaryPass),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write qualitative row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// LoadQualitativeRecords reads a qualitative detail CSV back for analysis.
func LoadQualitativeRecords(path string) ([]QualitativeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open qualitative records: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(QualitativeColumns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read qualitative header: %w", err)
	}
	for i, want := range QualitativeColumns {
		if strings.TrimSpace(header[i]) != want {
			return nil, fmt.Errorf("unexpected qualitative column %d: got %q, want %q", i, header[i], want)
		}
	}

	var records []QualitativeRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read qualitative row: %w", err)
		}

		record := QualitativeRecord{ExampleID: row[0]}
		for i, dest := range []*float64{&record.Naturalness, &record.Coherence, &record.Helpfulness} {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: parse %s: %w", line, QualitativeColumns[i+1], err)
			}
			*dest = v
		}
		pass, err := strconv.Atoi(strings.TrimSpace(row[4]))
		if err != nil {
			return nil, fmt.Errorf("line %d: parse binary_pass: %w", line, err)
		}
		record.BinaryPass = pass
		records = append(records, record)
	}
	return records, nil
}
