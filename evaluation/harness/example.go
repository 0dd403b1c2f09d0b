package harness

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"zenbot/internal/agent"
)

// Example is one labeled evaluation case: the user message, the order it
// refers to, and the expected routing outcome.
type Example struct {
	ID        string
	UserInput string
	Order     agent.OrderContext

	CorrectTool      string
	CorrectPolicy    *bool
	CorrectAPIStatus *string
}

var exampleColumns = []string{
	"example_id",
	"user_input",
	"order_info_json",
	"correct_tool",
	"correct_policy",
	"correct_api_status",
}

// LoadExamples reads the labeled example set from a CSV file. The header
// must match the canonical column order; rows keep file order.
func LoadExamples(path string) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open example set: %w", err)
	}
	defer f.Close()

	examples, err := ReadExamples(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return examples, nil
}

// ReadExamples decodes examples from CSV content.
func ReadExamples(r io.Reader) ([]Example, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(exampleColumns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read example header: %w", err)
	}
	for i, want := range exampleColumns {
		if strings.TrimSpace(header[i]) != want {
			return nil, fmt.Errorf("unexpected example column %d: got %q, want %q", i, header[i], want)
		}
	}

	var examples []Example
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read example row: %w", err)
		}

		example, err := parseExample(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		examples = append(examples, example)
	}
	return examples, nil
}

func parseExample(row []string) (Example, error) {
	example := Example{
		ID:          strings.TrimSpace(row[0]),
		UserInput:   row[1],
		CorrectTool: strings.TrimSpace(row[3]),
	}
	if example.ID == "" {
		return Example{}, fmt.Errorf("example_id is required")
	}

	if err := json.Unmarshal([]byte(row[2]), &example.Order); err != nil {
		return Example{}, fmt.Errorf("decode order_info_json: %w", err)
	}

	policy, err := parseOptionalBool(row[4])
	if err != nil {
		return Example{}, fmt.Errorf("parse correct_policy: %w", err)
	}
	example.CorrectPolicy = policy

	if status := strings.TrimSpace(row[5]); status != "" {
		example.CorrectAPIStatus = &status
	}
	return example, nil
}

// parseOptionalBool accepts the label spellings seen in exported example
// sets; an empty cell means the expectation does not apply.
func parseOptionalBool(s string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "true", "yes", "1":
		v := true
		return &v, nil
	case "false", "no", "0":
		v := false
		return &v, nil
	default:
		return nil, fmt.Errorf("unrecognized boolean %q", s)
	}
}
