package harness

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"zenbot/internal/llm"
)

// Rubric customizes the judge: the pass threshold and optional extra
// guidance lines appended to the judging instructions. The three scored
// criteria are fixed; a rubric tunes how they are applied.
type Rubric struct {
	Name          string   `yaml:"name"`
	PassThreshold float64  `yaml:"pass_threshold"`
	Guidance      []string `yaml:"guidance,omitempty"`
}

// LoadRubric reads and validates a judge rubric from a YAML file.
func LoadRubric(path string) (*Rubric, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("rubric path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rubric: %w", err)
	}

	var rubric Rubric
	if err := yaml.Unmarshal(data, &rubric); err != nil {
		return nil, fmt.Errorf("decode rubric: %w", err)
	}
	if rubric.PassThreshold < 1 || rubric.PassThreshold > 5 {
		return nil, fmt.Errorf("rubric pass threshold must be within [1,5], got %g", rubric.PassThreshold)
	}
	return &rubric, nil
}

// NewRubricJudge builds a judge configured from a rubric.
func NewRubricJudge(client llm.Client, rubric *Rubric) *Judge {
	judge := NewJudge(client, rubric.PassThreshold)
	judge.guidance = rubric.Guidance
	return judge
}
